package structure

import (
	"strings"
	"unicode"
)

// PathSeparator joins segments in canonical paths returned by the tree.
const PathSeparator = "/"

// ParsePath splits a function path into its name segments. Both "/" and "."
// delimit segments and may be mixed. Empty segments are rejected.
func ParsePath(path string) ([]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, Errorf(KindInvalidArgument, "", "path is empty")
	}
	parts := strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '.' })
	if n := strings.Count(path, "/") + strings.Count(path, ".") + 1; n != len(parts) {
		return nil, Errorf(KindInvalidArgument, path, "path has an empty segment")
	}
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
		if parts[i] == "" {
			return nil, Errorf(KindInvalidArgument, path, "path has an empty segment")
		}
	}
	return parts, nil
}

// JoinPath renders segments in canonical form.
func JoinPath(segments ...string) string {
	return strings.Join(segments, PathSeparator)
}

// ValidIdentifier reports whether name can be used as a function or
// parameter name: a letter or underscore followed by letters, digits or
// underscores.
func ValidIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}
