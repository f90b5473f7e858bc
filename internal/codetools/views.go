package codetools

import (
	"fmt"
	"strings"

	"github.com/ddddddO/gtree"

	"arna/internal/structure"
)

const noProjectMessage = "No project has been created yet."

// ShowStructure renders the whole project as a tree. Functions list their
// parameters, return and logic before nested functions.
func (s *Session) ShowStructure() string {
	t := s.Snapshot()
	if t == nil {
		return noProjectMessage
	}
	out, err := RenderStructure(t)
	if err != nil {
		return fmt.Sprintf("Project: %s\n(render failed: %v)", t.Name, err)
	}
	return out
}

// ShowSummary reports the project name, description and recursive
// function count.
func (s *Session) ShowSummary() string {
	t := s.Snapshot()
	if t == nil {
		return noProjectMessage
	}
	return RenderSummary(t)
}

func RenderSummary(t *structure.Tree) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project: %s\n", t.Name)
	fmt.Fprintf(&b, "Description: %s\n", t.Description)
	fmt.Fprintf(&b, "Functions: %d", t.FunctionCount())
	return b.String()
}

func RenderStructure(t *structure.Tree) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Project: %s\n", t.Name)
	fmt.Fprintf(&b, "Description: %s\n", t.Description)
	if t.Len() == 0 {
		b.WriteString("(no functions)")
		return b.String(), nil
	}
	root := gtree.NewRoot(t.Name)
	addLevel(t, root, t.Roots())
	if err := gtree.OutputFromRoot(&b, root); err != nil {
		return "", err
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// addLevel attaches functions to parent. gtree merges siblings with equal
// text, so every label carries its kind.
func addLevel(t *structure.Tree, parent *gtree.Node, ids []structure.NodeID) {
	for _, id := range ids {
		f, ok := t.Function(id)
		if !ok {
			continue
		}
		node := parent.Add(label("func "+f.Name, f.Description))
		for _, p := range f.Parameters {
			node.Add(label("param "+p.Name, p.Description))
		}
		if f.Return != nil {
			node.Add(label("returns", f.Return.Description))
		}
		if f.Logic != nil {
			node.Add(label("logic", f.Logic.Description))
		}
		addLevel(t, node, f.Children)
	}
}

func label(head, description string) string {
	description = strings.Join(strings.Fields(description), " ")
	if description == "" {
		return head
	}
	return head + ": " + description
}
