package llmclient

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// LLMClient defines the interface for LLM providers. Every call asks the
// model for a single JSON document.
type LLMClient interface {
	Name() string
	Close() error
	CountTokens(text string) int
	TokenCapacity() int
	GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error)
}

var ErrInvalidJSON = errors.New("invalid json from LLM")

// PermanentError indicates an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

// CountTokens provides a rough token count for text, used to keep prompts
// under a client's capacity. It counts whitespace-delimited words and
// falls back to a character-based heuristic.
func CountTokens(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	words := strings.Fields(text)
	if len(words) > 0 {
		return len(words)
	}
	n := len(text) / 4
	if n == 0 {
		n = 1
	}
	return n
}

// extractJSON returns the first JSON object in text. Models sometimes wrap
// their answer in a fenced block or surrounding prose.
func extractJSON(text string) (json.RawMessage, error) {
	text = strings.TrimSpace(text)
	if json.Valid([]byte(text)) {
		return json.RawMessage(text), nil
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, ErrInvalidJSON
	}
	candidate := text[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return nil, ErrInvalidJSON
	}
	return json.RawMessage(candidate), nil
}
