package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"arna/internal/structure"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeInput unmarshals tool arguments strictly and checks their
// `validate` tags. An empty input is treated as "{}".
func decodeInput(tool string, input json.RawMessage, dst any) error {
	raw := bytes.TrimSpace(input)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = []byte("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return structure.Wrap(structure.KindInvalidArgument, "", err, tool+": invalid arguments")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return structure.Errorf(structure.KindInvalidArgument, "", "%s: argument %q failed %q check", tool, fe.Field(), fe.Tag())
		}
		return structure.Wrap(structure.KindInvalidArgument, "", err, tool+": invalid arguments")
	}
	return nil
}

// funcTool adapts a typed handler to the Tool interface.
type funcTool[In any] struct {
	spec ToolSpec
	call func(ctx context.Context, in In) (any, error)
}

func (t *funcTool[In]) Spec() ToolSpec { return t.spec }

func (t *funcTool[In]) Call(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in In
	if err := decodeInput(t.spec.Name, input, &in); err != nil {
		return nil, err
	}
	out, err := t.call(ctx, in)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("mcp: %s: encode result: %w", t.spec.Name, err)
	}
	return raw, nil
}
