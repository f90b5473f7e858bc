package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"arna/internal/structure"
)

func calcTree(t *testing.T) *structure.Tree {
	t.Helper()
	tr, err := structure.New("calc", "simple calculator")
	require.NoError(t, err)
	_, err = tr.AddFunction("add", "adds two numbers", "")
	require.NoError(t, err)
	require.NoError(t, tr.AddParameter("add", "a", "first operand"))
	require.NoError(t, tr.AddParameter("add", "b", "second operand"))
	require.NoError(t, tr.SetReturn("add", "sum of a and b"))
	return tr
}

func TestGeneratePython(t *testing.T) {
	g, err := New(Options{})
	require.NoError(t, err)

	out, err := g.Generate(calcTree(t))
	require.NoError(t, err)
	want := `"""
calc

simple calculator
"""


def add(a, b):
    """
    adds two numbers

    Args:
        a: first operand
        b: second operand

    Returns:
        sum of a and b
    """
    # Logic not described yet.
    pass


if __name__ == "__main__":
    # Main execution
    pass
`
	require.Equal(t, want, out)
}

func TestGeneratePythonEscapesDocstrings(t *testing.T) {
	tr, err := structure.New("paths", `reads C:\xfiles\new`)
	require.NoError(t, err)
	_, err = tr.AddFunction("load", `splits on \ and quotes """`, "")
	require.NoError(t, err)
	require.NoError(t, tr.AddParameter("load", "sep", `defaults to "\t"`))

	g, err := New(Options{})
	require.NoError(t, err)
	out, err := g.Generate(tr)
	require.NoError(t, err)

	require.Contains(t, out, `reads C:\\xfiles\\new`+"\n")
	require.Contains(t, out, `splits on \\ and quotes \"\"\"`+"\n")
	require.Contains(t, out, `sep: defaults to "\\t"`+"\n")
	require.NotContains(t, out, `C:\xfiles`)
}

func TestGenerateDeterministic(t *testing.T) {
	g, err := New(Options{Target: "python"})
	require.NoError(t, err)
	tr := calcTree(t)

	first, err := g.Generate(tr)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := g.Generate(tr.Clone())
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestGeneratePythonNested(t *testing.T) {
	tr := calcTree(t)
	_, err := tr.AddFunction("check", "validates input", "add")
	require.NoError(t, err)
	require.NoError(t, tr.SetLogic("add/check", "ensure numbers\nraise otherwise"))

	g, err := New(Options{})
	require.NoError(t, err)
	out, err := g.Generate(tr)
	require.NoError(t, err)

	require.Contains(t, out, "\n    def check():\n")
	require.Contains(t, out, "        \"\"\"\n        validates input\n        \"\"\"\n")
	require.Contains(t, out, "        # ensure numbers\n        # raise otherwise\n        pass\n\n    pass\n")
}

func TestGenerateGo(t *testing.T) {
	tr := calcTree(t)
	_, err := tr.AddFunction("inner", "", "add")
	require.NoError(t, err)

	g, err := New(Options{Target: "go"})
	require.NoError(t, err)
	require.Equal(t, "calc.go", g.FileName(tr))

	out, err := g.Generate(tr)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "// Package calc implements calc.\n//\n// simple calculator\npackage calc\n\n"))
	require.Contains(t, out, "// add adds two numbers\n")
	require.Contains(t, out, "//   - a: first operand\n")
	require.Contains(t, out, "// Returns: sum of a and b\n")
	require.Contains(t, out, "func add(a, b any) any {\n")
	require.Contains(t, out, "\tinner := func() {\n\t\t// Logic not described yet.\n\t}\n\t_ = inner\n")
	require.True(t, strings.HasSuffix(out, "\treturn nil\n}\n"))
}

func TestGoPackageName(t *testing.T) {
	cases := map[string]string{
		"calc":          "calc",
		"My Calculator": "my_calculator",
		"2fa tool":      "p2fa_tool",
		"type":          "typepkg",
		"???":           "project",
	}
	for in, want := range cases {
		require.Equal(t, want, goPackageName(in), in)
	}
}

func TestGenerateRejectsKeywords(t *testing.T) {
	tr, err := structure.New("p", "")
	require.NoError(t, err)
	_, err = tr.AddFunction("lambda", "", "")
	require.NoError(t, err)

	g, err := New(Options{Target: "python"})
	require.NoError(t, err)
	_, err = g.Generate(tr)
	require.ErrorIs(t, err, structure.ErrInvalidArgument)
	require.Equal(t, "lambda", structure.AsError(err).Path)

	// "lambda" is fine in Go.
	g, err = New(Options{Target: "go"})
	require.NoError(t, err)
	_, err = g.Generate(tr)
	require.NoError(t, err)
}

func TestGenerateRejectsKeywordParameter(t *testing.T) {
	tr, err := structure.New("p", "")
	require.NoError(t, err)
	_, err = tr.AddFunction("f", "", "")
	require.NoError(t, err)
	require.NoError(t, tr.AddParameter("f", "range", ""))

	g, err := New(Options{Target: "go"})
	require.NoError(t, err)
	_, err = g.Generate(tr)
	require.ErrorIs(t, err, structure.ErrInvalidArgument)
}

func TestGenerateGoRejectsNestedParameterName(t *testing.T) {
	tr := calcTree(t)
	_, err := tr.AddFunction("a", "shadows the operand", "add")
	require.NoError(t, err)

	g, err := New(Options{Target: "go"})
	require.NoError(t, err)
	_, err = g.Generate(tr)
	require.ErrorIs(t, err, structure.ErrInvalidArgument)
	require.Equal(t, "add/a", structure.AsError(err).Path)

	// Python defs may rebind a parameter name.
	g, err = New(Options{Target: "python"})
	require.NoError(t, err)
	_, err = g.Generate(tr)
	require.NoError(t, err)
}

func TestGenerateGoRejectsBlankNestedName(t *testing.T) {
	tr := calcTree(t)
	_, err := tr.AddFunction("_", "", "add")
	require.NoError(t, err)

	g, err := New(Options{Target: "go"})
	require.NoError(t, err)
	_, err = g.Generate(tr)
	require.ErrorIs(t, err, structure.ErrInvalidArgument)
	require.Equal(t, "add/_", structure.AsError(err).Path)

	// A top-level "_" is a plain func declaration.
	top, err := structure.New("p", "")
	require.NoError(t, err)
	_, err = top.AddFunction("_", "", "")
	require.NoError(t, err)
	_, err = g.Generate(top)
	require.NoError(t, err)
}

func TestGenerateStrict(t *testing.T) {
	tr := calcTree(t)
	g, err := New(Options{Strict: true})
	require.NoError(t, err)

	_, err = g.Generate(tr)
	require.ErrorIs(t, err, structure.ErrIncompleteDefinition)
	require.Equal(t, "add", structure.AsError(err).Path)

	require.NoError(t, tr.SetLogic("add", "return a + b"))
	out, err := g.Generate(tr)
	require.NoError(t, err)
	require.Contains(t, out, "    # return a + b\n    pass\n")
}

func TestNewUnknownTarget(t *testing.T) {
	_, err := New(Options{Target: "cobol"})
	require.ErrorIs(t, err, structure.ErrInvalidArgument)
}

func TestFileName(t *testing.T) {
	tr, err := structure.New("My Calc", "")
	require.NoError(t, err)
	g, err := New(Options{})
	require.NoError(t, err)
	require.Equal(t, "my_calc.py", g.FileName(tr))

	tr.Name = "a/b"
	require.Equal(t, "a_b.py", g.FileName(tr))
}

func TestGenerateEmptyProject(t *testing.T) {
	tr, err := structure.New("empty", "")
	require.NoError(t, err)
	g, err := New(Options{})
	require.NoError(t, err)
	out, err := g.Generate(tr)
	require.NoError(t, err)
	require.Equal(t, "\"\"\"\nempty\n\"\"\"\n\n\nif __name__ == \"__main__\":\n    # Main execution\n    pass\n", out)
}
