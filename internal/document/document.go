// Package document maps project trees to and from their persisted YAML form:
//
//	name: calc
//	description: simple calculator
//	code_structure:
//	  - function:
//	      name: add
//	      description: adds two numbers
//	      parameters:
//	        - name: a
//	          description: first operand
//	      returns:
//	        description: sum of a and b
//	      logic:
//	        description: return a + b
//	      code_structure: []
package document

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"arna/internal/structure"
)

type docProject struct {
	Name          string    `yaml:"name"`
	Description   string    `yaml:"description"`
	CodeStructure []docItem `yaml:"code_structure"`
}

type docItem struct {
	Function *docFunction `yaml:"function"`
}

type docFunction struct {
	Name          string         `yaml:"name"`
	Description   string         `yaml:"description"`
	Parameters    []docParameter `yaml:"parameters"`
	Returns       *docText       `yaml:"returns,omitempty"`
	Logic         *docText       `yaml:"logic,omitempty"`
	CodeStructure []docItem      `yaml:"code_structure"`
}

type docParameter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type docText struct {
	Description string `yaml:"description"`
}

// Marshal renders the tree as YAML. Output is deterministic.
func Marshal(t *structure.Tree) ([]byte, error) {
	if t == nil {
		return nil, structure.Errorf(structure.KindInvalidArgument, "", "no project to serialize")
	}
	doc := docProject{
		Name:          t.Name,
		Description:   t.Description,
		CodeStructure: encodeLevel(t, t.Roots()),
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, structure.Wrap(structure.KindInternal, "", err, "encode yaml")
	}
	if err := enc.Close(); err != nil {
		return nil, structure.Wrap(structure.KindInternal, "", err, "encode yaml")
	}
	return buf.Bytes(), nil
}

func encodeLevel(t *structure.Tree, ids []structure.NodeID) []docItem {
	items := make([]docItem, 0, len(ids))
	for _, id := range ids {
		f, ok := t.Function(id)
		if !ok {
			continue
		}
		df := &docFunction{
			Name:          f.Name,
			Description:   f.Description,
			Parameters:    make([]docParameter, 0, len(f.Parameters)),
			CodeStructure: encodeLevel(t, f.Children),
		}
		for _, p := range f.Parameters {
			df.Parameters = append(df.Parameters, docParameter{Name: p.Name, Description: p.Description})
		}
		if f.Return != nil {
			df.Returns = &docText{Description: f.Return.Description}
		}
		if f.Logic != nil {
			df.Logic = &docText{Description: f.Logic.Description}
		}
		items = append(items, docItem{Function: df})
	}
	return items
}

// Unmarshal parses a YAML document into a new tree. Malformed input yields
// a ParseError whose Path names the offending document location.
func Unmarshal(data []byte) (*structure.Tree, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, structure.Wrap(structure.KindParseError, "", err, "invalid yaml")
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, structure.Errorf(structure.KindParseError, "", "empty document")
	}
	d := &decoder{}
	return d.project(root.Content[0])
}

type decoder struct {
	tree *structure.Tree
}

func (d *decoder) project(n *yaml.Node) (*structure.Tree, error) {
	n = deref(n)
	if n.Kind != yaml.MappingNode {
		return nil, shapeError(n, "", "expected a mapping at the document root")
	}
	name, err := scalar(n, "name", "", true)
	if err != nil {
		return nil, err
	}
	desc, err := scalar(n, "description", "", false)
	if err != nil {
		return nil, err
	}
	tree, err := structure.New(name, desc)
	if err != nil {
		return nil, parseError(lookup(n, "name"), "name", err)
	}
	d.tree = tree
	if err := d.level(lookup(n, "code_structure"), "code_structure", structure.RootID); err != nil {
		return nil, err
	}
	return d.tree, nil
}

func (d *decoder) level(n *yaml.Node, path string, parent structure.NodeID) error {
	n = deref(n)
	if isNull(n) {
		return nil
	}
	if n.Kind != yaml.SequenceNode {
		return shapeError(n, path, "expected a list")
	}
	for i, item := range n.Content {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		item = deref(item)
		if item.Kind != yaml.MappingNode {
			return shapeError(item, itemPath, "expected a mapping with a function key")
		}
		fn := deref(lookup(item, "function"))
		if fn == nil {
			return shapeError(item, itemPath, "missing function key")
		}
		if err := d.function(fn, itemPath+".function", parent); err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) function(n *yaml.Node, path string, parent structure.NodeID) error {
	if n.Kind != yaml.MappingNode {
		return shapeError(n, path, "expected a mapping")
	}
	name, err := scalar(n, "name", path, true)
	if err != nil {
		return err
	}
	desc, err := scalar(n, "description", path, false)
	if err != nil {
		return err
	}
	id, err := d.tree.AddFunctionAt(parent, name, desc)
	if err != nil {
		return parseError(lookup(n, "name"), path+".name", err)
	}

	if params := deref(lookup(n, "parameters")); !isNull(params) {
		if params.Kind != yaml.SequenceNode {
			return shapeError(params, path+".parameters", "expected a list")
		}
		for i, p := range params.Content {
			pPath := fmt.Sprintf("%s.parameters[%d]", path, i)
			p = deref(p)
			if p.Kind != yaml.MappingNode {
				return shapeError(p, pPath, "expected a mapping")
			}
			pName, err := scalar(p, "name", pPath, true)
			if err != nil {
				return err
			}
			pDesc, err := scalar(p, "description", pPath, false)
			if err != nil {
				return err
			}
			if err := d.tree.AddParameterAt(id, pName, pDesc); err != nil {
				return parseError(lookup(p, "name"), pPath+".name", err)
			}
		}
	}

	if ret, ok, err := slot(n, "returns", path); err != nil {
		return err
	} else if ok {
		_ = d.tree.SetReturnAt(id, ret)
	}
	if logic, ok, err := slot(n, "logic", path); err != nil {
		return err
	} else if ok {
		_ = d.tree.SetLogicAt(id, logic)
	}

	return d.level(lookup(n, "code_structure"), path+".code_structure", id)
}

// slot decodes an optional {description: ...} mapping.
func slot(n *yaml.Node, key, path string) (string, bool, error) {
	v := deref(lookup(n, key))
	if isNull(v) {
		return "", false, nil
	}
	p := joinKey(path, key)
	if v.Kind != yaml.MappingNode {
		return "", false, shapeError(v, p, "expected a mapping with a description key")
	}
	desc, err := scalar(v, "description", p, false)
	if err != nil {
		return "", false, err
	}
	return desc, true, nil
}

func scalar(n *yaml.Node, key, path string, required bool) (string, error) {
	p := joinKey(path, key)
	v := deref(lookup(n, key))
	if isNull(v) {
		if required {
			return "", shapeError(n, p, fmt.Sprintf("missing required key %q", key))
		}
		return "", nil
	}
	if v.Kind != yaml.ScalarNode {
		return "", shapeError(v, p, "expected a scalar value")
	}
	if required && v.Value == "" {
		return "", shapeError(v, p, fmt.Sprintf("key %q is empty", key))
	}
	return v.Value, nil
}

func lookup(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}

func joinKey(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func shapeError(n *yaml.Node, path, msg string) error {
	if n != nil && n.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", n.Line, msg)
	}
	return structure.Errorf(structure.KindParseError, path, "%s", msg)
}

func parseError(n *yaml.Node, path string, cause error) error {
	se := structure.AsError(cause)
	return shapeError(n, path, se.Message)
}
