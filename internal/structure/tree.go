package structure

import (
	"slices"
	"strings"
)

// NodeID is a stable handle to a function node inside a Tree. The zero
// value denotes the project root.
type NodeID int

// RootID addresses the project root when adding top-level functions.
const RootID NodeID = 0

type Parameter struct {
	Name        string
	Description string
}

type Return struct {
	Description string
}

type Logic struct {
	Description string
}

// Function is a node of the project tree. Children are ordered by insertion.
type Function struct {
	ID          NodeID
	Parent      NodeID
	Name        string
	Description string
	Parameters  []Parameter
	Return      *Return
	Logic       *Logic
	Children    []NodeID
}

// Tree is a project document: a flat arena of function nodes plus the
// ordered ids of the top-level functions. Nodes are never removed.
type Tree struct {
	Name        string
	Description string

	roots []NodeID
	nodes []*Function // nodes[id-1]
}

// New creates an empty project tree.
func New(name, description string) (*Tree, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, Errorf(KindInvalidArgument, "", "project name is required")
	}
	return &Tree{Name: name, Description: description}, nil
}

// Roots returns the ids of the top-level functions in order.
func (t *Tree) Roots() []NodeID {
	if t == nil {
		return nil
	}
	return slices.Clone(t.roots)
}

// Function returns a copy of the node with the given id.
func (t *Tree) Function(id NodeID) (Function, bool) {
	n := t.node(id)
	if n == nil {
		return Function{}, false
	}
	return n.clone(), true
}

// Len returns the number of function nodes in the tree.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes)
}

func (t *Tree) node(id NodeID) *Function {
	if t == nil || id <= 0 || int(id) > len(t.nodes) {
		return nil
	}
	return t.nodes[id-1]
}

func (t *Tree) children(parent NodeID) []NodeID {
	if parent == RootID {
		return t.roots
	}
	if n := t.node(parent); n != nil {
		return n.Children
	}
	return nil
}

func (t *Tree) childByName(parent NodeID, name string) (NodeID, bool) {
	for _, id := range t.children(parent) {
		if t.nodes[id-1].Name == name {
			return id, true
		}
	}
	return 0, false
}

// Resolve walks path from the project root and returns the addressed
// function. Every segment must name an existing function at its level.
func (t *Tree) Resolve(path string) (NodeID, error) {
	segments, err := ParsePath(path)
	if err != nil {
		return 0, err
	}
	cur := RootID
	for i, seg := range segments {
		next, ok := t.childByName(cur, seg)
		if !ok {
			return 0, Errorf(KindNotFound, JoinPath(segments[:i+1]...), "function %q not found", seg)
		}
		cur = next
	}
	return cur, nil
}

// PathOf returns the canonical path of id, or "" for the root or an
// unknown id.
func (t *Tree) PathOf(id NodeID) string {
	var segs []string
	for n := t.node(id); n != nil; n = t.node(n.Parent) {
		segs = append(segs, n.Name)
	}
	slices.Reverse(segs)
	return JoinPath(segs...)
}

// AddFunction appends a function under parentPath, or at the top level
// when parentPath is empty.
func (t *Tree) AddFunction(name, description, parentPath string) (NodeID, error) {
	parent := RootID
	if strings.TrimSpace(parentPath) != "" {
		id, err := t.Resolve(parentPath)
		if err != nil {
			return 0, err
		}
		parent = id
	}
	return t.AddFunctionAt(parent, name, description)
}

// AddFunctionAt appends a function under the node parent.
func (t *Tree) AddFunctionAt(parent NodeID, name, description string) (NodeID, error) {
	if parent != RootID && t.node(parent) == nil {
		return 0, Errorf(KindNotFound, "", "parent node %d not found", parent)
	}
	name = strings.TrimSpace(name)
	where := JoinPath(nonEmpty(t.PathOf(parent), name)...)
	if !ValidIdentifier(name) {
		return 0, Errorf(KindInvalidArgument, where, "function name %q is not a valid identifier", name)
	}
	if _, dup := t.childByName(parent, name); dup {
		return 0, Errorf(KindDuplicateName, where, "function %q already exists", name)
	}
	id := NodeID(len(t.nodes) + 1)
	t.nodes = append(t.nodes, &Function{
		ID:          id,
		Parent:      parent,
		Name:        name,
		Description: description,
	})
	if parent == RootID {
		t.roots = append(t.roots, id)
	} else {
		p := t.node(parent)
		p.Children = append(p.Children, id)
	}
	return id, nil
}

// AddParameter appends a parameter to the function at functionPath.
func (t *Tree) AddParameter(functionPath, name, description string) error {
	id, err := t.Resolve(functionPath)
	if err != nil {
		return err
	}
	return t.AddParameterAt(id, name, description)
}

// AddParameterAt appends a parameter to the function id.
func (t *Tree) AddParameterAt(id NodeID, name, description string) error {
	n := t.node(id)
	if n == nil {
		return Errorf(KindNotFound, "", "function node %d not found", id)
	}
	name = strings.TrimSpace(name)
	path := t.PathOf(id)
	if !ValidIdentifier(name) {
		return Errorf(KindInvalidArgument, path, "parameter name %q is not a valid identifier", name)
	}
	for _, p := range n.Parameters {
		if p.Name == name {
			return Errorf(KindDuplicateName, path, "parameter %q already exists", name)
		}
	}
	n.Parameters = append(n.Parameters, Parameter{Name: name, Description: description})
	return nil
}

// SetReturn creates or replaces the return slot of the function at path.
func (t *Tree) SetReturn(functionPath, description string) error {
	id, err := t.Resolve(functionPath)
	if err != nil {
		return err
	}
	return t.SetReturnAt(id, description)
}

func (t *Tree) SetReturnAt(id NodeID, description string) error {
	n := t.node(id)
	if n == nil {
		return Errorf(KindNotFound, "", "function node %d not found", id)
	}
	n.Return = &Return{Description: description}
	return nil
}

// SetLogic creates or replaces the logic slot of the function at path.
func (t *Tree) SetLogic(functionPath, description string) error {
	id, err := t.Resolve(functionPath)
	if err != nil {
		return err
	}
	return t.SetLogicAt(id, description)
}

func (t *Tree) SetLogicAt(id NodeID, description string) error {
	n := t.node(id)
	if n == nil {
		return Errorf(KindNotFound, "", "function node %d not found", id)
	}
	n.Logic = &Logic{Description: description}
	return nil
}

// Walk visits every function in pre-order: each function before its
// nested functions, siblings in insertion order. Depth is 0 for top-level
// functions. Returning an error stops the walk.
func (t *Tree) Walk(fn func(f Function, depth int) error) error {
	if t == nil {
		return nil
	}
	return t.walk(t.roots, 0, fn)
}

func (t *Tree) walk(ids []NodeID, depth int, fn func(Function, int) error) error {
	for _, id := range ids {
		n := t.nodes[id-1]
		if err := fn(n.clone(), depth); err != nil {
			return err
		}
		if err := t.walk(n.Children, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

// FunctionCount returns the number of functions including nested ones.
func (t *Tree) FunctionCount() int {
	return t.Len()
}

// Clone returns a deep copy that shares nothing with t.
func (t *Tree) Clone() *Tree {
	if t == nil {
		return nil
	}
	out := &Tree{
		Name:        t.Name,
		Description: t.Description,
		roots:       slices.Clone(t.roots),
		nodes:       make([]*Function, len(t.nodes)),
	}
	for i, n := range t.nodes {
		c := n.clone()
		out.nodes[i] = &c
	}
	return out
}

// Equal reports whether a and b hold the same structure, names,
// descriptions and ordering. Node ids are not compared.
func Equal(a, b *Tree) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Name != b.Name || a.Description != b.Description {
		return false
	}
	return equalLevel(a, a.roots, b, b.roots)
}

func equalLevel(a *Tree, aIDs []NodeID, b *Tree, bIDs []NodeID) bool {
	if len(aIDs) != len(bIDs) {
		return false
	}
	for i := range aIDs {
		x, y := a.nodes[aIDs[i]-1], b.nodes[bIDs[i]-1]
		if x.Name != y.Name || x.Description != y.Description {
			return false
		}
		if !slices.Equal(x.Parameters, y.Parameters) {
			return false
		}
		if !equalSlot(x.Return, y.Return) || !equalLogic(x.Logic, y.Logic) {
			return false
		}
		if !equalLevel(a, x.Children, b, y.Children) {
			return false
		}
	}
	return true
}

func equalSlot(a, b *Return) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalLogic(a, b *Logic) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (f *Function) clone() Function {
	c := *f
	c.Parameters = slices.Clone(f.Parameters)
	c.Children = slices.Clone(f.Children)
	if f.Return != nil {
		r := *f.Return
		c.Return = &r
	}
	if f.Logic != nil {
		l := *f.Logic
		c.Logic = &l
	}
	return c
}

func nonEmpty(values ...string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
