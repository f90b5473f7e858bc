// Package codetools is the operation surface over a project tree. A
// Session owns one active project; every operation takes the session lock,
// so callers on different goroutines (HTTP handlers, websocket clients, the
// planning agent) never interleave partial edits.
//
// Operations return their success value together with a *structure.Error;
// they never panic on bad input.
package codetools

import (
	"context"
	"errors"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"arna/internal/codegen"
	"arna/internal/docstore"
	"arna/internal/document"
	"arna/internal/safeio"
	"arna/internal/structure"
)

// Session holds the active project and the collaborators used by save,
// load and generate_code.
type Session struct {
	mu   sync.Mutex
	tree *structure.Tree

	store  docstore.Store
	output *safeio.SafeFS
	gen    *codegen.Generator
}

// Options configures a Session. A nil Store disables save/load and a nil
// Output disables generate_code; a nil Generator uses the default target.
type Options struct {
	Store     docstore.Store
	Output    *safeio.SafeFS
	Generator *codegen.Generator
}

func NewSession(opts Options) (*Session, error) {
	gen := opts.Generator
	if gen == nil {
		var err error
		gen, err = codegen.New(codegen.Options{})
		if err != nil {
			return nil, err
		}
	}
	return &Session{store: opts.Store, output: opts.Output, gen: gen}, nil
}

func errNoProject() error {
	return structure.Errorf(structure.KindInvalidArgument, "", "no active project; call create_project or load first")
}

// CreateProject replaces the active project with a new empty one.
func (s *Session) CreateProject(name, description string) (string, error) {
	t, err := structure.New(name, description)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.tree = t
	s.mu.Unlock()
	return t.Name, nil
}

// AddFunction appends a function under parentPath (root when empty) and
// returns the new function's path.
func (s *Session) AddFunction(name, description, parentPath string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tree == nil {
		return "", errNoProject()
	}
	id, err := s.tree.AddFunction(name, description, parentPath)
	if err != nil {
		return "", err
	}
	return s.tree.PathOf(id), nil
}

// AddParameter appends a parameter and returns the owning function's path.
func (s *Session) AddParameter(functionPath, name, description string) (string, error) {
	return s.mutateFunction(functionPath, func(t *structure.Tree, id structure.NodeID) error {
		return t.AddParameterAt(id, name, description)
	})
}

// AddReturn sets or replaces the function's return description.
func (s *Session) AddReturn(functionPath, description string) (string, error) {
	return s.mutateFunction(functionPath, func(t *structure.Tree, id structure.NodeID) error {
		return t.SetReturnAt(id, description)
	})
}

// AddLogic sets or replaces the function's logic description.
func (s *Session) AddLogic(functionPath, description string) (string, error) {
	return s.mutateFunction(functionPath, func(t *structure.Tree, id structure.NodeID) error {
		return t.SetLogicAt(id, description)
	})
}

func (s *Session) mutateFunction(functionPath string, fn func(*structure.Tree, structure.NodeID) error) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tree == nil {
		return "", errNoProject()
	}
	id, err := s.tree.Resolve(functionPath)
	if err != nil {
		return "", err
	}
	if err := fn(s.tree, id); err != nil {
		return "", err
	}
	return s.tree.PathOf(id), nil
}

// Snapshot returns a copy of the active project, or nil.
func (s *Session) Snapshot() *structure.Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tree == nil {
		return nil
	}
	return s.tree.Clone()
}

// Document returns the serialized form of the active project.
func (s *Session) Document() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tree == nil {
		return "", errNoProject()
	}
	data, err := document.Marshal(s.tree)
	if err != nil {
		return "", structure.AsError(err)
	}
	return string(data), nil
}

// Save writes the active project to key in the document store.
func (s *Session) Save(ctx context.Context, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", structure.Errorf(structure.KindInvalidArgument, "", "file path is required")
	}
	if s.store == nil {
		return "", structure.Errorf(structure.KindInternal, "", "document store is not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tree == nil {
		return "", errNoProject()
	}
	data, err := document.Marshal(s.tree)
	if err != nil {
		return "", structure.AsError(err)
	}
	if err := s.store.Put(ctx, key, data); err != nil {
		return "", storeError(err, key)
	}
	log.Printf("codetools: saved %q to %s (%d bytes)", s.tree.Name, key, len(data))
	return key, nil
}

// Load replaces the active project with the document stored at key. On
// any failure the active project is left untouched.
func (s *Session) Load(ctx context.Context, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", structure.Errorf(structure.KindInvalidArgument, "", "file path is required")
	}
	if s.store == nil {
		return "", structure.Errorf(structure.KindInternal, "", "document store is not configured")
	}
	data, err := s.store.Get(ctx, key)
	if err != nil {
		return "", storeError(err, key)
	}
	t, err := document.Unmarshal(data)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.tree = t
	s.mu.Unlock()
	log.Printf("codetools: loaded %q from %s", t.Name, key)
	return t.Name, nil
}

// ApplyPlan makes the YAML plan embedded in text the active project.
func (s *Session) ApplyPlan(text string) (string, error) {
	t, err := document.ParsePlan(text)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.tree = t
	s.mu.Unlock()
	return t.Name, nil
}

// GenerateCode renders the active project into outputDir and returns the
// written file paths.
func (s *Session) GenerateCode(ctx context.Context, outputDir string) ([]string, error) {
	outputDir = strings.TrimSpace(outputDir)
	if outputDir == "" {
		return nil, structure.Errorf(structure.KindInvalidArgument, "", "output path is required")
	}
	if s.output == nil {
		return nil, structure.Errorf(structure.KindInternal, "", "code output is not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, structure.Wrap(structure.KindInternal, "", err, "generate_code")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tree == nil {
		return nil, errNoProject()
	}
	code, err := s.gen.Generate(s.tree)
	if err != nil {
		return nil, err
	}
	if _, err := s.output.MkdirAll(outputDir); err != nil {
		return nil, storeError(err, outputDir)
	}
	written, err := s.output.WriteFile(filepath.Join(outputDir, s.gen.FileName(s.tree)), []byte(code))
	if err != nil {
		return nil, storeError(err, outputDir)
	}
	log.Printf("codetools: generated %s", written)
	return []string{written}, nil
}

func storeError(err error, key string) error {
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		return structure.Errorf(structure.KindNotFound, key, "no document at %s", key)
	case errors.Is(err, safeio.ErrOutsideRoot):
		return structure.Wrap(structure.KindInvalidArgument, key, err, "path is outside the workspace")
	case errors.Is(err, safeio.ErrIsDir):
		return structure.Wrap(structure.KindInvalidArgument, key, err, "path is a directory")
	default:
		return structure.Wrap(structure.KindInternal, key, err, "storage failure")
	}
}
