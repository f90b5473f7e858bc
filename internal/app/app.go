// Package app wires configuration, storage, the editing session, the tool
// registry and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"

	"arna/internal/agent"
	"arna/internal/codegen"
	"arna/internal/codetools"
	"arna/internal/config"
	"arna/internal/docstore"
	"arna/internal/llmclient"
	"arna/internal/mcp"
	"arna/internal/safeio"
	"arna/internal/server"
)

type App struct {
	Config   *config.Config
	Session  *codetools.Session
	Registry *mcp.Registry
	Store    docstore.Store
	// Planner is nil when no LLM provider is configured.
	Planner  *agent.Planner

	server  *server.Server
	llm     llmclient.LLMClient
	closeDB func() error
}

// New builds the application from cfg. A nil cfg is loaded from the
// environment.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg == nil {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	workspace, err := safeio.NewSafeFS(cfg.Workspace)
	if err != nil {
		return nil, fmt.Errorf("failed to open workspace: %w", err)
	}
	store, closeDB, err := openStore(ctx, cfg, workspace)
	if err != nil {
		return nil, err
	}
	gen, err := codegen.New(codegen.Options{Target: cfg.Codegen.Target, Strict: cfg.Codegen.Strict})
	if err != nil {
		_ = closeDB()
		return nil, err
	}
	session, err := codetools.NewSession(codetools.Options{Store: store, Output: workspace, Generator: gen})
	if err != nil {
		_ = closeDB()
		return nil, err
	}
	registry := mcp.NewRegistry()
	mcp.RegisterDefaultTools(registry, mcp.Host{Session: session})

	client, err := newLLM(ctx, cfg.LLM)
	if err != nil {
		_ = closeDB()
		return nil, err
	}
	a := &App{
		Config:   cfg,
		Session:  session,
		Registry: registry,
		Store:    store,
		llm:      client,
		closeDB:  closeDB,
	}
	var planner server.Planner
	if client != nil {
		a.Planner = &agent.Planner{LLM: client, Session: session, Tools: registry}
		planner = a.Planner
	}
	a.server = server.New(cfg.Port, server.NewMux(registry, planner))
	return a, nil
}

// ErrNoPlanner is returned by Plan when no LLM provider is configured.
var ErrNoPlanner = errors.New("app: no LLM provider configured (set LLM_PROVIDER with OPENAI_API_KEY or GEMINI_API_KEY)")

// Plan runs the planning agent against the session.
func (a *App) Plan(ctx context.Context, specification string) (agent.Result, error) {
	if a.Planner == nil {
		return agent.Result{}, ErrNoPlanner
	}
	return a.Planner.Plan(ctx, specification)
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	return errors.Join(a.server.Shutdown(ctx), a.Close())
}

// Close releases the LLM client and store connections.
func (a *App) Close() error {
	var errs []error
	if a.llm != nil {
		errs = append(errs, a.llm.Close())
		a.llm = nil
	}
	if a.closeDB != nil {
		errs = append(errs, a.closeDB())
		a.closeDB = nil
	}
	return errors.Join(errs...)
}
