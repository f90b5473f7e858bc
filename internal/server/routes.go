// Package server exposes the structure tools to a UI process over HTTP
// and a websocket.
//
//	GET  /healthz        liveness
//	GET  /tools          tool specs
//	POST /tools/{name}   invoke one tool with the JSON request body
//	POST /plan           run the planning agent, when configured
//	GET  /ws             websocket carrying {id, tool, input} calls
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"arna/internal/agent"
	"arna/internal/mcp"
)

// Tools is the tool surface served over HTTP.
type Tools interface {
	Specs() []mcp.ToolSpec
	Invoke(ctx context.Context, name string, input json.RawMessage) mcp.Result
}

// Planner runs the planning agent for a prose specification.
type Planner interface {
	Plan(ctx context.Context, specification string) (agent.Result, error)
}

// NewMux builds the router. planner may be nil, in which case /plan
// answers 503.
func NewMux(tools Tools, planner Planner) http.Handler {
	h := &toolHandler{tools: tools, planner: planner}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /tools", h.handleSpecs)
	mux.HandleFunc("POST /tools/{name}", h.handleInvoke)
	mux.HandleFunc("POST /plan", h.handlePlan)
	mux.HandleFunc("GET /ws", h.handleWS)
	return CORS(mux)
}
