package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"arna/internal/mcp"
	"arna/internal/structure"
)

const maxRequestBody = 1 << 20

type toolHandler struct {
	tools   Tools
	planner Planner
}

func (h *toolHandler) handleSpecs(w http.ResponseWriter, _ *http.Request) {
	specs := h.tools.Specs()
	if specs == nil {
		specs = []mcp.ToolSpec{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": specs})
}

func (h *toolHandler) handleInvoke(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PathValue("name"))
	body, err := readBody(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, mcp.Result{Error: structure.Wrap(structure.KindInvalidArgument, "", err, "read request body")})
		return
	}
	res := h.tools.Invoke(r.Context(), name, body)
	writeJSON(w, statusFor(res), res)
}

type planRequest struct {
	Specification string `json:"specification"`
}

func (h *toolHandler) handlePlan(w http.ResponseWriter, r *http.Request) {
	if h.planner == nil {
		writeJSON(w, http.StatusServiceUnavailable, mcp.Result{Error: structure.Errorf(structure.KindInternal, "", "planning is not configured")})
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, mcp.Result{Error: structure.Wrap(structure.KindInvalidArgument, "", err, "read request body")})
		return
	}
	var req planRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, mcp.Result{Error: structure.Wrap(structure.KindInvalidArgument, "", err, "decode plan request")})
		return
	}
	out, err := h.planner.Plan(r.Context(), req.Specification)
	if err != nil {
		log.Printf("server: plan failed: %v", err)
		res := mcp.Result{Error: structure.AsError(err)}
		writeJSON(w, statusFor(res), res)
		return
	}
	raw, err := json.Marshal(out)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, mcp.Result{Error: structure.AsError(err)})
		return
	}
	writeJSON(w, http.StatusOK, mcp.Result{OK: true, Result: raw})
}

// statusFor maps an envelope to an HTTP status. Failures inside a tool are
// still reported with the envelope body.
func statusFor(res mcp.Result) int {
	if res.OK || res.Error == nil {
		return http.StatusOK
	}
	switch res.Error.Kind {
	case structure.KindNotFound:
		return http.StatusNotFound
	case structure.KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}

func readBody(w http.ResponseWriter, r *http.Request) (json.RawMessage, error) {
	if r.Body == nil {
		return nil, nil
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errors.New("request body too large")
		}
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	return json.RawMessage(data), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		log.Printf("server: write response failed: %v", err)
	}
}
