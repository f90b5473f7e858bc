package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"arna/internal/mcp"
	"arna/internal/structure"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsPingEvery = (wsPongWait * 9) / 10
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type wsInbound struct {
	ID    string          `json:"id,omitempty"`
	Type  string          `json:"type,omitempty"`
	Tool  string          `json:"tool"`
	Input json.RawMessage `json:"input,omitempty"`
}

type wsOutbound struct {
	ID   string `json:"id,omitempty"`
	Type string `json:"type"`
	mcp.Result
}

// handleWS serves tool calls over one websocket. Calls on a connection run
// in arrival order and every call gets exactly one reply carrying its id.
func (h *toolHandler) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
		log.Printf("server: ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	writeCh := make(chan wsOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(wsPingEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	for {
		var in wsInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}
		if strings.EqualFold(strings.TrimSpace(in.Type), "ping") {
			push(ctx, writeCh, wsOutbound{ID: in.ID, Type: "pong", Result: mcp.Result{OK: true}})
			continue
		}
		tool := strings.TrimSpace(in.Tool)
		if tool == "" {
			push(ctx, writeCh, wsOutbound{ID: in.ID, Type: "result", Result: mcp.Result{
				Error: structure.Errorf(structure.KindInvalidArgument, "", "tool is required"),
			}})
			continue
		}
		res := h.tools.Invoke(ctx, tool, in.Input)
		push(ctx, writeCh, wsOutbound{ID: in.ID, Type: "result", Result: res})
	}
}

func push(ctx context.Context, ch chan<- wsOutbound, out wsOutbound) {
	select {
	case ch <- out:
	case <-ctx.Done():
	}
}
