// Package mcp exposes the action API as MCP tools over stdio, so an agent
// can drive a run with structured commands or command lines.
package mcp

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/OranPie/rulatro/engine"
	"github.com/OranPie/rulatro/engine/rules"
	"github.com/OranPie/rulatro/engine/session"
	"github.com/OranPie/rulatro/types"
)

// Version is reported to MCP clients.
const Version = "1.0.0"

// ToolResponse is the JSON envelope returned by the run tools.
type ToolResponse struct {
	Events   []types.Event   `json:"events"`
	State    *types.RunState `json:"state,omitempty"`
	Legal    []string        `json:"legal"`
	Lines    []string        `json:"lines,omitempty"`
	GameOver bool            `json:"game_over"`
}

// Server holds the run driven by the tools. Tool calls are serialized.
type Server struct {
	mu   sync.Mutex
	sess *session.Session
	log  *zap.Logger
}

// NewServer starts a run with seed on tbl.
func NewServer(tbl *rules.Table, seed int64, log *zap.Logger, opts ...engine.Option) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	e := engine.New(tbl, seed, opts...)
	return &Server{sess: session.New(e, tbl, log, opts...), log: log}
}

// MCPServer builds an MCP server with every tool registered.
func (s *Server) MCPServer() *server.MCPServer {
	ms := server.NewMCPServer("rulatro", Version)
	s.RegisterTools(ms)
	return ms
}

// ServeStdio serves the tools on stdin and stdout until the client
// disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.MCPServer())
}

func (s *Server) response(res engine.Result, lines []string) *ToolResponse {
	e := s.sess.Engine
	snap := res.Snapshot
	if snap == nil {
		snap = e.Snapshot()
	}
	legal := e.LegalActions()
	names := make([]string, len(legal))
	for i, a := range legal {
		names[i] = string(a)
	}
	return &ToolResponse{
		Events:   res.Events,
		State:    snap,
		Legal:    names,
		Lines:    lines,
		GameOver: snap.Phase == types.PhaseFailed || snap.Phase == types.PhaseWon,
	}
}

func respondJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
