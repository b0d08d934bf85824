package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OranPie/rulatro/content"
	"github.com/OranPie/rulatro/types"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	tbl, _, err := content.Table()
	require.NoError(t, err)
	return NewServer(tbl, 42, nil)
}

func call(t *testing.T, h func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text, res.IsError
}

func decode(t *testing.T, text string) ToolResponse {
	t.Helper()
	var resp ToolResponse
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	return resp
}

func TestGetState(t *testing.T) {
	s := newTestServer(t)
	text, isErr := call(t, s.handleGetState, nil)
	require.False(t, isErr)

	resp := decode(t, text)
	require.NotNil(t, resp.State)
	assert.Equal(t, types.PhaseSetup, resp.State.Phase)
	assert.Contains(t, resp.Legal, "start_blind")
	assert.Empty(t, resp.Events)
	assert.False(t, resp.GameOver)
}

func TestTakeAction_PlayFlow(t *testing.T) {
	s := newTestServer(t)

	text, isErr := call(t, s.handleTakeAction, map[string]any{"action": "start_blind"})
	require.False(t, isErr, text)
	resp := decode(t, text)
	require.NotEmpty(t, resp.Events)
	assert.Equal(t, types.EventBlindStarted, resp.Events[0].Type)

	_, isErr = call(t, s.handleTakeAction, map[string]any{"action": "deal"})
	require.False(t, isErr)

	text, isErr = call(t, s.handleTakeAction, map[string]any{"action": "play", "indices": "0 1"})
	require.False(t, isErr, text)
	resp = decode(t, text)
	assert.Equal(t, 3, resp.State.HandsLeft)
	assert.Len(t, resp.State.Hand, resp.State.HandSize)
}

func TestTakeAction_Rejected(t *testing.T) {
	s := newTestServer(t)

	text, isErr := call(t, s.handleTakeAction, map[string]any{"action": "play", "indices": "0"})
	assert.True(t, isErr)
	assert.NotEmpty(t, text)
	assert.Equal(t, types.PhaseSetup, s.sess.Engine.State.Phase)
	assert.Empty(t, s.sess.Engine.History())

	text, isErr = call(t, s.handleTakeAction, map[string]any{"action": "deal", "indices": "a b"})
	assert.True(t, isErr)
	assert.Contains(t, text, "Invalid indices")
}

func TestRunCommand(t *testing.T) {
	s := newTestServer(t)

	text, isErr := call(t, s.handleRunCommand, map[string]any{"line": "start"})
	require.False(t, isErr, text)
	resp := decode(t, text)
	assert.Contains(t, resp.Lines, "blind_started ante=1 blind=small target=300")

	_, isErr = call(t, s.handleRunCommand, map[string]any{"line": "frobnicate"})
	assert.True(t, isErr)
}

func TestNewRun(t *testing.T) {
	s := newTestServer(t)
	call(t, s.handleRunCommand, map[string]any{"line": "start"})

	text, isErr := call(t, s.handleNewRun, map[string]any{"seed": 9})
	require.False(t, isErr, text)
	resp := decode(t, text)
	assert.Equal(t, int64(9), resp.State.Seed)
	assert.Equal(t, types.PhaseSetup, resp.State.Phase)
}

func TestLookup(t *testing.T) {
	s := newTestServer(t)

	text, isErr := call(t, s.handleLookup, map[string]any{"kind": "joker", "name": "joker"})
	require.False(t, isErr, text)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &got))
	assert.Equal(t, "joker", got["id"])
	assert.Equal(t, []any{"independent"}, got["triggers"])

	_, isErr = call(t, s.handleLookup, map[string]any{"kind": "joker", "name": "no such joker"})
	assert.True(t, isErr)
}

func TestParseIndices(t *testing.T) {
	got, err := parseIndices("0 2,4")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 4}, got)

	got, err = parseIndices("")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseIndices("x")
	assert.Error(t, err)
}

func TestRegisterTools(t *testing.T) {
	s := newTestServer(t)
	ms := s.MCPServer()
	assert.NotNil(t, ms)
}
