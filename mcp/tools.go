package mcp

import (
	"context"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/OranPie/rulatro/engine"
	"github.com/OranPie/rulatro/engine/rules"
	"github.com/OranPie/rulatro/types"
)

// RegisterTools adds all run tools to the MCP server.
func (s *Server) RegisterTools(ms *server.MCPServer) {
	ms.AddTool(newRunTool(), s.handleNewRun)
	ms.AddTool(getStateTool(), s.handleGetState)
	ms.AddTool(takeActionTool(), s.handleTakeAction)
	ms.AddTool(runCommandTool(), s.handleRunCommand)
	ms.AddTool(lookupTool(), s.handleLookup)
}

// --- Tool definitions ---

func newRunTool() mcp.Tool {
	return mcp.NewTool("new_run",
		mcp.WithDescription("Start a new run. The same seed always produces the same run for the same actions."),
		mcp.WithNumber("seed", mcp.Required(), mcp.Description("Run seed")),
	)
}

func getStateTool() mcp.Tool {
	return mcp.NewTool("get_state",
		mcp.WithDescription("Get the current run state and the legal actions without changing anything. Read-only."),
	)
}

func takeActionTool() mcp.Tool {
	actions := make([]string, len(engine.Actions))
	for i, a := range engine.Actions {
		actions[i] = string(a)
	}
	return mcp.NewTool("take_action",
		mcp.WithDescription("Apply one action. Returns the events it produced and the new state. "+
			"A rejected action leaves the run unchanged."),
		mcp.WithString("action", mcp.Required(), mcp.Enum(actions...), mcp.Description("Action name")),
		mcp.WithString("indices", mcp.Description("Space-separated 0-based hand or pack indices (play, discard, pick_pack, use_consumable)")),
		mcp.WithNumber("index", mcp.Description("0-based shop offer index (buy_card, buy_pack, buy_voucher)")),
		mcp.WithNumber("uid", mcp.Description("Joker or consumable uid (sell_joker, sell_consumable, use_consumable)")),
		mcp.WithNumber("seed", mcp.Description("Seed for reset")),
	)
}

func runCommandTool() mcp.Tool {
	return mcp.NewTool("run_command",
		mcp.WithDescription("Run a text command such as 'play 0 1 2', 'play ah kh', 'buy pack 0' or 'use pluto'. "+
			"Returns rendered lines alongside the state."),
		mcp.WithString("line", mcp.Required(), mcp.Description("Command line")),
	)
}

func lookupTool() mcp.Tool {
	return mcp.NewTool("lookup",
		mcp.WithDescription("Look up a content definition by id or display name. Read-only."),
		mcp.WithString("kind", mcp.Required(), mcp.Enum("joker", "boss", "tag", "consumable", "voucher"), mcp.Description("Definition kind")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Id or display name")),
	)
}

// --- Tool handlers ---

func (s *Server) handleNewRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seed := int64(request.GetInt("seed", 0))
	out := s.sess.Apply(engine.Command{Action: engine.ActReset, Seed: seed})
	if out.Err != nil {
		return mcp.NewToolResultErrorf("Reset failed: %v", out.Err), nil
	}
	return mcp.NewToolResultText(respondJSON(s.response(engine.Result{Events: out.Events}, nil))), nil
}

func (s *Server) handleGetState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := s.response(engine.Result{}, nil)
	resp.Events = []types.Event{}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (s *Server) handleTakeAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := engine.Command{
		Action: engine.ActionKind(request.GetString("action", "")),
		Index:  request.GetInt("index", 0),
		UID:    uint32(request.GetInt("uid", 0)),
		Seed:   int64(request.GetInt("seed", 0)),
	}
	indices, err := parseIndices(request.GetString("indices", ""))
	if err != nil {
		return mcp.NewToolResultErrorf("Invalid indices: %v", err), nil
	}
	c.Indices = indices

	res, err := s.sess.Engine.Do(c)
	if err != nil {
		s.log.Info("tool action rejected", zap.Stringer("command", c), zap.Error(err))
		return mcp.NewToolResultErrorf("%v", err), nil
	}
	return mcp.NewToolResultText(respondJSON(s.response(res, nil))), nil
}

func (s *Server) handleRunCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.sess.Step(request.GetString("line", ""))
	if out.Err != nil {
		return mcp.NewToolResultErrorf("%v", out.Err), nil
	}
	return mcp.NewToolResultText(respondJSON(s.response(engine.Result{Events: out.Events}, out.Lines))), nil
}

func (s *Server) handleLookup(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind := rules.SourceKind(request.GetString("kind", ""))
	name := request.GetString("name", "")
	tbl := s.sess.Table

	id, ok := tbl.Lookup(kind, name)
	if !ok {
		return mcp.NewToolResultErrorf("No %s matches %q.", kind, name), nil
	}
	var def any
	switch kind {
	case rules.SourceJoker:
		def, _ = tbl.Joker(id)
	case rules.SourceBoss:
		def, _ = tbl.Boss(id)
	case rules.SourceTag:
		def, _ = tbl.Tag(id)
	case rules.SourceConsumable:
		def, _ = tbl.Consumable(id)
	case rules.SourceVoucher:
		def, _ = tbl.Voucher(id)
	}
	return mcp.NewToolResultText(respondJSON(map[string]any{
		"id":       id,
		"name":     tbl.Name(kind, id),
		"triggers": tbl.Triggers(kind, id),
		"def":      def,
	})), nil
}

func parseIndices(s string) ([]int, error) {
	var out []int
	for _, f := range strings.Fields(strings.ReplaceAll(s, ",", " ")) {
		i, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, nil
}
