// Package session drives an engine from text command lines. It is the
// shared core of the line and terminal front-ends: parse, resolve, apply,
// then render the outcome as display lines.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/OranPie/rulatro/engine"
	"github.com/OranPie/rulatro/engine/parser"
	"github.com/OranPie/rulatro/engine/resolve"
	"github.com/OranPie/rulatro/engine/rules"
	"github.com/OranPie/rulatro/engine/save"
	"github.com/OranPie/rulatro/types"
)

// Session pairs an engine with the table it runs and a run id for saves.
type Session struct {
	Engine *engine.Engine
	Table  *rules.Table
	RunID  string

	opts []engine.Option
	log  *zap.Logger
}

// Output is the result of one command line.
type Output struct {
	Lines   []string
	Command *engine.Command
	Events  []types.Event
	Err     error
	Quit    bool
}

// New wraps an engine. opts are reused when a save is loaded into a fresh
// engine.
func New(e *engine.Engine, tbl *rules.Table, log *zap.Logger, opts ...engine.Option) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{Engine: e, Table: tbl, RunID: save.NewRunID(), opts: opts, log: log}
}

// Step runs one command line.
func (s *Session) Step(line string) Output {
	in, err := parser.Parse(line)
	if err != nil {
		return fail(err)
	}
	if in.Empty() {
		return Output{}
	}

	switch in.Verb {
	case "help":
		return Output{Lines: HelpLines()}
	case "state":
		return Output{Lines: Describe(s.Engine.State, s.Table)}
	case "actions":
		return Output{Lines: []string{"Legal: " + s.legal()}}
	case "quit":
		return Output{Lines: []string{"Goodbye."}, Quit: true}
	}

	c, err := resolve.Resolve(s.Engine.State, s.Table, in)
	if errors.Is(err, resolve.ErrNotAction) {
		return fail(fmt.Errorf("unknown command %q, type help", in.Verb))
	}
	if err != nil {
		return fail(err)
	}
	return s.Apply(c)
}

// Apply runs a resolved command and renders its events and the new state.
func (s *Session) Apply(c engine.Command) Output {
	res, err := s.Engine.Do(c)
	if err != nil {
		s.log.Info("command rejected", zap.Stringer("command", c), zap.Error(err))
		return fail(err)
	}
	if c.Action == engine.ActReset {
		s.RunID = save.NewRunID()
	}
	out := Output{Command: &c, Events: res.Events}
	for _, ev := range res.Events {
		out.Lines = append(out.Lines, EventLine(ev))
	}
	if c.Action == engine.ActPlay && res.Snapshot.LastScore != nil {
		out.Lines = append(out.Lines, BreakdownLines(res.Snapshot.LastScore)...)
	}
	out.Lines = append(out.Lines, Describe(res.Snapshot, s.Table)...)
	return out
}

func (s *Session) legal() string {
	acts := s.Engine.LegalActions()
	names := make([]string, len(acts))
	for i, a := range acts {
		names[i] = string(a)
	}
	return strings.Join(names, ", ")
}

// Save writes the run to path, creating parent directories.
func (s *Session) Save(path string) error {
	data, err := save.Save(s.Engine, s.RunID)
	if err != nil {
		return fmt.Errorf("encoding save: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Load replays the save at path into a fresh engine and switches to it.
// The current run is kept when the replay fails.
func (s *Session) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	sd, err := save.Load(data)
	if err != nil {
		return fmt.Errorf("reading save: %w", err)
	}
	e, err := save.Replay(s.Table, sd, s.opts...)
	if err != nil {
		return fmt.Errorf("replaying save: %w", err)
	}
	s.Engine = e
	s.RunID = sd.RunID
	return nil
}

func fail(err error) Output {
	return Output{Lines: []string{"Error: " + err.Error()}, Err: err}
}

// HelpLines lists the game commands.
func HelpLines() []string {
	return []string{
		"Game commands:",
		"  start (s)                 - Start the current blind",
		"  skip                      - Skip the blind for a tag, or skip an open pack",
		"  deal                      - Draw up to hand size",
		"  play (p) <cards>          - Play cards by index or code: play 0 1 2, play ah kh",
		"  discard (d) <cards>       - Discard cards",
		"  shop / leave / next (n)   - Enter the shop, leave it, or go to the next blind",
		"  reroll (r)                - Reroll the shop",
		"  buy [card|pack|voucher] N - Buy a shop offer",
		"  pick N [M]                - Pick options from an open pack",
		"  use <consumable> [cards]  - Use a consumable by slot, #uid or name",
		"  sell [joker|planet] <x>   - Sell a joker or consumable",
		"  new [seed]                - Start a new run",
		"",
		"  state (st)                - Show the run",
		"  actions                   - List legal actions",
		"  help (h) / quit (q)",
	}
}
