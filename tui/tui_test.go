package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/OranPie/rulatro/content"
	"github.com/OranPie/rulatro/engine"
	"github.com/OranPie/rulatro/engine/session"
	"github.com/OranPie/rulatro/types"
)

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		line string
		want lineKind
	}{
		{"blind_started ante=1 blind=small target=300", kindEvent},
		{"shop_left", kindEvent},
		{"pair: 10 chips x 2 mult", kindScore},
		{"  joker:joker             add_mult   32 x 6", kindScore},
		{"= 32 x 6 = 192", kindScore},
		{"[Run saved to x.]", kindSystem},
		{"[[trace] start_blind rng=3 actions=2 events=1]", kindTrace},
		{"Error: play rejected in setup phase", kindError},
		{"Ante 1 small | setup | 0/300 | $4 | hands 4 discards 3", kindState},
		{"Hand: 0:Ah  1:Kd", kindState},
		{"Jokers: 0:Joker #5", kindState},
		{"", kindState},
	}
	for _, tt := range tests {
		got := classifyLine(tt.line)
		if got != tt.want {
			t.Errorf("classifyLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestWordWrap(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  string
	}{
		{"short", 80, "short"},
		{"hello world", 5, "hello\nworld"},
		{"Jokers: 0:Joker #5  1:Greedy Joker #6", 20,
			"Jokers: 0:Joker #5\n1:Greedy Joker #6"},
		{"  indented step line", 10, "  indented\nstep line"},
		{"", 80, ""},
		{"a b c d e", 3, "a b\nc d\ne"},
	}
	for _, tt := range tests {
		got := wordWrap(tt.text, tt.width)
		if got != tt.want {
			t.Errorf("wordWrap(%q, %d) =\n  %q\nwant:\n  %q", tt.text, tt.width, got, tt.want)
		}
	}
}

func TestHistory_PrevNext(t *testing.T) {
	h := NewHistory(5)
	h.Push("start")
	h.Push("deal")
	h.Push("play 0")

	for _, want := range []string{"play 0", "deal", "start"} {
		got, ok := h.Prev("")
		if !ok || got != want {
			t.Errorf("Prev = %q (ok=%v), want %q", got, ok, want)
		}
	}
	if _, ok := h.Prev(""); ok {
		t.Error("expected false past the oldest entry")
	}

	next, ok := h.Next()
	if !ok || next != "deal" {
		t.Errorf("Next = %q (ok=%v), want deal", next, ok)
	}
}

func TestHistory_DraftRestored(t *testing.T) {
	h := NewHistory(5)
	h.Push("deal")

	if got, _ := h.Prev("play 0 1"); got != "deal" {
		t.Errorf("Prev = %q, want deal", got)
	}
	draft, ok := h.Next()
	if !ok || draft != "play 0 1" {
		t.Errorf("Next = %q (ok=%v), want the draft", draft, ok)
	}
	if _, ok := h.Next(); ok {
		t.Error("expected false when not navigating")
	}
}

func TestHistory_Empty(t *testing.T) {
	h := NewHistory(5)
	if _, ok := h.Prev("x"); ok {
		t.Error("expected false on empty history")
	}
	if _, ok := h.Next(); ok {
		t.Error("expected false on empty history")
	}
}

func TestHistory_MaxSizeAndDuplicates(t *testing.T) {
	h := NewHistory(2)
	h.Push("a")
	h.Push("b")
	h.Push("b")
	h.Push("c")

	if len(h.entries) != 2 || h.entries[0] != "b" || h.entries[1] != "c" {
		t.Errorf("entries = %v, want [b c]", h.entries)
	}
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	tbl, _, err := content.Table()
	if err != nil {
		t.Fatalf("loading content: %v", err)
	}
	return New(session.New(engine.New(tbl, 11), tbl, nil), t.TempDir())
}

func enter(t *testing.T, m Model, line string) Model {
	t.Helper()
	m.input.SetValue(line)
	next, _ := m.handleEnter()
	return next.(Model)
}

func TestHandleEnter_RunsCommands(t *testing.T) {
	m := newTestModel(t)
	m = enter(t, m, "start")
	m = enter(t, m, "deal")

	if m.sess.Engine.State.Phase != types.PhasePlay {
		t.Fatalf("phase = %s, want play", m.sess.Engine.State.Phase)
	}
	joined := rawText(m)
	if !strings.Contains(joined, "> start") || !strings.Contains(joined, "hand_dealt") {
		t.Errorf("expected echoed input and events, got:\n%s", joined)
	}

	m = enter(t, m, "g")
	if !strings.Contains(rawText(m), "Error: deal rejected in play phase") {
		t.Error("expected repeated deal to be rejected")
	}
}

func TestHandleEnter_QuitVerb(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("quit")
	next, cmd := m.handleEnter()
	if !next.(Model).quitting || cmd == nil {
		t.Error("expected quit verb to stop the program")
	}
}

func TestHandleEnter_Trace(t *testing.T) {
	m := newTestModel(t)
	m = enter(t, m, "/trace")
	m = enter(t, m, "start")

	if !strings.Contains(rawText(m), "[[trace] start_blind rng=") {
		t.Error("expected trace line after command")
	}
}

func rawText(m Model) string {
	var lines []string
	for _, rl := range m.rawLines {
		lines = append(lines, rl.text)
	}
	return strings.Join(lines, "\n")
}

func TestView_ShowsHandAndStatus(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
	m = next.(Model)
	m = enter(t, m, "start")
	m = enter(t, m, "deal")

	view := m.View()
	if !strings.Contains(view, "Ante 1 small | play") {
		t.Error("expected status bar in view")
	}
	if !strings.Contains(view, "0:") {
		t.Error("expected hand bar in view")
	}
}

func TestHandleMeta_Quit(t *testing.T) {
	m := newTestModel(t)
	for _, cmd := range []string{"/quit", "/exit"} {
		if _, quit := m.handleMeta(cmd); !quit {
			t.Errorf("expected quit=true for %s", cmd)
		}
	}
}

func TestHandleMeta_SaveAndLoad(t *testing.T) {
	m := newTestModel(t)
	m = enter(t, m, "start")

	output, quit := m.handleMeta("/save test")
	if quit {
		t.Error("save should not quit")
	}
	if len(output) == 0 || !strings.Contains(output[0], "Run saved") {
		t.Errorf("expected save confirmation, got %v", output)
	}

	output, _ = m.handleMeta("/load test")
	if len(output) == 0 || output[0] != "Run loaded (2 actions replayed)." {
		t.Errorf("expected load confirmation, got %v", output)
	}
}

func TestHandleMeta_LoadNonexistent(t *testing.T) {
	m := newTestModel(t)
	output, _ := m.handleMeta("/load nonexistent")
	if len(output) == 0 || !strings.Contains(output[0], "Load failed") {
		t.Errorf("expected load failure, got %v", output)
	}
}

func TestHandleMeta_Help(t *testing.T) {
	m := newTestModel(t)
	output, quit := m.handleMeta("/help")
	if quit {
		t.Error("help should not quit")
	}
	joined := strings.Join(output, "\n")
	for _, expected := range []string{"/save", "/load", "/quit", "play (p)", "Navigation"} {
		if !strings.Contains(joined, expected) {
			t.Errorf("expected %q in help output", expected)
		}
	}
}

func TestHandleMeta_Trace(t *testing.T) {
	m := newTestModel(t)

	output, _ := m.handleMeta("/trace")
	if !m.trace || !strings.Contains(output[0], "enabled") {
		t.Errorf("expected trace enabled, got %v", output)
	}
	output, _ = m.handleMeta("/trace")
	if m.trace || !strings.Contains(output[0], "disabled") {
		t.Errorf("expected trace disabled, got %v", output)
	}
}

func TestHandleMeta_Unknown(t *testing.T) {
	m := newTestModel(t)
	output, quit := m.handleMeta("/bogus")
	if quit {
		t.Error("unknown command should not quit")
	}
	if len(output) == 0 || !strings.Contains(output[0], "Unknown command") {
		t.Errorf("expected unknown command message, got %v", output)
	}
}

func TestHandleMeta_State(t *testing.T) {
	m := newTestModel(t)
	output, _ := m.handleMeta("/state")
	if len(output) == 0 || !strings.HasPrefix(output[0], "Ante 1 small | setup") {
		t.Errorf("expected run status, got %v", output)
	}
}
