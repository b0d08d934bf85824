// Package cli provides the line-oriented front-end: a prompt loop over
// stdin/stdout with meta-commands for saving, loading and tracing.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/OranPie/rulatro/engine/session"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Session   *session.Session
	In        io.Reader
	Out       io.Writer
	SaveDir   string
	Trace     bool
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI wired to the given session.
func New(s *session.Session) *CLI {
	return &CLI{
		Session: s,
		In:      os.Stdin,
		Out:     os.Stdout,
		SaveDir: DefaultSaveDir(),
	}
}

// DefaultSaveDir is ~/.rulatro/saves.
func DefaultSaveDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".rulatro", "saves")
}

// Run starts the loop: prompt, input, dispatch, output. It returns when
// input ends or the player quits.
func (c *CLI) Run() {
	c.printLine(fmt.Sprintf("Rulatro, seed %d. Type help for commands.", c.Session.Engine.State.Seed))
	c.printLines(session.Describe(c.Session.Engine.State, c.Session.Table))

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return
			}
			continue
		}

		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		out := c.Session.Step(input)
		c.printLines(out.Lines)
		if c.Trace {
			c.printTrace(out)
		}
		if out.Quit {
			return
		}
	}
}

// handleMeta dispatches meta-commands. Returns true if the loop should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/save":
		c.cmdSave(arg)

	case "/load":
		c.cmdLoad(arg)

	case "/help":
		c.cmdHelp()

	case "/state":
		c.printLines(session.Describe(c.Session.Engine.State, c.Session.Table))

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) savePath(name string) string {
	if name == "" {
		name = "quicksave"
	}
	return filepath.Join(c.SaveDir, name+".json")
}

func (c *CLI) cmdSave(name string) {
	if err := c.Session.Save(c.savePath(name)); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Run saved to %s.", c.savePath(name)))
}

func (c *CLI) cmdLoad(name string) {
	if err := c.Session.Load(c.savePath(name)); err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Run loaded (%d actions replayed).", len(c.Session.Engine.History())))
	c.printLines(session.Describe(c.Session.Engine.State, c.Session.Table))
}

func (c *CLI) cmdHelp() {
	c.printLines([]string{
		"System:",
		"  /save [name]  - Save the run (default: quicksave)",
		"  /load [name]  - Load and replay a run (default: quicksave)",
		"  /quit         - Exit",
		"  /help         - Show this help",
		"  /state        - Show the run",
		"  /trace        - Toggle trace output",
		"  again (g)     - Repeat your last command",
		"",
	})
	c.printLines(session.HelpLines())
}

func (c *CLI) printTrace(out session.Output) {
	if out.Command == nil {
		return
	}
	e := c.Session.Engine
	c.printSystem(fmt.Sprintf("[trace] %s rng=%d actions=%d events=%d",
		out.Command, e.RNG.Position(), len(e.History()), len(out.Events)))
}

func (c *CLI) printLines(lines []string) {
	for _, line := range lines {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
