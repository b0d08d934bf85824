package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OranPie/rulatro/cli"
	"github.com/OranPie/rulatro/engine"
	"github.com/OranPie/rulatro/engine/session"
	"github.com/OranPie/rulatro/tui"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in the terminal UI",
	Long: `Starts a run in the full-screen terminal UI. Falls back to the line
interface with --plain, --script, or when stdout is not a terminal.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		plain, _ := cmd.Flags().GetBool("plain")
		script, _ := cmd.Flags().GetString("script")
		trace, _ := cmd.Flags().GetBool("trace")
		saveDir, _ := cmd.Flags().GetString("save_dir")

		if plain || script != "" || !isTerminal() {
			runLine(script, trace, saveDir)
			return
		}

		a, sess := mustSession()
		defer a.close()
		if err := tui.Run(sess, saveDir); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Play with the line interface",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		script, _ := cmd.Flags().GetString("script")
		trace, _ := cmd.Flags().GetBool("trace")
		saveDir, _ := cmd.Flags().GetString("save_dir")
		runLine(script, trace, saveDir)
	},
}

func init() {
	for _, c := range []*cobra.Command{playCmd, replCmd} {
		c.Flags().String("script", "", "read commands from a file, echoing each")
		c.Flags().Bool("trace", false, "print a trace line after each action")
		c.Flags().String("save_dir", cli.DefaultSaveDir(), "directory for /save and /load")
	}
	playCmd.Flags().Bool("plain", false, "use the line interface")
	rootCmd.Flags().AddFlagSet(playCmd.Flags())

	rootCmd.AddCommand(playCmd, replCmd)
}

// runLine runs the line interface, reading from script when set.
func runLine(script string, trace bool, saveDir string) {
	a, sess := mustSession()
	defer a.close()

	c := cli.New(sess)
	c.Trace = trace
	c.SaveDir = saveDir
	if script != "" {
		f, err := os.Open(script)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		c.In = f
		c.EchoInput = true
	}
	c.Run()
}

func mustSession() (*app, *session.Session) {
	a, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	e := engine.New(a.table, runSeed(), a.opts...)
	return a, session.New(e, a.table, a.log, a.opts...)
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
