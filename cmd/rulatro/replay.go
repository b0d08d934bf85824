package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OranPie/rulatro/engine/save"
	"github.com/OranPie/rulatro/engine/session"
)

var replayCmd = &cobra.Command{
	Use:   "replay <save_file>",
	Short: "Replay a saved run and verify it",
	Long: `Replays the action log of a save file from its seed and checks the
result against the saved snapshot. With --resume the snapshot is restored
directly instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resume, _ := cmd.Flags().GetBool("resume")
		out := cmd.OutOrStdout()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		sd, err := save.Load(data)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		a, err := setup()
		if err != nil {
			return err
		}
		defer a.close()

		if resume {
			e, err := save.Resume(a.table, sd, a.opts...)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Run %s resumed at action %d.\n", sd.RunID, len(e.History()))
			printLines(out, session.Describe(e.State, a.table))
			return nil
		}

		e, err := save.Replay(a.table, sd, a.opts...)
		switch {
		case errors.Is(err, save.ErrMismatch):
			fmt.Fprintf(out, "Run %s replayed %d actions but does not match its snapshot.\n", sd.RunID, len(sd.Actions))
			return err
		case err != nil:
			return err
		}
		fmt.Fprintf(out, "Run %s replayed %d actions, seed %d, snapshot verified.\n", sd.RunID, len(sd.Actions), sd.Seed)
		printLines(out, session.Describe(e.State, a.table))
		return nil
	},
}

func init() {
	replayCmd.Flags().Bool("resume", false, "restore the snapshot without replaying")
	rootCmd.AddCommand(replayCmd)
}
