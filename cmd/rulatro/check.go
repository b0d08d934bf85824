package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/OranPie/rulatro/config"
	"github.com/OranPie/rulatro/content"
	"github.com/OranPie/rulatro/engine/rules"
	"github.com/OranPie/rulatro/loader"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate content, game tables and mods",
	Long: `Loads the base content with content_dir layered over it, the game
tables from config_file and the Lua mods in mods_dir, and reports every
error and warning.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		var dirs []string
		if d := viper.GetString("content_dir"); d != "" {
			dirs = append(dirs, d)
		}
		tbl, warnings, err := content.Table(dirs...)
		for _, w := range warnings {
			fmt.Fprintf(out, "warning: %s\n", w)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "content: %d jokers, %d bosses, %d tags, %d consumables, %d vouchers\n",
			len(tbl.IDs(rules.SourceJoker)), len(tbl.IDs(rules.SourceBoss)), len(tbl.IDs(rules.SourceTag)),
			len(tbl.IDs(rules.SourceConsumable)), len(tbl.IDs(rules.SourceVoucher)))

		if path := viper.GetString("config_file"); path != "" {
			if _, err := config.Load(path); err != nil {
				return err
			}
			fmt.Fprintf(out, "config: %s ok\n", path)
		}

		if dir := viper.GetString("mods_dir"); dir != "" {
			mods, err := loader.LoadMods(dir, nil)
			if err != nil {
				return err
			}
			defer loader.CloseMods(mods)
			for _, m := range mods {
				fmt.Fprintf(out, "mod: %s\n", m.Name())
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

