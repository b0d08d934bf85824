package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/OranPie/rulatro/config"
	"github.com/OranPie/rulatro/content"
	"github.com/OranPie/rulatro/engine"
	"github.com/OranPie/rulatro/engine/rules"
	"github.com/OranPie/rulatro/loader"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "rulatro",
	Short: "Deterministic roguelike poker rules engine",
	Long: `Rulatro runs poker roguelike games from YAML content and Lua mods.
The same seed and actions always produce the same run.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		playCmd.Run(cmd, args)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "settings file (default $HOME/.rulatro.yaml)")
	pf.Int64("seed", 0, "run seed (0 picks one from the clock)")
	pf.String("content_dir", "", "directory of extra content layered over the base content")
	pf.String("config_file", "", "game tables YAML overlaid on the defaults")
	pf.String("mods_dir", "", "directory of Lua mods")
	pf.String("log_level", "info", "log level (debug, info, warn, error)")
	pf.String("log_file", "", "write logs to this file")

	for _, name := range []string{"seed", "content_dir", "config_file", "mods_dir", "log_level", "log_file"} {
		_ = viper.BindPFlag(name, pf.Lookup(name))
	}
}

// initConfig reads the settings file and RULATRO_* environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".rulatro")
	}

	viper.SetEnvPrefix("RULATRO")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if cfgFile == "" {
			// fall back to ./rulatro.yaml
			viper.SetConfigName("rulatro")
			err = viper.ReadInConfig()
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && err != nil {
			fmt.Fprintf(os.Stderr, "Error reading settings: %v\n", err)
		}
	}
}

// newLogger builds the application logger. Front-ends own stdout, so logs
// go nowhere unless log_file is set.
func newLogger() (*zap.Logger, error) {
	path := viper.GetString("log_file")
	if path == "" {
		return zap.NewNop(), nil
	}
	level, err := zapcore.ParseLevel(viper.GetString("log_level"))
	if err != nil {
		return nil, fmt.Errorf("log_level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	if level == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	return cfg.Build()
}

// runSeed returns the configured seed, or one from the clock.
func runSeed() int64 {
	if seed := viper.GetInt64("seed"); seed != 0 {
		return seed
	}
	return time.Now().UnixNano()
}

// loadTable loads the base content plus content_dir.
func loadTable(log *zap.Logger) (*rules.Table, error) {
	var dirs []string
	if d := viper.GetString("content_dir"); d != "" {
		dirs = append(dirs, d)
	}
	tbl, warnings, err := content.Table(dirs...)
	for _, w := range warnings {
		log.Warn("content warning", zap.String("warning", w))
	}
	if err != nil {
		return nil, fmt.Errorf("loading content: %w", err)
	}
	return tbl, nil
}

// engineOptions builds the engine options from settings. The returned
// func closes any mods.
func engineOptions(log *zap.Logger) ([]engine.Option, func(), error) {
	opts := []engine.Option{engine.WithLogger(log)}

	if path := viper.GetString("config_file"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, engine.WithConfig(cfg))
	}

	var mods []*loader.LuaMod
	if dir := viper.GetString("mods_dir"); dir != "" {
		var err error
		mods, err = loader.LoadMods(dir, log)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, engine.WithHooks(loader.Hooks(mods)...))
	}
	return opts, func() { loader.CloseMods(mods) }, nil
}

// app is everything a front-end needs to start a run.
type app struct {
	log   *zap.Logger
	table *rules.Table
	opts  []engine.Option
	close func()
}

func setup() (*app, error) {
	log, err := newLogger()
	if err != nil {
		return nil, err
	}
	tbl, err := loadTable(log)
	if err != nil {
		return nil, err
	}
	opts, closeMods, err := engineOptions(log)
	if err != nil {
		return nil, err
	}
	return &app{
		log:   log,
		table: tbl,
		opts:  opts,
		close: func() {
			closeMods()
			_ = log.Sync()
		},
	}, nil
}
