package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/adamlabadorf/afj/internal/backend"
	"github.com/adamlabadorf/afj/internal/config"
	"github.com/adamlabadorf/afj/internal/history"
	"github.com/adamlabadorf/afj/internal/locator"
	"github.com/adamlabadorf/afj/internal/logging"
	"github.com/adamlabadorf/afj/internal/orchestrator"
	"github.com/adamlabadorf/afj/internal/ui"
	"github.com/adamlabadorf/afj/internal/vcs"
)

// app holds the per-invocation state shared by the subcommands.
type app struct {
	v   *viper.Viper
	cfg *config.Config

	configFile string
	verbose    bool
	quiet      bool

	logger  *zap.Logger
	cleanup func()

	out    io.Writer
	errOut io.Writer
}

func newRootCmd(stdout, stderr io.Writer) (*cobra.Command, *app) {
	a := &app{
		v:       config.New(),
		logger:  zap.NewNop(),
		cleanup: func() {},
		out:     stdout,
		errOut:  stderr,
	}

	rootCmd := &cobra.Command{
		Use:   "afj",
		Short: "Modify files with an AI model and keep a per-file history",
		Long: `afj asks an AI model to modify a single file in place.

Every version it writes is recorded in a private repository under the
nearest .afj directory (created in the working directory when none exists),
so changes can be listed with "afj his" and undone with "afj rev". The
project's own version control is never touched.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Config file (default: $XDG_CONFIG_HOME/afj/afj.yaml)")
	flags.String("engine", "", "History engine for new records: git or jj")
	flags.String("provider", "", "Model provider: anthropic or gemini (default: first with an API key)")
	flags.String("model", "", "Model name (default: provider default)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "Only log errors")
	flags.Bool("no-color", false, "Disable colored output")
	flags.String("log-file", "", "Also write JSON logs to this file")

	for key, flag := range map[string]string{
		config.KeyEngine:   "engine",
		config.KeyProvider: "provider",
		config.KeyModel:    "model",
		config.KeyNoColor:  "no-color",
		config.KeyLogFile:  "log-file",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddGroup(
		&cobra.Group{ID: "files", Title: "File Commands:"},
		&cobra.Group{ID: "info", Title: "Other Commands:"},
	)

	rootCmd.AddCommand(
		newModCmd(a),
		newRevCmd(a),
		newHisCmd(a),
		newLsCmd(a),
		newVersionCmd(a),
	)

	return rootCmd, a
}

// setup loads configuration and builds the logger before any subcommand.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if err := config.ReadFile(a.v, a.configFile); err != nil {
		return err
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, cleanup, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Verbose: a.verbose,
		Quiet:   a.quiet,
		File:    cfg.LogFile,
		Stderr:  a.errOut,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	a.logger = logger
	a.cleanup = cleanup

	ui.Setup(a.out, cfg.NoColor)

	if cfg.File != "" {
		logger.Debug("loaded config", zap.String("file", cfg.File))
	}
	return nil
}

// orchestrator builds the orchestrator. The generation backend is only
// selected for commands that need it.
func (a *app) orchestrator(withBackend bool) (*orchestrator.Orchestrator, error) {
	engine, err := vcs.ParseType(a.cfg.Engine)
	if err != nil {
		return nil, err
	}

	o := &orchestrator.Orchestrator{
		Locator:             locator.New(a.logger),
		Store:               history.NewStore(vcs.NewFactory(vcs.WithPreferredType(engine)), a.logger),
		AllowNameCollisions: a.cfg.AllowNameCollisions,
		Logger:              a.logger,
	}

	if withBackend {
		gen, err := backend.New(backend.Config{
			Provider:    a.cfg.Provider,
			Model:       a.cfg.Model,
			MaxTokens:   a.cfg.MaxTokens,
			Timeout:     a.cfg.Timeout,
			StripFences: a.cfg.StripFences,
			Mock:        a.cfg.MockLLM,
			APIKeys:     a.cfg.APIKeys(),
			BaseURL:     a.cfg.BaseURL,
			Logger:      a.logger,
		})
		if err != nil {
			return nil, err
		}
		o.Backend = gen
	}

	return o, nil
}

// println writes a result line unless --quiet is set.
func (a *app) println(format string, args ...any) {
	if a.quiet {
		return
	}
	fmt.Fprintf(a.out, format+"\n", args...)
}
