// Package cli holds the leadform commands.
package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mechinsul/leadform/internal/infrastructure/config"
	"github.com/mechinsul/leadform/internal/infrastructure/logger"
)

// app carries what every command needs once flags are parsed
type app struct {
	envFile string
	verbose bool

	cfg *config.Config
	log *zap.Logger
}

// load reads configuration and builds the logger. Serving always logs;
// one-shot commands stay quiet unless --verbose is set.
func (a *app) load(alwaysLog bool) error {
	cfg, err := config.LoadFile(a.envFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if !alwaysLog && !a.verbose {
		a.log = logger.NewNop()
		return nil
	}
	log, err := logger.New(cfg.Env, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	a.log = log
	return nil
}

func (a *app) sync() {
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// Execute runs the root command. This is called by main.main().
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "leadform",
		Short:        "Contact and quote form backend",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, a)
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Optional env file read before the environment")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log from one-shot commands")

	root.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newLeadsCmd(a),
		newRateLimitCmd(a),
		newAdminCmd(a),
	)
	return root
}
