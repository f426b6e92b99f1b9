package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/aotfits/aot"
	"github.com/aotfits/aot/internal/config"
	"github.com/aotfits/aot/internal/logger"
	"github.com/aotfits/aot/internal/output"
)

// session carries the resolved configuration from the root command to the
// subcommand being run.
type session struct {
	cfg *config.Config
	out *output.Printer
	log logger.Logger
}

type sessionKey struct{}

// RootCmd creates and returns the root command for the aot CLI
func RootCmd() *cobra.Command {
	var (
		verbose    bool
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "aot",
		Short: "Schema registry and validator for AOT adaptive optics telemetry",
		Long: `aot knows the table layout of the Adaptive Optics Telemetry format.

It can:
• List the AOT tables, their fields and how they reference each other
• Map binary table column codes to field kinds
• Validate YAML renditions of AOT files against the schema

Settings are read from .aot.yml in the working directory and from
AOT_* environment variables (e.g. AOT_VALIDATION_POLICY=collect-all).`,
		Version:       aot.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if verbose {
				cfg.LogLevel = logger.LevelDebug
			}

			log := logger.NewLogger(cfg.LogLevel, cmd.ErrOrStderr())
			logger.SetDefault(log)

			out, err := output.New(cmd.OutOrStdout(), cfg.Color)
			if err != nil {
				return err
			}
			out.SetVerbose(verbose)

			log.Debug("configuration loaded",
				logger.F("file", cfg.File),
				logger.F("policy", cfg.Policy),
				logger.F("format", cfg.Format))

			s := &session{cfg: cfg, out: out, log: log}
			cmd.SetContext(context.WithValue(cmd.Context(), sessionKey{}, s))
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Read settings from this file instead of ./"+config.FileName)

	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load(".")
}

func sessionFrom(cmd *cobra.Command) (*session, error) {
	s, ok := cmd.Context().Value(sessionKey{}).(*session)
	if !ok {
		return nil, errors.New("command run outside the aot root command")
	}
	return s, nil
}
