package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"readme_updater/internal/apperr"
	"readme_updater/internal/logger"
)

var Version = "dev"

// globalFlags - флаги, общие для всех команд.
type globalFlags struct {
	config    string
	envFile   string
	logLevel  string
	logFormat string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		if !isReported(err) {
			logger.Log.Errorf("%v", err)
		}
		os.Exit(apperr.ExitCode(err))
	}
}

// reportedError - ошибка, которую конвейер уже записал в лог вместе с run_id.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

func isReported(err error) bool {
	var rerr *reportedError
	return errors.As(err, &rerr)
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "readme-updater",
		Short:         "Regenerate the profile README with weather, pictures and a journal entry",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, flags)
		},
	}
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", apperr.ErrConfig, err)
	})

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.config, "config", "c", "", "Path to a JSON or YAML config file")
	pf.StringVar(&flags.envFile, "env-file", ".env", "Path to a .env file with secrets (ignored if missing)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log format (json, text)")

	rootCmd.AddCommand(runCmd(flags))
	rootCmd.AddCommand(renderCmd(flags))
	rootCmd.AddCommand(historyCmd(flags))

	return rootCmd
}
