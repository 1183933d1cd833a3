package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"readme_updater/internal/apperr"
	"readme_updater/internal/config"
	"readme_updater/internal/db"
	"readme_updater/internal/logger"
)

func runCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Fetch, generate, write and commit the document (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, flags)
		},
	}
}

func renderCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "render",
		Short: "Fetch and generate the document and print it without writing or committing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			app, err := build(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer app.Close()

			res, err := app.pipeline.Render(ctx)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), res.Document)
			return err
		},
	}
}

func historyCmd(flags *globalFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs from the run ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return fmt.Errorf("%w: limit must be ≥ 1", apperr.ErrConfig)
			}
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			ledger, err := db.Open(ctx, cfg.Ledger.DSN)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			if ledger == nil {
				return fmt.Errorf("%w: run ledger is disabled", apperr.ErrConfig)
			}
			defer ledger.Close()

			runs, err := ledger.RecentRuns(ctx, limit)
			if err != nil {
				return fmt.Errorf("read ledger: %w", err)
			}
			return printRuns(cmd.OutOrStdout(), runs)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs")
	return cmd
}

func runUpdate(cmd *cobra.Command, flags *globalFlags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	app, err := build(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer app.Close()

	if _, err := app.pipeline.Run(ctx); err != nil {
		return &reportedError{err: err}
	}
	return nil
}

// loadConfig читает конфигурацию и настраивает логгер. Флаги важнее файла.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	logger.Init(flags.logLevel, flags.logFormat)

	cfg, err := config.Load(flags.config, flags.envFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrConfig, err)
	}
	level, format := cfg.Log.Level, cfg.Log.Format
	if flags.logLevel != "" {
		level = flags.logLevel
	}
	if flags.logFormat != "" {
		format = flags.logFormat
	}
	logger.Init(level, format)
	return cfg, nil
}

// printRuns печатает таблицу запусков, статус выделен цветом.
func printRuns(w io.Writer, runs []db.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded yet.")
		return err
	}
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
	table.Header([]string{"started", "status", "took", "commit", "details"})

	for _, run := range runs {
		hash := run.CommitHash
		if len(hash) > 7 {
			hash = hash[:7]
		}
		if hash == "" {
			hash = "-"
		}
		details := run.CommitMessage
		switch {
		case run.Error != "":
			details = run.Error
		case len(run.Degraded) > 0:
			details = "degraded: " + strings.Join(run.Degraded, ", ")
		}
		took := run.FinishedAt.Sub(run.StartedAt).Round(time.Second)
		if err := table.Append([]string{
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			statusText(run.Status),
			took.String(),
			hash,
			details,
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func statusText(status string) string {
	switch status {
	case db.StatusOK:
		return color.GreenString(status)
	case db.StatusDegraded:
		return color.YellowString(status)
	case db.StatusFailed:
		return color.RedString(status)
	default:
		return status
	}
}
