package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/filmschedule/filmschedule-backend/config"
	"github.com/filmschedule/filmschedule-backend/internal/bootstrap"
	"github.com/filmschedule/filmschedule-backend/internal/logging"
	"github.com/filmschedule/filmschedule-backend/internal/projects/export"
	"github.com/filmschedule/filmschedule-backend/internal/projects/service"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Archive every project whose shoot days have all passed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withService(cmd.Context(), func(svc *service.ProjectService) error {
			n, err := service.NewArchiveSweeper(svc).RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			logging.L().WithField("archived", n).Info("archive sweep completed")
			return nil
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <project-id>",
	Short: "Write a project's schedule and calltimes as CSV to stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd.Context(), func(svc *service.ProjectService) error {
			p, err := svc.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return export.WriteCSV(os.Stdout, p)
		})
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the project store schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// opening the store creates the schema
		return withService(cmd.Context(), func(*service.ProjectService) error {
			logging.L().Info("schema ready")
			return nil
		})
	},
}

func withService(ctx context.Context, fn func(*service.ProjectService) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logging.Init(cfg.App.LogLevel, cfg.App.ServiceName, cfg.App.Environment)

	store, closeStore, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	return fn(service.NewProjectService(store, service.WithLayout(cfg.Layout)))
}
