// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/MKhiriev/shift-calendar/internal/adapter"
	"github.com/MKhiriev/shift-calendar/internal/config"
	"github.com/MKhiriev/shift-calendar/internal/crypto"
	"github.com/MKhiriev/shift-calendar/internal/handler"
	"github.com/MKhiriev/shift-calendar/internal/locks"
	"github.com/MKhiriev/shift-calendar/internal/logger"
	"github.com/MKhiriev/shift-calendar/internal/metrics"
	"github.com/MKhiriev/shift-calendar/internal/server"
	"github.com/MKhiriev/shift-calendar/internal/service"
	"github.com/MKhiriev/shift-calendar/internal/store"
	"github.com/MKhiriev/shift-calendar/models"
)

const (
	loggerRole       = "shift-calendar-server"
	metricsNamespace = "shiftcal"
	flagLogLevel     = "log-level"
)

func newRootCommand(build models.AppBuildInfo) *cobra.Command {
	root := &cobra.Command{
		Use:           "shiftcal",
		Short:         "Shift calendar server with Google Calendar integration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String(flagLogLevel, zerolog.LevelDebugValue, "Minimum log level (trace, debug, info, warn, error)")

	root.AddCommand(
		newServeCommand(build),
		newMigrateCommand(),
		newKeygenCommand(),
		newVersionCommand(build),
	)

	return root
}

func newServeCommand(build models.AppBuildInfo) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server", "run"},
		Short:   "Start the HTTP and gRPC servers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			printBuildInfo(cmd, build)
			return runServe(cmd, build)
		},
	}
	config.RegisterFlags(cmd.Flags())

	return cmd
}

func newLogger(cmd *cobra.Command) (*logger.Logger, error) {
	raw, err := cmd.Flags().GetString(flagLogLevel)
	if err != nil {
		return nil, err
	}
	level, err := zerolog.ParseLevel(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", flagLogLevel, err)
	}

	return logger.NewLogger(loggerRole, logger.WithLevel(level), logger.WithOutput(cmd.OutOrStdout())), nil
}

func runServe(cmd *cobra.Command, build models.AppBuildInfo) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	cfg, err := config.GetStructuredConfig(cmd.Flags())
	if err != nil {
		return fmt.Errorf("error getting configs: %w", err)
	}

	storages, err := store.NewStorages(ctx, cfg.Storage.DB, log)
	if err != nil {
		return fmt.Errorf("error creating storages: %w", err)
	}
	defer func() {
		if closeErr := storages.Close(); closeErr != nil {
			log.Err(closeErr).Msg("error closing storages")
		}
	}()

	m := metrics.NewMetrics(metricsNamespace)

	var calendarDeps *service.CalendarDependencies
	if cfg.Calendar.Enabled() {
		calendarDeps, err = newCalendarDependencies(cmd, cfg, m, log)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := calendarDeps.Locker.Close(); closeErr != nil {
				log.Err(closeErr).Msg("error closing refresh locker")
			}
		}()
	} else {
		log.Warn().Msg("calendar integration is disabled: no OAuth client configured")
	}

	services, err := service.NewServices(storages, cfg, build, calendarDeps, log)
	if err != nil {
		return fmt.Errorf("error creating services: %w", err)
	}

	handlers, err := handler.NewHandlers(services, m, cfg, log)
	if err != nil {
		return fmt.Errorf("error creating handlers: %w", err)
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		return fmt.Errorf("error creating server: %w", err)
	}

	srv.RunServer()
	return nil
}

func newCalendarDependencies(cmd *cobra.Command, cfg *config.StructuredConfig, m *metrics.Metrics, log *logger.Logger) (*service.CalendarDependencies, error) {
	provider := adapter.NewGoogleOAuthProvider(cfg.Calendar, log)

	client, err := adapter.NewGoogleCalendarClient(provider)
	if err != nil {
		return nil, fmt.Errorf("error creating calendar client: %w", err)
	}

	locker, err := locks.NewLocker(cmd.Context(), cfg.Storage.Redis, cfg.Calendar.RefreshLockTTL, log)
	if err != nil {
		return nil, fmt.Errorf("error creating refresh locker: %w", err)
	}

	return &service.CalendarDependencies{
		Provider: provider,
		Client:   client,
		Locker:   locker,
		Metrics:  m,
	}, nil
}

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := newLogger(cmd)
			if err != nil {
				return err
			}

			cfg, err := config.GetStructuredConfig(cmd.Flags())
			if err != nil {
				return fmt.Errorf("error getting configs: %w", err)
			}

			db, err := store.NewConnect(cmd.Context(), cfg.Storage.DB, log)
			if err != nil {
				return fmt.Errorf("error connecting to database: %w", err)
			}
			defer db.Close()

			if err = db.Migrate(); err != nil {
				return fmt.Errorf("error applying migrations: %w", err)
			}

			log.Info().Msg("migrations applied")
			return nil
		},
	}
	config.RegisterFlags(cmd.Flags())

	return cmd
}

func newKeygenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Print a fresh hex-encoded encryption key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := crypto.GenerateKey()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), key)
			return err
		},
	}
}

func newVersionCommand(build models.AppBuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printBuildInfo(cmd, build)
		},
	}
}

func printBuildInfo(cmd *cobra.Command, build models.AppBuildInfo) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Build version: %s\n", orNA(build.BuildVersion()))
	fmt.Fprintf(out, "Build date: %s\n", orNA(build.BuildDate()))
	fmt.Fprintf(out, "Build commit: %s\n", orNA(build.BuildCommit()))
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
