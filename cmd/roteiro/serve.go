package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	httpAdapter "github.com/callguide/roteiro/internal/adapters/http"
	"github.com/callguide/roteiro/internal/adapters/memory"
	"github.com/callguide/roteiro/internal/adapters/postgres"
	redisAdapter "github.com/callguide/roteiro/internal/adapters/redis"
	"github.com/callguide/roteiro/internal/autologout"
	"github.com/callguide/roteiro/internal/config"
	"github.com/callguide/roteiro/internal/logging"
	"github.com/callguide/roteiro/pkg/importer"
	"github.com/callguide/roteiro/pkg/observability"
	"github.com/callguide/roteiro/pkg/ports"
	"github.com/callguide/roteiro/pkg/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the session HTTP server",
	Long:  `Starts the Roteiro engine in server mode, exposing session navigation as a JSON API over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		scriptsPath, _ := cmd.Flags().GetString("scripts")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger := logging.New(logging.ParseLevel(cfg.LogLevel))

		ctx := cmd.Context()

		// Step/product backend
		var (
			steps    ports.StepStore
			products ports.ProductResolver
		)
		switch cfg.Backend {
		case "postgres":
			pg, err := postgres.New(ctx, logger, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pg.Close()
			steps = pg.Steps()
			products = pg.Products()
		case "memory":
			store := memory.NewStore()
			if scriptsPath != "" {
				if err := loadScripts(ctx, store, scriptsPath); err != nil {
					return err
				}
			}
			steps = store
			products = store
		default:
			return fmt.Errorf("unknown backend: %s", cfg.Backend)
		}

		// Session snapshot backend
		var (
			sessions ports.SessionStore
			opts     []session.ManagerOption
		)
		switch cfg.SessionBackend {
		case "redis":
			store := redisAdapter.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
			defer store.Close()
			sessions = store
		case "memory":
			sessions = memory.NewSessionStore()
		default:
			return fmt.Errorf("unknown session backend: %s", cfg.SessionBackend)
		}

		metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
		opts = append(opts,
			session.WithManagerLogger(logger),
			session.WithManagerHooks(metrics.Hooks()),
		)

		manager := session.NewManager(steps, products, sessions, opts...)

		if cfg.AutoLogoutHour >= 0 {
			sched, err := autologout.New(manager, nil, cfg.AutoLogoutHour, cfg.AutoLogoutMinute, logger)
			if err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()
		}

		srv := &http.Server{
			Addr:    cfg.ListenAddr,
			Handler: httpAdapter.NewHandler(manager, logger),
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("starting roteiro server", "addr", srv.Addr, "backend", cfg.Backend)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("starting shutdown", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("could not stop server: %w", err)
				}
			}
			logger.Info("roteiro server stopped")
		}
		return nil
	},
}

// loadScripts seeds the in-memory store from a bulk script document.
func loadScripts(ctx context.Context, store *memory.Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read scripts file: %w", err)
	}

	report, err := importer.New().Parse(data, formatForPath(path))
	if err != nil {
		return err
	}
	if len(report.Quarantined) > 0 {
		for _, q := range report.Quarantined {
			fmt.Fprintf(os.Stderr, "quarantined %s #%d (%s): %s\n", q.Kind, q.Index, q.ID, q.Reason)
		}
	}

	for _, step := range report.Steps {
		if err := store.PutStep(ctx, step); err != nil {
			return err
		}
	}
	for _, p := range report.Products {
		if err := store.PutProduct(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func formatForPath(path string) importer.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return importer.FormatYAML
	default:
		return importer.FormatJSON
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("scripts", "", "Bulk script document to seed the in-memory backend")
}
