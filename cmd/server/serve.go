package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/rpattn/leadcrm/internal/db"
	"github.com/rpattn/leadcrm/internal/ingestion"
	"github.com/rpattn/leadcrm/internal/leads"
	"github.com/rpattn/leadcrm/internal/repository"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(parent context.Context, opts *rootOptions) error {
	cfg, log, closer, err := bootstrap(opts)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Server.RunMigrations {
		if err := db.RunMigrations(cfg.Database, log); err != nil {
			return err
		}
	}

	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close()

	// Create repositories
	leadRepo := repository.NewLeadRepository(conn.Pool)
	leadStore := repository.NewLeadStore(conn.Pool)
	employeeRepo := repository.NewEmployeeRepository(conn.Pool)
	logRepo := repository.NewIngestionLogRepository(conn.Pool)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	ingestService := ingestion.NewService(leadStore, logRepo,
		ingestion.WithLogger(log),
		ingestion.WithMetrics(ingestion.NewMetrics(registry)),
	)
	leadService := leads.NewService(leadRepo, employeeRepo, log)

	server := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: newRouter(routerDeps{
			cfg:       cfg,
			log:       log,
			ingest:    ingestService,
			leads:     leadService,
			employees: employeeRepo,
			gatherer:  registry,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("starting lead API server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("server exited")
	return nil
}
