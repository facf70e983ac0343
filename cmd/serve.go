package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/angeloszaimis/action-router/config"
	"github.com/angeloszaimis/action-router/internal/handler"
	"github.com/angeloszaimis/action-router/internal/httpserver"
	"github.com/angeloszaimis/action-router/internal/metrics"
	"github.com/angeloszaimis/action-router/internal/router"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Long:  `Serves POST /invoke, GET /health and GET /metrics until interrupted.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(parent context.Context, opts *rootOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		return err
	}

	log := newLogger(cfg, os.Stdout)

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	collector := metrics.NewCollector(cfg.Metrics.BufferSize, log)
	collector.Start(ctx)

	setup, err := initializeBackend(ctx, cfg, log, collector, true)
	if err != nil {
		log.Error("Failed to initialize backend", slog.Any("err", err))
		return err
	}

	r, err := router.NewDefault(setup.collaborator, cfg.Backend.DirectorySource,
		router.WithLogger(log),
		router.WithMetrics(collector))
	if err != nil {
		log.Error("Failed to create router", slog.Any("err", err))
		return err
	}

	invokeHandler := handler.NewInvokeHandler(log, r)

	srv, err := httpserver.New(cfg.Server.Address, setupRouter(invokeHandler, collector, setup),
		httpserver.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
		httpserver.WithLogger(log))
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		return err
	}

	srvErrCh := make(chan error, 1)

	go func() {
		srvErrCh <- srv.Start()
	}()

	log.Info("Action router listening",
		slog.String("address", srv.Addr()),
		slog.Any("paths", r.Paths()))

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
			return err
		}
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Error starting action router", slog.Any("err", err))
			return err
		}
	}

	return nil
}
