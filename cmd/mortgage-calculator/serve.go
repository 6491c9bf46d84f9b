package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/mortgage-calculator/internal/cache"
	"github.com/iwvelando/mortgage-calculator/internal/chat"
	"github.com/iwvelando/mortgage-calculator/internal/listings"
	"github.com/iwvelando/mortgage-calculator/internal/metrics"
	"github.com/iwvelando/mortgage-calculator/internal/rates"
	"github.com/iwvelando/mortgage-calculator/internal/scraper"
	"github.com/iwvelando/mortgage-calculator/internal/server"
	"github.com/iwvelando/mortgage-calculator/internal/tracing"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(a *app) *cobra.Command {
	var address string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web UI and the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if address != "" {
				a.conf.Server.Address = address
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "listen address override, e.g. :3000")
	return cmd
}

// serve wires every service into the HTTP server and blocks until ctx is done.
func (a *app) serve(ctx context.Context) error {
	conf, logger := a.conf, a.logger

	shutdownTracing, err := tracing.Setup(ctx, conf.Telemetry, version, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("failed to flush traces", zap.String("op", "main.serve"), zap.Error(err))
		}
	}()

	m := metrics.New()
	store := cache.New(ctx, conf.Cache, logger)
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}

	deps := server.Dependencies{
		Config:     conf,
		Rates:      rates.NewService(conf.Rates, store, nil, m, logger),
		Chat:       chat.NewService(conf.Chat, chat.NewCacheSessionStore(store, conf.Chat.SessionTTL), nil, m, logger),
		Metrics:    m,
		Logger:     logger,
		Version:    version,
		RunContext: ctx,
	}

	db, err := listings.Open(conf.Storage.SQLitePath, logger)
	if err != nil {
		logger.Warn("listings database unavailable, statistics endpoints disabled",
			zap.String("op", "main.serve"),
			zap.String("path", conf.Storage.SQLitePath),
			zap.Error(err),
		)
	} else {
		defer db.Close()
		deps.Listings = db.WithCache(store, conf.Storage.CacheTTL)
	}

	supervisor := scraper.NewSupervisor(conf.Scraper, m, logger)
	defer supervisor.Stop()
	deps.Scraper = supervisor

	if conf.Scraper.Schedule != "" {
		scheduler, err := scraper.NewScheduler(ctx, conf.Scraper.Schedule, supervisor, logger)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Stop()
		logger.Info("scraper scheduled",
			zap.String("op", "main.serve"),
			zap.String("schedule", conf.Scraper.Schedule),
			zap.Time("next", scheduler.Next()),
		)
	}

	srv := server.New(conf.Server, server.NewHandler(deps), logger)
	return srv.Run(ctx)
}
