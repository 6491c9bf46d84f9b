package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iwvelando/mortgage-calculator/internal/metrics"
	"github.com/iwvelando/mortgage-calculator/internal/scraper"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newScrapeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Run the listings scraper once in the foreground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			supervisor := scraper.NewSupervisor(a.conf.Scraper, metrics.New(), a.logger)
			status, err := supervisor.Run(ctx)
			a.logger.Info("scraper finished",
				zap.String("op", "main.scrape"),
				zap.String("state", string(status.State)),
				zap.String("status", status.Status),
				zap.Float64("progress", status.Progress),
			)
			if _, werr := fmt.Fprintln(cmd.OutOrStdout(), status.Status); werr != nil && err == nil {
				err = werr
			}
			return err
		},
	}
}
