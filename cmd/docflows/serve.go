package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/docflows"
	"github.com/aretw0/docflows/internal/cli"
	httpAdapter "github.com/aretw0/docflows/pkg/adapters/http"
	"github.com/aretw0/docflows/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP report API",
	Long: `Serves reports over a JSON API, with Prometheus metrics on /metrics.
Specs are reloaded when the source signals a change.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		eng, store, err := cli.NewEngine(ctx, cfg, logger, docflows.WithObserver(metrics))
		if err != nil {
			return err
		}

		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			go func() {
				if err := cli.WatchAndReload(ctx, eng, store, logger); err != nil {
					logger.Warn("Hot reload disabled", "err", err)
				}
			}()
		}

		srv := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           httpAdapter.NewHandler(eng, httpAdapter.WithLogger(logger), httpAdapter.WithMetrics(reg)),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("Starting docflows server", "addr", srv.Addr, "workflows", eng.Workflows())
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			return err
		case <-ctx.Done():
			logger.Info("Shutdown signal received")

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				_ = srv.Close()
				return err
			}
			logger.Info("docflows server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	serveCmd.Flags().Bool("watch", true, "Reload specs when the source changes")
}
