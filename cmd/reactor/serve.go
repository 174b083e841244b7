package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/reactor"
	"github.com/vango-dev/reactor/internal/config"
	"github.com/vango-dev/reactor/internal/demo"
	"github.com/vango-dev/reactor/pkg/inspect"
	"github.com/vango-dev/reactor/pkg/observe"
)

func serveCmd() *cobra.Command {
	var (
		address  string
		interval string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the graph inspector",
		Long: `Serve the inspector API over a continuously mutating demo sheet.

Endpoints:
  GET  /healthz     liveness probe
  GET  /graph       the full graph model
  GET  /cells/{id}  one cell, e.g. /cells/input:1
  POST /snapshots   store a snapshot (disk or S3, per reactor.json)
  GET  /live        WebSocket event stream
  GET  /metrics     Prometheus metrics

A single goroutine owns the engine and plays scripted mutations on a
ticker. The inspector mirrors engine activity for its handlers, so
HTTP requests never touch the engine itself.

Examples:
  reactor serve
  reactor serve --address=0.0.0.0:9000 --interval=250ms`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(address, interval)
		},
	}

	cmd.Flags().StringVarP(&address, "address", "a", "", "Listen address (default from reactor.json)")
	cmd.Flags().StringVarP(&interval, "interval", "i", "", "Mutation interval (default from reactor.json)")

	return cmd
}

func runServe(address, interval string) error {
	// Load config and apply command-line overrides.
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	if address != "" {
		cfg.Server.Address = address
	}
	if interval != "" {
		cfg.Server.MutationInterval = interval
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	tick, err := cfg.Interval()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	sink, err := buildSink(cfg)
	if err != nil {
		return err
	}
	inspector := inspect.New(
		inspect.WithLogger(logger),
		inspect.WithSink(sink),
		inspect.WithCheckOrigin(func(*http.Request) bool { return true }),
	)

	opts := []reactor.Option[float64]{
		reactor.WithLogger[float64](logger),
		reactor.WithObserver[float64](inspector),
		reactor.WithObserver[float64](observe.NewTracing()),
	}
	if cfg.Metrics.Enabled {
		metrics := observe.NewMetrics(observe.WithNamespace(cfg.Metrics.Namespace))
		opts = append(opts, reactor.WithObserver[float64](metrics))
	}

	sheet, err := demo.NewSheet(3, 19.99, 0.08, 0, opts...)
	if err != nil {
		return err
	}
	if _, ok := sheet.Reactor.AddCallback(sheet.Total, func(v float64) {
		logger.Debug("total changed", "value", v)
	}); !ok {
		return fmt.Errorf("failed to attach total callback")
	}

	mux := chi.NewRouter()
	if cfg.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.Handle("/*", inspector.Router())

	httpServer := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: mux,
	}

	// Handle signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\n\n  Shutting down...")
		cancel()
	}()

	// The engine owner goroutine. All mutations happen here.
	go func() {
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		step := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				mutateSheet(sheet, step)
				step++
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	printBanner()
	fmt.Println("  serve")
	fmt.Println()
	success("inspector listening on http://%s", cfg.Server.Address)
	info("graph:   http://%s/graph", cfg.Server.Address)
	info("live:    ws://%s/live", cfg.Server.Address)
	if cfg.Metrics.Enabled {
		info("metrics: http://%s/metrics", cfg.Server.Address)
	} else {
		warn("metrics disabled in %s", config.ConfigFileName)
	}
	info("mutating every %s", tick)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	success("stopped")
	return nil
}

// buildSink picks the snapshot sink from config: S3 when a bucket is
// set, the local snapshot directory otherwise.
func buildSink(cfg *config.Config) (inspect.Sink, error) {
	if cfg.Snapshots.S3Bucket != "" {
		client := s3.New(s3.Options{Region: cfg.Snapshots.S3Region})
		return inspect.NewS3Sink(client, cfg.Snapshots.S3Bucket, cfg.Snapshots.S3Prefix), nil
	}
	sink, err := inspect.NewDiskSink(cfg.Snapshots.Dir)
	if err != nil {
		return nil, err
	}
	return sink, nil
}

// mutateSheet plays one step of a repeating script over the sheet's
// inputs.
func mutateSheet(sheet *demo.Sheet, step int) {
	quantities := []float64{1, 2, 3, 5, 8, 13, 8, 5, 3, 2}
	prices := []float64{9.99, 19.99, 24.99, 14.99}
	discounts := []float64{0, 5, 10, 0, 15}

	r := sheet.Reactor
	switch step % 3 {
	case 0:
		r.SetValue(sheet.Quantity, quantities[(step/3)%len(quantities)])
	case 1:
		r.SetValue(sheet.UnitPrice, prices[(step/3)%len(prices)])
	case 2:
		r.SetValue(sheet.Discount, discounts[(step/3)%len(discounts)])
	}
}
