package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/fieldline/eventq/internal/simulator"
	"github.com/fieldline/eventq/pkg/logging"
	"github.com/fieldline/eventq/pkg/metrics"
	"github.com/fieldline/eventq/pkg/queue"
	"github.com/fieldline/eventq/pkg/queue/memqueue"
)

const metricsShutdownTimeout = 5 * time.Second

func run(c *cli.Context) error {
	sugar, err := logging.NewSugaredLogger(c.Bool("verbose"))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer sugar.Desugar().Sync() //nolint:errcheck // best-effort flush; ignore sync errors

	environment := c.String("environment")
	sugar.Infow("config",
		"environment", environment,
		"producers", c.Int("producers"),
		"consumers", c.Int("consumers"),
		"records", c.Int("records"),
		"publishInterval", c.Duration("publish-interval"),
		"pollInterval", c.Duration("poll-interval"),
		"maxInFlight", c.Int64("max-in-flight"),
		"metricsAddr", c.String("metrics-addr"),
	)

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	m := metrics.NewWithLabels(registry, metrics.Labels{
		Environment: environment,
		Service:     "queue-sim",
	})

	var metricsServer *metrics.Server
	if addr := c.String("metrics-addr"); addr != "" {
		metricsServer = metrics.NewServer(addr, registry)
		metricsErrCh := metricsServer.Start()
		go func() {
			if err, ok := <-metricsErrCh; ok && err != nil {
				sugar.Errorw("metrics server failed", "error", err)
			}
		}()
		sugar.Infof("metrics server listening on %s", addr)
	}

	q := memqueue.New(
		queue.Config{Environment: environment},
		sugar,
		memqueue.WithMetrics(m),
	)
	if c.Bool("debug-payloads") {
		q.WithDebugging()
	}
	defer q.Shutdown()

	sim := simulator.New(q, sugar, simulator.Config{
		Producers:          c.Int("producers"),
		Consumers:          c.Int("consumers"),
		RecordsPerProducer: c.Int("records"),
		PublishInterval:    c.Duration("publish-interval"),
		PollInterval:       c.Duration("poll-interval"),
		MaxInFlight:        c.Int64("max-in-flight"),
	})

	report, err := sim.Run(ctx)
	sugar.Infow("simulation finished",
		"published", report.Published,
		"delivered", report.Delivered,
		"remaining", report.Remaining,
		"elapsed", report.Elapsed,
	)

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if serr := metricsServer.Shutdown(shutdownCtx); serr != nil {
			sugar.Warnw("failed to shut down metrics server", "error", serr)
		}
	}

	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	return nil
}
