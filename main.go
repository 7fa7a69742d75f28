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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vendtrack/vendtrack/internal/application/stock"
	"github.com/vendtrack/vendtrack/internal/config"
	"github.com/vendtrack/vendtrack/internal/domain/pubsub"
	"github.com/vendtrack/vendtrack/internal/domain/vending"
	"github.com/vendtrack/vendtrack/internal/infrastructure/bus"
	"github.com/vendtrack/vendtrack/internal/infrastructure/id"
	"github.com/vendtrack/vendtrack/internal/infrastructure/memory"
	"github.com/vendtrack/vendtrack/internal/infrastructure/observability/oteltrace"
	"github.com/vendtrack/vendtrack/internal/infrastructure/observability/prometrics"
	"github.com/vendtrack/vendtrack/internal/infrastructure/observability/telemetry"
	"github.com/vendtrack/vendtrack/internal/infrastructure/observability/zaplogger"
	"github.com/vendtrack/vendtrack/internal/infrastructure/simulate"
	"github.com/vendtrack/vendtrack/internal/observability"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath     string
		machines    int
		events      int
		seed        int64
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:          "vendtrack",
		Short:        "Vending-machine stock tracking over an in-memory pub-sub registry",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()
			if cfgPath != "" {
				loaded, err := config.Load(cfgPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			cfg.ApplyEnv()
			if cmd.Flags().Changed("machines") {
				cfg.Machines = machines
			}
			if cmd.Flags().Changed("events") {
				cfg.Events = events
			}
			if cmd.Flags().Changed("seed") {
				cfg.Seed = seed
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.MetricsAddr = metricsAddr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "path to a config file (.yaml, .toml or .json)")
	cmd.Flags().IntVar(&machines, "machines", 0, "number of machines in the fleet")
	cmd.Flags().IntVar(&events, "events", 0, "number of events to generate")
	cmd.Flags().Int64Var(&seed, "seed", 0, "rng seed for the event generator")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve /metrics on this address until interrupted")

	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	logger := zaplogger.New(
		observability.F("service", cfg.ServiceName),
		observability.F("env", cfg.Env),
	)
	defer func() {
		if s, ok := logger.(interface{ Sync() error }); ok {
			_ = s.Sync()
		}
	}()

	metrics := prometrics.New("vendtrack")
	counters := map[observability.MetricKey]observability.Counter{
		observability.MEventsPublished: metrics.Counter(
			string(observability.MEventsPublished),
			"Total number of events appended to the backlog.",
		),
		observability.MEventsDispatched: metrics.Counter(
			string(observability.MEventsDispatched),
			"Events delivered to subscribers during backlog replay.",
			"kind", "outcome",
		),
		observability.MStockEventsHandled: metrics.Counter(
			string(observability.MStockEventsHandled),
			"Vending events handled by the stock subscribers.",
			"event", "outcome",
		),
	}
	histograms := map[observability.MetricKey]observability.Histogram{
		observability.MDispatchDuration: metrics.Histogram(
			string(observability.MDispatchDuration),
			"Duration of backlog replay in seconds.",
			prometheus.DefBuckets,
			"kind",
		),
	}
	tel := telemetry.New(oteltrace.New(cfg.ServiceName), logger, counters, histograms)
	log := tel.Logger()

	registry := bus.New(tel)
	machineRepo := memory.NewMachineRepository()
	var gen id.Generator = id.NewUUIDGenerator()

	fleet := make([]*vending.Machine, 0, cfg.Machines)
	for i := 0; i < cfg.Machines; i++ {
		m, err := vending.NewMachine(gen.NewID(), cfg.InitialStock)
		if err != nil {
			return fmt.Errorf("seed machine: %w", err)
		}
		if err := machineRepo.Save(ctx, m); err != nil {
			return fmt.Errorf("save machine: %w", err)
		}
		fleet = append(fleet, m)
	}
	log.Info("fleet_seeded",
		observability.F("machines", len(fleet)),
		observability.F("initial_stock", cfg.InitialStock),
	)

	batch := simulate.New(cfg.Seed).Batch(fleet, cfg.Events)
	registry.Publish(batch...)
	log.Info("events_published",
		observability.F("count", len(batch)),
		observability.F("backlog", registry.Backlog()),
	)

	saleHandler := stock.NewSaleHandler(machineRepo, tel)
	refillHandler := stock.NewRefillHandler(machineRepo, tel)
	warnHandler := stock.NewWarningHandler(tel)

	// A replay abort is logged but never fails the demo run.
	subscribe := func(kind string, s pubsub.Subscriber) {
		if err := registry.Subscribe(ctx, kind, s); err != nil {
			log.Error("replay_aborted",
				observability.F("kind", kind),
				observability.F("error", err.Error()),
			)
		}
	}

	subscribe(vending.KindSale, saleHandler)
	subscribe(vending.KindRefill, refillHandler)
	subscribe(vending.KindCheck, warnHandler)

	// Subscribing again replays the same check backlog in full; the
	// warning latches suppress the repeats.
	subscribe(vending.KindCheck, warnHandler)

	registry.Unsubscribe(vending.KindSale)

	// The sale backlog is purged, so a fresh subscriber sees nothing.
	lateSales := 0
	subscribe(vending.KindSale, pubsub.SubscriberFunc(func(context.Context, pubsub.Event) error {
		lateSales++
		return nil
	}))
	log.Info("late_sale_replay",
		observability.F("delivered", lateSales),
	)

	final, err := machineRepo.All(ctx)
	if err != nil {
		return fmt.Errorf("list machines: %w", err)
	}
	for _, m := range final {
		log.Info("machine_stock",
			observability.F("machine_id", m.ID),
			observability.F("stock", m.Stock),
			observability.F("low", m.LowStock()),
		)
	}

	if cfg.MetricsAddr != "" {
		return serveMetrics(ctx, cfg.MetricsAddr, log)
	}
	return nil
}

func serveMetrics(ctx context.Context, addr string, log observability.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("metrics_server_start",
			observability.F("addr", server.Addr),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics_server_error",
				observability.F("error", err.Error()),
			)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics_server_shutdown_error",
			observability.F("error", err.Error()),
		)
	} else {
		log.Info("metrics_server_stopped")
	}
	return nil
}
