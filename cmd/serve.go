package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/okian/pelada/internal/adapters/http/api"
	"github.com/okian/pelada/internal/adapters/http/swagger"
	"github.com/okian/pelada/internal/adapters/repository"
	service "github.com/okian/pelada/internal/app"
	"github.com/okian/pelada/internal/config"
	"github.com/okian/pelada/internal/domain/summary"
	"github.com/okian/pelada/pkg/logger"
	"github.com/okian/pelada/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the roster HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Load configuration (defaults -> optional file -> env)
			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides PELADA_ADDR)")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	// Our own system gauges replace the default Go and process collectors.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := newService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("store", cfg.StoreDriver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("http server: %w", err)
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
		return err
	}

	log.Info(ctx, "server stopped")
	return nil
}

// newService opens the configured store and starts a service on top of it.
func newService(ctx context.Context, cfg *config.Config, log logger.Logger) (*service.Service, error) {
	var storeOpts []repository.Option
	if cfg.StoreDriver == config.DriverSQLite {
		storeOpts = append(storeOpts, repository.WithMaxOpenConns(1))
	}
	store, err := repository.Open(ctx, cfg.StoreDriver, cfg.DatabaseURL, storeOpts...)
	if err != nil {
		return nil, err
	}

	svc := service.New(
		service.WithLogger(log),
		service.WithStore(store),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithMinConfirmed(cfg.MinConfirmed),
		service.WithMaxGoalkeepers(cfg.MaxGoalkeepers),
		service.WithSummaryOptions(
			summary.WithTitle(cfg.SummaryTitle),
			summary.WithCurrency(cfg.Currency),
		),
	)
	if err := svc.Start(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return svc, nil
}

// newMux wires the docs and the business API onto a fresh mux.
func newMux(ctx context.Context, svc *service.Service) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc).Register(ctx, mux)
	return mux
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater keeps the roster gauges fresh when the store is
// shared with other writers.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics copies the service's roster stats into the gauges.
func updateServiceMetrics(svc *service.Service) {
	stats := svc.GetStats()

	players, ok := stats["players"].(int)
	if !ok {
		return
	}
	confirmed, _ := stats["confirmed"].(int)
	goalkeepers, _ := stats["goalkeepers"].(int)
	totalPaid, _ := stats["totalPaid"].(float64)
	metrics.UpdateRoster(players, confirmed, goalkeepers, totalPaid)
}
