package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hyn062347/Loa-Flow/internal/adapter/repository/postgres"
	"github.com/hyn062347/Loa-Flow/internal/api"
	"github.com/hyn062347/Loa-Flow/internal/config"
	"github.com/hyn062347/Loa-Flow/internal/domain"
	"github.com/hyn062347/Loa-Flow/internal/market"
	"github.com/hyn062347/Loa-Flow/internal/usecase/history"
	"github.com/hyn062347/Loa-Flow/internal/usecase/pipeline"
	"github.com/hyn062347/Loa-Flow/internal/usecase/search"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "config.toml", "path to the TOML configuration file")
	flag.Parse()

	// 1. Load configuration (file + env overrides)
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 2. Setup Database
	db, err := postgres.NewDB(cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// 3. Initialize the persistence policy (deployment-time choice). The
	// history read path only exists for the split shape.
	var policy domain.PersistencePolicy
	var reader api.ItemReader
	switch config.PolicyName(cfg.Pipeline.Policy) {
	case config.PolicySingle:
		policy = postgres.NewSnapshotRepository(db)
	default:
		policy = postgres.NewCatalogRepository(db)
		reader = history.NewService(postgres.NewHistoryRepository(db))
	}
	searchRepo := postgres.NewSearchRepository(db, policy.CatalogTable())

	// 4. Initialize Services (Use Cases)
	client := market.NewClient(market.ClientConfig{
		BaseURL: cfg.Market.BaseURL,
		APIKey:  cfg.Market.APIKey,
	})
	paginator := market.NewPaginator(client, logger)
	pipelineService := pipeline.NewService(paginator, policy,
		cfg.Pipeline.DefaultCategoryCode, cfg.Pipeline.MaxPages, logger)
	searchService := search.NewService(searchRepo)

	// 5. Optional in-process scheduler
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()
	if interval, _ := cfg.ScheduleInterval(); interval > 0 {
		go runScheduler(schedulerCtx, pipelineService, interval, logger)
	}

	// 6. Start HTTP Server
	handler := api.NewAPIHandler(pipelineService, searchService, reader, logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: handler.SetupRoutes(),
	}

	go func() {
		logger.Info("HTTP server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve HTTP server: %v", err)
		}
	}()

	waitForShutdown(server, logger)
}

// runScheduler fires the pipeline for the default category on a fixed
// interval until ctx is cancelled. An external scheduler hitting the trigger
// endpoint remains the primary contract; this is a convenience for
// single-process deployments.
func runScheduler(ctx context.Context, service *pipeline.Service, interval time.Duration, logger *slog.Logger) {
	logger.Info("in-process scheduler enabled", slog.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := service.Run(ctx, 0); err != nil {
				logger.Error("scheduled pipeline run failed", slog.String("error", err.Error()))
			}
		}
	}
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the
// server.
func waitForShutdown(server *http.Server, logger *slog.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logger.Info("shutting down gracefully", slog.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	}
	logger.Info("HTTP server stopped")
}
