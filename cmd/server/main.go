package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/iconidentify/reelgrab/internal/api"
	"github.com/iconidentify/reelgrab/internal/api/handler"
	"github.com/iconidentify/reelgrab/internal/config"
	"github.com/iconidentify/reelgrab/internal/domain"
	"github.com/iconidentify/reelgrab/internal/engine"
	"github.com/iconidentify/reelgrab/internal/fetcher"
	"github.com/iconidentify/reelgrab/internal/metrics"
	"github.com/iconidentify/reelgrab/internal/repository"
	"github.com/iconidentify/reelgrab/internal/service"
	"github.com/iconidentify/reelgrab/internal/worker"
	"github.com/iconidentify/reelgrab/pkg/gemini"
	"github.com/iconidentify/reelgrab/pkg/instagram"
	"github.com/iconidentify/reelgrab/pkg/telegram"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("reelgrab %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting reelgrab",
		"version", Version,
		"build_time", BuildTime,
	)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	metrics.Init()

	// Event log (ring buffer, optional SQLite persistence)
	eventSvc, err := service.NewEventService(cfg.Events, logger)
	if err != nil {
		logger.Error("failed to initialize event log", "error", err)
		os.Exit(1)
	}

	// Acquisition engine: classifier -> strategy chain -> retry
	igClient := instagram.NewClient(cfg.Engine.ResolveTimeout)
	assetFetcher := fetcher.New(cfg.Download)
	orchestrator := engine.NewOrchestrator(engine.DefaultStrategies(igClient, assetFetcher), logger)
	orchestrator.SetAttemptHook(func(ref domain.PostReference, attempt domain.StrategyAttempt) {
		outcome := "success"
		if attempt.Err != nil {
			outcome = domain.KindName(attempt.Err)
		}
		metrics.StrategyAttemptsTotal.WithLabelValues(attempt.Strategy, outcome).Inc()
		if attempt.Err != nil {
			eventSvc.EmitWarning(domain.EventCategoryStrategy, attempt.Strategy,
				fmt.Sprintf("strategy failed for %s: %v", ref.Shortcode, attempt.Err),
				domain.EventMetadata{"shortcode": ref.Shortcode, "kind": outcome})
		}
	})
	acqEngine := engine.New(orchestrator, cfg.Engine, logger)

	// Repositories and clients
	jobRepo := repository.NewInMemoryJobRepository()
	tgClient := telegram.NewClient(cfg.Telegram)
	geminiClient := gemini.NewClient(cfg.Gemini)

	// Services
	acquireSvc := service.NewAcquireService(
		jobRepo,
		acqEngine,
		tgClient,
		eventSvc,
		cfg.Worker,
		cfg.Download,
		logger,
	)
	captionSvc := service.NewCaptionService(geminiClient, tgClient, eventSvc, logger)

	// Verify the bot token before serving traffic.
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 10*time.Second)
	if me, err := tgClient.GetMe(startupCtx); err != nil {
		logger.Warn("telegram getMe failed, continuing anyway", "error", err)
	} else {
		logger.Info("telegram bot connected", "username", me.Username)
	}
	cancelStartup()

	// Handlers
	webhookHandler := handler.NewWebhookHandler(acquireSvc, captionSvc, tgClient, cfg.Telegram.WebhookSecret, logger)
	healthHandler := handler.NewHealthHandler(jobRepo, eventSvc)
	eventHandler := handler.NewEventHandler(eventSvc, logger)
	jobHandler := handler.NewJobHandler(jobRepo, logger)

	// Setup router
	router := api.NewRouter(webhookHandler, healthHandler, eventHandler, jobHandler, cfg.Server.APIKey)

	// Worker pool drains the acquisition queue.
	pool := worker.NewPool(cfg.Worker, jobRepo, acquireSvc, logger)
	pool.Start()

	eventSvc.EmitInfo(domain.EventCategorySystem, "server", "reelgrab started",
		domain.EventMetadata{"version": Version, "workers": cfg.Worker.Count})

	// Setup HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop accepting new requests
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// Stop workers (allow in-flight jobs to complete)
	if err := pool.Stop(25 * time.Second); err != nil {
		logger.Error("worker pool shutdown error", "error", err)
	}

	if err := eventSvc.Close(); err != nil {
		logger.Error("event log close error", "error", err)
	}

	logger.Info("shutdown complete")
}
