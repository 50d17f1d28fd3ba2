package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/oskarlindgren/pendla/internal/adapters/http"
	natsadapter "github.com/oskarlindgren/pendla/internal/adapters/nats"
	"github.com/oskarlindgren/pendla/internal/adapters/postgres"
	"github.com/oskarlindgren/pendla/internal/adapters/push"
	"github.com/oskarlindgren/pendla/internal/adapters/resrobot"
	"github.com/oskarlindgren/pendla/internal/adapters/trafiklab"
	"github.com/oskarlindgren/pendla/internal/adapters/valkey"
	"github.com/oskarlindgren/pendla/internal/core/ports"
	"github.com/oskarlindgren/pendla/internal/core/usecases"
	"github.com/oskarlindgren/pendla/internal/pkg/config"
	"github.com/oskarlindgren/pendla/internal/pkg/logging"
	"github.com/oskarlindgren/pendla/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("pendla-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.RequireUpstreamKeys(); err != nil {
		log.Fatalf("config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("pendla-api", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
	}
	var cacheSvc ports.CacheService
	if cache != nil {
		cacheSvc = cache
	}

	// NATS
	nc, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer nc.Close()
	}
	var publisher ports.EventPublisher
	if nc != nil {
		publisher = nc
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Upstream providers
	planner := resrobot.NewWithBaseURL(cfg.Upstream.ResRobotKey, cfg.Upstream.ResRobotBaseURL)
	board := trafiklab.NewWithBaseURL(cfg.Upstream.TrafiklabKey, cfg.Upstream.TrafiklabBaseURL)

	// Repos
	stopRepo := postgres.NewStopRepo(db)
	routeRepo := postgres.NewCommuteRouteRepo(db)
	journeyRepo := postgres.NewJourneyRepo(db)
	caseRepo := postgres.NewCaseRepo(db)
	notifRepo := postgres.NewNotificationRepo(db)
	pushRepo := postgres.NewPushRepo(db)
	sessionRepo := postgres.NewSessionRepo(db)
	alertRepo := postgres.NewAlertRepo(db)
	lineRepo := postgres.NewLineRepo(db)

	// Use cases
	stopSvc := usecases.NewStopService(stopRepo, cacheSvc)
	plannerSvc := usecases.NewPlannerService(planner, stopRepo, cacheSvc)
	departureSvc := usecases.NewDepartureService(board, cacheSvc)
	routeSvc := usecases.NewCommuteRouteService(routeRepo, stopRepo)
	notifSvc := usecases.NewNotificationService(notifRepo, pushRepo, publisher, push.NewLogSender())
	compensationSvc := usecases.NewCompensationService(caseRepo, routeRepo, notifSvc)
	journeySvc := usecases.NewJourneyService(journeyRepo, notifSvc, compensationSvc)

	deps := &http.Dependencies{
		Stops:         stopSvc,
		Planner:       plannerSvc,
		Departures:    departureSvc,
		Routes:        routeSvc,
		Journeys:      journeySvc,
		Compensations: compensationSvc,
		Notifications: notifSvc,
		Sessions:      sessionRepo,
		Push:          pushRepo,
		Alerts:        alertRepo,
		Lines:         lineRepo,
		NATS:          natsConn,
		DB:            db,
		Cache:         cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Pendla API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173, https://*.pendla.se",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
