// The watcher polls realtime departure boards for commute routes that are
// close to their scheduled departure and records delays and cancellations
// on the day's journeys. Delay and compensation events flow out over NATS.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	natsadapter "github.com/oskarlindgren/pendla/internal/adapters/nats"
	"github.com/oskarlindgren/pendla/internal/adapters/postgres"
	"github.com/oskarlindgren/pendla/internal/adapters/push"
	"github.com/oskarlindgren/pendla/internal/adapters/resrobot"
	"github.com/oskarlindgren/pendla/internal/adapters/trafiklab"
	"github.com/oskarlindgren/pendla/internal/core/usecases"
	"github.com/oskarlindgren/pendla/internal/pkg/config"
	"github.com/oskarlindgren/pendla/internal/pkg/logging"
)

func main() {
	cfg, err := config.Load("pendla-watcher")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.RequireUpstreamKeys(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("pendla-watcher", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// NATS
	nc, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer nc.Close()

	// Upstream providers
	planner := resrobot.NewWithBaseURL(cfg.Upstream.ResRobotKey, cfg.Upstream.ResRobotBaseURL)
	board := trafiklab.NewWithBaseURL(cfg.Upstream.TrafiklabKey, cfg.Upstream.TrafiklabBaseURL)

	// Repos and services
	stopRepo := postgres.NewStopRepo(db)
	routeRepo := postgres.NewCommuteRouteRepo(db)
	journeyRepo := postgres.NewJourneyRepo(db)
	caseRepo := postgres.NewCaseRepo(db)
	notifRepo := postgres.NewNotificationRepo(db)
	pushRepo := postgres.NewPushRepo(db)

	notifSvc := usecases.NewNotificationService(notifRepo, pushRepo, nc, push.NewLogSender())
	compensationSvc := usecases.NewCompensationService(caseRepo, routeRepo, notifSvc)
	journeySvc := usecases.NewJourneyService(journeyRepo, notifSvc, compensationSvc)
	routeSvc := usecases.NewCommuteRouteService(routeRepo, stopRepo)
	plannerSvc := usecases.NewPlannerService(planner, stopRepo, nil)

	lookahead := time.Duration(cfg.Watcher.LookaheadMinutes) * time.Minute
	watcher := usecases.NewWatcherService(routeSvc, journeyRepo, journeySvc, plannerSvc, board, stopRepo, lookahead)

	pollInterval := time.Duration(cfg.Watcher.PollIntervalSec) * time.Second
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	slog.Info("commute watcher starting", "poll_interval", pollInterval.String(), "lookahead", lookahead.String())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Run once immediately
	watcher.Tick(ctx, time.Now())

	for {
		select {
		case <-ticker.C:
			watcher.Tick(ctx, time.Now())
		case <-ctx.Done():
			return
		case sig := <-quit:
			slog.Info("shutting down watcher", "signal", sig.String())
			cancel()
			// Give in-flight board fetches time to finish
			time.Sleep(2 * time.Second)
			return
		}
	}
}
