// The compensator runs the claim workflow worker. Detected compensation
// cases arrive over NATS and each one starts a ClaimWorkflow execution,
// which drafts the claim and notifies the commuter.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/oskarlindgren/pendla/internal/adapters/nats"
	"github.com/oskarlindgren/pendla/internal/adapters/postgres"
	"github.com/oskarlindgren/pendla/internal/adapters/push"
	"github.com/oskarlindgren/pendla/internal/core/domain"
	"github.com/oskarlindgren/pendla/internal/pkg/config"
	"github.com/oskarlindgren/pendla/internal/pkg/logging"
	"github.com/oskarlindgren/pendla/internal/workflows"
)

func main() {
	cfg, err := config.Load("pendla-compensator")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("pendla-compensator", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.ClaimWorkflow)
	w.RegisterActivity(&workflows.ClaimActivities{
		Cases:    postgres.NewCaseRepo(db),
		Journeys: postgres.NewJourneyRepo(db),
		Notifs:   postgres.NewNotificationRepo(db),
		Subs:     postgres.NewPushRepo(db),
		Sender:   push.NewLogSender(),
	})

	// Case events start workflow executions. The stream is a work queue
	// with redelivery, and workflow IDs are derived from the case ID, so
	// duplicate deliveries collapse onto the same execution.
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	err = sub.SubscribeCases(ctx, func(ctx context.Context, cc *domain.CompensationCase) error {
		opts := client.StartWorkflowOptions{
			ID:        "claim-" + cc.ID,
			TaskQueue: cfg.Temporal.TaskQueue,
		}
		input := workflows.ClaimInput{
			CaseID:       cc.ID,
			UserID:       cc.UserID,
			JourneyID:    cc.JourneyID,
			DelayMinutes: cc.DelayMinutes,
			AmountSEK:    cc.AmountSEK,
		}
		_, err := c.ExecuteWorkflow(ctx, opts, workflows.ClaimWorkflow, input)
		if err != nil {
			return fmt.Errorf("start claim workflow for case %s: %w", cc.ID, err)
		}
		slog.Info("claim workflow started", "case_id", cc.ID, "amount_sek", cc.AmountSEK)
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe cases: %v", err)
	}

	slog.Info("compensator worker starting", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
