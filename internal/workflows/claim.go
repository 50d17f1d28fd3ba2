package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// ClaimInput is the input for the claim workflow, published when the
// evaluator detects an eligible journey.
type ClaimInput struct {
	CaseID       string
	UserID       string
	JourneyID    string
	DelayMinutes int
	AmountSEK    int
}

// ClaimWorkflow prepares a compensation-claim draft and tells the user
// about it. If the notification cannot be delivered the draft is rolled
// back (saga compensation) so the case returns to detected and a later
// run can retry cleanly.
func ClaimWorkflow(ctx workflow.Context, input ClaimInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting claim workflow", "caseID", input.CaseID, "delayMinutes", input.DelayMinutes)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Build the claim draft from the journey snapshot
	err := workflow.ExecuteActivity(ctx, "PrepareClaimDraft", input.CaseID).Get(ctx, nil)
	if err != nil {
		return err
	}

	// Step 2: Notify the user that a draft is ready
	err = workflow.ExecuteActivity(ctx, "NotifyClaimReady", input).Get(ctx, nil)
	if err != nil {
		logger.Warn("claim notification failed, rolling back draft", "error", err)
		// Compensate: revert the case to detected
		_ = workflow.ExecuteActivity(ctx, "RevertClaimDraft", input.CaseID).Get(ctx, nil)
		return err
	}

	logger.Info("Claim draft prepared", "caseID", input.CaseID)
	return nil
}
