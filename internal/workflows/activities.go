package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/oskarlindgren/pendla/internal/core/domain"
	"github.com/oskarlindgren/pendla/internal/core/ports"
)

// ClaimActivities holds the activity implementations for the claim workflow.
type ClaimActivities struct {
	Cases    ports.CompensationCaseRepository
	Journeys ports.JourneyRepository
	Notifs   ports.NotificationRepository
	Subs     ports.PushSubscriptionRepository
	Sender   ports.PushSender
}

// claimDraft is the payload stored on the case, ready for the user to
// review and submit to the operator.
type claimDraft struct {
	JourneyID    string `json:"journey_id"`
	TravelDate   string `json:"travel_date"`
	Origin       string `json:"origin"`
	Destination  string `json:"destination"`
	DelayMinutes int    `json:"delay_minutes"`
	AmountSEK    int    `json:"amount_sek"`
}

// PrepareClaimDraft snapshots the journey into a claim payload and moves
// the case to draft.
func (a *ClaimActivities) PrepareClaimDraft(ctx context.Context, caseID string) error {
	c, err := a.Cases.GetByID(ctx, caseID)
	if err != nil {
		return fmt.Errorf("load case %s: %w", caseID, err)
	}
	if c.Status != domain.CaseDetected {
		// Already drafted or further along; idempotent no-op.
		return nil
	}

	j, err := a.Journeys.GetByID(ctx, c.JourneyID)
	if err != nil {
		return fmt.Errorf("load journey %s: %w", c.JourneyID, err)
	}

	draft := claimDraft{
		JourneyID:    j.ID,
		TravelDate:   j.TravelDate.Format("2006-01-02"),
		Origin:       j.Itinerary.Origin().Name,
		Destination:  j.Itinerary.Destination().Name,
		DelayMinutes: c.DelayMinutes,
		AmountSEK:    c.AmountSEK,
	}
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}

	if err := a.Cases.SetClaimData(ctx, caseID, data); err != nil {
		return fmt.Errorf("store draft: %w", err)
	}
	return a.Cases.UpdateStatus(ctx, caseID, domain.CaseDraft)
}

// NotifyClaimReady tells the user a claim draft is waiting, on every
// registered push endpoint plus an in-app notification.
func (a *ClaimActivities) NotifyClaimReady(ctx context.Context, input ClaimInput) error {
	title := "Ersättningsansökan redo"
	body := fmt.Sprintf("Din resa var %d min försenad. Ett utkast på %d kr väntar på att skickas in.",
		input.DelayMinutes, input.AmountSEK)

	n := &domain.Notification{
		UserID:    input.UserID,
		Type:      domain.NotifyCompensation,
		Severity:  domain.SeverityInfo,
		Title:     title,
		Body:      body,
		JourneyID: input.JourneyID,
	}
	if err := a.Notifs.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	if a.Sender == nil {
		return nil
	}
	subs, err := a.Subs.ListByUser(ctx, input.UserID)
	if err != nil {
		return fmt.Errorf("list push subscriptions: %w", err)
	}
	for i := range subs {
		if err := a.Sender.Send(ctx, &subs[i], title, body); err != nil {
			return fmt.Errorf("push to %s: %w", subs[i].ID, err)
		}
	}
	return nil
}

// RevertClaimDraft rolls the case back to detected and discards the draft
// payload (saga compensation).
func (a *ClaimActivities) RevertClaimDraft(ctx context.Context, caseID string) error {
	if err := a.Cases.SetClaimData(ctx, caseID, nil); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	if err := a.Cases.UpdateStatus(ctx, caseID, domain.CaseDetected); err != nil {
		return fmt.Errorf("revert status: %w", err)
	}
	slog.Info("claim draft rolled back", "case_id", caseID)
	return nil
}
