package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"prospectcrm/models"
	"prospectcrm/store"
	"prospectcrm/utils"
)

// FollowUpWorker periodically reports prospect actions whose scheduled
// date has passed without being completed.
type FollowUpWorker struct {
	Store    store.PipelineStore
	Interval time.Duration
	Logger   *logrus.Entry

	now func() time.Time
}

func NewFollowUpWorker(s store.PipelineStore, interval time.Duration, logger *logrus.Entry) *FollowUpWorker {
	return &FollowUpWorker{
		Store:    s,
		Interval: interval,
		Logger:   logger,
		now:      time.Now,
	}
}

// Start runs a check immediately and then once per interval until ctx is done.
func (fw *FollowUpWorker) Start(ctx context.Context) {
	fw.Logger.WithField("interval", fw.Interval.String()).Info("Follow-up worker started")

	ticker := time.NewTicker(fw.Interval)
	defer ticker.Stop()

	fw.checkOverdue(ctx)
	for {
		select {
		case <-ctx.Done():
			fw.Logger.Info("Follow-up worker shutting down...")
			return
		case <-ticker.C:
			fw.checkOverdue(ctx)
		}
	}
}

// checkOverdue logs one event per overdue action and returns how many it found.
func (fw *FollowUpWorker) checkOverdue(ctx context.Context) int {
	now := fw.now()
	pending, err := fw.Store.ListPendingProspectActions(ctx, now)
	if err != nil {
		if ctx.Err() == nil {
			utils.LogError("followup_scan_failed", err, nil)
		}
		return 0
	}

	for _, action := range pending {
		utils.LogEvent("prospect_action_overdue", overdueFields(action, now))
	}
	if len(pending) > 0 {
		fw.Logger.WithField("count", len(pending)).Info("Overdue prospect actions found")
	}
	return len(pending)
}

func overdueFields(action models.ProspectAction, now time.Time) map[string]interface{} {
	fields := map[string]interface{}{
		"prospect_action_id": action.ID,
		"prospect_id":        action.ProspectID,
		"assigned_to":        action.AssignedTo,
		"scheduled_date":     action.ScheduledDate.Format(time.RFC3339),
		"overdue_by":         utils.FormatDuration(now.Sub(action.ScheduledDate)),
		"approved":           action.Approved,
	}
	if action.Action != nil {
		fields["action_type"] = action.Action.Type
		fields["mandatory"] = action.Action.Mandatory
	}
	return fields
}
