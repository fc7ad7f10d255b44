package worker

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prospectcrm/models"
	"prospectcrm/store/kvstore"
)

func strPtr(s string) *string { return &s }

func TestCheckOverdue(t *testing.T) {
	ctx := context.Background()
	s := kvstore.New(kvstore.NewMemoryKV())
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)
	overdue, err := s.CreateProspectAction(ctx, models.ProspectActionInput{
		ProspectID: strPtr("p-1"), ActionID: strPtr("a-1"), ScheduledDate: &past,
	})
	require.NoError(t, err)
	_, err = s.CreateProspectAction(ctx, models.ProspectActionInput{
		ProspectID: strPtr("p-2"), ActionID: strPtr("a-1"), ScheduledDate: &future,
	})
	require.NoError(t, err)
	done, err := s.CreateProspectAction(ctx, models.ProspectActionInput{
		ProspectID: strPtr("p-3"), ActionID: strPtr("a-1"), ScheduledDate: &past,
	})
	require.NoError(t, err)
	_, err = s.CompleteProspectAction(ctx, done.ID)
	require.NoError(t, err)

	fw := NewFollowUpWorker(s, time.Minute, logrus.WithField("component", "test"))
	fw.now = func() time.Time { return now }
	assert.Equal(t, 1, fw.checkOverdue(ctx))

	fields := overdueFields(overdue, now)
	assert.Equal(t, "p-1", fields["prospect_id"])
	assert.Equal(t, "2 days", fields["overdue_by"])
}

func TestStartStopsOnCancel(t *testing.T) {
	s := kvstore.New(kvstore.NewMemoryKV())
	fw := NewFollowUpWorker(s, 10*time.Millisecond, logrus.WithField("component", "test"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		fw.Start(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
