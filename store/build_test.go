package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prospectcrm/models"
)

func strPtr(s string) *string { return &s }

func TestNewStage(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s, err := NewStage(models.StageInput{Name: strPtr("Propuesta")}, 2, now)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Order)
	assert.True(t, s.Active)
	assert.Equal(t, now, s.CreatedAt)
	assert.Equal(t, s.CreatedAt, s.UpdatedAt)

	// an explicit order wins over the count
	order := 7
	s, err = NewStage(models.StageInput{Name: strPtr("x"), Order: &order}, 2, now)
	require.NoError(t, err)
	assert.Equal(t, 7, s.Order)

	_, err = NewStage(models.StageInput{Name: strPtr("")}, 0, now)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNewProspectActionTruncatesSchedule(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	when := time.Date(2024, 2, 1, 10, 0, 0, 123456789, time.FixedZone("ART", -3*3600))
	a, err := NewProspectAction(models.ProspectActionInput{
		ProspectID:    strPtr("p"),
		ActionID:      strPtr("a"),
		ScheduledDate: &when,
	}, now)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, a.ScheduledDate.Location())
	assert.Equal(t, 123456000, a.ScheduledDate.Nanosecond())
	assert.True(t, a.ScheduledDate.Equal(when.Truncate(time.Microsecond)))

	_, err = NewProspectAction(models.ProspectActionInput{ProspectID: strPtr("p")}, now)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNewClientDefaults(t *testing.T) {
	c, err := NewClient(models.ClientInput{ComitenteNumber: strPtr("COM1")}, time.Now())
	require.NoError(t, err)
	assert.True(t, c.Active)
	assert.NotNil(t, c.Actions)

	inactive := false
	c, err = NewClient(models.ClientInput{ComitenteNumber: strPtr("COM2"), Active: &inactive}, time.Now())
	require.NoError(t, err)
	assert.False(t, c.Active)
}

func TestTouchNeverGoesBack(t *testing.T) {
	prev := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, prev, Touch(prev, prev.Add(-time.Hour)))
	assert.Equal(t, prev.Add(time.Hour), Touch(prev, prev.Add(time.Hour)))
}

func TestSortEmails(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	emails := []models.CRMEmail{
		{ID: "old", SentAt: &t1},
		{ID: "unsent"},
		{ID: "new", SentAt: &t2},
	}
	SortEmails(emails)
	assert.Equal(t, "new", emails[0].ID)
	assert.Equal(t, "old", emails[1].ID)
	assert.Equal(t, "unsent", emails[2].ID)
}
