package store

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"prospectcrm/models"
)

// The New* builders apply the creation defaults shared by every backing:
// a fresh id, equal created / updated timestamps, and per-entity defaults.

func NewID() string {
	return uuid.NewString()
}

// NewStage builds a stage; existing is the number of stages already stored.
func NewStage(in models.StageInput, existing int, now time.Time) (models.Stage, error) {
	if in.Name == nil || *in.Name == "" {
		return models.Stage{}, InvalidInput("stage name is required")
	}
	s := models.Stage{
		ID:        NewID(),
		Order:     existing + 1,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.Apply(&s)
	return s, nil
}

func NewStageAction(in models.StageActionInput, now time.Time) (models.StageAction, error) {
	if in.StageID == nil || *in.StageID == "" {
		return models.StageAction{}, InvalidInput("stage_id is required")
	}
	if in.Type == nil || *in.Type == "" {
		return models.StageAction{}, InvalidInput("action type is required")
	}
	a := models.StageAction{
		ID:            NewID(),
		StageID:       *in.StageID,
		Type:          *in.Type,
		RequiredCount: 1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.Description != nil {
		a.Description = *in.Description
	}
	if in.Mandatory != nil {
		a.Mandatory = *in.Mandatory
	}
	if in.RequiredCount != nil {
		if *in.RequiredCount < 1 {
			return models.StageAction{}, InvalidInput("required_count must be at least 1")
		}
		a.RequiredCount = *in.RequiredCount
	}
	return a, nil
}

func NewProspectStage(in models.ProspectStageInput, now time.Time) (models.ProspectStage, error) {
	if in.ProspectID == nil || *in.ProspectID == "" || in.StageID == nil || *in.StageID == "" {
		return models.ProspectStage{}, InvalidInput("prospect_id and stage_id are required")
	}
	return models.ProspectStage{
		ID:         NewID(),
		ProspectID: *in.ProspectID,
		StageID:    *in.StageID,
		StartDate:  now,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func NewProspectAction(in models.ProspectActionInput, now time.Time) (models.ProspectAction, error) {
	if in.ProspectID == nil || *in.ProspectID == "" || in.ActionID == nil || *in.ActionID == "" {
		return models.ProspectAction{}, InvalidInput("prospect_id and action_id are required")
	}
	a := models.ProspectAction{
		ID:            NewID(),
		ProspectID:    *in.ProspectID,
		ActionID:      *in.ActionID,
		ScheduledDate: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.AssignedTo != nil {
		a.AssignedTo = *in.AssignedTo
	}
	if in.ScheduledDate != nil {
		a.ScheduledDate = in.ScheduledDate.UTC().Truncate(time.Microsecond)
	}
	return a, nil
}

func NewEmail(in models.EmailInput, now time.Time) (models.CRMEmail, error) {
	if in.ProspectID == nil || *in.ProspectID == "" {
		return models.CRMEmail{}, InvalidInput("prospect_id is required")
	}
	sentAt := now
	e := models.CRMEmail{
		ID:         NewID(),
		ProspectID: *in.ProspectID,
		SentAt:     &sentAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if in.Subject != nil {
		e.Subject = *in.Subject
	}
	if in.Content != nil {
		e.Content = *in.Content
	}
	if in.SentBy != nil {
		e.SentBy = *in.SentBy
	}
	return e, nil
}

func NewProspect(in models.ProspectInput, now time.Time) models.Prospect {
	p := models.Prospect{ID: NewID(), Actions: []models.Action{}, CreatedAt: now}
	in.Apply(&p)
	return p
}

func NewClient(in models.ClientInput, now time.Time) (models.Client, error) {
	if in.ComitenteNumber == nil || *in.ComitenteNumber == "" {
		return models.Client{}, InvalidInput("numcomitente is required")
	}
	c := models.Client{ID: NewID(), Active: true, Actions: []models.Action{}, CreatedAt: now}
	in.Apply(&c)
	return c, nil
}

func NewAction(in models.ActionInput) models.Action {
	a := models.Action{ID: NewID()}
	in.Apply(&a)
	return a
}

// Touch returns the update timestamp for a record last written at prev.
// It never goes backwards, even if the wall clock does.
func Touch(prev, now time.Time) time.Time {
	if now.Before(prev) {
		return prev
	}
	return now
}

// SortEmails orders emails most recent first; unsent emails sort as oldest.
func SortEmails(emails []models.CRMEmail) {
	sort.SliceStable(emails, func(i, j int) bool {
		return sentAt(emails[i]).After(sentAt(emails[j]))
	})
}

func sentAt(e models.CRMEmail) time.Time {
	if e.SentAt == nil {
		return time.Unix(0, 0).UTC()
	}
	return *e.SentAt
}
