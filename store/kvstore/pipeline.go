package kvstore

import (
	"context"
	"sort"
	"time"

	"prospectcrm/models"
	"prospectcrm/store"
)

func (s *Store) ListStages(ctx context.Context) ([]models.Stage, error) {
	stages, err := load[models.Stage](ctx, s.kv, KeyStages)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(stages, func(i, j int) bool {
		return stages[i].Order < stages[j].Order
	})
	return stages, nil
}

func (s *Store) CreateStage(ctx context.Context, in models.StageInput) (models.Stage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stages, err := load[models.Stage](ctx, s.kv, KeyStages)
	if err != nil {
		return models.Stage{}, err
	}
	stage, err := store.NewStage(in, len(stages), s.timestamp())
	if err != nil {
		return models.Stage{}, err
	}
	if err := save(ctx, s.kv, KeyStages, append(stages, stage)); err != nil {
		return models.Stage{}, err
	}
	return stage, nil
}

func (s *Store) UpdateStage(ctx context.Context, id string, in models.StageInput) (models.Stage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stages, err := load[models.Stage](ctx, s.kv, KeyStages)
	if err != nil {
		return models.Stage{}, err
	}
	for i := range stages {
		if stages[i].ID != id {
			continue
		}
		in.Apply(&stages[i])
		stages[i].UpdatedAt = store.Touch(stages[i].UpdatedAt, s.timestamp())
		if err := save(ctx, s.kv, KeyStages, stages); err != nil {
			return models.Stage{}, err
		}
		return stages[i], nil
	}
	return models.Stage{}, store.NotFound("stage", id)
}

func (s *Store) ListStageActions(ctx context.Context, stageID string) ([]models.StageAction, error) {
	actions, err := load[models.StageAction](ctx, s.kv, KeyStageActions)
	if err != nil {
		return nil, err
	}
	out := make([]models.StageAction, 0, len(actions))
	for _, a := range actions {
		if a.StageID == stageID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) CreateStageAction(ctx context.Context, in models.StageActionInput) (models.StageAction, error) {
	action, err := store.NewStageAction(in, s.timestamp())
	if err != nil {
		return models.StageAction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	actions, err := load[models.StageAction](ctx, s.kv, KeyStageActions)
	if err != nil {
		return models.StageAction{}, err
	}
	if err := save(ctx, s.kv, KeyStageActions, append(actions, action)); err != nil {
		return models.StageAction{}, err
	}
	return action, nil
}

func (s *Store) ListProspectStages(ctx context.Context, prospectID string) ([]models.ProspectStage, error) {
	rows, err := load[models.ProspectStage](ctx, s.kv, KeyProspectStages)
	if err != nil {
		return nil, err
	}
	stages, err := load[models.Stage](ctx, s.kv, KeyStages)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Stage, len(stages))
	for _, st := range stages {
		byID[st.ID] = st
	}

	out := make([]models.ProspectStage, 0, len(rows))
	for _, ps := range rows {
		if ps.ProspectID != prospectID {
			continue
		}
		if st, ok := byID[ps.StageID]; ok {
			st := st
			ps.Stage = &st
		}
		out = append(out, ps)
	}
	return out, nil
}

func (s *Store) CreateProspectStage(ctx context.Context, in models.ProspectStageInput) (models.ProspectStage, error) {
	ps, err := store.NewProspectStage(in, s.timestamp())
	if err != nil {
		return models.ProspectStage{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := load[models.ProspectStage](ctx, s.kv, KeyProspectStages)
	if err != nil {
		return models.ProspectStage{}, err
	}
	if err := save(ctx, s.kv, KeyProspectStages, append(rows, ps)); err != nil {
		return models.ProspectStage{}, err
	}
	return ps, nil
}

func (s *Store) CompleteProspectStage(ctx context.Context, id string) (models.ProspectStage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := load[models.ProspectStage](ctx, s.kv, KeyProspectStages)
	if err != nil {
		return models.ProspectStage{}, err
	}
	for i := range rows {
		if rows[i].ID != id {
			continue
		}
		now := s.timestamp()
		rows[i].CompletionDate = &now
		rows[i].Active = false
		rows[i].UpdatedAt = store.Touch(rows[i].UpdatedAt, now)
		if err := save(ctx, s.kv, KeyProspectStages, rows); err != nil {
			return models.ProspectStage{}, err
		}
		return rows[i], nil
	}
	return models.ProspectStage{}, store.NotFound("prospect stage", id)
}

func (s *Store) ListProspectActions(ctx context.Context, prospectID string) ([]models.ProspectAction, error) {
	return s.prospectActions(ctx, func(a models.ProspectAction) bool {
		return a.ProspectID == prospectID
	})
}

func (s *Store) ListPendingProspectActions(ctx context.Context, before time.Time) ([]models.ProspectAction, error) {
	out, err := s.prospectActions(ctx, func(a models.ProspectAction) bool {
		return !a.Completed && !a.ScheduledDate.After(before)
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScheduledDate.Before(out[j].ScheduledDate)
	})
	return out, nil
}

// prospectActions returns the matching rows enriched with their StageAction.
func (s *Store) prospectActions(ctx context.Context, keep func(models.ProspectAction) bool) ([]models.ProspectAction, error) {
	rows, err := load[models.ProspectAction](ctx, s.kv, KeyProspectActions)
	if err != nil {
		return nil, err
	}
	templates, err := load[models.StageAction](ctx, s.kv, KeyStageActions)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.StageAction, len(templates))
	for _, t := range templates {
		byID[t.ID] = t
	}

	out := make([]models.ProspectAction, 0, len(rows))
	for _, pa := range rows {
		if !keep(pa) {
			continue
		}
		if t, ok := byID[pa.ActionID]; ok {
			t := t
			pa.Action = &t
		}
		out = append(out, pa)
	}
	return out, nil
}

func (s *Store) CreateProspectAction(ctx context.Context, in models.ProspectActionInput) (models.ProspectAction, error) {
	pa, err := store.NewProspectAction(in, s.timestamp())
	if err != nil {
		return models.ProspectAction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := load[models.ProspectAction](ctx, s.kv, KeyProspectActions)
	if err != nil {
		return models.ProspectAction{}, err
	}
	if err := save(ctx, s.kv, KeyProspectActions, append(rows, pa)); err != nil {
		return models.ProspectAction{}, err
	}
	return pa, nil
}

func (s *Store) CompleteProspectAction(ctx context.Context, id string) (models.ProspectAction, error) {
	return s.updateProspectAction(ctx, id, func(a *models.ProspectAction) {
		a.Completed = true
	})
}

func (s *Store) ApproveProspectAction(ctx context.Context, id string) (models.ProspectAction, error) {
	return s.updateProspectAction(ctx, id, func(a *models.ProspectAction) {
		a.Approved = true
	})
}

func (s *Store) updateProspectAction(ctx context.Context, id string, mutate func(*models.ProspectAction)) (models.ProspectAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := load[models.ProspectAction](ctx, s.kv, KeyProspectActions)
	if err != nil {
		return models.ProspectAction{}, err
	}
	for i := range rows {
		if rows[i].ID != id {
			continue
		}
		mutate(&rows[i])
		rows[i].UpdatedAt = store.Touch(rows[i].UpdatedAt, s.timestamp())
		if err := save(ctx, s.kv, KeyProspectActions, rows); err != nil {
			return models.ProspectAction{}, err
		}
		return rows[i], nil
	}
	return models.ProspectAction{}, store.NotFound("prospect action", id)
}

func (s *Store) SendEmail(ctx context.Context, in models.EmailInput) (models.CRMEmail, error) {
	email, err := store.NewEmail(in, s.timestamp())
	if err != nil {
		return models.CRMEmail{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	emails, err := load[models.CRMEmail](ctx, s.kv, KeyEmails)
	if err != nil {
		return models.CRMEmail{}, err
	}
	if err := save(ctx, s.kv, KeyEmails, append(emails, email)); err != nil {
		return models.CRMEmail{}, err
	}
	return email, nil
}

func (s *Store) ListProspectEmails(ctx context.Context, prospectID string) ([]models.CRMEmail, error) {
	emails, err := load[models.CRMEmail](ctx, s.kv, KeyEmails)
	if err != nil {
		return nil, err
	}
	out := make([]models.CRMEmail, 0, len(emails))
	for _, e := range emails {
		if e.ProspectID == prospectID {
			out = append(out, e)
		}
	}
	store.SortEmails(out)
	return out, nil
}
