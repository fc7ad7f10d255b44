package sqlstore

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"prospectcrm/models"
	"prospectcrm/store"
)

var stageOrder = clause.OrderByColumn{Column: clause.Column{Name: "order"}}

func (s *Store) ListStages(ctx context.Context) ([]models.Stage, error) {
	stages := make([]models.Stage, 0)
	if err := s.conn(ctx).Order(stageOrder).Order("created_at").Find(&stages).Error; err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}
	return stages, nil
}

func (s *Store) CreateStage(ctx context.Context, in models.StageInput) (models.Stage, error) {
	var stage models.Stage
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Stage{}).Count(&count).Error; err != nil {
			return err
		}
		var err error
		stage, err = store.NewStage(in, int(count), s.timestamp())
		if err != nil {
			return err
		}
		return tx.Create(&stage).Error
	})
	if err != nil {
		return models.Stage{}, fmt.Errorf("create stage: %w", err)
	}
	return stage, nil
}

func (s *Store) UpdateStage(ctx context.Context, id string, in models.StageInput) (models.Stage, error) {
	var stage models.Stage
	db := s.conn(ctx)
	if err := db.First(&stage, "id = ?", id).Error; err != nil {
		if isRecordNotFound(err) {
			return models.Stage{}, store.NotFound("stage", id)
		}
		return models.Stage{}, fmt.Errorf("update stage: %w", err)
	}
	in.Apply(&stage)
	if err := db.Save(&stage).Error; err != nil {
		return models.Stage{}, fmt.Errorf("update stage: %w", err)
	}
	return stage, nil
}

func (s *Store) ListStageActions(ctx context.Context, stageID string) ([]models.StageAction, error) {
	actions := make([]models.StageAction, 0)
	if err := s.conn(ctx).Where("stage_id = ?", stageID).Order("created_at").Find(&actions).Error; err != nil {
		return nil, fmt.Errorf("list stage actions: %w", err)
	}
	return actions, nil
}

func (s *Store) CreateStageAction(ctx context.Context, in models.StageActionInput) (models.StageAction, error) {
	action, err := store.NewStageAction(in, s.timestamp())
	if err != nil {
		return models.StageAction{}, err
	}
	if err := s.conn(ctx).Create(&action).Error; err != nil {
		return models.StageAction{}, fmt.Errorf("create stage action: %w", err)
	}
	return action, nil
}

func (s *Store) ListProspectStages(ctx context.Context, prospectID string) ([]models.ProspectStage, error) {
	rows := make([]models.ProspectStage, 0)
	err := s.conn(ctx).
		Preload("Stage").
		Where("prospect_id = ?", prospectID).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list prospect stages: %w", err)
	}
	return rows, nil
}

func (s *Store) CreateProspectStage(ctx context.Context, in models.ProspectStageInput) (models.ProspectStage, error) {
	ps, err := store.NewProspectStage(in, s.timestamp())
	if err != nil {
		return models.ProspectStage{}, err
	}
	if err := s.conn(ctx).Create(&ps).Error; err != nil {
		return models.ProspectStage{}, fmt.Errorf("create prospect stage: %w", err)
	}
	return ps, nil
}

func (s *Store) CompleteProspectStage(ctx context.Context, id string) (models.ProspectStage, error) {
	var ps models.ProspectStage
	db := s.conn(ctx)
	if err := db.First(&ps, "id = ?", id).Error; err != nil {
		if isRecordNotFound(err) {
			return models.ProspectStage{}, store.NotFound("prospect stage", id)
		}
		return models.ProspectStage{}, fmt.Errorf("complete prospect stage: %w", err)
	}
	now := s.timestamp()
	ps.CompletionDate = &now
	ps.Active = false
	if err := db.Save(&ps).Error; err != nil {
		return models.ProspectStage{}, fmt.Errorf("complete prospect stage: %w", err)
	}
	return ps, nil
}

func (s *Store) ListProspectActions(ctx context.Context, prospectID string) ([]models.ProspectAction, error) {
	rows := make([]models.ProspectAction, 0)
	err := s.conn(ctx).
		Preload("Action").
		Where("prospect_id = ?", prospectID).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list prospect actions: %w", err)
	}
	return rows, nil
}

func (s *Store) ListPendingProspectActions(ctx context.Context, before time.Time) ([]models.ProspectAction, error) {
	rows := make([]models.ProspectAction, 0)
	err := s.conn(ctx).
		Preload("Action").
		Where("completed = ? AND scheduled_date <= ?", false, before.UTC()).
		Order("scheduled_date").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list pending prospect actions: %w", err)
	}
	return rows, nil
}

func (s *Store) CreateProspectAction(ctx context.Context, in models.ProspectActionInput) (models.ProspectAction, error) {
	pa, err := store.NewProspectAction(in, s.timestamp())
	if err != nil {
		return models.ProspectAction{}, err
	}
	if err := s.conn(ctx).Create(&pa).Error; err != nil {
		return models.ProspectAction{}, fmt.Errorf("create prospect action: %w", err)
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
	var pa models.ProspectAction
	db := s.conn(ctx)
	if err := db.First(&pa, "id = ?", id).Error; err != nil {
		if isRecordNotFound(err) {
			return models.ProspectAction{}, store.NotFound("prospect action", id)
		}
		return models.ProspectAction{}, fmt.Errorf("update prospect action: %w", err)
	}
	mutate(&pa)
	if err := db.Save(&pa).Error; err != nil {
		return models.ProspectAction{}, fmt.Errorf("update prospect action: %w", err)
	}
	return pa, nil
}

func (s *Store) SendEmail(ctx context.Context, in models.EmailInput) (models.CRMEmail, error) {
	email, err := store.NewEmail(in, s.timestamp())
	if err != nil {
		return models.CRMEmail{}, err
	}
	if err := s.conn(ctx).Create(&email).Error; err != nil {
		return models.CRMEmail{}, fmt.Errorf("send email: %w", err)
	}
	return email, nil
}

func (s *Store) ListProspectEmails(ctx context.Context, prospectID string) ([]models.CRMEmail, error) {
	emails := make([]models.CRMEmail, 0)
	err := s.conn(ctx).
		Where("prospect_id = ?", prospectID).
		Order("created_at").
		Find(&emails).Error
	if err != nil {
		return nil, fmt.Errorf("list prospect emails: %w", err)
	}
	// NULL placement under DESC differs between dialects; sort here instead.
	store.SortEmails(emails)
	return emails, nil
}
