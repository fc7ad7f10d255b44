package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"prospectcrm/models"
	"prospectcrm/store"
)

// listQuery narrows base to the rows matching every filter of q.
func (s *Store) listQuery(base *gorm.DB, q store.ListQuery, fields map[string]store.Field) *gorm.DB {
	for key, value := range q.Filters {
		col := fields[key].Column
		pattern := "%" + escapeLikePattern(strings.ToLower(value)) + "%"
		base = base.Where(fmt.Sprintf("%s(%s) LIKE ? ESCAPE '\\'", s.lowerFunc(), col), pattern)
	}
	return base
}

func (s *Store) orderBy(db *gorm.DB, q store.ListQuery, fields map[string]store.Field) *gorm.DB {
	if q.SortField != "" {
		f := fields[q.SortField]
		expr := f.Column
		if f.Kind == store.KindString && s.isPostgres() {
			// byte order, as the kv backing compares
			expr += ` COLLATE "C"`
		}
		if q.SortDirection == models.SortDescending {
			expr += " DESC"
		}
		db = db.Order(expr)
	}
	return db.Order("created_at").Order("id")
}

func (s *Store) ListProspects(ctx context.Context, q store.ListQuery) (store.Page[models.Prospect], error) {
	q, err := q.Normalize(store.ProspectFields)
	if err != nil {
		return store.Page[models.Prospect]{}, err
	}

	query := s.conn(ctx).Model(&models.Prospect{})
	switch q.Status {
	case models.StatusFilterActive:
		query = query.Where("status = ?", models.ProspectStatusActive)
	case models.StatusFilterInactive:
		query = query.Where("(status <> ? OR status IS NULL)", models.ProspectStatusActive)
	}
	query = s.listQuery(query, q, store.ProspectFields)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return store.Page[models.Prospect]{}, fmt.Errorf("count prospects: %w", err)
	}

	prospects := make([]models.Prospect, 0)
	err = s.orderBy(query, q, store.ProspectFields).
		Offset(q.Offset()).
		Limit(store.PageSize).
		Find(&prospects).Error
	if err != nil {
		return store.Page[models.Prospect]{}, fmt.Errorf("list prospects: %w", err)
	}
	return store.NewPage(prospects, q.Page, total), nil
}

func (s *Store) GetProspectByID(ctx context.Context, id string) (*models.Prospect, error) {
	var p models.Prospect
	if err := s.conn(ctx).First(&p, "id = ?", id).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get prospect: %w", err)
	}
	return &p, nil
}

func (s *Store) CreateProspect(ctx context.Context, in models.ProspectInput) (models.Prospect, error) {
	p := store.NewProspect(in, s.timestamp())
	if err := s.conn(ctx).Create(&p).Error; err != nil {
		return models.Prospect{}, fmt.Errorf("create prospect: %w", err)
	}
	return p, nil
}

func (s *Store) UpdateProspect(ctx context.Context, id string, in models.ProspectInput) (*models.Prospect, error) {
	p, err := s.GetProspectByID(ctx, id)
	if err != nil || p == nil {
		return nil, err
	}
	in.Apply(p)
	if err := s.conn(ctx).Save(p).Error; err != nil {
		return nil, fmt.Errorf("update prospect: %w", err)
	}
	return p, nil
}

func (s *Store) DeleteProspect(ctx context.Context, id string) (bool, error) {
	if err := s.conn(ctx).Where("id = ?", id).Delete(&models.Prospect{}).Error; err != nil {
		return false, fmt.Errorf("delete prospect: %w", err)
	}
	return true, nil
}

func (s *Store) ListClients(ctx context.Context, q store.ListQuery) (store.Page[models.Client], error) {
	q, err := q.Normalize(store.ClientFields)
	if err != nil {
		return store.Page[models.Client]{}, err
	}

	query := s.conn(ctx).Model(&models.Client{})
	switch q.Status {
	case models.StatusFilterActive:
		query = query.Where("active = ?", true)
	case models.StatusFilterInactive:
		query = query.Where("active = ?", false)
	}
	query = s.listQuery(query, q, store.ClientFields)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return store.Page[models.Client]{}, fmt.Errorf("count clients: %w", err)
	}

	clients := make([]models.Client, 0)
	err = s.orderBy(query, q, store.ClientFields).
		Offset(q.Offset()).
		Limit(store.PageSize).
		Find(&clients).Error
	if err != nil {
		return store.Page[models.Client]{}, fmt.Errorf("list clients: %w", err)
	}
	return store.NewPage(clients, q.Page, total), nil
}

func (s *Store) GetClientByComitente(ctx context.Context, code string) (*models.Client, error) {
	var c models.Client
	if err := s.conn(ctx).First(&c, "comitente_number = ?", code).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return &c, nil
}

func (s *Store) GetActionsByComitente(ctx context.Context, code string) ([]models.Action, error) {
	c, err := s.GetClientByComitente(ctx, code)
	if err != nil {
		return nil, err
	}
	if c == nil || c.Actions == nil {
		return []models.Action{}, nil
	}
	return c.Actions, nil
}

func (s *Store) CreateClient(ctx context.Context, in models.ClientInput) (models.Client, error) {
	c, err := store.NewClient(in, s.timestamp())
	if err != nil {
		return models.Client{}, err
	}
	err = s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Client{}).Where("comitente_number = ?", c.ComitenteNumber).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return store.Conflict("client", c.ComitenteNumber)
		}
		return tx.Create(&c).Error
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return models.Client{}, err
		}
		if isUniqueViolation(err) {
			return models.Client{}, store.Conflict("client", c.ComitenteNumber)
		}
		return models.Client{}, fmt.Errorf("create client: %w", err)
	}
	return c, nil
}

// CreateAction appends a new action to the log of the prospect with id
// entityID, or to the client with that id when no prospect matches.
func (s *Store) CreateAction(ctx context.Context, entityID string, in models.ActionInput) (*models.Action, error) {
	action := store.NewAction(in)
	var created bool

	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if created, err = appendProspectAction(tx, entityID, &action); err != nil || created {
			return err
		}
		created, err = appendClientAction(tx, entityID, &action)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create action: %w", err)
	}
	if !created {
		return nil, nil
	}
	return &action, nil
}

// CreateClientAction appends a new action to the log of the client with id
// clientID, leaving prospects untouched.
func (s *Store) CreateClientAction(ctx context.Context, clientID string, in models.ActionInput) (*models.Action, error) {
	action := store.NewAction(in)
	var created bool

	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = appendClientAction(tx, clientID, &action)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create client action: %w", err)
	}
	if !created {
		return nil, nil
	}
	return &action, nil
}

func appendProspectAction(tx *gorm.DB, id string, action *models.Action) (bool, error) {
	var p models.Prospect
	if err := tx.First(&p, "id = ?", id).Error; err != nil {
		if isRecordNotFound(err) {
			return false, nil
		}
		return false, err
	}
	action.ProspectID = id
	p.Actions = append(p.Actions, *action)
	return true, tx.Save(&p).Error
}

func appendClientAction(tx *gorm.DB, id string, action *models.Action) (bool, error) {
	var c models.Client
	if err := tx.First(&c, "id = ?", id).Error; err != nil {
		if isRecordNotFound(err) {
			return false, nil
		}
		return false, err
	}
	action.ClientID = id
	c.Actions = append(c.Actions, *action)
	return true, tx.Save(&c).Error
}

// UpdateAction merges in into the first logged action with id actionID,
// searching prospects before clients.
func (s *Store) UpdateAction(ctx context.Context, actionID string, in models.ActionInput) (*models.Action, error) {
	var updated *models.Action

	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var prospects []models.Prospect
		if err := tx.Order("created_at").Order("id").Find(&prospects).Error; err != nil {
			return err
		}
		for i := range prospects {
			if a := findAction(prospects[i].Actions, actionID); a != nil {
				in.Apply(a)
				updated = a
				return tx.Save(&prospects[i]).Error
			}
		}

		var clients []models.Client
		if err := tx.Order("created_at").Order("id").Find(&clients).Error; err != nil {
			return err
		}
		for i := range clients {
			if a := findAction(clients[i].Actions, actionID); a != nil {
				in.Apply(a)
				updated = a
				return tx.Save(&clients[i]).Error
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update action: %w", err)
	}
	if updated == nil {
		return nil, nil
	}
	out := *updated
	return &out, nil
}

func findAction(actions []models.Action, id string) *models.Action {
	for i := range actions {
		if actions[i].ID == id {
			return &actions[i]
		}
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := s.conn(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
