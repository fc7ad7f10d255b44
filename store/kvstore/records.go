package kvstore

import (
	"context"

	"prospectcrm/models"
	"prospectcrm/store"
)

func (s *Store) ListProspects(ctx context.Context, q store.ListQuery) (store.Page[models.Prospect], error) {
	q, err := q.Normalize(store.ProspectFields)
	if err != nil {
		return store.Page[models.Prospect]{}, err
	}
	prospects, err := load[models.Prospect](ctx, s.kv, KeyProspects)
	if err != nil {
		return store.Page[models.Prospect]{}, err
	}
	return store.SelectPage(prospects, q, models.Prospect.IsActive)
}

func (s *Store) GetProspectByID(ctx context.Context, id string) (*models.Prospect, error) {
	prospects, err := load[models.Prospect](ctx, s.kv, KeyProspects)
	if err != nil {
		return nil, err
	}
	for i := range prospects {
		if prospects[i].ID == id {
			return &prospects[i], nil
		}
	}
	return nil, nil
}

func (s *Store) CreateProspect(ctx context.Context, in models.ProspectInput) (models.Prospect, error) {
	p := store.NewProspect(in, s.timestamp())

	s.mu.Lock()
	defer s.mu.Unlock()

	prospects, err := load[models.Prospect](ctx, s.kv, KeyProspects)
	if err != nil {
		return models.Prospect{}, err
	}
	if err := save(ctx, s.kv, KeyProspects, append(prospects, p)); err != nil {
		return models.Prospect{}, err
	}
	return p, nil
}

func (s *Store) UpdateProspect(ctx context.Context, id string, in models.ProspectInput) (*models.Prospect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prospects, err := load[models.Prospect](ctx, s.kv, KeyProspects)
	if err != nil {
		return nil, err
	}
	for i := range prospects {
		if prospects[i].ID != id {
			continue
		}
		in.Apply(&prospects[i])
		if err := save(ctx, s.kv, KeyProspects, prospects); err != nil {
			return nil, err
		}
		return &prospects[i], nil
	}
	return nil, nil
}

func (s *Store) DeleteProspect(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prospects, err := load[models.Prospect](ctx, s.kv, KeyProspects)
	if err != nil {
		return false, err
	}
	kept := make([]models.Prospect, 0, len(prospects))
	for _, p := range prospects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(prospects) {
		return true, nil
	}
	if err := save(ctx, s.kv, KeyProspects, kept); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) ListClients(ctx context.Context, q store.ListQuery) (store.Page[models.Client], error) {
	q, err := q.Normalize(store.ClientFields)
	if err != nil {
		return store.Page[models.Client]{}, err
	}
	clients, err := load[models.Client](ctx, s.kv, KeyClients)
	if err != nil {
		return store.Page[models.Client]{}, err
	}
	return store.SelectPage(clients, q, func(c models.Client) bool { return c.Active })
}

func (s *Store) GetClientByComitente(ctx context.Context, code string) (*models.Client, error) {
	clients, err := load[models.Client](ctx, s.kv, KeyClients)
	if err != nil {
		return nil, err
	}
	for i := range clients {
		if clients[i].ComitenteNumber == code {
			return &clients[i], nil
		}
	}
	return nil, nil
}

func (s *Store) GetActionsByComitente(ctx context.Context, code string) ([]models.Action, error) {
	client, err := s.GetClientByComitente(ctx, code)
	if err != nil {
		return nil, err
	}
	if client == nil || client.Actions == nil {
		return []models.Action{}, nil
	}
	return client.Actions, nil
}

func (s *Store) CreateClient(ctx context.Context, in models.ClientInput) (models.Client, error) {
	c, err := store.NewClient(in, s.timestamp())
	if err != nil {
		return models.Client{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	clients, err := load[models.Client](ctx, s.kv, KeyClients)
	if err != nil {
		return models.Client{}, err
	}
	for _, existing := range clients {
		if existing.ComitenteNumber == c.ComitenteNumber {
			return models.Client{}, store.Conflict("client", c.ComitenteNumber)
		}
	}
	if err := save(ctx, s.kv, KeyClients, append(clients, c)); err != nil {
		return models.Client{}, err
	}
	return c, nil
}

// CreateAction appends a new action to the log of the prospect with id
// entityID, or to the client with that id when no prospect matches.
func (s *Store) CreateAction(ctx context.Context, entityID string, in models.ActionInput) (*models.Action, error) {
	action := store.NewAction(in)

	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.appendProspectAction(ctx, entityID, &action)
	if err != nil || ok {
		return actionResult(action, ok, err)
	}
	ok, err = s.appendClientAction(ctx, entityID, &action)
	return actionResult(action, ok, err)
}

// CreateClientAction appends a new action to the log of the client with id
// clientID, leaving prospects untouched.
func (s *Store) CreateClientAction(ctx context.Context, clientID string, in models.ActionInput) (*models.Action, error) {
	action := store.NewAction(in)

	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.appendClientAction(ctx, clientID, &action)
	return actionResult(action, ok, err)
}

func actionResult(action models.Action, ok bool, err error) (*models.Action, error) {
	if err != nil || !ok {
		return nil, err
	}
	return &action, nil
}

func (s *Store) appendProspectAction(ctx context.Context, id string, action *models.Action) (bool, error) {
	prospects, err := load[models.Prospect](ctx, s.kv, KeyProspects)
	if err != nil {
		return false, err
	}
	for i := range prospects {
		if prospects[i].ID != id {
			continue
		}
		action.ProspectID = id
		prospects[i].Actions = append(prospects[i].Actions, *action)
		return true, save(ctx, s.kv, KeyProspects, prospects)
	}
	return false, nil
}

func (s *Store) appendClientAction(ctx context.Context, id string, action *models.Action) (bool, error) {
	clients, err := load[models.Client](ctx, s.kv, KeyClients)
	if err != nil {
		return false, err
	}
	for i := range clients {
		if clients[i].ID != id {
			continue
		}
		action.ClientID = id
		clients[i].Actions = append(clients[i].Actions, *action)
		return true, save(ctx, s.kv, KeyClients, clients)
	}
	return false, nil
}

// UpdateAction merges in into the first logged action with id actionID,
// searching prospects before clients.
func (s *Store) UpdateAction(ctx context.Context, actionID string, in models.ActionInput) (*models.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prospects, err := load[models.Prospect](ctx, s.kv, KeyProspects)
	if err != nil {
		return nil, err
	}
	for i := range prospects {
		for j := range prospects[i].Actions {
			a := &prospects[i].Actions[j]
			if a.ID != actionID {
				continue
			}
			in.Apply(a)
			if err := save(ctx, s.kv, KeyProspects, prospects); err != nil {
				return nil, err
			}
			updated := *a
			return &updated, nil
		}
	}

	clients, err := load[models.Client](ctx, s.kv, KeyClients)
	if err != nil {
		return nil, err
	}
	for i := range clients {
		for j := range clients[i].Actions {
			a := &clients[i].Actions[j]
			if a.ID != actionID {
				continue
			}
			in.Apply(a)
			if err := save(ctx, s.kv, KeyClients, clients); err != nil {
				return nil, err
			}
			updated := *a
			return &updated, nil
		}
	}
	return nil, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	return load[models.User](ctx, s.kv, KeyUsers)
}
