// Package storetest holds the behaviour tests every store.Backing must pass.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prospectcrm/models"
	"prospectcrm/store"
	"prospectcrm/utils"
)

// Factory returns an empty backing, schema ready but without seed data,
// whose timestamps come from now.
type Factory func(t *testing.T, now func() time.Time) store.Backing

// Clock is a fake time source that moves forward a millisecond per reading.
type Clock struct {
	mu  sync.Mutex
	cur time.Time
}

func NewClock() *Clock {
	return &Clock{cur: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Millisecond)
	return c.cur
}

// Run executes the whole suite against backings built by newBacking.
func Run(t *testing.T, newBacking Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Backing)
	}{
		{"StageOrderFollowsCount", testStageOrder},
		{"StageTimestamps", testStageTimestamps},
		{"UpdateMissingStage", testUpdateMissingStage},
		{"StageActionDefaults", testStageActionDefaults},
		{"ProspectStageLifecycle", testProspectStageLifecycle},
		{"ProspectActionLifecycle", testProspectActionLifecycle},
		{"PendingProspectActions", testPendingProspectActions},
		{"EmailsNewestFirst", testEmailsNewestFirst},
		{"ProspectStatusFilter", testProspectStatusFilter},
		{"ProspectPagesConcatenate", testProspectPagesConcatenate},
		{"ProspectFilters", testProspectFilters},
		{"InvalidListQuery", testInvalidListQuery},
		{"ProspectCRUD", testProspectCRUD},
		{"DeleteMissingProspect", testDeleteMissingProspect},
		{"ClientCRUD", testClientCRUD},
		{"ClientListing", testClientListing},
		{"ActionLog", testActionLog},
		{"ClientActionSkipsProspects", testClientActionSkipsProspects},
		{"EmptyTables", testEmptyTables},
		{"ListingTiesByCreation", testListingTiesByCreation},
		{"ListingTiesByID", testListingTiesByID},
	}
	// these run with a clock that never advances
	frozen := map[string]bool{"ListingTiesByID": true}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := NewClock().Now
			if frozen[tt.name] {
				fixed := now()
				now = func() time.Time { return fixed }
			}
			s := newBacking(t, now)
			t.Cleanup(func() { _ = s.Close() })
			tt.fn(t, s)
		})
	}
}

// RunSeeded checks the data written by Initialize into an empty backing.
func RunSeeded(t *testing.T, newBacking Factory) {
	ctx := context.Background()
	clock := NewClock()
	s := newBacking(t, clock.Now)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Initialize(ctx))
	// a second run must not duplicate anything
	require.NoError(t, s.Initialize(ctx))

	stages, err := s.ListStages(ctx)
	require.NoError(t, err)
	require.Len(t, stages, 3)
	assert.Equal(t, "Contacto Inicial", stages[0].Name)
	assert.Equal(t, 3, stages[2].Order)

	actions, err := s.ListStageActions(ctx, "1")
	require.NoError(t, err)
	assert.Len(t, actions, 2)

	page, err := s.ListProspects(ctx, store.ListQuery{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Juan Pérez", page.Data[0].Name)
	require.Len(t, page.Data[0].Actions, 1)

	client, err := s.GetClientByComitente(ctx, "COM001")
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Equal(t, "Empresa ABC", client.Name)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)

	emails, err := s.ListProspectEmails(ctx, "1")
	require.NoError(t, err)
	assert.Len(t, emails, 1)
}

func testStageOrder(t *testing.T, s store.Backing) {
	ctx := context.Background()
	for _, name := range []string{"Contacto", "Evaluación"} {
		_, err := s.CreateStage(ctx, models.StageInput{Name: utils.Pointer(name)})
		require.NoError(t, err)
	}

	third, err := s.CreateStage(ctx, models.StageInput{Name: utils.Pointer("Propuesta")})
	require.NoError(t, err)
	assert.Equal(t, 3, third.Order)
	assert.True(t, third.Active)
	assert.NotEmpty(t, third.ID)

	stages, err := s.ListStages(ctx)
	require.NoError(t, err)
	require.Len(t, stages, 3)
	for i, st := range stages {
		assert.Equal(t, i+1, st.Order)
	}

	_, err = s.CreateStage(ctx, models.StageInput{})
	assert.ErrorIs(t, err, store.ErrInvalidInput)
}

func testStageTimestamps(t *testing.T, s store.Backing) {
	ctx := context.Background()
	created, err := s.CreateStage(ctx, models.StageInput{Name: utils.Pointer("Contacto")})
	require.NoError(t, err)
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))

	updated, err := s.UpdateStage(ctx, created.ID, models.StageInput{
		Name:   utils.Pointer("Primer contacto"),
		Active: utils.Pointer(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "Primer contacto", updated.Name)
	assert.False(t, updated.Active)
	assert.Equal(t, created.Order, updated.Order)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	stages, err := s.ListStages(ctx)
	require.NoError(t, err)
	require.Len(t, stages, 1)
	assert.False(t, stages[0].Active)
	assert.True(t, stages[0].CreatedAt.Equal(created.CreatedAt))
}

func testUpdateMissingStage(t *testing.T, s store.Backing) {
	ctx := context.Background()
	_, err := s.UpdateStage(ctx, "missing", models.StageInput{Name: utils.Pointer("x")})
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.CompleteProspectStage(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.CompleteProspectAction(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.ApproveProspectAction(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testStageActionDefaults(t *testing.T, s store.Backing) {
	ctx := context.Background()
	stage, err := s.CreateStage(ctx, models.StageInput{Name: utils.Pointer("Contacto")})
	require.NoError(t, err)

	action, err := s.CreateStageAction(ctx, models.StageActionInput{
		StageID: utils.Pointer(stage.ID),
		Type:    utils.Pointer("Llamada"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, action.RequiredCount)
	assert.False(t, action.Mandatory)
	assert.True(t, action.CreatedAt.Equal(action.UpdatedAt))

	_, err = s.CreateStageAction(ctx, models.StageActionInput{
		StageID:       utils.Pointer(stage.ID),
		Type:          utils.Pointer("Email"),
		Mandatory:     utils.Pointer(true),
		RequiredCount: utils.Pointer(3),
	})
	require.NoError(t, err)

	_, err = s.CreateStageAction(ctx, models.StageActionInput{
		StageID:       utils.Pointer(stage.ID),
		Type:          utils.Pointer("Reunión"),
		RequiredCount: utils.Pointer(0),
	})
	assert.ErrorIs(t, err, store.ErrInvalidInput)

	actions, err := s.ListStageActions(ctx, stage.ID)
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, "Llamada", actions[0].Type)
	assert.Equal(t, 3, actions[1].RequiredCount)
	assert.True(t, actions[1].Mandatory)

	other, err := s.ListStageActions(ctx, "other-stage")
	require.NoError(t, err)
	assert.NotNil(t, other)
	assert.Empty(t, other)
}

func testProspectStageLifecycle(t *testing.T, s store.Backing) {
	ctx := context.Background()
	stage, err := s.CreateStage(ctx, models.StageInput{Name: utils.Pointer("Contacto")})
	require.NoError(t, err)

	ps, err := s.CreateProspectStage(ctx, models.ProspectStageInput{
		ProspectID: utils.Pointer("p-1"),
		StageID:    utils.Pointer(stage.ID),
	})
	require.NoError(t, err)
	assert.True(t, ps.Active)
	assert.Nil(t, ps.CompletionDate)

	// dangling stage ids are accepted
	_, err = s.CreateProspectStage(ctx, models.ProspectStageInput{
		ProspectID: utils.Pointer("p-1"),
		StageID:    utils.Pointer("gone"),
	})
	require.NoError(t, err)

	rows, err := s.ListProspectStages(ctx, "p-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].Stage)
	assert.Equal(t, "Contacto", rows[0].Stage.Name)
	assert.Nil(t, rows[1].Stage)

	done, err := s.CompleteProspectStage(ctx, ps.ID)
	require.NoError(t, err)
	assert.False(t, done.Active)
	require.NotNil(t, done.CompletionDate)
	assert.False(t, done.UpdatedAt.Before(ps.UpdatedAt))

	empty, err := s.ListProspectStages(ctx, "p-2")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testProspectActionLifecycle(t *testing.T, s store.Backing) {
	ctx := context.Background()
	stage, err := s.CreateStage(ctx, models.StageInput{Name: utils.Pointer("Contacto")})
	require.NoError(t, err)
	template, err := s.CreateStageAction(ctx, models.StageActionInput{
		StageID: utils.Pointer(stage.ID),
		Type:    utils.Pointer("Llamada"),
	})
	require.NoError(t, err)

	pa, err := s.CreateProspectAction(ctx, models.ProspectActionInput{
		ProspectID: utils.Pointer("p-1"),
		ActionID:   utils.Pointer(template.ID),
		AssignedTo: utils.Pointer("user1"),
	})
	require.NoError(t, err)
	assert.False(t, pa.Completed)
	assert.False(t, pa.Approved)
	assert.True(t, pa.ScheduledDate.Equal(pa.CreatedAt))

	approved, err := s.ApproveProspectAction(ctx, pa.ID)
	require.NoError(t, err)
	assert.True(t, approved.Approved)
	assert.False(t, approved.Completed)

	first, err := s.CompleteProspectAction(ctx, pa.ID)
	require.NoError(t, err)
	assert.True(t, first.Completed)
	assert.True(t, first.Approved)

	second, err := s.CompleteProspectAction(ctx, pa.ID)
	require.NoError(t, err)
	assert.True(t, second.Completed)
	assert.False(t, second.UpdatedAt.Before(first.UpdatedAt))

	rows, err := s.ListProspectActions(ctx, "p-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Action)
	assert.Equal(t, "Llamada", rows[0].Action.Type)
	assert.True(t, rows[0].Completed)
}

func testPendingProspectActions(t *testing.T, s store.Backing) {
	ctx := context.Background()
	base := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	var ids []string
	for i, day := range []int{3, 1, 20} {
		pa, err := s.CreateProspectAction(ctx, models.ProspectActionInput{
			ProspectID:    utils.Pointer(fmt.Sprintf("p-%d", i)),
			ActionID:      utils.Pointer("a-1"),
			ScheduledDate: utils.Pointer(base.AddDate(0, 0, day)),
		})
		require.NoError(t, err)
		ids = append(ids, pa.ID)
	}
	_, err := s.CompleteProspectAction(ctx, ids[1])
	require.NoError(t, err)

	pending, err := s.ListPendingProspectActions(ctx, base.AddDate(0, 0, 10))
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, ids[0], pending[0].ID)

	pending, err = s.ListPendingProspectActions(ctx, base.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, ids[0], pending[0].ID)
	assert.Equal(t, ids[2], pending[1].ID)
}

func testEmailsNewestFirst(t *testing.T, s store.Backing) {
	ctx := context.Background()
	var sent []models.CRMEmail
	for _, subject := range []string{"Bienvenida", "Seguimiento", "Propuesta"} {
		e, err := s.SendEmail(ctx, models.EmailInput{
			ProspectID: utils.Pointer("p-1"),
			Subject:    utils.Pointer(subject),
			Content:    utils.Pointer("Hola"),
			SentBy:     utils.Pointer("user1"),
		})
		require.NoError(t, err)
		require.NotNil(t, e.SentAt)
		assert.True(t, e.SentAt.Equal(e.CreatedAt))
		sent = append(sent, e)
	}
	_, err := s.SendEmail(ctx, models.EmailInput{ProspectID: utils.Pointer("p-2"), Subject: utils.Pointer("Otro")})
	require.NoError(t, err)

	emails, err := s.ListProspectEmails(ctx, "p-1")
	require.NoError(t, err)
	require.Len(t, emails, 3)
	assert.Equal(t, "Propuesta", emails[0].Subject)
	assert.Equal(t, "Seguimiento", emails[1].Subject)
	assert.Equal(t, "Bienvenida", emails[2].Subject)
	for i := 1; i < len(emails); i++ {
		assert.False(t, emails[i].SentAt.After(*emails[i-1].SentAt))
	}
	assert.Equal(t, sent[0].ID, emails[2].ID)

	none, err := s.ListProspectEmails(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func seedProspects(t *testing.T, s store.Backing, n, active int) []models.Prospect {
	t.Helper()
	ctx := context.Background()
	out := make([]models.Prospect, 0, n)
	for i := 1; i <= n; i++ {
		status := "inactivo"
		if i <= active {
			status = models.ProspectStatusActive
		}
		p, err := s.CreateProspect(ctx, models.ProspectInput{
			Name:    utils.Pointer(fmt.Sprintf("Prospecto %02d", i)),
			Contact: utils.Pointer(fmt.Sprintf("contacto%02d@mail.com", i)),
			Officer: utils.Pointer(fmt.Sprintf("%d", i%3)),
			Status:  utils.Pointer(status),
		})
		require.NoError(t, err)
		out = append(out, p)
	}
	return out
}

func testProspectStatusFilter(t *testing.T, s store.Backing) {
	ctx := context.Background()
	seedProspects(t, s, 12, 7)

	page, err := s.ListProspects(ctx, store.ListQuery{Page: 1, Status: models.StatusFilterActive})
	require.NoError(t, err)
	assert.Len(t, page.Data, 7)
	assert.Equal(t, store.Pagination{CurrentPage: 1, LastPage: 1, Total: 7}, page.Pagination)
	for _, p := range page.Data {
		assert.True(t, p.IsActive())
	}

	page, err = s.ListProspects(ctx, store.ListQuery{Page: 1, Status: models.StatusFilterInactive})
	require.NoError(t, err)
	assert.Len(t, page.Data, 5)
	assert.Equal(t, int64(5), page.Pagination.Total)

	page, err = s.ListProspects(ctx, store.ListQuery{Page: 1, Status: models.StatusFilterAll})
	require.NoError(t, err)
	assert.Len(t, page.Data, 10)
	assert.Equal(t, store.Pagination{CurrentPage: 1, LastPage: 2, Total: 12}, page.Pagination)

	page, err = s.ListProspects(ctx, store.ListQuery{Page: 2})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)

	page, err = s.ListProspects(ctx, store.ListQuery{Page: 5})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Equal(t, 5, page.Pagination.CurrentPage)

	page, err = s.ListProspects(ctx, store.ListQuery{Page: -3})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Pagination.CurrentPage)
}

func testProspectPagesConcatenate(t *testing.T, s store.Backing) {
	ctx := context.Background()
	seeded := seedProspects(t, s, 23, 23)

	q := store.ListQuery{SortField: "nombreCliente", SortDirection: models.SortDescending}
	q.Page = 1
	first, err := s.ListProspects(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Pagination.LastPage)

	var names []string
	seen := make(map[string]bool)
	for page := 1; page <= first.Pagination.LastPage; page++ {
		q.Page = page
		res, err := s.ListProspects(ctx, q)
		require.NoError(t, err)
		for _, p := range res.Data {
			assert.False(t, seen[p.ID], "duplicate %s", p.ID)
			seen[p.ID] = true
			names = append(names, p.Name)
		}
	}
	require.Len(t, names, len(seeded))
	assert.Equal(t, "Prospecto 23", names[0])
	assert.Equal(t, "Prospecto 01", names[len(names)-1])
	for i := 1; i < len(names); i++ {
		assert.GreaterOrEqual(t, names[i-1], names[i])
	}
}

func testProspectFilters(t *testing.T, s store.Backing) {
	ctx := context.Background()
	seedProspects(t, s, 12, 7)

	page, err := s.ListProspects(ctx, store.ListQuery{
		Filters: map[string]string{"nombreCliente": "PROSPECTO 1"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Pagination.Total)
	for _, p := range page.Data {
		assert.True(t, strings.HasPrefix(p.Name, "Prospecto 1"))
	}

	page, err = s.ListProspects(ctx, store.ListQuery{
		Status:        models.StatusFilterActive,
		SortField:     "nombreCliente",
		SortDirection: models.SortAscending,
		Filters:       map[string]string{"oficial": "1", "contacto": "@MAIL"},
	})
	require.NoError(t, err)
	// active prospects 1..7 whose officer is i%3 == 1
	require.Len(t, page.Data, 3)
	assert.Equal(t, "Prospecto 01", page.Data[0].Name)
	assert.Equal(t, "Prospecto 04", page.Data[1].Name)
	assert.Equal(t, "Prospecto 07", page.Data[2].Name)

	page, err = s.ListProspects(ctx, store.ListQuery{
		Filters: map[string]string{"nombreCliente": "50%"},
	})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Equal(t, 0, page.Pagination.LastPage)

	// an empty filter value is ignored
	page, err = s.ListProspects(ctx, store.ListQuery{
		Filters: map[string]string{"nombreCliente": ""},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12), page.Pagination.Total)

	_, err = s.CreateProspect(ctx, models.ProspectInput{Name: utils.Pointer("ÁLVAREZ SA")})
	require.NoError(t, err)
	page, err = s.ListProspects(ctx, store.ListQuery{
		Filters: map[string]string{"nombreCliente": "álvarez"},
	})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "ÁLVAREZ SA", page.Data[0].Name)
}

func testInvalidListQuery(t *testing.T, s store.Backing) {
	ctx := context.Background()
	queries := []store.ListQuery{
		{Status: "algunos"},
		{SortField: "password", SortDirection: models.SortAscending},
		{SortField: "nombreCliente", SortDirection: "sideways"},
		{Filters: map[string]string{"unknown": "x"}},
		{Filters: map[string]string{"yaEsCliente": "true"}},
	}
	for _, q := range queries {
		_, err := s.ListProspects(ctx, q)
		assert.ErrorIs(t, err, store.ErrInvalidQuery, "%+v", q)
	}

	_, err := s.ListClients(ctx, store.ListQuery{SortField: "nombreCliente", SortDirection: models.SortAscending})
	assert.ErrorIs(t, err, store.ErrInvalidQuery)
}

func testProspectCRUD(t *testing.T, s store.Backing) {
	ctx := context.Background()
	created, err := s.CreateProspect(ctx, models.ProspectInput{
		Name:    utils.Pointer("Juan Pérez"),
		Contact: utils.Pointer("juan@email.com"),
		Status:  utils.Pointer(models.ProspectStatusActive),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.NotNil(t, created.Actions)

	got, err := s.GetProspectByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "juan@email.com", got.Contact)

	updated, err := s.UpdateProspect(ctx, created.ID, models.ProspectInput{
		Notes:  utils.Pointer("Interesado en bonos"),
		Status: utils.Pointer("inactivo"),
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Juan Pérez", updated.Name)
	assert.Equal(t, "Interesado en bonos", updated.Notes)
	assert.False(t, updated.IsActive())

	missing, err := s.UpdateProspect(ctx, "missing", models.ProspectInput{Notes: utils.Pointer("x")})
	require.NoError(t, err)
	assert.Nil(t, missing)

	notFound, err := s.GetProspectByID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, notFound)

	ok, err := s.DeleteProspect(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = s.GetProspectByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func testDeleteMissingProspect(t *testing.T, s store.Backing) {
	ctx := context.Background()
	seedProspects(t, s, 4, 2)

	before, err := s.ListProspects(ctx, store.ListQuery{})
	require.NoError(t, err)

	ok, err := s.DeleteProspect(ctx, "missing")
	require.NoError(t, err)
	assert.True(t, ok)

	after, err := s.ListProspects(ctx, store.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func testClientCRUD(t *testing.T, s store.Backing) {
	ctx := context.Background()
	created, err := s.CreateClient(ctx, models.ClientInput{
		ComitenteNumber: utils.Pointer("COM100"),
		Name:            utils.Pointer("Empresa XYZ"),
		Email:           utils.Pointer("contacto@xyz.com"),
	})
	require.NoError(t, err)
	assert.True(t, created.Active)

	_, err = s.CreateClient(ctx, models.ClientInput{
		ComitenteNumber: utils.Pointer("COM100"),
		Name:            utils.Pointer("Duplicada"),
	})
	assert.ErrorIs(t, err, store.ErrConflict)

	_, err = s.CreateClient(ctx, models.ClientInput{Name: utils.Pointer("Sin comitente")})
	assert.ErrorIs(t, err, store.ErrInvalidInput)

	got, err := s.GetClientByComitente(ctx, "COM100")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)

	missing, err := s.GetClientByComitente(ctx, "COM999")
	require.NoError(t, err)
	assert.Nil(t, missing)

	actions, err := s.GetActionsByComitente(ctx, "COM999")
	require.NoError(t, err)
	assert.NotNil(t, actions)
	assert.Empty(t, actions)
}

func testClientListing(t *testing.T, s store.Backing) {
	ctx := context.Background()
	for i := 1; i <= 13; i++ {
		_, err := s.CreateClient(ctx, models.ClientInput{
			ComitenteNumber: utils.Pointer(fmt.Sprintf("COM%03d", i)),
			Name:            utils.Pointer(fmt.Sprintf("Cliente %02d", i)),
			Active:          utils.Pointer(i%2 == 1),
		})
		require.NoError(t, err)
	}

	page, err := s.ListClients(ctx, store.ListQuery{Page: 1, Status: models.StatusFilterActive})
	require.NoError(t, err)
	assert.Equal(t, int64(7), page.Pagination.Total)

	page, err = s.ListClients(ctx, store.ListQuery{Page: 1, Status: models.StatusFilterInactive})
	require.NoError(t, err)
	assert.Equal(t, int64(6), page.Pagination.Total)
	for _, c := range page.Data {
		assert.False(t, c.Active)
	}

	page, err = s.ListClients(ctx, store.ListQuery{
		Page:          2,
		SortField:     "numcomitente",
		SortDirection: models.SortDescending,
	})
	require.NoError(t, err)
	require.Len(t, page.Data, 3)
	assert.Equal(t, "COM003", page.Data[0].ComitenteNumber)
	assert.Equal(t, "COM001", page.Data[2].ComitenteNumber)
	assert.Equal(t, store.Pagination{CurrentPage: 2, LastPage: 2, Total: 13}, page.Pagination)

	page, err = s.ListClients(ctx, store.ListQuery{Filters: map[string]string{"nombre": "cliente 1"}})
	require.NoError(t, err)
	assert.Equal(t, int64(4), page.Pagination.Total)
}

func testActionLog(t *testing.T, s store.Backing) {
	ctx := context.Background()
	prospect, err := s.CreateProspect(ctx, models.ProspectInput{Name: utils.Pointer("Juan Pérez")})
	require.NoError(t, err)
	client, err := s.CreateClient(ctx, models.ClientInput{
		ComitenteNumber: utils.Pointer("COM200"),
		Name:            utils.Pointer("Empresa ABC"),
	})
	require.NoError(t, err)

	pAction, err := s.CreateAction(ctx, prospect.ID, models.ActionInput{
		ActionDate:  utils.Pointer("2024-03-01"),
		Description: utils.Pointer("Llamada inicial"),
		Status:      utils.Pointer("abierto"),
	})
	require.NoError(t, err)
	require.NotNil(t, pAction)
	assert.Equal(t, prospect.ID, pAction.ProspectID)

	cAction, err := s.CreateAction(ctx, client.ID, models.ActionInput{
		Description: utils.Pointer("Reunión anual"),
		Status:      utils.Pointer("abierto"),
	})
	require.NoError(t, err)
	require.NotNil(t, cAction)
	assert.Equal(t, client.ID, cAction.ClientID)

	none, err := s.CreateAction(ctx, "missing", models.ActionInput{Description: utils.Pointer("x")})
	require.NoError(t, err)
	assert.Nil(t, none)

	updated, err := s.UpdateAction(ctx, cAction.ID, models.ActionInput{Status: utils.Pointer("cerrado")})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "cerrado", updated.Status)
	assert.Equal(t, "Reunión anual", updated.Description)

	updated, err = s.UpdateAction(ctx, pAction.ID, models.ActionInput{NextContact: utils.Pointer("2024-04-01")})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "2024-04-01", updated.NextContact)

	missing, err := s.UpdateAction(ctx, "missing", models.ActionInput{Status: utils.Pointer("cerrado")})
	require.NoError(t, err)
	assert.Nil(t, missing)

	actions, err := s.GetActionsByComitente(ctx, "COM200")
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "cerrado", actions[0].Status)

	got, err := s.GetProspectByID(ctx, prospect.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Actions, 1)
	assert.Equal(t, "2024-04-01", got.Actions[0].NextContact)
}

func testClientActionSkipsProspects(t *testing.T, s store.Backing) {
	ctx := context.Background()
	// the default data has a prospect and a client that both use id "1"
	require.NoError(t, s.Initialize(ctx))

	action, err := s.CreateClientAction(ctx, "1", models.ActionInput{Description: utils.Pointer("Revisión de cartera")})
	require.NoError(t, err)
	require.NotNil(t, action)
	assert.Equal(t, "1", action.ClientID)
	assert.Empty(t, action.ProspectID)

	actions, err := s.GetActionsByComitente(ctx, "COM001")
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, action.ID, actions[1].ID)

	prospect, err := s.GetProspectByID(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, prospect)
	assert.Len(t, prospect.Actions, 1)

	p, err := s.CreateProspect(ctx, models.ProspectInput{Name: utils.Pointer("Solo prospecto")})
	require.NoError(t, err)
	none, err := s.CreateClientAction(ctx, p.ID, models.ActionInput{Description: utils.Pointer("x")})
	require.NoError(t, err)
	assert.Nil(t, none)
}

func testEmptyTables(t *testing.T, s store.Backing) {
	ctx := context.Background()

	stages, err := s.ListStages(ctx)
	require.NoError(t, err)
	assert.NotNil(t, stages)
	assert.Empty(t, stages)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)

	page, err := s.ListProspects(ctx, store.ListQuery{})
	require.NoError(t, err)
	assert.NotNil(t, page.Data)
	assert.Equal(t, store.Pagination{CurrentPage: 1, LastPage: 0, Total: 0}, page.Pagination)

	clients, err := s.ListClients(ctx, store.ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, clients.Data)
}

func createOfficerProspects(t *testing.T, s store.Backing, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		p, err := s.CreateProspect(context.Background(), models.ProspectInput{
			Name:    utils.Pointer(fmt.Sprintf("Empate %d", i)),
			Officer: utils.Pointer("7"),
		})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}
	return ids
}

func prospectIDs(page store.Page[models.Prospect]) []string {
	ids := make([]string, 0, len(page.Data))
	for _, p := range page.Data {
		ids = append(ids, p.ID)
	}
	return ids
}

func testListingTiesByCreation(t *testing.T, s store.Backing) {
	ctx := context.Background()
	want := createOfficerProspects(t, s, 4)

	for _, dir := range []string{models.SortAscending, models.SortDescending} {
		page, err := s.ListProspects(ctx, store.ListQuery{SortField: "oficial", SortDirection: dir})
		require.NoError(t, err)
		assert.Equal(t, want, prospectIDs(page), dir)
	}

	page, err := s.ListProspects(ctx, store.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, want, prospectIDs(page))
}

func testListingTiesByID(t *testing.T, s store.Backing) {
	ctx := context.Background()
	want := createOfficerProspects(t, s, 4)
	sort.Strings(want)

	page, err := s.ListProspects(ctx, store.ListQuery{SortField: "oficial", SortDirection: models.SortDescending})
	require.NoError(t, err)
	assert.Equal(t, want, prospectIDs(page))
	assert.True(t, page.Data[0].CreatedAt.Equal(page.Data[3].CreatedAt))
}
