package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prospectcrm/models"
)

func TestNormalizeDefaults(t *testing.T) {
	q, err := ListQuery{Page: 0, SortField: "nombreCliente"}.Normalize(ProspectFields)
	require.NoError(t, err)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, models.StatusFilterAll, q.Status)
	// a field without a direction does not sort
	assert.Empty(t, q.SortField)
	assert.Empty(t, q.SortDirection)
	assert.NotNil(t, q.Filters)
}

func TestNormalizeRejectsUnknownValues(t *testing.T) {
	cases := map[string]ListQuery{
		"status":    {Status: "all"},
		"field":     {SortField: "secret", SortDirection: models.SortAscending},
		"direction": {SortField: "nombre", SortDirection: "up"},
		"filter":    {Filters: map[string]string{"secret": "x"}},
		"bool":      {Filters: map[string]string{"activo": "true"}},
	}
	for name, q := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := q.Normalize(ClientFields)
			assert.ErrorIs(t, err, ErrInvalidQuery)
		})
	}
}

func TestNewPageLastPage(t *testing.T) {
	assert.Equal(t, 0, NewPage([]int(nil), 1, 0).Pagination.LastPage)
	assert.Equal(t, 1, NewPage([]int{1}, 1, 10).Pagination.LastPage)
	assert.Equal(t, 2, NewPage([]int{1}, 1, 11).Pagination.LastPage)
	assert.NotNil(t, NewPage([]int(nil), 1, 0).Data)
}

func TestSelectPageSortsWithoutCoercion(t *testing.T) {
	prospects := []models.Prospect{
		{ID: "a", Name: "beta", ComitenteNumber: "10"},
		{ID: "b", Name: "Alfa", ComitenteNumber: "9"},
		{ID: "c", Name: "alfa", ComitenteNumber: "100"},
	}
	q, err := ListQuery{SortField: "numComitente", SortDirection: models.SortAscending}.Normalize(ProspectFields)
	require.NoError(t, err)

	page, err := SelectPage(prospects, q, models.Prospect.IsActive)
	require.NoError(t, err)
	// strings compare byte-wise: "10" < "100" < "9"
	assert.Equal(t, []string{"a", "c", "b"}, ids(page.Data))

	q.SortField, q.SortDirection = "nombreCliente", models.SortDescending
	page, err = SelectPage(prospects, q, models.Prospect.IsActive)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "b"}, ids(page.Data))
}

func TestSelectPageTiesFollowCreation(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	prospects := []models.Prospect{
		{ID: "1", Officer: "x", CreatedAt: base.Add(time.Second)},
		{ID: "2", Officer: "y", CreatedAt: base},
		{ID: "3", Officer: "x", CreatedAt: base},
		{ID: "0", Officer: "x", CreatedAt: base},
	}
	q, err := ListQuery{SortField: "oficial", SortDirection: models.SortAscending}.Normalize(ProspectFields)
	require.NoError(t, err)

	page, err := SelectPage(prospects, q, models.Prospect.IsActive)
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "3", "1", "2"}, ids(page.Data))

	q.SortDirection = models.SortDescending
	page, err = SelectPage(prospects, q, models.Prospect.IsActive)
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "0", "3", "1"}, ids(page.Data))

	// without a sort field the listing is in creation order
	page, err = SelectPage(prospects, ListQuery{Page: 1, Status: models.StatusFilterAll}, models.Prospect.IsActive)
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "2", "3", "1"}, ids(page.Data))
}

func TestSelectPageBoolSort(t *testing.T) {
	prospects := []models.Prospect{
		{ID: "1", IsClient: true},
		{ID: "2", IsClient: false},
	}
	q, err := ListQuery{SortField: "yaEsCliente", SortDirection: models.SortAscending}.Normalize(ProspectFields)
	require.NoError(t, err)

	page, err := SelectPage(prospects, q, models.Prospect.IsActive)
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "1"}, ids(page.Data))
}

func TestLessValueKindRank(t *testing.T) {
	assert.True(t, lessValue(nil, false))
	assert.True(t, lessValue(true, 1.0))
	assert.True(t, lessValue(2.0, "1"))
	assert.False(t, lessValue("1", 2.0))
	assert.True(t, lessValue(1.0, 2.0))
}

func ids(ps []models.Prospect) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}
