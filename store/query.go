package store

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"prospectcrm/models"
)

// PageSize is the fixed number of records per listing page.
const PageSize = 10

// ListQuery selects one page of prospects or clients.
type ListQuery struct {
	Page          int               `query:"page"`
	Status        string            `query:"status"`
	SortField     string            `query:"sortField"`
	SortDirection string            `query:"sortDirection"`
	Filters       map[string]string `query:"-"`
}

type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	LastPage    int   `json:"lastPage"`
	Total       int64 `json:"total"`
}

type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type FieldKind int

const (
	KindString FieldKind = iota
	KindBool
)

// Field maps a JSON key accepted in sort / filter parameters to its column.
type Field struct {
	Column string
	Kind   FieldKind
}

var ProspectFields = map[string]Field{
	"id":                {Column: "id"},
	"nombreCliente":     {Column: "name"},
	"contacto":          {Column: "contact"},
	"cargo_contacto":    {Column: "contact_role"},
	"oficial":           {Column: "officer"},
	"referente":         {Column: "referrer"},
	"ultimoContacto":    {Column: "last_contact"},
	"fechaVencimiento":  {Column: "due_date"},
	"tipoAccion":        {Column: "action_type"},
	"numComitente":      {Column: "comitente_number"},
	"yaEsCliente":       {Column: "is_client", Kind: KindBool},
	"tipoClienteAccion": {Column: "client_action_type"},
	"activo":            {Column: "status"},
	"notas":             {Column: "notes"},
	"sector_industria":  {Column: "sector"},
}

var ClientFields = map[string]Field{
	"id":           {Column: "id"},
	"numcomitente": {Column: "comitente_number"},
	"nombre":       {Column: "name"},
	"sector":       {Column: "sector"},
	"mail":         {Column: "email"},
	"cuit":         {Column: "tax_id"},
	"oficial":      {Column: "officer"},
	"referente":    {Column: "referrer"},
	"activo":       {Column: "active", Kind: KindBool},
}

// Normalize checks q against the accepted fields and fills in defaults.
// A sort is only kept when both the field and the direction are given.
func (q ListQuery) Normalize(fields map[string]Field) (ListQuery, error) {
	if q.Page < 1 {
		q.Page = 1
	}

	switch q.Status {
	case "":
		q.Status = models.StatusFilterAll
	case models.StatusFilterAll, models.StatusFilterActive, models.StatusFilterInactive:
	default:
		return q, invalidQuery("unknown status filter %q", q.Status)
	}

	if q.SortField == "" || q.SortDirection == "" {
		q.SortField, q.SortDirection = "", ""
	} else {
		if _, ok := fields[q.SortField]; !ok {
			return q, invalidQuery("unknown sort field %q", q.SortField)
		}
		if q.SortDirection != models.SortAscending && q.SortDirection != models.SortDescending {
			return q, invalidQuery("unknown sort direction %q", q.SortDirection)
		}
	}

	filters := make(map[string]string, len(q.Filters))
	for key, value := range q.Filters {
		if value == "" {
			continue
		}
		f, ok := fields[key]
		if !ok || f.Kind != KindString {
			return q, invalidQuery("field %q cannot be filtered", key)
		}
		filters[key] = value
	}
	q.Filters = filters
	return q, nil
}

// Offset is the index of the first record of the requested page.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * PageSize
}

// NewPage wraps one page of data with its pagination counters.
func NewPage[T any](data []T, page int, total int64) Page[T] {
	if data == nil {
		data = []T{}
	}
	return Page[T]{
		Data: data,
		Pagination: Pagination{
			CurrentPage: page,
			LastPage:    int((total + PageSize - 1) / PageSize),
			Total:       total,
		},
	}
}

type row[T any] struct {
	item   T
	values map[string]interface{}
}

// Ordered records break listing ties by creation time, then id.
type Ordered interface {
	OrderKey() (time.Time, string)
}

// SelectPage filters, sorts and paginates an in-memory table. q must have
// been normalized; active reports whether a record passes the "activos" filter.
// Records comparing equal on the sort field fall back to their OrderKey.
func SelectPage[T Ordered](items []T, q ListQuery, active func(T) bool) (Page[T], error) {
	rows := make([]row[T], 0, len(items))
	for _, item := range items {
		switch q.Status {
		case models.StatusFilterActive:
			if !active(item) {
				continue
			}
		case models.StatusFilterInactive:
			if active(item) {
				continue
			}
		}

		values, err := fieldValues(item)
		if err != nil {
			return Page[T]{}, err
		}
		if !matchFilters(values, q.Filters) {
			continue
		}
		rows = append(rows, row[T]{item: item, values: values})
	}

	desc := q.SortDirection == models.SortDescending
	sort.SliceStable(rows, func(i, j int) bool {
		if q.SortField != "" {
			a, b := rows[i].values[q.SortField], rows[j].values[q.SortField]
			if desc {
				a, b = b, a
			}
			if lessValue(a, b) {
				return true
			}
			if lessValue(b, a) {
				return false
			}
		}
		return lessOrderKey(rows[i].item, rows[j].item)
	})

	total := len(rows)
	start := q.Offset()
	if start > total {
		start = total
	}
	end := start + PageSize
	if end > total {
		end = total
	}

	data := make([]T, 0, end-start)
	for _, r := range rows[start:end] {
		data = append(data, r.item)
	}
	return NewPage(data, q.Page, int64(total)), nil
}

func lessOrderKey[T Ordered](a, b T) bool {
	at, aid := a.OrderKey()
	bt, bid := b.OrderKey()
	if !at.Equal(bt) {
		return at.Before(bt)
	}
	return aid < bid
}

func fieldValues(v interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	values := make(map[string]interface{})
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, err
	}
	return values, nil
}

func matchFilters(values map[string]interface{}, filters map[string]string) bool {
	for key, want := range filters {
		got, _ := values[key].(string)
		if !strings.Contains(strings.ToLower(got), strings.ToLower(want)) {
			return false
		}
	}
	return true
}

// lessValue orders two decoded JSON values without coercion. Values of
// different kinds order nil < bool < number < string.
func lessValue(a, b interface{}) bool {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return av < bv
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return av < bv
		}
	case bool:
		if bv, ok := b.(bool); ok {
			return !av && bv
		}
	}
	return kindRank(a) < kindRank(b)
}

func kindRank(v interface{}) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case float64:
		return 2
	case string:
		return 3
	default:
		return 4
	}
}
