package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prospectcrm/store/kvstore"
	"prospectcrm/utils"
)

type fakeMailer struct {
	sent []utils.EmailData
	err  error
}

func (m *fakeMailer) Send(data utils.EmailData) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, data)
	return nil
}

func newTestApp(t *testing.T, deps Dependencies) *fiber.App {
	t.Helper()
	s := kvstore.New(kvstore.NewMemoryKV())
	require.NoError(t, s.Initialize(context.Background()))

	deps.Store = s
	deps.Backend = "kv"
	if deps.APIBaseURL == "" {
		deps.APIBaseURL = "http://backend:8000/api"
	}

	app := fiber.New()
	SetupRoutes(app, deps)
	return app
}

type response struct {
	Success    bool                   `json:"success"`
	Error      string                 `json:"error"`
	Data       json.RawMessage        `json:"data"`
	Pagination map[string]interface{} `json:"pagination"`
}

func call(t *testing.T, app *fiber.App, method, path string, body interface{}, headers ...string) (int, response) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out response
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func hasAction(t *testing.T, raw json.RawMessage, id string) bool {
	t.Helper()
	if len(raw) == 0 || string(raw) == "null" {
		return false
	}
	for _, a := range decode[[]map[string]interface{}](t, raw) {
		if a["id"] == id {
			return true
		}
	}
	return false
}

func TestHealthAndConfig(t *testing.T) {
	app := newTestApp(t, Dependencies{DatascopeURL: "https://datascope.example.com"})

	status, _ := call(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, status)

	status, res := call(t, app, http.MethodGet, "/config", nil)
	require.Equal(t, http.StatusOK, status)
	cfg := decode[map[string]string](t, res.Data)
	assert.Equal(t, "http://backend:8000/api", cfg["API_BASE_URL"])
	assert.Equal(t, "https://datascope.example.com", cfg["DATASCOPE_URL"])

	status, res = call(t, app, http.MethodGet, "/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, res.Success)
}

func TestStageRoutes(t *testing.T) {
	app := newTestApp(t, Dependencies{})

	status, res := call(t, app, http.MethodGet, "/api/v1/stages", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]map[string]interface{}](t, res.Data), 3)

	status, res = call(t, app, http.MethodPost, "/api/v1/stages", map[string]interface{}{"name": "Cierre"})
	require.Equal(t, http.StatusCreated, status)
	stage := decode[map[string]interface{}](t, res.Data)
	assert.Equal(t, float64(4), stage["order"])
	assert.Equal(t, true, stage["active"])

	status, _ = call(t, app, http.MethodPost, "/api/v1/stages", map[string]interface{}{"description": "sin nombre"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, res = call(t, app, http.MethodPut, "/api/v1/stages/"+stage["id"].(string), map[string]interface{}{"active": false})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, decode[map[string]interface{}](t, res.Data)["active"])

	status, _ = call(t, app, http.MethodPut, "/api/v1/stages/missing", map[string]interface{}{"name": "x"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = call(t, app, http.MethodPost, "/api/v1/stage-actions", map[string]interface{}{
		"stage_id":       "1",
		"type":           "Reunión",
		"required_count": 0,
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, res = call(t, app, http.MethodGet, "/api/v1/stages/1/actions", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]map[string]interface{}](t, res.Data), 2)
}

func TestProspectPipelineRoutes(t *testing.T) {
	app := newTestApp(t, Dependencies{})

	status, res := call(t, app, http.MethodGet, "/api/v1/prospects/1/stages", nil)
	require.Equal(t, http.StatusOK, status)
	stages := decode[[]map[string]interface{}](t, res.Data)
	require.Len(t, stages, 1)
	assert.NotNil(t, stages[0]["stage"])

	status, _ = call(t, app, http.MethodPost, "/api/v1/prospect-stages/missing/complete", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, res = call(t, app, http.MethodPost, "/api/v1/prospect-actions/1/approve", nil)
	require.Equal(t, http.StatusOK, status)
	action := decode[map[string]interface{}](t, res.Data)
	assert.Equal(t, true, action["approved"])
	assert.Equal(t, false, action["completed"])

	status, res = call(t, app, http.MethodPost, "/api/v1/prospect-actions/1/complete", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, decode[map[string]interface{}](t, res.Data)["completed"])

	status, res = call(t, app, http.MethodGet, "/api/v1/prospects/1/pipeline-actions", nil)
	require.Equal(t, http.StatusOK, status)
	actions := decode[[]map[string]interface{}](t, res.Data)
	require.Len(t, actions, 1)
	assert.NotNil(t, actions[0]["action"])

	status, _ = call(t, app, http.MethodPost, "/api/v1/prospect-actions", map[string]interface{}{
		"prospect_id":    "1",
		"action_id":      "2",
		"scheduled_date": time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	})
	assert.Equal(t, http.StatusCreated, status)
}

func TestProspectRoutes(t *testing.T) {
	app := newTestApp(t, Dependencies{})

	status, res := call(t, app, http.MethodGet, "/api/v1/prospects?status=activos&nombreCliente=JUAN", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]map[string]interface{}](t, res.Data), 1)
	assert.Equal(t, float64(1), res.Pagination["total"])
	assert.Equal(t, float64(1), res.Pagination["lastPage"])

	status, res = call(t, app, http.MethodGet, "/api/v1/prospects?filter[nombreCliente]=nadie", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[[]map[string]interface{}](t, res.Data))
	assert.Equal(t, float64(0), res.Pagination["lastPage"])

	status, _ = call(t, app, http.MethodGet, "/api/v1/prospects?status=algunos", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = call(t, app, http.MethodGet, "/api/v1/prospects?sortField=clave&sortDirection=ascending", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, res = call(t, app, http.MethodPost, "/api/v1/prospects", map[string]interface{}{
		"nombreCliente": "Ana Gómez",
		"contacto":      "ana@email.com",
		"activo":        "activo",
	})
	require.Equal(t, http.StatusCreated, status)
	id := decode[map[string]interface{}](t, res.Data)["id"].(string)

	status, res = call(t, app, http.MethodGet, "/api/v1/prospects?sortField=nombreCliente&sortDirection=descending", nil)
	require.Equal(t, http.StatusOK, status)
	listed := decode[[]map[string]interface{}](t, res.Data)
	require.Len(t, listed, 2)
	assert.Equal(t, "Juan Pérez", listed[0]["nombreCliente"])
	assert.Equal(t, "Ana Gómez", listed[1]["nombreCliente"])

	// sort parameters go by their full names; anything else is a filter
	status, _ = call(t, app, http.MethodGet, "/api/v1/prospects?sort=nombreCliente&direction=descending", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, res = call(t, app, http.MethodPut, "/api/v1/prospects/"+id, map[string]interface{}{"notas": "Llamar el lunes"})
	require.Equal(t, http.StatusOK, status)
	updated := decode[map[string]interface{}](t, res.Data)
	assert.Equal(t, "Llamar el lunes", updated["notas"])
	assert.Equal(t, "Ana Gómez", updated["nombreCliente"])

	status, _ = call(t, app, http.MethodGet, "/api/v1/prospects/missing", nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = call(t, app, http.MethodPut, "/api/v1/prospects/missing", map[string]interface{}{"notas": "x"})
	assert.Equal(t, http.StatusNotFound, status)

	status, res = call(t, app, http.MethodDelete, "/api/v1/prospects/missing", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, res.Success)

	status, _ = call(t, app, http.MethodDelete, "/api/v1/prospects/"+id, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = call(t, app, http.MethodGet, "/api/v1/prospects/"+id, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestClientAndActionRoutes(t *testing.T) {
	app := newTestApp(t, Dependencies{})

	status, _ := call(t, app, http.MethodPost, "/api/v1/clients", map[string]interface{}{
		"numcomitente": "COM001",
		"nombre":       "Duplicada",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = call(t, app, http.MethodPost, "/api/v1/clients", map[string]interface{}{"nombre": "Sin número"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, res := call(t, app, http.MethodGet, "/api/v1/clients/comitente/COM001", nil)
	require.Equal(t, http.StatusOK, status)
	client := decode[map[string]interface{}](t, res.Data)

	status, _ = call(t, app, http.MethodGet, "/api/v1/clients/comitente/COM999", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, res = call(t, app, http.MethodGet, "/api/v1/clients/comitente/COM999/actions", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[[]map[string]interface{}](t, res.Data))

	status, res = call(t, app, http.MethodPost, "/api/v1/clients/"+client["id"].(string)+"/actions", map[string]interface{}{
		"description": "Revisión de cartera",
		"status":      "abierto",
	})
	require.Equal(t, http.StatusCreated, status)
	action := decode[map[string]interface{}](t, res.Data)
	assert.Equal(t, client["id"], action["client_id"])
	assert.Nil(t, action["prospect_id"])

	status, res = call(t, app, http.MethodGet, "/api/v1/clients/comitente/COM001/actions", nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, hasAction(t, res.Data, action["id"].(string)))

	// the seed prospect shares the client's id
	status, res = call(t, app, http.MethodGet, "/api/v1/prospects/"+client["id"].(string), nil)
	require.Equal(t, http.StatusOK, status)
	prospect := decode[map[string]json.RawMessage](t, res.Data)
	assert.False(t, hasAction(t, prospect["actions"], action["id"].(string)))

	status, _ = call(t, app, http.MethodPost, "/api/v1/clients/missing/actions", map[string]interface{}{"description": "x"})
	assert.Equal(t, http.StatusNotFound, status)

	status, res = call(t, app, http.MethodPut, "/api/v1/actions/"+action["id"].(string), map[string]interface{}{"status": "cerrado"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "cerrado", decode[map[string]interface{}](t, res.Data)["status"])

	status, _ = call(t, app, http.MethodPut, "/api/v1/actions/missing", map[string]interface{}{"status": "cerrado"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = call(t, app, http.MethodPost, "/api/v1/prospects/missing/actions", map[string]interface{}{"description": "x"})
	assert.Equal(t, http.StatusNotFound, status)

	status, res = call(t, app, http.MethodGet, "/api/v1/clients?status=activos&sortField=nombre&sortDirection=descending", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), res.Pagination["total"])

	status, res = call(t, app, http.MethodGet, "/api/v1/users", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]map[string]interface{}](t, res.Data), 3)
}

func TestEmailRoutes(t *testing.T) {
	mailer := &fakeMailer{}
	app := newTestApp(t, Dependencies{Mailer: mailer})

	body := map[string]interface{}{
		"prospect_id": "1",
		"subject":     "Propuesta",
		"content":     "Adjuntamos la propuesta",
		"sent_by":     "user1",
	}
	status, res := call(t, app, http.MethodPost, "/api/v1/emails", body)
	require.Equal(t, http.StatusCreated, status)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"juan@email.com"}, mailer.sent[0].To)
	assert.NotNil(t, decode[map[string]interface{}](t, res.Data)["sent_at"])

	status, res = call(t, app, http.MethodGet, "/api/v1/prospects/1/emails", nil)
	require.Equal(t, http.StatusOK, status)
	emails := decode[[]map[string]interface{}](t, res.Data)
	require.Len(t, emails, 2)
	assert.Equal(t, "Propuesta", emails[0]["subject"])

	status, _ = call(t, app, http.MethodPost, "/api/v1/emails", map[string]interface{}{"prospect_id": "1"})
	assert.Equal(t, http.StatusBadRequest, status)

	body["prospect_id"] = "missing"
	status, _ = call(t, app, http.MethodPost, "/api/v1/emails", body)
	assert.Equal(t, http.StatusNotFound, status)

	mailer.err = errors.New("relay down")
	body["prospect_id"] = "1"
	status, _ = call(t, app, http.MethodPost, "/api/v1/emails", body)
	assert.Equal(t, http.StatusBadGateway, status)

	status, res = call(t, app, http.MethodGet, "/api/v1/prospects/1/emails", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]map[string]interface{}](t, res.Data), 2)
}

func TestEmailWithoutMailerOnlyRecords(t *testing.T) {
	app := newTestApp(t, Dependencies{})

	status, _ := call(t, app, http.MethodPost, "/api/v1/emails", map[string]interface{}{
		"prospect_id": "any",
		"subject":     "Nota",
		"sent_by":     "user1",
	})
	assert.Equal(t, http.StatusCreated, status)
}

func TestProtectedAPI(t *testing.T) {
	app := newTestApp(t, Dependencies{JWTSecret: "secret"})

	status, _ := call(t, app, http.MethodGet, "/api/v1/stages", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = call(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, status)

	token, err := utils.GenerateJWTToken("1", "secret", time.Minute)
	require.NoError(t, err)
	status, _ = call(t, app, http.MethodGet, "/api/v1/stages", nil, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, status)
}

func TestRateLimitedAPI(t *testing.T) {
	app := newTestApp(t, Dependencies{RateLimit: 1})

	status, _ := call(t, app, http.MethodGet, "/api/v1/users", nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = call(t, app, http.MethodGet, "/api/v1/users", nil)
	assert.Equal(t, http.StatusTooManyRequests, status)
}
