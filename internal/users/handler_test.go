package users

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/elskow/reportdesk/internal/auth"
	"github.com/elskow/reportdesk/internal/syncbus"
)

type fixture struct {
	router *gin.Engine
	store  *auth.MemoryStore
	events *[]syncbus.Event
}

func newFixture(t *testing.T) fixture {
	gin.SetMode(gin.TestMode)

	log, err := zap.NewDevelopment()
	require.NoError(t, err)

	store := auth.NewMemoryStore()
	bus := syncbus.NewLocalBus()
	events := &[]syncbus.Event{}
	bus.Subscribe(func(e syncbus.Event) { *events = append(*events, e) })

	handler := NewHandler(store, bus, log)
	router := gin.New()
	router.GET("/api/users", handler.List)
	router.POST("/api/users", handler.Create)
	router.PUT("/api/users/:id", handler.Rename)
	router.DELETE("/api/users/:id", handler.Delete)

	return fixture{router: router, store: store, events: events}
}

func (f fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Create(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/users", `{"name":"  alice  "}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created auth.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "alice", created.Name)

	require.Len(t, *f.events, 1)
	assert.Equal(t, syncbus.Event{
		Kind: syncbus.UserCreated,
		User: syncbus.UserRef{ID: created.ID, Name: "alice"},
	}, (*f.events)[0])
}

func TestHandler_CreateValidation(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "empty name", body: `{"name":""}`, wantStatus: http.StatusBadRequest},
		{name: "whitespace name", body: `{"name":"   "}`, wantStatus: http.StatusBadRequest},
		{name: "malformed body", body: `{`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			rec := f.do(t, http.MethodPost, "/api/users", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Empty(t, *f.events)
		})
	}
}

func TestHandler_CreateDuplicate(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.Create("alice")
	require.NoError(t, err)

	rec := f.do(t, http.MethodPost, "/api/users", `{"name":"alice"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, *f.events)
}

func TestHandler_List(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.Create("carol")
	require.NoError(t, err)
	_, err = f.store.Create("alice")
	require.NoError(t, err)

	rec := f.do(t, http.MethodGet, "/api/users", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var users []auth.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Name)
	assert.Equal(t, "carol", users[1].Name)
}

func TestHandler_Rename(t *testing.T) {
	f := newFixture(t)
	user, err := f.store.Create("alice")
	require.NoError(t, err)
	_, err = f.store.Create("bob")
	require.NoError(t, err)

	rec := f.do(t, http.MethodPut, "/api/users/1", `{"name":"alicia"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, *f.events, 1)
	assert.Equal(t, syncbus.Event{
		Kind: syncbus.UserUpdated,
		User: syncbus.UserRef{ID: user.ID, Name: "alicia"},
	}, (*f.events)[0])

	// Collision with another user's name.
	rec = f.do(t, http.MethodPut, "/api/users/1", `{"name":"bob"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Unknown user.
	rec = f.do(t, http.MethodPut, "/api/users/99", `{"name":"zed"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Bad id.
	rec = f.do(t, http.MethodPut, "/api/users/abc", `{"name":"zed"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Len(t, *f.events, 1)
}

func TestHandler_Delete(t *testing.T) {
	f := newFixture(t)
	user, err := f.store.Create("alice")
	require.NoError(t, err)

	rec := f.do(t, http.MethodDelete, "/api/users/1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, *f.events, 1)
	assert.Equal(t, syncbus.Event{
		Kind: syncbus.UserDeleted,
		User: syncbus.UserRef{ID: user.ID, Name: "alice"},
	}, (*f.events)[0])

	_, err = f.store.FindByID(user.ID)
	assert.ErrorIs(t, err, auth.ErrUserNotFound)

	// Deleting twice is a 404, not a second event.
	rec = f.do(t, http.MethodDelete, "/api/users/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Len(t, *f.events, 1)
}
