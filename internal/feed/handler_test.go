package feed

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/elskow/reportdesk/internal/auth"
	"github.com/elskow/reportdesk/internal/config"
)

// memoryRepository is a slice-backed Repository for handler tests.
type memoryRepository struct {
	reports   []Report
	notes     []Note
	documents []Document

	lastLimit  int
	lastOffset int
}

func (m *memoryRepository) page(total, limit, offset int) (int, int) {
	m.lastLimit, m.lastOffset = limit, offset
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return offset, end
}

func (m *memoryRepository) ListReports(limit, offset int) ([]Report, error) {
	from, to := m.page(len(m.reports), limit, offset)
	return m.reports[from:to], nil
}

func (m *memoryRepository) CreateReport(userID uint, message string) (*Report, error) {
	report := Report{ID: uint(len(m.reports) + 1), UserID: userID, Message: message, CreatedAt: time.Now()}
	m.reports = append(m.reports, report)
	return &report, nil
}

func (m *memoryRepository) ListNotes(limit, offset int) ([]Note, error) {
	from, to := m.page(len(m.notes), limit, offset)
	return m.notes[from:to], nil
}

func (m *memoryRepository) CreateNote(userID uint, note string) (*Note, error) {
	n := Note{ID: uint(len(m.notes) + 1), UserID: userID, Note: note, CreatedAt: time.Now()}
	m.notes = append(m.notes, n)
	return &n, nil
}

func (m *memoryRepository) ListDocuments(limit, offset int) ([]Document, error) {
	from, to := m.page(len(m.documents), limit, offset)
	return m.documents[from:to], nil
}

func (m *memoryRepository) CreateDocument(detail string) (*Document, error) {
	document := Document{ID: uint(len(m.documents) + 1), Detail: detail, CreatedAt: time.Now()}
	m.documents = append(m.documents, document)
	return &document, nil
}

func newTestHandler(t *testing.T) (*gin.Engine, *memoryRepository) {
	gin.SetMode(gin.TestMode)

	log, err := zap.NewDevelopment()
	require.NoError(t, err)

	repo := &memoryRepository{}
	sessions := auth.NewSessions(&config.AuthConfig{
		SessionCookieTTL: time.Hour,
		ClaimCookieTTL:   time.Hour,
		DeviceCookieTTL:  time.Hour,
	})
	handler := NewHandler(repo, sessions, log)

	router := gin.New()
	router.GET("/api/reports", handler.ListReports)
	router.POST("/api/reports", handler.CreateReport)
	router.GET("/api/notes", handler.ListNotes)
	router.POST("/api/notes", handler.CreateNote)
	router.GET("/api/documents", handler.ListDocuments)
	router.POST("/api/documents", handler.CreateDocument)
	return router, repo
}

func doRequest(router *gin.Engine, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPagination(t *testing.T) {
	router, repo := newTestHandler(t)

	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{name: "defaults", query: "", wantLimit: 50, wantOffset: 0},
		{name: "explicit page and limit", query: "?page=3&limit=10", wantLimit: 10, wantOffset: 20},
		{name: "garbage falls back", query: "?page=abc&limit=-5", wantLimit: 50, wantOffset: 0},
		{name: "zero page clamps to first", query: "?page=0&limit=10", wantLimit: 10, wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(router, http.MethodGet, "/api/reports"+tt.query, "")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantLimit, repo.lastLimit)
			assert.Equal(t, tt.wantOffset, repo.lastOffset)
		})
	}
}

func TestCreateReport(t *testing.T) {
	router, repo := newTestHandler(t)

	rec := doRequest(router, http.MethodPost, "/api/reports", `{"user_id":3,"message":"shipped the thing"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var report Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, uint(3), report.UserID)
	assert.Equal(t, "shipped the thing", report.Message)
	assert.Len(t, repo.reports, 1)
}

func TestCreateReport_DefaultsToClaimedIdentity(t *testing.T) {
	router, repo := newTestHandler(t)

	rec := doRequest(router, http.MethodPost, "/api/reports", `{"message":"from the claimed tab"}`,
		&http.Cookie{Name: auth.ClaimUserIDCookie, Value: "7"},
		&http.Cookie{Name: auth.ClaimUserNameCookie, Value: "grace"})
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Len(t, repo.reports, 1)
	assert.Equal(t, uint(7), repo.reports[0].UserID)

	// Explicit user_id beats the claim cookie.
	rec = doRequest(router, http.MethodPost, "/api/reports", `{"user_id":2,"message":"explicit"}`,
		&http.Cookie{Name: auth.ClaimUserIDCookie, Value: "7"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, uint(2), repo.reports[1].UserID)
}

func TestCreateReport_Validation(t *testing.T) {
	router, _ := newTestHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "no identity at all", body: `{"message":"orphan"}`},
		{name: "empty message", body: `{"user_id":1,"message":"  "}`},
		{name: "malformed body", body: `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(router, http.MethodPost, "/api/reports", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateNote(t *testing.T) {
	router, repo := newTestHandler(t)

	rec := doRequest(router, http.MethodPost, "/api/notes", `{"note":"remember the milk"}`,
		&http.Cookie{Name: auth.ClaimUserIDCookie, Value: "4"})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, repo.notes, 1)
	assert.Equal(t, uint(4), repo.notes[0].UserID)

	// Notes are allowed without any claimed identity.
	rec = doRequest(router, http.MethodPost, "/api/notes", `{"note":"anonymous"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, uint(0), repo.notes[1].UserID)

	rec = doRequest(router, http.MethodPost, "/api/notes", `{"note":" "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateDocument(t *testing.T) {
	router, repo := newTestHandler(t)

	rec := doRequest(router, http.MethodPost, "/api/documents", `{"detail":"handover checklist"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, repo.documents, 1)

	rec = doRequest(router, http.MethodPost, "/api/documents", `{"detail":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
