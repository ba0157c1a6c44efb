package feed

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/elskow/reportdesk/internal/auth"
)

const defaultPageSize = 50

type Handler struct {
	repository Repository
	sessions   *auth.Sessions
	log        *zap.Logger
}

func NewHandler(repository Repository, sessions *auth.Sessions, log *zap.Logger) *Handler {
	return &Handler{
		repository: repository,
		sessions:   sessions,
		log:        log,
	}
}

func pagination(c *gin.Context) (limit, offset int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit < 1 {
		limit = defaultPageSize
	}
	return limit, (page - 1) * limit
}

func (h *Handler) ListReports(c *gin.Context) {
	limit, offset := pagination(c)
	reports, err := h.repository.ListReports(limit, offset)
	if err != nil {
		h.log.Error("failed to list reports", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch reports"})
		return
	}
	c.JSON(http.StatusOK, reports)
}

type createReportRequest struct {
	UserID  uint   `json:"user_id"`
	Message string `json:"message"`
}

// CreateReport attributes the post to the claimed identity by default; an
// explicit user_id in the body wins, matching the "who is posting" selector.
func (h *Handler) CreateReport(c *gin.Context) {
	var req createReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.UserID == 0 {
		if id, _, ok := h.sessions.Claimed(c); ok {
			req.UserID = id
		}
	}
	if req.UserID == 0 || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id and message are required"})
		return
	}

	report, err := h.repository.CreateReport(req.UserID, req.Message)
	if err != nil {
		h.log.Error("failed to create report", zap.Uint("user_id", req.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create report"})
		return
	}
	c.JSON(http.StatusCreated, report)
}

func (h *Handler) ListNotes(c *gin.Context) {
	limit, offset := pagination(c)
	notes, err := h.repository.ListNotes(limit, offset)
	if err != nil {
		h.log.Error("failed to list notes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch notes"})
		return
	}
	c.JSON(http.StatusOK, notes)
}

type createNoteRequest struct {
	Note string `json:"note"`
}

func (h *Handler) CreateNote(c *gin.Context) {
	var req createNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Note) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "note is required"})
		return
	}

	userID, _, _ := h.sessions.Claimed(c)
	note, err := h.repository.CreateNote(userID, req.Note)
	if err != nil {
		h.log.Error("failed to create note", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create note"})
		return
	}
	c.JSON(http.StatusCreated, note)
}

func (h *Handler) ListDocuments(c *gin.Context) {
	limit, offset := pagination(c)
	documents, err := h.repository.ListDocuments(limit, offset)
	if err != nil {
		h.log.Error("failed to list documents", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch documents"})
		return
	}
	c.JSON(http.StatusOK, documents)
}

type createDocumentRequest struct {
	Detail string `json:"detail"`
}

func (h *Handler) CreateDocument(c *gin.Context) {
	var req createDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Detail) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "detail is required"})
		return
	}

	document, err := h.repository.CreateDocument(req.Detail)
	if err != nil {
		h.log.Error("failed to create document", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create document"})
		return
	}
	c.JSON(http.StatusCreated, document)
}
