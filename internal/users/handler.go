// Package users owns the user CRUD surface. It writes through the credential
// store and, on every mutation, publishes the matching sync bus event so
// sibling tabs can repair their local state.
package users

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/elskow/reportdesk/internal/auth"
	"github.com/elskow/reportdesk/internal/syncbus"
)

type Handler struct {
	store auth.Repository
	bus   syncbus.Bus
	log   *zap.Logger
}

func NewHandler(store auth.Repository, bus syncbus.Bus, log *zap.Logger) *Handler {
	return &Handler{
		store: store,
		bus:   bus,
		log:   log,
	}
}

func (h *Handler) List(c *gin.Context) {
	users, err := h.store.List()
	if err != nil {
		h.log.Error("failed to list users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

type nameRequest struct {
	Name string `json:"name"`
}

func (h *Handler) Create(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": auth.ErrNameRequired.Error()})
		return
	}

	user, err := h.store.Create(name)
	if err != nil {
		if err == auth.ErrNameTaken {
			c.JSON(http.StatusConflict, gin.H{"error": "user with this name already exists"})
			return
		}
		h.log.Error("failed to create user", zap.String("name", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	h.bus.Publish(syncbus.Event{
		Kind: syncbus.UserCreated,
		User: syncbus.UserRef{ID: user.ID, Name: user.Name},
	})
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) Rename(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": auth.ErrNameRequired.Error()})
		return
	}

	user, err := h.store.Rename(uint(id), name)
	if err != nil {
		switch err {
		case auth.ErrUserNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case auth.ErrNameTaken:
			c.JSON(http.StatusConflict, gin.H{"error": "user with this name already exists"})
		default:
			h.log.Error("failed to rename user", zap.Uint64("user_id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
		}
		return
	}

	h.bus.Publish(syncbus.Event{
		Kind: syncbus.UserUpdated,
		User: syncbus.UserRef{ID: user.ID, Name: user.Name},
	})
	c.JSON(http.StatusOK, user)
}

// Delete removes the user row only. Device and login history stay behind as
// an audit trail; any live session naming the id dies at the next
// re-validation.
func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := h.store.Delete(uint(id))
	if err != nil {
		if err == auth.ErrUserNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.log.Error("failed to delete user", zap.Uint64("user_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete user"})
		return
	}

	h.bus.Publish(syncbus.Event{
		Kind: syncbus.UserDeleted,
		User: syncbus.UserRef{ID: user.ID, Name: user.Name},
	})
	c.JSON(http.StatusOK, gin.H{"message": "user deleted successfully"})
}
