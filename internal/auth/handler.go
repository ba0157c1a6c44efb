package auth

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	service  *Service
	sessions *Sessions
	log      *zap.Logger
}

func NewHandler(service *Service, sessions *Sessions, log *zap.Logger) *Handler {
	return &Handler{
		service:  service,
		sessions: sessions,
		log:      log,
	}
}

type checkRequest struct {
	Name string `json:"name"`
}

// Check probes existence and password presence. No side effects.
func (h *Handler) Check(c *gin.Context) {
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrNameRequired.Error()})
		return
	}

	exists, hasPassword, err := h.service.Check(req.Name)
	if err != nil {
		h.log.Error("auth check failed", zap.String("name", req.Name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check user"})
		return
	}

	if !exists {
		c.JSON(http.StatusOK, gin.H{"exists": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": true, "hasPassword": hasPassword})
}

type loginRequest struct {
	Name     string `json:"name"`
	UserID   uint   `json:"user_id"`
	Password string `json:"password"`
}

// Login authenticates by name or id, records the device and login event, and
// writes the authenticated cookie pair plus the durable device cookie.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Name) == "" && req.UserID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name or user_id is required"})
		return
	}

	deviceID := h.sessions.EnsureDevice(c, uuid.NewString)
	descriptor := c.Request.UserAgent()
	ip := clientIP(c)

	var result *AuthResult
	var err error
	if req.UserID != 0 {
		result, err = h.service.AuthenticateByID(req.UserID, req.Password, deviceID, descriptor, ip)
	} else {
		result, err = h.service.Authenticate(req.Name, req.Password, deviceID, descriptor, ip)
	}
	if err != nil {
		switch err {
		case ErrUserNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case ErrInvalidPassword:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid password"})
		default:
			h.log.Error("login failed", zap.String("name", req.Name), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		}
		return
	}

	h.sessions.WriteAuthenticated(c, result.User)

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"user":        gin.H{"id": result.User.ID, "name": result.User.Name},
		"first_login": result.FirstLogin,
	})
}

// Logout clears the authenticated pair. The device cookie stays; it is a
// fingerprint, not a grant.
func (h *Handler) Logout(c *gin.Context) {
	h.sessions.ClearAuthenticated(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me re-validates the authenticated cookies against the credential store.
func (h *Handler) Me(c *gin.Context) {
	id, _, ok := h.sessions.Authenticated(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	user, err := h.service.Resolve(id)
	if err != nil {
		if err == ErrUserNotFound {
			h.sessions.ClearAuthenticated(c)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		h.log.Error("failed to resolve current user", zap.Uint("user_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": user.ID, "name": user.Name})
}

type claimRequest struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Claim records which identity this tab attributes new posts to. It carries
// no authentication weight and is kept strictly on the claim cookie pair so a
// server-side check can never mistake it for a session.
func (h *Handler) Claim(c *gin.Context) {
	var req claimRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}

	user, err := h.service.Resolve(req.ID)
	if err != nil {
		if err == ErrUserNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.log.Error("claim failed", zap.Uint("user_id", req.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	h.sessions.WriteClaim(c, user.ID, user.Name)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type changePasswordRequest struct {
	UserID      uint   `json:"user_id"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (h *Handler) ChangePassword(c *gin.Context) {
	current, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	if req.UserID != current.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot change another user's password"})
		return
	}

	if err := h.service.ChangePassword(req.UserID, req.OldPassword, req.NewPassword); err != nil {
		switch err {
		case ErrUserNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case ErrInvalidPassword:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "wrong old password"})
		case ErrPasswordTooShort:
			c.JSON(http.StatusBadRequest, gin.H{"error": "password is too short"})
		default:
			h.log.Error("change password failed", zap.Uint("user_id", req.UserID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to change password"})
		}
		return
	}

	// The rotation revoked this session too; force a fresh login.
	h.sessions.ClearAuthenticated(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type deviceLogRequest struct {
	DeviceID string `json:"device_id"`
	UserID   uint   `json:"user_id"`
}

// DeviceLog is the explicit device/log touch for claim-only flows.
func (h *Handler) DeviceLog(c *gin.Context) {
	var req deviceLogRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DeviceID == "" || req.UserID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "device_id and user_id are required"})
		return
	}

	if err := h.service.LogDevice(req.DeviceID, req.UserID, c.Request.UserAgent(), clientIP(c)); err != nil {
		if err == ErrUserNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.log.Error("device log failed",
			zap.String("device_id", req.DeviceID),
			zap.Uint("user_id", req.UserID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) ListUserDevices(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	devices, err := h.service.ListDevices(uint(userID))
	if err != nil {
		if err == ErrUserNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.log.Error("list devices failed", zap.Uint64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, devices)
}

func (h *Handler) RevokeDevice(c *gin.Context) {
	deviceID := c.Param("deviceId")
	if deviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing device id"})
		return
	}

	if err := h.service.RevokeDevice(deviceID); err != nil {
		h.log.Error("revoke device failed", zap.String("device_id", deviceID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func clientIP(c *gin.Context) *string {
	ip := c.ClientIP()
	if ip == "" {
		return nil
	}
	return &ip
}
