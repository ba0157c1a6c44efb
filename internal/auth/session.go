package auth

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/elskow/reportdesk/internal/config"
)

// Cookie names. The session pair carries the authenticated rank, the claim
// pair carries reporter-only attribution and has no authentication weight.
// The device cookie is the durable fingerprint passed to the device registry.
const (
	SessionUserIDCookie   = "session_user_id"
	SessionUserNameCookie = "session_user_name"
	ClaimUserIDCookie     = "claim_user_id"
	ClaimUserNameCookie   = "claim_user_name"
	DeviceIDCookie        = "device_id"
)

// Sessions writes and reads the cookie model. The id cookies are HttpOnly;
// the name cookies stay script-readable so the UI can display the current
// user without a round trip. That is a deliberate trust tradeoff.
type Sessions struct {
	config *config.AuthConfig
}

func NewSessions(config *config.AuthConfig) *Sessions {
	return &Sessions{config: config}
}

func (s *Sessions) WriteAuthenticated(c *gin.Context, user *User) {
	maxAge := int(s.config.SessionCookieTTL / time.Second)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionUserIDCookie, strconv.FormatUint(uint64(user.ID), 10), maxAge, "/", "", false, true)
	c.SetCookie(SessionUserNameCookie, user.Name, maxAge, "/", "", false, false)
}

func (s *Sessions) ClearAuthenticated(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionUserIDCookie, "", -1, "/", "", false, true)
	c.SetCookie(SessionUserNameCookie, "", -1, "/", "", false, false)
}

func (s *Sessions) WriteClaim(c *gin.Context, id uint, name string) {
	maxAge := int(s.config.ClaimCookieTTL / time.Second)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ClaimUserIDCookie, strconv.FormatUint(uint64(id), 10), maxAge, "/", "", false, false)
	c.SetCookie(ClaimUserNameCookie, name, maxAge, "/", "", false, false)
}

func (s *Sessions) ClearClaim(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ClaimUserIDCookie, "", -1, "/", "", false, false)
	c.SetCookie(ClaimUserNameCookie, "", -1, "/", "", false, false)
}

// EnsureDevice returns the durable device id, minting and setting one when
// the client has none yet.
func (s *Sessions) EnsureDevice(c *gin.Context, mint func() string) string {
	if id, err := c.Cookie(DeviceIDCookie); err == nil && id != "" {
		return id
	}
	id := mint()
	maxAge := int(s.config.DeviceCookieTTL / time.Second)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(DeviceIDCookie, id, maxAge, "/", "", false, true)
	return id
}

func (s *Sessions) DeviceID(c *gin.Context) (string, bool) {
	id, err := c.Cookie(DeviceIDCookie)
	if err != nil || id == "" {
		return "", false
	}
	return id, true
}

// Authenticated reads the authenticated pair without validating it. Callers
// must re-validate against the credential store.
func (s *Sessions) Authenticated(c *gin.Context) (uint, string, bool) {
	return readIdentityPair(c, SessionUserIDCookie, SessionUserNameCookie)
}

// Claimed reads the reporter attribution pair. It never grants access.
func (s *Sessions) Claimed(c *gin.Context) (uint, string, bool) {
	return readIdentityPair(c, ClaimUserIDCookie, ClaimUserNameCookie)
}

func readIdentityPair(c *gin.Context, idCookie, nameCookie string) (uint, string, bool) {
	rawID, err := c.Cookie(idCookie)
	if err != nil || rawID == "" {
		return 0, "", false
	}
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		return 0, "", false
	}
	name, _ := c.Cookie(nameCookie)
	return uint(id), name, true
}
