package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserContextKey is the gin context key holding the re-validated *User.
const UserContextKey = "auth.user"

type SessionMiddleware struct {
	sessions *Sessions
	service  *Service
	log      *zap.Logger
}

func NewSessionMiddleware(sessions *Sessions, service *Service, log *zap.Logger) *SessionMiddleware {
	return &SessionMiddleware{
		sessions: sessions,
		service:  service,
		log:      log,
	}
}

// RequireSession accepts only the authenticated rank. The cookie pair is
// never trusted on its own: the user must still exist and the device must
// hold a surviving login event, so password rotation and device revocation
// actually invalidate old cookies.
func (m *SessionMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _, ok := m.sessions.Authenticated(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		user, err := m.service.Resolve(id)
		if err != nil {
			if err == ErrUserNotFound {
				m.sessions.ClearAuthenticated(c)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session no longer valid"})
				return
			}
			m.log.Error("session re-validation failed", zap.Uint("user_id", id), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		deviceID, ok := m.sessions.DeviceID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		active, err := m.service.HasActiveSession(deviceID, user.ID)
		if err != nil {
			m.log.Error("session probe failed",
				zap.String("device_id", deviceID),
				zap.Uint("user_id", user.ID),
				zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if !active {
			m.sessions.ClearAuthenticated(c)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session revoked"})
			return
		}

		c.Set(UserContextKey, user)
		c.Next()
	}
}

// CurrentUser returns the user attached by RequireSession.
func CurrentUser(c *gin.Context) (*User, bool) {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*User)
	return user, ok
}
