package server

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/elskow/reportdesk/internal/api"
	"github.com/elskow/reportdesk/internal/auth"
	"github.com/elskow/reportdesk/internal/config"
	"github.com/elskow/reportdesk/internal/feed"
	"github.com/elskow/reportdesk/internal/users"
)

type Server struct {
	config *config.AppConfig
	log    *zap.Logger
	http   *http.Server
}

type Params struct {
	fx.In

	Config            *config.AppConfig
	Logger            *zap.Logger
	AuthHandler       *auth.Handler
	SessionMiddleware *auth.SessionMiddleware
	UsersHandler      *users.Handler
	FeedHandler       *feed.Handler
	Redis             *redis.Client
}

func NewServer(p Params) *Server {
	if os.Getenv("APP_ENV") == EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(p.Config.CORS.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = p.Config.CORS.AllowOrigins
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	}
	// The session lives in cookies; credentials must be allowed.
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	limiter := NewRateLimiter(p.Redis)
	if p.Redis == nil {
		p.Logger.Warn("login rate limiting disabled: no redis configured; " +
			"failed attempts are neither tracked nor throttled")
	}

	requireSession := p.SessionMiddleware.RequireSession()
	authCfg := &p.Config.Auth

	engine.POST(api.AuthCheck, p.AuthHandler.Check)
	engine.POST(api.AuthLogin,
		limiter.Limit("login", authCfg.LoginRateLimit, authCfg.LoginRateWindow),
		p.AuthHandler.Login)
	engine.POST(api.AuthLogout, p.AuthHandler.Logout)
	engine.GET(api.AuthMe, p.AuthHandler.Me)
	engine.POST(api.AuthSwitchUser, p.AuthHandler.Claim)
	engine.POST(api.Reporter, p.AuthHandler.Claim)
	engine.POST(api.ChangePassword, requireSession, p.AuthHandler.ChangePassword)
	engine.POST(api.DeviceLog, p.AuthHandler.DeviceLog)
	engine.GET(api.UserDevices, requireSession, p.AuthHandler.ListUserDevices)
	engine.DELETE(api.DeviceByID, requireSession, p.AuthHandler.RevokeDevice)

	engine.GET(api.Users, p.UsersHandler.List)
	engine.POST(api.Users, p.UsersHandler.Create)
	engine.PUT(api.UserByID, p.UsersHandler.Rename)
	engine.DELETE(api.UserByID, p.UsersHandler.Delete)

	engine.GET(api.Reports, p.FeedHandler.ListReports)
	engine.POST(api.Reports, p.FeedHandler.CreateReport)
	engine.GET(api.Notes, p.FeedHandler.ListNotes)
	engine.POST(api.Notes, p.FeedHandler.CreateNote)
	engine.GET(api.Documents, p.FeedHandler.ListDocuments)
	engine.POST(api.Documents, p.FeedHandler.CreateDocument)

	addr := fmt.Sprintf("%s:%s", p.Config.Server.Host, p.Config.Server.Port)

	return &Server{
		config: p.Config,
		log:    p.Logger,
		http: &http.Server{
			Addr:    addr,
			Handler: engine,
		},
	}
}

func (s *Server) Start() error {
	s.log.Info("Starting HTTP server",
		zap.String("address", s.http.Addr),
		zap.Object("config", serverConfigToField(s.config)),
	)

	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

func serverConfigToField(config *config.AppConfig) zapcore.ObjectMarshaler {
	return zapcore.ObjectMarshalerFunc(func(enc zapcore.ObjectEncoder) error {
		enc.AddString("environment", os.Getenv("APP_ENV"))
		enc.AddBool("redis_enabled", config.Redis.Addr != "")
		enc.AddDuration("session_cookie_ttl", config.Auth.SessionCookieTTL)
		enc.AddInt("login_rate_limit", config.Auth.LoginRateLimit)
		return nil
	})
}

func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	return s.http.Shutdown(ctx)
}
