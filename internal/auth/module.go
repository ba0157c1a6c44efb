package auth

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/reportdesk/internal/config"
	"github.com/elskow/reportdesk/internal/database"
)

// NewModule returns the auth module options
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(manager *database.Manager) Repository {
					return NewRepository(manager.DB())
				},
			),
			fx.Annotate(
				func(manager *database.Manager) DeviceRepository {
					return NewDeviceRepository(manager.DB())
				},
			),
			fx.Annotate(
				func(manager *database.Manager) TxManager {
					return NewTxManager(manager.DB())
				},
			),
			fx.Annotate(
				func(config *config.AppConfig, log *zap.Logger, users Repository, devices DeviceRepository, tx TxManager) *Service {
					return NewService(&config.Auth, log, users, devices, tx)
				},
			),
			fx.Annotate(
				func(config *config.AppConfig) *Sessions {
					return NewSessions(&config.Auth)
				},
			),
			fx.Annotate(
				func(sessions *Sessions, svc *Service, log *zap.Logger) *SessionMiddleware {
					return NewSessionMiddleware(sessions, svc, log)
				},
			),
			fx.Annotate(
				func(svc *Service, sessions *Sessions, log *zap.Logger) *Handler {
					return NewHandler(svc, sessions, log)
				},
			),
		),
	)
}
