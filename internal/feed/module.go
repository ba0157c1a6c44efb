package feed

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/reportdesk/internal/auth"
	"github.com/elskow/reportdesk/internal/database"
)

// NewModule returns the feed module options
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(manager *database.Manager) Repository {
					return NewRepository(manager.DB())
				},
			),
			fx.Annotate(
				func(repo Repository, sessions *auth.Sessions, log *zap.Logger) *Handler {
					return NewHandler(repo, sessions, log)
				},
			),
		),
	)
}
