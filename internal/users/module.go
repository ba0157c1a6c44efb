package users

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/reportdesk/internal/auth"
	"github.com/elskow/reportdesk/internal/syncbus"
)

// NewModule returns the users module options
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(store auth.Repository, bus syncbus.Bus, log *zap.Logger) *Handler {
					return NewHandler(store, bus, log)
				},
			),
		),
	)
}
