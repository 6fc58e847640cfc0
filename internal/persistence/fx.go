package persistence

import (
	"go.uber.org/fx"

	"github.com/loopworks/therapysync/internal/persistence/service"
)

var Module = fx.Module("persistence",
	fx.Provide(
		service.NewService,
	),
)
