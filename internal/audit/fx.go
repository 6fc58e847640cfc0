package audit

import (
	"github.com/loopworks/therapysync/internal/audit/repository"
	"github.com/loopworks/therapysync/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
