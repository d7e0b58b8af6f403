package shipping

import (
	"github.com/smallbiznis/shipgraph/internal/shipping/repository"
	"github.com/smallbiznis/shipgraph/internal/shipping/service"
	"go.uber.org/fx"
)

var Module = fx.Module("shipping.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
