package channel

import (
	"github.com/smallbiznis/shipgraph/internal/channel/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("channel.repository",
	fx.Provide(repository.Provide),
)
