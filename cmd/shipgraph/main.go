package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/smallbiznis/shipgraph/internal/channel"
	"github.com/smallbiznis/shipgraph/internal/config"
	"github.com/smallbiznis/shipgraph/internal/graphql/schema"
	"github.com/smallbiznis/shipgraph/internal/migration"
	"github.com/smallbiznis/shipgraph/internal/observability"
	"github.com/smallbiznis/shipgraph/internal/reference"
	"github.com/smallbiznis/shipgraph/internal/server"
	"github.com/smallbiznis/shipgraph/internal/shipping"
	"github.com/smallbiznis/shipgraph/pkg/db"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,

		// Functional domains
		reference.Module,
		channel.Module,
		shipping.Module,
		schema.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
