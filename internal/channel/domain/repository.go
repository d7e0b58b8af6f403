package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Repository exposes the bulk reads the per-request loaders are built
// on. Every method accepts the full key set of one batch and returns
// results grouped by the same keys.
type Repository interface {
	// ListByIDs returns the channels for the given ids, keyed by id.
	// Missing ids are simply absent from the map.
	ListByIDs(ctx context.Context, ids []snowflake.ID) (map[snowflake.ID]*Channel, error)

	// ListByZoneIDs returns the channels assigned to each shipping
	// zone. Zones without channels map to an empty slice.
	ListByZoneIDs(ctx context.Context, zoneIDs []snowflake.ID) (map[snowflake.ID][]*Channel, error)

	// FindBySlug returns the active channel with the given slug.
	FindBySlug(ctx context.Context, slug string) (*Channel, error)
}
