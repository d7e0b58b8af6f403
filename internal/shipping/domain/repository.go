package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/shipgraph/pkg/money"
)

// ZoneChannelKey scopes a zone's method list to one sales channel.
type ZoneChannelKey struct {
	ZoneID      snowflake.ID
	ChannelSlug string
}

// MethodChannelKey addresses the single listing row of a method in one
// sales channel.
type MethodChannelKey struct {
	MethodID    snowflake.ID
	ChannelSlug string
}

// Repository exposes set-keyed bulk reads for the per-request loaders
// plus the streamed zone iterator used by the coverage computation.
// Grouping methods return a value for every requested key: one-to-many
// reads map missing keys to empty slices, single-row reads omit them.
type Repository interface {
	ListZones(ctx context.Context) ([]*ShippingZone, error)
	FindZoneByID(ctx context.Context, id snowflake.ID) (*ShippingZone, error)

	// IterateZones streams zones in id order, batchSize rows at a
	// time, so coverage never materializes the full zone set.
	IterateZones(ctx context.Context, batchSize int, fn func(*ShippingZone) error) error

	ListMethodsByZoneIDs(ctx context.Context, zoneIDs []snowflake.ID) (map[snowflake.ID][]*ShippingMethod, error)
	ListMethodsByZoneAndChannel(ctx context.Context, keys []ZoneChannelKey) (map[ZoneChannelKey][]*ShippingMethod, error)

	ListListingsByMethodIDs(ctx context.Context, methodIDs []snowflake.ID) (map[snowflake.ID][]*ShippingMethodChannelListing, error)
	FindListingsByMethodAndChannel(ctx context.Context, keys []MethodChannelKey) (map[MethodChannelKey]*ShippingMethodChannelListing, error)

	ListPostalCodeRulesByMethodIDs(ctx context.Context, methodIDs []snowflake.ID) (map[snowflake.ID][]*PostalCodeRule, error)
	ListExcludedProductIDs(ctx context.Context, methodID snowflake.ID) ([]snowflake.ID, error)

	// ZonePriceRange aggregates the lowest and highest listing price
	// across the zone's methods in the given channel. Returns nil
	// when the zone has no listings there.
	ZonePriceRange(ctx context.Context, zoneID snowflake.ID, channelSlug string) (*money.Range, error)
}
