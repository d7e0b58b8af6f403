// Package loaders builds the request-scoped set of dataloaders the
// resolvers read through. One Loaders value lives on each request
// context; its caches never outlive the request.
package loaders

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	channeldomain "github.com/smallbiznis/shipgraph/internal/channel/domain"
	"github.com/smallbiznis/shipgraph/internal/graphql/dataloader"
	"github.com/smallbiznis/shipgraph/internal/observability/metrics"
	shippingdomain "github.com/smallbiznis/shipgraph/internal/shipping/domain"
)

type contextKey struct{}

const (
	defaultWait     = 2 * time.Millisecond
	defaultMaxBatch = 100
)

// Loaders bundles every dataloader of one request.
type Loaders struct {
	MethodsByZoneID          *dataloader.Loader[snowflake.ID, []*shippingdomain.ShippingMethod]
	MethodsByZoneAndChannel  *dataloader.Loader[shippingdomain.ZoneChannelKey, []*shippingdomain.ShippingMethod]
	ListingsByMethodID       *dataloader.Loader[snowflake.ID, []*shippingdomain.ShippingMethodChannelListing]
	ListingByMethodAndChannel *dataloader.Loader[shippingdomain.MethodChannelKey, *shippingdomain.ShippingMethodChannelListing]
	PostalCodeRulesByMethodID *dataloader.Loader[snowflake.ID, []*shippingdomain.PostalCodeRule]
	ChannelsByZoneID         *dataloader.Loader[snowflake.ID, []*channeldomain.Channel]
	ChannelByID              *dataloader.Loader[snowflake.ID, *channeldomain.Channel]
}

// New builds a fresh Loaders set whose batch functions run against the
// given context. The metrics receiver may be nil.
func New(ctx context.Context, shipping shippingdomain.Repository, channels channeldomain.Repository, lm *metrics.LoaderMetrics) *Loaders {
	return &Loaders{
		MethodsByZoneID: dataloader.New(dataloader.Config[snowflake.ID, []*shippingdomain.ShippingMethod]{
			Wait:     defaultWait,
			MaxBatch: defaultMaxBatch,
			Hooks:    hooks(lm, "methods_by_zone"),
			Fetch: grouped(ctx, shipping.ListMethodsByZoneIDs),
		}),
		MethodsByZoneAndChannel: dataloader.New(dataloader.Config[shippingdomain.ZoneChannelKey, []*shippingdomain.ShippingMethod]{
			Wait:     defaultWait,
			MaxBatch: defaultMaxBatch,
			Hooks:    hooks(lm, "methods_by_zone_and_channel"),
			Fetch: grouped(ctx, shipping.ListMethodsByZoneAndChannel),
		}),
		ListingsByMethodID: dataloader.New(dataloader.Config[snowflake.ID, []*shippingdomain.ShippingMethodChannelListing]{
			Wait:     defaultWait,
			MaxBatch: defaultMaxBatch,
			Hooks:    hooks(lm, "listings_by_method"),
			Fetch: grouped(ctx, shipping.ListListingsByMethodIDs),
		}),
		ListingByMethodAndChannel: dataloader.New(dataloader.Config[shippingdomain.MethodChannelKey, *shippingdomain.ShippingMethodChannelListing]{
			Wait:     defaultWait,
			MaxBatch: defaultMaxBatch,
			Hooks:    hooks(lm, "listing_by_method_and_channel"),
			Fetch: grouped(ctx, shipping.FindListingsByMethodAndChannel),
		}),
		PostalCodeRulesByMethodID: dataloader.New(dataloader.Config[snowflake.ID, []*shippingdomain.PostalCodeRule]{
			Wait:     defaultWait,
			MaxBatch: defaultMaxBatch,
			Hooks:    hooks(lm, "postal_code_rules_by_method"),
			Fetch: grouped(ctx, shipping.ListPostalCodeRulesByMethodIDs),
		}),
		ChannelsByZoneID: dataloader.New(dataloader.Config[snowflake.ID, []*channeldomain.Channel]{
			Wait:     defaultWait,
			MaxBatch: defaultMaxBatch,
			Hooks:    hooks(lm, "channels_by_zone"),
			Fetch: grouped(ctx, channels.ListByZoneIDs),
		}),
		ChannelByID: dataloader.New(dataloader.Config[snowflake.ID, *channeldomain.Channel]{
			Wait:     defaultWait,
			MaxBatch: defaultMaxBatch,
			Hooks:    hooks(lm, "channel_by_id"),
			Fetch: grouped(ctx, channels.ListByIDs),
		}),
	}
}

// grouped adapts a map-returning bulk read into a batch fetch that
// returns one value per key in key order. Keys absent from the map
// resolve to the value type's zero value; a query error fails the
// whole batch uniformly.
func grouped[K comparable, V any](ctx context.Context, query func(context.Context, []K) (map[K]V, error)) func([]K) ([]V, []error) {
	return func(keys []K) ([]V, []error) {
		rows, err := query(ctx, keys)
		if err != nil {
			return nil, []error{err}
		}
		values := make([]V, len(keys))
		for i, key := range keys {
			values[i] = rows[key]
		}
		return values, nil
	}
}

func hooks(lm *metrics.LoaderMetrics, name string) dataloader.Hooks {
	if lm == nil {
		return dataloader.Hooks{}
	}
	return dataloader.Hooks{
		OnBatch:    func(keys int) { lm.ObserveBatch(name, keys) },
		OnCacheHit: func() { lm.ObserveCacheHit(name) },
	}
}

// Attach stores the loader set on the context.
func Attach(ctx context.Context, l *Loaders) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// For returns the request's loader set, or nil when none was attached.
func For(ctx context.Context) *Loaders {
	l, _ := ctx.Value(contextKey{}).(*Loaders)
	return l
}

// Middleware attaches a fresh loader set to each request context.
func Middleware(shipping shippingdomain.Repository, channels channeldomain.Repository, lm *metrics.LoaderMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ctx = Attach(ctx, New(ctx, shipping, channels, lm))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
