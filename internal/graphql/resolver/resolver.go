// Package resolver implements the GraphQL field resolvers. Child
// resolvers carry the channel slug of the request down the tree and
// read relations through the request's loader set, so sibling fields
// collapse into bulk queries.
package resolver

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/graph-gophers/graphql-go"
	"go.uber.org/fx"
	"go.uber.org/zap"

	channeldomain "github.com/smallbiznis/shipgraph/internal/channel/domain"
	"github.com/smallbiznis/shipgraph/internal/config"
	"github.com/smallbiznis/shipgraph/internal/graphql/gid"
	"github.com/smallbiznis/shipgraph/internal/graphql/loaders"
	shippingdomain "github.com/smallbiznis/shipgraph/internal/shipping/domain"
	"github.com/smallbiznis/shipgraph/pkg/weight"
)

// deps is the shared, request-independent state behind every resolver.
type deps struct {
	log        *zap.Logger
	svc        shippingdomain.Service
	shipping   shippingdomain.Repository
	channels   channeldomain.Repository
	weightUnit weight.Unit
}

// Resolver is the schema's query root.
type Resolver struct {
	deps *deps
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Config   config.Config
	Service  shippingdomain.Service
	Shipping shippingdomain.Repository
	Channels channeldomain.Repository
}

func New(p Params) *Resolver {
	unit, err := weight.ParseUnit(p.Config.DefaultWeightUnit)
	if err != nil {
		p.Log.Warn("invalid default weight unit, falling back to kg",
			zap.String("unit", p.Config.DefaultWeightUnit))
		unit = weight.Kilogram
	}
	return &Resolver{deps: &deps{
		log:        p.Log.Named("graphql.resolver"),
		svc:        p.Service,
		shipping:   p.Shipping,
		channels:   p.Channels,
		weightUnit: unit,
	}}
}

type shippingZoneArgs struct {
	ID      graphql.ID
	Channel *string
}

// ShippingZone looks up a single zone by global id, optionally scoped
// to a sales channel for price data.
func (r *Resolver) ShippingZone(ctx context.Context, args shippingZoneArgs) (*ZoneResolver, error) {
	raw, err := gid.Decode(string(args.ID), "ShippingZone")
	if err != nil {
		return nil, err
	}
	zone, err := r.deps.svc.GetZone(ctx, snowflake.ID(raw))
	if err != nil {
		if errors.Is(err, shippingdomain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ZoneResolver{deps: r.deps, zone: zone, channelSlug: args.Channel}, nil
}

type shippingZonesArgs struct {
	Channel *string
}

// ShippingZones lists every zone, each carrying the optional channel
// scope down to its method resolvers.
func (r *Resolver) ShippingZones(ctx context.Context, args shippingZonesArgs) ([]*ZoneResolver, error) {
	zones, err := r.deps.svc.ListZones(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*ZoneResolver, 0, len(zones))
	for _, zone := range zones {
		out = append(out, &ZoneResolver{deps: r.deps, zone: zone, channelSlug: args.Channel})
	}
	return out, nil
}

type countriesArgs struct {
	InShippingZones *bool
}

// Countries returns the country reference list, optionally filtered to
// codes covered (or not covered) by at least one shipping zone.
func (r *Resolver) Countries(ctx context.Context, args countriesArgs) ([]*CountryDisplayResolver, error) {
	codes, err := r.deps.svc.CountryCodes(ctx, args.InShippingZones)
	if err != nil {
		return nil, err
	}
	out := make([]*CountryDisplayResolver, 0, len(codes))
	for _, code := range codes {
		out = append(out, &CountryDisplayResolver{code: code})
	}
	return out, nil
}

// loadersFor recovers the request loader set, building an uncached
// fallback when the middleware did not run (tests, ad-hoc callers).
func (d *deps) loadersFor(ctx context.Context) *loaders.Loaders {
	if l := loaders.For(ctx); l != nil {
		return l
	}
	return loaders.New(ctx, d.shipping, d.channels, nil)
}
