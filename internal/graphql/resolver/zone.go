package resolver

import (
	"context"

	"github.com/graph-gophers/graphql-go"

	"github.com/smallbiznis/shipgraph/internal/graphql/gid"
	shippingdomain "github.com/smallbiznis/shipgraph/internal/shipping/domain"
)

// ZoneResolver resolves ShippingZone fields. The optional channel
// slug it carries scopes every price-bearing descendant.
type ZoneResolver struct {
	deps        *deps
	zone        *shippingdomain.ShippingZone
	channelSlug *string
}

func (r *ZoneResolver) ID() graphql.ID {
	return graphql.ID(gid.Encode("ShippingZone", int64(r.zone.ID)))
}

func (r *ZoneResolver) Name() string { return r.zone.Name }

func (r *ZoneResolver) Description() *string {
	if r.zone.Description == "" {
		return nil
	}
	return &r.zone.Description
}

func (r *ZoneResolver) Default() bool { return r.zone.Default }

func (r *ZoneResolver) Countries() []*CountryDisplayResolver {
	out := make([]*CountryDisplayResolver, 0, len(r.zone.Countries))
	for _, code := range r.zone.Countries {
		out = append(out, &CountryDisplayResolver{code: code})
	}
	return out
}

// ShippingMethods loads the zone's methods, filtered to the channel
// scope when one is present. Every sibling zone in the response joins
// the same batch.
func (r *ZoneResolver) ShippingMethods(ctx context.Context) (*[]*MethodResolver, error) {
	var (
		methods []*shippingdomain.ShippingMethod
		err     error
	)
	l := r.deps.loadersFor(ctx)
	if r.channelSlug != nil {
		key := shippingdomain.ZoneChannelKey{ZoneID: r.zone.ID, ChannelSlug: *r.channelSlug}
		methods, err = l.MethodsByZoneAndChannel.Load(key)
	} else {
		methods, err = l.MethodsByZoneID.Load(r.zone.ID)
	}
	if err != nil {
		return nil, err
	}
	out := make([]*MethodResolver, 0, len(methods))
	for _, method := range methods {
		out = append(out, NewLocalMethod(r.deps, method, r.channelSlug))
	}
	return &out, nil
}

// Channels lists the sales channels assigned to the zone.
func (r *ZoneResolver) Channels(ctx context.Context) ([]*ChannelResolver, error) {
	channels, err := r.deps.loadersFor(ctx).ChannelsByZoneID.Load(r.zone.ID)
	if err != nil {
		return nil, err
	}
	out := make([]*ChannelResolver, 0, len(channels))
	for _, ch := range channels {
		out = append(out, &ChannelResolver{channel: ch})
	}
	return out, nil
}

// PriceRange aggregates the zone's lowest and highest listing price in
// the channel scope. Absent without a channel.
func (r *ZoneResolver) PriceRange(ctx context.Context) (*MoneyRangeResolver, error) {
	if r.channelSlug == nil {
		return nil, nil
	}
	rng, err := r.deps.shipping.ZonePriceRange(ctx, r.zone.ID, *r.channelSlug)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, nil
	}
	return &MoneyRangeResolver{r: *rng}, nil
}
