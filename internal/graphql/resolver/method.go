package resolver

import (
	"context"
	"strings"

	"github.com/graph-gophers/graphql-go"

	"github.com/smallbiznis/shipgraph/internal/graphql/dataloader"
	"github.com/smallbiznis/shipgraph/internal/graphql/gid"
	"github.com/smallbiznis/shipgraph/internal/permission"
	shippingdomain "github.com/smallbiznis/shipgraph/internal/shipping/domain"
	"github.com/smallbiznis/shipgraph/pkg/money"
	"github.com/smallbiznis/shipgraph/pkg/weight"
)

// PrecomputedPrices carries channel prices resolved by an upstream
// bulk step, so the price fields skip their loaders entirely.
type PrecomputedPrices struct {
	Price             *money.Money
	MinimumOrderPrice *money.Money
	MaximumOrderPrice *money.Money
}

// methodNode is the tagged shape behind a ShippingMethod resolver:
// a locally stored record, optionally with precomputed prices, or an
// external rate with no local rows at all.
type methodNode struct {
	record   *shippingdomain.ShippingMethod
	prices   *PrecomputedPrices
	external *shippingdomain.ExternalMethodData
}

// MethodResolver resolves ShippingMethod fields for one node under
// one optional channel scope.
type MethodResolver struct {
	deps        *deps
	node        methodNode
	channelSlug *string
}

// NewLocalMethod wraps a stored shipping method.
func NewLocalMethod(d *deps, record *shippingdomain.ShippingMethod, channelSlug *string) *MethodResolver {
	return &MethodResolver{deps: d, node: methodNode{record: record}, channelSlug: channelSlug}
}

// NewPrecomputedMethod wraps a stored method whose channel prices were
// already resolved by a bulk step.
func NewPrecomputedMethod(d *deps, record *shippingdomain.ShippingMethod, prices *PrecomputedPrices, channelSlug *string) *MethodResolver {
	return &MethodResolver{deps: d, node: methodNode{record: record, prices: prices}, channelSlug: channelSlug}
}

// NewExternalMethod wraps a rate quoted by a third-party app. The
// quoted price stands in for a precomputed one; there are no local
// listing, rule or exclusion rows to load.
func NewExternalMethod(d *deps, data *shippingdomain.ExternalMethodData) *MethodResolver {
	return &MethodResolver{
		deps: d,
		node: methodNode{
			external: data,
			prices:   &PrecomputedPrices{Price: data.Price},
		},
	}
}

func (r *MethodResolver) ID() graphql.ID {
	if r.node.external != nil {
		// External ids are opaque to us; expose them unmodified.
		return graphql.ID(r.node.external.ID)
	}
	return graphql.ID(gid.Encode("ShippingMethod", int64(r.node.record.ID)))
}

func (r *MethodResolver) Name() string {
	if r.node.external != nil {
		return r.node.external.Name
	}
	return r.node.record.Name
}

func (r *MethodResolver) Description() *string {
	if r.node.external != nil || r.node.record.Description == "" {
		return nil
	}
	return &r.node.record.Description
}

func (r *MethodResolver) Type() *string {
	if r.node.external != nil {
		return nil
	}
	t := strings.ToUpper(string(r.node.record.Type))
	return &t
}

// Price resolves the channel-scoped price: precomputed value first,
// absent without a channel scope, absent for external rates beyond
// their own quote, otherwise through the per-channel listing loader.
func (r *MethodResolver) Price(ctx context.Context) (*MoneyResolver, error) {
	return r.resolvePrice(ctx,
		func(p *PrecomputedPrices) *money.Money { return p.Price },
		func(l *shippingdomain.ShippingMethodChannelListing) *money.Money {
			p := l.Price()
			return &p
		})
}

func (r *MethodResolver) MinimumOrderPrice(ctx context.Context) (*MoneyResolver, error) {
	return r.resolvePrice(ctx,
		func(p *PrecomputedPrices) *money.Money { return p.MinimumOrderPrice },
		(*shippingdomain.ShippingMethodChannelListing).MinimumOrderPrice)
}

func (r *MethodResolver) MaximumOrderPrice(ctx context.Context) (*MoneyResolver, error) {
	return r.resolvePrice(ctx,
		func(p *PrecomputedPrices) *money.Money { return p.MaximumOrderPrice },
		(*shippingdomain.ShippingMethodChannelListing).MaximumOrderPrice)
}

func (r *MethodResolver) MinimumOrderWeight() *WeightResolver {
	return r.orderWeight(func(m *shippingdomain.ShippingMethod) *float64 { return m.MinimumOrderWeight })
}

func (r *MethodResolver) MaximumOrderWeight() *WeightResolver {
	return r.orderWeight(func(m *shippingdomain.ShippingMethod) *float64 { return m.MaximumOrderWeight })
}

func (r *MethodResolver) MinimumDeliveryDays() *int32 {
	if r.node.external != nil {
		return nil
	}
	return r.node.record.MinimumDeliveryDays
}

func (r *MethodResolver) MaximumDeliveryDays() *int32 {
	if r.node.external != nil {
		return r.node.external.MaximumDeliveryDays
	}
	return r.node.record.MaximumDeliveryDays
}

// PostalCodeRules is absent for external rates; local methods load
// their rules in one batch per request.
func (r *MethodResolver) PostalCodeRules(ctx context.Context) (*[]*PostalCodeRuleResolver, error) {
	if r.node.external != nil {
		return nil, nil
	}
	rules, err := r.deps.loadersFor(ctx).PostalCodeRulesByMethodID.Load(r.node.record.ID)
	if err != nil {
		return nil, err
	}
	out := make([]*PostalCodeRuleResolver, 0, len(rules))
	for _, rule := range rules {
		out = append(out, &PostalCodeRuleResolver{rule: rule})
	}
	return &out, nil
}

// ChannelListings requires the manage-shipping capability. Denial is
// an explicit error so callers can tell it from an empty list.
func (r *MethodResolver) ChannelListings(ctx context.Context) (*[]*ChannelListingResolver, error) {
	if !permission.HasCapability(ctx, permission.ManageShipping) {
		return nil, permission.ErrDenied
	}
	if r.node.external != nil {
		return nil, nil
	}
	listings, err := r.deps.loadersFor(ctx).ListingsByMethodID.Load(r.node.record.ID)
	if err != nil {
		return nil, err
	}
	out := make([]*ChannelListingResolver, 0, len(listings))
	for _, listing := range listings {
		out = append(out, &ChannelListingResolver{deps: r.deps, listing: listing})
	}
	return &out, nil
}

// ExcludedProducts lists the global ids of products the method must
// not deliver. Gated like ChannelListings.
func (r *MethodResolver) ExcludedProducts(ctx context.Context) (*[]graphql.ID, error) {
	if !permission.HasCapability(ctx, permission.ManageShipping) {
		return nil, permission.ErrDenied
	}
	if r.node.external != nil {
		return nil, nil
	}
	ids, err := r.deps.shipping.ListExcludedProductIDs(ctx, r.node.record.ID)
	if err != nil {
		return nil, err
	}
	out := make([]graphql.ID, 0, len(ids))
	for _, id := range ids {
		out = append(out, graphql.ID(gid.Encode("Product", int64(id))))
	}
	return &out, nil
}

func (r *MethodResolver) resolvePrice(ctx context.Context, fromPrecomputed func(*PrecomputedPrices) *money.Money, project func(*shippingdomain.ShippingMethodChannelListing) *money.Money) (*MoneyResolver, error) {
	if r.node.prices != nil {
		if m := fromPrecomputed(r.node.prices); m != nil {
			return &MoneyResolver{m: *m}, nil
		}
		return nil, nil
	}
	if r.channelSlug == nil {
		return nil, nil
	}
	if r.node.external != nil {
		return nil, nil
	}
	key := shippingdomain.MethodChannelKey{MethodID: r.node.record.ID, ChannelSlug: *r.channelSlug}
	thunk := dataloader.Transform(
		r.deps.loadersFor(ctx).ListingByMethodAndChannel.LoadThunk(key),
		func(listing *shippingdomain.ShippingMethodChannelListing) *MoneyResolver {
			if listing == nil {
				return nil
			}
			m := project(listing)
			if m == nil {
				return nil
			}
			return &MoneyResolver{m: *m}
		},
	)
	return thunk()
}

func (r *MethodResolver) orderWeight(bound func(*shippingdomain.ShippingMethod) *float64) *WeightResolver {
	if r.node.external != nil {
		return nil
	}
	w := r.node.record.OrderWeight(bound(r.node.record))
	if w == nil {
		return nil
	}
	converted := weight.Convert(*w, r.deps.weightUnit)
	return &WeightResolver{w: converted}
}
