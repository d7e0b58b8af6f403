package resolver

import (
	"context"
	"strings"

	"github.com/graph-gophers/graphql-go"

	channeldomain "github.com/smallbiznis/shipgraph/internal/channel/domain"
	"github.com/smallbiznis/shipgraph/internal/graphql/gid"
	"github.com/smallbiznis/shipgraph/internal/reference"
	shippingdomain "github.com/smallbiznis/shipgraph/internal/shipping/domain"
	"github.com/smallbiznis/shipgraph/pkg/money"
	"github.com/smallbiznis/shipgraph/pkg/weight"
)

// ChannelListingResolver resolves one method's pricing row in one
// sales channel.
type ChannelListingResolver struct {
	deps    *deps
	listing *shippingdomain.ShippingMethodChannelListing
}

func (r *ChannelListingResolver) ID() graphql.ID {
	return graphql.ID(gid.Encode("ShippingMethodChannelListing", int64(r.listing.ID)))
}

// Channel resolves the listing's channel through the by-id loader, so
// listings of many methods share one channel query.
func (r *ChannelListingResolver) Channel(ctx context.Context) (*ChannelResolver, error) {
	ch, err := r.deps.loadersFor(ctx).ChannelByID.Load(r.listing.ChannelID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, channeldomain.ErrNotFound
	}
	return &ChannelResolver{channel: ch}, nil
}

func (r *ChannelListingResolver) Price() *MoneyResolver {
	return &MoneyResolver{m: r.listing.Price()}
}

func (r *ChannelListingResolver) MinimumOrderPrice() *MoneyResolver {
	if m := r.listing.MinimumOrderPrice(); m != nil {
		return &MoneyResolver{m: *m}
	}
	return nil
}

func (r *ChannelListingResolver) MaximumOrderPrice() *MoneyResolver {
	if m := r.listing.MaximumOrderPrice(); m != nil {
		return &MoneyResolver{m: *m}
	}
	return nil
}

// ChannelResolver resolves Channel fields.
type ChannelResolver struct {
	channel *channeldomain.Channel
}

func (r *ChannelResolver) ID() graphql.ID {
	return graphql.ID(gid.Encode("Channel", int64(r.channel.ID)))
}

func (r *ChannelResolver) Name() string         { return r.channel.Name }
func (r *ChannelResolver) Slug() string         { return r.channel.Slug }
func (r *ChannelResolver) CurrencyCode() string { return r.channel.CurrencyCode }
func (r *ChannelResolver) IsActive() bool       { return r.channel.IsActive }

// PostalCodeRuleResolver resolves one include/exclude postal range.
type PostalCodeRuleResolver struct {
	rule *shippingdomain.PostalCodeRule
}

func (r *PostalCodeRuleResolver) ID() graphql.ID {
	return graphql.ID(gid.Encode("ShippingMethodPostalCodeRule", int64(r.rule.ID)))
}

func (r *PostalCodeRuleResolver) Start() string { return r.rule.Start }

func (r *PostalCodeRuleResolver) End() *string {
	if r.rule.End == "" {
		return nil
	}
	return &r.rule.End
}

func (r *PostalCodeRuleResolver) InclusionType() string {
	return strings.ToUpper(string(r.rule.InclusionType))
}

// CountryDisplayResolver pairs a country code with its display name.
type CountryDisplayResolver struct {
	code string
}

func (r *CountryDisplayResolver) Code() string { return r.code }

func (r *CountryDisplayResolver) Country() string {
	return reference.CountryName(r.code)
}

// MoneyResolver exposes an amount in major units with two minor-unit
// digits, matching how listings store prices.
type MoneyResolver struct {
	m money.Money
}

func (r *MoneyResolver) Amount() float64 { return float64(r.m.Amount) / 100 }
func (r *MoneyResolver) Currency() string { return r.m.Currency }

// MoneyRangeResolver resolves an inclusive price range.
type MoneyRangeResolver struct {
	r money.Range
}

func (r *MoneyRangeResolver) Start() *MoneyResolver { return &MoneyResolver{m: r.r.Start} }
func (r *MoneyRangeResolver) Stop() *MoneyResolver  { return &MoneyResolver{m: r.r.Stop} }

// WeightResolver resolves a weight already converted to the shop's
// default unit.
type WeightResolver struct {
	w weight.Weight
}

func (r *WeightResolver) Value() float64 { return r.w.Value }

func (r *WeightResolver) Unit() string {
	return strings.ToUpper(string(r.w.Unit))
}
