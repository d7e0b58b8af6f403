package resolver

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	channeldomain "github.com/smallbiznis/shipgraph/internal/channel/domain"
	"github.com/smallbiznis/shipgraph/internal/permission"
	shippingdomain "github.com/smallbiznis/shipgraph/internal/shipping/domain"
	"github.com/smallbiznis/shipgraph/pkg/money"
	"github.com/smallbiznis/shipgraph/pkg/weight"
)

type stubShippingRepo struct {
	shippingdomain.Repository

	listingCalls  int
	listings      map[shippingdomain.MethodChannelKey]*shippingdomain.ShippingMethodChannelListing
	ruleCalls     int
	rules         map[snowflake.ID][]*shippingdomain.PostalCodeRule
	excludedCalls int
	excluded      map[snowflake.ID][]snowflake.ID
}

func (s *stubShippingRepo) FindListingsByMethodAndChannel(ctx context.Context, keys []shippingdomain.MethodChannelKey) (map[shippingdomain.MethodChannelKey]*shippingdomain.ShippingMethodChannelListing, error) {
	s.listingCalls++
	out := make(map[shippingdomain.MethodChannelKey]*shippingdomain.ShippingMethodChannelListing)
	for _, key := range keys {
		if row, ok := s.listings[key]; ok {
			out[key] = row
		}
	}
	return out, nil
}

func (s *stubShippingRepo) ListPostalCodeRulesByMethodIDs(ctx context.Context, methodIDs []snowflake.ID) (map[snowflake.ID][]*shippingdomain.PostalCodeRule, error) {
	s.ruleCalls++
	out := make(map[snowflake.ID][]*shippingdomain.PostalCodeRule)
	for _, id := range methodIDs {
		out[id] = s.rules[id]
		if out[id] == nil {
			out[id] = []*shippingdomain.PostalCodeRule{}
		}
	}
	return out, nil
}

func (s *stubShippingRepo) ListExcludedProductIDs(ctx context.Context, methodID snowflake.ID) ([]snowflake.ID, error) {
	s.excludedCalls++
	return s.excluded[methodID], nil
}

type stubChannelRepo struct {
	channeldomain.Repository
}

func testDeps(repo *stubShippingRepo) *deps {
	return &deps{
		log:        zap.NewNop(),
		shipping:   repo,
		channels:   &stubChannelRepo{},
		weightUnit: weight.Kilogram,
	}
}

func strptr(s string) *string { return &s }

func TestPriceWithoutChannelSkipsLoader(t *testing.T) {
	repo := &stubShippingRepo{}
	method := &shippingdomain.ShippingMethod{ID: 5, Name: "Standard", Type: shippingdomain.MethodTypePrice}
	r := NewLocalMethod(testDeps(repo), method, nil)

	price, err := r.Price(context.Background())
	require.NoError(t, err)
	assert.Nil(t, price)
	assert.Zero(t, repo.listingCalls, "no channel scope means no listing lookup")
}

func TestPriceProjectsChannelListing(t *testing.T) {
	minimum := int64(500)
	repo := &stubShippingRepo{
		listings: map[shippingdomain.MethodChannelKey]*shippingdomain.ShippingMethodChannelListing{
			{MethodID: 5, ChannelSlug: "default"}: {
				ID:                      50,
				ShippingMethodID:        5,
				Currency:                "USD",
				PriceAmount:             1099,
				MinimumOrderPriceAmount: &minimum,
			},
		},
	}
	method := &shippingdomain.ShippingMethod{ID: 5, Name: "Standard", Type: shippingdomain.MethodTypePrice}
	r := NewLocalMethod(testDeps(repo), method, strptr("default"))
	ctx := context.Background()

	price, err := r.Price(ctx)
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.Equal(t, 10.99, price.Amount())
	assert.Equal(t, "USD", price.Currency())

	min, err := r.MinimumOrderPrice(ctx)
	require.NoError(t, err)
	require.NotNil(t, min)
	assert.Equal(t, 5.0, min.Amount())

	// No maximum bound on the listing stays absent.
	max, err := r.MaximumOrderPrice(ctx)
	require.NoError(t, err)
	assert.Nil(t, max)
}

func TestPriceAbsentWhenOtherChannelOnly(t *testing.T) {
	repo := &stubShippingRepo{
		listings: map[shippingdomain.MethodChannelKey]*shippingdomain.ShippingMethodChannelListing{
			{MethodID: 5, ChannelSlug: "pos"}: {ID: 51, ShippingMethodID: 5, Currency: "EUR", PriceAmount: 899},
		},
	}
	method := &shippingdomain.ShippingMethod{ID: 5, Name: "Standard"}
	r := NewLocalMethod(testDeps(repo), method, strptr("default"))

	price, err := r.Price(context.Background())
	require.NoError(t, err)
	assert.Nil(t, price, "listing in another channel must not leak into this scope")
}

func TestPrecomputedPriceSkipsLoader(t *testing.T) {
	repo := &stubShippingRepo{}
	method := &shippingdomain.ShippingMethod{ID: 5, Name: "Standard"}
	quoted := money.New(1500, "USD")
	r := NewPrecomputedMethod(testDeps(repo), method, &PrecomputedPrices{Price: &quoted}, strptr("default"))

	price, err := r.Price(context.Background())
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.Equal(t, 15.0, price.Amount())
	assert.Zero(t, repo.listingCalls)
}

func TestExternalMethod(t *testing.T) {
	repo := &stubShippingRepo{}
	quoted := money.New(750, "USD")
	r := NewExternalMethod(testDeps(repo), &shippingdomain.ExternalMethodData{
		ID:    "app:some-carrier:express",
		Name:  "Carrier Express",
		Price: &quoted,
	})
	ctx := permission.WithCapabilities(context.Background(), permission.ManageShipping)

	assert.Equal(t, "app:some-carrier:express", string(r.ID()), "external ids pass through unencoded")

	price, err := r.Price(ctx)
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.Equal(t, 7.5, price.Amount())

	rules, err := r.PostalCodeRules(ctx)
	require.NoError(t, err)
	assert.Nil(t, rules)

	listings, err := r.ChannelListings(ctx)
	require.NoError(t, err)
	assert.Nil(t, listings)

	assert.Zero(t, repo.listingCalls)
	assert.Zero(t, repo.ruleCalls)
	assert.Zero(t, repo.excludedCalls)
}

func TestGatedFieldsDenyWithoutCapability(t *testing.T) {
	repo := &stubShippingRepo{}
	method := &shippingdomain.ShippingMethod{ID: 5, Name: "Standard"}
	r := NewLocalMethod(testDeps(repo), method, nil)
	ctx := context.Background()

	_, err := r.ChannelListings(ctx)
	assert.ErrorIs(t, err, permission.ErrDenied)

	_, err = r.ExcludedProducts(ctx)
	assert.ErrorIs(t, err, permission.ErrDenied)

	assert.Zero(t, repo.excludedCalls, "denied before any store call")
}

func TestExcludedProductsEncodeGlobalIDs(t *testing.T) {
	repo := &stubShippingRepo{
		excluded: map[snowflake.ID][]snowflake.ID{5: {42}},
	}
	method := &shippingdomain.ShippingMethod{ID: 5, Name: "Standard"}
	r := NewLocalMethod(testDeps(repo), method, nil)
	ctx := permission.WithCapabilities(context.Background(), permission.ManageShipping)

	ids, err := r.ExcludedProducts(ctx)
	require.NoError(t, err)
	require.NotNil(t, ids)
	require.Len(t, *ids, 1)
	// base64("Product:42")
	assert.Equal(t, "UHJvZHVjdDo0Mg==", string((*ids)[0]))
}

func TestOrderWeightConvertsToDefaultUnit(t *testing.T) {
	lower := 2.0
	method := &shippingdomain.ShippingMethod{
		ID:                 5,
		Name:               "Heavy freight",
		Type:               shippingdomain.MethodTypeWeight,
		MinimumOrderWeight: &lower,
		WeightUnit:         "lb",
	}
	r := NewLocalMethod(testDeps(&stubShippingRepo{}), method, nil)

	w := r.MinimumOrderWeight()
	require.NotNil(t, w)
	assert.Equal(t, "KG", w.Unit())
	assert.InDelta(t, 0.90718474, w.Value(), 1e-9)

	assert.Nil(t, r.MaximumOrderWeight(), "unset bound stays absent")
}
