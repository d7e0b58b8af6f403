package schema

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	channeldomain "github.com/smallbiznis/shipgraph/internal/channel/domain"
	"github.com/smallbiznis/shipgraph/internal/config"
	"github.com/smallbiznis/shipgraph/internal/graphql/loaders"
	"github.com/smallbiznis/shipgraph/internal/graphql/resolver"
	shippingdomain "github.com/smallbiznis/shipgraph/internal/shipping/domain"
)

type execShippingRepo struct {
	shippingdomain.Repository

	mu           sync.Mutex
	methodCalls  [][]shippingdomain.ZoneChannelKey
	listingCalls [][]shippingdomain.MethodChannelKey

	methods  map[shippingdomain.ZoneChannelKey][]*shippingdomain.ShippingMethod
	listings map[shippingdomain.MethodChannelKey]*shippingdomain.ShippingMethodChannelListing
	zones    []*shippingdomain.ShippingZone
}

func (r *execShippingRepo) ListZones(ctx context.Context) ([]*shippingdomain.ShippingZone, error) {
	return r.zones, nil
}

func (r *execShippingRepo) ListMethodsByZoneAndChannel(ctx context.Context, keys []shippingdomain.ZoneChannelKey) (map[shippingdomain.ZoneChannelKey][]*shippingdomain.ShippingMethod, error) {
	r.mu.Lock()
	r.methodCalls = append(r.methodCalls, append([]shippingdomain.ZoneChannelKey(nil), keys...))
	r.mu.Unlock()

	out := make(map[shippingdomain.ZoneChannelKey][]*shippingdomain.ShippingMethod)
	for _, key := range keys {
		out[key] = r.methods[key]
		if out[key] == nil {
			out[key] = []*shippingdomain.ShippingMethod{}
		}
	}
	return out, nil
}

func (r *execShippingRepo) FindListingsByMethodAndChannel(ctx context.Context, keys []shippingdomain.MethodChannelKey) (map[shippingdomain.MethodChannelKey]*shippingdomain.ShippingMethodChannelListing, error) {
	r.mu.Lock()
	r.listingCalls = append(r.listingCalls, append([]shippingdomain.MethodChannelKey(nil), keys...))
	r.mu.Unlock()

	out := make(map[shippingdomain.MethodChannelKey]*shippingdomain.ShippingMethodChannelListing)
	for _, key := range keys {
		if row, ok := r.listings[key]; ok {
			out[key] = row
		}
	}
	return out, nil
}

type execService struct {
	shippingdomain.Service

	repo *execShippingRepo
}

func (s *execService) ListZones(ctx context.Context) ([]*shippingdomain.ShippingZone, error) {
	return s.repo.ListZones(ctx)
}

type execChannelRepo struct {
	channeldomain.Repository
}

func TestQueryBatchesAcrossZones(t *testing.T) {
	key := func(zone int64) shippingdomain.ZoneChannelKey {
		return shippingdomain.ZoneChannelKey{ZoneID: snowflake.ID(zone), ChannelSlug: "default"}
	}
	repo := &execShippingRepo{
		zones: []*shippingdomain.ShippingZone{
			{ID: 1, Name: "Europe", Countries: []string{"DE", "FR"}},
			{ID: 2, Name: "Americas", Countries: []string{"US"}},
		},
		methods: map[shippingdomain.ZoneChannelKey][]*shippingdomain.ShippingMethod{
			key(1): {{ID: 10, ShippingZoneID: 1, Name: "EU Standard", Type: shippingdomain.MethodTypePrice}},
			key(2): {{ID: 20, ShippingZoneID: 2, Name: "US Standard", Type: shippingdomain.MethodTypePrice}},
		},
		listings: map[shippingdomain.MethodChannelKey]*shippingdomain.ShippingMethodChannelListing{
			{MethodID: 10, ChannelSlug: "default"}: {ID: 100, ShippingMethodID: 10, Currency: "EUR", PriceAmount: 499},
			{MethodID: 20, ChannelSlug: "default"}: {ID: 200, ShippingMethodID: 20, Currency: "USD", PriceAmount: 599},
		},
	}

	root := resolver.New(resolver.Params{
		Log:      zap.NewNop(),
		Config:   config.Config{DefaultWeightUnit: "kg"},
		Service:  &execService{repo: repo},
		Shipping: repo,
		Channels: &execChannelRepo{},
	})
	s, err := New(root)
	require.NoError(t, err)

	ctx := context.Background()
	ctx = loaders.Attach(ctx, loaders.New(ctx, repo, &execChannelRepo{}, nil))

	resp := s.Exec(ctx, `{
		shippingZones(channel: "default") {
			name
			shippingMethods {
				name
				price { amount currency }
			}
		}
	}`, "", nil)
	require.Empty(t, resp.Errors)

	var data struct {
		ShippingZones []struct {
			Name            string
			ShippingMethods []struct {
				Name  string
				Price *struct {
					Amount   float64
					Currency string
				}
			}
		}
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.Len(t, data.ShippingZones, 2)
	require.Len(t, data.ShippingZones[0].ShippingMethods, 1)
	require.NotNil(t, data.ShippingZones[0].ShippingMethods[0].Price)
	assert.Equal(t, 4.99, data.ShippingZones[0].ShippingMethods[0].Price.Amount)
	assert.Equal(t, "USD", data.ShippingZones[1].ShippingMethods[0].Price.Currency)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	require.Len(t, repo.methodCalls, 1, "both zones share one method batch")
	assert.Len(t, repo.methodCalls[0], 2)
	require.Len(t, repo.listingCalls, 1, "both methods share one listing batch")
	assert.Len(t, repo.listingCalls[0], 2)
}
