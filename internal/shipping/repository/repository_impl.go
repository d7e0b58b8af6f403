package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/shipgraph/internal/shipping/domain"
	"github.com/smallbiznis/shipgraph/pkg/money"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) ListZones(ctx context.Context) ([]*domain.ShippingZone, error) {
	var zones []*domain.ShippingZone
	err := r.db.WithContext(ctx).
		Order("name, id").
		Find(&zones).Error
	if err != nil {
		return nil, err
	}
	return zones, nil
}

func (r *repo) FindZoneByID(ctx context.Context, id snowflake.ID) (*domain.ShippingZone, error) {
	var zone domain.ShippingZone
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&zone).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &zone, nil
}

// IterateZones pages through zones with an id keyset so coverage work
// holds at most batchSize rows at a time.
func (r *repo) IterateZones(ctx context.Context, batchSize int, fn func(*domain.ShippingZone) error) error {
	if batchSize <= 0 {
		batchSize = 100
	}

	var lastID snowflake.ID
	for {
		var zones []*domain.ShippingZone
		err := r.db.WithContext(ctx).
			Where("id > ?", lastID).
			Order("id").
			Limit(batchSize).
			Find(&zones).Error
		if err != nil {
			return err
		}
		if len(zones) == 0 {
			return nil
		}
		for _, zone := range zones {
			if err := fn(zone); err != nil {
				return err
			}
		}
		lastID = zones[len(zones)-1].ID
		if len(zones) < batchSize {
			return nil
		}
	}
}

func (r *repo) ListMethodsByZoneIDs(ctx context.Context, zoneIDs []snowflake.ID) (map[snowflake.ID][]*domain.ShippingMethod, error) {
	out := make(map[snowflake.ID][]*domain.ShippingMethod, len(zoneIDs))
	for _, id := range zoneIDs {
		out[id] = []*domain.ShippingMethod{}
	}
	if len(zoneIDs) == 0 {
		return out, nil
	}

	var methods []*domain.ShippingMethod
	err := r.db.WithContext(ctx).
		Where("shipping_zone_id IN ?", zoneIDs).
		Order("name, id").
		Find(&methods).Error
	if err != nil {
		return nil, err
	}

	for _, m := range methods {
		out[m.ShippingZoneID] = append(out[m.ShippingZoneID], m)
	}
	return out, nil
}

func (r *repo) ListMethodsByZoneAndChannel(ctx context.Context, keys []domain.ZoneChannelKey) (map[domain.ZoneChannelKey][]*domain.ShippingMethod, error) {
	out := make(map[domain.ZoneChannelKey][]*domain.ShippingMethod, len(keys))
	for _, key := range keys {
		out[key] = []*domain.ShippingMethod{}
	}
	if len(keys) == 0 {
		return out, nil
	}

	zoneIDs := make([]snowflake.ID, 0, len(keys))
	slugs := make([]string, 0, len(keys))
	for _, key := range keys {
		zoneIDs = append(zoneIDs, key.ZoneID)
		slugs = append(slugs, key.ChannelSlug)
	}

	type row struct {
		domain.ShippingMethod
		ChannelSlug string `gorm:"column:channel_slug"`
	}

	var rows []row
	err := r.db.WithContext(ctx).
		Raw(`SELECT m.*, c.slug AS channel_slug
		     FROM shipping_methods m
		     JOIN shipping_method_channel_listings l ON l.shipping_method_id = m.id
		     JOIN channels c ON c.id = l.channel_id
		     WHERE m.shipping_zone_id IN ? AND c.slug IN ?
		     ORDER BY m.name, m.id`, zoneIDs, slugs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	// A method with several listings in channels sharing a slug must
	// still appear once per key.
	seen := make(map[domain.ZoneChannelKey]map[snowflake.ID]struct{}, len(keys))
	for i := range rows {
		key := domain.ZoneChannelKey{ZoneID: rows[i].ShippingZoneID, ChannelSlug: rows[i].ChannelSlug}
		if _, requested := out[key]; !requested {
			continue
		}
		if seen[key] == nil {
			seen[key] = make(map[snowflake.ID]struct{})
		}
		if _, dup := seen[key][rows[i].ID]; dup {
			continue
		}
		seen[key][rows[i].ID] = struct{}{}
		m := rows[i].ShippingMethod
		out[key] = append(out[key], &m)
	}
	return out, nil
}

func (r *repo) ListListingsByMethodIDs(ctx context.Context, methodIDs []snowflake.ID) (map[snowflake.ID][]*domain.ShippingMethodChannelListing, error) {
	out := make(map[snowflake.ID][]*domain.ShippingMethodChannelListing, len(methodIDs))
	for _, id := range methodIDs {
		out[id] = []*domain.ShippingMethodChannelListing{}
	}
	if len(methodIDs) == 0 {
		return out, nil
	}

	var listings []*domain.ShippingMethodChannelListing
	err := r.db.WithContext(ctx).
		Where("shipping_method_id IN ?", methodIDs).
		Order("channel_id, id").
		Find(&listings).Error
	if err != nil {
		return nil, err
	}

	for _, l := range listings {
		out[l.ShippingMethodID] = append(out[l.ShippingMethodID], l)
	}
	return out, nil
}

func (r *repo) FindListingsByMethodAndChannel(ctx context.Context, keys []domain.MethodChannelKey) (map[domain.MethodChannelKey]*domain.ShippingMethodChannelListing, error) {
	out := make(map[domain.MethodChannelKey]*domain.ShippingMethodChannelListing, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	methodIDs := make([]snowflake.ID, 0, len(keys))
	slugs := make([]string, 0, len(keys))
	requested := make(map[domain.MethodChannelKey]struct{}, len(keys))
	for _, key := range keys {
		methodIDs = append(methodIDs, key.MethodID)
		slugs = append(slugs, key.ChannelSlug)
		requested[key] = struct{}{}
	}

	type row struct {
		domain.ShippingMethodChannelListing
		ChannelSlug string `gorm:"column:channel_slug"`
	}

	var rows []row
	err := r.db.WithContext(ctx).
		Raw(`SELECT l.*, c.slug AS channel_slug
		     FROM shipping_method_channel_listings l
		     JOIN channels c ON c.id = l.channel_id
		     WHERE l.shipping_method_id IN ? AND c.slug IN ?`, methodIDs, slugs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for i := range rows {
		key := domain.MethodChannelKey{MethodID: rows[i].ShippingMethodID, ChannelSlug: rows[i].ChannelSlug}
		if _, ok := requested[key]; !ok {
			continue
		}
		l := rows[i].ShippingMethodChannelListing
		out[key] = &l
	}
	return out, nil
}

func (r *repo) ListPostalCodeRulesByMethodIDs(ctx context.Context, methodIDs []snowflake.ID) (map[snowflake.ID][]*domain.PostalCodeRule, error) {
	out := make(map[snowflake.ID][]*domain.PostalCodeRule, len(methodIDs))
	for _, id := range methodIDs {
		out[id] = []*domain.PostalCodeRule{}
	}
	if len(methodIDs) == 0 {
		return out, nil
	}

	var rules []*domain.PostalCodeRule
	err := r.db.WithContext(ctx).
		Where("shipping_method_id IN ?", methodIDs).
		Order("id").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}

	for _, rule := range rules {
		out[rule.ShippingMethodID] = append(out[rule.ShippingMethodID], rule)
	}
	return out, nil
}

func (r *repo) ListExcludedProductIDs(ctx context.Context, methodID snowflake.ID) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := r.db.WithContext(ctx).
		Raw(`SELECT product_id FROM shipping_method_excluded_products
		     WHERE shipping_method_id = ? ORDER BY product_id`, methodID).
		Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repo) ZonePriceRange(ctx context.Context, zoneID snowflake.ID, channelSlug string) (*money.Range, error) {
	type row struct {
		MinAmount *int64 `gorm:"column:min_amount"`
		MaxAmount *int64 `gorm:"column:max_amount"`
		Currency  string `gorm:"column:currency"`
	}

	var result row
	err := r.db.WithContext(ctx).
		Raw(`SELECT MIN(l.price_amount) AS min_amount,
		            MAX(l.price_amount) AS max_amount,
		            MAX(l.currency) AS currency
		     FROM shipping_method_channel_listings l
		     JOIN shipping_methods m ON m.id = l.shipping_method_id
		     JOIN channels c ON c.id = l.channel_id
		     WHERE m.shipping_zone_id = ? AND c.slug = ?`, zoneID, channelSlug).
		Scan(&result).Error
	if err != nil {
		return nil, err
	}
	if result.MinAmount == nil || result.MaxAmount == nil {
		return nil, nil
	}
	return &money.Range{
		Start: money.New(*result.MinAmount, result.Currency),
		Stop:  money.New(*result.MaxAmount, result.Currency),
	}, nil
}
