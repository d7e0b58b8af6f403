package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/shipgraph/internal/channel/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) ListByIDs(ctx context.Context, ids []snowflake.ID) (map[snowflake.ID]*domain.Channel, error) {
	out := make(map[snowflake.ID]*domain.Channel, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var channels []*domain.Channel
	err := r.db.WithContext(ctx).
		Raw(`SELECT id, name, slug, currency_code, is_active, metadata, created_at, updated_at
		     FROM channels WHERE id IN ?`, ids).
		Scan(&channels).Error
	if err != nil {
		return nil, err
	}

	for _, ch := range channels {
		out[ch.ID] = ch
	}
	return out, nil
}

func (r *repo) ListByZoneIDs(ctx context.Context, zoneIDs []snowflake.ID) (map[snowflake.ID][]*domain.Channel, error) {
	out := make(map[snowflake.ID][]*domain.Channel, len(zoneIDs))
	for _, id := range zoneIDs {
		out[id] = []*domain.Channel{}
	}
	if len(zoneIDs) == 0 {
		return out, nil
	}

	type row struct {
		domain.Channel
		ZoneID snowflake.ID `gorm:"column:zone_id"`
	}

	var rows []row
	err := r.db.WithContext(ctx).
		Raw(`SELECT c.id, c.name, c.slug, c.currency_code, c.is_active, c.metadata,
		            c.created_at, c.updated_at, zc.shipping_zone_id AS zone_id
		     FROM channels c
		     JOIN shipping_zone_channels zc ON zc.channel_id = c.id
		     WHERE zc.shipping_zone_id IN ?
		     ORDER BY c.slug`, zoneIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for i := range rows {
		ch := rows[i].Channel
		out[rows[i].ZoneID] = append(out[rows[i].ZoneID], &ch)
	}
	return out, nil
}

func (r *repo) FindBySlug(ctx context.Context, slug string) (*domain.Channel, error) {
	var channel domain.Channel
	err := r.db.WithContext(ctx).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&channel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &channel, nil
}
