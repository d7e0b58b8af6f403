package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/smallbiznis/shipgraph/internal/channel/domain"
	shippingdomain "github.com/smallbiznis/shipgraph/internal/shipping/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = conn.AutoMigrate(
		&domain.Channel{},
		&shippingdomain.ShippingZone{},
		&shippingdomain.ZoneChannel{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func seedChannel(t *testing.T, conn *gorm.DB, id snowflake.ID, slug string, active bool) *domain.Channel {
	t.Helper()
	ch := &domain.Channel{ID: id, Name: slug, Slug: slug, CurrencyCode: "USD", IsActive: active}
	require.NoError(t, conn.Create(ch).Error)
	return ch
}

func TestListByIDs(t *testing.T) {
	conn := newTestDB(t)
	repo := Provide(conn)
	ctx := context.Background()

	seedChannel(t, conn, 1, "webstore", true)
	seedChannel(t, conn, 2, "pos", true)

	out, err := repo.ListByIDs(ctx, []snowflake.ID{1, 3})
	require.NoError(t, err)

	require.NotNil(t, out[1])
	assert.Equal(t, "webstore", out[1].Slug)
	_, ok := out[3]
	assert.False(t, ok, "unknown ids are simply absent")
}

func TestListByZoneIDs(t *testing.T) {
	conn := newTestDB(t)
	repo := Provide(conn)
	ctx := context.Background()

	webstore := seedChannel(t, conn, 1, "webstore", true)
	pos := seedChannel(t, conn, 2, "pos", true)
	zone := &shippingdomain.ShippingZone{ID: 10, Name: "Europe"}
	require.NoError(t, conn.Create(zone).Error)
	bare := &shippingdomain.ShippingZone{ID: 11, Name: "Unassigned"}
	require.NoError(t, conn.Create(bare).Error)
	require.NoError(t, conn.Create(&shippingdomain.ZoneChannel{ShippingZoneID: zone.ID, ChannelID: webstore.ID}).Error)
	require.NoError(t, conn.Create(&shippingdomain.ZoneChannel{ShippingZoneID: zone.ID, ChannelID: pos.ID}).Error)

	out, err := repo.ListByZoneIDs(ctx, []snowflake.ID{zone.ID, bare.ID})
	require.NoError(t, err)

	require.Len(t, out[zone.ID], 2)
	assert.Equal(t, "pos", out[zone.ID][0].Slug, "channels come back slug-ordered")

	got, ok := out[bare.ID]
	require.True(t, ok)
	assert.NotNil(t, got)
	assert.Empty(t, got, "zone without channels yields an empty list")
}

func TestFindBySlug(t *testing.T) {
	conn := newTestDB(t)
	repo := Provide(conn)
	ctx := context.Background()

	seedChannel(t, conn, 1, "webstore", true)
	seedChannel(t, conn, 2, "legacy", false)

	ch, err := repo.FindBySlug(ctx, "webstore")
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(1), ch.ID)

	_, err = repo.FindBySlug(ctx, "legacy")
	assert.ErrorIs(t, err, domain.ErrNotFound, "inactive channels do not resolve")

	_, err = repo.FindBySlug(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
