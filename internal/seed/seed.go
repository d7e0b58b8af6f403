// Package seed bootstraps reference data on startup: the country
// table always, demo channels and zones only when configured.
package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	channeldomain "github.com/smallbiznis/shipgraph/internal/channel/domain"
	"github.com/smallbiznis/shipgraph/internal/reference"
	shippingdomain "github.com/smallbiznis/shipgraph/internal/shipping/domain"
	"github.com/smallbiznis/shipgraph/pkg/db"
)

// EnsureCountries fills the country reference table from the embedded
// ISO 3166-1 list. Existing rows are left untouched.
func EnsureCountries(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	countries := reference.AllCountries()
	return conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, country := range countries {
			err := tx.Create(&country).Error
			if err != nil && !db.IsDuplicateKeyErr(err) {
				return err
			}
		}
		return nil
	})
}

// EnsureDemoData seeds a channel, a zone covering a few countries and
// one priced method, so a fresh install answers queries immediately.
func EnsureDemoData(conn *gorm.DB, node *snowflake.Node) error {
	if conn == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing shippingdomain.ShippingZone
		err := tx.Where("is_default = ?", true).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		channel := channeldomain.Channel{
			ID:           node.Generate(),
			Name:         "Default Channel",
			Slug:         slug.Make("Default Channel"),
			CurrencyCode: "USD",
			IsActive:     true,
		}
		if err := tx.Create(&channel).Error; err != nil && !db.IsDuplicateKeyErr(err) {
			return err
		}

		zone := shippingdomain.ShippingZone{
			ID:        node.Generate(),
			Name:      "Default Zone",
			Default:   true,
			Countries: []string{"US", "CA", "MX"},
		}
		if err := tx.Create(&zone).Error; err != nil {
			return err
		}
		if err := tx.Create(&shippingdomain.ZoneChannel{
			ShippingZoneID: zone.ID,
			ChannelID:      channel.ID,
		}).Error; err != nil {
			return err
		}

		method := shippingdomain.ShippingMethod{
			ID:             node.Generate(),
			ShippingZoneID: zone.ID,
			Name:           "Standard",
			Type:           shippingdomain.MethodTypePrice,
			WeightUnit:     "kg",
		}
		if err := tx.Create(&method).Error; err != nil {
			return err
		}

		listing := shippingdomain.ShippingMethodChannelListing{
			ID:               node.Generate(),
			ShippingMethodID: method.ID,
			ChannelID:        channel.ID,
			Currency:         channel.CurrencyCode,
			PriceAmount:      999,
		}
		return tx.Create(&listing).Error
	})
}
