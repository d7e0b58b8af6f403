package migration

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/gorm"

	channeldomain "github.com/smallbiznis/shipgraph/internal/channel/domain"
	"github.com/smallbiznis/shipgraph/internal/config"
	referencedomain "github.com/smallbiznis/shipgraph/internal/reference/domain"
	"github.com/smallbiznis/shipgraph/internal/seed"
	shippingdomain "github.com/smallbiznis/shipgraph/internal/shipping/domain"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, node *snowflake.Node) error {
		if strings.EqualFold(cfg.DBType, "postgres") {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite and mysql are development dialects; let gorm
			// derive the schema from the models.
			if err := conn.AutoMigrate(
				&referencedomain.Country{},
				&channeldomain.Channel{},
				&shippingdomain.ShippingZone{},
				&shippingdomain.ZoneChannel{},
				&shippingdomain.ShippingMethod{},
				&shippingdomain.ShippingMethodChannelListing{},
				&shippingdomain.PostalCodeRule{},
				&shippingdomain.ExcludedProduct{},
			); err != nil {
				return err
			}
		}

		if err := seed.EnsureCountries(conn); err != nil {
			return err
		}
		if cfg.SeedDemoData {
			return seed.EnsureDemoData(conn, node)
		}
		return nil
	}),
)
