package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/shipgraph/pkg/money"
	"github.com/smallbiznis/shipgraph/pkg/weight"
	"gorm.io/datatypes"
)

// MethodType determines how a shipping method's applicability is
// evaluated at checkout.
type MethodType string

const (
	MethodTypePrice  MethodType = "price"
	MethodTypeWeight MethodType = "weight"
)

// InclusionType marks a postal code range as served or excluded.
type InclusionType string

const (
	InclusionInclude InclusionType = "include"
	InclusionExclude InclusionType = "exclude"
)

// ShippingZone groups shipping methods by the countries they serve.
// Zones are a dashboard concept and are never exposed to customers.
type ShippingZone struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name        string            `gorm:"not null" json:"name"`
	Description string            `gorm:"type:text" json:"description,omitempty"`
	Default     bool              `gorm:"column:is_default;not null;default:false" json:"default"`
	Countries   []string          `gorm:"serializer:json;type:text" json:"countries"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ShippingZone) TableName() string { return "shipping_zones" }

// ZoneChannel assigns a sales channel to a shipping zone.
type ZoneChannel struct {
	ShippingZoneID snowflake.ID `gorm:"primaryKey" json:"shipping_zone_id"`
	ChannelID      snowflake.ID `gorm:"primaryKey" json:"channel_id"`
}

func (ZoneChannel) TableName() string { return "shipping_zone_channels" }

// ShippingMethod is a delivery option offered within a zone. Weights
// are stored in the unit recorded on the row; conversion to the shop
// default happens at the API boundary.
type ShippingMethod struct {
	ID                  snowflake.ID      `gorm:"primaryKey" json:"id"`
	ShippingZoneID      snowflake.ID      `gorm:"not null;index" json:"shipping_zone_id"`
	Name                string            `gorm:"not null" json:"name"`
	Description         string            `gorm:"type:text" json:"description,omitempty"`
	Type                MethodType        `gorm:"not null" json:"type"`
	MinimumOrderWeight  *float64          `json:"minimum_order_weight,omitempty"`
	MaximumOrderWeight  *float64          `json:"maximum_order_weight,omitempty"`
	WeightUnit          string            `gorm:"not null;default:kg" json:"weight_unit"`
	MinimumDeliveryDays *int32            `json:"minimum_delivery_days,omitempty"`
	MaximumDeliveryDays *int32            `json:"maximum_delivery_days,omitempty"`
	Metadata            datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt           time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ShippingMethod) TableName() string { return "shipping_methods" }

// OrderWeight returns the named bound in the row's stored unit.
func (m *ShippingMethod) OrderWeight(value *float64) *weight.Weight {
	if value == nil {
		return nil
	}
	unit, err := weight.ParseUnit(m.WeightUnit)
	if err != nil {
		unit = weight.Kilogram
	}
	w := weight.New(*value, unit)
	return &w
}

// ShippingMethodChannelListing scopes a method's pricing to one sales
// channel. Amounts are minor units of the listing currency.
type ShippingMethodChannelListing struct {
	ID                      snowflake.ID `gorm:"primaryKey" json:"id"`
	ShippingMethodID        snowflake.ID `gorm:"not null;index:idx_listing_method_channel,unique" json:"shipping_method_id"`
	ChannelID               snowflake.ID `gorm:"not null;index:idx_listing_method_channel,unique" json:"channel_id"`
	Currency                string       `gorm:"type:char(3);not null" json:"currency"`
	PriceAmount             int64        `gorm:"not null" json:"price_amount"`
	MinimumOrderPriceAmount *int64       `json:"minimum_order_price_amount,omitempty"`
	MaximumOrderPriceAmount *int64       `json:"maximum_order_price_amount,omitempty"`
	CreatedAt               time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt               time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ShippingMethodChannelListing) TableName() string {
	return "shipping_method_channel_listings"
}

func (l *ShippingMethodChannelListing) Price() money.Money {
	return money.New(l.PriceAmount, l.Currency)
}

func (l *ShippingMethodChannelListing) MinimumOrderPrice() *money.Money {
	if l.MinimumOrderPriceAmount == nil {
		return nil
	}
	p := money.New(*l.MinimumOrderPriceAmount, l.Currency)
	return &p
}

func (l *ShippingMethodChannelListing) MaximumOrderPrice() *money.Money {
	if l.MaximumOrderPriceAmount == nil {
		return nil
	}
	p := money.New(*l.MaximumOrderPriceAmount, l.Currency)
	return &p
}

// PostalCodeRule includes or excludes a postal address range for a
// shipping method.
type PostalCodeRule struct {
	ID               snowflake.ID  `gorm:"primaryKey" json:"id"`
	ShippingMethodID snowflake.ID  `gorm:"not null;index" json:"shipping_method_id"`
	Start            string        `gorm:"not null" json:"start"`
	End              string        `json:"end,omitempty"`
	InclusionType    InclusionType `gorm:"not null;default:exclude" json:"inclusion_type"`
}

func (PostalCodeRule) TableName() string { return "shipping_method_postal_code_rules" }

// ExcludedProduct links a shipping method to a product it must not
// deliver. Products themselves live outside this service.
type ExcludedProduct struct {
	ShippingMethodID snowflake.ID `gorm:"primaryKey" json:"shipping_method_id"`
	ProductID        snowflake.ID `gorm:"primaryKey" json:"product_id"`
}

func (ExcludedProduct) TableName() string { return "shipping_method_excluded_products" }

// ExternalMethodData describes a shipping rate quoted by a third-party
// app. It has no backing rows in local storage.
type ExternalMethodData struct {
	ID                  string       `json:"id"`
	Name                string       `json:"name"`
	Price               *money.Money `json:"price,omitempty"`
	MaximumDeliveryDays *int32       `json:"maximum_delivery_days,omitempty"`
}
