package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrNotFound  = errors.New("shipping_not_found")
	ErrInvalidID = errors.New("invalid_id")
)

// Service is the read surface the GraphQL layer talks to for zone
// queries and country coverage.
type Service interface {
	ListZones(ctx context.Context) ([]*ShippingZone, error)
	GetZone(ctx context.Context, id snowflake.ID) (*ShippingZone, error)

	// CountryCodes computes which country codes shipping zones cover.
	// With a nil filter it returns every known code; with true only
	// the covered codes; with false the uncovered remainder.
	CountryCodes(ctx context.Context, inShippingZones *bool) ([]string, error)
}
