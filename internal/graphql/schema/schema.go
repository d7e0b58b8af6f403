// Package schema holds the SDL and builds the executable schema.
package schema

import (
	"github.com/graph-gophers/graphql-go"
	"go.uber.org/fx"

	"github.com/smallbiznis/shipgraph/internal/graphql/resolver"
)

// SDL is the service's schema definition. Prices are scoped by the
// channel argument on the query fields; without it the price-bearing
// fields resolve to null.
const SDL = `
schema {
	query: Query
}

type Query {
	"Look up a shipping zone by its global id."
	shippingZone(id: ID!, channel: String): ShippingZone

	"List every shipping zone."
	shippingZones(channel: String): [ShippingZone!]!

	"""
	List known countries. With inShippingZones: true only countries
	covered by at least one zone are returned; with false, only the
	uncovered remainder.
	"""
	countries(inShippingZones: Boolean): [CountryDisplay!]!
}

enum ShippingMethodTypeEnum {
	PRICE
	WEIGHT
}

enum PostalCodeRuleInclusionTypeEnum {
	INCLUDE
	EXCLUDE
}

enum WeightUnitsEnum {
	G
	KG
	LB
	OZ
	TONNE
}

type ShippingZone {
	id: ID!
	name: String!
	description: String
	default: Boolean!
	countries: [CountryDisplay!]!
	shippingMethods: [ShippingMethod!]
	channels: [Channel!]!
	priceRange: MoneyRange
}

type ShippingMethod {
	id: ID!
	name: String!
	description: String
	type: ShippingMethodTypeEnum
	price: Money
	minimumOrderPrice: Money
	maximumOrderPrice: Money
	minimumOrderWeight: Weight
	maximumOrderWeight: Weight
	minimumDeliveryDays: Int
	maximumDeliveryDays: Int
	postalCodeRules: [ShippingMethodPostalCodeRule!]
	channelListings: [ShippingMethodChannelListing!]
	excludedProducts: [ID!]
}

type ShippingMethodChannelListing {
	id: ID!
	channel: Channel!
	price: Money!
	minimumOrderPrice: Money
	maximumOrderPrice: Money
}

type ShippingMethodPostalCodeRule {
	id: ID!
	start: String!
	end: String
	inclusionType: PostalCodeRuleInclusionTypeEnum!
}

type Channel {
	id: ID!
	name: String!
	slug: String!
	currencyCode: String!
	isActive: Boolean!
}

type CountryDisplay {
	code: String!
	country: String!
}

"Amount in major units with two minor-unit digits."
type Money {
	amount: Float!
	currency: String!
}

type MoneyRange {
	start: Money
	stop: Money
}

type Weight {
	value: Float!
	unit: WeightUnitsEnum!
}
`

// New parses the SDL against the root resolver.
func New(root *resolver.Resolver) (*graphql.Schema, error) {
	return graphql.ParseSchema(SDL, root, graphql.UseStringDescriptions())
}

var Module = fx.Module("graphql",
	fx.Provide(resolver.New),
	fx.Provide(New),
)
