package domain

import "context"

type Repository interface {
	ListCountries(ctx context.Context) ([]Country, error)
	ListCountryCodes(ctx context.Context) ([]string, error)
}
