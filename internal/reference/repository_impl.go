package reference

import (
	"context"

	"github.com/smallbiznis/shipgraph/internal/reference/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) ListCountries(ctx context.Context) ([]domain.Country, error) {
	var countries []domain.Country
	err := r.db.WithContext(ctx).
		Raw(`SELECT code, name FROM countries ORDER BY name`).
		Scan(&countries).Error
	if err != nil {
		return nil, err
	}
	return countries, nil
}

func (r *repository) ListCountryCodes(ctx context.Context) ([]string, error) {
	var codes []string
	err := r.db.WithContext(ctx).
		Raw(`SELECT code FROM countries ORDER BY code`).
		Scan(&codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}
