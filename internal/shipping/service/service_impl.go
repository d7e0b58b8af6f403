package service

import (
	"context"
	"sort"

	"github.com/bwmarrin/snowflake"
	referencedomain "github.com/smallbiznis/shipgraph/internal/reference/domain"
	"github.com/smallbiznis/shipgraph/internal/shipping/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// zoneIterBatch bounds how many zones the coverage scan holds at once.
const zoneIterBatch = 100

type Params struct {
	fx.In

	Log     *zap.Logger
	Repo    domain.Repository
	RefRepo referencedomain.Repository
}

type Service struct {
	log     *zap.Logger
	repo    domain.Repository
	refRepo referencedomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		log:     p.Log.Named("shipping.service"),
		repo:    p.Repo,
		refRepo: p.RefRepo,
	}
}

func (s *Service) ListZones(ctx context.Context) ([]*domain.ShippingZone, error) {
	return s.repo.ListZones(ctx)
}

func (s *Service) GetZone(ctx context.Context, id snowflake.ID) (*domain.ShippingZone, error) {
	if id == 0 {
		return nil, domain.ErrInvalidID
	}
	return s.repo.FindZoneByID(ctx, id)
}

// CountryCodes computes zone coverage against the reference country
// list. No caching: zone counts stay small relative to request volume.
func (s *Service) CountryCodes(ctx context.Context, inShippingZones *bool) ([]string, error) {
	allCodes, err := s.refRepo.ListCountryCodes(ctx)
	if err != nil {
		return nil, err
	}

	if inShippingZones == nil {
		return sorted(allCodes), nil
	}

	covered := make(map[string]struct{})
	err = s.repo.IterateZones(ctx, zoneIterBatch, func(zone *domain.ShippingZone) error {
		for _, code := range zone.Countries {
			covered[code] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := make([]string, 0, len(allCodes))
	for _, code := range allCodes {
		_, ok := covered[code]
		if ok == *inShippingZones {
			result = append(result, code)
		}
	}
	return sorted(result), nil
}

func sorted(codes []string) []string {
	sort.Strings(codes)
	return codes
}
