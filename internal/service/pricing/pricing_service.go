package pricing

import (
	"context"

	"github.com/n3on404/loauj-local-node-sub001/internal/domain"
	"github.com/n3on404/loauj-local-node-sub001/internal/repository"
)

type PricingUseCase interface {
	GetRoute(ctx context.Context, destinationID string) (*domain.Route, error)
	UpdateBasePrice(ctx context.Context, destinationID string, basePriceCents int64) (*domain.Route, error)
}

type Cache interface {
	GetRoute(ctx context.Context, destinationID string) (*domain.Route, error)
	SetRoute(ctx context.Context, route *domain.Route) error
	InvalidateRoute(ctx context.Context, destinationID string) error
}

// PricingService resolves per-seat base prices through a bounded-TTL
// cache. Price updates invalidate explicitly; everything else ages out.
type PricingService struct {
	routes repository.RouteRepository
	cache  Cache
}

func NewPricingService(routes repository.RouteRepository, cache Cache) *PricingService {
	return &PricingService{routes: routes, cache: cache}
}

func (s *PricingService) GetRoute(ctx context.Context, destinationID string) (*domain.Route, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetRoute(ctx, destinationID); err == nil && cached != nil {
			return cached, nil
		}
	}

	route, err := s.routes.GetByDestination(ctx, destinationID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetRoute(ctx, route)
	}
	return route, nil
}

func (s *PricingService) UpdateBasePrice(ctx context.Context, destinationID string, basePriceCents int64) (*domain.Route, error) {
	if err := s.routes.UpdateBasePrice(ctx, destinationID, basePriceCents); err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.InvalidateRoute(ctx, destinationID)
	}
	return s.routes.GetByDestination(ctx, destinationID)
}

var _ PricingUseCase = (*PricingService)(nil)
