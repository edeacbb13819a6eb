package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/n3on404/loauj-local-node-sub001/internal/domain"
)

type RouteRepository interface {
	GetByDestination(ctx context.Context, destinationID string) (*domain.Route, error)
	UpdateBasePrice(ctx context.Context, destinationID string, basePriceCents int64) error
}

type PGRouteRepository struct {
	db DB
}

func NewRouteRepository(db DB) RouteRepository {
	return &PGRouteRepository{db: db}
}

func (r *PGRouteRepository) GetByDestination(ctx context.Context, destinationID string) (*domain.Route, error) {
	var route domain.Route
	err := r.db.QueryRow(ctx, `SELECT destination_id, destination_name, base_price FROM routes WHERE destination_id=$1`, destinationID).
		Scan(&route.DestinationID, &route.DestinationName, &route.BasePriceCents)
	if errors.Is(err, pgx.ErrNoRows) {
		// Unknown destination prices at zero; the central server owns
		// authoritative pricing.
		return &domain.Route{DestinationID: destinationID}, nil
	}
	if err != nil {
		return nil, domain.StoreError{Op: "route.get", Err: err}
	}
	return &route, nil
}

func (r *PGRouteRepository) UpdateBasePrice(ctx context.Context, destinationID string, basePriceCents int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE routes SET base_price=$2 WHERE destination_id=$1`, destinationID, basePriceCents)
	if err != nil {
		return domain.StoreError{Op: "route.update", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRouteNotFound
	}
	return nil
}

var _ RouteRepository = (*PGRouteRepository)(nil)
