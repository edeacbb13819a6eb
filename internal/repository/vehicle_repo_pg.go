package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/n3on404/loauj-local-node-sub001/internal/domain"
)

// VehicleRepository is the engine's read-only view of vehicle master data.
type VehicleRepository interface {
	GetByLicensePlate(ctx context.Context, licensePlate string) (*domain.Vehicle, error)
	GetByID(ctx context.Context, id int64) (*domain.Vehicle, error)
}

type PGVehicleRepository struct {
	db DB
}

func NewVehicleRepository(db DB) VehicleRepository {
	return &PGVehicleRepository{db: db}
}

func (r *PGVehicleRepository) GetByLicensePlate(ctx context.Context, licensePlate string) (*domain.Vehicle, error) {
	return r.get(ctx, `WHERE license_plate=$1`, licensePlate)
}

func (r *PGVehicleRepository) GetByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	return r.get(ctx, `WHERE id=$1`, id)
}

func (r *PGVehicleRepository) get(ctx context.Context, where string, arg any) (*domain.Vehicle, error) {
	var v domain.Vehicle
	var defaultDest *string
	err := r.db.QueryRow(ctx, `SELECT id, license_plate, capacity, is_active, is_available, default_destination_id
		FROM vehicles `+where, arg).
		Scan(&v.ID, &v.LicensePlate, &v.Capacity, &v.IsActive, &v.IsAvailable, &defaultDest)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrVehicleNotFound
	}
	if err != nil {
		return nil, domain.StoreError{Op: "vehicle.get", Err: err}
	}
	if defaultDest != nil {
		v.DefaultDestinationID = *defaultDest
	}

	rows, err := r.db.Query(ctx, `SELECT station_id, station_name, priority, is_default
		FROM vehicle_authorizations WHERE vehicle_id=$1 ORDER BY priority ASC`, v.ID)
	if err != nil {
		return nil, domain.StoreError{Op: "vehicle.get", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var d domain.AuthorizedDestination
		if err := rows.Scan(&d.StationID, &d.StationName, &d.Priority, &d.IsDefault); err != nil {
			return nil, domain.StoreError{Op: "vehicle.get", Err: err}
		}
		v.AuthorizedDestinations = append(v.AuthorizedDestinations, d)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StoreError{Op: "vehicle.get", Err: err}
	}
	return &v, nil
}

var _ VehicleRepository = (*PGVehicleRepository)(nil)
