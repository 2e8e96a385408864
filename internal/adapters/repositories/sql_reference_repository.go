package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"route-dispatch-service/internal/domain"
)

// Postgres-backed implementation of the WorkerRepository port.
// Workers are read-only here: eligibility is checked, never mutated.
type SQLWorkerRepository struct{ DB *sql.DB }

func NewSQLWorkerRepository(db *sql.DB) *SQLWorkerRepository {
	return &SQLWorkerRepository{DB: db}
}

func (s *SQLWorkerRepository) Get(ctx context.Context, id string) (*domain.Worker, error) {
	if s.DB == nil {
		return nil, errors.New("worker repository: db is nil")
	}

	const q = `
	SELECT id, name, role, status
	FROM workers
	WHERE id = $1;
	`

	var worker domain.Worker
	err := s.DB.QueryRowContext(ctx, q, id).Scan(
		&worker.ID, &worker.Name, &worker.Role, &worker.Status,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrWorkerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get worker: %w", err)
	}

	return &worker, nil
}

// Postgres-backed implementation of the VehicleTypeRepository port.
type SQLVehicleTypeRepository struct{ DB *sql.DB }

func NewSQLVehicleTypeRepository(db *sql.DB) *SQLVehicleTypeRepository {
	return &SQLVehicleTypeRepository{DB: db}
}

func (s *SQLVehicleTypeRepository) Get(ctx context.Context, code string) (*domain.VehicleType, error) {
	if s.DB == nil {
		return nil, errors.New("vehicle type repository: db is nil")
	}

	const q = `
	SELECT code, name, status
	FROM vehicle_types
	WHERE code = $1;
	`

	var vehicle domain.VehicleType
	err := s.DB.QueryRowContext(ctx, q, code).Scan(&vehicle.Code, &vehicle.Name, &vehicle.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrVehicleTypeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get vehicle type: %w", err)
	}

	return &vehicle, nil
}
