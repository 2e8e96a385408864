package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"route-dispatch-service/internal/platform/obs"
	"route-dispatch-service/internal/ports"
)

// SQLLegCache is a SQL-backed cache for leg distance results, keyed by
// the coordinate pair. Keys are expected to be consistent (already
// formatted by the caller).
type SQLLegCache struct {
	DB *sql.DB
}

func NewSQLLegCache(db *sql.DB) *SQLLegCache {
	return &SQLLegCache{DB: db}
}

// Get fetches one cached leg result.
func (s *SQLLegCache) Get(
	ctx context.Context,
	origin, destination string,
) (_ ports.LegResult, _ bool, err error) {
	defer obs.Time(ctx, "legcache.Get")(&err)

	if s.DB == nil {
		return ports.LegResult{}, false, errors.New("leg cache: db is nil")
	}

	if origin == "" || destination == "" {
		return ports.LegResult{}, false, errors.New("leg cache: origin and destination must be non-empty")
	}

	const q = `
	SELECT distance_km, duration_seconds
	FROM leg_distance_cache
	WHERE origin = $1 AND destination = $2;
	`

	var result ports.LegResult
	err = s.DB.QueryRowContext(ctx, q, origin, destination).
		Scan(&result.DistanceKm, &result.DurationSeconds)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.LegResult{}, false, nil
	}
	if err != nil {
		return ports.LegResult{}, false, fmt.Errorf("get leg cache: query: %w", err)
	}

	return result, true, nil
}

// Put stores one leg result, replacing any previous entry for the pair.
func (s *SQLLegCache) Put(
	ctx context.Context,
	origin, destination string,
	result ports.LegResult,
) (err error) {
	defer obs.Time(ctx, "legcache.Put")(&err)

	if s.DB == nil {
		return errors.New("leg cache: db is nil")
	}

	if origin == "" || destination == "" {
		return errors.New("leg cache: origin and destination must be non-empty")
	}

	const q = `
	INSERT INTO leg_distance_cache (origin, destination, distance_km, duration_seconds)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (origin, destination) DO UPDATE
	SET distance_km = EXCLUDED.distance_km,
		duration_seconds = EXCLUDED.duration_seconds;
	`

	if _, err := s.DB.ExecContext(
		ctx, q, origin, destination, result.DistanceKm, result.DurationSeconds,
	); err != nil {
		return fmt.Errorf("put leg cache %q -> %q: %w", origin, destination, err)
	}

	return nil
}
