package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"route-dispatch-service/internal/domain"
	"route-dispatch-service/internal/platform/obs"
)

// Postgres-backed implementation of the RouteRepository port.
//
// Status mutations are single conditional UPDATE statements so that
// concurrent requests against the same route serialize in the database:
// the claim capacity cap is re-checked inside the claim statement
// itself, never in a separate read.
type SQLRouteRepository struct{ DB *sql.DB }

func NewSQLRouteRepository(db *sql.DB) *SQLRouteRepository {
	return &SQLRouteRepository{DB: db}
}

func (s *SQLRouteRepository) Create(ctx context.Context, route *domain.Route) (err error) {
	defer obs.Time(ctx, "routes.Create")(&err)

	if s.DB == nil {
		return errors.New("route repository: db is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create route: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const insertRoute = `
	INSERT INTO routes (
		id, code, vehicle_type, distance_km, duration_seconds,
		status, assigned_worker, assigned_at, created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, NULL, NULL, now());
	`
	if _, err := tx.ExecContext(
		ctx, insertRoute,
		route.ID, route.Code, route.VehicleType,
		route.DistanceKm, route.DurationSeconds, string(route.Status),
	); err != nil {
		return fmt.Errorf("create route: insert route %s: %w", route.Code, err)
	}

	const insertStop = `
	INSERT INTO route_stops (route_id, stop_order, shop_code, leg_km)
	VALUES ($1, $2, $3, $4);
	`
	stmt, err := tx.PrepareContext(ctx, insertStop)
	if err != nil {
		return fmt.Errorf("create route: prepare stop insert: %w", err)
	}
	defer stmt.Close()

	for i, stop := range route.Stops {
		// leg_km is the distance from the previous stop; nothing precedes
		// the first stop.
		var legKm any
		if i > 0 {
			legKm = route.LegDistancesKm[i-1]
		}
		if _, err := stmt.ExecContext(ctx, route.ID, stop.Order, stop.ShopID, legKm); err != nil {
			return fmt.Errorf("create route: insert stop %d: %w", stop.Order, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create route: commit: %w", err)
	}

	return nil
}

func (s *SQLRouteRepository) Get(ctx context.Context, id string) (_ *domain.Route, err error) {
	defer obs.Time(ctx, "routes.Get")(&err)

	if s.DB == nil {
		return nil, errors.New("route repository: db is nil")
	}

	const q = `
	SELECT
		r.id, r.code, r.vehicle_type, COALESCE(v.name, r.vehicle_type),
		r.distance_km, r.duration_seconds, r.status,
		r.assigned_worker, r.assigned_at, r.created_at
	FROM routes r
	LEFT JOIN vehicle_types v ON v.code = r.vehicle_type
	WHERE r.id = $1;
	`

	route, err := scanRoute(s.DB.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRouteNotFound
		}
		return nil, fmt.Errorf("get route: %w", err)
	}

	if err := s.loadStops(ctx, []*domain.Route{route}); err != nil {
		return nil, fmt.Errorf("get route: %w", err)
	}

	return route, nil
}

func (s *SQLRouteRepository) List(ctx context.Context) (_ []*domain.Route, err error) {
	defer obs.Time(ctx, "routes.List")(&err)

	if s.DB == nil {
		return nil, errors.New("route repository: db is nil")
	}

	const q = `
	SELECT
		r.id, r.code, r.vehicle_type, COALESCE(v.name, r.vehicle_type),
		r.distance_km, r.duration_seconds, r.status,
		r.assigned_worker, r.assigned_at, r.created_at
	FROM routes r
	LEFT JOIN vehicle_types v ON v.code = r.vehicle_type
	ORDER BY r.created_at DESC, r.code DESC;
	`

	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list routes: query: %w", err)
	}
	defer rows.Close()

	routes := make([]*domain.Route, 0, 32)
	for rows.Next() {
		route, err := scanRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("list routes: %w", err)
		}
		routes = append(routes, route)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list routes: row iteration: %w", err)
	}

	if err := s.loadStops(ctx, routes); err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}

	return routes, nil
}

// UpdateStatus is the compare-and-swap primitive behind every
// transition. A move into pending clears the assignment fields in the
// same statement so the route re-enters the claimable pool atomically.
func (s *SQLRouteRepository) UpdateStatus(
	ctx context.Context,
	id string,
	expected, target domain.Status,
) (_ bool, err error) {
	defer obs.Time(ctx, "routes.UpdateStatus")(&err)

	if s.DB == nil {
		return false, errors.New("route repository: db is nil")
	}

	// pending and cancelled are the statuses without a worker attached,
	// so moving into either clears the assignment fields.
	const q = `
	UPDATE routes
	SET status = $3,
		assigned_worker = CASE WHEN $3 IN ('pending', 'cancelled') THEN NULL ELSE assigned_worker END,
		assigned_at     = CASE WHEN $3 IN ('pending', 'cancelled') THEN NULL ELSE assigned_at END
	WHERE id = $1 AND status = $2;
	`

	res, err := s.DB.ExecContext(ctx, q, id, string(expected), string(target))
	if err != nil {
		return false, fmt.Errorf("update route status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update route status: rows affected: %w", err)
	}
	if affected == 1 {
		return true, nil
	}

	// Distinguish a lost race from a missing route.
	var exists bool
	if err := s.DB.QueryRowContext(
		ctx, `SELECT EXISTS (SELECT 1 FROM routes WHERE id = $1);`, id,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("update route status: existence check: %w", err)
	}
	if !exists {
		return false, domain.ErrRouteNotFound
	}

	return false, nil
}

// AssignWorker performs the claim/assign mutation: pending check and
// capacity cap are validated by the database at the moment of the
// update, so of N concurrent claimants exactly one row wins.
func (s *SQLRouteRepository) AssignWorker(
	ctx context.Context,
	id, workerID string,
	at time.Time,
	maxActive int,
) (err error) {
	defer obs.Time(ctx, "routes.AssignWorker")(&err)

	if s.DB == nil {
		return errors.New("route repository: db is nil")
	}

	const q = `
	UPDATE routes
	SET status = 'assigned', assigned_worker = $2, assigned_at = $3
	WHERE id = $1
		AND status = 'pending'
		AND (
			SELECT COUNT(*) FROM routes r2
			WHERE r2.assigned_worker = $2
				AND r2.status IN ('assigned', 'delivering')
		) < $4;
	`

	res, err := s.DB.ExecContext(ctx, q, id, workerID, at, maxActive)
	if err != nil {
		return fmt.Errorf("assign worker: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("assign worker: rows affected: %w", err)
	}
	if affected == 1 {
		return nil
	}

	// The mutation itself was atomic; this read only names the reason.
	var status string
	err = s.DB.QueryRowContext(ctx, `SELECT status FROM routes WHERE id = $1;`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrRouteNotFound
	}
	if err != nil {
		return fmt.Errorf("assign worker: read status: %w", err)
	}
	if status != string(domain.StatusPending) {
		return &domain.RouteNotPendingError{Current: domain.Status(status)}
	}

	return domain.ErrWorkerAtCapacity
}

func (s *SQLRouteRepository) Delete(ctx context.Context, id string) (err error) {
	defer obs.Time(ctx, "routes.Delete")(&err)

	if s.DB == nil {
		return errors.New("route repository: db is nil")
	}

	const q = `
	DELETE FROM routes
	WHERE id = $1 AND status IN ('pending', 'cancelled', 'failed');
	`

	res, err := s.DB.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete route: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete route: rows affected: %w", err)
	}
	if affected == 1 {
		return nil
	}

	var status string
	err = s.DB.QueryRowContext(ctx, `SELECT status FROM routes WHERE id = $1;`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrRouteNotFound
	}
	if err != nil {
		return fmt.Errorf("delete route: read status: %w", err)
	}

	return &domain.RouteNotDeletableError{Current: domain.Status(status)}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoute(row rowScanner) (*domain.Route, error) {
	var (
		route          domain.Route
		status         string
		assignedWorker sql.NullString
		assignedAt     sql.NullTime
	)

	if err := row.Scan(
		&route.ID, &route.Code, &route.VehicleType, &route.VehicleTypeName,
		&route.DistanceKm, &route.DurationSeconds, &status,
		&assignedWorker, &assignedAt, &route.CreatedAt,
	); err != nil {
		return nil, err
	}

	route.Status = domain.Status(status)
	if assignedWorker.Valid {
		route.AssignedWorker = assignedWorker.String
	}
	if assignedAt.Valid {
		at := assignedAt.Time
		route.AssignedAt = &at
	}

	return &route, nil
}

// loadStops fills Stops and LegDistancesKm for the given routes in one
// query, joined with shop names for the API projection.
func (s *SQLRouteRepository) loadStops(ctx context.Context, routes []*domain.Route) error {
	if len(routes) == 0 {
		return nil
	}

	ids := make([]string, 0, len(routes))
	byID := make(map[string]*domain.Route, len(routes))
	for _, r := range routes {
		ids = append(ids, r.ID)
		byID[r.ID] = r
	}

	const q = `
	SELECT st.route_id, st.stop_order, st.shop_code, COALESCE(sh.name, ''), st.leg_km
	FROM route_stops st
	LEFT JOIN shops sh ON sh.code = st.shop_code
	WHERE st.route_id = ANY($1::text[])
	ORDER BY st.route_id, st.stop_order;
	`

	rows, err := s.DB.QueryContext(ctx, q, ids)
	if err != nil {
		return fmt.Errorf("load stops: query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			routeID  string
			stop     domain.RouteStop
			shopName string
			legKm    sql.NullFloat64
		)
		if err := rows.Scan(&routeID, &stop.Order, &stop.ShopID, &shopName, &legKm); err != nil {
			return fmt.Errorf("load stops: scan: %w", err)
		}
		stop.ShopName = shopName

		route, ok := byID[routeID]
		if !ok {
			continue
		}
		route.Stops = append(route.Stops, stop)
		if legKm.Valid {
			route.LegDistancesKm = append(route.LegDistancesKm, legKm.Float64)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load stops: row iteration: %w", err)
	}

	return nil
}
