package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Initialize the Postgres schema. Statements are idempotent so both
// binaries can run this on startup.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createVehicleTypes := `
	CREATE TABLE IF NOT EXISTS vehicle_types (
		code TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active'
			CHECK (status IN ('active', 'inactive'))
	);
	`

	createWorkers := `
	CREATE TABLE IF NOT EXISTS workers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active'
			CHECK (status IN ('active', 'inactive'))
	);
	`

	createShops := `
	CREATE TABLE IF NOT EXISTS shops (
		code TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL,
		ward_code TEXT NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createRoutes := `
	CREATE TABLE IF NOT EXISTS routes (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		vehicle_type TEXT NOT NULL REFERENCES vehicle_types(code),
		distance_km DOUBLE PRECISION NOT NULL,
		duration_seconds INTEGER NOT NULL,
		status TEXT NOT NULL
			CHECK (status IN ('pending', 'assigned', 'delivering', 'delivered', 'cancelled', 'failed')),
		assigned_worker TEXT REFERENCES workers(id),
		assigned_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createRouteStops := `
	CREATE TABLE IF NOT EXISTS route_stops (
		route_id TEXT NOT NULL REFERENCES routes(id) ON DELETE CASCADE,
		stop_order INTEGER NOT NULL CHECK (stop_order >= 1),
		shop_code TEXT NOT NULL REFERENCES shops(code),
		leg_km DOUBLE PRECISION,
		PRIMARY KEY (route_id, stop_order)
	);
	`

	createAllocatedCodes := `
	CREATE TABLE IF NOT EXISTS allocated_codes (
		code TEXT PRIMARY KEY,
		prefix TEXT NOT NULL,
		allocated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createAuditEvents := `
	CREATE TABLE IF NOT EXISTS audit_events (
		id TEXT PRIMARY KEY,
		actor TEXT NOT NULL,
		action TEXT NOT NULL,
		target_type TEXT NOT NULL,
		target_id TEXT NOT NULL,
		description TEXT NOT NULL,
		payload JSONB,
		created_at TIMESTAMPTZ NOT NULL
	);
	`

	createLegCache := `
	CREATE TABLE IF NOT EXISTS leg_distance_cache (
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		distance_km DOUBLE PRECISION NOT NULL,
		duration_seconds INTEGER NOT NULL,
		PRIMARY KEY (origin, destination)
	);
	`

	createIndexes := `
	CREATE INDEX IF NOT EXISTS idx_routes_worker_status
	ON routes (assigned_worker, status);
	`

	createAllocIndex := `
	CREATE INDEX IF NOT EXISTS idx_allocated_codes_prefix
	ON allocated_codes (prefix);
	`

	createStopsIndex := `
	CREATE INDEX IF NOT EXISTS idx_route_stops_shop
	ON route_stops (shop_code);
	`

	statements := []string{
		createVehicleTypes,
		createWorkers,
		createShops,
		createRoutes,
		createRouteStops,
		createAllocatedCodes,
		createAuditEvents,
		createLegCache,
		createIndexes,
		createAllocIndex,
		createStopsIndex,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type VehicleTypeSeed struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

type WorkerSeed struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

type Seed struct {
	VehicleTypes []VehicleTypeSeed `json:"vehicle_types"`
	Workers      []WorkerSeed      `json:"workers"`
}

// Populate reference data (vehicle types, workers) from a JSON file.
// Shops and routes are created through the API, never seeded.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed reference data: read %q: %w", jsonPath, err)
	}

	var seed Seed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("seed reference data: parse json: %w", err)
	}

	for i, v := range seed.VehicleTypes {
		if strings.TrimSpace(v.Code) == "" {
			return fmt.Errorf("seed reference data: vehicle type at index %d has empty code", i)
		}
	}
	for i, w := range seed.Workers {
		if strings.TrimSpace(w.ID) == "" {
			return fmt.Errorf("seed reference data: worker at index %d has empty id", i)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed reference data: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	vehicleStmt, err := tx.Prepare(`
	INSERT INTO vehicle_types (code, name, status)
	VALUES ($1, $2, $3)
	ON CONFLICT (code) DO UPDATE
	SET name = EXCLUDED.name, status = EXCLUDED.status;
	`)
	if err != nil {
		return fmt.Errorf("seed reference data: prepare vehicle insert: %w", err)
	}
	defer vehicleStmt.Close()

	for _, v := range seed.VehicleTypes {
		status := v.Status
		if status == "" {
			status = "active"
		}
		if _, err := vehicleStmt.Exec(v.Code, v.Name, status); err != nil {
			return fmt.Errorf("seed reference data: insert vehicle type %q: %w", v.Code, err)
		}
	}

	workerStmt, err := tx.Prepare(`
	INSERT INTO workers (id, name, role, status)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name, role = EXCLUDED.role, status = EXCLUDED.status;
	`)
	if err != nil {
		return fmt.Errorf("seed reference data: prepare worker insert: %w", err)
	}
	defer workerStmt.Close()

	for _, w := range seed.Workers {
		status := w.Status
		if status == "" {
			status = "active"
		}
		if _, err := workerStmt.Exec(w.ID, w.Name, w.Role, status); err != nil {
			return fmt.Errorf("seed reference data: insert worker %q: %w", w.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed reference data: commit tx: %w", err)
	}

	return nil
}
