package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"route-dispatch-service/internal/platform/obs"
)

// Postgres-backed implementation of the SequenceStore port.
//
// Reservations live in their own table with a primary-key constraint,
// so Reserve is atomic: of two concurrent reservations for the same
// identifier exactly one insert lands, and the allocator's recheck loop
// moves the loser forward.
type SQLSequenceStore struct{ DB *sql.DB }

func NewSQLSequenceStore(db *sql.DB) *SQLSequenceStore {
	return &SQLSequenceStore{DB: db}
}

func (s *SQLSequenceStore) MaxSequence(ctx context.Context, prefix string) (_ int, err error) {
	defer obs.Time(ctx, "sequence.MaxSequence")(&err)

	if s.DB == nil {
		return 0, errors.New("sequence store: db is nil")
	}

	// Only identifiers of the form prefix+digits participate in the
	// series; anything else under the same prefix is ignored.
	const q = `
	SELECT COALESCE(MAX(CAST(substring(code FROM $1::int) AS INTEGER)), 0)
	FROM allocated_codes
	WHERE prefix = $2
		AND substring(code FROM $1::int) ~ '^[0-9]+$';
	`

	var max int
	if err := s.DB.QueryRowContext(ctx, q, len(prefix)+1, prefix).Scan(&max); err != nil {
		return 0, fmt.Errorf("max sequence for prefix %q: %w", prefix, err)
	}

	return max, nil
}

func (s *SQLSequenceStore) Reserve(ctx context.Context, prefix, id string) (_ bool, err error) {
	defer obs.Time(ctx, "sequence.Reserve")(&err)

	if s.DB == nil {
		return false, errors.New("sequence store: db is nil")
	}

	const q = `
	INSERT INTO allocated_codes (code, prefix, allocated_at)
	VALUES ($1, $2, now())
	ON CONFLICT (code) DO NOTHING;
	`

	res, err := s.DB.ExecContext(ctx, q, id, prefix)
	if err != nil {
		return false, fmt.Errorf("reserve identifier %q: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reserve identifier %q: rows affected: %w", id, err)
	}

	return affected == 1, nil
}
