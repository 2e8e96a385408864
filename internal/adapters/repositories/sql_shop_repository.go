package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"route-dispatch-service/internal/domain"
	"route-dispatch-service/internal/platform/obs"
)

// Postgres-backed implementation of the ShopRepository port.
type SQLShopRepository struct{ DB *sql.DB }

func NewSQLShopRepository(db *sql.DB) *SQLShopRepository {
	return &SQLShopRepository{DB: db}
}

func (s *SQLShopRepository) Create(ctx context.Context, shop *domain.Shop) (err error) {
	defer obs.Time(ctx, "shops.Create")(&err)

	if s.DB == nil {
		return errors.New("shop repository: db is nil")
	}

	const q = `
	INSERT INTO shops (code, name, address, ward_code, lon, lat, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, now());
	`

	if _, err := s.DB.ExecContext(
		ctx, q,
		shop.ID, shop.Name, shop.Address, shop.WardCode,
		shop.Location.Lon, shop.Location.Lat,
	); err != nil {
		return fmt.Errorf("create shop %s: %w", shop.ID, err)
	}

	return nil
}

func (s *SQLShopRepository) Get(ctx context.Context, id string) (_ *domain.Shop, err error) {
	defer obs.Time(ctx, "shops.Get")(&err)

	if s.DB == nil {
		return nil, errors.New("shop repository: db is nil")
	}

	const q = `
	SELECT code, name, address, ward_code, lon, lat, created_at
	FROM shops
	WHERE code = $1;
	`

	var shop domain.Shop
	err = s.DB.QueryRowContext(ctx, q, id).Scan(
		&shop.ID, &shop.Name, &shop.Address, &shop.WardCode,
		&shop.Location.Lon, &shop.Location.Lat, &shop.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrShopNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get shop: %w", err)
	}

	return &shop, nil
}

func (s *SQLShopRepository) GetMany(
	ctx context.Context,
	ids []string,
) (_ map[string]*domain.Shop, err error) {
	defer obs.Time(ctx, "shops.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("shop repository: db is nil")
	}

	if len(ids) == 0 {
		return map[string]*domain.Shop{}, nil
	}

	const q = `
	SELECT code, name, address, ward_code, lon, lat, created_at
	FROM shops
	WHERE code = ANY($1::text[]);
	`

	rows, err := s.DB.QueryContext(ctx, q, ids)
	if err != nil {
		return nil, fmt.Errorf("get shops: query: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*domain.Shop, len(ids))
	for rows.Next() {
		var shop domain.Shop
		if err := rows.Scan(
			&shop.ID, &shop.Name, &shop.Address, &shop.WardCode,
			&shop.Location.Lon, &shop.Location.Lat, &shop.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("get shops: scan: %w", err)
		}
		out[shop.ID] = &shop
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get shops: row iteration: %w", err)
	}

	return out, nil
}

// Delete refuses to remove a shop that any route stop references; the
// reference check and the delete are one statement.
func (s *SQLShopRepository) Delete(ctx context.Context, id string) (err error) {
	defer obs.Time(ctx, "shops.Delete")(&err)

	if s.DB == nil {
		return errors.New("shop repository: db is nil")
	}

	const q = `
	DELETE FROM shops
	WHERE code = $1
		AND NOT EXISTS (SELECT 1 FROM route_stops WHERE shop_code = $1);
	`

	res, err := s.DB.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete shop: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete shop: rows affected: %w", err)
	}
	if affected == 1 {
		return nil
	}

	var exists bool
	if err := s.DB.QueryRowContext(
		ctx, `SELECT EXISTS (SELECT 1 FROM shops WHERE code = $1);`, id,
	).Scan(&exists); err != nil {
		return fmt.Errorf("delete shop: existence check: %w", err)
	}
	if !exists {
		return domain.ErrShopNotFound
	}

	return domain.ErrShopReferenced
}
