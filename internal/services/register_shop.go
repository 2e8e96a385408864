package services

import (
	"context"
	"fmt"
	"strings"

	"route-dispatch-service/internal/domain"
	"route-dispatch-service/internal/ports"
)

// ShopCodeWidth is the per-ward sequence width: shop codes are the ward
// code followed by a 3-digit sequence.
const ShopCodeWidth = 3

type RegisterShopRequest struct {
	Name     string
	Address  string
	WardCode string
}

// ShopRegistrar creates and removes shops. Registration geocodes the
// street address and mints the ward-scoped shop code; removal is
// blocked while any route stop references the shop.
type ShopRegistrar struct {
	Shops    ports.ShopRepository
	Codes    ports.CodeAllocator
	Geocoder ports.Geocoder
	Audit    *AuditRecorder
}

func (s *ShopRegistrar) Register(
	ctx context.Context,
	req RegisterShopRequest,
	actor domain.Actor,
) (*domain.Shop, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrActorNotAllowed
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, &domain.ValidationError{Field: "name", Message: "name is required"}
	}

	address := strings.TrimSpace(req.Address)
	if address == "" {
		return nil, &domain.ValidationError{Field: "address", Message: "address is required"}
	}

	ward := strings.TrimSpace(req.WardCode)
	if ward == "" {
		return nil, &domain.ValidationError{Field: "ward_code", Message: "ward_code is required"}
	}
	for _, r := range ward {
		if r < '0' || r > '9' {
			return nil, &domain.ValidationError{
				Field:   "ward_code",
				Message: "ward_code must be numeric",
			}
		}
	}

	location, err := s.Geocoder.Geocode(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("register shop: geocode %q: %w", address, err)
	}

	code, err := s.Codes.Next(ctx, ward, ShopCodeWidth)
	if err != nil {
		return nil, fmt.Errorf("register shop: %w", err)
	}

	shop := &domain.Shop{
		ID:       code,
		Name:     name,
		Address:  address,
		WardCode: ward,
		Location: location,
	}

	if err := s.Shops.Create(ctx, shop); err != nil {
		return nil, fmt.Errorf("register shop: persist %s: %w", code, err)
	}

	s.Audit.Record(ctx, domain.AuditEvent{
		Actor:       actor.ID,
		Action:      domain.AuditShopCreated,
		TargetType:  "shop",
		TargetID:    shop.ID,
		Description: fmt.Sprintf("shop %s registered in ward %s", code, ward),
		Payload:     map[string]any{"shop_id": code, "ward_code": ward},
	})

	return shop, nil
}

// Remove deletes a shop unless it is referenced by a route stop.
func (s *ShopRegistrar) Remove(ctx context.Context, shopID string, actor domain.Actor) error {
	if !actor.IsAdmin() {
		return domain.ErrActorNotAllowed
	}

	if err := s.Shops.Delete(ctx, shopID); err != nil {
		return fmt.Errorf("remove shop %s: %w", shopID, err)
	}

	s.Audit.Record(ctx, domain.AuditEvent{
		Actor:       actor.ID,
		Action:      domain.AuditShopDeleted,
		TargetType:  "shop",
		TargetID:    shopID,
		Description: fmt.Sprintf("shop %s deleted", shopID),
	})

	return nil
}
