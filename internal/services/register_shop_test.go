package services

import (
	"context"
	"errors"
	"testing"

	"route-dispatch-service/internal/adapters/memory"
	"route-dispatch-service/internal/domain"
)

type fixedGeocoder struct {
	loc domain.Coordinates
}

func (g fixedGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	return g.loc, nil
}

func newRegistrar(shops *memory.ShopStore) *ShopRegistrar {
	return &ShopRegistrar{
		Shops:    shops,
		Codes:    NewSequenceAllocator(memory.NewSequenceStore()),
		Geocoder: fixedGeocoder{loc: wpA},
		Audit:    testRecorder(),
	}
}

func TestRegisterShopMintsWardScopedCodes(t *testing.T) {
	shops := memory.NewShopStore()
	registrar := newRegistrar(shops)
	ctx := context.Background()

	first, err := registrar.Register(ctx, RegisterShopRequest{
		Name: "Shop A", Address: "12 Le Loi", WardCode: "00001",
	}, admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID != "00001001" {
		t.Fatalf("first shop code = %q, want 00001001", first.ID)
	}

	second, err := registrar.Register(ctx, RegisterShopRequest{
		Name: "Shop B", Address: "34 Le Loi", WardCode: "00001",
	}, admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ID != "00001002" {
		t.Fatalf("second shop code = %q, want 00001002", second.ID)
	}

	// a different ward starts its own series
	other, err := registrar.Register(ctx, RegisterShopRequest{
		Name: "Shop C", Address: "56 Hai Ba Trung", WardCode: "00002",
	}, admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if other.ID != "00002001" {
		t.Fatalf("other ward shop code = %q, want 00002001", other.ID)
	}
}

func TestRegisterShopValidation(t *testing.T) {
	registrar := newRegistrar(memory.NewShopStore())
	ctx := context.Background()

	cases := []RegisterShopRequest{
		{Name: "", Address: "12 Le Loi", WardCode: "00001"},
		{Name: "Shop A", Address: "", WardCode: "00001"},
		{Name: "Shop A", Address: "12 Le Loi", WardCode: ""},
		{Name: "Shop A", Address: "12 Le Loi", WardCode: "ward1"},
	}
	for i, req := range cases {
		_, err := registrar.Register(ctx, req, admin)
		var validation *domain.ValidationError
		if !errors.As(err, &validation) {
			t.Fatalf("case %d: error = %v, want ValidationError", i, err)
		}
	}
}

func TestRemoveShopBlockedWhileReferenced(t *testing.T) {
	routes := memory.NewRouteStore()
	shops := memory.NewShopStore()
	shops.Routes = routes
	registrar := newRegistrar(shops)
	ctx := context.Background()

	shop, err := registrar.Register(ctx, RegisterShopRequest{
		Name: "Shop A", Address: "12 Le Loi", WardCode: "00001",
	}, admin)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	route := pendingRoute("r1", "RT000001")
	route.Stops = []domain.RouteStop{
		{ShopID: shop.ID, Order: 1},
		{ShopID: "00001999", Order: 2},
	}
	seedRoute(routes, route)

	if err := registrar.Remove(ctx, shop.ID, admin); !errors.Is(err, domain.ErrShopReferenced) {
		t.Fatalf("error = %v, want ErrShopReferenced", err)
	}

	if err := routes.Delete(ctx, "r1"); err != nil {
		t.Fatalf("delete route: %v", err)
	}
	if err := registrar.Remove(ctx, shop.ID, admin); err != nil {
		t.Fatalf("remove after dereference: %v", err)
	}
}
