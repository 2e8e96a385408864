package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"route-dispatch-service/internal/adapters/memory"
	"route-dispatch-service/internal/adapters/routing"
	"route-dispatch-service/internal/api/dto"
	"route-dispatch-service/internal/domain"
	"route-dispatch-service/internal/services"
)

const testSecret = "router-test-secret"

var (
	locA = domain.Coordinates{Lat: 10.7712, Lon: 106.6983}
	locB = domain.Coordinates{Lat: 10.7801, Lon: 106.7055}
	locC = domain.Coordinates{Lat: 10.7923, Lon: 106.7141}
)

type testEnv struct {
	handler http.Handler
	routes  *memory.RouteStore
	audit   *memory.AuditStore
}

type fixedGeocoder struct {
	loc domain.Coordinates
}

func (g fixedGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	return g.loc, nil
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	routes := memory.NewRouteStore()
	shops := memory.NewShopStore()
	shops.Routes = routes

	ctx := context.Background()
	seed := []*domain.Shop{
		{ID: "001001", Name: "Shop A", WardCode: "001", Location: locA},
		{ID: "001002", Name: "Shop B", WardCode: "001", Location: locB},
		{ID: "002001", Name: "Shop C", WardCode: "002", Location: locC},
	}
	for _, s := range seed {
		if err := shops.Create(ctx, s); err != nil {
			t.Fatalf("seed shop %s: %v", s.ID, err)
		}
	}

	workers := memory.NewWorkerStore(
		&domain.Worker{ID: "w1", Name: "Worker One", Role: domain.RoleDeliveryStaff, Status: domain.WorkerActive},
		&domain.Worker{ID: "w2", Name: "Worker Two", Role: domain.RoleDeliveryStaff, Status: domain.WorkerActive},
		&domain.Worker{ID: "w-idle", Name: "Retired", Role: domain.RoleDeliveryStaff, Status: domain.WorkerInactive},
	)
	vehicles := memory.NewVehicleTypeStore(
		&domain.VehicleType{Code: "BIKE", Name: "Motorbike", Status: domain.VehicleTypeActive},
		&domain.VehicleType{Code: "VAN", Name: "Van", Status: domain.VehicleTypeInactive},
	)

	provider := routing.NewMockLegProvider([]routing.MockLeg{
		{From: locA, To: locB, Km: 3.0, Seconds: 600},
		{From: locB, To: locC, Km: 4.0, Seconds: 840},
	})

	audit := memory.NewAuditStore()
	recorder := services.NewAuditRecorder(audit, nil)
	allocator := services.NewSequenceAllocator(memory.NewSequenceStore())

	handler := NewRouter(RouterDeps{
		Routes: routes,
		Creator: &services.RouteCreator{
			Routes:   routes,
			Shops:    shops,
			Vehicles: vehicles,
			Provider: provider,
			Codes:    allocator,
			Audit:    recorder,
		},
		Lifecycle: services.NewRouteLifecycle(routes, recorder),
		Coordinator: services.NewAssignmentCoordinator(
			routes, workers, recorder, services.DefaultMaxActiveRoutes,
		),
		Registrar: &services.ShopRegistrar{
			Shops:    shops,
			Codes:    allocator,
			Geocoder: fixedGeocoder{loc: locA},
			Audit:    recorder,
		},
		JWTSecret: testSecret,
	})

	return &testEnv{handler: handler, routes: routes, audit: audit}
}

func mintToken(t *testing.T, subject, role string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeRoute(t *testing.T, rec *httptest.ResponseRecorder) dto.RouteResponse {
	t.Helper()

	var res dto.RouteResponse
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode route response: %v", err)
	}
	return res
}

func (e *testEnv) createRoute(t *testing.T, shopIDs []string) dto.RouteResponse {
	t.Helper()

	stops := make([]dto.CreateRouteStop, 0, len(shopIDs))
	for _, id := range shopIDs {
		stops = append(stops, dto.CreateRouteStop{ShopID: id})
	}

	rec := e.do(t, http.MethodPost, "/routes", mintToken(t, "admin1", domain.RoleAdmin), dto.CreateRouteRequest{
		Stops:       stops,
		VehicleType: "BIKE",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create route: status %d body %s", rec.Code, rec.Body.String())
	}
	return decodeRoute(t, rec)
}

func TestHealthIsOpen(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestMissingTokenRejected(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/routes", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestForgedTokenRejected(t *testing.T) {
	env := newTestEnv(t)

	claims := jwt.MapClaims{"sub": "admin1", "role": domain.RoleAdmin}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("wrong-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	rec := env.do(t, http.MethodGet, "/routes", forged, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestCreateRoute(t *testing.T) {
	env := newTestEnv(t)

	route := env.createRoute(t, []string{"001001", "001002", "002001"})

	if route.Code != "RT000001" {
		t.Errorf("expected code RT000001, got %q", route.Code)
	}
	if route.Status != string(domain.StatusPending) {
		t.Errorf("expected pending, got %q", route.Status)
	}
	if route.DistanceKm != 7.0 {
		t.Errorf("expected 7.0 km, got %v", route.DistanceKm)
	}
	if route.DurationSeconds != 1440 {
		t.Errorf("expected 1440s, got %d", route.DurationSeconds)
	}
	if len(route.Stops) != 3 || route.Stops[0].Order != 1 || route.Stops[2].ShopID != "002001" {
		t.Errorf("unexpected stops: %+v", route.Stops)
	}
}

func TestCreateRouteRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/routes", mintToken(t, "w1", domain.RoleDeliveryStaff), dto.CreateRouteRequest{
		Stops:       []dto.CreateRouteStop{{ShopID: "001001"}, {ShopID: "001002"}},
		VehicleType: "BIKE",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body %s", rec.Code, rec.Body.String())
	}
}

func TestCreateRouteUnknownShop(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/routes", mintToken(t, "admin1", domain.RoleAdmin), dto.CreateRouteRequest{
		Stops:       []dto.CreateRouteStop{{ShopID: "001001"}, {ShopID: "009999"}},
		VehicleType: "BIKE",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body %s", rec.Code, rec.Body.String())
	}
}

func TestGetRouteNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/routes/nope", mintToken(t, "admin1", domain.RoleAdmin), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestClaimRoute(t *testing.T) {
	env := newTestEnv(t)
	route := env.createRoute(t, []string{"001001", "001002"})

	workerToken := mintToken(t, "w1", domain.RoleDeliveryStaff)
	rec := env.do(t, http.MethodPost, "/routes/claim", workerToken, dto.ClaimRouteRequest{RouteID: route.ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("claim: status %d body %s", rec.Code, rec.Body.String())
	}

	claimed := decodeRoute(t, rec)
	if claimed.Status != string(domain.StatusAssigned) {
		t.Errorf("expected assigned, got %q", claimed.Status)
	}
	if claimed.AssignedWorker != "w1" {
		t.Errorf("expected worker w1, got %q", claimed.AssignedWorker)
	}
	if claimed.AssignedAt == nil {
		t.Error("expected assigned_at to be set")
	}

	// Second claim loses: the route is no longer pending.
	rec = env.do(t, http.MethodPost, "/routes/claim", mintToken(t, "w2", domain.RoleDeliveryStaff),
		dto.ClaimRouteRequest{RouteID: route.ID})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on second claim, got %d body %s", rec.Code, rec.Body.String())
	}
}

func TestClaimRequiresDeliveryRole(t *testing.T) {
	env := newTestEnv(t)
	route := env.createRoute(t, []string{"001001", "001002"})

	rec := env.do(t, http.MethodPost, "/routes/claim", mintToken(t, "admin1", domain.RoleAdmin),
		dto.ClaimRouteRequest{RouteID: route.ID})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body %s", rec.Code, rec.Body.String())
	}
}

func TestAssignRoute(t *testing.T) {
	env := newTestEnv(t)
	route := env.createRoute(t, []string{"001001", "001002"})

	adminToken := mintToken(t, "admin1", domain.RoleAdmin)
	rec := env.do(t, http.MethodPost, "/routes/assign", adminToken,
		dto.AssignRouteRequest{RouteID: route.ID, WorkerID: "w2"})
	if rec.Code != http.StatusOK {
		t.Fatalf("assign: status %d body %s", rec.Code, rec.Body.String())
	}

	assigned := decodeRoute(t, rec)
	if assigned.AssignedWorker != "w2" {
		t.Errorf("expected worker w2, got %q", assigned.AssignedWorker)
	}
}

func TestAssignInactiveWorker(t *testing.T) {
	env := newTestEnv(t)
	route := env.createRoute(t, []string{"001001", "001002"})

	rec := env.do(t, http.MethodPost, "/routes/assign", mintToken(t, "admin1", domain.RoleAdmin),
		dto.AssignRouteRequest{RouteID: route.ID, WorkerID: "w-idle"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body %s", rec.Code, rec.Body.String())
	}
}

func TestStatusTransitionFlow(t *testing.T) {
	env := newTestEnv(t)
	route := env.createRoute(t, []string{"001001", "001002"})

	workerToken := mintToken(t, "w1", domain.RoleDeliveryStaff)
	rec := env.do(t, http.MethodPost, "/routes/claim", workerToken, dto.ClaimRouteRequest{RouteID: route.ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("claim: status %d body %s", rec.Code, rec.Body.String())
	}

	for _, target := range []string{"delivering", "delivered"} {
		rec = env.do(t, http.MethodPut, "/routes/"+route.ID+"/status", workerToken,
			dto.UpdateStatusRequest{Status: target})
		if rec.Code != http.StatusOK {
			t.Fatalf("transition to %s: status %d body %s", target, rec.Code, rec.Body.String())
		}
	}

	final := env.do(t, http.MethodGet, "/routes/"+route.ID, workerToken, nil)
	if got := decodeRoute(t, final).Status; got != string(domain.StatusDelivered) {
		t.Fatalf("expected delivered, got %q", got)
	}
}

func TestInvalidTransitionListsAllowed(t *testing.T) {
	env := newTestEnv(t)
	route := env.createRoute(t, []string{"001001", "001002"})

	rec := env.do(t, http.MethodPut, "/routes/"+route.ID+"/status", mintToken(t, "admin1", domain.RoleAdmin),
		dto.UpdateStatusRequest{Status: "delivered"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Allowed []string `json:"allowed"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if len(body.Allowed) != 2 {
		t.Fatalf("expected 2 allowed targets from pending, got %v", body.Allowed)
	}
}

func TestWorkerCannotMoveOthersRoute(t *testing.T) {
	env := newTestEnv(t)
	route := env.createRoute(t, []string{"001001", "001002"})

	rec := env.do(t, http.MethodPost, "/routes/claim", mintToken(t, "w1", domain.RoleDeliveryStaff),
		dto.ClaimRouteRequest{RouteID: route.ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("claim: status %d", rec.Code)
	}

	rec = env.do(t, http.MethodPut, "/routes/"+route.ID+"/status", mintToken(t, "w2", domain.RoleDeliveryStaff),
		dto.UpdateStatusRequest{Status: "delivering"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body %s", rec.Code, rec.Body.String())
	}
}

func TestDeleteRouteGuards(t *testing.T) {
	env := newTestEnv(t)
	route := env.createRoute(t, []string{"001001", "001002"})

	adminToken := mintToken(t, "admin1", domain.RoleAdmin)

	// Assigned routes are not deletable.
	rec := env.do(t, http.MethodPost, "/routes/assign", adminToken,
		dto.AssignRouteRequest{RouteID: route.ID, WorkerID: "w1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("assign: status %d", rec.Code)
	}
	rec = env.do(t, http.MethodDelete, "/routes/"+route.ID, adminToken, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 deleting assigned route, got %d", rec.Code)
	}

	// Cancel it, then deletion succeeds.
	rec = env.do(t, http.MethodPut, "/routes/"+route.ID+"/status", adminToken,
		dto.UpdateStatusRequest{Status: "cancelled"})
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel: status %d body %s", rec.Code, rec.Body.String())
	}
	rec = env.do(t, http.MethodDelete, "/routes/"+route.ID, adminToken, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d body %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/routes/"+route.ID, adminToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestRegisterAndRemoveShop(t *testing.T) {
	env := newTestEnv(t)
	adminToken := mintToken(t, "admin1", domain.RoleAdmin)

	rec := env.do(t, http.MethodPost, "/shops", adminToken, dto.RegisterShopRequest{
		Name:     "New Shop",
		Address:  "12 Nguyen Hue, District 1",
		WardCode: "003",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register shop: status %d body %s", rec.Code, rec.Body.String())
	}

	var shop dto.ShopResponse
	if err := json.NewDecoder(rec.Body).Decode(&shop); err != nil {
		t.Fatalf("decode shop: %v", err)
	}
	if shop.ID != "003001" {
		t.Errorf("expected code 003001, got %q", shop.ID)
	}

	rec = env.do(t, http.MethodDelete, "/shops/"+shop.ID, adminToken, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("remove shop: status %d body %s", rec.Code, rec.Body.String())
	}
}

func TestRemoveReferencedShopBlocked(t *testing.T) {
	env := newTestEnv(t)
	env.createRoute(t, []string{"001001", "001002"})

	rec := env.do(t, http.MethodDelete, "/shops/001001", mintToken(t, "admin1", domain.RoleAdmin), nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body %s", rec.Code, rec.Body.String())
	}
}

func TestAuditTrailAccumulates(t *testing.T) {
	env := newTestEnv(t)
	route := env.createRoute(t, []string{"001001", "001002"})

	workerToken := mintToken(t, "w1", domain.RoleDeliveryStaff)
	env.do(t, http.MethodPost, "/routes/claim", workerToken, dto.ClaimRouteRequest{RouteID: route.ID})
	env.do(t, http.MethodPut, "/routes/"+route.ID+"/status", workerToken,
		dto.UpdateStatusRequest{Status: "delivering"})

	actions := make([]string, 0)
	for _, ev := range env.audit.Events() {
		actions = append(actions, ev.Action)
	}

	want := []string{domain.AuditRouteCreated, domain.AuditRouteClaimed, domain.AuditRouteStatusChanged}
	if len(actions) != len(want) {
		t.Fatalf("expected %d audit events, got %v", len(want), actions)
	}
	for i := range want {
		if actions[i] != want[i] {
			t.Fatalf("expected audit actions %v, got %v", want, actions)
		}
	}
}
