package routing

import (
	"context"
	"fmt"

	"route-dispatch-service/internal/domain"
	"route-dispatch-service/internal/ports"
)

type MockLeg struct {
	From, To domain.Coordinates
	Km       float64
	Seconds  int
}

// MockLegProvider serves canned leg results for tests. Missing pairs
// fail the same way the real provider does when no route exists.
type MockLegProvider struct {
	m     map[string]ports.LegResult
	calls int
}

func NewMockLegProvider(legs []MockLeg) *MockLegProvider {
	m := make(map[string]ports.LegResult, len(legs))
	for _, l := range legs {
		m[legKey(l.From, l.To)] = ports.LegResult{DistanceKm: l.Km, DurationSeconds: l.Seconds}
	}
	return &MockLegProvider{m: m}
}

func (p *MockLegProvider) Leg(
	ctx context.Context,
	from, to domain.Coordinates,
) (ports.LegResult, error) {
	p.calls++
	r, ok := p.m[legKey(from, to)]
	if !ok {
		return ports.LegResult{}, fmt.Errorf("leg %s: %w", legKey(from, to), domain.ErrNoRouteFound)
	}
	return r, nil
}

// Calls reports how many leg lookups have been issued.
func (p *MockLegProvider) Calls() int { return p.calls }

func legKey(from, to domain.Coordinates) string {
	return fmt.Sprintf("%.6f,%.6f|%.6f,%.6f", from.Lon, from.Lat, to.Lon, to.Lat)
}
