package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"route-dispatch-service/internal/domain"
	"route-dispatch-service/internal/platform/obs"
)

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// Geocode resolves a single address using OpenRouteService
// (/geocode/search), constrained to the configured country.
func (o *ORSRoutingProvider) Geocode(
	ctx context.Context,
	address string,
) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	endpoint := o.baseURL + "/geocode/search"
	norm := o.normalize(address)

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", norm)
		q.Set("boundary.country", o.country)
		q.Set("size", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode request failed: %w", classify(err))
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, fmt.Errorf("no geocode results for %q", address)
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinates{}, fmt.Errorf("invalid coordinate format for %q", address)
	}

	return domain.Coordinates{Lon: coords[0], Lat: coords[1]}, nil
}

func (o *ORSRoutingProvider) normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
