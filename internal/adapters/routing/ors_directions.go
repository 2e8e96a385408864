package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"route-dispatch-service/internal/domain"
	"route-dispatch-service/internal/ports"
)

type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"summary"`
	} `json:"routes"`
}

// fetchLeg retrieves the driving distance and duration between two
// waypoints using the OpenRouteService directions endpoint.
func (o *ORSRoutingProvider) fetchLeg(
	ctx context.Context,
	from, to domain.Coordinates,
) (ports.LegResult, error) {
	endpoint := fmt.Sprintf("%s/v2/directions/%s", o.baseURL, o.profile)

	bodyObj := directionsRequest{
		Coordinates: [][]float64{from.CoordsToList(), to.CoordsToList()},
	}

	payload, err := json.Marshal(bodyObj)
	if err != nil {
		return ports.LegResult{}, fmt.Errorf("marshal directions request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		body := bytes.NewReader(payload)
		return o.newRequest(ctx, http.MethodPost, endpoint, body)
	})
	if err != nil {
		return ports.LegResult{}, fmt.Errorf("directions request failed: %w", classify(err))
	}
	defer resp.Body.Close()

	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return ports.LegResult{}, fmt.Errorf("decode directions response: %w", err)
	}

	if len(dr.Routes) == 0 {
		return ports.LegResult{}, fmt.Errorf(
			"no route between %s and %s: %w",
			coordKey(from), coordKey(to), domain.ErrNoRouteFound,
		)
	}

	summary := dr.Routes[0].Summary

	// ORS reports meters and seconds; the domain works in kilometers.
	return ports.LegResult{
		DistanceKm:      summary.Distance / 1000,
		DurationSeconds: int(math.Round(summary.Duration)),
	}, nil
}
