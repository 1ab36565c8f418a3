package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/ridermi/rider-agent/internal/domain/types"
	wrap "github.com/ridermi/rider-agent/pkg/logger/wrapper"
)

var (
	ErrLocationNotFound = fmt.Errorf("location not found")

	domain = "https://api.mapbox.com"
)

// Client wraps the mapping/geocoding service. Results are display-only; nothing the
// reconciliation engine decides depends on them.
type Client struct {
	token string
	http  *http.Client
}

func New(token string, timeout time.Duration) *Client {
	return &Client{
		token: token,
		http:  &http.Client{Timeout: timeout},
	}
}

type GeocodeResult struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Route struct {
	DistanceKm  float64 `json:"distance_km"`
	DurationMin int     `json:"duration_min"`
	// Geometry is the GeoJSON line of the driving route, passed through untouched
	// for the map layer.
	Geometry json.RawMessage `json:"geometry"`
}

// ReverseGeocode resolves coordinates to a display address.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	const op = "MapboxClient.ReverseGeocode"

	reqURL := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%f,%f.json?access_token=%s", domain, lng, lat, c.token)

	var payload struct {
		Features []struct {
			PlaceName string `json:"place_name"`
		} `json:"features"`
	}
	if err := c.get(ctx, op, reqURL, &payload); err != nil {
		return "", err
	}

	if len(payload.Features) == 0 {
		return "", wrap.Error(ctx, ErrLocationNotFound)
	}
	return payload.Features[0].PlaceName, nil
}

// ForwardGeocode resolves an address to candidate coordinates (up to 5).
func (c *Client) ForwardGeocode(ctx context.Context, address string) ([]GeocodeResult, error) {
	const op = "MapboxClient.ForwardGeocode"

	reqURL := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json?access_token=%s&limit=5", domain, url.PathEscape(address), c.token)

	var payload struct {
		Features []struct {
			PlaceName string     `json:"place_name"`
			Center    [2]float64 `json:"center"`
		} `json:"features"`
	}
	if err := c.get(ctx, op, reqURL, &payload); err != nil {
		return nil, err
	}

	out := make([]GeocodeResult, 0, len(payload.Features))
	for _, f := range payload.Features {
		out = append(out, GeocodeResult{
			Address:   f.PlaceName,
			Longitude: f.Center[0],
			Latitude:  f.Center[1],
		})
	}
	return out, nil
}

// DrivingRoute fetches the driving route between two points.
func (c *Client) DrivingRoute(ctx context.Context, fromLat, fromLng, toLat, toLng float64) (*Route, error) {
	const op = "MapboxClient.DrivingRoute"

	reqURL := fmt.Sprintf("%s/directions/v5/mapbox/driving/%f,%f;%f,%f?geometries=geojson&overview=full&access_token=%s",
		domain, fromLng, fromLat, toLng, toLat, c.token)

	var payload struct {
		Routes []struct {
			Geometry json.RawMessage `json:"geometry"`
			Distance float64         `json:"distance"`
			Duration float64         `json:"duration"`
		} `json:"routes"`
	}
	if err := c.get(ctx, op, reqURL, &payload); err != nil {
		return nil, err
	}

	if len(payload.Routes) == 0 {
		return nil, wrap.Error(ctx, ErrLocationNotFound)
	}

	r := payload.Routes[0]
	return &Route{
		DistanceKm:  r.Distance / 1000,
		DurationMin: int(math.Round(r.Duration / 60)),
		Geometry:    r.Geometry,
	}, nil
}

func (c *Client) get(ctx context.Context, op, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: failed to build request: %w", op, err))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		return wrap.Error(ctx, fmt.Errorf("%s: request failed: %w", op, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		return wrap.Error(ctx, fmt.Errorf("%s: unexpected response status %d", op, resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: failed to decode response: %w", op, err))
	}
	return nil
}
