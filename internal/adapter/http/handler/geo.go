package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ridermi/rider-agent/internal/adapter/mapbox"
	"github.com/ridermi/rider-agent/internal/domain/models"
	"github.com/ridermi/rider-agent/pkg/logger"
	wrap "github.com/ridermi/rider-agent/pkg/logger/wrapper"
)

type Geo struct {
	maps   GeoService
	engine RideEngine
	l      logger.Logger
}

type GeoService interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
	ForwardGeocode(ctx context.Context, address string) ([]mapbox.GeocodeResult, error)
	DrivingRoute(ctx context.Context, fromLat, fromLng, toLat, toLng float64) (*mapbox.Route, error)
}

func NewGeo(maps GeoService, engine RideEngine, l logger.Logger) *Geo {
	return &Geo{
		maps:   maps,
		engine: engine,
		l:      l,
	}
}

// Reverse resolves ?lat=..&lng=.. to a display address.
func (h *Geo) Reverse(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "reverse_geocode")

	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if errLat != nil || errLng != nil {
		errorResponse(w, http.StatusBadRequest, "lat and lng query parameters are required")
		return
	}

	address, err := h.maps.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to reverse geocode", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"address": address}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}

// Search forward-geocodes ?q=.. to candidate locations.
func (h *Geo) Search(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "forward_geocode")

	query := r.URL.Query().Get("q")
	if query == "" {
		errorResponse(w, http.StatusBadRequest, "q query parameter is required")
		return
	}

	results, err := h.maps.ForwardGeocode(ctx, query)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to forward geocode", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"results": results}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}

// ActiveRoute returns the pickup-to-dropoff driving route of the active ride for
// the map layer.
func (h *Geo) ActiveRoute(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "active_ride_route")

	snap := h.engine.Snapshot()
	if snap.ActiveRide == nil {
		errorResponse(w, http.StatusNotFound, "no active ride")
		return
	}

	from, to, ok := routeEndpoints(snap.ActiveRide)
	if !ok {
		errorResponse(w, http.StatusUnprocessableEntity, "active ride has no coordinates")
		return
	}

	route, err := h.maps.DrivingRoute(ctx, from.lat, from.lng, to.lat, to.lng)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to fetch driving route", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"route":    route,
		"distance": mapbox.FormatDistance(route.DistanceKm),
		"duration": mapbox.FormatDuration(route.DurationMin),
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}

type point struct {
	lat, lng float64
}

func routeEndpoints(ride *models.RideSnapshot) (from, to point, ok bool) {
	if ride.PickupLat == nil || ride.PickupLng == nil || ride.DropoffLat == nil || ride.DropoffLng == nil {
		return point{}, point{}, false
	}

	pickup := point{*ride.PickupLat, *ride.PickupLng}
	dropoff := point{*ride.DropoffLat, *ride.DropoffLng}
	return pickup, dropoff, true
}
