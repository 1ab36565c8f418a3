package handler

import (
	"context"
	"net/http"

	"github.com/ridermi/rider-agent/internal/adapter/http/handler/dto"
	"github.com/ridermi/rider-agent/internal/domain/models"
	"github.com/ridermi/rider-agent/pkg/logger"
	wrap "github.com/ridermi/rider-agent/pkg/logger/wrapper"
)

type Ride struct {
	engine RideEngine
	l      logger.Logger
}

// RideEngine is the reconciled-state boundary the API exposes. Snapshot is always
// served from memory, never from a fresh network call.
type RideEngine interface {
	Snapshot() models.EngineState
	Accept(ctx context.Context, rideID string) (*models.RideSnapshot, error)
	Advance(ctx context.Context, confirmCode string) (*models.RideSnapshot, error)
	Cancel(ctx context.Context) (*models.RideSnapshot, error)
	RetryDetail(ctx context.Context) error
}

func NewRide(engine RideEngine, l logger.Logger) *Ride {
	return &Ride{
		engine: engine,
		l:      l,
	}
}

// State returns the current reconciled snapshot.
func (h *Ride) State(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_state")

	response := envelope{
		"state": h.engine.Snapshot(),
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}

// Available lists the browsable unclaimed rides from the last poll.
func (h *Ride) Available(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_available_rides")

	snap := h.engine.Snapshot()
	response := envelope{
		"rides":  snap.AvailableRides,
		"online": snap.Online,
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}

func (h *Ride) Accept(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "accept_ride")

	rideID := r.PathValue("ride_id")
	if rideID == "" {
		errorResponse(w, http.StatusBadRequest, "ride_id is required")
		return
	}

	ride, err := h.engine.Accept(ctx, rideID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to accept ride", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"ride": ride,
	}

	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(wrap.WithRideID(ctx, ride.Key()), "ride accepted")
}

func (h *Ride) Advance(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "advance_ride_status")

	// Body is optional except for the final transition, which needs the code
	var req dto.AdvanceRequest
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &req); err != nil {
			h.l.Error(wrap.ErrorCtx(ctx, err), "failed to read request JSON data", err)
			errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	ride, err := h.engine.Advance(ctx, req.ConfirmCode)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to advance ride status", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"ride": ride,
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(wrap.WithRideID(ctx, ride.Key()), "ride status advanced", "status", ride.Status)
}

func (h *Ride) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "cancel_ride")

	ride, err := h.engine.Cancel(ctx)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to cancel ride", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"ride": ride,
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(wrap.WithRideID(ctx, ride.Key()), "ride cancelled")
}

// RetryDetail resumes a suspended detail poll.
func (h *Ride) RetryDetail(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "retry_detail_poll")

	if err := h.engine.RetryDetail(ctx); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to retry detail poll", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"state": h.engine.Snapshot(),
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}
