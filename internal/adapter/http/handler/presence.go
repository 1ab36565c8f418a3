package handler

import (
	"context"
	"net/http"

	"github.com/ridermi/rider-agent/internal/adapter/http/handler/dto"
	"github.com/ridermi/rider-agent/pkg/logger"
	wrap "github.com/ridermi/rider-agent/pkg/logger/wrapper"
	"github.com/ridermi/rider-agent/pkg/validator"
)

type Presence struct {
	engine PresenceEngine
	l      logger.Logger
}

type PresenceEngine interface {
	SetOnline(ctx context.Context) error
	SetOffline(ctx context.Context) error
	UpdateLocation(ctx context.Context, lat, lng float64) error
}

func NewPresence(engine PresenceEngine, l logger.Logger) *Presence {
	return &Presence{
		engine: engine,
		l:      l,
	}
}

func (h *Presence) GoOnline(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "go_online")

	if err := h.engine.SetOnline(ctx); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to go online", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"status":  "ONLINE",
		"message": "You are now online and can browse rides",
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "rider set to online")
}

func (h *Presence) GoOffline(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "go_offline")

	if err := h.engine.SetOffline(ctx); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to go offline", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"status":  "OFFLINE",
		"message": "You are now offline",
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "rider set to offline")
}

func (h *Presence) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "update_location")

	var req dto.CoordinateUpdateReq
	if err := readJSON(w, r, &req); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to read request JSON data", err)
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	v := validator.New()
	req.Validate(v)
	if !v.Valid() {
		h.l.Warn(ctx, "invalid request data")
		failedValidationResponse(w, v.Errors)
		return
	}

	if err := h.engine.UpdateLocation(ctx, *req.Latitude, *req.Longitude); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to record location", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusAccepted, envelope{"message": "location recorded"}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}
