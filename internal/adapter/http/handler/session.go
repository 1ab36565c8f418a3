package handler

import (
	"context"
	"net/http"

	"github.com/ridermi/rider-agent/internal/adapter/http/handler/dto"
	"github.com/ridermi/rider-agent/internal/domain/models"
	"github.com/ridermi/rider-agent/pkg/logger"
	wrap "github.com/ridermi/rider-agent/pkg/logger/wrapper"
	"github.com/ridermi/rider-agent/pkg/validator"
)

type Session struct {
	service SessionService
	engine  RiderLifecycle
	l       logger.Logger
}

type SessionService interface {
	SignIn(ctx context.Context, email, password string) (models.Rider, error)
	SignOut(ctx context.Context)
	Current() (models.Rider, bool)
}

// RiderLifecycle is the engine's attach/detach boundary: the signed-in rider drives
// which state the pollers work on.
type RiderLifecycle interface {
	AttachRider(ctx context.Context, rider models.Rider)
	DetachRider(ctx context.Context)
}

func NewSession(service SessionService, engine RiderLifecycle, l logger.Logger) *Session {
	return &Session{
		service: service,
		engine:  engine,
		l:       l,
	}
}

func (h *Session) SignIn(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "sign_in")

	var req dto.SignInRequest
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

	rider, err := h.service.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to sign in", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	h.engine.AttachRider(ctx, rider)

	response := envelope{
		"rider": dto.RiderToResponse(rider),
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(wrap.WithRiderID(ctx, rider.UID), "rider signed in")
}

func (h *Session) SignOut(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "sign_out")

	h.engine.DetachRider(ctx)
	h.service.SignOut(ctx)

	if err := writeJSON(w, http.StatusOK, envelope{"message": "signed out"}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "rider signed out")
}

func (h *Session) Me(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "current_rider")

	rider, ok := h.service.Current()
	if !ok {
		errorResponse(w, http.StatusUnauthorized, "not signed in")
		return
	}

	response := envelope{
		"rider": dto.RiderToResponse(rider),
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}
