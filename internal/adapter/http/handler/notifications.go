package handler

import (
	"context"
	"net/http"

	"github.com/ridermi/rider-agent/internal/domain/models"
	"github.com/ridermi/rider-agent/pkg/logger"
	wrap "github.com/ridermi/rider-agent/pkg/logger/wrapper"
)

type Notifications struct {
	store NotificationStore
	l     logger.Logger
}

type NotificationStore interface {
	Notifications(ctx context.Context, riderUID string) ([]models.Notification, error)
	RegisterPushToken(ctx context.Context, riderUID, fcmToken string) error
}

func NewNotifications(store NotificationStore, l logger.Logger) *Notifications {
	return &Notifications{
		store: store,
		l:     l,
	}
}

func (h *Notifications) List(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_notifications")

	rider, ok := models.RiderFromContext(ctx)
	if !ok {
		errorResponse(w, http.StatusUnauthorized, "sign in required")
		return
	}

	items, err := h.store.Notifications(ctx, rider.UID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to list notifications", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"notifications": items,
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}

// RegisterToken stores the push token the front-end obtained from its messaging
// runtime, so ride events reach the rider while the UI is backgrounded.
func (h *Notifications) RegisterToken(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "register_push_token")

	rider, ok := models.RiderFromContext(ctx)
	if !ok {
		errorResponse(w, http.StatusUnauthorized, "sign in required")
		return
	}

	var req struct {
		Token string `json:"token"`
	}
	if err := readJSON(w, r, &req); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to read request JSON data", err)
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Token == "" {
		errorResponse(w, http.StatusBadRequest, "token is required")
		return
	}

	if err := h.store.RegisterPushToken(ctx, rider.UID, req.Token); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to register push token", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"message": "token registered"}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}
