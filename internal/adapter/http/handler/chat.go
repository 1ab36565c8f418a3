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

type Chat struct {
	service ChatService
	l       logger.Logger
}

type ChatService interface {
	Messages(ctx context.Context) ([]models.ChatMessage, error)
	Send(ctx context.Context, senderID, text string) error
}

func NewChat(service ChatService, l logger.Logger) *Chat {
	return &Chat{
		service: service,
		l:       l,
	}
}

// Messages returns the active ride's thread, oldest first.
func (h *Chat) Messages(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_chat_messages")

	messages, err := h.service.Messages(ctx)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to list chat messages", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"messages": messages,
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}

func (h *Chat) Send(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "send_chat_message")

	rider, ok := models.RiderFromContext(ctx)
	if !ok {
		errorResponse(w, http.StatusUnauthorized, "sign in required")
		return
	}

	var req dto.SendMessageRequest
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

	if err := h.service.Send(ctx, rider.UID, req.Text); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to send chat message", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusCreated, envelope{"message": "sent"}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}
