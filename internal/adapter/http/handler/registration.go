package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/ridermi/rider-agent/internal/adapter/http/handler/dto"
	"github.com/ridermi/rider-agent/internal/domain/models"
	"github.com/ridermi/rider-agent/internal/service/registration"
	"github.com/ridermi/rider-agent/pkg/logger"
	wrap "github.com/ridermi/rider-agent/pkg/logger/wrapper"
)

type Registration struct {
	service RegistrationService
	l       logger.Logger
}

type RegistrationService interface {
	Draft(ctx context.Context, riderUID string) models.RegistrationDraft
	SavePersonal(ctx context.Context, riderUID string, in models.PersonalInfo) (models.RegistrationDraft, error)
	SaveVehicle(ctx context.Context, riderUID string, in models.VehicleInfo) (models.RegistrationDraft, error)
	SaveStates(ctx context.Context, riderUID string, in models.StateSelection) (models.RegistrationDraft, error)
	SaveDocuments(ctx context.Context, riderUID string, in models.Documents) (models.RegistrationDraft, error)
	Submit(ctx context.Context, riderUID string) error
}

func NewRegistration(service RegistrationService, l logger.Logger) *Registration {
	return &Registration{
		service: service,
		l:       l,
	}
}

// Draft returns the persisted wizard state so the front-end resumes on the right step.
func (h *Registration) Draft(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "registration_draft")

	rider, ok := models.RiderFromContext(ctx)
	if !ok {
		errorResponse(w, http.StatusUnauthorized, "sign in required")
		return
	}

	response := envelope{
		"draft": h.service.Draft(ctx, rider.UID),
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}

func (h *Registration) SavePersonal(w http.ResponseWriter, r *http.Request) {
	var req dto.PersonalInfoRequest
	h.saveStep(w, r, "registration_personal_info", &req, func(ctx context.Context, uid string) (models.RegistrationDraft, error) {
		return h.service.SavePersonal(ctx, uid, req.ToModel())
	})
}

func (h *Registration) SaveVehicle(w http.ResponseWriter, r *http.Request) {
	var req dto.VehicleInfoRequest
	h.saveStep(w, r, "registration_vehicle_info", &req, func(ctx context.Context, uid string) (models.RegistrationDraft, error) {
		return h.service.SaveVehicle(ctx, uid, req.ToModel())
	})
}

func (h *Registration) SaveStates(w http.ResponseWriter, r *http.Request) {
	var req dto.StateSelectionRequest
	h.saveStep(w, r, "registration_state_selection", &req, func(ctx context.Context, uid string) (models.RegistrationDraft, error) {
		return h.service.SaveStates(ctx, uid, req.ToModel())
	})
}

func (h *Registration) SaveDocuments(w http.ResponseWriter, r *http.Request) {
	var req dto.DocumentsRequest
	h.saveStep(w, r, "registration_documents", &req, func(ctx context.Context, uid string) (models.RegistrationDraft, error) {
		return h.service.SaveDocuments(ctx, uid, req.ToModel())
	})
}

func (h *Registration) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "registration_submit")

	rider, ok := models.RiderFromContext(ctx)
	if !ok {
		errorResponse(w, http.StatusUnauthorized, "sign in required")
		return
	}

	if err := h.service.Submit(ctx, rider.UID); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to submit registration", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"message": "registration submitted"}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(wrap.WithRiderID(ctx, rider.UID), "registration submitted")
}

// saveStep is the shared body of the four wizard-step endpoints: decode, run the
// step, map validation failures to 422.
func (h *Registration) saveStep(w http.ResponseWriter, r *http.Request, action string, req any, run func(ctx context.Context, uid string) (models.RegistrationDraft, error)) {
	ctx := wrap.WithAction(r.Context(), action)

	rider, ok := models.RiderFromContext(ctx)
	if !ok {
		errorResponse(w, http.StatusUnauthorized, "sign in required")
		return
	}

	if err := readJSON(w, r, req); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to read request JSON data", err)
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	draft, err := run(ctx, rider.UID)
	if err != nil {
		var vErr *registration.ErrValidation
		if errors.As(err, &vErr) {
			h.l.Warn(ctx, "invalid request data")
			failedValidationResponse(w, vErr.Fields)
			return
		}
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to save registration step", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"draft": draft,
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}
