package handler

import (
	"context"
	"net/http"

	"github.com/ridermi/rider-agent/internal/domain/models"
	"github.com/ridermi/rider-agent/internal/domain/types"
	"github.com/ridermi/rider-agent/pkg/logger"
	wrap "github.com/ridermi/rider-agent/pkg/logger/wrapper"
)

type Earnings struct {
	service EarningsService
	l       logger.Logger
}

type EarningsService interface {
	Summary(ctx context.Context, period types.EarningsPeriod) (models.EarningsSummary, error)
	History(ctx context.Context) ([]models.HistoryEntry, error)
}

func NewEarnings(service EarningsService, l logger.Logger) *Earnings {
	return &Earnings{
		service: service,
		l:       l,
	}
}

// Summary serves the stats view; ?period=today|week|month, default today.
func (h *Earnings) Summary(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "earnings_summary")

	period := types.EarningsPeriod(r.URL.Query().Get("period"))
	if period == "" {
		period = types.PeriodToday
	}
	if !period.Valid() {
		errorResponse(w, http.StatusBadRequest, "period must be one of today, week, month")
		return
	}

	summary, err := h.service.Summary(ctx, period)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to build earnings summary", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"summary": summary,
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}

func (h *Earnings) History(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "ride_history")

	history, err := h.service.History(ctx)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to fetch ride history", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"rides": history,
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}
