// Package earnings serves the stats view: period-scoped earnings totals and the
// ride history list. Figures are computed server-side; this service only maps
// period names to day counts and derives the aggregate the view shows.
package earnings

import (
	"context"
	"fmt"

	"github.com/ridermi/rider-agent/internal/domain/models"
	"github.com/ridermi/rider-agent/internal/domain/types"
	"github.com/ridermi/rider-agent/pkg/logger"
	wrap "github.com/ridermi/rider-agent/pkg/logger/wrapper"
)

type ProfileGateway interface {
	RiderRides(ctx context.Context) ([]models.HistoryEntry, error)
	RiderEarnings(ctx context.Context, periodDays int) (models.Earnings, error)
}

type Service struct {
	gateway ProfileGateway
	l       logger.Logger
}

func New(gateway ProfileGateway, l logger.Logger) *Service {
	return &Service{gateway: gateway, l: l}
}

// Earnings fetches the totals for one reporting period. Always a fresh fetch; the
// view refetches on every period switch.
func (s *Service) Earnings(ctx context.Context, period types.EarningsPeriod) (models.Earnings, error) {
	if !period.Valid() {
		return models.Earnings{}, fmt.Errorf("unknown earnings period %q", period)
	}

	ctx = wrap.WithAction(ctx, "fetch_earnings")
	e, err := s.gateway.RiderEarnings(ctx, period.Days())
	if err != nil {
		s.l.Error(wrap.ErrorCtx(ctx, err), "failed to fetch earnings", err, "period", string(period))
		return models.Earnings{}, err
	}
	return e, nil
}

// History returns the rider's past rides as served, newest first.
func (s *Service) History(ctx context.Context) ([]models.HistoryEntry, error) {
	ctx = wrap.WithAction(ctx, "fetch_ride_history")
	rides, err := s.gateway.RiderRides(ctx)
	if err != nil {
		s.l.Error(wrap.ErrorCtx(ctx, err), "failed to fetch ride history", err)
		return nil, err
	}
	return rides, nil
}

// Summary combines the period totals with outcome counts from the history list.
func (s *Service) Summary(ctx context.Context, period types.EarningsPeriod) (models.EarningsSummary, error) {
	e, err := s.Earnings(ctx, period)
	if err != nil {
		return models.EarningsSummary{}, err
	}

	history, err := s.History(ctx)
	if err != nil {
		return models.EarningsSummary{}, err
	}

	sum := models.EarningsSummary{
		Period:        string(period),
		TotalEarnings: e.TotalEarnings,
		TotalRides:    e.TotalRides,
	}
	for _, h := range history {
		switch types.RideStatus(h.Status) {
		case types.StatusCompleted:
			sum.CompletedRides++
		case types.StatusCancelled:
			sum.CancelledRides++
		}
	}
	if e.TotalRides > 0 {
		sum.AveragePerRide = e.TotalEarnings / float64(e.TotalRides)
	}
	return sum, nil
}
