package earnings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ridermi/rider-agent/internal/domain/models"
	"github.com/ridermi/rider-agent/internal/domain/types"
	"github.com/ridermi/rider-agent/pkg/logger"
)

type fakeGateway struct {
	ridesFn    func() ([]models.HistoryEntry, error)
	earningsFn func(periodDays int) (models.Earnings, error)
}

func (g *fakeGateway) RiderRides(_ context.Context) ([]models.HistoryEntry, error) {
	return g.ridesFn()
}

func (g *fakeGateway) RiderEarnings(_ context.Context, periodDays int) (models.Earnings, error) {
	return g.earningsFn(periodDays)
}

func newService(g *fakeGateway) *Service {
	return New(g, logger.InitLogger("earnings-test", logger.LevelError))
}

func TestEarnings_PeriodDayMapping(t *testing.T) {
	cases := map[types.EarningsPeriod]int{
		types.PeriodToday: 1,
		types.PeriodWeek:  7,
		types.PeriodMonth: 30,
	}

	for period, wantDays := range cases {
		var gotDays int
		s := newService(&fakeGateway{
			earningsFn: func(periodDays int) (models.Earnings, error) {
				gotDays = periodDays
				return models.Earnings{PeriodDays: periodDays}, nil
			},
		})

		if _, err := s.Earnings(context.Background(), period); err != nil {
			t.Fatalf("earnings(%s): %v", period, err)
		}
		if gotDays != wantDays {
			t.Fatalf("period %s must query %d days, got %d", period, wantDays, gotDays)
		}
	}
}

func TestEarnings_UnknownPeriodRejected(t *testing.T) {
	s := newService(&fakeGateway{
		earningsFn: func(int) (models.Earnings, error) {
			t.Fatalf("unknown period must not reach the gateway")
			return models.Earnings{}, nil
		},
	})

	if _, err := s.Earnings(context.Background(), types.EarningsPeriod("year")); err == nil {
		t.Fatalf("expected an error for an unknown period")
	}
}

func TestSummary_Aggregates(t *testing.T) {
	s := newService(&fakeGateway{
		earningsFn: func(int) (models.Earnings, error) {
			return models.Earnings{TotalEarnings: 120, TotalRides: 4, PeriodDays: 7}, nil
		},
		ridesFn: func() ([]models.HistoryEntry, error) {
			return []models.HistoryEntry{
				{ID: "1", Status: "COMPLETED", Fare: 30, CompletedAt: time.Now()},
				{ID: "2", Status: "COMPLETED", Fare: 50, CompletedAt: time.Now()},
				{ID: "3", Status: "CANCELLED"},
				{ID: "4", Status: "COMPLETED", Fare: 40, CompletedAt: time.Now()},
			}, nil
		},
	})

	sum, err := s.Summary(context.Background(), types.PeriodWeek)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}

	if sum.CompletedRides != 3 || sum.CancelledRides != 1 {
		t.Fatalf("wrong outcome counts: %+v", sum)
	}
	if sum.AveragePerRide != 30 {
		t.Fatalf("expected average 30, got %v", sum.AveragePerRide)
	}
	if sum.Period != "week" {
		t.Fatalf("expected period name preserved, got %q", sum.Period)
	}
}

func TestSummary_PropagatesGatewayError(t *testing.T) {
	wantErr := errors.New("gateway down")
	s := newService(&fakeGateway{
		earningsFn: func(int) (models.Earnings, error) {
			return models.Earnings{}, wantErr
		},
	})

	if _, err := s.Summary(context.Background(), types.PeriodToday); !errors.Is(err, wantErr) {
		t.Fatalf("expected gateway error, got %v", err)
	}
}
