package engine

import (
	"context"
	"errors"
	"time"

	"github.com/ridermi/rider-agent/internal/domain/types"
	wrap "github.com/ridermi/rider-agent/pkg/logger/wrapper"
	"github.com/ridermi/rider-agent/pkg/metrics"
)

// Start runs the three poll loops until ctx is cancelled. Each loop is gated by
// its own precondition and each tick degrades to a no-op when the gate is closed,
// so the tickers run for the lifetime of the process.
func (e *Engine) Start(ctx context.Context) {
	go e.loop(ctx, e.opts.AvailableInterval, e.pollAvailable)
	go e.loop(ctx, e.opts.LookupInterval, e.pollLookup)
	go e.loop(ctx, e.opts.DetailInterval, e.pollDetail)
}

func (e *Engine) loop(ctx context.Context, interval time.Duration, tick func(context.Context)) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			tick(ctx)
		}
	}
}

// pollAvailable refreshes the browsable list of unclaimed rides. It runs only for
// a signed-in, online rider with no active ride; a failed fetch keeps the previous
// list on screen.
func (e *Engine) pollAvailable(ctx context.Context) {
	e.mu.Lock()
	uid := e.riderUID
	gated := uid == "" || !e.online || e.activeRideID != ""
	e.mu.Unlock()

	if gated {
		return
	}
	ctx = wrap.WithRiderID(ctx, uid)

	start := time.Now()
	rides, err := e.source.AvailableRides(ctx)
	metrics.RecordPollCycle(serviceName, "available_rides", err, time.Since(start))
	if err != nil {
		if e.markAuthFailure(ctx, err) {
			return
		}
		e.l.Warn(wrap.ErrorCtx(ctx, err), "failed to fetch available rides", "err", err.Error())
		return
	}

	e.mu.Lock()
	if e.riderUID != uid {
		e.mu.Unlock()
		return
	}
	e.available = rides
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.broadcast(snap)
}

// pollLookup asks the server which ride, if any, is currently assigned to this
// rider. This is the authoritative signal of the merge.
func (e *Engine) pollLookup(ctx context.Context) {
	e.mu.Lock()
	uid := e.riderUID
	e.mu.Unlock()

	if uid == "" {
		return
	}
	ctx = wrap.WithRiderID(ctx, uid)

	start := time.Now()
	ride, err := e.source.ActiveRide(ctx)
	metrics.RecordPollCycle(serviceName, "active_ride_lookup", err, time.Since(start))
	if err != nil {
		if e.markAuthFailure(ctx, err) {
			return
		}
		e.l.Warn(wrap.ErrorCtx(ctx, err), "failed active ride lookup", "err", err.Error())
		return
	}

	e.applyAuthoritative(ctx, ride)
}

// pollDetail refreshes the status and fields of the believed active ride. Gated by
// the consecutive-failure suspension; resumed by RetryDetail or by adoption of a
// new ride.
func (e *Engine) pollDetail(ctx context.Context) {
	e.mu.Lock()
	uid := e.riderUID
	rideID := e.activeRideID
	gen := e.gen
	gated := uid == "" || rideID == "" || e.suspended
	e.mu.Unlock()

	if gated {
		return
	}
	ctx = wrap.WithLogCtx(ctx, wrap.LogCtx{RiderID: uid, RideID: rideID})

	start := time.Now()
	ride, err := e.source.Ride(ctx, rideID)
	metrics.RecordPollCycle(serviceName, "ride_detail", err, time.Since(start))

	e.applyDetail(ctx, gen, ride, err)
}

// markAuthFailure handles an unauthenticated poll: all ride state is discarded
// and the reauth flag raised. Returns false for any other error.
func (e *Engine) markAuthFailure(ctx context.Context, err error) bool {
	if !errors.Is(err, types.ErrUnauthenticated) {
		return false
	}

	e.mu.Lock()
	e.clearActiveLocked(ctx, "authentication failure")
	e.reauth = true
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.broadcast(snap)
	return true
}
