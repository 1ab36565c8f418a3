/*
Package engine reconciles the rider's "current active ride" from three independent
signals: the authoritative active-ride lookup poll, the result of user-initiated
mutations, and the locally persisted handle. The merge is a fixed priority:

 1. a non-null authoritative lookup always wins and overwrites any local belief,
 2. a successful accept() result is adopted immediately as a provisional active
    ride and persisted, without waiting for the next lookup,
 3. the persisted handle is consulted once, at attach time, only when nothing else
    has spoken yet and only when not stale.

The rule is total and order-independent; late poll responses are discarded by a
generation counter. The engine also owns the lifecycle status walk, the clearing
rules, and the presence coupling (a rider with an active ride cannot be offline).
*/
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ridermi/rider-agent/internal/domain/models"
	"github.com/ridermi/rider-agent/internal/domain/types"
	"github.com/ridermi/rider-agent/pkg/logger"
	wrap "github.com/ridermi/rider-agent/pkg/logger/wrapper"
	"github.com/ridermi/rider-agent/pkg/metrics"
)

const serviceName = "rider-agent"

type Options struct {
	AvailableInterval time.Duration
	LookupInterval    time.Duration
	DetailInterval    time.Duration
	DetailMaxFailures int
	TerminalGrace     time.Duration
	HandleStaleness   time.Duration
	BannerTTL         time.Duration
}

func (o *Options) withDefaults() {
	if o.AvailableInterval <= 0 {
		o.AvailableInterval = 10 * time.Second
	}
	if o.LookupInterval <= 0 {
		o.LookupInterval = 5 * time.Second
	}
	if o.DetailInterval <= 0 {
		o.DetailInterval = 3 * time.Second
	}
	if o.DetailMaxFailures <= 0 {
		o.DetailMaxFailures = 5
	}
	if o.TerminalGrace <= 0 {
		o.TerminalGrace = 5 * time.Second
	}
	if o.HandleStaleness <= 0 {
		o.HandleStaleness = 2 * time.Hour
	}
	if o.BannerTTL <= 0 {
		o.BannerTTL = 5 * time.Second
	}
}

type Engine struct {
	gateway  RideGateway
	source   SyncSource
	store    HandleStore
	presence PresenceStore
	opts     Options
	l        logger.Logger
	now      func() time.Time

	mu             sync.Mutex
	riderUID       string
	online         bool
	activeRideID   string
	activeRide     *models.RideSnapshot
	available      []models.RideSnapshot
	detailFailures int
	suspended      bool
	reauth         bool
	banner         *models.Banner
	clearScheduled bool
	// gen changes whenever the active ride identity changes; responses tagged with
	// an older gen are discarded (stale-response guard)
	gen uint64

	subMu   sync.Mutex
	subs    map[int]chan models.EngineState
	nextSub int
}

func New(gateway RideGateway, source SyncSource, store HandleStore, presence PresenceStore, opts Options, l logger.Logger) *Engine {
	opts.withDefaults()
	return &Engine{
		gateway:  gateway,
		source:   source,
		store:    store,
		presence: presence,
		opts:     opts,
		l:        l,
		now:      time.Now,
		subs:     make(map[int]chan models.EngineState),
	}
}

/* ======================= attach / detach ======================= */

// AttachRider installs the signed-in rider and performs the one-time startup
// restoration: presence sync from the remote mirror and, if nothing authoritative
// has spoken yet, seeding a provisional active ride from the persisted handle.
// Staleness of the handle is evaluated here, once, not continuously.
func (e *Engine) AttachRider(ctx context.Context, rider models.Rider) {
	ctx = wrap.WithRiderID(ctx, rider.UID)

	online := e.restoreOnline(ctx, rider.UID)

	e.mu.Lock()
	e.riderUID = rider.UID
	e.online = online
	e.activeRideID = ""
	e.activeRide = nil
	e.available = nil
	e.detailFailures = 0
	e.suspended = false
	e.reauth = false
	e.banner = nil
	e.clearScheduled = false
	e.gen++

	if h, err := e.store.Handle(rider.UID); err == nil {
		if h.Stale(e.now(), e.opts.HandleStaleness) {
			e.l.Info(wrap.WithAction(ctx, types.ActionHandleCleared), "discarding stale ride handle",
				"saved_ride_id", h.SavedRideID,
				"last_active", h.LastActive,
			)
			if err := e.store.ClearHandle(rider.UID); err != nil {
				e.l.Warn(ctx, "failed to clear stale handle", "err", err.Error())
			}
		} else {
			// Provisional until the first authoritative lookup responds
			e.activeRideID = h.SavedRideID
			e.gen++
			e.l.Info(wrap.WithAction(wrap.WithRideID(ctx, h.SavedRideID), types.ActionHandleRestored), "restored active ride from handle")
		}
	}

	e.forcePresenceLocked(ctx)
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.broadcast(snap)
}

// DetachRider drops the in-memory state on sign-out. The persisted handle is kept:
// a fresh sign-in of the same rider restores it, subject to staleness.
func (e *Engine) DetachRider(ctx context.Context) {
	e.mu.Lock()
	e.riderUID = ""
	e.online = false
	e.activeRideID = ""
	e.activeRide = nil
	e.available = nil
	e.detailFailures = 0
	e.suspended = false
	e.reauth = false
	e.banner = nil
	e.clearScheduled = false
	e.gen++
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.broadcast(snap)
}

// restoreOnline reads the remote presence mirror, falling back to the local mirror
// when the store is unreachable, the same order the web client syncs on mount.
func (e *Engine) restoreOnline(ctx context.Context, riderUID string) bool {
	p, err := e.presence.ReadPresence(ctx, riderUID)
	if err == nil {
		if err := e.store.SavePresence(riderUID, p.Online); err != nil {
			e.l.Warn(ctx, "failed to mirror presence locally", "err", err.Error())
		}
		return p.Online
	}
	if !errors.Is(err, types.ErrNotFound) {
		e.l.Warn(ctx, "failed to read remote presence, using local mirror", "err", err.Error())
	}

	online, err := e.store.Presence(riderUID)
	if err != nil {
		return false
	}
	return online
}

/* ======================= user-initiated actions ======================= */

// Accept claims an unclaimed ride. On success the returned ride is adopted
// immediately as the provisional active ride and persisted; on failure nothing
// changes and the server's message is surfaced transiently.
func (e *Engine) Accept(ctx context.Context, rideID string) (*models.RideSnapshot, error) {
	ctx = wrap.WithLogCtx(ctx, wrap.LogCtx{Action: "accept_ride", RideID: rideID})

	e.mu.Lock()
	if e.riderUID == "" {
		e.mu.Unlock()
		return nil, types.ErrNotSignedIn
	}
	if e.activeRideID != "" {
		e.mu.Unlock()
		return nil, types.ErrRideAlreadyActive
	}
	e.mu.Unlock()

	ride, err := e.gateway.Accept(ctx, rideID)
	if err != nil {
		e.l.Error(wrap.ErrorCtx(ctx, err), "failed to accept ride", err)
		e.surface(err)
		return nil, err
	}

	e.mu.Lock()
	if e.riderUID == "" {
		// Signed out while the call was in flight
		e.mu.Unlock()
		return nil, types.ErrNotSignedIn
	}
	e.adoptLocked(ctx, ride.Key(), ride, true)
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.broadcast(snap)

	e.l.Info(ctx, "ride accepted", "adopted_ride_id", ride.Key())
	return ride, nil
}

// Advance submits the single legal forward transition for the active ride.
// Completion requires a well-formed 6-digit confirmation code, checked here before
// any network call; the code's value is validated server-side.
func (e *Engine) Advance(ctx context.Context, confirmCode string) (*models.RideSnapshot, error) {
	e.mu.Lock()
	if e.riderUID == "" {
		e.mu.Unlock()
		return nil, types.ErrNotSignedIn
	}
	if e.activeRideID == "" || e.activeRide == nil {
		e.mu.Unlock()
		return nil, types.ErrNoActiveRide
	}

	next, err := NextStatus(e.activeRide.Status)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	if next == types.StatusCompleted && !ValidDeliveryCode(confirmCode) {
		e.mu.Unlock()
		return nil, types.ErrInvalidDeliveryCode
	}
	if next != types.StatusCompleted {
		confirmCode = ""
	}

	rideKey := e.activeRide.Key()
	gen := e.gen
	e.mu.Unlock()

	ctx = wrap.WithLogCtx(ctx, wrap.LogCtx{Action: "advance_ride_status", RideID: rideKey})

	ride, err := e.gateway.UpdateStatus(ctx, rideKey, next, confirmCode)
	metrics.StatusTransitionsTotal.WithLabelValues(serviceName, next.String(), callStatus(err)).Inc()
	if err != nil {
		// Current status stays as it was; the rider may retry
		e.l.Error(wrap.ErrorCtx(ctx, err), "failed to update ride status", err)
		e.surface(err)
		return nil, err
	}

	e.applyMutationSnapshot(ctx, gen, ride)
	e.l.Info(ctx, "ride status updated", "new_status", ride.Status)
	return ride, nil
}

// Cancel moves the active ride to CANCELLED from any non-terminal status.
func (e *Engine) Cancel(ctx context.Context) (*models.RideSnapshot, error) {
	e.mu.Lock()
	if e.riderUID == "" {
		e.mu.Unlock()
		return nil, types.ErrNotSignedIn
	}
	if e.activeRideID == "" || e.activeRide == nil {
		e.mu.Unlock()
		return nil, types.ErrNoActiveRide
	}
	if !CanCancel(e.activeRide.Status) {
		e.mu.Unlock()
		return nil, types.ErrRideFinished
	}

	rideKey := e.activeRide.Key()
	gen := e.gen
	e.mu.Unlock()

	ctx = wrap.WithLogCtx(ctx, wrap.LogCtx{Action: "cancel_ride", RideID: rideKey})

	ride, err := e.gateway.UpdateStatus(ctx, rideKey, types.StatusCancelled, "")
	metrics.StatusTransitionsTotal.WithLabelValues(serviceName, types.StatusCancelled.String(), callStatus(err)).Inc()
	if err != nil {
		e.l.Error(wrap.ErrorCtx(ctx, err), "failed to cancel ride", err)
		e.surface(err)
		return nil, err
	}

	e.applyMutationSnapshot(ctx, gen, ride)
	e.l.Info(ctx, "ride cancelled")
	return ride, nil
}

// SetOnline turns presence on: local mirror first for instant reflection, remote
// write best-effort behind it.
func (e *Engine) SetOnline(ctx context.Context) error {
	e.mu.Lock()
	if e.riderUID == "" {
		e.mu.Unlock()
		return types.ErrNotSignedIn
	}
	uid := e.riderUID
	e.online = true
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.broadcast(snap)
	e.writePresence(ctx, uid, true)
	metrics.OnlineGauge.WithLabelValues(serviceName).Set(1)
	return nil
}

// SetOffline turns presence off. Rejected without any state change while an active
// ride exists: a rider must stay reachable during a delivery.
func (e *Engine) SetOffline(ctx context.Context) error {
	e.mu.Lock()
	if e.riderUID == "" {
		e.mu.Unlock()
		return types.ErrNotSignedIn
	}
	if e.activeRideID != "" {
		e.mu.Unlock()
		e.surface(types.ErrOfflineWithActiveRide)
		return types.ErrOfflineWithActiveRide
	}
	uid := e.riderUID
	e.online = false
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.broadcast(snap)
	e.writePresence(ctx, uid, false)
	metrics.OnlineGauge.WithLabelValues(serviceName).Set(0)
	return nil
}

// UpdateLocation records a geolocation callback from the front-end. While online it
// fires a best-effort, non-blocking remote write.
func (e *Engine) UpdateLocation(ctx context.Context, lat, lng float64) error {
	e.mu.Lock()
	if e.riderUID == "" {
		e.mu.Unlock()
		return types.ErrNotSignedIn
	}
	uid := e.riderUID
	online := e.online
	e.mu.Unlock()

	if !online {
		return nil
	}

	go func() {
		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := e.presence.WriteLocation(wctx, uid, lat, lng); err != nil {
			e.l.Warn(wctx, "failed to push location update", "err", err.Error())
		}
	}()
	return nil
}

// RetryDetail resets the consecutive-failure counter and resumes detail polling
// after it was suspended.
func (e *Engine) RetryDetail(ctx context.Context) error {
	e.mu.Lock()
	if e.activeRideID == "" {
		e.mu.Unlock()
		return types.ErrNoActiveRide
	}
	e.detailFailures = 0
	e.suspended = false
	snap := e.snapshotLocked()
	e.mu.Unlock()

	metrics.DetailPollFailures.WithLabelValues(serviceName).Set(0)
	e.broadcast(snap)
	e.pollDetail(ctx)
	return nil
}

/* ======================= reconciliation ======================= */

// adoptLocked installs rideID as the active ride. Adoption bumps the generation
// (discarding in-flight responses for the previous identity), persists the handle,
// and forces presence online. Callers hold e.mu.
func (e *Engine) adoptLocked(ctx context.Context, rideID string, ride *models.RideSnapshot, persist bool) {
	if e.activeRideID != rideID {
		e.gen++
		e.activeRideID = rideID
		e.detailFailures = 0
		e.suspended = false
		e.clearScheduled = false
	}
	e.activeRide = ride

	if persist {
		if err := e.store.SaveHandle(e.riderUID, rideID, e.now()); err != nil {
			e.l.Warn(ctx, "failed to persist ride handle", "err", err.Error())
		}
	}

	e.forcePresenceLocked(ctx)
	metrics.ActiveRideGauge.WithLabelValues(serviceName).Set(1)
}

// applyAuthoritative feeds one authoritative lookup response into the merge. A
// non-null ride always wins, including over a different locally believed id. A null
// response clears nothing by itself: the clear waits for a not-found confirmation
// from the detail poll.
func (e *Engine) applyAuthoritative(ctx context.Context, ride *models.RideSnapshot) {
	e.mu.Lock()
	if e.riderUID == "" {
		e.mu.Unlock()
		return
	}

	if ride == nil {
		e.mu.Unlock()
		return
	}

	ctx = wrap.WithAction(ctx, types.ActionAuthoritativeSync)
	if e.activeRideID != ride.Key() {
		e.l.Info(wrap.WithRideID(ctx, ride.Key()), "authoritative lookup overrides local belief",
			"previous_ride_id", e.activeRideID,
		)
	}
	e.adoptLocked(ctx, ride.Key(), ride, true)
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.broadcast(snap)
}

// applyMutationSnapshot installs a mutation result unless the active ride identity
// changed while the call was in flight.
func (e *Engine) applyMutationSnapshot(ctx context.Context, gen uint64, ride *models.RideSnapshot) {
	e.mu.Lock()
	if e.gen != gen {
		e.mu.Unlock()
		return
	}

	e.activeRide = ride
	if ride.Status.Terminal() {
		e.scheduleClearLocked(ctx)
	} else {
		if err := e.store.SaveHandle(e.riderUID, e.activeRideID, e.now()); err != nil {
			e.l.Warn(ctx, "failed to refresh ride handle", "err", err.Error())
		}
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.broadcast(snap)
}

// applyDetail feeds one detail poll outcome into the merge.
func (e *Engine) applyDetail(ctx context.Context, gen uint64, ride *models.RideSnapshot, pollErr error) {
	e.mu.Lock()
	if e.gen != gen || e.activeRideID == "" {
		// Response for a ride we no longer believe in
		e.mu.Unlock()
		return
	}

	switch {
	case pollErr == nil:
		e.detailFailures = 0
		e.activeRide = ride
		if ride.Status.Terminal() {
			// Server confirmed the ride finished: hold the terminal state on screen
			// for the grace period, then clear
			e.scheduleClearLocked(ctx)
		}

	case errors.Is(pollErr, types.ErrUnauthenticated):
		// Authentication failure discards all local ride state immediately
		e.clearActiveLocked(ctx, "authentication failure")
		e.reauth = true

	case errors.Is(pollErr, types.ErrRideNotFound):
		// Authoritative "no such ride": cleared immediately, no grace
		e.clearActiveLocked(ctx, "ride not found")

	default:
		// Transport errors never clear; they only count toward suspension
		e.detailFailures++
		metrics.DetailPollFailures.WithLabelValues(serviceName).Set(float64(e.detailFailures))
		if e.detailFailures >= e.opts.DetailMaxFailures {
			e.suspended = true
			e.banner = &models.Banner{
				Message:   types.ErrPollingSuspended.Error(),
				ExpiresAt: e.now().Add(e.opts.BannerTTL),
			}
			e.l.Warn(wrap.WithAction(ctx, types.ActionDetailPollFailed),
				"detail polling suspended after consecutive failures",
				"failures", e.detailFailures,
			)
		}
	}

	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.broadcast(snap)
}

// scheduleClearLocked arms the delayed clear after a terminal status, once. The
// generation captured here invalidates the timer if a different ride is adopted
// before it fires. Callers hold e.mu.
func (e *Engine) scheduleClearLocked(ctx context.Context) {
	if e.clearScheduled {
		return
	}
	e.clearScheduled = true
	gen := e.gen
	ctx = context.WithoutCancel(ctx)

	time.AfterFunc(e.opts.TerminalGrace, func() {
		e.mu.Lock()
		if e.gen != gen {
			e.mu.Unlock()
			return
		}
		e.clearActiveLocked(ctx, "terminal status grace elapsed")
		snap := e.snapshotLocked()
		e.mu.Unlock()
		e.broadcast(snap)
	})
}

// clearActiveLocked drops the active ride and its persisted handle. Idempotent:
// clearing an already-cleared state is a no-op. Callers hold e.mu.
func (e *Engine) clearActiveLocked(ctx context.Context, reason string) {
	if e.activeRideID == "" {
		return
	}

	ctx = wrap.WithLogCtx(ctx, wrap.LogCtx{Action: types.ActionHandleCleared, RideID: e.activeRideID})
	e.l.Info(ctx, "clearing active ride", "reason", reason)

	e.activeRideID = ""
	e.activeRide = nil
	e.detailFailures = 0
	e.suspended = false
	e.clearScheduled = false
	e.gen++

	if e.riderUID != "" {
		if err := e.store.ClearHandle(e.riderUID); err != nil {
			e.l.Warn(ctx, "failed to clear persisted handle", "err", err.Error())
		}
	}
	metrics.ActiveRideGauge.WithLabelValues(serviceName).Set(0)
}

// forcePresenceLocked enforces the coupling invariant: an active ride requires
// online presence. Callers hold e.mu.
func (e *Engine) forcePresenceLocked(ctx context.Context) {
	if e.activeRideID == "" || e.online {
		return
	}

	e.online = true
	uid := e.riderUID
	e.l.Info(wrap.WithAction(ctx, types.ActionPresenceForcedOnline), "forcing presence online for active ride")
	metrics.OnlineGauge.WithLabelValues(serviceName).Set(1)

	go e.writePresence(context.WithoutCancel(ctx), uid, true)
}

// writePresence updates the local mirror and the remote presence document.
func (e *Engine) writePresence(ctx context.Context, riderUID string, online bool) {
	if err := e.store.SavePresence(riderUID, online); err != nil {
		e.l.Warn(ctx, "failed to mirror presence locally", "err", err.Error())
	}

	wctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.presence.WritePresence(wctx, riderUID, online); err != nil {
		e.l.Warn(wctx, "failed to write remote presence", "err", err.Error())
	}
}

/* ======================= snapshots / banners ======================= */

// surface installs a transient user-visible error banner.
func (e *Engine) surface(err error) {
	e.mu.Lock()
	e.banner = &models.Banner{
		Message:   err.Error(),
		ExpiresAt: e.now().Add(e.opts.BannerTTL),
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.broadcast(snap)
}

// Snapshot returns the current reconciled state.
func (e *Engine) Snapshot() models.EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() models.EngineState {
	banner := e.banner
	if banner != nil && e.now().After(banner.ExpiresAt) {
		e.banner = nil
		banner = nil
	}

	var ride *models.RideSnapshot
	if e.activeRide != nil {
		r := *e.activeRide
		ride = &r
	}

	available := make([]models.RideSnapshot, len(e.available))
	copy(available, e.available)

	return models.EngineState{
		Online:           e.online,
		ActiveRideID:     e.activeRideID,
		ActiveRide:       ride,
		AvailableRides:   available,
		DetailFailures:   e.detailFailures,
		PollingSuspended: e.suspended,
		ReauthRequired:   e.reauth,
		Banner:           banner,
		UpdatedAt:        e.now(),
	}
}

// Subscribe registers a state listener. The returned cancel func must be called to
// release it. Slow listeners miss intermediate snapshots instead of blocking the
// engine.
func (e *Engine) Subscribe() (<-chan models.EngineState, func()) {
	ch := make(chan models.EngineState, 8)

	e.subMu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = ch
	e.subMu.Unlock()

	cancel := func() {
		e.subMu.Lock()
		if _, ok := e.subs[id]; ok {
			delete(e.subs, id)
			close(ch)
		}
		e.subMu.Unlock()
	}
	return ch, cancel
}

func (e *Engine) broadcast(snap models.EngineState) {
	e.subMu.Lock()
	defer e.subMu.Unlock()

	for _, ch := range e.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

func callStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
