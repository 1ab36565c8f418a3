package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ridermi/rider-agent/internal/domain/models"
	"github.com/ridermi/rider-agent/internal/domain/types"
	"github.com/ridermi/rider-agent/pkg/logger"
)

/* ======================= fakes ======================= */

type fakeGateway struct {
	mu          sync.Mutex
	acceptFn    func(rideID string) (*models.RideSnapshot, error)
	updateFn    func(rideID string, status types.RideStatus, code string) (*models.RideSnapshot, error)
	updateCalls int
}

func (g *fakeGateway) Accept(_ context.Context, rideID string) (*models.RideSnapshot, error) {
	return g.acceptFn(rideID)
}

func (g *fakeGateway) UpdateStatus(_ context.Context, rideID string, status types.RideStatus, code string) (*models.RideSnapshot, error) {
	g.mu.Lock()
	g.updateCalls++
	g.mu.Unlock()
	return g.updateFn(rideID, status, code)
}

func (g *fakeGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.updateCalls
}

type fakeSource struct {
	availableFn func() ([]models.RideSnapshot, error)
	activeFn    func() (*models.RideSnapshot, error)
	rideFn      func(id string) (*models.RideSnapshot, error)
}

func (s *fakeSource) AvailableRides(_ context.Context) ([]models.RideSnapshot, error) {
	return s.availableFn()
}

func (s *fakeSource) ActiveRide(_ context.Context) (*models.RideSnapshot, error) {
	return s.activeFn()
}

func (s *fakeSource) Ride(_ context.Context, id string) (*models.RideSnapshot, error) {
	return s.rideFn(id)
}

type fakeStore struct {
	mu       sync.Mutex
	handles  map[string]models.RideHandle
	presence map[string]bool
	clears   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		handles:  make(map[string]models.RideHandle),
		presence: make(map[string]bool),
	}
}

func (s *fakeStore) Handle(uid string) (models.RideHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.handles[uid]
	if !ok {
		return models.RideHandle{}, types.ErrNotFound
	}
	return h, nil
}

func (s *fakeStore) SaveHandle(uid, rideID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handles[uid] = models.RideHandle{SavedRideID: rideID, LastActive: now}
	return nil
}

func (s *fakeStore) ClearHandle(uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.handles, uid)
	s.clears++
	return nil
}

func (s *fakeStore) Presence(uid string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	online, ok := s.presence[uid]
	if !ok {
		return false, types.ErrNotFound
	}
	return online, nil
}

func (s *fakeStore) SavePresence(uid string, online bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presence[uid] = online
	return nil
}

func (s *fakeStore) savedHandle(uid string) (models.RideHandle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.handles[uid]
	return h, ok
}

type fakePresence struct {
	mu       sync.Mutex
	remote   map[string]bool
	readErr  error
	writeErr error
}

func newFakePresence() *fakePresence {
	return &fakePresence{remote: make(map[string]bool)}
}

func (p *fakePresence) ReadPresence(_ context.Context, uid string) (models.Presence, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.readErr != nil {
		return models.Presence{}, p.readErr
	}
	online, ok := p.remote[uid]
	if !ok {
		return models.Presence{}, types.ErrNotFound
	}
	return models.Presence{Online: online}, nil
}

func (p *fakePresence) WritePresence(_ context.Context, uid string, online bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writeErr != nil {
		return p.writeErr
	}
	p.remote[uid] = online
	return nil
}

func (p *fakePresence) WriteLocation(_ context.Context, _ string, _, _ float64) error {
	return nil
}

/* ======================= helpers ======================= */

const testUID = "rider-42"

func ride(id string, status types.RideStatus) *models.RideSnapshot {
	uid := testUID
	return &models.RideSnapshot{
		ID:            id,
		PublicID:      "PUB-" + id,
		Status:        status,
		PickupAddress: "12 Main St",
		Fare:          7.50,
		RiderID:       &uid,
	}
}

type testEnv struct {
	engine   *Engine
	gateway  *fakeGateway
	source   *fakeSource
	store    *fakeStore
	presence *fakePresence
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()

	env := &testEnv{
		gateway:  &fakeGateway{},
		source:   &fakeSource{},
		store:    newFakeStore(),
		presence: newFakePresence(),
	}
	env.engine = New(env.gateway, env.source, env.store, env.presence, opts, logger.InitLogger("engine-test", logger.LevelError))
	return env
}

func (env *testEnv) attach(t *testing.T) {
	t.Helper()
	env.engine.AttachRider(context.Background(), models.Rider{UID: testUID, Email: "rider@example.com"})
}

func (env *testEnv) adopt(t *testing.T, r *models.RideSnapshot) {
	t.Helper()
	env.engine.applyAuthoritative(context.Background(), r)
}

/* ======================= attach / handle restoration ======================= */

func TestAttach_RestoresFreshHandle(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.store.SaveHandle(testUID, "R100", time.Now().Add(-10*time.Minute))

	env.attach(t)

	snap := env.engine.Snapshot()
	if snap.ActiveRideID != "R100" {
		t.Fatalf("expected restored active ride R100, got %q", snap.ActiveRideID)
	}
	if snap.ActiveRide != nil {
		t.Fatalf("restored handle must be provisional, no snapshot yet")
	}
}

func TestAttach_DiscardsStaleHandle(t *testing.T) {
	env := newTestEnv(t, Options{HandleStaleness: 2 * time.Hour})
	env.store.SaveHandle(testUID, "R100", time.Now().Add(-3*time.Hour))

	env.attach(t)

	snap := env.engine.Snapshot()
	if snap.ActiveRideID != "" {
		t.Fatalf("stale handle must not be restored, got %q", snap.ActiveRideID)
	}
	if _, ok := env.store.savedHandle(testUID); ok {
		t.Fatalf("stale handle must be deleted from the store")
	}
}

func TestAttach_HandleForcesPresenceOnline(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.store.SaveHandle(testUID, "R100", time.Now())
	env.store.SavePresence(testUID, false)
	env.presence.remote[testUID] = false

	env.attach(t)

	if snap := env.engine.Snapshot(); !snap.Online {
		t.Fatalf("a restored active ride must force presence online")
	}
}

func TestAttach_RestoresPresenceFromRemote(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.presence.remote[testUID] = true

	env.attach(t)

	if snap := env.engine.Snapshot(); !snap.Online {
		t.Fatalf("remote presence says online, snapshot disagrees")
	}
	if online, _ := env.store.Presence(testUID); !online {
		t.Fatalf("remote presence must be mirrored locally")
	}
}

func TestAttach_FallsBackToLocalPresenceMirror(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.presence.readErr = errors.New("store unreachable")
	env.store.SavePresence(testUID, true)

	env.attach(t)

	if snap := env.engine.Snapshot(); !snap.Online {
		t.Fatalf("local mirror says online, snapshot disagrees")
	}
}

/* ======================= accept ======================= */

func TestAccept_AdoptsAndPersists(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.attach(t)
	env.gateway.acceptFn = func(rideID string) (*models.RideSnapshot, error) {
		return ride("R1", types.StatusAccepted), nil
	}

	got, err := env.engine.Accept(context.Background(), "R1")
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if got.Status != types.StatusAccepted {
		t.Fatalf("unexpected status %s", got.Status)
	}

	snap := env.engine.Snapshot()
	if snap.ActiveRideID != "R1" || snap.ActiveRide == nil {
		t.Fatalf("accepted ride must become the active ride immediately")
	}
	h, ok := env.store.savedHandle(testUID)
	if !ok || h.SavedRideID != "R1" {
		t.Fatalf("accepted ride must be persisted as the handle, got %+v", h)
	}
}

func TestAccept_RejectedWhileRideActive(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.attach(t)
	env.adopt(t, ride("R1", types.StatusAccepted))

	if _, err := env.engine.Accept(context.Background(), "R2"); !errors.Is(err, types.ErrRideAlreadyActive) {
		t.Fatalf("expected ErrRideAlreadyActive, got %v", err)
	}
}

func TestAccept_RejectedWhenSignedOut(t *testing.T) {
	env := newTestEnv(t, Options{})

	if _, err := env.engine.Accept(context.Background(), "R1"); !errors.Is(err, types.ErrNotSignedIn) {
		t.Fatalf("expected ErrNotSignedIn, got %v", err)
	}
}

func TestAccept_FailureLeavesStateUntouched(t *testing.T) {
	env := newTestEnv(t, Options{BannerTTL: time.Minute})
	env.attach(t)
	env.gateway.acceptFn = func(rideID string) (*models.RideSnapshot, error) {
		return nil, types.ErrRideAlreadyTaken
	}

	if _, err := env.engine.Accept(context.Background(), "R1"); !errors.Is(err, types.ErrRideAlreadyTaken) {
		t.Fatalf("expected ErrRideAlreadyTaken, got %v", err)
	}

	snap := env.engine.Snapshot()
	if snap.ActiveRideID != "" {
		t.Fatalf("failed accept must not adopt a ride")
	}
	if snap.Banner == nil {
		t.Fatalf("failed accept must surface a transient banner")
	}
}

func TestAccept_ForcesPresenceOnline(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.attach(t)
	env.gateway.acceptFn = func(rideID string) (*models.RideSnapshot, error) {
		return ride("R1", types.StatusAccepted), nil
	}

	if _, err := env.engine.Accept(context.Background(), "R1"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if snap := env.engine.Snapshot(); !snap.Online {
		t.Fatalf("adopting a ride must force presence online")
	}
}

/* ======================= status walk ======================= */

func TestAdvance_WalksTheSequence(t *testing.T) {
	env := newTestEnv(t, Options{TerminalGrace: time.Hour})
	env.attach(t)
	env.adopt(t, ride("R1", types.StatusAccepted))

	want := []types.RideStatus{
		types.StatusArrivedAtPickup,
		types.StatusPickedUp,
		types.StatusArrivedAtDropoff,
		types.StatusCompleted,
	}

	env.gateway.updateFn = func(rideID string, status types.RideStatus, code string) (*models.RideSnapshot, error) {
		return ride("R1", status), nil
	}

	for _, next := range want {
		code := ""
		if next == types.StatusCompleted {
			code = "123456"
		}
		got, err := env.engine.Advance(context.Background(), code)
		if err != nil {
			t.Fatalf("advance to %s failed: %v", next, err)
		}
		if got.Status != next {
			t.Fatalf("expected %s, got %s", next, got.Status)
		}
	}
}

func TestAdvance_RequiresWellFormedDeliveryCode(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.attach(t)
	env.adopt(t, ride("R1", types.StatusArrivedAtDropoff))

	for _, code := range []string{"", "12345", "1234567", "12345a"} {
		if _, err := env.engine.Advance(context.Background(), code); !errors.Is(err, types.ErrInvalidDeliveryCode) {
			t.Fatalf("code %q: expected ErrInvalidDeliveryCode, got %v", code, err)
		}
	}
	if env.gateway.calls() != 0 {
		t.Fatalf("malformed code must be rejected before any network call")
	}
}

func TestAdvance_ServerRejectedCodeKeepsStatus(t *testing.T) {
	env := newTestEnv(t, Options{BannerTTL: time.Minute})
	env.attach(t)
	env.adopt(t, ride("R1", types.StatusArrivedAtDropoff))
	env.gateway.updateFn = func(rideID string, status types.RideStatus, code string) (*models.RideSnapshot, error) {
		return nil, types.ErrCodeRejected
	}

	if _, err := env.engine.Advance(context.Background(), "123456"); !errors.Is(err, types.ErrCodeRejected) {
		t.Fatalf("expected ErrCodeRejected, got %v", err)
	}

	snap := env.engine.Snapshot()
	if snap.ActiveRide.Status != types.StatusArrivedAtDropoff {
		t.Fatalf("rejected code must leave the current status untouched, got %s", snap.ActiveRide.Status)
	}
}

func TestAdvance_RejectedOnTerminalRide(t *testing.T) {
	env := newTestEnv(t, Options{TerminalGrace: time.Hour})
	env.attach(t)
	env.adopt(t, ride("R1", types.StatusCompleted))

	if _, err := env.engine.Advance(context.Background(), ""); !errors.Is(err, types.ErrRideFinished) {
		t.Fatalf("expected ErrRideFinished, got %v", err)
	}
}

func TestCancel_FromAnyNonTerminalStatus(t *testing.T) {
	env := newTestEnv(t, Options{TerminalGrace: time.Hour})
	env.gateway.updateFn = func(rideID string, status types.RideStatus, code string) (*models.RideSnapshot, error) {
		if status != types.StatusCancelled {
			t.Fatalf("cancel must submit CANCELLED, got %s", status)
		}
		return ride(rideID, types.StatusCancelled), nil
	}

	for _, from := range []types.RideStatus{
		types.StatusAccepted,
		types.StatusArrivedAtPickup,
		types.StatusPickedUp,
		types.StatusArrivedAtDropoff,
	} {
		env.attach(t)
		env.adopt(t, ride("R1", from))

		got, err := env.engine.Cancel(context.Background())
		if err != nil {
			t.Fatalf("cancel from %s failed: %v", from, err)
		}
		if got.Status != types.StatusCancelled {
			t.Fatalf("expected CANCELLED, got %s", got.Status)
		}
		env.engine.DetachRider(context.Background())
	}
}

func TestCancel_RejectedOnTerminalRide(t *testing.T) {
	env := newTestEnv(t, Options{TerminalGrace: time.Hour})
	env.attach(t)
	env.adopt(t, ride("R1", types.StatusCancelled))

	if _, err := env.engine.Cancel(context.Background()); !errors.Is(err, types.ErrRideFinished) {
		t.Fatalf("expected ErrRideFinished, got %v", err)
	}
}

/* ======================= reconciliation ======================= */

func TestAuthoritativeLookup_OverridesLocalBelief(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.attach(t)
	env.adopt(t, ride("R1", types.StatusAccepted))

	env.adopt(t, ride("R2", types.StatusPickedUp))

	snap := env.engine.Snapshot()
	if snap.ActiveRideID != "R2" {
		t.Fatalf("authoritative lookup must win, got %q", snap.ActiveRideID)
	}
	if h, _ := env.store.savedHandle(testUID); h.SavedRideID != "R2" {
		t.Fatalf("handle must follow the authoritative ride, got %q", h.SavedRideID)
	}
}

func TestNullLookup_DoesNotClear(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.attach(t)
	env.adopt(t, ride("R1", types.StatusAccepted))

	env.adopt(t, nil)

	if snap := env.engine.Snapshot(); snap.ActiveRideID != "R1" {
		t.Fatalf("a null lookup alone must not clear the active ride")
	}
}

func TestDetailNotFound_ClearsImmediately(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.attach(t)
	env.adopt(t, ride("R1", types.StatusAccepted))

	env.engine.mu.Lock()
	gen := env.engine.gen
	env.engine.mu.Unlock()

	env.engine.applyDetail(context.Background(), gen, nil, types.ErrRideNotFound)

	snap := env.engine.Snapshot()
	if snap.ActiveRideID != "" {
		t.Fatalf("authoritative not-found must clear immediately")
	}
	if _, ok := env.store.savedHandle(testUID); ok {
		t.Fatalf("clear must also drop the persisted handle")
	}
}

func TestDetailTransportFailures_SuspendAtThreshold(t *testing.T) {
	env := newTestEnv(t, Options{DetailMaxFailures: 5})
	env.attach(t)
	env.adopt(t, ride("R1", types.StatusAccepted))

	env.engine.mu.Lock()
	gen := env.engine.gen
	env.engine.mu.Unlock()

	transport := errors.New("connection refused")
	for i := 0; i < 4; i++ {
		env.engine.applyDetail(context.Background(), gen, nil, transport)
	}

	snap := env.engine.Snapshot()
	if snap.PollingSuspended {
		t.Fatalf("must not suspend before the threshold")
	}
	if snap.ActiveRideID != "R1" {
		t.Fatalf("transport failures must never clear the active ride")
	}

	env.engine.applyDetail(context.Background(), gen, nil, transport)

	snap = env.engine.Snapshot()
	if !snap.PollingSuspended || snap.DetailFailures != 5 {
		t.Fatalf("5th consecutive failure must suspend, got suspended=%v failures=%d",
			snap.PollingSuspended, snap.DetailFailures)
	}
	if snap.ActiveRideID != "R1" {
		t.Fatalf("suspension must keep the last known ride state")
	}
}

func TestDetailSuccess_ResetsFailureCount(t *testing.T) {
	env := newTestEnv(t, Options{DetailMaxFailures: 5})
	env.attach(t)
	env.adopt(t, ride("R1", types.StatusAccepted))

	env.engine.mu.Lock()
	gen := env.engine.gen
	env.engine.mu.Unlock()

	transport := errors.New("timeout")
	env.engine.applyDetail(context.Background(), gen, nil, transport)
	env.engine.applyDetail(context.Background(), gen, nil, transport)
	env.engine.applyDetail(context.Background(), gen, ride("R1", types.StatusPickedUp), nil)

	snap := env.engine.Snapshot()
	if snap.DetailFailures != 0 {
		t.Fatalf("success must reset the failure count, got %d", snap.DetailFailures)
	}
	if snap.ActiveRide.Status != types.StatusPickedUp {
		t.Fatalf("detail success must refresh the snapshot")
	}
}

func TestRetryDetail_ResumesAfterSuspension(t *testing.T) {
	env := newTestEnv(t, Options{DetailMaxFailures: 2})
	env.attach(t)
	env.adopt(t, ride("R1", types.StatusAccepted))
	env.source.rideFn = func(id string) (*models.RideSnapshot, error) {
		return ride(id, types.StatusArrivedAtPickup), nil
	}

	env.engine.mu.Lock()
	gen := env.engine.gen
	env.engine.mu.Unlock()

	transport := errors.New("timeout")
	env.engine.applyDetail(context.Background(), gen, nil, transport)
	env.engine.applyDetail(context.Background(), gen, nil, transport)

	if !env.engine.Snapshot().PollingSuspended {
		t.Fatalf("expected suspension before retry")
	}

	if err := env.engine.RetryDetail(context.Background()); err != nil {
		t.Fatalf("retry failed: %v", err)
	}

	snap := env.engine.Snapshot()
	if snap.PollingSuspended || snap.DetailFailures != 0 {
		t.Fatalf("retry must reset the failure state")
	}
	if snap.ActiveRide == nil || snap.ActiveRide.Status != types.StatusArrivedAtPickup {
		t.Fatalf("retry must fire one immediate detail poll")
	}
}

func TestDetailAuthFailure_ClearsAndFlagsReauth(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.attach(t)
	env.adopt(t, ride("R1", types.StatusAccepted))

	env.engine.mu.Lock()
	gen := env.engine.gen
	env.engine.mu.Unlock()

	env.engine.applyDetail(context.Background(), gen, nil, types.ErrUnauthenticated)

	snap := env.engine.Snapshot()
	if snap.ActiveRideID != "" || !snap.ReauthRequired {
		t.Fatalf("auth failure must clear state and require re-auth, got %+v", snap)
	}
}

func TestAvailablePollAuthFailure_FlagsReauth(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.attach(t)
	if err := env.engine.SetOnline(context.Background()); err != nil {
		t.Fatalf("go online: %v", err)
	}
	env.source.availableFn = func() ([]models.RideSnapshot, error) {
		return nil, types.ErrUnauthenticated
	}

	env.engine.pollAvailable(context.Background())

	snap := env.engine.Snapshot()
	if !snap.ReauthRequired {
		t.Fatalf("auth failure on the available poll must require re-auth, got %+v", snap)
	}
}

func TestStaleDetailResponse_Discarded(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.attach(t)
	env.adopt(t, ride("R1", types.StatusAccepted))

	env.engine.mu.Lock()
	oldGen := env.engine.gen
	env.engine.mu.Unlock()

	// A different ride is adopted while the old response is in flight
	env.adopt(t, ride("R2", types.StatusAccepted))

	env.engine.applyDetail(context.Background(), oldGen, ride("R1", types.StatusCancelled), nil)

	snap := env.engine.Snapshot()
	if snap.ActiveRideID != "R2" || snap.ActiveRide.Status != types.StatusAccepted {
		t.Fatalf("response for a superseded ride must be discarded, got %q %s",
			snap.ActiveRideID, snap.ActiveRide.Status)
	}
}

func TestTerminalDetail_ClearsAfterGrace(t *testing.T) {
	env := newTestEnv(t, Options{TerminalGrace: 20 * time.Millisecond})
	env.attach(t)
	env.adopt(t, ride("R1", types.StatusPickedUp))

	env.engine.mu.Lock()
	gen := env.engine.gen
	env.engine.mu.Unlock()

	env.engine.applyDetail(context.Background(), gen, ride("R1", types.StatusCompleted), nil)

	// Terminal state is held on screen during the grace period
	if snap := env.engine.Snapshot(); snap.ActiveRideID != "R1" {
		t.Fatalf("terminal ride must be held during the grace period")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if env.engine.Snapshot().ActiveRideID == "" {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("terminal ride was not cleared after the grace period")
}

func TestTerminalClear_CancelledByNewAdoption(t *testing.T) {
	env := newTestEnv(t, Options{TerminalGrace: 20 * time.Millisecond})
	env.attach(t)
	env.adopt(t, ride("R1", types.StatusPickedUp))

	env.engine.mu.Lock()
	gen := env.engine.gen
	env.engine.mu.Unlock()

	env.engine.applyDetail(context.Background(), gen, ride("R1", types.StatusCompleted), nil)

	// Authoritative lookup assigns a new ride before the timer fires
	env.adopt(t, ride("R2", types.StatusAccepted))

	time.Sleep(60 * time.Millisecond)

	if snap := env.engine.Snapshot(); snap.ActiveRideID != "R2" {
		t.Fatalf("a clear armed for a superseded ride must not fire, got %q", snap.ActiveRideID)
	}
}

/* ======================= presence ======================= */

func TestSetOffline_RejectedWithActiveRide(t *testing.T) {
	env := newTestEnv(t, Options{BannerTTL: time.Minute})
	env.attach(t)
	env.adopt(t, ride("R1", types.StatusAccepted))

	if err := env.engine.SetOffline(context.Background()); !errors.Is(err, types.ErrOfflineWithActiveRide) {
		t.Fatalf("expected ErrOfflineWithActiveRide, got %v", err)
	}
	if snap := env.engine.Snapshot(); !snap.Online {
		t.Fatalf("rejected offline toggle must leave presence unchanged")
	}
}

func TestSetOnlineOffline_RoundTrip(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.attach(t)

	if err := env.engine.SetOnline(context.Background()); err != nil {
		t.Fatalf("online failed: %v", err)
	}
	if !env.engine.Snapshot().Online {
		t.Fatalf("expected online")
	}

	if err := env.engine.SetOffline(context.Background()); err != nil {
		t.Fatalf("offline failed: %v", err)
	}
	if env.engine.Snapshot().Online {
		t.Fatalf("expected offline")
	}
	if online, _ := env.store.Presence(testUID); online {
		t.Fatalf("local mirror must follow the toggle")
	}
}

/* ======================= subscriptions / banners ======================= */

func TestSubscribe_ReceivesStateChanges(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.attach(t)

	ch, cancel := env.engine.Subscribe()
	defer cancel()

	if err := env.engine.SetOnline(context.Background()); err != nil {
		t.Fatalf("online failed: %v", err)
	}

	select {
	case snap := <-ch:
		if !snap.Online {
			t.Fatalf("expected an online snapshot")
		}
	case <-time.After(time.Second):
		t.Fatalf("no snapshot delivered to subscriber")
	}
}

func TestBanner_ExpiresAfterTTL(t *testing.T) {
	env := newTestEnv(t, Options{BannerTTL: time.Minute})
	env.attach(t)

	base := time.Now()
	env.engine.now = func() time.Time { return base }
	env.engine.surface(types.ErrRideAlreadyTaken)

	if env.engine.Snapshot().Banner == nil {
		t.Fatalf("expected a banner right after surfacing")
	}

	env.engine.now = func() time.Time { return base.Add(2 * time.Minute) }
	if env.engine.Snapshot().Banner != nil {
		t.Fatalf("banner must expire after its TTL")
	}
}
