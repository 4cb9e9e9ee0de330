package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"backend-trailmeter/internal/locate"
	"backend-trailmeter/internal/observability"
	"backend-trailmeter/internal/shared/geo"
	"backend-trailmeter/internal/stream"

	"github.com/google/uuid"
)

var (
	ErrNotIdle = errors.New("a tracking session is already in progress")
	ErrActive  = errors.New("stop tracking before resetting")
)

const zeroElapsed = "00:00:00"

// permissionProbeTimeout bounds the optional permission pre-check so a slow
// query capability cannot stall the start action.
const permissionProbeTimeout = time.Second

// Tracker owns the one live tracking session: its state machine, the
// distance accumulator, the continuous subscription, and the elapsed-time
// ticker. All mutation goes through one mutex.
type Tracker struct {
	provider locate.Provider
	hub      *stream.Hub
	opts     locate.Options

	mu        sync.Mutex
	state     State
	sessionID string
	userAgent string
	startedAt time.Time
	endedAt   time.Time
	acc       Accumulator
	lastErr   *locate.Error
	elapsed   string

	// gen increments on every attempt and teardown; callbacks carry the
	// generation they were started under and are ignored once it moves on.
	gen    int
	sub    *locate.Subscription
	ticker *time.Ticker
	done   chan struct{}

	now func() time.Time
}

func New(provider locate.Provider, hub *stream.Hub, opts locate.Options) *Tracker {
	return &Tracker{
		provider: provider,
		hub:      hub,
		opts:     opts,
		state:    StateIdle,
		elapsed:  zeroElapsed,
		now:      time.Now,
	}
}

// Start runs the two-step protocol: a one-shot position probe that forces
// any permission prompt to resolve and fails fast on an absent capability,
// then the continuous watch. On probe failure the session stays idle and the
// classified error becomes display state.
func (t *Tracker) Start(ctx context.Context, userAgent string) (Snapshot, error) {
	t.mu.Lock()
	if t.state != StateIdle {
		snap := t.snapshotLocked()
		t.mu.Unlock()
		return snap, ErrNotIdle
	}
	t.state = StateAwaitingPermission
	t.userAgent = userAgent
	t.gen++
	gen := t.gen
	t.mu.Unlock()

	if cerr := t.checkPermission(ctx, userAgent); cerr != nil {
		return t.failStart(gen, cerr)
	}

	probeCtx, cancel := context.WithTimeout(ctx, t.opts.EffectiveTimeout())
	_, err := t.provider.Current(probeCtx, t.opts)
	cancel()
	if err != nil {
		return t.failStart(gen, locate.Classify(err).WithRemediation(userAgent))
	}

	t.mu.Lock()
	if t.gen != gen || t.state != StateAwaitingPermission {
		// the probe answered after the attempt was abandoned
		abandoned := t.snapshotLocked()
		t.mu.Unlock()
		return abandoned, ErrNotIdle
	}
	t.mu.Unlock()

	watchOpts := t.opts
	watchOpts.MaxStaleness = 0
	sub, err := t.provider.Watch(watchOpts)
	if err != nil {
		return t.failStart(gen, locate.Classify(err).WithRemediation(userAgent))
	}

	t.mu.Lock()
	if t.gen != gen || t.state != StateAwaitingPermission {
		// the attempt was abandoned while the probe was in flight
		snap := t.snapshotLocked()
		t.mu.Unlock()
		sub.Cancel()
		return snap, ErrNotIdle
	}
	t.state = StateActive
	t.sessionID = uuid.NewString()
	t.startedAt = t.now()
	t.endedAt = time.Time{}
	// the running total survives stop/start; only an explicit reset zeroes it
	t.acc.ClearLast()
	t.lastErr = nil
	t.elapsed = zeroElapsed
	t.sub = sub
	t.done = make(chan struct{})
	t.ticker = time.NewTicker(time.Second)
	meters := t.acc.Meters()
	snap := t.snapshotLocked()
	t.mu.Unlock()

	go t.consume(gen, sub)
	go t.tick(gen, t.ticker, t.done)

	observability.SessionsStarted.Inc()
	observability.DistanceMeters.Set(meters)
	t.publish(snap)
	return snap, nil
}

// Stop cancels the subscription and the ticker so no callback fires
// afterward, then returns to idle. A no-op while idle; while awaiting
// permission it abandons the in-flight attempt.
func (t *Tracker) Stop() Snapshot {
	t.mu.Lock()
	switch t.state {
	case StateIdle:
		snap := t.snapshotLocked()
		t.mu.Unlock()
		return snap
	case StateAwaitingPermission:
		t.gen++
		t.state = StateIdle
		snap := t.snapshotLocked()
		t.mu.Unlock()
		t.publish(snap)
		return snap
	}

	t.gen++
	t.state = StateIdle
	t.endedAt = t.now()
	t.elapsed = FormatElapsed(t.endedAt.Sub(t.startedAt))
	sub, ticker, done := t.sub, t.ticker, t.done
	t.sub, t.ticker, t.done = nil, nil, nil
	snap := t.snapshotLocked()
	t.mu.Unlock()

	if sub != nil {
		sub.Cancel()
	}
	if ticker != nil {
		ticker.Stop()
	}
	if done != nil {
		close(done)
	}

	observability.SessionsStopped.Inc()
	t.publish(snap)
	return snap
}

// Reset clears the accumulated distance and the retained reading. Rejected
// unless the session is idle.
func (t *Tracker) Reset() (Snapshot, error) {
	t.mu.Lock()
	if t.state != StateIdle {
		snap := t.snapshotLocked()
		t.mu.Unlock()
		return snap, ErrActive
	}
	t.acc.Reset()
	t.sessionID = ""
	t.startedAt = time.Time{}
	t.endedAt = time.Time{}
	t.lastErr = nil
	t.elapsed = zeroElapsed
	snap := t.snapshotLocked()
	t.mu.Unlock()

	observability.DistanceMeters.Set(0)
	t.publish(snap)
	return snap, nil
}

// Snapshot returns the current presentable state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) checkPermission(ctx context.Context, userAgent string) *locate.Error {
	q, ok := t.provider.(locate.PermissionQuerier)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, permissionProbeTimeout)
	defer cancel()
	status, err := q.Permission(ctx)
	if err != nil {
		// the query capability is optional; fall back to the probe
		return nil
	}
	if status == locate.PermissionDenied {
		cerr := &locate.Error{Kind: locate.KindPermissionDenied, Message: "location access denied"}
		return cerr.WithRemediation(userAgent)
	}
	return nil
}

func (t *Tracker) failStart(gen int, cerr *locate.Error) (Snapshot, error) {
	t.mu.Lock()
	if t.gen == gen && t.state == StateAwaitingPermission {
		t.state = StateIdle
		t.lastErr = cerr
	}
	snap := t.snapshotLocked()
	t.mu.Unlock()

	observability.StartFailures.WithLabelValues(string(cerr.Kind)).Inc()
	t.publish(snap)
	return snap, cerr
}

func (t *Tracker) consume(gen int, sub *locate.Subscription) {
	for {
		select {
		case r := <-sub.Readings():
			t.accept(gen, r)
		case cerr := <-sub.Errors():
			t.watchError(gen, cerr)
		case <-sub.Done():
			return
		}
	}
}

func (t *Tracker) accept(gen int, r locate.Reading) {
	t.mu.Lock()
	if t.gen != gen || t.state != StateActive {
		t.mu.Unlock()
		return
	}
	t.acc.Accept(r)
	t.lastErr = nil
	t.elapsed = FormatElapsed(t.now().Sub(t.startedAt))
	meters := t.acc.Meters()
	snap := t.snapshotLocked()
	t.mu.Unlock()

	observability.ReadingsAccepted.Inc()
	observability.DistanceMeters.Set(meters)
	t.publish(snap)
}

// watchError records a subscription error as display state. Tracking keeps
// going; the next successful reading clears it.
func (t *Tracker) watchError(gen int, cerr *locate.Error) {
	t.mu.Lock()
	if t.gen != gen || t.state != StateActive {
		t.mu.Unlock()
		return
	}
	t.lastErr = cerr.WithRemediation(t.userAgent)
	snap := t.snapshotLocked()
	t.mu.Unlock()

	observability.WatchErrors.WithLabelValues(string(cerr.Kind)).Inc()
	t.publish(snap)
}

func (t *Tracker) tick(gen int, ticker *time.Ticker, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			t.mu.Lock()
			if t.gen != gen || t.state != StateActive {
				t.mu.Unlock()
				return
			}
			t.elapsed = FormatElapsed(t.now().Sub(t.startedAt))
			snap := t.snapshotLocked()
			t.mu.Unlock()
			t.publish(snap)
		}
	}
}

func (t *Tracker) snapshotLocked() Snapshot {
	km := t.acc.Meters() / 1000
	return Snapshot{
		State:         t.state,
		SessionID:     t.sessionID,
		StartedAt:     t.startedAt,
		EndedAt:       t.endedAt,
		DistanceKm:    km,
		DistanceMiles: geo.KmToMiles(km),
		Elapsed:       t.elapsed,
		LastError:     t.lastErr,
	}
}

func (t *Tracker) publish(snap Snapshot) {
	if t.hub == nil {
		return
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return
	}
	t.hub.Broadcast(stream.LiveFeed, payload)
}

// FormatElapsed renders a duration as H:MM:SS, hours unbounded.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	s := int64(d.Seconds())
	return fmt.Sprintf("%d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}
