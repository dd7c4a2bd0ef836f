package service

import (
	"sync"

	apperrors "github.com/fieldops/field-console/pkg/util/errorutil"
)

// InFlightGuard rejects a mutating action while an identical one is running.
type InFlightGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// NewInFlightGuard creates an empty guard.
func NewInFlightGuard() *InFlightGuard {
	return &InFlightGuard{active: make(map[string]struct{})}
}

// Acquire marks action as running. The returned release must be called once
// the action finished, successfully or not.
func (g *InFlightGuard) Acquire(action string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.active[action]; busy {
		return nil, apperrors.NewInFlight(action)
	}
	g.active[action] = struct{}{}
	return func() {
		g.mu.Lock()
		delete(g.active, action)
		g.mu.Unlock()
	}, nil
}

// RequestTracker implements last-request-wins for reads keyed by principal
// and view: starting a request supersedes every earlier one with the same key.
type RequestTracker struct {
	mu     sync.Mutex
	seq    uint64
	latest map[string]uint64
}

// NewRequestTracker creates a tracker.
func NewRequestTracker() *RequestTracker {
	return &RequestTracker{latest: make(map[string]uint64)}
}

// Ticket identifies one tracked request.
type Ticket struct {
	tracker *RequestTracker
	key     string
	seq     uint64
}

// Begin starts a request for key.
func (t *RequestTracker) Begin(key string) Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	t.latest[key] = t.seq
	return Ticket{tracker: t, key: key, seq: t.seq}
}

// Current reports whether no newer request for the same key has started.
func (tk Ticket) Current() bool {
	tk.tracker.mu.Lock()
	defer tk.tracker.mu.Unlock()
	return tk.tracker.latest[tk.key] == tk.seq
}

// Finish returns NewSuperseded when a newer request took over, and forgets
// the key when this was the latest.
func (tk Ticket) Finish() error {
	tk.tracker.mu.Lock()
	defer tk.tracker.mu.Unlock()
	if tk.tracker.latest[tk.key] != tk.seq {
		return apperrors.NewSuperseded("a newer request replaced this one")
	}
	delete(tk.tracker.latest, tk.key)
	return nil
}
