package auth

import (
	"context"
	"sync"
)

type Status int

const (
	Checking Status = iota
	Authenticated
	Anonymous
)

func (s Status) String() string {
	switch s {
	case Checking:
		return "checking"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// GateState is the state of a Gate. Session is set if Status is Authenticated.
type GateState struct {
	Status  Status
	Session *Session
}

// A Gate follows the session of a client. It holds exactly one subscription until it is closed.
type Gate struct {
	changes chan GateState // cap 1, latest state wins
	ready   chan struct{}  // closed when the state leaves Checking

	mu          sync.Mutex
	closed      bool
	state       GateState
	unsubscribe func()
}

// NewGate subscribes to the provider in the background. A subscription error results in Anonymous.
func NewGate(ctx context.Context, provider Provider) *Gate {
	g := &Gate{
		changes: make(chan GateState, 1),
		ready:   make(chan struct{}),
	}
	go g.subscribe(ctx, provider)
	return g
}

func (g *Gate) subscribe(ctx context.Context, provider Provider) {
	unsubscribe, err := provider.Subscribe(ctx, g.update)
	if err != nil {
		g.set(GateState{Status: Anonymous})
		return
	}

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		unsubscribe()
		return
	}
	g.unsubscribe = unsubscribe
	g.mu.Unlock()
}

func (g *Gate) update(session *Session) {
	if session == nil {
		g.set(GateState{Status: Anonymous})
	} else {
		g.set(GateState{Status: Authenticated, Session: session})
	}
}

func (g *Gate) set(state GateState) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return
	}

	if g.state.Status == Checking && state.Status != Checking {
		close(g.ready)
	}
	g.state = state

	// replace an unread state, g.mu makes this the only sender
	select {
	case <-g.changes:
	default:
	}
	g.changes <- state
}

// State returns the latest state.
func (g *Gate) State() GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Changes receives new states. If the receiver is slow, intermediate states are dropped.
func (g *Gate) Changes() <-chan GateState {
	return g.changes
}

// Wait blocks until the state is not Checking any more, or ctx is done. It returns the latest state.
func (g *Gate) Wait(ctx context.Context) GateState {
	select {
	case <-g.ready:
	case <-ctx.Done():
	}
	return g.State()
}

// Close releases the subscription. Later changes are ignored.
func (g *Gate) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	unsubscribe := g.unsubscribe
	g.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}
