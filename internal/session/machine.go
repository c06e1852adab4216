// Package session models the client-side view of the session stream as a
// small state machine: Unknown until the first resolution, then
// Authenticated or Unauthenticated as provider events arrive.
package session

import (
	"context"
	"sync"
)

type Status int

const (
	Unknown Status = iota
	Authenticated
	Unauthenticated
)

func (s Status) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// User is the part of the identity the client keeps.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// State is a snapshot. User is set only when Status is Authenticated.
type State struct {
	Status Status
	User   *User
}

// Loading reports whether the session is still being determined.
func (s State) Loading() bool { return s.Status == Unknown }

type EventKind int

const (
	// Resolved carries the result of the initial session lookup; a nil
	// User means there is no session.
	Resolved EventKind = iota
	ResolveFailed
	SignedIn
	SignedOut
	// TokenRefreshed and other provider events leave the state unchanged.
	TokenRefreshed
)

type Event struct {
	Kind EventKind
	User *User
}

// Machine is safe for concurrent use.
type Machine struct {
	mu     sync.Mutex
	state  State
	subs   map[int]chan State
	nextID int
}

func NewMachine() *Machine {
	return &Machine{subs: make(map[int]chan State)}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Apply runs one transition and notifies subscribers when the state
// changes. It returns the resulting state.
func (m *Machine) Apply(ev Event) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, changed := transition(m.state, ev)
	if !changed {
		return m.state
	}
	m.state = next
	for _, ch := range m.subs {
		offer(ch, next)
	}
	return next
}

func transition(cur State, ev Event) (State, bool) {
	var next State
	switch ev.Kind {
	case Resolved:
		if ev.User != nil {
			next = State{Status: Authenticated, User: ev.User}
		} else {
			next = State{Status: Unauthenticated}
		}
	case ResolveFailed, SignedOut:
		next = State{Status: Unauthenticated}
	case SignedIn:
		if ev.User == nil {
			return cur, false
		}
		next = State{Status: Authenticated, User: ev.User}
	default:
		return cur, false
	}
	if next.Status == cur.Status && sameUser(next.User, cur.User) {
		return cur, false
	}
	return next, true
}

func sameUser(a, b *User) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Subscribe returns a channel that receives the current state immediately
// and then every change. Slow readers only see the latest state. The
// returned function unsubscribes and closes the channel; calling it more
// than once is safe.
func (m *Machine) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = ch
	ch <- m.state
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			close(ch)
			m.mu.Unlock()
		})
	}
}

// Watch calls fn for every state until ctx ends, then unsubscribes.
func (m *Machine) Watch(ctx context.Context, fn func(State)) {
	ch, unsubscribe := m.Subscribe()
	defer unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-ch:
			if !ok {
				return
			}
			fn(s)
		}
	}
}

// offer replaces any undelivered state with s. Called with m.mu held.
func offer(ch chan State, s State) {
	select {
	case ch <- s:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- s
}

// Resolve performs the initial lookup and feeds the outcome to m.
func Resolve(ctx context.Context, m *Machine, lookup func(context.Context) (*User, error)) State {
	u, err := lookup(ctx)
	if err != nil {
		return m.Apply(Event{Kind: ResolveFailed})
	}
	return m.Apply(Event{Kind: Resolved, User: u})
}
