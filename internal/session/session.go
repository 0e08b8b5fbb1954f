package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Paradox281/altura-go/internal/domain"
	"github.com/Paradox281/altura-go/internal/storage"
)

// Phase is the authentication state of the app.
type Phase string

const (
	Anonymous     Phase = "anonymous"
	Authenticated Phase = "authenticated"
)

// State is an explicit finite-state value: User is non-nil iff Phase is
// Authenticated.
type State struct {
	Phase Phase
	User  *domain.UserData
}

// Manager owns the session state machine. It is injected into consumers
// rather than held as package state, and route-gating code observes it via
// Subscribe.
type Manager struct {
	store storage.Store

	mu    sync.Mutex
	state State
	subs  map[int]func(State)
	nextS int
}

func NewManager(store storage.Store) *Manager {
	return &Manager{
		store: store,
		state: State{Phase: Anonymous},
		subs:  map[int]func(State){},
	}
}

// Load restores the session from persisted identity. Malformed or missing
// records leave the session Anonymous without error; the canonical
// normalization rule decides usability.
func (m *Manager) Load(ctx context.Context) error {
	raw, ok, err := m.store.Get(ctx, storage.KeyUserData)
	if err != nil {
		return fmt.Errorf("session: load identity: %w", err)
	}
	if !ok {
		return nil
	}

	var u domain.UserData
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil
	}
	normalized, usable := u.Normalize()
	if !usable {
		return nil
	}

	m.transition(State{Phase: Authenticated, User: &normalized})
	return nil
}

// Login persists the identity and transitions to Authenticated. The
// identity is stored as given; no validation is applied beyond JSON
// encoding. The transition only happens once the write has succeeded.
func (m *Manager) Login(ctx context.Context, user domain.UserData) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session: encode identity: %w", err)
	}
	if err := m.store.Set(ctx, storage.KeyUserData, string(raw)); err != nil {
		return fmt.Errorf("session: persist identity: %w", err)
	}

	m.transition(State{Phase: Authenticated, User: &user})
	return nil
}

// Logout clears the token and identity and transitions to Anonymous. On a
// storage failure the error propagates and the transition is not made, so
// callers can surface it instead of silently keeping a half-cleared session.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.store.Remove(ctx, storage.KeyToken); err != nil {
		return fmt.Errorf("session: clear token: %w", err)
	}
	if err := m.store.Remove(ctx, storage.KeyUserData); err != nil {
		return fmt.Errorf("session: clear identity: %w", err)
	}

	m.transition(State{Phase: Anonymous})
	return nil
}

// Current returns the present state. The returned User is a copy.
func (m *Manager) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneState(m.state)
}

// Subscribe registers fn to run after every transition. The returned cancel
// removes the subscription.
func (m *Manager) Subscribe(fn func(State)) (cancel func()) {
	m.mu.Lock()
	id := m.nextS
	m.nextS++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *Manager) transition(next State) {
	m.mu.Lock()
	m.state = next
	subs := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(cloneState(next))
	}
}

func cloneState(s State) State {
	if s.User == nil {
		return s
	}
	u := *s.User
	return State{Phase: s.Phase, User: &u}
}
