package statemachine

import "sync"

// State represents a state in a finite state machine.
type State interface {
	Name() string
}

// Event represents an event that can trigger a state transition.
type Event interface {
	Name() string
}

// StringState provides a simple string-based state implementation.
type StringState string

func (s StringState) Name() string { return string(s) }

// StringEvent provides a simple string-based event implementation.
type StringEvent string

func (e StringEvent) Name() string { return string(e) }

// Machine is a transition table for entities whose state lives elsewhere
// (typically a database row). Unlike a classic in-memory state machine it
// carries no current state: callers pass the entity's state into every
// query. Safe for concurrent use once built.
type Machine struct {
	mu          sync.RWMutex
	transitions map[string]map[string]State // [from][event] -> to
}

// New returns an empty Machine.
func New() *Machine {
	return &Machine{transitions: make(map[string]map[string]State)}
}

// AddTransition declares that event moves an entity from one state to
// another. Declaring the same (from, event) pair twice returns
// ErrDuplicateTransition so tables stay unambiguous.
func (m *Machine) AddTransition(from, to State, event Event) error {
	if from == nil || to == nil || event == nil {
		return ErrInvalidTransition
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	events, ok := m.transitions[from.Name()]
	if !ok {
		events = make(map[string]State)
		m.transitions[from.Name()] = events
	}
	if _, exists := events[event.Name()]; exists {
		return ErrDuplicateTransition
	}
	events[event.Name()] = to
	return nil
}

// Allowed reports whether event is legal from the given state.
func (m *Machine) Allowed(from State, event Event) bool {
	if from == nil || event == nil {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	events, ok := m.transitions[from.Name()]
	if !ok {
		return false
	}
	_, ok = events[event.Name()]
	return ok
}

// Fire resolves the target state for event from the given state.
// Returns ErrNoTransition if the table has no entry for the pair.
func (m *Machine) Fire(from State, event Event) (State, error) {
	if from == nil || event == nil {
		return nil, ErrInvalidTransition
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	events, ok := m.transitions[from.Name()]
	if !ok {
		return nil, NewErrNoTransition(from.Name(), event.Name())
	}
	to, ok := events[event.Name()]
	if !ok {
		return nil, NewErrNoTransition(from.Name(), event.Name())
	}
	return to, nil
}
