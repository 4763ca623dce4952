package plan

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"careplan/internal/models"
	"careplan/internal/services/storage"
)

// Manager owns the working plan state and keeps it persisted. All access
// goes through the manager so concurrent handlers see a consistent state.
type Manager struct {
	mu     sync.Mutex
	store  *storage.Storage
	schema *models.ResolvedSchema
	path   string
	state  *State
}

// NewManager creates a manager with a fully defaulted state. Call Load to
// pick up a previously saved working plan.
func NewManager(store *storage.Storage, schema *models.ResolvedSchema, path string) *Manager {
	return &Manager{
		store:  store,
		schema: schema,
		path:   path,
		state:  NewState(schema),
	}
}

// Load replaces the working state with the persisted document. A missing
// file is not an error; the defaulted state stands. A malformed document
// returns a LoadError and the current state is untouched.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := m.store.ReadFile(m.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return &LoadError{Path: m.path, Detail: "read failed", err: err}
	}

	state, err := Decode(m.schema, data, m.path)
	if err != nil {
		return err
	}

	m.state = state
	return nil
}

// SetFields applies a batch of raw field writes in schema order. An
// unknown key aborts before anything is applied. Values that fail
// validation fall back to defaults and come back in the returned flags;
// the batch still persists.
func (m *Manager) SetFields(fields map[string]interface{}) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range fields {
		if _, ok := m.schema.FieldByKey(key); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, key)
		}
	}

	flags := make(map[string]string)
	for _, f := range m.schema.Fields() {
		raw, ok := fields[f.Key]
		if !ok {
			continue
		}
		var verr *models.ValidationError
		if err := m.state.Set(f.Key, raw); errors.As(err, &verr) {
			flags[f.Key] = verr.Reason
		}
	}

	if err := m.save(); err != nil {
		return flags, err
	}
	return flags, nil
}

// Snapshot returns an independent copy of the working state
func (m *Manager) Snapshot() *State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// Replace swaps in a new state (used when loading a saved plan) and
// persists it
func (m *Manager) Replace(state *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state.Clone()
	return m.save()
}

// Reset returns every field to its schema default and persists
func (m *Manager) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = NewState(m.schema)
	return m.save()
}

// Save persists the working state
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.save()
}

func (m *Manager) save() error {
	data, err := Encode(m.state)
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	if err := m.store.WriteFile(m.path, data, 0644); err != nil {
		return fmt.Errorf("write plan: %w", err)
	}
	return nil
}
