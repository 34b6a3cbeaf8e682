package audit

import (
	"context"
	"sync"
)

// MemoryStorage implements Storage in memory. Useful for tests and as the
// default sink when no external audit backend is wired up.
type MemoryStorage struct {
	mu     sync.RWMutex
	events []Event
}

// NewMemoryStorage creates an empty in-memory audit storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Store appends an event. Prior entries are never touched.
func (m *MemoryStorage) Store(ctx context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, event)
	return nil
}

// Query returns events matching the criteria in insertion order
func (m *MemoryStorage) Query(ctx context.Context, criteria Criteria) ([]Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Event
	for _, e := range m.events {
		if !matches(e, criteria) {
			continue
		}
		result = append(result, e)
		if criteria.Limit > 0 && len(result) >= criteria.Limit {
			break
		}
	}
	return result, nil
}

// Len returns the number of stored events
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}

func matches(e Event, c Criteria) bool {
	if c.PrincipalID != "" && e.PrincipalID != c.PrincipalID {
		return false
	}
	if c.SessionID != "" && e.SessionID != c.SessionID {
		return false
	}
	if c.Kind != "" && e.Kind != c.Kind {
		return false
	}
	if !c.Since.IsZero() && e.CreatedAt.Before(c.Since) {
		return false
	}
	if !c.Until.IsZero() && e.CreatedAt.After(c.Until) {
		return false
	}
	return true
}
