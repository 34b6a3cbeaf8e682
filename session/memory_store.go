package session

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Store using in-memory storage. Intended for tests
// and single-process deployments; it honors the same conditional-update
// contract as the durable stores.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates a new in-memory session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
	}
}

// Create stores a new session
func (m *MemoryStore) Create(ctx context.Context, session *Session) error {
	if session == nil || session.ID == "" {
		return ErrSessionInvalid
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sessionCopy := *session
	m.sessions[session.ID] = &sessionCopy
	return nil
}

// Get retrieves a session by identifier
func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[id]
	if !exists {
		return nil, ErrSessionNotFound
	}

	sessionCopy := *session
	return &sessionCopy, nil
}

// ListActiveByPrincipal returns active sessions ordered oldest first
func (m *MemoryStore) ListActiveByPrincipal(ctx context.Context, principalID uuid.UUID) ([]*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var sessions []*Session
	for _, session := range m.sessions {
		if session.Active && session.PrincipalID == principalID {
			sessionCopy := *session
			sessions = append(sessions, &sessionCopy)
		}
	}

	slices.SortFunc(sessions, func(a, b *Session) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return sessions, nil
}

// Touch updates the last activity time of an active session
func (m *MemoryStore) Touch(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[id]
	if !exists || !session.Active {
		return ErrSessionNotFound
	}

	session.LastActivityAt = at
	return nil
}

// Rotate atomically replaces the identifier of an active session
func (m *MemoryStore) Rotate(ctx context.Context, oldID, newID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[oldID]
	if !exists || !session.Active {
		return ErrRotationConflict
	}

	// Retire the old identifier permanently; the record moves to the new key
	delete(m.sessions, oldID)
	session.ID = newID
	session.LastRotatedAt = at
	m.sessions[newID] = session
	return nil
}

// Deactivate marks a session inactive
func (m *MemoryStore) Deactivate(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[id]
	if !exists {
		return ErrSessionNotFound
	}

	session.Active = false
	return nil
}

// DeactivateAllByPrincipal marks every active session of a principal inactive
func (m *MemoryStore) DeactivateAllByPrincipal(ctx context.Context, principalID uuid.UUID) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var ids []string
	for id, session := range m.sessions {
		if session.Active && session.PrincipalID == principalID {
			session.Active = false
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// DeactivateExpired marks active records past their lifetime or idle timeout inactive
func (m *MemoryStore) DeactivateExpired(ctx context.Context, now time.Time, lifetime, idle time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var affected int64
	for _, session := range m.sessions {
		if !session.Active {
			continue
		}
		if now.Sub(session.CreatedAt) > lifetime || now.Sub(session.LastActivityAt) > idle {
			session.Active = false
			affected++
		}
	}
	return affected, nil
}

// PurgeInactive permanently deletes inactive records past the retention cutoff
func (m *MemoryStore) PurgeInactive(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for id, session := range m.sessions {
		if !session.Active && session.LastActivityAt.Before(cutoff) {
			delete(m.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

// Stats returns the number of total and active sessions
func (m *MemoryStore) Stats() (total, active int) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total = len(m.sessions)
	for _, session := range m.sessions {
		if session.Active {
			active++
		}
	}
	return
}
