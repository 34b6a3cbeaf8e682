package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store defines durable CRUD over session records. Implementations must make
// Rotate an atomic conditional update: correctness for concurrent rotation
// and eviction depends entirely on compare-and-swap semantics at the storage
// layer, not on application-level locks.
type Store interface {
	// Create persists a new session record
	Create(ctx context.Context, session *Session) error

	// Get retrieves a session by identifier, returning ErrSessionNotFound
	// when no record exists
	Get(ctx context.Context, id string) (*Session, error)

	// ListActiveByPrincipal returns the principal's active sessions ordered
	// oldest first by creation time
	ListActiveByPrincipal(ctx context.Context, principalID uuid.UUID) ([]*Session, error)

	// Touch updates the last activity time of an active session
	Touch(ctx context.Context, id string, at time.Time) error

	// Rotate atomically replaces the identifier of an active session,
	// permanently retiring the old one. Returns ErrRotationConflict when the
	// record is gone, inactive, or already rotated by a concurrent request.
	Rotate(ctx context.Context, oldID, newID string, at time.Time) error

	// Deactivate marks a session inactive. Inactive is terminal: no field is
	// ever mutated again except deletion.
	Deactivate(ctx context.Context, id string) error

	// DeactivateAllByPrincipal marks every active session of a principal
	// inactive, returning the identifiers affected
	DeactivateAllByPrincipal(ctx context.Context, principalID uuid.UUID) ([]string, error)

	// DeactivateExpired marks active records past the absolute lifetime or
	// idle timeout inactive, returning how many were affected
	DeactivateExpired(ctx context.Context, now time.Time, lifetime, idle time.Duration) (int64, error)

	// PurgeInactive permanently deletes inactive records whose last activity
	// predates the cutoff, returning how many were deleted
	PurgeInactive(ctx context.Context, cutoff time.Time) (int64, error)
}
