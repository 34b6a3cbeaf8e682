package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Recorder appends session lifecycle events to the audit trail.
type Recorder struct {
	storage Storage
}

// NewRecorder creates a recorder over the given storage
func NewRecorder(storage Storage) *Recorder {
	if storage == nil {
		panic("audit: storage cannot be nil")
	}
	return &Recorder{storage: storage}
}

// Record appends a lifecycle event for the principal
func (r *Recorder) Record(ctx context.Context, principalID string, kind Kind, opts ...EventOption) error {
	event := Event{
		ID:          uuid.New().String(),
		PrincipalID: principalID,
		Kind:        kind,
		CreatedAt:   time.Now(),
	}

	for _, opt := range opts {
		opt(&event)
	}

	if err := event.Validate(); err != nil {
		return err
	}

	return r.storage.Store(ctx, event)
}

// Find retrieves audit events matching the criteria
func (r *Recorder) Find(ctx context.Context, criteria Criteria) ([]Event, error) {
	return r.storage.Query(ctx, criteria)
}
