package audit

import (
	"context"
	"fmt"
	"time"
)

// Kind identifies a session lifecycle event
type Kind string

const (
	KindSessionCreated  Kind = "session.created"
	KindSessionRotated  Kind = "session.rotated"
	KindSessionRevoked  Kind = "session.revoked"
	KindSessionEvicted  Kind = "session.evicted"
	KindSessionRejected Kind = "session.rejected"
	KindSessionReaped   Kind = "session.reaped"
	KindLoginDenied     Kind = "session.login_denied"
)

// Event is a single append-only audit trail entry. Entries are never mutated
// or deleted except under the subsystem's own retention policy.
type Event struct {
	ID          string         `json:"id"`
	PrincipalID string         `json:"principal_id"`
	SessionID   string         `json:"session_id,omitempty"`
	Kind        Kind           `json:"kind"`
	Reason      string         `json:"reason,omitempty"`
	IP          string         `json:"ip,omitempty"`
	UserAgent   string         `json:"user_agent,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Validate checks if the event has all required fields
func (e *Event) Validate() error {
	if e.Kind == "" {
		return fmt.Errorf("%w: kind is required", ErrEventValidation)
	}
	return nil
}

// Criteria filters audit trail queries
type Criteria struct {
	PrincipalID string
	SessionID   string
	Kind        Kind
	Since       time.Time
	Until       time.Time
	Limit       int
}

// Storage persists audit events. Implementations must be append-only:
// Store never overwrites and nothing exposes mutation of prior entries.
type Storage interface {
	Store(ctx context.Context, event Event) error
	Query(ctx context.Context, criteria Criteria) ([]Event, error)
}

// EventOption applies configuration to an Event during recording
type EventOption func(*Event)

// WithSession attaches the session identifier to the event
func WithSession(id string) EventOption {
	return func(e *Event) {
		e.SessionID = id
	}
}

// WithReason attaches a coarse reason code to the event
func WithReason(reason string) EventOption {
	return func(e *Event) {
		e.Reason = reason
	}
}

// WithClient attaches the request's source address and user agent
func WithClient(ip, userAgent string) EventOption {
	return func(e *Event) {
		e.IP = ip
		e.UserAgent = userAgent
	}
}

// WithMetadata adds a metadata entry to the event
func WithMetadata(key string, value any) EventOption {
	return func(e *Event) {
		if e.Metadata == nil {
			e.Metadata = make(map[string]any)
		}
		e.Metadata[key] = value
	}
}
