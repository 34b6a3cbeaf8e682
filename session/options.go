package session

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/sessionguard/audit"
	"github.com/dmitrymomot/sessionguard/cookie"
)

// EventRecorder appends lifecycle events to the audit trail. audit.Recorder
// satisfies it; a nil recorder disables auditing.
type EventRecorder interface {
	Record(ctx context.Context, principalID string, kind audit.Kind, opts ...audit.EventOption) error
}

// RequestContextFunc derives the request environment used for validation
type RequestContextFunc func(r *http.Request) RequestContext

// Option is a functional option for configuring the Manager
type Option func(*Manager)

// WithStore sets the session store
func WithStore(store Store) Option {
	return func(m *Manager) {
		m.store = store
	}
}

// WithCookieManager sets the encrypted cookie manager carrying the pointer
func WithCookieManager(cookies *cookie.Manager) Option {
	return func(m *Manager) {
		m.cookies = cookies
	}
}

// WithConfig sets custom configuration
func WithConfig(config Config) Option {
	return func(m *Manager) {
		m.config = config
	}
}

// WithRecorder sets the audit trail recorder
func WithRecorder(recorder EventRecorder) Option {
	return func(m *Manager) {
		m.recorder = recorder
	}
}

// WithLogger sets the structured logger
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// WithRequestContextFunc overrides how the request environment is derived,
// e.g. to source the client address from a custom header
func WithRequestContextFunc(fn RequestContextFunc) Option {
	return func(m *Manager) {
		m.requestContext = fn
	}
}
