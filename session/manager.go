package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/sessionguard/audit"
	"github.com/dmitrymomot/sessionguard/cookie"
)

// Manager orchestrates the session-hardening lifecycle: admission, creation,
// per-request validation, rotation, revocation. It is an injected instance
// carrying its configuration and store handle; there is no hidden static
// state and no in-process locking — concurrent correctness rests on the
// store's conditional updates.
type Manager struct {
	store          Store
	cookies        *cookie.Manager
	config         Config
	validator      *Validator
	governor       *Governor
	recorder       EventRecorder
	log            *slog.Logger
	requestContext RequestContextFunc
}

// New creates a session manager. A store and a cookie manager are required.
func New(opts ...Option) (*Manager, error) {
	m := &Manager{
		config:         DefaultConfig(),
		requestContext: RequestFromHTTP,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.store == nil {
		return nil, ErrNoStore
	}
	if m.cookies == nil {
		return nil, ErrNoCookieManager
	}
	if m.log == nil {
		m.log = slog.Default()
	}

	m.validator = NewValidator(m.config)
	m.governor = NewGovernor(m.store, m.config.ConcurrencyPolicy, m.config.MaxSessionsPerPrincipal)

	return m, nil
}

// Config returns the manager's configuration
func (m *Manager) Config() Config {
	return m.config
}

// Issue opens a session for a principal that primary authentication has just
// verified. The concurrency governor runs first, so a denied login never
// creates a partial record; on success the encrypted pointer is written to
// the response.
func (m *Manager) Issue(ctx context.Context, w http.ResponseWriter, r *http.Request, principalID uuid.UUID) (*Session, error) {
	rc := m.requestContext(r)

	evicted, err := m.governor.Admit(ctx, principalID)
	for _, id := range evicted {
		m.record(ctx, principalID.String(), audit.KindSessionEvicted,
			audit.WithSession(id),
			audit.WithReason("concurrent session limit"))
	}
	if err != nil {
		if errors.Is(err, ErrConcurrencyLimit) {
			m.record(ctx, principalID.String(), audit.KindLoginDenied,
				audit.WithReason("concurrent session limit"),
				audit.WithClient(rc.SourceAddress, rc.UserAgent))
		}
		return nil, err
	}

	s, err := NewSession(principalID, rc)
	if err != nil {
		return nil, err
	}

	if err := m.store.Create(ctx, s); err != nil {
		return nil, err
	}

	if err := m.setPointer(w, s); err != nil {
		// Roll back so a pointer that never reached the client cannot count
		// against the concurrency cap
		_ = m.store.Deactivate(ctx, s.ID)
		return nil, err
	}

	m.record(ctx, principalID.String(), audit.KindSessionCreated,
		audit.WithSession(s.ID),
		audit.WithClient(rc.SourceAddress, rc.UserAgent))

	return s, nil
}

// Resolve validates the inbound request's session pointer. It returns the
// session and OutcomeValid on acceptance. Every rejection flags the record
// inactive, clears the cookie and reports only a coarse outcome — transport
// failures are indistinguishable from a missing session. A non-nil error
// means the store was unreachable; callers must fail closed.
func (m *Manager) Resolve(ctx context.Context, w http.ResponseWriter, r *http.Request) (*Session, Outcome, error) {
	payload, err := m.cookies.GetPayload(r, m.config.CookieName)
	if err != nil {
		// Malformed or undecryptable pointers are exactly "no session"
		return nil, OutcomeInvalid, nil
	}

	rc := m.requestContext(r)
	now := time.Now()

	s, err := m.store.Get(ctx, payload.SessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			m.rejectWithoutRecord(ctx, w, payload, rc)
			return nil, OutcomeInvalid, nil
		}
		return nil, OutcomeInvalid, err
	}

	if outcome := m.validator.Check(s, rc, now); outcome != OutcomeValid {
		m.reject(ctx, w, s, rc, outcome)
		return nil, outcome, nil
	}

	s, outcome, err := m.maybeRotate(ctx, w, s, rc, now)
	if err != nil || outcome != OutcomeValid {
		return nil, outcome, err
	}

	if err := m.store.Touch(ctx, s.ID, now); err != nil {
		return nil, OutcomeInvalid, err
	}
	s.LastActivityAt = now

	return s, OutcomeValid, nil
}

// Revoke terminates the request's session (explicit logout) and clears the
// pointer. Missing or undecodable pointers are not an error.
func (m *Manager) Revoke(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	defer m.cookies.Delete(w, m.config.CookieName)

	payload, err := m.cookies.GetPayload(r, m.config.CookieName)
	if err != nil {
		return nil
	}

	if err := m.store.Deactivate(ctx, payload.SessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		return err
	}

	m.record(ctx, payload.PrincipalID.String(), audit.KindSessionRevoked,
		audit.WithSession(payload.SessionID),
		audit.WithReason("logout"))
	return nil
}

// RevokeAll terminates every active session of a principal, returning how
// many were affected. Used for logout-everywhere and credential resets.
func (m *Manager) RevokeAll(ctx context.Context, principalID uuid.UUID) (int, error) {
	ids, err := m.store.DeactivateAllByPrincipal(ctx, principalID)
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		m.record(ctx, principalID.String(), audit.KindSessionRevoked,
			audit.WithSession(id),
			audit.WithReason("revoke all"))
	}
	return len(ids), nil
}

// maybeRotate replaces the session identifier in place once the rotation
// interval has elapsed, bounding the exposure window of any issued id. The
// store update is conditional on the old id still being active: when a
// concurrent request wins the race this request re-fetches, and if the old
// id is gone it is treated as invalid rather than risking a duplicate
// active session.
func (m *Manager) maybeRotate(ctx context.Context, w http.ResponseWriter, s *Session, rc RequestContext, now time.Time) (*Session, Outcome, error) {
	if !s.RotationDue(now, m.config.RotationInterval) {
		return s, OutcomeValid, nil
	}

	newID, err := generateID()
	if err != nil {
		return nil, OutcomeInvalid, err
	}

	oldID := s.ID
	switch err := m.store.Rotate(ctx, oldID, newID, now); {
	case err == nil:
		s.ID = newID
		s.LastRotatedAt = now

		if err := m.setPointer(w, s); err != nil {
			return nil, OutcomeInvalid, err
		}

		m.record(ctx, s.PrincipalID.String(), audit.KindSessionRotated,
			audit.WithSession(newID),
			audit.WithMetadata("retired_id", oldID))
		return s, OutcomeValid, nil

	case errors.Is(err, ErrRotationConflict):
		// Lost the race: the old id has been retired by a concurrent
		// request. Force re-authentication instead of resurrecting it.
		refetched, err := m.store.Get(ctx, oldID)
		if err != nil || !refetched.Active {
			m.reject(ctx, w, s, rc, OutcomeInvalid)
			return nil, OutcomeInvalid, nil
		}
		return refetched, OutcomeValid, nil

	default:
		return nil, OutcomeInvalid, err
	}
}

// reject handles every non-Valid outcome: the session is flagged inactive,
// the pointer is cleared and the rejection is recorded with its reason.
func (m *Manager) reject(ctx context.Context, w http.ResponseWriter, s *Session, rc RequestContext, outcome Outcome) {
	if s.Active {
		if err := m.store.Deactivate(ctx, s.ID); err != nil && !errors.Is(err, ErrSessionNotFound) {
			m.log.ErrorContext(ctx, "failed to deactivate rejected session",
				slog.String("outcome", outcome.String()),
				slog.Any("error", err))
		}
	}

	m.cookies.Delete(w, m.config.CookieName)

	m.record(ctx, s.PrincipalID.String(), audit.KindSessionRejected,
		audit.WithSession(s.ID),
		audit.WithReason(outcome.String()),
		audit.WithClient(rc.SourceAddress, rc.UserAgent))
}

// rejectWithoutRecord clears the pointer when the decoded id matches no row
func (m *Manager) rejectWithoutRecord(ctx context.Context, w http.ResponseWriter, payload cookie.Payload, rc RequestContext) {
	m.cookies.Delete(w, m.config.CookieName)

	m.record(ctx, payload.PrincipalID.String(), audit.KindSessionRejected,
		audit.WithSession(payload.SessionID),
		audit.WithReason(OutcomeInvalid.String()),
		audit.WithClient(rc.SourceAddress, rc.UserAgent))
}

// setPointer writes the encrypted pointer cookie for the session
func (m *Manager) setPointer(w http.ResponseWriter, s *Session) error {
	opts := []cookie.Option{
		cookie.WithMaxAge(int(m.config.Lifetime.Seconds())),
	}
	if m.config.SecureCookies {
		opts = append(opts, cookie.WithSecure(true))
	}

	return m.cookies.SetPayload(w, m.config.CookieName, cookie.Payload{
		SessionID:   s.ID,
		PrincipalID: s.PrincipalID,
		IssuedAt:    time.Now(),
	}, opts...)
}

// record appends to the audit trail, logging instead of failing the request
// when the trail itself is unavailable
func (m *Manager) record(ctx context.Context, principalID string, kind audit.Kind, opts ...audit.EventOption) {
	if m.recorder == nil {
		return
	}
	if err := m.recorder.Record(ctx, principalID, kind, opts...); err != nil {
		m.log.ErrorContext(ctx, "failed to record audit event",
			slog.String("kind", string(kind)),
			slog.Any("error", err))
	}
}
