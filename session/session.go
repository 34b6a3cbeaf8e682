package session

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session is the durable server-side session record. The client only ever
// holds an encrypted pointer to it; every request re-derives its view of the
// session from the backing store.
type Session struct {
	ID              string    `json:"id"`
	PrincipalID     uuid.UUID `json:"principal_id"`
	SourceAddress   string    `json:"source_address"`
	UserAgent       string    `json:"user_agent"`
	FingerprintHash string    `json:"fingerprint_hash"`
	CreatedAt       time.Time `json:"created_at"`
	LastActivityAt  time.Time `json:"last_activity_at"`
	LastRotatedAt   time.Time `json:"last_rotated_at"`
	Active          bool      `json:"active"`
}

// NewSession creates an active session for the principal, capturing the
// request environment at creation time. The ID carries 256 bits of
// randomness and is never reused, including after rotation.
func NewSession(principalID uuid.UUID, rc RequestContext) (*Session, error) {
	id, err := generateID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Session{
		ID:              id,
		PrincipalID:     principalID,
		SourceAddress:   rc.SourceAddress,
		UserAgent:       rc.UserAgent,
		FingerprintHash: rc.Fingerprint,
		CreatedAt:       now,
		LastActivityAt:  now,
		LastRotatedAt:   now,
		Active:          true,
	}, nil
}

// ExpiredAbsolute reports whether the session has outlived its maximum
// lifetime regardless of activity.
func (s *Session) ExpiredAbsolute(now time.Time, lifetime time.Duration) bool {
	return s != nil && now.Sub(s.CreatedAt) > lifetime
}

// ExpiredIdle reports whether the gap since the last activity exceeds the
// idle timeout.
func (s *Session) ExpiredIdle(now time.Time, idle time.Duration) bool {
	return s != nil && now.Sub(s.LastActivityAt) > idle
}

// RotationDue reports whether the identifier has been in use longer than the
// rotation interval.
func (s *Session) RotationDue(now time.Time, interval time.Duration) bool {
	return s != nil && interval > 0 && now.Sub(s.LastRotatedAt) > interval
}

// MatchFingerprint compares a computed fingerprint against the stored one in
// constant time.
func (s *Session) MatchFingerprint(fingerprint string) bool {
	if s == nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.FingerprintHash), []byte(fingerprint)) == 1
}

// generateID creates a cryptographically secure session identifier
func generateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrIDGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
