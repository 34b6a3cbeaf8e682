package session_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionguard/session"
)

func testRequestContext() session.RequestContext {
	return session.RequestContext{
		SourceAddress: "203.0.113.10",
		UserAgent:     "Mozilla/5.0 (X11; Linux x86_64)",
		Fingerprint:   "fp-hash",
	}
}

func TestNewSession(t *testing.T) {
	t.Parallel()

	principalID := uuid.New()
	rc := testRequestContext()

	s, err := session.NewSession(principalID, rc)
	require.NoError(t, err)

	assert.NotEmpty(t, s.ID)
	assert.GreaterOrEqual(t, len(s.ID), 43, "identifier must carry at least 256 bits of randomness")
	assert.Equal(t, principalID, s.PrincipalID)
	assert.Equal(t, rc.SourceAddress, s.SourceAddress)
	assert.Equal(t, rc.UserAgent, s.UserAgent)
	assert.Equal(t, rc.Fingerprint, s.FingerprintHash)
	assert.True(t, s.Active)
	assert.WithinDuration(t, time.Now(), s.CreatedAt, time.Second)
	assert.Equal(t, s.CreatedAt, s.LastActivityAt)
	assert.Equal(t, s.CreatedAt, s.LastRotatedAt)
}

func TestNewSession_UniqueIDs(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for range 100 {
		s, err := session.NewSession(uuid.New(), testRequestContext())
		require.NoError(t, err)

		_, dup := seen[s.ID]
		require.False(t, dup, "identifier reuse")
		seen[s.ID] = struct{}{}
	}
}

func TestSession_Expiry(t *testing.T) {
	t.Parallel()

	created := time.Now().Add(-time.Hour)
	s := &session.Session{
		CreatedAt:      created,
		LastActivityAt: created.Add(30 * time.Minute),
		Active:         true,
	}
	now := time.Now()

	assert.True(t, s.ExpiredAbsolute(now, 59*time.Minute))
	assert.False(t, s.ExpiredAbsolute(now, 2*time.Hour))

	assert.True(t, s.ExpiredIdle(now, 29*time.Minute))
	assert.False(t, s.ExpiredIdle(now, time.Hour))
}

func TestSession_RotationDue(t *testing.T) {
	t.Parallel()

	s := &session.Session{LastRotatedAt: time.Now().Add(-time.Hour)}
	now := time.Now()

	assert.True(t, s.RotationDue(now, 30*time.Minute))
	assert.False(t, s.RotationDue(now, 2*time.Hour))
	assert.False(t, s.RotationDue(now, 0), "zero interval disables rotation")
}

func TestSession_MatchFingerprint(t *testing.T) {
	t.Parallel()

	s := &session.Session{FingerprintHash: "abc123"}

	assert.True(t, s.MatchFingerprint("abc123"))
	assert.False(t, s.MatchFingerprint("abc124"))
	assert.False(t, s.MatchFingerprint(""))
	assert.False(t, s.MatchFingerprint("abc1234"))
}
