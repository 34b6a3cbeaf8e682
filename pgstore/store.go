package pgstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/sessionguard/session"
)

// Store implements session.Store on PostgreSQL. All conditional updates
// (rotation, touch, deactivation) are single statements keyed on session_id
// and active, giving the compare-and-swap semantics the session package
// relies on for concurrent correctness.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a session store over the given connection pool. The schema in
// schema.sql must already be applied.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Create persists a new session record
func (s *Store) Create(ctx context.Context, sess *session.Session) error {
	if sess == nil || sess.ID == "" {
		return session.ErrSessionInvalid
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO sessions (session_id, principal_id, source_address, user_agent,
			fingerprint_hash, created_at, last_activity_at, last_rotated_at, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		sess.ID, sess.PrincipalID, sess.SourceAddress, sess.UserAgent,
		sess.FingerprintHash, sess.CreatedAt, sess.LastActivityAt, sess.LastRotatedAt, sess.Active)
	return err
}

// Get retrieves a session by identifier
func (s *Store) Get(ctx context.Context, id string) (*session.Session, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT session_id, principal_id, source_address, user_agent,
			fingerprint_hash, created_at, last_activity_at, last_rotated_at, active
		FROM sessions WHERE session_id = $1`, id)

	sess, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrSessionNotFound
		}
		return nil, err
	}
	return sess, nil
}

// ListActiveByPrincipal returns active sessions ordered oldest first
func (s *Store) ListActiveByPrincipal(ctx context.Context, principalID uuid.UUID) ([]*session.Session, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT session_id, principal_id, source_address, user_agent,
			fingerprint_hash, created_at, last_activity_at, last_rotated_at, active
		FROM sessions
		WHERE principal_id = $1 AND active
		ORDER BY created_at`, principalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*session.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// Touch updates the last activity time of an active session
func (s *Store) Touch(ctx context.Context, id string, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE sessions SET last_activity_at = $2
		WHERE session_id = $1 AND active`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return session.ErrSessionNotFound
	}
	return nil
}

// Rotate atomically replaces the identifier of an active session. The update
// is keyed on the old identifier and active, so of two concurrent rotations
// exactly one affects a row; the other sees ErrRotationConflict.
func (s *Store) Rotate(ctx context.Context, oldID, newID string, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE sessions SET session_id = $2, last_rotated_at = $3
		WHERE session_id = $1 AND active`, oldID, newID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return session.ErrRotationConflict
	}
	return nil
}

// Deactivate marks a session inactive
func (s *Store) Deactivate(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE sessions SET active = FALSE WHERE session_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return session.ErrSessionNotFound
	}
	return nil
}

// DeactivateAllByPrincipal marks every active session of a principal inactive
func (s *Store) DeactivateAllByPrincipal(ctx context.Context, principalID uuid.UUID) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		UPDATE sessions SET active = FALSE
		WHERE principal_id = $1 AND active
		RETURNING session_id`, principalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeactivateExpired marks active records past their lifetime or idle timeout inactive
func (s *Store) DeactivateExpired(ctx context.Context, now time.Time, lifetime, idle time.Duration) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE sessions SET active = FALSE
		WHERE active AND (created_at < $1 OR last_activity_at < $2)`,
		now.Add(-lifetime), now.Add(-idle))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// PurgeInactive permanently deletes inactive records past the retention cutoff
func (s *Store) PurgeInactive(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM sessions WHERE NOT active AND last_activity_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanSession(row pgx.Row) (*session.Session, error) {
	var sess session.Session
	err := row.Scan(&sess.ID, &sess.PrincipalID, &sess.SourceAddress, &sess.UserAgent,
		&sess.FingerprintHash, &sess.CreatedAt, &sess.LastActivityAt, &sess.LastRotatedAt, &sess.Active)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}
