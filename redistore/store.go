package redistore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/sessionguard/session"
)

const (
	sessionKeyPrefix   = "sg:session:"
	principalKeyPrefix = "sg:principal:"

	// casRetries bounds optimistic retries when WATCH detects a concurrent
	// write to the same record
	casRetries = 3
)

// Store implements session.Store on Redis. Records are JSON values keyed by
// session id, with a per-principal sorted set (scored by creation time) as
// the secondary index over active sessions. Conditional updates use
// WATCH-based optimistic transactions so concurrent rotation and eviction
// are settled by the server, matching the compare-and-swap contract.
type Store struct {
	client redis.UniversalClient
}

// New creates a session store over the given Redis client
func New(client redis.UniversalClient) *Store {
	return &Store{client: client}
}

// Create persists a new session record
func (s *Store) Create(ctx context.Context, sess *session.Session) error {
	if sess == nil || sess.ID == "" {
		return session.ErrSessionInvalid
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(sess.ID), data, 0)
		pipe.ZAdd(ctx, principalKey(sess.PrincipalID), redis.Z{
			Score:  float64(sess.CreatedAt.UnixNano()),
			Member: sess.ID,
		})
		return nil
	})
	return err
}

// Get retrieves a session by identifier
func (s *Store) Get(ctx context.Context, id string) (*session.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, session.ErrSessionNotFound
		}
		return nil, err
	}

	var sess session.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// ListActiveByPrincipal returns active sessions ordered oldest first
func (s *Store) ListActiveByPrincipal(ctx context.Context, principalID uuid.UUID) ([]*session.Session, error) {
	ids, err := s.client.ZRange(ctx, principalKey(principalID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	var sessions []*session.Session
	for _, id := range ids {
		sess, err := s.Get(ctx, id)
		if err != nil {
			if errors.Is(err, session.ErrSessionNotFound) {
				// Index entry outlived the record; self-heal
				s.client.ZRem(ctx, principalKey(principalID), id)
				continue
			}
			return nil, err
		}
		if sess.Active {
			sessions = append(sessions, sess)
		}
	}
	return sessions, nil
}

// Touch updates the last activity time of an active session
func (s *Store) Touch(ctx context.Context, id string, at time.Time) error {
	return s.update(ctx, id, func(sess *session.Session, pipe redis.Pipeliner) error {
		if !sess.Active {
			return session.ErrSessionNotFound
		}
		sess.LastActivityAt = at
		return s.pipeSet(ctx, pipe, sess)
	})
}

// Rotate atomically replaces the identifier of an active session. The old
// key is watched, so a concurrent rotation of the same record aborts the
// transaction and surfaces ErrRotationConflict.
func (s *Store) Rotate(ctx context.Context, oldID, newID string, at time.Time) error {
	txf := func(tx *redis.Tx) error {
		sess, err := s.getTx(ctx, tx, oldID)
		if err != nil {
			return session.ErrRotationConflict
		}
		if !sess.Active {
			return session.ErrRotationConflict
		}

		sess.ID = newID
		sess.LastRotatedAt = at

		data, err := json.Marshal(sess)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, sessionKey(oldID))
			pipe.Set(ctx, sessionKey(newID), data, 0)
			pipe.ZRem(ctx, principalKey(sess.PrincipalID), oldID)
			pipe.ZAdd(ctx, principalKey(sess.PrincipalID), redis.Z{
				Score:  float64(sess.CreatedAt.UnixNano()),
				Member: newID,
			})
			return nil
		})
		return err
	}

	err := s.client.Watch(ctx, txf, sessionKey(oldID))
	if errors.Is(err, redis.TxFailedErr) {
		return session.ErrRotationConflict
	}
	return err
}

// Deactivate marks a session inactive and drops it from the active index
func (s *Store) Deactivate(ctx context.Context, id string) error {
	return s.update(ctx, id, func(sess *session.Session, pipe redis.Pipeliner) error {
		sess.Active = false
		if err := s.pipeSet(ctx, pipe, sess); err != nil {
			return err
		}
		pipe.ZRem(ctx, principalKey(sess.PrincipalID), sess.ID)
		return nil
	})
}

// DeactivateAllByPrincipal marks every active session of a principal inactive
func (s *Store) DeactivateAllByPrincipal(ctx context.Context, principalID uuid.UUID) ([]string, error) {
	active, err := s.ListActiveByPrincipal(ctx, principalID)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, sess := range active {
		if err := s.Deactivate(ctx, sess.ID); err != nil {
			if errors.Is(err, session.ErrSessionNotFound) {
				continue
			}
			return ids, err
		}
		ids = append(ids, sess.ID)
	}
	return ids, nil
}

// DeactivateExpired marks active records past their lifetime or idle timeout inactive
func (s *Store) DeactivateExpired(ctx context.Context, now time.Time, lifetime, idle time.Duration) (int64, error) {
	var affected int64

	err := s.scanSessions(ctx, func(sess *session.Session) error {
		if !sess.Active {
			return nil
		}
		if now.Sub(sess.CreatedAt) > lifetime || now.Sub(sess.LastActivityAt) > idle {
			if err := s.Deactivate(ctx, sess.ID); err != nil {
				if errors.Is(err, session.ErrSessionNotFound) {
					return nil
				}
				return err
			}
			affected++
		}
		return nil
	})
	return affected, err
}

// PurgeInactive permanently deletes inactive records past the retention cutoff
func (s *Store) PurgeInactive(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64

	err := s.scanSessions(ctx, func(sess *session.Session) error {
		if sess.Active || !sess.LastActivityAt.Before(cutoff) {
			return nil
		}
		if err := s.client.Del(ctx, sessionKey(sess.ID)).Err(); err != nil {
			return err
		}
		deleted++
		return nil
	})
	return deleted, err
}

// update applies a mutation to a session under WATCH, retrying a bounded
// number of times when a concurrent write invalidates the transaction.
func (s *Store) update(ctx context.Context, id string, mutate func(*session.Session, redis.Pipeliner) error) error {
	txf := func(tx *redis.Tx) error {
		sess, err := s.getTx(ctx, tx, id)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return mutate(sess, pipe)
		})
		return err
	}

	var err error
	for range casRetries {
		err = s.client.Watch(ctx, txf, sessionKey(id))
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return err
}

func (s *Store) getTx(ctx context.Context, tx *redis.Tx, id string) (*session.Session, error) {
	data, err := tx.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, session.ErrSessionNotFound
		}
		return nil, err
	}

	var sess session.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *Store) pipeSet(ctx context.Context, pipe redis.Pipeliner, sess *session.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	pipe.Set(ctx, sessionKey(sess.ID), data, 0)
	return nil
}

// scanSessions iterates all session records via SCAN so sweeps never block
// the server the way KEYS would.
func (s *Store) scanSessions(ctx context.Context, fn func(*session.Session) error) error {
	iter := s.client.Scan(ctx, 0, sessionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return err
		}

		var sess session.Session
		if err := json.Unmarshal(data, &sess); err != nil {
			return err
		}
		if err := fn(&sess); err != nil {
			return err
		}
	}
	return iter.Err()
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func principalKey(principalID uuid.UUID) string {
	return principalKeyPrefix + principalID.String()
}
