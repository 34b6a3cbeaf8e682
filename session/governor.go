package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Governor enforces the per-principal cap on simultaneously active sessions.
// It runs at creation time, before any new record is written, so a denied
// login never leaves a partial session behind.
type Governor struct {
	store  Store
	policy Policy
	limit  int
}

// NewGovernor creates a governor over the given store
func NewGovernor(store Store, policy Policy, limit int) *Governor {
	return &Governor{
		store:  store,
		policy: policy,
		limit:  limit,
	}
}

// Admit decides whether the principal may open another session. Under
// PolicyEvictOldest it deactivates the oldest active sessions to make room
// and returns their identifiers; under PolicyDeny it returns
// ErrConcurrencyLimit when the cap is reached. Storage errors fail closed.
func (g *Governor) Admit(ctx context.Context, principalID uuid.UUID) (evicted []string, err error) {
	switch g.policy {
	case PolicyUnrestricted:
		return nil, nil

	case PolicyDeny:
		active, err := g.store.ListActiveByPrincipal(ctx, principalID)
		if err != nil {
			return nil, err
		}
		if len(active) >= g.limit {
			return nil, fmt.Errorf("%w: %d of %d sessions in use, sign out of another device to continue",
				ErrConcurrencyLimit, len(active), g.limit)
		}
		return nil, nil

	case PolicyEvictOldest:
		active, err := g.store.ListActiveByPrincipal(ctx, principalID)
		if err != nil {
			return nil, err
		}

		overflow := len(active) - g.limit + 1
		if overflow <= 0 {
			return nil, nil
		}

		// List is ordered oldest first; deactivate exactly the overflow
		for _, s := range active[:overflow] {
			if err := g.store.Deactivate(ctx, s.ID); err != nil {
				return evicted, err
			}
			evicted = append(evicted, s.ID)
		}
		return evicted, nil

	default:
		return nil, fmt.Errorf("%w: unhandled concurrency policy %v", ErrSessionInvalid, g.policy)
	}
}
