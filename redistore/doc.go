// Package redistore provides the Redis implementation of session.Store using
// go-redis/v9.
//
// Each session is a JSON value keyed by its identifier; a per-principal
// sorted set scored by creation time serves as the secondary index over
// active sessions, giving the concurrency governor its oldest-first ordering
// for free. Conditional updates (rotation, touch, deactivation) run inside
// WATCH transactions so concurrent requests racing over the same record are
// settled by the server — exactly one transaction commits, the rest abort.
//
// Records carry no Redis TTL: expiry is a state transition owned by the
// reaper, identical across storage back-ends.
//
// # Usage
//
//	var cfg redistore.Config
//	config.MustLoad(&cfg)
//
//	client, err := redistore.Connect(ctx, cfg)
//	if err != nil {
//	    // server unreachable after retries
//	}
//	defer client.Close()
//
//	store := redistore.New(client)
package redistore
