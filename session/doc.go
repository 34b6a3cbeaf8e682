// Package session hardens primary authentication with an independently
// tracked, cryptographically protected session record. It defends against
// session fixation, hijacking via stolen identifiers and unbounded
// concurrent logins, under the assumption of an adversarial client: every
// decision fails closed.
//
// The package does not authenticate credentials. It consumes a verified
// principal identifier from the upstream identity provider and exposes only
// "is this request's session valid, and for which principal".
//
// # Architecture
//
// A Manager orchestrates the lifecycle. On login it asks the Governor to
// admit the principal under the concurrent-session policy, creates the
// record in a Store and hands the client an encrypted pointer via the cookie
// package. On each request it decodes the pointer, fetches the record,
// runs the Validator's ordered checks (existence, absolute expiry, idle
// expiry, fingerprint, source address), rotates the identifier in place when
// due and touches activity. A Reaper sweeps expired and long-dead records on
// its own timer, outside the request path. Every lifecycle transition lands
// in the audit trail.
//
//	login ──► Governor.Admit ──► Store.Create ──► cookie pointer
//	request ─► decode ─► Validator.Check ─► maybe rotate ─► touch
//	Reaper ──► deactivate expired / purge retained (fixed interval)
//
// Execution is request-scoped: every request re-derives its view from the
// shared store, and concurrent mutation (rotation, eviction) is settled by
// the store's atomic conditional updates rather than in-process locks.
//
// # Usage
//
//	cookies, _ := cookie.New([]string{secret}, "session-pointer")
//	mgr, err := session.New(
//	    session.WithStore(store),
//	    session.WithCookieManager(cookies),
//	    session.WithConfig(cfg),
//	    session.WithRecorder(audit.NewRecorder(audit.NewMemoryStorage())),
//	)
//
//	// login handler, after primary authentication verified principalID
//	sess, err := mgr.Issue(ctx, w, r, principalID)
//
//	// protected routes
//	mux.Handle("/app/", mgr.RequireSession(appHandler))
//
//	// background sweep
//	go session.NewReaper(store, cfg, recorder, logger).Run(ctx)
//
// Storage back-ends: an in-memory store ships here; pgstore and redistore
// provide PostgreSQL and Redis implementations of the Store interface.
package session
