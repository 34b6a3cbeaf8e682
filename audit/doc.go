// Package audit maintains the append-only trail of session lifecycle events:
// creation, rotation, revocation, eviction, policy rejection and reaping.
//
// Events are appended through a Recorder into any Storage implementation.
// Prior entries are never mutated or deleted except under the subsystem's own
// retention policy. An in-memory storage ships out of the box; external audit
// sinks subscribe by implementing Storage.
//
// # Usage
//
//	recorder := audit.NewRecorder(audit.NewMemoryStorage())
//
//	_ = recorder.Record(ctx, principalID.String(), audit.KindSessionCreated,
//	    audit.WithSession(sess.ID),
//	    audit.WithClient(ip, userAgent),
//	)
//
//	events, _ := recorder.Find(ctx, audit.Criteria{
//	    PrincipalID: principalID.String(),
//	    Kind:        audit.KindSessionRejected,
//	})
//
// Wrap storage in an AsyncWriter to keep audit I/O off the request path:
//
//	storage := audit.NewAsyncWriter(backend, logger, audit.AsyncOptions{})
//	defer storage.Close()
//	recorder := audit.NewRecorder(storage)
package audit
