// Package cookie encodes the client-held session pointer with authenticated
// symmetric encryption and manages the HTTP cookie that carries it.
//
// The pointer (session id, principal id, issue time) is sealed with
// AES-256-GCM under a key derived via HKDF-SHA256 from a site-wide secret and
// a purpose-specific salt. The purpose binding means a codec built for
// session pointers can never decode — or be tricked into decoding — material
// encrypted for any other purpose, even under the same secret. A fresh random
// nonce is used per encryption; the wire format is base64url(nonce || ciphertext).
//
// Because GCM authenticates the ciphertext, any tampering is detected on
// decode. Every decode failure collapses into a typed error that callers
// treat identically to "no session" — no distinction is ever surfaced to the
// client.
//
// # Usage
//
//	mgr, err := cookie.New([]string{secret}, "session-pointer")
//	if err != nil {
//	    // secrets too short or missing
//	}
//
//	err = mgr.SetPayload(w, "sid", cookie.Payload{
//	    SessionID:   sess.ID,
//	    PrincipalID: sess.PrincipalID,
//	    IssuedAt:    time.Now(),
//	})
//
//	p, err := mgr.GetPayload(r, "sid")
//	if err != nil {
//	    // treat as unauthenticated
//	}
//
// Multiple secrets may be supplied to support zero-downtime secret rotation:
// the first encrypts, all are tried on decode.
package cookie
