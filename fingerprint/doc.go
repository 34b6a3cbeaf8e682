// Package fingerprint derives a stable device fingerprint from client-supplied
// request signals (User-Agent and Accept headers).
//
// The fingerprint is a secondary binding between a session and the client it
// was issued to. It is deliberately weak as an identifier — headers are fully
// attacker-controlled — and must never be used as the sole authenticator. Its
// value is in detecting stolen session pointers replayed from a different
// environment.
//
// # Usage
//
//	hash := fingerprint.ComputeRequest(r)
//
// Or from explicit signals when no *http.Request is at hand:
//
//	hash := fingerprint.Compute(fingerprint.Signals{
//	    UserAgent: "Mozilla/5.0 ...",
//	    Accept:    "text/html",
//	})
//
// Two computations over the same signal set always produce the same hash,
// regardless of collection order.
package fingerprint
