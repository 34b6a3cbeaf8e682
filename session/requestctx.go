package session

import (
	"net/http"

	"github.com/dmitrymomot/sessionguard/clientip"
	"github.com/dmitrymomot/sessionguard/fingerprint"
)

// RequestContext carries the request environment every check operates on.
// Nothing in this package reads implicit global state; callers build one per
// request and pass it explicitly.
type RequestContext struct {
	SourceAddress string
	UserAgent     string
	Fingerprint   string
}

// RequestFromHTTP derives a RequestContext from an inbound HTTP request.
func RequestFromHTTP(r *http.Request) RequestContext {
	return RequestContext{
		SourceAddress: clientip.GetIP(r),
		UserAgent:     r.UserAgent(),
		Fingerprint:   fingerprint.ComputeRequest(r),
	}
}
