package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sort"
	"strings"
)

// Signals holds the client-supplied environmental signals a fingerprint is
// derived from. Only stable, commonly present headers participate so two
// computations from the same logical client match.
type Signals struct {
	UserAgent      string
	Accept         string
	AcceptLanguage string
	AcceptEncoding string
}

// FromRequest extracts fingerprint signals from an HTTP request.
func FromRequest(r *http.Request) Signals {
	return Signals{
		UserAgent:      r.UserAgent(),
		Accept:         r.Header.Get("Accept"),
		AcceptLanguage: r.Header.Get("Accept-Language"),
		AcceptEncoding: r.Header.Get("Accept-Encoding"),
	}
}

// Compute derives a stable hash from the given signals. The result is
// deterministic and independent of the order signals were collected in:
// non-empty components are labeled, sorted and joined before hashing.
// Returns a 64-character hex string.
func Compute(s Signals) string {
	components := []string{
		labeled("ua", s.UserAgent),
		labeled("acc", s.Accept),
		labeled("lang", s.AcceptLanguage),
		labeled("enc", s.AcceptEncoding),
	}

	var filtered []string
	for _, comp := range components {
		if comp != "" {
			filtered = append(filtered, comp)
		}
	}
	sort.Strings(filtered)

	hash := sha256.Sum256([]byte(strings.Join(filtered, "|")))
	return hex.EncodeToString(hash[:])
}

// ComputeRequest is a convenience wrapper combining FromRequest and Compute.
func ComputeRequest(r *http.Request) string {
	return Compute(FromRequest(r))
}

// labeled prefixes a non-empty value with its signal name so that identical
// values in different signals do not collide after sorting.
func labeled(name, value string) string {
	if value == "" {
		return ""
	}
	return name + ":" + value
}
