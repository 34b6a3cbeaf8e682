package session

import (
	"fmt"
	"net/netip"
	"time"
)

// Outcome is the result of validating a request's session. It is a closed
// set; OutcomeValid is the only non-terminal value — every other outcome
// flags the session inactive and forces re-authentication.
type Outcome uint8

const (
	// OutcomeValid accepts the request.
	OutcomeValid Outcome = iota

	// OutcomeInvalid covers a missing pointer, an undecodable pointer, an
	// unknown identifier, or an inactive record. Deliberately coarse: the
	// client never learns which.
	OutcomeInvalid

	// OutcomeExpiredAbsolute means the session outlived its maximum lifetime.
	OutcomeExpiredAbsolute

	// OutcomeExpiredIdle means the gap since last activity exceeded the idle timeout.
	OutcomeExpiredIdle

	// OutcomeFingerprintMismatch means the computed device fingerprint
	// differs from the one captured at creation.
	OutcomeFingerprintMismatch

	// OutcomeAddressMismatch means the source address check failed.
	OutcomeAddressMismatch
)

func (o Outcome) String() string {
	switch o {
	case OutcomeValid:
		return "valid"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeExpiredAbsolute:
		return "expired_absolute"
	case OutcomeExpiredIdle:
		return "expired_idle"
	case OutcomeFingerprintMismatch:
		return "fingerprint_mismatch"
	case OutcomeAddressMismatch:
		return "address_mismatch"
	default:
		return fmt.Sprintf("outcome(%d)", uint8(o))
	}
}

// Validator decides Accept/Reject for a fetched session record against the
// current request context. It is pure: deactivation and audit of rejected
// sessions is the caller's responsibility.
type Validator struct {
	config Config
}

// NewValidator creates a validator with the given configuration
func NewValidator(config Config) *Validator {
	return &Validator{config: config}
}

// Check evaluates the transition rules in order and returns the first
// outcome that applies. All checks fail closed.
func (v *Validator) Check(s *Session, rc RequestContext, now time.Time) Outcome {
	if s == nil || !s.Active {
		return OutcomeInvalid
	}

	if s.ExpiredAbsolute(now, v.config.Lifetime) {
		return OutcomeExpiredAbsolute
	}

	if s.ExpiredIdle(now, v.config.IdleTimeout) {
		return OutcomeExpiredIdle
	}

	if v.config.FingerprintValidation && !s.MatchFingerprint(rc.Fingerprint) {
		return OutcomeFingerprintMismatch
	}

	if !v.matchAddress(s.SourceAddress, rc.SourceAddress) {
		return OutcomeAddressMismatch
	}

	return OutcomeValid
}

// matchAddress compares the stored and current source addresses under the
// configured mode. Unparseable addresses always mismatch.
func (v *Validator) matchAddress(stored, current string) bool {
	switch v.config.AddressValidation {
	case AddressNone:
		return true
	case AddressStrict:
		a, errA := netip.ParseAddr(stored)
		b, errB := netip.ParseAddr(current)
		if errA != nil || errB != nil {
			return false
		}
		return a.Unmap() == b.Unmap()
	case AddressFlexible:
		return sameSubnet(stored, current)
	default:
		return false
	}
}

// sameSubnet reports whether both addresses fall in the same /24 (IPv4) or
// /64 (IPv6) prefix. Mixed families never match; IPv6 is held to a prefix
// check rather than silently permitted.
func sameSubnet(stored, current string) bool {
	a, errA := netip.ParseAddr(stored)
	b, errB := netip.ParseAddr(current)
	if errA != nil || errB != nil {
		return false
	}

	a, b = a.Unmap(), b.Unmap()
	if a.Is4() != b.Is4() {
		return false
	}

	bits := 64
	if a.Is4() {
		bits = 24
	}

	prefixA, errA := a.Prefix(bits)
	prefixB, errB := b.Prefix(bits)
	if errA != nil || errB != nil {
		return false
	}
	return prefixA == prefixB
}
