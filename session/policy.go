package session

import "fmt"

// Policy controls what happens when a principal at the active-session cap
// attempts another login. It is a closed set: every consumer dispatches with
// an exhaustive switch so an unhandled value cannot slip through.
type Policy uint8

const (
	// PolicyDeny rejects the login outright; the principal must terminate
	// another session first.
	PolicyDeny Policy = iota

	// PolicyEvictOldest deactivates the oldest active sessions to make room.
	PolicyEvictOldest

	// PolicyUnrestricted never limits concurrent sessions.
	PolicyUnrestricted
)

func (p Policy) String() string {
	switch p {
	case PolicyDeny:
		return "deny"
	case PolicyEvictOldest:
		return "evict_oldest"
	case PolicyUnrestricted:
		return "unrestricted"
	default:
		return fmt.Sprintf("policy(%d)", uint8(p))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler so the policy can be
// parsed from environment configuration.
func (p *Policy) UnmarshalText(text []byte) error {
	switch string(text) {
	case "deny":
		*p = PolicyDeny
	case "evict_oldest":
		*p = PolicyEvictOldest
	case "unrestricted":
		*p = PolicyUnrestricted
	default:
		return fmt.Errorf("unknown concurrency policy %q", text)
	}
	return nil
}

// AddressMode controls how a request's source address is compared against
// the address captured at session creation.
type AddressMode uint8

const (
	// AddressNone skips the address check.
	AddressNone AddressMode = iota

	// AddressFlexible allows movement within the same subnet: /24 for IPv4,
	// /64 for IPv6.
	AddressFlexible

	// AddressStrict requires an exact address match.
	AddressStrict
)

func (m AddressMode) String() string {
	switch m {
	case AddressNone:
		return "none"
	case AddressFlexible:
		return "flexible"
	case AddressStrict:
		return "strict"
	default:
		return fmt.Sprintf("address_mode(%d)", uint8(m))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler so the mode can be
// parsed from environment configuration.
func (m *AddressMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "none":
		*m = AddressNone
	case "flexible":
		*m = AddressFlexible
	case "strict":
		*m = AddressStrict
	default:
		return fmt.Errorf("unknown address validation mode %q", text)
	}
	return nil
}
