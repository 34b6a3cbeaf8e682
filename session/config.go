package session

import "time"

// Config holds all externally supplied session-hardening parameters. No
// hidden defaults are baked into component logic; everything flows from here.
type Config struct {
	// CookieName is the name of the session pointer cookie
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"sid"`

	// Lifetime is the maximum session age regardless of activity
	Lifetime time.Duration `env:"SESSION_LIFETIME" envDefault:"720h"`

	// IdleTimeout is the maximum allowed gap between consecutive activities
	IdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"2h"`

	// RotationInterval bounds how long a single identifier stays in use
	// (0 disables rotation)
	RotationInterval time.Duration `env:"SESSION_ROTATION_INTERVAL" envDefault:"30m"`

	// MaxSessionsPerPrincipal caps simultaneously active sessions per principal
	MaxSessionsPerPrincipal int `env:"SESSION_MAX_PER_PRINCIPAL" envDefault:"5"`

	// ConcurrencyPolicy decides behavior at the cap: deny, evict_oldest, unrestricted
	ConcurrencyPolicy Policy `env:"SESSION_CONCURRENCY_POLICY" envDefault:"deny"`

	// AddressValidation selects the source address check: none, flexible, strict
	AddressValidation AddressMode `env:"SESSION_ADDRESS_VALIDATION" envDefault:"none"`

	// FingerprintValidation enables the device fingerprint check
	FingerprintValidation bool `env:"SESSION_FINGERPRINT_VALIDATION" envDefault:"true"`

	// Retention is how long inactive records are kept before the reaper purges them
	Retention time.Duration `env:"SESSION_RETENTION" envDefault:"720h"`

	// ReaperInterval is the period between background sweeps (0 to disable)
	ReaperInterval time.Duration `env:"SESSION_REAPER_INTERVAL" envDefault:"1h"`

	// SecureCookies enables the Secure flag on session cookies (recommended for production)
	SecureCookies bool `env:"SESSION_SECURE_COOKIES" envDefault:"false"`
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		CookieName:              "sid",
		Lifetime:                30 * 24 * time.Hour,
		IdleTimeout:             2 * time.Hour,
		RotationInterval:        30 * time.Minute,
		MaxSessionsPerPrincipal: 5,
		ConcurrencyPolicy:       PolicyDeny,
		AddressValidation:       AddressNone,
		FingerprintValidation:   true,
		Retention:               30 * 24 * time.Hour,
		ReaperInterval:          time.Hour,
		SecureCookies:           false,
	}
}
