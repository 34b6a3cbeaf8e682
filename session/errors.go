package session

import "errors"

var (
	// ErrSessionNotFound indicates no matching session record exists
	ErrSessionNotFound = errors.New("session.not_found")

	// ErrSessionInvalid indicates a malformed or inactive session record
	ErrSessionInvalid = errors.New("session.invalid")

	// ErrIDGeneration indicates identifier generation failed
	ErrIDGeneration = errors.New("session.id_generation_failed")

	// ErrRotationConflict indicates a concurrent request already rotated the session
	ErrRotationConflict = errors.New("session.rotation_conflict")

	// ErrConcurrencyLimit indicates the principal reached the active session cap.
	// The login attempt is rejected; another session must be terminated first.
	ErrConcurrencyLimit = errors.New("session.concurrent_limit_reached")

	// ErrNoStore indicates no store is configured
	ErrNoStore = errors.New("session.no_store")

	// ErrNoCookieManager indicates no cookie manager is configured
	ErrNoCookieManager = errors.New("session.no_cookie_manager")
)
