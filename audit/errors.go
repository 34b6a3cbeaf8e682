package audit

import "errors"

var (
	// ErrEventValidation indicates a recorded event is missing required fields
	ErrEventValidation = errors.New("audit.event_validation")

	// ErrStorageNotAvailable indicates the backing storage has shut down
	ErrStorageNotAvailable = errors.New("audit.storage_not_available")
)
