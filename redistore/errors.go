package redistore

import "errors"

var (
	ErrFailedToParseConnString = errors.New("redistore.failed_to_parse_conn_string")
	ErrNotReady                = errors.New("redistore.not_ready")
)
