package pgstore

import "errors"

var (
	ErrFailedToParseConfig = errors.New("pgstore.failed_to_parse_config")
	ErrFailedToConnect     = errors.New("pgstore.failed_to_connect")
)
