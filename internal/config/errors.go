package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	ErrInvalidPace        = errors.New("invalid analysis pace: must be non-negative")
	ErrInvalidSessionMax  = errors.New("invalid session limit: must be positive")
	ErrInvalidSessionTTL  = errors.New("invalid session ttl: must be positive")
	ErrInvalidUploadLimit = errors.New("invalid upload limit: must be positive")
)
