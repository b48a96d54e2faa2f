package analysis

import "errors"

var (
	// ErrInvalidImage is returned by intake when the upload is not an image
	// or cannot be decoded. The session is left untouched.
	ErrInvalidImage = errors.New("invalid image")

	// ErrAlreadyRunning is returned when an analysis is started while one is in flight.
	ErrAlreadyRunning = errors.New("analysis already running")

	// ErrNoImage is returned when an analysis is started before any image was selected.
	ErrNoImage = errors.New("no image selected")

	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("session not found")

	// ErrNoDiagnosis is returned when a result is requested before the analysis completed.
	ErrNoDiagnosis = errors.New("analysis not complete")

	// errStaleCallback marks a scheduled step that fired after its session moved on.
	errStaleCallback = errors.New("stale analysis step")
)
