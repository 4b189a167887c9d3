package apperrors

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")

	// Session registry outcomes returned to callers.
	ErrAlreadyRunning = errors.New("session already running")
	ErrNotRunning     = errors.New("no running session")
	ErrShuttingDown   = errors.New("session registry is shutting down")

	// Infrastructure failures.
	ErrStoreUnavailable    = errors.New("session store unavailable")
	ErrDisplayUnavailable  = errors.New("display unavailable")
	ErrCancellationTimeout = errors.New("timer task did not exit before stop timeout")

	// ErrUnchanged is reported by a display sink when the pushed text is
	// identical to what the target already shows. It is not a failure.
	ErrUnchanged = errors.New("display content unchanged")
)
