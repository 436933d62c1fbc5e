package schedule

import "errors"

var (
	// ErrValidation marks malformed input rejected before any mutation.
	ErrValidation = errors.New("schedule: validation failed")

	// ErrConflictWrite marks a transactional failure during the upsert's
	// conflict-resolution sequence. The whole operation rolled back; none
	// of the reported conflict actions happened. Retryable.
	ErrConflictWrite = errors.New("schedule: conflict write failed")

	// ErrIntegrity marks a broken non-overlap invariant observed at read
	// time (more than one window active for one instant). Fatal; never
	// auto-corrected.
	ErrIntegrity = errors.New("schedule: window overlap integrity fault")

	// ErrNotFound is returned when an update names a missing window id.
	ErrNotFound = errors.New("schedule: window not found")
)
