package schedule

import (
	"context"
	"time"
)

// Store is the persistence contract for announcement windows.
//
// Upsert is the only write path that performs conflict resolution; its
// four steps (delete contained, truncate left overlaps, truncate right
// overlaps, write the incoming window) are one atomic unit. A partial
// application is a correctness violation, so implementations must roll
// everything back on failure and report ErrConflictWrite.
type Store interface {
	// Upsert writes w, resolving overlaps first. existingID == 0 inserts
	// a new window; otherwise the window with that id is updated in place
	// and excluded from the conflict scan. Returns the alterations made
	// to other windows, sorted by their resulting range.
	Upsert(ctx context.Context, w Window, existingID int64) ([]ConflictAction, error)

	// InsertPlain writes w without any conflict scan. Callers must have
	// pre-cleared the target range via RangeClear; the launch wizard
	// inserts two adjacent windows this way.
	InsertPlain(ctx context.Context, w Window) (int64, error)

	// RangeClear reports whether no persisted window overlaps
	// [lower, upper).
	RangeClear(ctx context.Context, lower, upper time.Time) (bool, error)

	// ActiveAt returns every window whose range contains t. The
	// non-overlap invariant makes more than one a fault; resolving that
	// is the Resolver's job, not the store's.
	ActiveAt(ctx context.Context, t time.Time) ([]Window, error)

	// List returns all windows ordered by range for admin display.
	List(ctx context.Context) ([]Window, error)
}
