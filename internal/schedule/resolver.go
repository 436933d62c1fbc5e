package schedule

import (
	"context"
	"fmt"
	"time"
)

// Resolver answers "which announcement is active right now".
//
// The store's non-overlap invariant guarantees at most one match. Seeing
// more than one means an earlier write already broke the invariant, so
// the fault is surfaced instead of picking a winner.
type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// ActiveAt returns the window containing t, or nil when nothing is
// scheduled.
func (r *Resolver) ActiveAt(ctx context.Context, t time.Time) (*Window, error) {
	matches, err := r.store.ActiveAt(ctx, t)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		w := matches[0]
		return &w, nil
	default:
		return nil, fmt.Errorf("%w: %d windows active at %s",
			ErrIntegrity, len(matches), t.Format(time.RFC3339))
	}
}
