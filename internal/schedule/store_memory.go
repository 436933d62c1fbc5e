package schedule

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used by tests. It applies the same
// conflict plan as the Postgres store, so the upsert semantics can be
// property-tested without a database.
type MemoryStore struct {
	mu      sync.Mutex
	nextID  int64
	windows map[int64]Window
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, windows: make(map[int64]Window)}
}

func (s *MemoryStore) Upsert(ctx context.Context, w Window, existingID int64) ([]ConflictAction, error) {
	if err := w.ValidateRange(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existingID != 0 {
		if _, ok := s.windows[existingID]; !ok {
			return nil, fmt.Errorf("%w: id %d", ErrNotFound, existingID)
		}
	}

	var overlapping []Window
	for id, ex := range s.windows {
		if id == existingID {
			continue
		}
		if ex.Overlaps(w.Lower, w.Upper) {
			overlapping = append(overlapping, ex)
		}
	}
	sort.Slice(overlapping, func(i, j int) bool { return overlapping[i].ID < overlapping[j].ID })

	plan := planConflicts(overlapping, w)
	for _, id := range plan.deleteIDs {
		delete(s.windows, id)
	}
	for _, tr := range plan.truncations {
		s.windows[tr.id] = tr.window
	}

	if existingID == 0 {
		w.ID = s.nextID
		s.nextID++
	} else {
		w.ID = existingID
	}
	s.windows[w.ID] = w

	return plan.actions, nil
}

func (s *MemoryStore) InsertPlain(ctx context.Context, w Window) (int64, error) {
	if err := w.ValidateRange(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w.ID = s.nextID
	s.nextID++
	s.windows[w.ID] = w
	return w.ID, nil
}

func (s *MemoryStore) RangeClear(ctx context.Context, lower, upper time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ex := range s.windows {
		if ex.Overlaps(lower, upper) {
			return false, nil
		}
	}
	return true, nil
}

func (s *MemoryStore) ActiveAt(ctx context.Context, t time.Time) ([]Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Window
	for _, ex := range s.windows {
		if ex.Contains(t) {
			out = append(out, ex)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Window, 0, len(s.windows))
	for _, ex := range s.windows {
		out = append(out, ex)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Lower.Before(out[j].Lower) })
	return out, nil
}
