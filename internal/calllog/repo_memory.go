package calllog

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory append-only repository for tests.
type MemoryRepo struct {
	mu      sync.Mutex
	nextID  int64
	calls   map[string]int64 // sid -> call id
	entries []Entry
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{nextID: 1, calls: make(map[string]int64)}
}

func (r *MemoryRepo) Append(ctx context.Context, sid string, at time.Time, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	callID, ok := r.calls[sid]
	if !ok {
		callID = int64(len(r.calls) + 1)
		r.calls[sid] = callID
	}
	r.entries = append(r.entries, Entry{
		ID:      r.nextID,
		CallID:  callID,
		Time:    at,
		Message: message,
	})
	r.nextID++
	return nil
}

func (r *MemoryRepo) List(ctx context.Context, sid string) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	callID, ok := r.calls[sid]
	if !ok {
		return nil, nil
	}
	var out []Entry
	for _, e := range r.entries {
		if e.CallID == callID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Time.Equal(out[j].Time) {
			return out[i].Time.Before(out[j].Time)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
