package roster

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory Repository for tests.
type MemoryRepo struct {
	mu     sync.Mutex
	humans map[int64]Human
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{humans: make(map[int64]Human)}
}

func (r *MemoryRepo) Put(h Human) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.humans[h.ID] = h
}

func (r *MemoryRepo) Remove(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.humans, id)
}

func (r *MemoryRepo) ListCallable(ctx context.Context) ([]Human, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Human
	for _, h := range r.humans {
		if h.Priority > 0 {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepo) Get(ctx context.Context, id int64) (Human, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.humans[id]
	if !ok {
		return Human{}, ErrNotFound
	}
	return h, nil
}
