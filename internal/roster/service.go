package roster

import (
	"context"
	"errors"
	"math/rand"
	"sort"
)

// Repository is the persistence contract for humans.
//
// ListCallable must return humans with priority > 0 ordered by id
// ascending. The ordering matters: Service.Ordered consumes one random
// draw per human in exactly that sequence, so the permutation for a given
// seed must not depend on storage iteration order.
type Repository interface {
	ListCallable(ctx context.Context) ([]Human, error)
	Get(ctx context.Context, id int64) (Human, error)
}

// ErrNotFound is returned by Get for unknown or deleted humans. Windows
// reference humans softly, so callers treat this as "no forward target".
var ErrNotFound = errors.New("roster: human not found")

// Service produces deterministic escalation orderings.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Ordered returns the callable humans sorted by priority with a
// reproducible random tie-break inside each priority tier.
//
// Each human's priority is perturbed by a uniform(0.1, 0.2) draw from a
// generator seeded with seed. The identical seed over the identical human
// set always yields the identical permutation; escalation state is
// reconstructed from (seed, index) across independent webhook calls, so
// this is load-bearing, not cosmetic.
func (s *Service) Ordered(ctx context.Context, seed int64) ([]Ranked, error) {
	humans, err := s.repo.ListCallable(ctx)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(seed))
	out := make([]Ranked, 0, len(humans))
	for _, h := range humans {
		jitter := 0.1 + rng.Float64()*0.1
		out = append(out, Ranked{
			Score: float64(h.Priority) + jitter,
			Name:  h.Name,
			Phone: h.Phone,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score < out[j].Score })
	return out, nil
}

// Get resolves a human by id for direct-forward windows.
func (s *Service) Get(ctx context.Context, id int64) (Human, error) {
	return s.repo.Get(ctx, id)
}
