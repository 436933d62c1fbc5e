package schedule

import (
	"context"
	"errors"
	"testing"
)

func TestResolverNoActiveWindow(t *testing.T) {
	r := NewResolver(NewMemoryStore())

	w, err := r.ActiveAt(context.Background(), at(10))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if w != nil {
		t.Fatalf("expected no active window, got %+v", w)
	}
}

func TestResolverSingleActiveWindow(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	if _, err := s.Upsert(ctx, window("w", 8, 12), 0); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	r := NewResolver(s)
	w, err := r.ActiveAt(ctx, at(10))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if w == nil || w.ShortName != "w" {
		t.Fatalf("expected window w, got %+v", w)
	}

	// Upper bound is exclusive.
	w, err = r.ActiveAt(ctx, at(12))
	if err != nil || w != nil {
		t.Fatalf("expected nothing active at upper bound, got %+v %v", w, err)
	}
}

func TestResolverIntegrityFault(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	// InsertPlain skips the conflict scan, so a broken invariant can be
	// staged directly.
	if _, err := s.InsertPlain(ctx, window("a", 8, 12)); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := s.InsertPlain(ctx, window("b", 10, 14)); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	r := NewResolver(s)
	_, err := r.ActiveAt(ctx, at(11))
	if !errors.Is(err, ErrIntegrity) {
		t.Fatalf("expected integrity fault, got %v", err)
	}
}
