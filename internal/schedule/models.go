package schedule

import (
	"fmt"
	"time"
)

// Window is a scheduled announcement with a half-open active range
// [Lower, Upper).
//
// Invariants:
// - Lower < Upper (rejected at write time otherwise).
// - Across all persisted windows, ranges are pairwise non-overlapping.
//   Store.Upsert preserves this under every write.
// - Exactly one of CallText / ForwardTo is set. The admin layer enforces
//   this before writing; the store does not.
//
// ForwardTo is a soft reference into the humans table. A deleted human
// leaves the window intact; the dangling id resolves to "no forward" at
// read time.
type Window struct {
	ID        int64  `json:"id" db:"id"`
	ShortName string `json:"short_name" db:"short_name"`

	Lower time.Time `json:"lower" db:"lower"`
	Upper time.Time `json:"upper" db:"upper"`

	// WebShortText and WebLongText are the non-voice display variants.
	WebShortText string `json:"web_short_text" db:"web_short_text"`
	WebLongText  string `json:"web_long_text" db:"web_long_text"`

	// CallText is the spoken announcement; empty when ForwardTo is set.
	CallText string `json:"call_text,omitempty" db:"call_text"`

	// ForwardTo references a human to connect immediately; 0 means unset.
	ForwardTo int64 `json:"forward_to,omitempty" db:"forward_to"`
}

// Contains reports whether t falls inside the half-open range.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Lower) && t.Before(w.Upper)
}

// Overlaps reports whether the half-open ranges intersect.
func (w Window) Overlaps(lower, upper time.Time) bool {
	return w.Lower.Before(upper) && lower.Before(w.Upper)
}

// ContainedIn reports whether w's range lies entirely inside [lower, upper).
func (w Window) ContainedIn(lower, upper time.Time) bool {
	return !w.Lower.Before(lower) && !w.Upper.After(upper)
}

// ValidateRange rejects empty or inverted ranges before any mutation.
func (w Window) ValidateRange() error {
	if !w.Lower.Before(w.Upper) {
		return fmt.Errorf("%w: window range must satisfy lower < upper (got [%s, %s))",
			ErrValidation, w.Lower.Format(time.RFC3339), w.Upper.Format(time.RFC3339))
	}
	return nil
}

// ValidateBody checks the exactly-one-of CallText/ForwardTo invariant.
// Kept separate from ValidateRange because the store only owns the range
// invariant; callers own this one.
func (w Window) ValidateBody() error {
	hasText := w.CallText != ""
	hasForward := w.ForwardTo != 0
	if hasText == hasForward {
		return fmt.Errorf("%w: exactly one of call_text and forward_to must be set", ErrValidation)
	}
	return nil
}

// ConflictKind describes how an existing window was altered to keep the
// set non-overlapping during an upsert.
type ConflictKind string

const (
	ConflictDeleted    ConflictKind = "deleted"
	ConflictEndEarlier ConflictKind = "end_earlier"
	ConflictStartLater ConflictKind = "start_later"
)

// ConflictAction records one alteration made to an existing window.
type ConflictAction struct {
	Kind ConflictKind `json:"kind"`
	Name string       `json:"name"`

	// NewUpper is set for end_earlier, NewLower for start_later.
	NewLower *time.Time `json:"new_lower,omitempty"`
	NewUpper *time.Time `json:"new_upper,omitempty"`
}
