package roster

// Human is a callable escalation target.
//
// Priority 0 disables the human entirely; among the rest, a lower value
// is called earlier. Equal priorities form a tier whose internal order is
// decided by the seeded tie-break in Service.Ordered.
type Human struct {
	ID       int64  `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Phone    string `json:"phone" db:"phone"`
	Priority int    `json:"priority" db:"priority"`
}

// Ranked is one entry of a seed-derived escalation ordering. Score is the
// priority perturbed by the seeded draw, kept so call logs can show the
// effective ordering key.
type Ranked struct {
	Score float64 `json:"score"`
	Name  string  `json:"name"`
	Phone string  `json:"phone"`
}
