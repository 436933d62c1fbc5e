package calllog

import "time"

// Call is one inbound call. The row is created by the first log write for
// its provider SID (first-seen-wins) and is never deleted.
type Call struct {
	ID        int64     `json:"id" db:"id"`
	SID       string    `json:"sid" db:"sid"`
	StartedAt time.Time `json:"started_at" db:"started_at"`
}

// Entry is an immutable, append-only call log record.
//
// Entries are read back ordered by (Time, ID); the id is the insertion-
// order tie-break because several entries can share one timestamp.
type Entry struct {
	ID     int64  `json:"id" db:"id"`
	CallID int64  `json:"call_id" db:"call_id"`

	Time    time.Time `json:"time" db:"time"`
	Message string    `json:"message" db:"message"`
}
