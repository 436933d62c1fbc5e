package calllog

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// Repository is the persistence contract for call logs. It is
// append-only; there are no update or delete methods. Append creates the
// call row on first sight of a SID.
type Repository interface {
	Append(ctx context.Context, sid string, at time.Time, message string) error
	List(ctx context.Context, sid string) ([]Entry, error)
}

var ErrInvalidEntry = errors.New("calllog: invalid entry")

// Service writes per-call log lines and renders the end-of-call
// transcript. Every state-machine transition lands here before the state
// changes, so the transcript is the authoritative audit trail of a call.
type Service struct {
	repo  Repository
	log   *slog.Logger
	clock func() time.Time
}

func NewService(repo Repository, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, log: log, clock: time.Now}
}

func (s *Service) Append(ctx context.Context, sid, message string) error {
	if sid == "" || message == "" {
		return ErrInvalidEntry
	}
	s.log.Info("call", "sid", sid, "message", message)
	return s.repo.Append(ctx, sid, s.clock().UTC(), message)
}

// Transcript renders the full ordered log as "HH:MM:SS message" lines for
// the end-of-call notification.
func (s *Service) Transcript(ctx context.Context, sid string) (string, error) {
	entries, err := s.repo.List(ctx, sid)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.Time.Format("15:04:05"))
		b.WriteByte(' ')
		b.WriteString(e.Message)
	}
	return b.String(), nil
}
