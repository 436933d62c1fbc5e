package notify

import (
	"context"
	"sync"
)

// Sink receives the end-of-call summary. Sends are best-effort: a failed
// notification is logged by the caller and never fails the call flow.
type Sink interface {
	Send(ctx context.Context, subject, body string) error
}

// MemorySink records sent notifications for tests.
type MemorySink struct {
	mu   sync.Mutex
	sent []Message
}

type Message struct {
	Subject string
	Body    string
}

func NewMemorySink() *MemorySink { return &MemorySink{} }

func (s *MemorySink) Send(ctx context.Context, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, Message{Subject: subject, Body: body})
	return nil
}

func (s *MemorySink) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}
