package app

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	apperrors "readtrack/internal/platform/errors"
)

// Sender is the part of *tea.Program the sink needs.
type Sender interface {
	Send(msg tea.Msg)
}

// DisplayMsg carries a timer update into the program. Empty Text clears the
// target.
type DisplayMsg struct {
	Target string
	Text   string
}

// Sink adapts a running bubbletea program to the session display ports.
// Bind must be called before the first Push.
type Sink struct {
	mu     sync.Mutex
	sender Sender
	last   map[string]string
	closed bool
}

func NewSink() *Sink {
	return &Sink{last: map[string]string{}}
}

func (s *Sink) Bind(sender Sender) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sender = sender
}

// Close marks the program as gone. Later pushes fail with
// ErrDisplayUnavailable.
func (s *Sink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *Sink) Push(ctx context.Context, target, text string) error {
	s.mu.Lock()
	if s.closed || s.sender == nil {
		s.mu.Unlock()
		return apperrors.ErrDisplayUnavailable
	}
	if prev, ok := s.last[target]; ok && prev == text {
		s.mu.Unlock()
		return apperrors.ErrUnchanged
	}
	s.last[target] = text
	sender := s.sender
	s.mu.Unlock()
	return deliver(ctx, sender, DisplayMsg{Target: target, Text: text})
}

func (s *Sink) Clear(ctx context.Context, target string) error {
	s.mu.Lock()
	if _, ok := s.last[target]; !ok {
		s.mu.Unlock()
		return apperrors.ErrUnchanged
	}
	delete(s.last, target)
	sender, closed := s.sender, s.closed
	s.mu.Unlock()
	if closed {
		return apperrors.ErrDisplayUnavailable
	}
	return deliver(ctx, sender, DisplayMsg{Target: target})
}

// deliver hands msg to the program without outliving ctx. Send blocks until
// the event loop reads the message or the program exits.
func deliver(ctx context.Context, sender Sender, msg DisplayMsg) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		sender.Send(msg)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
