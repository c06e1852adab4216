package enhance

import (
	"context"
	"errors"
	"sync"
)

// Enhancer is what a Surface needs from the client.
type Enhancer interface {
	Enhance(ctx context.Context, content string, d Directive) (string, error)
}

var (
	ErrBusy   = errors.New("an enhancement is already in progress")
	ErrClosed = errors.New("editing surface is closed")
	// ErrEdited means the text changed while the enhancement was pending;
	// the edit is kept and the result dropped.
	ErrEdited = errors.New("content was edited during enhancement")
)

// Surface is one editing area. It keeps the current text until an
// enhancement succeeds and accepts one enhancement at a time.
type Surface struct {
	enhancer Enhancer

	mu      sync.Mutex
	content string
	busy    bool
	closed  bool
}

func NewSurface(e Enhancer, content string) *Surface {
	return &Surface{enhancer: e, content: content}
}

func (s *Surface) Content() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content
}

func (s *Surface) SetContent(content string) {
	s.mu.Lock()
	s.content = content
	s.mu.Unlock()
}

// Enabled reports whether the enhance control accepts input.
func (s *Surface) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.busy && !s.closed
}

// Enhance rewrites the current text. On failure the text is unchanged.
// A result that arrives after Close is discarded.
func (s *Surface) Enhance(ctx context.Context, d Directive) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	s.busy = true
	source := s.content
	s.mu.Unlock()

	out, err := s.enhancer.Enhance(ctx, source, d)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if s.closed {
		return ErrClosed
	}
	if err != nil {
		return err
	}
	if s.content != source {
		return ErrEdited
	}
	s.content = out
	return nil
}

// Close abandons the surface. No cancellation is sent to the gateway.
func (s *Surface) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
