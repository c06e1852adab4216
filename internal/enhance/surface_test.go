package enhance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingEnhancer holds each call until release is closed.
type blockingEnhancer struct {
	started chan struct{}
	release chan struct{}
	out     string
	err     error
}

func newBlockingEnhancer(out string, err error) *blockingEnhancer {
	return &blockingEnhancer{started: make(chan struct{}, 1), release: make(chan struct{}), out: out, err: err}
}

func (b *blockingEnhancer) Enhance(ctx context.Context, content string, d Directive) (string, error) {
	b.started <- struct{}{}
	<-b.release
	return b.out, b.err
}

func TestSurfaceAppliesResult(t *testing.T) {
	e := newBlockingEnhancer("Lake trip, birds seen.", nil)
	close(e.release)
	s := NewSurface(e, "Went to the lake, saw birds.")

	require.NoError(t, s.Enhance(context.Background(), Concise))
	assert.Equal(t, "Lake trip, birds seen.", s.Content())
	assert.True(t, s.Enabled())
}

func TestSurfaceKeepsContentOnFailure(t *testing.T) {
	e := newBlockingEnhancer("", errors.New("Internal error"))
	close(e.release)
	s := NewSurface(e, "original")

	err := s.Enhance(context.Background(), Grammar)
	assert.EqualError(t, err, "Internal error")
	assert.Equal(t, "original", s.Content())
	assert.True(t, s.Enabled())
}

func TestSurfaceRejectsConcurrentEnhance(t *testing.T) {
	e := newBlockingEnhancer("done", nil)
	s := NewSurface(e, "draft")

	errc := make(chan error, 1)
	go func() { errc <- s.Enhance(context.Background(), Elaborate) }()
	<-e.started

	assert.False(t, s.Enabled(), "control is disabled while pending")
	assert.ErrorIs(t, s.Enhance(context.Background(), Concise), ErrBusy)
	assert.Equal(t, "draft", s.Content())

	close(e.release)
	require.NoError(t, <-errc)
	assert.Equal(t, "done", s.Content())
}

func TestSurfaceDiscardsResultAfterClose(t *testing.T) {
	e := newBlockingEnhancer("late result", nil)
	s := NewSurface(e, "draft")

	errc := make(chan error, 1)
	go func() { errc <- s.Enhance(context.Background(), General) }()
	<-e.started

	s.Close()
	close(e.release)

	assert.ErrorIs(t, <-errc, ErrClosed)
	assert.Equal(t, "draft", s.Content())
	assert.ErrorIs(t, s.Enhance(context.Background(), General), ErrClosed)
}

func TestSurfaceWithClientFailureLeavesContent(t *testing.T) {
	c := NewClient("http://127.0.0.1:0")
	s := NewSurface(c, "")

	assert.ErrorIs(t, s.Enhance(context.Background(), Grammar), ErrEmptyContent)
	assert.Equal(t, "", s.Content())
}

func TestSurfaceKeepsEditMadeWhilePending(t *testing.T) {
	e := newBlockingEnhancer("enhanced draft", nil)
	s := NewSurface(e, "draft")

	errc := make(chan error, 1)
	go func() { errc <- s.Enhance(context.Background(), Professional) }()
	<-e.started

	s.SetContent("draft, plus a new sentence")
	close(e.release)

	assert.ErrorIs(t, <-errc, ErrEdited)
	assert.Equal(t, "draft, plus a new sentence", s.Content())
	assert.True(t, s.Enabled())
}
