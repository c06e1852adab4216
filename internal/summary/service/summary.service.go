package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"notewise/internal/cache"
	"notewise/internal/enhance"
	"notewise/internal/llm"
	noteModel "notewise/internal/note/model"
	"notewise/internal/summary/model"
	"notewise/internal/summary/repository"
	"notewise/pkg/logger"
	"notewise/socket"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = repository.ErrNotFound
	ErrValidation  = errors.New("invalid summary request")
	ErrGeneration  = errors.New("summary generation failed")
	ErrPersistence = errors.New("summary could not be saved")
)

const cacheTTL = 5 * time.Minute

type Repository interface {
	Create(ctx context.Context, id, noteID, content string) (*model.Summary, error)
	Latest(ctx context.Context, noteID string) (*model.Summary, error)
	ListByNote(ctx context.Context, noteID string) ([]model.Summary, error)
	Recent(ctx context.Context, ownerID string, limit int) ([]model.Summary, error)
	Count(ctx context.Context, ownerID string) (int, error)
}

// Notes resolves a note for its owner; it reports not found for anyone else.
type Notes interface {
	Get(ctx context.Context, userID, noteID string) (*noteModel.Note, error)
}

type SummaryService struct {
	Repo      Repository
	Notes     Notes
	Generator llm.Generator
	Cache     cache.Cache
	Hub       socket.Publisher
}

func NewSummaryService(repo Repository, notes Notes, gen llm.Generator, c cache.Cache, hub socket.Publisher) *SummaryService {
	return &SummaryService{Repo: repo, Notes: notes, Generator: gen, Cache: c, Hub: hub}
}

// Generate summarizes the user's note and stores the result as the note's
// new current summary. Nothing is written unless generation succeeds.
func (s *SummaryService) Generate(ctx context.Context, userID, noteID string) (*model.Summary, error) {
	if noteID == "" {
		return nil, fmt.Errorf("%w: note_id is required", ErrValidation)
	}
	note, err := s.Notes.Get(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(note.Content) == "" {
		return nil, fmt.Errorf("%w: note has no content to summarize", ErrValidation)
	}

	text, err := s.Generator.Generate(ctx, enhance.BuildSummaryPrompt(note.Content))
	if err != nil {
		logger.Sugar.Errorf("Summary generation failed for note %s: %v", noteID, err)
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	// The caller is gone; don't persist a result nobody asked to keep.
	if err := ctx.Err(); err != nil {
		logger.Sugar.Infof("Discarding summary for note %s: %v", noteID, err)
		return nil, err
	}

	summary, err := s.Repo.Create(ctx, uuid.NewString(), noteID, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	keys := cache.SummaryListKeys(userID, noteID)
	if err := s.Cache.Delete(ctx, keys...); err != nil {
		logger.Sugar.Warnf("Failed to invalidate %v: %v", keys, err)
	}
	s.Hub.Publish(socket.NewEvent(socket.InvalidateType, userID, socket.InvalidatePayload{Keys: keys}))
	s.Hub.Publish(socket.NewEvent(socket.SummaryCreatedType, userID, summary))
	return summary, nil
}

// Current returns the latest summary of the user's note.
func (s *SummaryService) Current(ctx context.Context, userID, noteID string) (*model.Summary, error) {
	if _, err := s.Notes.Get(ctx, userID, noteID); err != nil {
		return nil, err
	}
	return cache.Fetch(ctx, s.Cache, cache.SummaryKey(noteID), cacheTTL, func() (*model.Summary, error) {
		return s.Repo.Latest(ctx, noteID)
	})
}

func (s *SummaryService) History(ctx context.Context, userID, noteID string) ([]model.Summary, error) {
	if _, err := s.Notes.Get(ctx, userID, noteID); err != nil {
		return nil, err
	}
	return s.Repo.ListByNote(ctx, noteID)
}

func (s *SummaryService) Recent(ctx context.Context, userID string, limit int) ([]model.Summary, error) {
	if !cache.TracksRecentLimit(limit) {
		return s.Repo.Recent(ctx, userID, limit)
	}
	return cache.Fetch(ctx, s.Cache, cache.RecentSummariesKey(userID, limit), cacheTTL, func() ([]model.Summary, error) {
		return s.Repo.Recent(ctx, userID, limit)
	})
}

func (s *SummaryService) Count(ctx context.Context, userID string) (int, error) {
	return s.Repo.Count(ctx, userID)
}
