package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"notewise/internal/cache"
	"notewise/internal/note/model"
	"notewise/internal/note/repository"
	"notewise/pkg/logger"
	"notewise/socket"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = repository.ErrNotFound
	ErrValidation = errors.New("invalid note")
)

const cacheTTL = 5 * time.Minute

// Repository is the storage the service needs.
type Repository interface {
	List(ctx context.Context, ownerID string) ([]model.Note, error)
	Recent(ctx context.Context, ownerID string, limit int) ([]model.Note, error)
	Get(ctx context.Context, id, ownerID string) (*model.Note, error)
	Create(ctx context.Context, id, ownerID, title, content string) (*model.Note, error)
	Update(ctx context.Context, id, ownerID string, title, content *string) (*model.Note, error)
	Delete(ctx context.Context, id, ownerID string) error
	Count(ctx context.Context, ownerID string) (int, error)
}

// NoteService reads through the cache and invalidates it, then notifies the
// owner's sockets, only after a mutation is confirmed by the store.
type NoteService struct {
	Repo  Repository
	Cache cache.Cache
	Hub   socket.Publisher
}

func NewNoteService(repo Repository, c cache.Cache, hub socket.Publisher) *NoteService {
	return &NoteService{Repo: repo, Cache: c, Hub: hub}
}

func (s *NoteService) List(ctx context.Context, userID string) ([]model.Note, error) {
	return cache.Fetch(ctx, s.Cache, cache.NotesKey(userID), cacheTTL, func() ([]model.Note, error) {
		return s.Repo.List(ctx, userID)
	})
}

// Recent caches only the limits mutations know to invalidate.
func (s *NoteService) Recent(ctx context.Context, userID string, limit int) ([]model.Note, error) {
	if !cache.TracksRecentLimit(limit) {
		return s.Repo.Recent(ctx, userID, limit)
	}
	return cache.Fetch(ctx, s.Cache, cache.RecentNotesKey(userID, limit), cacheTTL, func() ([]model.Note, error) {
		return s.Repo.Recent(ctx, userID, limit)
	})
}

func (s *NoteService) Get(ctx context.Context, userID, noteID string) (*model.Note, error) {
	return cache.Fetch(ctx, s.Cache, cache.NoteKey(userID, noteID), cacheTTL, func() (*model.Note, error) {
		return s.Repo.Get(ctx, noteID, userID)
	})
}

func (s *NoteService) Count(ctx context.Context, userID string) (int, error) {
	return s.Repo.Count(ctx, userID)
}

func (s *NoteService) Create(ctx context.Context, userID string, req model.CreateNoteRequest) (*model.Note, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}

	n, err := s.Repo.Create(ctx, uuid.NewString(), userID, title, req.Content)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID, cache.NoteListKeys(userID)...)
	return n, nil
}

func (s *NoteService) Update(ctx context.Context, userID, noteID string, req model.UpdateNoteRequest) (*model.Note, error) {
	if req.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", ErrValidation)
	}
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
		}
		req.Title = &trimmed
	}

	n, err := s.Repo.Update(ctx, noteID, userID, req.Title, req.Content)
	if err != nil {
		return nil, err
	}
	keys := append(cache.NoteListKeys(userID), cache.NoteKey(userID, noteID))
	if req.Title != nil {
		// Recent summaries carry the parent note's title.
		keys = append(keys, cache.RecentSummaryKeys(userID)...)
	}
	s.invalidate(ctx, userID, keys...)
	return n, nil
}

// Delete removes the note; its summaries go with it through the foreign key.
func (s *NoteService) Delete(ctx context.Context, userID, noteID string) error {
	if err := s.Repo.Delete(ctx, noteID, userID); err != nil {
		return err
	}
	keys := append(cache.NoteListKeys(userID), cache.NoteKey(userID, noteID))
	keys = append(keys, cache.SummaryListKeys(userID, noteID)...)
	s.invalidate(ctx, userID, keys...)
	return nil
}

func (s *NoteService) invalidate(ctx context.Context, userID string, keys ...string) {
	if err := s.Cache.Delete(ctx, keys...); err != nil {
		logger.Sugar.Warnf("Failed to invalidate %v: %v", keys, err)
	}
	s.Hub.Publish(socket.NewEvent(socket.InvalidateType, userID, socket.InvalidatePayload{Keys: keys}))
}
