// Package dashboard serves the per-user activity counters.
package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	authModel "notewise/internal/auth/model"
	"notewise/internal/cache"
	"notewise/middleware"
	"notewise/pkg/logger"
)

const statsTTL = time.Minute

type Stats struct {
	TotalNotes     int        `json:"total_notes"`
	TotalSummaries int        `json:"total_summaries"`
	LastActive     *time.Time `json:"last_active"`
}

type Counter interface {
	Count(ctx context.Context, userID string) (int, error)
}

type Users interface {
	Get(ctx context.Context, id string) (*authModel.User, error)
}

type Handler struct {
	Notes     Counter
	Summaries Counter
	Users     Users
	Cache     cache.Cache
}

func NewHandler(notes, summaries Counter, users Users, c cache.Cache) *Handler {
	return &Handler{Notes: notes, Summaries: summaries, Users: users, Cache: c}
}

// Stats is cached under the user's stats key, which note, summary and
// profile mutations delete.
func (h *Handler) Stats(ctx context.Context, userID string) (*Stats, error) {
	return cache.Fetch(ctx, h.Cache, cache.StatsKey(userID), statsTTL, func() (*Stats, error) {
		notes, err := h.Notes.Count(ctx, userID)
		if err != nil {
			return nil, err
		}
		summaries, err := h.Summaries.Count(ctx, userID)
		if err != nil {
			return nil, err
		}
		u, err := h.Users.Get(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &Stats{TotalNotes: notes, TotalSummaries: summaries, LastActive: u.LastActive}, nil
	})
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, _ := middleware.UserID(r.Context())

	stats, err := h.Stats(r.Context(), userID)
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to load stats for %s: %v", userID, err)
		http.Error(w, "Failed to load stats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
