package repository

import (
	"context"
	"database/sql"
	"errors"

	"notewise/internal/summary/model"
	"notewise/pkg/logger"
)

var ErrNotFound = errors.New("summary not found")

type SummaryRepository struct {
	DB *sql.DB
}

func NewSummaryRepository(db *sql.DB) *SummaryRepository {
	return &SummaryRepository{DB: db}
}

func (r *SummaryRepository) Create(ctx context.Context, id, noteID, content string) (*model.Summary, error) {
	var s model.Summary
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO summaries (id, note_id, content, created_at)
		VALUES ($1, $2, $3, clock_timestamp())
		RETURNING id, note_id, content, created_at`,
		id, noteID, content).Scan(&s.ID, &s.NoteID, &s.Content, &s.CreatedAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to save summary for note %s: %v", noteID, err)
		return nil, err
	}
	return &s, nil
}

// Latest returns the most recently created summary; older rows are kept as
// history.
func (r *SummaryRepository) Latest(ctx context.Context, noteID string) (*model.Summary, error) {
	var s model.Summary
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, note_id, content, created_at FROM summaries
		WHERE note_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`, noteID).
		Scan(&s.ID, &s.NoteID, &s.Content, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get summary for note %s: %v", noteID, err)
		return nil, err
	}
	return &s, nil
}

func (r *SummaryRepository) ListByNote(ctx context.Context, noteID string) ([]model.Summary, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, note_id, content, created_at FROM summaries
		WHERE note_id = $1 ORDER BY created_at DESC, id DESC`, noteID)
	if err != nil {
		logger.Sugar.Errorf("Failed to list summaries for note %s: %v", noteID, err)
		return nil, err
	}
	defer rows.Close()

	summaries := []model.Summary{}
	for rows.Next() {
		var s model.Summary
		if err := rows.Scan(&s.ID, &s.NoteID, &s.Content, &s.CreatedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Recent lists the owner's newest summaries across all notes, with the
// parent note's title.
func (r *SummaryRepository) Recent(ctx context.Context, ownerID string, limit int) ([]model.Summary, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT s.id, s.note_id, s.content, s.created_at, n.title
		FROM summaries s
		JOIN notes n ON n.id = s.note_id
		WHERE n.user_id = $1
		ORDER BY s.created_at DESC, s.id DESC
		LIMIT $2`, ownerID, limit)
	if err != nil {
		logger.Sugar.Errorf("Failed to list recent summaries for user %s: %v", ownerID, err)
		return nil, err
	}
	defer rows.Close()

	summaries := []model.Summary{}
	for rows.Next() {
		var s model.Summary
		ref := &model.NoteRef{}
		if err := rows.Scan(&s.ID, &s.NoteID, &s.Content, &s.CreatedAt, &ref.Title); err != nil {
			return nil, err
		}
		ref.ID = s.NoteID
		s.Note = ref
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (r *SummaryRepository) Count(ctx context.Context, ownerID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM summaries s JOIN notes n ON n.id = s.note_id
		WHERE n.user_id = $1`, ownerID).Scan(&n)
	if err != nil {
		logger.Sugar.Errorf("Failed to count summaries for user %s: %v", ownerID, err)
	}
	return n, err
}
