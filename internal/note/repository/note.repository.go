package repository

import (
	"context"
	"database/sql"
	"errors"

	"notewise/internal/note/model"
	"notewise/pkg/logger"
)

// ErrNotFound covers both missing rows and rows owned by someone else.
var ErrNotFound = errors.New("note not found")

const noteColumns = "id, user_id, title, content, created_at, updated_at"

type NoteRepository struct {
	DB *sql.DB
}

func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{DB: db}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanNote(s scanner) (*model.Note, error) {
	var n model.Note
	if err := s.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NoteRepository) List(ctx context.Context, ownerID string) ([]model.Note, error) {
	return r.query(ctx, "SELECT "+noteColumns+" FROM notes WHERE user_id = $1 ORDER BY updated_at DESC", ownerID)
}

func (r *NoteRepository) Recent(ctx context.Context, ownerID string, limit int) ([]model.Note, error) {
	return r.query(ctx, "SELECT "+noteColumns+" FROM notes WHERE user_id = $1 ORDER BY updated_at DESC LIMIT $2", ownerID, limit)
}

func (r *NoteRepository) query(ctx context.Context, q string, args ...interface{}) ([]model.Note, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		logger.Sugar.Errorf("Failed to list notes for user %v: %v", args[0], err)
		return nil, err
	}
	defer rows.Close()

	notes := []model.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			logger.Sugar.Errorf("Failed to scan note row: %v", err)
			return nil, err
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

func (r *NoteRepository) Get(ctx context.Context, id, ownerID string) (*model.Note, error) {
	n, err := scanNote(r.DB.QueryRowContext(ctx,
		"SELECT "+noteColumns+" FROM notes WHERE id = $1 AND user_id = $2", id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get note %s: %v", id, err)
		return nil, err
	}
	return n, nil
}

func (r *NoteRepository) Create(ctx context.Context, id, ownerID, title, content string) (*model.Note, error) {
	n, err := scanNote(r.DB.QueryRowContext(ctx, `
		INSERT INTO notes (id, user_id, title, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING `+noteColumns,
		id, ownerID, title, content))
	if err != nil {
		logger.Sugar.Errorf("Failed to create note for user %s: %v", ownerID, err)
		return nil, err
	}
	return n, nil
}

// Update changes only the non-nil fields, and only on the owner's row.
func (r *NoteRepository) Update(ctx context.Context, id, ownerID string, title, content *string) (*model.Note, error) {
	n, err := scanNote(r.DB.QueryRowContext(ctx, `
		UPDATE notes SET title = COALESCE($1, title), content = COALESCE($2, content), updated_at = NOW()
		WHERE id = $3 AND user_id = $4
		RETURNING `+noteColumns,
		title, content, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to update note %s: %v", id, err)
		return nil, err
	}
	return n, nil
}

func (r *NoteRepository) Delete(ctx context.Context, id, ownerID string) error {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM notes WHERE id = $1 AND user_id = $2", id, ownerID)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete note %s: %v", id, err)
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *NoteRepository) Count(ctx context.Context, ownerID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM notes WHERE user_id = $1", ownerID).Scan(&n)
	if err != nil {
		logger.Sugar.Errorf("Failed to count notes for user %s: %v", ownerID, err)
	}
	return n, err
}
