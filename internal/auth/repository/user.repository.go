package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"notewise/internal/auth/model"
	"notewise/pkg/logger"

	"github.com/lib/pq"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

const userColumns = "id, email, COALESCE(name, ''), COALESCE(phone, ''), COALESCE(avatar_url, ''), created_at, last_active"

// uniqueViolation is the PostgreSQL error code for a duplicate key.
const uniqueViolation = "23505"

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(s scanner, extra ...interface{}) (*model.User, error) {
	var u model.User
	var lastActive sql.NullTime
	dest := append([]interface{}{&u.ID, &u.Email, &u.Name, &u.Phone, &u.AvatarURL, &u.CreatedAt, &lastActive}, extra...)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	if lastActive.Valid {
		u.LastActive = &lastActive.Time
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, id, email, passwordHash, name string) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, `
		INSERT INTO users (id, email, password_hash, name, created_at, last_active)
		VALUES ($1, $2, $3, NULLIF($4, ''), NOW(), NOW())
		RETURNING `+userColumns,
		id, strings.ToLower(email), passwordHash, name))
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return nil, ErrEmailTaken
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to create user %s: %v", email, err)
		return nil, err
	}
	return u, nil
}

// FindByEmail returns the user with their password hash.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, string, error) {
	var hash string
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+", password_hash FROM users WHERE email = $1", strings.ToLower(email)), &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to look up user %s: %v", email, err)
		return nil, "", err
	}
	return u, hash, nil
}

func (r *UserRepository) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get user %s: %v", id, err)
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) TouchLastActive(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET last_active = NOW() WHERE id = $1", id)
	if err != nil {
		logger.Sugar.Errorf("Failed to update last_active for user %s: %v", id, err)
	}
	return err
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, name, phone, avatarURL *string) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, `
		UPDATE users SET name = COALESCE($1, name), phone = COALESCE($2, phone), avatar_url = COALESCE($3, avatar_url)
		WHERE id = $4
		RETURNING `+userColumns,
		name, phone, avatarURL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to update profile for user %s: %v", id, err)
		return nil, err
	}
	return u, nil
}
