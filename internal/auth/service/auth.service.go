package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"notewise/internal/auth/model"
	"notewise/internal/auth/repository"
	"notewise/internal/cache"
	"notewise/pkg/logger"
	"notewise/socket"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound           = repository.ErrNotFound
	ErrEmailTaken         = repository.ErrEmailTaken
	ErrValidation         = errors.New("invalid request")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrRevoked            = errors.New("token has been revoked")
)

const minPasswordLength = 6

// OAuthProviders are the identity providers sign-in can hand off to.
var OAuthProviders = map[string]bool{"google": true, "github": true}

type Repository interface {
	Create(ctx context.Context, id, email, passwordHash, name string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, string, error)
	Get(ctx context.Context, id string) (*model.User, error)
	TouchLastActive(ctx context.Context, id string) error
	UpdateProfile(ctx context.Context, id string, name, phone, avatarURL *string) (*model.User, error)
}

type AuthService struct {
	Repo   Repository
	Tokens *Tokens
	Cache  cache.Cache
	Hub    socket.Publisher

	// OAuthAuthorizeURL is the provider hand-off endpoint; SiteURL is where
	// users land afterwards when no redirect is given.
	OAuthAuthorizeURL string
	SiteURL           string

	HashCost int
}

func NewAuthService(repo Repository, tokens *Tokens, c cache.Cache, hub socket.Publisher) *AuthService {
	return &AuthService{Repo: repo, Tokens: tokens, Cache: c, Hub: hub, HashCost: bcrypt.DefaultCost}
}

func (s *AuthService) SignUp(ctx context.Context, req model.SignUpRequest) (*model.SessionResponse, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil {
		return nil, fmt.Errorf("%w: a valid email is required", ErrValidation)
	}
	email := addr.Address
	if len(req.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}

	hash, err := hashPassword(req.Password, s.HashCost)
	if err != nil {
		return nil, err
	}
	u, err := s.Repo.Create(ctx, uuid.NewString(), email, hash, strings.TrimSpace(req.Name))
	if err != nil {
		return nil, err
	}
	return s.startSession(u)
}

func (s *AuthService) SignIn(ctx context.Context, req model.SignInRequest) (*model.SessionResponse, error) {
	u, hash, err := s.Repo.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !verifyPassword(req.Password, hash) {
		return nil, ErrInvalidCredentials
	}

	if err := s.Repo.TouchLastActive(ctx, u.ID); err == nil {
		now := time.Now()
		u.LastActive = &now
	}
	return s.startSession(u)
}

func (s *AuthService) startSession(u *model.User) (*model.SessionResponse, error) {
	token, claims, err := s.Tokens.Issue(u.ID)
	if err != nil {
		return nil, err
	}
	s.Hub.Publish(socket.NewEvent(socket.SessionType, u.ID, socket.SessionPayload{
		State: socket.StateAuthenticated,
		User:  &socket.SessionUser{ID: u.ID, Email: u.Email},
	}))
	return &model.SessionResponse{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: u}, nil
}

// SignOut revokes the token until it would have expired anyway and tells
// the user's other connections.
func (s *AuthService) SignOut(ctx context.Context, tokenString string) error {
	claims, err := s.Tokens.Parse(tokenString)
	if err != nil {
		return err
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl > 0 {
		if err := s.Cache.Set(ctx, cache.RevokedTokenKey(claims.ID), []byte(claims.Subject), ttl); err != nil {
			return fmt.Errorf("revoke token: %w", err)
		}
	}
	s.Hub.Publish(socket.NewEvent(socket.SessionType, claims.Subject, socket.SessionPayload{
		State: socket.StateUnauthenticated,
	}))
	return nil
}

// Verify implements middleware.TokenVerifier.
func (s *AuthService) Verify(ctx context.Context, tokenString string) (string, error) {
	claims, err := s.Tokens.Parse(tokenString)
	if err != nil {
		return "", err
	}
	_, err = s.Cache.Get(ctx, cache.RevokedTokenKey(claims.ID))
	switch {
	case err == nil:
		return "", ErrRevoked
	case !errors.Is(err, cache.ErrMiss):
		// Fail closed when the revocation list can't be read.
		logger.Sugar.Errorf("Failed to check revocation for token %s: %v", claims.ID, err)
		return "", err
	}
	return claims.Subject, nil
}

// CurrentUser returns the profile and records the activity.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.Repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.TouchLastActive(ctx, userID); err == nil {
		now := time.Now()
		u.LastActive = &now
	}
	return u, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, req model.UpdateProfileRequest) (*model.User, error) {
	if req.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", ErrValidation)
	}
	u, err := s.Repo.UpdateProfile(ctx, userID, req.Name, req.Phone, req.AvatarURL)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.Delete(ctx, cache.StatsKey(userID)); err != nil {
		logger.Sugar.Warnf("Failed to invalidate stats for %s: %v", userID, err)
	}
	return u, nil
}

// OAuthURL builds the provider hand-off URL. The code exchange happens at
// the provider's callback, outside this service.
func (s *AuthService) OAuthURL(provider, redirectTo string) (string, error) {
	if !OAuthProviders[provider] {
		return "", fmt.Errorf("%w: unsupported provider %q", ErrValidation, provider)
	}
	if s.OAuthAuthorizeURL == "" {
		return "", fmt.Errorf("%w: oauth is not configured", ErrValidation)
	}
	u, err := url.Parse(s.OAuthAuthorizeURL)
	if err != nil {
		return "", fmt.Errorf("parse authorize url: %w", err)
	}
	if redirectTo == "" {
		redirectTo = s.SiteURL
	}
	q := u.Query()
	q.Set("provider", provider)
	q.Set("redirect_to", redirectTo)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// bcrypt ignores everything past 72 bytes.
func hashPassword(password string, cost int) (string, error) {
	if len(password) > 72 {
		password = password[:72]
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func verifyPassword(password, hash string) bool {
	if len(password) > 72 {
		password = password[:72]
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
