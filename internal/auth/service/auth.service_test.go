package service

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"notewise/internal/auth/model"
	"notewise/internal/cache"
	"notewise/socket"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memUser struct {
	user model.User
	hash string
}

type memRepo struct {
	mu      sync.Mutex
	byID    map[string]*memUser
	touched int
}

func newMemRepo() *memRepo { return &memRepo{byID: map[string]*memUser{}} }

func (r *memRepo) Create(_ context.Context, id, email, hash, name string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.user.Email == email {
			return nil, ErrEmailTaken
		}
	}
	u := &memUser{user: model.User{ID: id, Email: email, Name: name, CreatedAt: time.Now()}, hash: hash}
	r.byID[id] = u
	out := u.user
	return &out, nil
}

func (r *memRepo) FindByEmail(_ context.Context, email string) (*model.User, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.user.Email == email {
			out := u.user
			return &out, u.hash, nil
		}
	}
	return nil, "", ErrNotFound
}

func (r *memRepo) Get(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := u.user
	return &out, nil
}

func (r *memRepo) TouchLastActive(_ context.Context, id string) error {
	r.mu.Lock()
	r.touched++
	r.mu.Unlock()
	return nil
}

func (r *memRepo) UpdateProfile(_ context.Context, id string, name, phone, avatarURL *string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if name != nil {
		u.user.Name = *name
	}
	if phone != nil {
		u.user.Phone = *phone
	}
	if avatarURL != nil {
		u.user.AvatarURL = *avatarURL
	}
	out := u.user
	return &out, nil
}

type recordingHub struct {
	mu     sync.Mutex
	events []socket.Event
}

func (h *recordingHub) Publish(ev socket.Event) {
	h.mu.Lock()
	h.events = append(h.events, ev)
	h.mu.Unlock()
}

func newService() (*AuthService, *memRepo, *recordingHub) {
	repo, hub := newMemRepo(), &recordingHub{}
	svc := NewAuthService(repo, NewTokens("test-secret", time.Hour), cache.NewMemory(), hub)
	svc.HashCost = bcrypt.MinCost
	svc.OAuthAuthorizeURL = "https://auth.example.com/authorize"
	svc.SiteURL = "http://localhost:3000"
	return svc, repo, hub
}

func TestSignUpThenSignIn(t *testing.T) {
	svc, repo, hub := newService()
	ctx := context.Background()

	up, err := svc.SignUp(ctx, model.SignUpRequest{Email: "ann@example.com", Password: "hunter22", Name: "Ann"})
	require.NoError(t, err)
	assert.NotEmpty(t, up.Token)
	assert.Equal(t, "Ann", up.User.Name)

	in, err := svc.SignIn(ctx, model.SignInRequest{Email: "ann@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, up.User.ID, in.User.ID)
	assert.NotNil(t, in.User.LastActive)
	assert.Equal(t, 1, repo.touched)

	userID, err := svc.Verify(ctx, in.Token)
	require.NoError(t, err)
	assert.Equal(t, up.User.ID, userID)

	require.Len(t, hub.events, 2)
	assert.Equal(t, socket.SessionType, hub.events[1].Type)
}

func TestSignUpValidation(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	_, err := svc.SignUp(ctx, model.SignUpRequest{Email: "not-an-email", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.SignUp(ctx, model.SignUpRequest{Email: "ann@example.com", Password: "123"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSignUpDuplicate(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()
	req := model.SignUpRequest{Email: "ann@example.com", Password: "hunter22"}

	_, err := svc.SignUp(ctx, req)
	require.NoError(t, err)
	_, err = svc.SignUp(ctx, req)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignInWrongPasswordOrUnknownUser(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()
	_, err := svc.SignUp(ctx, model.SignUpRequest{Email: "ann@example.com", Password: "hunter22"})
	require.NoError(t, err)

	_, err = svc.SignIn(ctx, model.SignInRequest{Email: "ann@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.SignIn(ctx, model.SignInRequest{Email: "bob@example.com", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignOutRevokesToken(t *testing.T) {
	svc, _, hub := newService()
	ctx := context.Background()

	sess, err := svc.SignUp(ctx, model.SignUpRequest{Email: "ann@example.com", Password: "hunter22"})
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(ctx, sess.Token))

	_, err = svc.Verify(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrRevoked)

	last := hub.events[len(hub.events)-1]
	assert.Equal(t, socket.SessionType, last.Type)
	assert.Contains(t, string(last.Payload), socket.StateUnauthenticated)

	// A fresh sign-in gets a new jti and is unaffected.
	again, err := svc.SignIn(ctx, model.SignInRequest{Email: "ann@example.com", Password: "hunter22"})
	require.NoError(t, err)
	_, err = svc.Verify(ctx, again.Token)
	assert.NoError(t, err)
}

func TestVerifyRejectsForeignAndExpiredTokens(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	other := NewTokens("another-secret", time.Hour)
	forged, _, err := other.Issue("u1")
	require.NoError(t, err)
	_, err = svc.Verify(ctx, forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokens("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Issue("u1")
	require.NoError(t, err)
	_, err = svc.Verify(ctx, old)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsNonHMAC(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		ID: "j1", Subject: "u1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tokens.Parse(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()
	sess, err := svc.SignUp(ctx, model.SignUpRequest{Email: "ann@example.com", Password: "hunter22", Name: "Ann"})
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, sess.User.ID, model.UpdateProfileRequest{})
	assert.ErrorIs(t, err, ErrValidation)

	phone := "555-0100"
	u, err := svc.UpdateProfile(ctx, sess.User.ID, model.UpdateProfileRequest{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, phone, u.Phone)
	assert.Equal(t, "Ann", u.Name)
}

func TestOAuthURL(t *testing.T) {
	svc, _, _ := newService()

	raw, err := svc.OAuthURL("google", "")
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "auth.example.com", u.Host)
	assert.Equal(t, "google", u.Query().Get("provider"))
	assert.Equal(t, "http://localhost:3000", u.Query().Get("redirect_to"))

	_, err = svc.OAuthURL("myspace", "")
	assert.ErrorIs(t, err, ErrValidation)
}
