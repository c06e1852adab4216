package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cols = []string{"id", "email", "name", "phone", "avatar_url", "created_at", "last_active"}

func newRepo(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserRepository(db), mock
}

func TestCreateLowercasesEmail(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("u1", "ann@example.com", "hash", "Ann").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("u1", "ann@example.com", "Ann", "", "", now, now))

	u, err := repo.Create(context.Background(), "u1", "Ann@Example.com", "hash", "Ann")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", u.Email)
	require.NotNil(t, u.LastActive)
}

func TestCreateDuplicateEmail(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery("INSERT INTO users").WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.Create(context.Background(), "u1", "ann@example.com", "hash", "")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestFindByEmailReturnsHash(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("password_hash FROM users WHERE email = $1")).
		WithArgs("ann@example.com").
		WillReturnRows(sqlmock.NewRows(append(cols, "password_hash")).
			AddRow("u1", "ann@example.com", "", "", "", time.Now(), nil, "hash"))

	u, hash, err := repo.FindByEmail(context.Background(), "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hash", hash)
	assert.Nil(t, u.LastActive)
}

func TestFindByEmailUnknown(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery("FROM users").WillReturnRows(sqlmock.NewRows(append(cols, "password_hash")))

	_, _, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProfileOnlySetFields(t *testing.T) {
	repo, mock := newRepo(t)
	phone := "555-0100"
	mock.ExpectQuery(regexp.QuoteMeta("COALESCE($2, phone)")).
		WithArgs(nil, phone, nil, "u1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("u1", "ann@example.com", "Ann", phone, "", time.Now(), nil))

	u, err := repo.UpdateProfile(context.Background(), "u1", nil, &phone, nil)
	require.NoError(t, err)
	assert.Equal(t, phone, u.Phone)
	assert.Equal(t, "Ann", u.Name)
}
