package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPLookupResolvesMachine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/user", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer good" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"u1","email":"ann@example.com","name":"Ann"}`))
	}))
	defer srv.Close()

	m := NewMachine()
	s := Resolve(context.Background(), m, HTTPLookup(srv.URL+"/", "good", srv.Client()))
	require.Equal(t, Authenticated, s.Status)
	assert.Equal(t, "u1", s.User.ID)

	m = NewMachine()
	s = Resolve(context.Background(), m, HTTPLookup(srv.URL, "bad", srv.Client()))
	assert.Equal(t, Unauthenticated, s.Status)

	m = NewMachine()
	s = Resolve(context.Background(), m, HTTPLookup(srv.URL, "", srv.Client()))
	assert.Equal(t, Unauthenticated, s.Status)
}

func TestHTTPLookupServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := HTTPLookup(srv.URL, "good", srv.Client())(context.Background())
	assert.Error(t, err)
}
