package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"notewise/pkg/logger"
)

type contextKey string

const UserIDKey contextKey = "userID"

// TokenVerifier validates a bearer token and returns the user id it was
// issued to.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// TokenFromRequest reads the token from the query string first, because the
// browser's WebSocket API doesn't support custom headers, then from the
// Authorization header.
func TokenFromRequest(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	return strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
}

// UserID returns the authenticated user id stored by Auth.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok && id != ""
}

// WithUserID is used by Auth and by tests that bypass it.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// Auth rejects requests without a valid session. Browser navigations are
// redirected to signInPath with the original path in ?redirect=; API calls
// get 401 with a plain-text reason.
func Auth(verifier TokenVerifier, signInPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := TokenFromRequest(r)
			if tokenString == "" {
				deny(w, r, signInPath, "Unauthorized: No token provided")
				return
			}

			userID, err := verifier.Verify(r.Context(), tokenString)
			if err != nil {
				logger.Sugar.Debugf("Invalid token: %v", err)
				deny(w, r, signInPath, "Unauthorized: Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func deny(w http.ResponseWriter, r *http.Request, signInPath, msg string) {
	if r.Method == http.MethodGet && strings.Contains(r.Header.Get("Accept"), "text/html") {
		target := signInPath + "?redirect=" + url.QueryEscape(r.URL.Path)
		http.Redirect(w, r, target, http.StatusFound)
		return
	}
	http.Error(w, msg, http.StatusUnauthorized)
}
