package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// HTTPLookup resolves the session by asking the API who the token belongs
// to. A 401 means there is no session; anything else unexpected is an error.
func HTTPLookup(baseURL, token string, hc *http.Client) func(context.Context) (*User, error) {
	if hc == nil {
		hc = http.DefaultClient
	}
	endpoint := strings.TrimRight(baseURL, "/") + "/api/auth/user"

	return func(ctx context.Context) (*User, error) {
		if token == "" {
			return nil, nil
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := hc.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			return nil, nil
		case resp.StatusCode != http.StatusOK:
			return nil, fmt.Errorf("session lookup: unexpected status %d", resp.StatusCode)
		}

		var u User
		if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
			return nil, fmt.Errorf("session lookup: %w", err)
		}
		return &u, nil
	}
}
