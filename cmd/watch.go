package cmd

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os/signal"
	"strings"
	"syscall"

	"notewise/internal/session"
	"notewise/pkg/logger"
	"notewise/socket"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream session and invalidation events",
	RunE: func(cmd *cobra.Command, args []string) error {
		wsURL, err := socketURL(serverURL, token)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
		if err != nil {
			if resp != nil {
				return fmt.Errorf("connect: %s", resp.Status)
			}
			return fmt.Errorf("connect: %w", err)
		}
		defer conn.Close()

		go func() {
			<-ctx.Done()
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			conn.Close()
		}()

		machine := session.NewMachine()
		go machine.Watch(ctx, func(s session.State) {
			fmt.Fprintf(cmd.ErrOrStderr(), "session: %s\n", s.Status)
		})

		out := cmd.OutOrStdout()
		for {
			var ev socket.Event
			if err := conn.ReadJSON(&ev); err != nil {
				if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					return nil
				}
				return fmt.Errorf("read: %w", err)
			}
			if ev.Type == socket.SessionType {
				machine.Apply(sessionEvent(ev))
			}
			fmt.Fprintf(out, "%s %s\n", ev.Type, ev.Payload)
		}
	},
}

// socketURL turns the API base URL into the /ws endpoint with the token in
// the query string.
func socketURL(base, token string) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/") + "/ws")
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func sessionEvent(ev socket.Event) session.Event {
	var p socket.SessionPayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		logger.Sugar.Debugf("Ignoring malformed session payload: %v", err)
		return session.Event{Kind: session.TokenRefreshed}
	}
	if p.State == socket.StateAuthenticated && p.User != nil {
		return session.Event{Kind: session.SignedIn, User: &session.User{ID: p.User.ID, Email: p.User.Email}}
	}
	if p.State == socket.StateUnauthenticated {
		return session.Event{Kind: session.SignedOut}
	}
	return session.Event{Kind: session.TokenRefreshed}
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
