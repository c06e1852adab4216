package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"notewise/internal/auth/model"

	"github.com/spf13/cobra"
)

var (
	email    string
	password string
)

var signInCmd = &cobra.Command{
	Use:   "sign-in",
	Short: "Sign in and print a session token",
	Long: `Sign in with email and password. The token is printed so it can be
exported as NOTEWISE_TOKEN for the other client commands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := json.Marshal(model.SignInRequest{Email: email, Password: password})
		if err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost,
			strings.TrimRight(serverURL, "/")+"/api/auth/sign-in", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return fmt.Errorf("sign in: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			msg, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("sign in failed: %s", strings.TrimSpace(string(msg)))
		}

		var sess model.SessionResponse
		if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
			return fmt.Errorf("decode session: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Signed in as %s (expires %s)\n", sess.User.Email, sess.ExpiresAt.Format("2006-01-02 15:04"))
		fmt.Fprintln(cmd.OutOrStdout(), sess.Token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(signInCmd)
	signInCmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	signInCmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	signInCmd.MarkFlagRequired("email")
	signInCmd.MarkFlagRequired("password")
}
