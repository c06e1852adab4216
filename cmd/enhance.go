package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"notewise/internal/enhance"
	"notewise/internal/gate"
	"notewise/internal/session"
	"notewise/pkg/logger"

	"github.com/spf13/cobra"
)

var enhanceType string

var enhanceCmd = &cobra.Command{
	Use:   "enhance [text]",
	Short: "Rewrite text with the AI enhancement gateway",
	Long: `Rewrite text with one of the enhancement directives: grammar,
elaborate, concise, professional or general. The text is read from the
arguments, or from stdin when none are given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		content := strings.Join(args, " ")
		if content == "" {
			b, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			content = string(b)
		}
		d := enhance.Directive(enhanceType)
		if !d.Valid() {
			return fmt.Errorf("unknown enhancement type %q", enhanceType)
		}

		machine := session.NewMachine()
		state := session.Resolve(cmd.Context(), machine, session.HTTPLookup(serverURL, token, nil))
		logger.Sugar.Debugf("Session resolved: %s", state.Status)

		base := strings.TrimRight(serverURL, "/")
		g := gate.New(machine, base+"/sign-in", base+"/sign-up")

		client := enhance.NewClient(serverURL,
			enhance.WithToken(token),
			enhance.WithPendingHook(func(pending bool) {
				if pending {
					fmt.Fprintf(cmd.ErrOrStderr(), "Enhancing (%s)...\n", d.Label())
				}
			}),
		)
		surface := enhance.NewSurface(client, content)
		defer surface.Close()

		err := g.Run(func() error { return surface.Enhance(cmd.Context(), d) })
		var authErr *gate.AuthRequiredError
		if errors.As(err, &authErr) {
			return fmt.Errorf("%s\n  sign in: %s\n  sign up: %s", authErr.Prompt.Message, authErr.Prompt.SignInURL, authErr.Prompt.SignUpURL)
		}
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), surface.Content())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(enhanceCmd)
	enhanceCmd.Flags().StringVarP(&enhanceType, "type", "t", string(enhance.General), "enhancement type")
}
