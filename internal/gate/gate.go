// Package gate decides whether a protected action may run given the
// current session. It fails open while the session is still resolving so
// the normal control is shown instead of a flash of the sign-in prompt.
package gate

import (
	"errors"

	"notewise/internal/session"
)

type Decision int

const (
	// Render shows the wrapped control and lets the action run.
	Render Decision = iota
	// PromptAuth replaces the action with a sign-in / sign-up choice.
	PromptAuth
)

func (d Decision) String() string {
	if d == PromptAuth {
		return "prompt-auth"
	}
	return "render"
}

// Decide is the whole policy.
func Decide(s session.State) Decision {
	if s.Status == session.Unauthenticated {
		return PromptAuth
	}
	return Render
}

// StateSource is satisfied by *session.Machine.
type StateSource interface {
	State() session.State
}

// Prompt is what the caller shows instead of running the action.
type Prompt struct {
	Title     string
	Message   string
	SignInURL string
	SignUpURL string
}

// AuthRequiredError carries the prompt for the blocked action.
type AuthRequiredError struct {
	Prompt Prompt
}

func (e *AuthRequiredError) Error() string { return e.Prompt.Message }

func (e *AuthRequiredError) Is(target error) bool { return target == ErrAuthRequired }

var ErrAuthRequired = errors.New("authentication required")

// Gate guards actions with a fixed prompt.
type Gate struct {
	Source StateSource
	Prompt Prompt
}

func New(source StateSource, signInURL, signUpURL string) *Gate {
	return &Gate{
		Source: source,
		Prompt: Prompt{
			Title:     "Authentication Required",
			Message:   "Please sign in or create an account to continue.",
			SignInURL: signInURL,
			SignUpURL: signUpURL,
		},
	}
}

// Decision reports what the wrapped control should do right now.
func (g *Gate) Decision() Decision {
	return Decide(g.Source.State())
}

// Run executes action unless the session is known to be unauthenticated,
// in which case it returns an *AuthRequiredError without running it.
func (g *Gate) Run(action func() error) error {
	if g.Decision() == PromptAuth {
		return &AuthRequiredError{Prompt: g.Prompt}
	}
	return action()
}
