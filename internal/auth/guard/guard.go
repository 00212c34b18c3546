// Package guard enforces the one-login-method-per-account rule. It runs
// on every local login, whether the actor arrived via SSO or typed a
// password.
package guard

import (
	"errors"

	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/auth"
)

// ErrMethodMismatch is matched with errors.Is against the localized
// mismatch error returned by Check.
var ErrMethodMismatch = errors.New("login method mismatch")

// MismatchError carries the only user-directed failure message in the
// authentication flow.
type MismatchError struct {
	locale string
}

func (e *MismatchError) Error() string { return e.Message() }

func (e *MismatchError) Is(target error) bool { return target == ErrMethodMismatch }

// Message returns the user-facing text for the request locale.
func (e *MismatchError) Message() string {
	if e.locale == "de" {
		return "Du musst dich mit der gleichen Methode anmelden, mit der du dein Konto erstellt hast."
	}
	return "You must login with the same method you used to create your account."
}

// Check compares the account's stored login method against the one the
// current request declared. An empty request method means a genuine
// password login and defaults to emailAndPassword.
func Check(accountMethod, requestMethod auth.Method, locale string) error {
	if requestMethod == "" {
		requestMethod = auth.MethodEmailAndPassword
	}
	if accountMethod == requestMethod {
		return nil
	}
	return &MismatchError{locale: locale}
}
