package auth

import (
	"github.com/gatlingbook/gatlingbook/internal"
)

// RequireUser redirects anonymous requests to location.
func RequireUser(location string) internal.HandlerFunc {
	return func(c internal.Context) (internal.Outcome, error) {
		u, err := GetAuthenticatedUser(c)
		if err != nil {
			return internal.Outcome{}, err
		}
		if u == nil {
			return internal.Redirect(location), nil
		}
		return internal.Continue(), nil
	}
}

// RedirectIfAuthenticated sends logged-in users to location, keeping them
// away from the login and registration forms.
func RedirectIfAuthenticated(location string) internal.HandlerFunc {
	return func(c internal.Context) (internal.Outcome, error) {
		u, err := GetAuthenticatedUser(c)
		if err != nil {
			return internal.Outcome{}, err
		}
		if u != nil {
			return internal.Redirect(location), nil
		}
		return internal.Continue(), nil
	}
}
