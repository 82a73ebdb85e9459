// Package auth obtains a GitHub bearer credential, either from a directly
// entered personal access token or through the OAuth device-authorization
// flow (poll until the user approves out-of-band).
package auth

import (
	"errors"
	"strings"
)

// Terminal outcomes of an authentication attempt. None of these are retried
// automatically; the user re-runs the command.
var (
	ErrCancelled            = errors.New("authentication cancelled")
	ErrInvalidTokenFormat   = errors.New("invalid token format")
	ErrRemoteRejected       = errors.New("token rejected by GitHub")
	ErrAuthorizationDenied  = errors.New("authorization denied")
	ErrAuthorizationExpired = errors.New("authorization expired")
	ErrTimeout              = errors.New("authentication timed out")
	ErrTransport            = errors.New("transport error")
)

// tokenPrefix is the classic personal-access-token prefix. The cheap format
// check runs before any network round trip.
const tokenPrefix = "ghp_"

// ValidateTokenFormat checks that token looks like a personal access token.
func ValidateTokenFormat(token string) error {
	if token == "" || !strings.HasPrefix(token, tokenPrefix) {
		return ErrInvalidTokenFormat
	}
	return nil
}
