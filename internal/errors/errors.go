package errors

import (
	"errors"
	"fmt"
)

// Common error types for the desktop client
var (
	// Session errors
	ErrNotSignedIn     = errors.New("not signed in")
	ErrFetchInProgress = errors.New("profile fetch already in progress")

	// Authorization flow errors
	ErrNoServiceConfiguration = errors.New("service configuration not fetched")
	ErrInvalidState           = errors.New("invalid state parameter")
	ErrNonceMismatch          = errors.New("nonce mismatch")
	ErrMissingIDToken         = errors.New("no id_token in token response")
	ErrAuthorizationDenied    = errors.New("authorization denied")
	ErrAuthorizationTimeout   = errors.New("timed out waiting for the authorization callback")
	ErrSignedOut              = errors.New("signed out while the request was in flight")

	// Web API errors
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrEmptyToken       = errors.New("empty access token")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Join combines errors, dropping nils
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
