package constants

import "errors"

// Configuration errors.
var (
	ErrNoURLConfigured     = errors.New("no service URL configured, use 'logo login --url <url>' or set LOGO_URL")
	ErrNotAuthenticated    = errors.New("not authenticated, use 'logo login' first")
	ErrUnknownConfigKey    = errors.New("unknown configuration key")
	ErrTokenFieldsReadOnly = errors.New("token fields cannot be set via config command")
)

// Input errors.
var (
	ErrInvalidWhereFlag    = errors.New("invalid --where value, expected key=value")
	ErrInvalidOutputFormat = errors.New("invalid output format, expected table, json or yaml")
	ErrInvalidReference    = errors.New("invalid reference, expected a positive integer")
	ErrPasswordRequired    = errors.New("password is required")
	ErrUsernameRequired    = errors.New("username is required")
	ErrPartialFailure      = errors.New("some records could not be fetched")
)
