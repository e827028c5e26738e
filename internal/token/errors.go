package token

import "errors"

var (
	// ErrInvalidToken is returned when a token fails signature or structural checks.
	ErrInvalidToken = errors.New("invalid token")
	// ErrMalformedToken is returned when a token is not a well-formed JWT.
	ErrMalformedToken = errors.New("malformed token")
	// ErrExpiredToken is returned when a token is past its expiry.
	ErrExpiredToken = errors.New("expired token")
	// ErrUnsupportedToken is returned when a token uses an unexpected signing algorithm.
	ErrUnsupportedToken = errors.New("unsupported token type")
	// ErrMissingAuthority is returned when an access token carries no authority claim.
	ErrMissingAuthority = errors.New("token has no authority claim")
	// ErrSessionMismatch is returned when a refresh token does not match the stored session.
	ErrSessionMismatch = errors.New("refresh token does not match stored session")
	// ErrBlacklistedToken is returned when a token was revoked before its natural expiry.
	ErrBlacklistedToken = errors.New("token is blacklisted")
	// ErrStoreUnavailable is returned when the credential store cannot be reached.
	ErrStoreUnavailable = errors.New("credential store unavailable")
)
