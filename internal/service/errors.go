package service

import "errors"

// Failure taxonomy of the vault. Handlers classify with errors.Is and
// map each sentinel to an HTTP outcome; storage causes stay wrapped
// underneath for logging.
var (
	ErrNotFound      = errors.New("file not found")
	ErrForbidden     = errors.New("operation not permitted")
	ErrShareExpired  = errors.New("share link expired")
	ErrOwnerNotFound = errors.New("owner does not exist")
	ErrCodeCollision = errors.New("could not generate a unique share code")
	ErrValidation    = errors.New("invalid request")

	ErrUserNotFound       = errors.New("user does not exist")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
