package domain

import "errors"

// Sentinel errors for the domain layer. These provide consistent, checkable
// errors for common business logic failures. Handlers map them to HTTP
// status codes; services wrap them with context using fmt.Errorf and %w.
var (
	// ErrValidation is returned when a request is missing or carries a
	// malformed required field, e.g. a message with neither text nor image.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced user or message is absent.
	ErrNotFound = errors.New("requested resource not found")

	// ErrNotAuthorized is returned when a caller attempts an operation they
	// do not own, e.g. a non-sender deleting a message.
	ErrNotAuthorized = errors.New("not authorized to perform this action")

	// ErrEmailExists is returned when signing up with an email that is
	// already registered.
	ErrEmailExists = errors.New("user with this email already exists")

	// ErrInvalidCredentials is returned on a failed login attempt. It is
	// deliberately vague about which part of the credentials was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials provided")
)
