package service

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserAlreadyExists is returned when attempting to register with an existing email.
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	// ErrInvalidToken is returned for tokens that are malformed, tampered with or expired.
	ErrInvalidToken = errors.New("invalid token")
	// ErrForbidden is returned when the requester does not own the resource being mutated.
	ErrForbidden = errors.New("user not authorized")

	ErrProfileNotFound = errors.New("profile not found")
	ErrEntryNotFound   = errors.New("profile entry not found")

	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrAlreadyLiked    = errors.New("post already liked")
	ErrNotLiked        = errors.New("post has not been liked yet")

	ErrGitHubNotConfigured  = errors.New("github oauth is not configured")
	ErrStorageNotConfigured = errors.New("avatar storage is not configured")
)

// ValidationError reports malformed or missing input. Each message is user facing.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

func newValidationError(msgs ...string) *ValidationError {
	return &ValidationError{Messages: msgs}
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AssertOwner fails with ErrForbidden unless the requester owns the resource.
func AssertOwner(ownerID, requesterID string) error {
	if ownerID == "" || ownerID != requesterID {
		return ErrForbidden
	}
	return nil
}
