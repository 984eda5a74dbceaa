// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// Send pipeline failures. Each wraps one of the kinds above so the HTTP layer
// can map it without knowing about campaigns.
var (
	ErrAlreadySent           = fmt.Errorf("%w: campaign has already been sent", ErrValidation)
	ErrNoRecipients          = fmt.Errorf("%w: no contacts in the selected list", ErrValidation)
	ErrSendInProgress        = fmt.Errorf("%w: campaign is already being sent", ErrConflict)
	ErrTransportUnconfigured = fmt.Errorf("%w: mail provider not configured, set API key and domain", ErrValidation)
	ErrCampaignLocked        = fmt.Errorf("%w: campaign content can only change while in draft", ErrConflict)
)

// NotFoundError names the missing resource.
type NotFoundError struct {
	Resource string
	ID       int
}

func (e *NotFoundError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s with ID %d not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func NewNotFound(resource string, id int) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// NewCampaignNotFound is kept for the campaign paths that only know the id.
func NewCampaignNotFound(id int) error {
	return NewNotFound("campaign", id)
}

func NewValidation(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, a...))
}

func NewConflict(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, a...))
}

func NewForbidden(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, a...))
}

func NewUnauthorized(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, fmt.Sprintf(format, a...))
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// Message strips the kind prefix so clients see "Email is required" rather
// than "validation failed: Email is required".
func Message(err error) string {
	for _, kind := range []error{ErrValidation, ErrConflict, ErrForbidden, ErrUnauthorized} {
		prefix := kind.Error() + ": "
		msg := err.Error()
		if errors.Is(err, kind) && len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
			return msg[len(prefix):]
		}
	}
	return err.Error()
}
