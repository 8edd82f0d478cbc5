package services

import (
	"errors"
	"fmt"
)

// Error categories returned by the service layer. Routes classify with the
// Is* helpers and map to HTTP statuses; everything else is a server error.
var (
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("validation failed")
	ErrConflict       = errors.New("conflict")
	ErrForbidden      = errors.New("forbidden")
	ErrBadCredentials = errors.New("invalid username or password")
)

func notFound(entity string, id uint) error {
	return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
}

func invalid(field, reason string) error {
	return fmt.Errorf("%s: %s: %w", field, reason, ErrValidation)
}

func conflict(detail string) error {
	return fmt.Errorf("%s: %w", detail, ErrConflict)
}

func forbidden(detail string) error {
	return fmt.Errorf("%s: %w", detail, ErrForbidden)
}

func IsNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
func IsConflict(err error) bool   { return errors.Is(err, ErrConflict) }
func IsForbidden(err error) bool  { return errors.Is(err, ErrForbidden) }
