package services

import "errors"

var (
	ErrUnauthenticated     = errors.New("authentication required")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrLocationUnavailable = errors.New("location unavailable")
	ErrAlertPersistFailed  = errors.New("failed to persist alert")
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
)
