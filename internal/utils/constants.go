package utils

import "time"

// Application Constants
const (
	AppName = "BluApp"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Alerts
	ProtocolTimeLayout   = "20060102150405"
	ProtocolSuffixLength = 6
	AlertTitleSuffix     = " está precisando de ajuda!"

	// Push delivery
	DeliveryGuardPrefix = "push_delivery:"
	PushPriorityHigh    = "high"

	// Timeouts
	RequestTimeout = 15 * time.Second
)

// Response Status
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error codes returned in the API envelope.
const (
	CodeValidationError          = "VALIDATION_ERROR"
	CodeUnauthorized             = "UNAUTHORIZED"
	CodeForbidden                = "FORBIDDEN"
	CodeNotFound                 = "NOT_FOUND"
	CodeInternalError            = "INTERNAL_ERROR"
	CodeBadRequest               = "BAD_REQUEST"
	CodeLocationPermissionDenied = "LOCATION_PERMISSION_DENIED"
	CodeLocationUnavailable      = "LOCATION_UNAVAILABLE"
	CodeAlertPersistFailed       = "ALERT_PERSIST_FAILED"
	CodePushPermissionDenied     = "PUSH_PERMISSION_DENIED"
	CodeTrustedContactNotFound   = "TRUSTED_CONTACT_NOT_FOUND"
	CodeDeviceTokenNotRegistered = "DEVICE_TOKEN_NOT_REGISTERED"
	CodeNotificationNotFound     = "NOTIFICATION_NOT_FOUND"
)

// Error Messages
const (
	ErrInternalServer   = "internal server error"
	ErrUnauthorized     = "unauthorized"
	ErrForbidden        = "forbidden"
	ErrNotFound         = "not found"
	ErrValidationFailed = "validation failed"
	ErrInvalidToken     = "invalid token"
	ErrTokenExpired     = "token expired"
)
