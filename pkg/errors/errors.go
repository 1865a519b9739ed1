package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies the failure class surfaced to callers. Kinds map 1:1 to the
// `error` field of the API error body; no raw store or transport errors cross
// the public boundary.
type Kind string

const (
	// Validation failures, caller-fixable.
	KindInvalidParameter Kind = "InvalidParameter"
	KindInvalidSetting   Kind = "InvalidSetting"
	KindBadRequest       Kind = "BadRequest"

	// Not-found / precondition failures.
	KindMissingRegistration   Kind = "MissingRegistration"
	KindMissingCommand        Kind = "MissingCommand"
	KindMissingEvent          Kind = "MissingEvent"
	KindMissingDevice         Kind = "MissingDevice"
	KindMissingSetting        Kind = "MissingSetting"
	KindMissingUserConfig     Kind = "MissingUserConfig"
	KindMissingPhoneNumber    Kind = "MissingPhoneNumber"
	KindDeviceNotFoundFailure Kind = "DeviceNotFoundFailure"

	// Conflict. Reported as 500 for compatibility with existing clients even
	// though a 409 would be the natural mapping.
	KindDeviceRegisteredFailure Kind = "DeviceRegisteredFailure"

	// Upstream / store failures.
	KindRegistrationRetrieveFailure Kind = "RegistrationRetrieveFailure"
	KindRegistrationQueryFailure    Kind = "RegistrationQueryFailure"
	KindRegistrationCreateFailure   Kind = "RegistrationCreateFailure"
	KindRegistrationUpdateFailure   Kind = "RegistrationUpdateFailure"
	KindRegistrationDeleteFailure   Kind = "RegistrationDeleteFailure"
	KindCommandRetrieveFailure      Kind = "CommandRetrieveFailure"
	KindCommandQueryFailure         Kind = "CommandQueryFailure"
	KindCommandCreateFailure        Kind = "CommandCreateFailure"
	KindEventRetrieveFailure        Kind = "EventRetrieveFailure"
	KindEventQueryFailure           Kind = "EventQueryFailure"
	KindEventCreateFailure          Kind = "EventCreateFailure"
	KindEventUpdateFailure          Kind = "EventUpdateFailure"
	KindSettingRetrieveFailure      Kind = "SettingRetrieveFailure"
	KindSettingUpdateFailure        Kind = "SettingUpdateFailure"
	KindDeviceShadowUpdateFailure   Kind = "DeviceShadowUpdateFailure"
	KindCommandPublishFailure       Kind = "CommandPublishFailure"
	KindCertificateActivateFailure  Kind = "CertificateActivateFailure"
	KindSendAlertFailure            Kind = "SendAlertFailure"

	// Compensation failure: a create-then-rollback sequence failed on the
	// rollback leg, leaving inconsistent data behind. Logged distinctly.
	KindDeviceRollBackFailure Kind = "DeviceRollBackFailure"

	// Authorization.
	KindAccessDenied Kind = "AccessDeniedException"
)

// AppError is the single error type crossing service boundaries.
type AppError struct {
	Kind       Kind   `json:"error"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"code"`
	Cause      error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause wraps an underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// NewValidation creates a 400 validation error.
func NewValidation(kind Kind, message string) *AppError {
	return &AppError{
		Kind:       kind,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewMissing creates a 400 not-found/precondition error.
func NewMissing(kind Kind, message string) *AppError {
	return &AppError{
		Kind:       kind,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewFailure creates a 500 upstream/store error wrapping its cause.
func NewFailure(kind Kind, message string, cause error) *AppError {
	return &AppError{
		Kind:       kind,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewAccessDenied creates a 401 error.
func NewAccessDenied(message string) *AppError {
	if message == "" {
		message = "access denied"
	}
	return &AppError{
		Kind:       KindAccessDenied,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// GetAppError extracts an AppError from an error chain.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsKind checks whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Kind == kind
}

// KindOf returns the kind of err, or an empty Kind for foreign errors.
func KindOf(err error) Kind {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Kind
	}
	return ""
}

// Ensure maps any error to an AppError, defaulting to the given kind for
// errors that did not originate in this package.
func Ensure(err error, kind Kind, message string) *AppError {
	if err == nil {
		return nil
	}
	if appErr := GetAppError(err); appErr != nil {
		return appErr
	}
	return NewFailure(kind, message, err)
}
