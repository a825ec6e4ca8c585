package models

import (
	"errors"
	"fmt"
)

// ErrorType is the enumerated error kind carried in an ErrorResponse payload
type ErrorType string

const (
	ErrorEndpointUnreachable            ErrorType = "ENDPOINT_UNREACHABLE"
	ErrorNoSuchEndpoint                 ErrorType = "NO_SUCH_ENDPOINT"
	ErrorInvalidValue                   ErrorType = "INVALID_VALUE"
	ErrorValueOutOfRange                ErrorType = "VALUE_OUT_OF_RANGE"
	ErrorTemperatureValueOutOfRange     ErrorType = "TEMPERATURE_VALUE_OUT_OF_RANGE"
	ErrorInvalidDirective               ErrorType = "INVALID_DIRECTIVE"
	ErrorFirmwareOutOfRange             ErrorType = "FIRMWARE_OUT_OF_RANGE"
	ErrorHardwareMalfunction            ErrorType = "HARDWARE_MALFUNCTION"
	ErrorRateLimitExceeded              ErrorType = "RATE_LIMIT_EXCEEDED"
	ErrorInvalidAuthorizationCredential ErrorType = "INVALID_AUTHORIZATION_CREDENTIAL"
	ErrorExpiredAuthorizationCredential ErrorType = "EXPIRED_AUTHORIZATION_CREDENTIAL"
	ErrorInternal                       ErrorType = "INTERNAL_ERROR"
)

// ErrorTypes lists every error kind in declaration order
var ErrorTypes = []ErrorType{
	ErrorEndpointUnreachable,
	ErrorNoSuchEndpoint,
	ErrorInvalidValue,
	ErrorValueOutOfRange,
	ErrorTemperatureValueOutOfRange,
	ErrorInvalidDirective,
	ErrorFirmwareOutOfRange,
	ErrorHardwareMalfunction,
	ErrorRateLimitExceeded,
	ErrorInvalidAuthorizationCredential,
	ErrorExpiredAuthorizationCredential,
	ErrorInternal,
}

// ErrMalformedDirective is returned when an inbound envelope has no usable header
var ErrMalformedDirective = errors.New("malformed directive")

// ErrorPayload is the payload of an ErrorResponse event
type ErrorPayload struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
}

// DirectiveError is a failure that is reported back to the caller as an error event
type DirectiveError struct {
	Type    ErrorType
	Message string
}

func (e *DirectiveError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// NewDirectiveError creates a DirectiveError with a formatted message
func NewDirectiveError(errType ErrorType, format string, args ...interface{}) *DirectiveError {
	return &DirectiveError{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// AsDirectiveError extracts a DirectiveError, falling back to INTERNAL_ERROR
func AsDirectiveError(err error) *DirectiveError {
	var de *DirectiveError
	if errors.As(err, &de) {
		return de
	}
	return &DirectiveError{Type: ErrorInternal, Message: err.Error()}
}
