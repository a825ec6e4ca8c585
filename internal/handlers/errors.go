package handlers

import (
	"net/http"

	"smarthome-skill-bridge/internal/adapters/transport"
	"smarthome-skill-bridge/internal/models"
)

// statusErrorTypes maps backend status codes to error kinds. Anything not
// listed, including socket errors, is ENDPOINT_UNREACHABLE.
var statusErrorTypes = map[int]models.ErrorType{
	http.StatusUnauthorized:    models.ErrorInvalidAuthorizationCredential,
	http.StatusForbidden:       models.ErrorExpiredAuthorizationCredential,
	http.StatusNotFound:        models.ErrorNoSuchEndpoint,
	http.StatusTooManyRequests: models.ErrorRateLimitExceeded,
}

// backendError converts a failed control call into a DirectiveError that
// carries the underlying message
func backendError(err error) *models.DirectiveError {
	if transport.IsRateLimited(err) {
		return &models.DirectiveError{Type: models.ErrorRateLimitExceeded, Message: err.Error()}
	}
	if errType, ok := statusErrorTypes[transport.StatusCode(err)]; ok {
		return &models.DirectiveError{Type: errType, Message: err.Error()}
	}
	return &models.DirectiveError{Type: models.ErrorEndpointUnreachable, Message: err.Error()}
}

func invalidDirective(d *models.Directive) *models.DirectiveError {
	return models.NewDirectiveError(models.ErrorInvalidDirective, "unsupported directive %s.%s", d.Namespace, d.Name)
}

func invalidValue(d *models.Directive, err error) *models.DirectiveError {
	return models.NewDirectiveError(models.ErrorInvalidValue, "%s.%s: %v", d.Namespace, d.Name, err)
}

// requireEndpoint fails with NO_SUCH_ENDPOINT when the directive names no endpoint
func requireEndpoint(d *models.Directive) error {
	if d.EndpointID == "" {
		return models.NewDirectiveError(models.ErrorNoSuchEndpoint, "%s.%s requires an endpoint id", d.Namespace, d.Name)
	}
	return nil
}
