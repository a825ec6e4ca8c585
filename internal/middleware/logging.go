package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"smarthome-skill-bridge/internal/models"
	"smarthome-skill-bridge/internal/services"
	"smarthome-skill-bridge/pkg/lambda"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestIDKey is the log field and gin context key for the request id
const RequestIDKey = "request_id"

type requestIDKey struct{}

// ContextWithRequestID attaches a request id for handlers running outside Lambda
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the Lambda request id, a request id set with
// ContextWithRequestID, or ""
func RequestIDFromContext(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// InvocationLogger logs one line per directive
func InvocationLogger(logger *logrus.Logger) lambda.Middleware {
	if logger == nil {
		logger = logrus.New()
	}

	return func(next lambda.HandlerFunc) lambda.HandlerFunc {
		return func(ctx context.Context, raw json.RawMessage) (*models.Event, error) {
			start := time.Now()

			requestID := RequestIDFromContext(ctx)
			if requestID == "" {
				requestID = uuid.New().String()
				ctx = ContextWithRequestID(ctx, requestID)
			}

			fields := logrus.Fields{RequestIDKey: requestID}
			// the header is parsed again by the router; this copy is only for logging
			if d, _ := models.ParseDirective(raw); d != nil {
				fields["namespace"] = d.Namespace
				fields["name"] = d.Name
				fields["payload_version"] = d.Protocol
			}
			if logger.IsLevelEnabled(logrus.DebugLevel) {
				logger.WithFields(fields).WithField("body", string(raw)).Debug("Directive received")
			}

			event, err := next(ctx, raw)

			fields["latency_ms"] = float64(time.Since(start).Nanoseconds()) / 1000000
			entry := logger.WithFields(fields)
			switch {
			case err != nil:
				entry.WithError(err).Error("Directive failed")
			case event != nil && event.IsError():
				entry.WithField("error_type", event.ErrorType()).Warn("Directive answered with error")
			default:
				entry.Info("Directive handled")
			}

			return event, err
		}
	}
}

// Recover turns a panic, an escaped error or a nil event into an
// INTERNAL_ERROR event. The reply uses the protocol of the inbound envelope,
// or fallback when its shape is unknown.
func Recover(logger *logrus.Logger, fallback models.ProtocolVersion) lambda.Middleware {
	if logger == nil {
		logger = logrus.New()
	}
	if !fallback.IsValid() {
		fallback = models.ProtocolVersioned
	}
	builders := map[models.ProtocolVersion]*services.EventBuilder{
		models.ProtocolLegacy:    services.NewEventBuilder(models.ProtocolLegacy),
		models.ProtocolVersioned: services.NewEventBuilder(models.ProtocolVersioned),
	}

	internalError := func(raw json.RawMessage, message string) *models.Event {
		protocol := fallback
		d, _ := models.ParseDirective(raw)
		if d != nil && d.Protocol.IsValid() {
			protocol = d.Protocol
		}
		return builders[protocol].BuildDirectiveError(d, models.ErrorInternal, message)
	}

	return func(next lambda.HandlerFunc) lambda.HandlerFunc {
		return func(ctx context.Context, raw json.RawMessage) (event *models.Event, err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.WithFields(logrus.Fields{
						RequestIDKey: RequestIDFromContext(ctx),
						"panic":      fmt.Sprintf("%v", r),
					}).Error("Recovered from panic")
					event, err = internalError(raw, "internal error"), nil
				}
			}()

			event, err = next(ctx, raw)
			if err != nil {
				logger.WithError(err).WithField(RequestIDKey, RequestIDFromContext(ctx)).Error("Handler returned error")
				return internalError(raw, err.Error()), nil
			}
			if event == nil {
				return internalError(raw, "no response produced"), nil
			}
			return event, nil
		}
	}
}
