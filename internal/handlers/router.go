package handlers

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"smarthome-skill-bridge/internal/models"
	"smarthome-skill-bridge/internal/services"

	"github.com/sirupsen/logrus"
)

// DirectiveHandler handles every directive of one namespace
type DirectiveHandler interface {
	Namespace() models.Namespace
	// Directives lists the directive names the handler supports
	Directives() []string
	Handle(ctx context.Context, d *models.Directive, events *services.EventBuilder) (*models.Event, error)
}

type route struct {
	handler DirectiveHandler
	names   map[string]bool
}

// Router maps namespace and directive name to a handler
type Router struct {
	routes   map[models.Namespace]route
	builders map[models.ProtocolVersion]*services.EventBuilder
	fallback models.ProtocolVersion
	logger   *logrus.Logger
}

// RouterOptions configures a Router
type RouterOptions struct {
	// Fallback is the protocol used to answer envelopes whose shape is unknown
	Fallback models.ProtocolVersion
	Logger   *logrus.Logger
	Builders map[models.ProtocolVersion]*services.EventBuilder
}

// NewRouter creates a router with the standard handler set
func NewRouter(devices services.DeviceService, opts RouterOptions) *Router {
	r := NewEmptyRouter(opts)
	r.Register(NewDiscoveryHandler(devices, r.logger))
	r.Register(NewPowerHandler(devices))
	r.Register(NewChannelHandler(devices))
	r.Register(NewInputHandler(devices))
	r.Register(NewSpeakerHandler(devices))
	r.Register(NewPlaybackHandler(devices))
	return r
}

// NewEmptyRouter creates a router without handlers
func NewEmptyRouter(opts RouterOptions) *Router {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}

	fallback := opts.Fallback
	if !fallback.IsValid() {
		fallback = models.ProtocolVersioned
	}

	builders := opts.Builders
	if builders == nil {
		builders = map[models.ProtocolVersion]*services.EventBuilder{
			models.ProtocolLegacy:    services.NewEventBuilder(models.ProtocolLegacy),
			models.ProtocolVersioned: services.NewEventBuilder(models.ProtocolVersioned),
		}
	}

	return &Router{
		routes:   make(map[models.Namespace]route),
		builders: builders,
		fallback: fallback,
		logger:   logger,
	}
}

// Register adds a handler. A later registration for the same namespace wins.
func (r *Router) Register(h DirectiveHandler) {
	names := make(map[string]bool)
	for _, n := range h.Directives() {
		names[n] = true
	}
	r.routes[h.Namespace()] = route{handler: h, names: names}
}

// Routes returns the routing table as namespace to sorted directive names
func (r *Router) Routes() map[models.Namespace][]string {
	out := make(map[models.Namespace][]string, len(r.routes))
	for ns, rt := range r.routes {
		names := make([]string, 0, len(rt.names))
		for n := range rt.names {
			names = append(names, n)
		}
		sort.Strings(names)
		out[ns] = names
	}
	return out
}

// Route parses a raw inbound envelope and dispatches it. It always returns an event.
func (r *Router) Route(ctx context.Context, raw []byte) *models.Event {
	d, err := models.ParseDirective(raw)
	if err != nil {
		protocol := r.fallback
		if d != nil && d.Protocol.IsValid() {
			protocol = d.Protocol
		}
		r.logger.WithError(err).Debug("Rejecting malformed directive")
		return r.builder(protocol).BuildDirectiveError(d, models.ErrorInternal, err.Error())
	}
	return r.Dispatch(ctx, d)
}

// Dispatch routes a parsed directive to its handler
func (r *Router) Dispatch(ctx context.Context, d *models.Directive) *models.Event {
	events := r.builder(d.Protocol)

	if err := models.ValidateDirective(d); err != nil {
		return events.BuildDirectiveError(d, models.ErrorInternal, fmt.Sprintf("%v: %v", models.ErrMalformedDirective, err))
	}

	rt, ok := r.routes[d.Namespace]
	if !ok {
		return events.BuildDirectiveError(d, models.ErrorInvalidDirective,
			fmt.Sprintf("unsupported namespace %s", d.Namespace))
	}
	if !rt.names[d.Name] {
		return events.BuildDirectiveError(d, models.ErrorInvalidDirective,
			fmt.Sprintf("unsupported directive %s.%s", d.Namespace, d.Name))
	}

	event, err := rt.handler.Handle(ctx, d, events)
	if err != nil {
		de := models.AsDirectiveError(err)
		if !errors.As(err, new(*models.DirectiveError)) {
			r.logger.WithError(err).WithField("namespace", d.Namespace).Error("Handler failed")
		}
		return events.BuildDirectiveError(d, de.Type, de.Message)
	}
	return event
}

func (r *Router) builder(p models.ProtocolVersion) *services.EventBuilder {
	if b, ok := r.builders[p]; ok {
		return b
	}
	if b, ok := r.builders[r.fallback]; ok {
		return b
	}
	return services.NewEventBuilder(r.fallback)
}
