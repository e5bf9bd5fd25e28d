package session

import (
	formstate "github.com/goliatone/go-formstate"
	"github.com/goliatone/go-formstate/fieldpath"
	"github.com/goliatone/go-formstate/pkg/activity"
	"github.com/goliatone/go-formstate/pkg/state"
	"github.com/goliatone/go-formstate/validate"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a Session.
type Option[E any] func(*Session[E])

// WithConfig sets the intent field name and key generator.
func WithConfig[E any](cfg formstate.Config) Option[E] {
	return func(s *Session[E]) {
		s.cfg = cfg
	}
}

// WithValidator runs v on every client submission.
func WithValidator[E any](v validate.Validator[E]) Option[E] {
	return func(s *Session[E]) {
		s.validator = v
	}
}

// WithDefaults sets the value the form starts from. The tree is deep-copied.
func WithDefaults[E any](defaults map[string]any) Option[E] {
	return func(s *Session[E]) {
		if defaults == nil {
			s.defaults = nil
			return
		}
		s.defaults = fieldpath.Clone(defaults)
	}
}

// WithSessionID overrides the generated session ID.
func WithSessionID[E any](id string) Option[E] {
	return func(s *Session[E]) {
		if id != "" {
			s.id = id
		}
	}
}

// WithLogger records every transition.
func WithLogger[E any](logger Logger) Option[E] {
	return func(s *Session[E]) {
		if logger == nil {
			s.logger = noopLogger{}
			return
		}
		s.logger = logger
	}
}

// WithActivity emits form lifecycle events through emitter.
func WithActivity[E any](emitter *activity.Emitter) Option[E] {
	return func(s *Session[E]) {
		s.emitter = emitter
	}
}

// WithActor tags emitted events with the acting user.
func WithActor[E any](actorID, userID, tenantID string) Option[E] {
	return func(s *Session[E]) {
		s.actor = actor{actorID: actorID, userID: userID, tenantID: tenantID}
	}
}

// WithStore persists the state after every transition.
func WithStore[E any](store state.Store[formstate.FormState[E]]) Option[E] {
	return func(s *Session[E]) {
		s.store = store
	}
}

// WithTracerProvider traces submissions and async resolutions with tp.
func WithTracerProvider[E any](tp trace.TracerProvider) Option[E] {
	return func(s *Session[E]) {
		if tp != nil {
			s.tracer = tp.Tracer(tracerName)
		}
	}
}
