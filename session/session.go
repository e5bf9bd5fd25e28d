package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	formstate "github.com/goliatone/go-formstate"
	"github.com/goliatone/go-formstate/intent"
	"github.com/goliatone/go-formstate/pkg/activity"
	"github.com/goliatone/go-formstate/pkg/state"
	"github.com/goliatone/go-formstate/validate"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/goliatone/go-formstate/session"

// ErrVersionMismatch reports that the persisted state changed underneath the
// session.
var ErrVersionMismatch = state.ErrVersionMismatch

type actor struct {
	actorID  string
	userID   string
	tenantID string
}

// Session owns the state of one form instance and sequences every change to
// it. Each submission takes a new token; a pending validation result is
// applied only while its token is still the latest and dropped otherwise.
//
// A Session is safe for concurrent use.
type Session[E any] struct {
	mu        sync.Mutex
	id        string
	formID    string
	cfg       formstate.Config
	validator validate.Validator[E]
	defaults  map[string]any
	state     formstate.FormState[E]
	token     uint64
	meta      state.Meta
	pending   sync.WaitGroup

	logger  Logger
	emitter *activity.Emitter
	actor   actor
	store   state.Store[formstate.FormState[E]]
	tracer  trace.Tracer
}

// New creates a session for the form identified by formID.
func New[E any](formID string, opts ...Option[E]) (*Session[E], error) {
	if formID == "" {
		return nil, fmt.Errorf("session: form id is required")
	}
	s := &Session[E]{
		id:     uuid.NewString(),
		formID: formID,
		cfg:    formstate.DefaultConfig(),
		logger: noopLogger{},
		tracer: noop.NewTracerProvider().Tracer(tracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	cfg, err := s.cfg.Resolve()
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	s.cfg = cfg
	s.state = formstate.NewState[E](cfg)
	return s, nil
}

// ID returns the session ID.
func (s *Session[E]) ID() string { return s.id }

// FormID returns the ID of the form the session manages.
func (s *Session[E]) FormID() string { return s.formID }

// Config returns the resolved configuration.
func (s *Session[E]) Config() formstate.Config { return s.cfg }

// State returns the current state.
func (s *Session[E]) State() formstate.FormState[E] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Field returns the view of the field at name.
func (s *Session[E]) Field(name string) formstate.FieldView[E] {
	return formstate.GetField(s.State(), name, s.defaults)
}

// FieldList returns the views of the items of the list at name.
func (s *Session[E]) FieldList(name string) []formstate.FieldView[E] {
	return formstate.GetFieldList(s.State(), name, s.defaults)
}

// Form returns the view of the whole form.
func (s *Session[E]) Form() formstate.FieldView[E] {
	return formstate.GetForm(s.State(), s.defaults)
}

// Value returns the authoritative value of the form.
func (s *Session[E]) Value() map[string]any {
	return formstate.AuthoritativeValue(s.State(), s.defaults)
}

// Load restores the persisted state, if any. Without a store it does nothing.
func (s *Session[E]) Load(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	snapshot, meta, ok, err := s.store.Load(ctx, s.ref())
	if err != nil {
		return fmt.Errorf("session: load form %q: %w", s.formID, err)
	}
	if !ok {
		return nil
	}
	s.mu.Lock()
	s.token++
	s.state = snapshot
	s.meta = meta
	s.mu.Unlock()
	return nil
}

// Submit folds entries into a submission, validates the value it resolves to
// and merges the result as a client pass. The returned state includes the
// immediate validation result; a pending result is applied later unless a
// newer submission supersedes it. Wait blocks until it lands.
func (s *Session[E]) Submit(ctx context.Context, entries []formstate.Entry) (formstate.FormState[E], error) {
	return s.SubmitSubmission(ctx, formstate.ParseSubmission(entries, s.cfg))
}

// SubmitSubmission is Submit for an already parsed submission. When a newer
// submission lands while this one is validating, its intent is still applied
// but its validation result is dropped.
func (s *Session[E]) SubmitSubmission(ctx context.Context, sub formstate.Submission) (formstate.FormState[E], error) {
	start := time.Now()
	in := formstate.Action[E]{Submission: sub}.ResolveIntent(s.cfg)
	kind := kindOf(in)

	ctx, span := s.tracer.Start(ctx, "formstate.session.submit", trace.WithAttributes(
		attribute.String("form.id", s.formID),
		attribute.String("form.session_id", s.id),
		attribute.String("form.intent", kind),
	))
	defer span.End()

	s.mu.Lock()
	s.token++
	token := s.token
	s.mu.Unlock()
	span.SetAttributes(attribute.Int64("form.token", int64(token)))

	result, err := s.validate(ctx, sub.Payload, in)
	if err != nil {
		recordError(span, err)
		s.logger.LogTransition(TransitionEvent{
			FormID: s.formID, SessionID: s.id, Token: token, Source: string(formstate.SourceClient),
			Intent: kind, Duration: time.Since(start), Err: err,
		})
		return s.State(), err
	}

	s.mu.Lock()
	// A newer submission owns the client error slot. A stale pass still
	// applies its transition so list keys and touched fields follow the
	// intent, but keeps the errors already installed.
	stale := token != s.token
	errs := result.Error
	if stale {
		errs = s.state.ClientError
	}
	next, err := formstate.UpdateState(s.state, formstate.Action[E]{
		Source:     formstate.SourceClient,
		Submission: sub,
		Intent:     in,
		Error:      errs,
	}, s.cfg)
	if err == nil {
		err = s.commit(ctx, next)
	}
	current := s.state
	s.mu.Unlock()

	pending := !stale && result.IsPending()
	event := TransitionEvent{
		FormID: s.formID, SessionID: s.id, Token: token, Source: string(formstate.SourceClient),
		Intent: kind, ErrorCount: countErrors(errs), Pending: pending, Stale: stale,
		Duration: time.Since(start), Err: err,
	}
	s.logger.LogTransition(event)
	if err != nil {
		recordError(span, err)
		return current, err
	}
	span.SetAttributes(
		attribute.Int("form.error_count", event.ErrorCount),
		attribute.Bool("form.pending", event.Pending),
		attribute.Bool("form.stale", stale),
	)
	s.emit(ctx, in, sub.Intent, formstate.SourceClient, event)

	if pending {
		s.pending.Add(1)
		go s.resolve(ctx, token, kind, result)
	}
	return current, nil
}

// ApplyReply merges a server reply. Server results are authoritative, so any
// client validation still pending is dropped.
func (s *Session[E]) ApplyReply(ctx context.Context, reply formstate.Reply[E]) (formstate.FormState[E], error) {
	return s.apply(ctx, reply.Action())
}

// Init seeds the session from a server-rendered reply without marking any
// field as touched.
func (s *Session[E]) Init(ctx context.Context, reply formstate.Reply[E]) (formstate.FormState[E], error) {
	action := reply.Action()
	action.Source = formstate.SourceInit
	return s.apply(ctx, action)
}

// Reset discards every value, error and list key and starts over with a new
// reset key.
func (s *Session[E]) Reset(ctx context.Context) (formstate.FormState[E], error) {
	return s.apply(ctx, formstate.Action[E]{
		Source:     formstate.SourceClient,
		Submission: formstate.Submission{Payload: map[string]any{}},
		Intent:     intent.Reset{},
	})
}

func (s *Session[E]) apply(ctx context.Context, action formstate.Action[E]) (formstate.FormState[E], error) {
	start := time.Now()
	in := action.ResolveIntent(s.cfg)
	kind := kindOf(in)

	ctx, span := s.tracer.Start(ctx, "formstate.session.apply", trace.WithAttributes(
		attribute.String("form.id", s.formID),
		attribute.String("form.session_id", s.id),
		attribute.String("form.source", string(action.Source)),
		attribute.String("form.intent", kind),
	))
	defer span.End()

	s.mu.Lock()
	s.token++
	token := s.token
	next, err := formstate.UpdateState(s.state, action, s.cfg)
	if err == nil {
		err = s.commit(ctx, next)
	}
	current := s.state
	s.mu.Unlock()

	event := TransitionEvent{
		FormID: s.formID, SessionID: s.id, Token: token, Source: string(action.Source),
		Intent: kind, ErrorCount: countErrors(action.Error), Duration: time.Since(start), Err: err,
	}
	s.logger.LogTransition(event)
	if err != nil {
		recordError(span, err)
		return current, err
	}
	s.emit(ctx, in, action.Submission.Intent, action.Source, event)
	return current, nil
}

// resolve waits for a pending validation and applies it while token is still
// the latest.
func (s *Session[E]) resolve(ctx context.Context, token uint64, kind string, result validate.Result[E]) {
	defer s.pending.Done()
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, "formstate.session.resolve", trace.WithAttributes(
		attribute.String("form.id", s.formID),
		attribute.String("form.session_id", s.id),
		attribute.Int64("form.token", int64(token)),
	))
	defer span.End()

	outcome := result.Wait(ctx)
	event := TransitionEvent{
		FormID: s.formID, SessionID: s.id, Token: token, Source: string(formstate.SourceClient),
		Intent: kind, ErrorCount: countErrors(outcome.Error),
	}

	if outcome.Err != nil {
		event.Err = outcome.Err
		event.Duration = time.Since(start)
		recordError(span, outcome.Err)
		s.logger.LogTransition(event)
		return
	}

	s.mu.Lock()
	if token != s.token {
		s.mu.Unlock()
		event.Stale = true
		event.Duration = time.Since(start)
		span.SetAttributes(attribute.Bool("form.stale", true))
		s.logger.LogTransition(event)
		return
	}
	next := formstate.ReportError(s.state, formstate.SourceClient, outcome.Error)
	err := s.commit(ctx, next)
	s.mu.Unlock()

	event.Err = err
	event.Duration = time.Since(start)
	s.logger.LogTransition(event)
	if err != nil {
		recordError(span, err)
		return
	}
	span.SetAttributes(attribute.Int("form.error_count", event.ErrorCount))
	s.emit(ctx, intent.Validate{}, nil, formstate.SourceClient, event)
}

// Wait blocks until every pending validation has been applied or dropped, or
// ctx is done.
func (s *Session[E]) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session[E]) validate(ctx context.Context, payload map[string]any, in intent.Intent) (validate.Result[E], error) {
	if s.validator == nil {
		return validate.Result[E]{}, nil
	}
	if _, ok := in.(intent.Reset); ok {
		return validate.Result[E]{}, nil
	}
	value, err := intent.Apply(payload, in, intent.WithMaxIndex(s.cfg.MaxListIndex))
	if err != nil {
		return validate.Result[E]{}, fmt.Errorf("session: apply %s intent: %w", kindOf(in), err)
	}
	if value == nil {
		return validate.Result[E]{}, nil
	}
	result, err := s.validator.Validate(ctx, validate.Input{Payload: value, Intent: in})
	if err != nil {
		return validate.Result[E]{}, fmt.Errorf("session: validate form %q: %w", s.formID, err)
	}
	return result, nil
}

// commit installs next and persists it. The caller holds s.mu. The save fails
// with ErrVersionMismatch when another writer saved since the session last did.
// A failed save leaves the previous state in place.
func (s *Session[E]) commit(ctx context.Context, next formstate.FormState[E]) error {
	if s.store != nil {
		_, meta, err := state.Mutate(ctx, s.store, s.ref(), func(snapshot *formstate.FormState[E]) error {
			*snapshot = next
			return nil
		}, state.ExpectVersion(s.meta.Version))
		if err != nil {
			return fmt.Errorf("session: form %q: %w", s.formID, err)
		}
		s.meta = meta
	}
	s.state = next
	return nil
}

func (s *Session[E]) ref() state.Ref {
	return state.Ref{FormID: s.formID, SessionID: s.id}
}

func kindOf(in intent.Intent) string {
	if in == nil {
		return ""
	}
	return string(in.Kind())
}

func countErrors[E any](errs *formstate.ErrorTree[E]) int {
	if errs == nil {
		return 0
	}
	count := len(errs.FormErrors)
	for _, messages := range errs.FieldErrors {
		count += len(messages)
	}
	return count
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
