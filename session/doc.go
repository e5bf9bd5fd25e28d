// Package session sequences the state changes of one form instance.
//
// The formstate package is pure: UpdateState turns a previous state and an
// action into the next state and leaves ordering to the caller. A Session is
// that caller. It serializes transitions under a lock, gives every submission
// a token, and applies a pending validation result only while its token is
// still the latest one. A superseded submission still applies its intent,
// but its validation results are dropped and logged as stale; they are never
// reported as errors.
//
//	s, err := session.New[string]("trip",
//		session.WithValidator[string](rules),
//		session.WithDefaults[string](map[string]any{"tasks": []any{}}),
//	)
//	state, err := s.Submit(ctx, formstate.EntriesFromValues(r.PostForm))
//
// Sessions optionally persist every transition to a state.Store, emit
// activity events and trace submissions with OpenTelemetry.
package session
