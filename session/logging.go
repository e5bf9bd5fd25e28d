package session

import "time"

// TransitionEvent describes one attempt to change a session's state.
type TransitionEvent struct {
	FormID    string
	SessionID string
	Token     uint64
	Source    string
	// Intent is the intent kind, "" for a plain submit.
	Intent     string
	ErrorCount int
	Pending    bool
	// Stale is set when a validation result arrived after a newer submission
	// and its errors were dropped.
	Stale    bool
	Duration time.Duration
	Err      error
}

// Logger records session transitions.
type Logger interface {
	LogTransition(TransitionEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(TransitionEvent)

// LogTransition implements Logger.
func (f LoggerFunc) LogTransition(event TransitionEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogTransition(TransitionEvent) {}
