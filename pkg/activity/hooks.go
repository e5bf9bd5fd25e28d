package activity

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/goliatone/go-formstate/fieldpath"
)

// Event is one form lifecycle occurrence. ObjectID is the form ID; the
// identifiers stay strings so each hook decides how to parse them.
type Event struct {
	Verb       string
	ActorID    string
	UserID     string
	TenantID   string
	ObjectType string
	ObjectID   string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// Field returns the field path the event names, "" for whole-form events.
func (e Event) Field() string {
	field, _ := e.Metadata["field"].(string)
	return field
}

// SessionID returns the ID of the session that produced the event.
func (e Event) SessionID() string {
	id, _ := e.Metadata["session_id"].(string)
	return id
}

// IsListEvent reports whether the event shifted the items of a list.
func (e Event) IsListEvent() bool {
	return strings.HasPrefix(e.Verb, "form.list.")
}

// Valid reports whether the event names a verb and a form.
func (e Event) Valid() bool {
	return e.Verb != "" && e.ObjectType == ObjectTypeForm && e.ObjectID != ""
}

// ActivityHook receives normalized form events.
type ActivityHook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc adapts a function to ActivityHook.
type HookFunc func(ctx context.Context, event Event) error

// Notify calls fn. A nil HookFunc ignores the event.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// ForVerbs narrows hook to events carrying one of verbs.
func ForVerbs(hook ActivityHook, verbs ...string) ActivityHook {
	return HookFunc(func(ctx context.Context, event Event) error {
		if hook == nil || !slices.Contains(verbs, event.Verb) {
			return nil
		}
		return hook.Notify(ctx, event)
	})
}

// ForField narrows hook to events naming field or a path inside it. Whole-form
// events such as resets are forwarded too, since they affect every field.
func ForField(hook ActivityHook, field string) ActivityHook {
	return HookFunc(func(ctx context.Context, event Event) error {
		if hook == nil {
			return nil
		}
		if name := event.Field(); name != "" && !fieldpath.Within(name, field) {
			return nil
		}
		return hook.Notify(ctx, event)
	})
}

// Hooks fans a form event out to every hook. Each hook gets its own copy of
// the metadata.
type Hooks []ActivityHook

// Notify normalizes event and forwards it to each hook. Invalid events are
// dropped. Hook errors are tagged with the verb and hook position and joined.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	event = NormalizeEvent(event)
	if len(h) == 0 || !event.Valid() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error
	for i, hook := range h {
		if hook == nil {
			continue
		}
		delivered := event
		delivered.Metadata = cloneMap(event.Metadata)
		if err := hook.Notify(ctx, delivered); err != nil {
			errs = errors.Join(errs, fmt.Errorf("activity: %s hook %d for form %q: %w", event.Verb, i, event.ObjectID, err))
		}
	}
	return errs
}

// NormalizeEvent trims the identifiers, defaults the object type to a form,
// copies the metadata and stamps OccurredAt when unset.
func NormalizeEvent(event Event) Event {
	for _, value := range []*string{
		&event.Verb, &event.ActorID, &event.UserID, &event.TenantID,
		&event.ObjectType, &event.ObjectID, &event.Channel,
	} {
		*value = strings.TrimSpace(*value)
	}
	if event.ObjectType == "" {
		event.ObjectType = ObjectTypeForm
	}
	event.Metadata = cloneMap(event.Metadata)
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	return event
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	return maps.Clone(src)
}
