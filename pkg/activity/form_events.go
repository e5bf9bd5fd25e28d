package activity

import (
	"strings"
	"time"
)

// Form event verbs.
const (
	VerbFormReset         = "form.reset"
	VerbFormValidated     = "form.validated"
	VerbFormUpdated       = "form.updated"
	VerbFormListInserted  = "form.list.inserted"
	VerbFormListRemoved   = "form.list.removed"
	VerbFormListReordered = "form.list.reordered"
)

// ObjectTypeForm is the object type of every form event.
const ObjectTypeForm = "form"

// FormEventInput describes one state transition of a form session.
type FormEventInput struct {
	ActorID   string
	UserID    string
	TenantID  string
	FormID    string
	SessionID string
	Channel   string
	// Source is "client", "server" or "init".
	Source string
	// Intent is the serialized intent, "" for a plain submit.
	Intent     string
	Field      string
	Index      *int
	From       *int
	To         *int
	ResetKey   string
	ErrorCount int
	Pending    bool
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildFormResetEvent reports a state reset.
func BuildFormResetEvent(input FormEventInput) Event {
	return buildFormEvent(VerbFormReset, input)
}

// BuildFormValidatedEvent reports a validation pass, sync or resolved async.
func BuildFormValidatedEvent(input FormEventInput) Event {
	return buildFormEvent(VerbFormValidated, input)
}

// BuildFormUpdatedEvent reports an update intent.
func BuildFormUpdatedEvent(input FormEventInput) Event {
	return buildFormEvent(VerbFormUpdated, input)
}

// BuildFormListInsertedEvent reports an insert intent.
func BuildFormListInsertedEvent(input FormEventInput) Event {
	return buildFormEvent(VerbFormListInserted, input)
}

// BuildFormListRemovedEvent reports a remove intent.
func BuildFormListRemovedEvent(input FormEventInput) Event {
	return buildFormEvent(VerbFormListRemoved, input)
}

// BuildFormListReorderedEvent reports a reorder intent.
func BuildFormListReorderedEvent(input FormEventInput) Event {
	return buildFormEvent(VerbFormListReordered, input)
}

func buildFormEvent(verb string, input FormEventInput) Event {
	metadata := cloneMap(input.Metadata)
	set := func(key string, value any) {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata[key] = value
	}

	if input.SessionID != "" {
		set("session_id", strings.TrimSpace(input.SessionID))
	}
	if input.Source != "" {
		set("source", input.Source)
	}
	if input.Intent != "" {
		set("intent", input.Intent)
	}
	if input.Field != "" {
		set("field", input.Field)
	}
	if input.Index != nil {
		set("index", *input.Index)
	}
	if input.From != nil {
		set("from", *input.From)
	}
	if input.To != nil {
		set("to", *input.To)
	}
	if input.ResetKey != "" {
		set("reset_key", input.ResetKey)
	}
	if verb == VerbFormValidated {
		set("error_count", input.ErrorCount)
		set("pending", input.Pending)
	}

	objectID := strings.TrimSpace(input.FormID)
	if objectID == "" {
		objectID = ObjectTypeForm
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: ObjectTypeForm,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}
