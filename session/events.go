package session

import (
	"context"

	formstate "github.com/goliatone/go-formstate"
	"github.com/goliatone/go-formstate/intent"
	"github.com/goliatone/go-formstate/pkg/activity"
)

// emit reports a committed transition. Hook failures are logged, never
// returned: the state change already happened.
func (s *Session[E]) emit(ctx context.Context, in intent.Intent, raw *string, source formstate.Source, event TransitionEvent) {
	if !s.emitter.Enabled() {
		return
	}

	input := activity.FormEventInput{
		ActorID:    s.actor.actorID,
		UserID:     s.actor.userID,
		TenantID:   s.actor.tenantID,
		FormID:     s.formID,
		SessionID:  s.id,
		Source:     string(source),
		ErrorCount: event.ErrorCount,
		Pending:    event.Pending,
	}
	if raw != nil {
		input.Intent = *raw
	} else if in != nil {
		if text, err := intent.Serialize(in); err == nil {
			input.Intent = text
		}
	}

	var build func(activity.FormEventInput) activity.Event
	switch typed := in.(type) {
	case intent.Reset:
		input.ResetKey = s.State().ResetKey
		build = activity.BuildFormResetEvent
	case intent.Update:
		input.Field = typed.Target()
		build = activity.BuildFormUpdatedEvent
	case intent.Insert:
		input.Field = typed.Name
		input.Index = typed.Index
		build = activity.BuildFormListInsertedEvent
	case intent.Remove:
		input.Field = typed.Name
		input.Index = intent.At(typed.Index)
		build = activity.BuildFormListRemovedEvent
	case intent.Reorder:
		input.Field = typed.Name
		input.From = intent.At(typed.From)
		input.To = intent.At(typed.To)
		build = activity.BuildFormListReorderedEvent
	case intent.Validate:
		input.Field = typed.Name
		build = activity.BuildFormValidatedEvent
	default:
		build = activity.BuildFormValidatedEvent
	}

	if err := s.emitter.Emit(ctx, build(input)); err != nil {
		event.Err = err
		s.logger.LogTransition(event)
	}
}
