package formstate

import (
	"encoding/json"

	"github.com/goliatone/go-formstate/fieldpath"
)

// Reply is what a server sends back for a submission. The client replays it
// through UpdateState as a server pass; Intent is the string the client
// originally submitted so the same operation is resolved on both sides.
type Reply[E any] struct {
	Intent  *string        `json:"intent,omitempty"`
	Payload map[string]any `json:"payload"`
	Error   *ErrorTree[E]  `json:"error,omitempty"`
}

// NewReply builds the reply for a submission validated with errs.
func NewReply[E any](sub Submission, errs *ErrorTree[E]) Reply[E] {
	return Reply[E]{
		Intent:  sub.Intent,
		Payload: sub.Payload,
		Error:   errs,
	}
}

// Action converts the reply into a server-sourced Action.
func (r Reply[E]) Action() Action[E] {
	payload := r.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	return Action[E]{
		Source: SourceServer,
		Submission: Submission{
			Intent:  r.Intent,
			Payload: payload,
			Fields:  fieldpath.Names(payload),
		},
		Error: r.Error,
	}
}

// ToJSON serialises the reply for transport.
func (r Reply[E]) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// ReplyFromJSON decodes a payload produced by ToJSON.
func ReplyFromJSON[E any](payload []byte) (Reply[E], error) {
	var reply Reply[E]
	if err := json.Unmarshal(payload, &reply); err != nil {
		return Reply[E]{}, err
	}
	return reply, nil
}
