// Package formstate reconciles the results of client and server validation
// passes over structured form data.
//
// A form travels as flat name/value entries. ParseSubmission folds them into a
// value tree and lifts the reserved intent field (see package intent) out of
// the payload. UpdateState applies the intent and merges the pass's errors
// into the previous FormState, keeping touched fields and list item keys
// consistent across inserts, removals and reorders:
//
//	cfg := formstate.DefaultConfig()
//	state := formstate.NewState[string](cfg)
//	sub := formstate.ParseSubmission(entries, cfg)
//	state, err := formstate.UpdateState(state, formstate.Action[string]{
//		Source:     formstate.SourceClient,
//		Submission: sub,
//		Error:      validate(sub.Payload),
//	}, cfg)
//
// FormState is an immutable value. Readers use GetField, GetFieldList and
// GetForm to obtain plain views of individual fields.
package formstate
