package formstate

import (
	"errors"
	"fmt"
	"reflect"
	"slices"

	"github.com/goliatone/go-formstate/fieldpath"
	"github.com/goliatone/go-formstate/intent"
	"github.com/goliatone/go-formstate/internal/splice"
	"github.com/goliatone/go-formstate/listkeys"
)

// Source identifies where a validation pass ran.
type Source string

const (
	// SourceClient is a pass run close to the user, typically on every edit.
	SourceClient Source = "client"
	// SourceServer is an authoritative pass, or a client replaying a server
	// reply.
	SourceServer Source = "server"
	// SourceInit seeds a form from a server-rendered result. It merges like a
	// server pass but records no touched fields.
	SourceInit Source = "init"
)

// ErrUnknownSource reports an action whose Source is not one of the declared
// sources. The zero Source is not valid.
var ErrUnknownSource = errors.New("formstate: unknown source")

// Action is one validation result to merge into a FormState.
type Action[E any] struct {
	Source     Source
	Submission Submission
	// Intent overrides Submission.Intent when set. When nil the submitted
	// intent string is parsed; an unrecognized string counts as no intent.
	Intent intent.Intent
	// Error is the validator's result, nil when the pass found nothing.
	Error *ErrorTree[E]
}

// ResolveIntent returns the intent the action carries, or nil. Submitted
// intents with indices above cfg.MaxListIndex are ignored.
func (a Action[E]) ResolveIntent(cfg Config) intent.Intent {
	if a.Intent != nil {
		return a.Intent
	}
	if a.Submission.Intent == nil {
		return nil
	}
	in, ok := intent.Parse(*a.Submission.Intent, intent.WithMaxIndex(cfg.withDefaults().MaxListIndex))
	if !ok {
		return nil
	}
	return in
}

// UpdateState merges action into prev and returns the next state. prev is
// never modified. The returned error reports structural misuse by the caller,
// such as a list intent addressing a non-list value or an action without a
// known Source; prev is returned with it.
//
// Only client passes remap touched paths and list keys for Insert, Remove and
// Reorder. A server pass carrying one of these intents is a reply to a
// submission the client already reduced, so its payload holds the shifted
// list and replaying the shift would move keys and touched paths twice. The
// server pass still marks the list itself as touched.
func UpdateState[E any](prev FormState[E], action Action[E], cfg Config) (FormState[E], error) {
	switch action.Source {
	case SourceClient, SourceServer, SourceInit:
	default:
		return prev, fmt.Errorf("%w: %q", ErrUnknownSource, action.Source)
	}
	cfg = cfg.withDefaults()
	in := action.ResolveIntent(cfg)

	value, err := intent.Apply(action.Submission.Payload, in, intent.WithMaxIndex(cfg.MaxListIndex))
	if err != nil {
		return prev, fmt.Errorf("formstate: apply %s intent: %w", kindOf(in), err)
	}

	if _, reset := in.(intent.Reset); reset || value == nil {
		next := NewState[E](cfg)
		if value != nil {
			if action.Source == SourceClient {
				next.ClientIntendedValue = value
			} else {
				next.ServerIntendedValue = value
			}
		}
		return next, nil
	}

	next := prev
	switch action.Source {
	case SourceClient:
		if !reflect.DeepEqual(prev.ClientIntendedValue, value) {
			next.ClientIntendedValue = value
		}
		if !reflect.DeepEqual(prev.ClientError, action.Error) {
			next.ClientError = action.Error
		}
		if prev.ServerIntendedValue != nil || prev.ServerError != nil {
			if !reflect.DeepEqual(prev.ServerIntendedValue, value) {
				next.ServerIntendedValue = nil
				next.ServerError = nil
			}
		}
	case SourceServer, SourceInit:
		next.ServerIntendedValue = value
		next.ServerError = action.Error
		next.ClientError = nil
	}

	if action.Source == SourceInit {
		return next, nil
	}
	if in == nil {
		in = intent.Validate{}
	}
	client := action.Source == SourceClient
	payload := action.Submission.Payload

	switch typed := in.(type) {
	case intent.Validate:
		if typed.Name == "" {
			next.TouchedFields = addTouched(prev.TouchedFields, "")
			next.TouchedFields = addTouched(next.TouchedFields, action.Submission.Fields...)
			next.TouchedFields = addTouched(next.TouchedFields, action.Error.FieldNames()...)
		} else {
			next.TouchedFields = addTouched(prev.TouchedFields, typed.Name)
		}
	case intent.Update:
		target := typed.Target()
		var submitted []string
		for _, field := range action.Submission.Fields {
			if fieldpath.Within(field, target) {
				submitted = append(submitted, field)
			}
		}
		next.TouchedFields = addTouched(prev.TouchedFields, submitted...)
		if client {
			next.ListKeys = listkeys.DropUnder(prev.ListKeys, target)
		}
	case intent.Insert:
		length := listLength(payload, typed.Name)
		index := splice.InsertIndex(length, typed.Index)
		touched := prev.TouchedFields
		if client {
			remap := listkeys.IndexRemap(typed.Name, listkeys.InsertMapper(index))
			touched = listkeys.RemapPaths(touched, remap)
			next.ListKeys = listkeys.Insert(prev.ListKeys, prev.ResetKey, payload, typed.Name, index, cfg.Keys.NewKey())
		}
		next.TouchedFields = addTouched(touched, typed.Name)
	case intent.Remove:
		touched := prev.TouchedFields
		if client && typed.Index >= 0 && typed.Index < listLength(payload, typed.Name) {
			remap := listkeys.IndexRemap(typed.Name, listkeys.RemoveMapper(typed.Index))
			touched = listkeys.RemapPaths(touched, remap)
			next.ListKeys = listkeys.Remove(prev.ListKeys, prev.ResetKey, payload, typed.Name, typed.Index)
		}
		next.TouchedFields = addTouched(touched, typed.Name)
	case intent.Reorder:
		touched := prev.TouchedFields
		length := listLength(payload, typed.Name)
		if client && typed.From >= 0 && typed.From < length {
			to := splice.MoveTarget(length, typed.To)
			if to != typed.From {
				remap := listkeys.IndexRemap(typed.Name, listkeys.ReorderMapper(typed.From, to))
				touched = listkeys.RemapPaths(touched, remap)
				next.ListKeys = listkeys.Reorder(prev.ListKeys, prev.ResetKey, payload, typed.Name, typed.From, to)
			}
		}
		next.TouchedFields = addTouched(touched, typed.Name)
	}

	return next, nil
}

// ReportError merges an error result that resolved after its submission was
// already reduced, such as the pending half of an asynchronous validator.
// Values, touched fields and list keys are left as they are. Any source other
// than SourceClient merges as a server result.
func ReportError[E any](prev FormState[E], source Source, errs *ErrorTree[E]) FormState[E] {
	next := prev
	if source == SourceClient {
		if !reflect.DeepEqual(prev.ClientError, errs) {
			next.ClientError = errs
		}
		return next
	}
	next.ServerError = errs
	next.ClientError = nil
	return next
}

// addTouched appends the names missing from touched. touched itself is
// returned when nothing is added.
func addTouched(touched []string, names ...string) []string {
	var out []string
	for _, name := range names {
		if slices.Contains(touched, name) || slices.Contains(out, name) {
			continue
		}
		if out == nil {
			out = make([]string, len(touched), len(touched)+len(names))
			copy(out, touched)
		}
		out = append(out, name)
	}
	if out == nil {
		return touched
	}
	return out
}

func listLength(tree map[string]any, name string) int {
	value, _ := fieldpath.GetString(tree, name)
	list, _ := value.([]any)
	return len(list)
}

func kindOf(in intent.Intent) string {
	if in == nil {
		return "no"
	}
	return string(in.Kind())
}
