package formstate

import (
	"reflect"

	"github.com/goliatone/go-formstate/fieldpath"
	"github.com/goliatone/go-formstate/listkeys"
)

// Origin records which layer of the state a field value was read from.
type Origin string

const (
	OriginServer  Origin = "server"
	OriginClient  Origin = "client"
	OriginDefault Origin = "default"
)

// FieldView is a read-only snapshot of one field, computed from a FormState.
type FieldView[E any] struct {
	Name string
	// Key identifies the field for rendering. List items carry their list
	// key; every other field carries the state's reset key.
	Key          string
	Value        any
	DefaultValue any
	// Errors are the field's errors once it has been touched.
	Errors []E
	// AllErrors are the field's errors regardless of touched state.
	AllErrors []E
	Touched   bool
	// Valid reports that neither the field nor any field below it has errors.
	Valid  bool
	Dirty  bool
	Origin Origin
}

// GetField returns the view of name. defaults is the form's initial value and
// may be nil.
func GetField[E any](s FormState[E], name string, defaults map[string]any) FieldView[E] {
	value, origin := authoritative(s, defaults)
	current, _ := fieldpath.GetString(value, name)
	initial, _ := fieldpath.GetString(defaults, name)

	errs := s.Error()
	view := FieldView[E]{
		Name:         name,
		Key:          fieldKey(s, value, name),
		Value:        current,
		DefaultValue: initial,
		AllErrors:    errs.ErrorsAt(name),
		Touched:      IsTouched(s, name),
		Valid:        !errs.HasErrorsWithin(name),
		Dirty:        !reflect.DeepEqual(current, initial),
		Origin:       origin,
	}
	if view.Touched {
		view.Errors = view.AllErrors
	}
	return view
}

// GetFieldList returns one view per item of the list at name, in order.
func GetFieldList[E any](s FormState[E], name string, defaults map[string]any) []FieldView[E] {
	value, _ := authoritative(s, defaults)
	raw, _ := fieldpath.GetString(value, name)
	list, _ := raw.([]any)
	views := make([]FieldView[E], len(list))
	for i := range list {
		views[i] = GetField(s, fieldpath.AppendIndex(name, i), defaults)
	}
	return views
}

// GetForm returns the view of the whole form. Its errors are the form-level
// errors.
func GetForm[E any](s FormState[E], defaults map[string]any) FieldView[E] {
	return GetField(s, "", defaults)
}

func authoritative[E any](s FormState[E], defaults map[string]any) (map[string]any, Origin) {
	switch {
	case s.ServerIntendedValue != nil:
		return s.ServerIntendedValue, OriginServer
	case s.ClientIntendedValue != nil:
		return s.ClientIntendedValue, OriginClient
	default:
		return defaults, OriginDefault
	}
}

func fieldKey[E any](s FormState[E], value map[string]any, name string) string {
	path := fieldpath.Parse(name)
	last, ok := path.Last()
	if !ok || !last.IsIndex() {
		return s.ResetKey
	}
	parent, _ := path.Parent()
	keys := listkeys.Current(s.ListKeys, s.ResetKey, value, parent.String())
	if last.Index() >= len(keys) {
		return s.ResetKey
	}
	return keys[last.Index()]
}
