package formstate

import (
	"github.com/goliatone/go-formstate/fieldpath"
	"github.com/goliatone/go-formstate/listkeys"
)

// FormState is the reconciled state of one form instance. It is treated as an
// immutable value: UpdateState returns a new FormState and shares every
// unchanged field with the previous one.
type FormState[E any] struct {
	// ResetKey changes only on reset and seeds the default list keys.
	ResetKey string
	// ListKeys holds the item keys of every list edited since the last reset.
	ListKeys listkeys.Map
	// ClientIntendedValue is the latest value resolved by a client pass.
	ClientIntendedValue map[string]any
	// ServerIntendedValue is the latest value resolved by a server pass. It is
	// cleared once a client pass diverges from it.
	ServerIntendedValue map[string]any
	ClientError         *ErrorTree[E]
	ServerError         *ErrorTree[E]
	// TouchedFields lists the paths validated at least once, "" meaning the
	// whole form.
	TouchedFields []string
}

// NewState returns the initial state of a form instance.
func NewState[E any](cfg Config) FormState[E] {
	cfg = cfg.withDefaults()
	return FormState[E]{
		ResetKey:      cfg.Keys.NewKey(),
		ListKeys:      listkeys.Map{},
		TouchedFields: []string{},
	}
}

// Error returns the error tree currently in effect: the server result when
// present, the client result otherwise.
func (s FormState[E]) Error() *ErrorTree[E] {
	if s.ServerError != nil {
		return s.ServerError
	}
	return s.ClientError
}

// AuthoritativeValue returns the value a renderer should show: the server
// value, then the client value, then defaults.
func AuthoritativeValue[E any](s FormState[E], defaults map[string]any) map[string]any {
	value, _ := authoritative(s, defaults)
	return value
}

// IsTouched reports whether name, or any field below it, has been validated.
func IsTouched[E any](s FormState[E], name string) bool {
	for _, touched := range s.TouchedFields {
		if fieldpath.Within(touched, name) {
			return true
		}
	}
	return false
}

// ListKeysFor returns the item keys of the list at name in the authoritative
// value. Lists never edited since the last reset get derived keys.
func ListKeysFor[E any](s FormState[E], name string, defaults map[string]any) []string {
	return listkeys.Current(s.ListKeys, s.ResetKey, AuthoritativeValue(s, defaults), name)
}
