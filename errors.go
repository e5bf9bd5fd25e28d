package formstate

import (
	"sort"

	"github.com/goliatone/go-formstate/fieldpath"
)

// ErrorTree holds the validation errors of one pass. E is the application's
// error shape, commonly string.
type ErrorTree[E any] struct {
	FormErrors  []E            `json:"formErrors,omitempty"`
	FieldErrors map[string][]E `json:"fieldErrors,omitempty"`
}

// IsEmpty reports whether t carries no error at all. A nil tree is empty.
func (t *ErrorTree[E]) IsEmpty() bool {
	if t == nil {
		return true
	}
	if len(t.FormErrors) > 0 {
		return false
	}
	for _, errs := range t.FieldErrors {
		if len(errs) > 0 {
			return false
		}
	}
	return true
}

// FieldNames returns the sorted names of fields holding at least one error.
func (t *ErrorTree[E]) FieldNames() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.FieldErrors))
	for name, errs := range t.FieldErrors {
		if len(errs) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// ErrorsAt returns the errors recorded for name. The empty name addresses the
// form-level errors.
func (t *ErrorTree[E]) ErrorsAt(name string) []E {
	if t == nil {
		return nil
	}
	if name == "" {
		return t.FormErrors
	}
	return t.FieldErrors[name]
}

// HasErrorsWithin reports whether name or any field below it has an error.
func (t *ErrorTree[E]) HasErrorsWithin(name string) bool {
	if t == nil {
		return false
	}
	if name == "" {
		return !t.IsEmpty()
	}
	for field, errs := range t.FieldErrors {
		if len(errs) > 0 && fieldpath.Within(field, name) {
			return true
		}
	}
	return false
}

// MergeErrors concatenates trees in order. It returns nil when every input is
// nil and the single non-nil input when there is only one.
func MergeErrors[E any](trees ...*ErrorTree[E]) *ErrorTree[E] {
	var present []*ErrorTree[E]
	for _, tree := range trees {
		if tree != nil {
			present = append(present, tree)
		}
	}
	switch len(present) {
	case 0:
		return nil
	case 1:
		return present[0]
	}

	merged := &ErrorTree[E]{}
	for _, tree := range present {
		merged.FormErrors = append(merged.FormErrors, tree.FormErrors...)
		for name, errs := range tree.FieldErrors {
			if merged.FieldErrors == nil {
				merged.FieldErrors = map[string][]E{}
			}
			merged.FieldErrors[name] = append(merged.FieldErrors[name], errs...)
		}
	}
	return merged
}
