package intent

import "github.com/goliatone/go-formstate/fieldpath"

// Kind names one of the supported intents. It is the leading word of the wire
// format.
type Kind string

const (
	KindReset    Kind = "reset"
	KindValidate Kind = "validate"
	KindUpdate   Kind = "update"
	KindInsert   Kind = "insert"
	KindRemove   Kind = "remove"
	KindReorder  Kind = "reorder"
)

// Intent is a structured, serialisable form operation. The set of
// implementations is closed: Reset, Validate, Update, Insert, Remove and
// Reorder.
type Intent interface {
	Kind() Kind
	// payload returns the JSON payload and whether one should be written.
	payload() (any, bool)
}

// Reset restores the form. DefaultValue is only meaningful when HasDefault is
// set: a nil DefaultValue then resets to an empty form, while HasDefault=false
// asks the caller to reinitialise from its own defaults.
type Reset struct {
	DefaultValue map[string]any
	HasDefault   bool
}

func (Reset) Kind() Kind { return KindReset }

func (r Reset) payload() (any, bool) {
	if !r.HasDefault {
		return nil, false
	}
	return map[string]any{"defaultValue": r.DefaultValue}, true
}

// Validate marks a field (or, with an empty Name, the whole form) for
// validation without changing any value.
type Validate struct {
	Name string
}

func (Validate) Kind() Kind { return KindValidate }

func (v Validate) payload() (any, bool) {
	if v.Name == "" {
		return nil, false
	}
	return v.Name, true
}

// Update writes Value at Name, or at Name[Index] when Index is set. A nil
// Value clears the target.
type Update struct {
	Name  string
	Index *int
	Value any
}

func (Update) Kind() Kind { return KindUpdate }

func (u Update) payload() (any, bool) {
	out := map[string]any{"value": u.Value}
	if u.Name != "" {
		out["name"] = u.Name
	}
	if u.Index != nil {
		out["index"] = *u.Index
	}
	return out, true
}

// Target returns the field name the update writes to.
func (u Update) Target() string {
	if u.Index == nil {
		return u.Name
	}
	return fieldpath.AppendIndex(u.Name, *u.Index)
}

// Insert adds DefaultValue to the list at Name, at Index or at the end.
type Insert struct {
	Name         string
	Index        *int
	DefaultValue any
}

func (Insert) Kind() Kind { return KindInsert }

func (i Insert) payload() (any, bool) {
	out := map[string]any{"name": i.Name}
	if i.Index != nil {
		out["index"] = *i.Index
	}
	if i.DefaultValue != nil {
		out["defaultValue"] = i.DefaultValue
	}
	return out, true
}

// Remove deletes the item at Index from the list at Name.
type Remove struct {
	Name  string
	Index int
}

func (Remove) Kind() Kind { return KindRemove }

func (r Remove) payload() (any, bool) {
	return map[string]any{"name": r.Name, "index": r.Index}, true
}

// Reorder moves the item at From to To within the list at Name.
type Reorder struct {
	Name string
	From int
	To   int
}

func (Reorder) Kind() Kind { return KindReorder }

func (r Reorder) payload() (any, bool) {
	return map[string]any{"name": r.Name, "from": r.From, "to": r.To}, true
}

// At returns a pointer to index, for the optional Index fields of Update and
// Insert.
func At(index int) *int {
	return &index
}

// Name returns the field the intent is about, or "" for whole-form intents.
func Name(in Intent) string {
	switch typed := in.(type) {
	case Validate:
		return typed.Name
	case Update:
		return typed.Target()
	case Insert:
		return typed.Name
	case Remove:
		return typed.Name
	case Reorder:
		return typed.Name
	default:
		return ""
	}
}
