package validate

import (
	"context"

	formstate "github.com/goliatone/go-formstate"
	"github.com/goliatone/go-formstate/internal/hydrate"
)

// FieldChecker is implemented by form structs that report per-field errors.
// Keys are field names in the submitted payload ("tasks[0].title").
type FieldChecker interface {
	ValidateFields() map[string][]string
}

// FormChecker is implemented by form structs that report a single form-level
// error.
type FormChecker interface {
	Validate() error
}

// StructOption configures a Struct validator.
type StructOption func(*structConfig)

type structConfig struct {
	formID         string
	keepBlank      bool
	strict         bool
	decodeFailures string
}

// WithFormID names the form in decode error messages.
func WithFormID(id string) StructOption {
	return func(cfg *structConfig) {
		cfg.formID = id
	}
}

// WithBlankValues keeps empty strings in the payload. By default they are
// dropped so untouched inputs decode to zero values.
func WithBlankValues() StructOption {
	return func(cfg *structConfig) {
		cfg.keepBlank = true
	}
}

// WithStrictFields reports payload keys without a matching struct field.
func WithStrictFields() StructOption {
	return func(cfg *structConfig) {
		cfg.strict = true
	}
}

// WithDecodeMessage sets the form error reported when the payload does not
// fit T. The decoder error is used when message is empty.
func WithDecodeMessage(message string) StructOption {
	return func(cfg *structConfig) {
		cfg.decodeFailures = message
	}
}

// Struct decodes the payload into T and asks it what is wrong. T, or *T,
// should implement FieldChecker or FormChecker; a T implementing neither only
// fails when the payload cannot be decoded.
func Struct[T any](opts ...StructOption) Validator[string] {
	cfg := structConfig{formID: "form"}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	decoderOpts := []hydrate.DecoderOption[T]{}
	if !cfg.keepBlank {
		decoderOpts = append(decoderOpts, hydrate.WithPreHook[T](hydrate.DropBlank))
	}
	if cfg.strict {
		decoderOpts = append(decoderOpts, hydrate.WithDisallowUnknownFields[T]())
	}

	return structValidator[T]{
		cfg:     cfg,
		decoder: hydrate.NewDecoder(decoderOpts...),
	}
}

type structValidator[T any] struct {
	cfg     structConfig
	decoder *hydrate.Decoder[T]
}

func (v structValidator[T]) Validate(ctx context.Context, in Input) (Result[string], error) {
	if err := ctx.Err(); err != nil {
		return Result[string]{}, err
	}

	kind := ""
	if in.Intent != nil {
		kind = string(in.Intent.Kind())
	}

	value, err := v.decoder.Decode(hydrate.Context{FormID: v.cfg.formID, Intent: kind}, in.Payload)
	if err != nil {
		message := v.cfg.decodeFailures
		if message == "" {
			message = err.Error()
		}
		return Immediate(&formstate.ErrorTree[string]{FormErrors: []string{message}}), nil
	}

	return Immediate(check(&value)), nil
}

func check[T any](value *T) *formstate.ErrorTree[string] {
	var errs *formstate.ErrorTree[string]

	var target any = value
	if _, ok := target.(FieldChecker); !ok {
		target = *value
	}

	if checker, ok := target.(FieldChecker); ok {
		for field, messages := range checker.ValidateFields() {
			for _, message := range messages {
				errs = addError(errs, field, message)
			}
		}
	}

	target = value
	if _, ok := target.(FormChecker); !ok {
		target = *value
	}
	if checker, ok := target.(FormChecker); ok {
		if err := checker.Validate(); err != nil {
			errs = addError(errs, "", err.Error())
		}
	}
	return errs
}
