package intent

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Raw is a decoded intent string before its payload shape has been checked.
type Raw struct {
	Type       string
	Payload    any
	HasPayload bool
}

// Serialize renders an intent into its wire form: "type" when there is no
// payload, "type(json)" otherwise.
func Serialize(in Intent) (string, error) {
	if in == nil {
		return "", fmt.Errorf("intent: cannot serialise nil intent")
	}
	payload, ok := in.payload()
	if !ok || payload == nil {
		return string(in.Kind()), nil
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("intent: encode %s payload: %w", in.Kind(), err)
	}
	return string(in.Kind()) + "(" + string(encoded) + ")", nil
}

// Deserialize splits text at the first "(" and the trailing ")" and decodes the
// JSON in between. Malformed JSON leaves the payload absent instead of
// failing.
func Deserialize(text string) Raw {
	open := strings.IndexByte(text, '(')
	if open < 0 {
		return Raw{Type: text}
	}
	raw := Raw{Type: text[:open]}
	body := text[open+1:]
	if !strings.HasSuffix(body, ")") {
		return raw
	}
	body = body[:len(body)-1]

	var payload any
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return raw
	}
	raw.Payload = payload
	raw.HasPayload = true
	return raw
}

// Recognize checks raw against the payload shape expected for its type. An
// unknown type or a mismatched shape reports ok=false, which callers treat as
// "no intent". Indices above the configured maximum, in the payload or in the
// addressed name, are a mismatched shape.
func Recognize(raw Raw, opts ...Option) (Intent, bool) {
	l := newLimits(opts)
	switch Kind(raw.Type) {
	case KindReset:
		return recognizeReset(raw)
	case KindValidate:
		if !raw.HasPayload || raw.Payload == nil {
			return Validate{}, true
		}
		name, ok := raw.Payload.(string)
		if !ok {
			return nil, false
		}
		return Validate{Name: name}, true
	case KindUpdate:
		return recognizeUpdate(raw, l)
	case KindInsert:
		return recognizeInsert(raw, l)
	case KindRemove:
		fields, ok := raw.Payload.(map[string]any)
		if !ok {
			return nil, false
		}
		name, ok := requiredString(fields, "name")
		if !ok || !l.nameWithin(name) {
			return nil, false
		}
		index, ok := l.requiredIndex(fields, "index")
		if !ok {
			return nil, false
		}
		return Remove{Name: name, Index: index}, true
	case KindReorder:
		fields, ok := raw.Payload.(map[string]any)
		if !ok {
			return nil, false
		}
		name, ok := requiredString(fields, "name")
		if !ok || !l.nameWithin(name) {
			return nil, false
		}
		from, ok := l.requiredIndex(fields, "from")
		if !ok {
			return nil, false
		}
		to, ok := l.requiredIndex(fields, "to")
		if !ok {
			return nil, false
		}
		return Reorder{Name: name, From: from, To: to}, true
	default:
		return nil, false
	}
}

// Parse is Recognize(Deserialize(text)).
func Parse(text string, opts ...Option) (Intent, bool) {
	if text == "" {
		return nil, false
	}
	return Recognize(Deserialize(text), opts...)
}

func recognizeReset(raw Raw) (Intent, bool) {
	if !raw.HasPayload || raw.Payload == nil {
		return Reset{}, true
	}
	fields, ok := raw.Payload.(map[string]any)
	if !ok {
		return nil, false
	}
	value, present := fields["defaultValue"]
	if !present {
		return Reset{}, true
	}
	if value == nil {
		return Reset{HasDefault: true}, true
	}
	defaults, ok := value.(map[string]any)
	if !ok {
		return nil, false
	}
	return Reset{DefaultValue: defaults, HasDefault: true}, true
}

func recognizeUpdate(raw Raw, l limits) (Intent, bool) {
	fields, ok := raw.Payload.(map[string]any)
	if !ok {
		return nil, false
	}
	name, ok := optionalString(fields, "name")
	if !ok || !l.nameWithin(name) {
		return nil, false
	}
	index, ok := l.optionalIndex(fields, "index")
	if !ok {
		return nil, false
	}
	return Update{Name: name, Index: index, Value: fields["value"]}, true
}

func recognizeInsert(raw Raw, l limits) (Intent, bool) {
	fields, ok := raw.Payload.(map[string]any)
	if !ok {
		return nil, false
	}
	name, ok := requiredString(fields, "name")
	if !ok || !l.nameWithin(name) {
		return nil, false
	}
	index, ok := l.optionalIndex(fields, "index")
	if !ok {
		return nil, false
	}
	return Insert{Name: name, Index: index, DefaultValue: fields["defaultValue"]}, true
}

func requiredString(fields map[string]any, key string) (string, bool) {
	value, ok := fields[key].(string)
	return value, ok
}

func optionalString(fields map[string]any, key string) (string, bool) {
	value, present := fields[key]
	if !present || value == nil {
		return "", true
	}
	text, ok := value.(string)
	return text, ok
}

func (l limits) requiredIndex(fields map[string]any, key string) (int, bool) {
	value, present := fields[key]
	if !present {
		return 0, false
	}
	return asIndex(value, l.maxIndex)
}

func (l limits) optionalIndex(fields map[string]any, key string) (*int, bool) {
	value, present := fields[key]
	if !present || value == nil {
		return nil, true
	}
	index, ok := asIndex(value, l.maxIndex)
	if !ok {
		return nil, false
	}
	return &index, true
}

// asIndex accepts whole numbers in [0, limit] as produced by encoding/json.
func asIndex(value any, limit int) (int, bool) {
	switch typed := value.(type) {
	case float64:
		if typed < 0 || typed != math.Trunc(typed) || typed > float64(limit) {
			return 0, false
		}
		return int(typed), true
	case int:
		return typed, typed >= 0 && typed <= limit
	case json.Number:
		n, err := typed.Int64()
		if err != nil || n < 0 || n > int64(limit) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
