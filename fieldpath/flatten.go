package fieldpath

import "sort"

// Field is one leaf of a flattened tree.
type Field struct {
	Name  string
	Value any
}

// Flatten walks tree and returns its leaves keyed by field name, with mapping
// keys visited in sorted order. Empty containers are reported as leaves so the
// result can be folded back into an equivalent tree.
func Flatten(tree any) []Field {
	fields := flattenInto(nil, tree, "")
	if fields == nil {
		return []Field{}
	}
	return fields
}

func flattenInto(fields []Field, value any, prefix string) []Field {
	switch typed := value.(type) {
	case map[string]any:
		if len(typed) == 0 {
			if prefix == "" {
				return fields
			}
			return append(fields, Field{Name: prefix, Value: typed})
		}
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fields = flattenInto(fields, typed[key], AppendKey(prefix, key))
		}
		return fields
	case []any:
		if len(typed) == 0 {
			return append(fields, Field{Name: prefix, Value: typed})
		}
		for i, item := range typed {
			fields = flattenInto(fields, item, AppendIndex(prefix, i))
		}
		return fields
	default:
		if prefix == "" {
			return fields
		}
		return append(fields, Field{Name: prefix, Value: typed})
	}
}

// Names returns the field names of a flattened tree in walk order.
func Names(tree any) []string {
	fields := Flatten(tree)
	names := make([]string, len(fields))
	for i, field := range fields {
		names[i] = field.Name
	}
	return names
}
