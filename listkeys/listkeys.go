// Package listkeys keeps stable identity keys for the items of list fields.
//
// Keys are independent of item values: they are derived deterministically
// from the form's reset key until a list is first edited, then maintained by
// splicing alongside the list itself. Every index shift is expressed as a
// path remap so the same rewrite can be applied to the key map and to the
// touched-field set.
package listkeys

import (
	"github.com/goliatone/go-formstate/fieldpath"
	"github.com/goliatone/go-formstate/internal/splice"
)

// Map associates a list field name with one key per current item.
type Map map[string][]string

// Defaults derives the keys for the list at name when no explicit record
// exists: "<resetKey>-<name>[<i>]" for every item. The result is
// deterministic so recomputing without prior state reproduces the same keys.
func Defaults(resetKey string, tree any, name string) []string {
	value, _ := fieldpath.GetString(tree, name)
	list, _ := value.([]any)
	keys := make([]string, len(list))
	for i := range list {
		keys[i] = resetKey + "-" + fieldpath.AppendIndex(name, i)
	}
	return keys
}

// Current returns the recorded keys for name when they still match the list
// length in tree, and the derived defaults otherwise.
func Current(m Map, resetKey string, tree any, name string) []string {
	value, _ := fieldpath.GetString(tree, name)
	list, _ := value.([]any)
	if keys, ok := m[name]; ok && len(keys) == len(list) {
		return keys
	}
	return Defaults(resetKey, tree, name)
}

// IndexMapper maps an item index to its new position. keep=false drops the
// item.
type IndexMapper func(index int) (next int, keep bool)

// PathRemapper rewrites a field name. keep=false drops the field.
type PathRemapper func(path string) (next string, keep bool)

// IndexRemap returns a PathRemapper that rewrites every path of the form
// name[i]... by passing i through mapper. Other paths, including name itself,
// are returned unchanged.
func IndexRemap(name string, mapper IndexMapper) PathRemapper {
	base := fieldpath.Parse(name)
	return func(path string) (string, bool) {
		parsed := fieldpath.Parse(path)
		if len(parsed) <= len(base) || !parsed.HasPrefix(base) {
			return path, true
		}
		segment := parsed[len(base)]
		if !segment.IsIndex() {
			return path, true
		}
		next, keep := mapper(segment.Index())
		if !keep {
			return "", false
		}
		if next == segment.Index() {
			return path, true
		}
		out := make(fieldpath.Path, 0, len(parsed))
		out = append(out, base...)
		out = append(out, fieldpath.Index(next))
		out = append(out, parsed[len(base)+1:]...)
		return out.String(), true
	}
}

// InsertMapper shifts indices at or after at up by one.
func InsertMapper(at int) IndexMapper {
	return func(index int) (int, bool) {
		if index >= at {
			return index + 1, true
		}
		return index, true
	}
}

// RemoveMapper drops index at and shifts the following indices down by one.
func RemoveMapper(at int) IndexMapper {
	return func(index int) (int, bool) {
		switch {
		case index == at:
			return 0, false
		case index > at:
			return index - 1, true
		default:
			return index, true
		}
	}
}

// ReorderMapper moves from to to and closes the gap between them.
func ReorderMapper(from, to int) IndexMapper {
	return func(index int) (int, bool) {
		switch {
		case index == from:
			return to, true
		case from < to && index > from && index <= to:
			return index - 1, true
		case from > to && index >= to && index < from:
			return index + 1, true
		default:
			return index, true
		}
	}
}

// RemapPaths applies remap to every path, dropping rejected paths and
// duplicates. The input slice is returned when nothing changes.
func RemapPaths(paths []string, remap PathRemapper) []string {
	out := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	changed := false
	for _, path := range paths {
		next, keep := remap(path)
		if !keep {
			changed = true
			continue
		}
		if _, dup := seen[next]; dup {
			changed = true
			continue
		}
		if next != path {
			changed = true
		}
		seen[next] = struct{}{}
		out = append(out, next)
	}
	if !changed {
		return paths
	}
	return out
}

// RemapKeys applies remap to the field names of m. Entries for nested lists
// inside moved items follow their item; entries inside dropped items are
// removed.
func RemapKeys(m Map, remap PathRemapper) Map {
	out := make(Map, len(m))
	for name, keys := range m {
		next, keep := remap(name)
		if !keep {
			continue
		}
		out[next] = keys
	}
	return out
}

// DropUnder removes the entries for name and every list nested below it.
// Passing "" clears the map. m is returned as is when nothing matches.
func DropUnder(m Map, name string) Map {
	var out Map
	for field := range m {
		if !fieldpath.Within(field, name) {
			continue
		}
		if out == nil {
			out = make(Map, len(m))
			for k, v := range m {
				out[k] = v
			}
		}
		delete(out, field)
	}
	if out == nil {
		return m
	}
	return out
}

// Insert records a new key at index for the list at name. tree is the value
// before the insertion.
func Insert(m Map, resetKey string, tree any, name string, index int, key string) Map {
	keys := Current(m, resetKey, tree, name)
	if index > len(keys) {
		index = len(keys)
	}
	out := RemapKeys(m, IndexRemap(name, InsertMapper(index)))
	out[name] = splice.Insert(keys, index, key)
	return out
}

// Remove drops the key at index for the list at name. tree is the value before
// the removal. m is returned unchanged when index is out of range.
func Remove(m Map, resetKey string, tree any, name string, index int) Map {
	keys := Current(m, resetKey, tree, name)
	next, ok := splice.Remove(keys, index)
	if !ok {
		return m
	}
	out := RemapKeys(m, IndexRemap(name, RemoveMapper(index)))
	out[name] = next
	return out
}

// Reorder moves the key at from to to for the list at name. tree is the value
// before the move. m is returned unchanged when the move is a no-op.
func Reorder(m Map, resetKey string, tree any, name string, from, to int) Map {
	keys := Current(m, resetKey, tree, name)
	next, ok := splice.Move(keys, from, to)
	if !ok {
		return m
	}
	to = splice.MoveTarget(len(keys), to)
	out := RemapKeys(m, IndexRemap(name, ReorderMapper(from, to)))
	out[name] = next
	return out
}
