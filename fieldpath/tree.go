package fieldpath

import (
	"errors"
	"fmt"
)

// ErrInvalidRootValue indicates an attempt to replace the root of a tree with
// something other than a mapping.
var ErrInvalidRootValue = errors.New("fieldpath: root value must be a mapping")

// ErrNegativeIndex indicates a path carrying an index below zero.
var ErrNegativeIndex = errors.New("fieldpath: index must not be negative")

// ErrIndexOutOfRange indicates an index too far past the end of its list.
var ErrIndexOutOfRange = errors.New("fieldpath: index out of range")

// DefaultMaxGap is how many positions past the end of a list Set may write
// when no WithMaxGap option is given.
const DefaultMaxGap = 1000

// SetOption configures Set.
type SetOption func(*setConfig)

type setConfig struct {
	maxGap int
}

// WithMaxGap bounds how far past the current end of a list an index may
// reach. Lists are dense, so every skipped position is allocated. Values
// below one keep DefaultMaxGap.
func WithMaxGap(gap int) SetOption {
	return func(cfg *setConfig) {
		if gap > 0 {
			cfg.maxGap = gap
		}
	}
}

// Get reads the value stored at path. Missing locations report ok=false; Get
// never panics on mismatched shapes.
func Get(tree any, path Path) (any, bool) {
	current := tree
	for _, segment := range path {
		if segment.isIndex {
			list, ok := current.([]any)
			if !ok || segment.index < 0 || segment.index >= len(list) {
				return nil, false
			}
			current = list[segment.index]
			continue
		}
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[segment.key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// GetString is Get for callers holding a textual field name.
func GetString(tree any, name string) (any, bool) {
	return Get(tree, Parse(name))
}

// Set returns a copy of tree with value stored at path. Only the containers
// along path are copied; every sibling branch keeps its identity. Missing
// intermediate containers are created from the shape of the next segment.
// An index more than the allowed gap past the end of its list fails with
// ErrIndexOutOfRange.
func Set(tree map[string]any, path Path, value any, opts ...SetOption) (map[string]any, error) {
	if len(path) == 0 {
		root, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: got %T", ErrInvalidRootValue, value)
		}
		return root, nil
	}
	if path[0].isIndex {
		return nil, fmt.Errorf("%w: path %q starts with an index", ErrInvalidRootValue, Format(path))
	}
	for _, segment := range path {
		if segment.isIndex && segment.index < 0 {
			return nil, fmt.Errorf("%w: %q", ErrNegativeIndex, Format(path))
		}
	}
	cfg := setConfig{maxGap: DefaultMaxGap}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	next, err := setIn(tree, path, value, cfg.maxGap)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, Format(path))
	}
	return next.(map[string]any), nil
}

func setIn(node any, path Path, value any, maxGap int) (any, error) {
	if len(path) == 0 {
		return value, nil
	}
	segment := path[0]
	if segment.isIndex {
		list, _ := node.([]any)
		size := len(list)
		if segment.index-size > maxGap {
			return nil, ErrIndexOutOfRange
		}
		if segment.index >= size {
			size = segment.index + 1
		}
		child, err := setIn(nil, path[1:], value, maxGap)
		if segment.index < len(list) {
			child, err = setIn(list[segment.index], path[1:], value, maxGap)
		}
		if err != nil {
			return nil, err
		}
		out := make([]any, size)
		copy(out, list)
		out[segment.index] = child
		return out, nil
	}

	current, _ := node.(map[string]any)
	child, err := setIn(current[segment.key], path[1:], value, maxGap)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(current)+1)
	for key, existing := range current {
		out[key] = existing
	}
	out[segment.key] = child
	return out, nil
}

// SetString is Set for callers holding a textual field name.
func SetString(tree map[string]any, name string, value any, opts ...SetOption) (map[string]any, error) {
	return Set(tree, Parse(name), value, opts...)
}
