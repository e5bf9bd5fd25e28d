package intent

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-formstate/fieldpath"
	"github.com/goliatone/go-formstate/internal/splice"
)

var (
	// ErrNotAList indicates a list intent addressed a value that is not a list.
	ErrNotAList = errors.New("intent: target is not a list")
	// ErrInvalidCombination indicates an update carrying an index but no list
	// name.
	ErrInvalidCombination = fmt.Errorf("%w: index given without a list name", ErrNotAList)
)

// Apply resolves in against tree and returns the intended value. The input is
// never mutated and every branch outside the addressed path is shared with the
// result. A nil result (with a nil error) is the full-reset signal: the caller
// should reinitialise from its own defaults. A nil intent returns tree as is.
// Writing further than the maximum index past the end of a list fails with
// fieldpath.ErrIndexOutOfRange.
func Apply(tree map[string]any, in Intent, opts ...Option) (map[string]any, error) {
	if tree == nil {
		tree = map[string]any{}
	}
	gap := fieldpath.WithMaxGap(newLimits(opts).maxIndex)

	switch typed := in.(type) {
	case nil:
		return tree, nil
	case Reset:
		if !typed.HasDefault {
			return nil, nil
		}
		if typed.DefaultValue == nil {
			return map[string]any{}, nil
		}
		return fieldpath.Clone(typed.DefaultValue), nil
	case Validate:
		return tree, nil
	case Update:
		return applyUpdate(tree, typed, gap)
	case Insert:
		list, err := listAt(tree, typed.Name)
		if err != nil {
			return nil, err
		}
		index := splice.InsertIndex(len(list), typed.Index)
		next := splice.Insert(list, index, fieldpath.Clone(typed.DefaultValue))
		return fieldpath.SetString(tree, typed.Name, next, gap)
	case Remove:
		list, err := listAt(tree, typed.Name)
		if err != nil {
			return nil, err
		}
		next, changed := splice.Remove(list, typed.Index)
		if !changed {
			return tree, nil
		}
		return fieldpath.SetString(tree, typed.Name, next, gap)
	case Reorder:
		list, err := listAt(tree, typed.Name)
		if err != nil {
			return nil, err
		}
		next, changed := splice.Move(list, typed.From, typed.To)
		if !changed {
			return tree, nil
		}
		return fieldpath.SetString(tree, typed.Name, next, gap)
	default:
		return tree, nil
	}
}

func applyUpdate(tree map[string]any, update Update, gap fieldpath.SetOption) (map[string]any, error) {
	if update.Name == "" {
		if update.Index != nil {
			return nil, ErrInvalidCombination
		}
		if update.Value == nil {
			return map[string]any{}, nil
		}
		return fieldpath.Set(tree, nil, fieldpath.Clone(update.Value))
	}
	return fieldpath.SetString(tree, update.Target(), fieldpath.Clone(update.Value), gap)
}

// listAt returns the list stored at name. A missing or nil value is an empty
// list; anything else that is not a list is ErrNotAList.
func listAt(tree map[string]any, name string) ([]any, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: list name is required", ErrNotAList)
	}
	value, ok := fieldpath.GetString(tree, name)
	if !ok || value == nil {
		return nil, nil
	}
	list, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q holds %T", ErrNotAList, name, value)
	}
	return list, nil
}
