// Package splice holds the list edits shared by intent resolution and list
// key bookkeeping, so values and keys always move the same way.
package splice

// Insert returns a copy of list with item placed at index. Indices past the end
// append.
func Insert[T any](list []T, index int, item T) []T {
	if index < 0 {
		index = 0
	}
	if index > len(list) {
		index = len(list)
	}
	out := make([]T, 0, len(list)+1)
	out = append(out, list[:index]...)
	out = append(out, item)
	return append(out, list[index:]...)
}

// Remove returns a copy of list without the item at index. ok is false, and
// list is returned unchanged, when index is out of range.
func Remove[T any](list []T, index int) ([]T, bool) {
	if index < 0 || index >= len(list) {
		return list, false
	}
	out := make([]T, 0, len(list)-1)
	out = append(out, list[:index]...)
	return append(out, list[index+1:]...), true
}

// Move returns a copy of list with the item at from relocated to to. A target
// past the end is clamped to the last position. ok is false when from is out
// of range or the move would not change anything.
func Move[T any](list []T, from, to int) ([]T, bool) {
	if from < 0 || from >= len(list) {
		return list, false
	}
	to = MoveTarget(len(list), to)
	if from == to {
		return list, false
	}
	item := list[from]
	rest, _ := Remove(list, from)
	return Insert(rest, to, item), true
}

// MoveTarget clamps a reorder destination to the valid range of a list of the
// given length.
func MoveTarget(length, to int) int {
	if to < 0 {
		return 0
	}
	if to > length-1 {
		return length - 1
	}
	return to
}

// InsertIndex resolves an optional insertion index against a list length.
func InsertIndex(length int, index *int) int {
	if index == nil || *index > length {
		return length
	}
	if *index < 0 {
		return 0
	}
	return *index
}
