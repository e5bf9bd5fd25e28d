// Package fieldpath addresses values inside nested form data.
//
// Field names follow the grammar used by HTML form controls: mapping keys are
// joined with ".", list indices are written as "[n]" after the segment they
// index (for example "tasks[0].title"). A tree is built from maps
// (map[string]any), lists ([]any) and scalars (string, *multipart.FileHeader
// or nil).
//
// Set never mutates its input: it copies only the containers along the
// addressed path, so untouched branches keep their identity and callers can
// detect "nothing changed here" with a cheap comparison.
package fieldpath
