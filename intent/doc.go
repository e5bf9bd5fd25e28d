// Package intent implements the intent protocol: a closed set of form
// operations (reset, validate, update, insert, remove, reorder) that travel as
// a single string value next to the submitted fields, plus the pure function
// that applies one of them to a value tree.
//
// Wire format:
//
//	validate
//	validate("email")
//	insert({"name":"tasks","defaultValue":"New task"})
//
// Decoding never fails loudly. A payload that is not valid JSON is dropped and
// a payload with the wrong shape makes Recognize report ok=false, so the
// submission is handled as a plain submit.
package intent
