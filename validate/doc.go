// Package validate decides what is wrong with a form submission.
//
// A Validator receives the submitted payload and the recognized intent and
// returns a formstate.ErrorTree. Validators may answer immediately or hand back
// a pending Result whose outcome arrives later, for checks such as "is this
// email already taken" that need a round trip.
//
// Rules covers the common case of declarative checks written in an expression
// language. expr is the default engine; cel and, with the js_eval build tag,
// js are also available:
//
//	rules, err := validate.NewRules([]validate.Rule{
//		{Field: "title", Expr: `present(value)`, Message: "Title is required"},
//		{Field: "tasks[].title", Expr: `length(value) <= 80`, Message: "Too long"},
//	})
//
// Struct decodes the payload into a Go struct and lets the struct report its own
// errors, and Chain combines any number of validators into one.
package validate
