package validate

import (
	"fmt"
	"time"
)

// RuleContext carries the inputs of one rule evaluation.
type RuleContext struct {
	// Payload is the whole submitted value tree.
	Payload map[string]any
	// Field is the concrete field the rule is checked against, "" for
	// form-level rules.
	Field string
	// Value is the value stored at Field.
	Value any
	// Intent is the kind of the submitted intent, "" for a plain submit.
	Intent string
	Now    *time.Time
	Args   map[string]any
}

func (ctx RuleContext) withDefaultNow() RuleContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx RuleContext) withDefaultMaps() RuleContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Payload == nil {
		ctx.Payload = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) withDefaults() RuleContext {
	return ctx.withDefaultNow().withDefaultMaps()
}

func (ctx RuleContext) fieldLabel() string {
	if ctx.Field == "" {
		return "form"
	}
	return ctx.Field
}

// bindings returns the fixed variables every engine exposes.
func (ctx RuleContext) bindings() map[string]any {
	return map[string]any{
		"payload": ctx.Payload,
		"value":   ctx.Value,
		"field":   ctx.Field,
		"intent":  ctx.Intent,
		"now":     ctx.timestamp(),
		"args":    ctx.Args,
	}
}

// Evaluator executes rule expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

// ProgramCache stores compiled expression programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*validate.exprEvaluator":
		return "expr"
	case "*validate.celEvaluator":
		return "cel"
	case "*validate.jsEvaluator":
		return "js"
	default:
		return "custom"
	}
}
