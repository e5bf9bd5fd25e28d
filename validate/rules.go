package validate

import (
	"context"
	"fmt"
	"strings"
	"time"

	formstate "github.com/goliatone/go-formstate"
	"github.com/goliatone/go-formstate/fieldpath"
	"github.com/goliatone/go-formstate/intent"
)

// Rule is one check expressed in the configured rule language. The expression
// must evaluate to true for valid input.
//
// Field names the field the message is reported against; "" reports a
// form-level error. A "[]" segment ("tasks[].title") expands to every item of
// the list, and the rule runs once per concrete field.
type Rule struct {
	Field   string `yaml:"field" json:"field"`
	Expr    string `yaml:"expr" json:"expr"`
	Message string `yaml:"message" json:"message"`
}

type compiledRule struct {
	Rule
	program CompiledRule
}

// Rules validates submissions against a fixed list of rules. It is safe for
// concurrent use.
type Rules struct {
	rules     []compiledRule
	engine    string
	logger    EvaluatorLogger
	args      map[string]any
	onlyField bool
}

// NewRules compiles rules with the configured evaluator, expr by default.
// Compilation errors are returned as *EvaluationError.
func NewRules(rules []Rule, opts ...Option) (*Rules, error) {
	cfg := applyOptions(opts)
	evaluator, err := cfg.resolveEvaluator()
	if err != nil {
		return nil, err
	}

	compiled := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		if rule.Expr == "" {
			return nil, fmt.Errorf("%w: rule for %q", ErrEmptyExpression, rule.Field)
		}
		program, err := evaluator.Compile(rule.Expr)
		if err != nil {
			return nil, wrapEvaluationError(evaluatorEngineName(evaluator), rule.Expr, rule.Field, err)
		}
		compiled = append(compiled, compiledRule{Rule: rule, program: program})
	}

	return &Rules{
		rules:     compiled,
		engine:    evaluatorEngineName(evaluator),
		logger:    cfg.evaluatorLogger(),
		args:      cfg.args,
		onlyField: cfg.onlyField,
	}, nil
}

// Validate implements Validator. A failing rule appends its message to the
// field's errors; an evaluation failure aborts with an *EvaluationError.
func (r *Rules) Validate(ctx context.Context, in Input) (Result[string], error) {
	payload := in.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	kind := ""
	if in.Intent != nil {
		kind = string(in.Intent.Kind())
	}
	scope := ""
	if r.onlyField {
		if v, ok := in.Intent.(intent.Validate); ok {
			scope = v.Name
		}
	}

	now := time.Now()
	var errs *formstate.ErrorTree[string]
	for _, rule := range r.rules {
		for _, field := range expandField(payload, rule.Field) {
			if err := ctx.Err(); err != nil {
				return Result[string]{}, err
			}
			if scope != "" && !fieldpath.Within(field, scope) {
				continue
			}
			value, _ := fieldpath.GetString(payload, field)
			passed, err := r.evaluate(rule, RuleContext{
				Payload: payload,
				Field:   field,
				Value:   value,
				Intent:  kind,
				Now:     &now,
				Args:    r.args,
			})
			if err != nil {
				return Result[string]{}, err
			}
			if !passed {
				errs = addError(errs, field, rule.Message)
			}
		}
	}
	return Immediate(errs), nil
}

func (r *Rules) evaluate(rule compiledRule, ctx RuleContext) (bool, error) {
	start := time.Now()
	raw, err := rule.program.Evaluate(ctx)
	passed, isBool := raw.(bool)
	if err == nil && !isBool {
		err = wrapEvaluationError(r.engine, rule.Expr, ctx.Field, fmt.Errorf("%w: got %T", ErrNonBoolean, raw))
	}
	err = wrapEvaluationError(r.engine, rule.Expr, ctx.fieldLabel(), err)
	r.logger.LogEvaluation(EvaluatorLogEvent{
		Engine:   r.engine,
		Expr:     rule.Expr,
		Field:    ctx.fieldLabel(),
		Passed:   passed,
		Duration: time.Since(start),
		Err:      err,
	})
	return passed, err
}

// Len returns the number of compiled rules.
func (r *Rules) Len() int {
	return len(r.rules)
}

// Engine names the evaluator the rules were compiled with.
func (r *Rules) Engine() string {
	return r.engine
}

// expandField resolves every "[]" segment of pattern against the lists in
// payload.
func expandField(payload map[string]any, pattern string) []string {
	head, tail, found := strings.Cut(pattern, "[]")
	if !found {
		return []string{pattern}
	}
	value, _ := fieldpath.GetString(payload, head)
	list, _ := value.([]any)
	var fields []string
	for i := range list {
		fields = append(fields, expandField(payload, fieldpath.AppendIndex(head, i)+tail)...)
	}
	return fields
}

func addError(errs *formstate.ErrorTree[string], field, message string) *formstate.ErrorTree[string] {
	if errs == nil {
		errs = &formstate.ErrorTree[string]{}
	}
	if field == "" {
		errs.FormErrors = append(errs.FormErrors, message)
		return errs
	}
	if errs.FieldErrors == nil {
		errs.FieldErrors = map[string][]string{}
	}
	errs.FieldErrors[field] = append(errs.FieldErrors[field], message)
	return errs
}
