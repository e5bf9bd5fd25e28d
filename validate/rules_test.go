package validate

import (
	"context"
	"errors"
	"reflect"
	"testing"

	formstate "github.com/goliatone/go-formstate"
	"github.com/goliatone/go-formstate/intent"
)

var evaluatorFactories = []struct {
	name string
	new  func(cache ProgramCache, registry *FunctionRegistry) Evaluator
}{
	{
		name: "expr",
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			opts := []ExprEvaluatorOption{}
			if cache != nil {
				opts = append(opts, ExprWithProgramCache(cache))
			}
			if registry != nil {
				opts = append(opts, ExprWithFunctionRegistry(registry))
			}
			return NewExprEvaluator(opts...)
		},
	},
	{
		name: "cel",
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			opts := []CELEvaluatorOption{}
			if cache != nil {
				opts = append(opts, CELWithProgramCache(cache))
			}
			if registry != nil {
				opts = append(opts, CELWithFunctionRegistry(registry))
			}
			return NewCELEvaluator(opts...)
		},
	},
}

func taskPayload() map[string]any {
	return map[string]any{
		"title": "",
		"tasks": []any{
			map[string]any{"title": "Pack"},
			map[string]any{"title": ""},
		},
	}
}

func TestRulesReportFieldAndFormErrors(t *testing.T) {
	rules := []Rule{
		{Field: "title", Expr: `value != ""`, Message: "title is required"},
		{Field: "tasks[].title", Expr: `value != ""`, Message: "task title is required"},
		{Field: "", Expr: `intent != "insert"`, Message: "inserts are closed"},
	}

	for _, factory := range evaluatorFactories {
		factory := factory
		t.Run(factory.name, func(t *testing.T) {
			set, err := NewRules(rules, WithEvaluator(factory.new(nil, nil)))
			if err != nil {
				t.Fatalf("compile rules: %v", err)
			}
			if set.Engine() != factory.name {
				t.Fatalf("expected engine %q, got %q", factory.name, set.Engine())
			}

			result, err := set.Validate(context.Background(), Input{
				Payload: taskPayload(),
				Intent:  intent.Insert{Name: "tasks"},
			})
			if err != nil {
				t.Fatalf("validate: %v", err)
			}
			if result.IsPending() {
				t.Fatalf("rule sets are synchronous")
			}

			want := &formstate.ErrorTree[string]{
				FormErrors: []string{"inserts are closed"},
				FieldErrors: map[string][]string{
					"title":          {"title is required"},
					"tasks[1].title": {"task title is required"},
				},
			}
			if !reflect.DeepEqual(want, result.Error) {
				t.Fatalf("error tree mismatch:\nwant: %#v\n got: %#v", want, result.Error)
			}
		})
	}
}

func TestRulesPassingSubmissionHasNoErrors(t *testing.T) {
	for _, factory := range evaluatorFactories {
		factory := factory
		t.Run(factory.name, func(t *testing.T) {
			set, err := NewRules([]Rule{
				{Field: "title", Expr: `payload.title != ""`, Message: "required"},
			}, WithEvaluator(factory.new(nil, nil)))
			if err != nil {
				t.Fatalf("compile rules: %v", err)
			}
			result, err := set.Validate(context.Background(), Input{
				Payload: map[string]any{"title": "Trip"},
			})
			if err != nil {
				t.Fatalf("validate: %v", err)
			}
			if result.Error != nil {
				t.Fatalf("expected nil error tree, got %#v", result.Error)
			}
		})
	}
}

func TestRulesFieldScope(t *testing.T) {
	set, err := NewRules([]Rule{
		{Field: "title", Expr: `value != ""`, Message: "title is required"},
		{Field: "tasks[].title", Expr: `value != ""`, Message: "task title is required"},
		{Field: "", Expr: `false`, Message: "never valid"},
	}, WithFieldScope())
	if err != nil {
		t.Fatalf("compile rules: %v", err)
	}

	result, err := set.Validate(context.Background(), Input{
		Payload: taskPayload(),
		Intent:  intent.Validate{Name: "tasks"},
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	want := &formstate.ErrorTree[string]{
		FieldErrors: map[string][]string{"tasks[1].title": {"task title is required"}},
	}
	if !reflect.DeepEqual(want, result.Error) {
		t.Fatalf("scoped errors mismatch:\nwant: %#v\n got: %#v", want, result.Error)
	}

	result, err = set.Validate(context.Background(), Input{Payload: taskPayload()})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got := result.Error.FieldNames(); !reflect.DeepEqual([]string{"tasks[1].title", "title"}, got) {
		t.Fatalf("plain submit should run every rule, got fields %v", got)
	}
	if len(result.Error.FormErrors) != 1 {
		t.Fatalf("plain submit should run form rules, got %v", result.Error.FormErrors)
	}
}

func TestRulesNonBooleanResult(t *testing.T) {
	set, err := NewRules([]Rule{{Field: "title", Expr: `value`, Message: "m"}})
	if err != nil {
		t.Fatalf("compile rules: %v", err)
	}
	_, err = set.Validate(context.Background(), Input{Payload: map[string]any{"title": "x"}})
	if !errors.Is(err, ErrNonBoolean) {
		t.Fatalf("expected ErrNonBoolean, got %v", err)
	}
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", err)
	}
	if evalErr.Field != "title" || evalErr.Engine != "expr" {
		t.Fatalf("unexpected metadata: %#v", evalErr)
	}
}

func TestNewRulesCompileErrors(t *testing.T) {
	_, err := NewRules([]Rule{{Field: "title", Message: "m"}})
	if !errors.Is(err, ErrEmptyExpression) {
		t.Fatalf("expected ErrEmptyExpression, got %v", err)
	}

	for _, factory := range evaluatorFactories {
		factory := factory
		t.Run(factory.name, func(t *testing.T) {
			_, err := NewRules([]Rule{{Field: "title", Expr: `value ==`, Message: "m"}},
				WithEvaluator(factory.new(nil, nil)))
			var evalErr *EvaluationError
			if !errors.As(err, &evalErr) {
				t.Fatalf("expected EvaluationError, got %v", err)
			}
			if evalErr.Expr != "value ==" {
				t.Fatalf("expected expression metadata, got %q", evalErr.Expr)
			}
			if evalErr.Field != "title" {
				t.Fatalf("expected field metadata, got %q", evalErr.Field)
			}
		})
	}
}

func TestRulesProgramCache(t *testing.T) {
	for _, factory := range evaluatorFactories {
		factory := factory
		t.Run(factory.name, func(t *testing.T) {
			cache := &fakeProgramCache{}
			rules := []Rule{{Field: "title", Expr: `value != ""`, Message: "required"}}

			for i := 0; i < 3; i++ {
				if _, err := NewRules(rules, WithEngine(factory.name), WithProgramCache(cache)); err != nil {
					t.Fatalf("compile iteration %d: %v", i, err)
				}
			}
			if cache.misses != 1 {
				t.Fatalf("expected 1 miss, got %d", cache.misses)
			}
			if cache.hits != 2 {
				t.Fatalf("expected 2 hits, got %d", cache.hits)
			}
		})
	}
}

func TestMemoryCacheSharedAcrossRuleSets(t *testing.T) {
	cache := NewMemoryCache()
	rules := []Rule{{Field: "title", Expr: `value != ""`, Message: "required"}}
	if _, err := NewRules(rules, WithProgramCache(cache)); err != nil {
		t.Fatalf("compile rules: %v", err)
	}
	if _, ok := cache.Get(`value != ""`); !ok {
		t.Fatalf("expected compiled program in cache")
	}
}

func TestBuiltinFunctions(t *testing.T) {
	payload := map[string]any{
		"title": "Trip",
		"email": "not-an-email",
		"code":  "ABC",
		"notes": "",
		"tags":  []any{"a", "b", "c", "d"},
	}
	rules := []Rule{
		{Field: "title", Expr: `present(value)`, Message: "title present"},
		{Field: "notes", Expr: `!blank(value)`, Message: "notes required"},
		{Field: "email", Expr: `is_email(value)`, Message: "bad email"},
		{Field: "code", Expr: `regex(value, "^[a-z]+$")`, Message: "lowercase only"},
		{Field: "tags", Expr: `length(value) <= 3`, Message: "too many tags"},
	}
	set, err := NewRules(rules)
	if err != nil {
		t.Fatalf("compile rules: %v", err)
	}
	result, err := set.Validate(context.Background(), Input{Payload: payload})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	want := []string{"code", "email", "notes", "tags"}
	if got := result.Error.FieldNames(); !reflect.DeepEqual(want, got) {
		t.Fatalf("expected failing fields %v, got %v", want, got)
	}
}

func TestBuiltinFunctionsThroughCELCall(t *testing.T) {
	set, err := NewRules([]Rule{
		{Field: "title", Expr: `call("present", value)`, Message: "required"},
	}, WithEngine("cel"))
	if err != nil {
		t.Fatalf("compile rules: %v", err)
	}
	result, err := set.Validate(context.Background(), Input{Payload: map[string]any{"title": "  "}})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got := result.Error.ErrorsAt("title"); !reflect.DeepEqual([]string{"required"}, got) {
		t.Fatalf("expected blank title to fail, got %v", got)
	}
}

func TestCustomFunctionOverridesBuiltin(t *testing.T) {
	set, err := NewRules([]Rule{
		{Field: "title", Expr: `present(value)`, Message: "never present"},
	}, WithCustomFunction("present", func(args ...any) (any, error) {
		return false, nil
	}))
	if err != nil {
		t.Fatalf("compile rules: %v", err)
	}
	result, err := set.Validate(context.Background(), Input{Payload: map[string]any{"title": "x"}})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if result.Error.IsEmpty() {
		t.Fatalf("custom present should win over the builtin")
	}
}

func TestRulesArgs(t *testing.T) {
	set, err := NewRules([]Rule{
		{Field: "tags", Expr: `length(value) <= args.max`, Message: "too many"},
	}, WithArgs(map[string]any{"max": 1}))
	if err != nil {
		t.Fatalf("compile rules: %v", err)
	}
	result, err := set.Validate(context.Background(), Input{Payload: map[string]any{"tags": []any{"a", "b"}}})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got := result.Error.ErrorsAt("tags"); len(got) != 1 {
		t.Fatalf("expected args.max to bound tags, got %v", got)
	}
}

func TestRulesLogEvaluations(t *testing.T) {
	var events []EvaluatorLogEvent
	set, err := NewRules([]Rule{
		{Field: "title", Expr: `value != ""`, Message: "required"},
		{Expr: `true`, Message: "form"},
	}, WithEvaluatorLogger(EvaluatorLoggerFunc(func(event EvaluatorLogEvent) {
		events = append(events, event)
	})))
	if err != nil {
		t.Fatalf("compile rules: %v", err)
	}
	if _, err := set.Validate(context.Background(), Input{Payload: map[string]any{"title": ""}}); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Field != "title" || events[0].Passed {
		t.Fatalf("unexpected first event: %#v", events[0])
	}
	if events[1].Field != "form" || !events[1].Passed || events[1].Engine != "expr" {
		t.Fatalf("unexpected second event: %#v", events[1])
	}
}

func TestRulesHonourCancelledContext(t *testing.T) {
	set, err := NewRules([]Rule{{Field: "title", Expr: `true`, Message: "m"}})
	if err != nil {
		t.Fatalf("compile rules: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := set.Validate(ctx, Input{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestExpandField(t *testing.T) {
	payload := map[string]any{
		"groups": []any{
			map[string]any{"tasks": []any{"a", "b"}},
			map[string]any{"tasks": []any{"c"}},
			map[string]any{},
		},
	}
	cases := []struct {
		pattern string
		want    []string
	}{
		{"title", []string{"title"}},
		{"groups[].tasks[]", []string{"groups[0].tasks[0]", "groups[0].tasks[1]", "groups[1].tasks[0]"}},
		{"groups[].tasks", []string{"groups[0].tasks", "groups[1].tasks", "groups[2].tasks"}},
		{"missing[].title", nil},
	}
	for _, tc := range cases {
		if got := expandField(payload, tc.pattern); !reflect.DeepEqual(tc.want, got) {
			t.Fatalf("expandField(%q): want %v, got %v", tc.pattern, tc.want, got)
		}
	}
}

func TestNewEvaluatorUnknownEngine(t *testing.T) {
	if _, err := NewEvaluator("lua", nil, nil); !errors.Is(err, ErrNoEvaluator) {
		t.Fatalf("expected ErrNoEvaluator, got %v", err)
	}
	if _, err := NewRules(nil, WithEngine("lua")); !errors.Is(err, ErrNoEvaluator) {
		t.Fatalf("expected ErrNoEvaluator from NewRules, got %v", err)
	}
}

func TestWrapEvaluationErrorAugmentsExisting(t *testing.T) {
	base := errors.New("compile failure")
	existing := &EvaluationError{Engine: "expr", Err: base}

	err := wrapEvaluationError("cel", "value != \"\"", "title", existing)
	if !errors.Is(err, base) {
		t.Fatalf("expected base error to unwrap")
	}
	if existing.Engine != "expr" {
		t.Fatalf("existing engine should not be overwritten, got %q", existing.Engine)
	}
	if existing.Field != "title" {
		t.Fatalf("field should be filled, got %q", existing.Field)
	}
	if wrapEvaluationError("expr", "x", "y", nil) != nil {
		t.Fatalf("nil error should stay nil")
	}
}

type fakeProgramCache struct {
	store  map[string]any
	hits   int
	misses int
}

func (c *fakeProgramCache) Get(key string) (any, bool) {
	if c.store == nil {
		c.store = make(map[string]any)
	}
	value, ok := c.store[key]
	if ok {
		c.hits++
		return value, true
	}
	c.misses++
	return nil, false
}

func (c *fakeProgramCache) Set(key string, value any) {
	if c.store == nil {
		c.store = make(map[string]any)
	}
	c.store[key] = value
}
