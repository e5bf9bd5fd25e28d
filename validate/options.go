package validate

import (
	"fmt"
	"strings"
)

// Option configures a rule set.
type Option func(*config)

type config struct {
	evaluator    Evaluator
	engine       string
	programCache ProgramCache
	functions    *FunctionRegistry
	logger       EvaluatorLogger
	args         map[string]any
	onlyField    bool
}

func applyOptions(opts []Option) config {
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithEvaluator uses e for every rule, overriding WithEngine.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *config) {
		cfg.evaluator = e
	}
}

// WithEngine selects a built-in evaluator by name: "expr" (the default), "cel"
// or "js". The js engine requires the js_eval build tag.
func WithEngine(name string) Option {
	return func(cfg *config) {
		cfg.engine = strings.ToLower(name)
	}
}

// WithProgramCache shares compiled programs across rule sets.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *config) {
		cfg.programCache = cache
	}
}

// WithArgs exposes args to every rule as the `args` variable.
func WithArgs(args map[string]any) Option {
	return func(cfg *config) {
		cfg.args = args
	}
}

// WithFieldScope limits a `validate("name")` submission to the rules whose
// field lies within name. Other intents always run every rule.
func WithFieldScope() Option {
	return func(cfg *config) {
		cfg.onlyField = true
	}
}

func (cfg config) evaluatorLogger() EvaluatorLogger {
	if cfg.logger != nil {
		return cfg.logger
	}
	return noopEvaluatorLogger{}
}

func (cfg config) resolveEvaluator() (Evaluator, error) {
	if cfg.evaluator != nil {
		return cfg.evaluator, nil
	}
	registry := cfg.functions.Clone()
	if registry == nil {
		registry = NewFunctionRegistry()
	}
	registerBuiltins(registry)
	return NewEvaluator(cfg.engine, cfg.programCache, registry)
}

// NewEvaluator builds a built-in evaluator by engine name.
func NewEvaluator(engine string, cache ProgramCache, registry *FunctionRegistry) (Evaluator, error) {
	switch engine {
	case "", "expr":
		return NewExprEvaluator(ExprWithProgramCache(cache), ExprWithFunctionRegistry(registry)), nil
	case "cel":
		return NewCELEvaluator(CELWithProgramCache(cache), CELWithFunctionRegistry(registry)), nil
	case "js":
		if !jsEvaluatorAvailable() {
			return nil, fmt.Errorf("%w: js engine requires the js_eval build tag", ErrNoEvaluator)
		}
		return NewJSEvaluator(JSWithProgramCache(cache), JSWithFunctionRegistry(registry)), nil
	default:
		return nil, fmt.Errorf("%w: unknown engine %q", ErrNoEvaluator, engine)
	}
}
