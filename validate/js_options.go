package validate

// defaultJSCallStack bounds recursion inside a rule so a runaway expression
// fails instead of exhausting the goroutine stack.
const defaultJSCallStack = 256

type jsOptions struct {
	cache     ProgramCache
	registry  *FunctionRegistry
	callStack int
}

// JSEvaluatorOption configures the goja-backed evaluator.
type JSEvaluatorOption func(*jsOptions)

// JSWithProgramCache reuses compiled goja programs through cache.
func JSWithProgramCache(cache ProgramCache) JSEvaluatorOption {
	return func(o *jsOptions) {
		o.cache = cache
	}
}

// JSWithFunctionRegistry installs every function of registry as a global.
func JSWithFunctionRegistry(registry *FunctionRegistry) JSEvaluatorOption {
	return func(o *jsOptions) {
		o.registry = registry.Clone()
	}
}

// JSWithMaxCallStack caps the call depth of a single evaluation. Values below
// one keep the default.
func JSWithMaxCallStack(depth int) JSEvaluatorOption {
	return func(o *jsOptions) {
		if depth > 0 {
			o.callStack = depth
		}
	}
}

func newJSOptions(opts []JSEvaluatorOption) jsOptions {
	o := jsOptions{callStack: defaultJSCallStack}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
