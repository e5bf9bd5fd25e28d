package validate

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

// builtins are registered on every rule set built by NewRules. A custom
// function with the same name takes precedence.
var builtins = map[string]Function{
	"blank":    blank,
	"present":  present,
	"length":   length,
	"regex":    regex,
	"is_email": isEmail,
}

func registerBuiltins(registry *FunctionRegistry) {
	for name, fn := range builtins {
		if !registry.Has(name) {
			_ = registry.Register(name, fn)
		}
	}
}

// BuiltinFunctions returns a registry holding the form helpers available to
// rules: blank(v), present(v), length(v), regex(v, pattern) and is_email(v).
func BuiltinFunctions() *FunctionRegistry {
	registry := NewFunctionRegistry()
	registerBuiltins(registry)
	return registry
}

func isBlank(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	case []any:
		return len(typed) == 0
	case map[string]any:
		return len(typed) == 0
	default:
		return false
	}
}

func blank(args ...any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("blank expects 1 argument, got %d", len(args))
	}
	return isBlank(args[0]), nil
}

func present(args ...any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("present expects 1 argument, got %d", len(args))
	}
	return !isBlank(args[0]), nil
}

func length(args ...any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("length expects 1 argument, got %d", len(args))
	}
	switch typed := args[0].(type) {
	case nil:
		return 0, nil
	case string:
		return utf8.RuneCountInString(typed), nil
	case []any:
		return len(typed), nil
	case map[string]any:
		return len(typed), nil
	default:
		return nil, fmt.Errorf("length: unsupported type %T", args[0])
	}
}

func regex(args ...any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("regex expects 2 arguments, got %d", len(args))
	}
	pattern, ok := args[1].(string)
	if !ok {
		return nil, fmt.Errorf("regex: pattern must be a string, got %T", args[1])
	}
	text, _ := args[0].(string)
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("regex: %w", err)
	}
	return re.MatchString(text), nil
}

func isEmail(args ...any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("is_email expects 1 argument, got %d", len(args))
	}
	text, _ := args[0].(string)
	if text == "" {
		return false, nil
	}
	addr, err := mail.ParseAddress(text)
	return err == nil && addr.Address == text, nil
}
