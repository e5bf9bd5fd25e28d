//go:build !js_eval

package validate

import (
	"errors"
	"testing"
)

func TestJSEngineRequiresBuildTag(t *testing.T) {
	if NewJSEvaluator() != nil {
		t.Fatalf("js evaluator should be nil without the js_eval tag")
	}
	if _, err := NewRules(nil, WithEngine("js")); !errors.Is(err, ErrNoEvaluator) {
		t.Fatalf("expected ErrNoEvaluator, got %v", err)
	}
}
