package validate

import (
	"context"
	"sync"

	formstate "github.com/goliatone/go-formstate"
	"github.com/goliatone/go-formstate/intent"
)

// Input is what a validator receives for one submission.
type Input struct {
	Payload map[string]any
	// Intent is the recognized intent, nil for a plain submit.
	Intent intent.Intent
}

// Outcome is the resolution of a pending check.
type Outcome[E any] struct {
	Error *formstate.ErrorTree[E]
	Err   error
}

// Result is what a validator returns: an immediate error tree, plus an
// optional channel that delivers exactly one Outcome later. When Pending is
// set, its Outcome replaces Error as the verdict for the submission.
type Result[E any] struct {
	Error   *formstate.ErrorTree[E]
	Pending <-chan Outcome[E]
}

// Immediate wraps a synchronous verdict.
func Immediate[E any](errs *formstate.ErrorTree[E]) Result[E] {
	return Result[E]{Error: errs}
}

// IsPending reports whether a later outcome is expected.
func (r Result[E]) IsPending() bool {
	return r.Pending != nil
}

// Wait blocks until the pending outcome arrives or ctx is done. A result
// without a pending half returns its immediate error tree.
func (r Result[E]) Wait(ctx context.Context) Outcome[E] {
	if r.Pending == nil {
		return Outcome[E]{Error: r.Error}
	}
	select {
	case outcome, ok := <-r.Pending:
		if !ok {
			return Outcome[E]{Error: r.Error}
		}
		return outcome
	case <-ctx.Done():
		return Outcome[E]{Err: ctx.Err()}
	}
}

// Validator decides what is invalid about a submission.
type Validator[E any] interface {
	Validate(ctx context.Context, in Input) (Result[E], error)
}

// Func adapts a synchronous function to Validator.
type Func[E any] func(ctx context.Context, in Input) (*formstate.ErrorTree[E], error)

// Validate implements Validator.
func (f Func[E]) Validate(ctx context.Context, in Input) (Result[E], error) {
	errs, err := f(ctx, in)
	if err != nil {
		return Result[E]{}, err
	}
	return Immediate(errs), nil
}

// Async runs check on its own goroutine and returns at once with a pending
// result. The goroutine always delivers, so a caller that stops listening
// does not leak it.
func Async[E any](check Func[E]) Validator[E] {
	return asyncValidator[E]{check: check}
}

type asyncValidator[E any] struct {
	check Func[E]
}

func (v asyncValidator[E]) Validate(ctx context.Context, in Input) (Result[E], error) {
	pending := make(chan Outcome[E], 1)
	go func() {
		defer close(pending)
		errs, err := v.check(ctx, in)
		pending <- Outcome[E]{Error: errs, Err: err}
	}()
	return Result[E]{Pending: pending}, nil
}

// Chain runs validators in order and merges their verdicts. Immediate errors
// are merged right away; when any validator is pending the chain is pending
// and its outcome carries every validator's final errors.
func Chain[E any](validators ...Validator[E]) Validator[E] {
	return chain[E](validators)
}

type chain[E any] []Validator[E]

func (c chain[E]) Validate(ctx context.Context, in Input) (Result[E], error) {
	results := make([]Result[E], 0, len(c))
	var immediate []*formstate.ErrorTree[E]
	pending := false
	for _, validator := range c {
		if validator == nil {
			continue
		}
		result, err := validator.Validate(ctx, in)
		if err != nil {
			return Result[E]{}, err
		}
		results = append(results, result)
		immediate = append(immediate, result.Error)
		pending = pending || result.IsPending()
	}

	merged := formstate.MergeErrors(immediate...)
	if !pending {
		return Immediate(merged), nil
	}

	out := make(chan Outcome[E], 1)
	go func() {
		defer close(out)
		outcomes := make([]Outcome[E], len(results))
		var wg sync.WaitGroup
		for i, result := range results {
			wg.Add(1)
			go func(i int, result Result[E]) {
				defer wg.Done()
				outcomes[i] = result.Wait(ctx)
			}(i, result)
		}
		wg.Wait()

		final := make([]*formstate.ErrorTree[E], 0, len(outcomes))
		for _, outcome := range outcomes {
			if outcome.Err != nil {
				out <- Outcome[E]{Err: outcome.Err}
				return
			}
			final = append(final, outcome.Error)
		}
		out <- Outcome[E]{Error: formstate.MergeErrors(final...)}
	}()
	return Result[E]{Error: merged, Pending: out}, nil
}
