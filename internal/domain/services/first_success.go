package services

import (
	"context"
	"errors"
	"fmt"
)

// ErrSkip marks a candidate that does not apply. Skipped candidates are not counted as failures.
var ErrSkip = errors.New("candidate skipped")

// Candidate is one step of an ordered fallback chain
type Candidate[T any] struct {
	Name string
	Try  func(ctx context.Context) (T, error)
}

// Attempt records the outcome of a tried candidate
type Attempt struct {
	Name    string
	Err     error
	Skipped bool
}

// FirstSuccess tries candidates in order and returns the first result without error.
// Attempts lists every candidate that was tried, in order, including the winner.
// When nothing succeeds the returned error joins all candidate failures.
func FirstSuccess[T any](ctx context.Context, candidates []Candidate[T]) (T, []Attempt, error) {
	var zero T
	attempts := make([]Attempt, 0, len(candidates))
	var failures []error

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return zero, attempts, err
		}

		result, err := c.Try(ctx)
		if err == nil {
			attempts = append(attempts, Attempt{Name: c.Name})
			return result, attempts, nil
		}
		if errors.Is(err, ErrSkip) {
			attempts = append(attempts, Attempt{Name: c.Name, Skipped: true})
			continue
		}

		attempts = append(attempts, Attempt{Name: c.Name, Err: err})
		failures = append(failures, fmt.Errorf("%s: %w", c.Name, err))
	}

	if len(failures) == 0 {
		return zero, attempts, ErrSkip
	}
	return zero, attempts, errors.Join(failures...)
}

// AttemptedNames returns the names of candidates that were actually tried (not skipped)
func AttemptedNames(attempts []Attempt) []string {
	names := make([]string, 0, len(attempts))
	for _, a := range attempts {
		if !a.Skipped {
			names = append(names, a.Name)
		}
	}
	return names
}
