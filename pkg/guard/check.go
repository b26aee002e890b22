package guard

import (
	"errors"
	"fmt"

	"github.com/aretw0/docflows/pkg/domain"
)

// Check evaluates policy against env on behalf of transition.
//
// An all-of policy stops at the first guard that evaluates to false and
// returns a *domain.GuardFailedError carrying that guard's message.
// An any-of policy evaluates every guard and returns a
// *domain.AllGuardsFailedError only when none passed.
// Unknown guard names and evaluation failures are returned as they occur,
// whatever the mode.
func Check(set *Set, transition string, policy domain.GuardPolicy, env map[string]any) error {
	if policy.IsZero() {
		return nil
	}

	switch policy.Mode {
	case domain.GuardAllOf, "":
		return checkAll(set, transition, policy.Names, env)
	case domain.GuardAnyOf:
		return checkAny(set, transition, policy.Names, env)
	default:
		return fmt.Errorf("transition %q: unknown guard mode %q", transition, policy.Mode)
	}
}

func checkAll(set *Set, transition string, names []string, env map[string]any) error {
	for _, name := range names {
		ok, g, err := evaluate(set, name, env)
		if err != nil {
			return err
		}
		if !ok {
			return &domain.GuardFailedError{Transition: transition, Guard: name, Message: g.Message()}
		}
	}
	return nil
}

func checkAny(set *Set, transition string, names []string, env map[string]any) error {
	var (
		passed   bool
		failures []domain.GuardFailure
	)
	for _, name := range names {
		ok, g, err := evaluate(set, name, env)
		if err != nil {
			return err
		}
		if ok {
			passed = true
			continue
		}
		failures = append(failures, domain.GuardFailure{Guard: name, Message: g.Message()})
	}
	if passed {
		return nil
	}
	return &domain.AllGuardsFailedError{
		Transition: transition,
		Guards:     append([]string(nil), names...),
		Failures:   failures,
	}
}

func evaluate(set *Set, name string, env map[string]any) (bool, Guard, error) {
	g, err := set.Lookup(name)
	if err != nil {
		return false, nil, err
	}
	ok, err := g.Evaluate(env)
	if err != nil {
		var evalErr *domain.GuardEvaluationError
		if errors.As(err, &evalErr) {
			return false, g, err
		}
		return false, g, &domain.GuardEvaluationError{Guard: name, Err: err}
	}
	return ok, g, nil
}
