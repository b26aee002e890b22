package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/aretw0/docflows/pkg/domain"
	"github.com/aretw0/docflows/pkg/loader"
	"github.com/aretw0/docflows/pkg/ports"
	"github.com/aretw0/docflows/pkg/report"
)

// Validation is the outcome of checking a spec source.
type Validation struct {
	Workflows []string
	Checks    []string
	Errors    []error
	Warnings  []string
}

// OK reports whether no error was found.
func (v Validation) OK() bool {
	return len(v.Errors) == 0
}

// Validate loads every workflow and check of src and cross-checks them.
// Unlike the engine it does not stop at the first broken workflow.
//
// Errors: documents that cannot be parsed, workflows that cannot be built,
// transitions naming checks that do not exist. Warnings: unreachable states,
// checks no transition uses, a missing workflows or checks document.
func Validate(ctx context.Context, src ports.SpecSource) Validation {
	var v Validation

	builtin := false
	workflows, err := loader.LoadWorkflows(ctx, src)
	switch {
	case errors.Is(err, ports.ErrNotConfigured):
		v.Warnings = append(v.Warnings, "no workflows document, the built-in report workflow applies")
		def := report.Workflow()
		workflows = map[string]*domain.Definition{def.Name(): def}
		builtin = true
	case err != nil:
		v.Errors = append(v.Errors, flatten(err)...)
	}

	checks, err := loader.LoadChecks(ctx, src)
	switch {
	case errors.Is(err, ports.ErrNotConfigured):
		v.Warnings = append(v.Warnings, "no checks document, the default checks apply")
		checks = report.DefaultChecks()
	case err != nil:
		v.Errors = append(v.Errors, err)
	}
	if checks != nil {
		v.Checks = checks.Names()
	}

	used := make(map[string]bool)
	for name := range workflows {
		v.Workflows = append(v.Workflows, name)
	}
	slices.Sort(v.Workflows)

	for _, name := range v.Workflows {
		def := workflows[name]
		for _, t := range def.Transitions() {
			for _, g := range t.Guard.Names {
				used[g] = true
				if checks == nil {
					continue
				}
				if _, err := checks.Lookup(g); err != nil {
					v.Errors = append(v.Errors, fmt.Errorf("workflow %q transition %q: %w", name, t.Name, err))
				}
			}
		}
		for _, s := range def.Unreachable() {
			v.Warnings = append(v.Warnings, fmt.Sprintf("workflow %q: state %q is unreachable", name, s))
		}
	}

	if checks != nil && len(workflows) > 0 {
		for _, name := range checks.Names() {
			if !used[name] && !(builtin && usedByDefaultPolicies(name)) {
				v.Warnings = append(v.Warnings, fmt.Sprintf("check %q is not used by any transition", name))
			}
		}
	}
	return v
}

func usedByDefaultPolicies(check string) bool {
	for _, p := range report.DefaultPolicies() {
		if slices.Contains(p.Names, check) {
			return true
		}
	}
	return false
}

// flatten splits the joined error of the loader into one error per workflow.
func flatten(err error) []error {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return joined.Unwrap()
	}
	return []error{err}
}
