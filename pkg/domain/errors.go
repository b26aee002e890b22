package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrReentrantTransition is returned when a transition is fired on an
// instance from inside one of that instance's own hooks or effects.
var ErrReentrantTransition = errors.New("transition fired while another transition is running on the same instance")

// ErrUnknownTransition is returned when configuration refers to a transition
// the workflow does not declare.
var ErrUnknownTransition = errors.New("unknown transition")

// ErrWorkflowNotFound is returned when a workflow name is not loaded.
var ErrWorkflowNotFound = errors.New("workflow not found")

// ErrReportNotFound is returned when a report id is not registered.
var ErrReportNotFound = errors.New("report not found")

// InvalidTransitionError is returned when a transition is not available from
// the current state, or is not declared at all.
type InvalidTransitionError struct {
	Transition string
	State      string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transition %q isn't available from state %q", e.Transition, e.State)
}

// GuardFailedError is returned when a guard of an all-of policy evaluates to
// false. Its message is the guard's configured message.
type GuardFailedError struct {
	Transition string
	Guard      string
	Message    string
}

func (e *GuardFailedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("check %q failed for transition %q", e.Guard, e.Transition)
}

// GuardFailure is one failed guard of an any-of policy.
type GuardFailure struct {
	Guard   string `json:"check"`
	Message string `json:"message,omitempty"`
}

// AllGuardsFailedError is returned when every guard of an any-of policy
// evaluates to false.
type AllGuardsFailedError struct {
	Transition string
	Guards     []string
	Failures   []GuardFailure
}

func (e *AllGuardsFailedError) Error() string {
	return fmt.Sprintf("all checks failed for %s", e.Transition)
}

// UnknownGuardError is returned when a policy names a guard that is not part
// of the entity's guard set. It signals a configuration error.
type UnknownGuardError struct {
	Name string
}

func (e *UnknownGuardError) Error() string {
	return fmt.Sprintf("unknown check %q", e.Name)
}

// GuardEvaluationError is returned when a guard expression fails at runtime,
// for instance when it yields a non-boolean value.
type GuardEvaluationError struct {
	Guard string
	Err   error
}

func (e *GuardEvaluationError) Error() string {
	return fmt.Sprintf("check %q: %v", e.Guard, e.Err)
}

func (e *GuardEvaluationError) Unwrap() error {
	return e.Err
}

// DefinitionError reports every violation found while building a workflow.
type DefinitionError struct {
	Workflow string
	Problems []string
}

func (e *DefinitionError) Error() string {
	if len(e.Problems) == 1 {
		return fmt.Sprintf("workflow %q: %s", e.Workflow, e.Problems[0])
	}
	return fmt.Sprintf("workflow %q: %d problems:\n  - %s", e.Workflow, len(e.Problems), strings.Join(e.Problems, "\n  - "))
}

// SpecParseError reports a malformed serialized specification.
// Workflow is empty for document-level errors; Field is empty when the
// problem is not tied to a single field.
type SpecParseError struct {
	Workflow string
	Field    string
	Reason   string
}

func (e *SpecParseError) Error() string {
	var b strings.Builder
	b.WriteString("spec")
	if e.Workflow != "" {
		fmt.Fprintf(&b, " %q", e.Workflow)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " field %q", e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}
