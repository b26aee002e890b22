package loader

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/aretw0/docflows/internal/compiler"
	"github.com/aretw0/docflows/internal/dto"
	"github.com/aretw0/docflows/pkg/domain"
	"github.com/aretw0/docflows/pkg/ports"
	"github.com/mitchellh/mapstructure"
)

type (
	WorkflowSpec   = dto.WorkflowSpec
	StateSpec      = dto.StateSpec
	TransitionSpec = dto.TransitionSpec
)

// LoadWorkflows reads the workflows document of src and builds every workflow in it.
// See ParseWorkflows for the error contract.
func LoadWorkflows(ctx context.Context, src ports.SpecSource) (map[string]*domain.Definition, error) {
	doc, err := src.Workflows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflows: %w", err)
	}
	return ParseWorkflows(doc)
}

// ParseWorkflows builds every workflow of doc.
//
// Workflows are processed in name order. The returned map holds every
// workflow that could be built; the error joins one error per workflow that
// could not, each a *domain.SpecParseError or a *domain.DefinitionError.
// A document that is not a mapping yields a nil map.
func ParseWorkflows(doc ports.Document) (map[string]*domain.Definition, error) {
	raw, err := compiler.NewParser().Parse(doc)
	if err != nil {
		return nil, err
	}
	specs, ok := raw.(map[string]any)
	if !ok {
		return nil, &domain.SpecParseError{Reason: fmt.Sprintf("expected a mapping of workflow names to specs, got %s", kindOf(raw))}
	}

	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make(map[string]*domain.Definition, len(specs))
	var errs []error
	for _, name := range names {
		spec, err := DecodeWorkflow(name, specs[name])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		def, err := Build(name, spec)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out[name] = def
	}
	return out, errors.Join(errs...)
}

// Build is the workflow factory: it turns an in-memory spec into a definition.
func Build(name string, spec WorkflowSpec) (*domain.Definition, error) {
	states := make([]domain.State, len(spec.States))
	for i, s := range spec.States {
		states[i] = domain.State{Name: s.Name, Title: s.Title}
	}

	transitions := make([]domain.Transition, len(spec.Transitions))
	for i, t := range spec.Transitions {
		if len(t.AllOf) > 0 && len(t.AnyOf) > 0 {
			return nil, &domain.SpecParseError{
				Workflow: name,
				Field:    fmt.Sprintf("transitions[%d]", i),
				Reason:   "all_of and any_of are mutually exclusive",
			}
		}
		tr := domain.Transition{Name: t.Name, Sources: t.Sources, Target: t.Target}
		switch {
		case len(t.AllOf) > 0:
			tr.Guard = domain.AllOf(t.AllOf...)
		case len(t.AnyOf) > 0:
			tr.Guard = domain.AnyOf(t.AnyOf...)
		}
		transitions[i] = tr
	}

	return domain.NewDefinition(name, states, transitions, spec.InitialState)
}

// FromDefinition returns the spec that builds def.
func FromDefinition(def *domain.Definition) WorkflowSpec {
	spec := WorkflowSpec{InitialState: def.InitialState().Name}
	for _, s := range def.States() {
		spec.States = append(spec.States, StateSpec{Name: s.Name, Title: s.Title})
	}
	spec.Transitions = []TransitionSpec{}
	for _, t := range def.Transitions() {
		ts := TransitionSpec{Name: t.Name, Sources: t.Sources, Target: t.Target}
		switch t.Guard.Mode {
		case domain.GuardAllOf:
			ts.AllOf = t.Guard.Names
		case domain.GuardAnyOf:
			ts.AnyOf = t.Guard.Names
		}
		spec.Transitions = append(spec.Transitions, ts)
	}
	return spec
}

// DecodeWorkflow decodes the generic value of one workflow into a spec.
// Missing required keys, unknown keys and mistyped values are reported as
// *domain.SpecParseError.
func DecodeWorkflow(name string, raw any) (WorkflowSpec, error) {
	var spec WorkflowSpec
	if _, ok := raw.(map[string]any); !ok {
		return spec, &domain.SpecParseError{Workflow: name, Reason: fmt.Sprintf("expected a mapping, got %s", kindOf(raw))}
	}

	var md mapstructure.Metadata
	if err := decode(raw, &spec, &md); err != nil {
		return spec, decodeError(name, err)
	}

	slices.Sort(md.Unset)
	for _, field := range md.Unset {
		if isRequired(field) {
			return spec, &domain.SpecParseError{Workflow: name, Field: field, Reason: "required key is missing"}
		}
	}
	return spec, nil
}

func decode(input, output any, md *mapstructure.Metadata) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToSliceHook,
			stringToStateHook,
		),
		ErrorUnused: true,
		Metadata:    md,
		Result:      output,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

var (
	stringSliceType = reflect.TypeOf([]string(nil))
	stateSpecType   = reflect.TypeOf(StateSpec{})
)

// stringToSliceHook accepts a single string where a list of strings is expected.
func stringToSliceHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() == reflect.String && to == stringSliceType {
		return []string{data.(string)}, nil
	}
	return data, nil
}

// stringToStateHook accepts a bare state name where a state spec is expected.
func stringToStateHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() == reflect.String && to == stateSpecType {
		return map[string]any{"name": data}, nil
	}
	return data, nil
}

var requiredKeys = map[string][]string{
	"":            {"states", "transitions", "initial_state"},
	"states":      {"name"},
	"transitions": {"name", "sources", "target"},
}

var indexSuffix = regexp.MustCompile(`\[\d+\]$`)

// isRequired reports whether the unset field path, such as
// "transitions[2].target", names a required key.
func isRequired(path string) bool {
	parent, key := "", path
	if i := strings.LastIndex(path, "."); i >= 0 {
		parent, key = path[:i], path[i+1:]
	}
	parent = indexSuffix.ReplaceAllString(parent, "")
	return slices.Contains(requiredKeys[parent], key)
}

var quotedField = regexp.MustCompile(`^'([^']*)'`)

// decodeError converts mapstructure errors into spec errors.
func decodeError(workflow string, err error) error {
	var msErr *mapstructure.Error
	if !errors.As(err, &msErr) {
		return &domain.SpecParseError{Workflow: workflow, Reason: err.Error()}
	}

	errs := make([]error, 0, len(msErr.Errors))
	for _, msg := range msErr.Errors {
		pe := &domain.SpecParseError{Workflow: workflow, Reason: msg}
		if m := quotedField.FindStringSubmatch(msg); m != nil {
			pe.Field = m[1]
			pe.Reason = strings.TrimSpace(strings.TrimPrefix(msg, m[0]))
		}
		errs = append(errs, pe)
	}
	return errors.Join(errs...)
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "nothing"
	case map[string]any:
		return "a mapping"
	case []any:
		return "a list"
	default:
		return fmt.Sprintf("%T", v)
	}
}
