package loader

import (
	"context"
	"fmt"
	"slices"

	"github.com/aretw0/docflows/internal/compiler"
	"github.com/aretw0/docflows/internal/dto"
	"github.com/aretw0/docflows/pkg/domain"
	"github.com/aretw0/docflows/pkg/guard"
	"github.com/aretw0/docflows/pkg/ports"
)

type CheckSpec = dto.CheckSpec

// LoadChecks reads the checks document of src and compiles it.
// It returns ports.ErrNotConfigured, wrapped, when src carries no checks.
func LoadChecks(ctx context.Context, src ports.SpecSource, opts ...guard.Option) (*guard.Set, error) {
	doc, err := src.Checks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read checks: %w", err)
	}
	return ParseChecks(doc, opts...)
}

// ParseChecks compiles every check of doc into a set.
// Both the list and the mapping forms are accepted.
func ParseChecks(doc ports.Document, opts ...guard.Option) (*guard.Set, error) {
	raw, err := compiler.NewParser().Parse(doc)
	if err != nil {
		return nil, err
	}
	specs, err := DecodeChecks(raw)
	if err != nil {
		return nil, err
	}
	return BuildChecks(specs, opts...)
}

// BuildChecks compiles specs into a set. Duplicate names are rejected.
func BuildChecks(specs []CheckSpec, opts ...guard.Option) (*guard.Set, error) {
	guards := make([]guard.Guard, 0, len(specs))
	for _, spec := range specs {
		g, err := guard.New(spec.Name, spec.Expression, spec.Message, opts...)
		if err != nil {
			return nil, err
		}
		guards = append(guards, g)
	}
	return guard.NewSet(guards...)
}

// DecodeChecks decodes the generic value of a checks document.
func DecodeChecks(raw any) ([]CheckSpec, error) {
	switch v := raw.(type) {
	case []any:
		specs := make([]CheckSpec, 0, len(v))
		for i, item := range v {
			spec, err := decodeCheckItem(fmt.Sprintf("[%d]", i), item)
			if err != nil {
				return nil, err
			}
			specs = append(specs, spec)
		}
		return specs, nil
	case map[string]any:
		names := make([]string, 0, len(v))
		for name := range v {
			names = append(names, name)
		}
		slices.Sort(names)

		specs := make([]CheckSpec, 0, len(v))
		for _, name := range names {
			spec, err := decodeNamedCheck(name, v[name])
			if err != nil {
				return nil, err
			}
			specs = append(specs, spec)
		}
		return specs, nil
	default:
		return nil, &domain.SpecParseError{Reason: fmt.Sprintf("expected a list or a mapping of checks, got %s", kindOf(raw))}
	}
}

// decodeCheckItem handles {name, expression, error_msg} and
// [name, expression, error_msg].
func decodeCheckItem(field string, item any) (CheckSpec, error) {
	var spec CheckSpec
	switch v := item.(type) {
	case map[string]any:
		if err := decode(v, &spec, nil); err != nil {
			return spec, decodeError("", err)
		}
	case []any:
		parts, err := stringParts(field, v, 2, 3)
		if err != nil {
			return spec, err
		}
		spec = CheckSpec{Name: parts[0], Expression: parts[1]}
		if len(parts) == 3 {
			spec.Message = parts[2]
		}
	default:
		return spec, &domain.SpecParseError{Field: field, Reason: fmt.Sprintf("expected a mapping or a list, got %s", kindOf(item))}
	}
	if spec.Name == "" {
		return spec, &domain.SpecParseError{Field: field + ".name", Reason: "required key is missing"}
	}
	return spec, nil
}

// decodeNamedCheck handles {expression, error_msg} and [expression, error_msg].
func decodeNamedCheck(name string, item any) (CheckSpec, error) {
	spec := CheckSpec{Name: name}
	switch v := item.(type) {
	case map[string]any:
		if _, ok := v["name"]; ok {
			return spec, &domain.SpecParseError{Field: name + ".name", Reason: "the name is the mapping key"}
		}
		if err := decode(v, &spec, nil); err != nil {
			return spec, decodeError("", err)
		}
		spec.Name = name
	case []any:
		parts, err := stringParts(name, v, 1, 2)
		if err != nil {
			return spec, err
		}
		spec.Expression = parts[0]
		if len(parts) == 2 {
			spec.Message = parts[1]
		}
	case string:
		spec.Expression = v
	default:
		return spec, &domain.SpecParseError{Field: name, Reason: fmt.Sprintf("expected a mapping, a list or a string, got %s", kindOf(item))}
	}
	return spec, nil
}

func stringParts(field string, items []any, minLen, maxLen int) ([]string, error) {
	if len(items) < minLen || len(items) > maxLen {
		return nil, &domain.SpecParseError{Field: field, Reason: fmt.Sprintf("expected %d to %d items, got %d", minLen, maxLen, len(items))}
	}
	out := make([]string, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, &domain.SpecParseError{Field: fmt.Sprintf("%s[%d]", field, i), Reason: fmt.Sprintf("expected a string, got %s", kindOf(item))}
		}
		out[i] = s
	}
	return out, nil
}
