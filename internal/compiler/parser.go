package compiler

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/docflows/pkg/domain"
	"github.com/aretw0/docflows/pkg/ports"
	"gopkg.in/yaml.v3"
)

// Parser is responsible for converting raw documents into generic values
// (maps, slices and scalars) ready for typed decoding.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes doc according to its format. Syntax errors are reported as
// *domain.SpecParseError.
func (p *Parser) Parse(doc ports.Document) (any, error) {
	var (
		out any
		err error
	)
	switch doc.Format {
	case ports.FormatYAML:
		err = yaml.Unmarshal(doc.Data, &out)
	case ports.FormatJSON, "":
		err = json.Unmarshal(doc.Data, &out)
	default:
		return nil, &domain.SpecParseError{Reason: fmt.Sprintf("unsupported format %q", doc.Format)}
	}
	if err != nil {
		return nil, &domain.SpecParseError{Reason: fmt.Sprintf("invalid %s: %v", formatName(doc.Format), err)}
	}
	return out, nil
}

func formatName(f ports.Format) string {
	if f == "" {
		return string(ports.FormatJSON)
	}
	return string(f)
}
