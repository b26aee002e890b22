package tui_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/aretw0/docflows/internal/presentation/tui"
	"github.com/aretw0/docflows/pkg/dsl"
	"github.com/aretw0/docflows/pkg/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefinitionMarkdown(t *testing.T) {
	md := tui.DefinitionMarkdown(report.Workflow(), report.DefaultChecks())

	assert.Contains(t, md, "# ReportWorkflow")
	assert.Contains(t, md, "| `draft` | Draft | initial |")
	assert.Contains(t, md, "| `approved` | Approved | terminal |")
	assert.Contains(t, md, "| `cancel` | `ready`, `complete` | `cancelled` | - |")
	assert.Contains(t, md, "- **title_size**: `len(doc.title) >= 8` (Title too short (at least 8 chars))")
	assert.Contains(t, md, "> Unreachable states: `done`")
}

func TestDefinitionMarkdown_Guards(t *testing.T) {
	b := dsl.New("Gated").State("a", "A").State("b", "B")
	b.Transition("go").From("a").To("b").AnyOf("x", "y")
	def, err := b.Build()
	require.NoError(t, err)

	md := tui.DefinitionMarkdown(def, nil)
	assert.Contains(t, md, "| `go` | `a` | `b` | any_of(x, y) |")
	assert.NotContains(t, md, "Unreachable")
}

func TestDefinitionMarkdown_NoChecks(t *testing.T) {
	md := tui.DefinitionMarkdown(report.Workflow(), nil)
	assert.NotContains(t, md, "## Checks")
}

func TestReportMarkdown(t *testing.T) {
	r, err := report.New("Quarterly numbers", report.WithContent("All good."), report.WithKeywords("q3"))
	require.NoError(t, err)
	require.NoError(t, r.Prepare(context.Background(), "alice"))

	md := tui.ReportMarkdown(r.Snapshot())
	assert.Contains(t, md, "# Quarterly numbers")
	assert.Contains(t, md, "(`ready`)")
	assert.Contains(t, md, "All good.")
	assert.Contains(t, md, "**Keywords:** q3")
	assert.Contains(t, md, "1. alice: prepare")
}

func TestNewRenderer_Plain(t *testing.T) {
	out, err := tui.NewRenderer(false)("# Title")
	require.NoError(t, err)
	assert.Equal(t, "# Title", out)
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|___/")
	assert.False(t, tui.IsInteractive(&buf))
}
