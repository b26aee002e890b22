package loader_test

import (
	"context"
	"testing"

	"github.com/aretw0/docflows/pkg/adapters/memory"
	"github.com/aretw0/docflows/pkg/domain"
	"github.com/aretw0/docflows/pkg/guard"
	"github.com/aretw0/docflows/pkg/loader"
	"github.com/aretw0/docflows/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChecks_Forms(t *testing.T) {
	tests := []struct {
		name string
		doc  ports.Document
	}{
		{
			name: "List Of Mappings",
			doc: ports.Document{Format: ports.FormatYAML, Data: []byte(`
- name: has_content
  expression: doc.content != nil and len(doc.content) > 0
  error_msg: Content is empty
- name: title_size
  expression: len(doc.title) >= 8
  error_msg: Title too short (at least 8 chars)
`)},
		},
		{
			name: "List Of Tuples",
			doc: jsonDoc(`[
				["has_content", "doc.content != nil and len(doc.content) > 0", "Content is empty"],
				["title_size", "len(doc.title) >= 8", "Title too short (at least 8 chars)"]
			]`),
		},
		{
			name: "Mapping Of Tuples",
			doc: jsonDoc(`{
				"title_size": ["len(doc.title) >= 8", "Title too short (at least 8 chars)"],
				"has_content": ["doc.content != nil and len(doc.content) > 0", "Content is empty"]
			}`),
		},
		{
			name: "Mapping Of Mappings",
			doc: ports.Document{Format: ports.FormatYAML, Data: []byte(`
has_content:
  expression: doc.content != nil and len(doc.content) > 0
  error_msg: Content is empty
title_size:
  expression: len(doc.title) >= 8
  error_msg: Title too short (at least 8 chars)
`)},
		},
	}

	env := map[string]any{guard.DocBinding: map[string]any{"title": "Report1", "content": nil}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := loader.ParseChecks(tt.doc)
			require.NoError(t, err)
			assert.Equal(t, []string{"has_content", "title_size"}, set.Names())

			err = guard.Check(set, "finish", domain.AllOf("has_content", "title_size"), env)
			assert.EqualError(t, err, "Content is empty")

			g, err := set.Lookup("title_size")
			require.NoError(t, err)
			assert.Equal(t, "Title too short (at least 8 chars)", g.Message())
		})
	}
}

func TestParseChecks_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"Scalar Document", `42`},
		{"Duplicate Names", `[["a", "true"], ["a", "false"]]`},
		{"Bad Expression", `{"a": ["len(", "broken"]}`},
		{"Missing Name", `[{"expression": "true"}]`},
		{"Unknown Key", `[{"name": "a", "expression": "true", "severity": "high"}]`},
		{"Too Many Parts", `{"a": ["true", "msg", "extra"]}`},
		{"Name Inside Mapping Form", `{"a": {"name": "b", "expression": "true"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.ParseChecks(jsonDoc(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestParseChecks_CompileErrorType(t *testing.T) {
	_, err := loader.ParseChecks(jsonDoc(`{"a": "doc.title >"}`))
	var compileErr *guard.CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, "a", compileErr.Guard)
}

func TestLoad_FromSource(t *testing.T) {
	ctx := context.Background()
	src := memory.New()

	_, err := loader.LoadWorkflows(ctx, src)
	assert.ErrorIs(t, err, ports.ErrNotConfigured)
	_, err = loader.LoadChecks(ctx, src)
	assert.ErrorIs(t, err, ports.ErrNotConfigured)

	require.NoError(t, src.PublishWorkflows(ctx, jsonDoc(reportWorkflowJSON)))
	require.NoError(t, src.PublishChecks(ctx, jsonDoc(`{"ok": "true"}`)))

	defs, err := loader.LoadWorkflows(ctx, src)
	require.NoError(t, err)
	assert.Contains(t, defs, "ReportWorkflow")

	set, err := loader.LoadChecks(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, 1, set.Len())
}
