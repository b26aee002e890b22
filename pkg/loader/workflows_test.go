package loader_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/docflows/pkg/domain"
	"github.com/aretw0/docflows/pkg/loader"
	"github.com/aretw0/docflows/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reportWorkflowJSON = `{
  "ReportWorkflow": {
    "states": [
      {"name": "draft", "title": "Draft"},
      {"name": "ready", "title": "Ready"},
      {"name": "complete", "title": "Complete"},
      {"name": "submitted", "title": "Submitted"},
      {"name": "done", "title": "Done"},
      {"name": "approved", "title": "Approved"},
      {"name": "cancelled", "title": "Cancelled"}
    ],
    "transitions": [
      {"name": "prepare", "sources": ["draft"], "target": "ready"},
      {"name": "finish", "sources": ["ready"], "target": "complete", "all_of": ["has_content", "title_size"]},
      {"name": "submit", "sources": "complete", "target": "submitted"},
      {"name": "approve", "sources": ["submitted"], "target": "approved"},
      {"name": "reject", "sources": ["submitted"], "target": "ready"},
      {"name": "cancel", "sources": ["ready", "complete"], "target": "cancelled"}
    ],
    "initial_state": "draft"
  }
}`

func jsonDoc(s string) ports.Document {
	return ports.Document{Data: []byte(s), Format: ports.FormatJSON}
}

func TestParseWorkflows_JSON(t *testing.T) {
	defs, err := loader.ParseWorkflows(jsonDoc(reportWorkflowJSON))
	require.NoError(t, err)
	require.Contains(t, defs, "ReportWorkflow")

	def := defs["ReportWorkflow"]
	assert.Equal(t, "draft", def.InitialState().Name)
	assert.Len(t, def.States(), 7)

	submit, ok := def.Transition("submit")
	require.True(t, ok)
	assert.Equal(t, []string{"complete"}, submit.Sources)

	finish, _ := def.Transition("finish")
	assert.Equal(t, domain.AllOf("has_content", "title_size"), finish.Guard)

	cancel, _ := def.Transition("cancel")
	assert.Equal(t, []string{"ready", "complete"}, cancel.Sources)
}

func TestParseWorkflows_YAML(t *testing.T) {
	doc := ports.Document{Format: ports.FormatYAML, Data: []byte(`
Review:
  states: [draft, {name: published, title: Published}]
  transitions:
    - name: publish
      sources: draft
      target: published
      any_of: [has_content, has_keywords]
  initial_state: draft
`)}

	defs, err := loader.ParseWorkflows(doc)
	require.NoError(t, err)

	def := defs["Review"]
	draft, _ := def.State("draft")
	assert.Equal(t, "draft", draft.Title)

	publish, _ := def.Transition("publish")
	assert.Equal(t, domain.AnyOf("has_content", "has_keywords"), publish.Guard)
}

func TestParseWorkflows_Errors(t *testing.T) {
	tests := []struct {
		name  string
		spec  string
		field string
	}{
		{
			name:  "Missing Initial State",
			spec:  `{"wf": {"states": [{"name": "a"}], "transitions": []}}`,
			field: "initial_state",
		},
		{
			name:  "Missing Transitions",
			spec:  `{"wf": {"states": [{"name": "a"}], "initial_state": "a"}}`,
			field: "transitions",
		},
		{
			name:  "Missing Target",
			spec:  `{"wf": {"states": [{"name": "a"}], "transitions": [{"name": "go", "sources": ["a"]}], "initial_state": "a"}}`,
			field: "transitions[0].target",
		},
		{
			name:  "Missing State Name",
			spec:  `{"wf": {"states": [{"title": "A"}], "transitions": [], "initial_state": "a"}}`,
			field: "states[0].name",
		},
		{
			name:  "Mistyped Name",
			spec:  `{"wf": {"states": [{"name": 1}], "transitions": [], "initial_state": "a"}}`,
			field: "states[0].name",
		},
		{
			name:  "Unknown Key",
			spec:  `{"wf": {"states": [{"name": "a"}], "transitions": [], "initial_state": "a", "final": "a"}}`,
			field: "",
		},
		{
			name:  "Not A Mapping",
			spec:  `{"wf": ["a"]}`,
			field: "",
		},
		{
			name:  "Both Combinators",
			spec:  `{"wf": {"states": ["a", "b"], "transitions": [{"name": "go", "sources": "a", "target": "b", "all_of": ["x"], "any_of": ["y"]}], "initial_state": "a"}}`,
			field: "transitions[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defs, err := loader.ParseWorkflows(jsonDoc(tt.spec))

			var parseErr *domain.SpecParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, "wf", parseErr.Workflow)
			assert.Equal(t, tt.field, parseErr.Field)
			assert.Empty(t, defs)
		})
	}
}

func TestParseWorkflows_PartialSuccess(t *testing.T) {
	spec := `{
	  "Broken": {"states": ["a", "b"], "transitions": [{"name": "go", "sources": ["a"], "target": "c"}], "initial_state": "a"},
	  "Fine":   {"states": ["a", "b"], "transitions": [{"name": "go", "sources": ["a"], "target": "b"}], "initial_state": "a"}
	}`

	defs, err := loader.ParseWorkflows(jsonDoc(spec))
	require.Error(t, err)

	var defErr *domain.DefinitionError
	require.True(t, errors.As(err, &defErr))
	assert.Equal(t, "Broken", defErr.Workflow)
	assert.Contains(t, defErr.Problems, `transition "go": target state "c" is not declared`)

	assert.Contains(t, defs, "Fine")
	assert.NotContains(t, defs, "Broken")
}

func TestParseWorkflows_DocumentErrors(t *testing.T) {
	_, err := loader.ParseWorkflows(jsonDoc(`{"wf": `))
	var parseErr *domain.SpecParseError
	assert.ErrorAs(t, err, &parseErr)

	defs, err := loader.ParseWorkflows(jsonDoc(`[1, 2]`))
	assert.ErrorAs(t, err, &parseErr)
	assert.Nil(t, defs)
}

func TestBuild(t *testing.T) {
	def, err := loader.Build("Inline", loader.WorkflowSpec{
		States:       []loader.StateSpec{{Name: "open"}, {Name: "closed"}},
		Transitions:  []loader.TransitionSpec{{Name: "close", Sources: []string{"open"}, Target: "closed"}},
		InitialState: "open",
	})
	require.NoError(t, err)
	assert.Equal(t, "Inline", def.Name())
}

func TestFromDefinition_RoundTrip(t *testing.T) {
	defs, err := loader.ParseWorkflows(jsonDoc(reportWorkflowJSON))
	require.NoError(t, err)

	spec := loader.FromDefinition(defs["ReportWorkflow"])
	data, err := json.Marshal(map[string]loader.WorkflowSpec{"ReportWorkflow": spec})
	require.NoError(t, err)

	again, err := loader.ParseWorkflows(jsonDoc(string(data)))
	require.NoError(t, err)
	assert.Equal(t, defs["ReportWorkflow"].Transitions(), again["ReportWorkflow"].Transitions())
	assert.Equal(t, defs["ReportWorkflow"].States(), again["ReportWorkflow"].States())
}
