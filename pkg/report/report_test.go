package report_test

import (
	"context"
	"testing"

	"github.com/aretw0/docflows/pkg/domain"
	"github.com/aretw0/docflows/pkg/dsl"
	"github.com/aretw0/docflows/pkg/guard"
	"github.com/aretw0/docflows/pkg/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_ApprovalScenario(t *testing.T) {
	ctx := context.Background()
	rep, err := report.New("Report1")
	require.NoError(t, err)
	assert.Equal(t, "draft", rep.State().Name)

	require.NoError(t, rep.Prepare(ctx, "Larry"))
	assert.Equal(t, "Ready", rep.State().Title)

	assert.EqualError(t, rep.Finish(ctx, "Curly"), "Content is empty")

	rep.SetContent("foo")
	assert.EqualError(t, rep.Finish(ctx, "Curly"), "Title too short (at least 8 chars)")

	rep.SetTitle("Report_1")
	require.NoError(t, rep.Finish(ctx, "Curly"))
	assert.Equal(t, "Complete", rep.State().Title)
	assert.Equal(t, []string{"Larry: prepare", "Curly: finish"}, rep.History())

	require.NoError(t, rep.Submit(ctx, "Curly"))
	require.NoError(t, rep.Reject(ctx, "Moe"))
	assert.Equal(t, "Ready", rep.State().Title)

	rep.SetContent("foo bar")
	require.NoError(t, rep.Finish(ctx, "Larry"))
	require.NoError(t, rep.Submit(ctx, "Larry"))

	err = rep.Finish(ctx, "Moe")
	var invalid *domain.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, `transition "finish" isn't available from state "submitted"`, err.Error())

	require.NoError(t, rep.Approve(ctx, "Moe"))
	assert.Equal(t, []string{
		"Larry: prepare", "Curly: finish", "Curly: submit", "Moe: reject",
		"Larry: finish", "Larry: submit", "Moe: approve",
	}, rep.History())
	assert.Empty(t, rep.Available())
}

func TestReport_StrictPolicies(t *testing.T) {
	ctx := context.Background()

	t.Run("Keywords Satisfy Prepare", func(t *testing.T) {
		rep, err := report.New("Report1", report.WithKeywords("bar"), report.WithPolicies(report.StrictPolicies()))
		require.NoError(t, err)
		assert.NoError(t, rep.Prepare(ctx, "Larry"))
	})

	t.Run("Nothing Satisfies Prepare", func(t *testing.T) {
		rep, err := report.New("Report1", report.WithPolicies(report.StrictPolicies()))
		require.NoError(t, err)

		err = rep.Prepare(ctx, "Larry")
		var all *domain.AllGuardsFailedError
		require.ErrorAs(t, err, &all)
		assert.Equal(t, "all checks failed for prepare", err.Error())
		assert.Equal(t, []string{report.HasContent, report.HasKeywords}, all.Guards)
		assert.Empty(t, rep.History())
	})
}

func TestReport_Cancel(t *testing.T) {
	ctx := context.Background()
	rep, err := report.New("Report1")
	require.NoError(t, err)

	var invalid *domain.InvalidTransitionError
	assert.ErrorAs(t, rep.Cancel(ctx, "Larry"), &invalid)

	require.NoError(t, rep.Prepare(ctx, "Larry"))
	require.NoError(t, rep.Cancel(ctx, "", report.WithUser("Moe")))
	assert.Equal(t, "cancelled", rep.State().Name)
	assert.Equal(t, []string{"Larry: prepare", "Moe: cancel"}, rep.History())
	assert.True(t, rep.Definition().IsTerminal("cancelled"))
}

func TestReport_AttributesInChecks(t *testing.T) {
	set := guard.MustSet(
		guard.MustNew("reviewed", `doc.reviewer != nil and doc.title != "shadowed"`, "Needs a reviewer"),
	)
	rep, err := report.New("Report1",
		report.WithChecks(set),
		report.WithAttribute("title", "shadowed"),
		report.WithPolicies(map[string]domain.GuardPolicy{report.Prepare: domain.AllOf("reviewed")}),
	)
	require.NoError(t, err)

	assert.EqualError(t, rep.Check(report.Prepare), "Needs a reviewer")

	rep.SetAttribute("reviewer", "Moe")
	assert.NoError(t, rep.Check(report.Prepare))

	v, ok := rep.Attribute("reviewer")
	assert.True(t, ok)
	assert.Equal(t, "Moe", v)
}

type secretHolder struct {
	Secret string
}

func (s *secretHolder) Wipe() bool {
	s.Secret = "wiped"
	return true
}

func TestReport_ChecksSeeAttributesAsData(t *testing.T) {
	holder := &secretHolder{Secret: "s3cr3t"}
	set := guard.MustSet(
		guard.MustNew("sneaky", `doc.owner.Secret == "s3cr3t" and doc.owner.Wipe()`, "Not allowed"),
	)
	rep, err := report.New("Report1",
		report.WithChecks(set),
		report.WithAttribute("owner", holder),
		report.WithPolicies(map[string]domain.GuardPolicy{report.Prepare: domain.AllOf("sneaky")}),
	)
	require.NoError(t, err)

	assert.Error(t, rep.Prepare(context.Background(), "Larry"))
	assert.Equal(t, "s3cr3t", holder.Secret)
	assert.Equal(t, "draft", rep.State().Name)
	assert.Empty(t, rep.History())
}

func TestReport_CustomWorkflowKeepsDeclaredGuards(t *testing.T) {
	b := dsl.New("Short")
	b.State("ready", "Ready").State("complete", "Complete")
	b.Transition(report.Finish).From("ready").To("complete").AllOf(report.HasKeywords)

	rep, err := report.New("Report_1", report.WithWorkflow(b.MustBuild()), report.WithContent("body"))
	require.NoError(t, err)

	assert.EqualError(t, rep.Finish(context.Background(), "Larry"), "No keywords defined")

	rep.SetKeywords("q3")
	assert.NoError(t, rep.Finish(context.Background(), "Larry"))
}

func TestReport_DefaultPoliciesSkipUndeclaredTransitions(t *testing.T) {
	b := dsl.New("Tiny")
	b.State("open", "Open").State("closed", "Closed")
	b.Transition("close").From("open").To("closed")

	rep, err := report.New("r", report.WithWorkflow(b.MustBuild()))
	require.NoError(t, err)
	assert.NoError(t, rep.Fire(context.Background(), "close", "Larry"))
}

func TestReport_CustomWorkflowGetsNoDefaultPolicies(t *testing.T) {
	b := dsl.New("Build")
	b.State("open", "Open").State("done", "Done")
	b.Transition(report.Finish).From("open").To("done")

	rep, err := report.New("r", report.WithWorkflow(b.MustBuild()), report.WithChecks(guard.MustSet()))
	require.NoError(t, err)
	assert.NoError(t, rep.Finish(context.Background(), "Larry"))
}

func TestReport_PolicyForUnknownTransition(t *testing.T) {
	_, err := report.New("r", report.WithPolicies(map[string]domain.GuardPolicy{"publish": domain.AllOf(report.HasContent)}))
	assert.ErrorIs(t, err, domain.ErrUnknownTransition)
}

func TestReport_Hooks(t *testing.T) {
	var entered []string
	rep, err := report.New("Report1", report.WithHooks(domain.Hooks{
		OnEnter: []domain.Hook{func(_ context.Context, c *domain.Change) {
			entered = append(entered, c.Entity+"@"+c.To.Name)
		}},
	}))
	require.NoError(t, err)

	require.NoError(t, rep.Prepare(context.Background(), "Larry"))
	assert.Equal(t, []string{"Report1@ready"}, entered)
}

func TestReport_Content(t *testing.T) {
	rep, err := report.New("r", report.WithContent("x"))
	require.NoError(t, err)

	c, ok := rep.Content()
	assert.True(t, ok)
	assert.Equal(t, "x", c)

	rep.ClearContent()
	_, ok = rep.Content()
	assert.False(t, ok)
	assert.Nil(t, rep.Env()["content"])
}

func TestReport_SharedDefinitionAndChecks(t *testing.T) {
	a, err := report.New("a")
	require.NoError(t, err)
	b, err := report.New("b")
	require.NoError(t, err)

	assert.Same(t, a.Definition(), b.Definition())

	require.NoError(t, a.Prepare(context.Background(), "Larry"))
	assert.Equal(t, "draft", b.State().Name)
	assert.Empty(t, b.History())
}

func TestWorkflow(t *testing.T) {
	def := report.Workflow()
	assert.Equal(t, "ReportWorkflow", def.Name())
	assert.Len(t, def.States(), 7)
	assert.Equal(t, []string{"done"}, def.Unreachable())
	assert.Equal(t, []string{report.HasContent, report.HasKeywords, report.TitleSize}, report.DefaultChecks().Names())
}

func TestReport_Snapshot(t *testing.T) {
	rep, err := report.New("Report1", report.WithKeywords("a"))
	require.NoError(t, err)
	require.NoError(t, rep.Prepare(context.Background(), "Larry"))

	v := rep.Snapshot()
	assert.Equal(t, "Report1", v.Title)
	assert.Nil(t, v.Content)
	assert.Equal(t, []string{"a"}, v.Keywords)
	assert.Equal(t, "ReportWorkflow", v.Workflow)
	assert.Equal(t, "ready", v.State.Name)
	assert.Equal(t, []string{"Larry: prepare"}, v.History)
	assert.Equal(t, []string{report.Finish, report.Cancel}, v.Available)
}

func TestApply(t *testing.T) {
	r, err := report.New("Old title", report.WithContent("body"))
	require.NoError(t, err)

	title := "New title"
	r.Apply(report.Patch{
		Title:      &title,
		Keywords:   []string{"a", "b"},
		Attributes: map[string]any{"priority": 2},
	})

	v := r.Snapshot()
	assert.Equal(t, "New title", v.Title)
	require.NotNil(t, v.Content)
	assert.Equal(t, "body", *v.Content)
	assert.Equal(t, []string{"a", "b"}, v.Keywords)
	assert.Equal(t, map[string]any{"priority": 2}, v.Attributes)

	content := "ignored"
	r.Apply(report.Patch{Content: &content, ClearContent: true})
	_, ok := r.Content()
	assert.False(t, ok)
}
