package report

import (
	"maps"
	"sync"

	"github.com/aretw0/docflows/pkg/domain"
	"github.com/aretw0/docflows/pkg/dsl"
	"github.com/aretw0/docflows/pkg/guard"
)

// Transition names of the report workflow.
const (
	Prepare = "prepare"
	Finish  = "finish"
	Submit  = "submit"
	Approve = "approve"
	Reject  = "reject"
	Cancel  = "cancel"
)

// Check names of the default check set.
const (
	HasContent  = "has_content"
	HasKeywords = "has_keywords"
	TitleSize   = "title_size"
)

var workflow = sync.OnceValue(func() *domain.Definition {
	b := dsl.New("ReportWorkflow")

	b.State("draft", "Draft").
		State("ready", "Ready").
		State("complete", "Complete").
		State("submitted", "Submitted").
		State("done", "Done").
		State("approved", "Approved").
		State("cancelled", "Cancelled").
		Initial("draft")

	b.Transition(Prepare).From("draft").To("ready")
	b.Transition(Finish).From("ready").To("complete")
	b.Transition(Submit).From("complete").To("submitted")
	b.Transition(Approve).From("submitted").To("approved")
	b.Transition(Reject).From("submitted").To("ready")
	b.Transition(Cancel).From("ready", "complete").To("cancelled")

	return b.MustBuild()
})

// Workflow returns the statically declared report workflow.
// The "done" state is declared but no transition leads to it.
func Workflow() *domain.Definition {
	return workflow()
}

var defaultChecks = sync.OnceValue(func() *guard.Set {
	return guard.MustSet(
		guard.MustNew(HasContent, `doc.content != nil and len(doc.content) > 0`, "Content is empty"),
		guard.MustNew(HasKeywords, `doc.keywords != nil and len(doc.keywords) > 0`, "No keywords defined"),
		guard.MustNew(TitleSize, `len(doc.title) >= 8`, "Title too short (at least 8 chars)"),
	)
})

// DefaultChecks returns the checks used by reports created without WithChecks.
func DefaultChecks() *guard.Set {
	return defaultChecks()
}

// DefaultPolicies gates finish on content and title length.
func DefaultPolicies() map[string]domain.GuardPolicy {
	return map[string]domain.GuardPolicy{
		Finish: domain.AllOf(HasContent, TitleSize),
	}
}

// StrictPolicies adds to DefaultPolicies a prepare gate requiring content or keywords.
func StrictPolicies() map[string]domain.GuardPolicy {
	p := DefaultPolicies()
	maps.Copy(p, map[string]domain.GuardPolicy{
		Prepare: domain.AnyOf(HasContent, HasKeywords),
	})
	return p
}
