package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/docflows/internal/presentation/tui"
	"github.com/aretw0/docflows/pkg/domain"
	"github.com/aretw0/docflows/pkg/report"
)

// ReportFactory creates reports; *docflows.Engine is one.
type ReportFactory interface {
	NewReport(workflow, title string, opts ...report.Option) (*report.Report, error)
}

type demoStep struct {
	actor      string
	transition string
	edit       func(r *report.Report)
	note       string
}

// demoScript walks a report through rejection and resubmission, including
// two check failures and one transition that is not available.
var demoScript = []demoStep{
	{actor: "Larry", transition: report.Prepare},
	{actor: "Curly", transition: report.Finish},
	{edit: func(r *report.Report) { r.SetContent("foo") }, note: "content set to `foo`"},
	{actor: "Curly", transition: report.Finish},
	{edit: func(r *report.Report) { r.SetTitle("Report_1") }, note: "title set to `Report_1`"},
	{actor: "Curly", transition: report.Finish},
	{actor: "Curly", transition: report.Submit},
	{actor: "Moe", transition: report.Reject},
	{edit: func(r *report.Report) { r.SetContent("foo bar") }, note: "content set to `foo bar`"},
	{actor: "Larry", transition: report.Finish},
	{actor: "Larry", transition: report.Submit},
	{actor: "Moe", transition: report.Finish},
	{actor: "Moe", transition: report.Approve},
}

// RunDemo plays the demo script on a new report of workflow and writes the
// walkthrough as markdown through render. Refused transitions are part of
// the script; any other error stops the demo.
func RunDemo(ctx context.Context, w io.Writer, f ReportFactory, workflow string, render func(string) (string, error)) (*report.Report, error) {
	r, err := f.NewReport(workflow, "Report1")
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Demo: %s\n\n", workflow)
	for i, step := range demoScript {
		if step.edit != nil {
			step.edit(r)
			fmt.Fprintf(&sb, "%d. *%s*\n", i+1, step.note)
			continue
		}

		err := r.Fire(ctx, step.transition, step.actor)
		switch {
		case err == nil:
			fmt.Fprintf(&sb, "%d. **%s** fires `%s`: now *%s*\n", i+1, step.actor, step.transition, r.State().Title)
		case isRefusal(err):
			fmt.Fprintf(&sb, "%d. **%s** fires `%s`: refused, %s\n", i+1, step.actor, step.transition, err)
		default:
			return r, fmt.Errorf("demo step %d: %w", i+1, err)
		}
	}
	sb.WriteString("\n---\n\n")
	sb.WriteString(tui.ReportMarkdown(r.Snapshot()))

	out, err := render(sb.String())
	if err != nil {
		return r, err
	}
	_, err = io.WriteString(w, out)
	return r, err
}

func isRefusal(err error) bool {
	var (
		invalid   *domain.InvalidTransitionError
		failed    *domain.GuardFailedError
		allFailed *domain.AllGuardsFailedError
	)
	return errors.As(err, &invalid) || errors.As(err, &failed) || errors.As(err, &allFailed)
}
