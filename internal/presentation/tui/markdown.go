package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/docflows/pkg/domain"
	"github.com/aretw0/docflows/pkg/guard"
	"github.com/aretw0/docflows/pkg/report"
)

// DefinitionMarkdown describes a workflow as a markdown document: its states,
// its transitions with their guards and, when checks is not nil, the check
// expressions they reference.
func DefinitionMarkdown(def *domain.Definition, checks *guard.Set) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", def.Name())

	sb.WriteString("## States\n\n")
	sb.WriteString("| State | Title | |\n|---|---|---|\n")
	initial := def.InitialState().Name
	for _, s := range def.States() {
		var marks []string
		if s.Name == initial {
			marks = append(marks, "initial")
		}
		if def.IsTerminal(s.Name) {
			marks = append(marks, "terminal")
		}
		fmt.Fprintf(&sb, "| `%s` | %s | %s |\n", s.Name, s.Title, strings.Join(marks, ", "))
	}

	sb.WriteString("\n## Transitions\n\n")
	sb.WriteString("| Transition | From | To | Guard |\n|---|---|---|---|\n")
	for _, t := range def.Transitions() {
		fmt.Fprintf(&sb, "| `%s` | %s | %s | %s |\n", t.Name, codeList(t.Sources), "`"+t.Target+"`", guardText(t.Guard))
	}

	if checks != nil && checks.Len() > 0 {
		sb.WriteString("\n## Checks\n\n")
		for _, name := range checks.Names() {
			g, _ := checks.Lookup(name)
			line := fmt.Sprintf("- **%s**", name)
			if e, ok := g.(*guard.Expression); ok {
				line += fmt.Sprintf(": `%s`", e.Source())
			}
			if msg := g.Message(); msg != "" {
				line += fmt.Sprintf(" (%s)", msg)
			}
			sb.WriteString(line + "\n")
		}
	}

	if unreachable := def.Unreachable(); len(unreachable) > 0 {
		fmt.Fprintf(&sb, "\n> Unreachable states: %s\n", codeList(unreachable))
	}
	return sb.String()
}

// ReportMarkdown describes a report snapshot as a markdown document.
func ReportMarkdown(v report.View) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", v.Title)
	fmt.Fprintf(&sb, "**State:** %s (`%s`) in *%s*\n\n", v.State.Title, v.State.Name, v.Workflow)

	if v.Content != nil {
		fmt.Fprintf(&sb, "%s\n\n", *v.Content)
	} else {
		sb.WriteString("*No content.*\n\n")
	}
	if len(v.Keywords) > 0 {
		fmt.Fprintf(&sb, "**Keywords:** %s\n\n", strings.Join(v.Keywords, ", "))
	}
	if len(v.Available) > 0 {
		fmt.Fprintf(&sb, "**Available:** %s\n\n", codeList(v.Available))
	}
	if len(v.History) > 0 {
		sb.WriteString("## History\n\n")
		for i, entry := range v.History {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, entry)
		}
	}
	return sb.String()
}

func guardText(p domain.GuardPolicy) string {
	if p.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%s(%s)", p.Mode, strings.Join(p.Names, ", "))
}

func codeList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "`" + s + "`"
	}
	return strings.Join(quoted, ", ")
}
