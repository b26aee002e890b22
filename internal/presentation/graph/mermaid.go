package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/docflows/pkg/domain"
)

// Overlay contains instance state to visualize on the graph.
type Overlay struct {
	VisitedStates []string
	CurrentState  string
}

// OverlayFromHistory replays history entries ("actor: transition") over def
// and returns the states they passed through. Entries naming unknown
// transitions are skipped.
func OverlayFromHistory(def *domain.Definition, current string, history []string) *Overlay {
	state := def.InitialState().Name
	visited := []string{state}
	for _, entry := range history {
		name := entry
		if i := strings.LastIndex(entry, ": "); i >= 0 {
			name = entry[i+2:]
		}
		t, ok := def.Transition(name)
		if !ok {
			continue
		}
		state = t.Target
		visited = append(visited, state)
	}
	return &Overlay{VisitedStates: visited, CurrentState: current}
}

// GenerateMermaid produces a Mermaid flowchart for a workflow definition.
// It applies semantic styling:
// - Initial state: ((Circle))
// - Terminal states: ([Stadium])
// - Default: [Rectangle]
// Guarded transitions carry their checks as edge labels, any_of edges are
// dotted. Overlay styles (visited/current) are applied if provided.
func GenerateMermaid(def *domain.Definition, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	initial := def.InitialState().Name
	for _, s := range def.States() {
		safeID := sanitizeMermaidID(s.Name)

		opener, closer := "[", "]"
		switch {
		case s.Name == initial:
			opener, closer = "((", "))"
		case def.IsTerminal(s.Name):
			opener, closer = "([", "])"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(s.Title), closer)
	}

	for _, t := range def.Transitions() {
		safeTo := sanitizeMermaidID(t.Target)
		label := escapeLabel(t.Name)
		dotted := false
		if !t.Guard.IsZero() {
			sep := " & "
			if t.Guard.Mode == domain.GuardAnyOf {
				sep = " | "
				dotted = true
			}
			label = fmt.Sprintf("%s [%s]", label, escapeLabel(strings.Join(t.Guard.Names, sep)))
		}

		arrow := fmt.Sprintf("-- \"%s\" -->", label)
		if dotted {
			arrow = fmt.Sprintf("-. \"%s\" .->", label)
		}
		for _, src := range t.Sources {
			fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(src), arrow, safeTo)
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast on either theme.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, name := range overlay.VisitedStates {
			if _, ok := def.State(name); !ok || name == overlay.CurrentState {
				continue
			}
			safeID := sanitizeMermaidID(name)
			if !visitedSet[safeID] {
				visitedSet[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}

		if overlay.CurrentState != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentState))
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
}
