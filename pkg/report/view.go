package report

import "github.com/aretw0/docflows/pkg/domain"

// View is a serializable snapshot of a report.
type View struct {
	Title      string         `json:"title" yaml:"title"`
	Content    *string        `json:"content" yaml:"content"`
	Keywords   []string       `json:"keywords" yaml:"keywords"`
	Attributes map[string]any `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Workflow   string         `json:"workflow" yaml:"workflow"`
	State      domain.State   `json:"state" yaml:"state"`
	History    []string       `json:"history" yaml:"history"`
	Available  []string       `json:"available" yaml:"available"`
}

// Snapshot captures the report as a View.
func (r *Report) Snapshot() View {
	v := View{
		Title:      r.Title(),
		Keywords:   r.Keywords(),
		Attributes: r.Attributes(),
		Workflow:   r.Definition().Name(),
		State:      r.State(),
		History:    r.History(),
		Available:  []string{},
	}
	if c, ok := r.Content(); ok {
		v.Content = &c
	}
	if len(v.Attributes) == 0 {
		v.Attributes = nil
	}
	for _, t := range r.Available() {
		v.Available = append(v.Available, t.Name)
	}
	return v
}

// Patch is a partial update of a report. Nil fields are left unchanged.
type Patch struct {
	Title        *string        `json:"title,omitempty"`
	Content      *string        `json:"content,omitempty"`
	ClearContent bool           `json:"clear_content,omitempty"`
	Keywords     []string       `json:"keywords,omitempty"`
	Attributes   map[string]any `json:"attributes,omitempty"`
}

// Apply updates the report with the fields set in p. ClearContent wins over
// Content.
func (r *Report) Apply(p Patch) {
	if p.Title != nil {
		r.SetTitle(*p.Title)
	}
	switch {
	case p.ClearContent:
		r.ClearContent()
	case p.Content != nil:
		r.SetContent(*p.Content)
	}
	if p.Keywords != nil {
		r.SetKeywords(p.Keywords...)
	}
	for k, v := range p.Attributes {
		r.SetAttribute(k, v)
	}
}
