package domain

// State is a node of a workflow. Name is the identifier used by transitions,
// Title is the human-readable label.
type State struct {
	Name  string `json:"name" yaml:"name" mapstructure:"name"`
	Title string `json:"title" yaml:"title" mapstructure:"title"`
}

func (s State) String() string {
	return s.Name
}
