package dto

// WorkflowSpec is the serialized shape of a workflow. The workflow name is
// the key the spec is stored under.
// It uses "mapstructure" tags so that JSON and YAML documents decode alike.
type WorkflowSpec struct {
	States       []StateSpec      `json:"states" yaml:"states" mapstructure:"states"`
	Transitions  []TransitionSpec `json:"transitions" yaml:"transitions" mapstructure:"transitions"`
	InitialState string           `json:"initial_state" yaml:"initial_state" mapstructure:"initial_state"`
}

// StateSpec may also be written as a bare string holding the name.
type StateSpec struct {
	Name  string `json:"name" yaml:"name" mapstructure:"name"`
	Title string `json:"title,omitempty" yaml:"title,omitempty" mapstructure:"title"`
}

// TransitionSpec accepts sources as a single string or a list.
// At most one of AllOf and AnyOf may be set.
type TransitionSpec struct {
	Name    string   `json:"name" yaml:"name" mapstructure:"name"`
	Sources []string `json:"sources" yaml:"sources" mapstructure:"sources"`
	Target  string   `json:"target" yaml:"target" mapstructure:"target"`
	AllOf   []string `json:"all_of,omitempty" yaml:"all_of,omitempty" mapstructure:"all_of"`
	AnyOf   []string `json:"any_of,omitempty" yaml:"any_of,omitempty" mapstructure:"any_of"`
}

// CheckSpec is the serialized shape of a named check.
type CheckSpec struct {
	Name       string `json:"name" yaml:"name" mapstructure:"name"`
	Expression string `json:"expression" yaml:"expression" mapstructure:"expression"`
	Message    string `json:"error_msg,omitempty" yaml:"error_msg,omitempty" mapstructure:"error_msg"`
}
