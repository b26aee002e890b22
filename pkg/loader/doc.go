/*
Package loader builds workflow definitions and check sets from serialized
specifications.

A workflows document maps workflow names to specs:

	{
	  "ReportWorkflow": {
	    "states": [{"name": "draft", "title": "Draft"}, {"name": "ready", "title": "Ready"}],
	    "transitions": [{"name": "prepare", "sources": ["draft"], "target": "ready"}],
	    "initial_state": "draft"
	  }
	}

Sources may be a single string. A transition may carry an "all_of" or an
"any_of" list of check names. Unknown keys are rejected.

A checks document is either a list

	- name: title_size
	  expression: len(doc.title) >= 8
	  error_msg: Title too short

or a mapping from name to {expression, error_msg} or to [expression, error_msg].
*/
package loader
