// Package report implements the Report document: a title, optional content,
// keywords and free-form attributes, moved through a workflow by named
// transitions gated by checks.
//
// A Report owns its history and its workflow instance. The workflow
// definition and the check set may be shared between reports.
package report
