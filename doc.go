/*
Package docflows is a finite-state workflow engine for documents moving through
an approval process.

A workflow is an immutable definition of named states, named transitions
between them and an initial state. Transitions may be gated by checks:
small boolean expressions evaluated in a sandbox against the document.
Every successful transition is appended to the document's history as
"<actor>: <transition>".

# Concept

Definitions are declared in Go with package dsl or loaded at runtime from
JSON or YAML documents (package loader) stored in files, Redis or memory.
Documents (package report) are bound to one workflow instance each; the
runtime runs every transition through an ordered pipeline: legality, before
hooks, checks, effect, state change, history, after hooks.

# Usage

	eng, err := docflows.New(ctx, docflows.WithSource(store))
	if err != nil {
		log.Fatal(err)
	}

	r, err := eng.NewReport("ReportWorkflow", "Quarterly results")
	if err != nil {
		log.Fatal(err)
	}
	r.SetContent("Revenue is up.")

	_ = r.Prepare(ctx, "alice")
	if err := r.Finish(ctx, "alice"); err != nil {
		// *domain.GuardFailedError carries the failing check's message.
	}

Without a source the engine serves the built-in report workflow with the
default checks.
*/
package docflows
