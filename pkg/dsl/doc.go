/*
Package dsl provides a Go DSL (Domain Specific Language) for declaring workflows statically.

It builds the same *domain.Definition a serialized specification produces,
using a fluent builder instead of a JSON or YAML document. States and
transitions keep their declaration order.

Example usage:

	package main

	import (
		"github.com/aretw0/docflows/pkg/dsl"
	)

	func main() {
		b := dsl.New("Review")

		b.State("draft", "Draft")
		b.State("published", "Published")

		b.Transition("publish").
			From("draft").
			To("published").
			AllOf("has_content")

		def := b.MustBuild()
		// ... pass def to runtime.NewInstance(...) or report.New(...)
	}
*/
package dsl
