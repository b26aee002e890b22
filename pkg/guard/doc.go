// Package guard provides named boolean checks that gate workflow transitions.
//
// A check is an expression written in the expr language (github.com/expr-lang/expr)
// evaluated against a snapshot of the acting entity, bound as "doc":
//
//	doc.content != nil and len(doc.content) > 0
//	len(doc.title) >= 8
//	"urgent" in doc.keywords
//
// Expressions are compiled when the check is built and the compiled program is
// reused on every evaluation. Builtin functions are disabled except for a small
// allow-list (see DefaultBuiltins); further functions must be registered
// explicitly with WithFunction. The environment is copied to plain data before
// every run (see PlainEnv), so expressions never reach a Go value with methods
// or fields.
package guard
