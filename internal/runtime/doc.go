// Package runtime executes workflow transitions for a single entity.
package runtime
