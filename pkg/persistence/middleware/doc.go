// Package middleware wraps spec stores with cross-cutting behavior, such as
// encrypting documents at rest in a shared backend.
package middleware
