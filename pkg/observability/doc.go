/*
Package observability provides sinks for the events emitted by workflow instances.

It includes a structured logging observer built on log/slog, Prometheus
counters for transitions and state entries, and a composite observer that fans
events out to several sinks.
*/
package observability
