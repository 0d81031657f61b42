/*
Package observability provides tools for monitoring the coach engine.

It turns the engine lifecycle hooks into structured audit logs and
Prometheus metrics, and combines several hook sets into one.
*/
package observability
