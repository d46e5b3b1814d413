// Package common provides shared utilities for MCP tool implementations.
// Tool handlers are wrapped with InstrumentedToolHandler so every
// invocation gets a span, metrics and an audit log line.
package common
