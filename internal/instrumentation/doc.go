// Package instrumentation provides OpenTelemetry instrumentation for the
// haircut-mcp server.
//
// # Metrics
//
// HTTP transport:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//   - mcp_active_sessions: Gauge of connected MCP client sessions
//
// Booking API:
//   - upstream_api_operations_total: Counter of booking API calls by service, operation, status
//   - upstream_api_operation_duration_seconds: Histogram of booking API call durations
//
// MCP tools:
//   - mcp_tool_invocations_total: Counter of tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of tool execution durations
//   - availability_slots_returned: Histogram of slots per successful lookup
//
// # Tracing
//
// Spans are created for tool invocations (tool.<name>), the availability
// pipeline (availability.get_available_times) and, through otelhttp, every
// outbound booking API request.
//
// # Configuration
//
// Instrumentation is configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp or stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: haircut-mcp)
//   - AUDIT_LOGGING_ENABLED: Per-invocation audit lines (default: true)
//
// The stdout exporters write to stderr, since stdout carries the stdio
// MCP transport.
package instrumentation
