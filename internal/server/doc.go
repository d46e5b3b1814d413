// Package server provides the MCP server context and the HTTP surfaces of
// haircut-mcp.
//
// # Key Components
//
// ServerContext carries what tool handlers need: the availability
// reporter, the metrics recorder and the audit logger. It is safe for
// concurrent use.
//
// HTTPServer exposes the MCP server over the streamable HTTP transport at
// /mcp, next to the Kubernetes probes /healthz, /readyz and
// /healthz/detailed. The MCP endpoint can be rate limited per client IP.
//
// MetricsServer serves Prometheus metrics on a dedicated port, isolated
// from MCP traffic.
package server
