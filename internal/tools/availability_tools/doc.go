// Package availability_tools provides the MCP tool that reports open
// appointment slots from BokaDirekt.
//
// # Available Tools
//
//   - get-haircut-times: List the available appointment times of the
//     configured salon, service and staff member. Takes no arguments.
//
// The tool result carries the human-readable summary as text content and
// the full availability report as structured content. Upstream failures
// are reported as tool errors.
package availability_tools
