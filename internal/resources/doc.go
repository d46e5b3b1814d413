// Package resources provides MCP resources for exposing the booking target.
// Resources are read-only data sources that MCP clients can fetch; here they
// let a client see which salon, service and staff member the
// get-haircut-times tool reads, and over which window.
package resources
