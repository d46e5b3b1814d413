// Package logging provides structured logging utilities for haircut-mcp.
//
// This package centralizes logging patterns to ensure consistent, structured
// logging throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - Consistent attribute naming across the codebase
//   - Logger adapter interface for packages that only need leveled logging
//
// # Usage Patterns
//
// Install the process logger once at startup. Logs always go to stderr because
// the stdio MCP transport uses stdout for protocol messages:
//
//	logger := logging.Setup(nil, debug)
//
// Create a logger with standard attributes:
//
//	logger := logging.WithTool(slog.Default(), "get-haircut-times")
//	logger.Info("availability fetched",
//	    logging.Slots(12),
//	    logging.Status(logging.StatusSuccess))
package logging
