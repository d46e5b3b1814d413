package availability_tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/haircut-mcp/internal/bokadirekt"
	"github.com/teemow/haircut-mcp/internal/instrumentation"
	"github.com/teemow/haircut-mcp/internal/server"
	"github.com/teemow/haircut-mcp/internal/tools/common"
)

// ToolGetHaircutTimes is the name of the availability tool.
const ToolGetHaircutTimes = "get-haircut-times"

// RegisterAvailabilityTools registers the availability tools with the MCP server
func RegisterAvailabilityTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if s == nil || sc == nil {
		return errors.New("mcp server and server context are required")
	}

	getHaircutTimesTool := mcp.NewTool(ToolGetHaircutTimes,
		mcp.WithDescription("Get available appointment times from BokaDirekt"),
		mcp.WithTitleAnnotation("Available haircut times"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.AddTool(getHaircutTimesTool, common.InstrumentedToolHandlerWithService(
		ToolGetHaircutTimes,
		instrumentation.ServiceBokaDirekt,
		instrumentation.OperationAvailability,
		sc,
		handleGetHaircutTimes(sc),
	))

	return nil
}

func handleGetHaircutTimes(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		// The reporter logs failures; the wrapper audits them.
		result, err := sc.Reporter().GetAvailableTimes(ctx)
		if err != nil {
			return mcp.NewToolResultError(errorMessage(err)), nil
		}

		sc.Metrics().RecordAvailableSlots(ctx, result.Report.TotalAvailableSlots)
		return mcp.NewToolResultStructured(result.Report, result.Text), nil
	}
}

// errorMessage maps a reporter failure to the text of the tool error result.
func errorMessage(err error) string {
	var reqErr *bokadirekt.RequestError
	var parseErr *bokadirekt.ParseError

	switch {
	case errors.As(err, &reqErr):
		return fmt.Sprintf("Failed to fetch available times: BokaDirekt responded with status %d", reqErr.StatusCode)
	case errors.As(err, &parseErr):
		return fmt.Sprintf("Failed to read available times: the BokaDirekt response could not be parsed: %v", parseErr.Err)
	case errors.Is(err, context.DeadlineExceeded):
		return "Failed to fetch available times: the request to BokaDirekt timed out"
	case errors.Is(err, context.Canceled):
		return "Failed to fetch available times: the request was cancelled"
	default:
		return fmt.Sprintf("Failed to fetch available times: %v", err)
	}
}
