package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/haircut-mcp/internal/config"
)

// BookingConfigURI is the URI of the booking target resource.
const BookingConfigURI = "booking://config"

// BookingTarget is the JSON body of the booking target resource.
type BookingTarget struct {
	ServiceID   string `json:"serviceId"`
	SalonID     string `json:"salonId"`
	StaffID     string `json:"staffId"`
	StaffName   string `json:"staffName"`
	WindowStart string `json:"windowStart"`
	WindowEnd   string `json:"windowEnd"`
	Timezone    string `json:"timezone"`
	Currency    string `json:"currency"`
	BaseURL     string `json:"baseUrl"`
}

// NewBookingTarget builds the resource body from cfg. Window bounds are
// rendered as RFC 3339 in the configured location.
func NewBookingTarget(cfg *config.Config) BookingTarget {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	return BookingTarget{
		ServiceID:   cfg.ServiceID,
		SalonID:     cfg.SalonID,
		StaffID:     cfg.StaffID,
		StaffName:   cfg.StaffName,
		WindowStart: time.UnixMilli(cfg.WindowStart).In(loc).Format(time.RFC3339),
		WindowEnd:   time.UnixMilli(cfg.WindowEnd).In(loc).Format(time.RFC3339),
		Timezone:    loc.String(),
		Currency:    cfg.Currency,
		BaseURL:     cfg.BaseURL,
	}
}

// RegisterBookingResources registers the booking target resource.
func RegisterBookingResources(s *mcpserver.MCPServer, cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("booking configuration is required")
	}

	target := NewBookingTarget(cfg)

	resource := mcp.NewResource(
		BookingConfigURI,
		"Booking Target",
		mcp.WithResourceDescription("Salon, service, staff member and window the availability lookup reads"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleBookingTarget(ctx, request, target)
	})

	return nil
}

func handleBookingTarget(_ context.Context, request mcp.ReadResourceRequest, target BookingTarget) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(target, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal booking target: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
