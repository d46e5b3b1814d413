package availability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/haircut-mcp/internal/bokadirekt"
	"github.com/teemow/haircut-mcp/internal/instrumentation"
	"github.com/teemow/haircut-mcp/internal/logging"
)

// Config fixes everything a lookup needs. It is set once at construction.
type Config struct {
	ServiceID string
	SalonID   string
	StaffID   string
	StaffName string

	// WindowStart and WindowEnd bound the queried window, in epoch milliseconds.
	WindowStart int64
	WindowEnd   int64

	// Location is used to render dates and times. Defaults to time.Local.
	Location *time.Location

	// Currency is reported in the price range. Defaults to DefaultCurrency.
	Currency string
}

// Query returns the upstream query for the configured window.
func (c Config) Query() bokadirekt.Query {
	return bokadirekt.Query{
		ServiceID:   c.ServiceID,
		SalonID:     c.SalonID,
		StaffID:     c.StaffID,
		WindowStart: c.WindowStart,
		WindowEnd:   c.WindowEnd,
	}
}

// Fetcher reads raw availability. *bokadirekt.Client implements it.
type Fetcher interface {
	FetchAvailability(ctx context.Context, q bokadirekt.Query) (*bokadirekt.Availability, error)
}

// Result is the outcome of GetAvailableTimes.
type Result struct {
	Text   string
	Report *Report
}

// Reporter fetches and formats availability for one configured
// salon/service/staff combination.
type Reporter struct {
	cfg     Config
	fetcher Fetcher
	now     func() time.Time
	logger  *slog.Logger
}

// ReporterOption configures a Reporter.
type ReporterOption func(*Reporter)

// WithClock overrides the clock used for the report's current date.
func WithClock(now func() time.Time) ReporterOption {
	return func(r *Reporter) {
		r.now = now
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) ReporterOption {
	return func(r *Reporter) {
		r.logger = logger
	}
}

// NewReporter creates a Reporter.
func NewReporter(cfg Config, fetcher Fetcher, opts ...ReporterOption) *Reporter {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Currency == "" {
		cfg.Currency = DefaultCurrency
	}
	r := &Reporter{
		cfg:     cfg,
		fetcher: fetcher,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Config returns the reporter's configuration.
func (r *Reporter) Config() Config {
	return r.cfg
}

// GetAvailableTimes fetches the configured window once and returns the
// rendered text together with the structured report. On any failure it
// returns no result.
func (r *Reporter) GetAvailableTimes(ctx context.Context) (*Result, error) {
	ctx, span := instrumentation.StartSpan(ctx, "availability.get_available_times",
		attribute.String(instrumentation.SpanAttrService, instrumentation.ServiceBokaDirekt),
	)
	defer span.End()

	logger := logging.WithOperation(r.logger, "get_available_times")
	start := time.Now()

	avail, err := r.fetcher.FetchAvailability(ctx, r.cfg.Query())
	if err != nil {
		logger.Error("Error fetching available times", logging.Err(err), logging.Duration(time.Since(start)))
		instrumentation.SetSpanError(span, err)
		return nil, fmt.Errorf("failed to fetch available times: %w", err)
	}

	dir := NewDirectory(r.cfg.StaffID, r.cfg.StaffName)
	report := BuildReport(FormatDate(r.now(), r.cfg.Location), avail, dir, r.cfg.Location, r.cfg.Currency)
	text := RenderText(report)

	instrumentation.AddSpanEvent(span, "report.built",
		attribute.Int(instrumentation.SpanAttrSlots, report.TotalAvailableSlots),
		attribute.Int(instrumentation.SpanAttrDates, len(report.AvailableDates)),
	)
	instrumentation.SetSpanSuccess(span)

	logger.Debug("available times fetched",
		logging.Slots(report.TotalAvailableSlots),
		logging.Duration(time.Since(start)))

	return &Result{Text: text, Report: report}, nil
}
