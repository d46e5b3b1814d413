package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/haircut-mcp/internal/availability"
	"github.com/teemow/haircut-mcp/internal/bokadirekt"
	"github.com/teemow/haircut-mcp/internal/config"
	"github.com/teemow/haircut-mcp/internal/instrumentation"
	"github.com/teemow/haircut-mcp/internal/logging"
	"github.com/teemow/haircut-mcp/internal/resources"
	"github.com/teemow/haircut-mcp/internal/server"
	"github.com/teemow/haircut-mcp/internal/tools/availability_tools"
)

const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

// serveOptions holds the flags of the serve command.
type serveOptions struct {
	transport        string
	httpAddr         string
	debugMode        bool
	envFile          string
	disableStreaming bool
	rateLimit        float64
	rateBurst        int
	trustProxy       bool
	metrics          MetricsConfig
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server providing the
get-haircut-times tool to AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport on /mcp

Booking configuration is read from the environment, optionally supplied
through a .env file in the working directory:
  BOKADIREKT_SERVICE_ID, BOKADIREKT_SALOON_ID, BOKADIREKT_PERSON_ID,
  BOKADIREKT_PERSON_NAME, BOKADIREKT_WINDOW_START, BOKADIREKT_WINDOW_END,
  BOKADIREKT_BASE_URL, BOKADIREKT_TIMEOUT, BOKADIREKT_TIMEZONE,
  BOKADIREKT_CURRENCY`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.metrics = resolveMetricsConfig(cmd, opts.metrics)
			return runServe(opts)
		},
	}

	cmd.Flags().BoolVar(&opts.debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&opts.transport, "transport", transportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", server.DefaultHTTPAddr, "HTTP server address (for streamable-http transport)")
	cmd.Flags().StringVar(&opts.envFile, "env-file", config.DefaultEnvFile, "Dotenv file with BOKADIREKT_* settings (ignored if missing)")
	cmd.Flags().BoolVar(&opts.disableStreaming, "disable-streaming", false, "Disable streaming for HTTP transport (for compatibility with certain clients)")
	cmd.Flags().Float64Var(&opts.rateLimit, "rate-limit", server.DefaultRateLimit, "Requests per second per client IP on /mcp (0 disables)")
	cmd.Flags().IntVar(&opts.rateBurst, "rate-burst", server.DefaultRateBurst, "Burst size per client IP on /mcp")
	cmd.Flags().BoolVar(&opts.trustProxy, "trust-proxy", false, "Use X-Forwarded-For / X-Real-IP for rate limiting (only behind a trusted proxy)")

	// Metrics server flags
	cmd.Flags().BoolVar(&opts.metrics.Enabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&opts.metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

// resolveMetricsConfig applies METRICS_ENABLED and METRICS_ADDR for flags
// that were not set explicitly.
func resolveMetricsConfig(cmd *cobra.Command, mc MetricsConfig) MetricsConfig {
	if !cmd.Flags().Changed("metrics-enabled") {
		if v := os.Getenv("METRICS_ENABLED"); v != "" {
			if enabled, err := strconv.ParseBool(v); err == nil {
				mc.Enabled = enabled
			} else {
				slog.Warn("invalid METRICS_ENABLED value, keeping default", "value", v, "default", mc.Enabled)
			}
		}
	}
	if !cmd.Flags().Changed("metrics-addr") {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			mc.Addr = addr
		}
	}
	return mc
}

func runServe(opts serveOptions) error {
	if opts.transport != transportStdio && opts.transport != transportStreamableHTTP {
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", opts.transport)
	}

	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := logging.Setup(os.Stderr, opts.debugMode)

	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.Warn("error during instrumentation shutdown", logging.Err(err))
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if opts.transport != transportStdio && opts.metrics.Enabled && provider.HasPrometheus() {
		metricsServer, err = startMetricsServer(opts.metrics, provider)
		if err != nil {
			return err
		}
		logger.Info("metrics server started", "addr", metricsServer.Addr())
	}

	serverContext, err := server.NewServerContext(shutdownCtx, newReporter(cfg, logger))
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}

	// Set metrics and audit logger on server context for tool instrumentation
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging))
	}
	defer func() {
		// Shutdown metrics server first
		if metricsServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Warn("error during metrics server shutdown", logging.Err(err))
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("error during server context shutdown", logging.Err(err))
		}
	}()

	mcpSrv := newMCPServer(serverContext)
	if err := registerAllTools(mcpSrv, serverContext); err != nil {
		return err
	}
	if err := resources.RegisterBookingResources(mcpSrv, cfg); err != nil {
		return fmt.Errorf("failed to register resources: %w", err)
	}

	logger.Info("starting haircut-mcp",
		"version", version,
		"transport", opts.transport,
		"salon_id", cfg.SalonID,
		"service_id", cfg.ServiceID,
		"staff_id", cfg.StaffID,
	)

	switch opts.transport {
	case transportStreamableHTTP:
		target := server.BookingTarget{
			ServiceID: cfg.ServiceID,
			SalonID:   cfg.SalonID,
			StaffID:   cfg.StaffID,
			StaffName: cfg.StaffName,
		}
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, target, opts, logger)
	default:
		return runStdioServer(mcpSrv, logger)
	}
}

// startMetricsServer starts the metrics server and waits until it listens.
func startMetricsServer(mc MetricsConfig, provider *instrumentation.Provider) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    mc.Addr,
		Enabled:                 true,
		InstrumentationProvider: provider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	// Use ready channel to confirm metrics server started successfully
	metricsReady := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && !errors.Is(err, http.ErrServerClosed) {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	// Wait for metrics server to be ready or fail
	select {
	case <-metricsReady:
		return metricsServer, nil
	case err := <-metricsErr:
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("metrics server startup timed out")
	}
}

// newReporter wires the booking API client into an availability reporter.
func newReporter(cfg *config.Config, logger *slog.Logger) *availability.Reporter {
	opts := append(cfg.ClientOptions(), bokadirekt.WithLogger(logging.NewSlogAdapter(logging.WithService(logger, instrumentation.ServiceBokaDirekt))))
	client := bokadirekt.NewClient(opts...)
	return availability.NewReporter(cfg.ReporterConfig(), client, availability.WithLogger(logger))
}

// newMCPServer creates the MCP server with session hooks feeding the
// active sessions gauge.
func newMCPServer(sc *server.ServerContext) *mcpserver.MCPServer {
	hooks := &mcpserver.Hooks{}
	hooks.AddOnRegisterSession(func(ctx context.Context, session mcpserver.ClientSession) {
		sc.Metrics().IncrementActiveSessions(ctx)
		slog.Debug("mcp session registered", "session_id", session.SessionID())
	})
	hooks.AddOnUnregisterSession(func(ctx context.Context, session mcpserver.ClientSession) {
		sc.Metrics().DecrementActiveSessions(ctx)
		slog.Debug("mcp session unregistered", "session_id", session.SessionID())
	})

	return mcpserver.NewMCPServer("haircut-mcp", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
		mcpserver.WithHooks(hooks),
		mcpserver.WithRecovery(),
	)
}

func runStdioServer(mcpSrv *mcpserver.MCPServer, logger *slog.Logger) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		// stdout carries the protocol, so errors go through the stderr logger.
		errLogger := slog.NewLogLogger(logger.Handler(), slog.LevelError)
		if err := mcpserver.ServeStdio(mcpSrv, mcpserver.WithErrorLogger(errLogger)); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// registerAllTools registers all MCP tools
func registerAllTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Availability",
			register: func() error {
				return availability_tools.RegisterAvailabilityTools(mcpSrv, sc)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s tools: %w", reg.name, err)
		}
	}

	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, target server.BookingTarget, opts serveOptions, logger *slog.Logger) error {
	httpServer, err := server.NewHTTPServer(mcpSrv, sc, server.HTTPServerConfig{
		Addr:             opts.httpAddr,
		DisableStreaming: opts.disableStreaming,
		RateLimit:        opts.rateLimit,
		RateBurst:        opts.rateBurst,
		TrustProxy:       opts.trustProxy,
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	health := httpServer.HealthChecker()
	health.SetVersion(version)
	health.SetToolCounter(func() int { return len(mcpSrv.ListTools()) })
	health.SetBookingTarget(target)
	if missing := target.Missing(); len(missing) > 0 {
		logger.Warn("booking target incomplete, readiness will fail", "missing", missing)
	}

	fmt.Printf("Streamable HTTP server starting on %s\n", opts.httpAddr)
	fmt.Printf("  HTTP endpoint: %s\n", server.MCPEndpointPath)
	fmt.Printf("  Health endpoints: %s, %s, %s\n", server.LivenessPath, server.ReadinessPath, server.DetailedHealthPath)
	if opts.rateLimit > 0 {
		fmt.Printf("  Rate limit: %g req/s per client IP (burst %d)\n", opts.rateLimit, opts.rateBurst)
	}
	if opts.metrics.Enabled {
		fmt.Printf("  Metrics endpoint: %s/metrics\n", opts.metrics.Addr)
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		logger.Info("HTTP server stopped normally")
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}
