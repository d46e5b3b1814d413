package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/felixge/httpsnoop"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

const (
	// DefaultHTTPAddr is the default listen address of the streamable HTTP transport.
	DefaultHTTPAddr = ":8080"

	// MCPEndpointPath is where the streamable HTTP transport is served.
	MCPEndpointPath = "/mcp"
)

// HTTPServerConfig configures the streamable HTTP transport.
type HTTPServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string

	// DisableStreaming turns off SSE streaming of responses.
	DisableStreaming bool

	// RateLimit is the allowed requests per second per client IP on the
	// MCP endpoint. Zero disables rate limiting.
	RateLimit float64

	// RateBurst is the burst size per client IP.
	RateBurst int

	// TrustProxy keys rate limiting on X-Forwarded-For / X-Real-IP.
	TrustProxy bool
}

// HTTPServer serves the MCP server over streamable HTTP together with the
// health endpoints.
type HTTPServer struct {
	mcpServer     *mcpserver.MCPServer
	serverContext *ServerContext
	health        *HealthChecker
	limiter       *RateLimiter
	config        HTTPServerConfig

	mu         sync.Mutex
	httpServer *http.Server
	addr       string
	done       chan struct{}
}

// NewHTTPServer creates a streamable HTTP server for mcpServer.
func NewHTTPServer(mcpServer *mcpserver.MCPServer, sc *ServerContext, config HTTPServerConfig) (*HTTPServer, error) {
	if mcpServer == nil {
		return nil, errors.New("mcp server is required")
	}
	if config.Addr == "" {
		config.Addr = DefaultHTTPAddr
	}
	if config.RateLimit < 0 {
		return nil, fmt.Errorf("rate limit must not be negative, got %v", config.RateLimit)
	}

	s := &HTTPServer{
		mcpServer:     mcpServer,
		serverContext: sc,
		health:        NewHealthChecker(sc),
		config:        config,
		addr:          config.Addr,
		done:          make(chan struct{}),
	}
	if config.RateLimit > 0 {
		s.limiter = NewRateLimiter(config.RateLimit, config.RateBurst, config.TrustProxy)
	}
	return s, nil
}

// HealthChecker returns the health checker backing the probe endpoints.
func (s *HTTPServer) HealthChecker() *HealthChecker {
	return s.health
}

// Handler builds the HTTP handler: the MCP endpoint, rate limited, and
// the health probes, all wrapped in request metrics.
func (s *HTTPServer) Handler() http.Handler {
	opts := []mcpserver.StreamableHTTPOption{
		mcpserver.WithEndpointPath(MCPEndpointPath),
	}
	if s.config.DisableStreaming {
		opts = append(opts, mcpserver.WithDisableStreaming(true))
	}
	streamable := mcpserver.NewStreamableHTTPServer(s.mcpServer, opts...)

	var mcpHandler http.Handler = streamable
	if s.limiter != nil {
		mcpHandler = s.limiter.Middleware(mcpHandler)
	}

	mux := http.NewServeMux()
	mux.Handle(MCPEndpointPath, mcpHandler)
	s.health.RegisterHealthEndpoints(mux)

	return s.metricsMiddleware(mux)
}

// otherPathLabel is the path label of requests outside the served routes.
const otherPathLabel = "other"

// routeLabel maps a request path to a bounded set of metric labels.
func routeLabel(path string) string {
	switch path {
	case MCPEndpointPath, LivenessPath, ReadinessPath, DetailedHealthPath:
		return path
	}
	return otherPathLabel
}

// metricsMiddleware records every request as an http_requests_total sample.
func (s *HTTPServer) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		if s.serverContext != nil {
			s.serverContext.Metrics().RecordHTTPRequest(r.Context(), r.Method, routeLabel(r.URL.Path), m.Code, m.Duration)
		}
	})
}

// Start listens on the configured address and serves until Shutdown.
func (s *HTTPServer) Start() error {
	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	return s.Serve(listener)
}

// Serve serves on an existing listener until Shutdown.
func (s *HTTPServer) Serve(listener net.Listener) error {
	s.mu.Lock()
	s.addr = listener.Addr().String()
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	if s.limiter != nil {
		go s.limiter.RunCleanup(s.done)
	}

	slog.Info("starting streamable HTTP server", "addr", s.addr, "endpoint", MCPEndpointPath)
	return srv.Serve(listener)
}

// Addr returns the listen address, resolved once the server is serving.
func (s *HTTPServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Shutdown marks the server not ready and gracefully stops it.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)

	s.mu.Lock()
	srv := s.httpServer
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
