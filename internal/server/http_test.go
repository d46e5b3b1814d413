package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/teemow/haircut-mcp/internal/instrumentation"
)

const initializeRequest = `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1.0.0"}}}`

func newTestMCPServer() *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer("haircut-mcp-test", "1.0.0", mcpserver.WithToolCapabilities(true))
	s.AddTool(mcp.NewTool("ping", mcp.WithDescription("test tool")),
		func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		})
	return s
}

func postMCP(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, MCPEndpointPath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	req.RemoteAddr = "192.0.2.1:4000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewHTTPServer(t *testing.T) {
	_, err := NewHTTPServer(nil, nil, HTTPServerConfig{})
	require.Error(t, err)

	_, err = NewHTTPServer(newTestMCPServer(), nil, HTTPServerConfig{RateLimit: -1})
	require.Error(t, err)

	srv, err := NewHTTPServer(newTestMCPServer(), nil, HTTPServerConfig{})
	require.NoError(t, err)
	assert.Equal(t, DefaultHTTPAddr, srv.Addr())
	assert.Nil(t, srv.limiter, "rate limiting is off by default")
}

func TestHTTPServer_Initialize(t *testing.T) {
	srv, err := NewHTTPServer(newTestMCPServer(), newTestServerContext(t), HTTPServerConfig{})
	require.NoError(t, err)

	rec := postMCP(t, srv.Handler(), initializeRequest)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "haircut-mcp-test")
}

func TestHTTPServer_HealthEndpoints(t *testing.T) {
	srv, err := NewHTTPServer(newTestMCPServer(), newTestServerContext(t), HTTPServerConfig{})
	require.NoError(t, err)
	h := srv.Handler()

	for _, path := range []string{LivenessPath, ReadinessPath, DetailedHealthPath} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestHTTPServer_RateLimitsMCPEndpoint(t *testing.T) {
	srv, err := NewHTTPServer(newTestMCPServer(), newTestServerContext(t), HTTPServerConfig{
		RateLimit: 0.001,
		RateBurst: 1,
	})
	require.NoError(t, err)
	h := srv.Handler()

	first := postMCP(t, h, initializeRequest)
	assert.NotEqual(t, http.StatusTooManyRequests, first.Code)

	second := postMCP(t, h, initializeRequest)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	// Probes are never rate limited.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHTTPServer_RecordsRequestMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	metrics, err := instrumentation.NewMetrics(mp.Meter("test"))
	require.NoError(t, err)

	sc := newTestServerContext(t)
	sc.SetMetrics(metrics)

	srv, err := NewHTTPServer(newTestMCPServer(), sc, HTTPServerConfig{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, LivenessPath, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	for _, path := range []string{"/wp-login.php", "/random/a1b2c3"} {
		rec = httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	got := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "http_requests_total" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				path, _ := dp.Attributes.Value("path")
				status, _ := dp.Attributes.Value("status")
				got[path.AsString()+" "+status.AsString()] += dp.Value
			}
		}
	}
	assert.Equal(t, map[string]int64{"/healthz 200": 1, "other 404": 2}, got)
}

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: MCPEndpointPath, want: MCPEndpointPath},
		{path: LivenessPath, want: LivenessPath},
		{path: ReadinessPath, want: ReadinessPath},
		{path: DetailedHealthPath, want: DetailedHealthPath},
		{path: "/", want: "other"},
		{path: "/mcp/extra", want: "other"},
		{path: "/metrics", want: "other"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, routeLabel(tt.path))
		})
	}
}

func TestHTTPServer_ShutdownMarksNotReady(t *testing.T) {
	srv, err := NewHTTPServer(newTestMCPServer(), newTestServerContext(t), HTTPServerConfig{})
	require.NoError(t, err)

	require.NoError(t, srv.Shutdown(context.Background()))
	assert.False(t, srv.HealthChecker().IsReady())

	// A second shutdown must not panic on the closed done channel.
	assert.NoError(t, srv.Shutdown(context.Background()))
}
