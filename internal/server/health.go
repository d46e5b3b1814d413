package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Probe paths served next to the MCP endpoint.
const (
	LivenessPath       = "/healthz"
	ReadinessPath      = "/readyz"
	DetailedHealthPath = "/healthz/detailed"
)

const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"
)

// BookingTarget is the salon, service and staff member the availability
// tool reads. Empty identifiers are sent upstream as empty path segments,
// so a target missing any of them cannot produce a useful answer.
type BookingTarget struct {
	ServiceID string `json:"serviceId"`
	SalonID   string `json:"salonId"`
	StaffID   string `json:"staffId"`
	StaffName string `json:"staffName,omitempty"`
}

// Missing returns the names of the empty identifiers, in path order.
func (t BookingTarget) Missing() []string {
	var missing []string
	if strings.TrimSpace(t.ServiceID) == "" {
		missing = append(missing, "service_id")
	}
	if strings.TrimSpace(t.SalonID) == "" {
		missing = append(missing, "salon_id")
	}
	if strings.TrimSpace(t.StaffID) == "" {
		missing = append(missing, "staff_id")
	}
	return missing
}

// HealthChecker serves the Kubernetes probes of the HTTP transport.
// Readiness covers the shutdown state and, once a booking target is set,
// whether that target is complete.
type HealthChecker struct {
	ready         atomic.Bool
	serverContext *ServerContext
	startTime     time.Time

	mu        sync.RWMutex
	version   string
	toolCount func() int
	target    *BookingTarget
}

// NewHealthChecker creates a HealthChecker that starts out ready.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{
		serverContext: sc,
		startTime:     time.Now(),
	}
	h.ready.Store(true)
	return h
}

// SetVersion sets the version reported by the detailed endpoint.
func (h *HealthChecker) SetVersion(version string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.version = version
}

// SetToolCounter sets the function reporting the number of registered tools.
func (h *HealthChecker) SetToolCounter(count func() int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.toolCount = count
}

// SetBookingTarget enables the "config" readiness check for target and
// reports it on the detailed endpoint.
func (h *HealthChecker) SetBookingTarget(target BookingTarget) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.target = &target
}

// SetReady sets the readiness state of the server.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady returns whether the server is ready to receive traffic.
func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

// HealthResponse is the body of /healthz and /readyz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse is the body of /healthz/detailed.
type DetailedHealthResponse struct {
	Status  string            `json:"status"`
	Uptime  string            `json:"uptime"`
	Version string            `json:"version,omitempty"`
	Tools   int               `json:"tools"`
	Checks  map[string]string `json:"checks"`
	Target  *BookingTarget    `json:"target,omitempty"`
}

// readiness evaluates every check. status is "ok" only if all pass;
// a shutdown wins over any other failure.
func (h *HealthChecker) readiness() (status string, checks map[string]string) {
	checks = map[string]string{
		"ready":    healthStatusOK,
		"shutdown": healthStatusOK,
	}
	status = healthStatusOK

	if !h.ready.Load() {
		checks["ready"] = healthStatusNotReady
		status = healthStatusNotReady
	}

	h.mu.RLock()
	target := h.target
	h.mu.RUnlock()
	if target != nil {
		if missing := target.Missing(); len(missing) > 0 {
			checks["config"] = "missing " + strings.Join(missing, ", ")
			status = healthStatusNotReady
		} else {
			checks["config"] = healthStatusOK
		}
	}

	if h.serverContext != nil && h.serverContext.IsShutdown() {
		checks["shutdown"] = healthStatusShuttingDown
		status = healthStatusShuttingDown
	}
	return status, checks
}

func writeHealthJSON(w http.ResponseWriter, status string, body any) {
	w.Header().Set("Content-Type", "application/json")
	if status == healthStatusOK {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(body)
}

// LivenessHandler answers /healthz. It only shows the process is serving.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeHealthJSON(w, healthStatusOK, HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler answers /readyz with 503 while any check fails.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status, checks := h.readiness()
		respStatus := status
		if respStatus == healthStatusShuttingDown {
			respStatus = healthStatusNotReady
		}
		writeHealthJSON(w, status, HealthResponse{Status: respStatus, Checks: checks})
	})
}

// DetailedHealthHandler answers /healthz/detailed with the readiness checks,
// uptime, version, tool count and booking target.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status, checks := h.readiness()

		h.mu.RLock()
		resp := DetailedHealthResponse{
			Status:  status,
			Uptime:  time.Since(h.startTime).Truncate(time.Second).String(),
			Version: h.version,
			Checks:  checks,
			Target:  h.target,
		}
		if h.toolCount != nil {
			resp.Tools = h.toolCount()
		}
		h.mu.RUnlock()

		writeHealthJSON(w, status, resp)
	})
}

// RegisterHealthEndpoints mounts the probes on mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle(LivenessPath, h.LivenessHandler())
	mux.Handle(ReadinessPath, h.ReadinessHandler())
	mux.Handle(DetailedHealthPath, h.DetailedHealthHandler())
}
