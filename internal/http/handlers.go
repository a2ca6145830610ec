package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	health := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).String(),
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(health)
}

// handleReady reports whether templates are loaded and the extract can be read.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if snap, err := s.loader.Snapshot(ctx, s.cfg.DataPath); err != nil {
		checks["dataset"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["dataset"] = map[string]any{
			"status":  "ok",
			"rows":    snap.Table.Len(),
			"columns": len(snap.Table.Columns()),
			"notices": len(snap.Notices),
		}
	}

	stats := s.loader.Stats()
	checks["cache"] = map[string]any{
		"dataset_entries": stats.Entries,
		"render_entries":  s.renders.Size(),
		"status":          "ok",
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.loginLimiter.ActiveClients(),
		"status":         "ok",
	}

	response := map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}

	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(response)
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	securityMetrics := s.securityDetector.GetMetrics()
	rateLimitMetrics := s.loginLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()
	datasetStats := s.loader.Stats()

	activeSessions := 0
	if s.sessions != nil {
		activeSessions = s.sessions.Active()
	}

	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", traceMetrics.TotalRequests)

	fmt.Fprintf(w, "# HELP http_server_errors_total Responses with status 5xx\n")
	fmt.Fprintf(w, "# TYPE http_server_errors_total counter\n")
	fmt.Fprintf(w, "http_server_errors_total %d\n\n", traceMetrics.ServerErrors)

	fmt.Fprintf(w, "# HELP http_response_time_avg_microseconds Average response time\n")
	fmt.Fprintf(w, "# TYPE http_response_time_avg_microseconds gauge\n")
	fmt.Fprintf(w, "http_response_time_avg_microseconds %d\n\n", traceMetrics.AverageResponseTime)

	fmt.Fprintf(w, "# HELP logins_total Login attempts by result\n")
	fmt.Fprintf(w, "# TYPE logins_total counter\n")
	fmt.Fprintf(w, "logins_total{result=\"ok\"} %d\n", s.appMetrics.loginsOK.Load())
	fmt.Fprintf(w, "logins_total{result=\"failed\"} %d\n\n", s.appMetrics.loginsFailed.Load())

	fmt.Fprintf(w, "# HELP active_sessions Currently active sessions\n")
	fmt.Fprintf(w, "# TYPE active_sessions gauge\n")
	fmt.Fprintf(w, "active_sessions %d\n\n", activeSessions)

	fmt.Fprintf(w, "# HELP dashboard_renders_total Dashboards computed from the extract\n")
	fmt.Fprintf(w, "# TYPE dashboard_renders_total counter\n")
	fmt.Fprintf(w, "dashboard_renders_total %d\n\n", s.appMetrics.renders.Load())

	fmt.Fprintf(w, "# HELP dashboard_render_errors_total Renders halted by a load error\n")
	fmt.Fprintf(w, "# TYPE dashboard_render_errors_total counter\n")
	fmt.Fprintf(w, "dashboard_render_errors_total %d\n\n", s.appMetrics.renderErrors.Load())

	fmt.Fprintf(w, "# HELP cache_hits_total Total cache hits\n")
	fmt.Fprintf(w, "# TYPE cache_hits_total counter\n")
	fmt.Fprintf(w, "cache_hits_total{type=\"dataset\"} %d\n", datasetStats.Hits)
	fmt.Fprintf(w, "cache_hits_total{type=\"render\"} %d\n\n", s.appMetrics.renderCacheHits.Load())

	fmt.Fprintf(w, "# HELP cache_misses_total Total cache misses\n")
	fmt.Fprintf(w, "# TYPE cache_misses_total counter\n")
	fmt.Fprintf(w, "cache_misses_total{type=\"dataset\"} %d\n\n", datasetStats.Misses)

	fmt.Fprintf(w, "# HELP cache_entries Current cache entries\n")
	fmt.Fprintf(w, "# TYPE cache_entries gauge\n")
	fmt.Fprintf(w, "cache_entries{type=\"dataset\"} %d\n", datasetStats.Entries)
	fmt.Fprintf(w, "cache_entries{type=\"render\"} %d\n\n", s.renders.Size())

	fmt.Fprintf(w, "# HELP rate_limit_hits_total Total rate limit hits\n")
	fmt.Fprintf(w, "# TYPE rate_limit_hits_total counter\n")
	fmt.Fprintf(w, "rate_limit_hits_total %d\n\n", rateLimitMetrics.TotalHits)

	fmt.Fprintf(w, "# HELP active_rate_limit_clients Currently tracked rate limit clients\n")
	fmt.Fprintf(w, "# TYPE active_rate_limit_clients gauge\n")
	fmt.Fprintf(w, "active_rate_limit_clients %d\n\n", rateLimitMetrics.ClientCount)

	fmt.Fprintf(w, "# HELP suspicious_requests_total Total suspicious requests detected\n")
	fmt.Fprintf(w, "# TYPE suspicious_requests_total counter\n")
	fmt.Fprintf(w, "suspicious_requests_total %d\n\n", securityMetrics.SuspiciousRequests)

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n\n", time.Since(s.appMetrics.uptime).Seconds())
}
