package api

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"roboquant/internal/config"
	"roboquant/internal/journal"
)

// Handlers holds all HTTP handler dependencies: a MetricsLogger to read
// from and a Hub to upgrade websocket clients onto.
type Handlers struct {
	logger  journal.MetricsLogger
	cfg     config.DashboardConfig
	hub     *journal.Hub
	slogger *slog.Logger
}

// NewHandlers creates a new handlers instance.
func NewHandlers(logger journal.MetricsLogger, cfg config.DashboardConfig, hub *journal.Hub, slogger *slog.Logger) *Handlers {
	return &Handlers{
		logger:  logger,
		cfg:     cfg,
		hub:     hub,
		slogger: slogger.With("component", "api-handlers"),
	}
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// HandleRuns lists every run name the logger has seen and every metric
// name logged under any of them.
func (h *Handlers) HandleRuns(w http.ResponseWriter, r *http.Request) {
	resp := RunsResponse{Runs: h.logger.Runs(), Metrics: h.logger.GetMetricNames()}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.slogger.Error("failed to encode runs response", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// HandleMetric serves GET /metrics?name=<metric>&run=<run>. run may be
// omitted, in which case the logger resolves its own default (for the
// in-memory loggers, the run most recently passed to Log).
func (h *Handlers) HandleMetric(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "name query parameter is required", http.StatusBadRequest)
		return
	}
	run := r.URL.Query().Get("run")

	var ts = func() MetricSeries {
		if run != "" {
			series := h.logger.GetMetric(name, run)
			return MetricSeries{Name: name, Run: run, Times: series.Times, Values: series.Values}
		}
		series := h.logger.GetMetric(name)
		return MetricSeries{Name: name, Times: series.Times, Values: series.Values}
	}()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ts); err != nil {
		h.slogger.Error("failed to encode metric series", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// HandleWebSocket upgrades the connection and registers a new client on
// the metrics stream Hub.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(req *http.Request) bool {
			return isOriginAllowed(req.Header.Get("Origin"), h.cfg, req.Host)
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.slogger.Error("websocket upgrade failed", "error", err)
		return
	}

	journal.NewClient(h.hub, conn)
}

func isOriginAllowed(origin string, cfg config.DashboardConfig, reqHost string) bool {
	if origin == "" {
		// Non-browser clients often omit Origin; keep this path functional.
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	normalized := normalizeOrigin(originURL.Scheme, originURL.Host)
	if normalized == "" {
		return false
	}

	if len(cfg.AllowedOrigins) > 0 {
		for _, allowed := range cfg.AllowedOrigins {
			u, err := url.Parse(allowed)
			if err != nil {
				continue
			}
			if normalized == normalizeOrigin(u.Scheme, u.Host) {
				return true
			}
		}
		return false
	}

	host := strings.ToLower(originURL.Hostname())
	if host == "localhost" || host == "127.0.0.1" || host == "::1" {
		return true
	}

	reqHostname := normalizeHost(reqHost)
	return reqHostname != "" && host == reqHostname
}

func normalizeOrigin(scheme, host string) string {
	if scheme == "" || host == "" {
		return ""
	}
	return strings.ToLower(scheme) + "://" + strings.ToLower(host)
}

func normalizeHost(hostport string) string {
	hostport = strings.TrimSpace(hostport)
	if hostport == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(hostport); err == nil {
		return strings.ToLower(host)
	}
	return strings.ToLower(hostport)
}
