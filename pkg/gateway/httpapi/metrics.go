package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is the gateway's small Prometheus surface, registered against the
// default registry on construction.
type Metrics struct {
	ToolCallsTotal        *prometheus.CounterVec
	PermissionDenialTotal *prometheus.CounterVec
}

// NewMetrics registers and returns the gateway's metric collectors.
// sessionCount and activeTaskCount are polled live on every scrape rather
// than tracked by scattering Inc/Dec calls through the session manager and
// task engine — both already hold the authoritative count.
func NewMetrics(sessionCount, activeTaskCount func() int) *Metrics {
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "studio_mcp_active_sessions",
		Help: "Number of currently active MCP sessions.",
	}, func() float64 { return float64(sessionCount()) })

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "studio_mcp_active_tasks",
		Help: "Number of background tasks not yet in a terminal state.",
	}, func() float64 { return float64(activeTaskCount()) })

	return &Metrics{
		ToolCallsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "studio_mcp_tool_calls_total",
			Help: "Total MCP tool invocations, by tool name and outcome.",
		}, []string{"tool", "outcome"}),
		PermissionDenialTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "studio_mcp_permission_denials_total",
			Help: "Total permission-gate denials, by scope and action.",
		}, []string{"scope", "action"}),
	}
}
