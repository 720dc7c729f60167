// Package httpapi mounts the gateway's operational surface — health,
// readiness, and metrics — on a chi mux alongside the MCP transport
// endpoint.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shipsecai/studio-mcp-gateway/pkg/gateway/runstatus"
	"github.com/shipsecai/studio-mcp-gateway/pkg/gateway/services"
)

// pinger is implemented by cache backends that can report reachability
// (RedisCache); MemoryCache does not implement it and is treated as always
// reachable.
type pinger interface {
	Ping(ctx context.Context) error
}

// Mount attaches /healthz, /readyz, and /metrics to r.
func Mount(r chi.Router, facade *services.Facade, cache runstatus.Cache, metrics *Metrics) {
	r.Get("/healthz", handleHealthz)
	r.Get("/readyz", handleReadyz(facade, cache))
	r.Handle("/metrics", promhttp.Handler())
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, http.StatusOK, map[string]any{"status": "ok"})
}

// handleReadyz reports ready only once the facade has its minimum backing
// service wired and the status cache (if it can be pinged) is reachable.
func handleReadyz(facade *services.Facade, cache runstatus.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !facade.Ready() {
			writeStatus(w, http.StatusServiceUnavailable, map[string]any{
				"status": "not ready",
				"reason": "workflows service not configured",
			})
			return
		}
		if p, ok := cache.(pinger); ok {
			if err := p.Ping(r.Context()); err != nil {
				writeStatus(w, http.StatusServiceUnavailable, map[string]any{
					"status": "not ready",
					"reason": "status cache unreachable: " + err.Error(),
				})
				return
			}
		}
		writeStatus(w, http.StatusOK, map[string]any{"status": "ready"})
	}
}

func writeStatus(w http.ResponseWriter, code int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
