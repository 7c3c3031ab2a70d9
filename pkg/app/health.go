package app

import (
	"context"
	"net/http"
	"time"

	httputil "vintrek/pkg/http"
	"vintrek/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type HealthResponse struct {
	Status   string            `json:"status"`
	Backends map[string]string `json:"backends,omitempty"`
}

// Pinger is a backend the readiness check pings.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	backends map[string]Pinger
	log      *logger.Logger
}

func NewHealthHandler(backends map[string]Pinger, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		backends: backends,
		log:      log,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok"}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

// Ready reports unavailable when any backend fails its ping.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	backends := make(map[string]string, len(h.backends))
	for name, ping := range h.backends {
		if err := ping(ctx); err != nil {
			h.log.Error("Backend health check failed", "backend", name, "error", err, "path", r.URL.Path)
			backends[name] = "error"
			status, code = "unavailable", http.StatusServiceUnavailable
			continue
		}
		backends[name] = "ok"
	}

	if err := httputil.WriteJSON(w, code, HealthResponse{Status: status, Backends: backends}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
