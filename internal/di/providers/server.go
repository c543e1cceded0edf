package providers

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/samber/do/v2"

	"github.com/hookahmix/miniapp/internal/config"
	"github.com/hookahmix/miniapp/internal/metrics"
)

// MetricsServerHandle wraps the /metrics listener with Shutdownable. Server is
// nil when no address is configured.
type MetricsServerHandle struct {
	*http.Server
	addr string
}

// ListenAddr returns the bound address, or "" when the endpoint is disabled.
func (h *MetricsServerHandle) ListenAddr() string {
	return h.addr
}

// Shutdown implements do.Shutdownable.
func (h *MetricsServerHandle) Shutdown() error {
	if h.Server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideMetricsServer starts the Prometheus endpoint when configured.
func ProvideMetricsServer(i do.Injector) (*MetricsServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	if cfg.Metrics.Addr == "" {
		return &MetricsServerHandle{}, nil
	}

	collector := do.MustInvoke[*metrics.Collector](i)
	log := do.MustInvoke[*slog.Logger](i)

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Method(http.MethodGet, "/metrics", collector.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	ln, err := net.Listen("tcp", cfg.Metrics.Addr)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Start in background
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server error", "error", err)
		}
	}()

	log.Info("metrics endpoint listening", "addr", ln.Addr().String())
	return &MetricsServerHandle{Server: srv, addr: ln.Addr().String()}, nil
}
