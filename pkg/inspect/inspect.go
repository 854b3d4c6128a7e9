// Package inspect exposes a read-only HTTP surface over a running Rivet
// runtime: a JSON snapshot of the mounted tree and instance registries,
// plus the runtime's Prometheus metrics. Debug tooling only; it never
// mutates the tree.
package inspect

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rivet-ui/rivet/pkg/runtime"
)

// Handler builds the inspector's HTTP handler for one runtime.
func Handler(rt *runtime.Runtime, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "inspect")

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/debug/tree", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, logger, rt.Snapshot())
	})

	r.Get("/debug/instances", func(w http.ResponseWriter, _ *http.Request) {
		snap := rt.Snapshot()
		writeJSON(w, logger, map[string]any{
			"stateful":  snap.StatefulInstances,
			"stateless": snap.StatelessInstances,
			"pending":   snap.PendingUpdates,
			"portals":   snap.Portals,
		})
	})

	r.Handle("/metrics", promhttp.HandlerFor(rt.Gatherer(), promhttp.HandlerOpts{}))

	return r
}

// Serve runs the inspector on addr until the listener fails. Meant for
// development builds; callers wanting shutdown control should mount
// Handler on their own server.
func Serve(addr string, rt *runtime.Runtime, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("inspector listening", "addr", addr)
	return http.ListenAndServe(addr, Handler(rt, logger))
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logger.Error("snapshot encode failed", "error", err)
	}
}
