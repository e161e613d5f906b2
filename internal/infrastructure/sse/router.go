package sse

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/felixgeelhaar/hireline/pkg/domain/audit"
)

// AuditSource is the part of the dashboard the router reads.
type AuditSource interface {
	GetTimeline() []audit.Event
	VerifyIntegrity() audit.Report
}

// Routes configures NewRouter. Nil members disable their endpoints.
type Routes struct {
	Mirror  *Mirror
	Audit   AuditSource
	Metrics http.Handler
}

// NewRouter mounts the local endpoints:
//
//	GET /events        audit SSE mirror
//	GET /audit         buffered events as JSON
//	GET /audit/verify  hash chain report for the buffered window
//	GET /metrics       Prometheus scrape
//	GET /healthz       liveness
func NewRouter(rt Routes) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "time": time.Now().UTC()})
	})
	if rt.Mirror != nil {
		r.Method(http.MethodGet, "/events", rt.Mirror)
	}
	if rt.Audit != nil {
		r.Get("/audit", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"events": rt.Audit.GetTimeline()})
		})
		r.Get("/audit/verify", func(w http.ResponseWriter, _ *http.Request) {
			rep := rt.Audit.VerifyIntegrity()
			status := http.StatusOK
			if !rep.OK {
				status = http.StatusConflict
			}
			writeJSON(w, status, rep)
		})
	}
	if rt.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", rt.Metrics)
	}
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
