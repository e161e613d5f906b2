// Package backend is a typed client for the recruiting orchestrator's REST
// API: snapshot reads for the dashboard and fire-and-forget commands whose
// responses only trigger a refresh.
//
// Usage:
//
//	c := backend.NewClient("http://localhost:8000", backend.WithTimeout(2*time.Second))
//	kpi, _ := c.KPI(ctx)
//	events, _ := c.Audit(ctx)
package backend
