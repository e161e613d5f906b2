package sse_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/hireline/internal/infrastructure/sse"
	"github.com/felixgeelhaar/hireline/pkg/domain/audit"
)

type auditStub struct {
	events []audit.Event
	secret string
}

func (s auditStub) GetTimeline() []audit.Event     { return s.events }
func (s auditStub) VerifyIntegrity() audit.Report { return audit.Verify(s.events, s.secret) }

func serve(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRouter_AuditEndpoints(t *testing.T) {
	e1 := event("e1", "outreach.sent")
	audit.Seal(&e1, "", "s")
	e2 := event("e2", "schedule.booked")
	audit.Seal(&e2, e1.Hash, "s")

	h := sse.NewRouter(sse.Routes{Audit: auditStub{events: []audit.Event{e1, e2}, secret: "s"}})

	rec := serve(h, "/audit")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Events []audit.Event `json:"events"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Len(t, body.Events, 2)

	rec = serve(h, "/audit/verify")
	assert.Equal(t, http.StatusOK, rec.Code)

	h = sse.NewRouter(sse.Routes{Audit: auditStub{events: []audit.Event{e1, e2}, secret: "other"}})
	rec = serve(h, "/audit/verify")
	assert.Equal(t, http.StatusConflict, rec.Code)
	var rep audit.Report
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rep))
	assert.False(t, rep.OK)
	assert.Equal(t, 0, rep.BrokenAt)
}

func TestRouter_OptionalRoutes(t *testing.T) {
	h := sse.NewRouter(sse.Routes{})
	assert.Equal(t, http.StatusOK, serve(h, "/healthz").Code)
	assert.Equal(t, http.StatusNotFound, serve(h, "/audit").Code)
	assert.Equal(t, http.StatusNotFound, serve(h, "/metrics").Code)

	h = sse.NewRouter(sse.Routes{Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok 1\n"))
	})})
	rec := serve(h, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok 1\n", rec.Body.String())
}
