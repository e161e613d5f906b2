package application

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/hireline/pkg/backend"
	"github.com/felixgeelhaar/hireline/pkg/domain/audit"
)

// AuditService owns the dashboard's audit ring and checks its hash chain.
type AuditService struct {
	ring   *audit.Ring
	api    *backend.Client
	secret string
}

// NewAuditService wraps ring. api may be nil when only local checks are
// needed.
func NewAuditService(ring *audit.Ring, api *backend.Client, secret string) *AuditService {
	return &AuditService{ring: ring, api: api, secret: secret}
}

// Append records one pushed event.
func (s *AuditService) Append(e audit.Event) {
	s.ring.Append(e)
}

// Replace swaps in a polled snapshot.
func (s *AuditService) Replace(events []audit.Event) {
	s.ring.Replace(events)
}

// GetTimeline returns the buffered events, oldest first.
func (s *AuditService) GetTimeline() []audit.Event {
	return s.ring.All()
}

// Latest returns up to n events, newest first.
func (s *AuditService) Latest(n int) []audit.Event {
	return s.ring.Latest(n)
}

// VerifyIntegrity walks the hash chain of the buffered window.
func (s *AuditService) VerifyIntegrity() audit.Report {
	return audit.Verify(s.ring.All(), s.secret)
}

// VerifyRemote asks the backend to verify its full chain.
func (s *AuditService) VerifyRemote(ctx context.Context) (*backend.VerifyResult, error) {
	if s.api == nil {
		return nil, fmt.Errorf("verify remote: no backend configured")
	}
	return s.api.VerifyAudit(ctx)
}

// GetThroughput returns the average events per minute over the buffered
// window.
func (s *AuditService) GetThroughput() float64 {
	events := s.ring.All()
	if len(events) < 2 {
		return float64(len(events))
	}
	span := events[len(events)-1].Time().Sub(events[0].Time())
	minutes := span.Minutes()
	if minutes < 1 {
		minutes = 1
	}
	return float64(len(events)) / minutes
}

// Breakdown counts buffered events per action family.
func (s *AuditService) Breakdown() map[audit.ActionKind]int {
	out := make(map[audit.ActionKind]int)
	for _, e := range s.ring.All() {
		out[audit.Classify(e.Action)]++
	}
	return out
}

// TotalCost sums payload cost_usd over the buffered window.
func (s *AuditService) TotalCost() float64 {
	var total float64
	for _, e := range s.ring.All() {
		if c, ok := e.Cost(); ok {
			total += c
		}
	}
	return total
}

// Since returns the buffered events newer than t, oldest first.
func (s *AuditService) Since(t time.Time) []audit.Event {
	var out []audit.Event
	for _, e := range s.ring.All() {
		if e.Time().After(t) {
			out = append(out, e)
		}
	}
	return out
}
