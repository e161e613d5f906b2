package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeHash returns the chain hash of an event: hex SHA256 over the
// timestamp, the canonical payload, the previous hash and the signing secret.
func ComputeHash(ts float64, payload map[string]any, prevHash, secret string) string {
	h := sha256.New()
	h.Write([]byte(pyFloat(ts)))
	h.Write([]byte(canonicalJSON(canonicalPayload(payload))))
	h.Write([]byte(prevHash))
	h.Write([]byte(secret))
	return hex.EncodeToString(h.Sum(nil))
}

// canonicalPayload maps a nil payload to an empty object.
func canonicalPayload(p map[string]any) map[string]any {
	if p == nil {
		return map[string]any{}
	}
	return p
}

// Seal sets PrevHash and Hash on e so it links onto prevHash.
func Seal(e *Event, prevHash, secret string) {
	e.PrevHash = prevHash
	e.Hash = ComputeHash(e.TS, e.Payload, prevHash, secret)
}

// Violation describes one broken link in the chain.
type Violation struct {
	Index   int    `json:"index"`
	EventID string `json:"event_id"`
	Reason  string `json:"reason"`
}

func (v Violation) String() string {
	return fmt.Sprintf("Event %d (%s): %s", v.Index, v.EventID, v.Reason)
}

// Report is the outcome of verifying a window of events.
type Report struct {
	OK         bool        `json:"ok"`
	Count      int         `json:"count"`
	BrokenAt   int         `json:"broken_at"`
	Violations []Violation `json:"violations,omitempty"`
}

// Verify walks the hash chain of events. The window may start mid-chain, so
// the first event's PrevHash is taken as the anchor. BrokenAt is the index of
// the first violation, or -1.
func Verify(events []Event, secret string) Report {
	rep := Report{OK: true, Count: len(events), BrokenAt: -1}
	if len(events) == 0 {
		return rep
	}

	prev := events[0].PrevHash
	for i, e := range events {
		if e.PrevHash != prev {
			rep.Violations = append(rep.Violations, Violation{Index: i, EventID: e.ID, Reason: "prev_hash mismatch, audit trail broken"})
		}
		if expected := ComputeHash(e.TS, e.Payload, e.PrevHash, secret); e.Hash != expected {
			rep.Violations = append(rep.Violations, Violation{Index: i, EventID: e.ID, Reason: "hash mismatch, possible tampering"})
		}
		prev = e.Hash
	}

	if len(rep.Violations) > 0 {
		rep.OK = false
		rep.BrokenAt = rep.Violations[0].Index
	}
	return rep
}
