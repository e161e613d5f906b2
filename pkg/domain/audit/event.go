// Package audit holds the dashboard's view of the backend audit trail: the
// event shape, a bounded ring of recent events, hash-chain verification and
// the presentation mapping for actors and actions.
package audit

import (
	"bytes"
	"encoding/json"
	"math"
	"time"
)

// Actor identifies who performed an audited action.
type Actor string

const (
	ActorAgent     Actor = "agent"
	ActorCandidate Actor = "candidate"
	ActorSystem    Actor = "system"
	ActorOther     Actor = "other"
)

// ParseActor maps a wire value onto the closed actor set. Unknown values
// become ActorOther.
func ParseActor(s string) Actor {
	switch Actor(s) {
	case ActorAgent, ActorCandidate, ActorSystem:
		return Actor(s)
	default:
		return ActorOther
	}
}

// UnmarshalJSON decodes an actor string, folding unknown values into ActorOther.
func (a *Actor) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*a = ParseActor(s)
	return nil
}

// Event is one audit trail entry as emitted by the backend.
type Event struct {
	ID       string         `json:"id"`
	TS       float64        `json:"ts"`
	Actor    Actor          `json:"actor"`
	Action   string         `json:"action"`
	Payload  map[string]any `json:"payload,omitempty"`
	Hash     string         `json:"hash,omitempty"`
	PrevHash string         `json:"prev_hash,omitempty"`
}

// UnmarshalJSON decodes an event, keeping payload numbers as json.Number so
// the chain hash sees the exact literals the backend signed.
func (e *Event) UnmarshalJSON(data []byte) error {
	type plain Event
	var wire struct {
		plain
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*e = Event(wire.plain)
	e.Payload = nil
	if len(wire.Payload) == 0 || string(wire.Payload) == "null" {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(wire.Payload))
	dec.UseNumber()
	return dec.Decode(&e.Payload)
}

// Time converts the fractional epoch seconds of TS to a time.Time.
func (e Event) Time() time.Time {
	sec, frac := math.Modf(e.TS)
	return time.Unix(int64(sec), int64(frac*1e9))
}

// Locale returns payload["locale"] when it is a string.
func (e Event) Locale() string {
	s, _ := e.Payload["locale"].(string)
	return s
}

// Cost returns payload["cost_usd"] when it is numeric.
func (e Event) Cost() (float64, bool) {
	switch v := e.Payload["cost_usd"].(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
