package audit_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/hireline/pkg/domain/audit"
)

func sealedChain(n int, secret string) []audit.Event {
	events := make([]audit.Event, n)
	prev := ""
	for i := range events {
		events[i] = audit.Event{
			ID:      ev(i).ID,
			TS:      1700000000.25 + float64(i),
			Actor:   audit.ActorAgent,
			Action:  "outreach.sent",
			Payload: map[string]any{"job_id": "J1", "seq": float64(i)},
		}
		audit.Seal(&events[i], prev, secret)
		prev = events[i].Hash
	}
	return events
}

func TestComputeHash_KeyOrderIndependent(t *testing.T) {
	a := audit.ComputeHash(1.5, map[string]any{"a": 1, "b": "x"}, "p", "s")
	b := audit.ComputeHash(1.5, map[string]any{"b": "x", "a": 1}, "p", "s")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, audit.ComputeHash(1.5, map[string]any{"a": 1, "b": "x"}, "p", "other"))
}

func TestVerify_IntactChain(t *testing.T) {
	rep := audit.Verify(sealedChain(5, "secret"), "secret")
	assert.True(t, rep.OK)
	assert.Equal(t, 5, rep.Count)
	assert.Equal(t, -1, rep.BrokenAt)
	assert.Empty(t, rep.Violations)
}

func TestVerify_WindowStartsMidChain(t *testing.T) {
	events := sealedChain(10, "secret")
	rep := audit.Verify(events[4:], "secret")
	assert.True(t, rep.OK)
}

func TestVerify_TamperedPayload(t *testing.T) {
	events := sealedChain(5, "secret")
	events[2].Payload["job_id"] = "J2"

	rep := audit.Verify(events, "secret")
	require.False(t, rep.OK)
	assert.Equal(t, 2, rep.BrokenAt)
	assert.Equal(t, events[2].ID, rep.Violations[0].EventID)
}

func TestVerify_BrokenLink(t *testing.T) {
	events := sealedChain(4, "secret")
	audit.Seal(&events[3], "bogus", "secret")

	rep := audit.Verify(events, "secret")
	require.False(t, rep.OK)
	assert.Equal(t, 3, rep.BrokenAt)
	assert.Contains(t, rep.Violations[0].String(), "prev_hash mismatch")
}

func TestVerify_Empty(t *testing.T) {
	rep := audit.Verify(nil, "secret")
	assert.True(t, rep.OK)
	assert.Equal(t, -1, rep.BrokenAt)
}

// Golden values produced by the backend's json.dumps(sort_keys=True) scheme.
func TestComputeHash_MatchesBackend(t *testing.T) {
	h1 := audit.ComputeHash(1.0, map[string]any{"a": 1}, "", "s")
	assert.Equal(t, "f8561fbf4d51a0132f92817379113211f32e4eb72114459059af7180e506c1e9", h1)

	var e audit.Event
	wire := `{"id":"x","ts":1700000000.25,"actor":"system","action":"job.created",` +
		`"payload":{"job_id":"J1","name":"José","nested":{"z":[1,0.5,true,null],"b":"x\ny"},"rate":1e-05,"big":1e+16}}`
	require.NoError(t, json.Unmarshal([]byte(wire), &e))
	assert.Equal(t,
		"a69259c7c96c8259f961130d24e76a0585c2ae55c72c3afe974c28dbd5a5f43a",
		audit.ComputeHash(e.TS, e.Payload, h1, "dev-signing-secret"))
}
