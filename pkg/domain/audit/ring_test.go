package audit_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/hireline/pkg/domain/audit"
)

func ev(i int) audit.Event {
	return audit.Event{ID: fmt.Sprintf("e%d", i), TS: float64(i), Actor: audit.ActorSystem, Action: "job.created"}
}

func TestRing_AppendBelowCapacity(t *testing.T) {
	r := audit.NewRing()
	for i := 0; i < 10; i++ {
		r.Append(ev(i))
		assert.Equal(t, i+1, r.Len())
	}
	all := r.All()
	require.Len(t, all, 10)
	assert.Equal(t, "e0", all[0].ID)
	assert.Equal(t, "e9", all[9].ID)
}

func TestRing_KeepsLastCapacityInOrder(t *testing.T) {
	r := audit.NewRing()
	for i := 0; i < 1000; i++ {
		r.Append(ev(i))
		require.LessOrEqual(t, r.Len(), audit.Capacity)
	}
	all := r.All()
	require.Len(t, all, audit.Capacity)
	for i, e := range all {
		assert.Equal(t, fmt.Sprintf("e%d", 750+i), e.ID)
	}
}

func TestRing_EvictsOldestAtCapacity(t *testing.T) {
	r := audit.NewRing()
	var evicted []string
	r.OnEvict(func(e audit.Event) { evicted = append(evicted, e.ID) })

	for i := 0; i < audit.Capacity; i++ {
		r.Append(ev(i))
	}
	require.Empty(t, evicted)

	r.Append(audit.Event{ID: "e99x", Actor: audit.ActorAgent, Action: "message.sent"})
	assert.Equal(t, []string{"e0"}, evicted)

	all := r.All()
	require.Len(t, all, audit.Capacity)
	assert.Equal(t, "e1", all[0].ID)
	assert.Equal(t, "e99x", all[len(all)-1].ID)
}

func TestRing_Replace(t *testing.T) {
	r := audit.NewRingSize(3)
	r.Append(ev(100))

	r.Replace([]audit.Event{ev(1), ev(2), ev(3), ev(4), ev(5)})
	ids := func() []string {
		var out []string
		for _, e := range r.All() {
			out = append(out, e.ID)
		}
		return out
	}
	assert.Equal(t, []string{"e3", "e4", "e5"}, ids())

	r.Replace([]audit.Event{ev(7)})
	assert.Equal(t, []string{"e7"}, ids())

	r.Append(ev(8))
	assert.Equal(t, []string{"e7", "e8"}, ids())
}

func TestRing_Latest(t *testing.T) {
	r := audit.NewRingSize(4)
	for i := 0; i < 6; i++ {
		r.Append(ev(i))
	}
	latest := r.Latest(2)
	require.Len(t, latest, 2)
	assert.Equal(t, "e5", latest[0].ID)
	assert.Equal(t, "e4", latest[1].ID)
	assert.Len(t, r.Latest(10), 4)
	assert.Empty(t, r.Latest(0))
}

func TestRing_AllReturnsCopy(t *testing.T) {
	r := audit.NewRing()
	r.Append(ev(1))
	all := r.All()
	all[0].ID = "mutated"
	assert.Equal(t, "e1", r.All()[0].ID)
}

func TestRing_ConcurrentAppend(t *testing.T) {
	r := audit.NewRing()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				r.Append(ev(g*1000 + i))
			}
		}(g)
	}
	wg.Wait()
	assert.Equal(t, audit.Capacity, r.Len())
}
