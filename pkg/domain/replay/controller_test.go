package replay_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/hireline/pkg/clock"
	"github.com/felixgeelhaar/hireline/pkg/domain/audit"
	"github.com/felixgeelhaar/hireline/pkg/domain/replay"
)

func events(n int) []audit.Event {
	out := make([]audit.Event, n)
	for i := range out {
		out[i] = audit.Event{ID: fmt.Sprintf("e%d", i), Action: "message.sent"}
	}
	return out
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestController_EmptyListIsTerminalWithoutTicker(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	c := replay.NewController(fake)

	var seen []replay.Cursor
	c.OnChange(func(cur replay.Cursor) { seen = append(seen, cur) })

	s := c.Start(nil)
	assert.True(t, s.Cursor().Done())
	assert.True(t, isClosed(s.Done()))
	assert.Equal(t, 0, fake.Active())
	require.Len(t, seen, 1)
	assert.Equal(t, replay.Cursor{Index: 0, Total: 0, Tick: replay.DefaultTick}, seen[0])
}

func TestController_ReachesTotalAfterExactlyLTicks(t *testing.T) {
	for _, l := range []int{1, 2, 7} {
		t.Run(fmt.Sprint(l), func(t *testing.T) {
			fake := clock.NewFake(time.Unix(0, 0))
			c := replay.NewController(fake)
			s := c.Start(events(l))

			for i := 1; i < l; i++ {
				fake.Advance(replay.DefaultTick)
				assert.Equal(t, i, s.Cursor().Index)
				assert.False(t, isClosed(s.Done()))
				assert.Equal(t, 1, fake.Active())
			}
			fake.Advance(replay.DefaultTick)
			assert.Equal(t, l, s.Cursor().Index)
			assert.True(t, isClosed(s.Done()))
			assert.Equal(t, 0, fake.Active())

			fake.Advance(10 * replay.DefaultTick)
			assert.Equal(t, l, s.Cursor().Index)
		})
	}
}

func TestController_CursorIsMonotonic(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	c := replay.NewController(fake, replay.WithTick(100*time.Millisecond))

	var seen []int
	c.OnChange(func(cur replay.Cursor) {
		assert.Equal(t, 100*time.Millisecond, cur.Tick)
		seen = append(seen, cur.Index)
	})
	c.Start(events(5))
	fake.Advance(time.Second)

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, seen)
}

func TestController_StartCancelsStaleSession(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	c := replay.NewController(fake)

	first := c.Start(events(10))
	fake.Advance(3 * replay.DefaultTick)
	require.Equal(t, 3, first.Cursor().Index)

	second := c.Start(events(4))
	assert.True(t, first.Cancelled())
	assert.Equal(t, 0, second.Cursor().Index)
	assert.Equal(t, 1, fake.Active())

	fake.Advance(2 * replay.DefaultTick)
	assert.Equal(t, 3, first.Cursor().Index)
	assert.Equal(t, 2, second.Cursor().Index)
	assert.Same(t, second, c.Current())
}

func TestController_StopDiscardsAndRestartsAtZero(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	c := replay.NewController(fake)
	list := events(6)

	s := c.Start(list)
	fake.Advance(4 * replay.DefaultTick)
	c.Stop()
	c.Stop()

	assert.Nil(t, c.Current())
	assert.True(t, s.Cancelled())
	assert.False(t, isClosed(s.Done()))
	assert.Equal(t, 0, fake.Active())

	again := c.Start(list)
	assert.Equal(t, 0, again.Cursor().Index)
}

func TestSession_VisibleAndLatest(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	c := replay.NewController(fake)
	s := c.Start(events(3))

	_, ok := s.Latest()
	assert.False(t, ok)

	fake.Advance(2 * replay.DefaultTick)
	vis := s.Visible()
	require.Len(t, vis, 2)
	assert.Equal(t, "e1", vis[1].ID)
	last, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, "e1", last.ID)
}

func TestController_OnChangeUnsubscribe(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	c := replay.NewController(fake)
	var n int
	off := c.OnChange(func(replay.Cursor) { n++ })
	c.Start(events(2))
	off()
	fake.Advance(time.Second)
	assert.Equal(t, 1, n)
}

func TestController_SessionCopiesInput(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	c := replay.NewController(fake)
	list := events(1)
	s := c.Start(list)
	list[0].ID = "changed"
	fake.Advance(replay.DefaultTick)
	last, _ := s.Latest()
	assert.Equal(t, "e0", last.ID)
}
