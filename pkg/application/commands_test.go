package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/hireline/pkg/application"
	"github.com/felixgeelhaar/hireline/pkg/backend"
	"github.com/felixgeelhaar/hireline/pkg/clock"
	"github.com/felixgeelhaar/hireline/pkg/domain/synth"
)

func TestCommands_AutoPackIsOptimistic(t *testing.T) {
	b := &fakeBackend{confirmed: 40, jobsTitle: "Cashier"}
	d := newDashboard(t, b, clock.NewFake(epoch), application.Settings{})
	require.NoError(t, d.Start(context.Background()))

	capacity, err := d.Commands.AutoPack(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, b.packed.Load())
	// 30% of the 60 open slots.
	assert.Equal(t, 58, capacity.Confirmed)
	assert.Equal(t, 80, capacity.Held)

	// The backend still reports 40, so the packed figures stay.
	require.NoError(t, d.Refresh(context.Background()))
	assert.Equal(t, 58, d.Snapshot().Capacity.Confirmed)

	b.mu.Lock()
	b.confirmed = 61
	b.mu.Unlock()
	require.NoError(t, d.Refresh(context.Background()))
	assert.Equal(t, 61, d.Snapshot().Capacity.Confirmed)

	b.mu.Lock()
	b.confirmed = 45
	b.mu.Unlock()
	require.NoError(t, d.Refresh(context.Background()))
	assert.Equal(t, 45, d.Snapshot().Capacity.Confirmed)
}

func TestCommands_AutoPackWithoutBackend(t *testing.T) {
	d := application.NewDashboard(application.Deps{Clock: clock.NewFake(epoch)}, application.Settings{})
	defer d.Close()

	capacity, err := d.Commands.AutoPack(context.Background())
	require.NoError(t, err)
	assert.Equal(t, synth.DefaultCapacity.AutoPack(), capacity)
	assert.Equal(t, capacity, d.Snapshot().Capacity)
}

func TestCommands_JobSelection(t *testing.T) {
	b := &fakeBackend{jobsTitle: "Barista"}
	d := newDashboard(t, b, clock.NewFake(epoch), application.Settings{})

	err := d.Commands.SimulateOutreach(context.Background(), " ")
	assert.True(t, errors.Is(err, application.ErrNoSelection))
	err = d.Commands.SimulateFlow(context.Background(), "")
	assert.True(t, errors.Is(err, application.ErrNoSelection))
	assert.Zero(t, b.outreach.Load())

	require.NoError(t, d.Commands.SimulateOutreach(context.Background(), "j1"))
	assert.EqualValues(t, 1, b.outreach.Load())
	assert.EqualValues(t, 1, b.polls.Load(), "a command refreshes the snapshot")
}

func TestCommands_CreateJob(t *testing.T) {
	b := &fakeBackend{jobsTitle: "Barista"}
	d := newDashboard(t, b, clock.NewFake(epoch), application.Settings{})

	_, err := d.Commands.CreateJob(context.Background(), backend.CreateJobRequest{Title: "Cook"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "location, shift")

	resp, err := d.Commands.CreateJob(context.Background(), backend.CreateJobRequest{
		Title: "Cook", Location: "Austin", Shift: "Morning",
	})
	require.NoError(t, err)
	assert.Equal(t, "j2", resp.JobID)
	assert.EqualValues(t, 1, b.polls.Load())
}

func TestCommands_NoBackend(t *testing.T) {
	d := application.NewDashboard(application.Deps{Clock: clock.NewFake(epoch)}, application.Settings{})
	defer d.Close()

	_, err := d.Commands.CreateJob(context.Background(), backend.CreateJobRequest{Title: "a", Location: "b", Shift: "c"})
	assert.ErrorIs(t, err, application.ErrNoBackend)
	assert.ErrorIs(t, d.Commands.SimulateOutreach(context.Background(), "j1"), application.ErrNoBackend)
	assert.ErrorIs(t, d.Commands.Send(context.Background(), backend.SendRequest{To: "+1", Body: "hi"}), application.ErrNoBackend)
	_, err = d.Commands.SimulateHiring(context.Background(), backend.HiringParams{})
	assert.ErrorIs(t, err, application.ErrNoBackend)
}
