package push

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/felixgeelhaar/statekit"
)

// State is the lifecycle state of a subscription.
type State string

const (
	StateClosed     State = "closed"
	StateConnecting State = "connecting"
	StateOpen       State = "open"
)

const (
	evOpen   = "open"
	evOpened = "opened"
	evFrame  = "frame"
	evError  = "error"
	evClose  = "close"
)

// fsmContext is shared by value with statekit guards, so the disposed flag
// is held by pointer.
type fsmContext struct {
	disposed *atomic.Bool
}

// channelFSM serializes access to the statekit interpreter of one
// subscription. Once disposed it stays closed.
type channelFSM struct {
	mu          sync.Mutex
	interpreter *statekit.Interpreter[fsmContext]
	disposed    *atomic.Bool
}

func newChannelFSM() (*channelFSM, error) {
	disposed := &atomic.Bool{}
	builder := statekit.NewMachine[fsmContext]("push-channel").
		WithInitial(statekit.StateID(StateClosed)).
		WithContext(fsmContext{disposed: disposed}).
		WithGuard("notDisposed", func(ctx fsmContext, _ statekit.Event) bool {
			return !ctx.disposed.Load()
		})

	builder.State(statekit.StateID(StateClosed)).
		On(evOpen).Target(statekit.StateID(StateConnecting)).Guard("notDisposed").
		Done()

	builder.State(statekit.StateID(StateConnecting)).
		On(evOpened).Target(statekit.StateID(StateOpen)).
		On(evClose).Target(statekit.StateID(StateClosed)).
		Done()

	builder.State(statekit.StateID(StateOpen)).
		On(evFrame).Target(statekit.StateID(StateOpen)).
		On(evClose).Target(statekit.StateID(StateClosed)).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build push state machine: %w", err)
	}
	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()
	return &channelFSM{interpreter: interpreter, disposed: disposed}, nil
}

// fire sends event and returns the state before and after it. Events with
// no matching transition, such as error, leave the state unchanged.
func (f *channelFSM) fire(event string) (before, after State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	before = State(f.interpreter.State().Value)
	f.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	return before, State(f.interpreter.State().Value)
}

// open moves a closed channel to connecting. The guard rejects it once the
// channel is disposed, and open reports that as ErrDisposed.
func (f *channelFSM) open() (before, after State, err error) {
	before, after = f.fire(evOpen)
	if f.disposed.Load() {
		return before, after, ErrDisposed
	}
	return before, after, nil
}

func (f *channelFSM) state() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return State(f.interpreter.State().Value)
}

// dispose closes the channel for good.
func (f *channelFSM) dispose() (before, after State) {
	f.disposed.Store(true)
	return f.fire(evClose)
}
