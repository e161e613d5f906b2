// Package application wires the real-time core into the dashboard the
// presentation layer drives: a snapshot poller, the push subscription, the
// audit ring with replay, the chat transcript and synthetic padding.
package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/felixgeelhaar/hireline/pkg/backend"
	"github.com/felixgeelhaar/hireline/pkg/chat"
	"github.com/felixgeelhaar/hireline/pkg/clock"
	"github.com/felixgeelhaar/hireline/pkg/domain/audit"
	"github.com/felixgeelhaar/hireline/pkg/domain/replay"
	"github.com/felixgeelhaar/hireline/pkg/domain/synth"
	"github.com/felixgeelhaar/hireline/pkg/push"
)

// Settings are the dashboard's tunables.
type Settings struct {
	StreamURL        string
	PollInterval     time.Duration
	ReplayTick       time.Duration
	JobsTarget       int
	CandidatesTarget int
	SigningSecret    string
}

func (s Settings) withDefaults() Settings {
	if s.PollInterval <= 0 {
		s.PollInterval = time.Second
	}
	if s.ReplayTick <= 0 {
		s.ReplayTick = replay.DefaultTick
	}
	if s.JobsTarget <= 0 {
		s.JobsTarget = 300
	}
	if s.CandidatesTarget <= 0 {
		s.CandidatesTarget = 50
	}
	return s
}

// Observer receives dashboard telemetry.
type Observer interface {
	Polled(d time.Duration, err error)
	AuditEvicted()
}

type nopObserver struct{}

func (nopObserver) Polled(time.Duration, error) {}
func (nopObserver) AuditEvicted()               {}

// Deps are the collaborators of a Dashboard. Push and Chat may be nil.
type Deps struct {
	API      *backend.Client
	Push     *push.Client
	Chat     *chat.Client
	Clock    clock.Clock
	Synth    *synth.Synthesizer
	Logger   *slog.Logger
	Observer Observer
}

// Dashboard is the single owner of the core's state for one presentation.
type Dashboard struct {
	api      *backend.Client
	push     *push.Client
	clock    clock.Clock
	synth    *synth.Synthesizer
	logger   *slog.Logger
	observer Observer
	settings Settings

	Audit    *AuditService
	Replay   *replay.Controller
	Chat     *chat.Session
	Commands *CommandService

	ctx    context.Context
	cancel context.CancelFunc

	mu               sync.RWMutex
	snap             Snapshot
	capacityOverride *synth.Capacity
	listeners        []func()
	auditListeners   []func(audit.Event)
	poller           clock.Task
	dispose          push.Disposer
	started          bool
	closed           bool

	polling atomic.Bool
}

// NewDashboard assembles a dashboard. Nothing runs until Start.
func NewDashboard(deps Deps, settings Settings) *Dashboard {
	settings = settings.withDefaults()
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	if deps.Synth == nil {
		deps.Synth = synth.Default()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Observer == nil {
		deps.Observer = nopObserver{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	ring := audit.NewRing()
	ring.OnEvict(func(audit.Event) { deps.Observer.AuditEvicted() })

	d := &Dashboard{
		api:      deps.API,
		push:     deps.Push,
		clock:    deps.Clock,
		synth:    deps.Synth,
		logger:   deps.Logger,
		observer: deps.Observer,
		settings: settings,
		Audit:    NewAuditService(ring, deps.API, settings.SigningSecret),
		Replay:   replay.NewController(deps.Clock, replay.WithTick(settings.ReplayTick)),
		ctx:      ctx,
		cancel:   cancel,
	}
	if deps.Chat != nil {
		d.Chat = chat.NewSession(deps.Chat)
	}
	d.Commands = NewCommandService(deps.API, d)
	d.snap = d.emptySnapshot()
	return d
}

// Start runs a first refresh, then starts the poller and the push
// subscription. The first refresh error is returned but does not stop the
// dashboard.
func (d *Dashboard) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.started || d.closed {
		d.mu.Unlock()
		return nil
	}
	d.started = true
	d.mu.Unlock()

	err := d.Refresh(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return err
	}
	d.poller = d.clock.Every(d.settings.PollInterval, d.poll)
	if d.push != nil && d.settings.StreamURL != "" {
		mux := push.NewMux()
		mux.HandleAudit(d.onAudit)
		mux.HandleMessage(func(any) { d.notify() })
		d.dispose = d.push.Subscribe(d.settings.StreamURL, mux.Dispatch)
	}
	return err
}

// Reconfigure applies reloadable settings: the poll interval (the poller is
// rescheduled) and the padding targets (used from the next refresh). Other
// fields are ignored.
func (d *Dashboard) Reconfigure(next Settings) {
	next = next.withDefaults()
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.settings.JobsTarget = next.JobsTarget
	d.settings.CandidatesTarget = next.CandidatesTarget
	var old clock.Task
	if next.PollInterval != d.settings.PollInterval {
		d.settings.PollInterval = next.PollInterval
		if d.poller != nil {
			old = d.poller
			d.poller = d.clock.Every(next.PollInterval, d.poll)
		}
	}
	d.mu.Unlock()
	if old != nil {
		old.Stop()
	}
}

// OnChange registers fn to run after every state change. Callbacks must not
// block.
func (d *Dashboard) OnChange(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, fn)
}

// OnAudit registers fn to run for every pushed audit event after it has
// been appended to the ring.
func (d *Dashboard) OnAudit(fn func(audit.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.auditListeners = append(d.auditListeners, fn)
}

// Snapshot returns the last polled state.
func (d *Dashboard) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snap.clone()
}

// PushState returns the state of the push channel.
func (d *Dashboard) PushState() push.State {
	if d.push == nil {
		return push.StateClosed
	}
	return d.push.State()
}

// StartReplay replays the buffered audit events from the beginning.
func (d *Dashboard) StartReplay() *replay.Session {
	return d.Replay.Start(d.Audit.GetTimeline())
}

// StopReplay cancels a running replay.
func (d *Dashboard) StopReplay() {
	d.Replay.Stop()
}

// Ask sends a chat message. It fails when no chat client is configured.
func (d *Dashboard) Ask(ctx context.Context, text string) (<-chan string, error) {
	if d.Chat == nil {
		return nil, errors.New("chat is not configured")
	}
	return d.Chat.Send(ctx, text)
}

// Close tears everything down synchronously: the push subscription, the
// poller, any replay and in-flight chat streams. It is idempotent.
func (d *Dashboard) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	dispose, poller := d.dispose, d.poller
	d.mu.Unlock()

	if dispose != nil {
		dispose()
	}
	if poller != nil {
		poller.Stop()
	}
	d.cancel()
	d.Replay.Stop()
	if d.Chat != nil {
		d.Chat.Close()
	}
}

func (d *Dashboard) onAudit(e audit.Event) {
	d.Audit.Append(e)
	d.mu.RLock()
	listeners := append([]func(audit.Event){}, d.auditListeners...)
	d.mu.RUnlock()
	for _, fn := range listeners {
		fn(e)
	}
	d.notify()
}

// poll is the ticker callback. A poll still in flight makes the tick a
// no-op so slow reads never stack.
func (d *Dashboard) poll() {
	if !d.polling.CompareAndSwap(false, true) {
		return
	}
	defer d.polling.Store(false)
	if err := d.Refresh(d.ctx); err != nil && d.ctx.Err() == nil {
		d.logger.Debug("snapshot refresh incomplete", "error", err)
	}
}

func (d *Dashboard) notify() {
	d.mu.RLock()
	listeners := append([]func(){}, d.listeners...)
	d.mu.RUnlock()
	for _, fn := range listeners {
		fn()
	}
}
