package application

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/hireline/pkg/backend"
	"github.com/felixgeelhaar/hireline/pkg/domain/synth"
)

// Snapshot is the dashboard state as of the last poll, already padded and
// normalized for display.
type Snapshot struct {
	Health     *backend.Health
	KPI        []synth.KPITile
	Funnel     []synth.FunnelRow
	Capacity   synth.Capacity
	Heatmap    synth.Heatmap
	Jobs       []synth.Job
	Candidates []synth.Candidate
	UpdatedAt  time.Time
	// Errors holds the failing reads of the last refresh keyed by source.
	Errors map[string]string
}

func (s Snapshot) clone() Snapshot {
	out := s
	if s.Health != nil {
		h := *s.Health
		out.Health = &h
	}
	out.KPI = slices.Clone(s.KPI)
	out.Funnel = slices.Clone(s.Funnel)
	out.Jobs = slices.Clone(s.Jobs)
	out.Candidates = slices.Clone(s.Candidates)
	out.Errors = maps.Clone(s.Errors)
	return out
}

func (d *Dashboard) emptySnapshot() Snapshot {
	return Snapshot{
		KPI:        synth.KPIGrid(nil),
		Funnel:     synth.Funnel(nil),
		Capacity:   synth.DefaultCapacity,
		Heatmap:    synth.BuildHeatmap(synth.HeatmapInput{}),
		Jobs:       d.synth.Jobs(nil, d.settings.JobsTarget),
		Candidates: d.synth.Candidates(nil, d.settings.CandidatesTarget),
	}
}

// Refresh reads every snapshot source in parallel. A failing source keeps
// its previous value; the joined error reports all failures.
func (d *Dashboard) Refresh(ctx context.Context) error {
	if d.api == nil {
		return nil
	}
	start := d.clock.Now()

	var (
		g errgroup.Group
		r reads
	)
	r.errs = make([]error, len(readSources))
	for i, src := range readSources {
		g.Go(func() error {
			r.errs[i] = src.read(ctx, d, &r)
			return nil
		})
	}
	_ = g.Wait()

	failures := map[string]string{}
	var errs []error
	for i, err := range r.errs {
		if err != nil {
			failures[readSources[i].name] = err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", readSources[i].name, err))
		}
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ctx.Err()
	}
	d.apply(&r, failures, start)
	d.mu.Unlock()

	err := errors.Join(errs...)
	d.observer.Polled(d.clock.Now().Sub(start), err)
	d.notify()
	return err
}

// reads collects one refresh. Each source writes only its own fields.
type reads struct {
	health     *backend.Health
	kpi        map[string]any
	funnel     map[string]int
	capacity   *synth.Capacity
	heatmap    synth.HeatmapInput
	jobs       []synth.Job
	candidates []synth.Candidate
	errs       []error
}

type readSource struct {
	name string
	read func(ctx context.Context, d *Dashboard, r *reads) error
}

var readSources = []readSource{
	{"health", func(ctx context.Context, d *Dashboard, r *reads) (err error) {
		r.health, err = d.api.Health(ctx)
		return err
	}},
	{"kpi", func(ctx context.Context, d *Dashboard, r *reads) (err error) {
		r.kpi, err = d.api.KPI(ctx)
		return err
	}},
	{"audit", func(ctx context.Context, d *Dashboard, _ *reads) error {
		events, err := d.api.Audit(ctx)
		if err != nil {
			return err
		}
		d.Audit.Replace(events)
		return nil
	}},
	{"funnel", func(ctx context.Context, d *Dashboard, r *reads) (err error) {
		r.funnel, err = d.api.Funnel(ctx)
		return err
	}},
	{"capacity", func(ctx context.Context, d *Dashboard, r *reads) (err error) {
		r.capacity, err = d.api.Capacity(ctx)
		return err
	}},
	{"heatmap", func(ctx context.Context, d *Dashboard, r *reads) (err error) {
		r.heatmap, err = d.api.Heatmap(ctx)
		return err
	}},
	{"jobs", func(ctx context.Context, d *Dashboard, r *reads) (err error) {
		r.jobs, err = d.api.Jobs(ctx)
		return err
	}},
	{"candidates", func(ctx context.Context, d *Dashboard, r *reads) (err error) {
		r.candidates, err = d.api.Candidates(ctx)
		return err
	}},
}

// apply folds successful reads into the snapshot. Callers hold d.mu.
func (d *Dashboard) apply(r *reads, failures map[string]string, at time.Time) {
	ok := func(name string) bool {
		_, failed := failures[name]
		return !failed
	}
	s := &d.snap
	if ok("health") {
		s.Health = r.health
	}
	if ok("kpi") {
		s.KPI = synth.KPIGrid(r.kpi)
	}
	if ok("funnel") {
		var contacted *int
		if v, found := r.funnel["contacted"]; found {
			contacted = &v
		}
		s.Funnel = synth.Funnel(contacted)
	}
	if ok("capacity") {
		live := synth.CapacityOrDefault(r.capacity)
		if o := d.capacityOverride; o != nil && live.Confirmed < o.Confirmed {
			live = *o
		} else {
			d.capacityOverride = nil
		}
		s.Capacity = live
	}
	if ok("heatmap") {
		s.Heatmap = synth.BuildHeatmap(r.heatmap)
	}
	if ok("jobs") {
		s.Jobs = d.synth.Jobs(r.jobs, d.settings.JobsTarget)
	}
	if ok("candidates") {
		s.Candidates = d.synth.Candidates(r.candidates, d.settings.CandidatesTarget)
	}
	s.UpdatedAt = at
	s.Errors = failures
}
