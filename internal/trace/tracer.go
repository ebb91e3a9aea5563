package trace

import (
	"sync"
	"sync/atomic"
	"time"
)

// Tracer records per-step timing while scopes are resolved and targets are
// extracted. A single tracer is shared by every resolver taking part in one
// action-discovery pass; the record it accumulates is flushed once per pass.
//
// A nil or disabled tracer is safe everywhere and costs one atomic load per
// call site, so hot paths do not branch on configuration.
type Tracer struct {
	enabled  atomic.Bool
	slowestN int

	mu  sync.Mutex
	rec *Record
}

// DefaultSlowestN bounds the slowest-steps list in formatted reports when no
// explicit value is configured.
const DefaultSlowestN = 5

func New(slowestN int) *Tracer {
	if slowestN <= 0 {
		slowestN = DefaultSlowestN
	}
	return &Tracer{slowestN: slowestN}
}

func (t *Tracer) Enable() {
	if t != nil {
		t.enabled.Store(true)
	}
}

func (t *Tracer) Disable() {
	if t != nil {
		t.enabled.Store(false)
	}
}

func (t *Tracer) Enabled() bool {
	return t != nil && t.enabled.Load()
}

// Step is a live measurement handle. All methods are nil-safe so callers can
// hold the result of StartStep unconditionally.
type Step struct {
	tracer      *Tracer
	resolver    string
	name        string
	started     time.Time
	setup       time.Duration
	filterEvals int
}

// StartStep opens a measurement for one resolver operation. Returns nil when
// tracing is disabled.
func (t *Tracer) StartStep(resolver, name string) *Step {
	if !t.Enabled() {
		return nil
	}
	begin := time.Now()
	t.mu.Lock()
	if t.rec == nil {
		t.rec = &Record{Started: begin}
	}
	t.mu.Unlock()
	s := &Step{tracer: t, resolver: resolver, name: name}
	s.setup = time.Since(begin)
	s.started = time.Now()
	return s
}

// AddFilterEvals counts predicate evaluations performed during this step.
func (s *Step) AddFilterEvals(n int) {
	if s != nil {
		s.filterEvals += n
	}
}

// End closes the step and folds it into the current record. The time spent
// inside StartStep and End itself is accounted as tracing overhead.
func (s *Step) End() {
	if s == nil {
		return
	}
	duration := time.Since(s.started)
	begin := time.Now()
	t := s.tracer
	t.mu.Lock()
	if t.rec != nil {
		t.rec.Steps = append(t.rec.Steps, StepRecord{
			Resolver:    s.resolver,
			Name:        s.name,
			Duration:    duration,
			FilterEvals: s.filterEvals,
		})
		t.rec.Finished = time.Now()
		t.rec.Overhead += s.setup + time.Since(begin)
	}
	t.mu.Unlock()
}

// Flush returns the record accumulated since the last flush and starts a
// fresh one. Returns nil when nothing was recorded.
func (t *Tracer) Flush() *Record {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	rec := t.rec
	t.rec = nil
	t.mu.Unlock()
	if rec != nil {
		rec.slowestN = t.slowestN
	}
	return rec
}

// StepRecord is one completed resolver operation.
type StepRecord struct {
	Resolver    string
	Name        string
	Duration    time.Duration
	FilterEvals int
}

// Record is the timing tree for one action-discovery pass.
type Record struct {
	Started  time.Time
	Finished time.Time
	Steps    []StepRecord
	Overhead time.Duration

	slowestN int
}

// Total is the wall-clock span from the first step opening to the last step
// closing.
func (r *Record) Total() time.Duration {
	if r == nil || r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}

// OverheadPercent reports time spent instrumenting as a share of the total
// pass duration.
func (r *Record) OverheadPercent() float64 {
	total := r.Total()
	if total <= 0 {
		return 0
	}
	return float64(r.Overhead) / float64(total) * 100
}
