package trace

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type resolverStats struct {
	name        string
	steps       int
	duration    time.Duration
	filterEvals int
}

// FormatReport renders a record as a human-readable performance report:
// per-resolver timing table, slowest individual steps, and the self-measured
// tracing overhead.
func FormatReport(r *Record) string {
	if r == nil || len(r.Steps) == 0 {
		return "No trace data recorded.\n"
	}

	total := r.Total()
	byResolver := make(map[string]*resolverStats)
	var order []string
	for _, step := range r.Steps {
		stats, ok := byResolver[step.Resolver]
		if !ok {
			stats = &resolverStats{name: step.Resolver}
			byResolver[step.Resolver] = stats
			order = append(order, step.Resolver)
		}
		stats.steps++
		stats.duration += step.Duration
		stats.filterEvals += step.FilterEvals
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Trace: %d steps in %s\n", len(r.Steps), total)
	fmt.Fprintf(&b, "%-28s %8s %12s %8s %10s\n", "Resolver", "Steps", "Duration", "Share", "Filters")
	for _, name := range order {
		stats := byResolver[name]
		share := 0.0
		if total > 0 {
			share = float64(stats.duration) / float64(total) * 100
		}
		avgFilters := 0.0
		if stats.steps > 0 {
			avgFilters = float64(stats.filterEvals) / float64(stats.steps)
		}
		fmt.Fprintf(&b, "%-28s %8d %12s %7.1f%% %10.1f\n",
			name, stats.steps, stats.duration, share, avgFilters)
	}

	slowest := append([]StepRecord(nil), r.Steps...)
	sort.SliceStable(slowest, func(i, j int) bool {
		return slowest[i].Duration > slowest[j].Duration
	})
	n := r.slowestN
	if n <= 0 {
		n = DefaultSlowestN
	}
	if n > len(slowest) {
		n = len(slowest)
	}
	fmt.Fprintf(&b, "Slowest steps (%d):\n", n)
	for _, step := range slowest[:n] {
		fmt.Fprintf(&b, "  - %s/%s: %s (%d filter evals)\n",
			step.Resolver, step.Name, step.Duration, step.FilterEvals)
	}

	fmt.Fprintf(&b, "Tracing overhead: %.2f%%\n", r.OverheadPercent())
	return b.String()
}
