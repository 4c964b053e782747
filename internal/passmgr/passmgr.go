// Package passmgr implements the Pass Manager: it collects every
// registered pass's declared property interactions,
// verifies the resulting schedule before running anything, and then
// drives each pass over the Program Store in order.
package passmgr

import (
	"context"
	"fmt"
	"sort"

	"kanso/internal/config"
	"kanso/internal/diag"
	"kanso/internal/ir"
	"kanso/internal/logging"
	"kanso/internal/registry"
	"kanso/internal/schedule"
	"kanso/internal/store"
)

var log = logging.For("passmgr")

// Pass is the interface every optimization pass implements. A pass's
// interactions may depend on the configuration (e.g. testing_mode
// relaxing a requirement), so GetInteractions takes it rather than
// declaring a fixed, global set.
type Pass interface {
	Name() string
	GetInteractions(cfg *config.Config) schedule.PassInteractions
	// RunMethod transforms one method. The Manager calls this once per
	// method, dispatched across its worker pool, so a Pass never sees
	// two methods touched concurrently by the same call, and never needs
	// to coordinate with other methods running in parallel elsewhere.
	RunMethod(ctx context.Context, method *store.Method, cfg *config.Config) error
}

// Manager registers passes and runs them in the order given by
// config.Passes, after verifying the resulting schedule is well-formed.
type Manager struct {
	registry *registry.Registry
	passes   map[string]Pass
	workers  int
	sink     MetricsSink
}

// New creates a Manager backed by reg that runs each pass with `workers`
// goroutines pulling methods from a shared pool (workers <= 0 falls back
// to a single worker).
func New(reg *registry.Registry, workers int) *Manager {
	if workers <= 0 {
		workers = 1
	}
	return &Manager{registry: reg, passes: make(map[string]Pass), workers: workers}
}

// SetMetricsSink installs sink, called once per finished pass for as
// long as the run is not in testing mode. A nil sink (the default)
// disables the side channel entirely.
func (m *Manager) SetMetricsSink(sink MetricsSink) {
	m.sink = sink
}

// RegisterPass adds a pass to the catalog this Manager can schedule. A
// name collision is a programmer error, reported immediately rather
// than silently shadowing.
func (m *Manager) RegisterPass(p Pass) error {
	if _, exists := m.passes[p.Name()]; exists {
		return fmt.Errorf("passmgr: pass %q already registered", p.Name())
	}
	m.passes[p.Name()] = p
	return nil
}

// Result is everything Run hands back: the verified trace (even on
// failure, as far as it got) and the accumulated stats, plus any
// diagnostic that aborted the run.
type Result struct {
	Trace      *schedule.Trace
	Stats      *RunStats
	Diagnostic *diag.Diagnostic
}

// ResolveSchedule matches cfg.Passes against the registered catalog and
// collects each resolved pass's declared interactions, without running
// schedule.Verify or anything else - the step cmd/reopt's -check mode
// needs without touching the Program Store.
func (m *Manager) ResolveSchedule(cfg *config.Config) ([]schedule.Step, error) {
	steps := make([]schedule.Step, 0, len(cfg.Passes))
	for _, name := range cfg.Passes {
		p, ok := m.passes[name]
		if !ok {
			return nil, fmt.Errorf("passmgr: no pass registered with name %q", name)
		}
		steps = append(steps, schedule.Step{PassName: name, Interactions: p.GetInteractions(cfg)})
	}
	return steps, nil
}

// Run resolves cfg.Passes against the registered catalog, verifies the
// resulting schedule with schedule.Verify, and - only if verification
// succeeds - runs every pass over s in order. The store is left
// untouched if verification fails: no pass runs on a verification
// failure.
func (m *Manager) Run(ctx context.Context, s *store.Store, cfg *config.Config) (*Result, error) {
	steps, err := m.ResolveSchedule(cfg)
	if err != nil {
		return nil, err
	}
	resolved := make([]Pass, 0, len(cfg.Passes))
	for _, name := range cfg.Passes {
		resolved = append(resolved, m.passes[name])
	}

	trace, d := schedule.Verify(steps, m.registry, cfg)
	if d != nil {
		return &Result{Trace: trace, Diagnostic: d}, nil
	}

	stats := newRunStats()
	for i, p := range resolved {
		if err := ctx.Err(); err != nil {
			return &Result{Trace: trace, Stats: stats}, err
		}

		log.Debugf("pass %d/%d %s: start", i+1, len(resolved), p.Name())
		before := blockCount(s)
		elapsed, err := m.runPass(ctx, p, s, cfg)
		if err != nil {
			log.Errorf("pass %d/%d %s: failed: %v", i+1, len(resolved), p.Name(), err)
			return &Result{Trace: trace, Stats: stats, Diagnostic: &diag.Diagnostic{
				Kind:      diag.PassInvariant,
				PassIndex: i,
				PassName:  p.Name(),
				Message:   err.Error(),
			}}, nil
		}
		after := blockCount(s)
		stat := stats.record(i, p.Name(), elapsed, before, after)
		log.Debugf("pass %d/%d %s: end, %s, block delta %+d, established %v",
			i+1, len(resolved), p.Name(), elapsed, stat.BlockDelta, sortedNames(trace.StepSets[i+1]))

		// testing_mode skips the optional side channel without relaxing
		// anything verified above: the schedule check and every pass
		// still ran, only this external push is suppressed.
		if m.sink != nil && !cfg.TestingMode {
			m.sink(stat)
		}
	}
	return &Result{Trace: trace, Stats: stats}, nil
}

// sortedNames returns set's keys in sorted order, for a stable log line
// instead of Go's randomized map iteration order.
func sortedNames(set map[string]bool) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// blockCount sums basic-block counts across every method's current
// linear IR, for the testing-mode-independent per-pass block-count
// deltas in RunStats. A method whose
// IR doesn't yet lift cleanly (a fixture mid-construction) contributes
// zero rather than aborting the count.
func blockCount(s *store.Store) int {
	total := 0
	for _, m := range s.Methods() {
		cfg, err := ir.Build(m.IR())
		if err != nil {
			continue
		}
		total += len(cfg.Blocks())
	}
	return total
}
