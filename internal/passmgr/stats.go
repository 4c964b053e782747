package passmgr

import (
	"time"

	"github.com/segmentio/ksuid"
)

// PassStat is one pass's contribution to RunStats: how long it took and
// how the total basic-block count across the store changed. Negative
// BlockDelta means the pass removed blocks, as dedup_blocks normally does.
type PassStat struct {
	Index      int
	PassName   string
	Duration   time.Duration
	BlockDelta int
}

// RunStats is the in-memory, always-on side channel for a run's
// timing and block-count history: testing_mode suppresses
// file/metrics-system output, never this in-process bookkeeping, since
// nothing observes it outside the process that produced it.
type RunStats struct {
	// RunID distinguishes one invocation's stats from another in a log
	// stream. ksuid embeds a timestamp, so RunIDs for the same pipeline
	// across runs sort chronologically without a separate field.
	RunID  string
	Passes []PassStat
}

// MetricsSink receives one call per finished pass, mirroring an
// incr_metric-style counter push to an external metrics system. Unlike
// RunStats, a sink reaches outside the process, so TestingMode
// suppresses it: Manager.Run never invokes a configured sink while
// Config.TestingMode is set.
type MetricsSink func(stat PassStat)

func newRunStats() *RunStats {
	return &RunStats{RunID: ksuid.New().String()}
}

func (r *RunStats) record(index int, name string, d time.Duration, before, after int) PassStat {
	stat := PassStat{
		Index:      index,
		PassName:   name,
		Duration:   d,
		BlockDelta: after - before,
	}
	r.Passes = append(r.Passes, stat)
	return stat
}
