package passmgr

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanso/internal/config"
	"kanso/internal/ir"
	"kanso/internal/registry"
	"kanso/internal/schedule"
	"kanso/internal/store"
)

// markerPass establishes a single property and otherwise leaves every
// method untouched, to exercise schedule wiring without needing a real
// transformation. runCount lets a test assert whether RunMethod was
// ever actually invoked.
type markerPass struct {
	name     string
	requires []string
	provides string
	runCount atomic.Int32
}

func (p *markerPass) Name() string { return p.name }

func (p *markerPass) GetInteractions(cfg *config.Config) schedule.PassInteractions {
	out := schedule.PassInteractions{}
	for _, r := range p.requires {
		out[r] = schedule.PropertyInteraction{Requires: true, Preserves: true}
	}
	if p.provides != "" {
		out[p.provides] = schedule.PropertyInteraction{Establishes: true, Preserves: true}
	}
	return out
}

func (p *markerPass) RunMethod(ctx context.Context, method *store.Method, cfg *config.Config) error {
	p.runCount.Add(1)
	return nil
}

func oneMethodStore(name string, instrs []ir.Instruction) *store.Store {
	s := store.New(nil)
	m := store.NewMethod(name, instrs)
	s.AddClass(store.NewClass("C", []*store.Method{m}))
	return s
}

func trivialBody() []ir.Instruction {
	return []ir.Instruction{
		&ir.Label{Block: 0},
		&ir.Const{Dst: 0, Value: 1},
		&ir.Return{Value: 0, HasVal: true},
	}
}

func TestManagerRunsRegisteredPassesInOrder(t *testing.T) {
	reg := registry.New()
	cfg := config.New()
	cfg.EnabledProperties["HasSourceBlocks"] = true
	cfg.EnabledProperties["NoInitClassInstructions"] = true
	cfg.InitialProperties["HasSourceBlocks"] = true
	cfg.Passes = []string{"p1", "p2"}

	m := New(reg, 2)
	require.NoError(t, m.RegisterPass(&markerPass{name: "p1", provides: "NoInitClassInstructions"}))
	require.NoError(t, m.RegisterPass(&markerPass{name: "p2", requires: []string{"NoInitClassInstructions"}}))

	s := oneMethodStore("m1", trivialBody())
	result, err := m.Run(context.Background(), s, cfg)
	require.NoError(t, err)
	assert.Nil(t, result.Diagnostic)
	assert.Len(t, result.Stats.Passes, 2)
}

func TestManagerAbortsOnScheduleViolationWithoutRunningPasses(t *testing.T) {
	reg := registry.New()
	cfg := config.New()
	cfg.EnabledProperties["NoInitClassInstructions"] = true
	cfg.Passes = []string{"p2"}

	m := New(reg, 1)
	p2 := &markerPass{name: "p2", requires: []string{"NoInitClassInstructions"}}
	require.NoError(t, m.RegisterPass(p2))

	s := oneMethodStore("m1", trivialBody())
	result, err := m.Run(context.Background(), s, cfg)
	require.NoError(t, err)
	require.NotNil(t, result.Diagnostic, "expected a schedule violation diagnostic")
	assert.Zero(t, p2.runCount.Load(), "pass must not run when schedule verification fails")
}

func TestManagerRejectsUnregisteredPassName(t *testing.T) {
	reg := registry.New()
	cfg := config.New()
	cfg.Passes = []string{"nonexistent"}

	m := New(reg, 1)
	s := oneMethodStore("m1", trivialBody())
	_, err := m.Run(context.Background(), s, cfg)
	assert.Error(t, err, "expected an error for an unregistered pass name")
}

func TestManagerInvokesMetricsSinkWhenNotTesting(t *testing.T) {
	reg := registry.New()
	cfg := config.New()
	cfg.Passes = []string{"noop"}

	m := New(reg, 1)
	require.NoError(t, m.RegisterPass(&markerPass{name: "noop"}))

	var got []PassStat
	m.SetMetricsSink(func(stat PassStat) {
		got = append(got, stat)
	})

	s := oneMethodStore("m1", trivialBody())
	result, err := m.Run(context.Background(), s, cfg)
	require.NoError(t, err)
	assert.Nil(t, result.Diagnostic)
	require.Len(t, got, 1, "sink should have been called once, for the single configured pass")
	assert.Equal(t, "noop", got[0].PassName)
}

func TestManagerSuppressesMetricsSinkInTestingMode(t *testing.T) {
	reg := registry.New()
	cfg := config.New()
	cfg.Passes = []string{"noop"}
	cfg.TestingMode = true

	m := New(reg, 1)
	require.NoError(t, m.RegisterPass(&markerPass{name: "noop"}))

	var calls int
	m.SetMetricsSink(func(stat PassStat) {
		calls++
	})

	s := oneMethodStore("m1", trivialBody())
	result, err := m.Run(context.Background(), s, cfg)
	require.NoError(t, err)
	assert.Nil(t, result.Diagnostic)
	assert.Zero(t, calls, "testing_mode must suppress the metrics sink without affecting verification or pass execution")
	assert.Len(t, result.Stats.Passes, 1, "the always-on in-process RunStats must still be collected under testing_mode")
}

func TestManagerDistributesMethodsAcrossWorkers(t *testing.T) {
	reg := registry.New()
	cfg := config.New()
	cfg.Passes = []string{"noop"}

	m := New(reg, 4)
	noop := &markerPass{name: "noop"}
	require.NoError(t, m.RegisterPass(noop))

	s := store.New(nil)
	methods := make([]*store.Method, 0, 10)
	for i := 0; i < 10; i++ {
		methods = append(methods, store.NewMethod("m", trivialBody()))
	}
	s.AddClass(store.NewClass("C", methods))

	result, err := m.Run(context.Background(), s, cfg)
	require.NoError(t, err)
	assert.Nil(t, result.Diagnostic)
	assert.EqualValues(t, 10, noop.runCount.Load(), "every method should have been dispatched to a worker exactly once")
}
