package schedule

import (
	"sort"

	"kanso/internal/config"
	"kanso/internal/diag"
	"kanso/internal/registry"
)

// Trace records the established-property set after every step, useful
// for tests and for the -check CLI mode to show its work.
type Trace struct {
	StepSets []map[string]bool // StepSets[0] is the initial set, before any pass
}

// Verify starts from registry.InitialSet(config); for each step in
// order it drops disabled properties, checks requires against the
// running set, rejects ill-formed interactions, and folds in the
// step's preserve/establish effect. After the loop it checks the
// configured final set is a subset of what was established.
//
// Verify never touches a Program Store or an IR value - it operates
// purely over the schedule's declared interactions and the
// configuration, which is what lets the Pass Manager call it before
// running (or even loading) any pass.
func Verify(steps []Step, reg *registry.Registry, cfg *config.Config) (*Trace, *diag.Diagnostic) {
	initial := reg.InitialSet(cfg)
	established := make(map[string]bool, len(initial))
	for name := range initial {
		established[string(name)] = true
	}

	trace := &Trace{StepSets: []map[string]bool{cloneSet(established)}}

	for i, step := range steps {
		filtered := dropDisabled(step.Interactions, reg, cfg)
		// Checked in name order, so which property a diagnostic names does
		// not depend on map iteration order.
		names := make([]string, 0, len(filtered))
		for name := range filtered {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			interaction := filtered[name]
			if interaction.IllFormed() {
				return trace, &diag.Diagnostic{
					Kind:      diag.IllFormed,
					PassIndex: i,
					PassName:  step.PassName,
					Property:  name,
					Rule:      "requires&&establishes&&!preserves",
				}
			}
		}

		for _, name := range names {
			interaction := filtered[name]
			if interaction.Requires && !established[name] {
				return trace, &diag.Diagnostic{
					Kind:      diag.ScheduleViolation,
					PassIndex: i,
					PassName:  step.PassName,
					Property:  name,
				}
			}
		}

		next := make(map[string]bool, len(established))
		for name := range established {
			interaction, mentioned := filtered[name]
			if !mentioned || interaction.Preserves {
				next[name] = true
			}
		}
		for name, interaction := range filtered {
			if interaction.Establishes {
				next[name] = true
			}
		}
		established = next
		trace.StepSets = append(trace.StepSets, cloneSet(established))
	}

	for name := range reg.FinalSet(cfg) {
		if !established[string(name)] {
			return trace, &diag.Diagnostic{
				Kind:      diag.ScheduleViolation,
				PassIndex: len(steps),
				PassName:  "<pipeline end>",
				Message:   "final property " + string(name) + " not established by pipeline",
			}
		}
	}
	return trace, nil
}

// dropDisabled removes any property not enabled per config; disabled
// properties are silently dropped from all interaction records before
// verification.
func dropDisabled(pi PassInteractions, reg *registry.Registry, cfg *config.Config) PassInteractions {
	out := make(PassInteractions, len(pi))
	for name, interaction := range pi {
		if reg.IsEnabled(registry.Name(name), cfg) {
			out[name] = interaction
		}
	}
	return out
}

func cloneSet(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
