// Package schedule implements the Schedule Verifier: a pure function
// over an ordered list of (pass name, declared interactions) and a
// configuration, deciding whether a proposed pipeline schedule is
// valid before any pass runs.
//
// This package must stay pure: it imports config, registry and diag,
// and nothing that touches the Program Store or IR, so the verifier
// never touching the program store is enforced by the import graph,
// not just by convention.
package schedule

// PropertyInteraction is a triple of independent booleans, with the
// derived "destroys" state being !Establishes && !Preserves.
type PropertyInteraction struct {
	Establishes bool
	Requires    bool
	Preserves   bool
}

// Destroys is the derived fourth state.
func (p PropertyInteraction) Destroys() bool { return !p.Establishes && !p.Preserves }

// IllFormed reports the one self-contradictory combination: requiring
// a property, guaranteeing it on exit, yet claiming not to preserve
// it.
func (p PropertyInteraction) IllFormed() bool {
	return p.Requires && p.Establishes && !p.Preserves
}

// defaultInteraction is what an absent key in a PassInteractions map
// means: no opinion, preserves by default.
var defaultInteraction = PropertyInteraction{Preserves: true}

// PassInteractions is a pass's declared relationship to every property
// it has an opinion about. Absent keys default to defaultInteraction.
// This is intentionally a plain map - nothing in this package may
// depend on the order in which it is range'd.
type PassInteractions map[string]PropertyInteraction

// Get returns the interaction for name, or the default if name is absent.
func (pi PassInteractions) Get(name string) PropertyInteraction {
	if v, ok := pi[name]; ok {
		return v
	}
	return defaultInteraction
}

// Step is one entry in a proposed schedule: a pass's stable name and
// its declared interactions, collected by the Pass Manager before any
// pass runs.
type Step struct {
	PassName     string
	Interactions PassInteractions
}
