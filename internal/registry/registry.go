// Package registry implements the Property Registry: named properties,
// each gated by a configuration predicate, plus the initial and final
// property sets a run must satisfy.
package registry

import "kanso/internal/config"

// Name is an interned property name. The registry is the only place that
// attaches any meaning to a string handed in by a pass; everywhere else a
// property name is opaque per the data model.
type Name string

// Registry tracks every property this core knows about: a builtin
// catalog plus arbitrary additions passes register at runtime.
type Registry struct {
	known map[Name]bool
}

// wellKnownProperties is the small catalog this core ships with. Passes
// may declare interactions for properties outside this set;
// KnownProperties only affects what IsRegistered reports, not what
// IsEnabled/InitialSet/FinalSet do, which always defer to config.
var wellKnownProperties = []Name{
	"HasSourceBlocks",
	"NoInitClassInstructions",
	"NeedsEverythingPublic",
	"NoSpuriousSwitches",
	"DexLimitsObeyed",
}

// New creates a Registry seeded with the well-known property catalog.
func New() *Registry {
	r := &Registry{known: make(map[Name]bool, len(wellKnownProperties))}
	for _, p := range wellKnownProperties {
		r.known[p] = true
	}
	return r
}

// Register adds name to the known catalog; passes that invent their own
// properties call this so KnownProperties can enumerate them, without
// that registration having any bearing on enablement.
func (r *Registry) Register(name Name) {
	r.known[name] = true
}

// KnownProperties returns every registered property name.
func (r *Registry) KnownProperties() []Name {
	out := make([]Name, 0, len(r.known))
	for n := range r.known {
		out = append(out, n)
	}
	return out
}

func (r *Registry) IsRegistered(name Name) bool { return r.known[name] }

// IsEnabled reports whether name is active for this run.
func (r *Registry) IsEnabled(name Name, cfg *config.Config) bool {
	return cfg.IsEnabled(string(name))
}

// InitialSet is the set of properties the input program is assumed to
// satisfy.
func (r *Registry) InitialSet(cfg *config.Config) map[Name]bool {
	return toNameSet(cfg.InitialSet())
}

// FinalSet is the set of properties the output program must satisfy.
func (r *Registry) FinalSet(cfg *config.Config) map[Name]bool {
	return toNameSet(cfg.FinalSet())
}

func toNameSet(in map[string]bool) map[Name]bool {
	out := make(map[Name]bool, len(in))
	for k, v := range in {
		if v {
			out[Name(k)] = true
		}
	}
	return out
}
