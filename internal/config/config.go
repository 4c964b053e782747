package config

import (
	"fmt"
)

// Config is the Configuration Surface: the enumerated options this core
// recognizes. It is produced either by Load (parsing the pipeline DSL)
// or built directly by callers (e.g. tests) that don't want to
// round-trip through text.
type Config struct {
	EnabledProperties map[string]bool
	InitialProperties map[string]bool
	FinalProperties   map[string]bool
	TestingMode       bool
	// Passes is the ordered list of pass names the pipeline DSL asked to
	// run. The Pass Manager matches these against its registered passes
	// by name; a name with no matching registered pass is reported as an
	// error when the Pass Manager resolves the schedule, not by Load.
	Passes []string
}

// New returns an empty, non-nil Config ready to be populated.
func New() *Config {
	return &Config{
		EnabledProperties: map[string]bool{},
		InitialProperties: map[string]bool{},
		FinalProperties:   map[string]bool{},
	}
}

// IsEnabled reports whether name is in the enabled-properties set. An
// empty EnabledProperties set means nothing is explicitly enabled, so
// properties outside it are dropped.
func (c *Config) IsEnabled(name string) bool {
	return c.EnabledProperties[name]
}

func (c *Config) InitialSet() map[string]bool { return c.InitialProperties }
func (c *Config) FinalSet() map[string]bool   { return c.FinalProperties }

func setOf(names []PosIdent) map[string]bool {
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n.Value] = true
	}
	return out
}

// fromDocument converts a parsed Document into a Config, rejecting a
// property-list keyword that appears more than once and a testing_mode
// value that isn't true/false.
func fromDocument(doc *Document) (*Config, error) {
	cfg := New()
	seenEnabled, seenInitial, seenFinal, seenTesting := false, false, false, false

	for _, item := range doc.Pipeline.Items {
		switch {
		case item.Enabled != nil:
			if seenEnabled {
				return nil, fmt.Errorf("line %d: duplicate enabled_properties block", item.Pos.Line)
			}
			seenEnabled = true
			cfg.EnabledProperties = setOf(item.Enabled.Names)
		case item.Initial != nil:
			if seenInitial {
				return nil, fmt.Errorf("line %d: duplicate initial_properties block", item.Pos.Line)
			}
			seenInitial = true
			cfg.InitialProperties = setOf(item.Initial.Names)
		case item.Final != nil:
			if seenFinal {
				return nil, fmt.Errorf("line %d: duplicate final_properties block", item.Pos.Line)
			}
			seenFinal = true
			cfg.FinalProperties = setOf(item.Final.Names)
		case item.TestingRaw != nil:
			if seenTesting {
				return nil, fmt.Errorf("line %d: duplicate testing_mode", item.Pos.Line)
			}
			seenTesting = true
			switch item.TestingRaw.Value {
			case "true":
				cfg.TestingMode = true
			case "false":
				cfg.TestingMode = false
			default:
				return nil, fmt.Errorf("line %d: testing_mode must be true or false, got %q", item.TestingRaw.Pos.Line, item.TestingRaw.Value)
			}
		case item.Pass != nil:
			cfg.Passes = append(cfg.Passes, item.Pass.Value)
		}
	}
	return cfg, nil
}
