// Package diag implements structured pass/property diagnostics,
// rendered as single lines in plain and colorized forms.
package diag

import (
	"fmt"

	"github.com/fatih/color"
)

// Kind names one of this package's three error kinds.
type Kind int

const (
	// IllFormed: a pass's declared interactions are self-contradictory
	// (requires && establishes && !preserves).
	IllFormed Kind = iota
	// ScheduleViolation: a requires wasn't satisfied, or final
	// properties weren't established at the end of the schedule.
	ScheduleViolation
	// PassInvariant: a pass-internal invariant was violated mid-run
	// (e.g. a dangling CFG edge).
	PassInvariant
)

func (k Kind) String() string {
	switch k {
	case IllFormed:
		return "ill-formed interaction"
	case ScheduleViolation:
		return "schedule violation"
	case PassInvariant:
		return "pass-internal invariant violation"
	default:
		return "error"
	}
}

// Diagnostic is a single structured error, rendered as one line naming
// the pass index, pass name, property and rule violated.
type Diagnostic struct {
	Kind Kind
	// PassIndex is -1 if not applicable (e.g. IllFormed discovered at load time).
	PassIndex int
	PassName  string
	// Property is "" if not applicable.
	Property string
	Rule     string
	Message  string
}

// Error satisfies the error interface so a Diagnostic can be returned
// and propagated like any other Go error.
func (d *Diagnostic) Error() string { return d.String() }

// String renders the single-line diagnostic. Examples:
//
//	pass i=2 name=dedup_blocks requires property NoInitClassInstructions which is not established
//	ill-formed interaction: pass i=0 name=dedup_blocks property HasSourceBlocks requires&&establishes&&!preserves
func (d *Diagnostic) String() string {
	switch d.Kind {
	case ScheduleViolation:
		if d.Property != "" {
			return fmt.Sprintf("pass i=%d name=%s requires property %s which is not established", d.PassIndex, d.PassName, d.Property)
		}
		return fmt.Sprintf("schedule violation: %s", d.Message)
	case IllFormed:
		return fmt.Sprintf("ill-formed interaction: pass i=%d name=%s property %s %s", d.PassIndex, d.PassName, d.Property, d.Rule)
	case PassInvariant:
		return fmt.Sprintf("pass i=%d name=%s invariant violated: %s", d.PassIndex, d.PassName, d.Message)
	default:
		return d.Message
	}
}

// Colorized renders the diagnostic with the same red/bold styling the
// rest of this codebase's error reporting uses, for TTY output.
func Colorized(d *Diagnostic) string {
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	return fmt.Sprintf("%s: %s", red("error"), d.String())
}
