// Package logging wraps tliron/commonlog for this core's ambient
// logging: pass-manager progress and cmd/reopt's run summaries.
package logging

import (
	"github.com/tliron/commonlog"

	// Importing the simple backend registers it as commonlog's default,
	// matching how a standalone CLI (as opposed to an LSP server talking
	// to a client over a side channel) wants its logs to land - directly
	// on stderr.
	_ "github.com/tliron/commonlog/simple"
)

// Verbose, Normal and Quiet map onto commonlog's verbosity levels
// (0 = minimal, higher = noisier), named here so cmd/reopt doesn't
// spread bare integers through its flag wiring.
const (
	Quiet   = 0
	Normal  = 1
	Verbose = 2
)

// Configure sets the process-wide log verbosity once at startup.
func Configure(verbosity int) {
	commonlog.Configure(verbosity, nil)
}

// For returns a named logger scoped to one component, e.g.
// logging.For("passmgr") or logging.For("dedup_blocks").
func For(name string) commonlog.Logger {
	return commonlog.GetLogger("reopt." + name)
}
