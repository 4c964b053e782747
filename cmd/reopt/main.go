package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"

	"kanso/internal/config"
	"kanso/internal/dedup"
	"kanso/internal/diag"
	"kanso/internal/ir"
	"kanso/internal/logging"
	"kanso/internal/passmgr"
	"kanso/internal/registry"
	"kanso/internal/schedule"
	"kanso/internal/store"
)

func main() {
	checkOnly := flag.Bool("check", false, "verify the configured schedule without running any pass")
	verbose := flag.Bool("verbose", false, "enable debug-level logging")
	dumpCFG := flag.Bool("dump-cfg", false, "print every method's CFG to stdout after the run completes")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: reopt [-check] [-verbose] [-dump-cfg] <pipeline.conf>\n")
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	path := flag.Arg(0)

	verbosity := logging.Normal
	if *verbose {
		verbosity = logging.Verbose
	}
	logging.Configure(verbosity)
	log := logging.For("reopt")

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", color.New(color.FgRed, color.Bold).Sprint("error"), err)
		os.Exit(1)
	}

	reg := registry.New()
	mgr := passmgr.New(reg, 1)
	if err := mgr.RegisterPass(dedup.New()); err != nil {
		fmt.Fprintf(os.Stderr, "reopt: %v\n", err)
		os.Exit(1)
	}
	mgr.SetMetricsSink(func(stat passmgr.PassStat) {
		log.Debugf("metric %s.block_delta %+d", stat.PassName, stat.BlockDelta)
	})

	if *checkOnly {
		runCheckOnly(mgr, reg, cfg)
		return
	}

	s := store.New(nil)
	start := time.Now()
	result, err := mgr.Run(context.Background(), s, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", color.New(color.FgRed, color.Bold).Sprint("error"), err)
		os.Exit(1)
	}
	if result.Diagnostic != nil {
		reportDiagnostic(result.Diagnostic)
		os.Exit(1)
	}

	log.Infof("run %s: ran %d pass(es) in %s", result.Stats.RunID, len(result.Stats.Passes), time.Since(start))
	for _, stat := range result.Stats.Passes {
		log.Infof("  [%d] %s: %s, block delta %+d", stat.Index, stat.PassName, stat.Duration, stat.BlockDelta)
	}

	if *dumpCFG {
		dumpCFGs(s)
	}
	color.Green("pipeline completed successfully")
}

// dumpCFGs prints every method's CFG in canonical block order, for
// -dump-cfg. It lifts each method's current (post-run) linear IR
// through the same WithCFG path every pass uses, so the dump reflects
// exactly what a pass would have seen.
func dumpCFGs(s *store.Store) {
	for _, m := range s.Methods() {
		err := m.WithCFG(func(cfg *ir.CFG) error {
			fmt.Print(ir.PrintCFG(m.Name, cfg))
			return nil
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "reopt: -dump-cfg: %v\n", err)
		}
	}
}

// runCheckOnly re-implements the part of passmgr.Manager.Run that
// doesn't touch the Program Store, so -check can validate a schedule
// edit before anyone runs it against a real program.
func runCheckOnly(mgr *passmgr.Manager, reg *registry.Registry, cfg *config.Config) {
	steps, err := mgr.ResolveSchedule(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reopt: %v\n", err)
		os.Exit(1)
	}
	trace, d := schedule.Verify(steps, reg, cfg)
	if d != nil {
		reportDiagnostic(d)
		os.Exit(1)
	}
	color.Green("schedule verifies: %d step(s), final set satisfied", len(trace.StepSets)-1)
}

func reportDiagnostic(d *diag.Diagnostic) {
	if color.NoColor {
		fmt.Fprintln(os.Stderr, d.String())
		return
	}
	fmt.Fprintln(os.Stderr, diag.Colorized(d))
}
