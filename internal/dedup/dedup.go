// Package dedup implements the Block Deduplication Pass: it finds
// basic blocks that are structurally identical - same
// instructions, same kind of terminator, and the same successor blocks
// by block id - and merges each such group onto one representative
// block, rewriting every incoming edge and deleting the rest. Two blocks
// whose successors are distinct blocks are not merged, even when those
// successors are themselves duplicates.
package dedup

import (
	"context"
	"sort"

	"kanso/internal/config"
	"kanso/internal/ir"
	"kanso/internal/schedule"
	"kanso/internal/store"
)

// Pass is the dedup_blocks pass. It declares no interactions: it
// preserves every property by default and establishes none, so
// GetInteractions returns an empty map and relies on
// schedule.PassInteractions' absent-key-means-preserve default.
type Pass struct{}

func New() *Pass { return &Pass{} }

func (p *Pass) Name() string { return "dedup_blocks" }

func (p *Pass) GetInteractions(cfg *config.Config) schedule.PassInteractions {
	return schedule.PassInteractions{}
}

func (p *Pass) RunMethod(ctx context.Context, method *store.Method, cfg *config.Config) error {
	return method.WithCFG(func(g *ir.CFG) error {
		Run(g)
		return nil
	})
}

// Run mutates cfg in place, merging every group of structurally
// equivalent blocks it finds down to one representative each.
func Run(cfg *ir.CFG) {
	classes := equivalenceClasses(cfg)
	representative := make(map[ir.BlockID]ir.BlockID, len(classes))
	for _, class := range classes {
		rep := smallest(class)
		for _, id := range class {
			representative[id] = rep
		}
	}

	retargetAll(cfg, representative)
	removeNonRepresentatives(cfg, representative)
}

// equivalenceClasses groups block ids into merge-eligible sets: blocks
// whose content hash matches (ir.BlockHashes folds in each terminator's
// target ids and, through its fixpoint, the successors' hashes) and whose
// local content and
// terminator shape is confirmed equal by direct structural comparison,
// excluding any block the object-identity constraint rules out and
// always keeping the entry block in a class of its own.
func equivalenceClasses(cfg *ir.CFG) [][]ir.BlockID {
	hashes := ir.BlockHashes(cfg)
	buckets := make(map[uint64][]*ir.BasicBlock)
	for _, b := range cfg.Blocks() {
		if b.ID == cfg.Entry.ID || !isMergeEligible(b) {
			continue
		}
		buckets[hashes[b.ID]] = append(buckets[hashes[b.ID]], b)
	}

	var classes [][]ir.BlockID
	for _, bucket := range buckets {
		classes = append(classes, confirmedGroups(bucket, hashes)...)
	}

	assigned := make(map[ir.BlockID]bool)
	for _, class := range classes {
		for _, id := range class {
			assigned[id] = true
		}
	}
	for _, b := range cfg.Blocks() {
		if !assigned[b.ID] {
			classes = append(classes, []ir.BlockID{b.ID})
		}
	}
	return classes
}

// confirmedGroups partitions one hash bucket into the actual
// equivalence groups within it, since two blocks sharing a content hash
// are candidates, not yet confirmed duplicates (a hash collision, while
// astronomically unlikely with a 64-bit digest, is cheap to rule out
// here since the bucket is already small).
func confirmedGroups(bucket []*ir.BasicBlock, hashes map[ir.BlockID]uint64) [][]ir.BlockID {
	var groups [][]*ir.BasicBlock
	for _, b := range bucket {
		placed := false
		for i, g := range groups {
			if structurallyEqual(b, g[0], hashes) {
				groups[i] = append(groups[i], b)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, []*ir.BasicBlock{b})
		}
	}

	var out [][]ir.BlockID
	for _, g := range groups {
		if len(g) < 2 {
			continue // a lone block in its own hash bucket isn't a duplicate of anything
		}
		ids := make([]ir.BlockID, len(g))
		for i, b := range g {
			ids[i] = b.ID
		}
		out = append(out, ids)
	}
	return out
}

// structurallyEqual compares two blocks' own instructions and
// terminator shape directly, and their successors positionally by
// content hash. Blocks only reach this comparison from a shared hash
// bucket, and the hash already includes the terminator's target ids, so
// the successors compared here are the same blocks in the same order.
func structurallyEqual(a, b *ir.BasicBlock, hashes map[ir.BlockID]uint64) bool {
	if len(a.Instructions) != len(b.Instructions) {
		return false
	}
	for i := range a.Instructions {
		if !a.Instructions[i].Equal(b.Instructions[i]) {
			return false
		}
	}
	if !terminatorShapeEqual(a.Terminator, b.Terminator) {
		return false
	}
	at, bt := a.Terminator.TargetLabels(), b.Terminator.TargetLabels()
	if len(at) != len(bt) {
		return false
	}
	for i := range at {
		if hashes[at[i]] != hashes[bt[i]] {
			return false
		}
	}
	return true
}

// terminatorShapeEqual compares everything Terminator.Equal would
// except the exact target block ids, since those are what
// structurallyEqual resolves through equivalence classes instead. The
// terminator's concrete type must still match exactly - a Goto and a
// Fallthrough are different opcodes even though both carry a single
// target, and merging across that difference would let the rewritten
// edge change how control actually leaves the block.
func terminatorShapeEqual(a, b ir.Terminator) bool {
	switch av := a.(type) {
	case *ir.Goto:
		_, ok := b.(*ir.Goto)
		return ok
	case *ir.Fallthrough:
		_, ok := b.(*ir.Fallthrough)
		return ok
	case *ir.If:
		bv, ok := b.(*ir.If)
		return ok && av.Cond == bv.Cond
	case *ir.Switch:
		bv, ok := b.(*ir.Switch)
		return ok && av.Key == bv.Key && len(av.Cases) == len(bv.Cases)
	case *ir.Return:
		bv, ok := b.(*ir.Return)
		return ok && av.HasVal == bv.HasVal && (!av.HasVal || av.Value == bv.Value)
	case *ir.Throw:
		bv, ok := b.(*ir.Throw)
		return ok && av.Obj == bv.Obj
	default:
		return false
	}
}

// isMergeEligible implements the object-identity constraint: a block
// may only be deduplicated if every object-identity-sensitive
// instruction it contains (constructor invocation, throw, monitor
// enter/exit) operates on a register defined earlier in the same
// block. If the register instead flows in from a predecessor, two
// occurrences of this block's code could be reached from different
// allocation sites, and merging them would conflate distinct runtime
// objects - exactly the "new-instance/<init> pairing across a block
// boundary" case the dedup pass must never collapse.
func isMergeEligible(b *ir.BasicBlock) bool {
	defined := make(map[ir.Reg]bool)
	check := func(inst ir.Instruction, regs ...ir.Reg) bool {
		if !sensitive(inst) {
			return true
		}
		for _, r := range regs {
			if !defined[r] {
				return false
			}
		}
		return true
	}

	for _, inst := range b.Instructions {
		switch v := inst.(type) {
		case *ir.Invoke:
			if v.IsConstructorCall() {
				if !check(inst, v.Receiver) {
					return false
				}
			}
		case *ir.MonitorEnter:
			if !check(inst, v.Obj) {
				return false
			}
		case *ir.MonitorExit:
			if !check(inst, v.Obj) {
				return false
			}
		}
		if r, ok := inst.Result(); ok {
			defined[r] = true
		}
	}
	if t, ok := b.Terminator.(*ir.Throw); ok {
		if !check(t, t.Obj) {
			return false
		}
	}
	return true
}

func sensitive(inst ir.Instruction) bool {
	switch v := inst.(type) {
	case *ir.Invoke:
		return v.IsConstructorCall()
	case *ir.Throw, *ir.MonitorEnter, *ir.MonitorExit:
		return true
	}
	return false
}

func smallest(ids []ir.BlockID) ir.BlockID {
	out := ids[0]
	for _, id := range ids[1:] {
		if id < out {
			out = id
		}
	}
	return out
}

// retargetAll rewrites every block's terminator so that any target
// which has a representative other than itself points at that
// representative instead, across the whole CFG (not just within
// merged groups - a survivor block pointing at a since-removed
// duplicate needs the same rewrite).
func retargetAll(cfg *ir.CFG, representative map[ir.BlockID]ir.BlockID) {
	for _, b := range cfg.Blocks() {
		if b.Terminator == nil {
			continue
		}
		seen := make(map[ir.BlockID]bool)
		for _, target := range b.Terminator.TargetLabels() {
			rep, ok := representative[target]
			if !ok || rep == target || seen[target] {
				continue
			}
			seen[target] = true
			_ = cfg.RetargetEdge(b, target, rep)
		}
	}
}

// removeNonRepresentatives deletes every block that lost to a
// representative. retargetAll has already rewritten every edge across
// the whole CFG, so by this point every losing block has zero
// predecessors regardless of removal order - including a chain where
// A's only predecessor was B and B also lost to some representative.
func removeNonRepresentatives(cfg *ir.CFG, representative map[ir.BlockID]ir.BlockID) {
	toRemove := make([]ir.BlockID, 0)
	for id, rep := range representative {
		if rep != id {
			toRemove = append(toRemove, id)
		}
	}
	sort.Slice(toRemove, func(i, j int) bool { return toRemove[i] < toRemove[j] })

	for _, id := range toRemove {
		_ = cfg.RemoveBlock(id)
	}
}
