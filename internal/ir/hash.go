package ir

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
)

// localHash folds an instruction's opcode category, concrete kind,
// operands, result register, referenced symbol and, for a terminator,
// its target block ids into a 64-bit digest. Because target ids are
// folded in, two blocks can share a hash only if their terminators name
// the very same successor blocks; successors that are distinct blocks
// with equal content still give different hashes. Local hashes are
// computed once, before BlockHashes' refinement starts.
func localHash(inst Instruction) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%T|%d|", inst, inst.Category())
	for _, op := range inst.Operands() {
		fmt.Fprintf(h, "%d,", op)
	}
	if r, ok := inst.Result(); ok {
		fmt.Fprintf(h, "|r%d", r)
	}
	if sym, ok := inst.Symbol(); ok {
		fmt.Fprintf(h, "|s%d:%s", sym.Kind, sym.Name)
	}
	if term, ok := inst.(Terminator); ok {
		fmt.Fprintf(h, "|t")
		for _, l := range term.TargetLabels() {
			fmt.Fprintf(h, "%d,", l)
		}
	}
	// String() carries fields Operands/Result/Symbol don't, such as a
	// Const's literal value or a BinaryOp's opcode string - folding it in
	// keeps distinct instructions (e.g. "const v0, 1" vs "const v0, 2")
	// from ever sharing a hash, not just from ever being confirmed equal.
	fmt.Fprintf(h, "|%s", inst.String())
	return h.Sum64()
}

func blockLocalHash(b *BasicBlock) uint64 {
	h := fnv.New64a()
	for _, inst := range b.Instructions {
		fmt.Fprintf(h, "%x;", localHash(inst))
	}
	fmt.Fprintf(h, "|term:%x", localHash(b.Terminator))
	return h.Sum64()
}

// BlockHashes computes a deterministic, order-independent content hash
// per block via iterated refinement: start from each block's local
// instruction hash, then repeatedly refold in the XOR-sum of successor
// hashes (XOR so the fold is independent of successor order) until the
// partition induced by hash equality stops changing. Cycles in the CFG
// are handled naturally by the fixpoint - a block's hash on iteration k
// already reflects its neighborhood out to depth k, and partition
// refinement over a finite set of blocks is guaranteed to stabilize in at
// most len(blocks) iterations.
func BlockHashes(cfg *CFG) map[BlockID]uint64 {
	blocks := cfg.Blocks()
	hashes := make(map[BlockID]uint64, len(blocks))
	for _, b := range blocks {
		hashes[b.ID] = blockLocalHash(b)
	}

	partitionKey := func() string {
		// Fingerprint of the current grouping (which blocks share a hash),
		// used only to detect when refinement has stopped changing
		// anything - not the hashes themselves, which keep changing value
		// every iteration even once the partition they induce is stable.
		groups := make(map[uint64][]BlockID)
		for _, b := range blocks {
			groups[hashes[b.ID]] = append(groups[hashes[b.ID]], b.ID)
		}
		keys := make([]uint64, 0, len(groups))
		for k := range groups {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		var sb strings.Builder
		for _, k := range keys {
			ids := groups[k]
			sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
			fmt.Fprintf(&sb, "[%v]", ids)
		}
		return sb.String()
	}

	prev := partitionKey()
	for iter := 0; iter < len(blocks)+1; iter++ {
		next := make(map[BlockID]uint64, len(blocks))
		for _, b := range blocks {
			acc := hashes[b.ID]
			var succFold uint64
			for _, s := range b.Successors {
				succFold ^= hashes[s.ID]
			}
			h := fnv.New64a()
			fmt.Fprintf(h, "%x|%x", acc, succFold)
			next[b.ID] = h.Sum64()
		}
		hashes = next
		cur := partitionKey()
		if cur == prev && iter > 0 {
			break
		}
		prev = cur
	}
	return hashes
}
