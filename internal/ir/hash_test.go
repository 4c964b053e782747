package ir

import "testing"

func TestBlockHashesEqualForStructurallyEqualBlocks(t *testing.T) {
	// A -> {B, C} -> D, where B and C are identical and both jump to D.
	instrs := []Instruction{
		&Label{Block: 0},
		&Const{Dst: 0, Value: 1},
		&If{Cond: 0, True: 1, False: 2},

		&Label{Block: 1},
		&Const{Dst: 1, Value: 7},
		&Goto{Target: 3},

		&Label{Block: 2},
		&Const{Dst: 1, Value: 7},
		&Goto{Target: 3},

		&Label{Block: 3},
		&Return{Value: 1, HasVal: true},
	}
	cfg, err := Build(instrs)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	hashes := BlockHashes(cfg)
	if hashes[1] != hashes[2] {
		t.Fatalf("structurally identical blocks 1 and 2 should hash equal, got %x vs %x", hashes[1], hashes[2])
	}
	if hashes[0] == hashes[1] {
		t.Fatalf("distinct blocks 0 and 1 should not hash equal")
	}
}

func TestBlockHashesDifferForDifferentImmediates(t *testing.T) {
	instrs := []Instruction{
		&Label{Block: 0},
		&If{Cond: 0, True: 1, False: 2},

		&Label{Block: 1},
		&Const{Dst: 1, Value: 0},
		&Return{Value: 1, HasVal: true},

		&Label{Block: 2},
		&Const{Dst: 1, Value: 1},
		&Return{Value: 1, HasVal: true},
	}
	cfg, err := Build(instrs)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	hashes := BlockHashes(cfg)
	if hashes[1] == hashes[2] {
		t.Fatalf("blocks differing only in an immediate must not hash equal")
	}
}

func TestBlockHashesConvergeOnCycles(t *testing.T) {
	// entry -> B, B -> B (a loop) or B -> exit; must not infinite-loop or
	// panic. The loop stays off the entry block, which Build requires to
	// have no predecessors.
	instrs := []Instruction{
		&Label{Block: 0},
		&Const{Dst: 0, Value: 1},
		&Goto{Target: 1},

		&Label{Block: 1},
		&If{Cond: 0, True: 1, False: 2},

		&Label{Block: 2},
		&Return{HasVal: false},
	}
	cfg, err := Build(instrs)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	hashes := BlockHashes(cfg)
	if len(hashes) != 3 {
		t.Fatalf("expected 3 block hashes, got %d", len(hashes))
	}
}
