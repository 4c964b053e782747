package ir

import "testing"

// linear builds a simple A -> B method body: two blocks, a goto
// between them, a return in the last.
func linear() []Instruction {
	return []Instruction{
		&Label{Block: 0},
		&Const{Dst: 0, Value: 1},
		&Goto{Target: 1},
		&Label{Block: 1},
		&Return{Value: 0, HasVal: true},
	}
}

func TestBuildAndFlattenRoundTrip(t *testing.T) {
	cfg, err := Build(linear())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if cfg.Entry.ID != 0 {
		t.Fatalf("expected entry block 0, got %d", cfg.Entry.ID)
	}
	if len(cfg.Entry.Predecessors) != 0 {
		t.Fatalf("entry must have no predecessors")
	}
	b1, ok := cfg.Block(1)
	if !ok || len(b1.Predecessors) != 1 {
		t.Fatalf("block 1 should have exactly one predecessor")
	}

	flat := cfg.Flatten()
	cfg2, err := Build(flat)
	if err != nil {
		t.Fatalf("re-Build after Flatten: %v", err)
	}
	if len(cfg2.Blocks()) != len(cfg.Blocks()) {
		t.Fatalf("round-trip changed block count")
	}
}

func TestBuildRejectsDanglingEdge(t *testing.T) {
	bad := []Instruction{
		&Label{Block: 0},
		&Goto{Target: 99},
	}
	if _, err := Build(bad); err == nil {
		t.Fatal("expected error for dangling edge")
	}
}

func TestBuildRejectsNonEntryWithoutPredecessor(t *testing.T) {
	bad := []Instruction{
		&Label{Block: 0},
		&Return{HasVal: false},
		&Label{Block: 1},
		&Return{HasVal: false},
	}
	if _, err := Build(bad); err == nil {
		t.Fatal("expected error for unreachable block with no predecessors")
	}
}

func TestRetargetEdge(t *testing.T) {
	instrs := []Instruction{
		&Label{Block: 0},
		&Goto{Target: 1},
		&Label{Block: 1},
		&Return{HasVal: false},
	}
	cfg, err := Build(instrs)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// Build rejects a non-entry block with no predecessors, so the
	// retarget destination is added afterwards; AddBlock gives it id 2.
	added := cfg.AddBlock()
	added.Terminator = &Return{HasVal: false}
	entry := cfg.Entry
	if err := cfg.RetargetEdge(entry, 1, 2); err != nil {
		t.Fatalf("RetargetEdge: %v", err)
	}
	b1, _ := cfg.Block(1)
	b2, _ := cfg.Block(2)
	if len(b1.Predecessors) != 0 {
		t.Fatalf("block 1 should have lost its predecessor")
	}
	if len(b2.Predecessors) != 1 {
		t.Fatalf("block 2 should have gained a predecessor")
	}
}

func TestRemoveBlockRequiresNoPredecessors(t *testing.T) {
	instrs := linear()
	cfg, err := Build(instrs)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := cfg.RemoveBlock(1); err == nil {
		t.Fatal("expected error removing a block with a predecessor")
	}
	if err := cfg.RetargetEdge(cfg.Entry, 1, 0); err != nil {
		t.Fatalf("RetargetEdge: %v", err)
	}
	if err := cfg.RemoveBlock(1); err != nil {
		t.Fatalf("block 1 should be removable once nothing points at it: %v", err)
	}
}
