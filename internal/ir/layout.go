package ir

import (
	"fmt"
	"sort"
)

// BasicBlock is a maximal straight-line run of instructions ending in
// exactly one terminator. Predecessors and Successors are kept in sync by
// the CFG that owns the block; nothing outside this package mutates them
// directly.
type BasicBlock struct {
	ID           BlockID
	Instructions []Instruction // terminator excluded
	Terminator   Terminator
	Predecessors []*BasicBlock
	Successors   []*BasicBlock // order mirrors Terminator.TargetLabels()
}

// SuccessorSet returns the successors as a set keyed by block id, per the
// data model's "structural equivalence compares successor *sets*, not
// sequences".
func (b *BasicBlock) SuccessorSet() map[BlockID]struct{} {
	set := make(map[BlockID]struct{}, len(b.Successors))
	for _, s := range b.Successors {
		set[s.ID] = struct{}{}
	}
	return set
}

// CFG is the control-flow graph for a single method: a set of basic
// blocks with a designated entry, satisfying the invariants of the data
// model (every non-entry block has >=1 predecessor, the entry has 0, no
// dangling edges).
type CFG struct {
	Entry  *BasicBlock
	blocks map[BlockID]*BasicBlock
	order  []BlockID // insertion order, used for deterministic iteration
	nextID BlockID
}

// Blocks returns every block in deterministic (insertion) order.
func (c *CFG) Blocks() []*BasicBlock {
	out := make([]*BasicBlock, 0, len(c.order))
	for _, id := range c.order {
		if b, ok := c.blocks[id]; ok {
			out = append(out, b)
		}
	}
	return out
}

func (c *CFG) Block(id BlockID) (*BasicBlock, bool) {
	b, ok := c.blocks[id]
	return b, ok
}

// Build lifts a method's linear IR (a flat instruction stream with Label
// markers at block boundaries) into a CFG, taking each block's id from its
// Label. Flatten and the mutation primitives keep those ids; AddBlock is
// the only other source of ids, allocating above the largest one Build
// saw.
func Build(instrs []Instruction) (*CFG, error) {
	cfg := &CFG{blocks: make(map[BlockID]*BasicBlock)}

	var cur *BasicBlock
	var maxID BlockID = -1
	for _, inst := range instrs {
		if lbl, ok := inst.(*Label); ok {
			if cur != nil && cur.Terminator == nil {
				return nil, fmt.Errorf("block %d falls off the end without a terminator", int(cur.ID))
			}
			if _, exists := cfg.blocks[lbl.Block]; exists {
				return nil, fmt.Errorf("duplicate block label L%d", int(lbl.Block))
			}
			cur = &BasicBlock{ID: lbl.Block}
			cfg.blocks[lbl.Block] = cur
			cfg.order = append(cfg.order, lbl.Block)
			if lbl.Block > maxID {
				maxID = lbl.Block
			}
			continue
		}
		if cur == nil {
			return nil, fmt.Errorf("instruction %s precedes any block label", inst.String())
		}
		if term, ok := inst.(Terminator); ok {
			cur.Terminator = term
			continue
		}
		if cur.Terminator != nil {
			return nil, fmt.Errorf("instruction %s follows a terminator in block %d", inst.String(), int(cur.ID))
		}
		cur.Instructions = append(cur.Instructions, inst)
	}
	if cur != nil && cur.Terminator == nil {
		return nil, fmt.Errorf("block %d falls off the end without a terminator", int(cur.ID))
	}
	if len(cfg.order) == 0 {
		return nil, fmt.Errorf("empty method body")
	}
	cfg.nextID = maxID + 1
	cfg.Entry = cfg.blocks[cfg.order[0]]

	if err := cfg.wireEdges(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// wireEdges (re)derives every block's Predecessors/Successors from its
// terminator's target labels. Called after Build and after any mutation
// that can change targets.
func (c *CFG) wireEdges() error {
	for _, b := range c.blocks {
		b.Successors = nil
	}
	for _, b := range c.blocks {
		b.Predecessors = nil
	}
	for _, id := range c.order {
		b, ok := c.blocks[id]
		if !ok {
			continue
		}
		if b.Terminator == nil {
			return fmt.Errorf("block %d has no terminator", int(b.ID))
		}
		for _, target := range b.Terminator.TargetLabels() {
			succ, ok := c.blocks[target]
			if !ok {
				return fmt.Errorf("block %d has a dangling edge to L%d", int(b.ID), int(target))
			}
			b.Successors = append(b.Successors, succ)
			succ.Predecessors = append(succ.Predecessors, b)
		}
	}
	return nil
}

// validate checks the data model's structural invariants.
func (c *CFG) validate() error {
	for _, id := range c.order {
		b := c.blocks[id]
		if b == c.Entry {
			continue
		}
		if len(b.Predecessors) == 0 {
			return fmt.Errorf("non-entry block %d has no predecessors", int(b.ID))
		}
	}
	if len(c.Entry.Predecessors) != 0 {
		return fmt.Errorf("entry block %d has predecessors", int(c.Entry.ID))
	}
	return nil
}

// Flatten serializes the CFG back into a method's linear IR: one Label
// followed by its instructions and terminator, per block, in the CFG's
// canonical (id-ordered, not hash-table-ordered) block order. This is the
// form the dedup pass leaves behind per spec ("canonical linearized
// form") and what the Program Store persists between passes.
func (c *CFG) Flatten() []Instruction {
	ids := make([]BlockID, 0, len(c.blocks))
	for id := range c.blocks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	// Entry block must linearize first regardless of id so Build's
	// "first label is the entry" convention round-trips.
	ordered := make([]BlockID, 0, len(ids))
	ordered = append(ordered, c.Entry.ID)
	for _, id := range ids {
		if id != c.Entry.ID {
			ordered = append(ordered, id)
		}
	}

	var out []Instruction
	for _, id := range ordered {
		b := c.blocks[id]
		out = append(out, &Label{Block: b.ID})
		out = append(out, b.Instructions...)
		out = append(out, b.Terminator)
	}
	return out
}

// AddBlock inserts a new block with a freshly allocated id and returns it.
func (c *CFG) AddBlock() *BasicBlock {
	id := c.nextID
	c.nextID++
	b := &BasicBlock{ID: id}
	c.blocks[id] = b
	c.order = append(c.order, id)
	return b
}

// RemoveBlock deletes a block with no remaining predecessors. It is the
// caller's job (the dedup pass) to have already retargeted every edge
// that used to point at it.
func (c *CFG) RemoveBlock(id BlockID) error {
	b, ok := c.blocks[id]
	if !ok {
		return fmt.Errorf("remove: no such block %d", int(id))
	}
	if b == c.Entry {
		return fmt.Errorf("remove: cannot remove entry block %d", int(id))
	}
	if len(b.Predecessors) != 0 {
		return fmt.Errorf("remove: block %d still has %d predecessor(s)", int(id), len(b.Predecessors))
	}
	delete(c.blocks, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// RetargetEdge rewrites every occurrence of oldTarget in from's terminator
// to newTarget, then re-derives edges for the whole CFG.
func (c *CFG) RetargetEdge(from *BasicBlock, oldTarget, newTarget BlockID) error {
	if _, ok := c.blocks[newTarget]; !ok {
		return fmt.Errorf("retarget: no such block %d", int(newTarget))
	}
	retargeted, err := retargetTerminator(from.Terminator, oldTarget, newTarget)
	if err != nil {
		return err
	}
	from.Terminator = retargeted
	return c.wireEdges()
}

func retargetTerminator(t Terminator, oldTarget, newTarget BlockID) (Terminator, error) {
	switch v := t.(type) {
	case *Goto:
		if v.Target == oldTarget {
			return &Goto{Target: newTarget}, nil
		}
		return v, nil
	case *Fallthrough:
		if v.Target == oldTarget {
			return &Fallthrough{Target: newTarget}, nil
		}
		return v, nil
	case *If:
		out := *v
		if out.True == oldTarget {
			out.True = newTarget
		}
		if out.False == oldTarget {
			out.False = newTarget
		}
		return &out, nil
	case *Switch:
		out := *v
		out.Cases = append([]BlockID(nil), v.Cases...)
		for i, c := range out.Cases {
			if c == oldTarget {
				out.Cases[i] = newTarget
			}
		}
		return &out, nil
	case *Return, *Throw:
		return v, nil
	default:
		return nil, fmt.Errorf("retarget: unsupported terminator %T", t)
	}
}

// ReplaceTerminator swaps a block's terminator outright and re-derives
// edges. Used by passes that simplify control flow (e.g. collapsing a
// switch whose arms all reach one block isn't required by dedup, but
// other passes built on this primitive might do it).
func (c *CFG) ReplaceTerminator(block *BasicBlock, term Terminator) error {
	block.Terminator = term
	return c.wireEdges()
}
