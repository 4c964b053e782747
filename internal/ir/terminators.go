package ir

import (
	"fmt"
	"strings"
)

// Goto unconditionally transfers control to Target.
type Goto struct{ Target BlockID }

func (g *Goto) Category() OpCategory      { return OpControlFlow }
func (g *Goto) Operands() []Reg           { return nil }
func (g *Goto) Result() (Reg, bool)       { return 0, false }
func (g *Goto) Symbol() (SymbolRef, bool) { return SymbolRef{}, false }
func (g *Goto) IsTerminator() bool        { return true }
func (g *Goto) TargetLabels() []BlockID   { return []BlockID{g.Target} }
func (g *Goto) String() string            { return fmt.Sprintf("goto L%d", int(g.Target)) }
func (g *Goto) Equal(other Instruction) bool {
	o, ok := other.(*Goto)
	return ok && o.Target == g.Target
}

// Fallthrough transfers control to Target by falling off the end of the
// block, distinct from Goto only in how a real encoder would emit it (no
// explicit jump instruction). The dedup pass still treats a Goto and a
// Fallthrough as different terminators and never merges across them.
type Fallthrough struct{ Target BlockID }

func (f *Fallthrough) Category() OpCategory      { return OpControlFlow }
func (f *Fallthrough) Operands() []Reg           { return nil }
func (f *Fallthrough) Result() (Reg, bool)       { return 0, false }
func (f *Fallthrough) Symbol() (SymbolRef, bool) { return SymbolRef{}, false }
func (f *Fallthrough) IsTerminator() bool        { return true }
func (f *Fallthrough) TargetLabels() []BlockID   { return []BlockID{f.Target} }
func (f *Fallthrough) String() string            { return fmt.Sprintf("fallthrough L%d", int(f.Target)) }
func (f *Fallthrough) Equal(other Instruction) bool {
	o, ok := other.(*Fallthrough)
	return ok && o.Target == f.Target
}

// If is a two-way conditional branch.
type If struct {
	Cond  Reg
	True  BlockID
	False BlockID
}

func (i *If) Category() OpCategory      { return OpControlFlow }
func (i *If) Operands() []Reg           { return []Reg{i.Cond} }
func (i *If) Result() (Reg, bool)       { return 0, false }
func (i *If) Symbol() (SymbolRef, bool) { return SymbolRef{}, false }
func (i *If) IsTerminator() bool        { return true }
func (i *If) TargetLabels() []BlockID   { return []BlockID{i.True, i.False} }
func (i *If) String() string {
	return fmt.Sprintf("if %s then L%d else L%d", i.Cond, int(i.True), int(i.False))
}
func (i *If) Equal(other Instruction) bool {
	o, ok := other.(*If)
	return ok && o.Cond == i.Cond && o.True == i.True && o.False == i.False
}

// Switch is an n-way branch on Key. Cases is ordered and that order is
// significant (it is the switch table), unlike the order-independent
// successor fold BlockHashes uses.
type Switch struct {
	Key   Reg
	Cases []BlockID
}

func (s *Switch) Category() OpCategory      { return OpControlFlow }
func (s *Switch) Operands() []Reg           { return []Reg{s.Key} }
func (s *Switch) Result() (Reg, bool)       { return 0, false }
func (s *Switch) Symbol() (SymbolRef, bool) { return SymbolRef{}, false }
func (s *Switch) IsTerminator() bool        { return true }
func (s *Switch) TargetLabels() []BlockID   { return s.Cases }
func (s *Switch) String() string {
	labels := make([]string, len(s.Cases))
	for i, c := range s.Cases {
		labels[i] = fmt.Sprintf("L%d", int(c))
	}
	return fmt.Sprintf("switch %s (%s)", s.Key, strings.Join(labels, ", "))
}
func (s *Switch) Equal(other Instruction) bool {
	o, ok := other.(*Switch)
	if !ok || o.Key != s.Key || len(o.Cases) != len(s.Cases) {
		return false
	}
	for i := range s.Cases {
		if o.Cases[i] != s.Cases[i] {
			return false
		}
	}
	return true
}

// Return exits the method, optionally carrying a value.
type Return struct {
	Value  Reg
	HasVal bool
}

func (r *Return) Category() OpCategory { return OpReturn }
func (r *Return) Operands() []Reg {
	if r.HasVal {
		return []Reg{r.Value}
	}
	return nil
}
func (r *Return) Result() (Reg, bool)       { return 0, false }
func (r *Return) Symbol() (SymbolRef, bool) { return SymbolRef{}, false }
func (r *Return) IsTerminator() bool        { return true }
func (r *Return) TargetLabels() []BlockID   { return nil }
func (r *Return) String() string {
	if r.HasVal {
		return fmt.Sprintf("return %s", r.Value)
	}
	return "return-void"
}
func (r *Return) Equal(other Instruction) bool {
	o, ok := other.(*Return)
	return ok && o.HasVal == r.HasVal && (!r.HasVal || o.Value == r.Value)
}

// Throw raises Obj as an exception. Per the conservative resolution of the
// exception-handler open question, it has an empty successor set: no
// exception-edge is modeled in this core.
type Throw struct{ Obj Reg }

func (t *Throw) Category() OpCategory      { return OpThrow }
func (t *Throw) Operands() []Reg           { return []Reg{t.Obj} }
func (t *Throw) Result() (Reg, bool)       { return 0, false }
func (t *Throw) Symbol() (SymbolRef, bool) { return SymbolRef{}, false }
func (t *Throw) IsTerminator() bool        { return true }
func (t *Throw) TargetLabels() []BlockID   { return nil }
func (t *Throw) String() string            { return fmt.Sprintf("throw %s", t.Obj) }
func (t *Throw) Equal(other Instruction) bool {
	o, ok := other.(*Throw)
	return ok && o.Obj == t.Obj
}
