package ir

import "fmt"

// Label is a pseudo-instruction marking the start of a basic block in the
// method's linear IR. It carries no runtime semantics; Build consumes it
// to find block boundaries and Flatten re-emits one before every block.
type Label struct {
	Block BlockID
}

func (l *Label) Category() OpCategory { return OpControlFlow }
func (l *Label) Operands() []Reg { return nil }
func (l *Label) Result() (Reg, bool) { return 0, false }
func (l *Label) Symbol() (SymbolRef, bool) { return SymbolRef{}, false }
func (l *Label) IsTerminator() bool { return false }
func (l *Label) String() string { return fmt.Sprintf("L%d:", int(l.Block)) }
func (l *Label) Equal(other Instruction) bool {
	o, ok := other.(*Label)
	return ok && o.Block == l.Block
}

// Move copies Src into Dst.
type Move struct {
	Dst Reg
	Src Reg
}

func (m *Move) Category() OpCategory { return OpMove }
func (m *Move) Operands() []Reg { return []Reg{m.Src} }
func (m *Move) Result() (Reg, bool) { return m.Dst, true }
func (m *Move) Symbol() (SymbolRef, bool) { return SymbolRef{}, false }
func (m *Move) IsTerminator() bool { return false }
func (m *Move) String() string { return fmt.Sprintf("move %s, %s", m.Dst, m.Src) }
func (m *Move) Equal(other Instruction) bool {
	o, ok := other.(*Move)
	return ok && o.Dst == m.Dst && o.Src == m.Src
}

// Const loads a compile-time-known immediate into Dst. Immediates compare
// by value, so "const v0, 0" and "const v0, 1" are never structurally
// equal (this is how S2's no-op-dedup scenario stays distinct).
type Const struct {
	Dst   Reg
	Value int64
}

func (c *Const) Category() OpCategory { return OpMove }
func (c *Const) Operands() []Reg { return nil }
func (c *Const) Result() (Reg, bool) { return c.Dst, true }
func (c *Const) Symbol() (SymbolRef, bool) { return SymbolRef{}, false }
func (c *Const) IsTerminator() bool { return false }
func (c *Const) String() string { return fmt.Sprintf("const %s, %d", c.Dst, c.Value) }
func (c *Const) Equal(other Instruction) bool {
	o, ok := other.(*Const)
	return ok && o.Dst == c.Dst && o.Value == c.Value
}

// BinaryOp computes Dst = Left Op Right.
type BinaryOp struct {
	Op    string
	Dst   Reg
	Left  Reg
	Right Reg
}

func (b *BinaryOp) Category() OpCategory { return OpArithmetic }
func (b *BinaryOp) Operands() []Reg { return []Reg{b.Left, b.Right} }
func (b *BinaryOp) Result() (Reg, bool) { return b.Dst, true }
func (b *BinaryOp) Symbol() (SymbolRef, bool) { return SymbolRef{}, false }
func (b *BinaryOp) IsTerminator() bool { return false }
func (b *BinaryOp) String() string {
	return fmt.Sprintf("%s %s, %s, %s", b.Op, b.Dst, b.Left, b.Right)
}
func (b *BinaryOp) Equal(other Instruction) bool {
	o, ok := other.(*BinaryOp)
	return ok && o.Op == b.Op && o.Dst == b.Dst && o.Left == b.Left && o.Right == b.Right
}

// NewInstance allocates a fresh, uninitialized object of Type into Dst.
// Every allocation site is a distinct identity at runtime even if the IR
// for two allocations is byte-identical - that distinction is exactly what
// the object-identity constraint in the dedup pass protects.
type NewInstance struct {
	Dst  Reg
	Type SymbolRef
}

func (n *NewInstance) Category() OpCategory { return OpAllocation }
func (n *NewInstance) Operands() []Reg { return nil }
func (n *NewInstance) Result() (Reg, bool) { return n.Dst, true }
func (n *NewInstance) Symbol() (SymbolRef, bool) { return n.Type, true }
func (n *NewInstance) IsTerminator() bool { return false }
func (n *NewInstance) String() string {
	return fmt.Sprintf("new-instance %s, %s", n.Dst, n.Type.Name)
}
func (n *NewInstance) Equal(other Instruction) bool {
	o, ok := other.(*NewInstance)
	return ok && o.Dst == n.Dst && o.Type == n.Type
}

// MoveResultPseudo captures the result of the instruction immediately
// preceding it (e.g. the object reference left by new-instance, or a
// call's return value) into Dst.
type MoveResultPseudo struct {
	Dst Reg
	// Object marks whether this is move-result-pseudo-object specifically,
	// the variant the object-identity constraint cares about.
	Object bool
}

func (m *MoveResultPseudo) Category() OpCategory { return OpMoveResultPseudo }
func (m *MoveResultPseudo) Operands() []Reg { return nil }
func (m *MoveResultPseudo) Result() (Reg, bool) { return m.Dst, true }
func (m *MoveResultPseudo) Symbol() (SymbolRef, bool) { return SymbolRef{}, false }
func (m *MoveResultPseudo) IsTerminator() bool { return false }
func (m *MoveResultPseudo) String() string {
	if m.Object {
		return fmt.Sprintf("move-result-pseudo-object %s", m.Dst)
	}
	return fmt.Sprintf("move-result-pseudo %s", m.Dst)
}
func (m *MoveResultPseudo) Equal(other Instruction) bool {
	o, ok := other.(*MoveResultPseudo)
	return ok && o.Dst == m.Dst && o.Object == m.Object
}

// Invoke models invoke-direct/virtual/static/interface. Kind distinguishes
// the dispatch mode; Method.Name == "<init>" with Kind == InvokeDirect is
// the constructor-invocation half of the allocation/constructor pair.
type InvokeKind int

const (
	InvokeDirect InvokeKind = iota
	InvokeVirtual
	InvokeStatic
	InvokeInterface
)

func (k InvokeKind) String() string {
	switch k {
	case InvokeDirect:
		return "invoke-direct"
	case InvokeVirtual:
		return "invoke-virtual"
	case InvokeStatic:
		return "invoke-static"
	case InvokeInterface:
		return "invoke-interface"
	default:
		return "invoke"
	}
}

type Invoke struct {
	Kind     InvokeKind
	Receiver Reg  // zero value unused for invoke-static
	HasRecv  bool
	Args     []Reg
	Method   SymbolRef
}

func (i *Invoke) Category() OpCategory { return OpInvocation }
func (i *Invoke) Operands() []Reg {
	ops := make([]Reg, 0, len(i.Args)+1)
	if i.HasRecv {
		ops = append(ops, i.Receiver)
	}
	ops = append(ops, i.Args...)
	return ops
}
func (i *Invoke) Result() (Reg, bool) { return 0, false }
func (i *Invoke) Symbol() (SymbolRef, bool) { return i.Method, true }
func (i *Invoke) IsTerminator() bool { return false }
func (i *Invoke) String() string {
	if i.HasRecv {
		return fmt.Sprintf("%s %s.%s(%v)", i.Kind, i.Receiver, i.Method.Name, i.Args)
	}
	return fmt.Sprintf("%s %s(%v)", i.Kind, i.Method.Name, i.Args)
}
func (i *Invoke) Equal(other Instruction) bool {
	o, ok := other.(*Invoke)
	if !ok || o.Kind != i.Kind || o.HasRecv != i.HasRecv || o.Method != i.Method {
		return false
	}
	if i.HasRecv && o.Receiver != i.Receiver {
		return false
	}
	if len(o.Args) != len(i.Args) {
		return false
	}
	for idx := range i.Args {
		if o.Args[idx] != i.Args[idx] {
			return false
		}
	}
	return true
}

// IsConstructorCall reports whether this invocation is the <init> half of
// an allocation/constructor pair.
func (i *Invoke) IsConstructorCall() bool {
	return i.Kind == InvokeDirect && i.Method.IsConstructorInit()
}

// FieldGet reads a field into Dst.
type FieldGet struct {
	Dst      Reg
	Receiver Reg
	HasRecv  bool // false for static field reads
	Field    SymbolRef
}

func (f *FieldGet) Category() OpCategory { return OpFieldAccess }
func (f *FieldGet) Operands() []Reg {
	if f.HasRecv {
		return []Reg{f.Receiver}
	}
	return nil
}
func (f *FieldGet) Result() (Reg, bool) { return f.Dst, true }
func (f *FieldGet) Symbol() (SymbolRef, bool) { return f.Field, true }
func (f *FieldGet) IsTerminator() bool { return false }
func (f *FieldGet) String() string {
	return fmt.Sprintf("field-get %s, %s, %s", f.Dst, f.Receiver, f.Field.Name)
}
func (f *FieldGet) Equal(other Instruction) bool {
	o, ok := other.(*FieldGet)
	return ok && o.Dst == f.Dst && o.HasRecv == f.HasRecv && o.Receiver == f.Receiver && o.Field == f.Field
}

// FieldSet writes Value into a field.
type FieldSet struct {
	Receiver Reg
	HasRecv  bool
	Value    Reg
	Field    SymbolRef
}

func (f *FieldSet) Category() OpCategory { return OpFieldAccess }
func (f *FieldSet) Operands() []Reg {
	if f.HasRecv {
		return []Reg{f.Receiver, f.Value}
	}
	return []Reg{f.Value}
}
func (f *FieldSet) Result() (Reg, bool) { return 0, false }
func (f *FieldSet) Symbol() (SymbolRef, bool) { return f.Field, true }
func (f *FieldSet) IsTerminator() bool { return false }
func (f *FieldSet) String() string {
	return fmt.Sprintf("field-set %s, %s, %s", f.Receiver, f.Value, f.Field.Name)
}
func (f *FieldSet) Equal(other Instruction) bool {
	o, ok := other.(*FieldSet)
	return ok && o.HasRecv == f.HasRecv && o.Receiver == f.Receiver && o.Value == f.Value && o.Field == f.Field
}

// MonitorEnter and MonitorExit bracket a synchronized region. Which
// object's monitor is held is part of program semantics, so these are
// object-identity sensitive in the same way throw and <init> are.
type MonitorEnter struct{ Obj Reg }

func (m *MonitorEnter) Category() OpCategory { return OpMonitor }
func (m *MonitorEnter) Operands() []Reg { return []Reg{m.Obj} }
func (m *MonitorEnter) Result() (Reg, bool) { return 0, false }
func (m *MonitorEnter) Symbol() (SymbolRef, bool) { return SymbolRef{}, false }
func (m *MonitorEnter) IsTerminator() bool { return false }
func (m *MonitorEnter) String() string { return fmt.Sprintf("monitor-enter %s", m.Obj) }
func (m *MonitorEnter) Equal(other Instruction) bool {
	o, ok := other.(*MonitorEnter)
	return ok && o.Obj == m.Obj
}

type MonitorExit struct{ Obj Reg }

func (m *MonitorExit) Category() OpCategory { return OpMonitor }
func (m *MonitorExit) Operands() []Reg { return []Reg{m.Obj} }
func (m *MonitorExit) Result() (Reg, bool) { return 0, false }
func (m *MonitorExit) Symbol() (SymbolRef, bool) { return SymbolRef{}, false }
func (m *MonitorExit) IsTerminator() bool { return false }
func (m *MonitorExit) String() string { return fmt.Sprintf("monitor-exit %s", m.Obj) }
func (m *MonitorExit) Equal(other Instruction) bool {
	o, ok := other.(*MonitorExit)
	return ok && o.Obj == m.Obj
}

// objectIdentitySensitive reports whether inst's semantics depend on which
// object a register holds, not merely on its class: constructor
// invocation, throw and monitor enter/exit.
func objectIdentitySensitive(inst Instruction) bool {
	switch v := inst.(type) {
	case *Invoke:
		return v.IsConstructorCall()
	case *Throw:
		return true
	case *MonitorEnter, *MonitorExit:
		return true
	}
	return false
}
