// Package store implements the Program Store: the in-memory holder of
// classes, methods, and each method's instruction list, lifted to a
// CFG only for the duration of a pass's callback.
package store

import (
	"fmt"

	"kanso/internal/ir"
)

// SymbolTables is an out-of-scope dependency: type, field, method and
// string lookups a real deployment would back with a decoded
// class-file container. This core ships no implementation - passes
// that need one take it from Store, which holds it read-only.
type SymbolTables interface {
	LookupType(name string) (ir.SymbolRef, bool)
	LookupMethod(name string) (ir.SymbolRef, bool)
	LookupField(name string) (ir.SymbolRef, bool)
}

// Method holds one method's body, either as linear IR or, transiently
// during a WithCFG callback, as a lifted CFG. The two never coexist:
// cfg is nil outside of WithCFG.
type Method struct {
	Name string
	ir   []ir.Instruction
	cfg  *ir.CFG
}

// NewMethod wraps a fully-formed linear instruction stream.
func NewMethod(name string, instrs []ir.Instruction) *Method {
	return &Method{Name: name, ir: instrs}
}

// IR returns the method's current linear instruction stream. It is
// only meaningful outside a WithCFG callback; calling it from inside
// one is a programmer error this core doesn't attempt to prevent
// (WithCFG is not reentrant).
func (m *Method) IR() []ir.Instruction { return m.ir }

// SetIR replaces the method's linear instruction stream directly,
// bypassing CFG construction - used by tests and by passes that work
// purely on the flat form.
func (m *Method) SetIR(instrs []ir.Instruction) { m.ir = instrs }

// WithCFG builds a CFG from the method's current linear IR, runs fn
// against it, and on fn's success flattens the (possibly mutated) CFG
// back into the method's linear IR before returning. The CFG pointer
// handed to fn must not be retained past the call: WithCFG is the only
// place a *ir.CFG for this method exists, so a pass can never hold a
// CFG reference across pass boundaries.
func (m *Method) WithCFG(fn func(*ir.CFG) error) error {
	cfg, err := ir.Build(m.ir)
	if err != nil {
		return fmt.Errorf("method %s: lifting to CFG: %w", m.Name, err)
	}
	m.cfg = cfg
	defer func() { m.cfg = nil }()

	if err := fn(cfg); err != nil {
		return err
	}
	m.ir = cfg.Flatten()
	return nil
}

// Class groups the methods declared on one type.
type Class struct {
	Name    string
	methods []*Method
}

// NewClass wraps a set of already-constructed methods.
func NewClass(name string, methods []*Method) *Class {
	return &Class{Name: name, methods: methods}
}

func (c *Class) Methods() []*Method { return c.methods }

// AddMethod appends a method to the class, used when building a Store
// incrementally (tests, synthetic fixtures).
func (c *Class) AddMethod(m *Method) { c.methods = append(c.methods, m) }

// Store is the whole-program container every pass operates over: every
// class, each class's methods, and a read-only handle on symbol tables.
type Store struct {
	classes []*Class
	symbols SymbolTables
}

// New creates an empty Store. Symbols may be nil; callers that never
// need symbol lookups (most passes in this core's own tests) don't have
// to supply one.
func New(symbols SymbolTables) *Store {
	return &Store{symbols: symbols}
}

func (s *Store) Classes() []*Class { return s.classes }

// AddClass appends a class, used when building a Store incrementally.
func (s *Store) AddClass(c *Class) { s.classes = append(s.classes, c) }

// Symbols returns the read-only symbol table handle: symbol tables are
// written only at program load and teardown, so no method on Store
// exposes a mutable view.
func (s *Store) Symbols() SymbolTables { return s.symbols }

// Methods returns every method across every class, in class-then-method
// order, for passes and the Pass Manager's worker pool to iterate.
func (s *Store) Methods() []*Method {
	var out []*Method
	for _, c := range s.classes {
		out = append(out, c.methods...)
	}
	return out
}
