package ir

import (
	"fmt"
	"strings"
)

// Printer provides pretty-printing for a method's CFG through an
// indent-tracking, strings.Builder-backed writer.
type Printer struct {
	indent int
	output strings.Builder
}

func NewPrinter() *Printer { return &Printer{} }

// PrintCFG returns a human-readable dump of a method's CFG, blocks in the
// order Blocks() returns them (label order of the IR it was built from,
// then any added blocks), useful for golden-file tests and -dump-cfg output.
func PrintCFG(name string, cfg *CFG) string {
	p := NewPrinter()
	p.printCFG(name, cfg)
	return p.output.String()
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("  ")
	}
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) printCFG(name string, cfg *CFG) {
	p.writeLine("method %s {", name)
	p.indent++
	for _, b := range cfg.Blocks() {
		entryMark := ""
		if b == cfg.Entry {
			entryMark = " ; entry"
		}
		p.writeLine("L%d:%s", int(b.ID), entryMark)
		p.indent++
		for _, inst := range b.Instructions {
			p.writeLine("%s", inst.String())
		}
		p.writeLine("%s", b.Terminator.String())
		p.indent--
	}
	p.indent--
	p.writeLine("}")
}
