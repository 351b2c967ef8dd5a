// Package parser turns AArch64 assembly source text into a populated
// vm.Machine: a static data/bss section laid into memory right after
// the stack, a resolved symbol table, and a flat instruction stream
// with label markers the executor resolves at run time.
package parser

import (
	"fmt"

	"github.com/dmarsal/aasim/vm"
)

type parseState struct {
	machine *vm.Machine
	data    *dataBuilder
	errs    ErrorList
}

func (p *parseState) errf(pos Position, format string, args ...any) error {
	e := &ParseError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
	p.errs = append(p.errs, e)
	return e
}

// Parse assembles source into m. Memory layout follows spec.md §3: an
// m.StackSize-byte stack region at address 0, the static data/bss
// section immediately after it, and the heap (grown on demand by the
// brk syscall) above that. m should be freshly constructed or Reset;
// a caller that wants a non-default stack size sets m.StackSize first.
func Parse(source string, m *vm.Machine) error {
	lines := scan(source)
	p := &parseState{machine: m, data: newDataBuilder(m.StackSize)}

	stack := make([]byte, m.StackSize)
	m.Memory = stack
	m.Registers["sp"] = m.StackSize - 1

	var pendingLabel string
	for _, line := range lines {
		switch line.section {
		case sectionData, sectionBss:
			if handled, _ := p.applyAssignment(line); handled {
				continue
			}
			_ = p.applyDataLine(line, &pendingLabel)
		case sectionText:
			p.applyTextLine(line)
		}
	}

	m.Memory = append(m.Memory, p.data.buf...)
	m.OriginalBreak = int64(len(m.Memory))
	m.Brk = m.OriginalBreak

	return p.errs.Err()
}

// applyTextLine interprets one normalized instruction-section line as
// either a bare label declaration or an instruction, appending the
// result to the instruction stream. Operand validity is not checked
// here; Machine.Execute reports an unrecognized-instruction decode
// error the first time a malformed line is actually reached.
func (p *parseState) applyTextLine(line rawLine) {
	if name, ok := matchLabel(line.text); ok {
		p.machine.Instructions = append(p.machine.Instructions, vm.Line{IsLabel: name})
		return
	}
	p.machine.Instructions = append(p.machine.Instructions, vm.Line{Text: line.text})
}
