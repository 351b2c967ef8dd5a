package vm

import "fmt"

// Line is one entry in the parsed instruction stream: either a bare
// label line ("loop:") or a normalized instruction line ("add x0,x0,x1").
type Line struct {
	Text    string
	IsLabel string // label name without the trailing colon, "" if not a label line
}

// LinkedFunc is a host-provided routine invoked in place of an
// in-stream jump when bl targets a linked label (spec.md §3, Linked
// labels; §10 of SPEC_FULL.md).
type LinkedFunc func(m *Machine) error

// Embedder is the surface a host (debugger, image loader, test
// harness) uses to drive and inspect a Machine without reaching into
// its internals. Machine implements it directly.
type Embedder interface {
	Symbol(name string) (int64, bool)
	Peek(addr int64, width int) ([]byte, error)
	Poke(addr int64, data []byte) error
	InstructionAt(pc int) (string, bool)
	InstructionCount() int
	RegisterLinkedLabel(label string, fn LinkedFunc)
}

// Machine is the single owning aggregate of all process-wide simulator
// state: memory, registers, flags, the symbol table, the instruction
// stream, and the hazard model's counters. It replaces the source
// simulator's package-level globals with one struct passed by
// reference through the parser and executor, so Reset can recreate it
// wholesale (spec.md §9, Global state design note).
type Machine struct {
	Memory    []byte
	Registers map[string]int64
	Flags     Flags
	Symbols   *SymbolTable

	Instructions   []Line
	LabelIndex     map[string]int // label name -> index into Instructions of the first line after it
	LabelHitCounts map[string]int
	LinkedLabels   map[string]LinkedFunc

	CallStack []string        // labels currently active via bl, for recursion detection
	Recursed  map[string]bool // labels observed to re-enter themselves via bl

	Hazard HazardState

	// MaxCycles aborts Run with a runtime error once Hazard.Cycle
	// reaches it, a safety net against runaway programs. Zero means
	// unbounded (spec.md §6, Configuration file: execution.max_cycles).
	MaxCycles int64

	// StackSize and HeapCap are the process memory parameters Parse and
	// sysBrk lay memory out against. NewMachine seeds them from
	// DefaultStackSize/DefaultHeapCap; a caller (main's config loader)
	// may override them before calling Parse (spec.md §6, Configuration
	// file: execution.stack_size / execution.heap_cap).
	StackSize int64
	HeapCap   int64

	PC int

	OriginalBreak int64
	Brk           int64

	running bool

	stdin  lineReader
	stdout func(string)
	tracer Tracer
}

// lineReader abstracts the blocking stdin read the `read` syscall
// performs, so tests can supply canned input instead of the console.
type lineReader interface {
	ReadLine() (string, error)
}

// NewMachine constructs a Machine ready for Parse to populate.
func NewMachine() *Machine {
	m := &Machine{}
	m.reinit()
	m.StackSize = DefaultStackSize
	m.HeapCap = DefaultHeapCap
	m.tracer = noopTracer{}
	return m
}

func (m *Machine) reinit() {
	m.Memory = nil
	m.Registers = make(map[string]int64, len(registerNames))
	for _, r := range registerNames {
		m.Registers[r] = 0
	}
	m.Flags = m.Flags.reset()
	m.Symbols = NewSymbolTable()
	m.Instructions = nil
	m.LabelIndex = make(map[string]int)
	m.LabelHitCounts = make(map[string]int)
	m.LinkedLabels = make(map[string]LinkedFunc)
	m.CallStack = nil
	m.Recursed = make(map[string]bool)
	m.Hazard = newHazardState()
	m.PC = 0
	m.OriginalBreak = 0
	m.Brk = 0
	m.running = false
}

// Reset reinitializes all machine state to empty/zero. It is the only
// lifecycle operation (spec.md §3, Lifecycles) and is invalid while a
// run is in progress.
func (m *Machine) Reset() error {
	if m.running {
		return fmt.Errorf("cannot reset: a run is in progress")
	}
	m.reinit()
	return nil
}

// SetIO installs the stdin reader and stdout writer the read/write
// syscalls use. Hosts embedding the machine (tests, a REPL) call this
// to redirect console I/O; Run and Step fall back to the process's
// real stdin/stdout via defaultIO if neither was ever set.
func (m *Machine) SetIO(in lineReader, out func(string)) {
	m.stdin = in
	m.stdout = out
}

// RegisterLinkedLabel binds label (without the trailing colon) to a
// host-provided routine. During bl, a match here is dispatched as a
// host call instead of an in-stream jump.
func (m *Machine) RegisterLinkedLabel(label string, fn LinkedFunc) {
	m.LinkedLabels[fold(label)] = fn
}

// Symbol looks up a resolved symbol's value (spec.md §10, Embedder).
func (m *Machine) Symbol(name string) (int64, bool) {
	return m.Symbols.Lookup(name)
}

// InstructionAt returns the normalized line at program-counter index pc.
func (m *Machine) InstructionAt(pc int) (string, bool) {
	if pc < 0 || pc >= len(m.Instructions) {
		return "", false
	}
	return m.Instructions[pc].Text, true
}

// InstructionCount returns the length of the parsed instruction stream.
func (m *Machine) InstructionCount() int {
	return len(m.Instructions)
}
