package vm

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Tracer receives one notification per successfully executed
// instruction line (spec.md §6, Logging). It is ambient observability
// over the model, not a modeled feature, so a Machine with no tracer
// installed pays nothing for it beyond the snapshot diff in Execute.
type Tracer interface {
	TraceInstruction(cycle int64, pc int, line string, changed map[string]int64, flags Flags)
}

type noopTracer struct{}

func (noopTracer) TraceInstruction(int64, int, string, map[string]int64, Flags) {}

// LineTracer writes one line per executed instruction to Writer:
// cycle, program counter, the executed line, changed registers, and
// flags.
type LineTracer struct {
	Writer io.Writer
}

// NewLineTracer returns a LineTracer writing to w.
func NewLineTracer(w io.Writer) *LineTracer {
	return &LineTracer{Writer: w}
}

func (t *LineTracer) TraceInstruction(cycle int64, pc int, line string, changed map[string]int64, flags Flags) {
	if t.Writer == nil {
		return
	}
	names := make([]string, 0, len(changed))
	for name := range changed {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%d", name, changed[name])
	}
	changesStr := "(no changes)"
	if len(parts) > 0 {
		changesStr = strings.Join(parts, " ")
	}

	nFlag, zFlag := "-", "-"
	if flags.N {
		nFlag = "N"
	}
	if flags.Z {
		zFlag = "Z"
	}

	fmt.Fprintf(t.Writer, "[%06d] pc=%04d %-24s | %s | %s%s\n",
		cycle, pc, line, changesStr, nFlag, zFlag)
}

// SetTracer installs t as the instruction tracer, replacing whatever
// was set before (NewMachine defaults to a no-op tracer).
func (m *Machine) SetTracer(t Tracer) {
	if t == nil {
		t = noopTracer{}
	}
	m.tracer = t
}

// snapshotRegisters copies the current register file, used by Execute
// to compute the set of registers an instruction changed.
func (m *Machine) snapshotRegisters() map[string]int64 {
	snap := make(map[string]int64, len(m.Registers))
	for k, v := range m.Registers {
		snap[k] = v
	}
	return snap
}

// diffRegisters returns the subset of m.Registers whose value differs
// from before, or is new (never the case here since the register set
// is fixed at construction, but kept for symmetry with a map diff).
func diffRegisters(before, after map[string]int64) map[string]int64 {
	changed := make(map[string]int64)
	for k, v := range after {
		if before[k] != v {
			changed[k] = v
		}
	}
	return changed
}
