package vm

import (
	"strings"
	"testing"
)

func TestLineTracerRecordsChangedRegisters(t *testing.T) {
	m := NewMachine()
	m.Memory = make([]byte, 16)
	m.Registers["sp"] = 0

	var buf strings.Builder
	m.SetTracer(NewLineTracer(&buf))

	if err := m.Execute("mov x0,5"); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "x0=5") {
		t.Errorf("trace output %q does not mention x0=5", out)
	}
	if !strings.Contains(out, "mov x0,5") {
		t.Errorf("trace output %q does not echo the executed line", out)
	}
}

func TestNoopTracerIsDefaultAndSilent(t *testing.T) {
	m := NewMachine()
	m.Memory = make([]byte, 16)
	m.Registers["sp"] = 0
	if _, ok := m.tracer.(noopTracer); !ok {
		t.Errorf("default tracer = %T, want noopTracer", m.tracer)
	}

	if err := m.Execute("mov x0,1"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if m.Registers["x0"] != 1 {
		t.Errorf("x0 = %d, want 1", m.Registers["x0"])
	}
}

func TestDiffRegistersOnlyReportsChanges(t *testing.T) {
	before := map[string]int64{"x0": 1, "x1": 2}
	after := map[string]int64{"x0": 1, "x1": 3}
	changed := diffRegisters(before, after)
	if len(changed) != 1 || changed["x1"] != 3 {
		t.Errorf("diffRegisters = %v, want only x1=3", changed)
	}
}
