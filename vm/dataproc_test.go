package vm

import "testing"

// mov rd,rn pays a flat +1 when rn was loaded within the last two
// cycles (armsim.py:942-950).
func TestMovRegisterFormPaysLoadUsePenalty(t *testing.T) {
	m := NewMachine()
	m.Memory = make([]byte, 64)
	m.Registers["sp"] = 0
	m.Registers["x0"] = 8

	if err := m.Execute("ldur x1,[x0]"); err != nil {
		t.Fatalf("ldur: %v", err)
	}
	base := m.Hazard.Cycle
	if err := m.Execute("mov x2,x1"); err != nil {
		t.Fatalf("mov: %v", err)
	}
	if m.Hazard.Cycle != base+2 { // +1 penalty, +1 baseline
		t.Errorf("mov cycle = %d, want %d", m.Hazard.Cycle, base+2)
	}
}

// mov rd,imm never consults the load-use window: there is no source
// register to have been recently loaded.
func TestMovImmediateFormPaysNoPenalty(t *testing.T) {
	m := NewMachine()
	m.Memory = make([]byte, 64)
	m.Registers["sp"] = 0
	m.Registers["x0"] = 8

	if err := m.Execute("ldur x1,[x0]"); err != nil {
		t.Fatalf("ldur: %v", err)
	}
	base := m.Hazard.Cycle
	if err := m.Execute("mov x1,5"); err != nil {
		t.Fatalf("mov: %v", err)
	}
	if m.Hazard.Cycle != base+1 { // baseline only
		t.Errorf("mov cycle = %d, want %d", m.Hazard.Cycle, base+1)
	}
}

// add rd,rn,imm's load-use window is one cycle, not two
// (armsim.py:1014-1027).
func TestAddImmediateFormUsesOneCycleWindow(t *testing.T) {
	m := NewMachine()
	m.Memory = make([]byte, 64)
	m.Registers["sp"] = 0
	m.Registers["x0"] = 8

	if err := m.Execute("ldur x1,[x0]"); err != nil {
		t.Fatalf("ldur: %v", err)
	}
	if err := m.Execute("mov x9,0"); err != nil { // burn one cycle, now two past the load
		t.Fatalf("mov: %v", err)
	}
	base := m.Hazard.Cycle
	if err := m.Execute("add x2,x1,1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if m.Hazard.Cycle != base+1 {
		t.Errorf("add outside the 1-cycle window should pay no penalty: cycle = %d, want %d", m.Hazard.Cycle, base+1)
	}
}

// sub rd,rn,imm pays a penalty proportional to the distance from the
// load, not a flat +1 (armsim.py:1043-1055).
func TestSubImmediateFormPaysProportionalPenalty(t *testing.T) {
	m := NewMachine()
	m.Memory = make([]byte, 64)
	m.Registers["sp"] = 0
	m.Registers["x0"] = 8

	if err := m.Execute("ldur x1,[x0]"); err != nil {
		t.Fatalf("ldur: %v", err)
	}
	ldCycle := m.Hazard.LdCycle
	startCycle := m.Hazard.Cycle
	if err := m.Execute("sub x2,x1,1"); err != nil {
		t.Fatalf("sub: %v", err)
	}
	want := startCycle + (startCycle - ldCycle) + 1 // penalty, plus baseline
	if m.Hazard.Cycle != want {
		t.Errorf("sub cycle = %d, want %d", m.Hazard.Cycle, want)
	}
}

// mul always adds a fixed +4 multi-cycle cost on top of any load-use
// penalty (spec.md §4.5; armsim.py:1070-1080).
func TestMulAddsFixedFourCycleCost(t *testing.T) {
	m := NewMachine()
	m.Registers["x1"] = 3
	m.Registers["x2"] = 4

	base := m.Hazard.Cycle
	if err := m.Execute("mul x0,x1,x2"); err != nil {
		t.Fatalf("mul: %v", err)
	}
	if m.Hazard.Cycle != base+5 { // +4 fixed, +1 baseline, no load-use penalty here
		t.Errorf("mul cycle = %d, want %d", m.Hazard.Cycle, base+5)
	}
	if m.Registers["x0"] != 12 {
		t.Errorf("x0 = %d, want 12", m.Registers["x0"])
	}
}

// cmp rn,rm pays a flat +1 when either operand was loaded within the
// last two cycles (armsim.py:1108-1119).
func TestCmpRegisterFormPaysLoadUsePenalty(t *testing.T) {
	m := NewMachine()
	m.Memory = make([]byte, 64)
	m.Registers["sp"] = 0
	m.Registers["x0"] = 8
	m.Registers["x2"] = 99

	if err := m.Execute("ldur x1,[x0]"); err != nil {
		t.Fatalf("ldur: %v", err)
	}
	base := m.Hazard.Cycle
	if err := m.Execute("cmp x1,x2"); err != nil {
		t.Fatalf("cmp: %v", err)
	}
	if m.Hazard.Cycle != base+2 {
		t.Errorf("cmp cycle = %d, want %d", m.Hazard.Cycle, base+2)
	}
}
