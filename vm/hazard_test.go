package vm

import "testing"

func TestLoadUseRecentWindow(t *testing.T) {
	h := newHazardState()
	h.recordLoad(10, "x1")

	h.Cycle = 10
	if !h.loadUseRecent("x1") {
		t.Error("same cycle as the load should be within the penalty window")
	}
	h.Cycle = 12
	if !h.loadUseRecent("x1") {
		t.Error("two cycles after the load should still be within the window")
	}
	h.Cycle = 13
	if h.loadUseRecent("x1") {
		t.Error("three cycles after the load should be outside the window")
	}
	if h.loadUseRecent("x2") {
		t.Error("a different register was never loaded")
	}
}

func TestFlagUseRecentWindow(t *testing.T) {
	h := newHazardState()
	h.recordFlagWrite(5)

	h.Cycle = 5
	if !h.flagUseRecent() {
		t.Error("same cycle as the flag write should be within the window")
	}
	h.Cycle = 6
	if !h.flagUseRecent() {
		t.Error("one cycle after the flag write should still be within the window")
	}
	h.Cycle = 7
	if h.flagUseRecent() {
		t.Error("two cycles after the flag write should be outside the window")
	}
}

func TestLoadUsePenaltyInflatesCycleCount(t *testing.T) {
	// Loading through a register that was itself the destination of the
	// load one cycle earlier costs an address-generation penalty cycle
	// (spec.md §4.5, Load-use penalty).
	m := NewMachine()
	m.Memory = make([]byte, 64)
	m.Registers["sp"] = 0
	m.Registers["x0"] = 8

	if err := m.Execute("ldur x1,[x0]"); err != nil {
		t.Fatalf("ldur: %v", err)
	}
	base := m.Hazard.Cycle

	if err := m.Execute("ldur x2,[x1]"); err != nil {
		t.Fatalf("ldur: %v", err)
	}
	if m.Hazard.Cycle <= base {
		t.Errorf("expected a load-use penalty cycle, went from %d to %d", base, m.Hazard.Cycle)
	}
}
