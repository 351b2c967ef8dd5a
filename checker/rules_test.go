package checker

import (
	"testing"

	"github.com/dmarsal/aasim/vm"
)

func program(lines ...vm.Line) *vm.Machine {
	m := vm.NewMachine()
	m.Instructions = lines
	return m
}

func TestCheckStaticRejectsEmptyProgram(t *testing.T) {
	m := vm.NewMachine()
	if err := CheckStatic(m, Rules{}); err == nil {
		t.Error("expected an error for an empty instruction stream")
	}
}

func TestCheckStaticRejectsForbiddenMnemonic(t *testing.T) {
	m := program(vm.Line{Text: "svc 0"})
	err := CheckStatic(m, Rules{ForbidMnemonics: []string{"svc"}})
	if err == nil {
		t.Error("expected svc to be rejected")
	}
}

func TestCheckStaticRejectsDuplicateLabels(t *testing.T) {
	m := program(
		vm.Line{IsLabel: "loop"},
		vm.Line{Text: "mov x0,0"},
		vm.Line{IsLabel: "loop"},
	)
	if err := CheckStatic(m, Rules{}); err == nil {
		t.Error("expected a duplicate label error")
	}
}

func TestCheckStaticRejectsDanglingBranch(t *testing.T) {
	m := program(vm.Line{Text: "b nowhere"})
	if err := CheckStatic(m, Rules{}); err == nil {
		t.Error("expected a branch to an undefined label to be rejected")
	}
}

func TestCheckStaticAcceptsLinkedLabelBranch(t *testing.T) {
	m := program(vm.Line{Text: "bl print_int"})
	m.RegisterLinkedLabel("print_int", func(*vm.Machine) error { return nil })
	if err := CheckStatic(m, Rules{}); err != nil {
		t.Errorf("a bl to a registered linked label should not be flagged as dangling: %v", err)
	}
}

func TestCheckStaticForbidLoops(t *testing.T) {
	m := program(
		vm.Line{IsLabel: "loop"},
		vm.Line{Text: "b loop"},
	)
	if err := CheckStatic(m, Rules{ForbidLoops: true}); err == nil {
		t.Error("expected a backward branch to be rejected when loops are forbidden")
	}
	if err := CheckStatic(m, Rules{}); err != nil {
		t.Errorf("the same program should be fine with loops allowed: %v", err)
	}
}

func TestCheckStaticDeadCode(t *testing.T) {
	m := program(
		vm.Line{IsLabel: "main"},
		vm.Line{Text: "b done"},
		vm.Line{IsLabel: "unused"},
		vm.Line{Text: "mov x0,1"},
		vm.Line{IsLabel: "done"},
		vm.Line{Text: "ret"},
	)
	if err := CheckStatic(m, Rules{CheckDeadCode: true}); err == nil {
		t.Error("expected the unreferenced 'unused' label to be flagged")
	}
}

func TestCheckRecursionForbid(t *testing.T) {
	m := vm.NewMachine()
	m.Recursed["fact"] = true
	if err := CheckRecursion(m, Rules{ForbidRecursion: true}); err == nil {
		t.Error("expected recursion to be rejected")
	}
}

func TestCheckRecursionRequire(t *testing.T) {
	m := vm.NewMachine()
	if err := CheckRecursion(m, Rules{RequireRecursion: true}); err == nil {
		t.Error("expected an error when recursion is required but never happened")
	}

	m.Recursed["fact"] = true
	if err := CheckRecursion(m, Rules{RequireRecursion: true, RecursiveLabels: []string{"fact"}}); err != nil {
		t.Errorf("recursion requirement should be satisfied: %v", err)
	}
}
