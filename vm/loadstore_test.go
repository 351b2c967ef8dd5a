package vm

import "testing"

func TestStoreAndLoadAllAddressingModes(t *testing.T) {
	m := NewMachine()
	m.Memory = make([]byte, 64)
	m.Registers["sp"] = 0

	m.Registers["x1"] = 16 // base register
	m.Registers["x2"] = 4  // offset register
	m.Registers["x0"] = 0x1234

	if err := m.Execute("stur x0,[x1]"); err != nil {
		t.Fatalf("stur [rn]: %v", err)
	}
	if err := m.Execute("ldur x3,[x1]"); err != nil {
		t.Fatalf("ldur [rn]: %v", err)
	}
	if m.Registers["x3"] != 0x1234 {
		t.Errorf("x3 = %#x, want 0x1234", m.Registers["x3"])
	}

	if err := m.Execute("stur x0,[x1,8]"); err != nil {
		t.Fatalf("stur [rn,imm]: %v", err)
	}
	if err := m.Execute("ldur x4,[x1,8]"); err != nil {
		t.Fatalf("ldur [rn,imm]: %v", err)
	}
	if m.Registers["x4"] != 0x1234 {
		t.Errorf("x4 = %#x, want 0x1234", m.Registers["x4"])
	}

	if err := m.Execute("stur x0,[x1,x2]"); err != nil {
		t.Fatalf("stur [rn,rm]: %v", err)
	}
	if err := m.Execute("ldur x5,[x1,x2]"); err != nil {
		t.Fatalf("ldur [rn,rm]: %v", err)
	}
	if m.Registers["x5"] != 0x1234 {
		t.Errorf("x5 = %#x, want 0x1234", m.Registers["x5"])
	}
}

func TestLdurSignExtension(t *testing.T) {
	m := NewMachine()
	m.Memory = make([]byte, 64)
	m.Registers["sp"] = 0
	m.Registers["x1"] = 0

	m.Registers["x0"] = -1
	if err := m.Execute("sturb x0,[x1]"); err != nil {
		t.Fatalf("sturb: %v", err)
	}
	if err := m.Execute("ldursb x2,[x1]"); err != nil {
		t.Fatalf("ldursb: %v", err)
	}
	if m.Registers["x2"] != -1 {
		t.Errorf("ldursb x2 = %d, want -1", m.Registers["x2"])
	}
	if err := m.Execute("ldurb x3,[x1]"); err != nil {
		t.Fatalf("ldurb: %v", err)
	}
	if m.Registers["x3"] != 0xFF {
		t.Errorf("ldurb x3 = %#x, want 0xff", m.Registers["x3"])
	}
}

func TestLdurLoadsSymbolValue(t *testing.T) {
	m := NewMachine()
	m.Memory = make([]byte, 16)
	m.Symbols.Define("limit", 99)

	if err := m.Execute("ldur x0,=limit"); err != nil {
		t.Fatalf("ldur =var: %v", err)
	}
	if m.Registers["x0"] != 99 {
		t.Errorf("x0 = %d, want 99", m.Registers["x0"])
	}
}

func TestOutOfBoundsLoadIsRuntimeError(t *testing.T) {
	m := NewMachine()
	m.Memory = make([]byte, 4)
	m.Registers["sp"] = 0
	m.Registers["x1"] = 100

	err := m.Execute("ldur x0,[x1]")
	if err == nil {
		t.Fatal("expected an out-of-bounds runtime error")
	}
	if verr, ok := err.(*Error); !ok || verr.Kind != ErrRuntime {
		t.Errorf("got %v, want an ErrRuntime *Error", err)
	}
}
