package vm

// Load family widths and signedness (spec.md §4.4, Load family).
type loadForm struct {
	mnemonic   string
	width      int
	boundWidth int // see inBounds: some forms bounds-check a different width than they move
	signed     bool
}

var loadForms = []loadForm{
	{"ldursw", 4, 4, true}, // [rn] form; offset forms override boundWidth to 2, see below
	{"ldurh", 2, 2, false},
	{"ldursh", 2, 2, true},
	{"ldurb", 1, 1, false},
	{"ldursb", 1, 1, true},
	{"ldur", 8, 8, false},
}

// execLoad dispatches the ldur/ldurh/ldursh/ldurb/ldursb/ldursw family
// across their three addressing modes: [rn], [rn,imm], [rn,rm], plus
// ldur rt,=<var>. Returns (handled, error).
func (m *Machine) execLoad(line string, currentCycle int64) (bool, error) {
	mnemonic, rest, ok := splitMnemonic(line)
	if !ok {
		return false, nil
	}

	var form loadForm
	switch mnemonic {
	case "ldursw":
		form = loadForm{mnemonic, 4, 4, true}
	case "ldurh":
		form = loadForm{mnemonic, 2, 2, false}
	case "ldursh":
		form = loadForm{mnemonic, 2, 2, true}
	case "ldurb":
		form = loadForm{mnemonic, 1, 1, false}
	case "ldursb":
		form = loadForm{mnemonic, 1, 1, true}
	case "ldur":
		form = loadForm{mnemonic, 8, 8, false}
	default:
		return false, nil
	}

	// ldur rt,=<var>: symbol-value load, no memory access at all.
	if form.mnemonic == "ldur" {
		if rt, v, ok := matchLoadSymbol(rest); ok {
			val, found := m.Symbols.Lookup(v)
			if !found {
				return true, decodeErrorf(line, "unknown symbol %q", v)
			}
			m.setReg(rt, val)
			m.Hazard.recordLoad(currentCycle, rt)
			return true, nil
		}
	}

	regs := findRegisters(rest)
	brack, addrExpr, ok := matchBracket(rest)
	if !ok {
		return false, nil
	}
	_ = brack
	if len(regs) < 2 {
		return false, nil
	}
	rt := regs[0]
	rn := regs[1]

	switch {
	case addrExpr == "": // [rn]
		if m.Hazard.loadUseRecent(rn) {
			m.Hazard.Cycle++
		}
		addr := m.getReg(rn)
		return true, m.doLoad(line, rt, addr, form.width, form.boundWidth, form.signed, currentCycle)

	case isImmediate(addrExpr): // [rn, imm]
		imm, err := parseImm(addrExpr)
		if err != nil {
			return true, decodeErrorf(line, "bad immediate")
		}
		if m.Hazard.loadUseRecent(rn) {
			if mnemonic == "ldur" || mnemonic == "ldurb" || mnemonic == "ldursb" {
				m.Hazard.Cycle++
			} else {
				m.Hazard.Cycle += currentCycle - m.Hazard.LdCycle
			}
		}
		addr := m.getReg(rn) + imm
		boundWidth := form.boundWidth
		if mnemonic == "ldursw" {
			boundWidth = 2 // source quirk: offset form bounds-checks against len(mem)-2
		}
		return true, m.doLoad(line, rt, addr, form.width, boundWidth, form.signed, currentCycle)

	default: // [rn, rm]
		rm := addrExpr
		if (m.Hazard.LdDst == rn || m.Hazard.LdDst == rm) && currentCycle-m.Hazard.LdCycle <= 2 {
			if mnemonic == "ldur" {
				m.Hazard.Cycle++
			} else {
				m.Hazard.Cycle += currentCycle - m.Hazard.LdCycle
			}
		}
		addr := m.getReg(rn) + m.getReg(rm)
		boundWidth := form.boundWidth
		if mnemonic == "ldursw" {
			boundWidth = 2 // source quirk, see above
		}
		return true, m.doLoad(line, rt, addr, form.width, boundWidth, form.signed, currentCycle)
	}
}

func (m *Machine) doLoad(line, rt string, addr int64, width, boundWidth int, signed bool, currentCycle int64) error {
	if !m.inBounds(addr, boundWidth) {
		return runtimeErrorf(line, "out of bounds memory access")
	}
	m.setReg(rt, m.readWidth(addr, width, signed))
	m.Hazard.recordLoad(currentCycle, rt)
	return nil
}

// Store family widths (spec.md §4.4, Store family). stur writes the
// full 8-byte encoding; the others truncate to their width.
var storeWidths = map[string]int{"stur": 8, "sturw": 4, "sturh": 2, "sturb": 1}

// storeBoundWidth returns the width used for the bounds check, which
// for sturw is 2 regardless of addressing mode, the same len(mem)-2
// quirk documented in spec.md §9 Open Question 5.
func storeBoundWidth(mnemonic string) int {
	if mnemonic == "sturw" {
		return 2
	}
	return storeWidths[mnemonic]
}

// execStore dispatches the stur/sturw/sturh/sturb family across their
// three addressing modes.
func (m *Machine) execStore(line string, currentCycle int64) (bool, error) {
	mnemonic, rest, ok := splitMnemonic(line)
	if !ok {
		return false, nil
	}
	width, known := storeWidths[mnemonic]
	if !known {
		return false, nil
	}

	regs := findRegisters(rest)
	_, addrExpr, ok := matchBracket(rest)
	if !ok || len(regs) < 2 {
		return false, nil
	}
	rt, rn := regs[0], regs[1]
	boundWidth := storeBoundWidth(mnemonic)

	switch {
	case addrExpr == "":
		if mnemonic != "stur" && m.Hazard.loadUseRecent(rn) {
			m.Hazard.Cycle += currentCycle - m.Hazard.LdCycle
		}
		addr := m.getReg(rn)
		return true, m.doStore(line, addr, width, boundWidth, m.getReg(rt))

	case isImmediate(addrExpr):
		imm, err := parseImm(addrExpr)
		if err != nil {
			return true, decodeErrorf(line, "bad immediate")
		}
		if mnemonic != "stur" && m.Hazard.loadUseRecent(rn) {
			m.Hazard.Cycle += currentCycle - m.Hazard.LdCycle
		}
		addr := m.getReg(rn) + imm
		return true, m.doStore(line, addr, width, boundWidth, m.getReg(rt))

	default:
		rm := addrExpr
		if (m.Hazard.LdDst == rn || m.Hazard.LdDst == rm) && currentCycle-m.Hazard.LdCycle <= 2 {
			m.Hazard.Cycle++
		}
		addr := m.getReg(rn) + m.getReg(rm)
		return true, m.doStore(line, addr, width, boundWidth, m.getReg(rt))
	}
}

func (m *Machine) doStore(line string, addr int64, width, boundWidth int, value int64) error {
	if !m.inBounds(addr, boundWidth) {
		return runtimeErrorf(line, "out of bounds memory access")
	}
	m.writeWidth(addr, width, value)
	return nil
}
