package vm

import "strings"

// condHolds evaluates an ARM64 condition code against the N/Z flags
// Machine tracks. The V flag is never set by any modeled instruction
// (spec.md §3), so it is treated as permanently 0, which is also how
// the overflow-sensitive codes (gt/le/ge/lt) reduce to pure N/Z tests.
func (f Flags) condHolds(cond string) (bool, bool) {
	switch cond {
	case "eq":
		return f.Z, true
	case "ne":
		return !f.Z, true
	case "mi":
		return f.N, true
	case "pl":
		return !f.N, true
	case "lt":
		return f.N, true
	case "ge":
		return !f.N, true
	case "gt":
		return !f.Z && !f.N, true
	case "le":
		return f.Z || f.N, true
	default:
		return false, false
	}
}

func (m *Machine) jumpTo(label string) error {
	idx, ok := m.LabelIndex[fold(label)]
	if !ok {
		return decodeErrorf("", "branch to undefined label %q", label)
	}
	m.LabelHitCounts[fold(label)]++
	m.PC = idx
	// Taken branches flush the pipeline (spec.md §4.5, Branch penalty).
	m.Hazard.Cycle++
	return nil
}

// execB handles unconditional "b label" and conditional "b.cond label".
func (m *Machine) execB(line, mnemonic, rest string) (bool, error) {
	label := strings.TrimSpace(rest)
	if mnemonic == "b" {
		return true, m.jumpTo(label)
	}
	cond, isCond := strings.CutPrefix(mnemonic, "b.")
	if !isCond {
		return false, nil
	}
	holds, known := m.Flags.condHolds(cond)
	if !known {
		return false, nil
	}
	if m.Hazard.flagUseRecent() {
		m.Hazard.Cycle++
	}
	if holds {
		return true, m.jumpTo(label)
	}
	return true, nil
}

// execCbz handles "cbz rt,label" and "cbnz rt,label". Testing a
// register that the immediately preceding instruction wrote costs an
// extra cycle (spec.md §4.5, compare-and-branch penalty).
func (m *Machine) execCbz(line, mnemonic, rest string) (bool, error) {
	var negate bool
	switch mnemonic {
	case "cbz":
		negate = false
	case "cbnz":
		negate = true
	default:
		return false, nil
	}
	parts := strings.SplitN(rest, ",", 2)
	if len(parts) != 2 {
		return false, nil
	}
	rt, label := parts[0], strings.TrimSpace(parts[1])
	if !isRegisterName(rt) {
		return false, nil
	}
	if m.Hazard.LastDst == rt {
		m.Hazard.Cycle++
	}
	isZero := m.getReg(rt) == 0
	if isZero != negate {
		return true, m.jumpTo(label)
	}
	return true, nil
}

// execBl handles "bl label". If label has been registered as a linked
// label via RegisterLinkedLabel, the host routine runs in place of an
// in-stream jump (spec.md §10, Embedding surface); otherwise lr is set
// to the return address and control transfers to the label.
func (m *Machine) execBl(line, rest string) (bool, error) {
	label := strings.TrimSpace(rest)
	if fn, ok := m.LinkedLabels[fold(label)]; ok {
		return true, fn(m)
	}
	folded := fold(label)
	for _, active := range m.CallStack {
		if active == folded {
			m.Recursed[folded] = true
			break
		}
	}
	m.CallStack = append(m.CallStack, folded)
	// m.PC was already advanced to the fall-through line by Execute
	// before this handler ran, so it already holds the return address.
	m.setReg("lr", int64(m.PC))
	return true, m.jumpTo(label)
}

// execBr handles "br lr" (there is no general-register br in this
// subset; the source only ever emits br against lr for a return).
func (m *Machine) execBr(line, rest string) (bool, error) {
	if strings.TrimSpace(rest) != "lr" {
		return false, nil
	}
	if target := m.getReg("lr"); target < 0 || target > int64(len(m.Instructions)) {
		return true, runtimeErrorf(line, "return address %d outside the instruction stream", target)
	}
	if n := len(m.CallStack); n > 0 {
		m.CallStack = m.CallStack[:n-1]
	}
	m.PC = int(m.getReg("lr"))
	m.Hazard.Cycle++
	return true, nil
}

// execSvc handles "svc 0".
func (m *Machine) execSvc(line, rest string) (bool, error) {
	if strings.TrimSpace(rest) != "0" {
		return false, nil
	}
	return true, m.svc()
}
