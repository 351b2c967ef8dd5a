package vm

import (
	"regexp"
	"strings"
)

var (
	commaSpace = regexp.MustCompile(`\s*,\s*`)
	hashSign   = regexp.MustCompile(`#`)
)

// normalizeLine removes whitespace around commas and deletes any #
// immediate-marker characters, the same textual normalization the
// source applies to every line right before executing it (spec.md
// §4.4). Running it again here is idempotent for lines the parser
// already normalized, and required for the rare defensive caller that
// hands Execute a raw line.
func normalizeLine(line string) string {
	line = hashSign.ReplaceAllString(line, "")
	line = commaSpace.ReplaceAllString(strings.TrimSpace(line), ",")
	return line
}

// Execute decodes and runs a single normalized instruction line,
// advancing PC by one unless the instruction itself branched. It is
// the sole entry point the run loop (driver.go) calls per step.
func (m *Machine) Execute(raw string) error {
	line := normalizeLine(raw)
	if line == "" {
		m.PC++
		return nil
	}

	startCycle := m.Hazard.Cycle
	m.Hazard.Executed++
	prevPC := m.PC
	m.PC++ // default fall-through; branch handlers overwrite this
	before := m.snapshotRegisters()

	mnemonic, rest, ok := splitMnemonic(line)
	if !ok {
		// single-token forms: "ret", "br lr" with no space won't reach
		// here since br always has an operand; svc 0 and bl label do.
		mnemonic, rest = line, ""
	}

	// cbz/cbnz test LastDst (the previous instruction's destination), so
	// it is cleared after they run; every other form clears it first, so
	// it stays empty when the form writes no register.
	testsLastDst := mnemonic == "cbz" || mnemonic == "cbnz"
	if !testsLastDst {
		m.Hazard.LastDst = ""
	}
	handled, err := m.dispatch(line, mnemonic, rest, startCycle)
	if testsLastDst {
		m.Hazard.LastDst = ""
	}
	if err != nil {
		m.PC = prevPC
		return err
	}
	if !handled {
		m.PC = prevPC
		return decodeErrorf(line, "unrecognized instruction: %s", mnemonic)
	}

	m.Hazard.Cycle++ // baseline cost of one instruction, on top of any hazard penalty already added above
	m.Registers["xzr"] = 0
	m.tracer.TraceInstruction(m.Hazard.Cycle, prevPC, line, diffRegisters(before, m.Registers), m.Flags)
	return nil
}

func (m *Machine) dispatch(line, mnemonic, rest string, startCycle int64) (bool, error) {
	switch mnemonic {
	case "mov":
		return m.execMov(line, rest, startCycle)
	case "cmp":
		return m.execCmp(line, rest, startCycle)
	case "asr", "lsl", "lsr":
		return m.execShift(line, mnemonic, rest, startCycle)
	case "cbz", "cbnz":
		return m.execCbz(line, mnemonic, rest)
	case "bl":
		return m.execBl(line, rest)
	case "br":
		return m.execBr(line, rest)
	case "svc":
		return m.execSvc(line, rest)
	case "ret":
		return m.execBr(line, "lr")
	}

	if _, known := threeOperandOps[mnemonic]; known {
		return m.execThreeOperand(line, mnemonic, rest, startCycle)
	}
	if _, known := storeWidths[mnemonic]; known {
		return m.execStore(line, startCycle)
	}
	switch mnemonic {
	case "ldur", "ldurh", "ldursh", "ldurb", "ldursb", "ldursw":
		return m.execLoad(line, startCycle)
	}

	if mnemonic == "b" || strings.HasPrefix(mnemonic, "b.") {
		return m.execB(line, mnemonic, rest)
	}

	return false, nil
}
