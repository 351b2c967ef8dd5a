package vm

import (
	"regexp"
	"strings"
)

var (
	mnemonicSplit = regexp.MustCompile(`^(\S+)\s+(.*)$`)
	bracketExpr   = regexp.MustCompile(`\[([^,\]]+)(?:,([^\]]+))?\]`)
	loadSymbol    = regexp.MustCompile(`^(\S+),=(\S+)$`)
)

// splitMnemonic separates a normalized instruction line into its
// mnemonic and operand text, e.g. "add x0,x1,x2" -> ("add", "x0,x1,x2").
func splitMnemonic(line string) (mnemonic, rest string, ok bool) {
	m := mnemonicSplit.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// matchBracket extracts the base register and optional offset operand
// from a [rn] / [rn,imm] / [rn,rm] addressing expression found anywhere
// in operand text. addrExpr is "" when no offset was present.
func matchBracket(rest string) (rn, addrExpr string, ok bool) {
	m := bracketExpr.FindStringSubmatch(rest)
	if m == nil {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
}

// matchLoadSymbol recognizes the ldur rt,=<var> form.
func matchLoadSymbol(rest string) (rt, varName string, ok bool) {
	m := loadSymbol.FindStringSubmatch(rest)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// isImmediate reports whether tok is an entire numeric literal rather
// than a register name.
func isImmediate(tok string) bool {
	m := regexNum.FindString(tok)
	return m == tok
}

// getReg reads a register's value. xzr always reads zero.
func (m *Machine) getReg(name string) int64 {
	if name == "xzr" {
		return 0
	}
	return m.Registers[name]
}

// setReg writes a register's value. Writes to xzr are discarded; it is
// also forced back to zero at the end of every instruction (spec.md
// §3, xzr), so a write surviving mid-instruction has no visible effect.
func (m *Machine) setReg(name string, value int64) {
	if name == "xzr" {
		return
	}
	m.Registers[name] = value
	m.Hazard.LastDst = name
}
