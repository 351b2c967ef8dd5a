// Package checker implements the static and post-run rule checks a
// caller can layer on top of a parsed or executed vm.Machine: forbidden
// mnemonics, duplicate/dangling labels, loop and dead-code policy, and
// recursion policy.
package checker

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/dmarsal/aasim/vm"
)

// Rules mirrors config.Config's Rules section; checker does not import
// config, so callers translate config.Config.Rules into this type at
// the CLI boundary.
type Rules struct {
	ForbidMnemonics  []string
	ForbidLoops      bool
	CheckDeadCode    bool
	ForbidRecursion  bool
	RequireRecursion bool
	RecursiveLabels  []string
}

// RuleError reports a single static or post-run rule violation.
type RuleError struct {
	Line string
	Msg  string
}

func (e *RuleError) Error() string {
	if e.Line == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Msg, e.Line)
}

var branchMnemonics = map[string]bool{
	"b": true, "cbz": true, "cbnz": true, "bl": true,
}

func isCondBranch(mnemonic string) bool {
	return strings.HasPrefix(mnemonic, "b.")
}

func mnemonicOf(text string) string {
	if i := strings.IndexByte(text, ' '); i >= 0 {
		return text[:i]
	}
	return text
}

func branchTarget(text string) (string, bool) {
	mnemonic := mnemonicOf(text)
	if !branchMnemonics[mnemonic] && !isCondBranch(mnemonic) {
		return "", false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(text, mnemonic))
	if mnemonic == "cbz" || mnemonic == "cbnz" {
		parts := strings.SplitN(rest, ",", 2)
		if len(parts) != 2 {
			return "", false
		}
		return strings.TrimSpace(parts[1]), true
	}
	return rest, true
}

// CheckStatic validates a parsed but not-yet-run Machine (spec.md §5):
// the instruction stream must be non-empty, no forbidden mnemonic may
// appear, no label may be declared twice, every branch target must
// resolve to a declared label, and (when the corresponding rule is
// enabled) no backward branch or unreachable code may be present.
func CheckStatic(m *vm.Machine, r Rules) error {
	if len(m.Instructions) == 0 {
		return &RuleError{Msg: "program contains no instructions"}
	}

	forbidden := make(map[string]bool, len(r.ForbidMnemonics))
	for _, f := range r.ForbidMnemonics {
		forbidden[strings.ToLower(f)] = true
	}

	seenLabels := make(map[string]int) // label -> index of declaration
	labelIndex := make(map[string]int)
	for i, line := range m.Instructions {
		if line.IsLabel == "" {
			continue
		}
		name := strings.ToLower(line.IsLabel)
		if _, dup := seenLabels[name]; dup {
			return &RuleError{Line: line.IsLabel, Msg: "duplicate label"}
		}
		seenLabels[name] = i
		labelIndex[name] = i
	}

	referenced := make(map[string]bool, len(labelIndex))
	for i, line := range m.Instructions {
		if line.IsLabel != "" {
			continue
		}
		mnemonic := mnemonicOf(line.Text)
		if forbidden[mnemonic] {
			return &RuleError{Line: line.Text, Msg: "forbidden mnemonic"}
		}
		target, ok := branchTarget(line.Text)
		if !ok {
			continue
		}
		folded := strings.ToLower(target)
		idx, declared := labelIndex[folded]
		if !declared {
			if _, linked := m.LinkedLabels[folded]; linked {
				// A linked label bypasses in-stream resolution entirely
				// (spec.md §4.7 rule 4, §7): bl dispatches it as a host
				// call instead of a jump, so it has no Instructions index
				// to check as dangling or backward.
				continue
			}
			return &RuleError{Line: line.Text, Msg: fmt.Sprintf("branch to undefined label %q", target)}
		}
		referenced[folded] = true

		if r.ForbidLoops && idx <= i {
			return &RuleError{Line: line.Text, Msg: "backward branch forms a loop"}
		}
	}

	if r.CheckDeadCode {
		if err := checkDeadCode(m, referenced); err != nil {
			return err
		}
	}

	return nil
}

// checkDeadCode reports a label that no branch instruction ever
// targets, excluding the conventional entry labels main/_start which
// are reached by falling into the first instruction, not by a branch.
func checkDeadCode(m *vm.Machine, referenced map[string]bool) error {
	for _, line := range m.Instructions {
		if line.IsLabel == "" {
			continue
		}
		name := strings.ToLower(line.IsLabel)
		if name == "main" || name == "_start" {
			continue
		}
		if !referenced[name] {
			return &RuleError{Line: line.IsLabel, Msg: "unreferenced label (dead code)"}
		}
	}
	return nil
}

// CheckRecursion validates a Machine's recursion behavior after a run
// has completed (spec.md §5, Recursion policy). ForbidRecursion and
// RequireRecursion are mutually exclusive; when RecursiveLabels is
// non-empty, RequireRecursion only needs at least one of the named
// labels to have actually recursed.
func CheckRecursion(m *vm.Machine, r Rules) error {
	recursedLabels := lo.Keys(lo.PickBy(m.Recursed, func(_ string, recursed bool) bool { return recursed }))

	if r.ForbidRecursion && len(recursedLabels) > 0 {
		return &RuleError{Line: recursedLabels[0], Msg: "recursion is forbidden but label recursed"}
	}

	if r.RequireRecursion {
		labels := r.RecursiveLabels
		if len(labels) == 0 {
			labels = recursedLabels
		}
		satisfied := lo.SomeBy(labels, func(label string) bool { return m.Recursed[strings.ToLower(label)] })
		if !satisfied {
			return &RuleError{Msg: "recursion is required but no labeled call recursed"}
		}
	}

	return nil
}
