package vm

// indexLabels (re)builds LabelIndex from the current Instructions
// stream, mapping each label name to the index of the first
// instruction line that follows it. Safe to call repeatedly; Run calls
// it once at the start of every run so edits to Instructions between
// runs (a REPL reloading a file) are picked up.
func (m *Machine) indexLabels() {
	for k := range m.LabelIndex {
		delete(m.LabelIndex, k)
	}
	for i, line := range m.Instructions {
		if line.IsLabel != "" {
			m.LabelIndex[fold(line.IsLabel)] = i + 1
		}
	}
}

// checkStack validates the stack pointer before the current line
// executes (spec.md §4.8, Stack bounds): sp going negative is a stack
// overflow, sp exceeding StackSize is a stack underflow, and an sp not
// 16-byte aligned is an alignment fault. Checking before rather than
// after dispatch means a final instruction that corrupts sp right
// before the program exits is never flagged, matching the source's
// loop which stops as soon as the fetch condition goes false. (sp+1)
// is checked rather than sp itself because a zero-based stack top
// sits one byte below the aligned boundary.
func (m *Machine) checkStack(line string) error {
	sp := m.Registers["sp"]
	switch {
	case sp < 0:
		return runtimeErrorf(line, "stack overflow")
	case sp > m.StackSize:
		return runtimeErrorf(line, "stack underflow")
	case (sp+1)%16 != 0:
		return runtimeErrorf(line, "stack pointer misaligned")
	}
	return nil
}

// Run executes the parsed instruction stream to completion, starting
// from the current PC. It is invalid to call concurrently with another
// run on the same Machine (spec.md §3, Lifecycles); Reset clears PC and
// all other state back to zero between runs.
func (m *Machine) Run() error {
	if m.running {
		return runtimeErrorf("", "a run is already in progress")
	}
	m.running = true
	defer func() { m.running = false }()

	m.indexLabels()
	m.defaultIO()

	for m.PC < len(m.Instructions) {
		line := m.Instructions[m.PC]
		if line.IsLabel != "" {
			m.PC++
			continue
		}
		if err := m.checkStack(line.Text); err != nil {
			return err
		}
		if err := m.Execute(line.Text); err != nil {
			return err
		}
		if m.MaxCycles > 0 && m.Hazard.Cycle >= m.MaxCycles {
			return runtimeErrorf(line.Text, "exceeded maximum cycle count (%d)", m.MaxCycles)
		}
	}
	return nil
}

// Step executes exactly one instruction line and reports whether the
// program counter still points inside the instruction stream
// afterward, for hosts (a REPL, a single-step debugger) that want
// fetch/execute control finer than Run's run-to-completion loop.
func (m *Machine) Step() (more bool, err error) {
	if m.PC >= len(m.Instructions) {
		return false, nil
	}
	m.defaultIO()
	if len(m.LabelIndex) == 0 {
		m.indexLabels()
	}
	line := m.Instructions[m.PC]
	if line.IsLabel != "" {
		m.PC++
		return m.PC < len(m.Instructions), nil
	}
	if err := m.checkStack(line.Text); err != nil {
		return false, err
	}
	if err := m.Execute(line.Text); err != nil {
		return false, err
	}
	return m.PC < len(m.Instructions), nil
}
