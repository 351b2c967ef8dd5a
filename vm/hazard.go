package vm

// HazardState is the purely observational bookkeeping the performance
// model uses to inflate the cycle counter on recent producer/consumer
// relationships (spec.md §3, Hazard state / §4.5). None of these
// fields affect functional results; they only feed penalty cycles.
type HazardState struct {
	Cycle      int64  // current cycle count
	LdCycle    int64  // cycle of the most recent load, -1 if none yet
	LdDst      string // destination register of the most recent load
	FlagCycle  int64  // cycle the flags were last written, -1 if never
	LastDst    string // destination register of the immediately previous instruction
	Executed   int64  // count of dispatched instructions
}

func newHazardState() HazardState {
	return HazardState{LdCycle: -1, FlagCycle: -1}
}

// loadUseRecent reports whether reg was produced by a load within the
// last two cycles, the window every load-use penalty form tests.
func (h *HazardState) loadUseRecent(reg string) bool {
	return h.LdDst == reg && h.Cycle-h.LdCycle <= 2
}

// flagUseRecent reports whether the flags were written within the last
// cycle, the window conditional branches test before taking the +1
// flag-use penalty.
func (h *HazardState) flagUseRecent() bool {
	return h.FlagCycle >= 0 && h.Cycle-h.FlagCycle <= 1
}

// recordLoad updates load bookkeeping after a load's destination is
// written, using the cycle the load itself started on.
func (h *HazardState) recordLoad(startCycle int64, dst string) {
	h.LdCycle = startCycle
	h.LdDst = dst
}

// recordFlagWrite updates flag bookkeeping after an {s}-suffixed form
// or cmp updates N/Z, using the cycle the instruction started on.
func (h *HazardState) recordFlagWrite(startCycle int64) {
	h.FlagCycle = startCycle
}
