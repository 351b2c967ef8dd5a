package vm

// Flags holds the two condition flags the source simulator models.
// Signed-overflow (V) and carry (C) are implicitly zero and never
// modeled (spec.md §3, Flags).
type Flags struct {
	N bool // negative: result < 0
	Z bool // zero: result == 0
}

// setFromResult derives N and Z from an arithmetic/logical result, the
// rule every {s}-suffixed form uses (cmp uses setFromCompare instead).
func (f *Flags) setFromResult(result int64) {
	f.N = result < 0
	f.Z = result == 0
}

// setFromCompare derives N and Z the way cmp does: N if lhs < rhs,
// Z if lhs == rhs (not from a subtraction result, matching the source's
// n_flag = reg[rn] < reg[rm] rather than computing rn-rm and checking
// its sign, which would differ from this book-keeping when an integer
// is represented in wrapped two's-complement).
func (f *Flags) setFromCompare(lhs, rhs int64) {
	f.N = lhs < rhs
	f.Z = lhs == rhs
}

func (f Flags) reset() Flags { return Flags{} }
