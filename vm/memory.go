package vm

import "encoding/binary"

// inBounds reports whether an access of boundWidth bytes starting at
// addr falls within [sp, len(memory)]. Per spec.md §9 Open Question 5,
// several store/load forms in the source check against a width that
// does not match the bytes they actually move (most visibly every
// sturw form, which bounds-checks against len(mem)-2 instead of -4).
// That quirk is preserved here by passing the exact boundWidth the
// corresponding source regex branch used, not the true access width.
func (m *Machine) inBounds(addr int64, boundWidth int) bool {
	sp := m.Registers["sp"]
	return addr >= sp && addr+int64(boundWidth) <= int64(len(m.Memory))
}

// peekRaw returns width bytes starting at addr with no bounds check,
// used internally once a caller has already validated the access.
func (m *Machine) peekRaw(addr int64, width int) []byte {
	return m.Memory[addr : addr+int64(width)]
}

// readWidth loads width bytes at addr as a little-endian integer,
// sign-extending when signed is true.
func (m *Machine) readWidth(addr int64, width int, signed bool) int64 {
	buf := m.peekRaw(addr, width)
	var u uint64
	for i := width - 1; i >= 0; i-- {
		u = u<<8 | uint64(buf[i])
	}
	if !signed {
		return int64(u)
	}
	shift := uint(64 - width*8)
	return int64(u<<shift) >> shift
}

// writeWidth stores value's low width bytes, little-endian, at addr.
// Per spec.md §4.4 (Store family), the value is conceptually encoded
// as 8 little-endian bytes first and then truncated to width bytes;
// since int64 already holds two's-complement bits identical to that
// 8-byte encoding, truncating uint64(value) produces the same result.
func (m *Machine) writeWidth(addr int64, width int, value int64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(value))
	copy(m.peekRaw(addr, width), buf[:width])
}

// Peek implements Embedder: reads width bytes at addr, bounds-checked
// against the current stack pointer and memory length.
func (m *Machine) Peek(addr int64, width int) ([]byte, error) {
	if !m.inBounds(addr, width) {
		return nil, runtimeErrorf("", "out of bounds memory access at %d", addr)
	}
	out := make([]byte, width)
	copy(out, m.peekRaw(addr, width))
	return out, nil
}

// Poke implements Embedder: writes data at addr, bounds-checked against
// the current stack pointer and memory length.
func (m *Machine) Poke(addr int64, data []byte) error {
	if !m.inBounds(addr, len(data)) {
		return runtimeErrorf("", "out of bounds memory access at %d", addr)
	}
	copy(m.peekRaw(addr, len(data)), data)
	return nil
}
