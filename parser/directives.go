package parser

import (
	"encoding/binary"
	"regexp"
	"strconv"
	"strings"

	"github.com/dmarsal/aasim/vm"
)

var (
	asciz      = regexp.MustCompile(`^\.asciz\s+"((?:[^"\\]|\\.)*)"$`)
	space      = regexp.MustCompile(`^\.space\s+(\S+)$`)
	dword      = regexp.MustCompile(`^\.dword\s+(.+)$`)
	word       = regexp.MustCompile(`^\.word\s+(.+)$`)
	hword      = regexp.MustCompile(`^\.hword\s+(.+)$`)
	byteDir    = regexp.MustCompile(`^\.byte\s+(.+)$`)
	locRelAsgn = regexp.MustCompile(`^([a-z_][a-z0-9_]*)=\.-([a-z_][a-z0-9_]*)$`)
	constAsgn  = regexp.MustCompile(`^([a-z_][a-z0-9_]*)=(.+)$`)
)

// dataBuilder accumulates the static-data section byte-for-byte while
// walking .data/.bss lines, so every label's address is known by the
// time the text section (and any forward .dword/.word reference to it)
// is assembled.
type dataBuilder struct {
	base int64 // address of byte 0 of the data section (the machine's StackSize)
	buf  []byte
}

func newDataBuilder(base int64) *dataBuilder {
	return &dataBuilder{base: base}
}

func (d *dataBuilder) addr() int64 { return d.base + int64(len(d.buf)) }

func unescape(s string) string {
	r := strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\0`, "\x00", `\\`, `\`, `\"`, `"`)
	return r.Replace(s)
}

// applyDataLine interprets one normalized .data/.bss section line:
// either a label declaration or a storage directive. pendingLabel holds
// a label seen on the previous line still waiting for the directive
// that follows it, mirroring the source grammar where a label and its
// storage directive are always two separate lines.
func (p *parseState) applyDataLine(line rawLine, pendingLabel *string) error {
	if name, ok := matchLabel(line.text); ok {
		*pendingLabel = name
		return nil
	}

	define := func(size int64, typ vm.SymbolType) {
		if *pendingLabel != "" {
			p.machine.Symbols.DefineSized(*pendingLabel, p.data.addr()-size, size, typ)
			*pendingLabel = ""
		}
	}

	switch {
	case asciz.MatchString(line.text):
		m := asciz.FindStringSubmatch(line.text)
		s := unescape(m[1]) + "\x00"
		p.data.buf = append(p.data.buf, []byte(s)...)
		define(int64(len(s)), vm.SymbolAsciz)

	case space.MatchString(line.text):
		m := space.FindStringSubmatch(line.text)
		n, err := parseIntLiteral(m[1])
		if err != nil {
			return p.errf(line.pos, "bad .space count")
		}
		p.data.buf = append(p.data.buf, make([]byte, n)...)
		define(n, vm.SymbolSpace)

	case dword.MatchString(line.text):
		return p.applyFixedWidth(line, dword, 8, vm.SymbolDword, pendingLabel)

	case word.MatchString(line.text):
		return p.applyFixedWidth(line, word, 4, vm.SymbolWord, pendingLabel)

	case hword.MatchString(line.text):
		return p.applyFixedWidth(line, hword, 2, vm.SymbolHword, pendingLabel)

	case byteDir.MatchString(line.text):
		return p.applyFixedWidth(line, byteDir, 1, vm.SymbolByte, pendingLabel)

	default:
		return p.errf(line.pos, "unrecognized data directive")
	}
	return nil
}

func (p *parseState) applyFixedWidth(line rawLine, re *regexp.Regexp, width int, typ vm.SymbolType, pendingLabel *string) error {
	m := re.FindStringSubmatch(line.text)
	values := strings.Split(m[1], ",")
	start := p.data.addr()
	for _, v := range values {
		n, err := p.resolveValue(strings.TrimSpace(v))
		if err != nil {
			return p.errf(line.pos, "bad value in data directive")
		}
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(n))
		p.data.buf = append(p.data.buf, buf[:width]...)
	}
	if *pendingLabel != "" {
		p.machine.Symbols.DefineSized(*pendingLabel, start, p.data.addr()-start, typ)
		*pendingLabel = ""
	}
	return nil
}

// resolveValue resolves a data-directive operand that is either a
// numeric literal or a previously-defined symbol name.
func (p *parseState) resolveValue(tok string) (int64, error) {
	if v, err := parseIntLiteral(tok); err == nil {
		return v, nil
	}
	if v, ok := p.machine.Symbols.Lookup(tok); ok {
		return v, nil
	}
	return 0, &ParseError{Msg: "unresolved value", Pos: Position{Text: tok}}
}

// applyAssignment handles the two constant-assignment forms that can
// appear in either section: "name=.-other" (a location-counter-relative
// constant, typically a computed string length) and "name=value" (a
// plain literal or symbol alias).
func (p *parseState) applyAssignment(line rawLine) (bool, error) {
	if m := locRelAsgn.FindStringSubmatch(line.text); m != nil {
		other, ok := p.machine.Symbols.Lookup(m[2])
		if !ok {
			return true, p.errf(line.pos, "unknown symbol %q in location-relative assignment", m[2])
		}
		p.machine.Symbols.Define(m[1], p.data.addr()-other)
		return true, nil
	}
	if m := constAsgn.FindStringSubmatch(line.text); m != nil {
		v, err := p.resolveValue(strings.TrimSpace(m[2]))
		if err != nil {
			return true, p.errf(line.pos, "bad constant assignment")
		}
		p.machine.Symbols.Define(m[1], v)
		return true, nil
	}
	return false, nil
}

func parseIntLiteral(tok string) (int64, error) {
	neg := strings.HasPrefix(tok, "-")
	if neg {
		tok = tok[1:]
	}
	base := 10
	if strings.HasPrefix(tok, "0x") {
		tok = tok[2:]
		base = 16
	}
	v, err := strconv.ParseInt(tok, base, 64)
	if err != nil {
		return 0, err
	}
	if neg {
		v = -v
	}
	return v, nil
}
