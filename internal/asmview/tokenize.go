package asmview

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"objbrowse/internal/ranges"
	"objbrowse/internal/selection"
)

// Operand text embeds symbol references as «index+hexoffset».
const (
	markOpen  = '«'
	markClose = '»'
)

// Segment is a run of operand text. Ref is nil for literal text.
type Segment struct {
	Text string
	Ref  *Ref
}

// Ref is a resolved symbol reference.
type Ref struct {
	Symbol SymbolRef
	Offset uint64
}

// Text returns the display form: the symbol name, followed by +0x<offset>
// when the offset is non-zero.
func (r *Ref) Text() string {
	if r.Offset == 0 {
		return r.Symbol.Name
	}
	return r.Symbol.Name + "+0x" + strconv.FormatUint(r.Offset, 16)
}

// Selection returns the selection made by following r: the single byte at
// Offset within the referenced symbol.
func (r *Ref) Selection() selection.Selection {
	off := int(r.Offset)
	return selection.Selection{
		Entity: selection.Symbol(r.Symbol.ID),
		Ranges: ranges.Point(off),
	}
}

// TokenizeArgs splits operand text into literal and reference segments.
// A reference whose index is outside refs is an error wrapping ErrMalformed.
func TokenizeArgs(args string, refs []SymbolRef) ([]Segment, error) {
	if !strings.ContainsRune(args, markOpen) {
		return []Segment{{Text: args}}, nil
	}

	var segs []Segment
	lit := 0 // start of the pending literal run
	i := 0
	for i < len(args) {
		at := strings.IndexRune(args[i:], markOpen)
		if at < 0 {
			break
		}
		at += i
		index, offset, end, ok := scanToken(args, at)
		if !ok {
			i = at + len(string(markOpen))
			continue
		}
		if offset >= math.MaxInt {
			return nil, fmt.Errorf("%w: symbol offset 0x%x too large in %q", ErrMalformed, offset, args)
		}
		if index >= uint64(len(refs)) {
			return nil, fmt.Errorf("%w: symbol reference %d out of range (%d symbols) in %q",
				ErrMalformed, index, len(refs), args)
		}
		if at > lit {
			segs = append(segs, Segment{Text: args[lit:at]})
		}
		ref := &Ref{Symbol: refs[index], Offset: offset}
		segs = append(segs, Segment{Text: ref.Text(), Ref: ref})
		lit, i = end, end
	}
	if lit < len(args) {
		segs = append(segs, Segment{Text: args[lit:]})
	}
	return segs, nil
}

// scanToken parses a token starting at the open mark at args[at]. It
// returns the symbol index, the offset and the position just past the
// close mark.
func scanToken(args string, at int) (index, offset uint64, end int, ok bool) {
	p := at + len(string(markOpen))

	ds := p
	for p < len(args) && isDigit(args[p]) {
		p++
	}
	if p == ds || p >= len(args) || args[p] != '+' {
		return 0, 0, 0, false
	}
	digits := args[ds:p]
	p++

	hs := p
	for p < len(args) && isHexDigit(args[p]) {
		p++
	}
	if p == hs || !strings.HasPrefix(args[p:], string(markClose)) {
		return 0, 0, 0, false
	}
	hex := args[hs:p]
	end = p + len(string(markClose))

	var err error
	if index, err = strconv.ParseUint(digits, 10, 64); err != nil {
		// Too large to index any table.
		index = ^uint64(0)
	}
	if offset, err = strconv.ParseUint(hex, 16, 64); err != nil {
		offset = math.MaxUint64
	}
	return index, offset, end, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
