package asmview

import (
	"fmt"

	"objbrowse/internal/ranges"
	"objbrowse/internal/selection"
)

// Row is one laid out instruction.
type Row struct {
	Addr     string // absolute address, "0x" + PC as served
	Offset   uint64 // PC relative to the first instruction
	Len      uint64
	Op       string
	Args     []Segment
	Control  *Control
	Selected bool
}

// Range returns the bytes of the row relative to the first instruction.
func (r Row) Range() ranges.Range {
	return ranges.Range{Start: int(r.Offset), End: int(r.Offset + r.Len)}
}

// OffsetText formats the relative offset as +0x<hex>.
func (r Row) OffsetText() string {
	return fmt.Sprintf("+0x%x", r.Offset)
}

// Lengths returns the byte length of every instruction in b, derived from
// the distance to the next instruction and LastPC for the final one.
func Lengths(b *Batch) ([]uint64, error) {
	lens := make([]uint64, len(b.Insts))
	for i, inst := range b.Insts {
		next := b.LastPC
		if i+1 < len(b.Insts) {
			next = b.Insts[i+1].PC
		}
		if next <= inst.PC {
			return nil, fmt.Errorf("%w: instruction %d at 0x%x is followed by 0x%x",
				ErrIntegrity, i, inst.PC, next)
		}
		lens[i] = next - inst.PC
	}
	return lens, nil
}

// Layout builds the rows for b, shown as entity shown. A row is selected
// when sel refers to the same entity and one of its ranges overlaps the
// row's bytes. Layout fails as a whole; it never returns partial rows.
func Layout(b *Batch, shown selection.Entity, sel selection.Selection) ([]Row, error) {
	lens, err := Lengths(b)
	if err != nil {
		return nil, err
	}
	if len(b.Insts) == 0 {
		return nil, nil
	}

	base := b.Insts[0].PC
	sameEntity := sel.Entity == shown
	rows := make([]Row, len(b.Insts))
	for i, inst := range b.Insts {
		args, err := TokenizeArgs(inst.Args, b.Refs)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
		row := Row{
			Addr:    "0x" + inst.PCText,
			Offset:  inst.PC - base,
			Len:     lens[i],
			Op:      inst.Op,
			Args:    args,
			Control: inst.Control,
		}
		row.Selected = sameEntity && sel.Ranges.AnyIntersection(row.Range())
		rows[i] = row
	}
	return rows, nil
}

// Highlighted returns the indexes of the selected rows.
func Highlighted(rows []Row) []int {
	var idx []int
	for i, r := range rows {
		if r.Selected {
			idx = append(idx, i)
		}
	}
	return idx
}
