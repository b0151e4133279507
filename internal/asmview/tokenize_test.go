package asmview

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"objbrowse/internal/ranges"
	"objbrowse/internal/selection"
)

func lit(s string) Segment { return Segment{Text: s} }

func ref(sym SymbolRef, off uint64) Segment {
	r := &Ref{Symbol: sym, Offset: off}
	return Segment{Text: r.Text(), Ref: r}
}

func TestTokenizeArgs(t *testing.T) {
	foo := SymbolRef{ID: 7, Name: "foo"}
	bar := SymbolRef{ID: 9, Name: "runtime.bar"}
	refs := []SymbolRef{foo, bar}

	tests := []struct {
		name string
		args string
		want []Segment
	}{
		{
			name: "no marker",
			args: "R1, (R2)",
			want: []Segment{lit("R1, (R2)")},
		},
		{
			name: "empty",
			args: "",
			want: []Segment{lit("")},
		},
		{
			name: "reference in the middle",
			args: "R1, «0+0»(R2)",
			want: []Segment{lit("R1, "), ref(foo, 0), lit("(R2)")},
		},
		{
			name: "reference only",
			args: "«1+1a»",
			want: []Segment{ref(bar, 0x1a)},
		},
		{
			name: "leading reference",
			args: "«0+8», AX",
			want: []Segment{ref(foo, 8), lit(", AX")},
		},
		{
			name: "two references",
			args: "«0+0», «1+FF»",
			want: []Segment{ref(foo, 0), lit(", "), ref(bar, 0xff)},
		},
		{
			name: "adjacent references",
			args: "«0+0»«1+4»",
			want: []Segment{ref(foo, 0), ref(bar, 4)},
		},
		{
			name: "unterminated token is literal",
			args: "X «0+4",
			want: []Segment{lit("X «0+4")},
		},
		{
			name: "malformed token then good one",
			args: "«x»«0+2»",
			want: []Segment{lit("«x»"), ref(foo, 2)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TokenizeArgs(tt.args, refs)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("TokenizeArgs(%q) mismatch (-want +got):\n%s", tt.args, diff)
			}
		})
	}
}

func TestTokenizeArgsOutOfRange(t *testing.T) {
	tests := []string{
		"«1+0»",
		"R1, «99999999999999999999999+0»",
		"«0+ffffffffffffffffff»",
	}
	for _, args := range tests {
		_, err := TokenizeArgs(args, []SymbolRef{{ID: 1, Name: "a"}})
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("TokenizeArgs(%q) err = %v, want ErrMalformed", args, err)
		}
	}
}

func TestRefText(t *testing.T) {
	sym := SymbolRef{ID: 3, Name: "main.f"}
	if got := (&Ref{Symbol: sym}).Text(); got != "main.f" {
		t.Errorf("offset 0: %q", got)
	}
	if got := (&Ref{Symbol: sym, Offset: 0x2c}).Text(); got != "main.f+0x2c" {
		t.Errorf("offset 0x2c: %q", got)
	}
}

func TestRefSelection(t *testing.T) {
	r := &Ref{Symbol: SymbolRef{ID: 7, Name: "foo"}, Offset: 8}
	got := r.Selection()
	want := selection.Selection{
		Entity: selection.Entity{Kind: "sym", ID: 7},
		Ranges: ranges.New(ranges.Range{Start: 8, End: 9}),
	}
	if !got.Equal(want) {
		t.Fatalf("Selection() = %+v, want %+v", got, want)
	}
}
