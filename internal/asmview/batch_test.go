package asmview

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const samplePayload = `{
	"Insts": [
		{"PC": "10", "Op": "MOVQ", "Args": "«0+0»(SB), AX"},
		{"PC": "14", "Op": "CALL", "Args": "«1+8»", "Control": {"Type": 2, "Conditional": false, "TargetPC": "408"}},
		{"PC": "20", "Op": "RET", "Args": ""}
	],
	"Refs": [{"ID": 7, "Name": "foo"}, {"ID": 12, "Name": "bar"}],
	"LastPC": "22"
}`

func TestDecode(t *testing.T) {
	var p Payload
	if err := json.Unmarshal([]byte(samplePayload), &p); err != nil {
		t.Fatal(err)
	}
	b, err := Decode(&p)
	if err != nil {
		t.Fatal(err)
	}

	if len(b.Insts) != 3 {
		t.Fatalf("got %d instructions", len(b.Insts))
	}
	wantPCs := []uint64{0x10, 0x14, 0x20}
	for i, want := range wantPCs {
		if b.Insts[i].PC != want {
			t.Errorf("inst %d PC = %#x, want %#x", i, b.Insts[i].PC, want)
		}
	}
	if b.LastPC != 0x22 {
		t.Errorf("LastPC = %#x", b.LastPC)
	}
	c := b.Insts[1].Control
	if c == nil || c.Type != 2 || c.TargetPC != 0x408 {
		t.Errorf("control = %+v", c)
	}
	if b.Insts[0].Control != nil {
		t.Errorf("unexpected control on inst 0")
	}
}

func TestDecodeWideAddresses(t *testing.T) {
	p := Payload{
		Insts:  []PayloadInst{{PC: "ffffffff80001000", Op: "NOP"}},
		LastPC: "FFFFFFFF80001004",
	}
	b, err := Decode(&p)
	if err != nil {
		t.Fatal(err)
	}
	if b.Insts[0].PC != 0xffffffff80001000 || b.LastPC != 0xffffffff80001004 {
		t.Fatalf("PC = %#x LastPC = %#x", b.Insts[0].PC, b.LastPC)
	}
	if b.Insts[0].PCText != "ffffffff80001000" {
		t.Errorf("PCText = %q", b.Insts[0].PCText)
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		p    Payload
	}{
		{
			name: "missing last pc",
			p:    Payload{Insts: []PayloadInst{{PC: "10"}}},
		},
		{
			name: "bad pc",
			p:    Payload{Insts: []PayloadInst{{PC: "xyz"}}, LastPC: "20"},
		},
		{
			name: "prefixed pc",
			p:    Payload{Insts: []PayloadInst{{PC: "0x10"}}, LastPC: "20"},
		},
		{
			name: "too wide",
			p:    Payload{Insts: []PayloadInst{{PC: "10000000000000000"}}, LastPC: "20"},
		},
		{
			name: "bad target",
			p: Payload{
				Insts:  []PayloadInst{{PC: "10", Control: &PayloadControl{TargetPC: "?"}}},
				LastPC: "20",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(&tt.p)
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("err = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestFetchBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sym/7/asm":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(samplePayload))
		case "/sym/8/asm":
			w.Write([]byte(`{"Insts": [{"PC": "zz"}], "LastPC": "1"}`))
		default:
			http.Error(w, "no such symbol", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	fn := FetchBatch(srv.Client(), srv.URL)

	b, err := fn(context.Background(), "/sym/7/asm")
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Insts) != 3 || len(b.Refs) != 2 {
		t.Fatalf("batch = %+v", b)
	}

	if _, err := fn(context.Background(), "/sym/8/asm"); !errors.Is(err, ErrMalformed) {
		t.Errorf("bad address: err = %v, want ErrMalformed", err)
	}
	if _, err := fn(context.Background(), "/sym/9/asm"); FailureTitle(err) != "Request failed" {
		t.Errorf("missing symbol: err = %v classified as %q", err, FailureTitle(err))
	}
}
