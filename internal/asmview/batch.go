// Package asmview renders the disassembly of one symbol as a list of
// instruction rows and turns symbol references in operands into
// selectable links.
package asmview

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"objbrowse/internal/fetch"
)

var (
	// ErrMalformed is wrapped by errors for payloads the server produced
	// but that cannot be interpreted.
	ErrMalformed = errors.New("malformed instruction data")

	// ErrIntegrity is wrapped by errors for payloads whose instruction
	// addresses are not strictly ascending.
	ErrIntegrity = errors.New("inconsistent instruction data")
)

// Payload is the JSON document served for a symbol's disassembly.
// Addresses are hexadecimal without a 0x prefix.
type Payload struct {
	Insts  []PayloadInst
	Refs   []SymbolRef
	LastPC string
}

type PayloadInst struct {
	PC      string
	Op      string
	Args    string
	Control *PayloadControl `json:",omitempty"`
}

type PayloadControl struct {
	Type        int
	Conditional bool
	TargetPC    string
}

// SymbolRef is an entry of the symbol table operand tokens index into.
type SymbolRef struct {
	ID   int
	Name string
}

// Inst is a decoded instruction.
type Inst struct {
	PC      uint64
	PCText  string // PC as the server spelled it
	Op      string
	Args    string
	Control *Control
}

// Control describes a branch or call.
type Control struct {
	Type        int
	Conditional bool
	TargetPC    uint64
}

// Batch is the decoded disassembly of one symbol.
type Batch struct {
	Insts  []Inst
	Refs   []SymbolRef
	LastPC uint64
}

// Decode converts p into a Batch, parsing every address.
func Decode(p *Payload) (*Batch, error) {
	b := &Batch{
		Insts: make([]Inst, 0, len(p.Insts)),
		Refs:  p.Refs,
	}
	for i, pi := range p.Insts {
		pc, err := parseAddr(pi.PC)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
		inst := Inst{PC: pc, PCText: pi.PC, Op: pi.Op, Args: pi.Args}
		if pi.Control != nil {
			target, err := parseAddr(pi.Control.TargetPC)
			if err != nil {
				return nil, fmt.Errorf("instruction %d target: %w", i, err)
			}
			inst.Control = &Control{
				Type:        pi.Control.Type,
				Conditional: pi.Control.Conditional,
				TargetPC:    target,
			}
		}
		b.Insts = append(b.Insts, inst)
	}
	last, err := parseAddr(p.LastPC)
	if err != nil {
		return nil, fmt.Errorf("last pc: %w", err)
	}
	b.LastPC = last
	return b, nil
}

func parseAddr(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: missing address", ErrMalformed)
	}
	v, err := strconv.ParseUint("0x"+s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: address %q: %v", ErrMalformed, s, err)
	}
	return v, nil
}

// FetchBatch returns a fetch.Func that loads and decodes a Batch from
// baseURL. Keys are resource paths such as "/sym/7/asm".
func FetchBatch(client *http.Client, baseURL string) fetch.Func[*Batch] {
	get := fetch.JSON[Payload](client, baseURL)
	return func(ctx context.Context, key string) (*Batch, error) {
		p, err := get(ctx, key)
		if err != nil {
			return nil, err
		}
		return Decode(&p)
	}
}
