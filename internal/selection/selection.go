// Package selection describes what the user has selected: an entity and a
// set of byte ranges relative to that entity's start.
package selection

import (
	"fmt"

	"objbrowse/internal/ranges"
)

// KindSymbol is the entity kind of symbols.
const KindSymbol = "sym"

// Entity identifies a selectable object in the browsed binary.
type Entity struct {
	Kind string
	ID   int
}

// Symbol returns the entity for symbol id.
func Symbol(id int) Entity {
	return Entity{Kind: KindSymbol, ID: id}
}

// AsmPath returns the resource path serving the disassembly of e.
func (e Entity) AsmPath() string {
	return fmt.Sprintf("/%s/%d/asm", e.Kind, e.ID)
}

func (e Entity) String() string {
	return fmt.Sprintf("%s %d", e.Kind, e.ID)
}

// Selection is a set of ranges within an entity. Selections are values and
// are replaced, never modified.
type Selection struct {
	Entity Entity
	Ranges ranges.Set
}

// Equal reports whether s and o select the same ranges of the same entity.
func (s Selection) Equal(o Selection) bool {
	return s.Entity == o.Entity && s.Ranges.Equal(o.Ranges)
}
