package colorize

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
)

// OperandStyle colours registers, immediates and punctuation in operands.
// Background is left to the row style so selected rows stay highlighted.
var OperandStyle = styles.Register(chroma.MustNewStyle("objbrowse-operands", chroma.StyleEntries{
	chroma.Text:         "#D4D4D4",
	chroma.Comment:      "#6A9955",
	chroma.Name:         "#7C9C9D", // registers
	chroma.NameBuiltin:  "#7C9C9D",
	chroma.NameVariable: "#7C9C9D",

	chroma.LiteralNumber:        "#FF5F87",
	chroma.LiteralNumberHex:     "#FF5F87",
	chroma.LiteralNumberInteger: "#FF5F87",

	chroma.NameLabel:   "#FFD700",
	chroma.Operator:    "#D4D4D4",
	chroma.Punctuation: "#D4D4D4",
	chroma.String:      "#EACD53",
}))
