package styles

import (
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/exp/charmtone"
)

// Colours shared by the panels.
var (
	AddrColor   = lipgloss.Color("240")
	OffsetColor = lipgloss.Color("244")
	OpColor     = lipgloss.Color(charmtone.Smoke.Hex())
	LinkColor   = lipgloss.Color(charmtone.Guac.Hex())
	FocusColor  = lipgloss.Color(charmtone.Zest.Hex())
	SelectedBg  = lipgloss.Color("#264F78")
	MarkerColor = lipgloss.Color("170")
	ErrorColor  = lipgloss.Color(charmtone.Cheeky.Hex())
	MenuBg      = lipgloss.Color("235")
	MenuFg      = lipgloss.Color("252")
	TitleColor  = lipgloss.Color("99")
)

// MenuBar renders the bottom key help line.
func MenuBar(text string, width int) string {
	return lipgloss.NewStyle().
		Background(MenuBg).
		Foreground(MenuFg).
		Padding(0, 1).
		Width(width).
		Render(text)
}

// Title renders a panel title.
func Title(text string) string {
	return lipgloss.NewStyle().
		Foreground(TitleColor).
		Bold(true).
		MarginLeft(2).
		Render(text)
}
