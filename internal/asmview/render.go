package asmview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"

	"objbrowse/internal/objbrowse/styles"
	"objbrowse/internal/ui/colorize"
)

// Styles controls how rows are drawn.
type Styles struct {
	Addr        lipgloss.Style
	Offset      lipgloss.Style
	Op          lipgloss.Style
	Link        lipgloss.Style
	FocusedLink lipgloss.Style
	Selected    lipgloss.Style
	Marker      lipgloss.Style

	// Args colours literal operand text.
	Args func(string) string
}

// DefaultStyles returns the terminal styles.
func DefaultStyles() Styles {
	return Styles{
		Addr:        lipgloss.NewStyle().Foreground(styles.AddrColor),
		Offset:      lipgloss.NewStyle().Foreground(styles.OffsetColor),
		Op:          lipgloss.NewStyle().Foreground(styles.OpColor).Bold(true),
		Link:        lipgloss.NewStyle().Foreground(styles.LinkColor).Underline(true),
		FocusedLink: lipgloss.NewStyle().Foreground(styles.FocusColor).Underline(true).Reverse(true),
		Selected:    lipgloss.NewStyle().Background(styles.SelectedBg),
		Marker:      lipgloss.NewStyle().Foreground(styles.MarkerColor),
		Args:        colorize.Operands,
	}
}

// PlainStyles returns styles that add no escape sequences.
func PlainStyles() Styles {
	return Styles{}
}

func render(st lipgloss.Style, s string) string {
	if s == "" {
		return s
	}
	return st.Render(s)
}

// columns holds the padded width of the fixed columns.
type columns struct {
	addr, offset, op int
}

func measure(rows []Row) columns {
	var c columns
	for _, r := range rows {
		c.addr = max(c.addr, len(r.Addr))
		c.offset = max(c.offset, len(r.OffsetText()))
		c.op = max(c.op, len(r.Op))
	}
	return c
}

// plain reports whether st is the zero Styles.
func (st Styles) plain() bool {
	return st.Args == nil
}

// renderRow draws row r. focus is the index of the focused segment within
// r.Args, or -1.
func renderRow(r Row, c columns, st Styles, focus int) string {
	var sb strings.Builder

	marker := "  "
	if r.Selected {
		marker = "▶ "
	}
	if st.plain() {
		if r.Selected {
			marker = "> "
		}
		sb.WriteString(marker)
	} else {
		sb.WriteString(render(st.Marker, marker))
	}

	sb.WriteString(styled(st, st.Addr, fmt.Sprintf("%-*s", c.addr, r.Addr)))
	sb.WriteString("  ")
	sb.WriteString(styled(st, st.Offset, fmt.Sprintf("%-*s", c.offset, r.OffsetText())))
	sb.WriteString("  ")
	sb.WriteString(styled(st, st.Op, fmt.Sprintf("%-*s", c.op, r.Op)))

	if len(r.Args) > 0 {
		sb.WriteString(" ")
	}
	for i, seg := range r.Args {
		switch {
		case seg.Ref == nil:
			if st.plain() {
				sb.WriteString(seg.Text)
			} else {
				sb.WriteString(st.Args(seg.Text))
			}
		case i == focus:
			sb.WriteString(styled(st, st.FocusedLink, seg.Text))
		default:
			sb.WriteString(styled(st, st.Link, seg.Text))
		}
	}

	line := strings.TrimRight(sb.String(), " ")
	if r.Selected && !st.plain() {
		return st.Selected.Render(line)
	}
	return line
}

func styled(st Styles, s lipgloss.Style, text string) string {
	if st.plain() {
		return text
	}
	return render(s, text)
}

// RenderRows draws rows one per line with no focused link.
func RenderRows(rows []Row, st Styles) string {
	c := measure(rows)
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = renderRow(r, c, st, -1)
	}
	return strings.Join(lines, "\n")
}
