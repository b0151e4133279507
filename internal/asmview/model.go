package asmview

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/log"

	"objbrowse/internal/fetch"
	"objbrowse/internal/objbrowse/styles"
	"objbrowse/internal/selection"
)

// SelectMsg asks the selection owner to replace the current selection.
type SelectMsg struct {
	Selection selection.Selection
	Symbol    SymbolRef
}

// link locates a reference segment in the laid out rows.
type link struct {
	row, seg int
}

// Model is the assembly panel. The selection is owned by the parent, which
// passes it in with SetSelection and receives SelectMsg when the user
// follows a reference.
type Model struct {
	res    *fetch.Resource[*Batch]
	logger *log.Logger
	styles Styles

	entity selection.Entity
	sel    selection.Selection

	rows      []Row
	cols      columns
	layoutErr error
	links     []link
	focus     int // index into links, -1 when nothing is focused

	// lastHighlight identifies the highlighted rows that were last
	// scrolled into view.
	lastHighlight string

	viewport viewport.Model
	spinner  spinner.Model
	top      int // first visible row
	width    int
	height   int
}

// New returns a panel loading batches through res.
func New(res *fetch.Resource[*Batch], logger *log.Logger) Model {
	vp := viewport.New()
	vp.SetWidth(80)
	vp.SetHeight(24)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.MarkerColor)

	if logger == nil {
		logger = log.Default()
	}

	m := Model{
		res:      res,
		logger:   logger,
		styles:   DefaultStyles(),
		focus:    -1,
		viewport: vp,
		spinner:  s,
		width:    80,
		height:   24,
	}
	m.refresh()
	return m
}

// SetStyles replaces the row styles.
func (m *Model) SetStyles(st Styles) {
	m.styles = st
	m.refresh()
}

// SetEntity switches the panel to e, cancelling any load for the previous
// entity.
func (m *Model) SetEntity(e selection.Entity) tea.Cmd {
	cmd := m.res.Subscribe(e.AsmPath())
	if cmd == nil {
		return nil
	}
	m.entity = e
	m.lastHighlight = ""
	m.focus = -1
	m.scrollTo(0)
	m.relayout()
	return tea.Batch(cmd, m.spinner.Tick)
}

// SetSelection replaces the selection used for highlighting.
func (m *Model) SetSelection(sel selection.Selection) {
	if sel.Equal(m.sel) {
		return
	}
	m.sel = sel
	m.relayout()
}

// SetSize resizes the panel.
func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height
	m.viewport.SetWidth(width)
	m.viewport.SetHeight(max(height, 1))
	m.refresh()
	m.scrollTo(m.top)
}

// Close cancels any outstanding load.
func (m *Model) Close() {
	m.res.Unsubscribe()
}

// Entity returns the entity being shown.
func (m Model) Entity() selection.Entity { return m.entity }

// State returns the load state of the panel.
func (m Model) State() fetch.State {
	if m.res.State() == fetch.Ready && m.layoutErr != nil {
		return fetch.Failed
	}
	return m.res.State()
}

// Err returns the reason the panel is in the failed state.
func (m Model) Err() error {
	if m.layoutErr != nil {
		return m.layoutErr
	}
	return m.res.Err()
}

// Rows returns the laid out rows while the panel is ready.
func (m Model) Rows() []Row { return m.rows }

// Focused returns the focused reference, if any.
func (m Model) Focused() (*Ref, bool) {
	if m.focus < 0 || m.focus >= len(m.links) {
		return nil, false
	}
	l := m.links[m.focus]
	return m.rows[l.row].Args[l.seg].Ref, true
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.res.Update(msg) {
		m.relayout()
		return m, nil
	}

	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.res.State() != fetch.Pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd

	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			m.moveFocus(1)
			return m, nil
		case "shift+tab":
			m.moveFocus(-1)
			return m, nil
		case "enter":
			return m, m.activate()
		case "up", "k":
			m.scrollTo(m.top - 1)
			return m, nil
		case "down", "j":
			m.scrollTo(m.top + 1)
			return m, nil
		case "pgup":
			m.scrollTo(m.top - m.pageHeight())
			return m, nil
		case "pgdown", "space":
			m.scrollTo(m.top + m.pageHeight())
			return m, nil
		case "home", "g":
			m.scrollTo(0)
			return m, nil
		case "end", "G":
			m.scrollTo(len(m.rows))
			return m, nil
		case "r":
			if m.State() == fetch.Failed {
				m.layoutErr = nil
				m.lastHighlight = ""
				cmd := m.res.Reload()
				m.relayout()
				return m, tea.Batch(cmd, m.spinner.Tick)
			}
			return m, nil
		}
	}
	return m, nil
}

// activate follows the focused reference.
func (m *Model) activate() tea.Cmd {
	ref, ok := m.Focused()
	if !ok {
		return nil
	}
	msg := SelectMsg{Selection: ref.Selection(), Symbol: ref.Symbol}
	return func() tea.Msg { return msg }
}

func (m *Model) moveFocus(delta int) {
	if len(m.links) == 0 {
		m.focus = -1
		return
	}
	switch {
	case m.focus < 0 && delta > 0:
		m.focus = 0
	case m.focus < 0:
		m.focus = len(m.links) - 1
	default:
		m.focus = (m.focus + delta + len(m.links)) % len(m.links)
	}
	m.refresh()
	m.ensureVisible(m.links[m.focus].row)
}

// relayout rebuilds the rows from the resource state and the selection.
func (m *Model) relayout() {
	m.rows, m.links, m.layoutErr = nil, nil, nil

	if m.res.State() == fetch.Ready {
		rows, err := Layout(m.res.Value(), m.entity, m.sel)
		if err != nil {
			m.logger.Error("cannot lay out instructions", "entity", m.entity, "err", err)
			m.layoutErr = err
		} else {
			m.rows = rows
			for i, r := range rows {
				for j, seg := range r.Args {
					if seg.Ref != nil {
						m.links = append(m.links, link{row: i, seg: j})
					}
				}
			}
		}
	}
	m.cols = measure(m.rows)
	if m.focus >= len(m.links) {
		m.focus = len(m.links) - 1
	}

	m.refresh()
	m.scrollTo(m.top)
	m.scrollToHighlight()
}

// refresh redraws the viewport content.
func (m *Model) refresh() {
	switch m.State() {
	case fetch.Pending:
		m.viewport.SetContent(fmt.Sprintf("\n  %s Loading...", m.spinner.View()))
	case fetch.Failed:
		m.viewport.SetContent(failurePanel(m.Err(), m.width))
	default:
		lines := make([]string, len(m.rows))
		for i, r := range m.rows {
			focus := -1
			if m.focus >= 0 && m.links[m.focus].row == i {
				focus = m.links[m.focus].seg
			}
			lines[i] = renderRow(r, m.cols, m.styles, focus)
		}
		m.viewport.SetContent(strings.Join(lines, "\n"))
	}
}

// scrollToHighlight brings the first highlighted row into view once per
// change of the highlighted set.
func (m *Model) scrollToHighlight() {
	if m.State() != fetch.Ready {
		return
	}
	hl := Highlighted(m.rows)
	key := fmt.Sprint(m.entity, hl)
	if key == m.lastHighlight {
		return
	}
	m.lastHighlight = key
	if len(hl) > 0 {
		m.ensureVisible(hl[0])
	}
}

func (m Model) pageHeight() int {
	return max(m.height, 1)
}

// scrollTo makes row n the first visible row, clamped to the content.
func (m *Model) scrollTo(n int) {
	last := max(len(m.rows)-m.pageHeight(), 0)
	m.top = min(max(n, 0), last)
	m.viewport.SetYOffset(m.top)
}

// ensureVisible scrolls the minimum distance that makes row visible.
func (m *Model) ensureVisible(row int) {
	switch {
	case row < m.top:
		m.scrollTo(row)
	case row >= m.top+m.pageHeight():
		m.scrollTo(row - m.pageHeight() + 1)
	}
}

// Top returns the index of the first visible row.
func (m Model) Top() int { return m.top }

// FailureTitle names the class of err for display.
func FailureTitle(err error) string {
	var se *fetch.StatusError
	switch {
	case errors.Is(err, ErrIntegrity):
		return "Inconsistent instruction data"
	case errors.Is(err, ErrMalformed), errors.Is(err, fetch.ErrDecode):
		return "Server returned malformed data"
	case errors.As(err, &se):
		return "Request failed"
	default:
		return "Server unreachable"
	}
}

func failurePanel(err error, width int) string {
	md := fmt.Sprintf("## %s\n\n```\n%v\n```\n\nPress *r* to retry.", FailureTitle(err), err)
	return styles.RenderMarkdown(md, width-2)
}

func (m Model) View() string {
	return m.viewport.View()
}
