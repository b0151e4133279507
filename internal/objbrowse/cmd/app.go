package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/ianlancetaylor/demangle"

	"objbrowse/internal/asmview"
	"objbrowse/internal/objbrowse/styles"
	"objbrowse/internal/selection"
)

// appModel owns the selection. The assembly panel reads it and asks for
// changes with asmview.SelectMsg.
type appModel struct {
	asm     asmview.Model
	sel     selection.Selection
	history []selection.Selection
	names   map[int]string
	init    tea.Cmd
	width   int
	height  int
}

func newAppModel(asm asmview.Model, sel selection.Selection) appModel {
	m := appModel{
		asm:    asm,
		names:  make(map[int]string),
		width:  80,
		height: 24,
	}
	m.init = m.apply(sel)
	m.asm.SetSize(m.width, m.height-2)
	return m
}

func (m appModel) Init() tea.Cmd {
	return m.init
}

// apply makes sel the current selection and points the panel at its
// entity.
func (m *appModel) apply(sel selection.Selection) tea.Cmd {
	m.sel = sel
	m.asm.SetSelection(sel)
	return m.asm.SetEntity(sel.Entity)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case asmview.SelectMsg:
		if msg.Symbol.Name != "" {
			m.names[msg.Symbol.ID] = msg.Symbol.Name
		}
		m.history = append(m.history, m.sel)
		return m, m.apply(msg.Selection)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.asm.SetSize(msg.Width, msg.Height-2)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.asm.Close()
			return m, tea.Quit
		case "backspace":
			return m, m.back()
		}
	}

	var cmd tea.Cmd
	m.asm, cmd = m.asm.Update(msg)
	return m, cmd
}

// back restores the selection made before the last followed reference.
func (m *appModel) back() tea.Cmd {
	if len(m.history) == 0 {
		return nil
	}
	prev := m.history[len(m.history)-1]
	m.history = m.history[:len(m.history)-1]
	return m.apply(prev)
}

// title names the shown entity, demangling symbol names.
func (m appModel) title() string {
	e := m.asm.Entity()
	name, ok := m.names[e.ID]
	if !ok || e.Kind != selection.KindSymbol {
		return e.String()
	}
	return fmt.Sprintf("%s · %s", e, demangle.Filter(name))
}

func (m appModel) View() string {
	menu := " Tab: next link • Enter: follow • Backspace: back • r: retry • q: quit "
	return styles.Title(m.title()) + "\n" + m.asm.View() + "\n" + styles.MenuBar(menu, m.width)
}
