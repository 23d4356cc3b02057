package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/terraweave/terraweave/pkg/eval"
	"github.com/terraweave/terraweave/pkg/graph"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// RootListModel - Interactive root selection
// =============================================================================

// rootItem is one candidate root in the picker.
type rootItem struct {
	ID        string
	Type      string
	Evaluable bool
	Inbound   int
}

// RootListModel is the bubbletea model for picking a root node when a graph
// has several candidate roots and the command needs exactly one.
type RootListModel struct {
	Roots    []rootItem
	Cursor   int
	Selected *rootItem
}

// NewRootListModel builds a picker over the graph's candidate roots.
func NewRootListModel(g *graph.Graph) RootListModel {
	var items []rootItem
	for _, n := range g.Roots() {
		items = append(items, rootItem{
			ID:        n.ID,
			Type:      n.Type,
			Evaluable: eval.Evaluable(n.Type),
			Inbound:   len(g.InboundPorts(n.ID)),
		})
	}
	return RootListModel{Roots: items}
}

func (m RootListModel) Init() tea.Cmd {
	return nil
}

func (m RootListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Roots)-1 {
				m.Cursor++
			}
		case "enter":
			m.Selected = &m.Roots[m.Cursor]
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m RootListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Root Node"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("arrows: navigate  enter: select  q: quit"))
	b.WriteString("\n\n")

	for i, r := range m.Roots {
		cursor := "  "
		if i == m.Cursor {
			cursor = "> "
		}

		var status string
		if r.Evaluable {
			status = StyleSuccess.Render("*")
		} else {
			status = listDimStyle.Render(" ")
		}

		typ := r.Type
		if typ == "" {
			typ = "?"
		}
		line := fmt.Sprintf("%s%s %-24s  %s %s", cursor, status, r.ID,
			listDimStyle.Render(typ), listDimStyle.Render(fmt.Sprintf("(%d inputs)", r.Inbound)))

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s previewable\n", StyleSuccess.Render("*")))

	return b.String()
}

// pickRoot runs the interactive picker and returns the chosen root ID.
// Returns empty when the user quits without selecting.
func pickRoot(g *graph.Graph) (string, error) {
	model := NewRootListModel(g)
	if len(model.Roots) == 0 {
		return "", nil
	}
	if len(model.Roots) == 1 {
		return model.Roots[0].ID, nil
	}

	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return "", err
	}
	if m, ok := final.(RootListModel); ok && m.Selected != nil {
		return m.Selected.ID, nil
	}
	return "", nil
}
