package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sunstflower/modelsee/pkg/repair"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// RepairListModel - Interactive repair confirmation
// =============================================================================

// RepairListModel is the bubbletea model for confirming repair proposals.
// All proposals start accepted; space toggles the one under the cursor,
// enter confirms the selection, q or esc aborts without applying anything.
type RepairListModel struct {
	Proposals []repair.Proposal
	Accepted  []bool
	Cursor    int
	Confirmed bool
}

// NewRepairListModel creates a repair confirmation model with every
// proposal pre-accepted.
func NewRepairListModel(proposals []repair.Proposal) RepairListModel {
	accepted := make([]bool, len(proposals))
	for i := range accepted {
		accepted[i] = true
	}
	return RepairListModel{
		Proposals: proposals,
		Accepted:  accepted,
	}
}

func (m RepairListModel) Init() tea.Cmd {
	return nil
}

func (m RepairListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Proposals)-1 {
				m.Cursor++
			}
		case " ":
			m.Accepted[m.Cursor] = !m.Accepted[m.Cursor]
		case "enter":
			m.Confirmed = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m RepairListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Proposed Repairs"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ␣ toggle  ⏎ apply  q abort"))
	b.WriteString("\n\n")

	for i, p := range m.Proposals {
		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}

		check := "[ ]"
		if m.Accepted[i] {
			check = "[x]"
		}

		b.WriteString(cursor + check + " " + style.Render(p.String()))
		b.WriteString("\n")
		b.WriteString("      " + listDimStyle.Render(p.Message))
		b.WriteString("\n")
	}

	return b.String()
}

// Selection returns the accepted proposals, nil when the user aborted.
func (m RepairListModel) Selection() []repair.Proposal {
	if !m.Confirmed {
		return nil
	}
	var out []repair.Proposal
	for i, p := range m.Proposals {
		if m.Accepted[i] {
			out = append(out, p)
		}
	}
	return out
}

// confirmRepairs runs the interactive confirmation and returns the accepted
// proposals. Aborting returns an empty selection and no error.
func confirmRepairs(proposals []repair.Proposal) ([]repair.Proposal, error) {
	model, err := tea.NewProgram(NewRepairListModel(proposals)).Run()
	if err != nil {
		return nil, fmt.Errorf("run confirmation: %w", err)
	}
	final, ok := model.(RepairListModel)
	if !ok {
		return nil, fmt.Errorf("unexpected model type %T", model)
	}
	return final.Selection(), nil
}
