package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderStatusBar produces a full-width inverted status line showing the
// running script and its target on the left, money and items on the right.
func (m Model) renderStatusBar() string {
	s := m.engine.State

	left := " idle"
	if m.engine.Running() {
		ex := s.ScriptExec
		left = " " + ex.CurrentScriptID
		if ex.TargetChara != "" {
			left += " @ " + string(ex.TargetChara)
		}
		if ex.Scene != "" {
			left += " | " + ex.Scene
		}
	} else if m.chara != "" {
		left += " | target: " + string(m.chara)
	}

	items := 0
	for _, n := range s.Player.Inventory {
		items += n
	}
	right := fmt.Sprintf("Gold: %d | Items: %d ", s.Player.Money, items)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}

// renderChoices lists the choices of the open talk window with the cursor
// row highlighted. It returns "" when there is nothing to choose.
func (m Model) renderChoices() string {
	choices := m.choices()
	if len(choices) == 0 {
		return ""
	}
	rows := make([]string, len(choices))
	for i, c := range choices {
		label := fmt.Sprintf("%d) %s", i+1, m.text(c))
		if i == m.cursor {
			rows[i] = styleChoiceSelected.Render(label)
		} else {
			rows[i] = styleChoice.Render(label)
		}
	}
	return strings.Join(rows, "\n")
}
