package cli

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// Variation Progress - live candidate feed
// =============================================================================

// candidateMsg reports one recombination attempt.
type candidateMsg struct {
	attempt  int
	accepted bool
}

// variationDoneMsg carries the generator's final output.
type variationDoneMsg struct {
	text string
	err  error
}

type tickMsg time.Time

// variationModel is the bubbletea model showing live variation progress.
type variationModel struct {
	goal     int
	accepted int
	attempts int
	frame    int
	frames   []string
	text     string
	err      error
}

// newVariationModel creates a progress model targeting goal accepted variations.
func newVariationModel(goal int) variationModel {
	return variationModel{
		goal:   goal,
		frames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	}
}

func tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m variationModel) Init() tea.Cmd {
	return tick()
}

func (m variationModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.err = fmt.Errorf("interrupted")
			return m, tea.Quit
		}
	case candidateMsg:
		m.attempts = msg.attempt
		if msg.accepted {
			m.accepted++
		}
	case variationDoneMsg:
		m.text = msg.text
		m.err = msg.err
		return m, tea.Quit
	case tickMsg:
		m.frame++
		return m, tick()
	}
	return m, nil
}

func (m variationModel) View() string {
	frame := styleIconSpinner.Render(m.frames[m.frame%len(m.frames)])
	counts := StyleNumber.Render(fmt.Sprintf("%d/%d", m.accepted, m.goal))
	return fmt.Sprintf("%s generating variations %s %s\n",
		frame, counts,
		StyleDim.Render(fmt.Sprintf("(%d attempts)", m.attempts)))
}
