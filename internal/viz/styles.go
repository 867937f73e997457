package viz

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00cccc"))

	subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)

	ruleActive = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#1a3a4a")).
			Padding(0, 1)

	ruleIdle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#555566")).
			Padding(0, 1)

	metricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899")).
			Width(12)

	metricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffaa00"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff4444")).
			Bold(true)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00aaaa")).
			Bold(true)
)

func hint(key, label string) string {
	return keyStyle.Render(key) + subtle.Render(" "+label+"  ")
}
