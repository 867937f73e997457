package viz

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/pidlab/internal/pipeline"
	"github.com/san-kum/pidlab/internal/process"
	"github.com/san-kum/pidlab/internal/render"
	"github.com/san-kum/pidlab/internal/tuning"
)

const scaleStep = 1.1

// Model is the Bubble Tea model comparing rule results on one plant.
type Model struct {
	ctx     context.Context
	pipe    *pipeline.Pipeline
	plant   process.Model
	base    []pipeline.Result
	results []pipeline.Result
	scale   []float64

	cursor      int
	showControl bool
	width       int
	height      int
}

// evaluatedMsg carries a re-simulated result for the rule at index.
type evaluatedMsg struct {
	index  int
	scale  float64
	result pipeline.Result
}

func NewModel(ctx context.Context, p *pipeline.Pipeline, plant process.Model, results []pipeline.Result) Model {
	scale := make([]float64, len(results))
	for i := range scale {
		scale[i] = 1
	}
	return Model{
		ctx:     ctx,
		pipe:    p,
		plant:   plant,
		base:    results,
		results: append([]pipeline.Result(nil), results...),
		scale:   scale,
		width:   80,
		height:  24,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		return m.handleKey(msg)
	case evaluatedMsg:
		if msg.index < len(m.scale) && msg.scale == m.scale[msg.index] {
			m.results[msg.index] = msg.result
		}
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	n := len(m.results)
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "left", "h":
		if n > 0 {
			m.cursor = (m.cursor + n - 1) % n
		}
	case "right", "l":
		if n > 0 {
			m.cursor = (m.cursor + 1) % n
		}
	case "tab":
		m.showControl = !m.showControl
	case "+", "=":
		return m.rescale(scaleStep)
	case "-":
		return m.rescale(1 / scaleStep)
	case "r":
		if n > 0 {
			m.scale[m.cursor] = 1
			m.results[m.cursor] = m.base[m.cursor]
		}
	}
	return m, nil
}

// rescale multiplies the selected rule's Kp scale by f and re-simulates
// it in the background, keeping Ti and Td.
func (m Model) rescale(f float64) (Model, tea.Cmd) {
	if len(m.results) == 0 || !m.base[m.cursor].OK() || m.pipe == nil {
		return m, nil
	}
	s := m.scale[m.cursor] * f
	m.scale[m.cursor] = s

	i, base, ctx, pipe, plant := m.cursor, m.base[m.cursor], m.ctx, m.pipe, m.plant
	return m, func() tea.Msg {
		g := base.Tuning.Gains
		r := pipe.Evaluate(ctx, plant, tuning.Manual{Kp: g.Kp * s, Ti: g.Ti, Td: g.Td})
		r.Rule = base.Rule
		return evaluatedMsg{index: i, scale: s, result: r}
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("PIDLAB") + "  " + subtle.Render(m.plant.String()) + "\n\n")

	if len(m.results) == 0 {
		b.WriteString("  " + subtle.Render("no rules to compare") + "\n")
		return b.String()
	}

	tabs := make([]string, len(m.results))
	for i, r := range m.results {
		if i == m.cursor {
			tabs[i] = ruleActive.Render(r.Rule)
		} else {
			tabs[i] = ruleIdle.Render(r.Rule)
		}
	}
	b.WriteString("  " + lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "\n\n")

	r := m.results[m.cursor]
	chart := m.chart(r)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panel.Render(chart), " ", panel.Render(m.details(r))))
	b.WriteString("\n\n  ")
	b.WriteString(hint("←/→", "rule") + hint("tab", "output/control") + hint("+/-", "Kp") + hint("r", "reset") + hint("q", "quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) chart(r pipeline.Result) string {
	if !r.OK() {
		return errStyle.Render(r.Error)
	}
	width := max(20, m.width-48)
	height := max(6, m.height-14)

	single := []pipeline.Result{r}
	if m.showControl {
		return render.ASCII(render.ControlSeries(single), width, height, "controller output")
	}
	return render.ASCII(render.TraceSeries(single), width, height, "process output")
}

func (m Model) details(r pipeline.Result) string {
	if !r.OK() {
		return errStyle.Render("failed")
	}
	var b strings.Builder
	row := func(label, value string) {
		b.WriteString(metricLabel.Render(label) + metricValue.Render(value) + "\n")
	}
	g := r.Tuning.Gains
	row("Kp", fmt.Sprintf("%.4g", g.Kp))
	row("Ti", fmt.Sprintf("%.4g", g.Ti))
	row("Td", fmt.Sprintf("%.4g", g.Td))
	if s := m.scale[m.cursor]; s != 1 {
		row("Kp scale", fmt.Sprintf("%.3g", s))
	}
	b.WriteString("\n")
	row("rise", r.Performance.RiseTime.String())
	row("settling", r.Performance.SettlingTime.String())
	row("overshoot", r.Performance.OvershootPercent.String())
	row("ess", r.Performance.SteadyStateError.String())
	row("IAE", fmt.Sprintf("%.4g", r.Integrals.IAE))
	if r.Trace.Diverged {
		b.WriteString("\n" + errStyle.Render("diverged"))
	}
	if r.Tuning.Degenerate {
		b.WriteString("\n" + warnStyle.Render("dead time floored"))
	}
	for _, n := range r.Tuning.Notes {
		b.WriteString("\n" + warnStyle.Render(n))
	}
	return b.String()
}

// Run starts the comparison program on the alternate screen.
func Run(ctx context.Context, p *pipeline.Pipeline, plant process.Model, results []pipeline.Result) error {
	_, err := tea.NewProgram(NewModel(ctx, p, plant, results), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
