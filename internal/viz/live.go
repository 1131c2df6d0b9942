package viz

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/vqelab/internal/metrics"
)

const (
	graphWidth      = 60
	graphHeight     = 12
	historyCapacity = 2000
)

type TickMsg time.Time

// EvalMsg reports one objective evaluation. Energy is already shifted to
// the reporting convention of the caller.
type EvalMsg struct {
	Eval   int
	Energy float64
}

// DoneMsg ends a run. Energy is the optimiser's final value.
type DoneMsg struct {
	Energy float64
	Err    error
}

// Model follows a single VQE optimisation.
type Model struct {
	title     string
	reference float64
	hasRef    bool
	budget    int
	cancel    context.CancelFunc

	energies []float64
	deltas   []float64
	evals    int
	best     float64
	start    time.Time
	elapsed  time.Duration

	done     bool
	final    float64
	err      error
	quitting bool
	showHelp bool
}

// NewModel creates a view for a run titled title. reference is drawn as a
// horizontal line when hasRef is set. budget is the expected number of
// evaluations, zero hides the progress bar. cancel is invoked when the
// user quits before the run ends.
func NewModel(title string, reference float64, hasRef bool, budget int, cancel context.CancelFunc) Model {
	return Model{
		title:     title,
		reference: reference,
		hasRef:    hasRef,
		budget:    budget,
		cancel:    cancel,
		energies:  make([]float64, 0, 256),
		deltas:    make([]float64, 0, 256),
		best:      math.Inf(1),
		start:     time.Now(),
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/10, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if !m.done && m.cancel != nil {
				m.cancel()
			}
			m.quitting = true
			return m, tea.Quit
		case "?":
			m.showHelp = !m.showHelp
		}
	case EvalMsg:
		m.observe(msg)
	case DoneMsg:
		m.done = true
		m.final = msg.Energy
		m.err = msg.Err
		m.elapsed = time.Since(m.start)
		return m, tea.Quit
	case TickMsg:
		if !m.done {
			m.elapsed = time.Since(m.start)
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) observe(msg EvalMsg) {
	m.evals = msg.Eval
	m.best = math.Min(m.best, msg.Energy)
	m.energies = append(m.energies, msg.Energy)
	if len(m.energies) > historyCapacity {
		m.energies = m.energies[1:]
	}
	if m.hasRef {
		m.deltas = append(m.deltas, msg.Energy-m.reference)
		if len(m.deltas) > historyCapacity {
			m.deltas = m.deltas[1:]
		}
	}
}

// Evaluations is the number of evaluations seen so far.
func (m Model) Evaluations() int { return m.evals }

// Best is the lowest energy seen so far.
func (m Model) Best() float64 { return m.best }

// Err is the error carried by DoneMsg, if any.
func (m Model) Err() error { return m.err }

func (m Model) graph() string {
	if len(m.energies) < 2 {
		return Subtle.Render("waiting for evaluations...")
	}
	series := [][]float64{m.energies}
	opts := []asciigraph.Option{
		asciigraph.Width(graphWidth),
		asciigraph.Height(graphHeight),
		asciigraph.Precision(5),
		asciigraph.Caption("Energy (Ha) per evaluation"),
	}
	if m.hasRef {
		ref := make([]float64, len(m.energies))
		for i := range ref {
			ref[i] = m.reference
		}
		series = append(series, ref)
		opts = append(opts,
			asciigraph.SeriesColors(asciigraph.Blue, asciigraph.DarkGray),
			asciigraph.SeriesLegends("VQE", "Exact"),
		)
	}
	return asciigraph.PlotMany(series, opts...)
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return StatusFailed.Render("FAILED")
	case m.done:
		return StatusDone.Render("DONE")
	}
	return StatusRunning.Render("RUNNING")
}

func row(label, value string) string {
	return MetricLabel.Render(label) + value + "\n"
}

func (m Model) View() string {
	if m.quitting && !m.done {
		return ""
	}

	var s strings.Builder
	s.WriteString(HeaderStyle.Render(m.title) + "\n")
	s.WriteString(m.status() + "\n\n")

	current := math.NaN()
	if len(m.energies) > 0 {
		current = m.energies[len(m.energies)-1]
	}
	if m.done && m.err == nil {
		current = m.final
	}
	s.WriteString(row("Evaluations", MetricValue.Render(fmt.Sprintf("%d", m.evals))))
	s.WriteString(row("Energy", MetricValue.Render(fmt.Sprintf("%.6f Ha", current))))
	if !math.IsInf(m.best, 1) {
		s.WriteString(row("Best", MetricValue.Render(fmt.Sprintf("%.6f Ha", m.best))))
	}
	if m.hasRef {
		s.WriteString(row("Exact", MetricValue.Render(fmt.Sprintf("%.6f Ha", m.reference))))
		if !math.IsInf(m.best, 1) {
			d := m.best - m.reference
			s.WriteString(row("Δ best", AccuracyStyle(math.Abs(d), metrics.ChemicalAccuracy).Render(fmt.Sprintf("%.6f Ha", d))))
		}
		if len(m.deltas) > 0 {
			s.WriteString(row("Δ trend", Sparkline(m.deltas, 24)))
		}
	}
	s.WriteString(row("Wall", MetricValue.Render(m.elapsed.Round(100*time.Millisecond).String())))
	if m.budget > 0 {
		frac := float64(m.evals) / float64(m.budget)
		s.WriteString(row("Budget", ProgressBar(frac, 20)))
	}
	if m.err != nil {
		s.WriteString("\n" + StatusFailed.Render(m.err.Error()) + "\n")
	}
	s.WriteString("\n" + KeyHint.Render("q: quit  ?: help"))

	stats := Panel.Render(s.String())
	view := lipgloss.JoinHorizontal(lipgloss.Top, graphStyle.Render(m.graph()), stats)
	if m.showHelp {
		help := Panel.Render("q / esc / ctrl+c  cancel the optimiser and quit\n?                 toggle this help")
		return help + "\n" + view
	}
	return view
}

// Watch runs job while a Model renders its progress. job gets a context
// that is cancelled when the user quits and an emit function for every
// evaluation. The returned energy is the one job returned.
func Watch(ctx context.Context, title string, reference float64, hasRef bool, budget int,
	job func(ctx context.Context, emit func(eval int, energy float64)) (float64, error)) (float64, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewModel(title, reference, hasRef, budget, cancel))
	go func() {
		energy, err := job(ctx, func(eval int, energy float64) {
			p.Send(EvalMsg{Eval: eval, Energy: energy})
		})
		p.Send(DoneMsg{Energy: energy, Err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return 0, err
	}
	m := final.(Model)
	if !m.done {
		return 0, context.Canceled
	}
	return m.final, m.err
}
