// Package tui renders the drone dashboard in a terminal, either as a full
// Bubble Tea program or as plain redrawn text.
package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/shaunagostinho/drone-telemetry/internal/render"
	"github.com/shaunagostinho/drone-telemetry/internal/sim"
	"github.com/shaunagostinho/drone-telemetry/internal/telemetry"
)

// DefaultCeiling is the session length of the terminal viewer.
const DefaultCeiling = 30 * time.Second

// Options configures a terminal session.
type Options struct {
	Preset  telemetry.Preset
	Budget  render.Budget
	Ceiling time.Duration

	// Period overrides sim.DefaultPeriod, mainly for tests.
	Period           time.Duration
	GeneratorOptions []telemetry.Option
}

func (o Options) period() time.Duration {
	if o.Period > 0 {
		return o.Period
	}
	return sim.DefaultPeriod
}

// TickMsg asks the model for the next sample.
type TickMsg time.Time

// Model is the root Bubble Tea model. The generator is a pointer so every
// copy of the model advances the same flight.
type Model struct {
	width  int
	height int

	gen     *telemetry.Generator
	budget  render.Budget
	ceiling time.Duration
	period  time.Duration

	sample  *telemetry.Sample
	expired bool
}

// NewModel creates a model for a fresh generator.
func NewModel(opts Options) Model {
	return Model{
		gen:     telemetry.NewGenerator(opts.Preset, opts.GeneratorOptions...),
		budget:  opts.Budget,
		ceiling: opts.Ceiling,
		period:  opts.period(),
	}
}

// Sample returns the most recent sample, or nil before the first tick.
func (m Model) Sample() *telemetry.Sample { return m.sample }

// Expired reports whether the session ended by reaching the ceiling.
func (m Model) Expired() bool { return m.expired }

func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return TickMsg(time.Now()) }
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "Q", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil

	case TickMsg:
		if m.ceiling > 0 && m.gen.Elapsed() >= m.ceiling {
			m.expired = true
			return m, tea.Quit
		}
		s := m.gen.Tick()
		m.sample = &s
		return m, m.tickCmd()
	}

	return m, nil
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.period, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) View() string {
	if m.sample == nil {
		return "Initializing drone telemetry..."
	}
	s := *m.sample

	width := m.width
	if width <= 0 {
		width = 80
	}

	title := styleTitleBar.Width(width).Render(fmt.Sprintf("DRONE TELEMETRY  [%s]", strings.ToUpper(m.gen.Preset().Name)))

	panels := lipgloss.JoinHorizontal(lipgloss.Top,
		m.altitudePanel(s),
		" ",
		m.headingPanel(s),
	)

	readouts := stylePanel.Render(strings.Join([]string{
		readout("SPEED", fmt.Sprintf("%6.1f km/h", s.Speed)),
		readout("VSI", fmt.Sprintf("%6.1f m/s", s.VerticalSpeed)),
		readout("ACCEL", fmt.Sprintf("%6.1f m/s²", s.Acceleration)),
		readout("GPS", formatPosition(s.Latitude, s.Longitude)),
		styleLabel.Render(fmt.Sprintf("%-10s", "BATTERY")) + batteryStyle(s.Battery).Render(fmt.Sprintf("%3.0f%%", s.Battery)),
		readout("GPS SAT", fmt.Sprintf("%d", s.Satellites)),
	}, "\n"))

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		panels,
		readouts,
		m.statusBar(s, width),
		styleHelp.Render("Press 'q' to quit"),
	)
}

func (m Model) altitudePanel(s telemetry.Sample) string {
	height := max(m.budget.GraphHeight, 2)
	axis := max(len(s.AltitudeHistory), 20)
	graph := render.AltitudeGraph(s.AltitudeHistory, height)

	rows := []string{
		stylePanelTitle.Render("ALTITUDE ") + styleValue.Render(fmt.Sprintf("%6.1f m", s.Altitude)),
	}
	for i := 0; i < height; i++ {
		row := ""
		if i < len(graph) {
			row = graph[i]
		}
		rows = append(rows, styleAxis.Render("|")+styleGraph.Render(fmt.Sprintf("%-*s", axis, row)))
	}
	rows = append(rows, styleAxis.Render("+"+strings.Repeat("-", axis)))
	return stylePanel.Render(strings.Join(rows, "\n"))
}

func (m Model) headingPanel(s telemetry.Sample) string {
	rows := []string{
		stylePanelTitle.Render("HEADING ") + styleValue.Render(fmt.Sprintf("%3.0f° %s", math.Floor(s.Heading), render.CompassPoint(s.Heading))),
	}
	for _, row := range render.Compass(s.Heading, m.budget.CompassSize) {
		var b strings.Builder
		for _, r := range row {
			switch r {
			case 'o':
				b.WriteString(styleCompassNeedle.Render("o"))
			case ' ':
				b.WriteRune(' ')
			default:
				b.WriteString(styleCompassMark.Render(string(r)))
			}
		}
		rows = append(rows, b.String())
	}
	return stylePanel.Render(strings.Join(rows, "\n"))
}

func (m Model) statusBar(s telemetry.Sample, width int) string {
	clock := fmt.Sprintf("TIME %5.1fs", s.Elapsed)
	if m.ceiling > 0 {
		clock = fmt.Sprintf("TIME %5.1fs / %.1fs", s.Elapsed, m.ceiling.Seconds())
	}
	info := fmt.Sprintf("%s  TICK %s  %s", clock, humanize.Comma(int64(s.Tick)), s.Time)
	return styleStatusBar.Width(width).Render(info)
}

func readout(label, value string) string {
	return styleLabel.Render(fmt.Sprintf("%-10s", label)) + styleValue.Render(value)
}

func formatPosition(lat, lon float64) string {
	ns, ew := "N", "E"
	if lat < 0 {
		ns, lat = "S", -lat
	}
	if lon < 0 {
		ew, lon = "W", -lon
	}
	return fmt.Sprintf("%.6f° %s  %.6f° %s", lat, ns, lon, ew)
}
