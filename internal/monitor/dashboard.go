package monitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/sparkline"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fyrsmithlabs/pdfsqueeze/internal/events"
)

const (
	sparkWidth   = 30
	sparkHeight  = 3
	historyCap   = 30
	fetchTimeout = 5 * time.Second
)

// theme collects every style the dashboard renders with.
type theme struct {
	header  lipgloss.Style
	section lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	dim     lipgloss.Style
	ok      lipgloss.Style
	warn    lipgloss.Style
	bad     lipgloss.Style
	frame   lipgloss.Style
	spark   lipgloss.Style
	hotkey  lipgloss.Style
}

func defaultTheme() theme {
	return theme{
		header: lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("25")).
			Bold(true).
			Padding(0, 1),
		section: lipgloss.NewStyle().
			Foreground(lipgloss.Color("75")).
			Bold(true).
			MarginTop(1),
		label: lipgloss.NewStyle().
			Foreground(lipgloss.Color("110")),
		value: lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Bold(true),
		dim: lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")),
		ok: lipgloss.NewStyle().
			Foreground(lipgloss.Color("78")).
			Bold(true),
		warn: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true),
		bad: lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Bold(true),
		frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2),
		spark: lipgloss.NewStyle().
			Foreground(lipgloss.Color("75")),
		hotkey: lipgloss.NewStyle().
			Foreground(lipgloss.Color("75")).
			Bold(true),
	}
}

// health renders the overall daemon badge from the failure counters.
func (t theme) health(failed, completed int64) string {
	switch {
	case failed == 0:
		return t.ok.Render("● OK")
	case failed < completed:
		return t.warn.Render("● DEGRADED")
	default:
		return t.bad.Render("● FAILING")
	}
}

// sparkline renders a fixed-width chart, or a placeholder when the
// series is still empty.
func (t theme) sparkline(series []float64) string {
	if len(series) == 0 {
		return t.dim.Render(fmt.Sprintf("%*s", sparkWidth, "no data"))
	}
	chart := sparkline.New(sparkWidth, sparkHeight)
	for _, v := range series {
		chart.Push(v)
	}
	return t.spark.Render(chart.View())
}

// Model drives the terminal dashboard: poll the daemon's stats endpoint
// on a fixed interval, fold each snapshot into the rolling series, and
// render.
type Model struct {
	client   *StatsClient
	statsURL string
	interval time.Duration
	styles   theme

	stats      events.Stats
	lastUpdate time.Time
	err        error
	quitting   bool

	// Completions per minute, derived from poll-to-poll deltas. The
	// first poll only sets the baseline.
	throughput    []float64
	lastCompleted int64
	haveBaseline  bool

	savingsBar   progress.Model
	retentionBar progress.Model
}

// NewModel builds a dashboard model polling the daemon at statsURL.
func NewModel(statsURL string, interval time.Duration) Model {
	return Model{
		client:   NewStatsClient(statsURL),
		statsURL: statsURL,
		interval: interval,
		styles:   defaultTheme(),
		savingsBar: progress.New(
			progress.WithGradient("#00ff00", "#ffff00"),
			progress.WithWidth(40),
		),
		retentionBar: progress.New(
			progress.WithGradient("#00ffff", "#ff00ff"),
			progress.WithWidth(40),
		),
		throughput: make([]float64, 0, historyCap),
	}
}

type pollMsg time.Time

type snapshotMsg events.Stats

type fetchFailedMsg struct{ err error }

// schedule emits a pollMsg after the refresh interval elapses.
func (m Model) schedule() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}

// refresh fetches a stats snapshot in the background.
func (m Model) refresh() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		stats, err := client.Stats(ctx)
		if err != nil {
			return fetchFailedMsg{err}
		}
		return snapshotMsg(stats)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.schedule(), m.refresh())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			return m, m.refresh()
		}

	case pollMsg:
		return m, tea.Batch(m.schedule(), m.refresh())

	case snapshotMsg:
		m.fold(events.Stats(msg))
		return m, nil

	case fetchFailedMsg:
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

// fold merges a snapshot into the model and extends the throughput
// series with the completions-per-minute rate since the previous poll.
func (m *Model) fold(stats events.Stats) {
	rate := 0.0
	if m.haveBaseline && m.interval > 0 {
		delta := stats.Completed - m.lastCompleted
		if delta < 0 {
			delta = 0 // daemon restarted
		}
		rate = float64(delta) / m.interval.Minutes()
	}
	m.throughput = push(m.throughput, rate)
	m.lastCompleted = stats.Completed
	m.haveBaseline = true

	m.stats = stats
	m.lastUpdate = time.Now()
	m.err = nil
}

// push appends v, keeping at most historyCap points.
func push(series []float64, v float64) []float64 {
	series = append(series, v)
	if len(series) > historyCap {
		series = series[1:]
	}
	return series
}

// retentionSeries extracts per-completion retention percentages.
func retentionSeries(samples []events.Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.RetentionPercent
	}
	return out
}

// savingsSeries extracts tokens saved per completion.
func savingsSeries(samples []events.Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = float64(s.OriginalTokens - s.CompressedTokens)
	}
	return out
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.err != nil {
		return m.viewError()
	}
	return m.viewDashboard()
}

func (m Model) viewError() string {
	t := m.styles
	var b strings.Builder

	b.WriteString(t.header.Render(" pdfsqueeze monitor ") + "\n\n")
	b.WriteString(t.bad.Render("daemon unreachable") + "\n\n")
	b.WriteString(t.dim.Render("endpoint  ") + t.value.Render(m.statsURL) + "\n")
	b.WriteString(t.dim.Render("error     ") + t.bad.Render(m.err.Error()) + "\n\n")
	b.WriteString(t.dim.Render("Start pdfsqueezed, or point --endpoint at a running daemon.") + "\n\n")
	b.WriteString(m.viewFooter())

	return t.frame.Render(b.String())
}

func (m Model) viewDashboard() string {
	var b strings.Builder

	b.WriteString(m.viewHeader() + "\n")
	b.WriteString(m.viewOperations())
	b.WriteString(m.viewTokens())
	b.WriteString(m.viewRetention())
	b.WriteString(m.viewLastCompletion())
	b.WriteString("\n" + m.viewFooter())

	return m.styles.frame.Render(b.String())
}

func (m Model) viewHeader() string {
	t := m.styles

	refreshed := "never"
	if !m.lastUpdate.IsZero() {
		refreshed = m.lastUpdate.Format("15:04:05")
	}
	uptime := "0m"
	if !m.stats.StartedAt.IsZero() {
		uptime = FormatUptime(time.Since(m.stats.StartedAt))
	}

	return t.header.Render(" pdfsqueeze monitor ") + "\n" +
		fmt.Sprintf("%s   %s %s   %s %s",
			t.health(m.stats.Failed, m.stats.Completed),
			t.dim.Render("up"), t.value.Render(uptime),
			t.dim.Render("refreshed"), t.dim.Render(refreshed))
}

func (m Model) viewOperations() string {
	t := m.styles

	rate := 0.0
	if len(m.throughput) > 0 {
		rate = m.throughput[len(m.throughput)-1]
	}

	var b strings.Builder
	b.WriteString("\n" + t.section.Render("▸ Operations") + "\n")
	b.WriteString(t.label.Render("  throughput ") +
		t.value.Render(FormatRate(rate)) +
		"   " + t.sparkline(m.throughput) + "\n")
	b.WriteString(t.label.Render("  completed ") + t.value.Render(fmt.Sprintf("%d", m.stats.Completed)) +
		t.label.Render("   failed ") + t.value.Render(fmt.Sprintf("%d", m.stats.Failed)) +
		t.label.Render("   active ") + t.value.Render(fmt.Sprintf("%d", m.stats.ActiveOperations)) + "\n")
	return b.String()
}

func (m Model) viewTokens() string {
	t := m.styles

	savedFraction := 0.0
	if m.stats.OriginalTokens > 0 {
		savedFraction = float64(m.stats.TokensSaved) / float64(m.stats.OriginalTokens)
		if savedFraction > 1.0 {
			savedFraction = 1.0
		}
	}

	var b strings.Builder
	b.WriteString("\n" + t.section.Render("▸ Tokens") + "\n")
	b.WriteString(t.label.Render("  saved ") +
		t.value.Render(FormatTokens(m.stats.TokensSaved)) +
		"           " + t.sparkline(savingsSeries(m.stats.History)) + "\n")
	b.WriteString(t.label.Render("  original ") + t.value.Render(FormatTokens(m.stats.OriginalTokens)) +
		t.label.Render("   compressed ") + t.value.Render(FormatTokens(m.stats.CompressedTokens)) + "\n")
	b.WriteString(t.label.Render("  savings ") +
		m.savingsBar.ViewAs(savedFraction) +
		" " + t.dim.Render(fmt.Sprintf("%.0f%%", savedFraction*100)) + "\n")
	return b.String()
}

func (m Model) viewRetention() string {
	t := m.styles

	fraction := m.stats.AvgRetentionPercent / 100.0
	if fraction > 1.0 {
		fraction = 1.0
	}

	var b strings.Builder
	b.WriteString("\n" + t.section.Render("▸ Retention") + "\n")
	b.WriteString(t.label.Render("  average ") +
		t.value.Render(FormatPercentage(m.stats.AvgRetentionPercent)) +
		"         " + t.sparkline(retentionSeries(m.stats.History)) + "\n")
	b.WriteString(t.label.Render("  progress ") +
		m.retentionBar.ViewAs(fraction) +
		" " + t.dim.Render(fmt.Sprintf("%.0f%%", m.stats.AvgRetentionPercent)) + "\n")
	return b.String()
}

func (m Model) viewLastCompletion() string {
	n := len(m.stats.History)
	if n == 0 {
		return ""
	}
	t := m.styles
	last := m.stats.History[n-1]

	return "\n" + t.section.Render("▸ Last Completion") + "\n" +
		t.label.Render("  tokens ") +
		t.value.Render(fmt.Sprintf("%d", last.OriginalTokens)) +
		t.dim.Render(" to ") +
		t.value.Render(fmt.Sprintf("%d", last.CompressedTokens)) +
		t.label.Render("   duration ") +
		t.value.Render(FormatDurationMS(last.DurationMS)) + "\n"
}

func (m Model) viewFooter() string {
	t := m.styles
	return t.hotkey.Render("[q]") + t.dim.Render(" quit   ") +
		t.hotkey.Render("[r]") + t.dim.Render(" refresh   ") +
		t.dim.Render(fmt.Sprintf("every %v", m.interval))
}
