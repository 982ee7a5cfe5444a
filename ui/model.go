package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/RyanBlaney/timbre-match/capture"
	"github.com/RyanBlaney/timbre-match/compare"
	"github.com/RyanBlaney/timbre-match/logging"
	"github.com/RyanBlaney/timbre-match/timbre"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PollInterval is how often the model reads the engine
const PollInterval = 100 * time.Millisecond

const barWidth = 24

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			PaddingLeft(2).
			PaddingRight(2).
			MarginBottom(1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC"))

	labelStyle = lipgloss.NewStyle().
			Width(8).
			Bold(true)

	currentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D7FF"))
	targetStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))

	resultStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333333")).
			Padding(0, 1).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555"))
)

// Source is the engine surface the model polls
type Source interface {
	CurrentProfile() timbre.Profile
	TargetProfile() timbre.Profile
	HasTarget() bool
	StatusText() string
	CaptureStatus() capture.Status
	BeginCapture(seconds float64) error
	PerformCompare() *compare.Result
}

// TickMsg represents a poll tick
type TickMsg time.Time

// Model represents the UI state
type Model struct {
	source         Source
	captureSeconds float64
	current        timbre.Profile
	target         timbre.Profile
	hasTarget      bool
	status         string
	lastState      capture.State
	result         *compare.Result
	err            error
	width          int
	logger         logging.Logger
}

// NewModel creates a model polling source
func NewModel(source Source, captureSeconds float64) Model {
	return Model{
		source:         source,
		captureSeconds: captureSeconds,
		status:         "Ready",
		logger: logging.WithFields(logging.Fields{
			"component": "ui",
		}),
	}
}

func tick() tea.Cmd {
	return tea.Tick(PollInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Init starts polling
func (m Model) Init() tea.Cmd {
	return tick()
}

// Update updates the UI model based on messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "c":
			m.err = m.source.BeginCapture(m.captureSeconds)
			m = m.poll()
		case " ", "enter":
			m.result = m.source.PerformCompare()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case TickMsg:
		m = m.poll()
		return m, tick()
	}

	return m, nil
}

// poll reads the engine and logs the capture-complete transition
func (m Model) poll() Model {
	m.current = m.source.CurrentProfile()
	m.target = m.source.TargetProfile()
	m.hasTarget = m.source.HasTarget()
	m.status = m.source.StatusText()

	st := m.source.CaptureStatus()
	if m.lastState == capture.Capturing && st.State == capture.Ready {
		m.logger.Info("Target captured", logging.Fields{
			"generation": st.Generation,
			"samples":    st.Total,
		})
	}
	m.lastState = st.State
	return m
}

func bar(v float64) string {
	filled := int(timbre.Clamp01(v)*barWidth + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

// View renders the model
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Timbre Match"))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render("Status: " + m.status))
	b.WriteString("\n\n")

	for _, d := range timbre.Dimensions() {
		line := labelStyle.Render(d.Label()) +
			currentStyle.Render(bar(m.current[d])) +
			fmt.Sprintf(" %.2f", m.current[d])
		if m.hasTarget {
			line += "  " + targetStyle.Render(bar(m.target[d])) + fmt.Sprintf(" %.2f", m.target[d])
		}
		b.WriteString(line + "\n")
	}

	if m.result != nil {
		b.WriteString(resultStyle.Render(m.result.Text))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("c: capture %.1fs • space: compare • q: quit", m.captureSeconds)))
	b.WriteString("\n")
	return b.String()
}
