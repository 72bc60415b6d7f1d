package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// ProgressMsg reports one finished unit. Send it from the batch runner's
// progress callback.
type ProgressMsg struct {
	Unit     int
	Done     int
	Total    int
	RSquared float64
	Err      error
}

// DoneMsg signals that the whole batch finished.
type DoneMsg struct {
	Elapsed time.Duration
}

type Model struct {
	title string
	start time.Time

	done     int
	total    int
	failed   int
	lastUnit int
	lastR2   float64
	history  []float64

	finished bool
	elapsed  time.Duration
	width    int
}

func NewModel(title string, total int) Model {
	return Model{
		title:    title,
		start:    time.Now(),
		total:    total,
		lastUnit: -1,
		history:  make([]float64, 0, 60),
		width:    80,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "escape":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case ProgressMsg:
		m.done = msg.Done
		m.total = msg.Total
		m.lastUnit = msg.Unit
		if msg.Err != nil {
			m.failed++
		} else {
			m.lastR2 = msg.RSquared
			m.history = append(m.history, msg.RSquared)
			if len(m.history) > 60 {
				m.history = m.history[1:]
			}
		}
	case DoneMsg:
		m.finished = true
		m.elapsed = msg.Elapsed
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString("\n   " + cyan.Render(m.title) + "\n")
	b.WriteString(dimmer.Render("   "+strings.Repeat("─", 40)) + "\n\n")

	progress := 0.0
	if m.total > 0 {
		progress = float64(m.done) / float64(m.total)
	}
	barWidth := 36
	filled := int(progress * float64(barWidth))
	bar := cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", barWidth-filled))
	b.WriteString(fmt.Sprintf("   %s %s\n\n", bar,
		dim.Render(fmt.Sprintf("%d/%d", m.done, m.total))))

	if m.lastUnit >= 0 {
		b.WriteString(fmt.Sprintf("   %s %s   %s %s\n",
			dim.Render("unit"), white.Render(fmt.Sprintf("%d", m.lastUnit)),
			dim.Render("r2"), white.Render(fmt.Sprintf("%.4f", m.lastR2))))
	}
	if m.failed > 0 {
		b.WriteString("   " + red.Render(fmt.Sprintf("%d failed", m.failed)) + "\n")
	}

	if len(m.history) > 1 {
		b.WriteString(fmt.Sprintf("   %s %s\n", dim.Render("r2"), green.Render(sparkline(m.history, 32))))
	}

	if m.finished {
		b.WriteString("\n   " + green.Render(fmt.Sprintf("done in %v", m.elapsed.Round(time.Millisecond))) + "\n")
	} else {
		b.WriteString("\n" + dim.Render("   q quit") + "\n")
	}

	return b.String()
}

func sparkline(data []float64, width int) string {
	if len(data) == 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	rang := maxVal - minVal
	if rang == 0 {
		rang = 1
	}
	step := len(data) / width
	if step < 1 {
		step = 1
	}
	var sb strings.Builder
	for i := 0; i < width && i*step < len(data); i++ {
		v := data[i*step]
		idx := int((v - minVal) / rang * 7)
		if idx > 7 {
			idx = 7
		}
		if idx < 0 {
			idx = 0
		}
		sb.WriteRune(chars[idx])
	}
	return sb.String()
}
