package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/linuxmatters/agckit/internal/processor"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// AnalysisResult is the outcome of measuring one file.
type AnalysisResult struct {
	FilePath     string
	Measurements *processor.Measurements
	Config       *processor.Config // kernel settings adapted to the measurements
	Error        error
}

// Finished reports whether the file has been measured or has failed.
func (r AnalysisResult) Finished() bool {
	return r.Measurements != nil || r.Error != nil
}

// AnalysisModel is the Bubbletea model for --analysis-only. It measures a
// queue of files one at a time and quits after AnalysisDoneMsg.
type AnalysisModel struct {
	Results []AnalysisResult
	Current int // index being measured, -1 before the first start

	Progress  float64
	Level     float64 // latest block level in dBFS
	StartTime time.Time
	Done      bool

	spinnerIndex int

	Width  int
	Height int
}

// AnalysisStartMsg signals that measurement of file Index has started.
type AnalysisStartMsg struct {
	Index    int
	FilePath string
}

type AnalysisProgressMsg struct {
	Index    int
	Progress float64
	Level    float64
}

// AnalysisCompleteMsg carries the measurements for one file.
type AnalysisCompleteMsg struct {
	Index        int
	Measurements *processor.Measurements
	Config       *processor.Config
	Error        error
}

// AnalysisDoneMsg signals that every file has been measured.
type AnalysisDoneMsg struct{}

type tickMsg time.Time

// NewAnalysisModel creates an analysis model for the given files.
func NewAnalysisModel(files []string) AnalysisModel {
	results := make([]AnalysisResult, len(files))
	for i, path := range files {
		results[i].FilePath = path
	}
	return AnalysisModel{
		Results:   results,
		Current:   -1,
		StartTime: time.Now(),
	}
}

func (m AnalysisModel) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m AnalysisModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if s := msg.String(); s == "q" || s == "ctrl+c" {
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height

	case tickMsg:
		if m.Done {
			return m, nil
		}
		m.spinnerIndex = (m.spinnerIndex + 1) % len(spinnerFrames)
		return m, tickCmd()

	case AnalysisStartMsg:
		if !m.valid(msg.Index) {
			return m, nil
		}
		m.Current = msg.Index
		m.Results[msg.Index].FilePath = msg.FilePath
		m.Progress, m.Level = 0, 0
		m.StartTime = time.Now()

	case AnalysisProgressMsg:
		if msg.Index == m.Current {
			m.Progress, m.Level = msg.Progress, msg.Level
		}

	case AnalysisCompleteMsg:
		if !m.valid(msg.Index) {
			return m, nil
		}
		r := &m.Results[msg.Index]
		r.Measurements, r.Config, r.Error = msg.Measurements, msg.Config, msg.Error

	case AnalysisDoneMsg:
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m AnalysisModel) valid(i int) bool {
	return i >= 0 && i < len(m.Results)
}

func (m AnalysisModel) View() string {
	if m.Width == 0 {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Agckit") + " " + mutedStyle.Italic(true).Render("Analysis Mode"))
	b.WriteString("\n\n")

	for i, r := range m.Results {
		name := filepath.Base(r.FilePath)
		switch {
		case r.Error != nil:
			fmt.Fprintf(&b, " %s %s: %v\n", statusIcon[StatusError], name, r.Error)
		case r.Measurements != nil:
			fmt.Fprintf(&b, " %s %s  %.1f dBFS RMS\n", statusIcon[StatusComplete], name, r.Measurements.RMSLevel)
		case i == m.Current && !m.Done:
			b.WriteString(m.renderActive(name))
		default:
			fmt.Fprintf(&b, " %s %s\n", statusIcon[StatusQueued], name)
		}
	}

	return b.String()
}

// renderActive draws the spinner line for the file being measured.
func (m AnalysisModel) renderActive(name string) string {
	elapsed := time.Since(m.StartTime)
	spinner := lipgloss.NewStyle().Foreground(accentColor).Render(spinnerFrames[m.spinnerIndex])

	line := fmt.Sprintf(" %s %s\n   ", spinner, lipgloss.NewStyle().Bold(true).Render(name))
	if m.Progress > 0 && m.Progress < 1 {
		line += renderAnalysisProgressBar(m.Progress, 40, elapsed)
	} else {
		line += fmt.Sprintf("Measuring... [%s]", formatElapsed(elapsed))
	}
	if m.Level != 0 {
		line += fmt.Sprintf("\n   Level: %.1f dBFS", m.Level)
	}
	return line + "\n"
}

func renderAnalysisProgressBar(progress float64, width int, elapsed time.Duration) string {
	filled := int(progress * float64(width))

	bar := lipgloss.NewStyle().Foreground(accentColor).Render(strings.Repeat("━", filled)) +
		lipgloss.NewStyle().Foreground(lipgloss.Color("#444444")).Render(strings.Repeat("━", width-filled))

	return fmt.Sprintf("%s %3d%% [%s]", bar, int(progress*100), formatElapsed(elapsed))
}

// formatElapsed formats d as MM:SS, or HH:MM:SS past the hour.
func formatElapsed(d time.Duration) string {
	total := int(d.Round(time.Second) / time.Second)
	h, m, s := total/3600, total/60%60, total%60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
