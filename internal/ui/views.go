package ui

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const panelWidth = 60

var (
	accentColor = lipgloss.Color("#0087AF")
	mutedColor  = lipgloss.Color("#888888")
	okColor     = lipgloss.Color("#00AA00")
	activeColor = lipgloss.Color("#5FD7FF")
	errorColor  = lipgloss.Color("#D70000")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	mutedStyle = lipgloss.NewStyle().Foreground(mutedColor)
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(panelWidth)
)

// statusIcon maps a file state to its queue marker.
var statusIcon = map[FileStatus]string{
	StatusQueued:     lipgloss.NewStyle().Foreground(mutedColor).Render("○"),
	StatusAnalyzing:  lipgloss.NewStyle().Foreground(activeColor).Render("⚙"),
	StatusProcessing: lipgloss.NewStyle().Foreground(activeColor).Render("⚙"),
	StatusComplete:   lipgloss.NewStyle().Foreground(okColor).Render("✓"),
	StatusError:      lipgloss.NewStyle().Foreground(errorColor).Render("✗"),
}

// sparkBlocks are the sparkline glyphs, quietest first.
var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

func renderProcessingView(m Model) string {
	header := titleStyle.Render("Agckit 📶 - Automatic Gain Control") + "\n" +
		mutedStyle.Italic(true).Render(fmt.Sprintf("Processing %d file(s)", m.TotalFiles))

	queue := make([]string, len(m.Files))
	for i, file := range m.Files {
		queue[i] = renderFileEntry(file)
	}

	footer := fmt.Sprintf("Overall Progress: %d/%d complete", m.CompletedFiles, m.TotalFiles)
	if m.current() != nil {
		footer = fmt.Sprintf("Processing file %d of %d (%d complete)",
			m.CurrentIndex+1, m.TotalFiles, m.CompletedFiles)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		strings.Join(queue, "\n"),
		"",
		panelStyle.BorderForeground(mutedColor).Render(footer),
	)
}

func renderFileEntry(file FileProgress) string {
	name := filepath.Base(file.InputPath)
	icon := statusIcon[file.Status]

	switch file.Status {
	case StatusComplete:
		return fmt.Sprintf(" %s %s → %s\n   Input: %.1f dBFS | Output: %.1f dBFS | Gain: %+.1f dB",
			icon, name, filepath.Base(file.OutputPath),
			file.InputRMS, file.OutputRMS, file.FinalGainDB)
	case StatusAnalyzing, StatusProcessing:
		return fmt.Sprintf(" %s %s → %s\n%s", icon, name, generateOutputName(name), renderFileDetails(file))
	case StatusError:
		return fmt.Sprintf(" %s %s\n   Error: %v", icon, name, file.Error)
	default:
		return fmt.Sprintf(" %s %s\n   Queued...", icon, name)
	}
}

// renderFileDetails draws the active file panel: pass, bar, timing and
// levels. Pass 2 levels are kernel output, so the offset from the input
// average shows what the gain loop is doing.
func renderFileDetails(file FileProgress) string {
	passName := "Measuring Input"
	if file.CurrentPass == 2 {
		passName = "Applying Gain"
	}

	lines := []string{
		fmt.Sprintf("Pass %d/2: %s", file.CurrentPass, passName),
		renderProgressBar(file.Progress, 40),
		"",
	}

	elapsed := file.Elapsed.Seconds()
	remaining := 0.0
	if file.Progress > 0 {
		remaining = elapsed/file.Progress - elapsed
	}
	lines = append(lines, fmt.Sprintf("⏱  Elapsed: %.1fs | Remaining: ~%.1fs", elapsed, remaining))

	if file.CurrentLevel != 0 {
		lines = append(lines, fmt.Sprintf("📊 Level: %.1f dBFS | Loudest: %.1f dBFS",
			file.CurrentLevel, file.LoudestLevel))
		if file.CurrentPass == 2 && file.Measurements != nil {
			lines = append(lines, fmt.Sprintf("🎚  vs input: %+.1f dB", file.CurrentLevel-file.Measurements.RMSLevel))
		}
	}
	if len(file.History) > 1 {
		lines = append(lines, "   "+mutedStyle.Render(renderSparkline(file.History)))
	}

	return panelStyle.BorderForeground(accentColor).Render(strings.Join(lines, "\n"))
}

func renderProgressBar(progress float64, width int) string {
	filled := int(progress * float64(width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %d%%", bar, int(progress*100))
}

// renderSparkline maps levels in [levelFloor, 0] dBFS onto block glyphs.
func renderSparkline(levels []float64) string {
	var b strings.Builder
	top := len(sparkBlocks) - 1
	for _, level := range levels {
		frac := (level - levelFloor) / -levelFloor
		i := int(math.Round(frac * float64(top)))
		b.WriteRune(sparkBlocks[min(max(i, 0), top)])
	}
	return b.String()
}

func renderCompletionSummary(m Model) string {
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(okColor).Render("✨ Processing Complete!"))
	b.WriteString("\n\n")

	for _, file := range m.Files {
		switch file.Status {
		case StatusComplete:
			b.WriteString(renderCompletedFile(file, m.ReferenceDB) + "\n")
		case StatusError:
			b.WriteString(renderFileEntry(file) + "\n")
		}
	}

	fmt.Fprintf(&b, "\n%s\n", strings.Repeat("─", panelWidth))
	fmt.Fprintf(&b, "%d of %d file(s) levelled towards %.1f dBFS", m.CompletedFiles, m.TotalFiles, m.ReferenceDB)
	if m.FailedFiles > 0 {
		fmt.Fprintf(&b, ", %d failed", m.FailedFiles)
	}
	b.WriteString("\n")

	return b.String()
}

func renderCompletedFile(file FileProgress, referenceDB float64) string {
	tips := "no tuning tips"
	if file.Tips > 0 {
		tips = fmt.Sprintf("%d tuning tip(s) in the report", file.Tips)
	}

	return fmt.Sprintf(" %s %s → %s\n"+
		"   Before: %.1f dBFS | After: %.1f dBFS | Target: %.1f dBFS\n"+
		"   Kernel: %s | Final gain: %+.1f dB | %s",
		statusIcon[StatusComplete], filepath.Base(file.InputPath), filepath.Base(file.OutputPath),
		file.InputRMS, file.OutputRMS, referenceDB,
		file.Kernel, file.FinalGainDB, tips)
}

// generateOutputName mirrors processor's "-agc" output naming.
func generateOutputName(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "-agc" + ext
}
