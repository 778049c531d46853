// Package ui provides the Bubbletea terminal user interface for agckit
package ui

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/linuxmatters/agckit/internal/processor"
)

var debugLog *os.File

func init() {
	debugLog, _ = os.OpenFile("agckit-ui-debug.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

func log(format string, args ...interface{}) {
	if debugLog != nil {
		fmt.Fprintf(debugLog, format+"\n", args...)
	}
}

// historyLen is how many pass 2 block levels the sparkline keeps.
const historyLen = 48

// levelFloor is the bottom of the level display in dBFS.
const levelFloor = -60.0

// FileStatus represents the processing state of a single file
type FileStatus int

const (
	StatusQueued FileStatus = iota
	StatusAnalyzing
	StatusProcessing
	StatusComplete
	StatusError
)

func (s FileStatus) String() string {
	switch s {
	case StatusAnalyzing:
		return "analyzing"
	case StatusProcessing:
		return "processing"
	case StatusComplete:
		return "complete"
	case StatusError:
		return "failed"
	default:
		return "queued"
	}
}

// FileProgress tracks progress for a single sample file
type FileProgress struct {
	InputPath  string
	OutputPath string
	Status     FileStatus

	CurrentPass int // 1 or 2
	PassName    string
	Progress    float64 // 0.0 to 1.0 within the pass
	PassStart   time.Time
	Elapsed     time.Duration

	// Input measurements, available once pass 1 is done
	Measurements *processor.Measurements

	CurrentLevel float64   // latest block level in dBFS
	LoudestLevel float64   // loudest block seen in the current pass
	History      []float64 // recent pass 2 block levels, oldest first

	// Set by FileCompleteMsg
	Kernel      string
	InputRMS    float64
	OutputRMS   float64
	FinalGainDB float64
	Tips        int

	Error error
}

// Model is the Bubbletea model for the processing UI
type Model struct {
	Files          []FileProgress
	CurrentIndex   int
	TotalFiles     int
	CompletedFiles int
	FailedFiles    int

	StartTime   time.Time
	Done        bool
	ReferenceDB float64 // kernel reference level, for the summary

	Width  int
	Height int
}

// NewModel creates a new UI model with the given input files. referenceDB
// is the kernel's target level in dBFS. Progress arrives through
// tea.Program.Send.
func NewModel(inputFiles []string, referenceDB float64) Model {
	files := make([]FileProgress, len(inputFiles))
	for i, path := range inputFiles {
		files[i] = FileProgress{
			InputPath:    path,
			Status:       StatusQueued,
			LoudestLevel: levelFloor,
		}
	}

	return Model{
		Files:        files,
		CurrentIndex: -1,
		TotalFiles:   len(inputFiles),
		StartTime:    time.Now(),
		ReferenceDB:  referenceDB,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if s := msg.String(); s == "q" || s == "ctrl+c" {
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height

	case FileStartMsg:
		m = m.startFile(msg)

	case ProgressMsg:
		if fp := m.current(); fp != nil {
			*fp = applyProgress(*fp, msg)
		}

	case FileCompleteMsg:
		m = m.completeFile(msg)

	case AllCompleteMsg:
		log("[UI] all files done: %d complete, %d failed", m.CompletedFiles, m.FailedFiles)
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

// current returns the file being processed, or nil between files.
func (m Model) current() *FileProgress {
	if m.CurrentIndex < 0 || m.CurrentIndex >= len(m.Files) {
		return nil
	}
	return &m.Files[m.CurrentIndex]
}

func (m Model) startFile(msg FileStartMsg) Model {
	if msg.FileIndex < 0 || msg.FileIndex >= len(m.Files) {
		log("[UI] FileStartMsg for unknown index %d", msg.FileIndex)
		return m
	}
	log("[UI] start %d: %s", msg.FileIndex, msg.FileName)
	m.CurrentIndex = msg.FileIndex
	fp := m.current()
	fp.Status = StatusAnalyzing
	fp.PassStart = time.Now()
	return m
}

func (m Model) completeFile(msg FileCompleteMsg) Model {
	fp := m.current()
	if fp == nil {
		return m
	}
	log("[UI] complete %d: err=%v gain=%+.1f dB", msg.FileIndex, msg.Error, msg.FinalGainDB)

	if msg.Error != nil {
		fp.Status = StatusError
		fp.Error = msg.Error
		m.FailedFiles++
		return m
	}

	fp.Status = StatusComplete
	fp.Kernel = msg.Kernel
	fp.InputRMS = msg.InputRMS
	fp.OutputRMS = msg.OutputRMS
	fp.FinalGainDB = msg.FinalGainDB
	fp.Tips = msg.Tips
	fp.OutputPath = msg.OutputPath
	m.CompletedFiles++
	return m
}

// View shows the queue while running and the summary once done.
func (m Model) View() string {
	if m.Width == 0 {
		return fmt.Sprintf("Initializing...\nFiles: %d\n", len(m.Files))
	}
	if m.Done {
		return renderCompletionSummary(m)
	}
	return renderProcessingView(m)
}

// applyProgress folds a progress update into fp. Entering a new pass resets
// the pass clock and the loudest level, so pass 2 shows output levels only.
func applyProgress(fp FileProgress, msg ProgressMsg) FileProgress {
	if msg.Pass != fp.CurrentPass {
		log("[UI] pass %d -> %d", fp.CurrentPass, msg.Pass)
		fp.PassStart = time.Now()
		fp.LoudestLevel = levelFloor
		fp.CurrentLevel = 0
	}

	fp.CurrentPass = msg.Pass
	fp.PassName = msg.PassName
	fp.Progress = msg.Progress
	fp.Elapsed = time.Since(fp.PassStart)
	if msg.Measurements != nil {
		fp.Measurements = msg.Measurements
	}

	switch msg.Pass {
	case 1:
		fp.Status = StatusAnalyzing
	case 2:
		fp.Status = StatusProcessing
	}

	// Level 0 marks pass boundaries, not a full-scale block.
	if msg.Level == 0 {
		return fp
	}
	fp.CurrentLevel = msg.Level
	fp.LoudestLevel = max(fp.LoudestLevel, msg.Level)
	if msg.Pass == 2 {
		fp.History = appendHistory(fp.History, msg.Level)
	}
	return fp
}

// appendHistory adds level, dropping the oldest entry once historyLen
// levels are held.
func appendHistory(history []float64, level float64) []float64 {
	if len(history) >= historyLen {
		history = append(history[:0], history[len(history)-historyLen+1:]...)
	}
	return append(history, level)
}
