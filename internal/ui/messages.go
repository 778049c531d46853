package ui

import (
	"github.com/linuxmatters/agckit/internal/processor"
)

// ProgressMsg represents a progress update from the processor
type ProgressMsg struct {
	Pass         int     // 1 or 2
	PassName     string  // "Analyzing" or "Processing"
	Progress     float64 // 0.0 to 1.0
	Level        float64 // Latest block level in dBFS
	Measurements *processor.Measurements
}

// FileStartMsg indicates a new file has started processing
type FileStartMsg struct {
	FileIndex int
	FileName  string
}

// FileCompleteMsg indicates a file has finished processing
type FileCompleteMsg struct {
	FileIndex   int
	Kernel      string
	InputRMS    float64 // dBFS
	OutputRMS   float64 // dBFS
	FinalGainDB float64
	Tips        int // tuning tips raised for the run
	OutputPath  string
	Error       error
}

// AllCompleteMsg indicates all files have been processed
type AllCompleteMsg struct{}
