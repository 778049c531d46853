// Package processor runs a gain kernel over a sample file in two passes:
// pass 1 measures the input, pass 2 streams it through the kernel in blocks
// and writes the result next to the input.
package processor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/linuxmatters/agckit/analog"
	"github.com/linuxmatters/agckit/internal/sampleio"
	"github.com/linuxmatters/agckit/kernel"
	"github.com/linuxmatters/agckit/vmath"
)

// Pass names reported through the progress callback.
const (
	passAnalyzing  = "Analyzing"
	passProcessing = "Processing"
)

// ProgressFunc receives progress updates. progress runs from 0 to 1 within
// each pass and level is the latest block's RMS in dBFS, clamped to
// [-60, 0]. measurements is nil until pass 1 has finished.
type ProgressFunc func(pass int, passName string, progress float64, level float64, measurements *Measurements)

// GainPoint is the kernel gain after the block ending at Sample.
type GainPoint struct {
	Sample int64   `json:"sample"`
	Gain   float32 `json:"gain"`
}

// Result contains the outcome of processing one file.
type Result struct {
	InputPath  string
	OutputPath string
	Config     *Config

	Input  *Measurements
	Output *Measurements

	Dispatch string // vector math path the kernel ran on
	Blocks   int

	GainTrace []GainPoint
	// TransitionSample is the stream position at which a calibrated kernel
	// left warmup, or -1.
	TransitionSample int64
	// InitialGain is the calibration estimate, when the kernel has one.
	InitialGain    float32
	HasInitialGain bool

	AnalysisTime   time.Duration
	ProcessingTime time.Duration
}

// FinalGain returns the last recorded gain, or 1 if none was recorded.
func (r *Result) FinalGain() float32 {
	if len(r.GainTrace) == 0 {
		return 1
	}
	return r.GainTrace[len(r.GainTrace)-1].Gain
}

// RealTimeFactor returns how many seconds of stream were processed per
// second of wall time in pass 2.
func (r *Result) RealTimeFactor() float64 {
	if r.ProcessingTime <= 0 || r.Input == nil {
		return 0
	}
	return r.Input.Duration() / r.ProcessingTime.Seconds()
}

// ProcessFile performs complete two-pass processing:
//   - Pass 1: measure input levels (AnalyzeFile)
//   - Pass 2: run the configured kernel block by block and write the output
//
// The output file is named <basename>-agc.<ext> in the same directory as the
// input. config is adapted in place when config.Adaptive is set.
func ProcessFile(inputPath string, config *Config, progressCallback ProgressFunc) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if progressCallback != nil {
		progressCallback(1, passAnalyzing, 0.0, 0.0, nil)
	}

	// Pass 1: measure the input
	start := time.Now()
	input, err := AnalyzeFile(inputPath, progressCallback)
	if err != nil {
		return nil, fmt.Errorf("pass 1 failed: %w", err)
	}
	analysisTime := time.Since(start)

	if progressCallback != nil {
		progressCallback(1, passAnalyzing, 1.0, 0.0, input)
	}

	// Tune the kernel to the measurements when adaptive mode is on
	AdaptConfig(config, input)

	if progressCallback != nil {
		progressCallback(2, passProcessing, 0.0, 0.0, input)
	}

	outputPath := generateOutputPath(inputPath)
	result := &Result{
		InputPath:        inputPath,
		OutputPath:       outputPath,
		Config:           config,
		Input:            input,
		TransitionSample: -1,
		AnalysisTime:     analysisTime,
	}

	// Pass 2: run the kernel and write the output
	start = time.Now()
	if input.Complex {
		err = processStream[complex64](inputPath, outputPath, config, progressCallback, result)
	} else {
		err = processStream[float32](inputPath, outputPath, config, progressCallback, result)
	}
	if err != nil {
		return nil, fmt.Errorf("pass 2 failed: %w", err)
	}
	result.ProcessingTime = time.Since(start)

	if progressCallback != nil {
		progressCallback(2, passProcessing, 1.0, 0.0, input)
	}

	return result, nil
}

// processStream is pass 2 for sample type T.
func processStream[T vmath.Sample](inputPath, outputPath string, config *Config, progressCallback ProgressFunc, result *Result) error {
	k, err := NewKernel[T](config)
	if err != nil {
		return err
	}

	reader, meta, err := sampleio.Open(inputPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	writer, err := sampleio.Create(outputPath, *meta)
	if err != nil {
		return err
	}
	// A failed pass must not leave a partial output behind.
	discard := func(err error) error {
		writer.Close()
		os.Remove(outputPath)
		return err
	}

	// Record which vector math path the kernel runs on
	result.Dispatch = vmath.CurrentName()
	if config.ForceScalar {
		result.Dispatch = vmath.LevelScalar.String()
	}

	total := meta.Samples
	sizer := newBlockSizer(config)
	meter := newLevelMeter(meta.SampleRate)
	buf := vmath.AllocSamples[T](config.BlockSize)
	observe := newObserver(k)

	var pos int64
	for {
		n, err := sampleio.ReadBlock(reader, buf[:sizer.next(total-pos)])
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return discard(fmt.Errorf("failed to read samples: %w", err))
		}

		// Apply gain in place, then write
		block := buf[:n]
		k.ProcessInPlace(block)
		if err := sampleio.WriteBlock(writer, block); err != nil {
			return discard(err)
		}

		// Track gain and output level
		pos += int64(n)
		result.Blocks++
		observe(result, pos)
		meterAdd(meter, block)

		if progressCallback != nil {
			progressCallback(2, passProcessing, progress(pos, total), meter.displayLevel(), result.Input)
		}
	}

	if err := writer.Close(); err != nil {
		return discard(fmt.Errorf("failed to finalise output: %w", err))
	}

	result.Output = meter.measurements(meta)
	return nil
}

// newObserver returns a function that records the kernel's gain and any
// warmup to tracking transition after each block.
func newObserver[T vmath.Sample](k kernel.Kernel[T]) func(r *Result, pos int64) {
	gk, hasGain := k.(interface{ Gain() float32 })
	ck, calibrated := k.(*analog.Calibrated[T])

	return func(r *Result, pos int64) {
		if hasGain {
			r.GainTrace = append(r.GainTrace, GainPoint{Sample: pos, Gain: gk.Gain()})
		}
		if !calibrated || r.HasInitialGain {
			return
		}
		if g, err := ck.InitialGain(); err == nil {
			r.InitialGain = g
			r.HasInitialGain = true
			done, _ := ck.WarmupProgress()
			// The buffer filled somewhere in this block; done is its length.
			r.TransitionSample = int64(done)
		}
	}
}

// generateOutputPath creates the output filename from the input filename.
// Example: /path/to/capture.cf32 → /path/to/capture-agc.cf32
func generateOutputPath(inputPath string) string {
	dir := filepath.Dir(inputPath)
	filename := filepath.Base(inputPath)
	ext := filepath.Ext(filename)
	nameWithoutExt := strings.TrimSuffix(filename, ext)

	return filepath.Join(dir, nameWithoutExt+"-agc"+ext)
}
