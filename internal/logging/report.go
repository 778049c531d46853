package logging

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/linuxmatters/agckit/internal/processor"
)

// traceRows is the number of evenly spaced gain trace points shown in a report.
const traceRows = 12

// =============================================================================
// Measurement Interpretation
// =============================================================================

// interpretLevel describes an RMS level relative to full scale.
func interpretLevel(db float64) string {
	switch {
	case isDigitalSilence(db):
		return "digital silence"
	case db < -60:
		return "near silence"
	case db < -40:
		return "very quiet"
	case db < -25:
		return "quiet"
	case db < -12:
		return "nominal"
	default:
		return "hot"
	}
}

// interpretPeak flags peaks that will clip once converted to fixed point.
func interpretPeak(db float64) string {
	switch {
	case isDigitalSilence(db):
		return ""
	case db > -0.1:
		return "clipping"
	case db > -1:
		return "little headroom"
	default:
		return ""
	}
}

// interpretCrest describes the peak-to-RMS ratio in dB.
//
// Typical values:
//   - Pure tone: 3 dB
//   - Gaussian noise: 10-12 dB
//   - Speech: 12-20 dB
//   - Impulsive or bursty signals: >20 dB
func interpretCrest(crest float64) string {
	switch {
	case crest < 4:
		return "steady, tone-like"
	case crest < 12:
		return "noise-like"
	case crest < 20:
		return "speech-like dynamics"
	default:
		return "impulsive, bursty"
	}
}

// interpretDynamicRange describes the spread between the loudest and
// quietest 100 ms windows. A working loop narrows it.
func interpretDynamicRange(dr float64) string {
	switch {
	case dr < 3:
		return "flat, tightly controlled"
	case dr < 10:
		return "moderate variation"
	case dr < 30:
		return "wide variation"
	default:
		return "gaps or long silences present"
	}
}

// =============================================================================
// Report Section Formatting Helpers
// =============================================================================

// writeSection writes a section header with title and dashed underline.
// The underline length matches the title length.
func writeSection(w io.Writer, title string) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("-", len(title)))
}

// ReportData contains all the information needed to generate a processing report
type ReportData struct {
	InputPath  string
	OutputPath string
	StartTime  time.Time
	EndTime    time.Time
	Result     *processor.Result
}

// ReportPath returns the report filename for an output file:
// capture-agc.cf32 → capture-agc.log
func ReportPath(outputPath string) string {
	return strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".log"
}

// GenerateReport creates a processing report and saves it alongside the
// output file.
//
// Report structure:
// 1. Header - file info and timestamp
// 2. Processing Summary - pass timings
// 3. Kernel - parameters, vector math path, adaptive adjustments
// 4. Level Measurements - Input/Output table
// 5. Gain Trajectory - how the loop moved
// 6. Tuning Tips
func GenerateReport(data ReportData) error {
	f, err := os.Create(ReportPath(data.OutputPath))
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer f.Close()

	if err := WriteReport(f, data); err != nil {
		return err
	}
	return f.Close()
}

// WriteReport writes the report body to w.
func WriteReport(w io.Writer, data ReportData) error {
	if data.Result == nil {
		return fmt.Errorf("no result to report for %s", data.InputPath)
	}

	writeReportHeader(w, data)
	writeProcessingSummary(w, data)
	writeKernelSection(w, data.Result)
	writeLevelTable(w, data.Result.Input, data.Result.Output)
	writeGainTrajectory(w, data.Result)
	writeTips(w, GenerateTips(data.Result))
	return nil
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}

	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60

	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	hours := minutes / 60
	minutes = minutes % 60
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}

// streamKind returns a human-readable stream type
func streamKind(m *processor.Measurements) string {
	if m.Complex {
		return "complex (I/Q)"
	}
	return "real"
}

// =============================================================================
// Report Section Writers
// =============================================================================

func writeReportHeader(w io.Writer, data ReportData) {
	fmt.Fprintln(w, "Agckit Processing Report")
	fmt.Fprintln(w, "========================")
	fmt.Fprintf(w, "File: %s\n", filepath.Base(data.InputPath))
	fmt.Fprintf(w, "Output: %s\n", filepath.Base(data.OutputPath))
	fmt.Fprintf(w, "Processed: %s\n", data.EndTime.Format("2006-01-02 15:04:05 MST"))
	if in := data.Result.Input; in != nil {
		fmt.Fprintf(w, "Duration: %s\n", formatDuration(time.Duration(in.Duration()*float64(time.Second))))
		fmt.Fprintf(w, "Stream: %s, %s, %d Hz, %d samples\n", in.Format, streamKind(in), in.SampleRate, in.Samples)
	}
	fmt.Fprintln(w, "")
}

func writeProcessingSummary(w io.Writer, data ReportData) {
	writeSection(w, "Processing Summary")

	r := data.Result
	fmt.Fprintf(w, "Pass 1 (Analysis):    %s\n", formatDuration(r.AnalysisTime))
	fmt.Fprintf(w, "Pass 2 (Processing):  %s", formatDuration(r.ProcessingTime))
	if rtf := r.RealTimeFactor(); rtf > 0 {
		fmt.Fprintf(w, " (%.0fx real-time)", rtf)
	}
	fmt.Fprintln(w, "")

	if !data.StartTime.IsZero() && !data.EndTime.IsZero() {
		fmt.Fprintf(w, "Total:                %s\n", formatDuration(data.EndTime.Sub(data.StartTime)))
	}
	fmt.Fprintf(w, "Blocks:               %d", r.Blocks)
	if r.Config != nil && r.Config.BlockJitter {
		fmt.Fprintf(w, " (jittered, max %d, seed %d)", r.Config.BlockSize, r.Config.Seed)
	} else if r.Config != nil {
		fmt.Fprintf(w, " (fixed, %d samples)", r.Config.BlockSize)
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "")
}

func writeKernelSection(w io.Writer, r *processor.Result) {
	cfg := r.Config
	if cfg == nil {
		return
	}
	writeSection(w, "Kernel")

	fmt.Fprintf(w, "Type:        %s\n", cfg.Kernel)
	fmt.Fprintf(w, "Vector math: %s\n", r.Dispatch)
	for _, p := range cfg.Params() {
		fmt.Fprintf(w, "%-12s %s\n", p.Name+":", p.Value)
	}
	if cfg.Adaptive {
		fmt.Fprintln(w, "Adaptive:    max gain and warmup tuned from pass 1")
	}
	fmt.Fprintln(w, "")
}

func writeLevelTable(w io.Writer, input, output *processor.Measurements) {
	writeSection(w, "Level Measurements")

	pick := func(m *processor.Measurements, get func(*processor.Measurements) float64) float64 {
		if m == nil {
			return math.NaN()
		}
		return get(m)
	}
	interpret := func(v float64, fn func(float64) string) string {
		if math.IsNaN(v) {
			return ""
		}
		return fn(v)
	}

	table := NewMetricTable()

	inRMS := pick(input, func(m *processor.Measurements) float64 { return m.RMSLevel })
	outRMS := pick(output, func(m *processor.Measurements) float64 { return m.RMSLevel })
	table.AddDBRow("RMS Level", inRMS, outRMS, "dBFS", interpret(outRMS, interpretLevel))

	inPeak := pick(input, func(m *processor.Measurements) float64 { return m.PeakLevel })
	outPeak := pick(output, func(m *processor.Measurements) float64 { return m.PeakLevel })
	table.AddDBRow("Peak Level", inPeak, outPeak, "dBFS", interpret(outPeak, interpretPeak))

	inCrest := pick(input, func(m *processor.Measurements) float64 { return m.CrestFactor })
	outCrest := pick(output, func(m *processor.Measurements) float64 { return m.CrestFactor })
	table.AddRow("Crest Factor", []string{formatMetric(inCrest, 1), formatMetric(outCrest, 1)}, "dB",
		interpret(outCrest, interpretCrest))

	table.AddDBRow("Quietest 100ms",
		pick(input, func(m *processor.Measurements) float64 { return m.RMSTrough }),
		pick(output, func(m *processor.Measurements) float64 { return m.RMSTrough }),
		"dBFS", "")
	table.AddDBRow("Loudest 100ms",
		pick(input, func(m *processor.Measurements) float64 { return m.RMSLoudest }),
		pick(output, func(m *processor.Measurements) float64 { return m.RMSLoudest }),
		"dBFS", "")

	inDR := pick(input, func(m *processor.Measurements) float64 { return m.DynamicRange })
	outDR := pick(output, func(m *processor.Measurements) float64 { return m.DynamicRange })
	table.AddRow("Dynamic Range", []string{formatMetric(inDR, 1), formatMetric(outDR, 1)}, "dB",
		interpret(outDR, interpretDynamicRange))

	fmt.Fprint(w, table.String())

	if input != nil && output != nil && !isDigitalSilence(input.RMSLevel) {
		fmt.Fprintf(w, "Level change: %s dB\n", formatMetricSigned(output.RMSLevel-input.RMSLevel, 1))
	}
	fmt.Fprintln(w, "")
}

// writeGainTrajectory summarises the gain trace: its range, the calibrated
// transition and a handful of evenly spaced points.
func writeGainTrajectory(w io.Writer, r *processor.Result) {
	writeSection(w, "Gain Trajectory")

	if len(r.GainTrace) == 0 {
		fmt.Fprintln(w, "Unity gain (stateless kernel)")
		fmt.Fprintln(w, "")
		return
	}

	s := newGainStats(r)
	rate := 0
	if r.Input != nil {
		rate = r.Input.SampleRate
	}

	if r.HasInitialGain {
		fmt.Fprintf(w, "Calibrated gain: %s\n", gainDB(r.InitialGain))
		fmt.Fprintf(w, "Transition:      sample %d (%s)\n", r.TransitionSample, sampleTime(r.TransitionSample, rate))
	} else if r.Config != nil && r.Config.Kernel == processor.KernelCalibrated {
		fmt.Fprintln(w, "Transition:      none, stream ended during warmup")
	}
	fmt.Fprintf(w, "Minimum:         %s\n", gainDB(s.min))
	fmt.Fprintf(w, "Maximum:         %s\n", gainDB(s.max))
	fmt.Fprintf(w, "Final:           %s\n", gainDB(r.FinalGain()))
	if s.atCeiling > 0 {
		fmt.Fprintf(w, "At ceiling:      %.0f%% of blocks\n", s.atCeiling*100)
	}
	fmt.Fprintln(w, "")

	fmt.Fprintf(w, "%12s  %10s  %10s\n", "Sample", "Time", "Gain")
	for _, p := range sampleTrace(r.GainTrace, traceRows) {
		fmt.Fprintf(w, "%12d  %10s  %10s\n", p.Sample, sampleTime(p.Sample, rate), gainDB(p.Gain))
	}
	fmt.Fprintln(w, "")
}

func writeTips(w io.Writer, tips []Tip) {
	if len(tips) == 0 {
		return
	}
	writeSection(w, "Tuning Tips")
	for _, tip := range tips {
		fmt.Fprintf(w, "- %s\n", wrapText(tip.Message, 76, "  "))
	}
	fmt.Fprintln(w, "")
}

// sampleTrace picks up to n points spread evenly over trace, always
// including the last.
func sampleTrace(trace []processor.GainPoint, n int) []processor.GainPoint {
	if len(trace) <= n {
		return trace
	}
	out := make([]processor.GainPoint, 0, n)
	for i := range n {
		out = append(out, trace[(i+1)*len(trace)/n-1])
	}
	return out
}

// gainDB formats a linear gain as dB, with the linear value when it is
// negative and has no dB form.
func gainDB(g float32) string {
	if g < 0 {
		return fmt.Sprintf("%.4g (inverted)", g)
	}
	if g == 0 {
		return "muted"
	}
	return fmt.Sprintf("%+.1f dB", processor.LinearToDb(float64(g)))
}

func sampleTime(sample int64, rate int) string {
	if rate <= 0 {
		return MissingValue
	}
	return fmt.Sprintf("%.3fs", float64(sample)/float64(rate))
}
