package logging

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/linuxmatters/agckit/internal/processor"
	"github.com/linuxmatters/agckit/internal/sampleio"
)

// DisplayAnalysisResults prints pass 1 measurements for --analysis-only.
// config should already be adapted to the measurements; a nil config omits
// the kernel section.
func DisplayAnalysisResults(w io.Writer, inputPath string, metadata *sampleio.Metadata, measurements *processor.Measurements, config *processor.Config) {
	rule := strings.Repeat("=", 70)
	fmt.Fprintf(w, "%s\nANALYSIS: %s\n%s\n", rule, filepath.Base(inputPath), rule)

	format := fmt.Sprintf("%s (%s", metadata.Format, metadata.Kind())
	if metadata.BitDepth > 0 {
		format += fmt.Sprintf(", %d-bit", metadata.BitDepth)
	}
	stream := [][2]string{
		{"Duration", formatDuration(time.Duration(metadata.Duration() * float64(time.Second)))},
		{"Format", format + ")"},
		{"Sample Rate", fmt.Sprintf("%d Hz", metadata.SampleRate)},
		{"Samples", fmt.Sprintf("%d", metadata.Samples)},
	}
	for _, f := range stream {
		fmt.Fprintf(w, "%-13s%s\n", f[0]+":", f[1])
	}

	m := measurements
	writeFields(w, "LEVELS", [][2]string{
		{"RMS Level", fmt.Sprintf("%s dBFS (%s)", formatMetricDB(m.RMSLevel, 1), interpretLevel(m.RMSLevel))},
		{"Peak Level", formatMetricDB(m.PeakLevel, 1) + " dBFS"},
		{"Crest Factor", fmt.Sprintf("%s dB (%s)", formatMetric(m.CrestFactor, 1), interpretCrest(m.CrestFactor))},
	})
	writeFields(w, "DYNAMICS", [][2]string{
		{"Quietest 100ms", formatMetricDB(m.RMSTrough, 1) + " dBFS"},
		{"Loudest 100ms", formatMetricDB(m.RMSLoudest, 1) + " dBFS"},
		{"Dynamic Range", fmt.Sprintf("%s dB (%s)", formatMetric(m.DynamicRange, 1), interpretDynamicRange(m.DynamicRange))},
	})

	if config == nil {
		return
	}

	kernel := [][2]string{{"Type", string(config.Kernel)}}
	for _, p := range config.Params() {
		kernel = append(kernel, [2]string{p.Name, p.Value})
	}
	if config.Kernel != processor.KernelPassthrough && config.Reference > 0 && !isDigitalSilence(m.RMSLoudest) {
		need := processor.LinearToDb(float64(config.Reference)) - m.RMSLoudest
		kernel = append(kernel, [2]string{"Gain needed", formatMetricSigned(need, 1) + " dB to bring the loudest passage to reference"})
	}
	writeFields(w, "KERNEL", kernel)
}

// writeFields writes a blank line, the title and one indented field per line.
func writeFields(w io.Writer, title string, fields [][2]string) {
	fmt.Fprintf(w, "\n%s\n", title)
	for _, f := range fields {
		fmt.Fprintf(w, "  %-16s%s\n", f[0]+":", f[1])
	}
}
