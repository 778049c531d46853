// Package logging writes processing reports and console summaries.
// This file holds the aligned Input → Output comparison table.

package logging

import (
	"fmt"
	"math"
	"strings"
)

// MetricRow is one row of a comparison table. Values are pre-formatted so a
// row can mix precisions.
type MetricRow struct {
	Label          string   // e.g. "RMS Level"
	Values         []string // one per column
	Unit           string   // e.g. "dBFS", "" for unitless
	Interpretation string   // shown only if non-empty
}

// MetricTable formats aligned metric columns.
type MetricTable struct {
	Headers []string
	Rows    []MetricRow
}

// String renders the table. Labels are left-aligned, values right-aligned,
// units follow the last value and the interpretation column only appears
// when some row has one.
func (t *MetricTable) String() string {
	if len(t.Rows) == 0 {
		return ""
	}

	// Calculate column widths
	labelWidth, unitWidth := 0, 0
	hasInterpretation := false
	valueWidths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		valueWidths[i] = len(h)
	}
	for _, row := range t.Rows {
		labelWidth = max(labelWidth, len(row.Label))
		unitWidth = max(unitWidth, len(row.Unit))
		hasInterpretation = hasInterpretation || row.Interpretation != ""
		for i, v := range row.Values {
			if i < len(valueWidths) {
				valueWidths[i] = max(valueWidths[i], len(v))
			}
		}
	}

	var sb strings.Builder

	// Header row
	sb.WriteString(strings.Repeat(" ", labelWidth+2))
	for i, h := range t.Headers {
		fmt.Fprintf(&sb, "%*s  ", valueWidths[i], h)
	}
	if unitWidth > 0 {
		sb.WriteString(strings.Repeat(" ", unitWidth+1))
	}
	if hasInterpretation {
		sb.WriteString("Interpretation")
	}
	sb.WriteString("\n")

	// Data rows
	for _, row := range t.Rows {
		fmt.Fprintf(&sb, "%-*s  ", labelWidth, row.Label)
		for i := range t.Headers {
			v := MissingValue
			if i < len(row.Values) && row.Values[i] != "" {
				v = row.Values[i]
			}
			fmt.Fprintf(&sb, "%*s  ", valueWidths[i], v)
		}
		if unitWidth > 0 {
			fmt.Fprintf(&sb, "%-*s ", unitWidth, row.Unit)
		}
		if hasInterpretation {
			sb.WriteString(row.Interpretation)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// MissingValue is the placeholder for unavailable measurements.
const MissingValue = "-"

// DigitalSilenceThreshold is the level at or below which a stream is
// treated as digital silence.
const DigitalSilenceThreshold = -120.0

func isDigitalSilence(value float64) bool {
	return math.IsInf(value, -1) || value <= DigitalSilenceThreshold
}

// formatMetric formats a value to the given precision. Tiny non-zero values
// switch to scientific notation and NaN/Inf become MissingValue.
func formatMetric(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return MissingValue
	}
	if value != 0 && math.Abs(value) < 0.0001 {
		return fmt.Sprintf("%.2e", value)
	}
	return fmt.Sprintf("%.*f", decimals, value)
}

// formatMetricDB formats a dB value, showing "< -120" for digital silence.
func formatMetricDB(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 1) {
		return MissingValue
	}
	if isDigitalSilence(value) {
		return "< -120"
	}
	return fmt.Sprintf("%.*f", decimals, value)
}

// formatMetricSigned formats a value with an explicit sign, for gain changes.
func formatMetricSigned(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return MissingValue
	}
	return fmt.Sprintf("%+.*f", decimals, value)
}

// NewMetricTable creates a table with Input and Output columns.
func NewMetricTable() *MetricTable {
	return &MetricTable{Headers: []string{"Input", "Output"}}
}

// AddRow adds a row of pre-formatted values.
func (t *MetricTable) AddRow(label string, values []string, unit string, interpretation string) {
	t.Rows = append(t.Rows, MetricRow{
		Label:          label,
		Values:         values,
		Unit:           unit,
		Interpretation: interpretation,
	})
}

// AddDBRow adds a row of dB levels. Pass math.NaN() for a missing value.
func (t *MetricTable) AddDBRow(label string, input, output float64, unit string, interpretation string) {
	t.AddRow(label, []string{formatMetricDB(input, 1), formatMetricDB(output, 1)}, unit, interpretation)
}
