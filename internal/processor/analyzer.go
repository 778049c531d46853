package processor

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/linuxmatters/agckit/internal/sampleio"
	"github.com/linuxmatters/agckit/vmath"
)

// analysisBlock is the read size for the measurement pass.
const analysisBlock = 4096

// windowSecs is the length of the short-term RMS windows used to find the
// noise floor and the loudest passage.
const windowSecs = 0.1

// silenceFloor is reported for streams with no energy at all.
const silenceFloor = -120.0

// Measurements describes the level statistics of one stream.
type Measurements struct {
	Samples    int64  `json:"samples"`
	SampleRate int    `json:"sample_rate"`
	Complex    bool   `json:"complex"`
	Format     string `json:"format"`

	RMSLevel     float64 `json:"rms_level"`     // overall RMS (dBFS)
	PeakLevel    float64 `json:"peak_level"`    // largest sample magnitude (dBFS)
	CrestFactor  float64 `json:"crest_factor"`  // peak over RMS (dB)
	RMSTrough    float64 `json:"rms_trough"`    // quietest 100ms window (dBFS), the noise floor
	RMSLoudest   float64 `json:"rms_loudest"`   // loudest 100ms window (dBFS)
	DynamicRange float64 `json:"dynamic_range"` // loudest minus quietest window (dB)
}

// Duration returns the stream length in seconds.
func (m *Measurements) Duration() float64 {
	if m.SampleRate <= 0 {
		return 0
	}
	return float64(m.Samples) / float64(m.SampleRate)
}

// levelMeter accumulates level statistics block by block.
type levelMeter struct {
	count   int64
	sumSq   float64
	peakSq  float64
	winSize int
	winN    int
	winSum  float64
	minWin  float64
	maxWin  float64
	windows int

	lastBlock float64 // RMS of the most recent block (dBFS)
}

func newLevelMeter(sampleRate int) *levelMeter {
	win := int(windowSecs * float64(sampleRate))
	return &levelMeter{winSize: max(win, 1), minWin: math.Inf(1)}
}

// meterAdd folds buf into the meter.
func meterAdd[T vmath.Sample](m *levelMeter, buf []T) {
	var blockSum float64
	switch b := any(buf).(type) {
	case []float32:
		for _, v := range b {
			blockSum += m.sample(float64(v) * float64(v))
		}
	case []complex64:
		for _, v := range b {
			re, im := float64(real(v)), float64(imag(v))
			blockSum += m.sample(re*re + im*im)
		}
	}
	if len(buf) > 0 {
		m.lastBlock = powerToDb(blockSum / float64(len(buf)))
	}
}

func (m *levelMeter) sample(p float64) float64 {
	// Running totals
	m.count++
	m.sumSq += p
	if p > m.peakSq {
		m.peakSq = p
	}
	// Current 100ms window
	m.winSum += p
	m.winN++
	if m.winN == m.winSize {
		m.closeWindow()
	}
	return p
}

func (m *levelMeter) closeWindow() {
	mean := m.winSum / float64(m.winN)
	m.minWin = math.Min(m.minWin, mean)
	m.maxWin = math.Max(m.maxWin, mean)
	m.windows++
	m.winSum, m.winN = 0, 0
}

// displayLevel returns the last block's level clamped to the meter range
// the UI shows.
func (m *levelMeter) displayLevel() float64 {
	return math.Max(-60, math.Min(0, m.lastBlock))
}

// measurements finalises the statistics. A trailing partial window only
// counts when the stream is shorter than a single window.
func (m *levelMeter) measurements(meta *sampleio.Metadata) *Measurements {
	if m.windows == 0 && m.winN > 0 {
		m.closeWindow()
	}

	out := &Measurements{
		Samples:    m.count,
		SampleRate: meta.SampleRate,
		Complex:    meta.Complex,
		Format:     meta.Format.String(),
		RMSLevel:   silenceFloor,
		PeakLevel:  silenceFloor,
		RMSTrough:  silenceFloor,
		RMSLoudest: silenceFloor,
	}
	if m.count == 0 {
		return out
	}

	// Whole-stream levels
	out.RMSLevel = powerToDb(m.sumSq / float64(m.count))
	out.PeakLevel = powerToDb(m.peakSq)
	out.CrestFactor = out.PeakLevel - out.RMSLevel
	// Short-term window extremes
	if m.windows > 0 {
		out.RMSTrough = powerToDb(m.minWin)
		out.RMSLoudest = powerToDb(m.maxWin)
		out.DynamicRange = out.RMSLoudest - out.RMSTrough
	}
	return out
}

func powerToDb(p float64) float64 {
	if p <= 0 {
		return silenceFloor
	}
	return math.Max(silenceFloor, 10*math.Log10(p))
}

// AnalyzeFile performs pass 1: it reads the whole stream and measures its
// levels. The progress callback, if set, is called after every block.
func AnalyzeFile(filename string, progressCallback ProgressFunc) (*Measurements, error) {
	reader, meta, err := sampleio.Open(filename)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	if meta.Complex {
		return analyze[complex64](reader, meta, progressCallback)
	}
	return analyze[float32](reader, meta, progressCallback)
}

func analyze[T vmath.Sample](reader *sampleio.Reader, meta *sampleio.Metadata, progressCallback ProgressFunc) (*Measurements, error) {
	meter := newLevelMeter(meta.SampleRate)
	buf := make([]T, analysisBlock)

	for {
		n, err := sampleio.ReadBlock(reader, buf)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read samples: %w", err)
		}

		meterAdd(meter, buf[:n])
		if progressCallback != nil {
			progressCallback(1, passAnalyzing, progress(meter.count, meta.Samples), meter.displayLevel(), nil)
		}
	}

	return meter.measurements(meta), nil
}

func progress(done, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Min(1, float64(done)/float64(total))
}
