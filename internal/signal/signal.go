// Package signal synthesises deterministic test streams: a tone with white
// noise, mains hum, a silent gap and level steps. Level steps and the gap
// are what make a gain loop's attack and decay visible.
package signal

import (
	"errors"
	"fmt"
	"math"

	"github.com/linuxmatters/agckit/internal/mains"
	"github.com/linuxmatters/agckit/vmath"
)

// ErrInvalidOptions wraps every Options validation failure.
var ErrInvalidOptions = errors.New("signal: invalid options")

// Step changes the signal level from At seconds onwards.
type Step struct {
	At     float64 // seconds from the start
	GainDB float64 // level offset applied to everything but the noise floor
}

// Options configures the generated stream. Levels are in dBFS; a level of 0
// or above disables that component.
type Options struct {
	DurationSecs float64
	SampleRate   int
	Complex      bool // selects the stream type for callers; Generate follows T

	ToneFreq  float64 // Hz, 0 = no tone
	ToneLevel float64

	NoiseLevel float64

	HumFreq      float64 // Hz, 0 = local mains frequency
	HumLevel     float64
	HumHarmonics int

	SilenceGap struct {
		Start    float64
		Duration float64
	}

	Steps []Step
	Seed  uint32
}

// DefaultOptions returns a five second 48kHz real stream: a -23dBFS 1kHz
// tone over a -60dBFS noise floor that drops 20dB at 2s and recovers at 3.5s.
func DefaultOptions() Options {
	return Options{
		DurationSecs: 5,
		SampleRate:   48000,
		ToneFreq:     1000,
		ToneLevel:    -23,
		NoiseLevel:   -60,
		HumLevel:     0,
		HumHarmonics: 3,
		Steps: []Step{
			{At: 2, GainDB: -20},
			{At: 3.5, GainDB: 0},
		},
		Seed: 12345,
	}
}

// Validate reports options that cannot produce a stream.
func (o *Options) Validate() error {
	switch {
	case o.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %d", ErrInvalidOptions, o.SampleRate)
	case o.DurationSecs <= 0:
		return fmt.Errorf("%w: duration %gs", ErrInvalidOptions, o.DurationSecs)
	case o.ToneFreq < 0 || o.ToneFreq >= float64(o.SampleRate)/2:
		return fmt.Errorf("%w: tone %gHz outside [0, %dHz)", ErrInvalidOptions, o.ToneFreq, o.SampleRate/2)
	case o.HumFreq < 0:
		return fmt.Errorf("%w: hum %gHz", ErrInvalidOptions, o.HumFreq)
	case o.SilenceGap.Duration < 0:
		return fmt.Errorf("%w: negative silence gap", ErrInvalidOptions)
	}
	for i := 1; i < len(o.Steps); i++ {
		if o.Steps[i].At < o.Steps[i-1].At {
			return fmt.Errorf("%w: level steps out of order at %gs", ErrInvalidOptions, o.Steps[i].At)
		}
	}
	return nil
}

// Samples returns the stream length.
func (o *Options) Samples() int {
	return int(o.DurationSecs * float64(o.SampleRate))
}

// DBToLinear converts a dBFS level to linear amplitude.
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// Generate synthesises the stream for T. For complex streams the tone and
// hum are analytic (positive frequency only) and the noise is independent
// on I and Q.
func Generate[T vmath.Sample](o Options) ([]T, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	out := make([]T, o.Samples())
	_, isComplex := any(out).([]complex64)
	g := newGenerator(o, isComplex)

	switch s := any(out).(type) {
	case []float32:
		for i := range s {
			re, _ := g.next(i)
			s[i] = float32(re)
		}
	case []complex64:
		for i := range s {
			re, im := g.next(i)
			s[i] = complex(float32(re), float32(im))
		}
	}
	return out, nil
}

type generator struct {
	opts    Options
	complex bool

	toneAmp  float64
	noiseAmp float64
	humAmp   float64
	hum      []float64

	gapStart, gapEnd int
	stepAt           []int
	stepGain         []float64

	rng uint32
}

func newGenerator(o Options, isComplex bool) *generator {
	g := &generator{opts: o, complex: isComplex, rng: o.Seed}
	if g.rng == 0 {
		g.rng = 12345
	}

	rate := float64(o.SampleRate)
	if o.ToneFreq > 0 && o.ToneLevel < 0 {
		g.toneAmp = DBToLinear(o.ToneLevel)
	}
	if o.NoiseLevel < 0 {
		g.noiseAmp = DBToLinear(o.NoiseLevel)
	}
	if o.HumLevel < 0 {
		g.humAmp = DBToLinear(o.HumLevel)
		freq := o.HumFreq
		if freq == 0 {
			freq = float64(mains.Frequency())
		}
		harmonics := max(o.HumHarmonics, 1)
		g.hum = mains.Harmonics(freq, harmonics, rate/2)
	}

	if o.SilenceGap.Duration > 0 {
		g.gapStart = int(o.SilenceGap.Start * rate)
		g.gapEnd = int((o.SilenceGap.Start + o.SilenceGap.Duration) * rate)
	}
	for _, s := range o.Steps {
		g.stepAt = append(g.stepAt, int(s.At*rate))
		g.stepGain = append(g.stepGain, DBToLinear(s.GainDB))
	}
	return g
}

// noise draws from a Numerical Recipes LCG mapped to [-1, 1].
func (g *generator) noise() float64 {
	g.rng = g.rng*1664525 + 1013904223
	return float64(g.rng)/float64(math.MaxUint32)*2 - 1
}

// level returns the step gain in force at sample i.
func (g *generator) level(i int) float64 {
	gain := 1.0
	for k, at := range g.stepAt {
		if i < at {
			break
		}
		gain = g.stepGain[k]
	}
	return gain
}

func (g *generator) next(i int) (re, im float64) {
	// Noise is drawn for every sample so the sequence does not depend on
	// where the gap falls.
	nre, nim := g.noise(), 0.0
	if g.complex {
		nim = g.noise()
	}
	if i >= g.gapStart && i < g.gapEnd {
		return 0, 0
	}

	t := float64(i) / float64(g.opts.SampleRate)
	if g.toneAmp > 0 {
		phase := 2 * math.Pi * g.opts.ToneFreq * t
		re += g.toneAmp * math.Cos(phase)
		im += g.toneAmp * math.Sin(phase)
	}
	for k, f := range g.hum {
		// Harmonics fall off by 6dB each.
		amp := g.humAmp / float64(int(1)<<k)
		phase := 2 * math.Pi * f * t
		re += amp * math.Cos(phase)
		im += amp * math.Sin(phase)
	}

	gain := g.level(i)
	re = clamp(re*gain+g.noiseAmp*nre, -1, 1)
	im = clamp(im*gain+g.noiseAmp*nim, -1, 1)
	if !g.complex {
		im = 0
	}
	return re, im
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
