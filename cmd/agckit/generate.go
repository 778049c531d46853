package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/linuxmatters/agckit/internal/cli"
	"github.com/linuxmatters/agckit/internal/mains"
	"github.com/linuxmatters/agckit/internal/sampleio"
	"github.com/linuxmatters/agckit/internal/signal"
	"github.com/linuxmatters/agckit/vmath"
)

// generateCmd writes a synthetic stream for exercising the kernels.
type generateCmd struct {
	Output string `arg:"" name:"output" help:"Output file (.wav, .f32, .cf32)" type:"path"`

	Duration   float64  `default:"5" help:"Length in seconds"`
	SampleRate int      `name:"sample-rate" default:"48000" help:"Sample rate in Hz"`
	IQ         bool     `name:"iq" help:"Write a complex I/Q stream (stereo WAV); implied by .cf32"`
	ToneHz     float64  `name:"tone-hz" default:"1000" help:"Tone frequency, 0 for none"`
	ToneDB     float64  `name:"tone-db" default:"-23" help:"Tone level in dBFS"`
	NoiseDB    float64  `name:"noise-db" default:"-60" help:"White noise level in dBFS, 0 for none"`
	HumHz      float64  `name:"hum-hz" default:"0" help:"Hum frequency, 0 for the local mains frequency"`
	HumDB      float64  `name:"hum-db" default:"0" help:"Hum level in dBFS, 0 for none"`
	Harmonics  int      `default:"3" help:"Number of hum harmonics"`
	GapStart   float64  `name:"gap-start" default:"0" help:"Start of a silent gap in seconds"`
	GapLength  float64  `name:"gap-length" default:"0" help:"Length of the silent gap in seconds, 0 for none"`
	Steps      []string `name:"step" default:"2:-20,3.5:0" help:"Level steps as SECONDS:DB"`
	Seed       uint32   `default:"12345" help:"Noise seed"`
}

// options builds the signal options from the flags.
func (c *generateCmd) options() (signal.Options, error) {
	o := signal.DefaultOptions()
	o.DurationSecs = c.Duration
	o.SampleRate = c.SampleRate
	o.ToneFreq = c.ToneHz
	o.ToneLevel = c.ToneDB
	o.NoiseLevel = c.NoiseDB
	o.HumFreq = c.HumHz
	o.HumLevel = c.HumDB
	o.HumHarmonics = c.Harmonics
	o.SilenceGap.Start = c.GapStart
	o.SilenceGap.Duration = c.GapLength
	o.Seed = c.Seed

	steps, err := parseSteps(c.Steps)
	if err != nil {
		return o, err
	}
	o.Steps = steps

	format, err := sampleio.FormatFor(c.Output)
	if err != nil {
		return o, fmt.Errorf("%w: %s", err, c.Output)
	}
	switch {
	case format == sampleio.FormatCF32:
		o.Complex = true
	case format == sampleio.FormatF32 && c.IQ:
		return o, fmt.Errorf("%w: .f32 holds real samples, use .cf32 or .wav for I/Q", sampleio.ErrSampleType)
	default:
		o.Complex = c.IQ
	}

	return o, o.Validate()
}

// parseSteps parses "SECONDS:DB" pairs.
func parseSteps(specs []string) ([]signal.Step, error) {
	var steps []signal.Step
	for _, s := range specs {
		if s == "" {
			continue
		}
		at, db, ok := strings.Cut(s, ":")
		if !ok {
			return nil, fmt.Errorf("invalid step %q: want SECONDS:DB", s)
		}
		secs, err := strconv.ParseFloat(strings.TrimSpace(at), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid step time %q: %w", at, err)
		}
		gain, err := strconv.ParseFloat(strings.TrimSpace(db), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid step level %q: %w", db, err)
		}
		steps = append(steps, signal.Step{At: secs, GainDB: gain})
	}
	return steps, nil
}

func (c *generateCmd) Run() error {
	o, err := c.options()
	if err != nil {
		return err
	}

	if o.Complex {
		err = writeSignal[complex64](c.Output, o)
	} else {
		err = writeSignal[float32](c.Output, o)
	}
	if err != nil {
		return err
	}

	kind := "real"
	if o.Complex {
		kind = "complex"
	}
	const width = 12
	cli.PrintTitle(os.Stdout, "Generated "+c.Output)
	cli.PrintKeyValue(os.Stdout, width, "Stream", fmt.Sprintf("%s, %d Hz, %d samples", kind, o.SampleRate, o.Samples()))
	if o.ToneFreq > 0 {
		cli.PrintKeyValue(os.Stdout, width, "Tone", fmt.Sprintf("%g Hz at %g dBFS", o.ToneFreq, o.ToneLevel))
	}
	if o.NoiseLevel < 0 {
		cli.PrintKeyValue(os.Stdout, width, "Noise", fmt.Sprintf("%g dBFS", o.NoiseLevel))
	}
	if o.HumLevel < 0 {
		hz := o.HumFreq
		source := ""
		if hz == 0 {
			info := mains.Detect()
			hz = float64(info.Hz)
			source = " (local mains)"
		}
		cli.PrintKeyValue(os.Stdout, width, "Hum", fmt.Sprintf("%g Hz%s at %g dBFS, %d harmonics", hz, source, o.HumLevel, o.HumHarmonics))
	}
	for _, s := range o.Steps {
		cli.PrintKeyValue(os.Stdout, width, "Step", fmt.Sprintf("%+g dB at %gs", s.GainDB, s.At))
	}
	return nil
}

// writeSignal generates the stream for T and writes it to path.
func writeSignal[T vmath.Sample](path string, o signal.Options) error {
	samples, err := signal.Generate[T](o)
	if err != nil {
		return err
	}

	w, err := sampleio.Create(path, sampleio.Metadata{
		SampleRate: o.SampleRate,
		Complex:    o.Complex,
		Samples:    int64(len(samples)),
	})
	if err != nil {
		return err
	}
	if err := sampleio.WriteBlock(w, samples); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
