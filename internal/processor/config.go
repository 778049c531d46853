package processor

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// KernelType identifies a gain kernel.
type KernelType string

const (
	KernelPassthrough KernelType = "passthrough" // unity baseline
	KernelSingle      KernelType = "single"      // single-rate loop
	KernelDual        KernelType = "dual"        // attack/decay loop
	KernelCalibrated  KernelType = "calibrated"  // warmup then decimated attack/decay loop
)

// ErrInvalidConfig wraps every Config validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the kernel selection and its parameters for a processing run.
// Gains and levels are linear; the CLI converts from dB at the edge.
type Config struct {
	Kernel KernelType `json:"kernel"`

	Reference   float32 `json:"reference"`    // target output magnitude
	Rate        float32 `json:"rate"`         // single-rate adaptation rate
	Attack      float32 `json:"attack"`       // rate for large errors (dual) or rising level (calibrated)
	Decay       float32 `json:"decay"`        // rate for small errors (dual) or falling level (calibrated)
	InitialGain float32 `json:"initial_gain"` // starting gain, ignored by the calibrated kernel
	MaxGain     float32 `json:"max_gain"`     // 0 disables the single-rate ceiling

	WarmupSamples int `json:"warmup_samples"` // calibration length
	Decimation    int `json:"decimation"`     // samples per gain update

	// Adaptive derives MaxGain from the pass 1 noise floor so that quiet
	// passages are not lifted into the noise.
	Adaptive bool `json:"adaptive"`

	// BlockSize is the largest block handed to the kernel. With BlockJitter
	// each block is a pseudo-random size in [1, BlockSize] drawn from Seed.
	BlockSize   int    `json:"block_size"`
	BlockJitter bool   `json:"block_jitter"`
	Seed        uint64 `json:"seed"`

	// ForceScalar runs the kernel on the scalar vector math path regardless
	// of the dispatch level.
	ForceScalar bool `json:"force_scalar"`
}

// DefaultConfig returns the settings used when nothing is overridden.
func DefaultConfig() *Config {
	return &Config{
		Kernel:        KernelDual,
		Reference:     0.1, // -20 dBFS
		Rate:          1e-4,
		Attack:        0.1,
		Decay:         1e-4,
		InitialGain:   1,
		MaxGain:       100, // +40 dB
		WarmupSamples: 4800,
		Decimation:    16,
		BlockSize:     4096,
		Seed:          1,
	}
}

// Validate reports the first problem that would stop the kernel being
// built or make its output meaningless.
func (c *Config) Validate() error {
	if _, ok := kernelBuilders[c.Kernel]; !ok {
		return fmt.Errorf("%w: unknown kernel %q (want one of %v)", ErrInvalidConfig, c.Kernel, KernelTypes())
	}
	if c.BlockSize < 1 {
		return fmt.Errorf("%w: block size %d", ErrInvalidConfig, c.BlockSize)
	}
	if !finite(c.Reference, c.Rate, c.Attack, c.Decay, c.InitialGain, c.MaxGain) {
		return fmt.Errorf("%w: parameters must be finite", ErrInvalidConfig)
	}

	switch c.Kernel {
	case KernelSingle:
		if c.Rate <= 0 {
			return fmt.Errorf("%w: rate %g must be positive", ErrInvalidConfig, c.Rate)
		}
	case KernelDual, KernelCalibrated:
		if c.Attack <= 0 || c.Decay <= 0 {
			return fmt.Errorf("%w: attack %g and decay %g must be positive", ErrInvalidConfig, c.Attack, c.Decay)
		}
		if c.MaxGain <= 0 {
			return fmt.Errorf("%w: max gain %g must be positive", ErrInvalidConfig, c.MaxGain)
		}
	}

	if c.Kernel == KernelCalibrated {
		if c.Reference <= 0 {
			return fmt.Errorf("%w: reference %g must be positive", ErrInvalidConfig, c.Reference)
		}
		if c.WarmupSamples < 1 {
			return fmt.Errorf("%w: warmup of %d samples", ErrInvalidConfig, c.WarmupSamples)
		}
		if c.Decimation < 1 {
			return fmt.Errorf("%w: decimation %d", ErrInvalidConfig, c.Decimation)
		}
	}
	return nil
}

// KernelTypes lists the registered kernels in name order.
func KernelTypes() []KernelType {
	types := make([]KernelType, 0, len(kernelBuilders))
	for k := range kernelBuilders {
		types = append(types, k)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// DbToLinear converts a decibel value to linear amplitude.
func DbToLinear(db float64) float64 {
	return math.Pow(10, db/20.0)
}

// LinearToDb converts linear amplitude to decibels, floored at -120 dB.
func LinearToDb(linear float64) float64 {
	if linear <= 0 {
		return -120.0
	}
	return 20.0 * math.Log10(linear)
}

func finite(vals ...float32) bool {
	for _, v := range vals {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
