package processor

import (
	"fmt"

	"github.com/linuxmatters/agckit/analog"
	"github.com/linuxmatters/agckit/kernel"
	"github.com/linuxmatters/agckit/vmath"
)

// kernelBuilder constructs the configured kernel for one sample type.
type kernelBuilder struct {
	real    func(*Config) (kernel.Kernel[float32], error)
	complex func(*Config) (kernel.Kernel[complex64], error)
	// params lists the Config fields the kernel reads, for reports.
	params func(*Config) []Param
}

// Param is one named kernel parameter as shown in reports.
type Param struct {
	Name  string
	Value string
}

// kernelBuilders maps each KernelType to its constructors.
var kernelBuilders = map[KernelType]kernelBuilder{
	KernelPassthrough: {
		real:    buildPassthrough[float32],
		complex: buildPassthrough[complex64],
		params:  func(*Config) []Param { return nil },
	},
	KernelSingle: {
		real:    buildSingle[float32],
		complex: buildSingle[complex64],
		params: func(c *Config) []Param {
			return []Param{
				{"Rate", fmt.Sprintf("%g", c.Rate)},
				{"Reference", levelString(c.Reference)},
				{"Initial gain", gainString(c.InitialGain)},
				{"Max gain", maxGainString(c.MaxGain)},
			}
		},
	},
	KernelDual: {
		real:    buildDual[float32],
		complex: buildDual[complex64],
		params: func(c *Config) []Param {
			return []Param{
				{"Attack", fmt.Sprintf("%g", c.Attack)},
				{"Decay", fmt.Sprintf("%g", c.Decay)},
				{"Reference", levelString(c.Reference)},
				{"Initial gain", gainString(c.InitialGain)},
				{"Max gain", gainString(c.MaxGain)},
			}
		},
	},
	KernelCalibrated: {
		real:    buildCalibrated[float32],
		complex: buildCalibrated[complex64],
		params: func(c *Config) []Param {
			return []Param{
				{"Attack", fmt.Sprintf("%g", c.Attack)},
				{"Decay", fmt.Sprintf("%g", c.Decay)},
				{"Reference", levelString(c.Reference)},
				{"Max gain", gainString(c.MaxGain)},
				{"Warmup", fmt.Sprintf("%d samples", c.WarmupSamples)},
				{"Decimation", fmt.Sprintf("1:%d", c.Decimation)},
			}
		},
	},
}

// Params returns the parameters the configured kernel uses.
func (c *Config) Params() []Param {
	b, ok := kernelBuilders[c.Kernel]
	if !ok {
		return nil
	}
	return b.params(c)
}

// NewKernel builds the configured kernel for sample type T.
func NewKernel[T vmath.Sample](c *Config) (kernel.Kernel[T], error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	b := kernelBuilders[c.Kernel]

	var k any
	var err error
	switch any(*new(T)).(type) {
	case float32:
		k, err = b.real(c)
	case complex64:
		k, err = b.complex(c)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build %s kernel: %w", c.Kernel, err)
	}
	return k.(kernel.Kernel[T]), nil
}

func kernelOptions[T vmath.Sample](c *Config) []analog.Option {
	opts := []analog.Option{analog.WithBlockSize(c.BlockSize)}
	if c.ForceScalar {
		opts = append(opts, analog.WithProvider(vmath.Scalar[T]()))
	}
	return opts
}

func buildPassthrough[T vmath.Sample](*Config) (kernel.Kernel[T], error) {
	return kernel.NewPassthrough[T](), nil
}

func buildSingle[T vmath.Sample](c *Config) (kernel.Kernel[T], error) {
	return analog.NewSingleRate[T](c.Rate, c.Reference, c.InitialGain, c.MaxGain, kernelOptions[T](c)...), nil
}

func buildDual[T vmath.Sample](c *Config) (kernel.Kernel[T], error) {
	return analog.NewDualRate[T](c.Attack, c.Decay, c.Reference, c.InitialGain, c.MaxGain, kernelOptions[T](c)...), nil
}

func buildCalibrated[T vmath.Sample](c *Config) (kernel.Kernel[T], error) {
	k, err := analog.NewCalibrated[T](c.Attack, c.Decay, c.Reference, c.MaxGain, c.WarmupSamples, c.Decimation, kernelOptions[T](c)...)
	if err != nil {
		return nil, err
	}
	return k, nil
}

func levelString(v float32) string {
	return fmt.Sprintf("%g (%.1f dBFS)", v, LinearToDb(float64(v)))
}

func gainString(v float32) string {
	return fmt.Sprintf("%g (%+.1f dB)", v, LinearToDb(float64(v)))
}

func maxGainString(v float32) string {
	if v <= 0 {
		return "unlimited"
	}
	return gainString(v)
}
