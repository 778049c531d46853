package processor

import (
	"errors"
	"math"
	"testing"

	"github.com/linuxmatters/agckit/analog"
	"github.com/linuxmatters/agckit/kernel"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		kernel KernelType
		modify func(*Config)
		ok     bool
	}{
		{"passthrough", KernelPassthrough, func(*Config) {}, true},
		{"single", KernelSingle, func(*Config) {}, true},
		{"single without ceiling", KernelSingle, func(c *Config) { c.MaxGain = 0 }, true},
		{"dual", KernelDual, func(*Config) {}, true},
		{"calibrated", KernelCalibrated, func(*Config) {}, true},

		{"unknown kernel", "fm", func(*Config) {}, false},
		{"zero block size", KernelDual, func(c *Config) { c.BlockSize = 0 }, false},
		{"NaN reference", KernelDual, func(c *Config) { c.Reference = float32(math.NaN()) }, false},
		{"zero rate", KernelSingle, func(c *Config) { c.Rate = 0 }, false},
		{"negative attack", KernelDual, func(c *Config) { c.Attack = -1 }, false},
		{"zero decay", KernelCalibrated, func(c *Config) { c.Decay = 0 }, false},
		{"dual without ceiling", KernelDual, func(c *Config) { c.MaxGain = 0 }, false},
		{"calibrated zero reference", KernelCalibrated, func(c *Config) { c.Reference = 0 }, false},
		{"calibrated zero warmup", KernelCalibrated, func(c *Config) { c.WarmupSamples = 0 }, false},
		{"calibrated zero decimation", KernelCalibrated, func(c *Config) { c.Decimation = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestConfig(tt.kernel)
			tt.modify(c)
			err := c.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestNewKernel(t *testing.T) {
	tests := []struct {
		kernel   KernelType
		stateful bool
	}{
		{KernelPassthrough, false},
		{KernelSingle, true},
		{KernelDual, true},
		{KernelCalibrated, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.kernel), func(t *testing.T) {
			c := newTestConfig(tt.kernel)

			kr, err := NewKernel[float32](c)
			if err != nil {
				t.Fatalf("real: %v", err)
			}
			kc, err := NewKernel[complex64](c)
			if err != nil {
				t.Fatalf("complex: %v", err)
			}
			if kernel.IsStateful(kr) != tt.stateful || kernel.IsStateful(kc) != tt.stateful {
				t.Errorf("stateful = %v/%v, want %v", kernel.IsStateful(kr), kernel.IsStateful(kc), tt.stateful)
			}
		})
	}
}

func TestNewKernelBuildsConfiguredType(t *testing.T) {
	k, err := NewKernel[complex64](newTestConfig(KernelCalibrated))
	if err != nil {
		t.Fatal(err)
	}
	cal, ok := k.(*analog.Calibrated[complex64])
	if !ok {
		t.Fatalf("got %T, want *analog.Calibrated[complex64]", k)
	}
	if _, total := cal.WarmupProgress(); total != 400 {
		t.Errorf("warmup = %d, want 400", total)
	}
}

func TestKernelTypes(t *testing.T) {
	want := []KernelType{KernelCalibrated, KernelDual, KernelPassthrough, KernelSingle}
	got := KernelTypes()
	if len(got) != len(want) {
		t.Fatalf("KernelTypes() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("KernelTypes()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParams(t *testing.T) {
	c := newTestConfig(KernelCalibrated)
	params := c.Params()
	names := map[string]bool{}
	for _, p := range params {
		names[p.Name] = true
	}
	for _, n := range []string{"Attack", "Decay", "Reference", "Max gain", "Warmup", "Decimation"} {
		if !names[n] {
			t.Errorf("missing param %q", n)
		}
	}
	if len(newTestConfig(KernelPassthrough).Params()) != 0 {
		t.Error("passthrough should have no params")
	}
}

func TestDbConversions(t *testing.T) {
	tests := []struct {
		db     float64
		linear float64
	}{
		{0, 1},
		{-20, 0.1},
		{20, 10},
		{-40, 0.01},
	}
	for _, tt := range tests {
		if got := DbToLinear(tt.db); math.Abs(got-tt.linear) > 1e-12 {
			t.Errorf("DbToLinear(%v) = %v, want %v", tt.db, got, tt.linear)
		}
		if got := LinearToDb(tt.linear); math.Abs(got-tt.db) > 1e-9 {
			t.Errorf("LinearToDb(%v) = %v, want %v", tt.linear, got, tt.db)
		}
	}
	if got := LinearToDb(0); got != -120 {
		t.Errorf("LinearToDb(0) = %v, want -120", got)
	}
}
