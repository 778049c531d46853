package processor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/linuxmatters/agckit/internal/sampleio"
	"github.com/linuxmatters/agckit/internal/signal"
	"github.com/linuxmatters/agckit/vmath"
)

// testSignal returns a short stream with level steps and a gap, which keeps
// every kernel busy.
func testSignal() signal.Options {
	o := signal.DefaultOptions()
	o.DurationSecs = 0.5
	o.SampleRate = 8000
	o.ToneFreq = 440
	o.ToneLevel = -30
	o.NoiseLevel = -70
	o.SilenceGap.Start = 0.3
	o.SilenceGap.Duration = 0.05
	o.Steps = []signal.Step{{At: 0.15, GainDB: -15}, {At: 0.4, GainDB: 6}}
	return o
}

// writeTestFile generates a stream of type T into dir/name and returns the
// path and the samples written.
func writeTestFile[T vmath.Sample](t *testing.T, dir, name string, o signal.Options) (string, []T) {
	t.Helper()

	samples, err := signal.Generate[T](o)
	if err != nil {
		t.Fatalf("failed to generate signal: %v", err)
	}
	_, isComplex := any(samples).([]complex64)

	path := filepath.Join(dir, name)
	w, err := sampleio.Create(path, sampleio.Metadata{
		SampleRate: o.SampleRate,
		Complex:    isComplex,
		Samples:    int64(len(samples)),
	})
	if err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	if err := sampleio.WriteBlock(w, samples); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close test file: %v", err)
	}
	return path, samples
}

// readTestFile reads every sample of a file.
func readTestFile[T vmath.Sample](t *testing.T, path string) []T {
	t.Helper()

	r, meta, err := sampleio.Open(path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer r.Close()

	out := make([]T, meta.Samples)
	pos := 0
	for pos < len(out) {
		n, err := sampleio.ReadBlock(r, out[pos:])
		if err != nil {
			t.Fatalf("failed to read %s at %d: %v", path, pos, err)
		}
		pos += n
	}
	return out
}

// newTestConfig returns an isolated config so tests do not move with the
// application defaults.
func newTestConfig(kernel KernelType) *Config {
	return &Config{
		Kernel:        kernel,
		Reference:     0.1,
		Rate:          1e-3,
		Attack:        0.1,
		Decay:         1e-3,
		InitialGain:   1,
		MaxGain:       50,
		WarmupSamples: 400,
		Decimation:    8,
		BlockSize:     256,
		Seed:          42,
	}
}

func fileSize(t *testing.T, path string) int64 {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	return info.Size()
}
