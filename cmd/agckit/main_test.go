package main

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/linuxmatters/agckit/internal/mains"
	"github.com/linuxmatters/agckit/internal/processor"
	"github.com/linuxmatters/agckit/internal/sampleio"
	"github.com/linuxmatters/agckit/internal/signal"
)

func parseArgs(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var out bytes.Buffer
	cliArgs := &CLI{}
	parser, err := kong.New(cliArgs,
		kong.Name("agckit"),
		kong.Configuration(kong.JSON),
		kong.Writers(&out, &out),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		t.Fatalf("kong.New: %v", err)
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		t.Fatalf("Parse(%v): %v", args, err)
	}
	return cliArgs, ctx
}

func TestProcessDefaultsMatchDefaultConfig(t *testing.T) {
	file := filepath.Join(t.TempDir(), "in.f32")
	if err := writeSignal[float32](file, shortSignal(false)); err != nil {
		t.Fatal(err)
	}

	cliArgs, _ := parseArgs(t, "process", file)
	got := cliArgs.Process.config()
	want := processor.DefaultConfig()

	if got.Kernel != want.Kernel || got.WarmupSamples != want.WarmupSamples ||
		got.Decimation != want.Decimation || got.BlockSize != want.BlockSize || got.Seed != want.Seed {
		t.Errorf("config = %+v, want %+v", got, want)
	}
	for _, c := range []struct {
		name      string
		got, want float32
	}{
		{"reference", got.Reference, want.Reference},
		{"rate", got.Rate, want.Rate},
		{"attack", got.Attack, want.Attack},
		{"decay", got.Decay, want.Decay},
		{"initial gain", got.InitialGain, want.InitialGain},
		{"max gain", got.MaxGain, want.MaxGain},
	} {
		if math.Abs(float64(c.got-c.want)) > 1e-4*math.Abs(float64(c.want)) {
			t.Errorf("%s = %g, want %g", c.name, c.got, c.want)
		}
	}
}

func TestProcessFlags(t *testing.T) {
	file := filepath.Join(t.TempDir(), "in.f32")
	if err := writeSignal[float32](file, shortSignal(false)); err != nil {
		t.Fatal(err)
	}

	cliArgs, _ := parseArgs(t, "process", "--kernel=single", "--reference-db=-6", "--no-max-gain",
		"--jitter", "--seed=7", "--scalar", file)
	cfg := cliArgs.Process.config()

	if cfg.Kernel != processor.KernelSingle {
		t.Errorf("kernel = %s", cfg.Kernel)
	}
	if math.Abs(float64(cfg.Reference)-0.501187) > 1e-5 {
		t.Errorf("reference = %g, want 0.501187", cfg.Reference)
	}
	if cfg.MaxGain != 0 || !cfg.BlockJitter || cfg.Seed != 7 || !cfg.ForceScalar {
		t.Errorf("config = %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestParseSteps(t *testing.T) {
	tests := []struct {
		name    string
		specs   []string
		want    []signal.Step
		wantErr bool
	}{
		{"default", []string{"2:-20", "3.5:0"}, []signal.Step{{At: 2, GainDB: -20}, {At: 3.5, GainDB: 0}}, false},
		{"spaces", []string{" 1 : +6 "}, []signal.Step{{At: 1, GainDB: 6}}, false},
		{"empty entry skipped", []string{""}, nil, false},
		{"missing colon", []string{"2"}, nil, true},
		{"bad time", []string{"x:1"}, nil, true},
		{"bad level", []string{"1:loud"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSteps(tt.specs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("step %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func shortSignal(complex bool) signal.Options {
	o := signal.DefaultOptions()
	o.DurationSecs = 0.1
	o.SampleRate = 8000
	o.Complex = complex
	o.ToneFreq = 440
	o.Steps = nil
	return o
}

func TestGenerateWritesStream(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		iq          bool
		wantComplex bool
	}{
		{"raw real", "tone.f32", false, false},
		{"raw complex", "tone.cf32", false, true},
		{"wav mono", "tone.wav", false, false},
		{"wav iq", "tone.wav", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			cmd := &generateCmd{
				Output: path, Duration: 0.25, SampleRate: 8000, IQ: tt.iq,
				ToneHz: 440, ToneDB: -20, NoiseDB: -70, Harmonics: 3,
				Steps: []string{"0.1:-10"}, Seed: 1,
			}
			if err := cmd.Run(); err != nil {
				t.Fatalf("Run: %v", err)
			}

			r, meta, err := sampleio.Open(path)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer r.Close()
			if meta.Complex != tt.wantComplex {
				t.Errorf("complex = %v, want %v", meta.Complex, tt.wantComplex)
			}
			if meta.Samples != 2000 || meta.SampleRate != 8000 {
				t.Errorf("samples %d rate %d, want 2000 at 8000", meta.Samples, meta.SampleRate)
			}
		})
	}
}

func TestGenerateRejectsIQInRealFile(t *testing.T) {
	cmd := &generateCmd{Output: filepath.Join(t.TempDir(), "x.f32"), Duration: 1, SampleRate: 8000, IQ: true}
	if err := cmd.Run(); !errors.Is(err, sampleio.ErrSampleType) {
		t.Errorf("err = %v, want ErrSampleType", err)
	}
}

func TestWriteInfo(t *testing.T) {
	var buf bytes.Buffer
	writeInfo(&buf, mains.Info{Timezone: "America/New_York", Country: "US", Hz: 60})

	out := buf.String()
	for _, want := range []string{"Vector math", "CPU features", "America/New_York", "60 Hz (US)"} {
		if !strings.Contains(out, want) {
			t.Errorf("info missing %q:\n%s", want, out)
		}
	}
}

func TestConfigFileSetsDefaults(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "in.f32")
	if err := writeSignal[float32](file, shortSignal(false)); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(dir, "agckit.json")
	if err := os.WriteFile(cfgPath, []byte(`{"kernel": "calibrated", "warmup": 800, "decimation": 4}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cliArgs, _ := parseArgs(t, "--config", cfgPath, "process", file)
	cfg := cliArgs.Process.config()
	if cfg.Kernel != processor.KernelCalibrated || cfg.WarmupSamples != 800 || cfg.Decimation != 4 {
		t.Errorf("config file not applied: %+v", cfg)
	}
}
