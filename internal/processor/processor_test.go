package processor

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestProcessFile(t *testing.T) {
	tests := []struct {
		name    string
		kernel  KernelType
		file    string
		complex bool
	}{
		{"passthrough wav", KernelPassthrough, "in.wav", false},
		{"single wav", KernelSingle, "in.wav", false},
		{"dual iq wav", KernelDual, "in.wav", true},
		{"calibrated cf32", KernelCalibrated, "in.cf32", true},
		{"calibrated f32", KernelCalibrated, "in.f32", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			var path string
			var n int
			if tt.complex {
				p, s := writeTestFile[complex64](t, dir, tt.file, testSignal())
				path, n = p, len(s)
			} else {
				p, s := writeTestFile[float32](t, dir, tt.file, testSignal())
				path, n = p, len(s)
			}

			type update struct {
				pass     int
				progress float64
				hasMeas  bool
			}
			var updates []update
			cb := func(pass int, passName string, progress, level float64, m *Measurements) {
				updates = append(updates, update{pass, progress, m != nil})
				if level < -60 || level > 0 {
					t.Errorf("level %v outside [-60, 0]", level)
				}
			}

			result, err := ProcessFile(path, newTestConfig(tt.kernel), cb)
			if err != nil {
				t.Fatalf("ProcessFile failed: %v", err)
			}

			if want := filepath.Join(dir, "in-agc"+filepath.Ext(tt.file)); result.OutputPath != want {
				t.Errorf("OutputPath = %s, want %s", result.OutputPath, want)
			}
			if result.Input.Samples != int64(n) || result.Output.Samples != int64(n) {
				t.Errorf("samples in/out = %d/%d, want %d", result.Input.Samples, result.Output.Samples, n)
			}
			if result.Input.Complex != tt.complex {
				t.Errorf("Complex = %v, want %v", result.Input.Complex, tt.complex)
			}
			if result.Blocks != (n+255)/256 {
				t.Errorf("Blocks = %d, want %d", result.Blocks, (n+255)/256)
			}
			if result.Dispatch == "" {
				t.Error("Dispatch not recorded")
			}

			// Progress: pass 1 then pass 2, each finishing at 1, never
			// going backwards, with measurements once pass 2 starts.
			last := map[int]float64{}
			sawPass2 := false
			for _, u := range updates {
				if u.pass == 1 && sawPass2 {
					t.Fatal("pass 1 update after pass 2 began")
				}
				if u.pass == 2 {
					sawPass2 = true
					if !u.hasMeas {
						t.Error("pass 2 update without measurements")
					}
				}
				if u.progress < last[u.pass] {
					t.Fatalf("pass %d progress went from %v to %v", u.pass, last[u.pass], u.progress)
				}
				last[u.pass] = u.progress
			}
			if last[1] != 1 || last[2] != 1 {
				t.Errorf("final progress = %v/%v, want 1/1", last[1], last[2])
			}

			if tt.kernel == KernelPassthrough {
				if len(result.GainTrace) != 0 {
					t.Errorf("passthrough recorded %d gain points", len(result.GainTrace))
				}
				if math.Abs(result.Output.RMSLevel-result.Input.RMSLevel) > 1e-6 {
					t.Errorf("passthrough changed RMS: %v -> %v", result.Input.RMSLevel, result.Output.RMSLevel)
				}
			} else if len(result.GainTrace) != result.Blocks {
				t.Errorf("gain trace has %d points for %d blocks", len(result.GainTrace), result.Blocks)
			}
		})
	}
}

func TestProcessFileRaisesQuietInput(t *testing.T) {
	dir := t.TempDir()
	path, _ := writeTestFile[complex64](t, dir, "quiet.cf32", testSignal())

	for _, k := range []KernelType{KernelSingle, KernelDual, KernelCalibrated} {
		t.Run(string(k), func(t *testing.T) {
			result, err := ProcessFile(path, newTestConfig(k), nil)
			if err != nil {
				t.Fatal(err)
			}
			// Input sits around -35 dBFS; the reference is -20 dBFS.
			if result.Output.RMSLevel <= result.Input.RMSLevel {
				t.Errorf("output RMS %.1f dBFS not above input %.1f dBFS", result.Output.RMSLevel, result.Input.RMSLevel)
			}
			if g := result.FinalGain(); g <= 1 || g > 50 {
				t.Errorf("final gain %v, want in (1, 50]", g)
			}
		})
	}
}

func TestProcessFileCalibratedTransition(t *testing.T) {
	dir := t.TempDir()
	path, in := writeTestFile[complex64](t, dir, "cal.cf32", testSignal())

	cfg := newTestConfig(KernelCalibrated)
	result, err := ProcessFile(path, cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.TransitionSample != int64(cfg.WarmupSamples) {
		t.Errorf("TransitionSample = %d, want %d", result.TransitionSample, cfg.WarmupSamples)
	}
	if !result.HasInitialGain || result.InitialGain <= 0 {
		t.Errorf("initial gain = %v (recorded %v)", result.InitialGain, result.HasInitialGain)
	}

	// Warmup is passthrough.
	out := readTestFile[complex64](t, result.OutputPath)
	for i := 0; i < cfg.WarmupSamples; i++ {
		if out[i] != in[i] {
			t.Fatalf("warmup sample %d = %v, want %v", i, out[i], in[i])
		}
	}
}

// Jittered block sizes must produce byte-identical output for every kernel.
func TestProcessFileJitterInvariance(t *testing.T) {
	for _, k := range KernelTypes() {
		t.Run(string(k), func(t *testing.T) {
			fixedDir, jitterDir := t.TempDir(), t.TempDir()
			fixedPath, _ := writeTestFile[complex64](t, fixedDir, "s.cf32", testSignal())
			jitterPath, _ := writeTestFile[complex64](t, jitterDir, "s.cf32", testSignal())

			fixed, err := ProcessFile(fixedPath, newTestConfig(k), nil)
			if err != nil {
				t.Fatal(err)
			}
			cfg := newTestConfig(k)
			cfg.BlockJitter = true
			jittered, err := ProcessFile(jitterPath, cfg, nil)
			if err != nil {
				t.Fatal(err)
			}

			a, err := os.ReadFile(fixed.OutputPath)
			if err != nil {
				t.Fatal(err)
			}
			b, err := os.ReadFile(jittered.OutputPath)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(a, b) {
				t.Error("jittered block sizes changed the output")
			}
			if k != KernelPassthrough && fixed.FinalGain() != jittered.FinalGain() {
				t.Errorf("final gain %v vs %v", fixed.FinalGain(), jittered.FinalGain())
			}
		})
	}
}

func TestProcessFileScalarMatchesDispatch(t *testing.T) {
	dir := t.TempDir()
	path, _ := writeTestFile[complex64](t, dir, "s.cf32", testSignal())

	fast, err := ProcessFile(path, newTestConfig(KernelCalibrated), nil)
	if err != nil {
		t.Fatal(err)
	}
	a, _ := os.ReadFile(fast.OutputPath)

	cfg := newTestConfig(KernelCalibrated)
	cfg.ForceScalar = true
	slow, err := ProcessFile(path, cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(slow.OutputPath)

	if slow.Dispatch != "scalar" {
		t.Errorf("Dispatch = %q, want scalar", slow.Dispatch)
	}
	if !bytes.Equal(a, b) {
		t.Error("scalar path output differs from the dispatched path")
	}
}

func TestProcessFileErrors(t *testing.T) {
	dir := t.TempDir()
	path, _ := writeTestFile[float32](t, dir, "ok.f32", testSignal())

	bad := newTestConfig(KernelCalibrated)
	bad.Decimation = 0
	if _, err := ProcessFile(path, bad, nil); err == nil {
		t.Error("expected a config error")
	}
	if _, err := ProcessFile(filepath.Join(dir, "missing.wav"), newTestConfig(KernelDual), nil); err == nil {
		t.Error("expected an error for a missing input")
	}
	if _, err := os.Stat(filepath.Join(dir, "ok-agc.f32")); !os.IsNotExist(err) {
		t.Error("no output should be written for an invalid config")
	}
	if fileSize(t, path) != int64(4*4000) {
		t.Errorf("input size changed")
	}
}

// A WAV whose data chunk is shorter than its header declares fails in pass 2
// once the writer comes up short, and the partial output is removed.
func TestProcessFileRemovesPartialOutput(t *testing.T) {
	dir := t.TempDir()
	path, _ := writeTestFile[float32](t, dir, "cut.wav", testSignal())
	if err := os.Truncate(path, fileSize(t, path)-1000); err != nil {
		t.Fatalf("failed to truncate input: %v", err)
	}

	if _, err := ProcessFile(path, newTestConfig(KernelDual), nil); err == nil {
		t.Fatal("expected pass 2 to fail on a truncated input")
	}
	if _, err := os.Stat(filepath.Join(dir, "cut-agc.wav")); !os.IsNotExist(err) {
		t.Errorf("partial output left on disk (stat err = %v)", err)
	}
}

func TestGenerateOutputPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/data/capture.cf32", "/data/capture-agc.cf32"},
		{"voice.wav", "voice-agc.wav"},
		{"/a/b.c/d.f32", "/a/b.c/d-agc.f32"},
	}
	for _, tt := range tests {
		if got := generateOutputPath(tt.in); got != tt.want {
			t.Errorf("generateOutputPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
