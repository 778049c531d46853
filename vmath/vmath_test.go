package vmath

import (
	"math"
	"testing"
	"unsafe"
)

func TestMagnitude(t *testing.T) {
	tests := []struct {
		name string
		in   []complex64
		want []float32
	}{
		{"unit real", []complex64{1, -1}, []float32{1, 1}},
		{"3-4-5", []complex64{complex(3, 4), complex(-3, -4)}, []float32{5, 5}},
		{"zero", []complex64{0}, []float32{0}},
		{"odd length", []complex64{1, complex(0, 2), complex(0, -3), 4, complex(6, 8)}, []float32{1, 2, 3, 4, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make([]float32, len(tt.in))
			For[complex64]().Magnitude(got, tt.in)
			for i := range got {
				if math.Abs(float64(got[i]-tt.want[i])) > 1e-6 {
					t.Errorf("Magnitude[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRealMagnitude(t *testing.T) {
	in := []float32{-0.5, 0.25, 0, -2, 3, -7}
	want := []float32{0.5, 0.25, 0, 2, 3, 7}
	got := make([]float32, len(in))
	For[float32]().Magnitude(got, in)
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("Magnitude[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMagnitudeSquaredStrided(t *testing.T) {
	in := make([]complex64, 10)
	for i := range in {
		in[i] = complex(float32(i), 1)
	}

	// stride 4 over 10 samples touches indices 0, 4, 8
	got := make([]float32, 3)
	For[complex64]().MagnitudeSquaredStrided(got, in, 4)
	want := []float32{1, 17, 65}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("gather[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMagnitudeSquaredStridedBounds(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("gather past the end of src should panic")
		}
	}()
	in := make([]float32, 8)
	For[float32]().MagnitudeSquaredStrided(make([]float32, 3), in, 4)
}

func TestInvSqrt(t *testing.T) {
	in := []float32{1, 4, 0.25, 0, -1}
	got := make([]float32, len(in))
	For[float32]().InvSqrt(got, in)

	if got[0] != 1 || got[1] != 0.5 || got[2] != 2 {
		t.Errorf("InvSqrt finite values = %v, want [1 0.5 2 ...]", got[:3])
	}
	if !math.IsInf(float64(got[3]), 1) {
		t.Errorf("InvSqrt(0) = %v, want +Inf", got[3])
	}
	if !math.IsNaN(float64(got[4])) {
		t.Errorf("InvSqrt(-1) = %v, want NaN", got[4])
	}
}

func TestMultiplyAndScaleInPlace(t *testing.T) {
	buf := []complex64{1, complex(0, 1), complex(2, -2), -1, 3}
	gains := []float32{2, 3, 0.5, 0, -1}
	For[complex64]().Multiply(buf, buf, gains)
	want := []complex64{2, complex(0, 3), complex(1, -1), complex(0, 0), -3}
	for i := range want {
		if real(buf[i]) != real(want[i]) || imag(buf[i]) != imag(want[i]) {
			t.Errorf("Multiply[%d] = %v, want %v", i, buf[i], want[i])
		}
	}

	For[complex64]().Scale(buf, buf, 2)
	if buf[0] != 4 || buf[2] != complex(2, -2) {
		t.Errorf("Scale in place = %v", buf)
	}
}

func TestLengthMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("mismatched lengths should panic")
		}
	}()
	For[float32]().Scale(make([]float32, 3), make([]float32, 4), 1)
}

// The dispatched provider must agree bit for bit with the scalar reference,
// otherwise kernel output would depend on the host CPU.
func TestDispatchMatchesScalar(t *testing.T) {
	const n = 1027
	src := make([]complex64, n)
	gains := make([]float32, n)
	for i := range src {
		x := float64(i)
		src[i] = complex(float32(math.Sin(x*0.37)*3), float32(math.Cos(x*1.1)*0.2))
		gains[i] = float32(1 + 0.001*x)
	}

	fast, ref := For[complex64](), Scalar[complex64]()

	gotMag, wantMag := make([]float32, n), make([]float32, n)
	fast.Magnitude(gotMag, src)
	ref.Magnitude(wantMag, src)

	gotMul, wantMul := make([]complex64, n), make([]complex64, n)
	fast.Multiply(gotMul, src, gains)
	ref.Multiply(wantMul, src, gains)

	gotScale, wantScale := make([]complex64, n), make([]complex64, n)
	fast.Scale(gotScale, src, 0.7)
	ref.Scale(wantScale, src, 0.7)

	for i := 0; i < n; i++ {
		if math.Float32bits(gotMag[i]) != math.Float32bits(wantMag[i]) {
			t.Fatalf("Magnitude[%d]: dispatched %v, scalar %v", i, gotMag[i], wantMag[i])
		}
		if gotMul[i] != wantMul[i] {
			t.Fatalf("Multiply[%d]: dispatched %v, scalar %v", i, gotMul[i], wantMul[i])
		}
		if gotScale[i] != wantScale[i] {
			t.Fatalf("Scale[%d]: dispatched %v, scalar %v", i, gotScale[i], wantScale[i])
		}
	}
}

func TestAllocAlignment(t *testing.T) {
	for _, n := range []int{1, 3, 16, 1000} {
		buf := Alloc(n)
		if len(buf) != n {
			t.Fatalf("Alloc(%d) len = %d", n, len(buf))
		}
		if addr := uintptr(unsafe.Pointer(&buf[0])); addr%uintptr(Alignment()) != 0 {
			t.Errorf("Alloc(%d) address %#x not %d-byte aligned", n, addr, Alignment())
		}

		cbuf := AllocSamples[complex64](n)
		if addr := uintptr(unsafe.Pointer(&cbuf[0])); addr%uintptr(Alignment()) != 0 {
			t.Errorf("AllocSamples[complex64](%d) address %#x not aligned", n, addr)
		}
	}
	if Alloc(0) != nil {
		t.Error("Alloc(0) should return nil")
	}
}

func TestGrowReusesCapacity(t *testing.T) {
	buf := Alloc(64)
	small := Grow(buf, 10)
	if &small[0] != &buf[0] {
		t.Error("Grow within capacity should reuse the backing array")
	}
	big := Grow(buf, 128)
	if len(big) != 128 {
		t.Errorf("Grow(128) len = %d", len(big))
	}
}

func TestCurrentName(t *testing.T) {
	if CurrentName() == "" {
		t.Error("CurrentName should never be empty after init")
	}
	if CurrentLevel() == LevelScalar && CurrentName() != "scalar" {
		t.Errorf("scalar level reports name %q", CurrentName())
	}
}
