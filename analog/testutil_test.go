package analog

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/linuxmatters/agckit/kernel"
	"github.com/linuxmatters/agckit/vmath"
)

func constantReal(n int, v float32) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func constantComplex(n int, v complex64) []complex64 {
	s := make([]complex64, n)
	for i := range s {
		s[i] = v
	}
	return s
}

// unitPhasors cycles through 1, j, -1, -j, all of exact unit magnitude.
func unitPhasors(n int) []complex64 {
	cycle := []complex64{1, complex(0, 1), -1, complex(0, -1)}
	s := make([]complex64, n)
	for i := range s {
		s[i] = cycle[i%len(cycle)]
	}
	return s
}

// fadingTone is a complex tone whose level steps every 97 samples, with a
// silent stretch, so gain loops have something to track.
func fadingTone(n int) []complex64 {
	levels := []float32{0.5, 2, 0.05, 0, 1.3, 8, 0.2}
	s := make([]complex64, n)
	for i := range s {
		a := levels[(i/97)%len(levels)]
		phase := 0.13 * float64(i)
		s[i] = complex(a*float32(math.Cos(phase)), a*float32(math.Sin(phase)))
	}
	return s
}

// randomPartition splits n samples into call sizes between 0 and maxBlock.
// Zero-length calls are included on purpose.
func randomPartition(r *rand.Rand, n, maxBlock int) []int {
	var sizes []int
	for n > 0 {
		size := min(r.IntN(maxBlock+1), n)
		sizes = append(sizes, size)
		n -= size
	}
	return sizes
}

// processChunks runs in through k using the given call sizes and returns the
// concatenated output.
func processChunks[T vmath.Sample](k kernel.Kernel[T], in []T, sizes []int) []T {
	out := make([]T, len(in))
	pos := 0
	for _, size := range sizes {
		k.Process(in[pos:pos+size], out[pos:pos+size])
		pos += size
	}
	return out
}

func assertNearReal(t *testing.T, got, want []float32, tol float64) {
	t.Helper()
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > tol {
			t.Errorf("sample %d = %v, want %v (tol %v)", i, got[i], want[i], tol)
		}
	}
}

func assertNearComplex(t *testing.T, got, want []complex64, tol float64) {
	t.Helper()
	for i := range want {
		if math.Abs(float64(real(got[i])-real(want[i]))) > tol ||
			math.Abs(float64(imag(got[i])-imag(want[i]))) > tol {
			t.Errorf("sample %d = %v, want %v (tol %v)", i, got[i], want[i], tol)
		}
	}
}

func assertIdentical[T vmath.Sample](t *testing.T, got, want []T) {
	t.Helper()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d = %v, want %v (chunked output diverged)", i, got[i], want[i])
		}
	}
}

// duplicate returns a symmetric complex sequence {v, v} for each value.
func duplicate(vals []float32) []complex64 {
	s := make([]complex64, len(vals))
	for i, v := range vals {
		s[i] = complex(v, v)
	}
	return s
}

func newTestRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
