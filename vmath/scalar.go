package vmath

import "math"

// realScalar is the pure Go fallback for float32 streams.
type realScalar struct{}

func (realScalar) Magnitude(dst []float32, src []float32) {
	checkLen("Magnitude", len(dst), len(src))
	for i, x := range src {
		dst[i] = abs32(x)
	}
}

func (realScalar) MagnitudeSquaredStrided(dst []float32, src []float32, stride int) {
	checkStride(len(dst), len(src), stride)
	for i := range dst {
		x := src[i*stride]
		dst[i] = x * x
	}
}

func (realScalar) InvSqrt(dst, src []float32) {
	invSqrtScalar(dst, src)
}

func (realScalar) Multiply(dst, src []float32, gains []float32) {
	checkLen("Multiply", len(dst), len(src))
	checkLen("Multiply", len(gains), len(src))
	for i, x := range src {
		dst[i] = x * gains[i]
	}
}

func (realScalar) Scale(dst, src []float32, gain float32) {
	checkLen("Scale", len(dst), len(src))
	for i, x := range src {
		dst[i] = x * gain
	}
}

// complexScalar is the pure Go fallback for complex64 (I/Q) streams.
type complexScalar struct{}

func (complexScalar) Magnitude(dst []float32, src []complex64) {
	checkLen("Magnitude", len(dst), len(src))
	for i, x := range src {
		dst[i] = cabs32(x)
	}
}

func (complexScalar) MagnitudeSquaredStrided(dst []float32, src []complex64, stride int) {
	checkStride(len(dst), len(src), stride)
	for i := range dst {
		x := src[i*stride]
		dst[i] = normSquared(x)
	}
}

func (complexScalar) InvSqrt(dst, src []float32) {
	invSqrtScalar(dst, src)
}

func (complexScalar) Multiply(dst, src []complex64, gains []float32) {
	checkLen("Multiply", len(dst), len(src))
	checkLen("Multiply", len(gains), len(src))
	for i, x := range src {
		g := gains[i]
		dst[i] = complex(real(x)*g, imag(x)*g)
	}
}

func (complexScalar) Scale(dst, src []complex64, gain float32) {
	checkLen("Scale", len(dst), len(src))
	for i, x := range src {
		dst[i] = complex(real(x)*gain, imag(x)*gain)
	}
}

func invSqrtScalar(dst, src []float32) {
	checkLen("InvSqrt", len(dst), len(src))
	for i, x := range src {
		dst[i] = float32(1 / math.Sqrt(float64(x)))
	}
}

// checkStride panics unless every gathered index lies inside src.
func checkStride(n, srcLen, stride int) {
	if stride < 1 {
		panic("vmath: MagnitudeSquaredStrided: stride must be >= 1")
	}
	if n > 0 && (n-1)*stride >= srcLen {
		panic("vmath: MagnitudeSquaredStrided: gather exceeds source")
	}
}

func abs32(x float32) float32 {
	return math.Float32frombits(math.Float32bits(x) &^ (1 << 31))
}

func cabs32(x complex64) float32 {
	return float32(math.Sqrt(float64(normSquared(x))))
}

// normSquared rounds each product before the sum so that no platform fuses
// it into an FMA and the paths stay bit-identical.
func normSquared(x complex64) float32 {
	re, im := real(x), imag(x)
	return float32(re*re) + float32(im*im)
}
