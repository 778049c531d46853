// Package vmath is the vector math provider used by the gain kernels.
//
// It supplies the few block primitives the kernels need (magnitude, strided
// squared-magnitude gather, inverse square root, per-sample and constant
// scaling) for real (float32) and complex (complex64) sample streams. The
// primitives are stateless and have no error returns: callers size every
// destination slice before the call.
//
// The implementation behind For is chosen once at init from the CPU features
// reported by golang.org/x/sys/cpu. Every implementation is elementwise with no
// reassociation, so all of them produce bit-identical output.
package vmath

// Sample is the set of sample types a stream may carry.
type Sample interface {
	float32 | complex64
}

// Provider is the block math surface consumed by the kernels.
// dst may alias src in every method. Length mismatches panic.
type Provider[T Sample] interface {
	// Magnitude writes dst[i] = |src[i]|.
	Magnitude(dst []float32, src []T)

	// MagnitudeSquaredStrided gathers one squared magnitude every stride
	// samples: dst[i] = |src[i*stride]|^2 for i < len(dst).
	MagnitudeSquaredStrided(dst []float32, src []T, stride int)

	// InvSqrt writes dst[i] = 1/sqrt(src[i]). Zero yields +Inf.
	InvSqrt(dst, src []float32)

	// Multiply writes dst[i] = src[i] * gains[i].
	Multiply(dst, src []T, gains []float32)

	// Scale writes dst[i] = src[i] * gain.
	Scale(dst, src []T, gain float32)
}

// For returns the default provider for sample type T.
func For[T Sample]() Provider[T] {
	var zero T
	switch any(zero).(type) {
	case float32:
		return any(realDefault).(Provider[T])
	default:
		return any(complexDefault).(Provider[T])
	}
}

// Scalar returns the reference scalar provider for T regardless of CPU
// features. Tests use it to cross-check the dispatched implementation.
func Scalar[T Sample]() Provider[T] {
	var zero T
	switch any(zero).(type) {
	case float32:
		return any(Provider[float32](realScalar{})).(Provider[T])
	default:
		return any(Provider[complex64](complexScalar{})).(Provider[T])
	}
}

func checkLen(op string, a, b int) {
	if a != b {
		panic("vmath: " + op + ": slice length mismatch")
	}
}
