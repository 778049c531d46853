// Package kernel defines the calling convention shared by the gain kernels.
//
// A kernel consumes a block of samples and produces a block of the same
// length. Blocks arrive with arbitrary and varying sizes from an external
// engine that owns the buffers and the scheduling; a kernel must give the
// same result whether a stream is delivered in one call or in many.
//
// Kernels are not safe for concurrent use. One instance is one logical
// stream, and the caller serialises calls on it.
package kernel

import "github.com/linuxmatters/agckit/vmath"

// Sample is the set of sample types a kernel may process.
type Sample = vmath.Sample

// Kernel transforms len(in) samples from in into out[:len(in)].
//
// out may be the same slice as in. Partially overlapping buffers are not
// supported. Process panics if len(out) < len(in).
type Kernel[T Sample] interface {
	Process(in, out []T)
	ProcessInPlace(buf []T)
}

// Stateless marks a kernel that retains nothing between calls.
type Stateless[T Sample] interface {
	Kernel[T]
	Stateless()
}

// Stateful is a kernel that carries adaptation state across calls.
// Reset returns that state to its constructed defaults.
type Stateful[T Sample] interface {
	Kernel[T]
	Reset()
}

// IsStateful reports whether k carries state across calls.
func IsStateful[T Sample](k Kernel[T]) bool {
	_, ok := k.(Stateful[T])
	return ok
}

// ResetIfStateful resets k when it is stateful and reports whether it did.
func ResetIfStateful[T Sample](k Kernel[T]) bool {
	if s, ok := k.(Stateful[T]); ok {
		s.Reset()
		return true
	}
	return false
}

// CheckBuffers panics unless out can hold every sample of in. Kernels call
// it first so an undersized buffer never causes a partial write.
func CheckBuffers(inLen, outLen int) {
	if outLen < inLen {
		panic("kernel: output buffer shorter than input")
	}
}
