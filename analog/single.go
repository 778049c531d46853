// Package analog implements the streaming gain-control kernels.
//
// Three adaptation laws share the kernel.Kernel calling convention:
//
//   - SingleRate: one adaptation rate, optional upper clamp.
//   - DualRate: attack/decay rates selected per sample, clamped to [0, max].
//   - Calibrated: a passthrough calibration phase followed by a decimated
//     single-pole tracking loop that carries window state across calls.
//
// Every kernel works on float32 (real) or complex64 (I/Q) streams and gives
// the same output however a stream is split into calls.
package analog

import (
	"github.com/linuxmatters/agckit/kernel"
	"github.com/linuxmatters/agckit/vmath"
)

// SingleRate adapts its gain by a fixed rate toward the reference magnitude:
//
//	y = x * gain
//	gain += rate * (reference - |y|)
//	if maxGain > 0 && gain > maxGain { gain = maxGain }
//
// There is no lower clamp, so aggressive rates can drive the gain negative.
// A non-finite update is discarded and the previous gain kept.
type SingleRate[T vmath.Sample] struct {
	rate        float32 // adjustment rate
	reference   float32 // target magnitude
	gain        float32 // current gain
	defaultGain float32 // restored by Reset
	maxGain     float32 // upper clamp; <= 0 disables it

	vm    vmath.Provider[T]
	mags  []float32
	gains []float32
}

var _ kernel.Stateful[float32] = (*SingleRate[float32])(nil)

// NewSingleRate returns a SingleRate kernel starting at the given gain.
func NewSingleRate[T vmath.Sample](rate, reference, gain, maxGain float32, opts ...Option) *SingleRate[T] {
	o, vm := buildOptions[T](opts)
	return &SingleRate[T]{
		rate:        rate,
		reference:   reference,
		gain:        gain,
		defaultGain: gain,
		maxGain:     maxGain,
		vm:          vm,
		mags:        vmath.Alloc(o.blockSize),
		gains:       vmath.Alloc(o.blockSize),
	}
}

func (k *SingleRate[T]) Process(in, out []T) {
	kernel.CheckBuffers(len(in), len(out))
	n := len(in)
	if n == 0 {
		return
	}
	k.mags = vmath.Grow(k.mags, n)
	k.gains = vmath.Grow(k.gains, n)

	k.vm.Magnitude(k.mags, in)

	g := k.gain
	for i, m := range k.mags {
		k.gains[i] = g
		next := g + k.rate*(k.reference-m*abs32(g))
		// A NaN or Inf sample leaves the gain where it was.
		if !isFinite(next) {
			next = g
		}
		if k.maxGain > 0 && next > k.maxGain {
			next = k.maxGain
		}
		g = next
	}
	k.gain = g

	k.vm.Multiply(out[:n], in, k.gains)
}

func (k *SingleRate[T]) ProcessInPlace(buf []T) { k.Process(buf, buf) }

// Reset restores the gain given to the constructor.
func (k *SingleRate[T]) Reset() { k.gain = k.defaultGain }

// Gain returns the gain that will be applied to the next sample.
func (k *SingleRate[T]) Gain() float32 { return k.gain }
