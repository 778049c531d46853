package analog

import (
	"github.com/linuxmatters/agckit/kernel"
	"github.com/linuxmatters/agckit/vmath"
)

// DualRate adapts with one of two rates per sample:
//
//	y = x * gain
//	diff = |y| - reference
//	rate = attack if |diff| > gain, else decay
//	gain = clamp(gain - diff*rate, 0, maxGain)
//
// The selector compares |diff|, not the signed diff, so a signal far below
// the reference adapts at the attack rate just like one far above it.
type DualRate[T vmath.Sample] struct {
	attack      float32
	decay       float32
	reference   float32
	gain        float32
	defaultGain float32
	maxGain     float32

	vm    vmath.Provider[T]
	mags  []float32
	gains []float32
}

var _ kernel.Stateful[complex64] = (*DualRate[complex64])(nil)

// NewDualRate returns a DualRate kernel starting at the given gain.
func NewDualRate[T vmath.Sample](attack, decay, reference, gain, maxGain float32, opts ...Option) *DualRate[T] {
	o, vm := buildOptions[T](opts)
	return &DualRate[T]{
		attack:      attack,
		decay:       decay,
		reference:   reference,
		gain:        gain,
		defaultGain: gain,
		maxGain:     maxGain,
		vm:          vm,
		mags:        vmath.Alloc(o.blockSize),
		gains:       vmath.Alloc(o.blockSize),
	}
}

func (k *DualRate[T]) Process(in, out []T) {
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
		diff := m*abs32(g) - k.reference
		rate := k.decay
		if abs32(diff) > g {
			rate = k.attack
		}
		g = clampGain(g-diff*rate, k.maxGain)
	}
	k.gain = g

	k.vm.Multiply(out[:n], in, k.gains)
}

func (k *DualRate[T]) ProcessInPlace(buf []T) { k.Process(buf, buf) }

// Reset restores the gain given to the constructor.
func (k *DualRate[T]) Reset() { k.gain = k.defaultGain }

// Gain returns the gain that will be applied to the next sample.
func (k *DualRate[T]) Gain() float32 { return k.gain }
