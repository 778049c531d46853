package analog

import "github.com/linuxmatters/agckit/vmath"

// DefaultBlockSize is the block length scratch buffers are sized for when no
// WithBlockSize option is given. Longer blocks grow the buffers once.
const DefaultBlockSize = 4096

// Option configures a kernel at construction.
type Option func(*options)

type options struct {
	blockSize int
	provider  any
}

// WithBlockSize sizes scratch buffers for the largest block the caller
// expects, so steady-state processing never allocates.
func WithBlockSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.blockSize = n
		}
	}
}

// WithProvider replaces the default vector math provider.
func WithProvider[T vmath.Sample](p vmath.Provider[T]) Option {
	return func(o *options) {
		o.provider = p
	}
}

func buildOptions[T vmath.Sample](opts []Option) (options, vmath.Provider[T]) {
	o := options{blockSize: DefaultBlockSize}
	for _, opt := range opts {
		opt(&o)
	}
	if p, ok := o.provider.(vmath.Provider[T]); ok && p != nil {
		return o, p
	}
	return o, vmath.For[T]()
}

// clampGain limits g to [0, maxGain]. NaN collapses to 0 so the gain state
// stays finite.
func clampGain(g, maxGain float32) float32 {
	if !(g > 0) {
		g = 0
	}
	if g > maxGain {
		g = maxGain
	}
	return g
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
