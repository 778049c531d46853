package kernel

// Passthrough copies its input unchanged. It is the stateless member of the
// family and the unity-gain baseline when comparing kernels.
type Passthrough[T Sample] struct{}

// NewPassthrough returns a Passthrough kernel.
func NewPassthrough[T Sample]() *Passthrough[T] {
	return &Passthrough[T]{}
}

func (p *Passthrough[T]) Process(in, out []T) {
	CheckBuffers(len(in), len(out))
	copy(out, in)
}

func (p *Passthrough[T]) ProcessInPlace(buf []T) {}

// Stateless marks Passthrough as carrying no state.
func (p *Passthrough[T]) Stateless() {}
