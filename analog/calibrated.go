package analog

import (
	"math"

	"github.com/linuxmatters/agckit/kernel"
	"github.com/linuxmatters/agckit/vmath"
)

// Phase is the adaptation phase of a Calibrated kernel.
type Phase int

const (
	// PhaseWarmup passes samples through unchanged while filling the
	// calibration buffer.
	PhaseWarmup Phase = iota
	// PhaseTracking runs the decimated single-pole gain loop.
	PhaseTracking
)

func (p Phase) String() string {
	switch p {
	case PhaseWarmup:
		return "warmup"
	case PhaseTracking:
		return "tracking"
	default:
		return "unknown"
	}
}

// Calibrated is a gain kernel that first measures the stream and then tracks
// it at a decimated rate.
//
// During warmup the first warmupSamples samples are copied to the output
// unchanged and kept. Once that buffer is full the initial gain is set to
// reference*N/sum(|x|), clamped to [0, maxGain], and the kernel switches to
// tracking for the rest of the stream.
//
// Tracking splits the stream into windows of decimation samples. The first
// sample of each window gives one estimate inv = 1/|x|, and the gain moves
// toward reference*inv:
//
//	rate = decay if inv > gain/reference, else attack
//	gain -= rate * (gain - reference*inv)
//
// A zero or non-finite estimate leaks the gain instead (gain -= decay*gain).
// The clamped gain then scales every sample of the window. Windows are
// aligned to the stream, not to calls: when a call ends inside a window the
// remaining samples of that window are scaled at the start of the next call
// with the gain already computed for it.
type Calibrated[T vmath.Sample] struct {
	attack    float32
	decay     float32
	reference float32
	maxGain   float32
	gain      float32
	phase     Phase

	// calibration buffer, allocated once
	warmup   []T
	warmed   int
	initGain float32

	decim int
	// offset is how many leading samples of the next call still belong to
	// the window opened by the previous call.
	offset int

	vm     vmath.Provider[T]
	gather []float32
	inv    []float32
}

var _ kernel.Stateful[complex64] = (*Calibrated[complex64])(nil)

// NewCalibrated returns a Calibrated kernel in the warmup phase with unity
// gain. warmupSamples and decimation must both be at least 1.
func NewCalibrated[T vmath.Sample](attack, decay, reference, maxGain float32, warmupSamples, decimation int, opts ...Option) (*Calibrated[T], error) {
	if decimation < 1 {
		return nil, ErrInvalidDecimation
	}
	if warmupSamples < 1 {
		return nil, ErrInvalidWarmup
	}

	o, vm := buildOptions[T](opts)
	windows := (o.blockSize + decimation - 1) / decimation
	return &Calibrated[T]{
		attack:    attack,
		decay:     decay,
		reference: reference,
		maxGain:   maxGain,
		gain:      1,
		phase:     PhaseWarmup,
		warmup:    vmath.AllocSamples[T](warmupSamples),
		decim:     decimation,
		vm:        vm,
		gather:    vmath.Alloc(windows),
		inv:       vmath.Alloc(windows),
	}, nil
}

func (k *Calibrated[T]) Process(in, out []T) {
	kernel.CheckBuffers(len(in), len(out))
	out = out[:len(in)]

	if k.phase == PhaseWarmup {
		n := min(len(in), len(k.warmup)-k.warmed)
		copy(k.warmup[k.warmed:], in[:n])
		copy(out[:n], in[:n])
		k.warmed += n

		if k.warmed < len(k.warmup) {
			return
		}
		k.gain = k.estimateInitialGain()
		k.initGain = k.gain
		k.phase = PhaseTracking
		k.offset = 0
		in, out = in[n:], out[n:]
	}

	k.track(in, out)
}

func (k *Calibrated[T]) ProcessInPlace(buf []T) { k.Process(buf, buf) }

// track runs the decimated loop over one call's worth of tracking samples.
func (k *Calibrated[T]) track(in, out []T) {
	n := len(in)
	if n == 0 {
		return
	}

	// Finish the window the previous call left open.
	head := min(k.offset, n)
	if head > 0 {
		k.vm.Scale(out[:head], in[:head], k.gain)
		k.offset -= head
	}
	rest := n - head
	if rest == 0 {
		return
	}

	windows := (rest + k.decim - 1) / k.decim
	k.gather = vmath.Grow(k.gather, windows)
	k.inv = vmath.Grow(k.inv, windows)

	k.vm.MagnitudeSquaredStrided(k.gather, in[head:], k.decim)
	k.vm.InvSqrt(k.inv, k.gather)

	for w, inv := range k.inv {
		k.gain = k.update(inv)
		lo := head + w*k.decim
		hi := min(lo+k.decim, n)
		k.vm.Scale(out[lo:hi], in[lo:hi], k.gain)
	}

	if tail := rest % k.decim; tail > 0 {
		k.offset = k.decim - tail
	}
}

// update applies one decimated step of the tracking loop.
func (k *Calibrated[T]) update(inv float32) float32 {
	g := k.gain
	if isFinite(inv) {
		rate := k.attack
		if inv > g/k.reference {
			rate = k.decay
		}
		g -= rate * (g - k.reference*inv)
	} else {
		g -= k.decay * g
	}
	return clampGain(g, k.maxGain)
}

// estimateInitialGain derives the starting gain from the calibration buffer.
// Silence (a zero magnitude sum) or any other non-finite estimate falls back
// to maxGain. Magnitudes go through the gather scratch in chunks so the
// transition does not allocate.
func (k *Calibrated[T]) estimateInitialGain() float32 {
	scratch := k.gather[:cap(k.gather)]
	var sum float64
	for i := 0; i < len(k.warmup); i += len(scratch) {
		chunk := k.warmup[i:min(i+len(scratch), len(k.warmup))]
		mags := scratch[:len(chunk)]
		k.vm.Magnitude(mags, chunk)
		for _, m := range mags {
			sum += float64(m)
		}
	}

	g := float32(float64(k.reference) * float64(len(k.warmup)) / sum)
	if sum == 0 || !isFinite(g) {
		g = k.maxGain
	}
	return clampGain(g, k.maxGain)
}

// InitialGain returns the gain estimated from the calibration buffer. It
// fails with ErrCalibrationIncomplete until warmup has collected every sample.
func (k *Calibrated[T]) InitialGain() (float32, error) {
	if k.phase != PhaseTracking {
		return 0, ErrCalibrationIncomplete
	}
	return k.initGain, nil
}

// Reset returns the kernel to warmup with unity gain, discarding calibration
// progress and any open decimation window.
func (k *Calibrated[T]) Reset() {
	k.gain = 1
	k.phase = PhaseWarmup
	k.warmed = 0
	k.initGain = 0
	k.offset = 0
}

// Gain returns the current gain. It is 1 throughout warmup.
func (k *Calibrated[T]) Gain() float32 { return k.gain }

// Phase returns the current adaptation phase.
func (k *Calibrated[T]) Phase() Phase { return k.phase }

// Offset returns how many samples of the next call complete the previous
// call's last window. It is always in [0, decimation).
func (k *Calibrated[T]) Offset() int { return k.offset }

// WarmupProgress returns how many calibration samples have been collected
// out of the total required.
func (k *Calibrated[T]) WarmupProgress() (done, total int) {
	return k.warmed, len(k.warmup)
}

func isFinite(x float32) bool {
	return !math.IsNaN(float64(x)) && !math.IsInf(float64(x), 0)
}
