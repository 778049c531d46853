package sampleio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/linuxmatters/agckit/vmath"
	"github.com/youpy/go-wav"
)

// wavBitDepth is the PCM depth of written WAV files.
const wavBitDepth = 16

// Writer writes blocks of samples to a file.
type Writer struct {
	file    *os.File
	meta    Metadata
	out     *bufio.Writer
	wav     *wav.Writer
	frames  []wav.Sample
	buf     []byte
	written int64
}

// Create opens filename for writing. The container comes from the file
// extension; meta supplies the sample type, rate and, for WAV, the number of
// samples that will be written, since the header is emitted up front.
func Create(filename string, meta Metadata) (*Writer, error) {
	format, err := FormatFor(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, filename)
	}
	if format == FormatCF32 && !meta.Complex || format == FormatF32 && meta.Complex {
		return nil, fmt.Errorf("%w: %s stream in %s file", ErrSampleType, meta.Kind(), format)
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	meta.Format = format
	if meta.SampleRate <= 0 {
		meta.SampleRate = DefaultSampleRate
	}

	w := &Writer{file: f, meta: meta, out: bufio.NewWriterSize(f, 64*1024)}
	if format == FormatWAV {
		meta.BitDepth = wavBitDepth
		w.meta = meta
		w.wav = wav.NewWriter(w.out, uint32(meta.Samples), uint16(meta.Channels()), uint32(meta.SampleRate), wavBitDepth)
	} else {
		w.meta.BitDepth = 32
	}
	return w, nil
}

// Metadata returns the description the writer was created with.
func (w *Writer) Metadata() Metadata { return w.meta }

// WriteBlock appends buf to the stream. The element type must match the
// stream's sample type.
func WriteBlock[T vmath.Sample](w *Writer, buf []T) error {
	switch b := any(buf).(type) {
	case []float32:
		if w.meta.Complex {
			return ErrSampleType
		}
		return w.write(len(b), func(i int) (float32, float32) { return b[i], 0 })
	case []complex64:
		if !w.meta.Complex {
			return ErrSampleType
		}
		return w.write(len(b), func(i int) (float32, float32) { return real(b[i]), imag(b[i]) })
	}
	return ErrSampleType
}

func (w *Writer) write(n int, get func(i int) (re, im float32)) error {
	if n == 0 {
		return nil
	}
	var err error
	if w.wav != nil {
		err = w.writeWAV(n, get)
	} else {
		err = w.writeRaw(n, get)
	}
	if err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}
	w.written += int64(n)
	return nil
}

func (w *Writer) writeWAV(n int, get func(i int) (re, im float32)) error {
	if w.written+int64(n) > w.meta.Samples {
		return fmt.Errorf("%d samples exceed the %d declared in the WAV header", w.written+int64(n), w.meta.Samples)
	}
	if cap(w.frames) < n {
		w.frames = make([]wav.Sample, n)
	}
	frames := w.frames[:n]
	for i := range frames {
		re, im := get(i)
		frames[i].Values[0] = toPCM16(re)
		frames[i].Values[1] = toPCM16(im)
	}
	return w.wav.WriteSamples(frames)
}

func (w *Writer) writeRaw(n int, get func(i int) (re, im float32)) error {
	size := 4
	if w.meta.Complex {
		size = 8
	}
	w.buf = growBytes(w.buf, n*size)
	for i := 0; i < n; i++ {
		re, im := get(i)
		p := w.buf[i*size:]
		binary.LittleEndian.PutUint32(p, math.Float32bits(re))
		if w.meta.Complex {
			binary.LittleEndian.PutUint32(p[4:], math.Float32bits(im))
		}
	}
	_, err := w.out.Write(w.buf)
	return err
}

// Close flushes buffered samples and closes the file. For WAV output it
// reports an error if fewer samples were written than the header declares.
func (w *Writer) Close() error {
	if w.file == nil {
		return nil
	}
	flushErr := w.out.Flush()
	closeErr := w.file.Close()
	w.file = nil

	if flushErr != nil {
		return fmt.Errorf("failed to flush output: %w", flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close output: %w", closeErr)
	}
	if w.wav != nil && w.written != w.meta.Samples {
		return fmt.Errorf("wrote %d of %d declared samples", w.written, w.meta.Samples)
	}
	return nil
}

// toPCM16 converts a float sample to 16-bit PCM, clipping at full scale.
func toPCM16(v float32) int {
	if v != v {
		return 0
	}
	s := float64(v) * math.MaxInt16
	if s > math.MaxInt16 {
		return math.MaxInt16
	}
	if s < math.MinInt16 {
		return math.MinInt16
	}
	return int(math.Round(s))
}
