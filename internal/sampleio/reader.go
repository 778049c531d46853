package sampleio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/linuxmatters/agckit/vmath"
	"github.com/youpy/go-wav"
)

// Reader reads blocks of samples from a file.
type Reader struct {
	file *os.File
	meta Metadata

	wav *wav.Reader
	raw *bufio.Reader
	buf []byte
}

// Open opens a sample file for reading. The container is chosen from the
// file extension.
func Open(filename string) (*Reader, *Metadata, error) {
	format, err := FormatFor(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", err, filename)
	}

	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input file: %w", err)
	}

	r := &Reader{file: f, meta: Metadata{Format: format}}
	if format == FormatWAV {
		err = r.openWAV()
	} else {
		err = r.openRaw()
	}
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("%s: %w", filename, err)
	}

	meta := r.meta
	return r, &meta, nil
}

func (r *Reader) openWAV() error {
	r.wav = wav.NewReader(r.file)
	format, err := r.wav.Format()
	if err != nil {
		return fmt.Errorf("failed to read WAV format: %w", err)
	}
	if format.NumChannels < 1 || format.NumChannels > 2 {
		return fmt.Errorf("%w: %d", ErrChannels, format.NumChannels)
	}
	// Duration loads the data chunk, which gives us its size.
	if _, err := r.wav.Duration(); err != nil {
		return fmt.Errorf("failed to read WAV data chunk: %w", err)
	}

	r.meta.SampleRate = int(format.SampleRate)
	r.meta.Complex = format.NumChannels == 2
	r.meta.BitDepth = int(format.BitsPerSample)
	if format.BlockAlign > 0 {
		r.meta.Samples = int64(r.wav.WavData.Size) / int64(format.BlockAlign)
	}
	return nil
}

func (r *Reader) openRaw() error {
	info, err := r.file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat input file: %w", err)
	}

	r.meta.SampleRate = DefaultSampleRate
	r.meta.Complex = r.meta.Format == FormatCF32
	r.meta.BitDepth = 32
	r.meta.Samples = info.Size() / int64(r.sampleBytes())
	r.raw = bufio.NewReaderSize(r.file, 64*1024)
	return nil
}

func (r *Reader) sampleBytes() int {
	if r.meta.Complex {
		return 8
	}
	return 4
}

// Metadata returns the stream description.
func (r *Reader) Metadata() Metadata { return r.meta }

// ReadBlock fills buf with the next samples and returns how many were read.
// It returns io.EOF once the stream is exhausted. The element type must
// match the stream: float32 for real streams and complex64 for complex ones.
func ReadBlock[T vmath.Sample](r *Reader, buf []T) (int, error) {
	switch b := any(buf).(type) {
	case []float32:
		if r.meta.Complex {
			return 0, ErrSampleType
		}
		return r.read(len(b), func(i int, re, _ float32) { b[i] = re })
	case []complex64:
		if !r.meta.Complex {
			return 0, ErrSampleType
		}
		return r.read(len(b), func(i int, re, im float32) { b[i] = complex(re, im) })
	}
	return 0, ErrSampleType
}

// read decodes up to n samples and hands each one to put.
func (r *Reader) read(n int, put func(i int, re, im float32)) (int, error) {
	if n == 0 {
		return 0, nil
	}
	if r.wav != nil {
		return r.readWAV(n, put)
	}
	return r.readRaw(n, put)
}

func (r *Reader) readWAV(n int, put func(i int, re, im float32)) (int, error) {
	samples, err := r.wav.ReadSamples(uint32(n))
	if err != nil {
		if err == io.EOF {
			return 0, io.EOF
		}
		return 0, fmt.Errorf("failed to read samples: %w", err)
	}
	if len(samples) == 0 {
		return 0, io.EOF
	}

	for i, s := range samples {
		re := float32(r.wav.FloatValue(s, 0))
		var im float32
		if r.meta.Complex {
			im = float32(r.wav.FloatValue(s, 1))
		}
		put(i, re, im)
	}
	return len(samples), nil
}

func (r *Reader) readRaw(n int, put func(i int, re, im float32)) (int, error) {
	size := r.sampleBytes()
	r.buf = growBytes(r.buf, n*size)

	got, err := io.ReadFull(r.raw, r.buf)
	switch {
	case err == io.EOF:
		return 0, io.EOF
	case err == io.ErrUnexpectedEOF:
		// Short final block. A trailing partial sample is dropped.
	case err != nil:
		return 0, fmt.Errorf("failed to read samples: %w", err)
	}

	count := got / size
	if count == 0 {
		return 0, io.EOF
	}
	for i := 0; i < count; i++ {
		p := r.buf[i*size:]
		re := math.Float32frombits(binary.LittleEndian.Uint32(p))
		var im float32
		if r.meta.Complex {
			im = math.Float32frombits(binary.LittleEndian.Uint32(p[4:]))
		}
		put(i, re, im)
	}
	return count, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

func growBytes(b []byte, n int) []byte {
	if cap(b) >= n {
		return b[:n]
	}
	return make([]byte, n)
}
