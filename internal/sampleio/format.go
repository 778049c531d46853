// Package sampleio reads and writes sample streams for the command line
// tools. WAV files go through go-wav: mono maps to a real stream and stereo
// to a complex I/Q stream (left = I, right = Q). Raw little-endian float32
// files carry real (.f32) or interleaved complex (.cf32) samples.
package sampleio

import (
	"errors"
	"path/filepath"
	"strings"
)

// Format identifies a container.
type Format int

const (
	FormatWAV Format = iota
	FormatF32
	FormatCF32
)

func (f Format) String() string {
	switch f {
	case FormatWAV:
		return "wav"
	case FormatF32:
		return "f32"
	case FormatCF32:
		return "cf32"
	default:
		return "unknown"
	}
}

var (
	// ErrUnknownFormat is returned for file extensions sampleio cannot handle.
	ErrUnknownFormat = errors.New("sampleio: unknown file format")
	// ErrSampleType is returned when a real stream is read or written as
	// complex, or the other way around.
	ErrSampleType = errors.New("sampleio: sample type does not match stream")
	// ErrChannels is returned for WAV files with more than two channels.
	ErrChannels = errors.New("sampleio: unsupported channel count")
)

// DefaultSampleRate is assumed for raw files, which carry no header.
const DefaultSampleRate = 48000

// FormatFor picks the container from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return FormatWAV, nil
	case ".f32", ".raw":
		return FormatF32, nil
	case ".cf32", ".fc32", ".iq":
		return FormatCF32, nil
	}
	return 0, ErrUnknownFormat
}

// Metadata describes a sample stream.
type Metadata struct {
	Format     Format
	SampleRate int
	Complex    bool
	Samples    int64 // samples per channel; complex samples count once
	BitDepth   int   // container bit depth, 32 for raw files
}

// Duration returns the stream length in seconds.
func (m *Metadata) Duration() float64 {
	if m.SampleRate <= 0 {
		return 0
	}
	return float64(m.Samples) / float64(m.SampleRate)
}

// Channels returns the WAV channel count for the stream.
func (m *Metadata) Channels() int {
	if m.Complex {
		return 2
	}
	return 1
}

// Kind names the sample type for display.
func (m *Metadata) Kind() string {
	if m.Complex {
		return "complex"
	}
	return "real"
}
