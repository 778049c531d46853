package vmath

import "unsafe"

// alignment is the byte boundary Alloc guarantees; one cache line, which also
// covers 512-bit vector loads.
const alignment = 64

// Alignment returns the byte alignment of slices returned by Alloc.
func Alignment() int { return alignment }

// Alloc returns a zeroed float32 slice of length n whose first element sits on
// an Alignment() boundary. There is no matching free: the garbage collector
// reclaims the backing array once the slice is unreachable.
func Alloc(n int) []float32 {
	return AllocSamples[float32](n)
}

// AllocSamples is Alloc for any sample type.
func AllocSamples[T Sample](n int) []T {
	if n <= 0 {
		return nil
	}
	var zero T
	size := int(unsafe.Sizeof(zero))
	pad := alignment / size
	buf := make([]T, n+pad)
	addr := uintptr(unsafe.Pointer(&buf[0]))
	off := int((alignment-addr%alignment)%alignment) / size
	return buf[off : off+n : off+n]
}

// Grow returns buf resliced to length n, reallocating through Alloc only when
// the capacity is too small. Contents are not preserved across a reallocation.
func Grow(buf []float32, n int) []float32 {
	if cap(buf) >= n {
		return buf[:n]
	}
	return Alloc(n)
}
