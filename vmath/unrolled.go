package vmath

// realUnrolled processes four samples per iteration. The per-element
// arithmetic is identical to realScalar; only the loop shape differs.
type realUnrolled struct{ realScalar }

func (realUnrolled) Magnitude(dst []float32, src []float32) {
	checkLen("Magnitude", len(dst), len(src))
	n := len(src) &^ 3
	for i := 0; i < n; i += 4 {
		s := src[i : i+4 : i+4]
		d := dst[i : i+4 : i+4]
		d[0] = abs32(s[0])
		d[1] = abs32(s[1])
		d[2] = abs32(s[2])
		d[3] = abs32(s[3])
	}
	for i := n; i < len(src); i++ {
		dst[i] = abs32(src[i])
	}
}

func (realUnrolled) Multiply(dst, src []float32, gains []float32) {
	checkLen("Multiply", len(dst), len(src))
	checkLen("Multiply", len(gains), len(src))
	n := len(src) &^ 3
	for i := 0; i < n; i += 4 {
		s := src[i : i+4 : i+4]
		g := gains[i : i+4 : i+4]
		d := dst[i : i+4 : i+4]
		d[0] = s[0] * g[0]
		d[1] = s[1] * g[1]
		d[2] = s[2] * g[2]
		d[3] = s[3] * g[3]
	}
	for i := n; i < len(src); i++ {
		dst[i] = src[i] * gains[i]
	}
}

func (realUnrolled) Scale(dst, src []float32, gain float32) {
	checkLen("Scale", len(dst), len(src))
	n := len(src) &^ 3
	for i := 0; i < n; i += 4 {
		s := src[i : i+4 : i+4]
		d := dst[i : i+4 : i+4]
		d[0] = s[0] * gain
		d[1] = s[1] * gain
		d[2] = s[2] * gain
		d[3] = s[3] * gain
	}
	for i := n; i < len(src); i++ {
		dst[i] = src[i] * gain
	}
}

// complexUnrolled is the complex64 counterpart of realUnrolled.
type complexUnrolled struct{ complexScalar }

func (complexUnrolled) Magnitude(dst []float32, src []complex64) {
	checkLen("Magnitude", len(dst), len(src))
	n := len(src) &^ 3
	for i := 0; i < n; i += 4 {
		s := src[i : i+4 : i+4]
		d := dst[i : i+4 : i+4]
		d[0] = cabs32(s[0])
		d[1] = cabs32(s[1])
		d[2] = cabs32(s[2])
		d[3] = cabs32(s[3])
	}
	for i := n; i < len(src); i++ {
		dst[i] = cabs32(src[i])
	}
}

func (complexUnrolled) Multiply(dst, src []complex64, gains []float32) {
	checkLen("Multiply", len(dst), len(src))
	checkLen("Multiply", len(gains), len(src))
	n := len(src) &^ 3
	for i := 0; i < n; i += 4 {
		s := src[i : i+4 : i+4]
		g := gains[i : i+4 : i+4]
		d := dst[i : i+4 : i+4]
		d[0] = complex(real(s[0])*g[0], imag(s[0])*g[0])
		d[1] = complex(real(s[1])*g[1], imag(s[1])*g[1])
		d[2] = complex(real(s[2])*g[2], imag(s[2])*g[2])
		d[3] = complex(real(s[3])*g[3], imag(s[3])*g[3])
	}
	for i := n; i < len(src); i++ {
		g := gains[i]
		dst[i] = complex(real(src[i])*g, imag(src[i])*g)
	}
}

func (complexUnrolled) Scale(dst, src []complex64, gain float32) {
	checkLen("Scale", len(dst), len(src))
	n := len(src) &^ 3
	for i := 0; i < n; i += 4 {
		s := src[i : i+4 : i+4]
		d := dst[i : i+4 : i+4]
		d[0] = complex(real(s[0])*gain, imag(s[0])*gain)
		d[1] = complex(real(s[1])*gain, imag(s[1])*gain)
		d[2] = complex(real(s[2])*gain, imag(s[2])*gain)
		d[3] = complex(real(s[3])*gain, imag(s[3])*gain)
	}
	for i := n; i < len(src); i++ {
		dst[i] = complex(real(src[i])*gain, imag(src[i])*gain)
	}
}
