package vmath

import (
	"os"
	"runtime"

	"golang.org/x/sys/cpu"
)

// Level identifies the implementation selected by For.
type Level int

const (
	LevelScalar Level = iota
	LevelUnrolled
)

func (l Level) String() string {
	switch l {
	case LevelUnrolled:
		return "unrolled"
	default:
		return "scalar"
	}
}

var (
	currentLevel Level
	currentName  string

	realDefault    Provider[float32]
	complexDefault Provider[complex64]
)

func init() {
	// Check if vector paths are disabled via environment variable
	if NoVecEnv() {
		setScalarMode()
		return
	}
	detectCPUFeatures()
}

// NoVecEnv reports whether AGCKIT_NO_VEC asks for the scalar fallback.
func NoVecEnv() bool {
	v := os.Getenv("AGCKIT_NO_VEC")
	return v != "" && v != "0" && v != "false"
}

func detectCPUFeatures() {
	switch {
	case runtime.GOARCH == "amd64" && cpu.X86.HasAVX2:
		setUnrolledMode("avx2")
	case runtime.GOARCH == "arm64" && cpu.ARM64.HasASIMD:
		setUnrolledMode("asimd")
	default:
		setScalarMode()
	}
}

func setScalarMode() {
	currentLevel = LevelScalar
	currentName = "scalar"
	realDefault = realScalar{}
	complexDefault = complexScalar{}
}

func setUnrolledMode(feature string) {
	currentLevel = LevelUnrolled
	currentName = "unrolled/" + feature
	realDefault = realUnrolled{}
	complexDefault = complexUnrolled{}
}

// CurrentLevel returns the dispatch level chosen at init.
func CurrentLevel() Level { return currentLevel }

// CurrentName returns a short description of the chosen path, e.g. "unrolled/avx2".
func CurrentName() string { return currentName }
