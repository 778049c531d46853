package processor

import "math/rand/v2"

// blockSizer yields the size of each block handed to the kernel. A fixed
// sizer always returns the maximum; a jittered one draws sizes uniformly
// from [1, max], which exercises kernels the way an irregular upstream
// scheduler would.
type blockSizer struct {
	max int
	rng *rand.Rand
}

func newBlockSizer(c *Config) *blockSizer {
	s := &blockSizer{max: c.BlockSize}
	if c.BlockJitter {
		s.rng = rand.New(rand.NewPCG(c.Seed, c.Seed^0x5851f42d4c957f2d))
	}
	return s
}

// next returns the size of the next block, never more than remaining when
// remaining is positive.
func (s *blockSizer) next(remaining int64) int {
	n := s.max
	if s.rng != nil {
		n = 1 + s.rng.IntN(s.max)
	}
	if remaining > 0 && int64(n) > remaining {
		n = int(remaining)
	}
	return n
}
