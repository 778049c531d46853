package processor

import "math"

// Adaptive tuning limits.
const (
	// noiseHeadroomDB keeps the amplified noise floor this far below the
	// reference level.
	noiseHeadroomDB = 20.0

	minAdaptiveGainDB = 0.0
	maxAdaptiveGainDB = 80.0

	// maxWarmupFraction caps calibration at this share of the stream so
	// short files still see the tracking loop.
	maxWarmupFraction = 0.25

	defaultMaxGain = 100.0
)

// AdaptConfig tunes kernel parameters from pass 1 measurements. It only
// changes anything when config.Adaptive is set.
func AdaptConfig(config *Config, m *Measurements) {
	if !config.Adaptive || m == nil {
		return
	}

	tuneMaxGain(config, m)
	tuneWarmup(config, m)

	sanitizeConfig(config)
}

// tuneMaxGain limits the gain so the quietest window, taken as the noise
// floor, cannot be lifted above reference minus noiseHeadroomDB.
//
// Example: reference -20 dBFS, floor -70 dBFS: max gain = -20 - (-70) - 20 = 30 dB.
//
// A single-rate kernel whose ceiling was disabled keeps it disabled.
func tuneMaxGain(config *Config, m *Measurements) {
	if config.Kernel == KernelPassthrough || m.RMSTrough <= silenceFloor {
		return
	}
	if config.Kernel == KernelSingle && config.MaxGain <= 0 {
		return
	}
	refDB := LinearToDb(float64(config.Reference))
	gainDB := clamp(refDB-m.RMSTrough-noiseHeadroomDB, minAdaptiveGainDB, maxAdaptiveGainDB)
	config.MaxGain = float32(DbToLinear(gainDB))
}

func tuneWarmup(config *Config, m *Measurements) {
	if config.Kernel != KernelCalibrated || m.Samples == 0 {
		return
	}
	limit := int(float64(m.Samples) * maxWarmupFraction)
	if config.WarmupSamples > limit {
		config.WarmupSamples = max(limit, 1)
	}
}

// sanitizeConfig ensures no NaN or Inf values remain after adaptive tuning.
func sanitizeConfig(config *Config) {
	config.MaxGain = float32(sanitizeFloat(float64(config.MaxGain), defaultMaxGain))
	if config.MaxGain <= 0 && config.Kernel != KernelSingle {
		config.MaxGain = defaultMaxGain
	}
}

// sanitizeFloat returns defaultVal if val is NaN or Inf.
func sanitizeFloat(val, defaultVal float64) float64 {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return defaultVal
	}
	return val
}

// clamp restricts val to the range [min, max].
func clamp(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
