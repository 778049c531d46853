// errors.go defines configuration errors for the analog gain kernels.

package analog

import "errors"

// Configuration errors returned by the kernel constructors.
var (
	// ErrInvalidDecimation indicates a gain-update decimation stride below 1.
	ErrInvalidDecimation = errors.New("analog: invalid decimation (must be >= 1)")

	// ErrInvalidWarmup indicates a calibration length below 1 sample.
	ErrInvalidWarmup = errors.New("analog: invalid warmup sample count (must be >= 1)")

	// ErrCalibrationIncomplete indicates the calibration buffer is not yet full,
	// so no initial gain can be estimated.
	ErrCalibrationIncomplete = errors.New("analog: calibration buffer not yet filled")
)
