package track

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// KalmanConfig holds tuning parameters for the per-track estimator.
// Defaults follow a ~30fps capture: dt of one frame, no acceleration
// bias, moderate process noise and sub-pixel measurement noise.
type KalmanConfig struct {
	Dt           float64 `json:"dt" validate:"gt=0"`                // Sampling interval (seconds per frame)
	AccelX       float64 `json:"accel_x"`                           // Acceleration bias, x axis
	AccelY       float64 `json:"accel_y"`                           // Acceleration bias, y axis
	ProcessNoise float64 `json:"process_noise" validate:"gt=0"`     // Process noise magnitude (std of acceleration)
	MeasNoiseX   float64 `json:"meas_noise_x" validate:"gt=0"`      // Measurement noise std, x axis
	MeasNoiseY   float64 `json:"meas_noise_y" validate:"gt=0"`      // Measurement noise std, y axis
}

// Config holds tracker construction parameters. All values are fixed
// for the lifetime of a Tracker instance; Clear() empties the track
// set but never touches configuration.
type Config struct {
	// DistThreshold is the maximum Euclidean distance at which a real
	// detection is preferred over the synthetic no-match outcome. It is
	// also the constant cost of every no-match column, so the solver can
	// never pair a track with a detection farther than this.
	DistThreshold float64 `json:"dist_threshold" validate:"gt=0"`

	// MaxFramesToSkip is the coasting budget: a track is deleted when
	// its skipped-frame counter exceeds this value.
	MaxFramesToSkip int `json:"max_frames_to_skip" validate:"gte=0"`

	// MaxTraceLength bounds the position and bounding-box traces.
	// Oldest entries are evicted first.
	MaxTraceLength int `json:"max_trace_length" validate:"gt=0"`

	// StartID is the first auto-assigned track ID.
	StartID int64 `json:"start_id" validate:"gte=0"`

	// UseKalman enables per-track state estimation. When false, a
	// track's position updates only on a real match and unmatched
	// tracks keep the prior frame's position verbatim.
	UseKalman bool `json:"use_kalman"`

	// RecordClasses and RecordBoxes fix, at construction time, whether
	// Update expects index-aligned class labels and bounding boxes.
	RecordClasses bool `json:"record_classes"`
	RecordBoxes   bool `json:"record_boxes"`

	// HoldBoxWhileCoasting repeats the last known bounding box on
	// unmatched frames, assuming object size persists through brief
	// occlusion. Set false to leave gaps instead.
	HoldBoxWhileCoasting bool `json:"hold_box_while_coasting"`

	// Kalman tuning is validated only when UseKalman is set, so a
	// zero-valued KalmanConfig is fine for raw-matching trackers.
	Kalman KalmanConfig `json:"kalman" validate:"-"`
}

// DefaultConfig returns tracker parameters suitable for ~30fps footage
// with pixel-scale coordinates.
func DefaultConfig() Config {
	return Config{
		DistThreshold:        100,
		MaxFramesToSkip:      10,
		MaxTraceLength:       50,
		StartID:              0,
		UseKalman:            true,
		HoldBoxWhileCoasting: true,
		Kalman: KalmanConfig{
			Dt:           0.033,
			AccelX:       0,
			AccelY:       0,
			ProcessNoise: 5,
			MeasNoiseX:   0.1,
			MeasNoiseY:   0.1,
		},
	}
}

// Validate checks the configuration for internally consistent values.
func (c Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid tracker config: %w", err)
	}
	if c.UseKalman {
		if err := v.Struct(c.Kalman); err != nil {
			return fmt.Errorf("invalid kalman config: %w", err)
		}
	}
	return nil
}
