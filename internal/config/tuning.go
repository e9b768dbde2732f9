package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonmatthis/OmniTrax/track"
)

// DefaultConfigPath is the path to the canonical tracker defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tracker.defaults.json"

// TuningConfig represents the root configuration for tracker tuning.
// All fields are pointers so a partial JSON file only overrides what it
// names; the Get* methods supply fallback defaults for the rest.
type TuningConfig struct {
	// Association and lifecycle params
	DistThreshold   *float64 `json:"dist_threshold,omitempty"`
	MaxFramesToSkip *int     `json:"max_frames_to_skip,omitempty"`
	MaxTraceLength  *int     `json:"max_trace_length,omitempty"`
	StartID         *int64   `json:"start_id,omitempty"`

	// Input shape params
	RecordClasses        *bool `json:"record_classes,omitempty"`
	RecordBoxes          *bool `json:"record_boxes,omitempty"`
	HoldBoxWhileCoasting *bool `json:"hold_box_while_coasting,omitempty"`

	// Estimator params
	UseKalman    *bool    `json:"use_kalman,omitempty"`
	Dt           *float64 `json:"dt,omitempty"`
	AccelX       *float64 `json:"accel_x,omitempty"`
	AccelY       *float64 `json:"accel_y,omitempty"`
	ProcessNoise *float64 `json:"process_noise,omitempty"`
	MeasNoiseX   *float64 `json:"meas_noise_x,omitempty"`
	MeasNoiseY   *float64 `json:"meas_noise_y,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from a file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file is
// validated to have a .json extension and to be under the max file
// size. Fields omitted from the JSON retain their defaults, so partial
// configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tracker defaults from
// DefaultConfigPath, searching the current directory and common parent
// directories. Panics if the file cannot be loaded; intended for test
// setup and binaries that have already validated config availability.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
		"../../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.DistThreshold != nil && *c.DistThreshold <= 0 {
		return fmt.Errorf("dist_threshold must be positive, got %f", *c.DistThreshold)
	}
	if c.MaxFramesToSkip != nil && *c.MaxFramesToSkip < 0 {
		return fmt.Errorf("max_frames_to_skip must be non-negative, got %d", *c.MaxFramesToSkip)
	}
	if c.MaxTraceLength != nil && *c.MaxTraceLength <= 0 {
		return fmt.Errorf("max_trace_length must be positive, got %d", *c.MaxTraceLength)
	}
	if c.StartID != nil && *c.StartID < 0 {
		return fmt.Errorf("start_id must be non-negative, got %d", *c.StartID)
	}
	if c.Dt != nil && *c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", *c.Dt)
	}
	if c.ProcessNoise != nil && *c.ProcessNoise <= 0 {
		return fmt.Errorf("process_noise must be positive, got %f", *c.ProcessNoise)
	}
	if c.MeasNoiseX != nil && *c.MeasNoiseX <= 0 {
		return fmt.Errorf("meas_noise_x must be positive, got %f", *c.MeasNoiseX)
	}
	if c.MeasNoiseY != nil && *c.MeasNoiseY <= 0 {
		return fmt.Errorf("meas_noise_y must be positive, got %f", *c.MeasNoiseY)
	}
	return nil
}

// GetDistThreshold returns the dist_threshold value or the default.
func (c *TuningConfig) GetDistThreshold() float64 {
	if c.DistThreshold == nil {
		return 100
	}
	return *c.DistThreshold
}

// GetMaxFramesToSkip returns the max_frames_to_skip value or the default.
func (c *TuningConfig) GetMaxFramesToSkip() int {
	if c.MaxFramesToSkip == nil {
		return 10
	}
	return *c.MaxFramesToSkip
}

// GetMaxTraceLength returns the max_trace_length value or the default.
func (c *TuningConfig) GetMaxTraceLength() int {
	if c.MaxTraceLength == nil {
		return 50
	}
	return *c.MaxTraceLength
}

// GetStartID returns the start_id value or the default.
func (c *TuningConfig) GetStartID() int64 {
	if c.StartID == nil {
		return 0
	}
	return *c.StartID
}

// GetRecordClasses returns the record_classes value or the default.
func (c *TuningConfig) GetRecordClasses() bool {
	if c.RecordClasses == nil {
		return false
	}
	return *c.RecordClasses
}

// GetRecordBoxes returns the record_boxes value or the default.
func (c *TuningConfig) GetRecordBoxes() bool {
	if c.RecordBoxes == nil {
		return false
	}
	return *c.RecordBoxes
}

// GetHoldBoxWhileCoasting returns the hold_box_while_coasting value or the default.
func (c *TuningConfig) GetHoldBoxWhileCoasting() bool {
	if c.HoldBoxWhileCoasting == nil {
		return true
	}
	return *c.HoldBoxWhileCoasting
}

// GetUseKalman returns the use_kalman value or the default.
func (c *TuningConfig) GetUseKalman() bool {
	if c.UseKalman == nil {
		return true
	}
	return *c.UseKalman
}

// GetDt returns the dt value or the default.
func (c *TuningConfig) GetDt() float64 {
	if c.Dt == nil {
		return 0.033
	}
	return *c.Dt
}

// GetAccelX returns the accel_x value or the default.
func (c *TuningConfig) GetAccelX() float64 {
	if c.AccelX == nil {
		return 0
	}
	return *c.AccelX
}

// GetAccelY returns the accel_y value or the default.
func (c *TuningConfig) GetAccelY() float64 {
	if c.AccelY == nil {
		return 0
	}
	return *c.AccelY
}

// GetProcessNoise returns the process_noise value or the default.
func (c *TuningConfig) GetProcessNoise() float64 {
	if c.ProcessNoise == nil {
		return 5
	}
	return *c.ProcessNoise
}

// GetMeasNoiseX returns the meas_noise_x value or the default.
func (c *TuningConfig) GetMeasNoiseX() float64 {
	if c.MeasNoiseX == nil {
		return 0.1
	}
	return *c.MeasNoiseX
}

// GetMeasNoiseY returns the meas_noise_y value or the default.
func (c *TuningConfig) GetMeasNoiseY() float64 {
	if c.MeasNoiseY == nil {
		return 0.1
	}
	return *c.MeasNoiseY
}

// TrackerConfig builds a track.Config from the loaded tuning values.
func (c *TuningConfig) TrackerConfig() track.Config {
	return track.Config{
		DistThreshold:        c.GetDistThreshold(),
		MaxFramesToSkip:      c.GetMaxFramesToSkip(),
		MaxTraceLength:       c.GetMaxTraceLength(),
		StartID:              c.GetStartID(),
		UseKalman:            c.GetUseKalman(),
		RecordClasses:        c.GetRecordClasses(),
		RecordBoxes:          c.GetRecordBoxes(),
		HoldBoxWhileCoasting: c.GetHoldBoxWhileCoasting(),
		Kalman: track.KalmanConfig{
			Dt:           c.GetDt(),
			AccelX:       c.GetAccelX(),
			AccelY:       c.GetAccelY(),
			ProcessNoise: c.GetProcessNoise(),
			MeasNoiseX:   c.GetMeasNoiseX(),
			MeasNoiseY:   c.GetMeasNoiseY(),
		},
	}
}
