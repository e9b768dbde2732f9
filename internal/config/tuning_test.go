package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmptyConfigDefaults(t *testing.T) {
	cfg := EmptyTuningConfig()

	// All fields nil, all getters supply defaults
	if cfg.DistThreshold != nil {
		t.Errorf("Expected nil DistThreshold, got %v", cfg.DistThreshold)
	}
	if cfg.GetDistThreshold() != 100 {
		t.Errorf("GetDistThreshold() = %f, want 100", cfg.GetDistThreshold())
	}
	if cfg.GetMaxFramesToSkip() != 10 {
		t.Errorf("GetMaxFramesToSkip() = %d, want 10", cfg.GetMaxFramesToSkip())
	}
	if cfg.GetMaxTraceLength() != 50 {
		t.Errorf("GetMaxTraceLength() = %d, want 50", cfg.GetMaxTraceLength())
	}
	if cfg.GetStartID() != 0 {
		t.Errorf("GetStartID() = %d, want 0", cfg.GetStartID())
	}
	if cfg.GetUseKalman() != true {
		t.Errorf("GetUseKalman() = %v, want true", cfg.GetUseKalman())
	}
	if cfg.GetRecordClasses() != false {
		t.Errorf("GetRecordClasses() = %v, want false", cfg.GetRecordClasses())
	}
	if cfg.GetHoldBoxWhileCoasting() != true {
		t.Errorf("GetHoldBoxWhileCoasting() = %v, want true", cfg.GetHoldBoxWhileCoasting())
	}
	if cfg.GetDt() != 0.033 {
		t.Errorf("GetDt() = %f, want 0.033", cfg.GetDt())
	}
	if cfg.GetProcessNoise() != 5 {
		t.Errorf("GetProcessNoise() = %f, want 5", cfg.GetProcessNoise())
	}
	if cfg.GetMeasNoiseX() != 0.1 {
		t.Errorf("GetMeasNoiseX() = %f, want 0.1", cfg.GetMeasNoiseX())
	}
}

func TestLoadTuningConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")

	// Partial config: only some fields present
	testJSON := `{
  "dist_threshold": 42.5,
  "max_frames_to_skip": 3,
  "use_kalman": false,
  "record_classes": true
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadTuningConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Present fields override
	if cfg.DistThreshold == nil || *cfg.DistThreshold != 42.5 {
		t.Errorf("Expected DistThreshold 42.5, got %v", cfg.DistThreshold)
	}
	if cfg.MaxFramesToSkip == nil || *cfg.MaxFramesToSkip != 3 {
		t.Errorf("Expected MaxFramesToSkip 3, got %v", cfg.MaxFramesToSkip)
	}
	if cfg.UseKalman == nil || *cfg.UseKalman != false {
		t.Errorf("Expected UseKalman false, got %v", cfg.UseKalman)
	}
	if cfg.RecordClasses == nil || *cfg.RecordClasses != true {
		t.Errorf("Expected RecordClasses true, got %v", cfg.RecordClasses)
	}

	// Absent fields fall back to defaults
	if cfg.MaxTraceLength != nil {
		t.Errorf("Expected nil MaxTraceLength, got %v", cfg.MaxTraceLength)
	}
	if cfg.GetMaxTraceLength() != 50 {
		t.Errorf("GetMaxTraceLength() = %d, want 50", cfg.GetMaxTraceLength())
	}
	if cfg.GetDt() != 0.033 {
		t.Errorf("GetDt() = %f, want 0.033", cfg.GetDt())
	}
}

func TestLoadTuningConfigErrors(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadTuningConfig(filepath.Join(tmpDir, "missing.json")); err == nil {
			t.Error("Expected error for missing file")
		}
	})

	t.Run("wrong extension", func(t *testing.T) {
		path := filepath.Join(tmpDir, "config.yaml")
		if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
		_, err := LoadTuningConfig(path)
		if err == nil || !strings.Contains(err.Error(), ".json extension") {
			t.Errorf("Expected extension error, got %v", err)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		path := filepath.Join(tmpDir, "bad.json")
		if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadTuningConfig(path); err == nil {
			t.Error("Expected error for malformed JSON")
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		path := filepath.Join(tmpDir, "invalid.json")
		if err := os.WriteFile(path, []byte(`{"dist_threshold": -1}`), 0644); err != nil {
			t.Fatal(err)
		}
		_, err := LoadTuningConfig(path)
		if err == nil || !strings.Contains(err.Error(), "dist_threshold") {
			t.Errorf("Expected dist_threshold validation error, got %v", err)
		}
	})
}

func TestTuningConfigValidate(t *testing.T) {
	neg := -1.0
	zero := 0
	negID := int64(-2)

	cases := []struct {
		name string
		cfg  TuningConfig
		ok   bool
	}{
		{"empty is valid", TuningConfig{}, true},
		{"negative threshold", TuningConfig{DistThreshold: &neg}, false},
		{"negative start id", TuningConfig{StartID: &negID}, false},
		{"zero skip budget ok", TuningConfig{MaxFramesToSkip: &zero}, true},
		{"negative dt", TuningConfig{Dt: &neg}, false},
		{"negative process noise", TuningConfig{ProcessNoise: &neg}, false},
		{"negative meas noise", TuningConfig{MeasNoiseY: &neg}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tc.ok && err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()

	if cfg.GetDistThreshold() != 100 {
		t.Errorf("GetDistThreshold() = %f, want 100", cfg.GetDistThreshold())
	}
	if cfg.GetUseKalman() != true {
		t.Errorf("GetUseKalman() = %v, want true", cfg.GetUseKalman())
	}
}

func TestTrackerConfig(t *testing.T) {
	thresh := 12.0
	skip := 4
	useKF := false

	cfg := TuningConfig{
		DistThreshold:   &thresh,
		MaxFramesToSkip: &skip,
		UseKalman:       &useKF,
	}

	tc := cfg.TrackerConfig()
	if tc.DistThreshold != 12.0 {
		t.Errorf("DistThreshold = %f, want 12", tc.DistThreshold)
	}
	if tc.MaxFramesToSkip != 4 {
		t.Errorf("MaxFramesToSkip = %d, want 4", tc.MaxFramesToSkip)
	}
	if tc.UseKalman {
		t.Error("UseKalman = true, want false")
	}
	if tc.MaxTraceLength != 50 {
		t.Errorf("MaxTraceLength = %d, want 50", tc.MaxTraceLength)
	}
	if tc.Kalman.Dt != 0.033 {
		t.Errorf("Kalman.Dt = %f, want 0.033", tc.Kalman.Dt)
	}

	if err := tc.Validate(); err != nil {
		t.Errorf("built config should validate: %v", err)
	}
}
