// Package config loads tuning of the selection and display pipeline.
package config

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"

	"github.com/LdDl/focus-go/focus"
)

// maxFileSize bounds config file reads (1MB)
const maxFileSize = 1 * 1024 * 1024

// Config is the root configuration. The JSON file uses the mapstructure keys.
type Config struct {
	Selector  SelectorConfig  `mapstructure:"selector"`
	Lifecycle LifecycleConfig `mapstructure:"lifecycle"`
	Labeling  LabelingConfig  `mapstructure:"labeling"`
	View      ViewConfig      `mapstructure:"view"`
	Tracking  TrackingConfig  `mapstructure:"tracking"`
}

type SelectorConfig struct {
	CooldownFrames int     `mapstructure:"cooldown_frames"`
	Hysteresis     float64 `mapstructure:"hysteresis"`
	CenterWeight   float64 `mapstructure:"center_weight"`
	AreaWeight     float64 `mapstructure:"area_weight"`
}

type LifecycleConfig struct {
	DisplayDuration  time.Duration `mapstructure:"display_duration"`
	CooldownDuration time.Duration `mapstructure:"cooldown_duration"`
}

type LabelingConfig struct {
	// Labels below this confidence are discarded (inclusive bound)
	MinConfidence float64 `mapstructure:"min_confidence"`
}

// ViewConfig is size of the preview the boxes are mapped onto
type ViewConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// TrackingConfig controls identifier assignment for detectors without tracking
type TrackingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	MaxNoMatch   int     `mapstructure:"max_no_match"`
	IoUThreshold float64 `mapstructure:"iou_threshold"`
}

// Default returns configuration with the stock tuning
func Default() *Config {
	return &Config{
		Selector: SelectorConfig{
			CooldownFrames: focus.DefaultSelectionCooldownFrames,
			Hysteresis:     focus.DefaultSelectionHysteresis,
			CenterWeight:   focus.DefaultCenterWeight,
			AreaWeight:     focus.DefaultAreaWeight,
		},
		Lifecycle: LifecycleConfig{
			DisplayDuration:  focus.DefaultDisplayDuration,
			CooldownDuration: focus.DefaultCooldownDuration,
		},
		Labeling: LabelingConfig{
			MinConfidence: 0.70,
		},
		View: ViewConfig{
			Width:  720,
			Height: 1280,
		},
		Tracking: TrackingConfig{
			Enabled:      false,
			MaxNoMatch:   5,
			IoUThreshold: 0.1,
		},
	}
}

// Load reads a JSON file on top of Default. Keys missing from the file keep their default values.
// Durations are strings like "4s" or "1500ms".
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, errors.Errorf("config file must have .json extension, got %q", ext)
	}
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, errors.Wrap(err, "can't stat config file")
	}
	if fileInfo.Size() > maxFileSize {
		return nil, errors.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, errors.Wrap(err, "can't read config file")
	}
	return Parse(data)
}

// Parse decodes JSON document on top of Default and validates the result
func Parse(data []byte) (*Config, error) {
	raw := make(map[string]any)
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "can't parse config JSON")
	}

	cfg := Default()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			strictNumbersHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
		),
		ErrorUnused: true,
		Result:      cfg,
	})
	if err != nil {
		return nil, errors.Wrap(err, "can't prepare config decoder")
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, errors.Wrap(err, "can't decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// strictNumbersHookFunc rejects JSON numbers for duration keys (they would be read as nanoseconds)
// and fractional JSON numbers for integer keys (they would be truncated).
func strictNumbersHookFunc() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(time.Duration(0))
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to == durationType {
			if from.Kind() != reflect.String {
				return nil, errors.Errorf("duration must be a string like \"4s\", got %v", data)
			}
			return data, nil
		}
		switch to.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if number, ok := data.(float64); ok && number != math.Trunc(number) {
				return nil, errors.Errorf("integer expected, got %v", number)
			}
		}
		return data, nil
	}
}

// Validate checks that every value is usable
func (cfg *Config) Validate() error {
	switch {
	case cfg.Selector.CooldownFrames <= 0:
		return errors.Errorf("selector.cooldown_frames must be positive, got %d", cfg.Selector.CooldownFrames)
	case cfg.Selector.Hysteresis < 1:
		return errors.Errorf("selector.hysteresis must be at least 1, got %v", cfg.Selector.Hysteresis)
	case cfg.Selector.CenterWeight < 0 || cfg.Selector.AreaWeight < 0:
		return errors.New("selector weights must not be negative")
	case cfg.Lifecycle.DisplayDuration <= 0:
		return errors.Errorf("lifecycle.display_duration must be positive, got %s", cfg.Lifecycle.DisplayDuration)
	case cfg.Lifecycle.CooldownDuration <= 0:
		return errors.Errorf("lifecycle.cooldown_duration must be positive, got %s", cfg.Lifecycle.CooldownDuration)
	case cfg.Labeling.MinConfidence < 0 || cfg.Labeling.MinConfidence > 1:
		return errors.Errorf("labeling.min_confidence must be within [0, 1], got %v", cfg.Labeling.MinConfidence)
	case cfg.View.Width <= 0 || cfg.View.Height <= 0:
		return errors.Errorf("view size must be positive, got %dx%d", cfg.View.Width, cfg.View.Height)
	case cfg.Tracking.MaxNoMatch < 0:
		return errors.Errorf("tracking.max_no_match must not be negative, got %d", cfg.Tracking.MaxNoMatch)
	}
	return nil
}

// NewSelector builds selector with configured tuning
func (cfg *Config) NewSelector() *focus.Selector {
	return focus.NewSelector(cfg.Selector.CooldownFrames, cfg.Selector.Hysteresis, cfg.Selector.CenterWeight, cfg.Selector.AreaWeight)
}

// NewTracker builds identifier assigner, nil when tracking is disabled
func (cfg *Config) NewTracker(opts ...focus.IoUTrackerOption) *focus.IoUTracker {
	if !cfg.Tracking.Enabled {
		return nil
	}
	return focus.NewIoUTracker(cfg.Tracking.MaxNoMatch, cfg.Tracking.IoUThreshold, opts...)
}
