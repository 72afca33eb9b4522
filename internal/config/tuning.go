package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig holds the thresholds and toggles for every heuristic step of
// the width pipeline. Distances and areas are in metres / square metres of
// the projected plane; ratios are unit-less.
//
// Every field is optional. A nil field falls back to the default returned by
// its Get* accessor. Optional thresholds are disabled by setting them to 0.
type TuningConfig struct {
	// Skeleton extraction
	RemoveHoles                 *float64 `json:"remove_holes,omitempty"`
	FilterSkeletonsOutside      *bool    `json:"filter_skeletons_outside,omitempty"`
	FilterSkeletonsNearBoundary *float64 `json:"filter_skeletons_near_boundary,omitempty"`
	JoinSkeletons               *bool    `json:"join_skeletons,omitempty"`
	RemoveShortSkeletons        *float64 `json:"remove_short_skeletons,omitempty"`
	SkeletonDensifyStep         *float64 `json:"skeleton_densify_step,omitempty"`
	SkeletonSimplify            *float64 `json:"skeleton_simplify,omitempty"`

	// Perpendicular sampling
	MakePerpsStepSize   *float64 `json:"make_perps_step_size,omitempty"`
	PerpProjectDistance *float64 `json:"perp_project_distance,omitempty"`
	PerpMidpointRatio   *float64 `json:"perp_midpoint_ratio,omitempty"`

	// Segmentation
	WidthGranularity *float64 `json:"width_granularity,omitempty"`

	// Batch
	MaxPerimeterAreaRatio *float64 `json:"max_perimeter_area_ratio,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field populated from
// the built-in defaults.
func DefaultTuningConfig() *TuningConfig {
	empty := EmptyTuningConfig()
	return &TuningConfig{
		RemoveHoles:                 ptrFloat64(empty.GetRemoveHoles()),
		FilterSkeletonsOutside:      ptrBool(empty.GetFilterSkeletonsOutside()),
		FilterSkeletonsNearBoundary: ptrFloat64(empty.GetFilterSkeletonsNearBoundary()),
		JoinSkeletons:               ptrBool(empty.GetJoinSkeletons()),
		RemoveShortSkeletons:        ptrFloat64(empty.GetRemoveShortSkeletons()),
		SkeletonDensifyStep:         ptrFloat64(empty.GetSkeletonDensifyStep()),
		SkeletonSimplify:            ptrFloat64(empty.GetSkeletonSimplify()),
		MakePerpsStepSize:           ptrFloat64(empty.GetMakePerpsStepSize()),
		PerpProjectDistance:         ptrFloat64(empty.GetPerpProjectDistance()),
		PerpMidpointRatio:           ptrFloat64(empty.GetPerpMidpointRatio()),
		WidthGranularity:            ptrFloat64(empty.GetWidthGranularity()),
		MaxPerimeterAreaRatio:       ptrFloat64(empty.GetMaxPerimeterAreaRatio()),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	// Validate the config file path.
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
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

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
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
	ratios := []struct {
		name string
		v    *float64
	}{
		{"remove_short_skeletons", c.RemoveShortSkeletons},
		{"perp_midpoint_ratio", c.PerpMidpointRatio},
	}
	for _, r := range ratios {
		if r.v != nil && (*r.v < 0 || *r.v > 1) {
			return fmt.Errorf("%s must be between 0 and 1, got %f", r.name, *r.v)
		}
	}

	distances := []struct {
		name string
		v    *float64
	}{
		{"remove_holes", c.RemoveHoles},
		{"filter_skeletons_near_boundary", c.FilterSkeletonsNearBoundary},
		{"skeleton_simplify", c.SkeletonSimplify},
		{"make_perps_step_size", c.MakePerpsStepSize},
		{"width_granularity", c.WidthGranularity},
		{"max_perimeter_area_ratio", c.MaxPerimeterAreaRatio},
	}
	for _, d := range distances {
		if d.v != nil && *d.v < 0 {
			return fmt.Errorf("%s must be non-negative, got %f", d.name, *d.v)
		}
	}

	// These two drive loops; zero would never terminate or never probe.
	if c.SkeletonDensifyStep != nil && *c.SkeletonDensifyStep <= 0 {
		return fmt.Errorf("skeleton_densify_step must be positive, got %f", *c.SkeletonDensifyStep)
	}
	if c.PerpProjectDistance != nil && *c.PerpProjectDistance <= 0 {
		return fmt.Errorf("perp_project_distance must be positive, got %f", *c.PerpProjectDistance)
	}

	return nil
}

// GetRemoveHoles returns the remove_holes area threshold or the default.
func (c *TuningConfig) GetRemoveHoles() float64 {
	if c.RemoveHoles == nil {
		return 100.0 // bus stop cut-outs are well under this
	}
	return *c.RemoveHoles
}

// GetFilterSkeletonsOutside returns the filter_skeletons_outside value or the default.
func (c *TuningConfig) GetFilterSkeletonsOutside() bool {
	if c.FilterSkeletonsOutside == nil {
		return true
	}
	return *c.FilterSkeletonsOutside
}

// GetFilterSkeletonsNearBoundary returns the filter_skeletons_near_boundary value or the default.
func (c *TuningConfig) GetFilterSkeletonsNearBoundary() float64 {
	if c.FilterSkeletonsNearBoundary == nil {
		return 0.1
	}
	return *c.FilterSkeletonsNearBoundary
}

// GetJoinSkeletons returns the join_skeletons value or the default.
func (c *TuningConfig) GetJoinSkeletons() bool {
	if c.JoinSkeletons == nil {
		return true
	}
	return *c.JoinSkeletons
}

// GetRemoveShortSkeletons returns the remove_short_skeletons value or the default.
func (c *TuningConfig) GetRemoveShortSkeletons() float64 {
	if c.RemoveShortSkeletons == nil {
		return 0.1
	}
	return *c.RemoveShortSkeletons
}

// GetSkeletonDensifyStep returns the skeleton_densify_step value or the default.
func (c *TuningConfig) GetSkeletonDensifyStep() float64 {
	if c.SkeletonDensifyStep == nil {
		return 1.0
	}
	return *c.SkeletonDensifyStep
}

// GetSkeletonSimplify returns the skeleton_simplify value or the default.
func (c *TuningConfig) GetSkeletonSimplify() float64 {
	if c.SkeletonSimplify == nil {
		return 0.05
	}
	return *c.SkeletonSimplify
}

// GetMakePerpsStepSize returns the make_perps_step_size value or the default.
func (c *TuningConfig) GetMakePerpsStepSize() float64 {
	if c.MakePerpsStepSize == nil {
		return 5.0
	}
	return *c.MakePerpsStepSize
}

// GetPerpProjectDistance returns the perp_project_distance value or the default.
func (c *TuningConfig) GetPerpProjectDistance() float64 {
	if c.PerpProjectDistance == nil {
		return 100.0
	}
	return *c.PerpProjectDistance
}

// GetPerpMidpointRatio returns the perp_midpoint_ratio value or the default.
func (c *TuningConfig) GetPerpMidpointRatio() float64 {
	if c.PerpMidpointRatio == nil {
		return 0.5
	}
	return *c.PerpMidpointRatio
}

// GetWidthGranularity returns the width_granularity value or the default.
func (c *TuningConfig) GetWidthGranularity() float64 {
	if c.WidthGranularity == nil {
		return 0.5
	}
	return *c.WidthGranularity
}

// GetMaxPerimeterAreaRatio returns the max_perimeter_area_ratio value or the
// default (0, junction filtering disabled).
func (c *TuningConfig) GetMaxPerimeterAreaRatio() float64 {
	if c.MaxPerimeterAreaRatio == nil {
		return 0
	}
	return *c.MaxPerimeterAreaRatio
}
