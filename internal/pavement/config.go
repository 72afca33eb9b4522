package pavement

import (
	"github.com/dabreegster/polygon-width/internal/config"
	"github.com/dabreegster/polygon-width/internal/skeleton"
)

// Config is the immutable set of thresholds driving Calculate. Optional
// thresholds are disabled by a value of 0.
type Config struct {
	// RemoveHoles drops holes with an unsigned area below this (m²).
	RemoveHoles float64
	// FilterSkeletonsOutside drops fragments not fully inside the polygon.
	FilterSkeletonsOutside bool
	// FilterSkeletonsNearBoundary drops fragments with an endpoint closer
	// than this to any ring (m).
	FilterSkeletonsNearBoundary float64
	JoinSkeletons               bool
	// RemoveShortSkeletons drops fragments shorter than this fraction of the
	// longest one.
	RemoveShortSkeletons float64
	// MakePerpsStepSize is the sampling interval along each skeleton (m).
	// Zero skips width measurement entirely.
	MakePerpsStepSize float64
	// PerpProjectDistance is how far each probe extends on either side (m).
	PerpProjectDistance float64
	PerpMidpointRatio   float64
	WidthGranularity    float64

	Skeleton skeleton.Options
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return ConfigFromTuning(config.EmptyTuningConfig())
}

// ConfigFromTuning resolves a tuning file into a Config, filling anything
// the file leaves out with defaults.
func ConfigFromTuning(t *config.TuningConfig) Config {
	if t == nil {
		t = config.EmptyTuningConfig()
	}
	return Config{
		RemoveHoles:                 t.GetRemoveHoles(),
		FilterSkeletonsOutside:      t.GetFilterSkeletonsOutside(),
		FilterSkeletonsNearBoundary: t.GetFilterSkeletonsNearBoundary(),
		JoinSkeletons:               t.GetJoinSkeletons(),
		RemoveShortSkeletons:        t.GetRemoveShortSkeletons(),
		MakePerpsStepSize:           t.GetMakePerpsStepSize(),
		PerpProjectDistance:         t.GetPerpProjectDistance(),
		PerpMidpointRatio:           t.GetPerpMidpointRatio(),
		WidthGranularity:            t.GetWidthGranularity(),
		Skeleton: skeleton.Options{
			DensifyStep:       t.GetSkeletonDensifyStep(),
			SimplifyTolerance: t.GetSkeletonSimplify(),
		},
	}
}
