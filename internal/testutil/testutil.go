// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"math"
	"testing"

	"github.com/paulmach/orb"

	"github.com/dabreegster/polygon-width/internal/monitoring"
)

// metresPerDegree is the length of one degree of latitude, close enough for
// building geodetic fixtures of a known size.
const metresPerDegree = 111195.0

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertNear fails the test if got is further than tolerance from want.
func AssertNear(t *testing.T, name string, got, want, tolerance float64) {
	t.Helper()
	if math.Abs(got-want) > tolerance {
		t.Errorf("%s = %v, want %v ± %v", name, got, want, tolerance)
	}
}

// MuteLogs silences monitoring.Logf for the rest of the test.
func MuteLogs(t *testing.T) {
	t.Helper()
	t.Cleanup(monitoring.Mute())
}

// Rectangle is an axis-aligned w x h polygon with its corner at the origin.
func Rectangle(w, h float64) orb.Polygon {
	return orb.Polygon{{{0, 0}, {w, 0}, {w, h}, {0, h}, {0, 0}}}
}

// RectangleWithHole is Rectangle(w, h) with a square hole of the given side
// centred in it.
func RectangleWithHole(w, h, side float64) orb.Polygon {
	x0, y0 := (w-side)/2, (h-side)/2
	return append(Rectangle(w, h), orb.Ring{
		{x0, y0}, {x0, y0 + side}, {x0 + side, y0 + side}, {x0 + side, y0}, {x0, y0},
	})
}

// GeodeticRectangle is a WGS84 polygon roughly w metres east-west and h
// metres north-south with its south-west corner at (lon, lat).
func GeodeticRectangle(lon, lat, w, h float64) orb.Polygon {
	dLon := w / (metresPerDegree * math.Cos(lat*math.Pi/180))
	dLat := h / metresPerDegree
	return orb.Polygon{{
		{lon, lat}, {lon + dLon, lat}, {lon + dLon, lat + dLat}, {lon, lat + dLat}, {lon, lat},
	}}
}
