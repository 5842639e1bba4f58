package geo

import (
	"math"
	"testing"
)

func TestDistanceZero(t *testing.T) {
	if d := Distance(28.6139, 77.2090, 28.6139, 77.2090); d != 0 {
		t.Errorf("distance to self = %f, want 0", d)
	}
}

func TestDistanceKnownPair(t *testing.T) {
	// One degree of latitude is ~111.2 km.
	d := Distance(28.0, 77.0, 29.0, 77.0)
	if math.Abs(d-111195) > 500 {
		t.Errorf("1 degree latitude = %.0fm, want ~111195m", d)
	}
}

func TestDistanceShortRange(t *testing.T) {
	// ~0.001 degrees latitude is ~111m; the geofence radius check operates
	// at this scale.
	d := Distance(28.6139, 77.2090, 28.6149, 77.2090)
	if d < 100 || d > 125 {
		t.Errorf("short-range distance = %.1fm, want ~111m", d)
	}
}

func TestDistanceSymmetric(t *testing.T) {
	a := Distance(12.9716, 77.5946, 13.0827, 80.2707)
	b := Distance(13.0827, 80.2707, 12.9716, 77.5946)
	if math.Abs(a-b) > 1e-6 {
		t.Errorf("distance not symmetric: %f vs %f", a, b)
	}
}
