package geo

import (
	"math"
	"testing"
)

func TestHaversineMeters(t *testing.T) {
	// Jakarta (-6.2, 106.816) to Bandung (-6.9175, 107.6191) ~ 115-120 km
	d := HaversineMeters(-6.2, 106.816, -6.9175, 107.6191)
	if d < 100000 || d > 140000 {
		t.Fatalf("unexpected distance: %v", d)
	}
}

func TestHaversineEquatorTenthDegree(t *testing.T) {
	d := HaversineMeters(0, 0, 0, 0.1)
	if math.Abs(d-11119.5) > 1 {
		t.Fatalf("unexpected equator distance: %v", d)
	}
}

func TestHaversineIdenticalPoints(t *testing.T) {
	if d := HaversineMeters(47.61, -122.33, 47.61, -122.33); d != 0 {
		t.Fatalf("expected zero distance, got %v", d)
	}
}

func TestHaversineSymmetry(t *testing.T) {
	a := HaversineMeters(-6.2, 106.816, 35.6762, 139.6503)
	b := HaversineMeters(35.6762, 139.6503, -6.2, 106.816)
	if math.Abs(a-b) > 1e-9 {
		t.Fatalf("expected symmetric distance: %v vs %v", a, b)
	}
}

func TestKmToMiles(t *testing.T) {
	if m := KmToMiles(0); m != 0 {
		t.Fatalf("expected zero miles")
	}
	if m := KmToMiles(10); math.Abs(m-6.21371) > 1e-12 {
		t.Fatalf("unexpected miles: %v", m)
	}
}
