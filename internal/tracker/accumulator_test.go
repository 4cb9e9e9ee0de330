package tracker

import (
	"math"
	"testing"

	"backend-trailmeter/internal/locate"
	"backend-trailmeter/internal/shared/geo"
)

func TestAccumulatorFirstReadingAddsNothing(t *testing.T) {
	var a Accumulator
	inc := a.Accept(locate.Reading{Lat: 47.6, Lng: -122.3})
	if inc != 0 || a.Meters() != 0 {
		t.Fatalf("expected no distance for first reading, got %v", a.Meters())
	}
}

func TestAccumulatorIdenticalReadings(t *testing.T) {
	var a Accumulator
	r := locate.Reading{Lat: 47.6, Lng: -122.3}
	a.Accept(r)
	if inc := a.Accept(r); inc != 0 {
		t.Fatalf("expected zero increment, got %v", inc)
	}
}

func TestAccumulatorSumsConsecutiveIncrements(t *testing.T) {
	points := []locate.Reading{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 0.1},
		{Lat: 0.1, Lng: 0.1},
		{Lat: 0.1, Lng: 0.2},
	}

	var a Accumulator
	var sum float64
	for _, p := range points {
		inc := a.Accept(p)
		if inc < 0 {
			t.Fatalf("negative increment: %v", inc)
		}
		sum += inc
	}

	var manual float64
	for i := 1; i < len(points); i++ {
		manual += geo.HaversineMeters(points[i-1].Lat, points[i-1].Lng, points[i].Lat, points[i].Lng)
	}
	if math.Abs(a.Meters()-manual) > 1e-9 || math.Abs(sum-manual) > 1e-9 {
		t.Fatalf("total %v does not match pairwise sum %v", a.Meters(), manual)
	}
}

func TestAccumulatorEquatorScenario(t *testing.T) {
	var a Accumulator
	a.Accept(locate.Reading{Lat: 0, Lng: 0})
	a.Accept(locate.Reading{Lat: 0, Lng: 0.1})
	if math.Abs(a.Meters()-11119.5) > 1 {
		t.Fatalf("unexpected equator distance: %v", a.Meters())
	}
}

func TestAccumulatorClearLastKeepsTotal(t *testing.T) {
	var a Accumulator
	a.Accept(locate.Reading{Lat: 0, Lng: 0})
	a.Accept(locate.Reading{Lat: 0, Lng: 0.1})
	total := a.Meters()

	a.ClearLast()
	if a.Meters() != total {
		t.Fatalf("expected total kept, got %v", a.Meters())
	}
	if inc := a.Accept(locate.Reading{Lat: 10, Lng: 10}); inc != 0 {
		t.Fatalf("expected no increment after clear, got %v", inc)
	}
}

func TestAccumulatorReset(t *testing.T) {
	var a Accumulator
	a.Accept(locate.Reading{Lat: 0, Lng: 0})
	a.Accept(locate.Reading{Lat: 0, Lng: 0.1})
	a.Reset()
	if a.Meters() != 0 {
		t.Fatalf("expected zero after reset")
	}
	if inc := a.Accept(locate.Reading{Lat: 1, Lng: 1}); inc != 0 {
		t.Fatalf("expected retained reading dropped, got increment %v", inc)
	}
}
