package tracker

import (
	"backend-trailmeter/internal/locate"
	"backend-trailmeter/internal/shared/geo"
)

// Accumulator folds consecutive readings into a running distance total.
// Only the most recent reading is retained; history is never kept.
type Accumulator struct {
	last   *locate.Reading
	meters float64
}

// Accept folds one reading into the total and returns the increment in
// meters. The first reading of a session has no prior point to measure from
// and adds nothing.
func (a *Accumulator) Accept(r locate.Reading) float64 {
	var inc float64
	if a.last != nil {
		inc = geo.HaversineMeters(a.last.Lat, a.last.Lng, r.Lat, r.Lng)
		a.meters += inc
	}
	a.last = &r
	return inc
}

// Meters returns the accumulated total.
func (a *Accumulator) Meters() float64 { return a.meters }

// ClearLast drops the retained reading without touching the total. The next
// reading accepted starts a new pair chain and adds nothing.
func (a *Accumulator) ClearLast() {
	a.last = nil
}

// Reset zeroes the total and drops the retained reading.
func (a *Accumulator) Reset() {
	a.last = nil
	a.meters = 0
}
