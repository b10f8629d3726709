package eta

import (
	"math"
	"time"

	"github.com/Qalifah/passageplan/fuel"
	"github.com/Qalifah/passageplan/timezone"
	"github.com/Qalifah/passageplan/voyage"
)

// SkipReason tells why a leg produced no result
type SkipReason int

// valid skip reasons
const (
	Computed SkipReason = iota
	NoDistance
	NoSpeed
	OutOfRange
)

// arrivals must stay printable in every timezone
var (
	earliestArrival = time.Date(0, 1, 2, 0, 0, 0, 0, time.UTC)
	latestArrival   = time.Date(9999, 12, 30, 0, 0, 0, 0, time.UTC)
)

func (r SkipReason) String() string {
	switch r {
	case Computed:
		return "Computed"
	case NoDistance:
		return "No distance"
	case NoSpeed:
		return "No speed"
	case OutOfRange:
		return "Arrival out of range"
	}
	return ""
}

// Leg is the computed passage to one waypoint from the previous clock.
type Leg struct {
	TravelTime float64         `json:"travel_time_hours"`
	Arrival    time.Time       `json:"arrival"`
	Distance   float64         `json:"distance"`
	FuelUsed   []fuel.Quantity `json:"fuel_used"`
}

// LegOutcome is either a computed leg or the reason the waypoint was skipped.
type LegOutcome struct {
	Waypoint voyage.WaypointID `json:"waypoint_id"`
	Reason   SkipReason        `json:"reason"`
	Leg      Leg               `json:"leg"`
}

// Skipped reports whether the waypoint contributed nothing to the voyage.
func (o LegOutcome) Skipped() bool {
	return o.Reason != Computed
}

// ComputeLeg advances clock over the leg ending at w. Legs without a positive
// distance and speed are skipped, as are legs whose arrival falls outside
// years 0 to 9999. fuelTypes gives the grade of each fuel slot
// as currently declared on the voyage.
func ComputeLeg(clock time.Time, fuelTypes [fuel.Slots]fuel.Type, w voyage.Waypoint) LegOutcome {
	if !(w.Distance > 0) {
		return LegOutcome{Waypoint: w.ID, Reason: NoDistance}
	}
	if !(w.Speed > 0) {
		return LegOutcome{Waypoint: w.ID, Reason: NoSpeed}
	}

	hours := w.Distance / w.Speed
	d := timezone.Hours(hours)
	arrival := clock.Add(d)
	if d == math.MaxInt64 || arrival.Before(earliestArrival) || arrival.After(latestArrival) {
		return LegOutcome{Waypoint: w.ID, Reason: OutOfRange}
	}

	used := make([]fuel.Quantity, 0, fuel.Slots)
	for i, amount := range w.FuelUsed {
		if amount > 0 {
			used = append(used, fuel.Quantity{Type: fuelTypes[i], Amount: amount})
		}
	}

	return LegOutcome{
		Waypoint: w.ID,
		Reason:   Computed,
		Leg: Leg{
			TravelTime: hours,
			Arrival:    arrival,
			Distance:   w.Distance,
			FuelUsed:   used,
		},
	}
}
