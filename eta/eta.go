// Package eta derives arrival times, distances and fuel balances for a voyage.
package eta

import (
	"fmt"
	"time"

	"github.com/Qalifah/passageplan/fuel"
	"github.com/Qalifah/passageplan/timezone"
	"github.com/Qalifah/passageplan/voyage"
)

// StartingPointName is shown for an unnamed first waypoint
const StartingPointName = "Starting Point"

// LegResult describes one computed leg of a voyage.
type LegResult struct {
	Waypoint           voyage.WaypointID `json:"waypoint_id"`
	From               string            `json:"from"`
	To                 string            `json:"to"`
	Distance           float64           `json:"distance"`
	Speed              float64           `json:"speed"`
	TravelTime         float64           `json:"travel_time_hours"`
	CumulativeDistance float64           `json:"cumulative_distance"`
	ETALocal           time.Time         `json:"eta_local"`
	ETADestination     time.Time         `json:"eta_destination"`
	FuelUsed           []fuel.Quantity   `json:"fuel_used"`
	FuelRemaining      []fuel.Quantity   `json:"fuel_remaining"`
}

// Summary totals a voyage with at least one computed leg.
type Summary struct {
	TotalDistance float64         `json:"total_distance"`
	TotalTime     float64         `json:"total_time_hours"`
	Departure     time.Time       `json:"departure"`
	FinalArrival  time.Time       `json:"final_arrival"`
	FuelUsed      []fuel.Quantity `json:"fuel_used"`
	FuelRemaining []fuel.Quantity `json:"fuel_remaining"`
}

// Result is everything derived from a voyage. Times are wall clocks; ETALocal
// and Departure are in DepartureTimezone, ETADestination and FinalArrival in
// DestinationTimezone.
type Result struct {
	VoyageID            voyage.ID       `json:"voyage_id"`
	Name                string          `json:"name"`
	Departure           time.Time       `json:"departure"`
	DepartureTimezone   timezone.Label  `json:"departure_timezone"`
	DestinationTimezone timezone.Label  `json:"destination_timezone"`
	StartingPoint       string          `json:"starting_point,omitempty"`
	FuelOnBoard         []fuel.Quantity `json:"fuel_on_board"`
	Outcomes            []LegOutcome    `json:"outcomes"`
	Legs                []LegResult     `json:"legs"`
	Summary             *Summary        `json:"summary,omitempty"`
}

// Compute walks the waypoints of v and returns the derived plan. It returns
// nil until a departure time is set. v is not modified.
func Compute(v voyage.Voyage) *Result {
	if !v.HasDeparture() {
		return nil
	}

	types := v.FuelTypes()
	ledger := fuel.NewLedger(v.FuelOnBoard[:])

	r := &Result{
		VoyageID:            v.ID,
		Name:                v.DisplayName(),
		Departure:           v.Departure,
		DepartureTimezone:   v.DepartureTimezone,
		DestinationTimezone: v.DestinationTimezone,
		FuelOnBoard:         ledger.Remaining(),
		Outcomes:            []LegOutcome{},
		Legs:                []LegResult{},
	}

	var (
		clock      = v.Departure
		cumulative float64
		totalTime  float64
		previous   string
	)
	for i, w := range v.Waypoints {
		if i == 0 {
			previous = w.Name
			if previous == "" {
				previous = StartingPointName
			}
			r.StartingPoint = previous
			continue
		}

		o := ComputeLeg(clock, types, w)
		r.Outcomes = append(r.Outcomes, o)
		if o.Skipped() {
			continue
		}

		clock = o.Leg.Arrival
		cumulative += o.Leg.Distance
		totalTime += o.Leg.TravelTime
		ledger.Apply(o.Leg.FuelUsed)

		name := w.Name
		if name == "" {
			name = fmt.Sprintf("Waypoint %d", i+1)
		}
		r.Legs = append(r.Legs, LegResult{
			Waypoint:           w.ID,
			From:               previous,
			To:                 name,
			Distance:           w.Distance,
			Speed:              w.Speed,
			TravelTime:         o.Leg.TravelTime,
			CumulativeDistance: cumulative,
			ETALocal:           clock,
			ETADestination:     timezone.Convert(clock, v.DepartureTimezone, v.DestinationTimezone),
			FuelUsed:           o.Leg.FuelUsed,
			FuelRemaining:      ledger.Remaining(),
		})
		previous = name
	}

	if len(v.Waypoints) > 1 && cumulative > 0 {
		r.Summary = &Summary{
			TotalDistance: cumulative,
			TotalTime:     totalTime,
			Departure:     v.Departure,
			FinalArrival:  timezone.Convert(clock, v.DepartureTimezone, v.DestinationTimezone),
			FuelUsed:      ledger.Consumed(),
			FuelRemaining: ledger.Remaining(),
		}
	}
	return r
}
