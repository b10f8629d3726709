package eta

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/Qalifah/passageplan/fuel"
	"github.com/Qalifah/passageplan/timezone"
	"github.com/Qalifah/passageplan/voyage"
)

type leg struct {
	name     string
	distance float64
	speed    float64
	fuel     [fuel.Slots]float64
}

func plan(departure time.Time, legs ...leg) *voyage.Voyage {
	v := voyage.New(1)
	v.SetDeparture(departure)
	start, _ := v.AppendWaypoint()
	v.SetWaypointName(start, "Piraeus")
	for _, l := range legs {
		id, _ := v.AppendWaypoint()
		v.SetWaypointName(id, l.name)
		v.SetWaypointDistance(id, l.distance)
		v.SetWaypointSpeed(id, l.speed)
		for slot, amount := range l.fuel {
			v.SetWaypointFuel(id, slot, amount)
		}
	}
	return v
}

func TestComputeLeg(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	types := [fuel.Slots]fuel.Type{fuel.HFO, fuel.MGO}

	tests := []struct {
		name   string
		w      voyage.Waypoint
		reason SkipReason
		hours  float64
		used   []fuel.Quantity
	}{
		{"complete", voyage.Waypoint{ID: 2, Distance: 100, Speed: 10, FuelUsed: [fuel.Slots]float64{5, 0}}, Computed, 10, []fuel.Quantity{{Type: fuel.HFO, Amount: 5}}},
		{"both slots", voyage.Waypoint{ID: 2, Distance: 45, Speed: 18, FuelUsed: [fuel.Slots]float64{1, 2}}, Computed, 2.5, []fuel.Quantity{{Type: fuel.HFO, Amount: 1}, {Type: fuel.MGO, Amount: 2}}},
		{"no distance", voyage.Waypoint{ID: 2, Speed: 10, FuelUsed: [fuel.Slots]float64{5, 0}}, NoDistance, 0, nil},
		{"no speed", voyage.Waypoint{ID: 2, Distance: 10}, NoSpeed, 0, nil},
		{"negative speed", voyage.Waypoint{ID: 2, Distance: 10, Speed: -3}, NoSpeed, 0, nil},
		{"duration overflow", voyage.Waypoint{ID: 2, Distance: 30000, Speed: 0.01}, OutOfRange, 0, nil},
		{"infinite distance", voyage.Waypoint{ID: 2, Distance: math.Inf(1), Speed: 5}, OutOfRange, 0, nil},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			o := ComputeLeg(clock, types, test.w)
			if o.Reason != test.reason {
				t.Fatalf("reason = %v, want %v", o.Reason, test.reason)
			}
			if o.Waypoint != test.w.ID {
				t.Errorf("waypoint = %d, want %d", o.Waypoint, test.w.ID)
			}
			if o.Skipped() {
				if !reflect.DeepEqual(o.Leg, Leg{}) {
					t.Errorf("skipped leg carries data: %+v", o.Leg)
				}
				return
			}
			if o.Leg.TravelTime != test.hours {
				t.Errorf("travel time = %v, want %v", o.Leg.TravelTime, test.hours)
			}
			if want := clock.Add(timezone.Hours(test.hours)); !o.Leg.Arrival.Equal(want) {
				t.Errorf("arrival = %v, want %v", o.Leg.Arrival, want)
			}
			if !reflect.DeepEqual(o.Leg.FuelUsed, test.used) {
				t.Errorf("fuel used = %v, want %v", o.Leg.FuelUsed, test.used)
			}
		})
	}
}

func TestComputeWithoutDeparture(t *testing.T) {
	v := plan(time.Time{}, leg{distance: 100, speed: 10})
	if r := Compute(*v); r != nil {
		t.Errorf("expected no result, got %+v", r)
	}
}

func TestSingleLeg(t *testing.T) {
	v := plan(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), leg{name: "Suez", distance: 100, speed: 10})
	v.SetDestinationTimezone("UTC+03:00")

	r := Compute(*v)
	if r == nil {
		t.Fatal("no result")
	}
	if len(r.Legs) != 1 {
		t.Fatalf("len(Legs) = %d, want 1", len(r.Legs))
	}
	l := r.Legs[0]
	if l.From != "Piraeus" || l.To != "Suez" {
		t.Errorf("leg = %s -> %s", l.From, l.To)
	}
	if l.TravelTime != 10 {
		t.Errorf("travel time = %v, want 10", l.TravelTime)
	}
	if want := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC); !l.ETALocal.Equal(want) {
		t.Errorf("ETA local = %v, want %v", l.ETALocal, want)
	}
	if got := timezone.Format(l.ETADestination, r.DestinationTimezone); got != "2024-01-01T13:00 UTC+03:00" {
		t.Errorf("ETA destination = %q", got)
	}
	if l.CumulativeDistance != 100 {
		t.Errorf("cumulative distance = %v, want 100", l.CumulativeDistance)
	}
	if r.Summary == nil || r.Summary.TotalDistance != 100 || r.Summary.TotalTime != 10 {
		t.Errorf("summary = %+v", r.Summary)
	}
}

func TestFuelDepletion(t *testing.T) {
	v := plan(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		leg{distance: 10, speed: 10, fuel: [fuel.Slots]float64{20, 0}},
		leg{distance: 10, speed: 10, fuel: [fuel.Slots]float64{40, 0}},
	)
	v.SetFuelAmount(0, 50)

	r := Compute(*v)
	if got, want := r.FuelOnBoard, []fuel.Quantity{{Type: fuel.HFO, Amount: 50}}; !reflect.DeepEqual(got, want) {
		t.Errorf("fuel on board = %v, want %v", got, want)
	}
	if got, want := r.Legs[0].FuelRemaining, []fuel.Quantity{{Type: fuel.HFO, Amount: 30}}; !reflect.DeepEqual(got, want) {
		t.Errorf("after leg 1 = %v, want %v", got, want)
	}
	if got, want := r.Legs[1].FuelRemaining, []fuel.Quantity{{Type: fuel.HFO, Amount: -10}}; !reflect.DeepEqual(got, want) {
		t.Errorf("after leg 2 = %v, want %v", got, want)
	}
	if got, want := r.Summary.FuelUsed, []fuel.Quantity{{Type: fuel.HFO, Amount: 60}}; !reflect.DeepEqual(got, want) {
		t.Errorf("total used = %v, want %v", got, want)
	}
}

func TestSkippedLeg(t *testing.T) {
	dep := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	v := plan(dep,
		leg{name: "A", distance: 20, speed: 10, fuel: [fuel.Slots]float64{1, 0}},
		leg{name: "B", distance: 0, speed: 5, fuel: [fuel.Slots]float64{99, 99}},
		leg{name: "C", distance: 30, speed: 10},
	)

	r := Compute(*v)
	if len(r.Outcomes) != 3 {
		t.Fatalf("len(Outcomes) = %d, want 3", len(r.Outcomes))
	}
	if o := r.Outcomes[1]; !o.Skipped() || o.Reason != NoDistance || o.Waypoint != 3 {
		t.Errorf("outcome for B = %+v", o)
	}
	if len(r.Legs) != 2 {
		t.Fatalf("len(Legs) = %d, want 2", len(r.Legs))
	}
	c := r.Legs[1]
	if c.From != "A" || c.To != "C" {
		t.Errorf("leg = %s -> %s, want A -> C", c.From, c.To)
	}
	if want := dep.Add(5 * time.Hour); !c.ETALocal.Equal(want) {
		t.Errorf("ETA at C = %v, want %v", c.ETALocal, want)
	}
	if c.CumulativeDistance != 50 {
		t.Errorf("cumulative at C = %v, want 50", c.CumulativeDistance)
	}
	if got, want := r.Summary.FuelUsed, []fuel.Quantity{{Type: fuel.HFO, Amount: 1}}; !reflect.DeepEqual(got, want) {
		t.Errorf("skipped leg consumed fuel: %v", got)
	}
}

func TestMultiLegSummary(t *testing.T) {
	dep := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	v := plan(dep, leg{distance: 50, speed: 10}, leg{distance: 30, speed: 6})

	r := Compute(*v)
	if r.Summary == nil {
		t.Fatal("no summary")
	}
	if r.Summary.TotalDistance != 80 {
		t.Errorf("total distance = %v, want 80", r.Summary.TotalDistance)
	}
	if r.Summary.TotalTime != 10 {
		t.Errorf("total time = %v, want 10", r.Summary.TotalTime)
	}
	if want := dep.Add(10 * time.Hour); !r.Summary.FinalArrival.Equal(want) {
		t.Errorf("final arrival = %v, want %v", r.Summary.FinalArrival, want)
	}
	if r.Legs[1].To != "Waypoint 3" {
		t.Errorf("unnamed waypoint shown as %q", r.Legs[1].To)
	}

	var last float64
	for _, l := range r.Legs {
		if l.CumulativeDistance < last {
			t.Errorf("cumulative distance decreased: %v after %v", l.CumulativeDistance, last)
		}
		last = l.CumulativeDistance
	}
}

func TestNoSummary(t *testing.T) {
	dep := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		v    *voyage.Voyage
	}{
		{"starting point only", plan(dep)},
		{"all legs skipped", plan(dep, leg{distance: 10}, leg{speed: 4})},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := Compute(*c.v)
			if r == nil {
				t.Fatal("no result")
			}
			if r.Summary != nil {
				t.Errorf("unexpected summary %+v", r.Summary)
			}
			if len(r.Legs) != 0 {
				t.Errorf("unexpected legs %+v", r.Legs)
			}
		})
	}

	empty := voyage.New(2)
	empty.SetDeparture(dep)
	if r := Compute(*empty); r == nil || r.StartingPoint != "" || r.Summary != nil {
		t.Errorf("voyage without waypoints = %+v", r)
	}
}

func TestFuelTypeFollowsVoyage(t *testing.T) {
	v := plan(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		leg{distance: 10, speed: 10, fuel: [fuel.Slots]float64{4, 1}},
	)
	v.SetFuelAmount(0, 100)
	v.SetFuelType(0, fuel.LSFO)

	r := Compute(*v)
	want := []fuel.Quantity{{Type: fuel.LSFO, Amount: 4}, {Type: fuel.MDO, Amount: 1}}
	if got := r.Legs[0].FuelUsed; !reflect.DeepEqual(got, want) {
		t.Errorf("fuel used = %v, want %v", got, want)
	}
	wantRemaining := []fuel.Quantity{{Type: fuel.LSFO, Amount: 96}, {Type: fuel.MDO, Amount: -1}}
	if got := r.Legs[0].FuelRemaining; !reflect.DeepEqual(got, wantRemaining) {
		t.Errorf("fuel remaining = %v, want %v", got, wantRemaining)
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	v := plan(time.Date(2024, 3, 9, 22, 15, 0, 0, time.UTC),
		leg{distance: 133.7, speed: 11.3, fuel: [fuel.Slots]float64{7.25, 0.5}},
		leg{distance: 0, speed: 12},
		leg{distance: 412.9, speed: 13.1, fuel: [fuel.Slots]float64{21.9, 0}},
	)
	v.SetFuelAmount(0, 250)
	v.SetFuelAmount(1, 40)
	v.SetDepartureTimezone("UTC-05:00")
	v.SetDestinationTimezone("UTC+09:00")
	before := v.Clone()

	a, b := Compute(*v), Compute(*v)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("results differ:\n%+v\n%+v", a, b)
	}
	if !reflect.DeepEqual(v, before) {
		t.Error("Compute modified the voyage")
	}
}

func TestLongLegsStayInRange(t *testing.T) {
	dep := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	legs := make([]leg, 0, voyage.MaxWaypoints-1)
	for i := 0; i < voyage.MaxWaypoints-1; i++ {
		legs = append(legs, leg{distance: 1e7, speed: 0.001})
	}
	r := Compute(*plan(dep, legs...))

	for _, o := range r.Outcomes {
		if o.Reason != OutOfRange {
			t.Errorf("waypoint %d reason = %v, want %v", o.Waypoint, o.Reason, OutOfRange)
		}
	}
	if len(r.Legs) != 0 || r.Summary != nil {
		t.Errorf("legs = %+v, summary = %+v", r.Legs, r.Summary)
	}
	if _, err := json.Marshal(r); err != nil {
		t.Errorf("marshal: %v", err)
	}
}

func TestArrivalPastYear9999(t *testing.T) {
	dep := time.Date(9999, 6, 1, 0, 0, 0, 0, time.UTC)
	r := Compute(*plan(dep,
		leg{name: "Near", distance: 120, speed: 12},
		leg{name: "Far", distance: 60000, speed: 10},
	))

	if len(r.Legs) != 1 || r.Legs[0].To != "Near" {
		t.Fatalf("legs = %+v", r.Legs)
	}
	if r.Outcomes[1].Reason != OutOfRange {
		t.Errorf("far leg reason = %v", r.Outcomes[1].Reason)
	}
	if want := dep.Add(10 * time.Hour); !r.Summary.FinalArrival.Equal(want) {
		t.Errorf("final arrival = %v, want %v", r.Summary.FinalArrival, want)
	}
	if _, err := json.Marshal(r); err != nil {
		t.Errorf("marshal: %v", err)
	}
}
