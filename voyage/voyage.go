package voyage

import (
	"errors"
	"fmt"
	"time"

	"github.com/Qalifah/passageplan/fuel"
	"github.com/Qalifah/passageplan/timezone"
)

// ID uniquely identifies a voyage within a planner
type ID int

// WaypointID identifies a waypoint within its voyage
type WaypointID int

// MaxWaypoints is the most waypoints a voyage can hold, starting point included
const MaxWaypoints = 10

// Voyage is an operator's plan: a departure and an ordered list of waypoints.
// Waypoints[0] is the starting point; every later waypoint describes the leg
// that ends at it.
type Voyage struct {
	ID                  ID
	Name                string
	Departure           time.Time // wall clock in DepartureTimezone, zero when unset
	DepartureTimezone   timezone.Label
	DestinationTimezone timezone.Label
	FuelOnBoard         [fuel.Slots]fuel.Quantity
	Waypoints           []Waypoint

	lastWaypoint WaypointID
}

// Waypoint is the end of a leg. Distance, Speed and FuelUsed describe the
// leg from the previous waypoint and mean nothing on the starting point.
type Waypoint struct {
	ID       WaypointID
	Name     string
	Distance float64 // nautical miles
	Speed    float64 // knots
	FuelUsed [fuel.Slots]float64
}

// New creates an empty voyage
func New(id ID) *Voyage {
	return &Voyage{
		ID:                  id,
		DepartureTimezone:   timezone.UTC,
		DestinationTimezone: timezone.UTC,
		FuelOnBoard:         fuel.DefaultOnBoard(),
	}
}

// ErrUnknown is used when a voyage can't be found
var ErrUnknown = errors.New("unknown voyage")

// ErrUnknownWaypoint is used when a waypoint can't be found on a voyage
var ErrUnknownWaypoint = errors.New("unknown waypoint")

// ErrInvalidSlot is used when a fuel slot index is out of range
var ErrInvalidSlot = errors.New("invalid fuel slot")

// DisplayName returns the name, or "Voyage #<id>" when none was given.
func (v *Voyage) DisplayName() string {
	if v.Name != "" {
		return v.Name
	}
	return fmt.Sprintf("Voyage #%d", v.ID)
}

// HasDeparture reports whether a departure time has been set.
func (v *Voyage) HasDeparture() bool {
	return !v.Departure.IsZero()
}

// FuelTypes returns the grade declared in each fuel slot.
func (v *Voyage) FuelTypes() [fuel.Slots]fuel.Type {
	var types [fuel.Slots]fuel.Type
	for i, q := range v.FuelOnBoard {
		types[i] = q.Type
	}
	return types
}

// Consumption returns the fuel used on the leg ending at w. The grade of each
// slot is always that of the voyage's current declaration.
func (v *Voyage) Consumption(w Waypoint) [fuel.Slots]fuel.Quantity {
	var used [fuel.Slots]fuel.Quantity
	for i, amount := range w.FuelUsed {
		used[i] = fuel.Quantity{Type: v.FuelOnBoard[i].Type, Amount: amount}
	}
	return used
}

// AppendWaypoint adds an empty waypoint at the end of the voyage. It does
// nothing and returns false once the voyage holds MaxWaypoints.
func (v *Voyage) AppendWaypoint() (WaypointID, bool) {
	if len(v.Waypoints) >= MaxWaypoints {
		return 0, false
	}
	v.lastWaypoint++
	v.Waypoints = append(v.Waypoints, Waypoint{ID: v.lastWaypoint})
	return v.lastWaypoint, true
}

// RemoveWaypoint deletes a waypoint. Remaining waypoints keep their ids.
func (v *Voyage) RemoveWaypoint(id WaypointID) error {
	i := v.index(id)
	if i < 0 {
		return ErrUnknownWaypoint
	}
	v.Waypoints = append(v.Waypoints[:i:i], v.Waypoints[i+1:]...)
	return nil
}

// Waypoint returns the waypoint with the given id.
func (v *Voyage) Waypoint(id WaypointID) (Waypoint, error) {
	i := v.index(id)
	if i < 0 {
		return Waypoint{}, ErrUnknownWaypoint
	}
	return v.Waypoints[i], nil
}

func (v *Voyage) index(id WaypointID) int {
	for i, w := range v.Waypoints {
		if w.ID == id {
			return i
		}
	}
	return -1
}

// SetName renames the voyage
func (v *Voyage) SetName(name string) {
	v.Name = name
}

// SetDeparture sets the departure wall clock. Any location on t is dropped.
func (v *Voyage) SetDeparture(t time.Time) {
	if t.IsZero() {
		v.Departure = time.Time{}
		return
	}
	v.Departure = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// SetDepartureTimezone sets the offset the departure time is expressed in
func (v *Voyage) SetDepartureTimezone(l timezone.Label) {
	v.DepartureTimezone = l
}

// SetDestinationTimezone sets the offset arrival times are displayed in
func (v *Voyage) SetDestinationTimezone(l timezone.Label) {
	v.DestinationTimezone = l
}

// SetFuelType changes the grade of a fuel slot. Consumption already entered
// on waypoints for that slot is relabelled with it.
func (v *Voyage) SetFuelType(slot int, t fuel.Type) error {
	if slot < 0 || slot >= fuel.Slots {
		return ErrInvalidSlot
	}
	v.FuelOnBoard[slot].Type = t
	return nil
}

// SetFuelAmount changes the amount declared on board for a fuel slot
func (v *Voyage) SetFuelAmount(slot int, amount float64) error {
	if slot < 0 || slot >= fuel.Slots {
		return ErrInvalidSlot
	}
	v.FuelOnBoard[slot].Amount = amount
	return nil
}

// SetWaypointName renames a waypoint
func (v *Voyage) SetWaypointName(id WaypointID, name string) error {
	return v.update(id, func(w *Waypoint) { w.Name = name })
}

// SetWaypointDistance sets the distance of the leg ending at a waypoint
func (v *Voyage) SetWaypointDistance(id WaypointID, nm float64) error {
	return v.update(id, func(w *Waypoint) { w.Distance = nm })
}

// SetWaypointSpeed sets the speed made good on the leg ending at a waypoint
func (v *Voyage) SetWaypointSpeed(id WaypointID, knots float64) error {
	return v.update(id, func(w *Waypoint) { w.Speed = knots })
}

// SetWaypointFuel sets the amount of a fuel slot used on the leg ending at a
// waypoint
func (v *Voyage) SetWaypointFuel(id WaypointID, slot int, amount float64) error {
	if slot < 0 || slot >= fuel.Slots {
		return ErrInvalidSlot
	}
	return v.update(id, func(w *Waypoint) { w.FuelUsed[slot] = amount })
}

func (v *Voyage) update(id WaypointID, f func(*Waypoint)) error {
	i := v.index(id)
	if i < 0 {
		return ErrUnknownWaypoint
	}
	f(&v.Waypoints[i])
	return nil
}

// Clone returns a deep copy of the voyage
func (v *Voyage) Clone() *Voyage {
	c := *v
	c.Waypoints = append([]Waypoint(nil), v.Waypoints...)
	return &c
}

// Repository provides access to a voyage store
type Repository interface {
	Store(v *Voyage) error
	Find(id ID) (*Voyage, error)
	FindAll() []*Voyage
	Remove(id ID) error
}
