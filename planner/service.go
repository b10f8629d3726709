// Package planner provides the use-cases for planning voyages: creating them,
// editing waypoints and fuel, and computing ETAs.
package planner

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/Qalifah/passageplan/eta"
	"github.com/Qalifah/passageplan/fuel"
	"github.com/Qalifah/passageplan/timezone"
	"github.com/Qalifah/passageplan/voyage"
)

// MaxVoyages is the number of voyages a planner holds at once
const MaxVoyages = 5

// DepartureLayout is the wall clock format departures are exchanged in
const DepartureLayout = "2006-01-02T15:04"

// ErrInvalidArgument is returned when one or more arguments are invalid.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrVoyageLimit is returned when creating a voyage beyond MaxVoyages.
var ErrVoyageLimit = errors.New("maximum number of voyages reached")

// ErrWaypointLimit is returned when appending beyond voyage.MaxWaypoints.
// The voyage is left unchanged.
var ErrWaypointLimit = errors.New("maximum number of waypoints reached")

// ErrNoDeparture is returned when printing a voyage that has no departure
// time and therefore nothing to print.
var ErrNoDeparture = errors.New("voyage has no departure time")

// Service is the interface that provides voyage planning methods.
type Service interface {
	// CreateVoyage registers a new, empty voyage.
	CreateVoyage() (voyage.ID, error)

	// RemoveVoyage discards a voyage and its waypoints.
	RemoveVoyage(id voyage.ID) error

	// LoadVoyage returns a read model of a voyage.
	LoadVoyage(id voyage.ID) (Voyage, error)

	// Voyages returns every voyage, ordered by id.
	Voyages() []Voyage

	// AppendWaypoint adds an empty waypoint at the end of a voyage.
	AppendWaypoint(id voyage.ID) (voyage.WaypointID, error)

	// RemoveWaypoint removes a waypoint without renumbering the others.
	RemoveWaypoint(id voyage.ID, wid voyage.WaypointID) error

	// UpdateVoyage applies the fields set in u. Nothing is applied if any
	// field is invalid.
	UpdateVoyage(id voyage.ID, u VoyageUpdate) error

	// UpdateWaypoint applies the fields set in u to a waypoint.
	UpdateWaypoint(id voyage.ID, wid voyage.WaypointID, u WaypointUpdate) error

	// ComputeVoyage derives legs and totals for a voyage. The result is nil
	// while the voyage has no departure time.
	ComputeVoyage(id voyage.ID) (*eta.Result, error)

	// Options lists the values the planner accepts.
	Options() Options
}

// FuelUpdate changes one fuel slot declared on board.
type FuelUpdate struct {
	Slot   int        `json:"slot"`
	Type   *fuel.Type `json:"type,omitempty"`
	Amount *float64   `json:"amount,omitempty"`
}

// VoyageUpdate holds the voyage fields to change; nil fields are left as is.
// A zero Departure clears it.
type VoyageUpdate struct {
	Name                *string         `json:"name,omitempty"`
	Departure           *time.Time      `json:"departure,omitempty"`
	DepartureTimezone   *timezone.Label `json:"departure_timezone,omitempty"`
	DestinationTimezone *timezone.Label `json:"destination_timezone,omitempty"`
	Fuel                []FuelUpdate    `json:"fuel,omitempty"`
}

// FuelUsedUpdate changes the amount of one fuel slot used on a leg.
type FuelUsedUpdate struct {
	Slot   int     `json:"slot"`
	Amount float64 `json:"amount"`
}

// WaypointUpdate holds the waypoint fields to change.
type WaypointUpdate struct {
	Name     *string          `json:"name,omitempty"`
	Distance *float64         `json:"distance,omitempty"`
	Speed    *float64         `json:"speed,omitempty"`
	Fuel     []FuelUsedUpdate `json:"fuel,omitempty"`
}

// Planner owns the voyages of one planning session. It is safe for
// concurrent use; every call runs to completion under a single lock.
type Planner struct {
	mtx     sync.Mutex
	voyages voyage.Repository
	lastID  voyage.ID
}

// New creates a planner storing its voyages in the given repository.
func New(voyages voyage.Repository) *Planner {
	p := &Planner{voyages: voyages}
	for _, v := range voyages.FindAll() {
		if v.ID > p.lastID {
			p.lastID = v.ID
		}
	}
	return p
}

// CreateVoyage implements Service.
func (p *Planner) CreateVoyage() (voyage.ID, error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if len(p.voyages.FindAll()) >= MaxVoyages {
		return 0, ErrVoyageLimit
	}
	p.lastID++
	v := voyage.New(p.lastID)
	if err := p.voyages.Store(v); err != nil {
		return 0, err
	}
	return v.ID, nil
}

// RemoveVoyage implements Service.
func (p *Planner) RemoveVoyage(id voyage.ID) error {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return p.voyages.Remove(id)
}

// LoadVoyage implements Service.
func (p *Planner) LoadVoyage(id voyage.ID) (Voyage, error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	v, err := p.voyages.Find(id)
	if err != nil {
		return Voyage{}, err
	}
	return assemble(v), nil
}

// Voyages implements Service.
func (p *Planner) Voyages() []Voyage {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	result := make([]Voyage, 0, MaxVoyages)
	for _, v := range p.voyages.FindAll() {
		result = append(result, assemble(v))
	}
	return result
}

// AppendWaypoint implements Service.
func (p *Planner) AppendWaypoint(id voyage.ID) (voyage.WaypointID, error) {
	var wid voyage.WaypointID
	err := p.modify(id, func(v *voyage.Voyage) error {
		var ok bool
		if wid, ok = v.AppendWaypoint(); !ok {
			return ErrWaypointLimit
		}
		return nil
	})
	return wid, err
}

// RemoveWaypoint implements Service.
func (p *Planner) RemoveWaypoint(id voyage.ID, wid voyage.WaypointID) error {
	return p.modify(id, func(v *voyage.Voyage) error {
		return v.RemoveWaypoint(wid)
	})
}

// UpdateVoyage implements Service.
func (p *Planner) UpdateVoyage(id voyage.ID, u VoyageUpdate) error {
	if err := u.validate(); err != nil {
		return err
	}
	return p.modify(id, func(v *voyage.Voyage) error {
		if u.Name != nil {
			v.SetName(*u.Name)
		}
		if u.Departure != nil {
			v.SetDeparture(*u.Departure)
		}
		if u.DepartureTimezone != nil {
			v.SetDepartureTimezone(*u.DepartureTimezone)
		}
		if u.DestinationTimezone != nil {
			v.SetDestinationTimezone(*u.DestinationTimezone)
		}
		for _, f := range u.Fuel {
			if f.Type != nil {
				if err := v.SetFuelType(f.Slot, *f.Type); err != nil {
					return err
				}
			}
			if f.Amount != nil {
				if err := v.SetFuelAmount(f.Slot, *f.Amount); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// UpdateWaypoint implements Service.
func (p *Planner) UpdateWaypoint(id voyage.ID, wid voyage.WaypointID, u WaypointUpdate) error {
	if err := u.validate(); err != nil {
		return err
	}
	return p.modify(id, func(v *voyage.Voyage) error {
		if _, err := v.Waypoint(wid); err != nil {
			return err
		}
		if u.Name != nil {
			if err := v.SetWaypointName(wid, *u.Name); err != nil {
				return err
			}
		}
		if u.Distance != nil {
			if err := v.SetWaypointDistance(wid, *u.Distance); err != nil {
				return err
			}
		}
		if u.Speed != nil {
			if err := v.SetWaypointSpeed(wid, *u.Speed); err != nil {
				return err
			}
		}
		for _, f := range u.Fuel {
			if err := v.SetWaypointFuel(wid, f.Slot, f.Amount); err != nil {
				return err
			}
		}
		return nil
	})
}

// ComputeVoyage implements Service.
func (p *Planner) ComputeVoyage(id voyage.ID) (*eta.Result, error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	v, err := p.voyages.Find(id)
	if err != nil {
		return nil, err
	}
	return eta.Compute(*v), nil
}

// Options implements Service.
func (p *Planner) Options() Options {
	return Options{
		FuelTypes:       fuel.Types(),
		Timezones:       timezone.Labels(),
		DefaultTimezone: timezone.UTC,
		MaxWaypoints:    voyage.MaxWaypoints,
		MaxVoyages:      MaxVoyages,
	}
}

// modify loads a voyage, applies f and stores the result. The stored voyage
// is untouched when f fails.
func (p *Planner) modify(id voyage.ID, f func(*voyage.Voyage) error) error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	v, err := p.voyages.Find(id)
	if err != nil {
		return err
	}
	if err := f(v); err != nil {
		return err
	}
	return p.voyages.Store(v)
}

func (u VoyageUpdate) validate() error {
	if u.DepartureTimezone != nil && !u.DepartureTimezone.Valid() {
		return ErrInvalidArgument
	}
	if u.DestinationTimezone != nil && !u.DestinationTimezone.Valid() {
		return ErrInvalidArgument
	}
	for _, f := range u.Fuel {
		if !validSlot(f.Slot) {
			return ErrInvalidArgument
		}
		if f.Type != nil && !f.Type.Valid() {
			return ErrInvalidArgument
		}
		if f.Amount != nil && !validQuantity(*f.Amount) {
			return ErrInvalidArgument
		}
	}
	return nil
}

func (u WaypointUpdate) validate() error {
	if u.Distance != nil && !validQuantity(*u.Distance) {
		return ErrInvalidArgument
	}
	if u.Speed != nil && !validQuantity(*u.Speed) {
		return ErrInvalidArgument
	}
	for _, f := range u.Fuel {
		if !validSlot(f.Slot) || !validQuantity(f.Amount) {
			return ErrInvalidArgument
		}
	}
	return nil
}

func validSlot(slot int) bool {
	return slot >= 0 && slot < fuel.Slots
}

func validQuantity(q float64) bool {
	return q >= 0 && !math.IsInf(q, 0)
}

// Options is a read model of the values accepted by the planner.
type Options struct {
	FuelTypes       []fuel.Type      `json:"fuel_types"`
	Timezones       []timezone.Label `json:"timezones"`
	DefaultTimezone timezone.Label   `json:"default_timezone"`
	MaxWaypoints    int              `json:"max_waypoints"`
	MaxVoyages      int              `json:"max_voyages"`
}

// Voyage is a read model for voyage views.
type Voyage struct {
	ID                  voyage.ID       `json:"id"`
	Name                string          `json:"name"`
	DisplayName         string          `json:"display_name"`
	Departure           string          `json:"departure"`
	DepartureTimezone   timezone.Label  `json:"departure_timezone"`
	DestinationTimezone timezone.Label  `json:"destination_timezone"`
	FuelOnBoard         []fuel.Quantity `json:"fuel_on_board"`
	Waypoints           []Waypoint      `json:"waypoints"`
}

// Waypoint is a read model for waypoint views. FuelUsed carries the grade
// currently declared for each slot.
type Waypoint struct {
	ID       voyage.WaypointID `json:"id"`
	Name     string            `json:"name"`
	Distance float64           `json:"distance"`
	Speed    float64           `json:"speed"`
	FuelUsed []fuel.Quantity   `json:"fuel_used"`
}

func assemble(v *voyage.Voyage) Voyage {
	var departure string
	if v.HasDeparture() {
		departure = v.Departure.Format(DepartureLayout)
	}
	waypoints := make([]Waypoint, 0, len(v.Waypoints))
	for _, w := range v.Waypoints {
		used := v.Consumption(w)
		waypoints = append(waypoints, Waypoint{
			ID:       w.ID,
			Name:     w.Name,
			Distance: w.Distance,
			Speed:    w.Speed,
			FuelUsed: used[:],
		})
	}
	return Voyage{
		ID:                  v.ID,
		Name:                v.Name,
		DisplayName:         v.DisplayName(),
		Departure:           departure,
		DepartureTimezone:   v.DepartureTimezone,
		DestinationTimezone: v.DestinationTimezone,
		FuelOnBoard:         append([]fuel.Quantity(nil), v.FuelOnBoard[:]...),
		Waypoints:           waypoints,
	}
}
