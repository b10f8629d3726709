package planner

import (
	"time"

	"github.com/go-kit/kit/log"

	"github.com/Qalifah/passageplan/eta"
	"github.com/Qalifah/passageplan/voyage"
)

type loggingService struct {
	logger log.Logger
	Service
}

// NewLoggingService returns a new instance of a logging Service.
func NewLoggingService(logger log.Logger, s Service) Service {
	return &loggingService{logger, s}
}

func (s *loggingService) CreateVoyage() (id voyage.ID, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "create_voyage",
			"voyage_id", id,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.CreateVoyage()
}

func (s *loggingService) RemoveVoyage(id voyage.ID) (err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "remove_voyage",
			"voyage_id", id,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.RemoveVoyage(id)
}

func (s *loggingService) LoadVoyage(id voyage.ID) (v Voyage, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "load_voyage",
			"voyage_id", id,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.LoadVoyage(id)
}

func (s *loggingService) Voyages() []Voyage {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "list_voyages",
			"took", time.Since(begin),
		)
	}(time.Now())
	return s.Service.Voyages()
}

func (s *loggingService) AppendWaypoint(id voyage.ID) (wid voyage.WaypointID, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "append_waypoint",
			"voyage_id", id,
			"waypoint_id", wid,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.AppendWaypoint(id)
}

func (s *loggingService) RemoveWaypoint(id voyage.ID, wid voyage.WaypointID) (err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "remove_waypoint",
			"voyage_id", id,
			"waypoint_id", wid,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.RemoveWaypoint(id, wid)
}

func (s *loggingService) UpdateVoyage(id voyage.ID, u VoyageUpdate) (err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "update_voyage",
			"voyage_id", id,
			"fuel_slots", len(u.Fuel),
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.UpdateVoyage(id, u)
}

func (s *loggingService) UpdateWaypoint(id voyage.ID, wid voyage.WaypointID, u WaypointUpdate) (err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "update_waypoint",
			"voyage_id", id,
			"waypoint_id", wid,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.UpdateWaypoint(id, wid, u)
}

func (s *loggingService) ComputeVoyage(id voyage.ID) (r *eta.Result, err error) {
	defer func(begin time.Time) {
		legs := 0
		if r != nil {
			legs = len(r.Legs)
		}
		s.logger.Log(
			"method", "compute_voyage",
			"voyage_id", id,
			"legs", legs,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.ComputeVoyage(id)
}
