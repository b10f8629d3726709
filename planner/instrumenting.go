package planner

import (
	"time"

	"github.com/go-kit/kit/metrics"

	"github.com/Qalifah/passageplan/eta"
	"github.com/Qalifah/passageplan/voyage"
)

type instrumentingService struct {
	requestCount   metrics.Counter
	requestLatency metrics.Histogram
	voyages        metrics.Gauge
	Service
}

// NewInstrumentingService returns an instance of an instrumenting Service.
func NewInstrumentingService(counter metrics.Counter, latency metrics.Histogram, voyages metrics.Gauge, s Service) Service {
	return &instrumentingService{
		requestCount:   counter,
		requestLatency: latency,
		voyages:        voyages,
		Service:        s,
	}
}

func (s *instrumentingService) observe(method string, begin time.Time) {
	s.requestCount.With("method", method).Add(1)
	s.requestLatency.With("method", method).Observe(time.Since(begin).Seconds())
}

func (s *instrumentingService) CreateVoyage() (voyage.ID, error) {
	defer func(begin time.Time) {
		s.observe("create_voyage", begin)
		s.voyages.Set(float64(len(s.Service.Voyages())))
	}(time.Now())
	return s.Service.CreateVoyage()
}

func (s *instrumentingService) RemoveVoyage(id voyage.ID) error {
	defer func(begin time.Time) {
		s.observe("remove_voyage", begin)
		s.voyages.Set(float64(len(s.Service.Voyages())))
	}(time.Now())
	return s.Service.RemoveVoyage(id)
}

func (s *instrumentingService) LoadVoyage(id voyage.ID) (Voyage, error) {
	defer s.observe("load_voyage", time.Now())
	return s.Service.LoadVoyage(id)
}

func (s *instrumentingService) Voyages() []Voyage {
	defer s.observe("list_voyages", time.Now())
	return s.Service.Voyages()
}

func (s *instrumentingService) AppendWaypoint(id voyage.ID) (voyage.WaypointID, error) {
	defer s.observe("append_waypoint", time.Now())
	return s.Service.AppendWaypoint(id)
}

func (s *instrumentingService) RemoveWaypoint(id voyage.ID, wid voyage.WaypointID) error {
	defer s.observe("remove_waypoint", time.Now())
	return s.Service.RemoveWaypoint(id, wid)
}

func (s *instrumentingService) UpdateVoyage(id voyage.ID, u VoyageUpdate) error {
	defer s.observe("update_voyage", time.Now())
	return s.Service.UpdateVoyage(id, u)
}

func (s *instrumentingService) UpdateWaypoint(id voyage.ID, wid voyage.WaypointID, u WaypointUpdate) error {
	defer s.observe("update_waypoint", time.Now())
	return s.Service.UpdateWaypoint(id, wid, u)
}

func (s *instrumentingService) ComputeVoyage(id voyage.ID) (*eta.Result, error) {
	defer s.observe("compute_voyage", time.Now())
	return s.Service.ComputeVoyage(id)
}
