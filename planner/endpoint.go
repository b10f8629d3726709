package planner

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/go-kit/kit/circuitbreaker"
	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/ratelimit"
	"github.com/go-kit/kit/tracing/opentracing"
	"github.com/go-kit/kit/tracing/zipkin"

	stdopentracing "github.com/opentracing/opentracing-go"
	stdzipkin "github.com/openzipkin/zipkin-go"
	"github.com/sony/gobreaker"

	"github.com/Qalifah/passageplan/eta"
	"github.com/Qalifah/passageplan/voyage"
)

// every edit triggers a recomputation, so the limiter has to allow bursts of
// keystroke-rate requests
const (
	requestsPerSecond = 50
	requestBurst      = 100
)

type createVoyageRequest struct{}

type createVoyageResponse struct {
	ID     voyage.ID `json:"id,omitempty"`
	Voyage *Voyage   `json:"voyage,omitempty"`
	Err    error     `json:"-"`
}

func (r createVoyageResponse) error() error { return r.Err }

func makeCreateVoyageEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		_ = request.(createVoyageRequest)
		id, err := s.CreateVoyage()
		if err != nil {
			return createVoyageResponse{Err: err}, nil
		}
		v, err := s.LoadVoyage(id)
		return createVoyageResponse{ID: id, Voyage: &v, Err: err}, nil
	}
}

type removeVoyageRequest struct {
	ID voyage.ID `json:"id"`
}

type removeVoyageResponse struct {
	Err error `json:"-"`
}

func (r removeVoyageResponse) error() error { return r.Err }

func makeRemoveVoyageEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(removeVoyageRequest)
		err := s.RemoveVoyage(req.ID)
		return removeVoyageResponse{Err: err}, nil
	}
}

type loadVoyageRequest struct {
	ID voyage.ID `json:"id"`
}

type loadVoyageResponse struct {
	Voyage *Voyage `json:"voyage,omitempty"`
	Err    error   `json:"-"`
}

func (r loadVoyageResponse) error() error { return r.Err }

func makeLoadVoyageEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(loadVoyageRequest)
		v, err := s.LoadVoyage(req.ID)
		if err != nil {
			return loadVoyageResponse{Err: err}, nil
		}
		return loadVoyageResponse{Voyage: &v}, nil
	}
}

type listVoyagesRequest struct{}

type listVoyagesResponse struct {
	Voyages []Voyage `json:"voyages"`
	Err     error    `json:"-"`
}

func (r listVoyagesResponse) error() error { return r.Err }

func makeListVoyagesEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		_ = request.(listVoyagesRequest)
		return listVoyagesResponse{Voyages: s.Voyages()}, nil
	}
}

// editResponse is returned by every edit: the voyage is recomputed so the
// caller can redraw it straight away.
type editResponse struct {
	WaypointID voyage.WaypointID `json:"waypoint_id,omitempty"`
	Result     *eta.Result       `json:"eta,omitempty"`
	Err        error             `json:"-"`
}

func (r editResponse) error() error { return r.Err }

func recompute(s Service, id voyage.ID, wid voyage.WaypointID, err error) editResponse {
	if err != nil {
		return editResponse{Err: err}
	}
	r, err := s.ComputeVoyage(id)
	return editResponse{WaypointID: wid, Result: r, Err: err}
}

type appendWaypointRequest struct {
	ID voyage.ID `json:"id"`
}

func makeAppendWaypointEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(appendWaypointRequest)
		wid, err := s.AppendWaypoint(req.ID)
		return recompute(s, req.ID, wid, err), nil
	}
}

type removeWaypointRequest struct {
	ID         voyage.ID         `json:"id"`
	WaypointID voyage.WaypointID `json:"waypoint_id"`
}

func makeRemoveWaypointEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(removeWaypointRequest)
		err := s.RemoveWaypoint(req.ID, req.WaypointID)
		return recompute(s, req.ID, 0, err), nil
	}
}

type updateVoyageRequest struct {
	ID     voyage.ID    `json:"id"`
	Update VoyageUpdate `json:"update"`
}

func makeUpdateVoyageEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(updateVoyageRequest)
		err := s.UpdateVoyage(req.ID, req.Update)
		return recompute(s, req.ID, 0, err), nil
	}
}

type updateWaypointRequest struct {
	ID         voyage.ID         `json:"id"`
	WaypointID voyage.WaypointID `json:"waypoint_id"`
	Update     WaypointUpdate    `json:"update"`
}

func makeUpdateWaypointEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(updateWaypointRequest)
		err := s.UpdateWaypoint(req.ID, req.WaypointID, req.Update)
		return recompute(s, req.ID, req.WaypointID, err), nil
	}
}

type computeVoyageRequest struct {
	ID voyage.ID `json:"id"`
}

type computeVoyageResponse struct {
	Result *eta.Result `json:"eta"`
	Err    error       `json:"-"`
}

func (r computeVoyageResponse) error() error { return r.Err }

func makeComputeVoyageEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(computeVoyageRequest)
		r, err := s.ComputeVoyage(req.ID)
		return computeVoyageResponse{Result: r, Err: err}, nil
	}
}

type optionsRequest struct{}

type optionsResponse struct {
	Options Options `json:"options"`
	Err     error   `json:"-"`
}

func (r optionsResponse) error() error { return r.Err }

func makeOptionsEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		_ = request.(optionsRequest)
		return optionsResponse{Options: s.Options()}, nil
	}
}

type printVoyageRequest struct {
	ID voyage.ID `json:"id"`
}

type printVoyageResponse struct {
	Voyage *Voyage     `json:"voyage,omitempty"`
	Result *eta.Result `json:"eta,omitempty"`
	Err    error       `json:"-"`
}

func (r printVoyageResponse) error() error { return r.Err }

func makePrintVoyageEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(printVoyageRequest)
		v, err := s.LoadVoyage(req.ID)
		if err != nil {
			return printVoyageResponse{Err: err}, nil
		}
		r, err := s.ComputeVoyage(req.ID)
		if err != nil {
			return printVoyageResponse{Err: err}, nil
		}
		if r == nil {
			return printVoyageResponse{Err: ErrNoDeparture}, nil
		}
		return printVoyageResponse{Voyage: &v, Result: r}, nil
	}
}

// Set collects all of the endpoints that compose a voyage planning service.
type Set struct {
	CreateVoyageEndpoint   endpoint.Endpoint
	RemoveVoyageEndpoint   endpoint.Endpoint
	LoadVoyageEndpoint     endpoint.Endpoint
	ListVoyagesEndpoint    endpoint.Endpoint
	AppendWaypointEndpoint endpoint.Endpoint
	RemoveWaypointEndpoint endpoint.Endpoint
	UpdateVoyageEndpoint   endpoint.Endpoint
	UpdateWaypointEndpoint endpoint.Endpoint
	ComputeVoyageEndpoint  endpoint.Endpoint
	OptionsEndpoint        endpoint.Endpoint
	PrintVoyageEndpoint    endpoint.Endpoint
}

// NewSet returns a Set that wraps the provided server, and wires in all of the
// expected endpoint middlewares via the various parameters.
func NewSet(svc Service, logger log.Logger, duration metrics.Histogram, otTracer stdopentracing.Tracer, zipkinTracer *stdzipkin.Tracer) Set {
	wrap := func(e endpoint.Endpoint, name string) endpoint.Endpoint {
		e = ratelimit.NewErroringLimiter(rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst))(e)
		e = circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{Name: name}))(e)
		e = opentracing.TraceServer(otTracer, name)(e)
		if zipkinTracer != nil {
			e = zipkin.TraceEndpoint(zipkinTracer, name)(e)
		}
		e = loggingMiddleware(log.With(logger, "endpoint", name))(e)
		e = instrumentingMiddleware(duration.With("endpoint", name))(e)
		return e
	}

	return Set{
		CreateVoyageEndpoint:   wrap(makeCreateVoyageEndpoint(svc), "CreateVoyage"),
		RemoveVoyageEndpoint:   wrap(makeRemoveVoyageEndpoint(svc), "RemoveVoyage"),
		LoadVoyageEndpoint:     wrap(makeLoadVoyageEndpoint(svc), "LoadVoyage"),
		ListVoyagesEndpoint:    wrap(makeListVoyagesEndpoint(svc), "ListVoyages"),
		AppendWaypointEndpoint: wrap(makeAppendWaypointEndpoint(svc), "AppendWaypoint"),
		RemoveWaypointEndpoint: wrap(makeRemoveWaypointEndpoint(svc), "RemoveWaypoint"),
		UpdateVoyageEndpoint:   wrap(makeUpdateVoyageEndpoint(svc), "UpdateVoyage"),
		UpdateWaypointEndpoint: wrap(makeUpdateWaypointEndpoint(svc), "UpdateWaypoint"),
		ComputeVoyageEndpoint:  wrap(makeComputeVoyageEndpoint(svc), "ComputeVoyage"),
		OptionsEndpoint:        wrap(makeOptionsEndpoint(svc), "Options"),
		PrintVoyageEndpoint:    wrap(makePrintVoyageEndpoint(svc), "PrintVoyage"),
	}
}

// loggingMiddleware logs failures of the endpoint itself, such as a tripped
// breaker or an exhausted rate limit. Business errors are logged by the
// service.
func loggingMiddleware(logger log.Logger) endpoint.Middleware {
	return func(next endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (response interface{}, err error) {
			defer func() {
				if err != nil {
					logger.Log("transport_error", err)
				}
			}()
			return next(ctx, request)
		}
	}
}

// instrumentingMiddleware records the duration of each invocation.
func instrumentingMiddleware(duration metrics.Histogram) endpoint.Middleware {
	return func(next endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (response interface{}, err error) {
			defer func(begin time.Time) {
				duration.With("success", fmt.Sprint(err == nil)).Observe(time.Since(begin).Seconds())
			}(time.Now())
			return next(ctx, request)
		}
	}
}

// CreateVoyage implements the service interface so Set can be used as a service
func (s Set) CreateVoyage() (voyage.ID, error) {
	resp, err := s.CreateVoyageEndpoint(context.Background(), createVoyageRequest{})
	if err != nil {
		return 0, err
	}
	response := resp.(createVoyageResponse)
	return response.ID, response.Err
}

// RemoveVoyage implements the service interface so Set can be used as a service
func (s Set) RemoveVoyage(id voyage.ID) error {
	resp, err := s.RemoveVoyageEndpoint(context.Background(), removeVoyageRequest{ID: id})
	if err != nil {
		return err
	}
	response := resp.(removeVoyageResponse)
	return response.Err
}

// LoadVoyage implements the service interface so Set can be used as a service
func (s Set) LoadVoyage(id voyage.ID) (Voyage, error) {
	resp, err := s.LoadVoyageEndpoint(context.Background(), loadVoyageRequest{ID: id})
	if err != nil {
		return Voyage{}, err
	}
	response := resp.(loadVoyageResponse)
	if response.Err != nil {
		return Voyage{}, response.Err
	}
	return *response.Voyage, nil
}

// Voyages implements the service interface so Set can be used as a service
func (s Set) Voyages() []Voyage {
	resp, err := s.ListVoyagesEndpoint(context.Background(), listVoyagesRequest{})
	if err != nil {
		return []Voyage{}
	}
	response := resp.(listVoyagesResponse)
	return response.Voyages
}

// AppendWaypoint implements the service interface so Set can be used as a service
func (s Set) AppendWaypoint(id voyage.ID) (voyage.WaypointID, error) {
	resp, err := s.AppendWaypointEndpoint(context.Background(), appendWaypointRequest{ID: id})
	if err != nil {
		return 0, err
	}
	response := resp.(editResponse)
	return response.WaypointID, response.Err
}

// RemoveWaypoint implements the service interface so Set can be used as a service
func (s Set) RemoveWaypoint(id voyage.ID, wid voyage.WaypointID) error {
	resp, err := s.RemoveWaypointEndpoint(context.Background(), removeWaypointRequest{ID: id, WaypointID: wid})
	if err != nil {
		return err
	}
	return resp.(editResponse).Err
}

// UpdateVoyage implements the service interface so Set can be used as a service
func (s Set) UpdateVoyage(id voyage.ID, u VoyageUpdate) error {
	resp, err := s.UpdateVoyageEndpoint(context.Background(), updateVoyageRequest{ID: id, Update: u})
	if err != nil {
		return err
	}
	return resp.(editResponse).Err
}

// UpdateWaypoint implements the service interface so Set can be used as a service
func (s Set) UpdateWaypoint(id voyage.ID, wid voyage.WaypointID, u WaypointUpdate) error {
	resp, err := s.UpdateWaypointEndpoint(context.Background(), updateWaypointRequest{ID: id, WaypointID: wid, Update: u})
	if err != nil {
		return err
	}
	return resp.(editResponse).Err
}

// ComputeVoyage implements the service interface so Set can be used as a service
func (s Set) ComputeVoyage(id voyage.ID) (*eta.Result, error) {
	resp, err := s.ComputeVoyageEndpoint(context.Background(), computeVoyageRequest{ID: id})
	if err != nil {
		return nil, err
	}
	response := resp.(computeVoyageResponse)
	return response.Result, response.Err
}

// Options implements the service interface so Set can be used as a service
func (s Set) Options() Options {
	resp, err := s.OptionsEndpoint(context.Background(), optionsRequest{})
	if err != nil {
		return Options{}
	}
	return resp.(optionsResponse).Options
}
