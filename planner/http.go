package planner

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/ratelimit"
	"github.com/go-kit/kit/tracing/opentracing"
	"github.com/go-kit/kit/tracing/zipkin"
	"github.com/go-kit/kit/transport"
	kithttp "github.com/go-kit/kit/transport/http"

	stdopentracing "github.com/opentracing/opentracing-go"
	stdzipkin "github.com/openzipkin/zipkin-go"
	"github.com/sony/gobreaker"

	"github.com/Qalifah/passageplan/fuel"
	"github.com/Qalifah/passageplan/report"
	"github.com/Qalifah/passageplan/timezone"
	"github.com/Qalifah/passageplan/voyage"
)

var errBadRoute = errors.New("bad route")

// departure times are accepted in any of these layouts, read as wall clock
// time in the voyage's departure timezone
var departureLayouts = []string{
	DepartureLayout,
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// MakeHandler returns a handler for the planner service.
func MakeHandler(endpoints Set, otTracer stdopentracing.Tracer, zipkinTracer *stdzipkin.Tracer, logger kitlog.Logger) http.Handler {
	r := mux.NewRouter()

	opts := []kithttp.ServerOption{
		kithttp.ServerErrorHandler(transport.NewLogErrorHandler(logger)),
		kithttp.ServerErrorEncoder(encodeError),
	}
	if zipkinTracer != nil {
		opts = append(opts, zipkin.HTTPServerTrace(zipkinTracer))
	}
	traced := func(operation string) []kithttp.ServerOption {
		o := append([]kithttp.ServerOption{}, opts...)
		return append(o, kithttp.ServerBefore(opentracing.HTTPToContext(otTracer, operation, logger)))
	}

	optionsHandler := kithttp.NewServer(
		endpoints.OptionsEndpoint,
		decodeOptionsRequest,
		encodeResponse,
		traced("Options")...,
	)
	listVoyagesHandler := kithttp.NewServer(
		endpoints.ListVoyagesEndpoint,
		decodeListVoyagesRequest,
		encodeResponse,
		traced("ListVoyages")...,
	)
	createVoyageHandler := kithttp.NewServer(
		endpoints.CreateVoyageEndpoint,
		decodeCreateVoyageRequest,
		encodeCreatedResponse,
		traced("CreateVoyage")...,
	)
	loadVoyageHandler := kithttp.NewServer(
		endpoints.LoadVoyageEndpoint,
		decodeLoadVoyageRequest,
		encodeResponse,
		traced("LoadVoyage")...,
	)
	updateVoyageHandler := kithttp.NewServer(
		endpoints.UpdateVoyageEndpoint,
		decodeUpdateVoyageRequest,
		encodeResponse,
		traced("UpdateVoyage")...,
	)
	removeVoyageHandler := kithttp.NewServer(
		endpoints.RemoveVoyageEndpoint,
		decodeRemoveVoyageRequest,
		encodeResponse,
		traced("RemoveVoyage")...,
	)
	appendWaypointHandler := kithttp.NewServer(
		endpoints.AppendWaypointEndpoint,
		decodeAppendWaypointRequest,
		encodeCreatedResponse,
		traced("AppendWaypoint")...,
	)
	updateWaypointHandler := kithttp.NewServer(
		endpoints.UpdateWaypointEndpoint,
		decodeUpdateWaypointRequest,
		encodeResponse,
		traced("UpdateWaypoint")...,
	)
	removeWaypointHandler := kithttp.NewServer(
		endpoints.RemoveWaypointEndpoint,
		decodeRemoveWaypointRequest,
		encodeResponse,
		traced("RemoveWaypoint")...,
	)
	computeVoyageHandler := kithttp.NewServer(
		endpoints.ComputeVoyageEndpoint,
		decodeComputeVoyageRequest,
		encodeResponse,
		traced("ComputeVoyage")...,
	)
	printPDFHandler := kithttp.NewServer(
		endpoints.PrintVoyageEndpoint,
		decodePrintVoyageRequest,
		encodePDFResponse,
		traced("PrintVoyage")...,
	)
	printTextHandler := kithttp.NewServer(
		endpoints.PrintVoyageEndpoint,
		decodePrintVoyageRequest,
		encodeTextResponse,
		traced("PrintVoyage")...,
	)

	r.Handle("/planner/v1/options", optionsHandler).Methods("GET")
	r.Handle("/planner/v1/voyages", listVoyagesHandler).Methods("GET")
	r.Handle("/planner/v1/voyages", createVoyageHandler).Methods("POST")
	r.Handle("/planner/v1/voyages/{id}", loadVoyageHandler).Methods("GET")
	r.Handle("/planner/v1/voyages/{id}", updateVoyageHandler).Methods("PATCH")
	r.Handle("/planner/v1/voyages/{id}", removeVoyageHandler).Methods("DELETE")
	r.Handle("/planner/v1/voyages/{id}/waypoints", appendWaypointHandler).Methods("POST")
	r.Handle("/planner/v1/voyages/{id}/waypoints/{wid}", updateWaypointHandler).Methods("PATCH")
	r.Handle("/planner/v1/voyages/{id}/waypoints/{wid}", removeWaypointHandler).Methods("DELETE")
	r.Handle("/planner/v1/voyages/{id}/eta", computeVoyageHandler).Methods("GET")
	r.Handle("/planner/v1/voyages/{id}/print", printPDFHandler).Methods("GET")
	r.Handle("/planner/v1/voyages/{id}/print.txt", printTextHandler).Methods("GET")

	return r
}

func decodeOptionsRequest(_ context.Context, r *http.Request) (interface{}, error) {
	return optionsRequest{}, nil
}

func decodeListVoyagesRequest(_ context.Context, r *http.Request) (interface{}, error) {
	return listVoyagesRequest{}, nil
}

func decodeCreateVoyageRequest(_ context.Context, r *http.Request) (interface{}, error) {
	return createVoyageRequest{}, nil
}

func decodeLoadVoyageRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, err := voyageID(r)
	if err != nil {
		return nil, err
	}
	return loadVoyageRequest{ID: id}, nil
}

func decodeRemoveVoyageRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, err := voyageID(r)
	if err != nil {
		return nil, err
	}
	return removeVoyageRequest{ID: id}, nil
}

func decodeUpdateVoyageRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, err := voyageID(r)
	if err != nil {
		return nil, err
	}

	var body struct {
		Name                *string `json:"name"`
		Departure           *string `json:"departure"`
		DepartureTimezone   *string `json:"departure_timezone"`
		DestinationTimezone *string `json:"destination_timezone"`
		Fuel                []struct {
			Slot   int      `json:"slot"`
			Type   *string  `json:"type"`
			Amount *float64 `json:"amount"`
		} `json:"fuel"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, ErrInvalidArgument
	}

	u := VoyageUpdate{Name: body.Name}
	if body.Departure != nil {
		t, err := parseDeparture(*body.Departure)
		if err != nil {
			return nil, err
		}
		u.Departure = &t
	}
	if body.DepartureTimezone != nil {
		l := timezone.Label(*body.DepartureTimezone)
		u.DepartureTimezone = &l
	}
	if body.DestinationTimezone != nil {
		l := timezone.Label(*body.DestinationTimezone)
		u.DestinationTimezone = &l
	}
	for _, f := range body.Fuel {
		fu := FuelUpdate{Slot: f.Slot, Amount: f.Amount}
		if f.Type != nil {
			t, err := fuel.ParseType(*f.Type)
			if err != nil {
				return nil, err
			}
			fu.Type = &t
		}
		u.Fuel = append(u.Fuel, fu)
	}

	return updateVoyageRequest{ID: id, Update: u}, nil
}

func parseDeparture(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range departureLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidArgument
}

func decodeAppendWaypointRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, err := voyageID(r)
	if err != nil {
		return nil, err
	}
	return appendWaypointRequest{ID: id}, nil
}

func decodeUpdateWaypointRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, wid, err := waypointID(r)
	if err != nil {
		return nil, err
	}
	var u WaypointUpdate
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		return nil, ErrInvalidArgument
	}
	return updateWaypointRequest{ID: id, WaypointID: wid, Update: u}, nil
}

func decodeRemoveWaypointRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, wid, err := waypointID(r)
	if err != nil {
		return nil, err
	}
	return removeWaypointRequest{ID: id, WaypointID: wid}, nil
}

func decodeComputeVoyageRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, err := voyageID(r)
	if err != nil {
		return nil, err
	}
	return computeVoyageRequest{ID: id}, nil
}

func decodePrintVoyageRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, err := voyageID(r)
	if err != nil {
		return nil, err
	}
	return printVoyageRequest{ID: id}, nil
}

func voyageID(r *http.Request) (voyage.ID, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		return 0, errBadRoute
	}
	return voyage.ID(id), nil
}

func waypointID(r *http.Request) (voyage.ID, voyage.WaypointID, error) {
	id, err := voyageID(r)
	if err != nil {
		return 0, 0, err
	}
	wid, err := strconv.Atoi(mux.Vars(r)["wid"])
	if err != nil {
		return 0, 0, errBadRoute
	}
	return id, voyage.WaypointID(wid), nil
}

func encodeResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	if e, ok := response.(errorer); ok && e.error() != nil {
		encodeError(ctx, e.error(), w)
		return nil
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	return json.NewEncoder(w).Encode(response)
}

func encodeCreatedResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	if e, ok := response.(errorer); ok && e.error() != nil {
		encodeError(ctx, e.error(), w)
		return nil
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusCreated)
	return json.NewEncoder(w).Encode(response)
}

func encodePDFResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	if e, ok := response.(errorer); ok && e.error() != nil {
		encodeError(ctx, e.error(), w)
		return nil
	}
	resp := response.(printVoyageResponse)
	ref := report.NextReference()
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+string(ref)+`.pdf"`)
	return report.PDF(w, ref, resp.Result)
}

func encodeTextResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	if e, ok := response.(errorer); ok && e.error() != nil {
		encodeError(ctx, e.error(), w)
		return nil
	}
	resp := response.(printVoyageResponse)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	return report.Text(w, report.NextReference(), resp.Result)
}

type errorer interface {
	error() error
}

// encode errors from business-logic
func encodeError(_ context.Context, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	switch err {
	case voyage.ErrUnknown, voyage.ErrUnknownWaypoint, errBadRoute:
		w.WriteHeader(http.StatusNotFound)
	case ErrInvalidArgument, voyage.ErrInvalidSlot, fuel.ErrUnknownType:
		w.WriteHeader(http.StatusBadRequest)
	case ErrVoyageLimit, ErrWaypointLimit, ErrNoDeparture:
		w.WriteHeader(http.StatusConflict)
	case ratelimit.ErrLimited:
		w.WriteHeader(http.StatusTooManyRequests)
	case gobreaker.ErrOpenState, gobreaker.ErrTooManyRequests:
		w.WriteHeader(http.StatusServiceUnavailable)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
	})
}
