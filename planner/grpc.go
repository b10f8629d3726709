package planner

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/go-kit/kit/circuitbreaker"
	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/ratelimit"
	"github.com/go-kit/kit/tracing/opentracing"
	"github.com/go-kit/kit/tracing/zipkin"
	"github.com/go-kit/kit/transport"
	grpctransport "github.com/go-kit/kit/transport/grpc"

	"github.com/golang/protobuf/jsonpb"
	stdopentracing "github.com/opentracing/opentracing-go"
	stdzipkin "github.com/openzipkin/zipkin-go"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/Qalifah/passageplan/fuel"
	"github.com/Qalifah/passageplan/voyage"
)

// ServiceName is the gRPC service the planner is registered under.
const ServiceName = "pb.Planner"

// PlannerServer is the server API of the planner gRPC service. Every method
// takes and returns a google.protobuf.Struct holding a JSON envelope.
type PlannerServer interface {
	Serve(ctx context.Context, method string, req *structpb.Struct) (*structpb.Struct, error)
}

var grpcMethods = []string{
	"CreateVoyage",
	"RemoveVoyage",
	"LoadVoyage",
	"ListVoyages",
	"AppendWaypoint",
	"RemoveWaypoint",
	"UpdateVoyage",
	"UpdateWaypoint",
	"ComputeVoyage",
	"Options",
}

func plannerServiceDesc() *grpc.ServiceDesc {
	desc := &grpc.ServiceDesc{
		ServiceName: ServiceName,
		HandlerType: (*PlannerServer)(nil),
		Streams:     []grpc.StreamDesc{},
		Metadata:    "planner.proto",
	}
	for _, m := range grpcMethods {
		desc.Methods = append(desc.Methods, methodDesc(m))
	}
	return desc
}

func methodDesc(method string) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return srv.(PlannerServer).Serve(ctx, method, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + method,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return srv.(PlannerServer).Serve(ctx, method, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// RegisterPlannerServer registers srv on s.
func RegisterPlannerServer(s *grpc.Server, srv PlannerServer) {
	s.RegisterService(plannerServiceDesc(), srv)
}

type grpcServer struct {
	handlers map[string]grpctransport.Handler
}

// NewGRPCServer makes a set of endpoints available on a grpc server
func NewGRPCServer(endpoints Set, otTracer stdopentracing.Tracer, zipkinTracer *stdzipkin.Tracer, logger log.Logger) PlannerServer {
	options := []grpctransport.ServerOption{
		grpctransport.ServerErrorHandler(transport.NewLogErrorHandler(logger)),
	}
	if zipkinTracer != nil {
		options = append(options, zipkin.GRPCServerTrace(zipkinTracer))
	}

	handler := func(e endpoint.Endpoint, method string, dec grpctransport.DecodeRequestFunc) grpctransport.Handler {
		opts := append([]grpctransport.ServerOption{}, options...)
		opts = append(opts, grpctransport.ServerBefore(opentracing.GRPCToContext(otTracer, method, logger)))
		return grpctransport.NewServer(e, dec, encodeGRPCResponse, opts...)
	}

	return &grpcServer{
		handlers: map[string]grpctransport.Handler{
			"CreateVoyage":   handler(endpoints.CreateVoyageEndpoint, "CreateVoyage", decodeGRPCCreateVoyageRequest),
			"RemoveVoyage":   handler(endpoints.RemoveVoyageEndpoint, "RemoveVoyage", decodeGRPCRemoveVoyageRequest),
			"LoadVoyage":     handler(endpoints.LoadVoyageEndpoint, "LoadVoyage", decodeGRPCLoadVoyageRequest),
			"ListVoyages":    handler(endpoints.ListVoyagesEndpoint, "ListVoyages", decodeGRPCListVoyagesRequest),
			"AppendWaypoint": handler(endpoints.AppendWaypointEndpoint, "AppendWaypoint", decodeGRPCAppendWaypointRequest),
			"RemoveWaypoint": handler(endpoints.RemoveWaypointEndpoint, "RemoveWaypoint", decodeGRPCRemoveWaypointRequest),
			"UpdateVoyage":   handler(endpoints.UpdateVoyageEndpoint, "UpdateVoyage", decodeGRPCUpdateVoyageRequest),
			"UpdateWaypoint": handler(endpoints.UpdateWaypointEndpoint, "UpdateWaypoint", decodeGRPCUpdateWaypointRequest),
			"ComputeVoyage":  handler(endpoints.ComputeVoyageEndpoint, "ComputeVoyage", decodeGRPCComputeVoyageRequest),
			"Options":        handler(endpoints.OptionsEndpoint, "Options", decodeGRPCOptionsRequest),
		},
	}
}

func (s *grpcServer) Serve(ctx context.Context, method string, req *structpb.Struct) (*structpb.Struct, error) {
	h, ok := s.handlers[method]
	if !ok {
		return nil, status.Errorf(codes.Unimplemented, "method %s not implemented", method)
	}
	_, rep, err := h.ServeGRPC(ctx, req)
	if err != nil {
		return nil, err
	}
	return rep.(*structpb.Struct), nil
}

// NewGRPCClient returns a planner service backed by a grpc server at the other end of the conn
func NewGRPCClient(conn *grpc.ClientConn, otTracer stdopentracing.Tracer, zipkinTracer *stdzipkin.Tracer, logger log.Logger) Service {
	limiter := ratelimit.NewErroringLimiter(rate.NewLimiter(rate.Every(time.Second), 100))
	var options []grpctransport.ClientOption
	if zipkinTracer != nil {
		options = append(options, zipkin.GRPCClientTrace(zipkinTracer))
	}

	client := func(method string, dec grpctransport.DecodeResponseFunc) endpoint.Endpoint {
		opts := append([]grpctransport.ClientOption{}, options...)
		opts = append(opts, grpctransport.ClientBefore(opentracing.ContextToGRPC(otTracer, logger)))
		e := grpctransport.NewClient(
			conn,
			ServiceName,
			method,
			encodeGRPCRequest,
			dec,
			&structpb.Struct{},
			opts...,
		).Endpoint()
		e = opentracing.TraceClient(otTracer, method)(e)
		e = limiter(e)
		e = circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    method,
			Timeout: 30 * time.Second,
		}))(e)
		return e
	}

	return Set{
		CreateVoyageEndpoint:   client("CreateVoyage", decodeGRPCCreateVoyageResponse),
		RemoveVoyageEndpoint:   client("RemoveVoyage", decodeGRPCRemoveVoyageResponse),
		LoadVoyageEndpoint:     client("LoadVoyage", decodeGRPCLoadVoyageResponse),
		ListVoyagesEndpoint:    client("ListVoyages", decodeGRPCListVoyagesResponse),
		AppendWaypointEndpoint: client("AppendWaypoint", decodeGRPCEditResponse),
		RemoveWaypointEndpoint: client("RemoveWaypoint", decodeGRPCEditResponse),
		UpdateVoyageEndpoint:   client("UpdateVoyage", decodeGRPCEditResponse),
		UpdateWaypointEndpoint: client("UpdateWaypoint", decodeGRPCEditResponse),
		ComputeVoyageEndpoint:  client("ComputeVoyage", decodeGRPCComputeVoyageResponse),
		OptionsEndpoint:        client("Options", decodeGRPCOptionsResponse),
	}
}

// envelope is the JSON document carried in every Struct message.
type envelope struct {
	Body  json.RawMessage `json:"body,omitempty"`
	Error string          `json:"error,omitempty"`
}

func encodeEnvelope(body interface{}, err error) (*structpb.Struct, error) {
	raw, e := json.Marshal(body)
	if e != nil {
		return nil, e
	}
	doc, e := json.Marshal(envelope{Body: raw, Error: err2str(err)})
	if e != nil {
		return nil, e
	}
	s := &structpb.Struct{}
	if e := jsonpb.UnmarshalString(string(doc), s); e != nil {
		return nil, e
	}
	return s, nil
}

// decodeEnvelope decodes the body of msg into v and returns the error message it
// carries.
func decodeEnvelope(msg interface{}, v interface{}) (string, error) {
	doc, err := (&jsonpb.Marshaler{}).MarshalToString(msg.(*structpb.Struct))
	if err != nil {
		return "", err
	}
	var env envelope
	if err := json.Unmarshal([]byte(doc), &env); err != nil {
		return "", err
	}
	if len(env.Body) > 0 {
		if err := json.Unmarshal(env.Body, v); err != nil {
			return "", err
		}
	}
	return env.Error, nil
}

func encodeGRPCRequest(_ context.Context, request interface{}) (interface{}, error) {
	return encodeEnvelope(request, nil)
}

func encodeGRPCResponse(_ context.Context, response interface{}) (interface{}, error) {
	var err error
	if e, ok := response.(errorer); ok {
		err = e.error()
	}
	return encodeEnvelope(response, err)
}

func decodeGRPCCreateVoyageRequest(_ context.Context, grpcReq interface{}) (interface{}, error) {
	var req createVoyageRequest
	_, err := decodeEnvelope(grpcReq, &req)
	return req, err
}

func decodeGRPCRemoveVoyageRequest(_ context.Context, grpcReq interface{}) (interface{}, error) {
	var req removeVoyageRequest
	_, err := decodeEnvelope(grpcReq, &req)
	return req, err
}

func decodeGRPCLoadVoyageRequest(_ context.Context, grpcReq interface{}) (interface{}, error) {
	var req loadVoyageRequest
	_, err := decodeEnvelope(grpcReq, &req)
	return req, err
}

func decodeGRPCListVoyagesRequest(_ context.Context, grpcReq interface{}) (interface{}, error) {
	var req listVoyagesRequest
	_, err := decodeEnvelope(grpcReq, &req)
	return req, err
}

func decodeGRPCAppendWaypointRequest(_ context.Context, grpcReq interface{}) (interface{}, error) {
	var req appendWaypointRequest
	_, err := decodeEnvelope(grpcReq, &req)
	return req, err
}

func decodeGRPCRemoveWaypointRequest(_ context.Context, grpcReq interface{}) (interface{}, error) {
	var req removeWaypointRequest
	_, err := decodeEnvelope(grpcReq, &req)
	return req, err
}

func decodeGRPCUpdateVoyageRequest(_ context.Context, grpcReq interface{}) (interface{}, error) {
	var req updateVoyageRequest
	_, err := decodeEnvelope(grpcReq, &req)
	return req, err
}

func decodeGRPCUpdateWaypointRequest(_ context.Context, grpcReq interface{}) (interface{}, error) {
	var req updateWaypointRequest
	_, err := decodeEnvelope(grpcReq, &req)
	return req, err
}

func decodeGRPCComputeVoyageRequest(_ context.Context, grpcReq interface{}) (interface{}, error) {
	var req computeVoyageRequest
	_, err := decodeEnvelope(grpcReq, &req)
	return req, err
}

func decodeGRPCOptionsRequest(_ context.Context, grpcReq interface{}) (interface{}, error) {
	var req optionsRequest
	_, err := decodeEnvelope(grpcReq, &req)
	return req, err
}

func decodeGRPCCreateVoyageResponse(_ context.Context, grpcReply interface{}) (interface{}, error) {
	var resp createVoyageResponse
	msg, err := decodeEnvelope(grpcReply, &resp)
	resp.Err = str2err(msg)
	return resp, err
}

func decodeGRPCRemoveVoyageResponse(_ context.Context, grpcReply interface{}) (interface{}, error) {
	var resp removeVoyageResponse
	msg, err := decodeEnvelope(grpcReply, &resp)
	resp.Err = str2err(msg)
	return resp, err
}

func decodeGRPCLoadVoyageResponse(_ context.Context, grpcReply interface{}) (interface{}, error) {
	var resp loadVoyageResponse
	msg, err := decodeEnvelope(grpcReply, &resp)
	resp.Err = str2err(msg)
	return resp, err
}

func decodeGRPCListVoyagesResponse(_ context.Context, grpcReply interface{}) (interface{}, error) {
	var resp listVoyagesResponse
	msg, err := decodeEnvelope(grpcReply, &resp)
	resp.Err = str2err(msg)
	return resp, err
}

func decodeGRPCEditResponse(_ context.Context, grpcReply interface{}) (interface{}, error) {
	var resp editResponse
	msg, err := decodeEnvelope(grpcReply, &resp)
	resp.Err = str2err(msg)
	return resp, err
}

func decodeGRPCComputeVoyageResponse(_ context.Context, grpcReply interface{}) (interface{}, error) {
	var resp computeVoyageResponse
	msg, err := decodeEnvelope(grpcReply, &resp)
	resp.Err = str2err(msg)
	return resp, err
}

func decodeGRPCOptionsResponse(_ context.Context, grpcReply interface{}) (interface{}, error) {
	var resp optionsResponse
	msg, err := decodeEnvelope(grpcReply, &resp)
	resp.Err = str2err(msg)
	return resp, err
}

// errors a client can tell apart after a round trip
var knownErrors = []error{
	voyage.ErrUnknown,
	voyage.ErrUnknownWaypoint,
	voyage.ErrInvalidSlot,
	fuel.ErrUnknownType,
	ErrInvalidArgument,
	ErrVoyageLimit,
	ErrWaypointLimit,
	ErrNoDeparture,
}

func err2str(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func str2err(s string) error {
	if s == "" {
		return nil
	}
	for _, err := range knownErrors {
		if err.Error() == s {
			return err
		}
	}
	return errors.New(s)
}
