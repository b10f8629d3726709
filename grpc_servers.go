package main

import (
	"google.golang.org/grpc"

	stdopentracing "github.com/opentracing/opentracing-go"
	stdzipkin "github.com/openzipkin/zipkin-go"

	"github.com/go-kit/kit/log"

	"github.com/Qalifah/passageplan/planner"
)

// gRPCServers provides access to the grpc servers in our application
type gRPCServers struct {
	planner.PlannerServer
}

// newGRPCServers creates a new instance of gRPCServers
func newGRPCServers(plannerSet planner.Set, otTracer stdopentracing.Tracer, zipkinTracer *stdzipkin.Tracer, logger log.Logger) gRPCServers {
	return gRPCServers{
		planner.NewGRPCServer(plannerSet, otTracer, zipkinTracer, logger),
	}
}

// register attaches every server to s
func (g gRPCServers) register(s *grpc.Server) {
	planner.RegisterPlannerServer(s, g.PlannerServer)
}
