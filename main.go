package main

import (
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"google.golang.org/grpc"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/go-kit/kit/log"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	kitgrpc "github.com/go-kit/kit/transport/grpc"

	stdopentracing "github.com/opentracing/opentracing-go"
	stdzipkin "github.com/openzipkin/zipkin-go"
	zipkinhttp "github.com/openzipkin/zipkin-go/reporter/http"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Qalifah/passageplan/inmem"
	"github.com/Qalifah/passageplan/planner"
)

const (
	defaultPort     = "8080"
	defaultGRPCAddr = ":8081"
)

func main() {
	_ = godotenv.Load()

	var (
		addr      = envString("PORT", defaultPort)
		grpcAddr  = envString("GRPC_ADDR", defaultGRPCAddr)
		zipkinURL = envString("ZIPKIN_URL", "")
		logFile   = envString("LOG_FILE", "")

		httpAddr       = flag.String("http.addr", ":"+addr, "HTTP listen address")
		grpcListenAddr = flag.String("grpc.addr", grpcAddr, "gRPC listen address")
		zipkinEndpoint = flag.String("zipkin.url", zipkinURL, "Zipkin collector URL, tracing is off when empty")
		logPath        = flag.String("log.file", logFile, "write logs to a rotated file instead of stderr")
	)
	flag.Parse()

	var w io.Writer = os.Stderr
	if *logPath != "" {
		w = &lumberjack.Logger{
			Filename:   *logPath,
			MaxSize:    64, // MB
			MaxBackups: 3,
			MaxAge:     14,
			Compress:   true,
		}
	}

	var logger log.Logger
	logger = log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)

	var zipkinTracer *stdzipkin.Tracer
	if *zipkinEndpoint != "" {
		reporter := zipkinhttp.NewReporter(*zipkinEndpoint)
		defer reporter.Close()
		ep, _ := stdzipkin.NewEndpoint("passageplan", *httpAddr)
		tracer, err := stdzipkin.NewTracer(reporter, stdzipkin.WithLocalEndpoint(ep))
		if err != nil {
			logger.Log("err", err)
			os.Exit(1)
		}
		zipkinTracer = tracer
	}
	otTracer := stdopentracing.GlobalTracer()

	fieldKeys := []string{"method"}

	var ps planner.Service
	ps = planner.New(inmem.NewVoyageRepository())
	ps = planner.NewLoggingService(log.With(logger, "component", "planner"), ps)
	ps = planner.NewInstrumentingService(
		kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: "api",
			Subsystem: "planner_service",
			Name:      "request_count",
			Help:      "Number of requests received.",
		}, fieldKeys),
		kitprometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
			Namespace: "api",
			Subsystem: "planner_service",
			Name:      "request_latency_seconds",
			Help:      "Total duration of requests in seconds.",
		}, fieldKeys),
		kitprometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: "api",
			Subsystem: "planner_service",
			Name:      "voyages",
			Help:      "Number of voyages being planned.",
		}, []string{}),
		ps,
	)

	duration := kitprometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
		Namespace: "passageplan",
		Subsystem: "planner",
		Name:      "request_duration_seconds",
		Help:      "Request duration in seconds.",
	}, []string{"endpoint", "success"})

	endpoints := planner.NewSet(ps, logger, duration, otTracer, zipkinTracer)

	httpLogger := log.With(logger, "component", "http")

	mux := http.NewServeMux()
	mux.Handle("/planner/v1/", planner.MakeHandler(endpoints, otTracer, zipkinTracer, httpLogger))

	http.Handle("/", accessControl(mux))
	http.Handle("/metrics", promhttp.Handler())

	errs := make(chan error, 3)
	go func() {
		logger.Log("transport", "http", "address", *httpAddr, "msg", "listening")
		errs <- http.ListenAndServe(*httpAddr, nil)
	}()

	grpcListener, err := net.Listen("tcp", *grpcListenAddr)
	if err != nil {
		logger.Log("transport", "gRPC", "during", "Listen", "err", err)
		os.Exit(1)
	}
	defer grpcListener.Close()
	go func() {
		logger.Log("transport", "gRPC", "address", *grpcListenAddr, "msg", "listening")
		baseServer := grpc.NewServer(grpc.UnaryInterceptor(kitgrpc.Interceptor))
		newGRPCServers(endpoints, otTracer, zipkinTracer, log.With(logger, "component", "grpc")).register(baseServer)
		errs <- baseServer.Serve(grpcListener)
	}()

	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		errs <- fmt.Errorf("%s", <-c)
	}()

	logger.Log("terminated", <-errs)
}

func accessControl(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type")

		if r.Method == "OPTIONS" {
			return
		}

		h.ServeHTTP(w, r)
	})
}

func envString(env, fallback string) string {
	e := os.Getenv(env)
	if e == "" {
		return fallback
	}
	return e
}
