package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dmehra2102/todo-api/internal/app"
	"github.com/dmehra2102/todo-api/internal/infrastructure/config"
	"github.com/dmehra2102/todo-api/internal/infrastructure/memory"
	"github.com/dmehra2102/todo-api/internal/interceptors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
)

const (
	serviceName    = "todo-api"
	serviceVersion = "1.0.0"
)

func main() {
	// Load Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	obs := cfg.GetObservabilityConfig()
	srvCfg := cfg.GetServerConfig()

	// Initialize logger
	logger := initLogger(cfg.IsProduction(), obs.LogLevel, obs.LogFormat)
	defer logger.Sync()

	logger.Info("Starting todo service",
		zap.String("version", serviceVersion),
		zap.String("environment", cfg.Environment),
	)

	// Initialize OpenTelemetry
	if obs.EnableTracing {
		shutdown, err := initTracer(obs.OTLPEndpoint)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer shutdown(context.Background())
	}

	store := memory.NewTodoStore()

	var metrics *interceptors.Metrics
	var metricsServer *http.Server
	if obs.EnableMetrics {
		reg := initRegistry(obs.PrometheusNamespace, store)
		metrics = interceptors.NewMetrics(obs.PrometheusNamespace, reg)
		metricsServer = &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.MetricsPort)),
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	todoHandler := app.NewTodoHandler(store, logger)
	router := app.NewRouter(todoHandler, logger, metrics, srvCfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Server starting", zap.String("address", srvCfg.Address))
		if err := router.Start(srvCfg.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to serve", zap.Error(err))
		}
	}()

	if metricsServer != nil {
		go func() {
			logger.Info("Metrics server starting", zap.String("address", metricsServer.Addr))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server failed", zap.Error(err))
			}
		}()
	}

	var grpcServer *grpc.Server
	var healthServer *health.Server
	if cfg.EnableHealthCheck {
		grpcServer = initGRPCServer(cfg, logger, metrics)

		// Register health service
		healthServer = health.NewServer()
		healthpb.RegisterHealthServer(grpcServer, healthServer)
		healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)

		// Register reflection for development
		if cfg.ReflectionEnabled() {
			reflection.Register(grpcServer)
		}

		lis, err := net.Listen("tcp", net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.HealthPort)))
		if err != nil {
			logger.Fatal("Failed to listen", zap.Error(err))
		}

		go func() {
			logger.Info("Health server starting", zap.Int("port", cfg.HealthPort))
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("Health server failed", zap.Error(err))
			}
		}()
	}

	<-ctx.Done()
	logger.Info("Shutting down gracefully...")

	if healthServer != nil {
		healthServer.Shutdown()
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), srvCfg.ShutdownTimeout)
	defer cancel()

	if err := router.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown incomplete", zap.Error(err))
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Metrics server shutdown incomplete", zap.Error(err))
		}
	}

	if grpcServer != nil {
		done := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(done)
		}()

		select {
		case <-done:
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout exceeded, forcing stop")
			grpcServer.Stop()
		}
	}

	logger.Info("Server stopped gracefully",
		zap.Int("todos_discarded", store.Count(context.Background())),
	)
}

func initLogger(production bool, level, format string) *zap.Logger {
	zcfg := zap.NewDevelopmentConfig()
	if production {
		zcfg = zap.NewProductionConfig()
	}

	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}
	zcfg.Level = lvl
	zcfg.Encoding = format

	logger, err := zcfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	return logger.With(zap.String("service", serviceName))
}

func initTracer(endpoint string) (func(context.Context) error, error) {
	exporter, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create otlp exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(serviceVersion),
		)),
	)

	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

func initRegistry(namespace string, store *memory.TodoStore) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	promauto.With(reg).NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "todos_stored",
			Help:      "Number of todos currently held in memory",
		},
		func() float64 {
			return float64(store.Count(context.Background()))
		},
	)

	return reg
}

func initGRPCServer(cfg *config.Config, logger *zap.Logger, metrics *interceptors.Metrics) *grpc.Server {
	chain := []grpc.UnaryServerInterceptor{
		interceptors.RecoveryInterceptor(logger),
		interceptors.LoggingInterceptor(logger),
	}
	if metrics != nil {
		chain = append(chain, interceptors.MetricsInterceptor(metrics))
	}

	opts := []grpc.ServerOption{
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     15 * time.Minute,
			MaxConnectionAge:      30 * time.Minute,
			MaxConnectionAgeGrace: 5 * time.Minute,
			Time:                  5 * time.Minute,
			Timeout:               1 * time.Minute,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             1 * time.Minute,
			PermitWithoutStream: true,
		}),
		grpc.ChainUnaryInterceptor(chain...),
	}

	if cfg.EnableTracing {
		opts = append(opts, grpc.StatsHandler(otelgrpc.NewServerHandler()))
	}

	return grpc.NewServer(opts...)
}
