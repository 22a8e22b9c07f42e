package interceptors

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// Metrics holds the request collectors for both transports.
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpActiveRequests  *prometheus.GaugeVec

	grpcRequestsTotal   *prometheus.CounterVec
	grpcRequestDuration *prometheus.HistogramVec
	grpcActiveRequests  *prometheus.GaugeVec
}

func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Histogram of HTTP request durations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		httpActiveRequests: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_active_requests",
				Help:      "Number of active HTTP requests",
			},
			[]string{"method"},
		),
		grpcRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "grpc_requests_total",
				Help:      "Total number of gRPC requests",
			},
			[]string{"method", "code"},
		),
		grpcRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "grpc_request_duration_seconds",
				Help:      "Histogram of gRPC request durations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		grpcActiveRequests: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "grpc_active_requests",
				Help:      "Number of active gRPC requests",
			},
			[]string{"method"},
		),
	}
}

func MetricsMiddleware(metrics *Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			method := c.Request().Method

			metrics.httpActiveRequests.WithLabelValues(method).Inc()
			defer metrics.httpActiveRequests.WithLabelValues(method).Dec()

			err := next(c)

			route := c.Path()
			metrics.httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			metrics.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(responseStatus(c, err))).Inc()

			return err
		}
	}
}

func MetricsInterceptor(metrics *Metrics) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp any, err error) {
		start := time.Now()

		metrics.grpcActiveRequests.WithLabelValues(info.FullMethod).Inc()
		defer metrics.grpcActiveRequests.WithLabelValues(info.FullMethod).Dec()

		resp, err = handler(ctx, req)

		duration := time.Since(start).Seconds()
		metrics.grpcRequestDuration.WithLabelValues(info.FullMethod).Observe(duration)

		code := "OK"
		if err != nil {
			st, _ := status.FromError(err)
			code = st.Code().String()
		}
		metrics.grpcRequestsTotal.WithLabelValues(info.FullMethod, code).Inc()

		return resp, err
	}
}
