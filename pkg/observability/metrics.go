package observability

import (
	"context"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsPublisher is the subset of the CloudWatch client used to push metrics.
type MetricsPublisher interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

var _ MetricsPublisher = (*cloudwatch.Client)(nil)

// Metrics holds the Prometheus collectors for the service. Each instance owns
// its registry so tests can build as many as they like.
type Metrics struct {
	registry  *prometheus.Registry
	namespace string
	cw        MetricsPublisher
	logger    *zap.Logger

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	Commands        *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	Queries         *prometheus.CounterVec

	RepoOperations *prometheus.CounterVec
	RepoDuration   *prometheus.HistogramVec

	DocumentOperations *prometheus.CounterVec

	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
}

// NewMetrics creates the collectors. namespace is the CloudWatch namespace;
// the Prometheus prefix is derived from it. cw may be nil, in which case
// nothing is pushed to CloudWatch.
func NewMetrics(cwNamespace string, cw MetricsPublisher, logger *zap.Logger) *Metrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	namespace := promNamespace(cwNamespace)
	m := &Metrics{
		registry:  prometheus.NewRegistry(),
		namespace: cwNamespace,
		cw:        cw,
		logger:    logger,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands dispatched, by name and status",
		}, []string{"command", "status"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Command handling duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command"}),
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Queries dispatched, by name and status",
		}, []string{"query", "status"}),
		RepoOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "repository_operations_total",
			Help:      "Repository operations, by store, operation and status",
		}, []string{"store", "operation", "status"}),
		RepoDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "repository_operation_duration_seconds",
			Help:      "Repository operation duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"store", "operation"}),
		DocumentOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_operations_total",
			Help:      "Document engine operations, by kind and whether the document changed",
		}, []string{"operation", "applied"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Cache hits",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Cache misses",
		}),
	}

	m.registry.MustRegister(
		m.HTTPRequests, m.HTTPDuration,
		m.Commands, m.CommandDuration, m.Queries,
		m.RepoOperations, m.RepoDuration,
		m.DocumentOperations,
		m.CacheHits, m.CacheMisses,
	)
	return m
}

// promNamespace lowercases ns and replaces characters Prometheus does not
// allow in metric names, so "PromptBuilder/production" becomes
// "promptbuilder_production".
func promNamespace(ns string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return unicode.ToLower(r)
		default:
			return '_'
		}
	}, ns)
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func status(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// RecordCommandExecution records a handled command locally and, when a
// CloudWatch client is configured, pushes it there as well.
func (m *Metrics) RecordCommandExecution(ctx context.Context, commandName string, duration time.Duration, err error) {
	st := status(err)
	m.Commands.WithLabelValues(commandName, st).Inc()
	m.CommandDuration.WithLabelValues(commandName).Observe(duration.Seconds())

	if m.cw == nil {
		return
	}
	dims := []types.Dimension{
		{Name: aws.String("CommandName"), Value: aws.String(commandName)},
		{Name: aws.String("Status"), Value: aws.String(st)},
	}
	now := time.Now()
	m.put(ctx, []types.MetricDatum{
		{
			MetricName: aws.String("CommandExecution"),
			Dimensions: dims,
			Value:      aws.Float64(float64(duration.Milliseconds())),
			Unit:       types.StandardUnitMilliseconds,
			Timestamp:  aws.Time(now),
		},
		{
			MetricName: aws.String("CommandCount"),
			Dimensions: dims,
			Value:      aws.Float64(1),
			Unit:       types.StandardUnitCount,
			Timestamp:  aws.Time(now),
		},
	})
}

// RecordQueryExecution records a handled query.
func (m *Metrics) RecordQueryExecution(queryName string, err error) {
	m.Queries.WithLabelValues(queryName, status(err)).Inc()
}

// RecordHTTPRequest records a served request.
func (m *Metrics) RecordHTTPRequest(method, route, code string, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, code).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordRepositoryOperation records one call into a store.
func (m *Metrics) RecordRepositoryOperation(store, operation string, duration time.Duration, err error) {
	m.RepoOperations.WithLabelValues(store, operation, status(err)).Inc()
	m.RepoDuration.WithLabelValues(store, operation).Observe(duration.Seconds())
}

// RecordDocumentOperation records a document engine call and whether it
// changed the document.
func (m *Metrics) RecordDocumentOperation(operation string, applied bool) {
	a := "false"
	if applied {
		a = "true"
	}
	m.DocumentOperations.WithLabelValues(operation, a).Inc()
}

func (m *Metrics) RecordCacheHit()  { m.CacheHits.Inc() }
func (m *Metrics) RecordCacheMiss() { m.CacheMisses.Inc() }

// RecordError pushes an error occurrence to CloudWatch.
func (m *Metrics) RecordError(ctx context.Context, errorType, errorCode string) {
	if m.cw == nil {
		return
	}
	m.put(ctx, []types.MetricDatum{{
		MetricName: aws.String("Errors"),
		Dimensions: []types.Dimension{
			{Name: aws.String("ErrorType"), Value: aws.String(errorType)},
			{Name: aws.String("ErrorCode"), Value: aws.String(errorCode)},
		},
		Value:     aws.Float64(1),
		Unit:      types.StandardUnitCount,
		Timestamp: aws.Time(time.Now()),
	}})
}

func (m *Metrics) put(ctx context.Context, data []types.MetricDatum) {
	_, err := m.cw.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	})
	if err != nil {
		// Metrics never fail the operation being measured.
		m.logger.Warn("failed to send metrics", zap.Error(err))
	}
}
