package observability

import (
	"context"
	"errors"
	"time"

	"github.com/Flarenzy/node-inventory/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	results    prometheus.Histogram
}

// NewMetrics registers the node service collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "node_inventory_operations_total",
		Help: "Node service calls by operation and outcome.",
	}, []string{"operation", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "node_inventory_operation_duration_seconds",
		Help:    "Node service call latency.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"operation"})
	results := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "node_inventory_search_results",
		Help:    "Number of identifiers returned per search.",
		Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000},
	})

	reg.MustRegister(operations, latency, results)

	return &Metrics{
		operations: operations,
		latency:    latency,
		results:    results,
	}
}

func (m *Metrics) observe(operation string, started time.Time, err error) {
	m.latency.WithLabelValues(operation).Observe(time.Since(started).Seconds())
	m.operations.WithLabelValues(operation, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}

type metricsNodeService struct {
	metrics *Metrics
	next    domain.NodeService
}

func NewMetricsNodeService(metrics *Metrics, next domain.NodeService) domain.NodeService {
	if metrics == nil || next == nil {
		return next
	}
	return &metricsNodeService{metrics: metrics, next: next}
}

func (s *metricsNodeService) Search(ctx context.Context, query string, networks []int64) ([]string, error) {
	started := time.Now()
	vids, err := s.next.Search(ctx, query, networks)
	s.metrics.observe("search", started, err)
	if err == nil {
		s.metrics.results.Observe(float64(len(vids)))
	}
	return vids, err
}

func (s *metricsNodeService) GetNode(ctx context.Context, vid string) (domain.NodeDetails, error) {
	started := time.Now()
	details, err := s.next.GetNode(ctx, vid)
	s.metrics.observe("get_node", started, err)
	return details, err
}

func (s *metricsNodeService) History(ctx context.Context, vid string, field string) ([]domain.HistoryEntry, error) {
	started := time.Now()
	entries, err := s.next.History(ctx, vid, field)
	s.metrics.observe("history", started, err)
	return entries, err
}

func (s *metricsNodeService) CreateNode(ctx context.Context, input domain.CreateNodeInput) (domain.Node, error) {
	started := time.Now()
	node, err := s.next.CreateNode(ctx, input)
	s.metrics.observe("create_node", started, err)
	return node, err
}

func (s *metricsNodeService) UpdateNode(ctx context.Context, vid string, input domain.UpdateNodeInput) (domain.Node, error) {
	started := time.Now()
	node, err := s.next.UpdateNode(ctx, vid, input)
	s.metrics.observe("update_node", started, err)
	return node, err
}

func (s *metricsNodeService) DeleteNode(ctx context.Context, vid string) error {
	started := time.Now()
	err := s.next.DeleteNode(ctx, vid)
	s.metrics.observe("delete_node", started, err)
	return err
}
