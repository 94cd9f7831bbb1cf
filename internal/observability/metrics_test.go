package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/Flarenzy/node-inventory/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type stubNodeService struct {
	searchFn  func(context.Context, string, []int64) ([]string, error)
	historyFn func(context.Context, string, string) ([]domain.HistoryEntry, error)
	deleteFn  func(context.Context, string) error
}

func (s stubNodeService) Search(ctx context.Context, query string, networks []int64) ([]string, error) {
	if s.searchFn == nil {
		return nil, nil
	}
	return s.searchFn(ctx, query, networks)
}

func (s stubNodeService) GetNode(context.Context, string) (domain.NodeDetails, error) {
	return domain.NodeDetails{}, nil
}

func (s stubNodeService) History(ctx context.Context, vid string, field string) ([]domain.HistoryEntry, error) {
	if s.historyFn == nil {
		return nil, nil
	}
	return s.historyFn(ctx, vid, field)
}

func (s stubNodeService) CreateNode(context.Context, domain.CreateNodeInput) (domain.Node, error) {
	return domain.Node{}, nil
}

func (s stubNodeService) UpdateNode(context.Context, string, domain.UpdateNodeInput) (domain.Node, error) {
	return domain.Node{}, nil
}

func (s stubNodeService) DeleteNode(ctx context.Context, vid string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, vid)
}

func TestMetricsNodeServiceCountsOutcomes(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	svc := NewMetricsNodeService(metrics, stubNodeService{
		searchFn: func(context.Context, string, []int64) ([]string, error) {
			return []string{"0x1a0e0001", "0x1a0e0002"}, nil
		},
		historyFn: func(context.Context, string, string) ([]domain.HistoryEntry, error) {
			return nil, domain.ErrInvalidInput
		},
		deleteFn: func(context.Context, string) error {
			return errors.New("boom")
		},
	})

	for range 3 {
		if _, err := svc.Search(context.Background(), "name:alex", nil); err != nil {
			t.Fatalf("search: %v", err)
		}
	}
	_, _ = svc.History(context.Background(), "0x1a0e0001", "vid")
	_ = svc.DeleteNode(context.Background(), "0x1a0e0001")

	if got := testutil.ToFloat64(metrics.operations.WithLabelValues("search", "ok")); got != 3 {
		t.Fatalf("expected 3 successful searches, got %f", got)
	}
	if got := testutil.ToFloat64(metrics.operations.WithLabelValues("history", "invalid")); got != 1 {
		t.Fatalf("expected 1 invalid history call, got %f", got)
	}
	if got := testutil.ToFloat64(metrics.operations.WithLabelValues("delete_node", "error")); got != 1 {
		t.Fatalf("expected 1 failed delete, got %f", got)
	}
	if samples := testutil.CollectAndCount(metrics.results); samples != 1 {
		t.Fatalf("expected one result histogram, got %d", samples)
	}
	if samples := testutil.CollectAndCount(metrics.latency); samples != 3 {
		t.Fatalf("expected latency series for 3 operations, got %d", samples)
	}
}

func TestMetricsNodeServiceReturnsNextWithoutMetrics(t *testing.T) {
	next := &stubNodeService{}
	if got := NewMetricsNodeService(nil, next); got != domain.NodeService(next) {
		t.Fatal("expected next service to be returned unchanged")
	}
}

func TestOutcomeMapsSentinels(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{domain.ErrNotFound, "not_found"},
		{domain.ErrConflict, "conflict"},
		{&domain.ValidationError{Field: "vid"}, "invalid"},
		{context.Canceled, "error"},
	}
	for _, tc := range cases {
		if got := outcome(tc.err); got != tc.want {
			t.Fatalf("outcome(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
