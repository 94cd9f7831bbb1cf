package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Flarenzy/node-inventory/internal/domain"
)

type stubHealthChecker struct {
	err error
}

func (s stubHealthChecker) Ping(context.Context) error {
	return s.err
}

type stubService struct {
	searchFn     func(context.Context, string, []int64) ([]string, error)
	getNodeFn    func(context.Context, string) (domain.NodeDetails, error)
	historyFn    func(context.Context, string, string) ([]domain.HistoryEntry, error)
	createNodeFn func(context.Context, domain.CreateNodeInput) (domain.Node, error)
	updateNodeFn func(context.Context, string, domain.UpdateNodeInput) (domain.Node, error)
	deleteNodeFn func(context.Context, string) error
}

func (s stubService) Search(ctx context.Context, query string, networks []int64) ([]string, error) {
	if s.searchFn == nil {
		return nil, nil
	}
	return s.searchFn(ctx, query, networks)
}

func (s stubService) GetNode(ctx context.Context, vid string) (domain.NodeDetails, error) {
	if s.getNodeFn == nil {
		return domain.NodeDetails{}, nil
	}
	return s.getNodeFn(ctx, vid)
}

func (s stubService) History(ctx context.Context, vid string, field string) ([]domain.HistoryEntry, error) {
	if s.historyFn == nil {
		return nil, nil
	}
	return s.historyFn(ctx, vid, field)
}

func (s stubService) CreateNode(ctx context.Context, input domain.CreateNodeInput) (domain.Node, error) {
	if s.createNodeFn == nil {
		return domain.Node{}, nil
	}
	return s.createNodeFn(ctx, input)
}

func (s stubService) UpdateNode(ctx context.Context, vid string, input domain.UpdateNodeInput) (domain.Node, error) {
	if s.updateNodeFn == nil {
		return domain.Node{}, nil
	}
	return s.updateNodeFn(ctx, vid, input)
}

func (s stubService) DeleteNode(ctx context.Context, vid string) error {
	if s.deleteNodeFn == nil {
		return nil
	}
	return s.deleteNodeFn(ctx, vid)
}

func newHandlerTestAPI(service domain.NodeService, health HealthChecker) *API {
	return NewAPI(slog.New(slog.NewTextHandler(io.Discard, nil)), health, service, nil)
}

func serve(t *testing.T, api *API, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	api.Router().ServeHTTP(rec, req)
	return rec
}

func strPtr(s string) *string {
	return &s
}

func TestHandleHealthz(t *testing.T) {
	rec := serve(t, newHandlerTestAPI(stubService{}, nil), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected response: %d %q", rec.Code, rec.Body.String())
	}
}

func TestHandleReadyzReportsDatabaseFailure(t *testing.T) {
	rec := serve(t, newHandlerTestAPI(stubService{}, stubHealthChecker{err: errors.New("down")}), http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}

	rec = serve(t, newHandlerTestAPI(stubService{}, stubHealthChecker{}), http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestHandleSearchNodesPassesQueryAndNetworks(t *testing.T) {
	var gotQuery string
	var gotNetworks []int64
	api := newHandlerTestAPI(stubService{
		searchFn: func(_ context.Context, query string, networks []int64) ([]string, error) {
			gotQuery, gotNetworks = query, networks
			return []string{"0x1a0e0001", "0x1a0e0002"}, nil
		},
	}, nil)

	rec := serve(t, api, http.MethodGet, "/api/v1/nodes?q=name%3Abarry&network=1,2&network=7", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if gotQuery != "name:barry" {
		t.Fatalf("unexpected query %q", gotQuery)
	}
	if !reflect.DeepEqual(gotNetworks, []int64{1, 2, 7}) {
		t.Fatalf("unexpected networks %v", gotNetworks)
	}

	var resp SearchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !reflect.DeepEqual(resp.VIDs, []string{"0x1a0e0001", "0x1a0e0002"}) {
		t.Fatalf("unexpected vids %v", resp.VIDs)
	}
}

func TestHandleSearchNodesEncodesEmptyResultAsArray(t *testing.T) {
	rec := serve(t, newHandlerTestAPI(stubService{}, nil), http.MethodGet, "/api/v1/nodes?q=nothing", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"vids":[]}` {
		t.Fatalf("unexpected body %s", got)
	}
}

func TestHandleSearchNodesRejectsBadNetwork(t *testing.T) {
	called := false
	api := newHandlerTestAPI(stubService{
		searchFn: func(context.Context, string, []int64) ([]string, error) {
			called = true
			return nil, nil
		},
	}, nil)

	rec := serve(t, api, http.MethodGet, "/api/v1/nodes?q=x&network=abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected %d, got %d", http.StatusBadRequest, rec.Code)
	}
	if called {
		t.Fatal("expected service not to be called")
	}
}

func TestHandleGetNodeRendersDetails(t *testing.T) {
	network := int64(1)
	api := newHandlerTestAPI(stubService{
		getNodeFn: func(_ context.Context, vid string) (domain.NodeDetails, error) {
			if vid != "0x1a0e0001" {
				t.Fatalf("unexpected vid %q", vid)
			}
			return domain.NodeDetails{
				Node: domain.Node{VID: vid, Name: strPtr("Barry"), Enabled: true, NetworkID: &network},
				Hardware: []domain.HardwareDetails{{
					Hardware: domain.HardwareNode{ID: 3, VersionDecoded: strPtr("3.0")},
					IPs:      []domain.NodeIP{{U32: 3232235521, Type: "accessip"}},
				}},
				Tickets: []domain.Ticket{{TicketSystemID: 1, TicketID: "111"}},
			}, nil
		},
	}, nil)

	rec := serve(t, api, http.MethodGet, "/api/v1/nodes/0x1a0e0001", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
	}

	var resp NodeResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Name == nil || *resp.Name != "Barry" {
		t.Fatalf("unexpected name %v", resp.Name)
	}
	if len(resp.Hardware) != 1 || len(resp.Hardware[0].IPs) != 1 || resp.Hardware[0].IPs[0].Address != "192.168.0.1" {
		t.Fatalf("unexpected hardware %+v", resp.Hardware)
	}
	if len(resp.Tickets) != 1 || resp.Tickets[0].TicketID != "111" {
		t.Fatalf("unexpected tickets %+v", resp.Tickets)
	}
}

func TestHandleGetNodeMapsErrors(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrNotFound, http.StatusNotFound},
		{&domain.ValidationError{Field: "vid", Value: "x", Reason: "bad"}, http.StatusBadRequest},
		{domain.ErrConflict, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		api := newHandlerTestAPI(stubService{
			getNodeFn: func(context.Context, string) (domain.NodeDetails, error) {
				return domain.NodeDetails{}, tc.err
			},
		}, nil)
		rec := serve(t, api, http.MethodGet, "/api/v1/nodes/x", "")
		if rec.Code != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, rec.Code)
		}
	}
}

func TestHandleNodeHistory(t *testing.T) {
	api := newHandlerTestAPI(stubService{
		historyFn: func(_ context.Context, vid string, field string) ([]domain.HistoryEntry, error) {
			if vid != "0x1a0e0001" || field != "name" {
				t.Fatalf("unexpected args %q %q", vid, field)
			}
			return []domain.HistoryEntry{
				{Timestamp: time.Date(2016, 9, 2, 0, 0, 0, 0, time.UTC), Value: "Larry"},
				{Timestamp: time.Date(2016, 9, 1, 0, 0, 0, 0, time.UTC), Value: "Barry"},
			}, nil
		},
	}, nil)

	rec := serve(t, api, http.MethodGet, "/api/v1/nodes/0x1a0e0001/history/name", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
	}
	var resp []HistoryEntryResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 2 || resp[0].Value != "Larry" || resp[1].Value != "Barry" {
		t.Fatalf("unexpected history %+v", resp)
	}
}

func TestHandleNodeHistoryEmptyIsArray(t *testing.T) {
	rec := serve(t, newHandlerTestAPI(stubService{}, nil), http.MethodGet, "/api/v1/nodes/0x1a0e0001/history/name", "")
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Fatalf("unexpected body %s", got)
	}
}

func TestHandleCreateNode(t *testing.T) {
	var got domain.CreateNodeInput
	api := newHandlerTestAPI(stubService{
		createNodeFn: func(_ context.Context, input domain.CreateNodeInput) (domain.Node, error) {
			got = input
			return domain.Node{VID: input.VID, Name: input.Name}, nil
		},
	}, nil)

	rec := serve(t, api, http.MethodPost, "/api/v1/nodes", `{"vid":"0x1a0e0001","network_id":1,"name":"Barry","enabled":true}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	if got.VID != "0x1a0e0001" || got.NetworkID != 1 || got.Name == nil || *got.Name != "Barry" || !got.Enabled {
		t.Fatalf("unexpected input %+v", got)
	}
	if !got.CreationDate.IsZero() {
		t.Fatalf("expected zero creation date, got %v", got.CreationDate)
	}
}

func TestHandleCreateNodeRejectsUnknownFields(t *testing.T) {
	rec := serve(t, newHandlerTestAPI(stubService{}, nil), http.MethodPost, "/api/v1/nodes", `{"vid":"0x1a0e0001","colour":"red"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestHandleCreateNodeConflict(t *testing.T) {
	api := newHandlerTestAPI(stubService{
		createNodeFn: func(context.Context, domain.CreateNodeInput) (domain.Node, error) {
			return domain.Node{}, domain.ErrConflict
		},
	}, nil)
	rec := serve(t, api, http.MethodPost, "/api/v1/nodes", `{"vid":"0x1a0e0001","network_id":1}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected %d, got %d", http.StatusConflict, rec.Code)
	}
}

func TestHandleUpdateNode(t *testing.T) {
	var got domain.UpdateNodeInput
	api := newHandlerTestAPI(stubService{
		updateNodeFn: func(_ context.Context, vid string, input domain.UpdateNodeInput) (domain.Node, error) {
			got = input
			return domain.Node{VID: vid, Name: input.Name}, nil
		},
	}, nil)

	rec := serve(t, api, http.MethodPatch, "/api/v1/nodes/0x1a0e0001", `{"name":"Larry"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
	}
	if got.Name == nil || *got.Name != "Larry" || got.Category != nil {
		t.Fatalf("unexpected input %+v", got)
	}
}

func TestHandleDeleteNode(t *testing.T) {
	deleted := ""
	api := newHandlerTestAPI(stubService{
		deleteNodeFn: func(_ context.Context, vid string) error {
			deleted = vid
			return nil
		},
	}, nil)

	rec := serve(t, api, http.MethodDelete, "/api/v1/nodes/0x1a0e0001", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected %d, got %d", http.StatusNoContent, rec.Code)
	}
	if deleted != "0x1a0e0001" {
		t.Fatalf("unexpected vid %q", deleted)
	}
}

func TestMetricsRouteOnlyWhenConfigured(t *testing.T) {
	rec := serve(t, newHandlerTestAPI(stubService{}, nil), http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected %d without metrics, got %d", http.StatusNotFound, rec.Code)
	}

	api := NewAPI(slog.New(slog.NewTextHandler(io.Discard, nil)), nil, stubService{}, nil,
		WithMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("metrics"))
		})))
	rec = serve(t, api, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "metrics" {
		t.Fatalf("unexpected metrics response %d %q", rec.Code, rec.Body.String())
	}
}

func TestRequestIDIsEchoedOrMinted(t *testing.T) {
	api := newHandlerTestAPI(stubService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "8c5d5f55-0a57-4e2b-9d3c-6f1a9d4f5a10")
	rec := httptest.NewRecorder()
	api.Router().ServeHTTP(rec, req)
	if got := rec.Header().Get(requestIDHeader); got != "8c5d5f55-0a57-4e2b-9d3c-6f1a9d4f5a10" {
		t.Fatalf("expected request id to be echoed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "not a uuid")
	rec = httptest.NewRecorder()
	api.Router().ServeHTTP(rec, req)
	if got := rec.Header().Get(requestIDHeader); got == "" || got == "not a uuid" {
		t.Fatalf("expected a fresh request id, got %q", got)
	}
}

func TestParseNetworks(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/nodes?network=3&network=4,%205", nil)
	got, err := parseNetworks(req)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !reflect.DeepEqual(got, []int64{3, 4, 5}) {
		t.Fatalf("unexpected networks %v", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/nodes?network=0", nil)
	if _, err := parseNetworks(req); err == nil {
		t.Fatal("expected error for non-positive network")
	}
}
