package search

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/Flarenzy/node-inventory/internal/db/memdb"
	"github.com/Flarenzy/node-inventory/internal/domain"
	"github.com/Flarenzy/node-inventory/internal/ipv4"
	"github.com/Flarenzy/node-inventory/internal/vid"
)

type fixture struct {
	t           *testing.T
	store       *memdb.Store
	network     domain.Network
	coordinator domain.Coordinator
	engine      *Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()
	store := memdb.New()
	network, err := store.CreateNetwork(ctx, domain.CreateNetworkInput{NetworkVID: "6670", Name: "network1"})
	if err != nil {
		t.Fatalf("create network: %v", err)
	}
	coordinator, err := store.CreateCoordinator(ctx, domain.CreateCoordinatorInput{VID: "0x1a0e000c", NetworkID: network.ID})
	if err != nil {
		t.Fatalf("create coordinator: %v", err)
	}

	return &fixture{
		t:           t,
		store:       store,
		network:     network,
		coordinator: coordinator,
		engine:      NewEngine(DefaultConfig(), store, vid.Oracle{}),
	}
}

func (f *fixture) node(input domain.CreateNodeInput) domain.Node {
	f.t.Helper()

	if input.NetworkID == 0 {
		input.NetworkID = f.network.ID
	}
	node, err := f.store.CreateNode(context.Background(), input)
	if err != nil {
		f.t.Fatalf("create node %s: %v", input.VID, err)
	}
	return node
}

func (f *fixture) named(id, name string) domain.Node {
	f.t.Helper()
	return f.node(domain.CreateNodeInput{VID: id, Name: ptr(name)})
}

func (f *fixture) hardware(node domain.Node, versionDecoded string) domain.HardwareNode {
	f.t.Helper()

	hw, err := f.store.AttachHardware(context.Background(), domain.AttachHardwareInput{
		NodeID:         node.ID,
		CoordinatorID:  f.coordinator.ID,
		VersionDecoded: ptr(versionDecoded),
	})
	if err != nil {
		f.t.Fatalf("attach hardware: %v", err)
	}
	return hw
}

func (f *fixture) ip(hw domain.HardwareNode, addr string) {
	f.t.Helper()

	u, ok := ipv4.ToU32(addr)
	if !ok {
		f.t.Fatalf("bad address %q", addr)
	}
	if _, err := f.store.BindIP(context.Background(), domain.BindIPInput{HardwareNodeID: hw.ID, U32: int64(u), Type: "ip"}); err != nil {
		f.t.Fatalf("bind ip: %v", err)
	}
}

func (f *fixture) search(query string) []string {
	f.t.Helper()

	got, err := f.engine.Search(context.Background(), query, nil)
	if err != nil {
		f.t.Fatalf("search %q: %v", query, err)
	}
	return got
}

func (f *fixture) expect(query string, want ...string) {
	f.t.Helper()

	got := f.search(query)
	if want == nil {
		want = []string{}
	}
	if !slices.Equal(got, want) {
		f.t.Fatalf("search %q = %v, want %v", query, got, want)
	}
}

func TestSearchByIdentifier(t *testing.T) {
	f := newFixture(t)
	f.named("0x1a0e0001", "Alex")
	f.named("0x1a0e0002", "John")

	f.expect("id:0x1a0e0002", "0x1a0e0002")
	f.expect("id:1A0E0002", "0x1a0e0002")
	f.expect("id:0002", "0x1a0e0002")
	f.expect("0x1a0e0001", "0x1a0e0001")
}

func TestQuickSearchBySegmentSuffix(t *testing.T) {
	f := newFixture(t)
	f.named("0x1a0e0001", "Alex")
	f.named("0x1a0e0002", "John")

	f.expect("0002", "0x1a0e0002")
}

func TestQuickSearchLongDigitRunIsName(t *testing.T) {
	f := newFixture(t)
	f.named("0x1a010002", "Alex")
	f.named("0x1a0e0003", "Router10002")

	f.expect("10002", "0x1a0e0003")
}

func TestSearchByIdentifierRange(t *testing.T) {
	f := newFixture(t)
	for _, id := range []string{"0x1a0e0001", "0x1a0e0002", "0x1a0e0003", "0x1a0e0004"} {
		f.node(domain.CreateNodeInput{VID: id})
	}

	f.expect("id:0x1a0e0001-0x1a0e0003", "0x1a0e0001", "0x1a0e0002", "0x1a0e0003")
	f.expect("0x1a0e0002 - 0x1a0e0004", "0x1a0e0002", "0x1a0e0003", "0x1a0e0004")
}

func TestSearchIgnoresRangeAboveThreshold(t *testing.T) {
	f := newFixture(t)
	f.node(domain.CreateNodeInput{VID: "0x1a0e0001"})
	f.node(domain.CreateNodeInput{VID: "0x1a0e0100"})

	f.expect("id:0x1a0e0001-0x1a0e0100")
}

func TestSearchByName(t *testing.T) {
	f := newFixture(t)
	f.named("0x1a0e0001", "Alex")
	f.named("0x1a0e0002", "John")

	f.expect("name:Alex", "0x1a0e0001")
	f.expect("name:Al", "0x1a0e0001")
	f.expect("name:alex", "0x1a0e0001")
}

func TestSearchNameTreatsSpacesAsAnything(t *testing.T) {
	f := newFixture(t)
	f.named("0x1a0e0001", "Marcus Forest")
	f.named("0x1a0e0002", "Wilbur Kelly Mallory")

	f.expect("name:wil mal", "0x1a0e0002")
	f.expect("wil mal", "0x1a0e0002")
}

func TestQuickNameIsRegexpButFieldNameIsLiteral(t *testing.T) {
	f := newFixture(t)
	f.named("0x1a0e0001", "Wilbur Kelly Mallory")
	f.named("0x1a0e0002", "Kelly Wilbur Mallory")

	f.expect(`^wilbur\s`, "0x1a0e0001")
	f.expect(`name:^wilbur\s`)
}

func TestQuotedQueryMatchesNameExactly(t *testing.T) {
	f := newFixture(t)
	f.named("0x1a0e0001", "Alex")
	f.named("0x1a0e0002", "Alexander")

	f.expect(`"alex"`, "0x1a0e0001")
	f.expect(`name:"ALEX"`, "0x1a0e0001")
}

func TestSearchInvalidRegexpReturnsEmpty(t *testing.T) {
	f := newFixture(t)
	f.named("0x1a0e0001", "Alex")

	f.expect("++")
}

func TestSearchByIP(t *testing.T) {
	f := newFixture(t)
	addrs := map[string]string{
		"0x1a0e0001": "192.168.0.1",
		"0x1a0e0002": "192.168.1.0",
		"0x1a0e0003": "192.168.0.255",
	}
	for id, addr := range addrs {
		f.ip(f.hardware(f.node(domain.CreateNodeInput{VID: id}), ""), addr)
	}

	f.expect("ip:192.168.0.1", "0x1a0e0001")
	f.expect("ip:192.168.0.0/24", "0x1a0e0001", "0x1a0e0003")
	f.expect("ip:192.168.0.0-192.168.0.254", "0x1a0e0001")
	f.expect("ip:invalid ip")
	f.expect("192.168.1.0", "0x1a0e0002")
}

func TestQuickModePrefersIPv4OverName(t *testing.T) {
	f := newFixture(t)
	f.named("0x1a0e0001", "10.0.0.1")
	f.ip(f.hardware(f.node(domain.CreateNodeInput{VID: "0x1a0e0002"}), ""), "10.0.0.1")

	f.expect("10.0.0.1", "0x1a0e0002")
}

func TestSearchByVersionDecoded(t *testing.T) {
	f := newFixture(t)
	first := f.node(domain.CreateNodeInput{VID: "0x1a0e0001"})
	second := f.node(domain.CreateNodeInput{VID: "0x1a0e0002"})
	f.hardware(first, "2.0")
	f.hardware(first, "2.1")
	f.hardware(second, "3.1")
	f.hardware(second, "3.2")

	f.expect("version:3.1", "0x1a0e0002")
	f.expect("ver:3.", "0x1a0e0002")
}

func TestSearchVersionTreatsWildcardsLiterally(t *testing.T) {
	f := newFixture(t)
	f.hardware(f.node(domain.CreateNodeInput{VID: "0x1a0e0001"}), "3.0")

	f.expect("version:3_")
	f.expect("version:%3")
}

func TestSearchByTicket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.node(domain.CreateNodeInput{VID: "0x1a0e0001"})
	f.node(domain.CreateNodeInput{VID: "0x1a0e0002"})

	for _, url := range []string{"http://tickets.org/ticket_id={id}", "http://tickets2.org/ticket_id={id}"} {
		system, err := f.store.CreateTicketSystem(ctx, url)
		if err != nil {
			t.Fatalf("create ticket system: %v", err)
		}
		ticketID := "111"
		if url != "http://tickets.org/ticket_id={id}" {
			ticketID = "222"
		}
		if _, err := f.store.LinkTicket(ctx, domain.LinkTicketInput{TicketSystemID: system.ID, VID: "0x1a0e0001", TicketID: ticketID}); err != nil {
			t.Fatalf("link ticket: %v", err)
		}
	}

	f.expect("ticket:11", "0x1a0e0001")
	f.expect("ticket:222", "0x1a0e0001")
	f.expect("ticket:333")
}

func TestSearchByDates(t *testing.T) {
	f := newFixture(t)
	f.node(domain.CreateNodeInput{VID: "0x1a0e0001", CreationDate: time.Date(2016, 9, 1, 0, 0, 0, 0, time.UTC)})
	f.node(domain.CreateNodeInput{VID: "0x1a0e0002", CreationDate: time.Date(2016, 9, 2, 0, 0, 0, 0, time.UTC)})

	f.expect("creation_date:2016-09-01", "0x1a0e0001")

	if err := f.store.DeleteNode(context.Background(), "0x1a0e0002", time.Date(2016, 9, 5, 12, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("delete node: %v", err)
	}
	f.expect("deletion_date:2016-09-05T12", "0x1a0e0002")
}

func TestSearchCombinesFieldsWithAnd(t *testing.T) {
	f := newFixture(t)
	f.named("0x1a0e0001", "Alex1")
	f.named("0x1a0e0002", "Alex2")
	f.named("0x1a0e0010", "Alex")

	f.expect("id:0x1a0e000, name:Alex", "0x1a0e0001", "0x1a0e0002")

	byID := f.search("id:0x1a0e000")
	byName := f.search("name:Alex")
	var intersection []string
	for _, id := range byID {
		if slices.Contains(byName, id) {
			intersection = append(intersection, id)
		}
	}
	f.expect("id:0x1a0e000, name:Alex", intersection...)
}

func TestSearchIgnoresEmptyFields(t *testing.T) {
	f := newFixture(t)
	f.named("0x1a0e0001", "Alex")
	f.named("0x1a0e0002", "John")

	f.expect("id:0x1a0e0001, name:", "0x1a0e0001")
	f.expect("name:")
	f.expect("")
}

func TestSearchIDsUnionsLiveAndDeleted(t *testing.T) {
	f := newFixture(t)
	f.node(domain.CreateNodeInput{VID: "0x1a0e0001"})
	f.node(domain.CreateNodeInput{VID: "0x1a0e0002"})
	f.node(domain.CreateNodeInput{VID: "0x1a0e0003"})
	if err := f.store.DeleteNode(context.Background(), "0x1a0e0002", time.Now()); err != nil {
		t.Fatalf("delete node: %v", err)
	}

	f.expect("ids: 0x1a0e0001, 0x1a0e0002", "0x1a0e0001", "0x1a0e0002")
	f.expect("ids: 1a0e0003,0x1a0e0009", "0x1a0e0003")
}

func TestSearchFallsBackToDeletedNodes(t *testing.T) {
	f := newFixture(t)
	f.named("0x1a0e0001", "Alex")
	f.named("0x1a0e0002", "Alex")
	f.named("0x1a0e0003", "John")
	if err := f.store.DeleteNode(context.Background(), "0x1a0e0002", time.Now()); err != nil {
		t.Fatalf("delete node: %v", err)
	}
	if err := f.store.DeleteNode(context.Background(), "0x1a0e0003", time.Now()); err != nil {
		t.Fatalf("delete node: %v", err)
	}

	f.expect("name:Alex", "0x1a0e0001")
	f.expect("name:John", "0x1a0e0003")
}

func TestSearchByNetworkVID(t *testing.T) {
	f := newFixture(t)
	f.node(domain.CreateNodeInput{VID: "0x1a0e0001"})
	f.node(domain.CreateNodeInput{VID: "0x1a0f0001"})

	f.expect("network_vid:6670", "0x1a0e0001")
	f.expect("network_vid:6671", "0x1a0f0001")
	f.expect("network_vid:abc")
}

func TestSearchByMFTPServer(t *testing.T) {
	f := newFixture(t)
	other, err := f.store.CreateNetwork(context.Background(), domain.CreateNetworkInput{NetworkVID: "6671"})
	if err != nil {
		t.Fatalf("create network: %v", err)
	}

	f.node(domain.CreateNodeInput{VID: "0x1a0e000a", Category: ptr("server"), ServerNumber: ptr("0001")})
	f.node(domain.CreateNodeInput{VID: "0x1a0e000b", Category: ptr("server"), ServerNumber: ptr("0002")})
	f.node(domain.CreateNodeInput{VID: "0x1a0e0001", Category: ptr("client"), ServerNumber: ptr("0001")})
	f.node(domain.CreateNodeInput{VID: "0x1a0e0002", Category: ptr("client"), ServerNumber: ptr("0002")})
	f.node(domain.CreateNodeInput{VID: "0x1a0f0001", Category: ptr("client"), ServerNumber: ptr("0001"), NetworkID: other.ID})

	f.expect("mftp_server_vid:0x1a0e000a", "0x1a0e0001")
	f.expect("mftp_server_vid:0x1a0e000b", "0x1a0e0002")
	f.expect("mftp_server_vid:0x1a0e0001")
	f.expect("mftp_server_vid:0x1a0effff")
}

func TestSearchRestrictsToNetworkScope(t *testing.T) {
	f := newFixture(t)
	other, err := f.store.CreateNetwork(context.Background(), domain.CreateNetworkInput{NetworkVID: "6671"})
	if err != nil {
		t.Fatalf("create network: %v", err)
	}
	f.named("0x1a0e0001", "Alex")
	f.node(domain.CreateNodeInput{VID: "0x1a0f0001", Name: ptr("Alex"), NetworkID: other.ID})

	got, err := f.engine.Search(context.Background(), "name:alex", []int64{other.ID})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !slices.Equal(got, []string{"0x1a0f0001"}) {
		t.Fatalf("unexpected result: %v", got)
	}
}
