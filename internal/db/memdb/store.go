// Package memdb is an in-process node store with the same predicate and
// lifecycle semantics as the Postgres repository.
package memdb

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Flarenzy/node-inventory/internal/domain"
	"github.com/Flarenzy/node-inventory/internal/vid"
)

type Store struct {
	mu sync.RWMutex

	nextID        int64
	networks      map[int64]domain.Network
	coordinators  map[int64]domain.Coordinator
	ticketSystems map[int64]domain.TicketSystem
	nodes         map[int64]*domain.Node
	hardware      map[int64]*domain.HardwareNode
	ips           []domain.NodeIP
	tickets       []domain.Ticket
}

var _ domain.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		networks:      make(map[int64]domain.Network),
		coordinators:  make(map[int64]domain.Coordinator),
		ticketSystems: make(map[int64]domain.TicketSystem),
		nodes:         make(map[int64]*domain.Node),
		hardware:      make(map[int64]*domain.HardwareNode),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) CreateNetwork(_ context.Context, input domain.CreateNetworkInput) (domain.Network, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.networks {
		if n.NetworkVID == input.NetworkVID {
			return domain.Network{}, fmt.Errorf("%w: network %s exists", domain.ErrConflict, input.NetworkVID)
		}
	}
	n := domain.Network{ID: s.id(), NetworkVID: input.NetworkVID, Name: input.Name}
	s.networks[n.ID] = n
	return n, nil
}

func (s *Store) CreateCoordinator(_ context.Context, input domain.CreateCoordinatorInput) (domain.Coordinator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.networks[input.NetworkID]; !ok {
		return domain.Coordinator{}, fmt.Errorf("%w: network %d", domain.ErrNotFound, input.NetworkID)
	}
	c := domain.Coordinator{ID: s.id(), VID: input.VID, NetworkID: input.NetworkID}
	s.coordinators[c.ID] = c
	return c, nil
}

func (s *Store) CreateTicketSystem(_ context.Context, urlTemplate string) (domain.TicketSystem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := domain.TicketSystem{ID: s.id(), URLTemplate: urlTemplate}
	s.ticketSystems[ts.ID] = ts
	return ts, nil
}

func (s *Store) CreateNode(_ context.Context, input domain.CreateNodeInput) (domain.Node, error) {
	if err := input.Validate(); err != nil {
		return domain.Node{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.networks[input.NetworkID]; !ok {
		return domain.Node{}, fmt.Errorf("%w: network %d", domain.ErrNotFound, input.NetworkID)
	}
	if _, ok := s.current(input.VID); ok {
		return domain.Node{}, fmt.Errorf("%w: node %s exists", domain.ErrConflict, input.VID)
	}

	number, _ := vid.Number(input.VID)
	networkID := input.NetworkID
	node := &domain.Node{
		ID:            s.id(),
		VID:           input.VID,
		VIDNumber:     number,
		Name:          clone(input.Name),
		Category:      clone(input.Category),
		AbonentNumber: clone(input.AbonentNumber),
		ServerNumber:  clone(input.ServerNumber),
		Enabled:       input.Enabled,
		CreationDate:  timestamp(input.CreationDate),
		NetworkID:     &networkID,
	}
	s.nodes[node.ID] = node
	return *node, nil
}

func (s *Store) UpdateNode(_ context.Context, id string, input domain.UpdateNodeInput, at time.Time) (domain.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.current(id)
	if !ok {
		return domain.Node{}, fmt.Errorf("%w: node %s", domain.ErrNotFound, id)
	}
	if node.Deleted() {
		return domain.Node{}, fmt.Errorf("%w: node %s is deleted", domain.ErrConflict, id)
	}

	descendant := node.ID
	snapshot := domain.Node{CreationDate: node.CreationDate, DescendantID: &descendant}
	changed := false
	for _, f := range []struct {
		cur  **string
		next *string
		old  **string
	}{
		{&node.Name, input.Name, &snapshot.Name},
		{&node.Category, input.Category, &snapshot.Category},
		{&node.AbonentNumber, input.AbonentNumber, &snapshot.AbonentNumber},
		{&node.ServerNumber, input.ServerNumber, &snapshot.ServerNumber},
	} {
		if f.next == nil || equal(*f.cur, f.next) {
			continue
		}
		*f.old = *f.cur
		*f.cur = clone(f.next)
		changed = true
	}
	if !changed {
		return *node, nil
	}

	snapshot.ID = s.id()
	s.nodes[snapshot.ID] = &snapshot
	node.CreationDate = timestamp(at)
	return *node, nil
}

func (s *Store) DeleteNode(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.current(id)
	if !ok || node.Deleted() {
		return fmt.Errorf("%w: node %s", domain.ErrNotFound, id)
	}
	node.DeletionDate = timestamp(at)
	return nil
}

func (s *Store) AttachHardware(_ context.Context, input domain.AttachHardwareInput) (domain.HardwareNode, error) {
	if err := input.Validate(); err != nil {
		return domain.HardwareNode{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.nodes[input.NodeID]; !ok || !n.Current() {
		return domain.HardwareNode{}, fmt.Errorf("%w: node %d", domain.ErrNotFound, input.NodeID)
	}
	if _, ok := s.coordinators[input.CoordinatorID]; !ok {
		return domain.HardwareNode{}, fmt.Errorf("%w: coordinator %d", domain.ErrNotFound, input.CoordinatorID)
	}

	nodeID, coordinatorID := input.NodeID, input.CoordinatorID
	hw := &domain.HardwareNode{
		ID:             s.id(),
		NodeID:         &nodeID,
		CoordinatorID:  &coordinatorID,
		Version:        clone(input.Version),
		VersionDecoded: clone(input.VersionDecoded),
		CreationDate:   timestamp(input.CreationDate),
	}
	s.hardware[hw.ID] = hw
	return *hw, nil
}

func (s *Store) UpdateHardware(_ context.Context, id int64, input domain.UpdateHardwareInput, at time.Time) (domain.HardwareNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hw, ok := s.hardware[id]
	if !ok || hw.DescendantID != nil {
		return domain.HardwareNode{}, fmt.Errorf("%w: hardware node %d", domain.ErrNotFound, id)
	}

	descendant := hw.ID
	snapshot := domain.HardwareNode{CreationDate: hw.CreationDate, DescendantID: &descendant}
	changed := false
	if input.Version != nil && !equal(hw.Version, input.Version) {
		snapshot.Version, hw.Version = hw.Version, clone(input.Version)
		changed = true
	}
	if input.VersionDecoded != nil && !equal(hw.VersionDecoded, input.VersionDecoded) {
		snapshot.VersionDecoded, hw.VersionDecoded = hw.VersionDecoded, clone(input.VersionDecoded)
		changed = true
	}
	if !changed {
		return *hw, nil
	}

	snapshot.ID = s.id()
	s.hardware[snapshot.ID] = &snapshot
	hw.CreationDate = timestamp(at)
	return *hw, nil
}

func (s *Store) BindIP(_ context.Context, input domain.BindIPInput) (domain.NodeIP, error) {
	if err := input.Validate(); err != nil {
		return domain.NodeIP{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.hardware[input.HardwareNodeID]; !ok {
		return domain.NodeIP{}, fmt.Errorf("%w: hardware node %d", domain.ErrNotFound, input.HardwareNodeID)
	}
	for _, ip := range s.ips {
		if ip.HardwareNodeID == input.HardwareNodeID && ip.Type == input.Type && int64(ip.U32) == input.U32 {
			return domain.NodeIP{}, fmt.Errorf("%w: ip already bound", domain.ErrConflict)
		}
	}

	ip := domain.NodeIP{ID: s.id(), HardwareNodeID: input.HardwareNodeID, U32: uint32(input.U32), Type: input.Type}
	s.ips = append(s.ips, ip)
	return ip, nil
}

func (s *Store) LinkTicket(_ context.Context, input domain.LinkTicketInput) (domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ticketSystems[input.TicketSystemID]; !ok {
		return domain.Ticket{}, fmt.Errorf("%w: ticket system %d", domain.ErrNotFound, input.TicketSystemID)
	}

	t := domain.Ticket{ID: s.id(), TicketSystemID: input.TicketSystemID, VID: input.VID, TicketID: input.TicketID}
	if node, ok := s.current(input.VID); ok {
		nodeID := node.ID
		t.NodeID = &nodeID
	}
	s.tickets = append(s.tickets, t)
	return t, nil
}

func (s *Store) FindByVID(_ context.Context, id string) (domain.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.current(id)
	if !ok {
		return domain.Node{}, domain.ErrNotFound
	}
	return *node, nil
}

func (s *Store) Details(_ context.Context, id string) (domain.NodeDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.current(id)
	if !ok {
		return domain.NodeDetails{}, domain.ErrNotFound
	}

	details := domain.NodeDetails{Node: *node}
	for _, hw := range s.currentHardware(node.ID) {
		hd := domain.HardwareDetails{Hardware: *hw}
		for _, ip := range s.ips {
			if ip.HardwareNodeID == hw.ID {
				hd.IPs = append(hd.IPs, ip)
			}
		}
		details.Hardware = append(details.Hardware, hd)
	}
	for _, t := range s.tickets {
		if t.NodeID != nil && *t.NodeID == node.ID {
			details.Tickets = append(details.Tickets, t)
		}
	}
	return details, nil
}

func (s *Store) Ancestry(_ context.Context, id string) (domain.Ancestry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.current(id)
	if !ok {
		return domain.Ancestry{}, domain.ErrNotFound
	}

	out := domain.Ancestry{Node: *node}
	for _, a := range ancestors(s.nodes, node.ID, func(n *domain.Node) *int64 { return n.DescendantID }) {
		out.Ancestors = append(out.Ancestors, *a)
	}
	for _, hw := range s.currentHardware(node.ID) {
		chain := domain.HardwareChain{Current: *hw}
		for _, a := range ancestors(s.hardware, hw.ID, func(h *domain.HardwareNode) *int64 { return h.DescendantID }) {
			chain.Ancestors = append(chain.Ancestors, *a)
		}
		out.Hardware = append(out.Hardware, chain)
	}
	return out, nil
}

// ancestors walks descendant links backwards from root. The visited set
// stops the walk on malformed, cyclic data.
func ancestors[T any](rows map[int64]*T, root int64, descendant func(*T) *int64) []*T {
	visited := map[int64]bool{root: true}
	frontier := []int64{root}
	var out []*T
	for len(frontier) > 0 {
		var next []int64
		for _, id := range sortedKeys(rows) {
			d := descendant(rows[id])
			if d == nil || visited[id] || !slices.Contains(frontier, *d) {
				continue
			}
			visited[id] = true
			out = append(out, rows[id])
			next = append(next, id)
		}
		frontier = next
	}
	return out
}

func (s *Store) current(id string) (*domain.Node, bool) {
	for _, key := range sortedKeys(s.nodes) {
		n := s.nodes[key]
		if n.Current() && n.VID == id {
			return n, true
		}
	}
	return nil, false
}

func (s *Store) currentHardware(nodeID int64) []*domain.HardwareNode {
	var out []*domain.HardwareNode
	for _, key := range sortedKeys(s.hardware) {
		hw := s.hardware[key]
		if hw.DescendantID == nil && hw.NodeID != nil && *hw.NodeID == nodeID {
			out = append(out, hw)
		}
	}
	return out
}

func sortedKeys[T any](m map[int64]T) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func clone(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func equal(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func timestamp(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	t = t.UTC()
	return &t
}
