package domain

import "time"

type Network struct {
	ID         int64
	NetworkVID string
	Name       string
}

type Coordinator struct {
	ID        int64
	VID       string
	NetworkID int64
}

// Node is a network node row. The current row of a node has a nil
// DescendantID; ancestor snapshots point at the row that superseded them and
// carry only the tracked fields that changed.
type Node struct {
	ID            int64
	VID           string
	VIDNumber     uint32
	Name          *string
	Category      *string
	AbonentNumber *string
	ServerNumber  *string
	Enabled       bool
	CreationDate  *time.Time
	DeletionDate  *time.Time
	NetworkID     *int64
	DescendantID  *int64
}

func (n Node) Current() bool {
	return n.DescendantID == nil
}

func (n Node) Deleted() bool {
	return n.DeletionDate != nil
}

type HardwareNode struct {
	ID             int64
	NodeID         *int64
	CoordinatorID  *int64
	Version        *string
	VersionDecoded *string
	CreationDate   *time.Time
	DescendantID   *int64
}

type NodeIP struct {
	ID             int64
	HardwareNodeID int64
	U32            uint32
	Type           string
}

type TicketSystem struct {
	ID          int64
	URLTemplate string
}

type Ticket struct {
	ID             int64
	TicketSystemID int64
	NodeID         *int64
	VID            string
	TicketID       string
}

type HardwareDetails struct {
	Hardware HardwareNode
	IPs      []NodeIP
}

// NodeDetails is the current state of a node with everything attached to it.
type NodeDetails struct {
	Node     Node
	Hardware []HardwareDetails
	Tickets  []Ticket
}

// HardwareChain is a current hardware row and its ancestor snapshots.
type HardwareChain struct {
	Current   HardwareNode
	Ancestors []HardwareNode
}

// Ancestry is everything a history reconstruction reads, taken from one
// consistent snapshot of the store.
type Ancestry struct {
	Node      Node
	Ancestors []Node
	Hardware  []HardwareChain
}

type HistoryEntry struct {
	Timestamp time.Time
	Value     string
}

// Scope restricts a search to a subset of current node rows.
type Scope int

const (
	ScopeCurrent Scope = iota
	ScopeDeleted
	ScopeAll
)

func (s Scope) String() string {
	switch s {
	case ScopeCurrent:
		return "current"
	case ScopeDeleted:
		return "deleted"
	case ScopeAll:
		return "all"
	default:
		return "unknown"
	}
}

// Includes reports whether a current row with the given deletion state falls
// inside the scope.
func (s Scope) Includes(deleted bool) bool {
	switch s {
	case ScopeCurrent:
		return !deleted
	case ScopeDeleted:
		return deleted
	default:
		return true
	}
}
