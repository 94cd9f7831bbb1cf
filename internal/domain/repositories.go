package domain

import (
	"context"
	"time"
)

// NodeRepository is the read side used by search and history.
type NodeRepository interface {
	// FindVIDs returns the distinct identifiers of current node rows in scope
	// that satisfy pred, ascending. An empty networks slice means no network
	// restriction.
	FindVIDs(ctx context.Context, pred Predicate, scope Scope, networks []int64) ([]string, error)
	// FindByVID returns the current row for vid, deleted or not.
	FindByVID(ctx context.Context, vid string) (Node, error)
	Details(ctx context.Context, vid string) (NodeDetails, error)
	Ancestry(ctx context.Context, vid string) (Ancestry, error)
}

// NodeWriter applies the node lifecycle: updates snapshot the old values
// before mutating the current row, deletes only stamp a deletion date.
type NodeWriter interface {
	CreateNetwork(ctx context.Context, input CreateNetworkInput) (Network, error)
	CreateCoordinator(ctx context.Context, input CreateCoordinatorInput) (Coordinator, error)
	CreateTicketSystem(ctx context.Context, urlTemplate string) (TicketSystem, error)
	CreateNode(ctx context.Context, input CreateNodeInput) (Node, error)
	UpdateNode(ctx context.Context, vid string, input UpdateNodeInput, at time.Time) (Node, error)
	DeleteNode(ctx context.Context, vid string, at time.Time) error
	AttachHardware(ctx context.Context, input AttachHardwareInput) (HardwareNode, error)
	UpdateHardware(ctx context.Context, id int64, input UpdateHardwareInput, at time.Time) (HardwareNode, error)
	BindIP(ctx context.Context, input BindIPInput) (NodeIP, error)
	LinkTicket(ctx context.Context, input LinkTicketInput) (Ticket, error)
}

type Store interface {
	NodeRepository
	NodeWriter
}
