package db

import (
	"context"
	"fmt"
	"time"

	"github.com/Flarenzy/node-inventory/internal/domain"
	"github.com/Flarenzy/node-inventory/internal/vid"
	"github.com/jackc/pgx/v5"
)

func (r *NodeRepository) CreateNetwork(ctx context.Context, input domain.CreateNetworkInput) (domain.Network, error) {
	n := domain.Network{NetworkVID: input.NetworkVID, Name: input.Name}
	err := r.pool.QueryRow(ctx,
		"INSERT INTO networks (network_vid, name) VALUES ($1, $2) RETURNING id",
		input.NetworkVID, input.Name).Scan(&n.ID)
	if err != nil {
		return domain.Network{}, mapError(err, "network "+input.NetworkVID)
	}
	return n, nil
}

func (r *NodeRepository) CreateCoordinator(ctx context.Context, input domain.CreateCoordinatorInput) (domain.Coordinator, error) {
	c := domain.Coordinator{VID: input.VID, NetworkID: input.NetworkID}
	err := r.pool.QueryRow(ctx,
		"INSERT INTO coordinators (vid, network_id) VALUES ($1, $2) RETURNING id",
		input.VID, input.NetworkID).Scan(&c.ID)
	if err != nil {
		return domain.Coordinator{}, mapError(err, "coordinator "+input.VID)
	}
	return c, nil
}

func (r *NodeRepository) CreateTicketSystem(ctx context.Context, urlTemplate string) (domain.TicketSystem, error) {
	ts := domain.TicketSystem{URLTemplate: urlTemplate}
	err := r.pool.QueryRow(ctx,
		"INSERT INTO ticket_systems (url_template) VALUES ($1) RETURNING id", urlTemplate).Scan(&ts.ID)
	if err != nil {
		return domain.TicketSystem{}, mapError(err, "ticket system")
	}
	return ts, nil
}

func (r *NodeRepository) CreateNode(ctx context.Context, input domain.CreateNodeInput) (domain.Node, error) {
	if err := input.Validate(); err != nil {
		return domain.Node{}, err
	}
	number, _ := vid.Number(input.VID)

	rows, err := r.pool.Query(ctx, `INSERT INTO ncc_nodes AS n
			(vid, vid_number, name, category, abonent_number, server_number, enabled, creation_date, network_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+nodeColumns,
		input.VID, int64(number), input.Name, input.Category, input.AbonentNumber, input.ServerNumber,
		input.Enabled, timestamp(input.CreationDate), input.NetworkID)
	if err != nil {
		return domain.Node{}, mapError(err, "node "+input.VID)
	}
	node, err := pgx.CollectExactlyOneRow(rows, scanNode)
	if err != nil {
		return domain.Node{}, mapError(err, "node "+input.VID)
	}
	return node, nil
}

// UpdateNode snapshots the old values of the changed fields, then moves the
// current row forward to at.
func (r *NodeRepository) UpdateNode(ctx context.Context, id string, input domain.UpdateNodeInput, at time.Time) (domain.Node, error) {
	var out domain.Node
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			"SELECT "+nodeColumns+" FROM ncc_nodes n WHERE n.vid = $1 AND n.descendant_id IS NULL FOR UPDATE", id)
		if err != nil {
			return fmt.Errorf("lock node %s: %w", id, err)
		}
		node, err := pgx.CollectExactlyOneRow(rows, scanNode)
		if err != nil {
			return mapError(err, "node "+id)
		}
		if node.Deleted() {
			return fmt.Errorf("%w: node %s is deleted", domain.ErrConflict, id)
		}

		snapshot := domain.Node{}
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
			*f.cur = f.next
			changed = true
		}
		if !changed {
			out = node
			return nil
		}

		if _, err := tx.Exec(ctx, `INSERT INTO ncc_nodes
				(name, category, abonent_number, server_number, enabled, creation_date, descendant_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			snapshot.Name, snapshot.Category, snapshot.AbonentNumber, snapshot.ServerNumber,
			node.Enabled, node.CreationDate, node.ID); err != nil {
			return mapError(err, "node snapshot "+id)
		}

		rows, err = tx.Query(ctx, `UPDATE ncc_nodes AS n
			SET name = $2, category = $3, abonent_number = $4, server_number = $5, creation_date = $6
			WHERE n.id = $1
			RETURNING `+nodeColumns,
			node.ID, node.Name, node.Category, node.AbonentNumber, node.ServerNumber, timestamp(at))
		if err != nil {
			return mapError(err, "node "+id)
		}
		out, err = pgx.CollectExactlyOneRow(rows, scanNode)
		return mapError(err, "node "+id)
	})
	if err != nil {
		return domain.Node{}, err
	}
	return out, nil
}

func (r *NodeRepository) DeleteNode(ctx context.Context, id string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE ncc_nodes SET deletion_date = $2
		WHERE vid = $1 AND descendant_id IS NULL AND deletion_date IS NULL`, id, timestamp(at))
	if err != nil {
		return mapError(err, "node "+id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: node %s", domain.ErrNotFound, id)
	}
	return nil
}

func (r *NodeRepository) AttachHardware(ctx context.Context, input domain.AttachHardwareInput) (domain.HardwareNode, error) {
	if err := input.Validate(); err != nil {
		return domain.HardwareNode{}, err
	}

	rows, err := r.pool.Query(ctx, `INSERT INTO hw_nodes AS h
			(ncc_node_id, coordinator_id, version, version_decoded, creation_date)
		SELECT n.id, $2::bigint, $3::text, $4::text, $5::timestamptz FROM ncc_nodes n WHERE n.id = $1 AND n.descendant_id IS NULL
		RETURNING `+hardwareColumns,
		input.NodeID, input.CoordinatorID, input.Version, input.VersionDecoded, timestamp(input.CreationDate))
	if err != nil {
		return domain.HardwareNode{}, mapError(err, "hardware node")
	}
	hw, err := pgx.CollectExactlyOneRow(rows, scanHardware)
	if err != nil {
		return domain.HardwareNode{}, mapError(err, fmt.Sprintf("node %d", input.NodeID))
	}
	return hw, nil
}

func (r *NodeRepository) UpdateHardware(ctx context.Context, id int64, input domain.UpdateHardwareInput, at time.Time) (domain.HardwareNode, error) {
	var out domain.HardwareNode
	what := fmt.Sprintf("hardware node %d", id)
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			"SELECT "+hardwareColumns+" FROM hw_nodes h WHERE h.id = $1 AND h.descendant_id IS NULL FOR UPDATE", id)
		if err != nil {
			return fmt.Errorf("lock %s: %w", what, err)
		}
		hw, err := pgx.CollectExactlyOneRow(rows, scanHardware)
		if err != nil {
			return mapError(err, what)
		}

		var snapshot domain.HardwareNode
		changed := false
		if input.Version != nil && !equal(hw.Version, input.Version) {
			snapshot.Version, hw.Version = hw.Version, input.Version
			changed = true
		}
		if input.VersionDecoded != nil && !equal(hw.VersionDecoded, input.VersionDecoded) {
			snapshot.VersionDecoded, hw.VersionDecoded = hw.VersionDecoded, input.VersionDecoded
			changed = true
		}
		if !changed {
			out = hw
			return nil
		}

		if _, err := tx.Exec(ctx, `INSERT INTO hw_nodes (version, version_decoded, creation_date, descendant_id)
			VALUES ($1, $2, $3, $4)`,
			snapshot.Version, snapshot.VersionDecoded, hw.CreationDate, hw.ID); err != nil {
			return mapError(err, what)
		}

		rows, err = tx.Query(ctx, `UPDATE hw_nodes AS h SET version = $2, version_decoded = $3, creation_date = $4
			WHERE h.id = $1
			RETURNING `+hardwareColumns,
			hw.ID, hw.Version, hw.VersionDecoded, timestamp(at))
		if err != nil {
			return mapError(err, what)
		}
		out, err = pgx.CollectExactlyOneRow(rows, scanHardware)
		return mapError(err, what)
	})
	if err != nil {
		return domain.HardwareNode{}, err
	}
	return out, nil
}

func (r *NodeRepository) BindIP(ctx context.Context, input domain.BindIPInput) (domain.NodeIP, error) {
	if err := input.Validate(); err != nil {
		return domain.NodeIP{}, err
	}

	ip := domain.NodeIP{HardwareNodeID: input.HardwareNodeID, U32: uint32(input.U32), Type: input.Type}
	err := r.pool.QueryRow(ctx,
		"INSERT INTO node_ips (hw_node_id, u32, type) VALUES ($1, $2, $3) RETURNING id",
		input.HardwareNodeID, input.U32, input.Type).Scan(&ip.ID)
	if err != nil {
		return domain.NodeIP{}, mapError(err, "ip binding")
	}
	return ip, nil
}

func (r *NodeRepository) LinkTicket(ctx context.Context, input domain.LinkTicketInput) (domain.Ticket, error) {
	t := domain.Ticket{TicketSystemID: input.TicketSystemID, VID: input.VID, TicketID: input.TicketID}
	err := r.pool.QueryRow(ctx, `INSERT INTO tickets (ticket_system_id, ncc_node_id, vid, ticket_id)
		VALUES ($1, (SELECT id FROM ncc_nodes WHERE vid = $2 AND descendant_id IS NULL), $2, $3)
		RETURNING id, ncc_node_id`,
		input.TicketSystemID, input.VID, input.TicketID).Scan(&t.ID, &t.NodeID)
	if err != nil {
		return domain.Ticket{}, mapError(err, "ticket "+input.TicketID)
	}
	return t, nil
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
