package db

import (
	"context"
	"fmt"
	"time"

	"github.com/Flarenzy/node-inventory/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type NodeRepository struct {
	pool *pgxpool.Pool
}

var _ domain.Store = (*NodeRepository)(nil)

func NewNodeRepository(pool *pgxpool.Pool) *NodeRepository {
	return &NodeRepository{pool: pool}
}

const nodeColumns = `n.id, n.vid, n.vid_number, n.name, n.category, n.abonent_number, n.server_number,
	n.enabled, n.creation_date, n.deletion_date, n.network_id, n.descendant_id`

const hardwareColumns = `h.id, h.ncc_node_id, h.coordinator_id, h.version, h.version_decoded,
	h.creation_date, h.descendant_id`

func (r *NodeRepository) FindVIDs(ctx context.Context, pred domain.Predicate, scope domain.Scope, networks []int64) ([]string, error) {
	b := &sqlBuilder{}
	where, err := b.build(pred)
	if err != nil {
		return nil, err
	}
	query := "SELECT DISTINCT n.vid FROM ncc_nodes n WHERE " + b.scopeClause(scope, networks) +
		" AND " + where + " ORDER BY n.vid"

	rows, err := r.pool.Query(ctx, query, b.args...)
	if err == nil {
		var vids []string
		vids, err = pgx.CollectRows(rows, pgx.RowTo[string])
		if err == nil {
			if vids == nil {
				vids = []string{}
			}
			return vids, nil
		}
	}
	// a user regex Postgres rejects matches nothing
	if pgCode(err) == invalidRegularExpression {
		return []string{}, nil
	}
	return nil, fmt.Errorf("find nodes: %w", err)
}

func (r *NodeRepository) FindByVID(ctx context.Context, vid string) (domain.Node, error) {
	return findNode(ctx, r.pool, vid)
}

func (r *NodeRepository) Details(ctx context.Context, vid string) (domain.NodeDetails, error) {
	var details domain.NodeDetails
	err := readSnapshot(ctx, r.pool, func(tx pgx.Tx) error {
		node, err := findNode(ctx, tx, vid)
		if err != nil {
			return err
		}
		details.Node = node

		hardware, err := queryHardware(ctx, tx,
			"SELECT "+hardwareColumns+" FROM hw_nodes h WHERE h.ncc_node_id = $1 AND h.descendant_id IS NULL ORDER BY h.id",
			node.ID)
		if err != nil {
			return err
		}
		for _, hw := range hardware {
			ips, err := queryIPs(ctx, tx, hw.ID)
			if err != nil {
				return err
			}
			details.Hardware = append(details.Hardware, domain.HardwareDetails{Hardware: hw, IPs: ips})
		}

		details.Tickets, err = queryTickets(ctx, tx, node.ID)
		return err
	})
	return details, err
}

// Ancestry reads the node, its snapshots and its hardware chains inside one
// read-only repeatable-read transaction.
func (r *NodeRepository) Ancestry(ctx context.Context, vid string) (domain.Ancestry, error) {
	var out domain.Ancestry
	err := readSnapshot(ctx, r.pool, func(tx pgx.Tx) error {
		node, err := findNode(ctx, tx, vid)
		if err != nil {
			return err
		}
		out.Node = node

		out.Ancestors, err = queryNodes(ctx, tx, `WITH RECURSIVE chain AS (
				SELECT * FROM ncc_nodes WHERE descendant_id = $1
				UNION
				SELECT a.* FROM ncc_nodes a JOIN chain c ON a.descendant_id = c.id
			)
			SELECT `+nodeColumns+` FROM chain n ORDER BY n.id`, node.ID)
		if err != nil {
			return err
		}

		hardware, err := queryHardware(ctx, tx,
			"SELECT "+hardwareColumns+" FROM hw_nodes h WHERE h.ncc_node_id = $1 AND h.descendant_id IS NULL ORDER BY h.id",
			node.ID)
		if err != nil {
			return err
		}
		for _, hw := range hardware {
			ancestors, err := queryHardware(ctx, tx, `WITH RECURSIVE chain AS (
					SELECT * FROM hw_nodes WHERE descendant_id = $1
					UNION
					SELECT a.* FROM hw_nodes a JOIN chain c ON a.descendant_id = c.id
				)
				SELECT `+hardwareColumns+` FROM chain h ORDER BY h.id`, hw.ID)
			if err != nil {
				return err
			}
			out.Hardware = append(out.Hardware, domain.HardwareChain{Current: hw, Ancestors: ancestors})
		}
		return nil
	})
	return out, err
}

func readSnapshot(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	return pgx.BeginTxFunc(ctx, pool, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	}, fn)
}

func findNode(ctx context.Context, q querier, vid string) (domain.Node, error) {
	rows, err := q.Query(ctx,
		"SELECT "+nodeColumns+" FROM ncc_nodes n WHERE n.vid = $1 AND n.descendant_id IS NULL", vid)
	if err != nil {
		return domain.Node{}, fmt.Errorf("find node %s: %w", vid, err)
	}
	node, err := pgx.CollectExactlyOneRow(rows, scanNode)
	if err != nil {
		return domain.Node{}, mapError(err, "node "+vid)
	}
	return node, nil
}

func queryNodes(ctx context.Context, q querier, sql string, args ...any) ([]domain.Node, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	nodes, err := pgx.CollectRows(rows, scanNode)
	if err != nil {
		return nil, fmt.Errorf("scan nodes: %w", err)
	}
	return nodes, nil
}

func queryHardware(ctx context.Context, q querier, sql string, args ...any) ([]domain.HardwareNode, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query hardware: %w", err)
	}
	hardware, err := pgx.CollectRows(rows, scanHardware)
	if err != nil {
		return nil, fmt.Errorf("scan hardware: %w", err)
	}
	return hardware, nil
}

func queryIPs(ctx context.Context, q querier, hardwareID int64) ([]domain.NodeIP, error) {
	rows, err := q.Query(ctx,
		"SELECT id, hw_node_id, u32, type FROM node_ips WHERE hw_node_id = $1 ORDER BY u32, type", hardwareID)
	if err != nil {
		return nil, fmt.Errorf("query ips: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.NodeIP, error) {
		var (
			ip  domain.NodeIP
			u32 int64
		)
		err := row.Scan(&ip.ID, &ip.HardwareNodeID, &u32, &ip.Type)
		ip.U32 = uint32(u32)
		return ip, err
	})
}

func queryTickets(ctx context.Context, q querier, nodeID int64) ([]domain.Ticket, error) {
	rows, err := q.Query(ctx,
		"SELECT id, ticket_system_id, ncc_node_id, vid, ticket_id FROM tickets WHERE ncc_node_id = $1 ORDER BY id", nodeID)
	if err != nil {
		return nil, fmt.Errorf("query tickets: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Ticket, error) {
		var t domain.Ticket
		err := row.Scan(&t.ID, &t.TicketSystemID, &t.NodeID, &t.VID, &t.TicketID)
		return t, err
	})
}

func scanNode(row pgx.CollectableRow) (domain.Node, error) {
	var (
		n         domain.Node
		vid       *string
		vidNumber *int64
	)
	err := row.Scan(&n.ID, &vid, &vidNumber, &n.Name, &n.Category, &n.AbonentNumber, &n.ServerNumber,
		&n.Enabled, &n.CreationDate, &n.DeletionDate, &n.NetworkID, &n.DescendantID)
	if err != nil {
		return domain.Node{}, err
	}
	if vid != nil {
		n.VID = *vid
	}
	if vidNumber != nil {
		n.VIDNumber = uint32(*vidNumber)
	}
	n.CreationDate = utc(n.CreationDate)
	n.DeletionDate = utc(n.DeletionDate)
	return n, nil
}

func scanHardware(row pgx.CollectableRow) (domain.HardwareNode, error) {
	var h domain.HardwareNode
	err := row.Scan(&h.ID, &h.NodeID, &h.CoordinatorID, &h.Version, &h.VersionDecoded, &h.CreationDate, &h.DescendantID)
	h.CreationDate = utc(h.CreationDate)
	return h, err
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
