package db

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Flarenzy/node-inventory/internal/domain"
)

// dateFormat renders timestamps like domain.DateLayout.
const dateFormat = `'YYYY-MM-DD"T"HH24:MI:SS"Z"'`

// sqlBuilder renders a predicate tree as a WHERE fragment over the current
// node row aliased n. Values are always bound as parameters.
type sqlBuilder struct {
	args []any
}

func (b *sqlBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *sqlBuilder) build(pred domain.Predicate) (string, error) {
	switch p := pred.(type) {
	case domain.And:
		return b.join(p, " AND ")
	case domain.Or:
		return b.join(p, " OR ")
	case domain.Equal:
		return b.field(p.Field, func(col string) string {
			if p.FoldCase {
				return "lower(" + col + ") = lower(" + b.arg(p.Value) + ")"
			}
			return col + " = " + b.arg(p.Value)
		})
	case domain.Contains:
		return b.field(p.Field, func(col string) string {
			op := " LIKE "
			if p.FoldCase {
				op = " ILIKE "
			}
			return col + op + b.arg("%"+escapeLike(p.Value)+"%")
		})
	case domain.HasSuffix:
		return b.field(p.Field, func(col string) string {
			return col + " ILIKE " + b.arg("%"+escapeLike(p.Value))
		})
	case domain.Matches:
		return b.field(p.Field, func(col string) string {
			return col + " ~* " + b.arg(p.Pattern)
		})
	case domain.Between:
		return b.field(p.Field, func(col string) string {
			return col + " BETWEEN " + b.arg(int64(p.Lower)) + " AND " + b.arg(int64(p.Upper))
		})
	case domain.EqualInt:
		if p.Field != domain.FieldNetworkID {
			return "", fmt.Errorf("%w: integer match on %s", domain.ErrInvalidInput, p.Field)
		}
		return "n.network_id = " + b.arg(p.Value), nil
	}

	switch pred {
	case domain.Nothing:
		return "FALSE", nil
	case domain.Anything:
		return "TRUE", nil
	}
	return "", fmt.Errorf("%w: unsupported predicate %T", domain.ErrInvalidInput, pred)
}

func (b *sqlBuilder) join(preds []domain.Predicate, sep string) (string, error) {
	parts := make([]string, 0, len(preds))
	for _, p := range preds {
		sql, err := b.build(p)
		if err != nil {
			return "", err
		}
		parts = append(parts, sql)
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

// field applies cond to the column behind f. Hardware, IP and ticket fields
// become EXISTS subqueries so a node matches when any related row does.
func (b *sqlBuilder) field(f domain.Field, cond func(col string) string) (string, error) {
	switch f {
	case domain.FieldVID:
		return cond("n.vid"), nil
	case domain.FieldVIDNumber:
		return cond("n.vid_number"), nil
	case domain.FieldName:
		return cond("n.name"), nil
	case domain.FieldCategory:
		return cond("n.category"), nil
	case domain.FieldServerNumber:
		return cond("n.server_number"), nil
	case domain.FieldCreationDate:
		return cond("to_char(n.creation_date AT TIME ZONE 'UTC', " + dateFormat + ")"), nil
	case domain.FieldDeletionDate:
		return cond("to_char(n.deletion_date AT TIME ZONE 'UTC', " + dateFormat + ")"), nil
	case domain.FieldVersion:
		return "EXISTS (SELECT 1 FROM hw_nodes h WHERE h.ncc_node_id = n.id AND h.descendant_id IS NULL AND " +
			cond("h.version") + ")", nil
	case domain.FieldVersionDecoded:
		return "EXISTS (SELECT 1 FROM hw_nodes h WHERE h.ncc_node_id = n.id AND h.descendant_id IS NULL AND " +
			cond("h.version_decoded") + ")", nil
	case domain.FieldIP:
		return "EXISTS (SELECT 1 FROM hw_nodes h JOIN node_ips i ON i.hw_node_id = h.id " +
			"WHERE h.ncc_node_id = n.id AND h.descendant_id IS NULL AND " + cond("i.u32") + ")", nil
	case domain.FieldTicket:
		return "EXISTS (SELECT 1 FROM tickets t WHERE t.ncc_node_id = n.id AND " + cond("t.ticket_id") + ")", nil
	}
	return "", fmt.Errorf("%w: cannot filter on %s", domain.ErrInvalidInput, f)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE metacharacters in user input literal.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// scopeClause restricts to current rows in scope and, optionally, to the
// given networks.
func (b *sqlBuilder) scopeClause(scope domain.Scope, networks []int64) string {
	clauses := []string{"n.descendant_id IS NULL"}
	switch scope {
	case domain.ScopeCurrent:
		clauses = append(clauses, "n.deletion_date IS NULL")
	case domain.ScopeDeleted:
		clauses = append(clauses, "n.deletion_date IS NOT NULL")
	}
	if len(networks) > 0 {
		clauses = append(clauses, "n.network_id = ANY("+b.arg(networks)+")")
	}
	return strings.Join(clauses, " AND ")
}
