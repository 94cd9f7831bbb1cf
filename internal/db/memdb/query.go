package memdb

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/Flarenzy/node-inventory/internal/domain"
)

func (s *Store) FindVIDs(ctx context.Context, pred domain.Predicate, scope domain.Scope, networks []int64) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	m := matcher{store: s, patterns: make(map[string]*regexp.Regexp)}
	seen := make(map[string]bool)
	out := []string{}
	for _, key := range sortedKeys(s.nodes) {
		node := s.nodes[key]
		if !node.Current() || !scope.Includes(node.Deleted()) || seen[node.VID] {
			continue
		}
		if len(networks) > 0 && (node.NetworkID == nil || !slices.Contains(networks, *node.NetworkID)) {
			continue
		}
		ok, err := m.match(node, pred)
		if err != nil {
			return nil, err
		}
		if ok {
			seen[node.VID] = true
			out = append(out, node.VID)
		}
	}
	slices.Sort(out)
	return out, nil
}

type matcher struct {
	store    *Store
	patterns map[string]*regexp.Regexp
}

func (m matcher) match(node *domain.Node, pred domain.Predicate) (bool, error) {
	switch p := pred.(type) {
	case domain.And:
		for _, inner := range p {
			ok, err := m.match(node, inner)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case domain.Or:
		for _, inner := range p {
			ok, err := m.match(node, inner)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	case domain.Equal:
		return anyString(m.strings(node, p.Field), func(v string) bool {
			if p.FoldCase {
				return strings.EqualFold(v, p.Value)
			}
			return v == p.Value
		}), nil
	case domain.Contains:
		return anyString(m.strings(node, p.Field), func(v string) bool {
			if p.FoldCase {
				return strings.Contains(strings.ToLower(v), strings.ToLower(p.Value))
			}
			return strings.Contains(v, p.Value)
		}), nil
	case domain.HasSuffix:
		return anyString(m.strings(node, p.Field), func(v string) bool {
			return strings.HasSuffix(strings.ToLower(v), strings.ToLower(p.Value))
		}), nil
	case domain.Matches:
		re, err := m.compile(p.Pattern)
		if err != nil {
			// invalid user patterns match nothing
			return false, nil
		}
		return anyString(m.strings(node, p.Field), re.MatchString), nil
	case domain.Between:
		return slices.ContainsFunc(m.numbers(node, p.Field), func(v uint32) bool {
			return v >= p.Lower && v <= p.Upper
		}), nil
	case domain.EqualInt:
		if p.Field != domain.FieldNetworkID {
			return false, fmt.Errorf("%w: integer match on %s", domain.ErrInvalidInput, p.Field)
		}
		return node.NetworkID != nil && *node.NetworkID == p.Value, nil
	case nil:
		return false, nil
	}

	switch pred {
	case domain.Nothing:
		return false, nil
	case domain.Anything:
		return true, nil
	}
	return false, fmt.Errorf("%w: unsupported predicate %T", domain.ErrInvalidInput, pred)
}

func (m matcher) compile(pattern string) (*regexp.Regexp, error) {
	if re, ok := m.patterns[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, err
	}
	m.patterns[pattern] = re
	return re, nil
}

func (m matcher) strings(node *domain.Node, field domain.Field) []string {
	switch field {
	case domain.FieldVID:
		return []string{node.VID}
	case domain.FieldName:
		return deref(node.Name)
	case domain.FieldCategory:
		return deref(node.Category)
	case domain.FieldServerNumber:
		return deref(node.ServerNumber)
	case domain.FieldCreationDate:
		if node.CreationDate == nil {
			return nil
		}
		return []string{node.CreationDate.UTC().Format(domain.DateLayout)}
	case domain.FieldDeletionDate:
		if node.DeletionDate == nil {
			return nil
		}
		return []string{node.DeletionDate.UTC().Format(domain.DateLayout)}
	case domain.FieldVersion, domain.FieldVersionDecoded:
		var out []string
		for _, hw := range m.store.currentHardware(node.ID) {
			v := hw.Version
			if field == domain.FieldVersionDecoded {
				v = hw.VersionDecoded
			}
			out = append(out, deref(v)...)
		}
		return out
	case domain.FieldTicket:
		var out []string
		for _, t := range m.store.tickets {
			if t.NodeID != nil && *t.NodeID == node.ID {
				out = append(out, t.TicketID)
			}
		}
		return out
	}
	return nil
}

func (m matcher) numbers(node *domain.Node, field domain.Field) []uint32 {
	switch field {
	case domain.FieldVIDNumber:
		return []uint32{node.VIDNumber}
	case domain.FieldIP:
		var out []uint32
		for _, hw := range m.store.currentHardware(node.ID) {
			for _, ip := range m.store.ips {
				if ip.HardwareNodeID == hw.ID {
					out = append(out, ip.U32)
				}
			}
		}
		return out
	}
	return nil
}

func anyString(values []string, fn func(string) bool) bool {
	return slices.ContainsFunc(values, fn)
}

func deref(s *string) []string {
	if s == nil {
		return nil
	}
	return []string{*s}
}
