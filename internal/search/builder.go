package search

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Flarenzy/node-inventory/internal/domain"
	"github.com/Flarenzy/node-inventory/internal/ipv4"
	"github.com/Flarenzy/node-inventory/internal/vid"
)

// NodeLookup resolves a current node by identifier.
type NodeLookup interface {
	FindByVID(ctx context.Context, vid string) (domain.Node, error)
}

// Builder maps one query field and its raw value to a predicate.
type Builder struct {
	cfg   Config
	nodes NodeLookup
	fuzzy *FuzzyMatcher
}

func NewBuilder(cfg Config, nodes NodeLookup, oracle Canonicalizer) *Builder {
	return &Builder{
		cfg:   cfg,
		nodes: nodes,
		fuzzy: NewFuzzyMatcher(oracle, cfg.Threshold),
	}
}

// Build returns the predicate for key=raw. Unparsable values yield
// domain.Nothing; an error is returned only when a lookup the predicate
// depends on fails.
func (b *Builder) Build(ctx context.Context, key Key, raw string) (domain.Predicate, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return domain.Anything, nil
	}

	switch key {
	case KeyIdentifier:
		return b.identifier(value), nil
	case KeyIDs:
		return exactIdentifier(value), nil
	case KeyName:
		return namePattern(value), nil
	case KeyIP:
		return ipPredicate(value), nil
	case KeyVersionDecoded:
		return domain.Contains{Field: domain.FieldVersionDecoded, Value: value}, nil
	case KeyVersion:
		return domain.Contains{Field: domain.FieldVersion, Value: value}, nil
	case KeyTicket:
		return domain.Contains{Field: domain.FieldTicket, Value: value}, nil
	case KeyCreationDate:
		return domain.Contains{Field: domain.FieldCreationDate, Value: value}, nil
	case KeyDeletionDate:
		return domain.Contains{Field: domain.FieldDeletionDate, Value: value}, nil
	case KeyNetworkVID:
		return networkSegment(value), nil
	case KeyMFTPServerVID:
		return b.mftpClients(ctx, value)
	default:
		return nil, fmt.Errorf("%w: unknown search field %q", domain.ErrInvalidInput, key)
	}
}

// BuildTerm honors quoting: a quoted name matches exactly, ignoring case.
func (b *Builder) BuildTerm(ctx context.Context, term Term) (domain.Predicate, error) {
	if term.Exact && term.Key == KeyName {
		return exactName(term.Value), nil
	}
	return b.Build(ctx, term.Key, term.Value)
}

func (b *Builder) identifier(value string) domain.Predicate {
	preds := []domain.Predicate{
		domain.Equal{Field: domain.FieldVID, Value: strings.ToLower(value), FoldCase: true},
	}
	if lower, upper, ok := vid.Bounds(value); ok && vid.Span(lower, upper) <= uint64(b.cfg.Threshold) {
		preds = append(preds, domain.Between{Field: domain.FieldVIDNumber, Lower: lower, Upper: upper})
	}
	preds = append(preds, b.fuzzy.Predicate(value))
	return domain.AnyOf(preds...)
}

func exactIdentifier(value string) domain.Predicate {
	id, ok := vid.Normalize(value)
	if !ok {
		id = strings.ToLower(value)
	}
	return domain.Equal{Field: domain.FieldVID, Value: id, FoldCase: true}
}

func exactName(value string) domain.Predicate {
	return domain.Equal{Field: domain.FieldName, Value: value, FoldCase: true}
}

// namePattern requires every whitespace-separated token, in order. Tokens are
// matched literally.
func namePattern(value string) domain.Predicate {
	tokens := strings.Fields(value)
	if len(tokens) == 0 {
		return domain.Anything
	}
	for i, token := range tokens {
		tokens[i] = regexp.QuoteMeta(token)
	}
	return domain.Matches{Field: domain.FieldName, Pattern: strings.Join(tokens, ".*")}
}

// nameRegexp treats value as a live regular expression where whitespace
// means "anything". Patterns that do not compile match nothing.
func nameRegexp(value string) domain.Predicate {
	pattern := strings.Join(strings.Fields(value), ".*")
	if pattern == "" {
		return domain.Nothing
	}
	if _, err := regexp.Compile("(?i)" + pattern); err != nil {
		return domain.Nothing
	}
	return domain.Matches{Field: domain.FieldName, Pattern: pattern}
}

func ipPredicate(value string) domain.Predicate {
	if u, ok := ipv4.ToU32(value); ok {
		return domain.Between{Field: domain.FieldIP, Lower: u, Upper: u}
	}
	if lower, upper, ok := ipv4.Bounds(value); ok {
		return domain.Between{Field: domain.FieldIP, Lower: lower, Upper: upper}
	}
	return domain.Nothing
}

func networkSegment(value string) domain.Predicate {
	base, digits := 10, value
	if rest, ok := strings.CutPrefix(strings.ToLower(value), "0x"); ok {
		base, digits = 16, rest
	}
	seg, err := strconv.ParseUint(digits, base, 16)
	if err != nil {
		return domain.Nothing
	}
	lower, upper := vid.NetworkBounds(uint16(seg))
	return domain.Between{Field: domain.FieldVIDNumber, Lower: lower, Upper: upper}
}

// mftpClients finds the client nodes served by the given server node: same
// network, same server number.
func (b *Builder) mftpClients(ctx context.Context, value string) (domain.Predicate, error) {
	id, ok := vid.Normalize(value)
	if !ok || b.nodes == nil {
		return domain.Nothing, nil
	}

	server, err := b.nodes.FindByVID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Nothing, nil
		}
		return nil, err
	}

	if server.Deleted() || !is(server.Category, "server") || server.NetworkID == nil ||
		server.ServerNumber == nil || *server.ServerNumber == "" {
		return domain.Nothing, nil
	}

	return domain.AllOf(
		domain.EqualInt{Field: domain.FieldNetworkID, Value: *server.NetworkID},
		domain.Equal{Field: domain.FieldServerNumber, Value: *server.ServerNumber},
		domain.Equal{Field: domain.FieldCategory, Value: "client"},
	), nil
}

func is(s *string, want string) bool {
	return s != nil && *s == want
}
