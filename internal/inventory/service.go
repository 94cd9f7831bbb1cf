// Package inventory wires search, history and the node lifecycle into the
// NodeService exposed to the HTTP layer and the CLI.
package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/Flarenzy/node-inventory/internal/domain"
	"github.com/Flarenzy/node-inventory/internal/history"
	"github.com/Flarenzy/node-inventory/internal/search"
	"github.com/Flarenzy/node-inventory/internal/vid"
)

type Option func(*nodeService)

// WithClock overrides the time source used to stamp updates and deletions.
func WithClock(now func() time.Time) Option {
	return func(s *nodeService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCanonicalizer replaces the identifier oracle used by fuzzy search.
func WithCanonicalizer(oracle search.Canonicalizer) Option {
	return func(s *nodeService) {
		s.oracle = oracle
	}
}

type nodeService struct {
	store   domain.Store
	engine  *search.Engine
	history *history.Reconstructor
	oracle  search.Canonicalizer
	now     func() time.Time
}

func NewNodeService(store domain.Store, cfg search.Config, opts ...Option) domain.NodeService {
	s := &nodeService{
		store:   store,
		history: history.NewReconstructor(store),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = search.NewEngine(cfg, store, s.oracle)
	return s
}

func (s *nodeService) Search(ctx context.Context, query string, networks []int64) ([]string, error) {
	return s.engine.Search(ctx, query, networks)
}

func (s *nodeService) GetNode(ctx context.Context, id string) (domain.NodeDetails, error) {
	normalized, err := normalize(id)
	if err != nil {
		return domain.NodeDetails{}, err
	}
	return s.store.Details(ctx, normalized)
}

func (s *nodeService) History(ctx context.Context, id string, field string) ([]domain.HistoryEntry, error) {
	normalized, err := normalize(id)
	if err != nil {
		return nil, err
	}
	return s.history.History(ctx, normalized, field)
}

func (s *nodeService) CreateNode(ctx context.Context, input domain.CreateNodeInput) (domain.Node, error) {
	if normalized, ok := vid.Normalize(input.VID); ok {
		input.VID = normalized
	}
	if err := input.Validate(); err != nil {
		return domain.Node{}, err
	}
	if input.CreationDate.IsZero() {
		input.CreationDate = s.now().UTC()
	}
	return s.store.CreateNode(ctx, input)
}

func (s *nodeService) UpdateNode(ctx context.Context, id string, input domain.UpdateNodeInput) (domain.Node, error) {
	normalized, err := normalize(id)
	if err != nil {
		return domain.Node{}, err
	}
	if input.Empty() {
		return domain.Node{}, fmt.Errorf("%w: nothing to update", domain.ErrInvalidInput)
	}
	return s.store.UpdateNode(ctx, normalized, input, s.now().UTC())
}

func (s *nodeService) DeleteNode(ctx context.Context, id string) error {
	normalized, err := normalize(id)
	if err != nil {
		return err
	}
	return s.store.DeleteNode(ctx, normalized, s.now().UTC())
}

func normalize(id string) (string, error) {
	normalized, ok := vid.Normalize(id)
	if !ok {
		return "", &domain.ValidationError{Field: "vid", Value: id, Reason: "not a node identifier"}
	}
	return normalized, nil
}
