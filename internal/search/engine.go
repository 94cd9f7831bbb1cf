// Package search turns free-text node queries into predicates and runs them
// against a node repository.
//
// A query is either a quoted exact name, a comma-separated list of key:value
// fields intersected with AND, or free text interpreted by shape. Results
// come from live nodes first; only when nothing live matches are deleted
// nodes searched. An "ids:" list always spans live and deleted nodes.
package search

import (
	"context"

	"github.com/Flarenzy/node-inventory/internal/domain"
)

type Engine struct {
	cfg     Config
	repo    domain.NodeRepository
	builder *Builder
}

func NewEngine(cfg Config, repo domain.NodeRepository, oracle Canonicalizer) *Engine {
	return &Engine{
		cfg:     cfg,
		repo:    repo,
		builder: NewBuilder(cfg, repo, oracle),
	}
}

// Search returns the identifiers matching query, ascending. networks
// optionally restricts results to the given network ids.
func (e *Engine) Search(ctx context.Context, query string, networks []int64) ([]string, error) {
	q := Parse(query, e.cfg)

	switch q.Mode {
	case ModeExactName:
		return e.withFallback(ctx, exactName(q.Text), networks)
	case ModeQuick:
		pred, _ := e.builder.Quick(q.Text)
		return e.withFallback(ctx, pred, networks)
	case ModeFields:
		pred, err := e.Predicate(ctx, q)
		if err != nil {
			return nil, err
		}
		if len(q.IDs) > 0 {
			return e.find(ctx, pred, domain.ScopeAll, networks)
		}
		return e.withFallback(ctx, pred, networks)
	default:
		return []string{}, nil
	}
}

// Predicate composes a field query: terms are intersected, ids are unioned
// and the union is intersected with the terms.
func (e *Engine) Predicate(ctx context.Context, q Query) (domain.Predicate, error) {
	preds := make([]domain.Predicate, 0, len(q.Terms)+1)
	for _, term := range q.Terms {
		pred, err := e.builder.BuildTerm(ctx, term)
		if err != nil {
			return nil, err
		}
		preds = append(preds, pred)
	}

	if len(q.IDs) > 0 {
		ids := make([]domain.Predicate, 0, len(q.IDs))
		for _, id := range q.IDs {
			ids = append(ids, exactIdentifier(id))
		}
		preds = append(preds, domain.AnyOf(ids...))
	}

	if len(preds) == 0 {
		return domain.Nothing, nil
	}
	return domain.AllOf(preds...), nil
}

func (e *Engine) withFallback(ctx context.Context, pred domain.Predicate, networks []int64) ([]string, error) {
	vids, err := e.find(ctx, pred, domain.ScopeCurrent, networks)
	if err != nil || len(vids) > 0 {
		return vids, err
	}
	return e.find(ctx, pred, domain.ScopeDeleted, networks)
}

func (e *Engine) find(ctx context.Context, pred domain.Predicate, scope domain.Scope, networks []int64) ([]string, error) {
	if pred == domain.Nothing {
		return []string{}, nil
	}
	vids, err := e.repo.FindVIDs(ctx, pred, scope, networks)
	if err != nil {
		return nil, err
	}
	if vids == nil {
		vids = []string{}
	}
	return vids, nil
}
