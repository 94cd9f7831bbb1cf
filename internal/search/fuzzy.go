package search

import (
	"strings"

	"github.com/Flarenzy/node-inventory/internal/domain"
	"github.com/Flarenzy/node-inventory/internal/vid"
)

// Canonicalizer enumerates canonical identifiers that a raw fragment may
// denote, bounded by threshold.
type Canonicalizer interface {
	Enumerate(raw string, threshold uint32) []string
}

// FuzzyMatcher ORs the canonicalizer's candidates with a case-insensitive
// substring match on the raw fragment, so a fragment the canonicalizer does
// not recognize still finds identifiers containing it. Ranges and blocks are
// never enumerated; the builder matches them numerically.
type FuzzyMatcher struct {
	oracle    Canonicalizer
	threshold uint32
}

func NewFuzzyMatcher(oracle Canonicalizer, threshold uint32) *FuzzyMatcher {
	if oracle == nil {
		oracle = vid.Oracle{}
	}
	return &FuzzyMatcher{oracle: oracle, threshold: threshold}
}

func (m *FuzzyMatcher) Predicate(raw string) domain.Predicate {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.Nothing
	}

	var candidates []string
	if _, _, isRange := vid.Bounds(raw); !isRange {
		candidates = m.oracle.Enumerate(raw, m.threshold)
	}
	preds := make([]domain.Predicate, 0, len(candidates)+1)
	for _, candidate := range candidates {
		preds = append(preds, domain.Equal{Field: domain.FieldVID, Value: candidate})
	}
	preds = append(preds, domain.Contains{Field: domain.FieldVID, Value: raw, FoldCase: true})

	return domain.AnyOf(preds...)
}
