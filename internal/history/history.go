// Package history replays a node's ancestry to recover the sequence of value
// changes of one field.
//
// Ancestor snapshots store only the fields that changed, so a nil value on an
// ancestor means "same as the newer row". The current row is the baseline and
// never produces an entry itself; each ancestor whose value differs from the
// nearest newer known value produces {ancestor.creation_date, value}.
package history

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/Flarenzy/node-inventory/internal/domain"
)

// AncestryReader loads a node and its ancestry from one consistent snapshot.
type AncestryReader interface {
	Ancestry(ctx context.Context, vid string) (domain.Ancestry, error)
}

type Reconstructor struct {
	repo AncestryReader
}

func NewReconstructor(repo AncestryReader) *Reconstructor {
	return &Reconstructor{repo: repo}
}

func (r *Reconstructor) History(ctx context.Context, vid string, field string) ([]domain.HistoryEntry, error) {
	if !Supported(field) {
		return nil, fmt.Errorf("%w: no history for field %q", domain.ErrInvalidInput, field)
	}

	ancestry, err := r.repo.Ancestry(ctx, vid)
	if err != nil {
		return nil, err
	}
	return Reconstruct(ancestry, field)
}

var nodeFields = map[string]func(domain.Node) *string{
	"name":           func(n domain.Node) *string { return n.Name },
	"category":       func(n domain.Node) *string { return n.Category },
	"abonent_number": func(n domain.Node) *string { return n.AbonentNumber },
	"server_number":  func(n domain.Node) *string { return n.ServerNumber },
}

var hardwareFields = map[string]func(domain.HardwareNode) *string{
	"version":         func(h domain.HardwareNode) *string { return h.Version },
	"version_decoded": func(h domain.HardwareNode) *string { return h.VersionDecoded },
}

// Fields lists every field history can be reconstructed for.
func Fields() []string {
	out := make([]string, 0, len(nodeFields)+len(hardwareFields))
	for f := range nodeFields {
		out = append(out, f)
	}
	for f := range hardwareFields {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

func Supported(field string) bool {
	_, scalar := nodeFields[field]
	_, composite := hardwareFields[field]
	return scalar || composite
}

// Reconstruct returns the changes of field, newest first.
func Reconstruct(ancestry domain.Ancestry, field string) ([]domain.HistoryEntry, error) {
	if get, ok := nodeFields[field]; ok {
		return scalar(ancestry, get), nil
	}
	if get, ok := hardwareFields[field]; ok {
		return composite(ancestry.Hardware, get), nil
	}
	return nil, fmt.Errorf("%w: no history for field %q", domain.ErrInvalidInput, field)
}

func scalar(ancestry domain.Ancestry, get func(domain.Node) *string) []domain.HistoryEntry {
	chain := slices.Clone(ancestry.Ancestors)
	slices.SortStableFunc(chain, func(a, b domain.Node) int {
		return newestFirst(a.CreationDate, b.CreationDate, a.ID, b.ID)
	})

	out := []domain.HistoryEntry{}
	known := get(ancestry.Node)
	for _, a := range chain {
		v := get(a)
		if v == nil || a.CreationDate == nil {
			continue
		}
		if known == nil || *v != *known {
			out = append(out, domain.HistoryEntry{Timestamp: *a.CreationDate, Value: *v})
		}
		known = v
	}
	return out
}

// composite resolves one value per ancestor timestamp across all hardware
// rows by plurality, then keeps only the timestamps where it changes.
func composite(chains []domain.HardwareChain, get func(domain.HardwareNode) *string) []domain.HistoryEntry {
	chains = slices.Clone(chains)
	slices.SortStableFunc(chains, func(a, b domain.HardwareChain) int {
		return cmp.Compare(a.Current.ID, b.Current.ID)
	})

	timelines := make([]timeline, 0, len(chains))
	current := make([]*string, 0, len(chains))
	var boundaries []time.Time
	for _, c := range chains {
		tl := newTimeline(c, get)
		timelines = append(timelines, tl)
		current = append(current, get(c.Current))
		for _, s := range tl.states {
			boundaries = append(boundaries, s.at)
		}
	}
	slices.SortFunc(boundaries, func(a, b time.Time) int { return b.Compare(a) })
	boundaries = slices.CompactFunc(boundaries, time.Time.Equal)

	out := []domain.HistoryEntry{}
	known := Plurality(current)
	for _, b := range boundaries {
		values := make([]*string, 0, len(timelines))
		for _, tl := range timelines {
			values = append(values, tl.at(b))
		}
		v := Plurality(values)
		if v == nil {
			continue
		}
		if known == nil || *v != *known {
			out = append(out, domain.HistoryEntry{Timestamp: b, Value: *v})
		}
		known = v
	}
	return out
}

type state struct {
	at    time.Time
	value *string
}

// timeline holds the effective value of one hardware row from each of its
// dated ancestors, newest first.
type timeline struct {
	current *state
	states  []state
}

func newTimeline(c domain.HardwareChain, get func(domain.HardwareNode) *string) timeline {
	ancestors := slices.Clone(c.Ancestors)
	slices.SortStableFunc(ancestors, func(a, b domain.HardwareNode) int {
		return newestFirst(a.CreationDate, b.CreationDate, a.ID, b.ID)
	})

	var tl timeline
	effective := get(c.Current)
	if c.Current.CreationDate != nil {
		tl.current = &state{at: *c.Current.CreationDate, value: effective}
	}
	for _, a := range ancestors {
		if v := get(a); v != nil {
			effective = v
		}
		if a.CreationDate == nil {
			continue
		}
		tl.states = append(tl.states, state{at: *a.CreationDate, value: effective})
	}
	return tl
}

// at returns the value in effect at t, or nil when the row had no known
// state yet.
func (tl timeline) at(t time.Time) *string {
	if tl.current != nil && !tl.current.at.After(t) {
		return tl.current.value
	}
	for _, s := range tl.states {
		if !s.at.After(t) {
			return s.value
		}
	}
	return nil
}

// Plurality returns the most frequent non-nil value. Ties go to the value
// seen first.
func Plurality(values []*string) *string {
	counts := make(map[string]int, len(values))
	for _, v := range values {
		if v != nil {
			counts[*v]++
		}
	}

	var (
		best      *string
		bestCount int
	)
	for _, v := range values {
		if v != nil && counts[*v] > bestCount {
			best, bestCount = v, counts[*v]
		}
	}
	return best
}

func newestFirst(a, b *time.Time, aID, bID int64) int {
	switch {
	case a == nil && b == nil:
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		if c := b.Compare(*a); c != 0 {
			return c
		}
	}
	return cmp.Compare(bID, aID)
}
