package search

import (
	"regexp"
	"strings"

	"github.com/Flarenzy/node-inventory/internal/domain"
	"github.com/Flarenzy/node-inventory/internal/ipv4"
)

var (
	quickIdentifier = regexp.MustCompile(`(?i)^(0x[0-9a-f]{1,8}|[0-9a-f]{8})(\s*-\s*(0x[0-9a-f]{1,8}|[0-9a-f]{8})|/\d{1,2})?$`)
	quickSegment    = regexp.MustCompile(`^\d{1,4}$`)
)

// Interpretation names the reading quick mode settled on.
type Interpretation string

const (
	AsIdentifier Interpretation = "identifier"
	AsSegment    Interpretation = "segment"
	AsIPv4       Interpretation = "ipv4"
	AsName       Interpretation = "name"
)

// Quick interprets free text by shape. The first reading that fits is used
// on its own: identifier, trailing identifier digits, IPv4, then a name
// regular expression.
func (b *Builder) Quick(text string) (domain.Predicate, Interpretation) {
	text = strings.TrimSpace(text)

	switch {
	case quickIdentifier.MatchString(text):
		return b.identifier(text), AsIdentifier
	case quickSegment.MatchString(text):
		return domain.HasSuffix{Field: domain.FieldVID, Value: text}, AsSegment
	case ipv4.IsAddress(text):
		return ipPredicate(text), AsIPv4
	}
	if _, _, ok := ipv4.Bounds(text); ok {
		return ipPredicate(text), AsIPv4
	}
	return nameRegexp(text), AsName
}
