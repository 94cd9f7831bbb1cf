// Package vid handles node identifiers: "0x" followed by eight lowercase hex
// digits. The upper 16 bits of the numeric payload are the network segment.
package vid

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Flarenzy/node-inventory/internal/ipv4"
)

var (
	canonical = regexp.MustCompile(`^0x[0-9a-f]{8}$`)
	prefixed  = regexp.MustCompile(`^0x([0-9a-f]{1,8})$`)
	bare      = regexp.MustCompile(`^([0-9a-f]{8})$`)
	cidr      = regexp.MustCompile(`^(0x[0-9a-f]{1,8}|[0-9a-f]{8})/(\d{1,2})$`)
)

// Valid reports whether s is a canonical identifier.
func Valid(s string) bool {
	return canonical.MatchString(s)
}

// Number returns the numeric payload of a canonical identifier.
func Number(s string) (uint32, bool) {
	if !Valid(s) {
		return 0, false
	}
	n, err := strconv.ParseUint(s[2:], 16, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

// Format renders n as a canonical identifier.
func Format(n uint32) string {
	return fmt.Sprintf("0x%08x", n)
}

// Network returns the network segment embedded in n.
func Network(n uint32) uint16 {
	return uint16(n >> 16)
}

// NetworkBounds returns the inclusive payload range of every identifier in
// network segment seg.
func NetworkBounds(seg uint16) (lower, upper uint32) {
	lower = uint32(seg) << 16
	return lower, lower | 0xffff
}

// Normalize turns a loosely typed identifier into its canonical form. It
// accepts "0x" with one to eight hex digits (left-padded with zeroes) and
// exactly eight bare hex digits, in any case.
func Normalize(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if m := prefixed.FindStringSubmatch(s); m != nil {
		return "0x" + strings.Repeat("0", 8-len(m[1])) + m[1], true
	}
	if m := bare.FindStringSubmatch(s); m != nil {
		return "0x" + m[1], true
	}
	return "", false
}

// Bounds returns the numeric payload bounds of a hyphenated identifier range
// ("0x1a0e0001-0x1a0e0003") or an identifier block ("0x1a0e0000/24").
func Bounds(s string) (lower, upper uint32, ok bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if m := cidr.FindStringSubmatch(s); m != nil {
		base, ok := normalizedNumber(m[1])
		if !ok {
			return 0, 0, false
		}
		bits, err := strconv.Atoi(m[2])
		if err != nil || bits > 32 {
			return 0, 0, false
		}
		lower, upper = ipv4.PrefixBounds(base, bits)
		return lower, upper, true
	}

	from, to, found := strings.Cut(s, "-")
	if !found {
		return 0, 0, false
	}
	lower, ok = normalizedNumber(from)
	if !ok {
		return 0, 0, false
	}
	upper, ok = normalizedNumber(to)
	if !ok || lower > upper {
		return 0, 0, false
	}
	return lower, upper, true
}

// Span is the number of identifiers in [lower, upper].
func Span(lower, upper uint32) uint64 {
	if upper < lower {
		return 0
	}
	return uint64(upper) - uint64(lower) + 1
}

func normalizedNumber(s string) (uint32, bool) {
	id, ok := Normalize(s)
	if !ok {
		return 0, false
	}
	return Number(id)
}
