// Package ipv4 converts dotted-quad addresses, CIDR blocks and hyphenated
// ranges to and from their unsigned 32-bit form.
//
// Parsing is intentionally looser than net/netip: octets are any run of
// decimal digits whose value fits in [0,255], so "010.0.0.1" is accepted the
// same way operators type it into the search box.
package ipv4

import (
	"encoding/binary"
	"net/netip"
	"strconv"
	"strings"

	"go4.org/netipx"
)

// MaxU32 is the largest value an address can take.
const MaxU32 = 0xFFFFFFFF

// IsAddress reports whether s is exactly four dot-separated decimal octets.
func IsAddress(s string) bool {
	_, ok := octets(s)
	return ok
}

// ToU32 returns the numeric form of a dotted-quad address.
func ToU32(s string) (uint32, bool) {
	o, ok := octets(s)
	if !ok {
		return 0, false
	}
	return binary.BigEndian.Uint32(o[:]), true
}

// ToAddress renders u as a dotted quad. Values outside [0, MaxU32] are rejected.
func ToAddress(u int64) (string, bool) {
	if u < 0 || u > MaxU32 {
		return "", false
	}
	return fromU32(uint32(u)).String(), true
}

// ParseCIDR splits "<addr>/<bits>" and validates both halves.
func ParseCIDR(s string) (addr string, bits int, ok bool) {
	i := strings.LastIndexByte(s, '/')
	if i < 0 {
		return "", 0, false
	}
	addr, mask := s[:i], s[i+1:]
	if !IsAddress(addr) || !isDigits(mask) {
		return "", 0, false
	}
	bits, err := strconv.Atoi(mask)
	if err != nil || bits < 0 || bits > 32 {
		return "", 0, false
	}
	return addr, bits, true
}

// ParseRange splits "<lower>-<upper>" and requires lower <= upper.
func ParseRange(s string) (lower, upper string, ok bool) {
	i := strings.LastIndexByte(s, '-')
	if i < 0 {
		return "", "", false
	}
	lower, upper = s[:i], s[i+1:]
	lo, ok := ToU32(lower)
	if !ok {
		return "", "", false
	}
	hi, ok := ToU32(upper)
	if !ok {
		return "", "", false
	}
	if !netipx.IPRangeFrom(fromU32(lo), fromU32(hi)).IsValid() {
		return "", "", false
	}
	return lower, upper, true
}

// Bounds returns the inclusive numeric bounds of a CIDR block or a range.
func Bounds(s string) (lower, upper uint32, ok bool) {
	if addr, bits, ok := ParseCIDR(s); ok {
		base, _ := ToU32(addr)
		lower, upper = PrefixBounds(base, bits)
		return lower, upper, true
	}
	if lo, hi, ok := ParseRange(s); ok {
		lower, _ = ToU32(lo)
		upper, _ = ToU32(hi)
		return lower, upper, true
	}
	return 0, 0, false
}

// PrefixBounds returns the first and last value of the block of size
// 2^(32-bits) containing base. bits must be in [0,32].
func PrefixBounds(base uint32, bits int) (lower, upper uint32) {
	prefix := netip.PrefixFrom(fromU32(base), bits).Masked()
	r := netipx.RangeOfPrefix(prefix)
	return toU32(r.From()), toU32(r.To())
}

func octets(s string) ([4]byte, bool) {
	var out [4]byte
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return out, false
	}
	for i, p := range parts {
		if !isDigits(p) {
			return out, false
		}
		v, err := strconv.ParseUint(p, 10, 64)
		if err != nil || v > 255 {
			return out, false
		}
		out[i] = byte(v)
	}
	return out, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func fromU32(u uint32) netip.Addr {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], u)
	return netip.AddrFrom4(b)
}

func toU32(a netip.Addr) uint32 {
	b := a.As4()
	return binary.BigEndian.Uint32(b[:])
}
