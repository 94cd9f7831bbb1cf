package vid

// Oracle enumerates the canonical identifiers a loosely typed fragment may
// refer to.
type Oracle struct{}

// Enumerate returns the canonical identifiers denoted by raw. A single
// identifier yields itself; a hyphenated range yields every identifier it
// covers, provided the range holds no more than threshold identifiers.
// Anything else yields nothing.
func (Oracle) Enumerate(raw string, threshold uint32) []string {
	if id, ok := Normalize(raw); ok {
		return []string{id}
	}

	lower, upper, ok := rangeBounds(raw)
	if !ok || Span(lower, upper) > uint64(threshold) {
		return nil
	}

	out := make([]string, 0, Span(lower, upper))
	for n := uint64(lower); n <= uint64(upper); n++ {
		out = append(out, Format(uint32(n)))
	}
	return out
}

func rangeBounds(raw string) (lower, upper uint32, ok bool) {
	if cidr.MatchString(raw) {
		return 0, 0, false
	}
	return Bounds(raw)
}
