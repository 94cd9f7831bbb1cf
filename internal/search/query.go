package search

import "strings"

type Mode int

const (
	// ModeEmpty carries no usable criteria and matches nothing.
	ModeEmpty Mode = iota
	// ModeExactName is a whole query wrapped in double quotes.
	ModeExactName
	// ModeFields is a comma-separated list of key:value segments.
	ModeFields
	// ModeQuick is anything else, interpreted by shape.
	ModeQuick
)

// Term is one key:value segment. Exact is set when the value was quoted.
type Term struct {
	Key   Key
	Value string
	Exact bool
}

type Query struct {
	Mode  Mode
	Text  string
	Terms []Term
	IDs   []string
}

// Parse tokenizes input into a Query. It never fails: input that is not a
// well-formed field list falls through to quick mode.
func Parse(input string, cfg Config) Query {
	text := strings.TrimSpace(input)
	if text == "" {
		return Query{Mode: ModeEmpty}
	}

	if inner, ok := unquote(text); ok {
		inner = strings.TrimSpace(inner)
		if inner == "" {
			return Query{Mode: ModeEmpty}
		}
		return Query{Mode: ModeExactName, Text: inner}
	}

	if q, ok := parseFields(text, cfg); ok {
		return q
	}

	return Query{Mode: ModeQuick, Text: text}
}

func parseFields(text string, cfg Config) (Query, bool) {
	q := Query{Mode: ModeFields, Text: text}
	segments := splitSegments(text)

	for i, segment := range segments {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		rawKey, value, found := strings.Cut(segment, ":")
		if !found {
			return Query{}, false
		}
		key, ok := cfg.lookup(rawKey)
		if !ok {
			return Query{}, false
		}
		value = strings.TrimSpace(value)

		if key == KeyIDs {
			q.IDs = appendNonEmpty(q.IDs, value)
			for _, rest := range segments[i+1:] {
				q.IDs = appendNonEmpty(q.IDs, strings.TrimSpace(rest))
			}
			break
		}

		term := Term{Key: key, Value: value}
		if inner, ok := unquote(value); ok {
			term.Value, term.Exact = strings.TrimSpace(inner), true
		}
		if term.Value == "" {
			continue
		}
		q.Terms = append(q.Terms, term)
	}

	if len(q.Terms) == 0 && len(q.IDs) == 0 {
		return Query{Mode: ModeEmpty, Text: text}, true
	}
	return q, true
}

// splitSegments splits on commas that are not inside double quotes.
func splitSegments(text string) []string {
	var (
		out     []string
		start   int
		inQuote bool
	)
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '"':
			inQuote = !inQuote
		case ',':
			if !inQuote {
				out = append(out, text[start:i])
				start = i + 1
			}
		}
	}
	return append(out, text[start:])
}

func unquote(s string) (string, bool) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", false
	}
	return s[1 : len(s)-1], true
}

func appendNonEmpty(ids []string, id string) []string {
	id = strings.Trim(id, `"`)
	if id == "" {
		return ids
	}
	return append(ids, id)
}
