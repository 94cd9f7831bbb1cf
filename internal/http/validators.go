package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// parseNetworks reads repeated or comma separated network query parameters.
func parseNetworks(r *http.Request) ([]int64, error) {
	var out []int64
	for _, raw := range r.URL.Query()["network"] {
		for part := range strings.SplitSeq(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil || id <= 0 {
				return nil, fmt.Errorf("invalid network %q", part)
			}
			out = append(out, id)
		}
	}
	return out, nil
}
