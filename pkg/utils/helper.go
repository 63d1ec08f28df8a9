package utils

import (
	"strings"
)

// NormalizeSeatNumbers trims, upper-cases and de-duplicates seat numbers
// while keeping the caller's order.
func NormalizeSeatNumbers(seatNumbers []string) []string {
	seen := make(map[string]struct{}, len(seatNumbers))
	out := make([]string, 0, len(seatNumbers))
	for _, sn := range seatNumbers {
		sn = strings.ToUpper(strings.TrimSpace(sn))
		if sn == "" {
			continue
		}
		if _, ok := seen[sn]; ok {
			continue
		}
		seen[sn] = struct{}{}
		out = append(out, sn)
	}
	return out
}
