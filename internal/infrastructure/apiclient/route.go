package apiclient

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// RouteLabel replaces id segments in a path with ":id" to keep metric label
// cardinality bounded, e.g. /api/orders/42 becomes /api/orders/:id
func RouteLabel(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if isIDSegment(p) {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

func isIDSegment(s string) bool {
	if s == "" {
		return false
	}
	if _, err := uuid.Parse(s); err == nil {
		return true
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
