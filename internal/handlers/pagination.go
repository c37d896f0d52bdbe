package handlers

import (
	"strconv"
	"strings"

	"storefront/internal/apperr"
)

const (
	defaultPageLimit = 24
	maxPageLimit     = 200
)

func parsePaginationParams(limitStr, offsetStr string) (int64, int64, error) {
	limit := int64(defaultPageLimit)
	offset := int64(0)

	if limitStr = strings.TrimSpace(limitStr); limitStr != "" {
		l, err := strconv.ParseInt(limitStr, 10, 64)
		if err != nil || l < 1 || l > maxPageLimit {
			return 0, 0, apperr.InvalidInput("limit", "limit must be between 1 and 200")
		}
		limit = l
	}

	if offsetStr = strings.TrimSpace(offsetStr); offsetStr != "" {
		o, err := strconv.ParseInt(offsetStr, 10, 64)
		if err != nil || o < 0 {
			return 0, 0, apperr.InvalidInput("offset", "offset must be zero or greater")
		}
		offset = o
	}

	return limit, offset, nil
}

// splitQueryList accepts both repeated (?a=x&a=y) and comma separated
// (?a=x,y) list parameters.
func splitQueryList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
