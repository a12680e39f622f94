package core

import (
	"strings"
	"time"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// CleanStrings cleans every string of ss, dropping blanks and duplicates.
func CleanStrings(ss []string, lower ...bool) []string {
	seen := make(map[string]struct{}, len(ss))
	res := make([]string, 0, len(ss))
	for _, s := range ss {
		s = CleanString(s, lower...)
		if _, ok := seen[s]; ok || s == "" {
			continue
		}
		seen[s] = struct{}{}
		res = append(res, s)
	}
	return res
}

// NowFunc returns the current UTC time truncated to microseconds (DB precision).
var NowFunc = func() time.Time { // mockable
	return time.Now().UTC().Truncate(time.Microsecond)
}
