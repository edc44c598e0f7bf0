package util

import "strings"

// Remote is the canonical location marker for fully remote postings.
const Remote = "Remote"

// JoinLocation collapses structured location parts into the canonical
// "City, Region, Country" order, skipping whatever the provider left
// blank.
func JoinLocation(city, region, country string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{city, region, country} {
		if p = CleanText(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// NormalizeLocation trims and collapses a free-form location string,
// dropping repeated comma-separated tokens ("Toronto, Toronto, Canada").
func NormalizeLocation(loc string) string {
	loc = CleanText(loc)
	if loc == "" {
		return ""
	}

	loc = strings.TrimPrefix(loc, "Location:")
	loc = strings.TrimSpace(loc)

	parts := strings.Split(loc, ",")
	seen := map[string]bool{}
	var out []string
	for _, p := range parts {
		p = CleanText(p)
		if p == "" {
			continue
		}
		k := strings.ToLower(p)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}

// LooksRemote reports whether a location string denotes remote work.
func LooksRemote(loc string) bool {
	l := strings.ToLower(loc)
	return strings.Contains(l, "remote") ||
		strings.Contains(l, "anywhere") ||
		strings.Contains(l, "work from home")
}
