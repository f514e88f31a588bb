package restaurant

import (
	"sort"
	"strings"
	"time"
)

var monthAliases = map[string]time.Month{
	"januari": time.January, "jan": time.January, "january": time.January,
	"februari": time.February, "feb": time.February, "february": time.February,
	"mars": time.March, "mar": time.March, "march": time.March,
	"april": time.April, "apr": time.April,
	"maj": time.May, "may": time.May,
	"juni": time.June, "jun": time.June, "june": time.June,
	"juli": time.July, "jul": time.July, "july": time.July,
	"augusti": time.August, "aug": time.August, "august": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"oktober": time.October, "okt": time.October, "oct": time.October, "october": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// ParseMonth maps a Swedish or English month name or abbreviation.
func ParseMonth(raw string) (time.Month, bool) {
	m, ok := monthAliases[strings.Trim(strings.ToLower(strings.TrimSpace(raw)), ".")]
	return m, ok
}

// MonthAliases returns every month alias, longest first.
func MonthAliases() []string {
	out := make([]string, 0, len(monthAliases))
	for alias := range monthAliases {
		out = append(out, alias)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}
