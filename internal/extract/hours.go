package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/JakeFAU/restaurant-knowledge/internal/restaurant"
)

const (
	timeToken   = `(\d{1,2}(?:[:.]\d{2})?)`
	rangeSep    = `\s*(?:-|–|—|till|to)\s*`
	closedWords = `(stängt|stängd|closed)`
	// Day names must not be preceded by a letter; \b is ASCII-only and
	// misses å, ä and ö.
	letterBoundary = `(?:^|[^\p{L}])`
)

var (
	dayAlternation = buildDayAlternation()
	dayRangeRe     = regexp.MustCompile(`(?i)` + letterBoundary + `(` + dayAlternation + `)\.?` + rangeSep +
		`(` + dayAlternation + `)\.?[\s:,]*(?:kl\.?\s*)?(?:` + timeToken + rangeSep + timeToken + `|` + closedWords + `)`)
	dayPairRe = regexp.MustCompile(`(?i)` + letterBoundary + `(` + dayAlternation + `)\.?\s*(?:&|och|and|,|/|\+)\s*(` +
		dayAlternation + `)\.?[\s:,]*(?:kl\.?\s*)?(?:` + timeToken + rangeSep + timeToken + `|` + closedWords + `)`)
	singleDayRe = regexp.MustCompile(`(?i)` + letterBoundary + `(` + dayAlternation + `)\.?[\s:,]*(?:kl\.?\s*)?(?:` +
		timeToken + rangeSep + timeToken + `|` + closedWords + `)`)
	// "Stängt måndagar", "closed on Mondays".
	closedDayRe = regexp.MustCompile(`(?i)` + letterBoundary + closedWords + `(?:[ \t]+(?:på|on))?[ \t]*:?[ \t]*(` +
		dayAlternation + `)`)
)

func buildDayAlternation() string {
	aliases := restaurant.WeekdayAliases(3)
	quoted := make([]string, len(aliases))
	for i, a := range aliases {
		quoted[i] = regexp.QuoteMeta(a)
	}
	return strings.Join(quoted, "|")
}

type hoursMatch struct {
	pos   int
	days  []restaurant.Weekday
	value string
}

// ExtractHours finds weekday opening hours in text. Values are raw "start-end"
// strings or "closed"; the first statement for a day wins.
func ExtractHours(text string) map[string]string {
	lower := strings.ToLower(text)
	var matches []hoursMatch

	for _, m := range dayRangeRe.FindAllStringSubmatchIndex(lower, -1) {
		from, ok1 := restaurant.ParseWeekday(lower[m[2]:m[3]])
		to, ok2 := restaurant.ParseWeekday(lower[m[4]:m[5]])
		if !ok1 || !ok2 {
			continue
		}
		matches = append(matches, hoursMatch{
			pos:   m[2],
			days:  restaurant.DayRange(from, to),
			value: hoursValue(lower, m[6:12]),
		})
	}
	for _, m := range dayPairRe.FindAllStringSubmatchIndex(lower, -1) {
		first, ok1 := restaurant.ParseWeekday(lower[m[2]:m[3]])
		second, ok2 := restaurant.ParseWeekday(lower[m[4]:m[5]])
		if !ok1 || !ok2 {
			continue
		}
		matches = append(matches, hoursMatch{
			pos:   m[2],
			days:  []restaurant.Weekday{first, second},
			value: hoursValue(lower, m[6:12]),
		})
	}
	for _, m := range singleDayRe.FindAllStringSubmatchIndex(lower, -1) {
		day, ok := restaurant.ParseWeekday(lower[m[2]:m[3]])
		if !ok {
			continue
		}
		matches = append(matches, hoursMatch{
			pos:   m[2],
			days:  []restaurant.Weekday{day},
			value: hoursValue(lower, m[4:10]),
		})
	}

	for _, m := range closedDayRe.FindAllStringSubmatchIndex(lower, -1) {
		day, ok := restaurant.ParseWeekday(lower[m[4]:m[5]])
		if !ok {
			continue
		}
		matches = append(matches, hoursMatch{
			pos:   m[4],
			days:  []restaurant.Weekday{day},
			value: restaurant.Closed,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].pos < matches[j].pos })

	out := make(map[string]string)
	for _, m := range matches {
		for _, d := range m.days {
			if _, set := out[string(d)]; !set {
				out[string(d)] = m.value
			}
		}
	}
	return out
}

// hoursValue reads the start, end and closed groups from submatch indexes.
func hoursValue(s string, idx []int) string {
	if idx[4] >= 0 {
		return restaurant.Closed
	}
	return s[idx[0]:idx[1]] + "-" + s[idx[2]:idx[3]]
}
