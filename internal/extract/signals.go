package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/JakeFAU/restaurant-knowledge/internal/restaurant"
)

const maxMessages = 5

var allergenRe = buildAllergenRe()

func buildAllergenRe() *regexp.Regexp {
	keywords := make([]string, 0, len(restaurant.AllergenKeywords)+len(restaurant.Allergens))
	seen := make(map[string]bool)
	for _, a := range restaurant.Allergens {
		if !seen[a] {
			seen[a] = true
			keywords = append(keywords, a)
		}
	}
	for kw := range restaurant.AllergenKeywords {
		if !seen[kw] {
			seen[kw] = true
			keywords = append(keywords, kw)
		}
	}
	sort.Slice(keywords, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(keywords[i]), utf8.RuneCountInString(keywords[j])
		if li != lj {
			return li > lj
		}
		return keywords[i] < keywords[j]
	})
	quoted := make([]string, len(keywords))
	for i, kw := range keywords {
		quoted[i] = regexp.QuoteMeta(kw)
	}
	return regexp.MustCompile(`(?:^|[^\p{L}])(` + strings.Join(quoted, "|") + `)`)
}

// ExtractAllergens returns canonical allergens mentioned in text, matched at
// word starts, in vocabulary order.
func ExtractAllergens(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, m := range allergenRe.FindAllStringSubmatchIndex(lower, -1) {
		if freeFrom(lower[m[3]:]) {
			continue
		}
		if canonical, ok := restaurant.CanonicalAllergen(lower[m[2]:m[3]]); ok {
			found = append(found, canonical)
		}
	}
	return restaurant.SortAllergens(found)
}

// freeFrom reports whether a keyword is followed by a "-free" suffix, as in
// "glutenfri" or "lactose-free".
func freeFrom(rest string) bool {
	i := strings.IndexFunc(rest, func(r rune) bool { return !unicode.IsLetter(r) })
	word := rest
	if i >= 0 {
		word = rest[:i]
	}
	rest = strings.TrimLeft(rest, "- ")
	return strings.HasSuffix(word, "fri") || strings.HasSuffix(word, "fritt") ||
		(word == "" && (strings.HasPrefix(rest, "fri") || strings.HasPrefix(rest, "free")))
}

var messageKeywords = []string{
	"dagens lunch", "dagens rätt", "veckans", "erbjudande", "kampanj",
	"happy hour", "rabatt", "just nu", "nyhet", "afterwork",
}

// ExtractMessages returns promotional lines such as lunch offers.
func ExtractMessages(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		n := utf8.RuneCountInString(line)
		if n < 10 || n > 200 || seen[line] {
			continue
		}
		lower := strings.ToLower(line)
		for _, kw := range messageKeywords {
			if strings.Contains(lower, kw) {
				seen[line] = true
				out = append(out, line)
				break
			}
		}
		if len(out) >= maxMessages {
			break
		}
	}
	return out
}

var (
	maxGuestsRe = regexp.MustCompile(`(?:max|högst|upp till|maximalt|up to)\s*(\d{1,3})\s*(?:personer|pers|gäster|guests|people)`)
	groupRe     = regexp.MustCompile(`(?:sällskap|grupper|groups?)\s*(?:över|om|of|larger than|större än|med fler än)\s*(\d{1,3})`)
	leadTimeRe  = regexp.MustCompile(`(?:senast|minst|at least)\s*(\d{1,3})\s*(timmar|timme|tim|hours?|minuter|min)\s*(?:innan|före|before|i förväg|in advance)`)
)

// ExtractBooking reads reservation limits and cancellation wording.
func ExtractBooking(text string) BookingCandidate {
	lower := strings.ToLower(text)
	var b BookingCandidate
	if m := maxGuestsRe.FindStringSubmatch(lower); m != nil {
		b.MaxGuests, _ = strconv.Atoi(m[1])
	} else if m := groupRe.FindStringSubmatch(lower); m != nil {
		b.MaxGuests, _ = strconv.Atoi(m[1])
	}
	if m := leadTimeRe.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		if strings.HasPrefix(m[2], "min") {
			b.LeadTimeMinutes = n
		} else {
			b.LeadTimeMinutes = n * 60
		}
	}
	for _, line := range strings.Split(text, "\n") {
		l := strings.ToLower(line)
		if (strings.Contains(l, "avbok") || strings.Contains(l, "cancel")) && utf8.RuneCountInString(line) <= 200 {
			b.CancellationText = strings.TrimSpace(line)
			break
		}
	}
	return b
}

// Holidays with fixed dates, keyed by their Swedish name.
var namedHolidays = map[string]string{
	"julafton":     "24 december",
	"juldagen":     "25 december",
	"annandag jul": "26 december",
	"nyårsafton":   "31 december",
	"nyårsdagen":   "1 januari",
	"trettondagen": "6 januari",
}

var (
	specialDateRe    = regexp.MustCompile(`(?i)` + letterBoundary + `(\d{1,2})(?::e|e)?\s+(` + monthAlternation() + `)\.?[\s:,]*(?:kl\.?\s*)?(?:` + timeToken + rangeSep + timeToken + `|` + closedWords + `)`)
	specialHolidayRe = regexp.MustCompile(`(?i)` + letterBoundary + `(` + holidayAlternation() + `)[\s:,]*(?:kl\.?\s*)?(?:` + timeToken + rangeSep + timeToken + `|` + closedWords + `)`)
)

func monthAlternation() string {
	return strings.Join(restaurant.MonthAliases(), "|")
}

func holidayAlternation() string {
	names := make([]string, 0, len(namedHolidays))
	for n := range namedHolidays {
		names = append(names, regexp.QuoteMeta(n))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return strings.Join(names, "|")
}

// ExtractSpecialHours finds date-bound exceptions such as "24 december stängt".
func ExtractSpecialHours(text string) []SpecialHoursCandidate {
	lower := strings.ToLower(text)
	var out []SpecialHoursCandidate
	seen := make(map[string]bool)
	add := func(date string, idx []int, note string) {
		if seen[date] {
			return
		}
		seen[date] = true
		out = append(out, SpecialHoursCandidate{
			DateText:  date,
			HoursText: hoursValue(lower, idx),
			Note:      note,
		})
	}
	for _, m := range specialDateRe.FindAllStringSubmatchIndex(lower, -1) {
		date := lower[m[2]:m[3]] + " " + lower[m[4]:m[5]]
		add(date, m[6:12], "")
	}
	for _, m := range specialHolidayRe.FindAllStringSubmatchIndex(lower, -1) {
		name := lower[m[2]:m[3]]
		add(namedHolidays[name], m[4:10], name)
	}
	return out
}
