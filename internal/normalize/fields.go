// Package normalize canonicalizes extracted restaurant data, merges sources by
// trust, fills gaps and validates the result into a restaurant.Info.
package normalize

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/JakeFAU/restaurant-knowledge/internal/report"
	"github.com/JakeFAU/restaurant-knowledge/internal/restaurant"
)

var (
	e164Re     = regexp.MustCompile(`^\+\d{7,15}$`)
	emailRe    = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9\-]+(?:\.[A-Za-z0-9\-]+)*\.[A-Za-z]{2,}$`)
	hourOnlyRe = regexp.MustCompile(`^(\d{1,2})$`)
	hourMinRe  = regexp.MustCompile(`^(\d{1,2})[:.](\d{2})$`)
	compactRe  = regexp.MustCompile(`^(\d{2})(\d{2})$`)
	rangeRe    = regexp.MustCompile(`^\s*(\S+?)\s*(?:-|–|—|till|to)\s*(\S+)\s*$`)
	numberRe   = regexp.MustCompile(`(?:\d{1,3}(?:[ \x{00a0}]\d{3})+|\d+)(?:[.,]\d{1,2})?`)
	approxRe   = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:ca|cirka|approx|ungefär|från|from)(?:[^\p{L}]|$)|~`)
	postalRe   = regexp.MustCompile(`(\d{3})\s?(\d{2})(\s+\p{L})`)
	isoDateRe  = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	slashRe    = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})(?:/(\d{4}))?$`)
	dayMonthRe = regexp.MustCompile(`^(\d{1,2})(?::e|e)?\s+(\p{L}+)\.?(?:\s+(\d{4}))?$`)
)

var closedWords = map[string]bool{
	"closed": true, "stängt": true, "stängd": true, "-": true, "": true,
}

// Phone converts raw to E.164 using countryCode (such as "+46") for national
// numbers. Invalid numbers are dropped with an error entry.
func Phone(raw, countryCode string, rep *report.Report) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "(0)", "")
	digits := onlyDigits(s)

	var out string
	assumed := false
	switch {
	case strings.HasPrefix(s, "+"):
		out = "+" + digits
	case strings.HasPrefix(digits, "00"):
		out = "+" + digits[2:]
	case strings.HasPrefix(digits, "0"):
		out = countryCode + digits[1:]
	default:
		out = countryCode + digits
		assumed = true
	}
	if !e164Re.MatchString(out) {
		rep.Errorf("invalid phone number %q dropped", raw)
		return ""
	}
	if assumed {
		rep.Assumef("phone %q has no country or trunk prefix; assumed %s", raw, countryCode)
	}
	return out
}

// Time normalizes H, HH, H:MM, H.MM and HHMM to HH:MM.
func Time(raw string, rep *report.Report) (string, bool) {
	s := strings.TrimSpace(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(raw)), "kl"))
	s = strings.TrimPrefix(s, ".")
	s = strings.TrimSpace(s)

	var hour, minute string
	switch {
	case hourOnlyRe.MatchString(s):
		hour, minute = s, "00"
	case hourMinRe.MatchString(s):
		m := hourMinRe.FindStringSubmatch(s)
		hour, minute = m[1], m[2]
	case compactRe.MatchString(s):
		m := compactRe.FindStringSubmatch(s)
		hour, minute = m[1], m[2]
	default:
		rep.Errorf("unparseable time %q", raw)
		return "", false
	}
	h, _ := strconv.Atoi(hour)
	m, _ := strconv.Atoi(minute)
	if h > 24 || m > 59 || (h == 24 && m != 0) {
		rep.Errorf("time %q out of range", raw)
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", h, m), true
}

// DayHours normalizes one day's value to "closed" or "HH:MM–HH:MM".
func DayHours(day restaurant.Weekday, raw string, rep *report.Report) string {
	return rangeHours(string(day), raw, rep)
}

func rangeHours(label, raw string, rep *report.Report) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	if closedWords[value] {
		return restaurant.Closed
	}
	m := rangeRe.FindStringSubmatch(value)
	if m == nil {
		rep.Errorf("%s: unparseable hours %q; marked closed", label, raw)
		return restaurant.Closed
	}
	start, ok := Time(m[1], rep)
	if !ok {
		return restaurant.Closed
	}
	end, ok := Time(m[2], rep)
	if !ok {
		return restaurant.Closed
	}
	if end == "00:00" {
		end = "24:00"
	}
	if start >= end {
		rep.Errorf("%s: opening %s is not before closing %s; marked closed", label, start, end)
		return restaurant.Closed
	}
	return start + restaurant.HoursSeparator + end
}

// Hours maps localized day keys to the seven canonical days. Days absent from
// raw are closed with one assumption each.
func Hours(raw map[string]string, rep *report.Report) restaurant.Hours {
	out := make(restaurant.Hours, len(restaurant.Weekdays))
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		day, ok := restaurant.ParseWeekday(k)
		if !ok {
			rep.Errorf("unknown day %q ignored", k)
			continue
		}
		if _, dup := out[day]; dup {
			continue
		}
		out[day] = DayHours(day, raw[k], rep)
	}
	for _, day := range restaurant.Weekdays {
		if _, ok := out[day]; !ok {
			out[day] = restaurant.Closed
			rep.Assumef("no hours stated for %s; assumed closed", day)
		}
	}
	return out
}

// Price reads the first number in raw. Known currency markers override
// defaultCurrency. It returns nil when raw has no number.
func Price(raw, defaultCurrency string) *restaurant.Price {
	num := numberRe.FindString(raw)
	if num == "" {
		return nil
	}
	num = strings.NewReplacer(" ", "", "\u00a0", "").Replace(num)
	amount, err := strconv.ParseFloat(strings.Replace(num, ",", ".", 1), 64)
	if err != nil {
		return nil
	}
	return &restaurant.Price{
		Amount:      amount,
		Currency:    currency(raw, defaultCurrency),
		Approximate: approxRe.MatchString(raw),
	}
}

func currency(raw, fallback string) string {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "kr"), strings.Contains(lower, ":-"), strings.Contains(lower, "sek"):
		return "SEK"
	case strings.Contains(lower, "€"), strings.Contains(lower, "eur"):
		return "EUR"
	case strings.Contains(lower, "$"), strings.Contains(lower, "usd"):
		return "USD"
	}
	return fallback
}

// Email validates and lowercases raw. Invalid addresses are dropped with an
// error entry.
func Email(raw string, rep *report.Report) string {
	s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "mailto:"))
	if s == "" {
		return ""
	}
	if !emailRe.MatchString(s) {
		rep.Errorf("invalid email %q dropped", raw)
		return ""
	}
	return strings.ToLower(s)
}

// Allergens maps values to the canonical vocabulary. Unknown values are kept
// as written, with an assumption entry.
func Allergens(raw []string, rep *report.Report) []string {
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if canonical, ok := restaurant.CanonicalAllergen(v); ok {
			out = append(out, canonical)
			continue
		}
		rep.Assumef("unrecognized allergen %q kept as written", v)
		out = append(out, v)
	}
	return restaurant.SortAllergens(out)
}

// Date resolves YYYY-MM-DD, D/M[/YYYY] and "D month [YYYY]" to YYYY-MM-DD.
// A date without a year takes the next occurrence on or after ref.
func Date(raw string, ref time.Time) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	var year, day int
	var month time.Month

	switch {
	case isoDateRe.MatchString(s):
		m := isoDateRe.FindStringSubmatch(s)
		year, _ = strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		month = time.Month(mm)
		day, _ = strconv.Atoi(m[3])
	case slashRe.MatchString(s):
		m := slashRe.FindStringSubmatch(s)
		day, _ = strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		month = time.Month(mm)
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
		}
	case dayMonthRe.MatchString(s):
		m := dayMonthRe.FindStringSubmatch(s)
		day, _ = strconv.Atoi(m[1])
		var ok bool
		if month, ok = restaurant.ParseMonth(m[2]); !ok {
			return "", false
		}
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
		}
	default:
		return "", false
	}
	if month < time.January || month > time.December || day < 1 || day > 31 {
		return "", false
	}
	if year == 0 {
		year = ref.Year()
		candidate := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		today := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
		if candidate.Before(today) {
			year++
		}
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		return "", false
	}
	return t.Format(time.DateOnly), true
}

// Address collapses whitespace and formats Swedish postal codes as "NNN NN".
func Address(raw string) string {
	s := strings.Trim(strings.Join(strings.Fields(raw), " "), " ,")
	s = strings.ReplaceAll(s, " ,", ",")
	return postalRe.ReplaceAllString(s, "$1 $2$3")
}

const maxAboutRunes = 400

// About collapses whitespace and cuts long texts at the last sentence or word
// boundary within maxAboutRunes.
func About(raw string) string {
	s := strings.Join(strings.Fields(raw), " ")
	runes := []rune(s)
	if len(runes) <= maxAboutRunes {
		return s
	}
	cut := string(runes[:maxAboutRunes])
	if i := strings.LastIndex(cut, ". "); i > maxAboutRunes/2 {
		return cut[:i+1]
	}
	if i := strings.LastIndex(cut, " "); i > 0 {
		return cut[:i] + "…"
	}
	return cut + "…"
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
