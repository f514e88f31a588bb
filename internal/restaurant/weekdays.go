package restaurant

import (
	"sort"
	"strings"
	"unicode/utf8"
)

var weekdayAliases = map[string]Weekday{
	"monday": Monday, "mon": Monday, "måndag": Monday, "måndagar": Monday, "mån": Monday, "må": Monday, "mo": Monday,
	"tuesday": Tuesday, "tue": Tuesday, "tues": Tuesday, "tisdag": Tuesday, "tisdagar": Tuesday, "tis": Tuesday, "ti": Tuesday, "tu": Tuesday,
	"wednesday": Wednesday, "wed": Wednesday, "onsdag": Wednesday, "onsdagar": Wednesday, "ons": Wednesday, "on": Wednesday, "we": Wednesday,
	"thursday": Thursday, "thu": Thursday, "thurs": Thursday, "torsdag": Thursday, "torsdagar": Thursday, "tors": Thursday, "tor": Thursday, "to": Thursday, "th": Thursday,
	"friday": Friday, "fri": Friday, "fredag": Friday, "fredagar": Friday, "fre": Friday, "fr": Friday,
	"saturday": Saturday, "sat": Saturday, "lördag": Saturday, "lördagar": Saturday, "lör": Saturday, "lö": Saturday, "sa": Saturday,
	"sunday": Sunday, "sun": Sunday, "söndag": Sunday, "söndagar": Sunday, "sön": Sunday, "sö": Sunday, "su": Sunday,
}

// ParseWeekday maps a localized day name or abbreviation to its canonical key.
func ParseWeekday(raw string) (Weekday, bool) {
	key := strings.Trim(strings.ToLower(strings.TrimSpace(raw)), ".:,")
	d, ok := weekdayAliases[key]
	return d, ok
}

// WeekdayAliases returns aliases of at least minRunes letters, longest first,
// suitable for building an alternation regexp.
func WeekdayAliases(minRunes int) []string {
	out := make([]string, 0, len(weekdayAliases))
	for alias := range weekdayAliases {
		if utf8.RuneCountInString(alias) >= minRunes {
			out = append(out, alias)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(out[i]), utf8.RuneCountInString(out[j])
		if li != lj {
			return li > lj
		}
		return out[i] < out[j]
	})
	return out
}

// WeekdayIndex returns the position of d in Weekdays, or -1.
func WeekdayIndex(d Weekday) int {
	for i, w := range Weekdays {
		if w == d {
			return i
		}
	}
	return -1
}

// DayRange expands from..to inclusive, wrapping past Sunday.
func DayRange(from, to Weekday) []Weekday {
	start, end := WeekdayIndex(from), WeekdayIndex(to)
	if start < 0 || end < 0 {
		return nil
	}
	var out []Weekday
	for i := start; ; i = (i + 1) % len(Weekdays) {
		out = append(out, Weekdays[i])
		if i == end {
			return out
		}
	}
}
