package normalize

import (
	"regexp"

	"github.com/JakeFAU/restaurant-knowledge/internal/report"
	"github.com/JakeFAU/restaurant-knowledge/internal/restaurant"
)

var hoursValueRe = regexp.MustCompile(`^(\d{2}:\d{2})` + restaurant.HoursSeparator + `(\d{2}:\d{2})$`)

// validate reports whether info may be emitted. Chains only need a name;
// single restaurants also need phone and address.
func validate(info *restaurant.Info, chain bool, states FieldStates, rep *report.Report) bool {
	emit := true
	if info.Name == "" {
		rep.Errorf("missing restaurant name; record not emitted")
		emit = false
	}
	if !chain {
		if info.Phone == "" {
			rep.Errorf("missing phone for %q", info.Name)
			emit = false
		}
		if info.Address == "" {
			rep.Errorf("missing address for %q", info.Name)
			emit = false
		}
	}
	if err := CheckHours(info.Hours); err != "" {
		rep.Errorf("hours invariant violated: %s", err)
		emit = false
	}
	if len(info.Menu) == 0 {
		states.defaulted(FieldMenu)
		rep.Assumef("no menu items found; generic menu answers will be used")
	}
	return emit
}

// CheckHours returns a description of the first violation of the seven-day
// hours shape, or "" when hours are well formed.
func CheckHours(h restaurant.Hours) string {
	if len(h) != len(restaurant.Weekdays) {
		return "expected exactly seven days"
	}
	for _, day := range restaurant.Weekdays {
		v, ok := h[day]
		if !ok {
			return string(day) + " missing"
		}
		if v == restaurant.Closed {
			continue
		}
		m := hoursValueRe.FindStringSubmatch(v)
		if m == nil {
			return string(day) + " has malformed value " + v
		}
		if m[1] >= m[2] {
			return string(day) + " opens after it closes"
		}
	}
	return ""
}
