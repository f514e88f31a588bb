package extract

import (
	"net/url"
	"strings"
)

var categoryKeywords = []struct {
	category Category
	words    []string
}{
	{CategoryMenu, []string{"meny", "menu", "lunch", "mat", "food", "dryck", "drinks", "a-la-carte", "à la carte"}},
	{CategoryBooking, []string{"boka", "booking", "bordsbokning", "reservation", "reserve"}},
	{CategoryHours, []string{"öppettider", "oppettider", "opening-hours", "hours", "öppet"}},
	{CategoryContact, []string{"kontakt", "contact", "hitta-hit", "hitta hit", "find-us"}},
	{CategoryAbout, []string{"om-oss", "om oss", "about", "historia", "story"}},
}

// Categorize classifies a page by URL path, then by title and headings.
func Categorize(pageURL, title string, headings []string) Category {
	if u, err := url.Parse(pageURL); err == nil {
		for _, segment := range strings.Split(strings.ToLower(u.Path), "/") {
			if c, ok := matchCategory(segment); ok {
				return c
			}
		}
	}
	texts := append([]string{title}, headings...)
	for _, text := range texts {
		if c, ok := matchCategory(strings.ToLower(text)); ok {
			return c
		}
	}
	return CategoryGeneral
}

func matchCategory(text string) (Category, bool) {
	if text == "" {
		return "", false
	}
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '.' || r == '|' || r == ','
	})
	for _, ck := range categoryKeywords {
		for _, w := range ck.words {
			if len(w) >= 4 && strings.Contains(text, w) {
				return ck.category, true
			}
			for _, tok := range tokens {
				if tok == w {
					return ck.category, true
				}
			}
		}
	}
	return "", false
}
