package extract

import (
	"sort"
	"strings"

	"github.com/JakeFAU/restaurant-knowledge/internal/restaurant"
)

// Pages are consulted in this order when a site-level field takes the first
// non-empty page value.
var factPriority = map[Category]int{
	CategoryHours:   0,
	CategoryContact: 1,
	CategoryGeneral: 2,
	CategoryAbout:   3,
	CategoryBooking: 4,
	CategoryMenu:    5,
}

// MergeSite folds per-page contents into one site-level Content. The first
// page supplies URL and title when present.
func MergeSite(pages []Content) Content {
	if len(pages) == 0 {
		return emptyContent("")
	}
	site := emptyContent(pages[0].URL)
	site.Title = pages[0].Title
	site.Description = pages[0].Description
	site.Summary = pages[0].Summary

	byFacts := make([]Content, len(pages))
	copy(byFacts, pages)
	sortByPriority(byFacts)

	menu := newMenuAccumulator()
	for _, p := range pages {
		if p.Category == CategoryMenu {
			menu.addAll(p.MenuItemCandidates)
		}
	}
	for _, p := range pages {
		if p.Category != CategoryMenu {
			menu.addAll(p.MenuItemCandidates)
		}
	}
	site.MenuItemCandidates = menu.items

	var mainTexts, fullTexts []string
	var allergens []string
	seenHeading := make(map[string]bool)
	seenLink := make(map[string]bool)
	seenMessage := make(map[string]bool)
	seenSpecial := make(map[string]bool)
	for _, p := range pages {
		if site.Title == "" {
			site.Title = p.Title
		}
		mainTexts = append(mainTexts, p.MainText)
		fullTexts = append(fullTexts, p.FullText)
		allergens = append(allergens, p.Allergens...)
		for _, h := range p.Headings {
			if !seenHeading[h] {
				seenHeading[h] = true
				site.Headings = append(site.Headings, h)
			}
		}
		for _, l := range p.Links {
			if !seenLink[l] {
				seenLink[l] = true
				site.Links = append(site.Links, l)
			}
		}
		for _, m := range p.Messages {
			if !seenMessage[m] && len(site.Messages) < maxMessages {
				seenMessage[m] = true
				site.Messages = append(site.Messages, m)
			}
		}
		for _, s := range p.SpecialHours {
			if !seenSpecial[s.DateText] {
				seenSpecial[s.DateText] = true
				site.SpecialHours = append(site.SpecialHours, s)
			}
		}
	}
	site.MainText = joinLines(mainTexts...)
	site.FullText = joinLines(fullTexts...)
	site.Allergens = restaurant.SortAllergens(allergens)

	for _, p := range byFacts {
		if len(site.HoursCandidate) == 0 && len(p.HoursCandidate) > 0 {
			for k, v := range p.HoursCandidate {
				site.HoursCandidate[k] = v
			}
		}
		c := p.ContactCandidate
		if site.ContactCandidate.Phone == "" {
			site.ContactCandidate.Phone = c.Phone
		}
		if site.ContactCandidate.Email == "" {
			site.ContactCandidate.Email = c.Email
		}
		if site.ContactCandidate.Address == "" && c.Address != "" {
			site.ContactCandidate.Address = c.Address
			site.ContactCandidate.PostalCode = c.PostalCode
			site.ContactCandidate.City = c.City
		}
		if site.Booking.MaxGuests == 0 {
			site.Booking.MaxGuests = p.Booking.MaxGuests
		}
		if site.Booking.LeadTimeMinutes == 0 {
			site.Booking.LeadTimeMinutes = p.Booking.LeadTimeMinutes
		}
		if site.Booking.CancellationText == "" {
			site.Booking.CancellationText = p.Booking.CancellationText
		}
	}
	return site
}

func sortByPriority(pages []Content) {
	sort.SliceStable(pages, func(i, j int) bool {
		return factPriority[pages[i].Category] < factPriority[pages[j].Category]
	})
}

// TitleBrand derives a brand name from a page title such as
// "Pizzeria Roma | Meny" by dropping the trailing section.
func TitleBrand(title string) string {
	for _, sep := range []string{" | ", " – ", " - ", " — ", " :: "} {
		if i := strings.Index(title, sep); i > 0 {
			return strings.TrimSpace(title[:i])
		}
	}
	return strings.TrimSpace(title)
}
