package normalize

import (
	"strings"

	"github.com/JakeFAU/restaurant-knowledge/internal/extract"
	"github.com/JakeFAU/restaurant-knowledge/internal/location"
)

// InfoBuilder assembles a normalization Input for one location from the
// site's extracted pages.
type InfoBuilder struct{}

// NewInfoBuilder returns an InfoBuilder.
func NewInfoBuilder() *InfoBuilder {
	return &InfoBuilder{}
}

// Build combines the location's identity with site-wide facts. When the site
// has several locations, site-wide contact details and contact text are left
// out so one location's phone or address never leaks into another.
func (b *InfoBuilder) Build(loc location.Candidate, site extract.Content, pages []extract.Content, locationCount int) Input {
	official := Fields{
		Name:     loc.Name,
		Brand:    location.Brand(site),
		Address:  loc.Address,
		City:     loc.City,
		Phone:    loc.Phone,
		Email:    loc.Email,
		Website:  site.URL,
		Hours:    site.HoursCandidate,
		Booking:  bookingFields(site.Booking),
		Messages: site.Messages,
		About:    aboutText(site, pages),
	}
	for _, s := range site.SpecialHours {
		official.SpecialHours = append(official.SpecialHours, RawSpecialHours{
			DateText:  s.DateText,
			HoursText: s.HoursText,
			Note:      s.Note,
		})
	}

	sources := []Source{{Origin: site.URL, Priority: PriorityOfficial, Fields: official}}
	var menuPageItems []extract.MenuCandidate
	for _, page := range pages {
		if page.Category == extract.CategoryMenu {
			menuPageItems = append(menuPageItems, page.MenuItemCandidates...)
		}
	}
	if len(menuPageItems) > 0 {
		sources = append(sources, Source{
			Origin:   site.URL,
			Priority: PriorityMenuPage,
			Fields:   Fields{Menu: menuFields(menuPageItems)},
		})
	} else {
		// No dedicated menu page: dishes found anywhere on the site count.
		sources[0].Fields.Menu = menuFields(site.MenuItemCandidates)
	}

	urls := make([]string, 0, len(pages))
	for _, p := range pages {
		urls = append(urls, p.URL)
	}

	in := Input{
		Sources:    sources,
		IsChain:    loc.IsChain,
		Website:    site.URL,
		SourceURLs: urls,
	}
	if locationCount <= 1 {
		in.ContactBlobs = []string{site.FullText}
	}
	return in
}

// aboutText prefers a dedicated about page over the home page summary.
func aboutText(site extract.Content, pages []extract.Content) string {
	for _, p := range pages {
		if p.Category == extract.CategoryAbout && p.Summary != "" {
			return p.Summary
		}
	}
	return site.Summary
}

func menuFields(candidates []extract.MenuCandidate) []RawMenuItem {
	out := make([]RawMenuItem, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		key := strings.ToLower(c.Title)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, RawMenuItem{
			Title:       c.Title,
			Description: c.Description,
			Category:    c.Section,
			PriceText:   c.PriceText,
			Allergens:   extract.ExtractAllergens(c.Title + "\n" + c.Description),
		})
	}
	return out
}

func bookingFields(b extract.BookingCandidate) RawBooking {
	return RawBooking{
		MaxGuests:        b.MaxGuests,
		LeadTimeMinutes:  b.LeadTimeMinutes,
		CancellationText: b.CancellationText,
	}
}
