package normalize

import "sort"

// Priority ranks how far a source is trusted. Higher values win merges.
type Priority int

// Source priorities, lowest trust first.
const (
	PriorityThirdParty Priority = iota
	PrioritySocial
	PriorityMenuPage
	PriorityOfficial
)

func (p Priority) String() string {
	switch p {
	case PriorityThirdParty:
		return "third-party"
	case PrioritySocial:
		return "social"
	case PriorityMenuPage:
		return "menu-page"
	case PriorityOfficial:
		return "official"
	default:
		return "unknown"
	}
}

// RawMenuItem is a dish before normalization.
type RawMenuItem struct {
	Title       string
	Description string
	Category    string
	PriceText   string
	Allergens   []string
	Labels      []string
}

// RawSpecialHours is a date exception before normalization.
type RawSpecialHours struct {
	DateText  string
	HoursText string
	Note      string
}

// RawBooking carries stated reservation rules. Zero values mean "not stated".
type RawBooking struct {
	MaxGuests        int
	LeadTimeMinutes  int
	CancellationText string
}

// Fields is one source's view of a restaurant. Empty values are absent.
type Fields struct {
	Name         string
	Brand        string
	Address      string
	City         string
	Phone        string
	Email        string
	Website      string
	Hours        map[string]string
	SpecialHours []RawSpecialHours
	Menu         []RawMenuItem
	Booking      RawBooking
	Messages     []string
	About        string
}

// Source pairs Fields with where they came from and how far to trust them.
type Source struct {
	Origin   string
	Priority Priority
	Fields   Fields
}

// Merge applies sources in ascending priority so that, per field, the most
// trusted non-empty value is written last. Equal priorities keep input order.
func Merge(sources []Source) Fields {
	ordered := make([]Source, len(sources))
	copy(ordered, sources)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Priority < ordered[j].Priority })

	var out Fields
	for _, src := range ordered {
		f := src.Fields
		overwrite(&out.Name, f.Name)
		overwrite(&out.Brand, f.Brand)
		overwrite(&out.Address, f.Address)
		overwrite(&out.City, f.City)
		overwrite(&out.Phone, f.Phone)
		overwrite(&out.Email, f.Email)
		overwrite(&out.Website, f.Website)
		overwrite(&out.About, f.About)
		if len(f.Hours) > 0 {
			out.Hours = f.Hours
		}
		if len(f.SpecialHours) > 0 {
			out.SpecialHours = f.SpecialHours
		}
		if len(f.Menu) > 0 {
			out.Menu = f.Menu
		}
		if len(f.Messages) > 0 {
			out.Messages = f.Messages
		}
		if f.Booking.MaxGuests > 0 {
			out.Booking.MaxGuests = f.Booking.MaxGuests
		}
		if f.Booking.LeadTimeMinutes > 0 {
			out.Booking.LeadTimeMinutes = f.Booking.LeadTimeMinutes
		}
		overwrite(&out.Booking.CancellationText, f.Booking.CancellationText)
	}
	return out
}

func overwrite(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
