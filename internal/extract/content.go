// Package extract turns crawled HTML into structured restaurant signals.
package extract

// Category classifies a page by the part of a restaurant site it covers.
type Category string

// Page categories.
const (
	CategoryGeneral Category = "general"
	CategoryMenu    Category = "menu"
	CategoryContact Category = "contact"
	CategoryHours   Category = "hours"
	CategoryAbout   Category = "about"
	CategoryBooking Category = "booking"
)

// MaxMenuItems caps menu candidates per extraction.
const MaxMenuItems = 20

// MenuCandidate is an unvalidated dish found on a page.
type MenuCandidate struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	PriceText   string `json:"priceText,omitempty"`
	Section     string `json:"section,omitempty"`
	Strategy    string `json:"strategy"`
}

// Contact holds the first contact details found on a page.
type Contact struct {
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
	Address    string `json:"address,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	City       string `json:"city,omitempty"`
}

// Empty reports whether no contact field was found.
func (c Contact) Empty() bool {
	return c == Contact{}
}

// SpecialHoursCandidate is a date-bound opening exception in raw form.
type SpecialHoursCandidate struct {
	DateText  string `json:"dateText"`
	HoursText string `json:"hoursText"`
	Note      string `json:"note,omitempty"`
}

// BookingCandidate carries reservation rules stated on a page.
type BookingCandidate struct {
	MaxGuests        int    `json:"maxGuests,omitempty"`
	LeadTimeMinutes  int    `json:"leadTimeMinutes,omitempty"`
	CancellationText string `json:"cancellationText,omitempty"`
}

// Content is the structured result of extracting one page.
type Content struct {
	URL                string                  `json:"url"`
	Category           Category                `json:"category"`
	Title              string                  `json:"title"`
	Description        string                  `json:"description,omitempty"`
	Summary            string                  `json:"summary,omitempty"`
	Headings           []string                `json:"headings"`
	MainText           string                  `json:"mainText"`
	FullText           string                  `json:"fullText"`
	MenuItemCandidates []MenuCandidate         `json:"menuItemCandidates"`
	HoursCandidate     map[string]string       `json:"hoursCandidate"`
	ContactCandidate   Contact                 `json:"contactCandidate"`
	Allergens          []string                `json:"allergens"`
	Links              []string                `json:"links"`
	SpecialHours       []SpecialHoursCandidate `json:"specialHours,omitempty"`
	Messages           []string                `json:"messages,omitempty"`
	Booking            BookingCandidate        `json:"booking"`
}

func emptyContent(pageURL string) Content {
	return Content{
		URL:            pageURL,
		Category:       CategoryGeneral,
		HoursCandidate: map[string]string{},
	}
}
