// Package restaurant defines the canonical validated restaurant record.
package restaurant

import "time"

// Weekday is a canonical lowercase English day key.
type Weekday string

// Canonical weekday keys.
const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays lists the canonical days in calendar order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Closed is the hours value for a day without service.
const Closed = "closed"

// HoursSeparator joins the start and end of an opening range.
const HoursSeparator = "–"

// DataQualityEstimated marks records carrying generated placeholder values.
const DataQualityEstimated = "estimated"

// Hours maps each weekday to "closed" or "HH:MM–HH:MM".
type Hours map[Weekday]string

// Price is a normalized menu price.
type Price struct {
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Approximate bool    `json:"approximate"`
}

// MenuItem is one normalized dish.
type MenuItem struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category"`
	Price       *Price   `json:"price,omitempty"`
	Allergens   []string `json:"allergens"`
	Labels      []string `json:"labels"`
}

// SpecialHours overrides regular hours for a single date.
type SpecialHours struct {
	Date  string `json:"date"`
	Hours string `json:"hours"`
	Note  string `json:"note,omitempty"`
}

// Booking captures table reservation rules.
type Booking struct {
	MinGuests             int    `json:"minGuests"`
	MaxGuests             int    `json:"maxGuests"`
	LeadTimeMinutes       int    `json:"leadTimeMinutes"`
	DiningDurationMinutes int    `json:"diningDurationMinutes"`
	GroupOverflowRule     string `json:"groupOverflowRule"`
	CancellationPolicy    string `json:"cancellationPolicy"`
}

// DefaultBooking returns the rules assumed when a site states none.
func DefaultBooking() Booking {
	return Booking{
		MinGuests:             1,
		MaxGuests:             8,
		LeadTimeMinutes:       120,
		DiningDurationMinutes: 120,
		GroupOverflowRule:     "contact restaurant",
		CancellationPolicy:    "free cancellation up to 2 hours before",
	}
}

// Info is the canonical restaurant record handed to downstream writers.
type Info struct {
	Slug         string         `json:"slug"`
	Name         string         `json:"name"`
	Brand        string         `json:"brand,omitempty"`
	Address      string         `json:"address"`
	City         string         `json:"city"`
	Phone        string         `json:"phone"`
	Email        string         `json:"email,omitempty"`
	Website      string         `json:"website"`
	Timezone     string         `json:"timezone"`
	SourceURLs   []string       `json:"sourceUrls"`
	Hours        Hours          `json:"hours"`
	SpecialHours []SpecialHours `json:"specialHours"`
	Menu         []MenuItem     `json:"menu"`
	Booking      Booking        `json:"booking"`
	Messages     []string       `json:"messages"`
	About        string         `json:"about,omitempty"`
	DataQuality  string         `json:"dataQuality,omitempty"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// IndexEntry summarizes one emitted record in the global index document.
type IndexEntry struct {
	Slug          string            `json:"slug"`
	Name          string            `json:"name"`
	Brand         string            `json:"brand,omitempty"`
	City          string            `json:"city"`
	Timezone      string            `json:"timezone"`
	UpdatedAt     time.Time         `json:"updatedAt"`
	ArtifactPaths map[string]string `json:"artifactPaths"`
}

// Artifact file names written per record.
const (
	InfoFile      = "info.json"
	KnowledgeFile = "knowledge.jsonl"
	ReportFile    = "report.txt"
	IndexFile     = "index.json"
)

// ArtifactPaths returns the per-record artifact paths relative to the output
// prefix, keyed by artifact kind.
func ArtifactPaths(slug string) map[string]string {
	return map[string]string{
		"info":      slug + "/" + InfoFile,
		"knowledge": slug + "/" + KnowledgeFile,
		"report":    slug + "/" + ReportFile,
	}
}
