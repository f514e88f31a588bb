package normalize

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/restaurant-knowledge/internal/metrics"
	"github.com/JakeFAU/restaurant-knowledge/internal/report"
	"github.com/JakeFAU/restaurant-knowledge/internal/restaurant"
)

// DefaultMenuCategory is used for dishes found outside any menu section.
const DefaultMenuCategory = "Rätter"

// Clock supplies the UpdatedAt timestamp.
type Clock interface {
	Now() time.Time
}

// Config holds locale defaults applied during normalization.
type Config struct {
	DefaultCountryCode string
	DefaultCurrency    string
	Timezone           string
	// KnownCities are the city names recognized in contact text. Empty
	// selects restaurant.CityNames().
	KnownCities        []string
}

// DefaultConfig returns Swedish defaults.
func DefaultConfig() Config {
	return Config{
		DefaultCountryCode: "+46",
		DefaultCurrency:    "SEK",
		Timezone:           "Europe/Stockholm",
	}
}

// Input is everything known about one location before normalization.
type Input struct {
	Sources      []Source
	ContactBlobs []string
	IsChain      bool
	Website      string
	SourceURLs   []string
}

// Result is the outcome of one normalization pass. Report belongs to this
// pass only.
type Result struct {
	Info   *restaurant.Info
	Report *report.Report
	Emit   bool
	Fields FieldStates
}

// Normalizer turns Inputs into validated records. It holds no per-pass state
// and is safe for concurrent use.
type Normalizer struct {
	cfg    Config
	clock  Clock
	digits DigitSource
	logger *zap.Logger
}

// New builds a Normalizer. clock and digits are required.
func New(cfg Config, clock Clock, digits DigitSource, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.KnownCities) == 0 {
		cfg.KnownCities = restaurant.CityNames()
	}
	return &Normalizer{cfg: cfg, clock: clock, digits: digits, logger: logger}
}

// Normalize runs one pass: merge, recover from free text, canonicalize,
// apply chain placeholders and validate.
func (n *Normalizer) Normalize(in Input) Result {
	rep := report.New()
	now := n.clock.Now()

	f := Merge(in.Sources)
	f.Name = collapse(f.Name)
	f.Brand = collapse(f.Brand)
	f.City = collapse(f.City)
	states := newFieldStates(f)
	recoverFromBlobs(&f, in.ContactBlobs, n.cfg.KnownCities, states, rep)

	website := f.Website
	if website == "" {
		website = in.Website
	}
	info := &restaurant.Info{
		Name:       f.Name,
		Brand:      f.Brand,
		City:       f.City,
		Website:    website,
		Timezone:   n.cfg.Timezone,
		SourceURLs: dedup(in.SourceURLs),
		UpdatedAt:  now,
	}
	info.Phone = Phone(f.Phone, n.cfg.DefaultCountryCode, rep)
	info.Email = Email(f.Email, rep)
	info.Address = Address(f.Address)
	for field, value := range map[string]string{
		FieldName:    info.Name,
		FieldBrand:   info.Brand,
		FieldCity:    info.City,
		FieldPhone:   info.Phone,
		FieldEmail:   info.Email,
		FieldAddress: info.Address,
	} {
		states.settle(field, value)
	}

	if len(f.Hours) == 0 {
		states.defaulted(FieldHours)
	}
	info.Hours = Hours(f.Hours, rep)
	info.SpecialHours = n.specialHours(f.SpecialHours, now, rep)
	info.Menu = n.menu(f.Menu, rep)
	info.Booking = booking(f.Booking)
	info.Messages = dedup(f.Messages)
	info.About = About(f.About)
	info.Slug = slugFor(info)

	if in.IsChain {
		n.applyChainPlaceholders(info, states, rep)
	}
	emit := validate(info, in.IsChain, states, rep)

	metrics.ObserveReportEntries("error", len(rep.Errors))
	metrics.ObserveReportEntries("fix", len(rep.Fixes))
	metrics.ObserveReportEntries("assumption", len(rep.Assumptions))
	outcome := "emitted"
	if !emit {
		outcome = "rejected"
	}
	metrics.ObserveLocation(outcome)

	n.logger.Debug("Normalized location",
		zap.String("slug", info.Slug),
		zap.Bool("chain", in.IsChain),
		zap.Bool("emit", emit),
		zap.Int("errors", len(rep.Errors)),
		zap.Int("fixes", len(rep.Fixes)),
		zap.Int("assumptions", len(rep.Assumptions)),
	)
	return Result{Info: info, Report: rep, Emit: emit, Fields: states}
}

func (n *Normalizer) applyChainPlaceholders(info *restaurant.Info, states FieldStates, rep *report.Report) {
	seed := info.Slug
	if info.Phone == "" {
		info.Phone = placeholderPhone(info.City, seed, n.cfg.DefaultCountryCode, n.digits)
		states.defaulted(FieldPhone)
		info.DataQuality = restaurant.DataQualityEstimated
		rep.Assumef("chain location %q has no phone; using estimated %s", info.Name, info.Phone)
	}
	if info.Address == "" {
		info.Address = placeholderAddress(info.City, seed, n.digits)
		states.defaulted(FieldAddress)
		info.DataQuality = restaurant.DataQualityEstimated
		rep.Assumef("chain location %q has no address; using estimated %q", info.Name, info.Address)
	}
}

func (n *Normalizer) specialHours(raw []RawSpecialHours, now time.Time, rep *report.Report) []restaurant.SpecialHours {
	out := make([]restaurant.SpecialHours, 0, len(raw))
	seen := make(map[string]bool)
	for _, s := range raw {
		date, ok := Date(s.DateText, now)
		if !ok {
			rep.Errorf("unparseable special-hours date %q dropped", s.DateText)
			continue
		}
		if seen[date] {
			continue
		}
		seen[date] = true
		out = append(out, restaurant.SpecialHours{
			Date:  date,
			Hours: rangeHours(date, s.HoursText, rep),
			Note:  collapse(s.Note),
		})
	}
	return out
}

func (n *Normalizer) menu(raw []RawMenuItem, rep *report.Report) []restaurant.MenuItem {
	out := make([]restaurant.MenuItem, 0, len(raw))
	for _, r := range raw {
		title := collapse(r.Title)
		if title == "" {
			rep.Errorf("menu item without title dropped")
			continue
		}
		category := collapse(r.Category)
		if category == "" {
			category = DefaultMenuCategory
		}
		item := restaurant.MenuItem{
			Title:       title,
			Description: collapse(r.Description),
			Category:    category,
			Allergens:   Allergens(r.Allergens, rep),
			Labels:      Labels(r),
		}
		if strings.TrimSpace(r.PriceText) != "" {
			if item.Price = Price(r.PriceText, n.cfg.DefaultCurrency); item.Price == nil {
				rep.Errorf("unparseable price %q for %q", r.PriceText, title)
			}
		}
		out = append(out, item)
	}
	return out
}

func booking(raw RawBooking) restaurant.Booking {
	b := restaurant.DefaultBooking()
	if raw.MaxGuests > 0 {
		b.MaxGuests = raw.MaxGuests
	}
	if raw.LeadTimeMinutes > 0 {
		b.LeadTimeMinutes = raw.LeadTimeMinutes
	}
	if text := collapse(raw.CancellationText); text != "" {
		b.CancellationPolicy = text
	}
	return b
}

func slugFor(info *restaurant.Info) string {
	if s := restaurant.Slugify(info.Name); s != "" {
		return s
	}
	if s := restaurant.Slugify(info.Brand + " " + info.City); s != "" {
		return s
	}
	return restaurant.Slugify(info.Website)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func dedup(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = collapse(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
