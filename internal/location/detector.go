// Package location decides whether a site describes one restaurant or a chain
// of several physical locations.
package location

import (
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/restaurant-knowledge/internal/extract"
	"github.com/JakeFAU/restaurant-knowledge/internal/restaurant"
)

// Detection methods recorded on each candidate.
const (
	MethodBlocks = "blocks"
	MethodCities = "cities"
	MethodSingle = "single"
)

// Candidate is a tentative physical location found before normalization.
type Candidate struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	IsChain bool   `json:"isChain"`
	Method  string `json:"method"`
}

var (
	travelRe     = regexp.MustCompile(`(?i)(?:från|from)\s+\p{L}+\s+(?:till|to)\s+\p{L}+`)
	routeRe      = regexp.MustCompile(`(\p{L}+)\s*[–—-]\s*(\p{L}+)`)
	genericEmail = []string{"info@", "kontakt@", "contact@", "hello@", "hej@", "mail@"}
)

// Detector finds locations in site content.
type Detector struct {
	knownCities []string
	logger      *zap.Logger
}

// NewDetector returns a Detector recognizing knownCities. An empty list
// selects restaurant.CityNames().
func NewDetector(knownCities []string, logger *zap.Logger) *Detector {
	if len(knownCities) == 0 {
		knownCities = restaurant.CityNames()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{knownCities: knownCities, logger: logger}
}

// DetectLocations always returns at least one candidate: repeated contact
// blocks first, then distinct city mentions, then the content itself.
func (d *Detector) DetectLocations(content extract.Content) []Candidate {
	locations := d.fromBlocks(content)
	if len(locations) < 2 {
		locations = d.fromCities(content)
	}
	if len(locations) < 2 {
		locations = []Candidate{d.single(content)}
	}
	for i := range locations {
		locations[i].IsChain = d.IsChain(locations[i], content)
	}
	d.logger.Info("Detected locations",
		zap.String("url", content.URL),
		zap.Int("count", len(locations)),
		zap.String("method", locations[0].Method),
	)
	return locations
}

// IsChain reports whether at least two chain signals hold for loc.
func (d *Detector) IsChain(loc Candidate, content extract.Content) bool {
	email := loc.Email
	if email == "" {
		email = content.ContactCandidate.Email
	}
	signals := 0
	if loc.Phone == "" && loc.Address == "" && isGenericEmail(email) {
		signals++
	}
	if len(d.cityMentions(content.FullText)) >= 2 {
		signals++
	}
	if isGenericEmail(email) {
		signals++
	}
	if len(content.HoursCandidate) == 0 {
		signals++
	}
	return signals >= 2
}

// fromBlocks scans for NAME / STREET NN, POSTCODE CITY / PHONE line groups.
func (d *Detector) fromBlocks(content extract.Content) []Candidate {
	lines := strings.Split(content.FullText, "\n")
	var out []Candidate
	seen := make(map[string]bool)
	for i := 1; i < len(lines); i++ {
		address, _, city := extract.FindAddress(lines[i])
		if address == "" || seen[address] {
			continue
		}
		name := strings.TrimSpace(lines[i-1])
		if !plausibleName(name) {
			continue
		}
		phone := ""
		for j := i; j < len(lines) && j <= i+2 && phone == ""; j++ {
			phone = extract.FindPhone(lines[j])
		}
		if phone == "" {
			continue
		}
		seen[address] = true
		out = append(out, Candidate{
			Name:    name,
			Address: address,
			City:    city,
			Phone:   phone,
			Email:   extract.FindEmail(strings.Join(lines[i:min(len(lines), i+3)], "\n")),
			Method:  MethodBlocks,
		})
	}
	return out
}

func (d *Detector) fromCities(content extract.Content) []Candidate {
	cities := d.cityMentions(content.FullText)
	if len(cities) < 2 {
		return nil
	}
	brand := Brand(content)
	out := make([]Candidate, 0, len(cities))
	for _, city := range cities {
		out = append(out, Candidate{
			Name:   strings.TrimSpace(brand + " " + city),
			City:   city,
			Email:  content.ContactCandidate.Email,
			Method: MethodCities,
		})
	}
	return out
}

func (d *Detector) single(content extract.Content) Candidate {
	c := content.ContactCandidate
	city := c.City
	if city == "" {
		if mentions := d.cityMentions(content.FullText); len(mentions) > 0 {
			city = mentions[0]
		}
	}
	return Candidate{
		Name:    Brand(content),
		Address: c.Address,
		City:    city,
		Phone:   c.Phone,
		Email:   c.Email,
		Method:  MethodSingle,
	}
}

// cityMentions lists known cities used as location references, in order of
// first appearance. Travel phrasing and routes between cities are ignored.
func (d *Detector) cityMentions(text string) []string {
	text = travelRe.ReplaceAllString(text, " ")
	text = routeRe.ReplaceAllStringFunc(text, func(m string) string {
		parts := routeRe.FindStringSubmatch(m)
		if d.isKnownCity(parts[1]) && d.isKnownCity(parts[2]) {
			return " "
		}
		return m
	})
	lower := strings.ToLower(text)

	type hit struct {
		pos  int
		city string
	}
	var hits []hit
	for _, city := range d.knownCities {
		if pos := wordIndex(lower, strings.ToLower(city)); pos >= 0 {
			hits = append(hits, hit{pos: pos, city: city})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.city
	}
	return out
}

func (d *Detector) isKnownCity(word string) bool {
	for _, c := range d.knownCities {
		if strings.EqualFold(c, word) {
			return true
		}
	}
	return false
}

// Brand is the site's display name: the title without its section suffix,
// else the first heading.
func Brand(content extract.Content) string {
	if b := extract.TitleBrand(content.Title); b != "" {
		return b
	}
	if len(content.Headings) > 0 {
		return content.Headings[0]
	}
	return ""
}

func plausibleName(s string) bool {
	n := len([]rune(s))
	if n < 2 || n > 60 || strings.ContainsAny(s, "0123456789@") {
		return false
	}
	return !strings.Contains(strings.ToLower(s), "öppet")
}

func isGenericEmail(email string) bool {
	lower := strings.ToLower(email)
	for _, prefix := range genericEmail {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// wordIndex finds word in s bounded by non-letters on both sides.
func wordIndex(s, word string) int {
	offset := 0
	for {
		i := strings.Index(s[offset:], word)
		if i < 0 {
			return -1
		}
		start := offset + i
		end := start + len(word)
		if !letterBefore(s, start) && !letterAfter(s, end) {
			return start
		}
		offset = end
	}
}
