package knowledge

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/JakeFAU/restaurant-knowledge/internal/restaurant"
)

// DefaultLargeGroupThreshold is the party size above which groups are handled
// as large bookings.
const DefaultLargeGroupThreshold = 8

// TrackedAllergens are the allergens that get their own question.
var TrackedAllergens = []string{"gluten", "laktos", "nötter", "jordnötter", "ägg", "fisk", "skaldjur", "soja", "sesam"}

var dayNames = map[restaurant.Weekday]string{
	restaurant.Monday:    "måndag",
	restaurant.Tuesday:   "tisdag",
	restaurant.Wednesday: "onsdag",
	restaurant.Thursday:  "torsdag",
	restaurant.Friday:    "fredag",
	restaurant.Saturday:  "lördag",
	restaurant.Sunday:    "söndag",
}

// Generator produces the Q&A set for a record. It holds no per-call state.
type Generator struct {
	largeGroupThreshold int
	allergens           []string
	logger              *zap.Logger
}

// NewGenerator returns a Generator. A threshold ≤ 0 uses
// DefaultLargeGroupThreshold.
func NewGenerator(largeGroupThreshold int, logger *zap.Logger) *Generator {
	if largeGroupThreshold <= 0 {
		largeGroupThreshold = DefaultLargeGroupThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		largeGroupThreshold: largeGroupThreshold,
		allergens:           TrackedAllergens,
		logger:              logger,
	}
}

// set collects items for one record and keeps their ids unique.
type set struct {
	location string
	ids      idAllocator
	items    []Item
}

func (s *set) add(topic, source string, priority int, question, answer string, tags ...string) {
	s.items = append(s.items, Item{
		ID:        s.ids.next(TypeQA, question),
		Type:      TypeQA,
		Question:  question,
		Answer:    answer,
		SourceTag: source,
		Tags:      append([]string{topic}, tags...),
		Location:  s.location,
		Priority:  priority,
	})
}

// Generate builds the items for info. Every topic is covered even when the
// record has no data for it. The result depends only on info.
func (g *Generator) Generate(info *restaurant.Info) []Item {
	s := &set{location: info.Name, ids: idAllocator{}}
	g.hours(s, info)
	g.menu(s, info)
	g.booking(s, info)
	g.contact(s, info)
	g.general(s, info)
	g.promotions(s, info)
	g.logger.Debug("Generated knowledge items", zap.String("slug", info.Slug), zap.Int("items", len(s.items)))
	return s.items
}

func (g *Generator) hours(s *set, info *restaurant.Info) {
	if !hasOpenDay(info.Hours) {
		s.add(TopicHours, SourceFallback, 1, "Vilka är era öppettider?",
			"Vi har inga publicerade öppettider just nu. Ring oss eller besök vår webbplats för aktuella tider.")
	} else {
		s.add(TopicHours, SourceWebsite, 1, "Vilka är era öppettider på vardagar?",
			"Vardagar: "+summarize(info.Hours, restaurant.Weekdays[:5])+".", "weekday")
		s.add(TopicHours, SourceWebsite, 1, "Vilka är era öppettider på helgen?",
			"Helgen: "+summarize(info.Hours, restaurant.Weekdays[5:])+".", "weekend")
	}
	if len(info.SpecialHours) == 0 {
		return
	}
	parts := make([]string, 0, len(info.SpecialHours))
	for _, sh := range info.SpecialHours {
		p := sh.Date + " " + hoursText(sh.Hours)
		if sh.Note != "" {
			p = sh.Date + " (" + sh.Note + ") " + hoursText(sh.Hours)
		}
		parts = append(parts, p)
	}
	s.add(TopicHours, SourceWebsite, 1, "Har ni avvikande öppettider under helgdagar?",
		"Ja, följande datum gäller särskilda tider: "+strings.Join(parts, "; ")+".", "special")
}

func (g *Generator) menu(s *set, info *restaurant.Info) {
	if len(info.Menu) == 0 {
		s.add(TopicMenu, SourceFallback, 2, "Vad finns på menyn?",
			"Vår meny varierar. Fråga gärna personalen om dagens rätter.")
		s.add(TopicMenu, SourceFallback, 2, "Kan ni hantera allergier?",
			"Vi har ingen allergeninformation publicerad. Berätta om din allergi för personalen så hjälper vi dig.", "allergens")
		return
	}

	var categories []string
	counts := map[string]int{}
	for _, item := range info.Menu {
		if counts[item.Category] == 0 {
			categories = append(categories, item.Category)
		}
		counts[item.Category]++
	}
	overview := make([]string, 0, len(categories))
	for _, c := range categories {
		overview = append(overview, fmt.Sprintf("%s (%d %s)", c, counts[c], plural(counts[c], "rätt", "rätter")))
	}
	s.add(TopicMenu, SourceWebsite, 2, "Vad finns på menyn?",
		"Vi serverar "+joinSwedish(overview)+". Exempel: "+joinSwedish(sampleTitles(info.Menu, 3))+".")

	if answer, ok := priceRange(info.Menu); ok {
		s.add(TopicMenu, SourceWebsite, 2, "Vad kostar maten hos er?", answer, "price")
	}

	for _, allergen := range g.allergens {
		question := "Finns det " + allergen + " i era rätter?"
		dishes := dishesWithAllergen(info.Menu, allergen)
		if len(dishes) > 0 {
			s.add(TopicMenu, SourceWebsite, 2, question,
				"Ja, "+joinSwedish(dishes)+" innehåller "+allergen+". Meddela personalen om din allergi.", "allergens", allergen)
			continue
		}
		s.add(TopicMenu, SourceWebsite, 3, question,
			"Ingen rätt på vår meny är märkt med "+allergen+", men fråga alltid personalen innan du beställer.", "allergens", allergen)
	}

	if veg := dishesWithLabel(info.Menu, "vegetarisk", "vegansk"); len(veg) > 0 {
		s.add(TopicMenu, SourceWebsite, 2, "Har ni vegetariska rätter?",
			"Ja, till exempel "+joinSwedish(veg)+".", "diet")
	} else {
		s.add(TopicMenu, SourceFallback, 3, "Har ni vegetariska rätter?",
			"Fråga personalen, vi kan ofta anpassa rätter efter önskemål.", "diet")
	}
}

func (g *Generator) booking(s *set, info *restaurant.Info) {
	b := info.Booking
	how := fmt.Sprintf("Du kan boka bord för %d–%d personer via vår webbplats", b.MinGuests, b.MaxGuests)
	if info.Phone != "" {
		how += " eller på telefon " + info.Phone
	}
	how += ". Boka senast " + duration(b.LeadTimeMinutes) + " i förväg. En bordsbokning gäller i " + duration(b.DiningDurationMinutes) + "."
	s.add(TopicBooking, SourceWebsite, 2, "Hur bokar jag bord?", how)

	s.add(TopicBooking, SourceWebsite, 2, "Vad gäller vid avbokning?", capitalize(b.CancellationPolicy)+".", "cancellation")

	question := "Kan ni ta emot större sällskap?"
	if b.MaxGuests > g.largeGroupThreshold {
		s.add(TopicBooking, SourceWebsite, 2, question,
			fmt.Sprintf("Ja, sällskap upp till %d personer kan boka direkt. För fler gäster: %s.", b.MaxGuests, b.GroupOverflowRule), "groups")
		return
	}
	s.add(TopicBooking, SourceWebsite, 2, question,
		fmt.Sprintf("Onlinebokning tar emot upp till %d personer. För större sällskap: %s.", b.MaxGuests, b.GroupOverflowRule), "groups")
}

func (g *Generator) contact(s *set, info *restaurant.Info) {
	if info.Phone == "" && info.Address == "" && info.Email == "" {
		answer := "Kontakta oss gärna via vår webbplats."
		if info.Website != "" {
			answer = "Kontakta oss gärna via " + info.Website + "."
		}
		s.add(TopicContact, SourceFallback, 1, "Hur kontaktar jag er?", answer)
		return
	}
	if info.Phone != "" {
		s.add(TopicContact, SourceWebsite, 1, "Vilket telefonnummer har ni?", "Du når oss på "+info.Phone+".", "phone")
	}
	if info.Address != "" {
		s.add(TopicContact, SourceWebsite, 1, "Var ligger restaurangen?", "Vi finns på "+info.Address+".", "address")
	}
	if info.Email != "" {
		s.add(TopicContact, SourceWebsite, 1, "Vilken e-postadress har ni?", "Mejla oss på "+info.Email+".", "email")
	}
}

func (g *Generator) general(s *set, info *restaurant.Info) {
	if info.About != "" {
		s.add(TopicGeneral, SourceWebsite, 2, "Vad är ni för restaurang?", info.About, "about")
	}
	s.add(TopicGeneral, SourcePolicy, 3, "Vilka betalsätt tar ni emot?",
		"Vi tar emot kort och Swish. Kontanter tas emot i mån av växel.", "payment")
	s.add(TopicGeneral, SourcePolicy, 3, "Är ni barnvänliga?",
		"Ja, barn är välkomna och barnstolar finns.", "family")
	s.add(TopicGeneral, SourcePolicy, 3, "Har ni wifi?",
		"Ja, fråga personalen om lösenordet.", "wifi")
	s.add(TopicGeneral, SourcePolicy, 3, "Kan man beställa mat för avhämtning?",
		"Ja, ring oss så förbereder vi din beställning.", "takeaway")
}

func (g *Generator) promotions(s *set, info *restaurant.Info) {
	if len(info.Messages) == 0 {
		s.add(TopicPromotions, SourceFallback, 3, "Har ni några erbjudanden just nu?",
			"Just nu har vi inga särskilda erbjudanden. Fråga gärna personalen om dagens rätt.")
		return
	}
	s.add(TopicPromotions, SourceWebsite, 2, "Har ni några erbjudanden just nu?",
		strings.Join(info.Messages, " "))
	for _, m := range info.Messages {
		if strings.Contains(strings.ToLower(m), "lunch") {
			s.add(TopicPromotions, SourceWebsite, 2, "Serverar ni dagens lunch?", m, "lunch")
			return
		}
	}
}

func hasOpenDay(h restaurant.Hours) bool {
	for _, v := range h {
		if v != restaurant.Closed && v != "" {
			return true
		}
	}
	return false
}

// summarize groups consecutive days sharing the same hours:
// "måndag–torsdag 11:00–22:00, fredag 11:00–23:00".
func summarize(h restaurant.Hours, days []restaurant.Weekday) string {
	var parts []string
	for i := 0; i < len(days); {
		j := i
		for j+1 < len(days) && h[days[j+1]] == h[days[i]] {
			j++
		}
		label := dayNames[days[i]]
		if j > i {
			label += "–" + dayNames[days[j]]
		}
		parts = append(parts, label+" "+hoursText(h[days[i]]))
		i = j + 1
	}
	return strings.Join(parts, ", ")
}

func hoursText(v string) string {
	if v == restaurant.Closed || v == "" {
		return "stängt"
	}
	return v
}

func sampleTitles(menu []restaurant.MenuItem, n int) []string {
	out := make([]string, 0, n)
	for _, item := range menu {
		if len(out) == n {
			break
		}
		out = append(out, item.Title)
	}
	return out
}

func priceRange(menu []restaurant.MenuItem) (string, bool) {
	var lo, hi float64
	currency := ""
	approx := false
	found := false
	for _, item := range menu {
		p := item.Price
		if p == nil || p.Amount <= 0 {
			continue
		}
		if !found {
			lo, hi, currency = p.Amount, p.Amount, p.Currency
			found = true
		}
		if p.Amount < lo {
			lo = p.Amount
		}
		if p.Amount > hi {
			hi = p.Amount
		}
		approx = approx || p.Approximate
	}
	if !found {
		return "", false
	}
	prefix := ""
	if approx {
		prefix = "cirka "
	}
	unit := currencyUnit(currency)
	if lo == hi {
		return "Rätterna kostar " + prefix + amount(lo) + " " + unit + ".", true
	}
	return "Rätterna kostar " + prefix + "mellan " + amount(lo) + " och " + amount(hi) + " " + unit + ".", true
}

func currencyUnit(code string) string {
	if code == "SEK" || code == "" {
		return "kr"
	}
	return code
}

func amount(v float64) string {
	return strings.Replace(strconv.FormatFloat(v, 'f', -1, 64), ".", ",", 1)
}

func dishesWithAllergen(menu []restaurant.MenuItem, allergen string) []string {
	var out []string
	for _, item := range menu {
		for _, a := range item.Allergens {
			if a == allergen {
				out = append(out, item.Title)
				break
			}
		}
	}
	return out
}

func dishesWithLabel(menu []restaurant.MenuItem, labels ...string) []string {
	var out []string
	for _, item := range menu {
	next:
		for _, l := range item.Labels {
			for _, want := range labels {
				if l == want {
					out = append(out, item.Title)
					break next
				}
			}
		}
	}
	return out
}

func duration(minutes int) string {
	switch {
	case minutes <= 0:
		return "0 minuter"
	case minutes%60 == 0 && minutes >= 60:
		h := minutes / 60
		return strconv.Itoa(h) + " " + plural(h, "timme", "timmar")
	default:
		return strconv.Itoa(minutes) + " minuter"
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// joinSwedish joins values as "a, b och c".
func joinSwedish(values []string) string {
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	}
	return strings.Join(values[:len(values)-1], ", ") + " och " + values[len(values)-1]
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
