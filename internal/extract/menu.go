package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// Strategy names recorded on each candidate.
const (
	StrategyStructural = "structural"
	StrategyLine       = "line"
	StrategyHeading    = "heading"
)

const (
	minPlausiblePrice = 50
	maxPlausiblePrice = 800
)

const (
	menuItemSelectors  = `.menu-item, .menu_item, .menuitem, .menu-list-item, .meny-item, .dish, .food-item, .matratt, [itemtype$="MenuItem"]`
	menuTitleSelectors = `[itemprop=name], .menu-item-title, .menu-item-name, .dish-name, .dish-title, .title, .name, h3, h4, h5, strong`
	menuPriceSelectors = `[itemprop=price], .menu-item-price, .dish-price, .price, .pris`
	menuDescSelectors  = `[itemprop=description], .menu-item-description, .description, .desc, p`
	menuSectionScopes  = `.menu-section, .menu-category, .meny-kategori, section`
	adjacencyHeadings  = "h3, h4, h5, dt, strong"
)

var (
	priceTextRe = regexp.MustCompile(`(?i)(?:(?:ca|cirka|från|from)\.?\s*)?(\d{2,4}(?:[.,]\d{1,2})?)\s*(?:kr\b|:-|sek\b)`)
	menuLineRe  = regexp.MustCompile(`(?i)^(.{3,60}?)[\s.·…:|\-–]*((?:(?:ca|cirka|från|from)\.?\s*)?\d{2,4}(?:[.,]\d{1,2})?\s*(?:kr\b|:-|sek\b))(.*)$`)
)

var foodWords = []string{
	"pizza", "pasta", "burgare", "burger", "sallad", "salad", "soppa", "soup", "biff", "kyckling",
	"chicken", "lax", "torsk", "fisk", "fish", "räk", "köttbullar", "schnitzel", "risotto",
	"lasagne", "carbonara", "bolognese", "margherita", "vesuvio", "capricciosa", "kebab", "falafel",
	"tacos", "wok", "curry", "ramen", "sushi", "nudlar", "pannkak", "dessert", "glass", "kaka",
	"tårta", "paj", "pommes", "fries", "stek", "entrecote", "fläsk", "lamm", "vego", "vegan",
	"halloumi", "ost", "cheese", "bröd", "toast", "smörgås", "macka", "wrap", "bowl", "poke",
	"dagens", "lunch", "förrätt", "varmrätt", "efterrätt", "starter", "main", "husman", "gryta",
	"tiramisu", "panna cotta", "calzone", "kalzone", "quattro", "hawaii", "kött", "oxfilé", "rostbiff",
	"sill", "potatis", "kalops", "pytt", "gravad", "skagen", "ceviche", "tapas", "bruschetta",
	"carpaccio", "gnocchi", "tagliatelle", "spaghetti", "penne", "focaccia", "nachos", "quesadilla",
}

var nonFoodWords = []string{
	"frakt", "leverans", "delivery", "presentkort", "gift card", "lokal", "hyra", "moms",
	"avgift", "fee", "medlem", "parkering", "biljett", "ticket", "entré", "cover charge",
	"öppet", "stängt", "telefon", "adress", "kontakt", "boka", "faktura",
}

// MenuStrategy is one step of the menu extraction chain.
type MenuStrategy struct {
	Name string
	Fn   func(doc *goquery.Document, text string) []MenuCandidate
}

// MenuStrategies are tried in order; the first that yields items wins.
var MenuStrategies = []MenuStrategy{
	{Name: StrategyStructural, Fn: structuralMenu},
	{Name: StrategyLine, Fn: lineMenu},
	{Name: StrategyHeading, Fn: headingMenu},
}

// ExtractMenu returns the deduplicated candidates of the first strategy that
// finds any, capped at MaxMenuItems.
func ExtractMenu(doc *goquery.Document, mainText string) []MenuCandidate {
	for _, strategy := range MenuStrategies {
		acc := newMenuAccumulator()
		acc.addAll(strategy.Fn(doc, mainText))
		if len(acc.items) > 0 {
			return acc.items
		}
	}
	return nil
}

type menuAccumulator struct {
	items []MenuCandidate
	seen  map[string]struct{}
}

func newMenuAccumulator() *menuAccumulator {
	return &menuAccumulator{seen: make(map[string]struct{})}
}

func (a *menuAccumulator) addAll(candidates []MenuCandidate) {
	for _, c := range candidates {
		if len(a.items) >= MaxMenuItems {
			return
		}
		key := strings.ToLower(c.Title)
		if key == "" {
			continue
		}
		if _, dup := a.seen[key]; dup {
			continue
		}
		a.seen[key] = struct{}{}
		a.items = append(a.items, c)
	}
}

func structuralMenu(doc *goquery.Document, _ string) []MenuCandidate {
	if doc == nil {
		return nil
	}
	var out []MenuCandidate
	doc.Find(menuItemSelectors).EachWithBreak(func(_ int, item *goquery.Selection) bool {
		title := collapseSpace(item.Find(menuTitleSelectors).First().Text())
		priceText := collapseSpace(item.Find(menuPriceSelectors).First().Text())
		full := collapseSpace(item.Text())
		if priceText == "" {
			priceText = priceTextRe.FindString(full)
		}
		if title == "" {
			title = strings.TrimSpace(stripPrice(full))
		}
		title = trimDecorations(title)
		if title == "" || len([]rune(title)) > 80 {
			return true
		}
		desc := collapseSpace(item.Find(menuDescSelectors).First().Text())
		if desc == title || desc == priceText {
			desc = ""
		}
		out = append(out, MenuCandidate{
			Title:       title,
			Description: desc,
			PriceText:   priceText,
			Section:     sectionOf(item),
			Strategy:    StrategyStructural,
		})
		return len(out) < MaxMenuItems
	})
	return out
}

func lineMenu(_ *goquery.Document, text string) []MenuCandidate {
	var out []MenuCandidate
	section := ""
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := menuLineRe.FindStringSubmatch(line)
		if m == nil {
			if isSectionLabel(line) {
				section = line
			}
			continue
		}
		title := trimDecorations(m[1])
		if !plausibleDish(title, m[2]) {
			continue
		}
		out = append(out, MenuCandidate{
			Title:       title,
			Description: strings.Trim(collapseSpace(m[3]), " -–,."),
			PriceText:   strings.TrimSpace(m[2]),
			Section:     section,
			Strategy:    StrategyLine,
		})
		if len(out) >= MaxMenuItems {
			break
		}
	}
	return out
}

func headingMenu(doc *goquery.Document, _ string) []MenuCandidate {
	if doc == nil {
		return nil
	}
	var out []MenuCandidate
	doc.Find(adjacencyHeadings).EachWithBreak(func(_ int, h *goquery.Selection) bool {
		heading := collapseSpace(h.Text())
		if heading == "" || len([]rune(heading)) > 80 {
			return true
		}
		if price := priceTextRe.FindString(heading); price != "" {
			title := trimDecorations(stripPrice(heading))
			if plausibleDish(title, price) {
				out = append(out, MenuCandidate{Title: title, PriceText: price, Strategy: StrategyHeading})
			}
			return len(out) < MaxMenuItems
		}

		var desc, price string
		sib := h.Next()
		for i := 0; i < 2 && sib.Length() > 0; i++ {
			text := collapseSpace(sib.Text())
			if p := priceTextRe.FindString(text); p != "" {
				price = p
				if rest := strings.Trim(stripPrice(text), " -–,."); rest != "" && desc == "" {
					desc = rest
				}
				break
			}
			if desc == "" {
				desc = text
			}
			sib = sib.Next()
		}
		title := trimDecorations(heading)
		if price == "" || !plausibleDish(title, price) {
			return true
		}
		out = append(out, MenuCandidate{
			Title:       title,
			Description: desc,
			PriceText:   price,
			Strategy:    StrategyHeading,
		})
		return len(out) < MaxMenuItems
	})
	return out
}

func plausibleDish(title, priceText string) bool {
	amount, ok := priceAmount(priceText)
	if !ok || amount < minPlausiblePrice || amount > maxPlausiblePrice {
		return false
	}
	lower := strings.ToLower(title)
	if len([]rune(lower)) < 3 {
		return false
	}
	for _, w := range nonFoodWords {
		if strings.Contains(lower, w) {
			return false
		}
	}
	for _, w := range foodWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	// Dish names are short and mostly letters.
	words := strings.Fields(lower)
	return len(words) <= 6 && letterRatio(lower) >= 0.7
}

func priceAmount(priceText string) (float64, bool) {
	m := priceTextRe.FindStringSubmatch(priceText)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func stripPrice(s string) string {
	return collapseSpace(priceTextRe.ReplaceAllString(s, " "))
}

func trimDecorations(s string) string {
	return strings.Trim(collapseSpace(s), " .·…:|-–—*•")
}

func letterRatio(s string) float64 {
	var letters, total int
	for _, r := range s {
		if r == ' ' {
			continue
		}
		total++
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(letters) / float64(total)
}

func isSectionLabel(line string) bool {
	if len([]rune(line)) > 40 || strings.ContainsAny(line, "0123456789") {
		return false
	}
	return len(strings.Fields(line)) <= 4
}

func sectionOf(item *goquery.Selection) string {
	scope := item.Closest(menuSectionScopes)
	if scope.Length() == 0 {
		return ""
	}
	return collapseSpace(scope.Find("h2, h3").First().Text())
}
