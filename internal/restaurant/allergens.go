package restaurant

import "strings"

// Allergens is the closed canonical allergen vocabulary, in display order.
var Allergens = []string{
	"gluten",
	"laktos",
	"nötter",
	"jordnötter",
	"ägg",
	"fisk",
	"skaldjur",
	"blötdjur",
	"soja",
	"selleri",
	"senap",
	"sesam",
	"sulfiter",
	"lupin",
}

// AllergenKeywords maps free-text words (Swedish and English) to a canonical
// allergen. Keys are matched at the start of a word.
var AllergenKeywords = map[string]string{
	"gluten":    "gluten",
	"vete":      "gluten",
	"wheat":     "gluten",
	"råg":       "gluten",
	"korn":      "gluten",
	"laktos":    "laktos",
	"lactose":   "laktos",
	"mjölk":     "laktos",
	"milk":      "laktos",
	"dairy":     "laktos",
	"mejeri":    "laktos",
	"nötter":    "nötter",
	"nuts":      "nötter",
	"hasselnöt": "nötter",
	"valnöt":    "nötter",
	"mandel":    "nötter",
	"almond":    "nötter",
	"cashew":    "nötter",
	"pistage":   "nötter",
	"jordnöt":   "jordnötter",
	"peanut":    "jordnötter",
	"ägg":       "ägg",
	"egg":       "ägg",
	"fisk":      "fisk",
	"fish":      "fisk",
	"skaldjur":  "skaldjur",
	"shellfish": "skaldjur",
	"räkor":     "skaldjur",
	"shrimp":    "skaldjur",
	"kräft":     "skaldjur",
	"hummer":    "skaldjur",
	"lobster":   "skaldjur",
	"blötdjur":  "blötdjur",
	"mollus":    "blötdjur",
	"musslor":   "blötdjur",
	"mussels":   "blötdjur",
	"soja":      "soja",
	"soy":       "soja",
	"selleri":   "selleri",
	"celery":    "selleri",
	"senap":     "senap",
	"mustard":   "senap",
	"sesam":     "sesam",
	"sesame":    "sesam",
	"sulfit":    "sulfiter",
	"sulphite":  "sulfiter",
	"sulfite":   "sulfiter",
	"lupin":     "lupin",
}

// CanonicalAllergen maps a single allergen value to the vocabulary.
func CanonicalAllergen(raw string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return "", false
	}
	for _, canonical := range Allergens {
		if v == canonical {
			return canonical, true
		}
	}
	if c, ok := AllergenKeywords[v]; ok {
		return c, true
	}
	best := ""
	for kw := range AllergenKeywords {
		if strings.HasPrefix(v, kw) && len(kw) > len(best) {
			best = kw
		}
	}
	if best != "" {
		return AllergenKeywords[best], true
	}
	return "", false
}

// SortAllergens orders canonical values by the vocabulary order and places
// unknown values last in their original order.
func SortAllergens(values []string) []string {
	rank := make(map[string]int, len(Allergens))
	for i, a := range Allergens {
		rank[a] = i
	}
	known := make([]string, 0, len(values))
	var unknown []string
	seen := map[string]struct{}{}
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		if _, ok := rank[v]; ok {
			known = append(known, v)
		} else {
			unknown = append(unknown, v)
		}
	}
	for i := 1; i < len(known); i++ {
		for j := i; j > 0 && rank[known[j]] < rank[known[j-1]]; j-- {
			known[j], known[j-1] = known[j-1], known[j]
		}
	}
	return append(known, unknown...)
}
