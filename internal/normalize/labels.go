package normalize

import "strings"

var labelKeywords = []struct {
	label string
	words []string
}{
	{"vegetarisk", []string{"vegetarisk", "vegetarian", "vego"}},
	{"vegansk", []string{"vegansk", "vegan"}},
	{"glutenfri", []string{"glutenfri", "gluten-free", "gluten free"}},
	{"laktosfri", []string{"laktosfri", "lactose-free", "lactose free"}},
	{"stark", []string{"stark", "spicy", "chili"}},
}

// Labels combines stated labels with dietary labels found in the title and
// description. Known labels come first in a fixed order.
func Labels(item RawMenuItem) []string {
	text := strings.ToLower(item.Title + " " + item.Description + " " + strings.Join(item.Labels, " "))
	out := []string{}
	seen := map[string]bool{}
	for _, lk := range labelKeywords {
		for _, w := range lk.words {
			if strings.Contains(text, w) {
				out = append(out, lk.label)
				seen[lk.label] = true
				break
			}
		}
	}
	for _, l := range item.Labels {
		l = strings.ToLower(strings.TrimSpace(l))
		if l != "" && !seen[l] && !matchesKnownLabel(l) {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}

func matchesKnownLabel(l string) bool {
	for _, lk := range labelKeywords {
		for _, w := range lk.words {
			if l == w {
				return true
			}
		}
	}
	return false
}
