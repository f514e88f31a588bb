package restaurant

import "strings"

var slugFold = strings.NewReplacer(
	"å", "a", "ä", "a", "ö", "o",
	"é", "e", "è", "e", "ü", "u", "æ", "ae", "ø", "o",
	"&", " och ",
)

// Slugify lowercases s, folds Nordic letters to ASCII and joins the
// remaining alphanumeric runs with single dashes.
func Slugify(s string) string {
	s = slugFold.Replace(strings.ToLower(s))
	var b strings.Builder
	dash := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
