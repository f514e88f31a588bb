package extract

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

type phonePattern struct {
	re        *regexp.Regexp
	minDigits int
}

// Phone families are tried in order; the first valid match wins.
var phonePatterns = []phonePattern{
	{regexp.MustCompile(`\+\d{1,3}[\s\-]?(?:\(0\)[\s\-]?)?\d{1,4}(?:[\s\-]?\d{2,4}){1,4}`), 9},
	{regexp.MustCompile(`(?:^|[^\d+])(0\d{1,3}[\s\-/]?\d{2,4}(?:[\s\-]?\d{2,4}){0,3})`), 8},
	{regexp.MustCompile(`(?i)(?:tel|telefon|tfn|phone|ring(?:\s+oss)?)[.:]?\s*([\d\s\-+()]{7,20}\d)`), 7},
	{regexp.MustCompile(`(?:^|[^\d])(\d{3}[\s\-]\d{2,3}[\s\-]?\d{2,4})(?:[^\d]|$)`), 8},
}

var (
	emailRe          = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	labeledAddressRe = regexp.MustCompile(`(?i)(?:besöksadress|adress|address|hitta hit)\s*:?\s*([^\n]{5,100})`)
	streetAddressRe  = regexp.MustCompile(`([A-ZÅÄÖ][\p{L}.\-]+(?:[ \t][\p{L}.\-]+){0,2}[ \t]\d{1,4}[A-Za-z]?)\s*,?\s*(\d{3} ?\d{2})[ \t]+([A-ZÅÄÖ][\p{L}\-]+(?: [A-ZÅÄÖ][\p{L}\-]+)?)`)
	postalCityRe     = regexp.MustCompile(`(\d{3} ?\d{2})[ \t]+([A-ZÅÄÖ][\p{L}\-]+(?: [A-ZÅÄÖ][\p{L}\-]+)?)`)
)

// ExtractContact finds the first phone, email and address in text, falling
// back to tel: and mailto: links.
func ExtractContact(text string, links []string) Contact {
	c := Contact{
		Phone: FindPhone(text),
		Email: FindEmail(text),
	}
	c.Address, c.PostalCode, c.City = FindAddress(text)

	for _, link := range links {
		lower := strings.ToLower(link)
		switch {
		case c.Phone == "" && strings.HasPrefix(lower, "tel:"):
			if v, err := url.PathUnescape(link[len("tel:"):]); err == nil && digitCount(v) >= 7 {
				c.Phone = strings.TrimSpace(v)
			}
		case c.Email == "" && strings.HasPrefix(lower, "mailto:"):
			addr := link[len("mailto:"):]
			if i := strings.IndexByte(addr, '?'); i >= 0 {
				addr = addr[:i]
			}
			if emailRe.MatchString(addr) {
				c.Email = addr
			}
		}
	}
	return c
}

// FindPhone returns the first phone-like string in text, or "".
func FindPhone(text string) string {
	for _, p := range phonePatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			candidate := m[0]
			if len(m) > 1 {
				candidate = m[1]
			}
			candidate = strings.TrimSpace(candidate)
			if n := digitCount(candidate); n >= p.minDigits && n <= 15 {
				return candidate
			}
		}
	}
	return ""
}

// FindEmail returns the first email address in text, or "".
func FindEmail(text string) string {
	return strings.TrimRight(emailRe.FindString(text), ".")
}

// FindAddress returns a street address with postal code and city. A labeled
// address line is preferred over an unlabeled street pattern.
func FindAddress(text string) (address, postalCode, city string) {
	for _, m := range labeledAddressRe.FindAllStringSubmatch(text, -1) {
		line := strings.TrimSpace(m[1])
		if sm := streetAddressRe.FindStringSubmatch(line); sm != nil {
			town := cleanCity(sm[3])
			return formatAddress(sm[1], sm[2], town), compactPostal(sm[2]), town
		}
		if !strings.ContainsFunc(line, unicode.IsDigit) {
			continue
		}
		if pm := postalCityRe.FindStringSubmatchIndex(line); pm != nil {
			street := strings.Trim(line[:pm[0]], " ,")
			postal, town := line[pm[2]:pm[3]], cleanCity(line[pm[4]:pm[5]])
			if street == "" {
				return formatPostal(postal, town), compactPostal(postal), town
			}
			return formatAddress(street, postal, town), compactPostal(postal), town
		}
		return strings.Trim(line, " ,."), "", ""
	}
	if sm := streetAddressRe.FindStringSubmatch(text); sm != nil {
		town := cleanCity(sm[3])
		return formatAddress(sm[1], sm[2], town), compactPostal(sm[2]), town
	}
	return "", "", ""
}

var cityStopWords = map[string]bool{
	"tel": true, "telefon": true, "tfn": true, "phone": true, "mail": true,
	"e-post": true, "email": true, "öppet": true, "sverige": true, "sweden": true,
}

func cleanCity(city string) string {
	words := strings.Fields(city)
	if len(words) > 1 && cityStopWords[strings.ToLower(words[len(words)-1])] {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

func formatAddress(street, postal, city string) string {
	return strings.TrimSpace(street) + ", " + formatPostal(postal, city)
}

func formatPostal(postal, city string) string {
	p := compactPostal(postal)
	if len(p) == 5 {
		p = p[:3] + " " + p[3:]
	}
	return p + " " + strings.TrimSpace(city)
}

func compactPostal(postal string) string {
	return strings.ReplaceAll(strings.TrimSpace(postal), " ", "")
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
