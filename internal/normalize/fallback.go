package normalize

import (
	"strconv"
	"strings"

	"github.com/JakeFAU/restaurant-knowledge/internal/extract"
	"github.com/JakeFAU/restaurant-knowledge/internal/report"
	"github.com/JakeFAU/restaurant-knowledge/internal/restaurant"
)

// DigitSource derives stable pseudo-random digits from a seed.
type DigitSource interface {
	Digits(seed string, n int) string
}

// nationalDigits is the length of a Swedish number without trunk prefix.
const nationalDigits = 9

// recoverFromBlobs fills missing contact fields from free-text contact blobs
// and records each recovery as a fix.
func recoverFromBlobs(f *Fields, blobs, knownCities []string, states FieldStates, rep *report.Report) {
	text := strings.Join(blobs, "\n")
	if f.Phone == "" {
		if phone := extract.FindPhone(text); phone != "" {
			f.Phone = phone
			states.infer(FieldPhone)
			rep.Fixf("phone recovered from contact text: %s", phone)
		}
	}
	if f.Email == "" {
		if email := extract.FindEmail(text); email != "" {
			f.Email = email
			states.infer(FieldEmail)
			rep.Fixf("email recovered from contact text: %s", email)
		}
	}
	if f.Address == "" {
		if address, _, city := extract.FindAddress(text); address != "" {
			f.Address = address
			states.infer(FieldAddress)
			rep.Fixf("address recovered from contact text: %s", address)
			if f.City == "" && city != "" {
				f.City = city
				states.infer(FieldCity)
				rep.Fixf("city taken from recovered address: %s", city)
			}
		}
	}
	if f.City == "" && f.Address != "" {
		if _, _, city := extract.FindAddress(f.Address); city != "" {
			f.City = city
			states.infer(FieldCity)
			rep.Fixf("city taken from address: %s", city)
		}
	}
	if f.City == "" {
		if city := firstKnownCity(text, knownCities); city != "" {
			f.City = city
			states.infer(FieldCity)
			rep.Fixf("city recovered from contact text: %s", city)
		}
	}
	if f.Brand == "" && f.Name != "" {
		brand := f.Name
		if f.City != "" {
			brand = strings.TrimSpace(strings.TrimSuffix(brand, f.City))
		}
		if brand != "" {
			f.Brand = brand
			states.infer(FieldBrand)
			rep.Fixf("brand derived from name: %s", brand)
		}
	}
}

func firstKnownCity(text string, cities []string) string {
	lower := strings.ToLower(text)
	best, bestPos := "", -1
	for _, name := range cities {
		if name == "" {
			continue
		}
		if pos := strings.Index(lower, strings.ToLower(name)); pos >= 0 && (bestPos < 0 || pos < bestPos) {
			best, bestPos = name, pos
		}
	}
	return best
}

// placeholderPhone builds an E.164 number with the city's area code and
// seed-derived subscriber digits. Cities missing from restaurant.Cities get
// the UnknownCity codes.
func placeholderPhone(city, seed, countryCode string, digits DigitSource) string {
	c, _ := restaurant.LookupCity(city)
	area := strings.TrimPrefix(c.AreaCode, "0")
	return countryCode + area + digits.Digits("phone:"+seed, nationalDigits-len(area))
}

// placeholderAddress builds "Storgatan N, PPP NN City" from the city's postal
// prefix and seed-derived digits.
func placeholderAddress(city, seed string, digits DigitSource) string {
	c, _ := restaurant.LookupCity(city)
	d := digits.Digits("address:"+seed, 3)
	number, _ := strconv.Atoi(d[:1])
	postal := c.PostalPrefix + " " + d[1:]
	address := "Storgatan " + strconv.Itoa(number+1) + ", " + postal
	if c.Name != "" {
		address += " " + c.Name
	}
	return address
}
