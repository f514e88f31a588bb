package knowledge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/restaurant-knowledge/internal/restaurant"
)

func fullInfo() *restaurant.Info {
	booking := restaurant.DefaultBooking()
	booking.MaxGuests = 12
	return &restaurant.Info{
		Slug:    "pizzeria-roma",
		Name:    "Pizzeria Roma",
		Address: "Storgatan 12, 262 32 Ängelholm",
		City:    "Ängelholm",
		Phone:   "+4643112345",
		Email:   "info@roma.se",
		Website: "https://roma.se/",
		Hours: restaurant.Hours{
			restaurant.Monday:    "11:00–22:00",
			restaurant.Tuesday:   "11:00–22:00",
			restaurant.Wednesday: "11:00–22:00",
			restaurant.Thursday:  "11:00–22:00",
			restaurant.Friday:    "11:00–23:00",
			restaurant.Saturday:  "12:00–23:00",
			restaurant.Sunday:    restaurant.Closed,
		},
		SpecialHours: []restaurant.SpecialHours{{Date: "2025-12-24", Hours: restaurant.Closed, Note: "julafton"}},
		Menu: []restaurant.MenuItem{
			{Title: "Margherita", Category: "Pizzor", Price: &restaurant.Price{Amount: 95, Currency: "SEK"}, Allergens: []string{"gluten", "laktos"}, Labels: []string{"vegetarisk"}},
			{Title: "Vesuvio", Category: "Pizzor", Price: &restaurant.Price{Amount: 110, Currency: "SEK"}, Allergens: []string{"gluten", "laktos"}},
			{Title: "Räksmörgås", Category: "Smörgåsar", Price: &restaurant.Price{Amount: 145, Currency: "SEK"}, Allergens: []string{"gluten", "skaldjur"}},
		},
		Booking:  booking,
		Messages: []string{"Dagens lunch 119 kr vardagar 11-14."},
	}
}

func emptyInfo() *restaurant.Info {
	hours := restaurant.Hours{}
	for _, d := range restaurant.Weekdays {
		hours[d] = restaurant.Closed
	}
	return &restaurant.Info{
		Slug:    "krogen",
		Name:    "Krogen",
		Website: "https://krogen.se/",
		Hours:   hours,
		Menu:    []restaurant.MenuItem{},
		Booking: restaurant.DefaultBooking(),
	}
}

func byQuestion(t *testing.T, items []Item, question string) Item {
	t.Helper()
	for _, item := range items {
		if item.Question == question {
			return item
		}
	}
	t.Fatalf("no item for question %q", question)
	return Item{}
}

func topics(items []Item) map[string]int {
	out := map[string]int{}
	for _, item := range items {
		out[item.Tags[0]]++
	}
	return out
}

func TestGenerateFullRecord(t *testing.T) {
	t.Parallel()

	items := NewGenerator(0, zap.NewNop()).Generate(fullInfo())

	weekday := byQuestion(t, items, "Vilka är era öppettider på vardagar?")
	require.Equal(t, "qa-vilka-ar-era-oppettider-pa-vardagar", weekday.ID)
	require.Equal(t, "Vardagar: måndag–torsdag 11:00–22:00, fredag 11:00–23:00.", weekday.Answer)
	require.Equal(t, SourceWebsite, weekday.SourceTag)
	require.Equal(t, "Pizzeria Roma", weekday.Location)

	weekend := byQuestion(t, items, "Vilka är era öppettider på helgen?")
	require.Equal(t, "Helgen: lördag 12:00–23:00, söndag stängt.", weekend.Answer)

	special := byQuestion(t, items, "Har ni avvikande öppettider under helgdagar?")
	require.Contains(t, special.Answer, "2025-12-24 (julafton) stängt")

	overview := byQuestion(t, items, "Vad finns på menyn?")
	require.Equal(t, "Vi serverar Pizzor (2 rätter) och Smörgåsar (1 rätt). Exempel: Margherita, Vesuvio och Räksmörgås.", overview.Answer)

	price := byQuestion(t, items, "Vad kostar maten hos er?")
	require.Equal(t, "Rätterna kostar mellan 95 och 145 kr.", price.Answer)

	gluten := byQuestion(t, items, "Finns det gluten i era rätter?")
	require.True(t, strings.HasPrefix(gluten.Answer, "Ja, Margherita, Vesuvio och Räksmörgås"))
	require.Equal(t, []string{TopicMenu, "allergens", "gluten"}, gluten.Tags)

	sesame := byQuestion(t, items, "Finns det sesam i era rätter?")
	require.True(t, strings.HasPrefix(sesame.Answer, "Ingen rätt"))

	veg := byQuestion(t, items, "Har ni vegetariska rätter?")
	require.Equal(t, "Ja, till exempel Margherita.", veg.Answer)

	groups := byQuestion(t, items, "Kan ni ta emot större sällskap?")
	require.True(t, strings.HasPrefix(groups.Answer, "Ja, sällskap upp till 12"))

	booking := byQuestion(t, items, "Hur bokar jag bord?")
	require.Contains(t, booking.Answer, "+4643112345")
	require.Contains(t, booking.Answer, "2 timmar")

	cancel := byQuestion(t, items, "Vad gäller vid avbokning?")
	require.Equal(t, "Free cancellation up to 2 hours before.", cancel.Answer)

	byQuestion(t, items, "Vilket telefonnummer har ni?")
	byQuestion(t, items, "Var ligger restaurangen?")
	byQuestion(t, items, "Vilken e-postadress har ni?")

	lunch := byQuestion(t, items, "Serverar ni dagens lunch?")
	require.Equal(t, "Dagens lunch 119 kr vardagar 11-14.", lunch.Answer)

	for _, item := range items {
		require.Equal(t, TypeQA, item.Type)
		require.NotEmpty(t, item.Answer, item.Question)
	}
}

func TestGenerateFallbacksCoverEveryTopic(t *testing.T) {
	t.Parallel()

	items := NewGenerator(0, nil).Generate(emptyInfo())

	got := topics(items)
	for _, topic := range []string{TopicHours, TopicMenu, TopicBooking, TopicContact, TopicGeneral, TopicPromotions} {
		require.Positive(t, got[topic], topic)
	}

	require.Equal(t, SourceFallback, byQuestion(t, items, "Vilka är era öppettider?").SourceTag)
	require.Equal(t, SourceFallback, byQuestion(t, items, "Vad finns på menyn?").SourceTag)
	require.Equal(t, "Kontakta oss gärna via https://krogen.se/.", byQuestion(t, items, "Hur kontaktar jag er?").Answer)
	require.Equal(t, SourceFallback, byQuestion(t, items, "Har ni några erbjudanden just nu?").SourceTag)

	groups := byQuestion(t, items, "Kan ni ta emot större sällskap?")
	require.Equal(t, "Onlinebokning tar emot upp till 8 personer. För större sällskap: contact restaurant.", groups.Answer)

	for _, item := range items {
		require.NotEqual(t, "Vilket telefonnummer har ni?", item.Question)
		require.NotEqual(t, "Vad kostar maten hos er?", item.Question)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	t.Parallel()

	g := NewGenerator(8, zap.NewNop())
	first := g.Generate(fullInfo())
	second := g.Generate(fullInfo())
	require.Equal(t, first, second)

	ids := map[string]bool{}
	for _, item := range first {
		require.False(t, ids[item.ID], "duplicate id %s", item.ID)
		ids[item.ID] = true
	}
}

func TestPriceRangeApproximateAndSingle(t *testing.T) {
	t.Parallel()

	answer, ok := priceRange([]restaurant.MenuItem{
		{Title: "Soppa", Price: &restaurant.Price{Amount: 89.5, Currency: "SEK", Approximate: true}},
		{Title: "Bröd"},
	})
	require.True(t, ok)
	require.Equal(t, "Rätterna kostar cirka 89,5 kr.", answer)

	_, ok = priceRange([]restaurant.MenuItem{{Title: "Bröd"}})
	require.False(t, ok)
}

func TestItemID(t *testing.T) {
	t.Parallel()

	require.Equal(t, "qa-ett-tva-tre-fyra-fem-sex-sju-atta", ItemID(TypeQA, "Ett två tre fyra fem sex sju åtta nio tio?"))
	require.Equal(t, "qa-item", ItemID(TypeQA, "???"))

	ids := idAllocator{}
	require.Equal(t, "qa-har-ni-wifi", ids.next(TypeQA, "Har ni wifi?"))
	require.Equal(t, "qa-har-ni-wifi-2", ids.next(TypeQA, "Har ni WiFi?"))
	require.Equal(t, "qa-har-ni-wifi-3", ids.next(TypeQA, "har ni wifi"))
}

func TestDuration(t *testing.T) {
	t.Parallel()

	require.Equal(t, "1 timme", duration(60))
	require.Equal(t, "2 timmar", duration(120))
	require.Equal(t, "90 minuter", duration(90))
	require.Equal(t, "0 minuter", duration(0))
}

func TestGenerateAboutItem(t *testing.T) {
	t.Parallel()

	info := fullInfo()
	info.About = "Familjeägd pizzeria sedan 1987 med stenugn och handgjord deg."
	items := NewGenerator(8, zap.NewNop()).Generate(info)

	about := byQuestion(t, items, "Vad är ni för restaurang?")
	require.Equal(t, info.About, about.Answer)
	require.Equal(t, SourceWebsite, about.SourceTag)
	require.Equal(t, []string{TopicGeneral, "about"}, about.Tags)
	require.Equal(t, info.Name, about.Location)

	for _, item := range NewGenerator(8, zap.NewNop()).Generate(fullInfo()) {
		require.NotEqual(t, "Vad är ni för restaurang?", item.Question)
	}
}
