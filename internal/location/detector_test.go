package location

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/restaurant-knowledge/internal/extract"
)

func TestDetectLocationsFromContactBlocks(t *testing.T) {
	t.Parallel()

	content := extract.Content{
		URL:   "https://roma.se/",
		Title: "Roma | Restauranger",
		FullText: "Våra restauranger\n" +
			"Roma Ängelholm\nStorgatan 12, 262 32 Ängelholm\nTel 0431-123 45\n" +
			"Roma Helsingborg\nKullagatan 5, 252 20 Helsingborg\nTel 042-12 34 56",
		HoursCandidate: map[string]string{"monday": "11-22"},
	}

	got := NewDetector(nil, zap.NewNop()).DetectLocations(content)
	require.Equal(t, []Candidate{
		{
			Name:    "Roma Ängelholm",
			Address: "Storgatan 12, 262 32 Ängelholm",
			City:    "Ängelholm",
			Phone:   "0431-123 45",
			Method:  MethodBlocks,
		},
		{
			Name:    "Roma Helsingborg",
			Address: "Kullagatan 5, 252 20 Helsingborg",
			City:    "Helsingborg",
			Phone:   "042-12 34 56",
			Method:  MethodBlocks,
		},
	}, got)
}

func TestDetectLocationsFromCities(t *testing.T) {
	t.Parallel()

	content := extract.Content{
		URL:              "https://burgerhuset.se/",
		Title:            "Burgerhuset | Hem",
		FullText:         "Välkommen till Burgerhuset! Nu finns vi i Malmö och Lund.\nKontakta oss på info@burgerhuset.se",
		ContactCandidate: extract.Contact{Email: "info@burgerhuset.se"},
	}

	got := NewDetector(nil, nil).DetectLocations(content)
	require.Len(t, got, 2)
	require.Equal(t, "Burgerhuset Malmö", got[0].Name)
	require.Equal(t, "Malmö", got[0].City)
	require.Equal(t, "Burgerhuset Lund", got[1].Name)
	for _, loc := range got {
		require.Equal(t, MethodCities, loc.Method)
		require.Equal(t, "info@burgerhuset.se", loc.Email)
		require.True(t, loc.IsChain)
	}
}

func TestDetectLocationsIgnoresTravelPhrasing(t *testing.T) {
	t.Parallel()

	content := extract.Content{
		URL:   "https://kroken.se/",
		Title: "Krogen Kroken",
		FullText: "Vi ligger mitt i Ängelholm.\n" +
			"Enkel resa från Helsingborg till Ängelholm med tåg.\n" +
			"Tåget Malmö–Lund går ofta. Gå längs Lundavägen.",
		HoursCandidate:   map[string]string{"monday": "11-22"},
		ContactCandidate: extract.Contact{Phone: "0431-123 45", Address: "Storgatan 1, 262 32 Ängelholm"},
	}

	got := NewDetector(nil, nil).DetectLocations(content)
	require.Equal(t, []Candidate{{
		Name:    "Krogen Kroken",
		Address: "Storgatan 1, 262 32 Ängelholm",
		City:    "Ängelholm",
		Phone:   "0431-123 45",
		Method:  MethodSingle,
	}}, got)
}

func TestDetectLocationsAlwaysReturnsOne(t *testing.T) {
	t.Parallel()

	got := NewDetector([]string{"Ystad"}, nil).DetectLocations(extract.Content{URL: "https://tom.se/"})
	require.Len(t, got, 1)
	require.Equal(t, MethodSingle, got[0].Method)
}

func TestIsChainIsPerLocation(t *testing.T) {
	t.Parallel()

	d := NewDetector(nil, nil)
	content := extract.Content{
		FullText:         "Vi finns i Stockholm och Uppsala.",
		ContactCandidate: extract.Contact{Email: "info@kedjan.se"},
		HoursCandidate:   map[string]string{"monday": "10-20"},
	}

	// Two signals: multiple cities and a generic email.
	require.True(t, d.IsChain(Candidate{Phone: "08-123 456 78", Address: "Sveavägen 1, 111 57 Stockholm"}, content))

	// A location with its own personal mailbox keeps only the city signal.
	personal := Candidate{Phone: "018-12 34 56", Address: "Dragarbrunnsgatan 2, 753 20 Uppsala", Email: "anna@kedjan.se"}
	require.False(t, d.IsChain(personal, content))
}

func TestWordIndex(t *testing.T) {
	t.Parallel()

	require.Equal(t, -1, wordIndex("lundavägen 3", "lund"))
	require.Equal(t, 4, wordIndex("vid lund.", "lund"))
	require.Equal(t, 0, wordIndex("malmö", "malmö"))
}

func TestDetectLocationsPersonalEmailIsNotChain(t *testing.T) {
	t.Parallel()

	content := extract.Content{
		URL:              "https://roma.se/",
		Title:            "Pizzeria Roma",
		FullText:         "Välkommen till Pizzeria Roma!\nFrågor? Mejla anna.svensson@roma.se",
		ContactCandidate: extract.Contact{Email: "anna.svensson@roma.se"},
	}

	got := NewDetector(nil, zap.NewNop()).DetectLocations(content)
	require.Len(t, got, 1)
	require.False(t, got[0].IsChain)

	// Same page with a shared mailbox: generic email without phone or address.
	content.ContactCandidate.Email = "info@roma.se"
	require.True(t, NewDetector(nil, nil).IsChain(Candidate{Email: "info@roma.se"}, content))
}
