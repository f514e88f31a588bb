package normalize

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/restaurant-knowledge/internal/report"
	"github.com/JakeFAU/restaurant-knowledge/internal/restaurant"
)

func TestHoursFillsMissingDays(t *testing.T) {
	t.Parallel()

	rep := report.New()
	got := Hours(map[string]string{"mon": "11.30-22.00"}, rep)

	require.Equal(t, restaurant.Hours{
		restaurant.Monday:    "11:30–22:00",
		restaurant.Tuesday:   "closed",
		restaurant.Wednesday: "closed",
		restaurant.Thursday:  "closed",
		restaurant.Friday:    "closed",
		restaurant.Saturday:  "closed",
		restaurant.Sunday:    "closed",
	}, got)
	require.Len(t, rep.Assumptions, 6)
	require.Empty(t, rep.Errors)
}

func TestHoursInvalidRangeBecomesClosed(t *testing.T) {
	t.Parallel()

	rep := report.New()
	got := Hours(map[string]string{
		"måndag":  "22-11",
		"tisdag":  "18-00",
		"onsdag":  "stängt",
		"torsdag": "11-14",
		"fredag":  "11-late",
		"lördag":  "12-23",
		"söndag":  "12-20",
		"helgdag": "10-12",
	}, rep)

	require.Equal(t, "closed", got[restaurant.Monday])
	require.Equal(t, "18:00–24:00", got[restaurant.Tuesday])
	require.Equal(t, "closed", got[restaurant.Wednesday])
	require.Equal(t, "11:00–14:00", got[restaurant.Thursday])
	require.Equal(t, "closed", got[restaurant.Friday])
	require.Len(t, rep.Errors, 3)
	require.Empty(t, rep.Assumptions)
	require.Empty(t, CheckHours(got))
}

func TestHoursShapeHoldsForArbitraryInput(t *testing.T) {
	t.Parallel()

	valueRe := regexp.MustCompile(`^\d{2}:\d{2}–\d{2}:\d{2}$`)
	inputs := []map[string]string{
		nil,
		{},
		{"mon": "9-17", "sun": "x"},
		{"Mån": "0900-1700", "Tis": "9:00 - 17:00", "ons": "17-9", "to": "24-1", "fr": "kl 11 till kl 23"},
		{"monday": "11.30–22.00", "mon": "10-11"},
	}
	for _, in := range inputs {
		got := Hours(in, report.New())
		require.Len(t, got, 7)
		for _, day := range restaurant.Weekdays {
			v := got[day]
			if v == restaurant.Closed {
				continue
			}
			require.Regexp(t, valueRe, v)
			require.Less(t, v[:5], v[len(v)-5:])
		}
	}
}

func TestTime(t *testing.T) {
	t.Parallel()

	valid := map[string]string{
		"9":     "09:00",
		"11":    "11:00",
		"9:30":  "09:30",
		"1130":  "11:30",
		"11.30": "11:30",
		"kl 12": "12:00",
		"24":    "24:00",
	}
	for in, want := range valid {
		rep := report.New()
		got, ok := Time(in, rep)
		require.True(t, ok, in)
		require.Equal(t, want, got, in)
		require.True(t, rep.Empty(), in)
	}

	for _, in := range []string{"25", "12:60", "24:30", "noon", ""} {
		rep := report.New()
		_, ok := Time(in, rep)
		require.False(t, ok, in)
		require.Len(t, rep.Errors, 1, in)
	}
}

func TestPhone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in          string
		want        string
		assumptions int
		errors      int
	}{
		{in: "0431-123 45", want: "+4643112345"},
		{in: "+46 (0)431-123 45", want: "+4643112345"},
		{in: "0046 8 123 456 78", want: "+46812345678"},
		{in: "431 123 45", want: "+4643112345", assumptions: 1},
		{in: "12", want: "", errors: 1},
		{in: "abc", want: "", errors: 1},
		{in: "", want: ""},
	}
	e164 := regexp.MustCompile(`^\+\d{7,15}$`)
	for _, tc := range tests {
		rep := report.New()
		got := Phone(tc.in, "+46", rep)
		require.Equal(t, tc.want, got, tc.in)
		require.Len(t, rep.Assumptions, tc.assumptions, tc.in)
		require.Len(t, rep.Errors, tc.errors, tc.in)
		if got != "" {
			require.Regexp(t, e164, got)
		}
	}
}

func TestPrice(t *testing.T) {
	t.Parallel()

	require.Equal(t, &restaurant.Price{Amount: 125, Currency: "SEK", Approximate: true}, Price("ca 125 kr", "SEK"))
	require.Equal(t, &restaurant.Price{Amount: 129, Currency: "SEK"}, Price("129:-", "SEK"))
	require.Equal(t, &restaurant.Price{Amount: 12.5, Currency: "EUR"}, Price("12,50 €", "SEK"))
	require.Equal(t, &restaurant.Price{Amount: 95, Currency: "SEK", Approximate: true}, Price("~95", "SEK"))
	require.Equal(t, &restaurant.Price{Amount: 95, Currency: "NOK"}, Price("95", "NOK"))
	require.Equal(t, &restaurant.Price{Amount: 1250, Currency: "SEK"}, Price("1 250 kr", "SEK"))
	require.Equal(t, &restaurant.Price{Amount: 2495.5, Currency: "SEK"}, Price("2\u00a0495,50 kr", "SEK"))
	require.Equal(t, &restaurant.Price{Amount: 95, Currency: "SEK"}, Price("95 kr/st", "SEK"))
	require.Nil(t, Price("gratis", "SEK"))
}

func TestEmail(t *testing.T) {
	t.Parallel()

	rep := report.New()
	require.Equal(t, "info@roma.se", Email(" Info@Roma.se ", rep))
	require.Equal(t, "boka@roma.se", Email("mailto:boka@roma.se", rep))
	require.True(t, rep.Empty())

	require.Empty(t, Email("info(at)roma.se", rep))
	require.Len(t, rep.Errors, 1)
}

func TestAllergens(t *testing.T) {
	t.Parallel()

	rep := report.New()
	got := Allergens([]string{"Mjölk", "gluten", "tryffel", "vetemjöl", ""}, rep)
	require.Equal(t, []string{"gluten", "laktos", "tryffel"}, got)
	require.Len(t, rep.Assumptions, 1)
}

func TestDate(t *testing.T) {
	t.Parallel()

	ref := time.Date(2025, time.March, 10, 15, 0, 0, 0, time.UTC)
	cases := map[string]string{
		"24 december": "2025-12-24",
		"1 januari":   "2026-01-01",
		"10 mars":     "2025-03-10",
		"2025-06-20":  "2025-06-20",
		"6/1":         "2026-01-06",
		"6/1/2027":    "2027-01-06",
		"3:e maj":     "2025-05-03",
		"5 Dec 2025":  "2025-12-05",
	}
	for in, want := range cases {
		got, ok := Date(in, ref)
		require.True(t, ok, in)
		require.Equal(t, want, got, in)
	}
	for _, in := range []string{"31/2", "32 maj", "snart", "12 brumaire"} {
		_, ok := Date(in, ref)
		require.False(t, ok, in)
	}
}

func TestAddress(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Storgatan 12, 262 32 Ängelholm", Address(" Storgatan 12 ,  26232   Ängelholm "))
	require.Equal(t, "Storgatan 12, 262 32 Ängelholm", Address("Storgatan 12, 262 32 Ängelholm"))
}

func TestCheckHours(t *testing.T) {
	t.Parallel()

	full := restaurant.Hours{}
	for _, d := range restaurant.Weekdays {
		full[d] = "11:00–22:00"
	}
	require.Empty(t, CheckHours(full))

	full[restaurant.Sunday] = "22:00–11:00"
	require.Equal(t, "sunday opens after it closes", CheckHours(full))

	delete(full, restaurant.Sunday)
	require.Equal(t, "expected exactly seven days", CheckHours(full))
}

func TestAbout(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Familjeägd pizzeria sedan 1987.", About("  Familjeägd pizzeria\n sedan 1987. "))
	require.Empty(t, About(" \n "))

	sentence := "Vi bakar all pizza i stenugn varje dag. "
	long := strings.Repeat(sentence, 20)
	got := About(long)
	require.LessOrEqual(t, len([]rune(got)), 400)
	require.True(t, strings.HasSuffix(got, "varje dag."), got)

	words := strings.Repeat("stenugn ", 80)
	got = About(words)
	require.True(t, strings.HasSuffix(got, "stenugn…"), got)
	require.LessOrEqual(t, len([]rune(got)), 401)
}
