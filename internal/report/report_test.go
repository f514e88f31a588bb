package report

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderNoIssues(t *testing.T) {
	t.Parallel()

	require.Equal(t, "No issues found.\n", New().Render())
	var nilReport *Report
	require.Equal(t, "No issues found.\n", nilReport.Render())
}

func TestRenderSectionOrder(t *testing.T) {
	t.Parallel()

	r := New()
	r.Assumef("monday assumed closed")
	r.Errorf("invalid email %q", "nope")
	r.Fixf("phone recovered from contact text")

	want := "Errors:\n- invalid email \"nope\"\n\n" +
		"Fixes:\n- phone recovered from contact text\n\n" +
		"Assumptions:\n- monday assumed closed\n"
	require.Equal(t, want, r.Render())
}

func TestRenderOmitsEmptySections(t *testing.T) {
	t.Parallel()

	r := New()
	r.Assumef("tuesday assumed closed")
	require.Equal(t, "Assumptions:\n- tuesday assumed closed\n", r.Render())
}

func TestReset(t *testing.T) {
	t.Parallel()

	r := New()
	r.Errorf("a")
	r.Fixf("b")
	r.Assumef("c")
	require.True(t, r.HasErrors())
	r.Reset()
	require.True(t, r.Empty())
	require.False(t, r.HasErrors())
}
