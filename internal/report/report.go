// Package report accumulates the audit trail of one normalization pass.
package report

import (
	"fmt"
	"strings"
)

// NoIssues is rendered when a pass produced no entries at all.
const NoIssues = "No issues found."

// Report holds the errors, fixes and assumptions produced while normalizing a
// single location. A Report is owned by exactly one pass and is never shared.
type Report struct {
	Errors      []string `json:"errors"`
	Fixes       []string `json:"fixes"`
	Assumptions []string `json:"assumptions"`
}

// New returns an empty report.
func New() *Report {
	return &Report{
		Errors:      []string{},
		Fixes:       []string{},
		Assumptions: []string{},
	}
}

// Errorf records a validation or format problem.
func (r *Report) Errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Fixf records a value that was recovered from free text.
func (r *Report) Fixf(format string, args ...any) {
	r.Fixes = append(r.Fixes, fmt.Sprintf(format, args...))
}

// Assumef records a value the pipeline invented or defaulted.
func (r *Report) Assumef(format string, args ...any) {
	r.Assumptions = append(r.Assumptions, fmt.Sprintf(format, args...))
}

// Reset clears all entries.
func (r *Report) Reset() {
	r.Errors = r.Errors[:0]
	r.Fixes = r.Fixes[:0]
	r.Assumptions = r.Assumptions[:0]
}

// Empty reports whether nothing was recorded.
func (r *Report) Empty() bool {
	return len(r.Errors) == 0 && len(r.Fixes) == 0 && len(r.Assumptions) == 0
}

// HasErrors reports whether at least one error was recorded.
func (r *Report) HasErrors() bool {
	return len(r.Errors) > 0
}

// Render produces the plain-text report: errors, fixes and assumptions in
// that order, each as a bullet list. Empty sections are left out.
func (r *Report) Render() string {
	if r == nil || r.Empty() {
		return NoIssues + "\n"
	}
	var b strings.Builder
	writeSection(&b, "Errors", r.Errors)
	writeSection(&b, "Fixes", r.Fixes)
	writeSection(&b, "Assumptions", r.Assumptions)
	return b.String()
}

func writeSection(b *strings.Builder, title string, entries []string) {
	if len(entries) == 0 {
		return
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, e := range entries {
		fmt.Fprintf(b, "- %s\n", e)
	}
}
