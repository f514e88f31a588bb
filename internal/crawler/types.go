package crawler

import (
	"net/http"
	"time"
)

// CrawledPage is the final outcome of fetching one URL. Only the last attempt
// of a retried fetch is kept.
type CrawledPage struct {
	URL        string    `json:"url"`
	HTTPStatus *int      `json:"httpStatus"`
	RawHTML    *string   `json:"rawHtml"`
	Error      string    `json:"error,omitempty"`
	FetchedAt  time.Time `json:"fetchedAt"`
	SizeBytes  int       `json:"sizeBytes"`
	DurationMs int64     `json:"durationMs"`
}

// OK reports whether the page carries HTML that can be extracted.
func (p CrawledPage) OK() bool {
	return p.Error == "" && p.RawHTML != nil
}

// FetchRequest captures everything needed to fetch a URL.
type FetchRequest struct {
	URL     string
	Timeout time.Duration
	Headers http.Header
}

// FetchResponse is the result returned by a Fetcher implementation. Redirect
// responses are returned as-is so the crawler can follow them itself.
type FetchResponse struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// IsRedirect reports whether the response points at another location.
func (r FetchResponse) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400 && r.Headers.Get("Location") != ""
}
