package crawler

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"
)

type recordingPauser struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (p *recordingPauser) Pause(ctx context.Context, delay time.Duration) error {
	p.mu.Lock()
	p.delays = append(p.delays, delay)
	p.mu.Unlock()
	return ctx.Err()
}

func (p *recordingPauser) recorded() []time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]time.Duration(nil), p.delays...)
}

type scriptedResponse struct {
	resp FetchResponse
	err  error
}

// scriptedFetcher replays responses per URL; the last entry repeats.
type scriptedFetcher struct {
	mu      sync.Mutex
	scripts map[string][]scriptedResponse
	calls   map[string]int
}

func newScriptedFetcher() *scriptedFetcher {
	return &scriptedFetcher{
		scripts: map[string][]scriptedResponse{},
		calls:   map[string]int{},
	}
}

func (f *scriptedFetcher) html(url string, status int, body string) *scriptedFetcher {
	return f.add(url, scriptedResponse{resp: FetchResponse{
		URL:        url,
		StatusCode: status,
		Headers:    http.Header{"Content-Type": {"text/html"}},
		Body:       []byte(body),
	}})
}

func (f *scriptedFetcher) xml(url string, body string) *scriptedFetcher {
	return f.add(url, scriptedResponse{resp: FetchResponse{
		URL:        url,
		StatusCode: http.StatusOK,
		Headers:    http.Header{"Content-Type": {"application/xml"}},
		Body:       []byte(body),
	}})
}

func (f *scriptedFetcher) redirect(url, location string) *scriptedFetcher {
	return f.add(url, scriptedResponse{resp: FetchResponse{
		URL:        url,
		StatusCode: http.StatusMovedPermanently,
		Headers:    http.Header{"Location": {location}},
	}})
}

func (f *scriptedFetcher) fail(url string, err error) *scriptedFetcher {
	return f.add(url, scriptedResponse{err: err})
}

func (f *scriptedFetcher) add(url string, r scriptedResponse) *scriptedFetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts[url] = append(f.scripts[url], r)
	return f
}

func (f *scriptedFetcher) callCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

func (f *scriptedFetcher) Fetch(_ context.Context, req FetchRequest) (FetchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	script, ok := f.scripts[req.URL]
	if !ok {
		f.calls[req.URL]++
		return FetchResponse{URL: req.URL, StatusCode: http.StatusNotFound}, nil
	}
	idx := f.calls[req.URL]
	f.calls[req.URL]++
	if idx >= len(script) {
		idx = len(script) - 1
	}
	r := script[idx]
	return r.resp, r.err
}

var errConnRefused = errors.New("dial tcp: connection refused")

func newTestPolicy(maxRetries int) (*ExponentialRetryPolicy, *recordingPauser) {
	p := NewExponentialRetryPolicy(RetryConfig{
		MaxRetries: maxRetries,
		BaseDelay:  10 * time.Millisecond,
		MaxDelay:   time.Second,
		Factor:     2,
	}, nil)
	pauser := &recordingPauser{}
	p.pauser = pauser
	return p, pauser
}

func newTestCrawler(f Fetcher, maxRetries int) (*Crawler, *recordingPauser) {
	policy, pauser := newTestPolicy(maxRetries)
	c := New(Config{RequestTimeout: time.Second, Delay: 5 * time.Millisecond}, f, policy, nil)
	c.pauser = pauser
	return c, pauser
}
