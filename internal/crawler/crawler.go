package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/restaurant-knowledge/internal/metrics"
)

const maxRedirectHops = 5

// Config holds the settings for a crawl session.
type Config struct {
	UserAgent      string
	RequestTimeout time.Duration
	Delay          time.Duration
}

// Crawler fetches pages through a Fetcher, retrying transient failures.
type Crawler struct {
	cfg     Config
	fetcher Fetcher
	policy  *ExponentialRetryPolicy
	logger  *zap.Logger
	pauser  Pauser
	clock   Clock
	limiter Limiter
}

// New builds a Crawler.
func New(cfg Config, fetcher Fetcher, policy *ExponentialRetryPolicy, logger *zap.Logger) *Crawler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy == nil {
		policy = NewExponentialRetryPolicy(DefaultRetryConfig(), logger)
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	return &Crawler{
		cfg:     cfg,
		fetcher: fetcher,
		policy:  policy,
		logger:  logger,
		pauser:  timerPauser{},
		clock:   systemClock{},
	}
}

// UseLimiter makes every fetch attempt, including sitemap fetches and
// retries, wait on l first.
func (c *Crawler) UseLimiter(l Limiter) {
	c.limiter = l
}

// CrawlAll fetches every URL and returns one page per URL in input order.
// With concurrency 1 requests are dispatched sequentially with the configured
// delay between them; otherwise they run through a WorkerPool and the delay
// is only advisory.
func (c *Crawler) CrawlAll(ctx context.Context, urls []string, concurrency int) []CrawledPage {
	if concurrency <= 1 {
		return c.crawlSequential(ctx, urls)
	}
	pool := NewWorkerPool(concurrency, c.logger)
	tasks := make([]Task[CrawledPage], len(urls))
	for i, u := range urls {
		tasks[i] = func(ctx context.Context) (CrawledPage, error) {
			if i >= concurrency {
				if err := c.pauser.Pause(ctx, c.cfg.Delay); err != nil {
					return c.failedPage(u, nil, err, c.clock.Now()), nil
				}
			}
			return c.FetchPage(ctx, u), nil
		}
	}
	res := ExecuteAll(ctx, pool, tasks, func(done, total int, _ error) {
		c.logger.Debug("crawl progress", zap.Int("completed", done), zap.Int("total", total))
	})
	pages := res.Results
	for i, err := range res.Errors {
		if err != nil {
			pages[i] = c.failedPage(urls[i], nil, err, c.clock.Now())
		}
	}
	return pages
}

func (c *Crawler) crawlSequential(ctx context.Context, urls []string) []CrawledPage {
	pages := make([]CrawledPage, 0, len(urls))
	for i, u := range urls {
		if i > 0 {
			if err := c.pauser.Pause(ctx, c.cfg.Delay); err != nil {
				pages = append(pages, c.failedPage(u, nil, err, c.clock.Now()))
				continue
			}
		}
		pages = append(pages, c.FetchPage(ctx, u))
	}
	return pages
}

// FetchPage fetches one URL. Failures are reported on the returned page,
// never as an error.
func (c *Crawler) FetchPage(ctx context.Context, rawURL string) CrawledPage {
	start := c.clock.Now()
	current := rawURL
	for hop := 0; ; hop++ {
		resp, err := c.fetchWithRetry(ctx, current)
		if err != nil {
			var status *int
			var httpErr *HTTPError
			if errors.As(err, &httpErr) {
				status = &httpErr.StatusCode
			}
			page := c.failedPage(rawURL, status, err, start)
			c.observe(page)
			return page
		}
		if resp.IsRedirect() {
			if hop >= maxRedirectHops {
				page := c.failedPage(rawURL, &resp.StatusCode, fmt.Errorf("too many redirects from %s", rawURL), start)
				c.observe(page)
				return page
			}
			next, err := resolveLocation(current, resp.Headers.Get("Location"))
			if err != nil {
				page := c.failedPage(rawURL, &resp.StatusCode, err, start)
				c.observe(page)
				return page
			}
			c.logger.Debug("following redirect", zap.String("from", current), zap.String("to", next))
			current = next
			continue
		}
		html := string(resp.Body)
		status := resp.StatusCode
		page := CrawledPage{
			URL:        rawURL,
			HTTPStatus: &status,
			RawHTML:    &html,
			FetchedAt:  start,
			SizeBytes:  len(resp.Body),
			DurationMs: c.clock.Now().Sub(start).Milliseconds(),
		}
		c.observe(page)
		return page
	}
}

// fetchWithRetry performs one logical GET; 3xx responses are returned to the
// caller, other non-2xx statuses become *HTTPError so the policy can decide.
func (c *Crawler) fetchWithRetry(ctx context.Context, target string) (FetchResponse, error) {
	return Do(ctx, c.policy, "fetch "+target, func(ctx context.Context) (FetchResponse, error) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx, target); err != nil {
				return FetchResponse{}, err
			}
		}
		reqCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
		defer cancel()
		resp, err := c.fetcher.Fetch(reqCtx, FetchRequest{
			URL:     target,
			Timeout: c.cfg.RequestTimeout,
			Headers: c.headers(),
		})
		if err != nil {
			return FetchResponse{}, fmt.Errorf("fetch %s: %w", target, err)
		}
		if resp.IsRedirect() || (resp.StatusCode >= 200 && resp.StatusCode < 300) {
			return resp, nil
		}
		httpErr := &HTTPError{URL: target, StatusCode: resp.StatusCode}
		if httpErr.RateLimited() {
			httpErr.RetryAfter = parseRetryAfter(resp.Headers.Get("Retry-After"))
			metrics.ObserveRateLimitDelay(target, httpErr.RetryAfter)
		}
		return FetchResponse{}, httpErr
	})
}

func (c *Crawler) headers() http.Header {
	h := http.Header{}
	if c.cfg.UserAgent != "" {
		h.Set("User-Agent", c.cfg.UserAgent)
	}
	return h
}

func (c *Crawler) failedPage(rawURL string, status *int, err error, start time.Time) CrawledPage {
	c.logger.Warn("page fetch failed", zap.String("url", rawURL), zap.Error(err))
	return CrawledPage{
		URL:        rawURL,
		HTTPStatus: status,
		Error:      err.Error(),
		FetchedAt:  start,
		DurationMs: c.clock.Now().Sub(start).Milliseconds(),
	}
}

func (c *Crawler) observe(page CrawledPage) {
	status := "ok"
	if !page.OK() {
		status = "failed"
	}
	metrics.ObservePage(page.URL, status, page.SizeBytes, time.Duration(page.DurationMs)*time.Millisecond)
}

func resolveLocation(base, location string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse redirect base %q: %w", base, err)
	}
	target, err := url.Parse(strings.TrimSpace(location))
	if err != nil {
		return "", fmt.Errorf("parse redirect location %q: %w", location, err)
	}
	return baseURL.ResolveReference(target).String(), nil
}

func parseRetryAfter(raw string) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(raw); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
