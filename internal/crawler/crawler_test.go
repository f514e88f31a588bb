package crawler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFetchPageSuccess(t *testing.T) {
	t.Parallel()

	f := newScriptedFetcher().html("https://pizzeria.se/", http.StatusOK, "<html>hej</html>")
	c, _ := newTestCrawler(f, 2)

	page := c.FetchPage(context.Background(), "https://pizzeria.se/")
	require.True(t, page.OK())
	require.Equal(t, "<html>hej</html>", *page.RawHTML)
	require.Equal(t, http.StatusOK, *page.HTTPStatus)
	require.Equal(t, len("<html>hej</html>"), page.SizeBytes)
	require.Empty(t, page.Error)
}

func TestFetchPageFollowsRedirect(t *testing.T) {
	t.Parallel()

	f := newScriptedFetcher().
		redirect("https://pizzeria.se/meny", "/menu/").
		html("https://pizzeria.se/menu/", http.StatusOK, "menu")
	c, _ := newTestCrawler(f, 2)

	page := c.FetchPage(context.Background(), "https://pizzeria.se/meny")
	require.True(t, page.OK())
	require.Equal(t, "https://pizzeria.se/meny", page.URL)
	require.Equal(t, "menu", *page.RawHTML)
	require.Equal(t, 1, f.callCount("https://pizzeria.se/menu/"))
}

func TestFetchPageRedirectLoopFails(t *testing.T) {
	t.Parallel()

	f := newScriptedFetcher().
		redirect("https://pizzeria.se/a", "/b").
		redirect("https://pizzeria.se/b", "/a")
	c, _ := newTestCrawler(f, 0)

	page := c.FetchPage(context.Background(), "https://pizzeria.se/a")
	require.False(t, page.OK())
	require.Contains(t, page.Error, "too many redirects")
}

func TestFetchPageRateLimitedThenOK(t *testing.T) {
	t.Parallel()

	f := newScriptedFetcher().
		html("https://pizzeria.se/", http.StatusTooManyRequests, "").
		html("https://pizzeria.se/", http.StatusOK, "ok")
	c, pauser := newTestCrawler(f, 2)

	page := c.FetchPage(context.Background(), "https://pizzeria.se/")
	require.True(t, page.OK())
	require.Equal(t, 2, f.callCount("https://pizzeria.se/"))
	require.Len(t, pauser.recorded(), 1)
}

func TestFetchPageRateLimitBudgetExhausted(t *testing.T) {
	t.Parallel()

	f := newScriptedFetcher().html("https://pizzeria.se/", http.StatusTooManyRequests, "")
	c, _ := newTestCrawler(f, 2)

	page := c.FetchPage(context.Background(), "https://pizzeria.se/")
	require.False(t, page.OK())
	require.Nil(t, page.RawHTML)
	require.NotNil(t, page.HTTPStatus)
	require.Equal(t, http.StatusTooManyRequests, *page.HTTPStatus)
	require.Equal(t, 3, f.callCount("https://pizzeria.se/"))
}

func TestFetchPageNotFoundNotRetried(t *testing.T) {
	t.Parallel()

	f := newScriptedFetcher()
	c, _ := newTestCrawler(f, 3)

	page := c.FetchPage(context.Background(), "https://pizzeria.se/saknas")
	require.False(t, page.OK())
	require.Equal(t, http.StatusNotFound, *page.HTTPStatus)
	require.Equal(t, 1, f.callCount("https://pizzeria.se/saknas"))
}

func TestFetchPageNetworkError(t *testing.T) {
	t.Parallel()

	f := newScriptedFetcher().fail("https://down.se/", errConnRefused)
	c, _ := newTestCrawler(f, 1)

	page := c.FetchPage(context.Background(), "https://down.se/")
	require.False(t, page.OK())
	require.Nil(t, page.RawHTML)
	require.Nil(t, page.HTTPStatus)
	require.Contains(t, page.Error, "connection refused")
	require.Equal(t, 2, f.callCount("https://down.se/"))
}

type countingLimiter struct {
	waits []string
	err   error
}

func (l *countingLimiter) Wait(_ context.Context, rawURL string) error {
	l.waits = append(l.waits, rawURL)
	return l.err
}

func TestFetchPageWaitsOnLimiterEachAttempt(t *testing.T) {
	t.Parallel()

	f := newScriptedFetcher().
		redirect("https://pizzeria.se/meny", "/menu/").
		html("https://pizzeria.se/menu/", http.StatusOK, "menu")
	c, _ := newTestCrawler(f, 2)
	limiter := &countingLimiter{}
	c.UseLimiter(limiter)

	page := c.FetchPage(context.Background(), "https://pizzeria.se/meny")
	require.True(t, page.OK())
	require.Equal(t, []string{"https://pizzeria.se/meny", "https://pizzeria.se/menu/"}, limiter.waits)
}

func TestFetchPageLimiterCancellation(t *testing.T) {
	t.Parallel()

	f := newScriptedFetcher().html("https://pizzeria.se/", http.StatusOK, "ok")
	c, _ := newTestCrawler(f, 2)
	c.UseLimiter(&countingLimiter{err: context.Canceled})

	page := c.FetchPage(context.Background(), "https://pizzeria.se/")
	require.False(t, page.OK())
	require.Zero(t, f.callCount("https://pizzeria.se/"))
}

func TestCrawlAllKeepsInputOrder(t *testing.T) {
	t.Parallel()

	urls := []string{
		"https://pizzeria.se/",
		"https://pizzeria.se/meny",
		"https://pizzeria.se/kontakt",
		"https://pizzeria.se/saknas",
		"https://pizzeria.se/om-oss",
	}
	f := newScriptedFetcher().
		html(urls[0], http.StatusOK, "home").
		html(urls[1], http.StatusOK, "meny").
		html(urls[2], http.StatusOK, "kontakt").
		fail(urls[4], errConnRefused)

	for _, concurrency := range []int{1, 3} {
		c, _ := newTestCrawler(f, 0)
		pages := c.CrawlAll(context.Background(), urls, concurrency)
		require.Len(t, pages, len(urls))
		for i, p := range pages {
			require.Equal(t, urls[i], p.URL)
		}
		require.Equal(t, "meny", *pages[1].RawHTML)
		require.False(t, pages[3].OK())
		require.False(t, pages[4].OK())
	}
}

func TestCrawlSequentialInsertsDelay(t *testing.T) {
	t.Parallel()

	urls := []string{"https://a.se/", "https://a.se/meny", "https://a.se/kontakt"}
	f := newScriptedFetcher()
	for _, u := range urls {
		f.html(u, http.StatusOK, "x")
	}
	c, pauser := newTestCrawler(f, 0)
	c.CrawlAll(context.Background(), urls, 1)
	require.Equal(t, 2, len(pauser.recorded()))
}
