package crawler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

const sitemapIndexXML = `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>https://pizzeria.se/sitemap-pages.xml</loc></sitemap>
  <sitemap><loc>https://pizzeria.se/sitemap-posts.xml</loc></sitemap>
</sitemapindex>`

const pagesURLSetXML = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://pizzeria.se/</loc></url>
  <url><loc>https://pizzeria.se/meny</loc></url>
  <url><loc>https://pizzeria.se/kontakt#karta</loc></url>
  <url><loc>https://facebook.com/pizzeria</loc></url>
</urlset>`

const postsURLSetXML = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://pizzeria.se/meny</loc></url>
  <url><loc>https://pizzeria.se/nyheter/julbord</loc></url>
</urlset>`

func newTestDiscovery(f Fetcher) *Discovery {
	c, _ := newTestCrawler(f, 1)
	return NewDiscovery(DiscoveryConfig{MaxDepth: 3}, c, nil)
}

func TestDiscoverSitemapIndex(t *testing.T) {
	t.Parallel()

	f := newScriptedFetcher().
		xml("https://pizzeria.se/sitemap.xml", sitemapIndexXML).
		xml("https://pizzeria.se/sitemap-pages.xml", pagesURLSetXML).
		xml("https://pizzeria.se/sitemap-posts.xml", postsURLSetXML)

	urls, err := newTestDiscovery(f).Discover(context.Background(), "https://Pizzeria.se", nil)
	require.NoError(t, err)
	require.Equal(t, []string{
		"https://pizzeria.se/",
		"https://pizzeria.se/meny",
		"https://pizzeria.se/kontakt",
		"https://pizzeria.se/nyheter/julbord",
	}, urls)
}

func TestDiscoverFallsBackWhenSitemapsFail(t *testing.T) {
	t.Parallel()

	f := newScriptedFetcher().
		fail("https://pizzeria.se/sitemap.xml", errConnRefused).
		html("https://pizzeria.se/sitemap_index.xml", http.StatusInternalServerError, "")

	urls, err := newTestDiscovery(f).Discover(context.Background(), "https://pizzeria.se/", DefaultSitemapPaths)
	require.NoError(t, err)
	require.NotEmpty(t, urls)
	require.Equal(t, "https://pizzeria.se/", urls[0])
	require.Contains(t, urls, "https://pizzeria.se/meny")
	require.Contains(t, urls, "https://pizzeria.se/kontakt")
	require.Contains(t, urls, "https://pizzeria.se/om-oss")
	require.Contains(t, urls, "https://pizzeria.se/boka-bord")
	require.Len(t, urls, len(FallbackPaths))
}

func TestDiscoverFallsBackOnMalformedSitemap(t *testing.T) {
	t.Parallel()

	f := newScriptedFetcher().
		xml("https://pizzeria.se/sitemap.xml", "<urlset><url><loc>broken").
		html("https://pizzeria.se/sitemap_index.xml", http.StatusOK, "<html><body>Not a sitemap</body></html>")

	urls, err := newTestDiscovery(f).Discover(context.Background(), "https://pizzeria.se", nil)
	require.NoError(t, err)
	require.Len(t, urls, len(FallbackPaths))
	require.Equal(t, 1, f.callCount("https://pizzeria.se/sitemap.xml"), "malformed sitemaps are not retried")
}

func TestDiscoverFallsBackWhenOnlyForeignURLs(t *testing.T) {
	t.Parallel()

	f := newScriptedFetcher().xml("https://pizzeria.se/sitemap.xml", `<urlset>
  <url><loc>https://other.se/</loc></url>
</urlset>`)

	urls, err := newTestDiscovery(f).Discover(context.Background(), "https://pizzeria.se", nil)
	require.NoError(t, err)
	require.Len(t, urls, len(FallbackPaths))
}

func TestDiscoverRespectsMaxPages(t *testing.T) {
	t.Parallel()

	f := newScriptedFetcher().xml("https://pizzeria.se/sitemap.xml", pagesURLSetXML)
	c, _ := newTestCrawler(f, 0)
	d := NewDiscovery(DiscoveryConfig{MaxDepth: 1, MaxPages: 2}, c, nil)

	urls, err := d.Discover(context.Background(), "https://pizzeria.se", nil)
	require.NoError(t, err)
	require.Equal(t, []string{"https://pizzeria.se/", "https://pizzeria.se/meny"}, urls)
}

func TestDiscoverRejectsInvalidBase(t *testing.T) {
	t.Parallel()

	_, err := newTestDiscovery(newScriptedFetcher()).Discover(context.Background(), "not a url", nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMalformedInput))
}

func TestParseSitemap(t *testing.T) {
	t.Parallel()

	doc, err := ParseSitemap([]byte(sitemapIndexXML))
	require.NoError(t, err)
	require.Equal(t, "sitemapindex", doc.XMLName.Local)
	require.Len(t, doc.Sitemaps, 2)

	_, err = ParseSitemap([]byte(`<rss><channel/></rss>`))
	require.ErrorIs(t, err, ErrMalformedInput)

	_, err = ParseSitemap(nil)
	require.ErrorIs(t, err, ErrMalformedInput)
}
