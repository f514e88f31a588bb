package crawler

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// DefaultSitemapPaths are tried in order when no paths are configured.
var DefaultSitemapPaths = []string{"/sitemap.xml", "/sitemap_index.xml"}

// FallbackPaths are conventional restaurant pages crawled when no sitemap
// yields a usable URL: home, menu, contact, about and booking.
var FallbackPaths = []string{
	"/",
	"/meny",
	"/menu",
	"/kontakt",
	"/contact",
	"/om-oss",
	"/about",
	"/boka-bord",
	"/booking",
}

// DiscoveryConfig bounds sitemap traversal.
type DiscoveryConfig struct {
	MaxDepth int
	MaxPages int
}

// Discovery resolves the set of pages to crawl for a site.
type Discovery struct {
	cfg     DiscoveryConfig
	crawler *Crawler
	logger  *zap.Logger
}

// NewDiscovery builds a Discovery that fetches sitemaps through crawler.
func NewDiscovery(cfg DiscoveryConfig, crawler *Crawler, logger *zap.Logger) *Discovery {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Discovery{cfg: cfg, crawler: crawler, logger: logger}
}

// Sitemap is either a <urlset> or a <sitemapindex> document.
type Sitemap struct {
	XMLName  xml.Name
	URLs     []SitemapEntry `xml:"url"`
	Sitemaps []SitemapEntry `xml:"sitemap"`
}

// SitemapEntry is one <url> or <sitemap> element.
type SitemapEntry struct {
	Loc string `xml:"loc"`
}

// Discover returns the same-origin URLs listed in the site's sitemaps. When
// no sitemap yields a URL, for whatever reason, it returns FallbackPaths
// resolved against baseURL. Only an unusable base URL is an error.
func (d *Discovery) Discover(ctx context.Context, baseURL string, sitemapPaths []string) ([]string, error) {
	normalized, err := NormalizeURL(baseURL)
	if err != nil {
		return nil, fmt.Errorf("discover %q: %w", baseURL, err)
	}
	base, err := url.Parse(normalized)
	if err != nil {
		return nil, fmt.Errorf("discover %q: %w", baseURL, err)
	}
	if len(sitemapPaths) == 0 {
		sitemapPaths = DefaultSitemapPaths
	}

	collector := newURLSet(d.cfg.MaxPages)
	visited := map[string]struct{}{}
	for _, p := range sitemapPaths {
		target := resolvePath(base, p)
		if target == "" {
			continue
		}
		d.walk(ctx, base, target, 0, visited, collector)
		if collector.full() {
			break
		}
	}

	if collector.len() == 0 {
		d.logger.Info("no sitemap URLs found, using fallback paths", zap.String("base_url", normalized))
		return fallbackURLs(base), nil
	}
	d.logger.Info("sitemap discovery finished",
		zap.String("base_url", normalized),
		zap.Int("urls", collector.len()),
	)
	return collector.withFirst(normalized), nil
}

func (d *Discovery) walk(ctx context.Context, base *url.URL, target string, depth int, visited map[string]struct{}, out *urlSet) {
	if _, seen := visited[target]; seen || depth > d.cfg.MaxDepth || out.full() {
		return
	}
	visited[target] = struct{}{}

	doc, err := d.fetchSitemap(ctx, target)
	if err != nil {
		d.logger.Warn("sitemap skipped", zap.String("url", target), zap.Error(err))
		return
	}
	switch doc.XMLName.Local {
	case "sitemapindex":
		for _, child := range doc.Sitemaps {
			loc := strings.TrimSpace(child.Loc)
			if loc == "" {
				continue
			}
			d.walk(ctx, base, loc, depth+1, visited, out)
		}
	case "urlset":
		for _, entry := range doc.URLs {
			d.collect(base, entry.Loc, out)
		}
	}
}

func (d *Discovery) collect(base *url.URL, raw string, out *urlSet) {
	normalized, err := NormalizeURL(raw)
	if err != nil {
		return
	}
	u, err := url.Parse(normalized)
	if err != nil || !SameOrigin(base, u) {
		return
	}
	out.add(normalized)
}

func (d *Discovery) fetchSitemap(ctx context.Context, target string) (Sitemap, error) {
	resp, err := d.crawler.fetchWithRetry(ctx, target)
	if err != nil {
		return Sitemap{}, err
	}
	if resp.IsRedirect() {
		next, err := resolveLocation(target, resp.Headers.Get("Location"))
		if err != nil {
			return Sitemap{}, err
		}
		if resp, err = d.crawler.fetchWithRetry(ctx, next); err != nil {
			return Sitemap{}, err
		}
		if resp.IsRedirect() {
			return Sitemap{}, fmt.Errorf("sitemap %s redirects more than once", target)
		}
	}
	return ParseSitemap(resp.Body)
}

// ParseSitemap decodes a sitemap index or URL set document.
func ParseSitemap(body []byte) (Sitemap, error) {
	var doc Sitemap
	if err := xml.Unmarshal(body, &doc); err != nil {
		return Sitemap{}, fmt.Errorf("parse sitemap: %w", errors.Join(ErrMalformedInput, err))
	}
	switch doc.XMLName.Local {
	case "sitemapindex", "urlset":
		return doc, nil
	default:
		return Sitemap{}, fmt.Errorf("parse sitemap: unexpected root <%s>: %w", doc.XMLName.Local, ErrMalformedInput)
	}
}

func fallbackURLs(base *url.URL) []string {
	out := make([]string, 0, len(FallbackPaths))
	for _, p := range FallbackPaths {
		if u := resolvePath(base, p); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// urlSet keeps insertion order and drops duplicates.
type urlSet struct {
	limit int
	seen  map[string]struct{}
	urls  []string
}

func newURLSet(limit int) *urlSet {
	return &urlSet{limit: limit, seen: map[string]struct{}{}}
}

func (s *urlSet) add(u string) {
	if s.full() {
		return
	}
	if _, ok := s.seen[u]; ok {
		return
	}
	s.seen[u] = struct{}{}
	s.urls = append(s.urls, u)
}

func (s *urlSet) full() bool {
	return s.limit > 0 && len(s.urls) >= s.limit
}

func (s *urlSet) len() int {
	return len(s.urls)
}

// withFirst returns the set with first moved (or added) to the front.
func (s *urlSet) withFirst(first string) []string {
	out := []string{first}
	for _, u := range s.urls {
		if u != first {
			out = append(out, u)
		}
	}
	if s.limit > 0 && len(out) > s.limit {
		out = out[:s.limit]
	}
	return out
}
