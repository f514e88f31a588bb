package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/JakeFAU/restaurant-knowledge/internal/crawler"
)

const (
	strippedSelectors    = "script, style, noscript, template, svg, iframe"
	nonContentSelectors  = "nav, header, footer, [role=navigation], [role=banner], [role=contentinfo], .cookie-banner, #cookie-notice"
	headingSelectors     = "h1, h2, h3"
	maxHeadingRuneLength = 120
)

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "br": true,
	"dd": true, "div": true, "dl": true, "dt": true, "figcaption": true, "figure": true,
	"footer": true, "form": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "header": true, "hr": true, "li": true, "main": true,
	"nav": true, "ol": true, "p": true, "pre": true, "section": true, "table": true,
	"tr": true, "ul": true,
}

var cellElements = map[string]bool{"td": true, "th": true}

// Extractor parses pages into Content. It is stateless and safe for concurrent use.
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor returns an Extractor that logs parse problems to logger.
func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// ExtractAll extracts every successfully crawled page, skipping failures.
func (e *Extractor) ExtractAll(pages []crawler.CrawledPage) []Content {
	out := make([]Content, 0, len(pages))
	for _, page := range pages {
		if !page.OK() {
			continue
		}
		out = append(out, e.Extract(page.URL, *page.RawHTML))
	}
	return out
}

// Extract parses rawHTML fetched from pageURL. Unparseable markup yields an
// empty Content rather than an error.
func (e *Extractor) Extract(pageURL, rawHTML string) Content {
	content := emptyContent(pageURL)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		e.logger.Warn("Failed to parse page HTML", zap.String("url", pageURL), zap.Error(err))
		content.Category = Categorize(pageURL, "", nil)
		return content
	}

	doc.Find(strippedSelectors).Remove()

	content.Title = pageTitle(doc)
	content.Description = metaDescription(doc)
	content.Headings = headings(doc)
	content.Links = links(doc, pageURL)

	body := doc.Find("body").First()
	if body.Length() == 0 {
		body = doc.Selection
	}
	content.FullText = blockText(body)

	main := body.Clone()
	main.Find(nonContentSelectors).Remove()
	content.MainText = blockText(main)
	if content.Description != "" && !strings.Contains(content.MainText, content.Description) {
		content.MainText = joinLines(content.Description, content.MainText)
	}

	content.Category = Categorize(pageURL, content.Title, content.Headings)
	content.Summary = content.Description
	if content.Category == CategoryAbout {
		if summary := e.readableSummary(pageURL, rawHTML); summary != "" {
			content.Summary = summary
		}
	}
	content.MenuItemCandidates = ExtractMenu(doc, content.MainText)
	content.HoursCandidate = ExtractHours(content.FullText)
	content.ContactCandidate = ExtractContact(content.FullText, content.Links)
	content.Allergens = ExtractAllergens(content.FullText)
	content.SpecialHours = ExtractSpecialHours(content.FullText)
	content.Messages = ExtractMessages(content.MainText)
	content.Booking = ExtractBooking(content.FullText)

	e.logger.Debug("Extracted page",
		zap.String("url", pageURL),
		zap.String("category", string(content.Category)),
		zap.Int("menu_candidates", len(content.MenuItemCandidates)),
		zap.Int("hours_days", len(content.HoursCandidate)),
	)
	return content
}

// readableSummary runs readability over an about page and returns its excerpt,
// or the start of the article text when the page has no excerpt.
func (e *Extractor) readableSummary(pageURL, rawHTML string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(strings.NewReader(rawHTML), parsed)
	if err != nil {
		e.logger.Debug("Readability failed", zap.String("url", pageURL), zap.Error(err))
		return ""
	}
	if excerpt := collapseSpace(article.Excerpt); excerpt != "" {
		return excerpt
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return ""
	}
	return collapseSpace(doc.Text())
}

func pageTitle(doc *goquery.Document) string {
	if title := collapseSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		if title := collapseSpace(og); title != "" {
			return title
		}
	}
	return collapseSpace(doc.Find("h1").First().Text())
}

func metaDescription(doc *goquery.Document) string {
	for _, sel := range []string{`meta[name="description"]`, `meta[property="og:description"]`} {
		if v, ok := doc.Find(sel).Attr("content"); ok {
			if d := collapseSpace(v); d != "" {
				return d
			}
		}
	}
	return ""
}

func headings(doc *goquery.Document) []string {
	var out []string
	seen := make(map[string]struct{})
	doc.Find(headingSelectors).Each(func(_ int, s *goquery.Selection) {
		text := collapseSpace(s.Text())
		if text == "" || len([]rune(text)) > maxHeadingRuneLength {
			return
		}
		if _, dup := seen[text]; dup {
			return
		}
		seen[text] = struct{}{}
		out = append(out, text)
	})
	return out
}

func links(doc *goquery.Document, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}
	var out []string
	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		if base != nil {
			ref = base.ResolveReference(ref)
		}
		ref.Fragment = ""
		abs := ref.String()
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		out = append(out, abs)
	})
	return out
}

// blockText renders the selection's text with one line per block element.
func blockText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		writeNode(&b, n)
	}
	return cleanLines(b.String())
}

func writeNode(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.CommentNode, html.DoctypeNode:
		return
	}
	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		b.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeNode(b, c)
	}
	switch {
	case block:
		b.WriteByte('\n')
	case n.Type == html.ElementNode && cellElements[n.Data]:
		b.WriteByte(' ')
	}
}

func cleanLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = collapseSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func joinLines(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}
