// Package pipeline runs discovery, crawling, extraction, location detection,
// normalization and knowledge generation for one restaurant website.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"

	"github.com/JakeFAU/restaurant-knowledge/internal/crawler"
	"github.com/JakeFAU/restaurant-knowledge/internal/extract"
	"github.com/JakeFAU/restaurant-knowledge/internal/knowledge"
	"github.com/JakeFAU/restaurant-knowledge/internal/location"
	"github.com/JakeFAU/restaurant-knowledge/internal/normalize"
	"github.com/JakeFAU/restaurant-knowledge/internal/report"
	"github.com/JakeFAU/restaurant-knowledge/internal/restaurant"
)

// IDGenerator creates run identifiers.
type IDGenerator interface {
	NewID() (string, error)
}

// Config holds run-level settings.
type Config struct {
	SitemapPaths []string
	Concurrency  int
}

// LocationArtifacts are the regenerated outputs for one location.
type LocationArtifacts struct {
	Info    *restaurant.Info
	Items   []knowledge.Item
	Report  *report.Report
	Emitted bool
	Fields  normalize.FieldStates
}

// RunResult is everything one run produced. Nothing has been persisted yet.
type RunResult struct {
	RunID     string
	BaseURL   string
	Pages     []crawler.CrawledPage
	Locations []LocationArtifacts
	Index     []restaurant.IndexEntry
}

// Pipeline wires the stages together. A Pipeline may serve several runs but
// runs share nothing besides the stage objects.
type Pipeline struct {
	cfg        Config
	discovery  *crawler.Discovery
	crawler    *crawler.Crawler
	extractor  *extract.Extractor
	detector   *location.Detector
	builder    *normalize.InfoBuilder
	normalizer *normalize.Normalizer
	generator  *knowledge.Generator
	ids        IDGenerator
	logger     *zap.Logger
}

// Stages groups the collaborators a Pipeline drives.
type Stages struct {
	Discovery  *crawler.Discovery
	Crawler    *crawler.Crawler
	Extractor  *extract.Extractor
	Detector   *location.Detector
	Builder    *normalize.InfoBuilder
	Normalizer *normalize.Normalizer
	Generator  *knowledge.Generator
}

// New builds a Pipeline. Discovery and Crawler may be nil for callers that
// only use ProcessPages.
func New(cfg Config, stages Stages, ids IDGenerator, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if stages.Extractor == nil {
		stages.Extractor = extract.NewExtractor(logger)
	}
	if stages.Detector == nil {
		stages.Detector = location.NewDetector(nil, logger)
	}
	if stages.Builder == nil {
		stages.Builder = normalize.NewInfoBuilder()
	}
	if stages.Generator == nil {
		stages.Generator = knowledge.NewGenerator(0, logger)
	}
	return &Pipeline{
		cfg:        cfg,
		discovery:  stages.Discovery,
		crawler:    stages.Crawler,
		extractor:  stages.Extractor,
		detector:   stages.Detector,
		builder:    stages.Builder,
		normalizer: stages.Normalizer,
		generator:  stages.Generator,
		ids:        ids,
		logger:     logger,
	}
}

// Run discovers and crawls baseURL, then processes the crawled pages. Page
// failures never fail the run; an unusable base URL or a cancelled context
// does.
func (p *Pipeline) Run(ctx context.Context, baseURL string) (*RunResult, error) {
	if p.discovery == nil || p.crawler == nil {
		return nil, fmt.Errorf("run %q: pipeline has no crawler", baseURL)
	}
	urls, err := p.discovery.Discover(ctx, baseURL, p.cfg.SitemapPaths)
	if err != nil {
		return nil, err
	}
	p.logger.Info("Starting crawl", zap.String("url", baseURL), zap.Int("pages", len(urls)))

	pages := p.crawler.CrawlAll(ctx, urls, p.cfg.Concurrency)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("crawl %q: %w", baseURL, err)
	}
	return p.ProcessPages(baseURL, pages)
}

// ProcessPages runs every stage after the crawl. It can be called with pages
// from an earlier run.
func (p *Pipeline) ProcessPages(baseURL string, pages []crawler.CrawledPage) (*RunResult, error) {
	if p.normalizer == nil {
		return nil, fmt.Errorf("process %q: pipeline has no normalizer", baseURL)
	}
	runID, err := p.newRunID()
	if err != nil {
		return nil, err
	}
	res := &RunResult{RunID: runID, BaseURL: baseURL, Pages: pages}

	contents := p.extractor.ExtractAll(pages)
	if len(contents) == 0 {
		p.logger.Warn("No page could be extracted", zap.String("url", baseURL), zap.Int("pages", len(pages)))
		return res, nil
	}
	site := extract.MergeSite(contents)
	locations := p.detector.DetectLocations(site)

	slugs := map[string]int{}
	for _, loc := range locations {
		in := p.builder.Build(loc, site, contents, len(locations))
		norm := p.normalizer.Normalize(in)
		norm.Info.Slug = uniqueSlug(slugs, norm.Info.Slug)

		artifacts := LocationArtifacts{
			Info:    norm.Info,
			Report:  norm.Report,
			Emitted: norm.Emit,
			Fields:  norm.Fields,
		}
		if norm.Emit {
			artifacts.Items = p.generator.Generate(norm.Info)
			res.Index = append(res.Index, indexEntry(norm.Info))
		} else {
			p.logger.Warn("Location rejected",
				zap.String("name", loc.Name),
				zap.Strings("errors", norm.Report.Errors),
			)
		}
		res.Locations = append(res.Locations, artifacts)
	}

	p.logger.Info("Run finished",
		zap.String("run_id", runID),
		zap.String("url", baseURL),
		zap.Int("pages", len(pages)),
		zap.Int("extracted", len(contents)),
		zap.Int("locations", len(res.Locations)),
		zap.Int("emitted", len(res.Index)),
	)
	return res, nil
}

func (p *Pipeline) newRunID() (string, error) {
	if p.ids == nil {
		return "", nil
	}
	id, err := p.ids.NewID()
	if err != nil {
		return "", fmt.Errorf("create run id: %w", err)
	}
	return id, nil
}

// uniqueSlug suffixes repeated slugs within one run: roma, roma-2, roma-3.
func uniqueSlug(seen map[string]int, slug string) string {
	seen[slug]++
	if n := seen[slug]; n > 1 {
		return slug + "-" + strconv.Itoa(n)
	}
	return slug
}

func indexEntry(info *restaurant.Info) restaurant.IndexEntry {
	return restaurant.IndexEntry{
		Slug:          info.Slug,
		Name:          info.Name,
		Brand:         info.Brand,
		City:          info.City,
		Timezone:      info.Timezone,
		UpdatedAt:     info.UpdatedAt,
		ArtifactPaths: restaurant.ArtifactPaths(info.Slug),
	}
}

// ReadPages decodes pages saved by an earlier run. Any failure is fatal.
func ReadPages(r io.Reader) ([]crawler.CrawledPage, error) {
	var pages []crawler.CrawledPage
	if err := json.NewDecoder(r).Decode(&pages); err != nil {
		return nil, Fatal("read crawled pages", err)
	}
	return pages, nil
}
