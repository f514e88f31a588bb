// Package output persists the artifacts of a pipeline run: per-location
// record, knowledge and report files, the global index and change
// notifications.
package output

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"path"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/restaurant-knowledge/internal/knowledge"
	"github.com/JakeFAU/restaurant-knowledge/internal/pipeline"
	"github.com/JakeFAU/restaurant-knowledge/internal/restaurant"
)

// EventRestaurantUpdated is published once per emitted location.
const EventRestaurantUpdated = "restaurant.updated"

// BlobStore persists artifacts at a path. GetObject reports a missing
// object with an error wrapping fs.ErrNotExist.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, r io.Reader) (string, error)
	GetObject(ctx context.Context, path string) ([]byte, error)
}

// IndexStore keeps a queryable copy of the index.
type IndexStore interface {
	UpsertEntries(ctx context.Context, runID string, entries []restaurant.IndexEntry) error
}

// Publisher sends change notifications.
type Publisher interface {
	Publish(ctx context.Context, payload any, attributes map[string]string) (string, error)
}

// Hasher fingerprints artifact content.
type Hasher interface {
	Hash(data []byte) string
}

// Config controls where artifacts land.
type Config struct {
	Prefix string
}

// IndexDocument is the body of index.json.
type IndexDocument struct {
	RunID       string                  `json:"runId,omitempty"`
	GeneratedAt time.Time               `json:"generatedAt"`
	Restaurants []restaurant.IndexEntry `json:"restaurants"`
}

// Notification is the payload of a restaurant.updated event.
type Notification struct {
	Event             string            `json:"event"`
	RunID             string            `json:"runId,omitempty"`
	Slug              string            `json:"slug"`
	Name              string            `json:"name"`
	City              string            `json:"city"`
	DataQuality       string            `json:"dataQuality,omitempty"`
	KnowledgeItems    int               `json:"knowledgeItems"`
	KnowledgeChecksum string            `json:"knowledgeChecksum"`
	Artifacts         map[string]string `json:"artifacts"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// Summary describes what a Write call persisted.
type Summary struct {
	Written   []string
	Published int
}

// Clock stamps the index document.
type Clock interface {
	Now() time.Time
}

// Writer hands a RunResult to storage. It is the only component that
// performs I/O on pipeline output.
type Writer struct {
	cfg       Config
	blobs     BlobStore
	hasher    Hasher
	clock     Clock
	index     IndexStore
	publisher Publisher
	logger    *zap.Logger
}

// Option customizes a Writer.
type Option func(*Writer)

// WithIndexStore upserts index entries after the artifacts are written.
func WithIndexStore(s IndexStore) Option {
	return func(w *Writer) { w.index = s }
}

// WithPublisher publishes one notification per emitted location.
func WithPublisher(p Publisher) Option {
	return func(w *Writer) { w.publisher = p }
}

// NewWriter builds a Writer. blobs, hasher and clock are required.
func NewWriter(cfg Config, blobs BlobStore, hasher Hasher, clock Clock, logger *zap.Logger, opts ...Option) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Writer{cfg: cfg, blobs: blobs, hasher: hasher, clock: clock, logger: logger}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write persists every location of res, then the index, the index store rows
// and notifications, in that order. Any failure is returned as a
// *pipeline.FatalError; artifacts written before the failure stay in place
// and are replaced by the next run.
func (w *Writer) Write(ctx context.Context, res *pipeline.RunResult) (Summary, error) {
	var sum Summary
	if res == nil {
		return sum, pipeline.Fatal("write artifacts", fmt.Errorf("nil run result"))
	}

	checksums := make(map[string]string, len(res.Locations))
	for _, loc := range res.Locations {
		written, checksum, err := w.writeLocation(ctx, loc)
		sum.Written = append(sum.Written, written...)
		if err != nil {
			return sum, pipeline.Fatal("write artifacts for "+loc.Info.Slug, err)
		}
		checksums[loc.Info.Slug] = checksum
	}

	if len(res.Pages) > 0 {
		p, err := w.writeJSON(ctx, w.crawlPath(res.BaseURL), res.Pages)
		if err != nil {
			return sum, pipeline.Fatal("write crawled pages", err)
		}
		sum.Written = append(sum.Written, p)
	}

	entries, err := w.mergeIndex(ctx, res)
	if err != nil {
		return sum, pipeline.Fatal("read index", err)
	}
	index := IndexDocument{
		RunID:       res.RunID,
		GeneratedAt: w.clock.Now(),
		Restaurants: entries,
	}
	p, err := w.writeJSON(ctx, w.key(restaurant.IndexFile), index)
	if err != nil {
		return sum, pipeline.Fatal("write index", err)
	}
	sum.Written = append(sum.Written, p)

	if w.index != nil && len(res.Index) > 0 {
		if err := w.index.UpsertEntries(ctx, res.RunID, res.Index); err != nil {
			return sum, pipeline.Fatal("upsert index", err)
		}
	}

	if w.publisher != nil {
		for _, loc := range res.Locations {
			if !loc.Emitted {
				continue
			}
			if err := w.notify(ctx, res.RunID, loc, checksums[loc.Info.Slug]); err != nil {
				return sum, pipeline.Fatal("publish "+loc.Info.Slug, err)
			}
			sum.Published++
		}
	}

	w.logger.Info("Run output written",
		zap.String("run_id", res.RunID),
		zap.Int("objects", len(sum.Written)),
		zap.Int("published", sum.Published),
	)
	return sum, nil
}

// mergeIndex combines the stored index with this run's entries. Entries for
// slugs processed by this run are replaced, or dropped when the location was
// rejected; entries for other slugs are kept. A corrupt index is rebuilt.
func (w *Writer) mergeIndex(ctx context.Context, res *pipeline.RunResult) ([]restaurant.IndexEntry, error) {
	entries := []restaurant.IndexEntry{}
	data, err := w.blobs.GetObject(ctx, w.key(restaurant.IndexFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		var prev IndexDocument
		if jerr := json.Unmarshal(data, &prev); jerr != nil {
			w.logger.Warn("Stored index is unreadable, rebuilding", zap.Error(jerr))
			break
		}
		touched := make(map[string]struct{}, len(res.Locations)+len(res.Index))
		for _, loc := range res.Locations {
			touched[loc.Info.Slug] = struct{}{}
		}
		for _, e := range res.Index {
			touched[e.Slug] = struct{}{}
		}
		for _, e := range prev.Restaurants {
			if _, ok := touched[e.Slug]; !ok {
				entries = append(entries, e)
			}
		}
	}
	return append(entries, res.Index...), nil
}

// writeLocation always writes the report so rejected locations stay
// auditable; record and knowledge files only exist for emitted locations.
func (w *Writer) writeLocation(ctx context.Context, loc pipeline.LocationArtifacts) ([]string, string, error) {
	slug := loc.Info.Slug
	paths := restaurant.ArtifactPaths(slug)
	var written []string

	uri, err := w.blobs.PutObject(ctx, w.key(paths["report"]), "text/plain; charset=utf-8", bytes.NewBufferString(loc.Report.Render()))
	if err != nil {
		return written, "", fmt.Errorf("put report: %w", err)
	}
	written = append(written, uri)
	if !loc.Emitted {
		return written, "", nil
	}

	uri, err = w.writeJSON(ctx, w.key(paths["info"]), loc.Info)
	if err != nil {
		return written, "", err
	}
	written = append(written, uri)

	var buf bytes.Buffer
	if err := knowledge.EncodeJSONL(&buf, loc.Items); err != nil {
		return written, "", err
	}
	checksum := w.hasher.Hash(buf.Bytes())
	uri, err = w.blobs.PutObject(ctx, w.key(paths["knowledge"]), "application/x-ndjson", &buf)
	if err != nil {
		return written, "", fmt.Errorf("put knowledge: %w", err)
	}
	written = append(written, uri)

	w.logger.Debug("Location artifacts written",
		zap.String("slug", slug),
		zap.Int("items", len(loc.Items)),
		zap.String("checksum", checksum),
	)
	return written, checksum, nil
}

func (w *Writer) notify(ctx context.Context, runID string, loc pipeline.LocationArtifacts, checksum string) error {
	artifacts := restaurant.ArtifactPaths(loc.Info.Slug)
	for k, v := range artifacts {
		artifacts[k] = w.key(v)
	}
	n := Notification{
		Event:             EventRestaurantUpdated,
		RunID:             runID,
		Slug:              loc.Info.Slug,
		Name:              loc.Info.Name,
		City:              loc.Info.City,
		DataQuality:       loc.Info.DataQuality,
		KnowledgeItems:    len(loc.Items),
		KnowledgeChecksum: checksum,
		Artifacts:         artifacts,
		UpdatedAt:         loc.Info.UpdatedAt,
	}
	id, err := w.publisher.Publish(ctx, n, map[string]string{
		"event": EventRestaurantUpdated,
		"slug":  loc.Info.Slug,
	})
	if err != nil {
		return err
	}
	w.logger.Debug("Published notification", zap.String("slug", loc.Info.Slug), zap.String("message_id", id))
	return nil
}

func (w *Writer) writeJSON(ctx context.Context, key string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", key, err)
	}
	data = append(data, '\n')
	uri, err := w.blobs.PutObject(ctx, key, "application/json", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return uri, nil
}

func (w *Writer) key(rel string) string {
	if w.cfg.Prefix == "" {
		return rel
	}
	return path.Join(w.cfg.Prefix, rel)
}

// crawlPath is where the raw crawl of a site is kept for re-processing.
func (w *Writer) crawlPath(baseURL string) string {
	host := "site"
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		host = u.Host
	}
	return w.key(path.Join("_crawl", host+".json"))
}
