// Package app builds the pipeline and its storage collaborators from
// configuration and runs them for one site.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/JakeFAU/restaurant-knowledge/internal/clock/system"
	"github.com/JakeFAU/restaurant-knowledge/internal/config"
	"github.com/JakeFAU/restaurant-knowledge/internal/crawler"
	"github.com/JakeFAU/restaurant-knowledge/internal/extract"
	collyfetcher "github.com/JakeFAU/restaurant-knowledge/internal/fetcher/colly"
	"github.com/JakeFAU/restaurant-knowledge/internal/hash/sha256"
	"github.com/JakeFAU/restaurant-knowledge/internal/id/uuid"
	"github.com/JakeFAU/restaurant-knowledge/internal/knowledge"
	"github.com/JakeFAU/restaurant-knowledge/internal/location"
	"github.com/JakeFAU/restaurant-knowledge/internal/logging"
	"github.com/JakeFAU/restaurant-knowledge/internal/metrics"
	"github.com/JakeFAU/restaurant-knowledge/internal/normalize"
	"github.com/JakeFAU/restaurant-knowledge/internal/output"
	"github.com/JakeFAU/restaurant-knowledge/internal/pipeline"
	"github.com/JakeFAU/restaurant-knowledge/internal/policy/ratelimit"
	memorypublisher "github.com/JakeFAU/restaurant-knowledge/internal/publisher/memory"
	gcppublisher "github.com/JakeFAU/restaurant-knowledge/internal/publisher/pubsub"
	gcsstorage "github.com/JakeFAU/restaurant-knowledge/internal/storage/gcs"
	localstorage "github.com/JakeFAU/restaurant-knowledge/internal/storage/local"
	memorystorage "github.com/JakeFAU/restaurant-knowledge/internal/storage/memory"
	pgstore "github.com/JakeFAU/restaurant-knowledge/internal/storage/postgres"
)

// App contains the application's dependencies.
type App struct {
	cfg         config.Config
	logger      *zap.Logger
	pipeline    *pipeline.Pipeline
	writer      *output.Writer
	blobs       output.BlobStore
	gcsStore    *gcsstorage.BlobStore
	indexStore  *pgstore.IndexStore
	pubsubClose func() error
	metricsSrv  *http.Server
}

// Build creates the application's dependencies. Anything opened before a
// failure is closed again.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (app *App, err error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	app = &App{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			app.Close(ctx)
			app = nil
		}
	}()

	app.logger.Info("building application dependencies",
		zap.String("output", cfg.Output.Provider),
		zap.String("index", cfg.Index.Provider),
		zap.String("notify", cfg.Notify.Provider),
	)

	if cfg.Metrics.Enabled {
		metrics.Init()
		app.startMetricsServer()
	}

	if app.blobs, err = app.setupStorage(ctx); err != nil {
		return app, err
	}

	var opts []output.Option
	if err = app.setupIndex(ctx); err != nil {
		return app, err
	}
	if app.indexStore != nil {
		opts = append(opts, output.WithIndexStore(app.indexStore))
	}
	publisher, err := app.setupPublisher(ctx)
	if err != nil {
		return app, err
	}
	if publisher != nil {
		opts = append(opts, output.WithPublisher(publisher))
	}

	hasher := sha256.New()
	clock := system.New()
	app.pipeline = app.setupPipeline(hasher, clock)
	app.writer = output.NewWriter(
		output.Config{Prefix: cfg.Output.Prefix},
		app.blobs,
		hasher,
		clock,
		logger.Named("output"),
		opts...,
	)
	return app, nil
}

// Run crawls baseURL and persists everything the run produced.
func (a *App) Run(ctx context.Context, baseURL string) (output.Summary, error) {
	started := time.Now()
	res, err := a.pipeline.Run(ctx, baseURL)
	if err != nil {
		return output.Summary{}, err
	}
	return a.write(ctx, res, started)
}

// RunPages processes pages saved by an earlier crawl of baseURL.
func (a *App) RunPages(ctx context.Context, baseURL string, r io.Reader) (output.Summary, error) {
	started := time.Now()
	pages, err := pipeline.ReadPages(r)
	if err != nil {
		return output.Summary{}, err
	}
	res, err := a.pipeline.ProcessPages(baseURL, pages)
	if err != nil {
		return output.Summary{}, err
	}
	return a.write(ctx, res, started)
}

func (a *App) write(ctx context.Context, res *pipeline.RunResult, started time.Time) (output.Summary, error) {
	logger := logging.ForRun(a.logger, res.RunID, res.BaseURL)
	emitted := 0
	for _, loc := range res.Locations {
		if loc.Emitted {
			emitted++
		}
	}
	sum, err := a.writer.Write(ctx, res)
	if err != nil {
		logger.Error("writing run output failed", zap.Error(err))
		return sum, err
	}
	logger.Info("run complete",
		zap.Int("pages", len(res.Pages)),
		zap.Int("locations", len(res.Locations)),
		zap.Int("emitted", emitted),
		zap.Int("objects", len(sum.Written)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return sum, nil
}

// Close releases every client the app opened.
func (a *App) Close(ctx context.Context) {
	if a.metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := a.metricsSrv.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("metrics server shutdown failed", zap.Error(err))
		}
	}
	if a.pubsubClose != nil {
		if err := a.pubsubClose(); err != nil {
			a.logger.Warn("pubsub client close failed", zap.Error(err))
		}
	}
	if a.gcsStore != nil {
		if err := a.gcsStore.Close(); err != nil {
			a.logger.Warn("gcs client close failed", zap.Error(err))
		}
	}
	a.indexStore.Close()
}

func (a *App) startMetricsServer() {
	if a.cfg.Metrics.Addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	a.metricsSrv = &http.Server{
		Addr:              a.cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		a.logger.Info("metrics server started", zap.String("addr", a.cfg.Metrics.Addr))
		if err := a.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server error", zap.Error(err))
		}
	}()
}

func (a *App) setupStorage(ctx context.Context) (output.BlobStore, error) {
	switch a.cfg.Output.Provider {
	case config.OutputGCS:
		a.logger.Info("using GCS storage backend", zap.String("bucket", a.cfg.Output.GCSBucket))
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("gcs client init failed: %w", err)
		}
		a.gcsStore, err = gcsstorage.New(client, gcsstorage.Config{Bucket: a.cfg.Output.GCSBucket})
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("gcs blob store init failed: %w", err)
		}
		if err := a.gcsStore.CheckBucket(ctx); err != nil {
			return nil, err
		}
		return a.gcsStore, nil
	case config.OutputLocal:
		a.logger.Info("using local storage backend", zap.String("path", a.cfg.Output.BaseDir))
		store, err := localstorage.New(localstorage.Config{BaseDir: a.cfg.Output.BaseDir})
		if err != nil {
			return nil, fmt.Errorf("local blob store init failed: %w", err)
		}
		return store, nil
	default:
		a.logger.Info("using in-memory storage backend")
		return memorystorage.NewBlobStore(), nil
	}
}

func (a *App) setupIndex(ctx context.Context) error {
	if a.cfg.Index.Provider != config.IndexPostgres {
		return nil
	}
	var err error
	a.indexStore, err = pgstore.NewIndexStore(ctx, pgstore.IndexStoreConfig{
		DSN:   a.cfg.Index.DSN,
		Table: a.cfg.Index.Table,
	})
	if err != nil {
		return fmt.Errorf("index store init failed: %w", err)
	}
	a.logger.Info("index store initialized", zap.String("table", a.cfg.Index.Table))
	return nil
}

func (a *App) setupPublisher(ctx context.Context) (output.Publisher, error) {
	switch a.cfg.Notify.Provider {
	case config.NotifyPubSub:
		publisher, closer, err := gcppublisher.Connect(ctx, a.cfg.Notify.ProjectID, a.cfg.Notify.Topic)
		if err != nil {
			return nil, fmt.Errorf("pubsub publisher init failed: %w", err)
		}
		a.pubsubClose = closer
		a.logger.Info("Pub/Sub publisher initialized",
			zap.String("project", a.cfg.Notify.ProjectID),
			zap.String("topic", a.cfg.Notify.Topic),
		)
		return publisher, nil
	case config.NotifyMemory:
		a.logger.Info("using in-memory publisher")
		return memorypublisher.New(), nil
	default:
		return nil, nil
	}
}

func (a *App) setupPipeline(hasher *sha256.Hasher, clock *system.Clock) *pipeline.Pipeline {
	cfg := a.cfg
	logger := a.logger

	policy := crawler.NewExponentialRetryPolicy(crawler.RetryConfig{
		MaxRetries: cfg.Retry.MaxRetries,
		BaseDelay:  cfg.Retry.BaseDelay,
		MaxDelay:   cfg.Retry.MaxDelay,
		Factor:     cfg.Retry.Factor,
	}, logger.Named("retry"))
	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent:     cfg.Crawler.UserAgent,
		RespectRobots: cfg.Crawler.RespectRobots,
		Timeout:       cfg.Crawler.RequestTimeout,
	})
	c := crawler.New(crawler.Config{
		UserAgent:      cfg.Crawler.UserAgent,
		RequestTimeout: cfg.Crawler.RequestTimeout,
		Delay:          cfg.Crawler.Delay,
	}, fetcher, policy, logger.Named("crawler"))
	if cfg.Crawler.MaxRPS > 0 {
		c.UseLimiter(ratelimit.New(ratelimit.Config{RPS: cfg.Crawler.MaxRPS, Burst: cfg.Crawler.Burst}))
		logger.Info("rate limiter enabled",
			zap.Float64("max_rps", cfg.Crawler.MaxRPS),
			zap.Int("burst", cfg.Crawler.Burst),
		)
	}
	logger.Info("using colly fetcher",
		zap.String("user_agent", cfg.Crawler.UserAgent),
		zap.Bool("respect_robots", cfg.Crawler.RespectRobots),
	)

	return pipeline.New(
		pipeline.Config{
			SitemapPaths: cfg.Crawler.SitemapPaths,
			Concurrency:  cfg.Crawler.Concurrency,
		},
		pipeline.Stages{
			Discovery: crawler.NewDiscovery(crawler.DiscoveryConfig{
				MaxDepth: cfg.Crawler.MaxSitemapDepth,
				MaxPages: cfg.Crawler.MaxPages,
			}, c, logger.Named("discovery")),
			Crawler:   c,
			Extractor: extract.NewExtractor(logger.Named("extract")),
			Detector:  location.NewDetector(cfg.Normalize.KnownCities, logger.Named("location")),
			Builder:   normalize.NewInfoBuilder(),
			Normalizer: normalize.New(normalize.Config{
				DefaultCountryCode: cfg.Normalize.DefaultCountryCode,
				DefaultCurrency:    cfg.Normalize.DefaultCurrency,
				Timezone:           cfg.Normalize.Timezone,
				KnownCities:        cfg.Normalize.KnownCities,
			}, clock, hasher, logger.Named("normalize")),
			Generator: knowledge.NewGenerator(cfg.Normalize.LargeGroupThreshold, logger.Named("knowledge")),
		},
		uuid.New(),
		logger.Named("pipeline"),
	)
}
