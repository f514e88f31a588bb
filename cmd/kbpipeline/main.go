package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/JakeFAU/restaurant-knowledge/internal/app"
	"github.com/JakeFAU/restaurant-knowledge/internal/config"
	"github.com/JakeFAU/restaurant-knowledge/internal/logging"
	"github.com/JakeFAU/restaurant-knowledge/internal/output"
	"github.com/JakeFAU/restaurant-knowledge/internal/pipeline"
)

type options struct {
	configPath string
	baseURL    string
	pagesPath  string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "load config failed: %v\n", err)
		return 1
	}
	logger, err := logging.New(logging.Options{
		Development: cfg.Logging.Development,
		Level:       cfg.Logging.Level,
	})
	if err != nil {
		fmt.Fprintf(stderr, "logger init failed: %v\n", err)
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("build failed", zap.Error(err))
		return 1
	}
	defer a.Close(ctx)

	sum, err := execute(ctx, a, opts)
	if err != nil {
		var fatal *pipeline.FatalError
		if errors.As(err, &fatal) {
			logger.Error("run failed", zap.String("op", fatal.Op), zap.Error(fatal.Err))
		} else {
			logger.Error("run failed", zap.Error(err))
		}
		return 1
	}
	for _, uri := range sum.Written {
		fmt.Fprintln(os.Stdout, uri)
	}
	return 0
}

func execute(ctx context.Context, a *app.App, opts options) (output.Summary, error) {
	if opts.pagesPath == "" {
		return a.Run(ctx, opts.baseURL)
	}
	f, err := os.Open(opts.pagesPath)
	if err != nil {
		return output.Summary{}, pipeline.Fatal("open crawled pages", err)
	}
	defer f.Close()
	return a.RunPages(ctx, opts.baseURL, f)
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("kbpipeline", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to config file")
	fs.StringVar(&opts.baseURL, "url", "", "Restaurant website to crawl")
	fs.StringVar(&opts.pagesPath, "pages", "", "Process pages saved by an earlier crawl instead of crawling")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.baseURL == "" {
		fmt.Fprintln(stderr, "-url is required")
		fs.Usage()
		return opts, errors.New("missing -url")
	}
	return opts, nil
}
