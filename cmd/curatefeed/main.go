// Command curatefeed curates the new items of one feed, sitemap or URL list
// into the configured catalog. It is meant for cron jobs; the curator CLI
// offers the same run as `curator add-feed`.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"content-curator/pkg/catalog"
	"content-curator/pkg/config"
	"content-curator/pkg/curator"
	"content-curator/pkg/domain"
	"content-curator/pkg/httpclient"
	"content-curator/pkg/ingest"
	"content-curator/pkg/logging"
)

func main() {
	var (
		feedURL    = flag.String("feed", "", "RSS/Atom feed, sitemap URL or local URL list")
		max        = flag.Int("max", 20, "Max new items to curate (<=0 means no limit)")
		level      = flag.String("level", "", "CEFR level applied to every item")
		kind       = flag.String("kind", "", "video_link or text (default: inferred per URL)")
		tags       = flag.String("tags", "", "Comma-separated tags applied to every item")
		configPath = flag.String("config", "", "Configuration file path")
		dryRun     = flag.Bool("dry-run", false, "Only report what would be inserted")
	)
	flag.Parse()

	os.Exit(run(*configPath, ingest.FeedRequest{
		Location: *feedURL,
		Kind:     domain.ContentType(*kind),
		Level:    *level,
		Tags:     domain.ParseTagList(*tags),
		Max:      *max,
		DryRun:   *dryRun,
	}))
}

func run(configPath string, req ingest.FeedRequest) int {
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 2
	}
	logger, err := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		return 2
	}
	defer func() { _ = logger.Sync() }()

	if req.Location == "" {
		logger.Error("missing -feed")
		return 2
	}
	if err := cfg.EnsureDirectories(); err != nil {
		logger.Error("prepare directories", zap.Error(err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := catalog.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("open catalog", zap.Error(err))
		return 1
	}
	defer store.Close()

	client := httpclient.NewClient(httpclient.BrowserClient,
		httpclient.WithTimeout(cfg.HTTPTimeout()),
		httpclient.WithUserAgent(cfg.HTTP.UserAgent))
	ingester := ingest.New(curator.FromConfig(cfg, store, logger), ingest.DefaultSources(client, logger), logger)

	start := time.Now()
	logger.Info("curating feed", zap.String("feed", req.Location), zap.Int("max", req.Max), zap.Bool("dry_run", req.DryRun))
	summary, err := ingester.IngestFeed(ctx, req)
	if err != nil {
		logger.Error("feed curation failed", zap.Error(err))
		return 1
	}
	logger.Info("done",
		zap.Int("inserted", summary.Inserted),
		zap.Int("duplicates", summary.Duplicates),
		zap.Int("failed", summary.Failed),
		zap.Int("would_insert", summary.Planned),
		zap.Duration("duration", time.Since(start)))
	if summary.Failed > 0 {
		return 1
	}
	return 0
}
