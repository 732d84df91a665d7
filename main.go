package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/moepig/tagsweep/awsenv"
	"github.com/moepig/tagsweep/config"
	"github.com/moepig/tagsweep/regions"
	"github.com/moepig/tagsweep/resources"
	"github.com/moepig/tagsweep/resources/ec2instance"
	"github.com/moepig/tagsweep/resources/elasticache"
	"github.com/moepig/tagsweep/resources/generic"
	"github.com/moepig/tagsweep/resources/s3bucket"
	"github.com/moepig/tagsweep/run"
	"github.com/moepig/tagsweep/taggers"
)

func main() {
	// Command line arguments
	configPath := flag.String("config", "", "Path to sweep configuration file (optional)")
	logLevelStr := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	dryRun := flag.Bool("dry-run", false, "Discover and plan without applying any tags")
	flag.Parse()

	// Parse log level
	var logLevel slog.Level
	switch *logLevelStr {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level '%s' (must be debug, info, warn, or error)\n", *logLevelStr)
		flag.Usage()
		os.Exit(1)
	}

	// Initialize slog logger
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Load configuration (compiled defaults when no file is given)
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	ctx := context.Background()

	summary, err := sweep(ctx, cfg, *dryRun)
	if err != nil {
		slog.Error("Sweep aborted", "error", err)
		os.Exit(1)
	}

	// Individual tag failures are reported in the summary, not the exit
	// status.
	slog.Info("Sweep finished",
		"tagged", summary.Succeeded,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"elapsed", summary.Elapsed)
}

func sweep(ctx context.Context, cfg *config.Config, dryRun bool) (*run.Summary, error) {
	env := awsenv.New(cfg.ResolveHomeRegion())
	slog.Info("Starting sweep", "home_region", env.HomeRegion(), "mode", cfg.Mode, "dry_run", dryRun)

	// Register discoverers: the bulk discoverer first so that specific,
	// enriched records overwrite its results during aggregation.
	registry := resources.NewRegistry()
	registry.Register(generic.NewDiscoverer(env, cfg.TagFilters))
	registry.Register(ec2instance.NewDiscoverer(env))
	registry.Register(elasticache.NewDiscoverer(env))
	registry.Register(s3bucket.NewDiscoverer(env))

	dispatcher := taggers.NewDispatcher(
		taggers.NewGenericTagger(env),
		taggers.NewEC2Tagger(env),
		taggers.NewS3Tagger(env),
		taggers.NewElastiCacheTagger(env),
	)

	orchestrator := run.New(run.Options{
		DesiredTags:     cfg.DesiredTags,
		Mode:            cfg.PolicyMode(),
		RegionBatchSize: cfg.RegionBatchSize,
		InterTagDelay:   cfg.InterTagDelay(),
		MaxAttempts:     cfg.MaxAttempts,
		RetryBaseDelay:  cfg.RetryBaseDelay(),
		DryRun:          dryRun,
	}, regions.NewEnumerator(env), registry, dispatcher)

	return orchestrator.Run(ctx)
}
