package cmd

import (
	"context"
	"fmt"
	"hash/crc32"
	"time"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/index-builder/internal/document"
	"github.com/Adithya-Monish-Kumar-K/index-builder/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/index-builder/internal/indexer/artifact"
	"github.com/Adithya-Monish-Kumar-K/index-builder/internal/publish"
	"github.com/Adithya-Monish-Kumar-K/index-builder/internal/source"
	"github.com/Adithya-Monish-Kumar-K/index-builder/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/index-builder/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/index-builder/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/index-builder/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/index-builder/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/index-builder/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/index-builder/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/index-builder/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/index-builder/pkg/resilience"
)

type buildFlags struct {
	repeat  int
	workers int
	output  string
}

func runBuild(ctx context.Context, cmd *cobra.Command, a *app, b buildFlags, args []string) error {
	if b.repeat < 0 {
		return apperrors.Newf(apperrors.ErrUsage, apperrors.ExitUsage, "--repeat must not be negative, got %d", b.repeat)
	}
	ctx = logger.WithBuildID(ctx, logger.NewBuildID())
	log := logger.FromContext(ctx).With("component", "cli")
	settings := a.settings

	cfg, err := document.LoadIndexConfig(args[0])
	if err != nil {
		return err
	}

	var m *metrics.Metrics
	var checker *health.Checker
	if settings.Metrics.Enabled {
		m = metrics.New()
		checker = health.NewChecker()
		shutdown := metrics.StartServer(settings.Metrics.Port, checker)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdown(shutdownCtx)
		}()
	}

	src, closeSource, err := openSource(ctx, settings, checker, args[1:])
	if err != nil {
		return err
	}
	defer closeSource()

	docs, err := src.Load(ctx)
	if err != nil {
		return err
	}
	log.Info("documents loaded", "source", src.Name(), "documents", len(docs))

	workers := b.workers
	if workers <= 0 {
		workers = settings.Build.Workers
	}
	engine, err := indexer.NewEngine(cfg, indexer.Options{Workers: workers, Metrics: m})
	if err != nil {
		return err
	}

	if b.repeat > 0 {
		return runRepeat(ctx, engine, docs, b.repeat)
	}

	idx, err := engine.Build(ctx, docs)
	if err != nil {
		return err
	}
	start := time.Now()
	data, err := artifact.Serialize(idx)
	if err != nil {
		return err
	}
	if m != nil {
		m.PhaseDuration.WithLabelValues("serialize").Observe(time.Since(start).Seconds())
		m.ArtifactBytes.Set(float64(len(data)))
	}

	out := publish.Artifact{
		Data:     data,
		Checksum: crc32.ChecksumIEEE(data),
		Summary:  idx.Summary(),
		BuiltAt:  time.Now(),
	}
	sinks, closeSinks, err := openSinks(cmd, settings, checker, b.output)
	if err != nil {
		return err
	}
	defer closeSinks()
	if err := publish.NewPublisher(m, sinks...).Publish(ctx, out); err != nil {
		return err
	}
	log.Info("artifact written",
		"bytes", len(data),
		"checksum", fmt.Sprintf("%08x", out.Checksum),
		"summary", out.Summary.String(),
	)
	return nil
}

// runRepeat repeats the build and serialize cycle and discards every result.
func runRepeat(ctx context.Context, engine *indexer.Engine, docs []document.Document, n int) error {
	log := logger.FromContext(ctx).With("component", "benchmark")
	var total time.Duration
	for i := 0; i < n; i++ {
		start := time.Now()
		idx, err := engine.Build(ctx, docs)
		if err != nil {
			return fmt.Errorf("iteration %d: %w", i+1, err)
		}
		if _, err := artifact.Serialize(idx); err != nil {
			return fmt.Errorf("iteration %d: %w", i+1, err)
		}
		elapsed := time.Since(start)
		total += elapsed
		log.Debug("iteration complete", "iteration", i+1, "duration", elapsed)
	}
	log.Info("benchmark complete",
		"iterations", n,
		"documents", len(docs),
		"total", total,
		"mean", total/time.Duration(n),
	)
	return nil
}

func openSource(ctx context.Context, settings *config.Config, checker *health.Checker, args []string) (source.Source, func(), error) {
	if len(args) > 0 {
		return source.File{Path: args[0]}, func() {}, nil
	}
	if settings.Source.Kind != config.SourcePostgres {
		return nil, nil, apperrors.New(apperrors.ErrUsage, apperrors.ExitUsage,
			"a document path is required unless source.kind is postgres")
	}
	client, err := postgres.New(ctx, settings.Postgres, retryConfig(settings))
	if err != nil {
		return nil, nil, err
	}
	checker.Register("postgres", health.PingCheck(client.Ping))
	closeFn := func() { client.Close() }
	return source.NewPostgres(client, settings.Source.Query, settings.Source.Timeout), closeFn, nil
}

func openSinks(cmd *cobra.Command, settings *config.Config, checker *health.Checker, output string) ([]publish.Sink, func(), error) {
	var sinks []publish.Sink
	var closers []func() error
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	location := "stdout"
	if output != "" {
		sinks = append(sinks, publish.File{Path: output})
		location = "file://" + output
	} else {
		sinks = append(sinks, publish.Writer{W: cmd.OutOrStdout()})
	}

	if settings.Redis.Enabled {
		client, err := redis.NewClient(settings.Redis)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, client.Close)
		checker.Register("redis", health.PingCheck(client.Ping))
		sinks = append(sinks, publish.Redis{
			Store: client,
			Key:   settings.Redis.Key,
			TTL:   settings.Redis.TTL,
			Retry: retryConfig(settings),
		})
		location = "redis://" + settings.Redis.Addr + "/" + settings.Redis.Key
	}

	if settings.Kafka.Enabled {
		producer := kafka.NewProducer(settings.Kafka)
		closers = append(closers, producer.Close)
		sinks = append(sinks, publish.Kafka{
			Producer: producer,
			Location: location,
			Retry:    retryConfig(settings),
		})
	}
	return sinks, closeAll, nil
}

func retryConfig(settings *config.Config) resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:  settings.Retry.MaxAttempts,
		InitialDelay: settings.Retry.InitialDelay,
		MaxDelay:     settings.Retry.MaxDelay,
	}
}
