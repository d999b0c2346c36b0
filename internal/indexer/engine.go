// Package indexer orchestrates one index build: a single-writer pass assigns
// document ids, workers tokenize contiguous shards of the corpus in parallel,
// and the shard results are merged into one artifact.Index.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/index-builder/internal/document"
	"github.com/Adithya-Monish-Kumar-K/index-builder/internal/indexer/artifact"
	"github.com/Adithya-Monish-Kumar-K/index-builder/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/index-builder/internal/indexer/registry"
	"github.com/Adithya-Monish-Kumar-K/index-builder/internal/indexer/shard"
	"github.com/Adithya-Monish-Kumar-K/index-builder/internal/indexer/stats"
	"github.com/Adithya-Monish-Kumar-K/index-builder/internal/indexer/stored"
	"github.com/Adithya-Monish-Kumar-K/index-builder/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/index-builder/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/index-builder/pkg/metrics"
)

// Options tune a build. The zero value uses one worker per CPU and reports
// no metrics.
type Options struct {
	Workers int
	Metrics *metrics.Metrics
}

// Engine builds indexes for one index configuration. It holds no state
// between builds and may be reused.
type Engine struct {
	cfg     document.IndexConfig
	workers int
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewEngine validates cfg and returns an Engine for it. An empty IDField
// means DefaultIDField.
func NewEngine(cfg document.IndexConfig, opts Options) (*Engine, error) {
	if cfg.IDField == "" {
		cfg.IDField = document.DefaultIDField
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Engine{
		cfg:     cfg,
		workers: workers,
		metrics: opts.Metrics,
		logger:  logger.WithComponent("indexer"),
	}, nil
}

// Build indexes docs in order. Document order fixes the internal ids, and the
// result does not depend on the number of workers. On error no index is
// returned.
func Build(ctx context.Context, cfg document.IndexConfig, docs []document.Document, opts Options) (*artifact.Index, error) {
	e, err := NewEngine(cfg, opts)
	if err != nil {
		return nil, err
	}
	return e.Build(ctx, docs)
}

type shardResult struct {
	index  *index.InvertedIndex
	stats  *stats.Collector
	stored *stored.Store
}

func (e *Engine) Build(ctx context.Context, docs []document.Document) (*artifact.Index, error) {
	start := time.Now()
	idx, err := e.build(ctx, docs)
	if e.metrics != nil {
		status := "success"
		if err != nil {
			status = "failure"
		}
		e.metrics.BuildsTotal.WithLabelValues(status).Inc()
	}
	if err != nil {
		e.logger.Error("build failed", "documents", len(docs), "error", err)
		return nil, err
	}
	e.logger.Info("build complete",
		"documents", idx.DocumentCount,
		"fields", len(idx.FieldNames),
		"terms", idx.Inverted.Len(),
		"postings", idx.Inverted.NumPostings(),
		"workers", e.workers,
		"duration", time.Since(start),
	)
	return idx, nil
}

func (e *Engine) build(ctx context.Context, docs []document.Document) (*artifact.Index, error) {
	phase := time.Now()
	reg := registry.New()
	for _, name := range e.cfg.Fields {
		reg.RegisterField(name)
	}
	for pos, doc := range docs {
		ext, err := doc.ID(e.cfg.IDField)
		if err != nil {
			return nil, fmt.Errorf("document at position %d: %q: %w", pos, e.cfg.IDField, err)
		}
		if _, err := reg.RegisterDocument(ext); err != nil {
			return nil, err
		}
	}
	e.observe("register", phase)

	phase = time.Now()
	if e.metrics != nil {
		e.metrics.ShardDocCount.Reset()
	}
	numFields := reg.NumFields()
	ranges := shard.Plan(len(docs), e.workers)
	results := make([]shardResult, len(ranges))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for _, r := range ranges {
		g.Go(func() error {
			res, err := e.buildShard(gctx, r, docs, numFields)
			if err != nil {
				return fmt.Errorf("building %s: %w", r, err)
			}
			results[r.ID] = res
			if e.metrics != nil {
				e.metrics.ShardDocCount.WithLabelValues(strconv.Itoa(r.ID)).Set(float64(r.Len()))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	e.observe("index", phase)

	phase = time.Now()
	indexes := make([]*index.InvertedIndex, len(results))
	collectors := make([]*stats.Collector, len(results))
	stores := make([]*stored.Store, len(results))
	for i, res := range results {
		indexes[i] = res.index
		collectors[i] = res.stats
		stores[i] = res.stored
	}
	inverted := index.Merge(indexes...)
	lengths, err := stats.Merge(numFields, collectors...)
	if err != nil {
		return nil, err
	}
	records, err := stored.Merge(e.cfg.StoredFields, stores...)
	if err != nil {
		return nil, err
	}
	averages := lengths.ComputeAverages()
	e.observe("merge", phase)

	idx := &artifact.Index{
		DocumentCount:      reg.NumDocuments(),
		NextID:             reg.NumDocuments(),
		DocumentIDs:        make(map[int]document.Value, reg.NumDocuments()),
		FieldNames:         reg.FieldNames(),
		FieldLength:        make(map[int][]int, reg.NumDocuments()),
		AverageFieldLength: averages,
		StoredFields:       records.Records(),
		Inverted:           inverted,
	}
	for docID, ext := range reg.DocumentIDs() {
		idx.DocumentIDs[docID] = ext
	}
	for docID, row := range lengths.Table() {
		idx.FieldLength[docID] = row
	}

	if e.metrics != nil {
		e.metrics.DocumentsIndexedTotal.Add(float64(idx.DocumentCount))
		e.metrics.IndexTerms.Set(float64(inverted.Len()))
		e.metrics.IndexPostings.Set(float64(inverted.NumPostings()))
	}
	return idx, nil
}

// buildShard indexes the documents of one range with structures private to
// the calling worker.
func (e *Engine) buildShard(ctx context.Context, r shard.Range, docs []document.Document, numFields int) (shardResult, error) {
	ib := index.NewBuilder()
	collector := stats.NewCollector(numFields)
	store := stored.NewStore(e.cfg.StoredFields)

	for docID := r.Start; docID < r.End; docID++ {
		if err := ctx.Err(); err != nil {
			return shardResult{}, err
		}
		doc := docs[docID]
		collector.EnsureDocument(docID)
		for fieldID, name := range e.cfg.Fields {
			v, ok := doc.Get(name)
			if !ok {
				continue
			}
			count, err := ib.AddDocument(docID, fieldID, tokenizer.TokenizeValue(v))
			if err != nil {
				return shardResult{}, err
			}
			if err := collector.RecordFieldLength(docID, fieldID, count); err != nil {
				return shardResult{}, err
			}
		}
		store.StoreFields(docID, doc)
	}

	e.logger.Debug("shard indexed", "shard", r.String(), "documents", r.Len())
	return shardResult{
		index:  ib.Finalize(),
		stats:  collector,
		stored: store,
	}, nil
}

func (e *Engine) observe(phase string, since time.Time) {
	if e.metrics != nil {
		e.metrics.PhaseDuration.WithLabelValues(phase).Observe(time.Since(since).Seconds())
	}
}
