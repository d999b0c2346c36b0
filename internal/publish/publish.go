// Package publish delivers a serialized artifact to its destinations: a
// writer such as stdout, an atomically replaced file, a Redis key, and an
// index-built event on Kafka.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/index-builder/internal/indexer/artifact"
	"github.com/Adithya-Monish-Kumar-K/index-builder/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/index-builder/pkg/metrics"
)

// Artifact is one serialized index ready for delivery.
type Artifact struct {
	Data     []byte
	Checksum uint32
	Summary  artifact.Summary
	BuiltAt  time.Time
}

// Sink delivers an artifact to one destination.
type Sink interface {
	Name() string
	Publish(ctx context.Context, a Artifact) error
}

// Publisher fans an artifact out to its sinks in order and stops at the
// first failure.
type Publisher struct {
	sinks   []Sink
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewPublisher(m *metrics.Metrics, sinks ...Sink) *Publisher {
	return &Publisher{
		sinks:   sinks,
		metrics: m,
		logger:  logger.WithComponent("publisher"),
	}
}

func (p *Publisher) Publish(ctx context.Context, a Artifact) error {
	for _, sink := range p.sinks {
		start := time.Now()
		err := sink.Publish(ctx, a)
		p.record(sink.Name(), err)
		if err != nil {
			return fmt.Errorf("publishing to %s: %w", sink.Name(), err)
		}
		p.logger.Debug("artifact published",
			"sink", sink.Name(),
			"bytes", len(a.Data),
			"duration", time.Since(start),
		)
	}
	return nil
}

func (p *Publisher) record(sink string, err error) {
	if p.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	p.metrics.PublishTotal.WithLabelValues(sink, status).Inc()
}
