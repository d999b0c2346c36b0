package publish

import (
	"context"
	"fmt"
	"time"

	"github.com/Adithya-Monish-Kumar-K/index-builder/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/index-builder/pkg/resilience"
)

// KeyValueStore is the subset of the Redis client used by the Redis sink.
type KeyValueStore interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Redis stores the artifact under Key.
type Redis struct {
	Store KeyValueStore
	Key   string
	TTL   time.Duration
	Retry resilience.RetryConfig
}

func (s Redis) Name() string { return "redis" }

func (s Redis) Publish(ctx context.Context, a Artifact) error {
	return resilience.Retry(ctx, "redis-set", s.Retry, func() error {
		return s.Store.Set(ctx, s.Key, a.Data, s.TTL)
	})
}

// EventPublisher is the subset of the Kafka producer used by the Kafka sink.
type EventPublisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

// IndexBuilt announces a newly published artifact.
type IndexBuilt struct {
	Checksum  string    `json:"checksum"`
	Bytes     int       `json:"bytes"`
	Documents int       `json:"documents"`
	Fields    []string  `json:"fields"`
	Terms     int       `json:"terms"`
	Postings  int       `json:"postings"`
	Location  string    `json:"location,omitempty"`
	BuiltAt   time.Time `json:"builtAt"`
}

// Kafka emits an IndexBuilt event keyed by the artifact checksum. Location
// tells consumers where the artifact itself was published.
type Kafka struct {
	Producer EventPublisher
	Location string
	Retry    resilience.RetryConfig
}

func (s Kafka) Name() string { return "kafka" }

func (s Kafka) Publish(ctx context.Context, a Artifact) error {
	event := NewIndexBuilt(a, s.Location)
	return resilience.Retry(ctx, "kafka-publish", s.Retry, func() error {
		return s.Producer.Publish(ctx, kafka.Event{Key: event.Checksum, Value: event})
	})
}

func NewIndexBuilt(a Artifact, location string) IndexBuilt {
	return IndexBuilt{
		Checksum:  fmt.Sprintf("%08x", a.Checksum),
		Bytes:     len(a.Data),
		Documents: a.Summary.Documents,
		Fields:    a.Summary.Fields,
		Terms:     a.Summary.Terms,
		Postings:  a.Summary.Postings,
		Location:  location,
		BuiltAt:   a.BuiltAt.UTC(),
	}
}
