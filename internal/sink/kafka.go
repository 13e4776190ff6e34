package sink

import (
	"context"

	"github.com/Adithya-Monish-Kumar-K/concordance/internal/concordance/report"
	"github.com/Adithya-Monish-Kumar-K/concordance/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/concordance/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/concordance/pkg/resilience"
)

const kafkaBatchSize = 500

// WordMessage is the JSON value published for each word.
type WordMessage struct {
	Word      string `json:"word"`
	Lines     []int  `json:"lines"`
	Truncated bool   `json:"truncated,omitempty"`
	Line      string `json:"line"`
}

// Kafka publishes one message per word, keyed by the word, in report order.
type Kafka struct {
	producer *kafka.Producer
	retry    config.RetryConfig
}

func NewKafka(producer *kafka.Producer, retry config.RetryConfig) *Kafka {
	return &Kafka{producer: producer, retry: retry}
}

func (k *Kafka) Name() string { return config.SinkKafka }

func (k *Kafka) Write(ctx context.Context, rows []report.Row) error {
	for start := 0; start < len(rows); start += kafkaBatchSize {
		batch := rows[start:min(start+kafkaBatchSize, len(rows))]
		events := make([]kafka.Event, len(batch))
		for i, r := range batch {
			events[i] = kafka.Event{
				Key: r.Word,
				Value: WordMessage{
					Word:      r.Word,
					Lines:     r.Lines,
					Truncated: r.Truncated,
					Line:      r.String(),
				},
			}
		}
		err := resilience.Retry(ctx, "kafka-sink", k.retry, func(ctx context.Context) error {
			return k.producer.PublishBatch(ctx, events)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
