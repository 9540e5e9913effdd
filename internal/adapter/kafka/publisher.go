// Package kafka publishes step snapshots to a Kafka topic so downstream
// consumers (dashboards, archival jobs) can follow a run without polling
// the HTTP API.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/tharsis-sim/marsclim/internal/climate"
	"github.com/tharsis-sim/marsclim/internal/config"
)

// Publisher produces snapshot messages to the configured topic. It
// implements runner.SnapshotSink. All messages of one process share a run ID
// key, so a partition holds each run's snapshots in step order.
type Publisher struct {
	writer *kafkago.Writer
	runID  uuid.UUID
}

// NewPublisher creates a Kafka producer for the snapshot topic. Delivery
// failures surface through Record's error; the caller owns logging.
func NewPublisher(cfg *config.Config) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSnapshotTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, runID: uuid.New()}
}

// Name identifies the sink in logs and metrics.
func (p *Publisher) Name() string { return "kafka" }

// Record serializes and publishes one snapshot.
func (p *Publisher) Record(ctx context.Context, snap climate.StepSnapshot) error {
	msg, err := serializeSnapshot(p.runID, snap)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeSnapshot marshals a snapshot into a Kafka message keyed by run ID.
func serializeSnapshot(runID uuid.UUID, snap climate.StepSnapshot) (kafkago.Message, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize snapshot: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(runID.String()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "step", Value: []byte(strconv.FormatUint(snap.Step, 10))},
			{Key: "computed_at", Value: []byte(snap.ComputedAt.Format(time.RFC3339))},
		},
	}, nil
}
