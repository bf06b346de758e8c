//go:build integration

package messaging_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phishsense/phishsense/internal/domain/event"
	"github.com/phishsense/phishsense/internal/infrastructure/messaging"
	pkgkafka "github.com/phishsense/phishsense/pkg/kafka"
	"github.com/phishsense/phishsense/pkg/testutil"
)

func TestKafkaPublisher_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	kc := testutil.NewKafkaContainer(ctx, t)
	producer, err := pkgkafka.NewProducer(pkgkafka.Config{Brokers: kc.Brokers})
	require.NoError(t, err)
	t.Cleanup(func() { _ = producer.Close() })

	const topic = "phishsense.detections.it"
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher := messaging.NewKafkaPublisher(producer, topic, logger)

	detectionID := uuid.New()
	completed := event.NewDetectionCompleted(detectionID, "http://paypa1.com/login", true, 0.874,
		"CRITICAL", []string{"Possible typosquatting of paypal.com"}, testutil.TestDetectedAt)
	require.NoError(t, publisher.Publish(ctx, completed))

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   kc.Brokers,
		Topic:     topic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  1 << 20,
	})
	t.Cleanup(func() { _ = reader.Close() })

	msg, err := reader.ReadMessage(ctx)
	require.NoError(t, err)

	assert.Equal(t, detectionID.String(), string(msg.Key))
	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, event.EventTypeDetectionCompleted, headers["event_type"])

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "http://paypa1.com/login", body["url"])
	assert.Equal(t, "CRITICAL", body["threat_level"])
}
