package kafka

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/P4za/alagAlert/internal/config"
	"github.com/P4za/alagAlert/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 30, 0, 0, time.UTC)
	area := domain.RiskArea{
		Name:     "Zona Sul - Jabaquara",
		Ring:     domain.SquareAround(-23.624, -46.637, 1),
		BaseRisk: domain.RiskHigh,
	}
	fc := domain.NewFeatureCollection()
	fc.Features = append(fc.Features, domain.ToFeature(area, domain.RiskHigh, "2026-10-18", false))
	fc.Metadata["total_features"] = 1

	snap := domain.Snapshot{
		Key:         "risk-areas:2026-10-18",
		Kind:        "risk-areas",
		GeneratedAt: now,
		Collection:  fc,
	}

	msg, err := serializeToMessage(snap)
	require.NoError(t, err)

	assert.Equal(t, []byte("risk-areas:2026-10-18"), msg.Key)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "kind", msg.Headers[0].Key)
	assert.Equal(t, []byte("risk-areas"), msg.Headers[0].Value)
	assert.Equal(t, "generated_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
	assert.Equal(t, []byte("1"), msg.Headers[2].Value)

	var decoded domain.Snapshot
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, snap.Key, decoded.Key)
	require.Len(t, decoded.Collection.Features, 1)
	assert.Equal(t, domain.RiskHigh, decoded.Collection.Features[0].Properties.RiskLevel)
	assert.Contains(t, string(msg.Value), `"riskLevel":"high"`)
	assert.Contains(t, string(msg.Value), `"type":"FeatureCollection"`)
}

func TestNewWriter_UsesSnapshotTopic(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaSnapshotTopic: "flood-risk-snapshots"}
	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer func() { _ = w.Close() }()

	assert.Equal(t, "flood-risk-snapshots", w.writer.Topic)
}

func TestLoadBatch_Empty(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"localhost:1"}, KafkaSnapshotTopic: "unused"}
	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer func() { _ = w.Close() }()

	assert.NoError(t, w.LoadBatch(t.Context(), nil))
}
