package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"XetraPull/internal/domain/models"
)

type recordingPublisher struct {
	topic  string
	key    []byte
	value  interface{}
	closed bool
}

func (r *recordingPublisher) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	r.topic, r.key, r.value = topic, key, value
	return nil
}

func (r *recordingPublisher) Close() error {
	r.closed = true
	return nil
}

func TestKafkaRunPublisher(t *testing.T) {
	rec := &recordingPublisher{}
	pub := NewKafkaRunPublisher(rec, "xetra.report.runs")

	summary := &models.RunSummary{RunID: "r1", ReportKey: "report1/x.parquet", ReportRows: 3}
	require.NoError(t, pub.PublishRun(context.Background(), summary))

	assert.Equal(t, "xetra.report.runs", rec.topic)
	assert.Equal(t, []byte("report1/x.parquet"), rec.key)
	assert.Same(t, summary, rec.value)

	require.NoError(t, pub.Close())
	assert.True(t, rec.closed)
}
