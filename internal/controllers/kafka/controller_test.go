package kafkactrl

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Agrid-Dev/twozone/internal/testutil"
)

type fakeWriter struct {
	mu      sync.Mutex
	batches [][]kafka.Message
	err     error
	closed  bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.batches = append(w.batches, append([]kafka.Message(nil), msgs...))
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *fakeWriter) batchCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.batches)
}

func TestNewValidation(t *testing.T) {
	svc := testutil.NewFakeStudyService()

	_, err := New(svc, Config{DeviceID: "flat1"})
	assert.Error(t, err, "brokers are required")

	_, err = newWithWriter(svc, Config{}, &fakeWriter{})
	assert.Error(t, err, "device id is required")

	c, err := newWithWriter(svc, Config{DeviceID: "flat1"}, &fakeWriter{})
	require.NoError(t, err)
	assert.Equal(t, "twozone.summaries", c.cfg.Topic)
	assert.Equal(t, time.Second, c.cfg.PublishInterval)
}

func TestNewBuildsHashWriter(t *testing.T) {
	c, err := New(testutil.NewFakeStudyService(), Config{DeviceID: "flat1", Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)

	kw, ok := c.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "twozone.summaries", kw.Topic)
	assert.IsType(t, &kafka.Hash{}, kw.Balancer)
}

func TestPublishOneMessagePerCase(t *testing.T) {
	svc := testutil.NewFakeStudyService()
	w := &fakeWriter{}
	c, err := newWithWriter(svc, Config{DeviceID: "flat1"}, w)
	require.NoError(t, err)

	require.NoError(t, c.publish(context.Background(), svc.R))
	require.Equal(t, 1, w.batchCount())

	msgs := w.batches[0]
	require.Len(t, msgs, 2)
	assert.Equal(t, "passive", string(msgs[0].Key))
	assert.Equal(t, "forced", string(msgs[1].Key))

	var got summaryMessage
	require.NoError(t, json.Unmarshal(msgs[1].Value, &got))
	assert.Equal(t, "flat1", got.DeviceID)
	assert.Equal(t, svc.R.ID.String(), got.ReportID)
	assert.Equal(t, "forced", got.Summary.Case)
	assert.InDelta(t, 24.04, got.Summary.Zone2, 1e-9)

	assert.Equal(t, "report_id", msgs[0].Headers[1].Key)
	assert.Equal(t, svc.R.ID.String(), string(msgs[0].Headers[1].Value))
}

func TestPublishWrapsWriterError(t *testing.T) {
	svc := testutil.NewFakeStudyService()
	boom := errors.New("broker down")
	c, err := newWithWriter(svc, Config{DeviceID: "flat1"}, &fakeWriter{err: boom})
	require.NoError(t, err)

	assert.ErrorIs(t, c.publish(context.Background(), svc.R), boom)
}

func TestRunPublishesOnlyOnReportChange(t *testing.T) {
	svc := testutil.NewFakeStudyService()
	w := &fakeWriter{}
	c, err := newWithWriter(svc, Config{DeviceID: "flat1", PublishInterval: 10 * time.Millisecond}, w)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()

	err = c.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.Equal(t, 1, w.batchCount(), "unchanged report must be published once")
	assert.True(t, w.closed)
}
