package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupQueue(t *testing.T) (*miniredis.Miniredis, *Queue) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewQueue(client, nil)
}

func TestEnqueueDequeueTestimonial(t *testing.T) {
	_, q := setupQueue(t)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, q.EnqueueTestimonialSubmitted(ctx, TestimonialSubmittedPayload{
		TestimonialID: id,
		FullName:      "Jane Doe",
		Kind:          "written",
	}))

	job, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, JobTypeTestimonialSubmitted, job.Type)
	assert.Equal(t, 0, job.Attempt)

	var payload TestimonialSubmittedPayload
	require.NoError(t, json.Unmarshal(job.Payload, &payload))
	assert.Equal(t, id, payload.TestimonialID)
	assert.Equal(t, "Jane Doe", payload.FullName)
}

func TestDequeueInvalidPayloadIsSkipped(t *testing.T) {
	mr, q := setupQueue(t)
	_, err := mr.Lpush(QueueNotifications, "{not json")
	require.NoError(t, err)

	job, err := q.Dequeue(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Nil(t, job)
}

func TestRetryMovesToDLQAfterMaxRetries(t *testing.T) {
	mr, q := setupQueue(t)
	ctx := context.Background()
	job := &Job{ID: "j1", Type: JobTypeContactReceived, Payload: json.RawMessage(`{}`)}

	for i := 1; i < MaxRetries; i++ {
		require.NoError(t, q.Retry(ctx, job))
		assert.Equal(t, i, job.Attempt)
	}
	list, err := mr.List(QueueNotifications)
	require.NoError(t, err)
	assert.Len(t, list, MaxRetries-1)

	require.NoError(t, q.Retry(ctx, job))
	dlq, err := mr.List(QueueDLQ)
	require.NoError(t, err)
	assert.Len(t, dlq, 1)
}
