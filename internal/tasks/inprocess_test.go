package tasks

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInProcessQueueFIFO(t *testing.T) {
	ctx := context.Background()
	q := NewInProcessQueue(4)

	first, err := NewEmailTask(EmailPayload{To: "a@example.com", Subject: "first"})
	require.NoError(t, err)
	second, err := NewEmailTask(EmailPayload{To: "b@example.com", Subject: "second"})
	require.NoError(t, err)

	require.NoError(t, q.Enqueue(ctx, first))
	require.NoError(t, q.Enqueue(ctx, second))

	got, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	got, err = q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
}

func TestInProcessQueueDequeueHonorsContext(t *testing.T) {
	q := NewInProcessQueue(1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Dequeue(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestInProcessQueueClose(t *testing.T) {
	ctx := context.Background()
	q := NewInProcessQueue(1)

	task, err := NewEmailTask(EmailPayload{To: "a@example.com"})
	require.NoError(t, err)
	require.NoError(t, q.Enqueue(ctx, task))
	require.NoError(t, q.Close())

	// Buffered tasks drain before the closed state surfaces.
	got, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)

	_, err = q.Dequeue(ctx)
	assert.ErrorIs(t, err, ErrQueueClosed)

	err = q.Enqueue(ctx, task)
	assert.ErrorIs(t, err, ErrQueueClosed)

	// Closing twice is safe.
	assert.NoError(t, q.Close())
}

func TestInProcessQueueCloseUnblocksPendingEnqueue(t *testing.T) {
	ctx := context.Background()
	q := NewInProcessQueue(1)

	task, err := NewEmailTask(EmailPayload{To: "a@example.com"})
	require.NoError(t, err)
	require.NoError(t, q.Enqueue(ctx, task))

	// Second enqueue blocks on the full buffer; closing must release it
	// with ErrQueueClosed rather than a send on a closed channel.
	result := make(chan error, 1)
	go func() {
		result <- q.Enqueue(ctx, task)
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, q.Close())

	select {
	case err := <-result:
		assert.ErrorIs(t, err, ErrQueueClosed)
	case <-time.After(time.Second):
		t.Fatal("blocked enqueue never returned after close")
	}

	// The buffered task is still deliverable after close.
	got, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)
}

func TestNewEmailTaskPayloadRoundTrip(t *testing.T) {
	task, err := NewEmailTask(EmailPayload{
		SiteID:   "site-1",
		To:       "a@example.com",
		Subject:  "Verify your email",
		Template: "verification_code",
		Context:  map[string]interface{}{"Code": "482915"},
	})
	require.NoError(t, err)
	assert.Equal(t, TypeEmail, task.Type)
	assert.NotEmpty(t, task.ID)

	var payload EmailPayload
	require.NoError(t, json.Unmarshal(task.Payload, &payload))
	assert.Equal(t, "site-1", payload.SiteID)
	assert.Equal(t, "482915", payload.Context["Code"])
}
