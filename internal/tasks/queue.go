package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Task types.
const (
	TypeEmail = "email"
)

var ErrQueueClosed = errors.New("task queue is closed")

// Task is one unit of deferred work. Payload is type-specific JSON.
type Task struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Attempts int             `json:"attempts"`
	Payload  json.RawMessage `json:"payload"`
}

// EmailPayload drives the email worker. SiteID selects the tenant whose
// SMTP settings are used for delivery.
type EmailPayload struct {
	SiteID   string                 `json:"site_id"`
	To       string                 `json:"to"`
	ToName   string                 `json:"to_name,omitempty"`
	Subject  string                 `json:"subject"`
	Template string                 `json:"template"`
	Context  map[string]interface{} `json:"context,omitempty"`
}

// NewEmailTask wraps an email payload into a queueable task.
func NewEmailTask(payload EmailPayload) (Task, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Task{}, fmt.Errorf("failed to marshal email payload: %w", err)
	}
	return Task{
		ID:      uuid.NewString(),
		Type:    TypeEmail,
		Payload: raw,
	}, nil
}

// Queue is the transport between request handlers and workers. Dequeue
// blocks until a task arrives, the context is cancelled, or the queue
// closes.
type Queue interface {
	Enqueue(ctx context.Context, task Task) error
	Dequeue(ctx context.Context) (Task, error)
	Close() error
}
