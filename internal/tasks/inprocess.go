package tasks

import (
	"context"
	"sync"
)

// InProcessQueue is a channel-backed queue for single-node deployments
// and tests. Tasks do not survive a restart.
//
// Shutdown is signalled through a separate done channel rather than by
// closing the task channel, so an Enqueue blocked on a full buffer
// returns ErrQueueClosed instead of panicking when Close races it.
type InProcessQueue struct {
	ch   chan Task
	done chan struct{}
	once sync.Once
}

func NewInProcessQueue(capacity int) *InProcessQueue {
	if capacity <= 0 {
		capacity = 256
	}
	return &InProcessQueue{
		ch:   make(chan Task, capacity),
		done: make(chan struct{}),
	}
}

func (q *InProcessQueue) Enqueue(ctx context.Context, task Task) error {
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}

	select {
	case q.ch <- task:
		return nil
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *InProcessQueue) Dequeue(ctx context.Context) (Task, error) {
	select {
	case task := <-q.ch:
		return task, nil
	case <-q.done:
		// Drain whatever was buffered before reporting closed.
		select {
		case task := <-q.ch:
			return task, nil
		default:
			return Task{}, ErrQueueClosed
		}
	case <-ctx.Done():
		return Task{}, ctx.Err()
	}
}

func (q *InProcessQueue) Close() error {
	q.once.Do(func() { close(q.done) })
	return nil
}
