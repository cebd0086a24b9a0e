package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultVisibilityTimeout = 30 * time.Second

// MemoryQueue is a Queue backed by an in-memory buffered channel, for local
// development and tests. It mirrors SQS visibility semantics: a received
// message stays invisible until it is deleted or its visibility timeout
// expires, after which Receive returns it again.
type MemoryQueue struct {
	ch         chan Message
	visibility time.Duration
	now        func() time.Time

	mu       sync.Mutex
	inflight map[string]inflightMessage
}

type inflightMessage struct {
	msg      Message
	deadline time.Time
}

// NewMemoryQueue creates a MemoryQueue with the provided buffer capacity.
func NewMemoryQueue(buffer int) *MemoryQueue {
	if buffer <= 0 {
		buffer = 128
	}
	return &MemoryQueue{
		ch:         make(chan Message, buffer),
		visibility: defaultVisibilityTimeout,
		now:        time.Now,
		inflight:   make(map[string]inflightMessage),
	}
}

// WithVisibilityTimeout overrides how long a received message stays
// invisible before it is redelivered (for tests).
func (q *MemoryQueue) WithVisibilityTimeout(d time.Duration) *MemoryQueue {
	q.visibility = d
	return q
}

// WithClock overrides the queue's clock (for tests).
func (q *MemoryQueue) WithClock(now func() time.Time) *MemoryQueue {
	q.now = now
	return q
}

// Send enqueues a payload or blocks until ctx is done.
func (q *MemoryQueue) Send(ctx context.Context, body string) error {
	msg := Message{
		ID:            uuid.NewString(),
		Body:          body,
		ReceiptHandle: uuid.NewString(),
	}
	select {
	case q.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive blocks until a message is available, ctx is done, or waitSeconds elapses.
func (q *MemoryQueue) Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]Message, error) {
	if maxMessages <= 0 {
		maxMessages = 1
	}
	q.redeliverExpired()

	var timeout <-chan time.Time
	if waitSeconds > 0 {
		timer := time.NewTimer(time.Duration(waitSeconds) * time.Second)
		defer timer.Stop()
		timeout = timer.C
	}

	// Sweep while blocked so an expired message is requeued even when no
	// new Receive call arrives.
	sweep := time.NewTicker(q.sweepInterval())
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timeout:
			return nil, nil
		case <-sweep.C:
			q.redeliverExpired()
		case msg := <-q.ch:
			messages := []Message{msg}
			for len(messages) < maxMessages {
				select {
				case next := <-q.ch:
					messages = append(messages, next)
				default:
					q.markInflight(messages)
					return messages, nil
				}
			}
			q.markInflight(messages)
			return messages, nil
		}
	}
}

func (q *MemoryQueue) sweepInterval() time.Duration {
	if q.visibility > 0 && q.visibility < time.Second {
		return q.visibility
	}
	return time.Second
}

// Delete acknowledges a message so it is not redelivered.
func (q *MemoryQueue) Delete(_ context.Context, receiptHandle string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.inflight, receiptHandle)
	return nil
}

func (q *MemoryQueue) markInflight(messages []Message) {
	deadline := q.now().Add(q.visibility)
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, msg := range messages {
		q.inflight[msg.ReceiptHandle] = inflightMessage{msg: msg, deadline: deadline}
	}
}

// redeliverExpired moves messages whose visibility timeout has lapsed back
// onto the channel. A message that does not fit stays inflight and is
// retried on the next call.
func (q *MemoryQueue) redeliverExpired() {
	now := q.now()
	q.mu.Lock()
	defer q.mu.Unlock()
	for handle, entry := range q.inflight {
		if entry.deadline.After(now) {
			continue
		}
		select {
		case q.ch <- entry.msg:
			delete(q.inflight, handle)
		default:
		}
	}
}
