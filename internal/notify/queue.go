package notify

import "context"

// Queue is the transport between notification producers and the consumer.
type Queue interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]Message, error)
	Delete(ctx context.Context, receiptHandle string) error
}

// Message is one queued notification payload.
type Message struct {
	ID            string
	Body          string
	ReceiptHandle string
}
