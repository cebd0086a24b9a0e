package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Bezzin/HerHealth-Hub-sub000/pkg/logging"
)

// errMalformedJob marks a job body that cannot be decoded. Redelivery
// cannot fix it, so the message is deleted instead of retried.
var errMalformedJob = errors.New("notify: malformed job")

// Consumer drains the notification queue and delivers each job: email
// always, SMS when the job carries a phone number. A failed job is logged
// and left undeleted so the queue redelivers it once its visibility
// timeout expires; malformed jobs are deleted outright.
type Consumer struct {
	queue  Queue
	email  EmailSender
	sms    SMSSender
	logger *logging.Logger
}

// NewConsumer creates a notification consumer.
func NewConsumer(queue Queue, email EmailSender, sms SMSSender, logger *logging.Logger) *Consumer {
	if queue == nil {
		panic("notify: queue required")
	}
	if email == nil {
		email = NewStubEmailSender(logger)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Consumer{queue: queue, email: email, sms: sms, logger: logger}
}

// Run drains the queue until the context is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	c.logger.Info("starting notification consumer")
	for {
		messages, err := c.queue.Receive(ctx, 10, 5)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info("notification consumer shutting down")
				return
			}
			c.logger.Error("queue receive failed", "error", err)
			continue
		}

		for _, msg := range messages {
			if err := c.process(ctx, msg.Body); err != nil {
				c.logger.Error("notification delivery failed", "message_id", msg.ID, "error", err)
				if !errors.Is(err, errMalformedJob) {
					continue
				}
			}
			if err := c.queue.Delete(ctx, msg.ReceiptHandle); err != nil {
				c.logger.Error("queue delete failed", "message_id", msg.ID, "error", err)
			}
		}
	}
}

func (c *Consumer) process(ctx context.Context, body string) error {
	var job Job
	if err := json.Unmarshal([]byte(body), &job); err != nil {
		return fmt.Errorf("%w: %v", errMalformedJob, err)
	}

	for _, msg := range renderEmails(&job) {
		if msg.To == "" {
			continue
		}
		if err := c.email.Send(ctx, msg); err != nil {
			return err
		}
	}

	// SMS is best-effort on top of email.
	if smsBody := renderSMS(&job); smsBody != "" && job.PatientPhone != "" && c.sms != nil {
		if err := c.sms.SendSMS(ctx, job.PatientPhone, smsBody); err != nil {
			c.logger.Warn("sms delivery failed", "booking_id", job.BookingID, "error", err)
		}
	}

	c.logger.Info("notification delivered", "type", job.Type, "booking_id", job.BookingID)
	return nil
}
