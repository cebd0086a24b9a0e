package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/Bezzin/HerHealth-Hub-sub000/internal/bookings"
	"github.com/Bezzin/HerHealth-Hub-sub000/pkg/logging"
)

// Window bounds for the upcoming-appointment scan. An hourly cadence with a
// two-hour window gives every confirmed booking exactly one chance to fall
// inside it; the reminders_sent flag absorbs the overlap between runs.
const (
	WindowStart = 23 * time.Hour
	WindowEnd   = 25 * time.Hour
)

// Sender delivers a reminder for one booking. Implementations send email
// always and SMS when the booking carries a phone number.
type Sender interface {
	SendReminder(ctx context.Context, b *bookings.Booking) error
}

// Metrics records scan outcomes. Nil-safe at the call sites.
type Metrics interface {
	ObserveReminderScan(duration time.Duration, sent int)
	ObserveReminder(result string)
}

// Scanner finds confirmed bookings starting 23–25 hours out and dispatches
// reminders for them.
type Scanner struct {
	repo    bookings.Repository
	sender  Sender
	metrics Metrics
	logger  *logging.Logger
}

// NewScanner creates a reminder scanner.
func NewScanner(repo bookings.Repository, sender Sender, metrics Metrics, logger *logging.Logger) *Scanner {
	if logger == nil {
		logger = logging.Default()
	}
	return &Scanner{repo: repo, sender: sender, metrics: metrics, logger: logger}
}

// Scan processes one pass over the reminder window anchored at now.
// Returns the number of bookings reminded. A failure on one booking is
// logged and skipped; the rest of the batch still goes out.
func (s *Scanner) Scan(ctx context.Context, now time.Time) (int, error) {
	started := time.Now()
	from, to := now.Add(WindowStart), now.Add(WindowEnd)

	due, err := s.repo.ListDueReminders(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("reminders: list due: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	s.logger.Info("reminder scan: bookings due", "count", len(due), "from", from, "to", to)

	sent := 0
	for _, b := range due {
		if err := s.processOne(ctx, b); err != nil {
			s.logger.Error("reminder scan: booking failed",
				"booking_id", b.ID, "start", b.Start, "error", err)
			if s.metrics != nil {
				s.metrics.ObserveReminder("error")
			}
			continue
		}
		sent++
		if s.metrics != nil {
			s.metrics.ObserveReminder("sent")
		}
	}

	if s.metrics != nil {
		s.metrics.ObserveReminderScan(time.Since(started), sent)
	}
	return sent, nil
}

// processOne sends the reminder, then flips the dedupe flag. Marking after
// sending means a crash between the two repeats the reminder next run;
// at-least-once is the deliberate trade here.
func (s *Scanner) processOne(ctx context.Context, b *bookings.Booking) error {
	if err := s.sender.SendReminder(ctx, b); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	if err := s.repo.MarkRemindersSent(ctx, b.ID); err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	s.logger.Info("reminder sent", "booking_id", b.ID, "start", b.Start)
	return nil
}
