package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/Bezzin/HerHealth-Hub-sub000/internal/bookings"
	"github.com/Bezzin/HerHealth-Hub-sub000/internal/doctors"
	"github.com/Bezzin/HerHealth-Hub-sub000/pkg/logging"
)

// DoctorDirectory resolves a doctor's contact details for outbound messages.
type DoctorDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*doctors.Doctor, error)
}

// Dispatcher serializes notification jobs onto the queue. Booking lifecycle
// methods are fire-and-forget: an enqueue failure is logged and never
// propagates back into the transition that triggered it.
type Dispatcher struct {
	queue   Queue
	doctors DoctorDirectory
	logger  *logging.Logger
}

// NewDispatcher creates a notification dispatcher.
func NewDispatcher(queue Queue, doctorDirectory DoctorDirectory, logger *logging.Logger) *Dispatcher {
	if queue == nil {
		panic("notify: queue required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{queue: queue, doctors: doctorDirectory, logger: logger}
}

// BookingCreated notifies the doctor of a new booking request.
func (d *Dispatcher) BookingCreated(ctx context.Context, b *bookings.Booking) {
	d.fireAndForget(ctx, d.jobFor(ctx, JobBookingCreated, b))
}

// BookingConfirmed notifies both sides that payment cleared.
func (d *Dispatcher) BookingConfirmed(ctx context.Context, b *bookings.Booking) {
	d.fireAndForget(ctx, d.jobFor(ctx, JobBookingConfirmed, b))
}

// BookingCancelled notifies both sides of the cancellation.
func (d *Dispatcher) BookingCancelled(ctx context.Context, b *bookings.Booking) {
	d.fireAndForget(ctx, d.jobFor(ctx, JobBookingCancelled, b))
}

// BookingRescheduled notifies both sides of the new appointment time.
func (d *Dispatcher) BookingRescheduled(ctx context.Context, b *bookings.Booking, oldDate, oldTime string) {
	job := d.jobFor(ctx, JobBookingRescheduled, b)
	job.OldDate = oldDate
	job.OldTime = oldTime
	d.fireAndForget(ctx, job)
}

// FeedbackRequested asks the patient to review a completed consultation.
func (d *Dispatcher) FeedbackRequested(ctx context.Context, b *bookings.Booking) {
	d.fireAndForget(ctx, d.jobFor(ctx, JobFeedbackRequest, b))
}

// SendReminder enqueues the 24-hour reminder. Unlike the lifecycle methods
// the error is returned, so the scanner only marks a booking reminded once
// its job is actually on the queue.
func (d *Dispatcher) SendReminder(ctx context.Context, b *bookings.Booking) error {
	return d.enqueue(ctx, d.jobFor(ctx, JobReminder, b))
}

func (d *Dispatcher) jobFor(ctx context.Context, t JobType, b *bookings.Booking) *Job {
	job := &Job{
		Type:         t,
		BookingID:    b.ID,
		PatientEmail: b.PatientEmail,
		PatientPhone: b.PatientPhone,
		Date:         b.AppointmentDate,
		Time:         b.AppointmentTime,
		Reason:       b.Reason,
	}
	if d.doctors != nil {
		if doctor, err := d.doctors.Get(ctx, b.DoctorID); err == nil {
			job.DoctorName = doctor.FullName()
			job.DoctorEmail = doctor.Email
		} else {
			d.logger.Warn("notify: doctor lookup failed", "doctor_id", b.DoctorID, "error", err)
		}
	}
	return job
}

func (d *Dispatcher) fireAndForget(ctx context.Context, job *Job) {
	if err := d.enqueue(ctx, job); err != nil {
		d.logger.Error("notify: enqueue failed", "type", job.Type, "booking_id", job.BookingID, "error", err)
	}
}

func (d *Dispatcher) enqueue(ctx context.Context, job *Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("notify: marshal job: %w", err)
	}
	if err := d.queue.Send(ctx, string(body)); err != nil {
		return err
	}
	d.logger.Info("notification enqueued", "type", job.Type, "booking_id", job.BookingID)
	return nil
}
