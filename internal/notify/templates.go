package notify

import "fmt"

// renderEmails produces the emails for a job. A job can fan out to both
// sides of the booking.
func renderEmails(job *Job) []EmailMessage {
	when := fmt.Sprintf("%s at %s", job.Date, job.Time)

	switch job.Type {
	case JobBookingCreated:
		if job.DoctorEmail == "" {
			return nil
		}
		body := fmt.Sprintf("You have a new booking request for %s.", when)
		if job.Reason != "" {
			body += fmt.Sprintf("\n\nReason for consultation: %s", job.Reason)
		}
		return []EmailMessage{{
			To:      job.DoctorEmail,
			ToName:  job.DoctorName,
			Subject: "New booking request",
			Body:    body,
		}}

	case JobBookingConfirmed:
		msgs := []EmailMessage{{
			To:      job.PatientEmail,
			Subject: "Your consultation is confirmed",
			Body: fmt.Sprintf("Your consultation with %s on %s is confirmed.\n\n"+
				"You can join the video call from 15 minutes before the start time.", job.DoctorName, when),
		}}
		if job.DoctorEmail != "" {
			msgs = append(msgs, EmailMessage{
				To:      job.DoctorEmail,
				ToName:  job.DoctorName,
				Subject: "Booking confirmed",
				Body:    fmt.Sprintf("Your consultation on %s has been paid and confirmed.", when),
			})
		}
		return msgs

	case JobBookingCancelled:
		msgs := []EmailMessage{{
			To:      job.PatientEmail,
			Subject: "Your consultation has been cancelled",
			Body:    fmt.Sprintf("Your consultation on %s has been cancelled.", when),
		}}
		if job.DoctorEmail != "" {
			msgs = append(msgs, EmailMessage{
				To:      job.DoctorEmail,
				ToName:  job.DoctorName,
				Subject: "Booking cancelled",
				Body:    fmt.Sprintf("The consultation on %s has been cancelled and the slot released.", when),
			})
		}
		return msgs

	case JobBookingRescheduled:
		was := fmt.Sprintf("%s at %s", job.OldDate, job.OldTime)
		msgs := []EmailMessage{{
			To:      job.PatientEmail,
			Subject: "Your consultation has been rescheduled",
			Body:    fmt.Sprintf("Your consultation has moved from %s to %s.", was, when),
		}}
		if job.DoctorEmail != "" {
			msgs = append(msgs, EmailMessage{
				To:      job.DoctorEmail,
				ToName:  job.DoctorName,
				Subject: "Booking rescheduled",
				Body:    fmt.Sprintf("The consultation on %s has moved to %s.", was, when),
			})
		}
		return msgs

	case JobReminder:
		return []EmailMessage{{
			To:      job.PatientEmail,
			Subject: "Reminder: your consultation is tomorrow",
			Body: fmt.Sprintf("This is a reminder that your consultation with %s is on %s.\n\n"+
				"You can join the video call from 15 minutes before the start time.", job.DoctorName, when),
		}}

	case JobFeedbackRequest:
		return []EmailMessage{{
			To:      job.PatientEmail,
			Subject: "How was your consultation?",
			Body:    "We'd love to hear how your consultation went. Please take a minute to leave feedback.",
		}}
	}
	return nil
}

// renderSMS produces the patient SMS body for a job, or "" when the job
// type has no SMS leg.
func renderSMS(job *Job) string {
	switch job.Type {
	case JobBookingConfirmed:
		return fmt.Sprintf("Your consultation with %s on %s at %s is confirmed.", job.DoctorName, job.Date, job.Time)
	case JobReminder:
		return fmt.Sprintf("Reminder: your consultation with %s is tomorrow at %s.", job.DoctorName, job.Time)
	}
	return ""
}
