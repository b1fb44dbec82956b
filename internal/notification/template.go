package notification

import (
	"fmt"
)

// render builds the subject and HTML body for a booking email. Unknown kinds
// fall back to a generic update so a job is never undeliverable for a
// template reason.
func render(kind string, d Details) (subject, body string) {
	schedule := fmt.Sprintf(
		`<ul>
			<li><b>Doctor:</b> %s</li>
			<li><b>Operation Theatre:</b> %s</li>
			<li><b>Date:</b> %s</li>
			<li><b>Time:</b> %s - %s</li>
		</ul>`,
		d.DoctorName, d.TheatreName, d.Date, d.StartTime, d.EndTime,
	)

	switch kind {
	case KindScheduled:
		subject = "Surgery Scheduled"
		body = fmt.Sprintf(
			`<h3>Dear %s,</h3>
			<p>Your surgery has been scheduled with the following details:</p>
			%s
			<p>Please arrive at the hospital at least one hour before your scheduled time.</p>`,
			d.PatientName, schedule,
		)
	case KindRescheduled:
		subject = "Surgery Rescheduled"
		body = fmt.Sprintf(
			`<h3>Dear %s,</h3>
			<p>Your surgery has been rescheduled. The updated details are:</p>
			%s
			<p>We apologize for any inconvenience caused.</p>`,
			d.PatientName, schedule,
		)
	case KindCancelled:
		subject = "Surgery Cancelled"
		body = fmt.Sprintf(
			`<h3>Dear %s,</h3>
			<p>Your surgery scheduled on %s at %s has been cancelled.</p>
			<p>Please contact the hospital to arrange a new appointment.</p>`,
			d.PatientName, d.Date, d.StartTime,
		)
	default:
		subject = "Surgery Update"
		body = fmt.Sprintf(
			`<h3>Dear %s,</h3>
			<p>There is an update on your surgery:</p>
			%s`,
			d.PatientName, schedule,
		)
	}

	return subject, body
}
