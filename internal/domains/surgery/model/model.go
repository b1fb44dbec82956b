package model

import (
	"otms/shared/model"
	"time"

	"github.com/lib/pq"
)

const (
	TableName  = "surgeries"
	EntityName = "surgery"

	FieldID               = "id"
	FieldPatientID        = "patient_id"
	FieldDoctorID         = "doctor_id"
	FieldTheatreID        = "theatre_id"
	FieldSurgeryDate      = "surgery_date"
	FieldStartAt          = "start_at"
	FieldEndAt            = "end_at"
	FieldStatus           = "status"
	FieldPriority         = "priority"
	FieldAnesthesiaType   = "anesthesia_type"
	FieldAnesthesiologist = "anesthesiologist"
	FieldNurses           = "nurses"
	FieldNotes            = "notes"
	FieldIsDeleted        = "is_deleted"
)

const (
	StatusScheduled   = "Scheduled"
	StatusRescheduled = "Rescheduled"
	StatusEmergency   = "Emergency"
	StatusCompleted   = "Completed"
	StatusCancelled   = "Cancelled"
)

const (
	PriorityNormal    = "Normal"
	PriorityEmergency = "Emergency"
)

type Surgery struct {
	ID               string         `db:"id"`
	PatientID        string         `db:"patient_id"`
	DoctorID         string         `db:"doctor_id"`
	TheatreID        string         `db:"theatre_id"`
	SurgeryDate      time.Time      `db:"surgery_date"`
	StartAt          time.Time      `db:"start_at"`
	EndAt            time.Time      `db:"end_at"`
	Status           string         `db:"status"`
	Priority         string         `db:"priority"`
	AnesthesiaType   string         `db:"anesthesia_type"`
	Anesthesiologist string         `db:"anesthesiologist"`
	Nurses           pq.StringArray `db:"nurses"`
	Notes            string         `db:"notes"`
	IsDeleted        bool           `db:"is_deleted"`
	model.Metadata
}

// Stats aggregates booking counts for the dashboard. Each status bucket
// counts exact matches; Emergency counts by priority, not status, so an
// emergency booking also shows up in whichever status bucket it is in.
type Stats struct {
	Total     int `db:"total"`
	Completed int `db:"completed"`
	Cancelled int `db:"cancelled"`
	Scheduled int `db:"scheduled"`
	Emergency int `db:"emergency"`
}

// LiveStatuses are the statuses that hold a claim on a theatre and a doctor.
// Completed and Cancelled surgeries release their slots.
func LiveStatuses() []string {
	return []string{StatusScheduled, StatusRescheduled, StatusEmergency}
}

// transitions is the allowed status graph. Completed and Cancelled are
// terminal: once reached, no further transition is valid.
var transitions = map[string][]string{
	StatusScheduled:   {StatusRescheduled, StatusCompleted, StatusCancelled},
	StatusRescheduled: {StatusRescheduled, StatusCompleted, StatusCancelled},
	StatusEmergency:   {StatusCompleted, StatusCancelled},
	StatusCompleted:   {},
	StatusCancelled:   {},
}

func CanTransition(from, to string) bool {
	allowed, ok := transitions[from]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == to {
			return true
		}
	}

	return false
}

func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}

func IsValidStatus(status string) bool {
	_, ok := transitions[status]

	return ok
}

// Overlaps reports whether the half-open windows [s1, e1) and [s2, e2)
// intersect. Bookings that merely touch at an endpoint do not overlap, so a
// 09:00-10:00 slot and a 10:00-11:00 slot can share a theatre.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}
